package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasa-admission-api/internal/dto"
	"github.com/noah-isme/madrasa-admission-api/internal/models"
	"github.com/noah-isme/madrasa-admission-api/internal/service"
	appErrors "github.com/noah-isme/madrasa-admission-api/pkg/errors"
	"github.com/noah-isme/madrasa-admission-api/pkg/response"
)

type admissionService interface {
	Submit(ctx context.Context, req service.SubmitApplicationRequest) (*service.SubmitApplicationResponse, error)
	Approve(ctx context.Context, id string) (*models.AdmissionApplication, error)
	Reject(ctx context.Context, id string, req service.RejectApplicationRequest) (*models.AdmissionApplication, error)
	RecordQuranTest(ctx context.Context, id string, req service.TestResultRequest) (*models.AdmissionApplication, error)
	RecordOralTest(ctx context.Context, id string, req service.TestResultRequest) (*models.AdmissionApplication, error)
	SetWrittenAdmitEligible(ctx context.Context, id string) (*models.AdmissionApplication, error)
	RecordWrittenTest(ctx context.Context, id string, req service.TestResultRequest) (*models.AdmissionApplication, error)
	FullyApprove(ctx context.Context, id string) (*models.AdmissionApplication, *models.Student, error)
	Get(ctx context.Context, id string) (*models.AdmissionApplication, error)
	List(ctx context.Context, filter models.AdmissionFilter) ([]models.AdmissionApplication, *models.Pagination, error)
	StatusByNumber(ctx context.Context, number string) (*dto.DisplayStatus, error)
}

type admissionExporter interface {
	ApplicationsCSV(ctx context.Context, filter models.AdmissionFilter) ([]byte, error)
	AdmitCard(ctx context.Context, id string) ([]byte, error)
}

// AdmissionHandler exposes REST endpoints for the admission workflow.
type AdmissionHandler struct {
	service  admissionService
	exporter admissionExporter
}

// NewAdmissionHandler constructs the handler.
func NewAdmissionHandler(service admissionService, exporter admissionExporter) *AdmissionHandler {
	return &AdmissionHandler{service: service, exporter: exporter}
}

// Submit godoc
// @Summary Submit an admission application
// @Tags Admissions
// @Accept json
// @Produce json
// @Param payload body service.SubmitApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Router /admissions [post]
func (h *AdmissionHandler) Submit(c *gin.Context) {
	var req service.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid application payload"))
		return
	}
	result, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Status godoc
// @Summary Check application status by application number
// @Tags Admissions
// @Produce json
// @Param number path string true "Application number"
// @Success 200 {object} response.Envelope
// @Router /admissions/status/{number} [get]
func (h *AdmissionHandler) Status(c *gin.Context) {
	status, err := h.service.StatusByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// List godoc
// @Summary List admission applications
// @Tags Admissions
// @Produce json
// @Param status query string false "Application status"
// @Param required_class query string false "Required class"
// @Param search query string false "Name or application number"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admissions [get]
func (h *AdmissionHandler) List(c *gin.Context) {
	filter := admissionFilterFromQuery(c)
	apps, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, pagination)
}

// Get godoc
// @Summary Get admission application detail
// @Tags Admissions
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admissions/{id} [get]
func (h *AdmissionHandler) Get(c *gin.Context) {
	app, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Approve godoc
// @Summary Approve a pending application
// @Tags Admissions
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admissions/{id}/approve [patch]
func (h *AdmissionHandler) Approve(c *gin.Context) {
	app, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Reject godoc
// @Summary Reject a pending application
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.RejectApplicationRequest true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Router /admissions/{id}/reject [patch]
func (h *AdmissionHandler) Reject(c *gin.Context) {
	var req service.RejectApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid rejection payload"))
		return
	}
	app, err := h.service.Reject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// QuranTest godoc
// @Summary Record the Quran test result
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.TestResultRequest true "Test result"
// @Success 200 {object} response.Envelope
// @Router /admissions/{id}/quran-test [patch]
func (h *AdmissionHandler) QuranTest(c *gin.Context) {
	h.recordTest(c, h.service.RecordQuranTest)
}

// OralTest godoc
// @Summary Record the oral test result
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.TestResultRequest true "Test result"
// @Success 200 {object} response.Envelope
// @Router /admissions/{id}/oral-test [patch]
func (h *AdmissionHandler) OralTest(c *gin.Context) {
	h.recordTest(c, h.service.RecordOralTest)
}

// WrittenAdmit godoc
// @Summary Admit the candidate to the written test
// @Tags Admissions
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admissions/{id}/written-admit [patch]
func (h *AdmissionHandler) WrittenAdmit(c *gin.Context) {
	app, err := h.service.SetWrittenAdmitEligible(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// WrittenTest godoc
// @Summary Record the written test result
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.TestResultRequest true "Test result"
// @Success 200 {object} response.Envelope
// @Router /admissions/{id}/written-test [patch]
func (h *AdmissionHandler) WrittenTest(c *gin.Context) {
	h.recordTest(c, h.service.RecordWrittenTest)
}

// FullyApprove godoc
// @Summary Convert a written-test passer into a student
// @Tags Admissions
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admissions/{id}/fully-approve [patch]
func (h *AdmissionHandler) FullyApprove(c *gin.Context) {
	app, student, err := h.service.FullyApprove(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"application": app, "student": student}, nil)
}

// ExportCSV godoc
// @Summary Export applications as CSV
// @Tags Admissions
// @Produce text/csv
// @Param status query string false "Application status"
// @Success 200 {string} string "CSV content"
// @Router /admissions/export [get]
func (h *AdmissionHandler) ExportCSV(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	data, err := h.exporter.ApplicationsCSV(c.Request.Context(), admissionFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="admissions.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// AdmitCard godoc
// @Summary Download the written-test admit card
// @Tags Admissions
// @Produce application/pdf
// @Param id path string true "Application ID"
// @Success 200 {string} string "PDF content"
// @Router /admissions/{id}/admit-card [get]
func (h *AdmissionHandler) AdmitCard(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	data, err := h.exporter.AdmitCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="admit-card.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *AdmissionHandler) recordTest(c *gin.Context, record func(context.Context, string, service.TestResultRequest) (*models.AdmissionApplication, error)) {
	var req service.TestResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid test result payload"))
		return
	}
	app, err := record(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

func admissionFilterFromQuery(c *gin.Context) models.AdmissionFilter {
	filter := models.AdmissionFilter{
		RequiredClass: strings.TrimSpace(c.Query("required_class")),
		Search:        strings.TrimSpace(c.Query("search")),
		SortBy:        c.Query("sort_by"),
		SortOrder:     c.Query("sort_order"),
	}
	if raw := c.Query("status"); raw != "" {
		filter.Status = models.ApplicationStatus(strings.ToUpper(strings.TrimSpace(raw)))
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return filter
}
