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

type renewalService interface {
	LookupStudent(ctx context.Context, rollNumber string) (*dto.StudentRenewalProjection, error)
	Submit(ctx context.Context, req service.SubmitRenewalRequest) (*models.RenewalApplication, error)
	Resolve(ctx context.Context, id string, req service.ResolveRenewalRequest) (*models.RenewalApplication, error)
	Get(ctx context.Context, id string) (*models.RenewalApplication, error)
	List(ctx context.Context, filter models.RenewalFilter) ([]models.RenewalApplication, *models.Pagination, error)
}

// RenewalHandler exposes REST endpoints for session renewals.
type RenewalHandler struct {
	service renewalService
}

// NewRenewalHandler constructs the handler.
func NewRenewalHandler(service renewalService) *RenewalHandler {
	return &RenewalHandler{service: service}
}

// LookupStudent godoc
// @Summary Look up a student for the renewal form
// @Tags Renewals
// @Produce json
// @Param rollNumber path string true "Student roll number"
// @Success 200 {object} response.Envelope
// @Router /renewals/students/{rollNumber} [get]
func (h *RenewalHandler) LookupStudent(c *gin.Context) {
	projection, err := h.service.LookupStudent(c.Request.Context(), c.Param("rollNumber"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, projection, nil)
}

// Submit godoc
// @Summary Submit a renewal application
// @Tags Renewals
// @Accept json
// @Produce json
// @Param payload body service.SubmitRenewalRequest true "Renewal payload"
// @Success 201 {object} response.Envelope
// @Router /renewals [post]
func (h *RenewalHandler) Submit(c *gin.Context) {
	var req service.SubmitRenewalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid renewal payload"))
		return
	}
	renewal, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, renewal)
}

// Resolve godoc
// @Summary Approve or reject a renewal application
// @Tags Renewals
// @Accept json
// @Produce json
// @Param id path string true "Renewal ID"
// @Param payload body service.ResolveRenewalRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Router /renewals/{id}/resolve [patch]
func (h *RenewalHandler) Resolve(c *gin.Context) {
	var req service.ResolveRenewalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid review payload"))
		return
	}
	renewal, err := h.service.Resolve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, renewal, nil)
}

// Get godoc
// @Summary Get renewal application detail
// @Tags Renewals
// @Produce json
// @Param id path string true "Renewal ID"
// @Success 200 {object} response.Envelope
// @Router /renewals/{id} [get]
func (h *RenewalHandler) Get(c *gin.Context) {
	renewal, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, renewal, nil)
}

// List godoc
// @Summary List renewal applications
// @Tags Renewals
// @Produce json
// @Param status query string false "Renewal status"
// @Param student_id query string false "Student ID"
// @Param session_id query string false "Academic session ID"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /renewals [get]
func (h *RenewalHandler) List(c *gin.Context) {
	filter := models.RenewalFilter{
		StudentID: strings.TrimSpace(c.Query("student_id")),
		SessionID: strings.TrimSpace(c.Query("session_id")),
	}
	if raw := c.Query("status"); raw != "" {
		filter.Status = models.RenewalStatus(strings.ToUpper(strings.TrimSpace(raw)))
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	renewals, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, renewals, pagination)
}
