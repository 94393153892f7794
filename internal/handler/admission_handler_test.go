package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/madrasa-admission-api/internal/dto"
	"github.com/noah-isme/madrasa-admission-api/internal/models"
	"github.com/noah-isme/madrasa-admission-api/internal/service"
	appErrors "github.com/noah-isme/madrasa-admission-api/pkg/errors"
)

type admissionServiceMock struct {
	submitResp *service.SubmitApplicationResponse
	submitErr  error
	statusResp *dto.DisplayStatus
	statusErr  error
	app        *models.AdmissionApplication
	student    *models.Student
	err        error

	lastID     string
	lastReason string
	lastResult *service.TestResultRequest
	lastFilter models.AdmissionFilter
}

func (m *admissionServiceMock) Submit(ctx context.Context, req service.SubmitApplicationRequest) (*service.SubmitApplicationResponse, error) {
	return m.submitResp, m.submitErr
}

func (m *admissionServiceMock) Approve(ctx context.Context, id string) (*models.AdmissionApplication, error) {
	m.lastID = id
	return m.app, m.err
}

func (m *admissionServiceMock) Reject(ctx context.Context, id string, req service.RejectApplicationRequest) (*models.AdmissionApplication, error) {
	m.lastID = id
	m.lastReason = req.Reason
	return m.app, m.err
}

func (m *admissionServiceMock) RecordQuranTest(ctx context.Context, id string, req service.TestResultRequest) (*models.AdmissionApplication, error) {
	m.lastID = id
	m.lastResult = &req
	return m.app, m.err
}

func (m *admissionServiceMock) RecordOralTest(ctx context.Context, id string, req service.TestResultRequest) (*models.AdmissionApplication, error) {
	m.lastID = id
	m.lastResult = &req
	return m.app, m.err
}

func (m *admissionServiceMock) SetWrittenAdmitEligible(ctx context.Context, id string) (*models.AdmissionApplication, error) {
	m.lastID = id
	return m.app, m.err
}

func (m *admissionServiceMock) RecordWrittenTest(ctx context.Context, id string, req service.TestResultRequest) (*models.AdmissionApplication, error) {
	m.lastID = id
	m.lastResult = &req
	return m.app, m.err
}

func (m *admissionServiceMock) FullyApprove(ctx context.Context, id string) (*models.AdmissionApplication, *models.Student, error) {
	m.lastID = id
	return m.app, m.student, m.err
}

func (m *admissionServiceMock) Get(ctx context.Context, id string) (*models.AdmissionApplication, error) {
	m.lastID = id
	return m.app, m.err
}

func (m *admissionServiceMock) List(ctx context.Context, filter models.AdmissionFilter) ([]models.AdmissionApplication, *models.Pagination, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, nil, m.err
	}
	return []models.AdmissionApplication{*m.app}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (m *admissionServiceMock) StatusByNumber(ctx context.Context, number string) (*dto.DisplayStatus, error) {
	m.lastID = number
	return m.statusResp, m.statusErr
}

func testContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestAdmissionHandlerSubmit(t *testing.T) {
	mockSvc := &admissionServiceMock{
		submitResp: &service.SubmitApplicationResponse{ID: "app-1", ApplicationNumber: "ADM-abc"},
	}
	handler := NewAdmissionHandler(mockSvc, nil)

	payload, _ := json.Marshal(map[string]interface{}{"full_name": "Abdullah Karim"})
	c, w := testContext(t, http.MethodPost, "/admissions", payload)

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "ADM-abc")
}

func TestAdmissionHandlerSubmitInvalidBody(t *testing.T) {
	handler := NewAdmissionHandler(&admissionServiceMock{}, nil)

	c, w := testContext(t, http.MethodPost, "/admissions", []byte(`{"full_name":`))
	handler.Submit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmissionHandlerStatus(t *testing.T) {
	mockSvc := &admissionServiceMock{
		statusResp: &dto.DisplayStatus{
			ApplicationNumber: "ADM-abc",
			Label:             "Under review",
			Timeline: []dto.TimelineStep{
				{Key: dto.StepSubmitted, Label: "Application submitted", State: dto.StepCompleted},
			},
		},
	}
	handler := NewAdmissionHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodGet, "/admissions/status/ADM-abc", nil)
	c.Params = gin.Params{{Key: "number", Value: "ADM-abc"}}

	handler.Status(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ADM-abc", mockSvc.lastID)
	assert.Contains(t, w.Body.String(), "Under review")
}

func TestAdmissionHandlerStatusNotFound(t *testing.T) {
	mockSvc := &admissionServiceMock{statusErr: appErrors.ErrNotFound}
	handler := NewAdmissionHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodGet, "/admissions/status/ADM-missing", nil)
	c.Params = gin.Params{{Key: "number", Value: "ADM-missing"}}

	handler.Status(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdmissionHandlerApproveInvalidTransition(t *testing.T) {
	mockSvc := &admissionServiceMock{err: appErrors.ErrInvalidTransition}
	handler := NewAdmissionHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodPatch, "/admissions/app-1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	handler.Approve(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TRANSITION")
}

func TestAdmissionHandlerQuranTest(t *testing.T) {
	passed := true
	mockSvc := &admissionServiceMock{
		app: &models.AdmissionApplication{ID: "app-1", Status: models.ApplicationStatusApproved, QuranTestPassed: &passed},
	}
	handler := NewAdmissionHandler(mockSvc, nil)

	payload, _ := json.Marshal(service.TestResultRequest{Passed: &passed, Marks: "85/100"})
	c, w := testContext(t, http.MethodPatch, "/admissions/app-1/quran-test", payload)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	handler.QuranTest(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "app-1", mockSvc.lastID)
	require.NotNil(t, mockSvc.lastResult)
	assert.Equal(t, "85/100", mockSvc.lastResult.Marks)
}

func TestAdmissionHandlerFullyApproveConflict(t *testing.T) {
	mockSvc := &admissionServiceMock{err: appErrors.ErrConflict}
	handler := NewAdmissionHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodPatch, "/admissions/app-1/fully-approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	handler.FullyApprove(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAdmissionHandlerFullyApprove(t *testing.T) {
	studentID := "student-1"
	mockSvc := &admissionServiceMock{
		app:     &models.AdmissionApplication{ID: "app-1", Status: models.ApplicationStatusStudent, StudentID: &studentID},
		student: &models.Student{ID: studentID, RollNumber: "STU-abc"},
	}
	handler := NewAdmissionHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodPatch, "/admissions/app-1/fully-approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	handler.FullyApprove(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "STU-abc")
}

func TestAdmissionHandlerListFilters(t *testing.T) {
	mockSvc := &admissionServiceMock{
		app: &models.AdmissionApplication{ID: "app-1", Status: models.ApplicationStatusPending},
	}
	handler := NewAdmissionHandler(mockSvc, nil)

	c, w := testContext(t, http.MethodGet, "/admissions?status=pending&search=karim&page=2&page_size=10", nil)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ApplicationStatusPending, mockSvc.lastFilter.Status)
	assert.Equal(t, "karim", mockSvc.lastFilter.Search)
	assert.Equal(t, 2, mockSvc.lastFilter.Page)
	assert.Equal(t, 10, mockSvc.lastFilter.PageSize)
}
