package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/madrasa-admission-api/internal/models"
	appErrors "github.com/noah-isme/madrasa-admission-api/pkg/errors"
	"github.com/noah-isme/madrasa-admission-api/pkg/export"
)

func newTestExportService(repo *admissionRepoStub) *ExportService {
	return NewExportService(repo, export.NewCSVExporter(), export.NewPDFExporter(), nil)
}

func TestExportServiceApplicationsCSV(t *testing.T) {
	repo := newAdmissionRepoStub()
	require.NoError(t, repo.Create(context.Background(), &models.AdmissionApplication{
		ApplicationNumber: "ADM-one",
		FullName:          "Abdullah Karim",
		Gender:            "MALE",
		BirthDate:         time.Date(2016, 3, 10, 0, 0, 0, 0, time.UTC),
		GuardianName:      "Karim Uddin",
		GuardianPhone:     "+8801812345678",
		RequiredClass:     "hifz-1",
		AccommodationType: "BOARDING",
		Status:            models.ApplicationStatusPending,
	}))

	data, err := newTestExportService(repo).ApplicationsCSV(context.Background(), models.AdmissionFilter{})
	require.NoError(t, err)

	content := string(data)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Application Number")
	assert.Contains(t, lines[1], "ADM-one")
	assert.Contains(t, lines[1], "Abdullah Karim")
	assert.Contains(t, lines[1], "PENDING")
}

func TestExportServiceAdmitCard(t *testing.T) {
	repo := newAdmissionRepoStub()
	app := &models.AdmissionApplication{
		ApplicationNumber:    "ADM-one",
		FullName:             "Abdullah Karim",
		BirthDate:            time.Date(2016, 3, 10, 0, 0, 0, 0, time.UTC),
		GuardianName:         "Karim Uddin",
		RequiredClass:        "hifz-1",
		AccommodationType:    "BOARDING",
		Status:               models.ApplicationStatusApproved,
		WrittenAdmitEligible: true,
	}
	require.NoError(t, repo.Create(context.Background(), app))

	data, err := newTestExportService(repo).AdmitCard(context.Background(), app.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestExportServiceAdmitCardRequiresEligibility(t *testing.T) {
	repo := newAdmissionRepoStub()
	app := &models.AdmissionApplication{
		ApplicationNumber: "ADM-one",
		FullName:          "Abdullah Karim",
		Status:            models.ApplicationStatusApproved,
	}
	require.NoError(t, repo.Create(context.Background(), app))

	svc := newTestExportService(repo)
	_, err := svc.AdmitCard(context.Background(), app.ID)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidTransition))

	_, err = svc.AdmitCard(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
