package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/madrasa-admission-api/internal/models"
	appErrors "github.com/noah-isme/madrasa-admission-api/pkg/errors"
	"github.com/noah-isme/madrasa-admission-api/pkg/export"
)

var applicationCSVHeaders = []string{
	"Application Number", "Full Name", "Gender", "Birth Date", "Guardian",
	"Phone", "Required Class", "Accommodation", "Status", "Created At",
}

// ExportService renders applications as CSV reports and admit-card PDFs.
type ExportService struct {
	repo   admissionRepository
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(repo admissionRepository, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{repo: repo, csv: csv, pdf: pdf, logger: logger}
}

// ApplicationsCSV renders the filtered application list as CSV.
func (s *ExportService) ApplicationsCSV(ctx context.Context, filter models.AdmissionFilter) ([]byte, error) {
	rows, err := s.collectApplications(ctx, filter)
	if err != nil {
		return nil, err
	}
	data, err := s.csv.Render(export.Dataset{Headers: applicationCSVHeaders, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
	}
	return data, nil
}

// AdmitCard renders the written-test admit card for one application. Only
// candidates marked eligible for the written test get a card.
func (s *ExportService) AdmitCard(ctx context.Context, id string) ([]byte, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if !app.WrittenAdmitEligible {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "application is not admitted to the written test")
	}

	doc := export.Document{
		Title:    "Written Test Admit Card",
		Subtitle: "Madrasa Admission Office",
		Fields: []export.Field{
			{Label: "Application Number", Value: app.ApplicationNumber},
			{Label: "Candidate Name", Value: app.FullName},
			{Label: "Guardian Name", Value: app.GuardianName},
			{Label: "Birth Date", Value: app.BirthDate.Format("2006-01-02")},
			{Label: "Required Class", Value: app.RequiredClass},
			{Label: "Accommodation", Value: app.AccommodationType},
		},
		Footer: "Bring this card and a valid identification document to the written test. Admission to the hall is not possible without it.",
	}
	data, err := s.pdf.RenderDocument(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render admit card")
	}
	return data, nil
}

// collectApplications pages through the repository so exports are not capped
// by the list page size.
func (s *ExportService) collectApplications(ctx context.Context, filter models.AdmissionFilter) ([]map[string]string, error) {
	filter.PageSize = 100
	filter.Page = 1

	var rows []map[string]string
	for {
		apps, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
		}
		for i := range apps {
			rows = append(rows, applicationCSVRow(&apps[i]))
		}
		if len(rows) >= total || len(apps) == 0 {
			return rows, nil
		}
		filter.Page++
	}
}

func applicationCSVRow(app *models.AdmissionApplication) map[string]string {
	return map[string]string{
		"Application Number": app.ApplicationNumber,
		"Full Name":          app.FullName,
		"Gender":             app.Gender,
		"Birth Date":         app.BirthDate.Format("2006-01-02"),
		"Guardian":           fmt.Sprintf("%s (%s)", app.GuardianName, app.GuardianPhone),
		"Phone":              app.Phone,
		"Required Class":     app.RequiredClass,
		"Accommodation":      app.AccommodationType,
		"Status":             string(app.Status),
		"Created At":         app.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
