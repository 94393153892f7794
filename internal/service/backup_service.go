package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/madrasa-admission-api/internal/models"
	"github.com/noah-isme/madrasa-admission-api/pkg/export"
	"github.com/noah-isme/madrasa-admission-api/pkg/storage"
)

const backupRetention = 30 * 24 * time.Hour

type renewalLister interface {
	List(ctx context.Context, filter models.RenewalFilter) ([]models.RenewalApplication, int, error)
}

// BackupService periodically snapshots the application tables as CSV files
// on local disk.
type BackupService struct {
	renewals renewalLister
	exporter *ExportService
	csv      *export.CSVExporter
	store    *storage.LocalStorage
	interval time.Duration
	logger   *zap.Logger
}

// NewBackupService constructs the service.
func NewBackupService(renewals renewalLister, exporter *ExportService, csv *export.CSVExporter, store *storage.LocalStorage, interval time.Duration, logger *zap.Logger) *BackupService {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{
		renewals: renewals,
		exporter: exporter,
		csv:      csv,
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks, taking a snapshot every interval until the context ends.
func (s *BackupService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Snapshot(ctx); err != nil {
				s.logger.Error("backup snapshot failed", zap.Error(err))
			}
		}
	}
}

// Snapshot writes one CSV per table and prunes expired files.
func (s *BackupService) Snapshot(ctx context.Context) error {
	stamp := time.Now().UTC().Format("20060102T150405")

	applications, err := s.exporter.ApplicationsCSV(ctx, models.AdmissionFilter{})
	if err != nil {
		return fmt.Errorf("snapshot applications: %w", err)
	}
	if _, err := s.store.Save(fmt.Sprintf("admissions-%s.csv", stamp), applications); err != nil {
		return err
	}

	renewals, err := s.renewalsCSV(ctx)
	if err != nil {
		return fmt.Errorf("snapshot renewals: %w", err)
	}
	if _, err := s.store.Save(fmt.Sprintf("renewals-%s.csv", stamp), renewals); err != nil {
		return err
	}

	deleted, err := s.store.CleanupOlderThan(backupRetention)
	if err != nil {
		s.logger.Warn("backup cleanup failed", zap.Error(err))
	} else if len(deleted) > 0 {
		s.logger.Info("pruned old backups", zap.Int("count", len(deleted)))
	}

	s.logger.Info("backup snapshot complete", zap.String("stamp", stamp))
	return nil
}

func (s *BackupService) renewalsCSV(ctx context.Context) ([]byte, error) {
	headers := []string{"ID", "Student ID", "Session ID", "Class ID", "Section ID", "Status", "Created At"}
	filter := models.RenewalFilter{Page: 1, PageSize: 100}

	var rows []map[string]string
	for {
		renewals, total, err := s.renewals.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		for i := range renewals {
			r := &renewals[i]
			rows = append(rows, map[string]string{
				"ID":         r.ID,
				"Student ID": r.StudentID,
				"Session ID": r.AcademicSessionID,
				"Class ID":   r.ClassID,
				"Section ID": r.SectionID,
				"Status":     string(r.Status),
				"Created At": r.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		if len(rows) >= total || len(renewals) == 0 {
			break
		}
		filter.Page++
	}
	return s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
}
