package repository

import (
	"context"

	"github.com/saeid-a/SocialGoBack/internal/models"
)

type CreateReportInput struct {
	ReporterID string
	ReportedID string
	Reason     string
	Details    *string
}

type ReportRepository struct {
	db DBTX
}

func NewReportRepository(db DBTX) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create always inserts a new row; repeat reports for the same pair are
// kept as separate records.
func (r *ReportRepository) Create(ctx context.Context, input CreateReportInput) (*models.Report, error) {
	query := `
		INSERT INTO reports (reporter_id, reported_id, reason, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, reporter_id, reported_id, reason, details, status, created_at
	`
	var report models.Report
	err := r.db.QueryRow(ctx, query,
		input.ReporterID,
		input.ReportedID,
		input.Reason,
		input.Details,
	).Scan(
		&report.ID,
		&report.ReporterID,
		&report.ReportedID,
		&report.Reason,
		&report.Details,
		&report.Status,
		&report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &report, nil
}
