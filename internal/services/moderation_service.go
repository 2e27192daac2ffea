package services

import (
	"context"
	"errors"

	"github.com/saeid-a/SocialGoBack/internal/models"
	"github.com/saeid-a/SocialGoBack/internal/repository"
)

var (
	ErrSelfAction    = errors.New("cannot target yourself")
	ErrInvalidReason = errors.New("invalid report reason")
)

type blockStore interface {
	Create(ctx context.Context, blockerID, blockedID string, reason *string) error
	Delete(ctx context.Context, blockerID, blockedID string) error
	ListByBlocker(ctx context.Context, blockerID string) ([]models.BlockRelation, error)
}

type reportStore interface {
	Create(ctx context.Context, input repository.CreateReportInput) (*models.Report, error)
}

type ModerationService struct {
	blockRepo  blockStore
	reportRepo reportStore
}

func NewModerationService(blockRepo blockStore, reportRepo reportStore) *ModerationService {
	return &ModerationService{
		blockRepo:  blockRepo,
		reportRepo: reportRepo,
	}
}

// BlockUser inserts a directed block edge. Blocking the same user twice is a
// no-op, not an error.
func (s *ModerationService) BlockUser(ctx context.Context, blockerID, blockedID string, reason *string) error {
	if blockerID == blockedID {
		return ErrSelfAction
	}
	return s.blockRepo.Create(ctx, blockerID, blockedID, reason)
}

// UnblockUser removes the edge if present; absence is not an error.
func (s *ModerationService) UnblockUser(ctx context.Context, blockerID, blockedID string) error {
	return s.blockRepo.Delete(ctx, blockerID, blockedID)
}

// ListBlocked returns the viewer's own block list, newest first.
func (s *ModerationService) ListBlocked(ctx context.Context, blockerID string) ([]models.BlockRelation, error) {
	return s.blockRepo.ListByBlocker(ctx, blockerID)
}

// ReportUser always inserts a new report row; repeat reports for the same
// pair are kept. The reason must be one of the enumerated categories.
func (s *ModerationService) ReportUser(ctx context.Context, reporterID, reportedID, reason string, details *string) (*models.Report, error) {
	if reporterID == reportedID {
		return nil, ErrSelfAction
	}
	if _, ok := models.ReportReasons[reason]; !ok {
		return nil, ErrInvalidReason
	}
	return s.reportRepo.Create(ctx, repository.CreateReportInput{
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     reason,
		Details:    details,
	})
}
