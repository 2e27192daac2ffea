package repository

import (
	"context"

	"github.com/saeid-a/SocialGoBack/internal/models"
)

type BlockRepository struct {
	db DBTX
}

func NewBlockRepository(db DBTX) *BlockRepository {
	return &BlockRepository{db: db}
}

// Create inserts a directed block edge. Inserting an existing pair is a
// no-op; the unique constraint plus ON CONFLICT keeps the edge singular.
func (r *BlockRepository) Create(ctx context.Context, blockerID, blockedID string, reason *string) error {
	query := `
		INSERT INTO blocks (blocker_id, blocked_id, reason)
		VALUES ($1, $2, $3)
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, blockerID, blockedID, reason)
	return err
}

func (r *BlockRepository) Delete(ctx context.Context, blockerID, blockedID string) error {
	query := `DELETE FROM blocks WHERE blocker_id = $1 AND blocked_id = $2`
	_, err := r.db.Exec(ctx, query, blockerID, blockedID)
	return err
}

// ListBlockedIDs returns the set of user ids the blocker has blocked. Only
// this direction is consulted by the visibility engine.
func (r *BlockRepository) ListBlockedIDs(ctx context.Context, blockerID string) (map[string]struct{}, error) {
	query := `SELECT blocked_id FROM blocks WHERE blocker_id = $1`
	rows, err := r.db.Query(ctx, query, blockerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blocked := make(map[string]struct{})
	for rows.Next() {
		var blockedID string
		if err := rows.Scan(&blockedID); err != nil {
			return nil, err
		}
		blocked[blockedID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return blocked, nil
}

func (r *BlockRepository) ListByBlocker(ctx context.Context, blockerID string) ([]models.BlockRelation, error) {
	query := `
		SELECT id, blocker_id, blocked_id, reason, created_at
		FROM blocks
		WHERE blocker_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, blockerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []models.BlockRelation
	for rows.Next() {
		var relation models.BlockRelation
		if err := rows.Scan(
			&relation.ID,
			&relation.BlockerID,
			&relation.BlockedID,
			&relation.Reason,
			&relation.CreatedAt,
		); err != nil {
			return nil, err
		}
		relations = append(relations, relation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return relations, nil
}
