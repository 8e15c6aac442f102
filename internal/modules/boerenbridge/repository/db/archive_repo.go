package db

import (
	"context"
	"fmt"

	"github.com/jannikanker/OhHellCardGame/internal/modules/boerenbridge/domain"
	"gorm.io/gorm"
)

// ArchiveRepository implements domain.ArchiveRepository using gorm.
type ArchiveRepository struct {
	db *gorm.DB
}

// NewArchiveRepository creates a new archive repository.
func NewArchiveRepository(db *gorm.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// Archive writes the terminal snapshot and its score rows in one
// transaction.
func (r *ArchiveRepository) Archive(ctx context.Context, archive *domain.GameArchive, scores []domain.PlayerScore) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(archive).Error; err != nil {
			return fmt.Errorf("failed to archive game %s: %w", archive.GameID, err)
		}
		if len(scores) == 0 {
			return nil
		}
		if err := tx.Create(&scores).Error; err != nil {
			return fmt.Errorf("failed to archive scores of game %s: %w", archive.GameID, err)
		}
		return nil
	})
}

// TopScores returns the best archived player scores, highest first.
func (r *ArchiveRepository) TopScores(ctx context.Context, limit int) ([]domain.GameScore, error) {
	var rows []domain.PlayerScore
	err := r.db.WithContext(ctx).
		Order("score DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query top scores: %w", err)
	}

	scores := make([]domain.GameScore, 0, len(rows))
	for _, row := range rows {
		scores = append(scores, domain.GameScore{
			GameID:        row.GameID,
			CompetitionID: row.CompetitionID,
			GameOverAt:    row.GameOverAt,
			Name:          row.Name,
			Score:         row.Score,
		})
	}
	return scores, nil
}
