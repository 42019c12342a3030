package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"gemcanvas/internal/model"
)

type JournalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

func (r *JournalRepository) Create(ctx context.Context, entry *model.JournalEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create journal entry failed: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries first, optionally for one gem.
func (r *JournalRepository) ListRecent(ctx context.Context, gemID string, limit int) ([]model.JournalEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := r.db.WithContext(ctx).Order("occurred_at DESC").Order("id DESC").Limit(limit)
	if gemID != "" {
		q = q.Where("gem_id = ?", gemID)
	}
	var entries []model.JournalEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list journal entries failed: %w", err)
	}
	return entries, nil
}
