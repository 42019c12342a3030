package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gemcanvas/internal/model"
)

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Get(ctx context.Context, key string) (*model.Record, error) {
	var record model.Record
	if err := r.db.WithContext(ctx).Where("record_key = ?", key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record failed: %w", err)
	}
	return &record, nil
}

func (r *RecordRepository) Upsert(ctx context.Context, key string, value []byte) error {
	record := model.Record{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("upsert record failed: %w", err)
	}
	return nil
}
