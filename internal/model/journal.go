package model

import "time"

const (
	JournalGemCreated      = "gem.created"
	JournalGemDeleted      = "gem.deleted"
	JournalCanvasArchived  = "canvas.archived"
	JournalCanvasDiscarded = "canvas.discarded"
)

// JournalEntry records one lifecycle event of a Gem.
type JournalEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Kind       string    `gorm:"size:32;not null;index" json:"kind"`
	GemID      string    `gorm:"size:64;not null;index" json:"gem_id"`
	GemName    string    `gorm:"size:256" json:"gem_name"`
	CanvasID   string    `gorm:"size:64" json:"canvas_id,omitempty"`
	Summary    string    `gorm:"type:text" json:"summary"`
	OccurredAt time.Time `gorm:"not null;index" json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}
