package model

import (
	"time"

	"gorm.io/datatypes"
)

// Record is one key of the durable key-value store when it is backed by SQL.
type Record struct {
	Key       string         `gorm:"column:record_key;primaryKey;size:191" json:"key"`
	Value     datatypes.JSON `gorm:"not null" json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Record) TableName() string {
	return "kv_records"
}
