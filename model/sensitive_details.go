package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SOPSensitiveDetails holds the applicant's contact and financial data,
// split from the SOP row so a stricter read policy can apply: rows are
// only ever queried scoped by owner id, and the free-text columns are
// encrypted at rest (see utils/crypto).
//
// Created together with the SOP, never deleted independently.
type SOPSensitiveDetails struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SOPID     uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"sop_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Ciphertext columns, AES-256-GCM, base64-encoded
	HomeAddress         string `gorm:"type:text" json:"-"`
	PhoneNumber         string `gorm:"type:text" json:"-"`
	FinancialBackground string `gorm:"type:text" json:"-"`
}

// TableName specifies the table name for SOPSensitiveDetails
func (SOPSensitiveDetails) TableName() string {
	return "sop_sensitive_details"
}

// BeforeCreate assigns a UUID primary key
func (d *SOPSensitiveDetails) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
