package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered applicant or admin
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	FullName     string         `gorm:"not null" json:"full_name"`
	Role         string         `gorm:"type:varchar(20);default:'user'" json:"role"` // user, admin
	IsPremium    bool           `gorm:"default:false" json:"is_premium"`
	TokenVersion int            `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships
	SOPs           []SOP                 `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Verifications  []PaymentVerification `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AuditLog       []AdminAuditLog       `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
