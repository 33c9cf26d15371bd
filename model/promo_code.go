package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Discount types for promo codes
const (
	DiscountTypeFixed      = "fixed"
	DiscountTypePercentage = "percentage"
)

// PromoCode represents a checkout discount code. Codes are stored uppercase
// and matched case-insensitively. CurrentUses is only ever advanced through
// the guarded conditional UPDATE in services.PromoService.Redeem, so the
// max-uses cap holds under concurrent checkouts.
type PromoCode struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Code          string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	DiscountType  string     `gorm:"type:varchar(20);not null" json:"discount_type"` // fixed, percentage
	DiscountValue int        `gorm:"not null" json:"discount_value"`
	MaxUses       *int       `json:"max_uses"` // nil = unlimited
	CurrentUses   int        `gorm:"default:0" json:"current_uses"`
	ExpiresAt     *time.Time `json:"expires_at"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
}

// TableName specifies the table name for PromoCode
func (PromoCode) TableName() string {
	return "promo_codes"
}

// BeforeCreate assigns a UUID primary key
func (p *PromoCode) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsExpired reports whether the code's expiry has passed at the given time
func (p *PromoCode) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(now)
}

// IsExhausted reports whether the usage cap has been reached
func (p *PromoCode) IsExhausted() bool {
	return p.MaxUses != nil && p.CurrentUses >= *p.MaxUses
}
