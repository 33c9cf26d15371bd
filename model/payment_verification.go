package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Manual payment channels. There is no webhook for any of these; a human
// admin reviews every submitted transaction id.
const (
	PaymentMethodJazzCash  = "jazzcash"
	PaymentMethodEasypaisa = "easypaisa"
	PaymentMethodHBL       = "hbl"
)

// Verification statuses. pending is the only non-terminal state.
const (
	VerificationStatusPending  = "pending"
	VerificationStatusApproved = "approved"
	VerificationStatusRejected = "rejected"
)

// PaymentVerification is a user-submitted claim of a completed manual
// bank/wallet transfer, awaiting admin review. Rows are append-only from the
// user's side; an admin transitions pending -> approved or pending -> rejected
// exactly once.
type PaymentVerification struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	SOPID     *uuid.UUID     `gorm:"type:uuid;index" json:"sop_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PaymentMethod string  `gorm:"type:varchar(20);not null" json:"payment_method"`
	SenderName    string  `gorm:"type:varchar(255);not null" json:"sender_name"`
	TransactionID string  `gorm:"type:varchar(25);not null" json:"transaction_id"`
	Amount        int     `gorm:"not null" json:"amount"` // final post-discount price, PKR
	PackageTier   *string `gorm:"type:varchar(20)" json:"package_tier"`
	ScreenshotURL *string `gorm:"type:text" json:"screenshot_url"`

	// PromoCode records the code applied at submission. Its usage counter is
	// incremented when this verification is approved, not at validation time.
	PromoCode *string `gorm:"type:varchar(50)" json:"promo_code"`

	Status     string  `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	AdminNotes *string `gorm:"type:text" json:"admin_notes"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	SOP  *SOP `gorm:"foreignKey:SOPID" json:"sop,omitempty"`
}

// TableName specifies the table name for PaymentVerification
func (PaymentVerification) TableName() string {
	return "payment_verifications"
}

// BeforeCreate assigns a UUID primary key
func (v *PaymentVerification) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// IsTerminal reports whether the verification has been processed
func (v *PaymentVerification) IsTerminal() bool {
	return v.Status != VerificationStatusPending
}
