package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SOP generation status
const (
	SOPStatusProcessing = "processing"
	SOPStatusReady      = "ready"
	SOPStatusDraft      = "draft"
)

// SOP payment status
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// Package tiers
const (
	PackageTierStandard = "standard"
	PackageTierExpert   = "expert"
)

// SOP represents a Statement of Purpose application record.
//
// Country, University, Course and DegreeLevel are the target fields: once a
// payment is approved the record is locked and they become immutable, so one
// payment cannot be reused across multiple application targets. The lock is
// enforced in the service layer (see services.SOPService), never in UI code.
type SOP struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Target fields (frozen once IsLocked)
	Country     string `gorm:"type:varchar(100);not null" json:"country"`
	University  string `gorm:"type:varchar(255);not null" json:"university"`
	Course      string `gorm:"type:varchar(255);not null" json:"course"`
	DegreeLevel string `gorm:"type:varchar(50);not null" json:"degree_level"`

	// Applicant profile fields (always editable by the owner)
	FullName             string `gorm:"type:varchar(255)" json:"full_name"`
	Email                string `gorm:"type:varchar(255)" json:"email"`
	AcademicScore        string `gorm:"type:varchar(50)" json:"academic_score"`
	CurrentQualification string `gorm:"type:varchar(255)" json:"current_qualification"`
	IELTSScore           string `gorm:"type:varchar(50)" json:"ielts_score"`
	GapYears             int    `gorm:"default:0" json:"gap_years"`
	Motivation           string `gorm:"type:text" json:"motivation"`
	FuturePlan           string `gorm:"type:text" json:"future_plan"`
	VisaRefusalReason    string `gorm:"type:text" json:"visa_refusal_reason"`

	// Generation fields
	GeneratedContent *string `gorm:"type:text" json:"generated_content,omitempty"`
	Status           string  `gorm:"type:varchar(20);default:'processing'" json:"status"`

	// Payment fields. Invariant: IsLocked == true iff PaymentStatus == "paid";
	// both are flipped in a single UPDATE by ApplyPayment.
	PaymentStatus string  `gorm:"type:varchar(20);default:'unpaid'" json:"payment_status"`
	IsLocked      bool    `gorm:"default:false" json:"is_locked"`
	PackageTier   *string `gorm:"type:varchar(20)" json:"package_tier"`

	// Relationships
	User             User                  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	SensitiveDetails *SOPSensitiveDetails  `gorm:"foreignKey:SOPID;constraint:OnDelete:CASCADE" json:"-"`
	Verifications    []PaymentVerification `gorm:"foreignKey:SOPID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName specifies the table name for SOP
func (SOP) TableName() string {
	return "sops"
}

// BeforeCreate assigns a UUID primary key
func (s *SOP) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsPaid reports whether the SOP has an approved payment applied
func (s *SOP) IsPaid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}
