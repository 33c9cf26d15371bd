package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminAuditLog records every privileged action taken against payment
// verifications and promo codes. Approvals move real money, so each row keeps
// the request payload and the pre-action state of the resource.
type AdminAuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	AdminID    uint           `gorm:"not null;index" json:"admin_id"`
	Action     string         `gorm:"type:varchar(100);not null" json:"action"` // e.g. "verification_approve", "promo_delete"
	Resource   string         `gorm:"type:varchar(100)" json:"resource"`        // e.g. "payment_verifications", "promo_codes"
	ResourceID string         `gorm:"type:varchar(64)" json:"resource_id"`
	OldValue   datatypes.JSON `gorm:"type:jsonb" json:"old_value"`
	NewValue   datatypes.JSON `gorm:"type:jsonb" json:"new_value"`
	IPAddress  string         `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent  string         `gorm:"type:text" json:"user_agent"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Admin User `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"admin,omitempty"`
}

// TableName specifies the table name for AdminAuditLog
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}
