package middleware

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/naeemsabir/sopcraft-api/database"
	"github.com/naeemsabir/sopcraft-api/model"
	"gorm.io/gorm"
)

// AdminAuditLog records an audit entry for an admin action. Approvals and promo
// edits move money, so the pre-action state of the resource is captured before
// the handler runs.
func AdminAuditLog(store database.Storage, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminUser, ok := GetUser(c)
		if !ok {
			return c.Next() // Continue without logging if user not found
		}

		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			return c.Next() // Continue without logging if db error
		}

		resourceID := c.Params("id")

		// Capture pre-action state of the resource being mutated
		var oldValue interface{}
		if resourceID != "" && (c.Method() == "POST" || c.Method() == "PUT" || c.Method() == "PATCH" || c.Method() == "DELETE") {
			switch resource {
			case "payment_verifications":
				var verification model.PaymentVerification
				if err := db.Where("id = ?", resourceID).First(&verification).Error; err == nil {
					oldValue = verification
				}
			case "promo_codes":
				var promo model.PromoCode
				if err := db.Where("id = ?", resourceID).First(&promo).Error; err == nil {
					oldValue = promo
				}
			}
		}

		// Capture request body as the "new value"
		var newValue interface{}
		if c.Method() == "POST" || c.Method() == "PUT" || c.Method() == "PATCH" {
			body := c.Body()
			if len(body) > 0 {
				json.Unmarshal(body, &newValue)
			}
		}

		ip := c.IP()
		userAgent := c.Get("User-Agent")

		// Execute the actual handler
		err := c.Next()

		// Log the action after completion
		go func() {
			oldValueJSON, _ := json.Marshal(oldValue)
			newValueJSON, _ := json.Marshal(newValue)

			auditLog := model.AdminAuditLog{
				AdminID:    adminUser.ID,
				Action:     action,
				Resource:   resource,
				ResourceID: resourceID,
				OldValue:   oldValueJSON,
				NewValue:   newValueJSON,
				IPAddress:  ip,
				UserAgent:  userAgent,
			}

			db.Create(&auditLog)
		}()

		return err
	}
}
