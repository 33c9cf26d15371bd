package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/naeemsabir/sopcraft-api/model"
)

// DeactivateExpiredPromos flips is_active off for promo codes whose expiry has
// passed. Validation already refuses expired codes; this keeps the admin list
// honest and the table cheap to scan.
// Runs every hour.
func (m *CronManager) DeactivateExpiredPromos() {
	jobName := "deactivate_expired_promos"

	result := m.db.Model(&model.PromoCode{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at < ?", true, time.Now()).
		UpdateColumn("is_active", false)

	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to deactivate expired promos: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Deactivated %d expired promo codes", result.RowsAffected))
}

// PendingVerificationDigest counts verifications that have been waiting on an
// admin for more than 12 hours. The count lands in the cron log so an operator
// scanning the table spots a stalled review queue.
// Runs every 30 minutes.
func (m *CronManager) PendingVerificationDigest() {
	jobName := "pending_verification_digest"

	cutoff := time.Now().Add(-12 * time.Hour)

	var staleCount int64
	err := m.db.Model(&model.PaymentVerification{}).
		Where("status = ? AND created_at < ?", model.VerificationStatusPending, cutoff).
		Count(&staleCount).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to count stale verifications: %w", err))
		return
	}

	var totalPending int64
	err = m.db.Model(&model.PaymentVerification{}).
		Where("status = ?", model.VerificationStatusPending).
		Count(&totalPending).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to count pending verifications: %w", err))
		return
	}

	if staleCount > 0 {
		log.Printf("[CRON] %d payment verifications pending for over 12 hours", staleCount)
	}

	m.logJobComplete(jobName, fmt.Sprintf("%d pending, %d waiting over 12h", totalPending, staleCount))
}

// CleanupOldData removes old data to keep the database clean
// Runs daily at 2 AM
func (m *CronManager) CleanupOldData() {
	jobName := "cleanup_old_data"

	totalCleaned := 0

	// 1. Clean up expired JWT tokens from blacklist (older than 30 days)
	cutoffTokens := time.Now().Add(-30 * 24 * time.Hour)
	result := m.db.Where("expires_at < ?", cutoffTokens).Delete(&model.JWTTokenBlacklist{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to clean token blacklist: %v", result.Error)
	} else {
		log.Printf("[CRON] Cleaned %d expired tokens", result.RowsAffected)
		totalCleaned += int(result.RowsAffected)
	}

	// 2. Clean up old cron job logs (keep only last 90 days)
	cutoffLogs := time.Now().Add(-90 * 24 * time.Hour)
	result = m.db.Where("created_at < ?", cutoffLogs).Delete(&model.CronJobLog{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to clean cron logs: %v", result.Error)
	} else {
		log.Printf("[CRON] Cleaned %d old cron logs", result.RowsAffected)
		totalCleaned += int(result.RowsAffected)
	}

	// 3. Clean up old admin audit logs (keep only last 365 days; payment
	// decisions stay reviewable for a year)
	cutoffAudit := time.Now().Add(-365 * 24 * time.Hour)
	result = m.db.Where("created_at < ?", cutoffAudit).Delete(&model.AdminAuditLog{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to clean audit logs: %v", result.Error)
	} else {
		log.Printf("[CRON] Cleaned %d old audit logs", result.RowsAffected)
		totalCleaned += int(result.RowsAffected)
	}

	m.logJobComplete(jobName, fmt.Sprintf("Cleaned up %d total records", totalCleaned))
}
