package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/naeemsabir/sopcraft-api/model"
	"github.com/naeemsabir/sopcraft-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedPromoCodes(); err != nil {
		return fmt.Errorf("failed to seed promo codes: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user
func (s *Seeder) SeedAdminUser() error {
	// Check if admin already exists
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Admin user already exists, skipping...")
		return nil
	}

	// Get admin credentials from environment variables
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("⚠️  ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin user creation")
		return nil
	}

	// Hash password
	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		FullName:     "System Administrator",
		Role:         "admin",
		TokenVersion: 0,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Created admin user: %s\n", admin.Email)
	return nil
}

// SeedPromoCodes creates the launch promo codes
func (s *Seeder) SeedPromoCodes() error {
	// Check if promo codes already exist
	var count int64
	if err := s.db.Model(&model.PromoCode{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Promo codes already exist, skipping...")
		return nil
	}

	launchCap := 100
	launchExpiry := time.Now().AddDate(0, 3, 0)

	codes := []model.PromoCode{
		{
			Code:          "LAUNCH50",
			DiscountType:  model.DiscountTypePercentage,
			DiscountValue: 50,
			MaxUses:       &launchCap,
			ExpiresAt:     &launchExpiry,
			IsActive:      true,
		},
		{
			Code:          "STUDENT200",
			DiscountType:  model.DiscountTypeFixed,
			DiscountValue: 200,
			IsActive:      true,
		},
	}

	if err := s.db.Create(&codes).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d promo codes\n", len(codes))
	return nil
}

// RunSeeds is a convenience function to run all seeds
func RunSeeds(db *gorm.DB) error {
	seeder := NewSeeder(db)
	return seeder.SeedAll()
}
