package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/naeemsabir/sopcraft-api/config"
	"github.com/naeemsabir/sopcraft-api/database"
	"github.com/naeemsabir/sopcraft-api/handlers"
	admin_handlers "github.com/naeemsabir/sopcraft-api/handlers/admin"
	auth_handlers "github.com/naeemsabir/sopcraft-api/handlers/auth"
	payment_handlers "github.com/naeemsabir/sopcraft-api/handlers/payment"
	promo_handlers "github.com/naeemsabir/sopcraft-api/handlers/promo"
	sop_handlers "github.com/naeemsabir/sopcraft-api/handlers/sop"
	"github.com/naeemsabir/sopcraft-api/services"
	"github.com/naeemsabir/sopcraft-api/services/llm"
	"github.com/naeemsabir/sopcraft-api/services/spaces"
	"github.com/naeemsabir/sopcraft-api/utils/auth"
	"github.com/naeemsabir/sopcraft-api/utils/cache"
	"github.com/naeemsabir/sopcraft-api/utils/crypto"
	"github.com/naeemsabir/sopcraft-api/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	env, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if env.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := env.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "sopcraft-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret:        env.JWT_SECRET,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Initialize Redis cache for brute force protection
	redisURL := env.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Field cipher for applicant sensitive details at rest
	if env.DATA_ENCRYPTION_SECRET == "" {
		log.Fatal("DATA_ENCRYPTION_SECRET environment variable is not set")
	}
	cipher, err := crypto.NewFieldCipher(env.DATA_ENCRYPTION_SECRET)
	if err != nil {
		log.Fatalf("Failed to initialize field cipher: %v", err)
	}

	// LLM client for SOP drafting
	generator := llm.NewClient(llm.Config{
		APIKey:  env.LLM_API_KEY,
		BaseURL: env.LLM_GATEWAY_URL,
		Model:   env.LLM_MODEL,
	})

	// Spaces client for payment screenshots. Optional: without credentials the
	// upload endpoint degrades to 503.
	var storageClient *spaces.Client
	if env.DO_SPACES_KEY != "" && env.DO_SPACES_SECRET != "" {
		storageClient, err = spaces.NewClient(spaces.Config{
			AccessKey: env.DO_SPACES_KEY,
			SecretKey: env.DO_SPACES_SECRET,
			Bucket:    env.DO_SPACES_BUCKET,
			Region:    env.DO_SPACES_REGION,
			Endpoint:  env.DO_SPACES_ENDPOINT,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize Spaces client: %v. Screenshot uploads will be disabled.", err)
		}
	}

	pricing := services.Pricing{
		Standard: env.SOP_STANDARD_PRICE,
		Expert:   env.SOP_EXPERT_PRICE,
	}

	// Initialize services
	promoService := services.NewPromoService(db)
	sopService := services.NewSOPService(db, cipher)
	verificationService := services.NewVerificationService(db, promoService, sopService, pricing)
	generationService := services.NewGenerationService(db, sopService, generator)

	// Initialize handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	sopHandler := sop_handlers.NewSOPHandler(sopService, generationService)
	paymentHandler := payment_handlers.NewPaymentHandler(verificationService, storageClient)
	promoHandler := promo_handlers.NewPromoHandler(promoService, pricing)
	adminHandler := admin_handlers.NewAdminHandler(db, verificationService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:5173"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// SOP routes (all protected, owner-scoped in the service layer)
	sops := api.Group("/sops", authMiddleware.Required())
	sops.Post("/", sopHandler.CreateSOP)
	sops.Get("/", sopHandler.ListSOPs)
	sops.Get("/:id", sopHandler.GetSOP)
	sops.Put("/:id/profile", sopHandler.UpdateProfile)
	sops.Put("/:id/target", sopHandler.UpdateTarget)
	sops.Put("/:id/content", sopHandler.UpdateContent)
	sops.Post("/:id/generate", sopHandler.Generate)
	sops.Get("/:id/sensitive", sopHandler.GetSensitive)
	sops.Put("/:id/sensitive", sopHandler.UpdateSensitive)

	// Payment routes
	payments := api.Group("/payments")
	payments.Get("/methods", paymentHandler.GetPaymentMethods) // Public: channel account details
	payments.Post("/verifications", authMiddleware.Required(), paymentHandler.SubmitVerification)
	payments.Get("/verifications", authMiddleware.Required(), paymentHandler.ListVerifications)
	payments.Post("/verifications/:id/screenshot", authMiddleware.Required(), paymentHandler.UploadScreenshot)

	// Promo validation (protected, dry-run only)
	api.Post("/promos/validate", authMiddleware.Required(), promoHandler.Validate)

	// Admin routes: verification review queue and promo code management
	admin := api.Group("/admin", authMiddleware.RequireAdmin())
	admin.Get("/verifications", adminHandler.ListVerifications)
	admin.Post("/verifications/:id/approve",
		middleware.AdminAuditLog(store, "verification_approve", "payment_verifications"),
		adminHandler.ApproveVerification)
	admin.Post("/verifications/:id/reject",
		middleware.AdminAuditLog(store, "verification_reject", "payment_verifications"),
		adminHandler.RejectVerification)

	admin.Get("/promo-codes", adminHandler.ListPromoCodes)
	admin.Post("/promo-codes",
		middleware.AdminAuditLog(store, "promo_create", "promo_codes"),
		adminHandler.CreatePromoCode)
	admin.Patch("/promo-codes/:id",
		middleware.AdminAuditLog(store, "promo_update", "promo_codes"),
		adminHandler.UpdatePromoCode)
	admin.Delete("/promo-codes/:id",
		middleware.AdminAuditLog(store, "promo_delete", "promo_codes"),
		adminHandler.DeletePromoCode)
}
