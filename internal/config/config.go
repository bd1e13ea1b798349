package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL string

	// NATS
	NATSURL string

	// Server
	Port        string
	Environment string
	CORSOrigins []string

	// JWT
	JWTSecret      string
	JWTExpiryHours int

	// Payments
	StripeSecretKey       string
	StripeWebhookSecret   string
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string

	// Pagination
	DefaultPageSize int
	MaxPageSize     int

	// Marketplace settings
	DefaultCurrency       string
	DefaultCommissionRate float64

	// Cart lifecycle
	CartAbandonMinutes int
	CartExpireDays     int
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	defaultPageSize, _ := strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "20"))
	maxPageSize, _ := strconv.Atoi(getEnv("MAX_PAGE_SIZE", "100"))
	jwtExpiryHours, _ := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "24"))
	defaultCommission, _ := strconv.ParseFloat(getEnv("DEFAULT_COMMISSION_RATE", "5"), 64)
	cartAbandonMinutes, _ := strconv.Atoi(getEnv("CART_ABANDON_MINUTES", "60"))
	cartExpireDays, _ := strconv.Atoi(getEnv("CART_EXPIRE_DAYS", "30"))

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "gastro_compare"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		NATSURL:  getEnv("NATS_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "")),

		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTExpiryHours: jwtExpiryHours,

		StripeSecretKey:       getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:   getEnv("STRIPE_WEBHOOK_SECRET", ""),
		RazorpayKeyID:         getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayWebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),

		DefaultPageSize: defaultPageSize,
		MaxPageSize:     maxPageSize,

		DefaultCurrency:       getEnv("DEFAULT_CURRENCY", "EUR"),
		DefaultCommissionRate: defaultCommission,

		CartAbandonMinutes: cartAbandonMinutes,
		CartExpireDays:     cartExpireDays,
	}
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate models to keep schema up to date. Adds missing columns but
	// never drops existing ones.
	log.Println("Running auto-migrations...")
	if err := db.AutoMigrate(
		&models.User{},
		&models.Supplier{},
		&models.Category{},
		&models.ProductGroup{},
		&models.Product{},
		&models.CommissionSetting{},
		&models.CommissionRecord{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderSequence{},
		&models.OrderItem{},
		&models.OrderCustomer{},
		&models.OrderShipping{},
		&models.OrderPayment{},
		&models.OrderTimeline{},
		&models.Conversation{},
		&models.ChatMessage{},
		&models.Review{},
	); err != nil {
		return nil, fmt.Errorf("failed to run auto-migrations: %w", err)
	}
	log.Println("Auto-migrations completed successfully")

	return db, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
