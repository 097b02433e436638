package pkg

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BMS-2026/crm-service/internal/config"
	"github.com/BMS-2026/crm-service/internal/models"
)

const (
	dbConnectAttempts = 5
	dbConnectBackoff  = 3 * time.Second
)

// InitDatabase opens the Postgres connection, retrying while the database
// comes up, then runs migrations and seeds the bootstrap admin account.
func InitDatabase(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	for attempt := 1; attempt <= dbConnectAttempts; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
		if err == nil {
			break
		}
		logger.Warn("Database connection failed, retrying",
			"attempt", attempt, "max_attempts", dbConnectAttempts, "error", err)
		time.Sleep(dbConnectBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", dbConnectAttempts, err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.CallLog{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := seedAdmin(db, cfg, logger); err != nil {
		return nil, err
	}

	return db, nil
}

// seedAdmin creates the configured admin account when no users exist yet,
// so a fresh deployment can log in and create the rest of the staff.
func seedAdmin(db *gorm.DB, cfg *config.Config, logger *slog.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	if cfg.SeedAdminPassword == "" {
		logger.Warn("Users table is empty and SEED_ADMIN_PASSWORD is unset, skipping admin seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}

	admin := &models.User{
		Email:        cfg.SeedAdminEmail,
		Name:         cfg.SeedAdminName,
		Role:         models.RoleAdmin,
		PasswordHash: string(hash),
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	logger.Info("Seeded bootstrap admin account", "email", admin.Email)
	return nil
}
