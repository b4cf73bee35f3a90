package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/table-reservations/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	Port              string
	GinMode           string
	DBDriver          string
	DBDSN             string
	Timezone          string
	SweepInterval     time.Duration
	LogLevel          string
	JWTSecret         string
	AdminPasswordHash string
	HostPasswordHash  string
	CORSOrigin        string
	ReportTitle       string
	// RateLimit is requests per second allowed per client IP.
	RateLimit float64
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debug("No .env file loaded")
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBDSN:             getEnv("DB_DSN", "restaurant.db"),
		Timezone:          getEnv("RESTAURANT_TZ", "America/Phoenix"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		HostPasswordHash:  os.Getenv("HOST_PASSWORD_HASH"),
		CORSOrigin:        os.Getenv("CORS_ORIGIN"),
		ReportTitle:       getEnv("REPORT_TITLE", "Reservations Report"),
	}

	interval, err := time.ParseDuration(getEnv("SWEEP_INTERVAL", "1m"))
	if err != nil || interval <= 0 {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL %q", os.Getenv("SWEEP_INTERVAL"))
	}
	cfg.SweepInterval = interval

	rate, err := strconv.ParseFloat(getEnv("RATE_LIMIT", "20"), 64)
	if err != nil || rate <= 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q", os.Getenv("RATE_LIMIT"))
	}
	cfg.RateLimit = rate

	switch cfg.DBDriver {
	case DriverSQLite, DriverMySQL:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q, expected sqlite or mysql", cfg.DBDriver)
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return nil, fmt.Errorf("unsupported GIN_MODE %q", cfg.GinMode)
	}
	return cfg, nil
}

// ErrMissingJWTSecret is returned when the API would sign staff tokens with
// the built-in development key.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set unless GIN_MODE=test")

// CheckServe validates what only the HTTP server needs.
func (c *Config) CheckServe() error {
	if strings.TrimSpace(c.JWTSecret) == "" && c.GinMode != "test" {
		return ErrMissingJWTSecret
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// InitDB opens the configured database. SQLite gets a single connection so
// its file lock never contends with itself.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverMySQL:
		dialector = mysql.Open(cfg.DBDSN)
	default:
		dialector = sqlite.Open(cfg.DBDSN)
	}

	logLevel := logger.Warn
	if cfg.GinMode == "debug" {
		logLevel = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(utils.InfoLogger, logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logLevel,
			Colorful:      false,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open %s database: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	utils.InfoLogger.WithField("driver", cfg.DBDriver).Info("Database connected")
	return db, nil
}
