package configs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// Config holds every tunable the backend reads from the environment.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   string `env:"PORT" envDefault:"3000"`

	JWTSecret    string        `env:"JWT_SECRET"`
	JWTAccessTTL time.Duration `env:"JWT_ACCESS_TTL" envDefault:"24h"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"library"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	DBMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	DBMaxIdleConns int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`

	ReservationWindowDays int    `env:"RESERVATION_WINDOW_DAYS" envDefault:"30"`
	MaxActiveReservations int    `env:"MAX_ACTIVE_RESERVATIONS" envDefault:"3"`
	ReservationSweepCron  string `env:"RESERVATION_SWEEP_CRON" envDefault:"@every 1h"`

	ResetTokenTTL  time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
	TTLPurgeCron   string        `env:"TTL_PURGE_CRON" envDefault:"@every 30m"`
	ExposeResetKey bool          `env:"EXPOSE_RESET_TOKEN" envDefault:"false"`

	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"http://localhost:5173,http://127.0.0.1:5500"`
	LogTimeZone      string `env:"LOG_TIME_ZONE" envDefault:"UTC"`

	CoverDir       string `env:"COVER_DIR" envDefault:"./storage/covers"`
	CoverPublicURL string `env:"COVER_PUBLIC_URL" envDefault:"/covers"`

	MidtransServerKey string `env:"MIDTRANS_SERVER_KEY"`
	MidtransUseProd   bool   `env:"MIDTRANS_USE_PROD" envDefault:"false"`
}

// App is populated by LoadEnv.
var App Config

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" && os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("[CONFIG] no .env file found, using system environment")
		} else {
			log.Println("[CONFIG] .env loaded")
		}
	}

	if err := ParseEnv(&App); err != nil {
		log.Fatalf("[CONFIG] %v", err)
	}

	if App.JWTSecret == "" {
		log.Println("[CONFIG] JWT_SECRET is not set")
	}
}

// ParseEnv fills target from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// PostgresDSN builds the connection string from the loaded config.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=library_backend",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c Config) IsProduction() bool { return c.AppEnv == "production" }

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
	// IgnoreRecordNotFoundError keeps expected misses (revocation lookups,
	// empty queues) out of the error log.
	IgnoreRecordNotFoundError bool
}

func NewGormLogger(level gormLogger.LogLevel) gormLogger.Interface {
	return &GormLogger{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	nl := *l
	nl.LogLevel = level
	return &nl
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error &&
		(!l.IgnoreRecordNotFoundError || !errors.Is(err, gorm.ErrRecordNotFound)):
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
