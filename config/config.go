package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/devlearn-backend/models"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

var DB *gorm.DB

type Config struct {
	Env             string
	Port            string
	DatabaseURL     string
	DatabaseURLTest string
	CORSOrigins     []string
	GoogleClientID  string
	LiveCodeTimeout time.Duration
	AdminEmail      string
	AdminPassword   string
}

// Load đọc cấu hình từ biến môi trường (đã nạp .env ở main)
func Load() Config {
	cfg := Config{
		Env:             getEnv("APP_ENV", EnvDevelopment),
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DatabaseURLTest: os.Getenv("DATABASE_URL_TEST"),
		GoogleClientID:  os.Getenv("GOOGLE_CLIENT_ID"),
		AdminEmail:      getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		LiveCodeTimeout: 2 * time.Second,
	}

	for _, origin := range strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if raw := os.Getenv("LIVECODE_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.LiveCodeTimeout = d
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = dsnFromParts()
	}
	return cfg
}

func (c Config) IsTest() bool {
	return c.Env == EnvTest
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// DSN chọn chuỗi kết nối theo môi trường; môi trường test dùng DB riêng
func (c Config) DSN() string {
	if !c.IsTest() {
		return c.DatabaseURL
	}
	if c.DatabaseURLTest != "" {
		return c.DatabaseURLTest
	}
	return testDSN(c.DatabaseURL)
}

// InitDB kết nối + migrate. Ngoài môi trường test, lỗi kết nối sẽ dừng tiến trình.
func InitDB(cfg Config) error {
	db, err := Connect(cfg)
	if err == nil {
		err = Migrate(db)
	}
	if err != nil {
		if !cfg.IsTest() {
			zap.L().Fatal("không thể khởi tạo database", zap.Error(err))
		}
		return err
	}

	DB = db
	zap.L().Info("postgreSQL connected & migrated successfully", zap.String("env", cfg.Env))
	return nil
}

// Connect mở kết nối PostgreSQL với connection pool như cấu hình cũ
func Connect(cfg Config) (*gorm.DB, error) {
	dsn := cfg.DSN()
	if dsn == "" {
		return nil, fmt.Errorf("thiếu DATABASE_URL hoặc DB_HOST/DB_NAME")
	}

	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("không thể kết nối database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("không thể lấy sql.DB từ gorm: %w", err)
	}

	// Connection Pooling config
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("không thể ping database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.Topic{},
	); err != nil {
		return fmt.Errorf("autoMigrate lỗi: %w", err)
	}
	return nil
}

func dsnFromParts() string {
	dbHost := os.Getenv("DB_HOST")
	dbName := os.Getenv("DB_NAME")
	if dbHost == "" || dbName == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Ho_Chi_Minh",
		dbHost, os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), dbName, getEnv("DB_PORT", "5432"),
	)
}

// testDSN thêm hậu tố _test vào tên database, hỗ trợ cả dạng URL lẫn key=value
func testDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.Host != "" {
		if name := strings.Trim(u.Path, "/"); name != "" {
			u.Path = "/" + name + "_test"
		}
		return u.String()
	}

	parts := strings.Fields(dsn)
	for i, part := range parts {
		if strings.HasPrefix(part, "dbname=") {
			parts[i] = part + "_test"
		}
	}
	return strings.Join(parts, " ")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
