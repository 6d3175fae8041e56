package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"billiard_pos_backend/pkg/utils"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup.
type Config struct {
	Port string

	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBAutoMigrate bool

	JWTSecret        string
	JWTTTL           time.Duration
	AuthCookieName   string
	AuthCookieSecure bool

	CORSAllowedOrigins []string
	Location           *time.Location

	LogLevel  string
	LogPretty bool

	AdminUsername string
	AdminPassword string

	LoginRatePerMinute int
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	tz := utils.Getenv("TIMEZONE", "Asia/Jakarta")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	cfg := &Config{
		Port: utils.Getenv("PORT", "8080"),

		DBHost:        utils.Getenv("DB_HOST", "localhost"),
		DBPort:        utils.Getenv("DB_PORT", "5432"),
		DBUser:        utils.Getenv("DB_USER", "billiard"),
		DBPassword:    utils.Getenv("DB_PASSWORD", "billiard"),
		DBName:        utils.Getenv("DB_NAME", "billiard_pos"),
		DBSSLMode:     utils.Getenv("DB_SSLMODE", "disable"),
		DBAutoMigrate: utils.GetenvBool("DB_AUTO_MIGRATE", true),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTTTL:           utils.GetenvDuration("JWT_TTL", 12*time.Hour),
		AuthCookieName:   utils.Getenv("AUTH_COOKIE_NAME", "pos_session"),
		AuthCookieSecure: utils.GetenvBool("AUTH_COOKIE_SECURE", false),

		CORSAllowedOrigins: utils.GetenvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		Location:           loc,

		LogLevel:  utils.Getenv("LOG_LEVEL", "info"),
		LogPretty: utils.GetenvBool("LOG_PRETTY", true),

		AdminUsername: utils.Getenv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		LoginRatePerMinute: utils.GetenvInt("LOGIN_RATE_PER_MINUTE", 10),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}
	return cfg, nil
}

// DSN builds the lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
