package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Storage backend: "postgres" or "memory"
	StorageBackend string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Staff sign-in
	StaffAccessCode string

	// AI collaborator (OpenAI-compatible chat completions endpoint)
	AIAPIKey      string
	AIAPIURL      string
	AIModel       string
	AIVisionModel string
	AITimeout     time.Duration

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "reserve_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		StorageBackend: getEnv("STORAGE_BACKEND", "postgres"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m")),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h")),

		StaffAccessCode: getEnv("STAFF_ACCESS_CODE", ""),

		AIAPIKey:      getEnv("AI_API_KEY", ""),
		AIAPIURL:      getEnv("AI_API_URL", "https://api.openai.com/v1/chat/completions"),
		AIModel:       getEnv("AI_MODEL", "gpt-4o-mini"),
		AIVisionModel: getEnv("AI_VISION_MODEL", "gpt-4o-mini"),
		AITimeout:     parseDuration(getEnv("AI_TIMEOUT", "60s")),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}
