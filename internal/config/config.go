package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port   string
	Env    string
	APIUrl string

	// LAKE (Fedora) REST API
	LakeBaseURL string

	// Triplestore SPARQL endpoint
	TstoreBaseURL string

	// Datagrinder image processing service
	DatagrinderBaseURL string

	// UID minter database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Master generation
	MasterMaxWidth  int
	MasterMaxHeight int

	// Property handling
	IgnoreBrokenRels bool

	// Optional Postgres-side uniqueness guard for legacy UIDs. Off by
	// default: the repository transaction remains the only consistency
	// boundary, so the duplicate-check-then-commit window stays open as in
	// the upstream system.
	LegacyUIDGuardEnabled bool

	// Security
	RateLimitRequests int
	RateLimitDuration time.Duration

	// CORS
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

func New() *Config {
	return &Config{
		// Server
		Port:   getEnv("PORT", "8080"),
		Env:    getEnv("ENV", "development"),
		APIUrl: getEnv("API_URL", "http://localhost:8080"),

		// LAKE
		LakeBaseURL: getEnv("LAKE_BASE_URL", "http://localhost:8983/fcrepo/rest/"),

		// Triplestore
		TstoreBaseURL: getEnv("TSTORE_BASE_URL", "http://localhost:3030/lake/sparql"),

		// Datagrinder
		DatagrinderBaseURL: getEnv("DATAGRINDER_BASE_URL", "http://localhost:5000/dgr/"),

		// UID minter database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "uidminter"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "uidminter_db"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Master generation
		MasterMaxWidth:  getEnvAsInt("MASTER_MAX_WIDTH", 4096),
		MasterMaxHeight: getEnvAsInt("MASTER_MAX_HEIGHT", 4096),

		// Property handling
		IgnoreBrokenRels: getEnv("IGNORE_BROKEN_RELS", "true") == "true",

		// Legacy UID guard
		LegacyUIDGuardEnabled: getEnv("LEGACY_UID_GUARD_ENABLED", "false") == "true",

		// Security
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitDuration: getEnvAsDuration("RATE_LIMIT_DURATION", "1m"),

		// CORS
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		AllowedMethods: getEnvAsSlice("ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		AllowedHeaders: getEnvAsSlice("ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Hour
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
