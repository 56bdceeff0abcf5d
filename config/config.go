package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup.
type Config struct {
	ServerPort string

	// DBDriver is "mysql" or "sqlite". MySQL is the production store;
	// sqlite keeps local development and tests self-contained.
	DBDriver   string
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitEnabled bool
	GlobalRateLimit  int
	UserRateLimit    int

	// SweepInterval is how often the background expiry sweeper runs.
	// Zero disables the sweeper; lazy close-on-read still applies.
	SweepInterval time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8090"),

		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBUser:     getEnv("DB_USER", "voteuser"),
		DBPassword: getEnv("DB_PASSWORD", "votepassword"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBName:     getEnv("DB_NAME", "pollingdb"),
		SQLitePath: getEnv("SQLITE_PATH", "polling.db"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitEnabled: getEnv("ENABLE_RATE_LIMIT", "") == "true",
		GlobalRateLimit:  getEnvInt("GLOBAL_RATE_LIMIT", 100),
		UserRateLimit:    getEnvInt("USER_RATE_LIMIT", 10),

		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 0),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
