package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	AdminToken    string
	PostgresDSN   string
	Redis         RedisConfig
	Matching      MatchingConfig
}

// RedisConfig configures the realtime publisher connection. An empty URL
// disables realtime delivery (notifications still persist).
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MatchingConfig exposes the scoring weight table and acceptance threshold.
// The defaults are the tuned baseline; deployments can adjust them without a
// rebuild, which is why they are configuration and not constants.
type MatchingConfig struct {
	IdentifierWeight   int
	NameExactWeight    int
	NamePartialWeight  int
	DateOfBirthWeight  int
	DateOfIssueWeight  int
	PlaceOfBirthWeight int
	Threshold          int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("IDRECLAIM_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	adminToken := os.Getenv("ADMIN_TOKEN")

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		AdminToken:    adminToken,
		PostgresDSN:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Matching: MatchingConfig{
			IdentifierWeight:   envInt("MATCH_WEIGHT_IDENTIFIER", 60),
			NameExactWeight:    envInt("MATCH_WEIGHT_NAME_EXACT", 30),
			NamePartialWeight:  envInt("MATCH_WEIGHT_NAME_PARTIAL", 20),
			DateOfBirthWeight:  envInt("MATCH_WEIGHT_DATE_OF_BIRTH", 15),
			DateOfIssueWeight:  envInt("MATCH_WEIGHT_DATE_OF_ISSUE", 5),
			PlaceOfBirthWeight: envInt("MATCH_WEIGHT_PLACE_OF_BIRTH", 5),
			Threshold:          envInt("MATCH_THRESHOLD", 40),
		},
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
