package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"sidebet"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"sidebet"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"sidebet"`

	// Redis
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	// JWT
	JWTSecret       string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTMemberExpiry time.Duration `env:"JWT_MEMBER_EXPIRY" envDefault:"24h"`

	// Server ports
	APIPort     int `env:"API_PORT" envDefault:"3200"`
	MetricsPort int `env:"METRICS_PORT" envDefault:"9200"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// Betting rules
	// MaxStake is the largest stake per bet, in minor units (cents).
	// Default: 25 currency units.
	MaxStake int64 `env:"MAX_STAKE" envDefault:"2500"`
	// DailyStakeMax caps the total a member may stake per UTC day, in
	// minor units. Zero disables the cap.
	DailyStakeMax int64 `env:"DAILY_STAKE_MAX" envDefault:"10000"`
	// WagerRateLimit is the number of write requests allowed per member
	// per minute on the betting endpoints.
	WagerRateLimit int `env:"WAGER_RATE_LIMIT" envDefault:"30"`
	// PotPolicy decides where an unclaimed pot goes: "hold" or
	// "return_to_creator".
	PotPolicy string `env:"POT_POLICY" envDefault:"hold"`

	// Result feed (automatic resolution)
	ResultFeedURL          string        `env:"RESULT_FEED_URL" envDefault:"http://localhost:4100"`
	ResultFeedAPIKey       string        `env:"RESULT_FEED_API_KEY"`
	ResultFeedPollInterval time.Duration `env:"RESULT_FEED_POLL_INTERVAL" envDefault:"5m"`

	// Leaderboard cache
	LeaderboardTTL time.Duration `env:"LEADERBOARD_TTL" envDefault:"30s"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure or inconsistent configuration that must not
// run in production. Set ALLOW_INSECURE_DEFAULTS=true to bypass (local dev only).
func (c *Config) Validate() error {
	if c.PotPolicy != "hold" && c.PotPolicy != "return_to_creator" {
		return fmt.Errorf("POT_POLICY must be 'hold' or 'return_to_creator', got %q", c.PotPolicy)
	}
	if c.MaxStake <= 0 {
		return fmt.Errorf("MAX_STAKE must be positive, got %d", c.MaxStake)
	}
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
