package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/db"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS"`
	DefaultClinic   string        `mapstructure:"DEFAULT_CLINIC"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	AuthIssuer      string        `mapstructure:"AUTH_ISSUER"`
	AuthAudience    string        `mapstructure:"AUTH_AUDIENCE"`
	AuthSigningKey  string        `mapstructure:"AUTH_SIGNING_KEY"`
	RateLimitRPS    float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `mapstructure:"RATE_LIMIT_BURST"`
	ExportDir       string        `mapstructure:"EXPORT_DIR"`
	FHIRPushURL     string        `mapstructure:"FHIR_PUSH_URL"`
	FHIRPushToken   string        `mapstructure:"FHIR_PUSH_TOKEN"`
	FHIRPushTimeout time.Duration `mapstructure:"FHIR_PUSH_TIMEOUT"`
	FHIRPushRetries int           `mapstructure:"FHIR_PUSH_RETRIES"`
}

// minSigningKeyLen is the HS256 key length below which tokens are rejected
// outside development.
const minSigningKeyLen = 32

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"DEFAULT_CLINIC", "CORS_ORIGINS",
	"AUTH_ISSUER", "AUTH_AUDIENCE", "AUTH_SIGNING_KEY",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"EXPORT_DIR",
	"FHIR_PUSH_URL", "FHIR_PUSH_TOKEN", "FHIR_PUSH_TIMEOUT", "FHIR_PUSH_RETRIES",
}

// Load reads configuration from the environment and an optional .env file in
// the working directory. The database URL is not checked here because the
// offline commands run without one; see RequireDatabase.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DEFAULT_CLINIC", "default")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("EXPORT_DIR", "exports")
	v.SetDefault("FHIR_PUSH_TIMEOUT", "10s")
	v.SetDefault("FHIR_PUSH_RETRIES", 2)

	for _, k := range keys {
		v.BindEnv(k)
	}

	// a missing .env is fine
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	for i := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RequireDatabase reports a missing DATABASE_URL for commands that need one.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// Validate checks the settings the HTTP server depends on. Outside
// development a signing key of at least 32 bytes is required, since the
// development auth mode grants admin to unauthenticated requests.
func (c *Config) Validate() error {
	switch c.Env {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENV must be \"development\", \"staging\" or \"production\", got %q", c.Env)
	}
	if !c.IsDev() {
		if c.AuthSigningKey == "" {
			return fmt.Errorf("AUTH_SIGNING_KEY is required when ENV=%s", c.Env)
		}
		if len(c.AuthSigningKey) < minSigningKeyLen {
			return fmt.Errorf("AUTH_SIGNING_KEY must be at least %d bytes, got %d", minSigningKeyLen, len(c.AuthSigningKey))
		}
	}
	if !db.IsValidClinicID(c.DefaultClinic) {
		return fmt.Errorf("DEFAULT_CLINIC %q is not a valid clinic identifier", c.DefaultClinic)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.FHIRPushURL != "" && c.FHIRPushTimeout <= 0 {
		return fmt.Errorf("FHIR_PUSH_TIMEOUT must be positive when FHIR_PUSH_URL is set")
	}
	return nil
}
