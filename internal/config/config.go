package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Category policies applied when a deal names a category that is not registered.
const (
	CategoryPolicyFree     = "free"
	CategoryPolicyRegister = "register"
	CategoryPolicyStrict   = "strict"
)

// Store backends.
const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

type Config struct {
	ProjectID string `env:"GOOGLE_CLOUD_PROJECT"`
	Port      string `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	Store     string `env:"STORE" envDefault:"firestore"`

	TimezoneName    string        `env:"TIMEZONE" envDefault:"Local"`
	RetentionDays   int           `env:"RETENTION_DAYS" envDefault:"15"`
	SoonWindow      time.Duration `env:"SOON_WINDOW" envDefault:"48h"`
	CheapPriceLimit float64       `env:"CHEAP_PRICE_LIMIT" envDefault:"499"`
	TechCategories  []string      `env:"TECH_CATEGORIES" envSeparator:"," envDefault:"Electronics,Mobile"`
	CategoryPolicy  string        `env:"CATEGORY_POLICY" envDefault:"free"`
	SeedDemoDeals   bool          `env:"SEED_DEMO_DEALS" envDefault:"false"`
	SeedFile        string        `env:"SEED_FILE"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`

	DiscordWebhookURL    string `env:"DISCORD_WEBHOOK_URL"`
	DiscordRatePerMinute int    `env:"DISCORD_RATE_PER_MINUTE" envDefault:"20"`

	AmazonAffiliateTag  string   `env:"AMAZON_AFFILIATE_TAG"`
	PreviewAllowedHosts []string `env:"PREVIEW_ALLOWED_HOSTS" envSeparator:","`
	PreviewSelectors    string   `env:"PREVIEW_SELECTORS_PATH"`

	AdminClaim  string   `env:"ADMIN_CLAIM" envDefault:"admin"`
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	location *time.Location
}

// Location is the zone used for calendar-day boundaries, resolved from TIMEZONE.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// Load reads an optional .env file (path from ENV_FILE, default ".env") and
// parses the environment into a Config.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finish() error {
	switch c.Store {
	case StoreFirestore:
		if c.ProjectID == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT environment variable is required but not set")
		}
	case StoreMemory:
		slog.Warn("Using in-memory store, data will not survive a restart")
	default:
		return fmt.Errorf("invalid STORE %q", c.Store)
	}

	switch c.CategoryPolicy {
	case CategoryPolicyFree, CategoryPolicyRegister, CategoryPolicyStrict:
	default:
		return fmt.Errorf("invalid CATEGORY_POLICY %q", c.CategoryPolicy)
	}

	if c.RetentionDays <= 0 {
		return fmt.Errorf("invalid RETENTION_DAYS %d: must be positive", c.RetentionDays)
	}
	if c.SoonWindow <= 0 {
		return fmt.Errorf("invalid SOON_WINDOW %s: must be positive", c.SoonWindow)
	}

	loc, err := time.LoadLocation(c.TimezoneName)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.TimezoneName, err)
	}
	c.location = loc

	c.TechCategories = trimAll(c.TechCategories)
	c.PreviewAllowedHosts = trimAll(c.PreviewAllowedHosts)
	c.AdminEmails = trimAll(c.AdminEmails)

	if c.GeminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, AI categorization will be unavailable")
	}
	if c.DiscordWebhookURL == "" {
		slog.Info("DISCORD_WEBHOOK_URL not set, new deals will not be announced")
	}
	return nil
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
