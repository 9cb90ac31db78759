package configs

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the sync agent.
type AppConfig struct {
	BaseURL  string
	Email    string
	Password string

	CacheDir  string
	QueueDir  string
	MirrorDSN string

	RefreshSchedule    string
	QueueFlushSchedule string

	Production   bool
	CookieDomain string
}

// Load reads configuration from the environment, with .env support.
func Load() *AppConfig {
	err := godotenv.Load()
	if err != nil {
		log.Println("no .env file found")
	}

	cfg := &AppConfig{
		BaseURL:  os.Getenv("REFINA_BASE_URL"),
		Email:    os.Getenv("REFINA_EMAIL"),
		Password: os.Getenv("REFINA_PASSWORD"),

		CacheDir:  envDefault("REFINA_CACHE_DIR", "/tmp/refina/cache"),
		QueueDir:  envDefault("REFINA_QUEUE_DIR", "/tmp/refina/queue"),
		MirrorDSN: envDefault("REFINA_MIRROR_DSN", "/tmp/refina/mirror.db"),

		RefreshSchedule:    envDefault("REFINA_REFRESH_SCHEDULE", "@every 5m"),
		QueueFlushSchedule: envDefault("REFINA_QUEUE_FLUSH_SCHEDULE", "@every 1m"),

		Production:   os.Getenv("REFINA_ENV") == "production",
		CookieDomain: os.Getenv("REFINA_COOKIE_DOMAIN"),
	}

	if cfg.BaseURL == "" {
		log.Fatal("REFINA_BASE_URL not set")
	}
	if cfg.Email == "" {
		log.Fatal("REFINA_EMAIL not set")
	}
	if cfg.Password == "" {
		log.Fatal("REFINA_PASSWORD not set")
	}

	return cfg
}

func envDefault(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
