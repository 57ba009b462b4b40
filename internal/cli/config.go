package cli

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the CLI configuration. Every variable carries the SCHOOL_
// prefix, so the base URL is SCHOOL_API_BASE_URL and so on.
type Config struct {
	// APIBaseURL is the platform API root, e.g. https://api.example.com/api/v1.
	APIBaseURL string `env:"API_BASE_URL"`

	// BotToken enables local verification of Telegram login payloads before
	// the network exchange. Optional; the backend always verifies.
	BotToken string `env:"BOT_TOKEN"`

	// TelegramInitData is the Mini-App init-data blob, present when the CLI
	// runs behind the Telegram host bridge.
	TelegramInitData string `env:"TG_INIT_DATA"`

	// TokenStore selects where the session is persisted: file, sqlite or
	// memory. Memory forgets the session on exit and exists for testing.
	TokenStore string `env:"TOKEN_STORE" envDefault:"file"`

	// TokenFile overrides the sealed token file location (file store).
	TokenFile string `env:"TOKEN_FILE"`

	// TokenDB overrides the token database location (sqlite store).
	TokenDB string `env:"TOKEN_DB"`

	// Passphrase seals the token pair at rest in the file store.
	Passphrase string `env:"TOKEN_PASSPHRASE"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadConfig reads configuration from SCHOOL_-prefixed environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "SCHOOL_"}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
