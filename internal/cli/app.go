package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/codingbro/school/pkg/identity"
	"github.com/codingbro/school/pkg/schoolsdk"
	"github.com/codingbro/school/pkg/slogx"
	"github.com/codingbro/school/pkg/tokenstore"
)

const Version = "0.3.0"

// App wires the SDK pieces into the command-line client: config, logger,
// token store, authenticated session and login flow.
type App struct {
	cfg      *Config
	log      *slog.Logger
	client   *schoolsdk.SDKClient
	session  *schoolsdk.Session
	flow     *schoolsdk.LoginFlow
	resolver *identity.Resolver

	// close releases the token store when it holds resources (sqlite).
	close func() error
}

// New builds the application from its configuration.
func New(cfg *Config) (*App, error) {
	log := slogx.New(slogx.Config{
		Service: "school",
		Version: Version,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	client := schoolsdk.NewSDKClient(cfg.APIBaseURL, log)
	if cfg.HTTPTimeout > 0 {
		client.HTTPClient.Timeout = cfg.HTTPTimeout
	}

	session := schoolsdk.NewSession(client, store)
	session.OnExpired = func() {
		fmt.Fprintln(os.Stderr, "Session expired, please log in again.")
	}

	flow := schoolsdk.NewLoginFlow(client, store)
	flow.BotToken = cfg.BotToken

	return &App{
		cfg:      cfg,
		log:      log,
		client:   client,
		session:  session,
		flow:     flow,
		resolver: identity.NewResolver(store),
		close:    closeStore,
	}, nil
}

// Close releases resources held by the app.
func (a *App) Close() error {
	if a.close != nil {
		return a.close()
	}
	return nil
}

// openStore builds the configured token store. The file store is the
// default: a single sealed blob under the user config dir.
func openStore(cfg *Config) (tokenstore.Store, func() error, error) {
	switch cfg.TokenStore {
	case "memory":
		return tokenstore.NewMemory(), nil, nil

	case "sqlite":
		dsn := cfg.TokenDB
		if dsn == "" {
			dir, err := stateDir()
			if err != nil {
				return nil, nil, err
			}
			dsn = filepath.Join(dir, "tokens.db")
		}
		store, err := tokenstore.NewSQLite(dsn)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case "file", "":
		path := cfg.TokenFile
		if path == "" {
			dir, err := stateDir()
			if err != nil {
				return nil, nil, err
			}
			path = filepath.Join(dir, "tokens.sealed")
		}
		return tokenstore.NewFile(path, cfg.Passphrase), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown token store %q (want file, sqlite or memory)", cfg.TokenStore)
	}
}

func stateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(base, "school"), nil
}
