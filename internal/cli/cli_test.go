package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codingbro/school/pkg/tokenstore"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("SCHOOL_API_BASE_URL", "https://api.example.com/api/v1")
	t.Setenv("SCHOOL_TOKEN_STORE", "sqlite")
	t.Setenv("SCHOOL_HTTP_TIMEOUT", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com/api/v1", cfg.APIBaseURL)
	require.Equal(t, "sqlite", cfg.TokenStore)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)

	// Defaults kick in for everything unset.
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
}

func TestOpenStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, closeStore, err := openStore(&Config{TokenStore: "memory"})
		require.NoError(t, err)
		require.Nil(t, closeStore)
		require.IsType(t, &tokenstore.Memory{}, store)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.sealed")
		store, closeStore, err := openStore(&Config{TokenStore: "file", TokenFile: path, Passphrase: "pw"})
		require.NoError(t, err)
		require.Nil(t, closeStore)
		require.IsType(t, &tokenstore.File{}, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		dsn := filepath.Join(t.TempDir(), "tokens.db")
		store, closeStore, err := openStore(&Config{TokenStore: "sqlite", TokenDB: dsn})
		require.NoError(t, err)
		require.NotNil(t, closeStore)
		require.IsType(t, &tokenstore.SQLite{}, store)
		require.NoError(t, closeStore())
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := openStore(&Config{TokenStore: "redis"})
		require.ErrorContains(t, err, "unknown token store")
	})
}

func TestRunLoginCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/token/obtain/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"status_code": 200,
			"data":        map[string]string{"access": "a", "refresh": "r"},
		})
	}))
	defer server.Close()

	app, err := New(&Config{APIBaseURL: server.URL, TokenStore: "memory"})
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Run(context.Background(), []string{"login", "+15550001111", "hunter2"}))

	pair, ok := app.session.Store().Get(context.Background())
	require.True(t, ok)
	require.Equal(t, "a", pair.Access)
}

func TestRunUnknownCommand(t *testing.T) {
	app, err := New(&Config{APIBaseURL: "http://unused.invalid", TokenStore: "memory"})
	require.NoError(t, err)
	defer app.Close()

	require.ErrorContains(t, app.Run(context.Background(), []string{"frobnicate"}), "unknown command")
	require.Error(t, app.Run(context.Background(), nil))
}
