package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/codingbro/school/pkg/cryptox"
)

// File persists the token pair in a single file, sealed with the configured
// passphrase (see pkg/cryptox). Writes go through a temp file and rename so
// a crashed write leaves the previous pair intact.
type File struct {
	path       string
	passphrase string

	mu sync.Mutex
}

// NewFile returns a file-backed store at path. The parent directory is
// created on first Set. A wrong passphrase reads as "no tokens", not as an
// error.
func NewFile(path, passphrase string) *File {
	return &File{path: path, passphrase: passphrase}
}

func (f *File) Get(_ context.Context) (TokenPair, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	blob, err := os.ReadFile(f.path)
	if err != nil {
		return TokenPair{}, false
	}

	plaintext, err := cryptox.Open(blob, f.passphrase)
	if err != nil {
		return TokenPair{}, false
	}

	var pair TokenPair
	if err := json.Unmarshal(plaintext, &pair); err != nil {
		return TokenPair{}, false
	}
	if pair.IsZero() {
		return TokenPair{}, false
	}

	return pair, true
}

func (f *File) Set(_ context.Context, pair TokenPair) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	plaintext, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("failed to encode token pair: %w", err)
	}

	blob, err := cryptox.Seal(plaintext, f.passphrase)
	if err != nil {
		return fmt.Errorf("failed to seal token pair: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(blob); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close token file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set token file mode: %w", err)
	}

	// Atomic swap: readers see either the old pair or the new one.
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace token file: %w", err)
	}

	return nil
}

func (f *File) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
