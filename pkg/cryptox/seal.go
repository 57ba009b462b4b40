// Package cryptox provides at-rest sealing for the persisted token pair.
//
// Tokens written to disk are encrypted with AES-256-GCM using a key derived
// from a user-supplied passphrase via Argon2id. The passphrase typically
// comes from configuration or an OS keychain; an empty passphrase is allowed
// and degrades to a fixed derivation (obfuscation only, not secrecy).
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Configuration for Argon2id key derivation.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // AES-256 key length
	saltLength  = 16        // Length of the random salt
	nonceLength = 12        // Standard GCM nonce length
)

// ErrSealedData reports a blob that cannot be authenticated or decrypted,
// either because it is corrupt or because the passphrase is wrong. Callers
// are expected to treat this as "no data" rather than surface it.
var ErrSealedData = errors.New("cryptox: cannot open sealed data")

// deriveKey stretches the passphrase into an AES-256 key with Argon2id.
func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, iterations, memory, parallelism, keyLength)
}

// Seal encrypts plaintext with AES-256-GCM under a key derived from
// passphrase. The output format is:
//
//	[16-byte salt][12-byte nonce][ciphertext + 16-byte auth tag]
//
// A fresh random salt and nonce are used per call, so sealing the same
// plaintext twice yields different blobs.
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, saltLength+nonceLength+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// Open authenticates and decrypts a blob produced by Seal. It returns
// ErrSealedData for truncated, tampered, or wrong-passphrase input.
func Open(blob []byte, passphrase string) ([]byte, error) {
	if len(blob) < saltLength+nonceLength {
		return nil, ErrSealedData
	}

	salt := blob[:saltLength]
	nonce := blob[saltLength : saltLength+nonceLength]
	ciphertext := blob[saltLength+nonceLength:]

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrSealedData
	}

	return plaintext, nil
}
