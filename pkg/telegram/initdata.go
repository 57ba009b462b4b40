// Package telegram parses and verifies the two identity payloads Telegram
// hands to the client: the Mini-App init-data blob (app running inside the
// Telegram client) and the OAuth login-widget callback (app running in a
// normal browser). The two are mutually exclusive: presence of init-data
// selects the Mini-App flow.
//
// Verification follows Telegram's published check: a data-check string of
// sorted key=value pairs signed with HMAC-SHA256. The two payloads derive
// the HMAC secret differently, which is the main trap when implementing
// this — see VerifyInitData and WidgetUser.Verify.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoHash reports a payload without a hash field, which cannot be
	// verified at all.
	ErrNoHash = errors.New("telegram: payload has no hash")

	// ErrBadSignature reports a payload whose hash does not match the
	// recomputed HMAC, meaning it was not produced by Telegram for this bot.
	ErrBadSignature = errors.New("telegram: signature mismatch")

	// ErrStale reports a payload older than the accepted auth window.
	ErrStale = errors.New("telegram: auth_date too old")
)

// DefaultAuthWindow bounds how old an auth_date may be before the payload is
// rejected as a replay.
const DefaultAuthWindow = 24 * time.Hour

// User is the Telegram identity embedded in the Mini-App init data. It is
// only used during the login exchange and never persisted.
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// InitData is the parsed Mini-App init-data blob.
type InitData struct {
	QueryID  string
	User     *User
	AuthDate time.Time
	Hash     string

	// raw keeps every field except hash for signature recomputation.
	raw url.Values
}

// ParseInitData parses the query-string shaped init-data blob injected by
// the Telegram host client. Parsing does not verify; call Verify before
// trusting the identity.
func ParseInitData(initData string) (*InitData, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("telegram: malformed init data: %w", err)
	}

	d := &InitData{
		QueryID: values.Get("query_id"),
		Hash:    values.Get("hash"),
		raw:     values,
	}

	if ad := values.Get("auth_date"); ad != "" {
		unix, err := strconv.ParseInt(ad, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("telegram: malformed auth_date: %w", err)
		}
		d.AuthDate = time.Unix(unix, 0).UTC()
	}

	if rawUser := values.Get("user"); rawUser != "" {
		var user User
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			return nil, fmt.Errorf("telegram: malformed user field: %w", err)
		}
		d.User = &user
	}

	return d, nil
}

// Verify checks the payload signature and freshness against the bot token.
// The HMAC secret for Mini-App payloads is HMAC-SHA256(botToken) keyed with
// the literal string "WebAppData".
func (d *InitData) Verify(botToken string, now time.Time, window time.Duration) error {
	if d.Hash == "" {
		return ErrNoHash
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(d.checkString()))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(d.Hash)) {
		return ErrBadSignature
	}

	if window > 0 && now.Sub(d.AuthDate) > window {
		return ErrStale
	}

	return nil
}

// checkString builds the data-check string: every field except hash, sorted
// by key, as key=value lines.
func (d *InitData) checkString() string {
	keys := make([]string, 0, len(d.raw))
	for key := range d.raw {
		if key != "hash" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+d.raw.Get(key))
	}
	return strings.Join(lines, "\n")
}
