package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// WidgetUser is the signed payload delivered by the Telegram login widget
// via the OAuth callback query string. Field names match what the backend's
// widget endpoint expects, so the struct is posted as-is during login.
type WidgetUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	AuthDate  int64  `json:"auth_date"`
	Hash      string `json:"hash"`
}

// ParseWidgetCallback extracts the widget payload from the OAuth callback
// URL. This replaces the widget's injected-script global callback with a
// plain function over the redirect query string.
func ParseWidgetCallback(callback *url.URL) (*WidgetUser, error) {
	query := callback.Query()

	user := &WidgetUser{
		FirstName: query.Get("first_name"),
		LastName:  query.Get("last_name"),
		Username:  query.Get("username"),
		PhotoURL:  query.Get("photo_url"),
		Hash:      query.Get("hash"),
	}

	id, err := strconv.ParseInt(query.Get("id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("telegram: malformed widget id: %w", err)
	}
	user.ID = id

	if ad := query.Get("auth_date"); ad != "" {
		user.AuthDate, err = strconv.ParseInt(ad, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("telegram: malformed widget auth_date: %w", err)
		}
	}

	return user, nil
}

// Verify checks the widget payload signature and freshness. Unlike the
// Mini-App flow, the widget HMAC secret is the plain SHA-256 of the bot
// token.
func (u *WidgetUser) Verify(botToken string, now time.Time, window time.Duration) error {
	if u.Hash == "" {
		return ErrNoHash
	}

	secret := sha256.Sum256([]byte(botToken))

	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(u.checkString()))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(u.Hash)) {
		return ErrBadSignature
	}

	if window > 0 && now.Sub(time.Unix(u.AuthDate, 0)) > window {
		return ErrStale
	}

	return nil
}

// checkString builds the data-check string from the non-empty widget fields,
// sorted by key.
func (u *WidgetUser) checkString() string {
	fields := map[string]string{
		"id":         strconv.FormatInt(u.ID, 10),
		"first_name": u.FirstName,
		"auth_date":  strconv.FormatInt(u.AuthDate, 10),
	}
	if u.LastName != "" {
		fields["last_name"] = u.LastName
	}
	if u.Username != "" {
		fields["username"] = u.Username
	}
	if u.PhotoURL != "" {
		fields["photo_url"] = u.PhotoURL
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+fields[key])
	}
	return strings.Join(lines, "\n")
}
