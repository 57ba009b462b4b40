package schoolsdk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/codingbro/school/pkg/identity"
	"github.com/codingbro/school/pkg/telegram"
	"github.com/codingbro/school/pkg/tokenstore"
)

// miniAppAttempts caps how many times the automatic Mini-App login may hit
// the backend per window; stray reload loops must not hammer the auth
// endpoint.
const (
	miniAppAttempts = 3
	miniAppWindow   = time.Minute
)

// Environment describes the host the client is running in. The embedding
// layer (the Mini-App bridge or the browser shell) fills it in at startup.
type Environment struct {
	// InitData is the opaque init-data blob injected by the Telegram host
	// client. Non-empty means the app runs inside Telegram.
	InitData string
}

// InTelegram reports whether the Telegram Mini-App environment was detected.
func (e Environment) InTelegram() bool { return e.InitData != "" }

// LoginFlow normalizes the three login mechanisms (phone/password, Telegram
// Mini-App, Telegram OAuth widget) into one token-pair-producing contract.
// Mini-App and widget are mutually exclusive on init-data presence; password
// is always available outside Telegram.
//
// A failed login never clears a pre-existing valid session.
type LoginFlow struct {
	// BotToken, when set, enables local verification of Telegram payload
	// signatures before the network exchange. The backend verifies again
	// regardless.
	BotToken string

	// AuthWindow bounds the accepted age of Telegram payloads.
	AuthWindow time.Duration

	client  *SDKClient
	store   tokenstore.Store
	limiter *rate.Limiter
	now     func() time.Time
}

// NewLoginFlow creates the login coordinator over the given client and
// token store.
func NewLoginFlow(client *SDKClient, store tokenstore.Store) *LoginFlow {
	return &LoginFlow{
		AuthWindow: telegram.DefaultAuthWindow,
		client:     client,
		store:      store,
		limiter:    rate.NewLimiter(rate.Every(miniAppWindow/miniAppAttempts), miniAppAttempts),
		now:        time.Now,
	}
}

// LoginWithPassword authenticates with phone/password credentials and
// persists the resulting pair. Failures carry the server-provided message
// when there is one.
func (f *LoginFlow) LoginWithPassword(ctx context.Context, phoneNumber, password string) error {
	tokens, err := f.client.ObtainToken(ctx, phoneNumber, password)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("login failed: %s", apiErr.Message)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	return f.persist(ctx, tokens.Access, tokens.Refresh)
}

// LoginFromEnvironment runs the automatic login for the detected host
// environment. Inside Telegram it runs the Mini-App exchange; outside it
// does nothing (password and widget logins are explicit user actions).
func (f *LoginFlow) LoginFromEnvironment(ctx context.Context, env Environment) error {
	if !env.InTelegram() {
		return nil
	}
	return f.LoginWithMiniApp(ctx, env.InitData)
}

// LoginWithMiniApp exchanges the Mini-App init-data blob for a token pair.
//
// If an unexpired access token is already stored, the call returns without
// any network traffic: the Mini-App flow runs on every page load, and
// re-authenticating each time would churn sessions for nothing.
func (f *LoginFlow) LoginWithMiniApp(ctx context.Context, initData string) error {
	if initData == "" {
		return ErrNotTelegramEnv
	}

	if pair, ok := f.store.Get(ctx); ok {
		claims := identity.DecodeClaims(pair.Access)
		if !claims.ExpiredAt(f.now()) {
			f.client.Logger.Debug("mini-app login skipped, stored token still valid")
			return nil
		}
	}

	if !f.limiter.Allow() {
		return ErrTooManyAuthAttempts
	}

	if f.BotToken != "" {
		data, err := telegram.ParseInitData(initData)
		if err != nil {
			return fmt.Errorf("telegram login failed: %w", err)
		}
		if err := data.Verify(f.BotToken, f.now(), f.AuthWindow); err != nil {
			return fmt.Errorf("telegram login failed: %w", err)
		}
	}

	auth, err := f.client.TelegramMiniAppAuth(ctx, initData)
	if err != nil {
		return fmt.Errorf("telegram login failed: %w", err)
	}

	return f.persist(ctx, auth.Access, auth.Refresh)
}

// LoginWithWidget exchanges a signed login-widget payload (parsed from the
// OAuth callback by pkg/telegram) for a token pair.
func (f *LoginFlow) LoginWithWidget(ctx context.Context, user *telegram.WidgetUser) error {
	if f.BotToken != "" {
		if err := user.Verify(f.BotToken, f.now(), f.AuthWindow); err != nil {
			return fmt.Errorf("telegram login failed: %w", err)
		}
	}

	auth, err := f.client.TelegramWidgetAuth(ctx, user)
	if err != nil {
		return fmt.Errorf("telegram login failed: %w", err)
	}

	return f.persist(ctx, auth.Access, auth.Refresh)
}

// persist stores a freshly obtained pair. This is the only success path out
// of any login variant.
func (f *LoginFlow) persist(ctx context.Context, access, refresh string) error {
	pair := tokenstore.TokenPair{Access: access, Refresh: refresh}
	if err := f.store.Set(ctx, pair); err != nil {
		return fmt.Errorf("failed to persist tokens: %w", err)
	}
	f.client.Logger.Info("logged in")
	return nil
}
