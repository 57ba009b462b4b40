/*
Package schoolsdk is the client SDK for the school e-learning platform API.

# Overview

The package is organized around three types:

  - SDKClient: transport plus the unauthenticated operations (signup, the
    login exchanges, token refresh and verification)
  - Session: authenticated operations with transparent token handling
  - LoginFlow: the coordinator that turns any of the three login mechanisms
    into a stored token pair

Tokens live in a tokenstore.Store, which is the single owner of the
persisted pair. Route guards derive "is authenticated" / "is manager" from
the same store through pkg/identity, without any network call.

	store := tokenstore.NewFile(path, passphrase)
	client := schoolsdk.NewSDKClient("https://api.school.example.com/api/v1", logger)
	session := schoolsdk.NewSession(client, store)
	flow := schoolsdk.NewLoginFlow(client, store)

# Login Flows

Three mechanisms produce the same token pair:

Password:

	err := flow.LoginWithPassword(ctx, "+15550100", "secret")

Telegram Mini-App (automatic when the host injects init-data; skips the
network entirely while an unexpired token is stored):

	err := flow.LoginFromEnvironment(ctx, schoolsdk.Environment{InitData: initData})

Telegram OAuth widget (the callback URL is parsed by pkg/telegram):

	user, err := telegram.ParseWidgetCallback(callbackURL)
	err = flow.LoginWithWidget(ctx, user)

# Automatic Token Refresh

Every Session method attaches the stored access token and intercepts 401/403
responses. The first request to fail owns a refresh exchange; concurrent
failures queue behind it and observe the same outcome, so at most one
refresh call is ever in flight. The failed request is then retried exactly
once with the new token. A retry that fails again passes through as an
ordinary API error, never a second refresh.

When refresh itself is impossible or rejected, the session is over: the
store is cleared, Session.OnExpired fires once, and callers receive an
*AuthExpiredError. That error is deliberately distinguishable — the UI is
expected to redirect to login silently rather than show an error toast:

	if schoolsdk.IsAuthExpired(err) {
		// go to the login page, no toast
	}

# Error Handling

Non-authorization failures surface as *APIError carrying the HTTP status and
the platform's own error message, suitable for display. Responses that do
not match the canonical typed schema fail fast with a decode error instead
of probing alternative field spellings.

# Thread Safety

Session and LoginFlow are safe for concurrent use; token state lives behind
the store and the refresh state machine behind a mutex.
*/
package schoolsdk
