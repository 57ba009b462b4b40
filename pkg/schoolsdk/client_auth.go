package schoolsdk

import (
	"context"
	"net/http"

	"github.com/codingbro/school/pkg/telegram"
)

// Auth endpoints. These are the only calls that run without a bearer token;
// everything else goes through Session.

// ObtainToken exchanges phone/password credentials for a token pair.
func (c *SDKClient) ObtainToken(ctx context.Context, phoneNumber, password string) (*TokenResponse, error) {
	body := struct {
		PhoneNumber string `json:"phone_number"`
		Password    string `json:"password"`
	}{PhoneNumber: phoneNumber, Password: password}

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/token/obtain/", body)
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if _, err := decodeEnvelope(resp, &tokens, http.StatusOK); err != nil {
		return nil, err
	}

	return &tokens, nil
}

// RefreshToken exchanges a refresh token for a new access token. The
// backend may or may not rotate the refresh token; when it does, the
// response carries the new one.
func (c *SDKClient) RefreshToken(ctx context.Context, refresh string) (*TokenResponse, error) {
	body := struct {
		Refresh string `json:"refresh"`
	}{Refresh: refresh}

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/token/refresh/", body)
	if err != nil {
		return nil, err
	}

	var tokens TokenResponse
	if _, err := decodeEnvelope(resp, &tokens, http.StatusOK); err != nil {
		return nil, err
	}

	return &tokens, nil
}

// VerifyToken asks the backend whether a token is currently valid. A
// definitive "invalid" (401 or 400) is not an error.
func (c *SDKClient) VerifyToken(ctx context.Context, token string) (bool, error) {
	body := struct {
		Token string `json:"token"`
	}{Token: token}

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/token/verification/", body)
	if err != nil {
		return false, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		_, _ = decodeEnvelope(resp, nil, resp.StatusCode)
		return false, nil
	}

	if _, err := decodeEnvelope(resp, nil, http.StatusOK); err != nil {
		return false, err
	}
	return true, nil
}

// Signup registers a new phone/password account. The new user still logs in
// through ObtainToken afterwards.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/signup/", req)
	if err != nil {
		return err
	}

	_, err = decodeEnvelope(resp, nil, http.StatusCreated)
	return err
}

// TelegramMiniAppAuth exchanges the Mini-App init-data blob for a token
// pair. The backend validates the blob's signature against the bot token.
func (c *SDKClient) TelegramMiniAppAuth(ctx context.Context, initData string) (*TelegramAuthResponse, error) {
	body := struct {
		InitData string `json:"init_data"`
	}{InitData: initData}

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/social/telegram/", body)
	if err != nil {
		return nil, err
	}

	var auth TelegramAuthResponse
	if _, err := decodeEnvelope(resp, &auth, http.StatusOK); err != nil {
		return nil, err
	}

	return &auth, nil
}

// TelegramWidgetAuth exchanges a signed login-widget payload for a token
// pair.
func (c *SDKClient) TelegramWidgetAuth(ctx context.Context, user *telegram.WidgetUser) (*TelegramAuthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/social/telegram/oauth/", user)
	if err != nil {
		return nil, err
	}

	var auth TelegramAuthResponse
	if _, err := decodeEnvelope(resp, &auth, http.StatusOK); err != nil {
		return nil, err
	}

	return &auth, nil
}
