package schoolsdk

import (
	"context"
	"net/http"
)

// Me returns the authenticated user's profile.
func (s *Session) Me(ctx context.Context) (*UserProfile, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/users/me/", nil, nil)
	if err != nil {
		return nil, err
	}

	var profile UserProfile
	if _, err := decodeEnvelope(resp, &profile, http.StatusOK); err != nil {
		return nil, err
	}

	return &profile, nil
}
