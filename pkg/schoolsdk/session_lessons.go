package schoolsdk

import (
	"context"
	"net/http"
)

// Lessons lists the paid lessons the current user can access.
func (s *Session) Lessons(ctx context.Context, params ListParams) ([]Lesson, *Pagination, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/paid-lessons/", params.values(), nil)
	if err != nil {
		return nil, nil, err
	}

	var lessons []Lesson
	pagination, err := decodeEnvelope(resp, &lessons, http.StatusOK)
	if err != nil {
		return nil, nil, err
	}

	return lessons, pagination, nil
}

// Lesson fetches one paid lesson. The backend returns 403 when the user's
// plan does not cover it; after the single refresh-and-retry cycle that
// surfaces as an ordinary APIError for the page to handle.
func (s *Session) Lesson(ctx context.Context, id string) (*Lesson, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/paid-lessons/"+id+"/", nil, nil)
	if err != nil {
		return nil, err
	}

	var lesson Lesson
	if _, err := decodeEnvelope(resp, &lesson, http.StatusOK); err != nil {
		return nil, err
	}

	return &lesson, nil
}
