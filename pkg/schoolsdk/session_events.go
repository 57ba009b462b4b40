package schoolsdk

import (
	"context"
	"net/http"
)

// Events lists public events.
func (s *Session) Events(ctx context.Context, params ListParams) ([]Event, *Pagination, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/events/", params.values(), nil)
	if err != nil {
		return nil, nil, err
	}

	var events []Event
	pagination, err := decodeEnvelope(resp, &events, http.StatusOK)
	if err != nil {
		return nil, nil, err
	}

	return events, pagination, nil
}

// Event fetches one event by ID.
func (s *Session) Event(ctx context.Context, id string) (*Event, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/events/"+id+"/", nil, nil)
	if err != nil {
		return nil, err
	}

	var event Event
	if _, err := decodeEnvelope(resp, &event, http.StatusOK); err != nil {
		return nil, err
	}

	return &event, nil
}

// CreateEvent creates a new event. Requires the manager role server-side.
func (s *Session) CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/events/", nil, req)
	if err != nil {
		return nil, err
	}

	var event Event
	if _, err := decodeEnvelope(resp, &event, http.StatusCreated); err != nil {
		return nil, err
	}

	return &event, nil
}
