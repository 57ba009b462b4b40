package schoolsdk

import (
	"context"
	"net/http"
)

// Plan management, nested under a course. All of these require the manager
// role server-side.

// Plans lists the pricing plans of a course.
func (s *Session) Plans(ctx context.Context, courseID string, params ListParams) ([]Plan, *Pagination, error) {
	path := "/management-courses/" + courseID + "/plans/"
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, params.values(), nil)
	if err != nil {
		return nil, nil, err
	}

	var plans []Plan
	pagination, err := decodeEnvelope(resp, &plans, http.StatusOK)
	if err != nil {
		return nil, nil, err
	}

	return plans, pagination, nil
}

// Plan fetches one pricing plan.
func (s *Session) Plan(ctx context.Context, courseID, planID string) (*Plan, error) {
	path := "/management-courses/" + courseID + "/plans/" + planID + "/"
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if _, err := decodeEnvelope(resp, &plan, http.StatusOK); err != nil {
		return nil, err
	}

	return &plan, nil
}

// CreatePlan creates a pricing plan for a course.
func (s *Session) CreatePlan(ctx context.Context, courseID string, req PlanRequest) (*Plan, error) {
	path := "/management-courses/" + courseID + "/plans/"
	resp, err := s.doAuthRequest(ctx, http.MethodPost, path, nil, req)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if _, err := decodeEnvelope(resp, &plan, http.StatusCreated); err != nil {
		return nil, err
	}

	return &plan, nil
}

// UpdatePlan applies a partial update to a plan.
func (s *Session) UpdatePlan(ctx context.Context, courseID, planID string, req PlanRequest) (*Plan, error) {
	path := "/management-courses/" + courseID + "/plans/" + planID + "/"
	resp, err := s.doAuthRequest(ctx, http.MethodPatch, path, nil, req)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if _, err := decodeEnvelope(resp, &plan, http.StatusOK); err != nil {
		return nil, err
	}

	return &plan, nil
}

// DeletePlan removes a plan.
func (s *Session) DeletePlan(ctx context.Context, courseID, planID string) error {
	path := "/management-courses/" + courseID + "/plans/" + planID + "/"
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}

	_, err = decodeEnvelope(resp, nil, http.StatusNoContent)
	return err
}
