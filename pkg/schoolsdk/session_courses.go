package schoolsdk

import (
	"context"
	"net/http"
)

// Courses lists the paid-course catalog visible to the current user.
func (s *Session) Courses(ctx context.Context, params ListParams) ([]Course, *Pagination, error) {
	return s.listCourses(ctx, "/paid-courses/", params)
}

// Course fetches one paid course, with its lessons.
func (s *Session) Course(ctx context.Context, id string) (*Course, error) {
	return s.getCourse(ctx, "/paid-courses/"+id+"/")
}

// ManagementCourses lists courses through the manager surface, which also
// returns unpublished ones.
func (s *Session) ManagementCourses(ctx context.Context, params ListParams) ([]Course, *Pagination, error) {
	return s.listCourses(ctx, "/management-courses/", params)
}

// ManagementCourse fetches one course through the manager surface.
func (s *Session) ManagementCourse(ctx context.Context, id string) (*Course, error) {
	return s.getCourse(ctx, "/management-courses/"+id+"/")
}

// UpdateCourse applies a partial update to a course. Requires the manager
// role server-side.
func (s *Session) UpdateCourse(ctx context.Context, id string, req UpdateCourseRequest) (*Course, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPatch, "/management-courses/"+id+"/", nil, req)
	if err != nil {
		return nil, err
	}

	var course Course
	if _, err := decodeEnvelope(resp, &course, http.StatusOK); err != nil {
		return nil, err
	}

	return &course, nil
}

func (s *Session) listCourses(ctx context.Context, path string, params ListParams) ([]Course, *Pagination, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, params.values(), nil)
	if err != nil {
		return nil, nil, err
	}

	var courses []Course
	pagination, err := decodeEnvelope(resp, &courses, http.StatusOK)
	if err != nil {
		return nil, nil, err
	}

	return courses, pagination, nil
}

func (s *Session) getCourse(ctx context.Context, path string) (*Course, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var course Course
	if _, err := decodeEnvelope(resp, &course, http.StatusOK); err != nil {
		return nil, err
	}

	return &course, nil
}
