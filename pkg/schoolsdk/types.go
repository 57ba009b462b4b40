package schoolsdk

import (
	"net/url"
	"strconv"

	"github.com/codingbro/school/pkg/telegram"
)

// ============================================================================
// Platform envelope
// ============================================================================

// Pagination is the cursor block of list responses.
type Pagination struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// ============================================================================
// Auth types
// ============================================================================

// TokenResponse is the token pair returned by the obtain and refresh
// endpoints. Refresh is empty when the backend chooses not to rotate it.
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// TelegramAuthResponse is returned by both Telegram exchange endpoints.
type TelegramAuthResponse struct {
	Access  string        `json:"access"`
	Refresh string        `json:"refresh"`
	User    telegram.User `json:"user"`
}

// SignupRequest registers a new account with phone/password credentials.
type SignupRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
}

// UserProfile is the authenticated user's profile.
type UserProfile struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	TelegramID  int64  `json:"telegram_id,omitempty"`
	Role        string `json:"role"`
}

// ============================================================================
// Catalog types
//
// One canonical schema per resource. Earlier client generations probed
// several field spellings at runtime (lesson_ids / lessonIds / nested
// lessons); this client accepts exactly one shape and surfaces a decode
// error on anything else.
// ============================================================================

// Event is a public platform event.
type Event struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Contacts    string `json:"contacts"`
	TeamID      string `json:"team_id"`
	Date        string `json:"date"` // ISO 8601
	Image       string `json:"image"`
	Location    string `json:"location"`
}

// CreateEventRequest is Event without the server-assigned ID.
type CreateEventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	Contacts    string `json:"contacts,omitempty"`
	TeamID      string `json:"team_id"`
	Date        string `json:"date"`
	Image       string `json:"image,omitempty"`
	Location    string `json:"location,omitempty"`
}

// Lesson is a paid lesson within a course.
type Lesson struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	Position    int    `json:"position"`
}

// Course is a paid course. Lessons is populated on detail endpoints.
type Course struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Lessons     []Lesson `json:"lessons,omitempty"`
}

// UpdateCourseRequest is a partial course update; nil fields are left
// untouched by the backend.
type UpdateCourseRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
}

// Plan is a pricing plan granting access to a subset of a course's lessons.
// LessonIDs is the canonical spelling.
type Plan struct {
	ID          string   `json:"id"`
	CourseID    string   `json:"course_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"` // decimal as string
	LessonIDs   []string `json:"lesson_ids"`
}

// PlanRequest creates or (with PATCH semantics) updates a plan.
type PlanRequest struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price,omitempty"`
	LessonIDs   []string `json:"lesson_ids,omitempty"`
}

// ListParams are the common list query parameters.
type ListParams struct {
	Search   string
	Ordering string
	Limit    int
	Offset   int
}

// values encodes the set parameters as a query string.
func (p ListParams) values() url.Values {
	query := url.Values{}
	if p.Search != "" {
		query.Set("search", p.Search)
	}
	if p.Ordering != "" {
		query.Set("ordering", p.Ordering)
	}
	if p.Limit > 0 {
		query.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		query.Set("offset", strconv.Itoa(p.Offset))
	}
	return query
}
