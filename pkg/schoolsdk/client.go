package schoolsdk

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout is the transport-level request timeout. The API flows have
// no retry/backoff of their own beyond the single auth-refresh retry, so
// this is the only time bound on a call.
const DefaultTimeout = 10 * time.Second

// SDKClient is a client for the school platform API. It provides the
// unauthenticated operations (signup, the three login exchanges, token
// refresh and verification) and is the transport underneath Session.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewSDKClient creates a platform client for the given base API URL
// (e.g. "https://api.school.example.com/api/v1"). An empty base URL is a
// configuration error: it is logged, not fatal, and every subsequent call
// will fail.
func NewSDKClient(baseURL string, logger *slog.Logger) *SDKClient {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		logger.Error("api base url is not configured; all requests will fail")
	}

	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		Logger: logger,
	}
}

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}
