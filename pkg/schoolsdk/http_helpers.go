package schoolsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/codingbro/school/pkg/idx"
)

// envelope is the platform's uniform response wrapper.
type envelope struct {
	Success     bool            `json:"success"`
	StatusCode  int             `json:"status_code"`
	Pagination  *Pagination     `json:"pagination"`
	Errors      []string        `json:"errors"`
	Data        json.RawMessage `json:"data"`
	ServiceData json.RawMessage `json:"service_data"`
}

// newRequest builds a JSON request tagged with a ULID X-Request-ID.
func (c *SDKClient) newRequest(
	ctx context.Context,
	method, path string,
	query url.Values,
	payload []byte,
) (*http.Request, error) {
	target := c.url(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", idx.New().String())

	return req, nil
}

// doRequest performs an unauthenticated request (no Authorization header).
func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body any,
) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req, err := c.newRequest(ctx, method, path, nil, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// decodeEnvelope reads a platform response, checks the expected status and
// the envelope's success flag, and unmarshals the data block into target.
// It fails fast on any shape mismatch instead of probing alternatives.
// A nil target discards the data block. The returned pagination is non-nil
// only for list responses.
func decodeEnvelope(resp *http.Response, target any, expectedStatus int) (*Pagination, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	// 204-style responses carry no envelope at all.
	if len(body) == 0 && target == nil {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}

	if !env.Success {
		message := "request rejected by the platform"
		if len(env.Errors) > 0 {
			message = env.Errors[0]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if target != nil {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return nil, fmt.Errorf("response data does not match the expected shape: %w", err)
		}
	}

	return env.Pagination, nil
}
