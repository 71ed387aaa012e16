package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// JSONRequest builds a request with body encoded as JSON. A non-empty token
// is sent as a bearer token.
func JSONRequest(t *testing.T, method, url string, body any, token string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// TestResponse holds response data for assertions
type TestResponse struct {
	*httptest.ResponseRecorder
}

// Serve runs req through h and records the response
func Serve(h http.Handler, req *http.Request) *TestResponse {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return &TestResponse{ResponseRecorder: rec}
}

// AssertStatus asserts the HTTP status code
func (r *TestResponse) AssertStatus(t *testing.T, expected int) {
	t.Helper()

	if r.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, r.Code, r.Body.String())
	}
}

// Decode unmarshals the response body into v
func (r *TestResponse) Decode(t *testing.T, v any) {
	t.Helper()

	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", r.Body.String(), err)
	}
}

// Message returns the "message" field of a flat error body
func (r *TestResponse) Message(t *testing.T) string {
	t.Helper()

	var body struct {
		Message string `json:"message"`
	}
	r.Decode(t, &body)
	return body.Message
}
