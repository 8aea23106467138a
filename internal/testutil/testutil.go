package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookseed/internal/book"
	"bookseed/internal/seed"
)

// Records returns a fresh copy of the embedded seed records.
func Records(t testing.TB) []book.Book {
	t.Helper()
	records, err := seed.Records()
	if err != nil {
		t.Fatalf("seed records: %v", err)
	}
	return records
}

// NewSeedRequest creates a request for the seed job endpoint, sending secret
// in X-Internal-Secret when it is not empty.
func NewSeedRequest(method, secret string) *http.Request {
	r := httptest.NewRequest(method, "/internal/jobs/seed", nil)
	if secret != "" {
		r.Header.Set("X-Internal-Secret", secret)
	}
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// ErrorCode returns error.code from a JSON error envelope, or "".
func (r RecordResponse) ErrorCode() string {
	errBody, ok := r.Body["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errBody["code"].(string)
	return code
}
