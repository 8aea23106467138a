package seed

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"bookseed/internal/httpx"
)

// Response mirrors the benchmark envelope: which operation ran against which
// database and how long it took, in seconds.
type Response struct {
	Operation   string   `json:"operation"`
	Database    string   `json:"database"`
	Duration    float64  `json:"duration"`
	RunID       string   `json:"run_id"`
	InsertedIDs []string `json:"inserted_ids"`
}

type HTTPHandler struct {
	loader *Loader
}

func NewHTTPHandler(loader *Loader) *HTTPHandler {
	return &HTTPHandler{loader: loader}
}

// Seed handles POST /internal/jobs/seed
func (h *HTTPHandler) Seed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST method is allowed", nil)
		return
	}

	records, err := Records()
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	start := time.Now()
	res, err := h.loader.Load(r.Context(), records)
	if err != nil {
		writeLoadError(w, r, err, len(records))
		return
	}

	httpx.JSONSuccessCreated(w, r, Response{
		Operation:   "SEED",
		Database:    h.loader.Database(),
		Duration:    time.Since(start).Seconds(),
		RunID:       res.RunID,
		InsertedIDs: res.InsertedIDs,
	}, map[string]interface{}{
		"inserted": res.Count(),
		"failed":   0,
	})
}

func writeLoadError(w http.ResponseWriter, r *http.Request, err error, total int) {
	var (
		connErr    *ConnectionError
		partialErr *PartialInsertError
		validErr   *ValidationError
	)

	switch {
	case errors.As(err, &connErr):
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", connErr.Error(), nil)
	case errors.As(err, &partialErr):
		details := make([]httpx.ErrorDetail, 0, len(partialErr.Failed))
		for _, f := range partialErr.Failed {
			details = append(details, httpx.ErrorDetail{
				Field:   fmt.Sprintf("records[%d]", f.Index),
				Message: f.Err.Error(),
			})
		}
		inserted, failed := Summarize(err, total)
		httpx.JSONError(w, r, http.StatusConflict, "PARTIAL_INSERT",
			fmt.Sprintf("%d of %d records inserted, %d failed", inserted, total, failed), details)
	case errors.As(err, &validErr):
		httpx.JSONError(w, r, http.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error(), validationDetails(err))
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "SEED_FAILED", err.Error(), nil)
	}
}

// validationDetails lists every ValidationError in a joined error.
func validationDetails(err error) []httpx.ErrorDetail {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	var details []httpx.ErrorDetail
	for _, e := range errs {
		var v *ValidationError
		if errors.As(e, &v) {
			details = append(details, httpx.ErrorDetail{
				Field:   fmt.Sprintf("records[%d]", v.Index),
				Message: v.Message,
			})
		}
	}
	return details
}
