package seed

import (
	"errors"
	"fmt"

	"bookseed/internal/book"
)

// ErrNotAttempted marks records an ordered batch never reached because an
// earlier record failed.
var ErrNotAttempted = errors.New("record not attempted")

// ErrEmptyBatch is returned by stores asked to insert nothing.
var ErrEmptyBatch = errors.New("empty batch")

// ConnectionError reports that the store could not be reached. No record is
// known to have been inserted.
type ConnectionError struct {
	Store string
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Store, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ValidationError reports a record rejected by a store-side schema rule.
type ValidationError struct {
	Index   int
	Record  book.Book
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %d (%q) failed store validation [%s]: %s", e.Index, e.Record.Title, e.Code, e.Message)
}

// RejectedError reports a record the store refused for a reason other than
// schema validation, such as a unique index violation.
type RejectedError struct {
	Index   int
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("record %d rejected [%s]: %s", e.Index, e.Code, e.Message)
}

// FailedRecord is one record of a batch that did not make it into the store.
type FailedRecord struct {
	Index int
	Err   error
}

// PartialInsertError reports a batch where some records were inserted and
// others were not. Succeeded and IDs are parallel and in input order.
type PartialInsertError struct {
	Total     int
	Succeeded []int
	IDs       []string
	Failed    []FailedRecord
}

func (e *PartialInsertError) Error() string {
	return fmt.Sprintf("partial insert: %d of %d records inserted, %d failed", len(e.Succeeded), e.Total, len(e.Failed))
}

// Unwrap exposes the per-record causes to errors.Is and errors.As.
func (e *PartialInsertError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f.Err)
	}
	return errs
}

// NewBatchError builds the error for a bulk insert given the id of every
// record (empty for records that were not inserted) and the failures.
// It returns nil when nothing failed, a *PartialInsertError when at least one
// record was inserted, and the joined failures otherwise.
func NewBatchError(ids []string, failed []FailedRecord) error {
	if len(failed) == 0 {
		return nil
	}

	failedIdx := make(map[int]bool, len(failed))
	for _, f := range failed {
		failedIdx[f.Index] = true
	}

	partial := &PartialInsertError{Total: len(ids), Failed: failed}
	for i, id := range ids {
		if failedIdx[i] {
			continue
		}
		partial.Succeeded = append(partial.Succeeded, i)
		partial.IDs = append(partial.IDs, id)
	}

	if len(partial.Succeeded) > 0 {
		return partial
	}
	return errors.Join(partial.Unwrap()...)
}

// Summarize returns how many of total records were inserted and how many
// failed, given the outcome of a load.
func Summarize(err error, total int) (inserted, failed int) {
	if err == nil {
		return total, 0
	}
	var partial *PartialInsertError
	if errors.As(err, &partial) {
		return len(partial.Succeeded), len(partial.Failed)
	}
	return 0, total
}
