// Package mongostore writes seed records to a MongoDB collection.
//
// A bulk insert is not atomic across documents. An ordered insert stops at
// the first rejected document, leaving every earlier document in place; an
// unordered insert attempts all of them. Either way a failure is reported as
// a seed.PartialInsertError listing exactly which records landed.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bookseed/internal/book"
	"bookseed/internal/seed"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// Name identifies MongoDB in logs and responses.
const Name = "MongoDB"

// codeDocumentValidationFailure is returned when a document violates the
// collection's $jsonSchema or validator.
const codeDocumentValidationFailure = 121

type Store struct {
	coll    *mongo.Collection
	ordered bool
	timeout time.Duration
}

type Option func(*Store)

// WithUnordered lets the server attempt every document even after one fails.
func WithUnordered() Option {
	return func(s *Store) { s.ordered = false }
}

// WithTimeout bounds each store call. Zero leaves the caller's deadline alone.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

func New(db *mongo.Database, collection string, opts ...Option) *Store {
	s := &Store{
		coll:    db.Collection(collection),
		ordered: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Name() string { return Name }

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// document is a record with the _id assigned before the insert, so every
// record's id is known whatever the server does with it.
type document struct {
	ID        primitive.ObjectID `bson:"_id"`
	book.Book `bson:",inline"`
}

func newDocuments(records []book.Book) ([]interface{}, []string) {
	docs := make([]interface{}, len(records))
	ids := make([]string, len(records))
	for i, r := range records {
		oid := primitive.NewObjectID()
		docs[i] = document{ID: oid, Book: r}
		ids[i] = oid.Hex()
	}
	return docs, ids
}

// InsertMany submits records in one insertMany call and returns their
// ObjectIDs as hex strings, in input order.
func (s *Store) InsertMany(ctx context.Context, records []book.Book) ([]string, error) {
	if len(records) == 0 {
		return nil, seed.ErrEmptyBatch
	}

	docs, ids := newDocuments(records)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(s.ordered))
	if err == nil {
		return ids, nil
	}
	if isConnectionError(err) {
		return nil, &seed.ConnectionError{Store: Name, Err: err}
	}

	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
		return nil, fmt.Errorf("insert into %s: %w", s.coll.Name(), err)
	}

	failed := s.failedRecords(records, bwe.WriteErrors)
	for _, f := range failed {
		ids[f.Index] = ""
	}
	return ids, seed.NewBatchError(ids, failed)
}

func (s *Store) failedRecords(records []book.Book, writeErrs []mongo.BulkWriteError) []seed.FailedRecord {
	failed := make([]seed.FailedRecord, 0, len(records))
	seen := make(map[int]bool, len(writeErrs))
	lastFailed := -1

	for _, we := range writeErrs {
		if we.Index < 0 || we.Index >= len(records) || seen[we.Index] {
			continue
		}
		seen[we.Index] = true
		if we.Index > lastFailed {
			lastFailed = we.Index
		}
		failed = append(failed, seed.FailedRecord{Index: we.Index, Err: recordError(records, we)})
	}

	if s.ordered && lastFailed >= 0 {
		for i := lastFailed + 1; i < len(records); i++ {
			failed = append(failed, seed.FailedRecord{Index: i, Err: seed.ErrNotAttempted})
		}
	}
	return failed
}

func recordError(records []book.Book, we mongo.BulkWriteError) error {
	code := strconv.Itoa(we.Code)
	if we.Code == codeDocumentValidationFailure {
		return &seed.ValidationError{
			Index:   we.Index,
			Record:  records[we.Index],
			Code:    code,
			Message: we.Message,
		}
	}
	return &seed.RejectedError{Index: we.Index, Code: code, Message: we.Message}
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		if isConnectionError(err) {
			return 0, &seed.ConnectionError{Store: Name, Err: err}
		}
		return 0, err
	}
	return n, nil
}

// Ping checks that a primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.coll.Database().Client().Ping(ctx, nil)
}

func isConnectionError(err error) bool {
	var (
		sse    topology.ServerSelectionError
		ssePtr *topology.ServerSelectionError
	)
	switch {
	case errors.As(err, &sse), errors.As(err, &ssePtr):
		return true
	case errors.Is(err, mongo.ErrClientDisconnected):
		return true
	case mongo.IsNetworkError(err), mongo.IsTimeout(err):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}
