package seed

import (
	"context"
	"fmt"
	"log"

	"bookseed/internal/book"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Store is the bulk-write boundary of a document store.
type Store interface {
	// InsertMany submits every record in one bulk write and returns the
	// store-generated identifiers in input order.
	InsertMany(ctx context.Context, records []book.Book) ([]string, error)
	Count(ctx context.Context) (int64, error)
	// Name identifies the store in logs and responses, e.g. "MongoDB".
	Name() string
}

// Result is the outcome of a successful load.
//
// A MongoDB store does not apply the batch atomically: a failed load may
// still have inserted some records, which is reported by PartialInsertError.
type Result struct {
	RunID       string
	InsertedIDs []string
}

// Count returns the number of inserted records.
func (r Result) Count() int { return len(r.InsertedIDs) }

// Loader submits seed records to a store.
type Loader struct {
	store  Store
	tracer trace.Tracer
}

func NewLoader(store Store) *Loader {
	return &Loader{
		store:  store,
		tracer: otel.Tracer("bookseed/internal/seed"),
	}
}

// Database returns the name of the underlying store.
func (l *Loader) Database() string {
	return l.store.Name()
}

// Load inserts records with a single bulk write. It is not idempotent:
// loading the same records twice stores them twice. Store errors are
// returned unchanged.
func (l *Loader) Load(ctx context.Context, records []book.Book) (Result, error) {
	res := Result{RunID: uuid.NewString()}

	ctx, span := l.tracer.Start(ctx, "seed.Load", trace.WithAttributes(
		attribute.String("seed.run_id", res.RunID),
		attribute.String("seed.store", l.store.Name()),
		attribute.Int("seed.records", len(records)),
	))
	defer span.End()

	if len(records) == 0 {
		log.Printf("seed run=%s store=%s nothing to insert", res.RunID, l.store.Name())
		return res, nil
	}

	ids, err := l.store.InsertMany(ctx, records)
	inserted, failed := Summarize(err, len(records))
	span.SetAttributes(
		attribute.Int("seed.inserted", inserted),
		attribute.Int("seed.failed", failed),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bulk insert failed")
		log.Printf("seed run=%s store=%s inserted=%d failed=%d error=%v", res.RunID, l.store.Name(), inserted, failed, err)
		return Result{}, err
	}

	if len(ids) != len(records) {
		err := fmt.Errorf("store returned %d ids for %d records", len(ids), len(records))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Printf("seed run=%s store=%s ids=%d records=%d error=%v", res.RunID, l.store.Name(), len(ids), len(records), err)
		return Result{}, err
	}

	res.InsertedIDs = ids
	log.Printf("seed run=%s store=%s inserted=%d failed=0", res.RunID, l.store.Name(), inserted)
	return res, nil
}

// Count returns the number of documents currently in the store's collection.
func (l *Loader) Count(ctx context.Context) (int64, error) {
	n, err := l.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", l.store.Name(), err)
	}
	return n, nil
}
