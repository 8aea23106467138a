// Package pgstore writes seed records into the relational books schema.
// The whole batch runs in one transaction, so a load either lands every
// record or none.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bookseed/internal/book"
	"bookseed/internal/seed"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Name identifies PostgreSQL in logs and responses.
const Name = "PostgreSQL"

// insertBookSQL stores one record: its author, the book, and the ordered
// genre links. Genres are shared by name across books.
const insertBookSQL = `
	WITH a AS (
		INSERT INTO authors (name, biography)
		VALUES ($1, $2)
		RETURNING id
	), b AS (
		INSERT INTO books (title, author_id, short_description, published_date)
		SELECT $3, a.id, $4, $5 FROM a
		RETURNING id
	), g AS (
		INSERT INTO genres (name)
		SELECT DISTINCT unnest($6::text[])
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	), bg AS (
		INSERT INTO book_genres (book_id, genre_id, position)
		SELECT b.id, g.id, o.pos - 1
		FROM b, unnest($6::text[]) WITH ORDINALITY AS o(name, pos)
		JOIN g ON g.name = o.name
	)
	SELECT id FROM b`

type Store struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func New(db *pgxpool.Pool, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

func (s *Store) Name() string { return Name }

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// InsertMany sends every record in one batch inside a transaction and
// returns the new book ids in input order.
func (s *Store) InsertMany(ctx context.Context, records []book.Book) ([]string, error) {
	if len(records) == 0 {
		return nil, seed.ErrEmptyBatch
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, classify(err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range records {
		genres := r.Genres
		if genres == nil {
			genres = []string{}
		}
		batch.Queue(insertBookSQL,
			r.Author.Name, r.Author.Biography,
			r.Title, r.ShortDescription, r.PublishedDate.Time(),
			genres,
		)
	}

	ids, err := readIDs(tx.SendBatch(ctx, batch), records)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classify(err, "commit")
	}
	return ids, nil
}

func readIDs(br pgx.BatchResults, records []book.Book) (ids []string, err error) {
	defer func() {
		if closeErr := br.Close(); closeErr != nil && err == nil {
			err = classify(closeErr, "close batch")
		}
	}()

	ids = make([]string, len(records))
	for i := range records {
		var id int64
		if err := br.QueryRow().Scan(&id); err != nil {
			return nil, recordError(err, i, records[i])
		}
		ids[i] = strconv.FormatInt(id, 10)
	}
	return ids, nil
}

// recordError maps a failure of record i. Integrity and data exceptions are
// the store rejecting the record; anything else fails the whole batch.
func recordError(err error, i int, r book.Book) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (strings.HasPrefix(pgErr.Code, "23") || strings.HasPrefix(pgErr.Code, "22")) {
		return &seed.ValidationError{
			Index:   i,
			Record:  r,
			Code:    pgErr.Code,
			Message: pgErr.Message,
		}
	}
	return classify(err, fmt.Sprintf("insert record %d", i))
}

func classify(err error, op string) error {
	if isConnectionError(err) {
		return &seed.ConnectionError{Store: Name, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConnectionError(err error) bool {
	var connErr *pgconn.ConnectError
	switch {
	case errors.As(err, &connErr):
		return true
	case pgconn.Timeout(err):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM books").Scan(&n); err != nil {
		return 0, classify(err, "count books")
	}
	return n, nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.db.Ping(ctx)
}
