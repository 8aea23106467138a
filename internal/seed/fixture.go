package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"bookseed/internal/book"
)

//go:embed books.json
var booksJSON []byte

// DefaultCollection is the collection the fixture is loaded into.
const DefaultCollection = "books"

// Records decodes the embedded book fixture. Each call returns a fresh
// slice, so callers may modify it freely.
func Records() ([]book.Book, error) {
	var records []book.Book
	if err := json.Unmarshal(booksJSON, &records); err != nil {
		return nil, fmt.Errorf("decode book fixture: %w", err)
	}
	return records, nil
}

