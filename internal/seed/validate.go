package seed

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"bookseed/internal/book"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// A zero Date has no calendar day, so "required" must see through it.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(book.Date); ok {
			return d.Time()
		}
		return nil
	}, book.Date{})
}

// Validate checks the fixture records offline. It is not part of the load
// path, which leaves all enforcement to the store.
func Validate(records []book.Book) error {
	var errs []error
	for i, r := range records {
		if err := validate.Struct(r); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) {
				for _, fe := range fieldErrs {
					errs = append(errs, fmt.Errorf("record %d: %s is %s", i, fieldPath(fe), fe.Tag()))
				}
				continue
			}
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// fieldPath drops the struct name from the namespace, "Book.author.name"
// becomes "author.name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
