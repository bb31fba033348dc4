package loader

import "fmt"

// ErrorKind classifies why a document was skipped.
type ErrorKind string

const (
	// ReadError means the document could not be fetched from the source.
	ReadError ErrorKind = "read"
	// ParseError means the document is not well-formed JSON.
	ParseError ErrorKind = "parse"
	// ShapeError means the JSON lacks the systems/planets structure.
	ShapeError ErrorKind = "shape"
)

// DocumentError reports one skipped document.
type DocumentError struct {
	Key  string
	Kind ErrorKind
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s error in %s: %v", e.Kind, e.Key, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

func shapeErrorf(key, format string, args ...any) *DocumentError {
	return &DocumentError{Key: key, Kind: ShapeError, Err: fmt.Errorf(format, args...)}
}
