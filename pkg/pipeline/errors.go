package pipeline

import (
	"errors"
	"fmt"
)

// Document operation names recorded in DocumentError.
const (
	opRead  = "read"
	opWrite = "write"
)

// DocumentError is the one fatal failure class: the source document could not
// be read or the translated result could not be written. Every other failure
// degrades inside the pipeline instead of surfacing.
type DocumentError struct {
	Op  string
	Key string
	Err error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// IsDocumentError reports whether err is (or wraps) a DocumentError.
func IsDocumentError(err error) bool {
	var de *DocumentError
	return errors.As(err, &de)
}
