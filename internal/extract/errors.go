package extract

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrExtraction        = errors.New("text extraction failed")
)

// Error ties an extraction failure to the resume it came from.
type Error struct {
	Path    string
	Op      string
	BaseErr error
	Detail  error
}

func (e *Error) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("%s (op: %s, path: %s): %v", e.BaseErr, e.Op, e.Path, e.Detail)
	}
	return fmt.Sprintf("%s (op: %s, path: %s)", e.BaseErr, e.Op, e.Path)
}

func (e *Error) Unwrap() []error {
	if e.Detail == nil {
		return []error{e.BaseErr}
	}
	return []error{e.BaseErr, e.Detail}
}

func NewUnsupportedError(path string) error {
	return &Error{
		Path:    path,
		Op:      "detect",
		BaseErr: ErrUnsupportedFormat,
	}
}

func NewExtractionError(path, op string, detail error) error {
	return &Error{
		Path:    path,
		Op:      op,
		BaseErr: ErrExtraction,
		Detail:  detail,
	}
}
