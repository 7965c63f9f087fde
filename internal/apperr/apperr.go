// Package apperr classifies failures at the pipeline and entry-point boundaries.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInputNotFound
	KindExtraction
	KindTranscription
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindInputNotFound:
		return "input not found"
	case KindExtraction:
		return "extraction"
	case KindTranscription:
		return "transcription"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Error carries a Kind alongside a user-facing message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Err != nil:
		return e.Err.Error()
	case e.Err == nil:
		return e.Msg
	default:
		return e.Msg + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func InputNotFound(path string) error {
	return &Error{Kind: KindInputNotFound, Msg: fmt.Sprintf("video file %q not found", path)}
}

func Extraction(err error) error {
	return &Error{Kind: KindExtraction, Msg: "failed to extract audio", Err: err}
}

func Transcription(err error) error {
	return &Error{Kind: KindTranscription, Msg: "transcription failed", Err: err}
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Validation(msg string, err error) error {
	return &Error{Kind: KindValidation, Msg: msg, Err: err}
}
