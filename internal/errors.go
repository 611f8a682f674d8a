package internal

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failures an export can end with. None of them is
// retried; every one aborts the export without producing an artifact.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAssetLoad
	KindConfigInvariant
	KindLayoutOverflow
	KindPackaging
)

func (k ErrorKind) String() string {
	switch k {
	case KindAssetLoad:
		return "asset load"
	case KindConfigInvariant:
		return "config invariant"
	case KindLayoutOverflow:
		return "layout overflow"
	case KindPackaging:
		return "packaging"
	}
	return "unknown"
}

// ExportError is a classified failure. Op names the operation that failed.
type ExportError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

var (
	ErrAssetLoad       = &ExportError{Kind: KindAssetLoad}
	ErrConfigInvariant = &ExportError{Kind: KindConfigInvariant}
	ErrLayoutOverflow  = &ExportError{Kind: KindLayoutOverflow}
	ErrPackaging       = &ExportError{Kind: KindPackaging}
)

func NewError(kind ErrorKind, op string, err error) error {
	return &ExportError{Kind: kind, Op: op, Err: err}
}

// Errorf builds an *ExportError whose cause is formatted like fmt.Errorf, so %w
// verbs keep the underlying chain intact.
func Errorf(kind ErrorKind, op, format string, v ...any) error {
	return &ExportError{Kind: kind, Op: op, Err: fmt.Errorf(format, v...)}
}

func (e *ExportError) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.String() + " error"
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *ExportError) Is(target error) bool {
	t, ok := target.(*ExportError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// KindOf returns the kind of the first *ExportError in err's chain.
func KindOf(err error) ErrorKind {
	var e *ExportError
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
