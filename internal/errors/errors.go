// Package errors implements the error taxonomy of §7: every kind carries a
// human-readable message and a machine tag, so callers can branch on Kind
// without string-matching.
package errors

import (
	"fmt"
	"time"

	"github.com/codestatik/statik/internal/model"
)

// Kind discriminates the six error kinds named in §7.
type Kind string

const (
	KindParseIncomplete      Kind = "parse_incomplete"
	KindResolverUnresolved   Kind = "resolver_unresolved"
	KindPersistenceIO        Kind = "persistence_io"
	KindConfigInvalid        Kind = "config_invalid"
	KindFileNotFoundInIndex  Kind = "file_not_found_in_index"
	KindCancelled            Kind = "cancelled"
)

// ParseIncompleteError is recoverable: the file is logged and marked
// partially-parsed, and analyses continue over whatever was extracted.
type ParseIncompleteError struct {
	File       model.FileID
	Path       string
	Underlying error
	Timestamp  time.Time
}

func NewParseIncompleteError(file model.FileID, path string, err error) *ParseIncompleteError {
	return &ParseIncompleteError{File: file, Path: path, Underlying: err, Timestamp: time.Now()}
}

func (e *ParseIncompleteError) Kind() Kind { return KindParseIncomplete }

func (e *ParseIncompleteError) Error() string {
	return fmt.Sprintf("parse incomplete for %s: %v", e.Path, e.Underlying)
}

func (e *ParseIncompleteError) Unwrap() error { return e.Underlying }

// ResolverUnresolvedError is first-class data attached to an import record,
// not a failure: it never aborts a command, only lowers confidence.
type ResolverUnresolvedError struct {
	File      model.FileID
	Specifier string
	Reason    model.UnresolvedReason
}

func NewResolverUnresolvedError(file model.FileID, specifier string, reason model.UnresolvedReason) *ResolverUnresolvedError {
	return &ResolverUnresolvedError{File: file, Specifier: specifier, Reason: reason}
}

func (e *ResolverUnresolvedError) Kind() Kind { return KindResolverUnresolved }

func (e *ResolverUnresolvedError) Error() string {
	return fmt.Sprintf("unresolved import %q: %s", e.Specifier, e.Reason)
}

// PersistenceIOError is fatal for the current command.
type PersistenceIOError struct {
	Operation  string
	Underlying error
	Timestamp  time.Time
}

func NewPersistenceIOError(op string, err error) *PersistenceIOError {
	return &PersistenceIOError{Operation: op, Underlying: err, Timestamp: time.Now()}
}

func (e *PersistenceIOError) Kind() Kind { return KindPersistenceIO }

func (e *PersistenceIOError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Operation, e.Underlying)
}

func (e *PersistenceIOError) Unwrap() error { return e.Underlying }

// ConfigInvalidError is fatal before any work starts; Line is 0 when the
// source of the invalid value carries no position (e.g. a CLI flag).
type ConfigInvalidError struct {
	File       string
	Line       int
	Field      string
	Underlying error
}

func NewConfigInvalidError(file, field string, line int, err error) *ConfigInvalidError {
	return &ConfigInvalidError{File: file, Line: line, Field: field, Underlying: err}
}

func (e *ConfigInvalidError) Kind() Kind { return KindConfigInvalid }

func (e *ConfigInvalidError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid config at %s:%d (%s): %v", e.File, e.Line, e.Field, e.Underlying)
	}
	return fmt.Sprintf("invalid config (%s): %v", e.Field, e.Underlying)
}

func (e *ConfigInvalidError) Unwrap() error { return e.Underlying }

// FileNotFoundInIndexError is command-specific: deps/impact/exports on a
// path absent from the persisted index.
type FileNotFoundInIndexError struct {
	Command string
	Path    string
}

func NewFileNotFoundInIndexError(command, path string) *FileNotFoundInIndexError {
	return &FileNotFoundInIndexError{Command: command, Path: path}
}

func (e *FileNotFoundInIndexError) Kind() Kind { return KindFileNotFoundInIndex }

func (e *FileNotFoundInIndexError) Error() string {
	return fmt.Sprintf("%s: %s is not in the index", e.Command, e.Path)
}

// CancelledError wraps a command aborted by SIGINT or a cancelled context.
type CancelledError struct {
	Stage string
}

func NewCancelledError(stage string) *CancelledError {
	return &CancelledError{Stage: stage}
}

func (e *CancelledError) Kind() Kind { return KindCancelled }

func (e *CancelledError) Error() string {
	return fmt.Sprintf("cancelled during %s", e.Stage)
}

// MultiError aggregates independent per-file errors from a batch operation
// (e.g. indexing) into a single error value.
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error { return e.Errors }
