// Package store defines the persistence adapter contract from §6: CRUD over
// file/symbol/import/export/reference records keyed by FileID, with atomic
// per-file replace, iteration and count queries. The core analysis and lint
// subsystems depend only on this interface; indexing is the only writer.
package store

import (
	"context"

	"github.com/codestatik/statik/internal/model"
)

// FileRecords bundles everything persisted for one file so that replacing it
// is a single atomic operation (§3 invariant 1).
type FileRecords struct {
	File       model.File
	Symbols    []model.Symbol
	Imports    []model.Import
	Exports    []model.Export
	References []model.Reference
	Suppressions []model.Suppression
}

// Store is the persistence adapter contract. Implementations must honor a
// single-writer/many-reader discipline (§5): ReplaceFile/DeleteFile take an
// exclusive lock class, everything else a shared one.
type Store interface {
	// ReplaceFile atomically replaces all records owned by rec.File.ID.
	ReplaceFile(ctx context.Context, rec FileRecords) error

	// DeleteFile removes a file and everything it owns (discovery no longer
	// sees it, §3 Lifecycle).
	DeleteFile(ctx context.Context, id model.FileID) error

	// GetFile returns the persisted file record, or ok=false if unknown.
	GetFile(ctx context.Context, id model.FileID) (model.File, bool, error)

	// FileByPath looks a file up by its project-relative path.
	FileByPath(ctx context.Context, path string) (model.File, bool, error)

	// AllFiles iterates every persisted file record.
	AllFiles(ctx context.Context) ([]model.File, error)

	// FileCount returns the number of persisted file records.
	FileCount(ctx context.Context) (int, error)

	// Symbols returns every symbol owned by a file.
	Symbols(ctx context.Context, id model.FileID) ([]model.Symbol, error)

	// AllSymbols iterates every persisted symbol, across all files.
	AllSymbols(ctx context.Context) ([]model.Symbol, error)

	// Imports returns every import record owned by a file.
	Imports(ctx context.Context, id model.FileID) ([]model.Import, error)

	// AllImports iterates every persisted import record.
	AllImports(ctx context.Context) ([]model.Import, error)

	// Exports returns every export record owned by a file.
	Exports(ctx context.Context, id model.FileID) ([]model.Export, error)

	// AllExports iterates every persisted export record.
	AllExports(ctx context.Context) ([]model.Export, error)

	// ReferencesBySource returns references whose Source symbol matches id.
	ReferencesBySource(ctx context.Context, id model.SymbolID) ([]model.Reference, error)

	// ReferencesByTargetName returns references whose unresolved target name
	// matches, across all files (used to resolve references after the fact).
	ReferencesByTargetName(ctx context.Context, name string) ([]model.Reference, error)

	// AllReferences iterates every persisted reference.
	AllReferences(ctx context.Context) ([]model.Reference, error)

	// Suppressions returns inline suppression comments owned by a file.
	Suppressions(ctx context.Context, id model.FileID) ([]model.Suppression, error)

	// Close releases underlying resources (the sqlite connection, etc).
	Close() error
}
