package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/codestatik/statik/internal/model"
)

// SQLiteStore is the reference Store implementation backed by
// modernc.org/sqlite in WAL mode, living at <root>/.statik/index.db (§6).
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex // single-writer/many-reader discipline over ReplaceFile/DeleteFile (§5)
}

// Open opens (creating if absent) the sqlite database at path and ensures
// the schema and WAL journal mode are in place.
func Open(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; single conn avoids SQLITE_BUSY churn

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY,
	path TEXT NOT NULL UNIQUE,
	language INTEGER NOT NULL,
	mtime INTEGER NOT NULL,
	size INTEGER NOT NULL,
	hash INTEGER NOT NULL,
	source_set TEXT NOT NULL,
	unparsed INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS symbols (
	file_id INTEGER NOT NULL,
	symbol_id BLOB NOT NULL,
	name TEXT NOT NULL,
	qualified_name TEXT NOT NULL,
	kind INTEGER NOT NULL,
	line INTEGER NOT NULL,
	column INTEGER NOT NULL,
	offset INTEGER NOT NULL,
	parent BLOB,
	visibility INTEGER NOT NULL,
	signature TEXT,
	PRIMARY KEY (file_id, symbol_id)
);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE TABLE IF NOT EXISTS imports (
	file_id INTEGER NOT NULL,
	specifier TEXT NOT NULL,
	names_json TEXT NOT NULL,
	is_type_only INTEGER NOT NULL,
	is_dynamic INTEGER NOT NULL,
	is_mod_declaration INTEGER NOT NULL,
	line INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_imports_file ON imports(file_id);
CREATE TABLE IF NOT EXISTS exports (
	file_id INTEGER NOT NULL,
	symbol_id BLOB,
	name TEXT NOT NULL,
	is_reexport INTEGER NOT NULL,
	reexport_source TEXT,
	is_type_only INTEGER NOT NULL,
	line INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exports_file ON exports(file_id);
CREATE TABLE IF NOT EXISTS references_ (
	file_id INTEGER NOT NULL,
	source_symbol BLOB,
	target_symbol BLOB,
	target_name TEXT,
	kind INTEGER NOT NULL,
	line INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_refs_source ON references_(source_symbol);
CREATE INDEX IF NOT EXISTS idx_refs_target_name ON references_(target_name);
CREATE TABLE IF NOT EXISTS suppressions (
	file_id INTEGER NOT NULL,
	line INTEGER NOT NULL,
	rule_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_suppressions_file ON suppressions(file_id);
`
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// ReplaceFile atomically swaps all rows owned by rec.File.ID (§3 invariant 1).
func (s *SQLiteStore) ReplaceFile(ctx context.Context, rec FileRecords) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace file: begin tx: %w", err)
	}
	defer tx.Rollback()

	id := rec.File.ID
	for _, table := range []string{"symbols", "imports", "exports", "references_", "suppressions"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE file_id = ?", table), id); err != nil {
			return fmt.Errorf("replace file: clear %s: %w", table, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO files (id, path, language, mtime, size, hash, source_set, unparsed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path=excluded.path, language=excluded.language, mtime=excluded.mtime,
			size=excluded.size, hash=excluded.hash, source_set=excluded.source_set,
			unparsed=excluded.unparsed
	`, id, rec.File.Path, rec.File.Language, rec.File.Fingerprint.ModTime,
		rec.File.Fingerprint.Size, int64(rec.File.Fingerprint.Hash), rec.File.SourceSet, rec.File.Unparsed)
	if err != nil {
		return fmt.Errorf("replace file: upsert file row: %w", err)
	}

	for _, sym := range rec.Symbols {
		var parent any
		if sym.Parent != nil {
			parent = sym.Parent[:]
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO symbols (file_id, symbol_id, name, qualified_name, kind, line, column, offset, parent, visibility, signature)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, sym.ID[:], sym.Name, sym.QualifiedName, sym.Kind, sym.Position.Line, sym.Position.Column,
			sym.Position.Offset, parent, sym.Visibility, sym.Signature)
		if err != nil {
			return fmt.Errorf("replace file: insert symbol: %w", err)
		}
	}

	for _, imp := range rec.Imports {
		namesJSON, err := json.Marshal(imp.Names)
		if err != nil {
			return fmt.Errorf("replace file: marshal import names: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO imports (file_id, specifier, names_json, is_type_only, is_dynamic, is_mod_declaration, line)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, imp.Specifier, string(namesJSON), imp.IsTypeOnly, imp.IsDynamic, imp.IsModDeclaration, imp.Line)
		if err != nil {
			return fmt.Errorf("replace file: insert import: %w", err)
		}
	}

	for _, exp := range rec.Exports {
		var symID any
		if exp.Symbol != nil {
			symID = exp.Symbol[:]
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO exports (file_id, symbol_id, name, is_reexport, reexport_source, is_type_only, line)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, symID, exp.Name, exp.IsReexport, exp.ReexportSource, exp.IsTypeOnly, exp.Line)
		if err != nil {
			return fmt.Errorf("replace file: insert export: %w", err)
		}
	}

	for _, ref := range rec.References {
		var sourceID, targetID any
		if !ref.Source.IsZero() {
			sourceID = ref.Source[:]
		}
		if ref.Target.Resolved() {
			targetID = ref.Target.Symbol[:]
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO references_ (file_id, source_symbol, target_symbol, target_name, kind, line)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, sourceID, targetID, ref.Target.Name, ref.Kind, ref.Line)
		if err != nil {
			return fmt.Errorf("replace file: insert reference: %w", err)
		}
	}

	for _, sup := range rec.Suppressions {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO suppressions (file_id, line, rule_id) VALUES (?, ?, ?)
		`, id, sup.Line, sup.RuleID)
		if err != nil {
			return fmt.Errorf("replace file: insert suppression: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteFile removes a file and every record it owns.
func (s *SQLiteStore) DeleteFile(ctx context.Context, id model.FileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete file: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"symbols", "imports", "exports", "references_", "suppressions", "files"} {
		col := "file_id"
		if table == "files" {
			col = "id"
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, col), id); err != nil {
			return fmt.Errorf("delete file: clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetFile(ctx context.Context, id model.FileID) (model.File, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, `SELECT id, path, language, mtime, size, hash, source_set, unparsed FROM files WHERE id = ?`, id)
	return scanFile(row)
}

func (s *SQLiteStore) FileByPath(ctx context.Context, path string) (model.File, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, `SELECT id, path, language, mtime, size, hash, source_set, unparsed FROM files WHERE path = ?`, path)
	return scanFile(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (model.File, bool, error) {
	var f model.File
	var lang int
	var hash int64
	if err := row.Scan(&f.ID, &f.Path, &lang, &f.Fingerprint.ModTime, &f.Fingerprint.Size, &hash, &f.SourceSet, &f.Unparsed); err != nil {
		if err == sql.ErrNoRows {
			return model.File{}, false, nil
		}
		return model.File{}, false, fmt.Errorf("scan file: %w", err)
	}
	f.Language = model.Language(lang)
	f.Fingerprint.Hash = uint64(hash)
	return f, true, nil
}

func (s *SQLiteStore) AllFiles(ctx context.Context) ([]model.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT id, path, language, mtime, size, hash, source_set, unparsed FROM files`)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var out []model.File
	for rows.Next() {
		f, ok, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, f)
		}
	}
	return out, rows.Err()
}

func (s *SQLiteStore) FileCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) Symbols(ctx context.Context, id model.FileID) ([]model.Symbol, error) {
	return s.querySymbols(ctx, `WHERE file_id = ?`, id)
}

func (s *SQLiteStore) AllSymbols(ctx context.Context) ([]model.Symbol, error) {
	return s.querySymbols(ctx, ``)
}

func (s *SQLiteStore) querySymbols(ctx context.Context, where string, args ...any) ([]model.Symbol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT file_id, symbol_id, name, qualified_name, kind, line, column, offset, parent, visibility, signature FROM symbols `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var out []model.Symbol
	for rows.Next() {
		var sym model.Symbol
		var symID, parent []byte
		var kind, vis int
		if err := rows.Scan(&sym.FileID, &symID, &sym.Name, &sym.QualifiedName, &kind,
			&sym.Position.Line, &sym.Position.Column, &sym.Position.Offset, &parent, &vis, &sym.Signature); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		copy(sym.ID[:], symID)
		sym.Kind = model.SymbolKind(kind)
		sym.Visibility = model.Visibility(vis)
		if len(parent) == 16 {
			var p model.SymbolID
			copy(p[:], parent)
			sym.Parent = &p
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Imports(ctx context.Context, id model.FileID) ([]model.Import, error) {
	return s.queryImports(ctx, `WHERE file_id = ?`, id)
}

func (s *SQLiteStore) AllImports(ctx context.Context) ([]model.Import, error) {
	return s.queryImports(ctx, ``)
}

func (s *SQLiteStore) queryImports(ctx context.Context, where string, args ...any) ([]model.Import, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT file_id, specifier, names_json, is_type_only, is_dynamic, is_mod_declaration, line FROM imports `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	var out []model.Import
	for rows.Next() {
		var imp model.Import
		var namesJSON string
		if err := rows.Scan(&imp.FileID, &imp.Specifier, &namesJSON, &imp.IsTypeOnly, &imp.IsDynamic, &imp.IsModDeclaration, &imp.Line); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		if err := json.Unmarshal([]byte(namesJSON), &imp.Names); err != nil {
			return nil, fmt.Errorf("unmarshal import names: %w", err)
		}
		out = append(out, imp)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Exports(ctx context.Context, id model.FileID) ([]model.Export, error) {
	return s.queryExports(ctx, `WHERE file_id = ?`, id)
}

func (s *SQLiteStore) AllExports(ctx context.Context) ([]model.Export, error) {
	return s.queryExports(ctx, ``)
}

func (s *SQLiteStore) queryExports(ctx context.Context, where string, args ...any) ([]model.Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT file_id, symbol_id, name, is_reexport, reexport_source, is_type_only, line FROM exports `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()

	var out []model.Export
	for rows.Next() {
		var exp model.Export
		var symID []byte
		var reexportSrc sql.NullString
		if err := rows.Scan(&exp.FileID, &symID, &exp.Name, &exp.IsReexport, &reexportSrc, &exp.IsTypeOnly, &exp.Line); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		if len(symID) == 16 {
			var id model.SymbolID
			copy(id[:], symID)
			exp.Symbol = &id
		}
		exp.ReexportSource = reexportSrc.String
		out = append(out, exp)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ReferencesBySource(ctx context.Context, id model.SymbolID) ([]model.Reference, error) {
	return s.queryReferences(ctx, `WHERE source_symbol = ?`, id[:])
}

func (s *SQLiteStore) ReferencesByTargetName(ctx context.Context, name string) ([]model.Reference, error) {
	return s.queryReferences(ctx, `WHERE target_name = ?`, name)
}

func (s *SQLiteStore) AllReferences(ctx context.Context) ([]model.Reference, error) {
	return s.queryReferences(ctx, ``)
}

func (s *SQLiteStore) queryReferences(ctx context.Context, where string, args ...any) ([]model.Reference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT file_id, source_symbol, target_symbol, target_name, kind, line FROM references_ `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query references: %w", err)
	}
	defer rows.Close()

	var out []model.Reference
	for rows.Next() {
		var ref model.Reference
		var source, target []byte
		var targetName sql.NullString
		var kind int
		if err := rows.Scan(&ref.FileID, &source, &target, &targetName, &kind, &ref.Line); err != nil {
			return nil, fmt.Errorf("scan reference: %w", err)
		}
		if len(source) == 16 {
			copy(ref.Source[:], source)
		}
		if len(target) == 16 {
			copy(ref.Target.Symbol[:], target)
		}
		ref.Target.Name = targetName.String
		ref.Kind = model.ReferenceKind(kind)
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Suppressions(ctx context.Context, id model.FileID) ([]model.Suppression, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT file_id, line, rule_id FROM suppressions WHERE file_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("query suppressions: %w", err)
	}
	defer rows.Close()

	var out []model.Suppression
	for rows.Next() {
		var sup model.Suppression
		if err := rows.Scan(&sup.FileID, &sup.Line, &sup.RuleID); err != nil {
			return nil, fmt.Errorf("scan suppression: %w", err)
		}
		out = append(out, sup)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
