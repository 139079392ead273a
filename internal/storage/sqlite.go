package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pydocmd/internal/extractor"
	"pydocmd/internal/resolver"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)
var _ resolver.ModuleLoader = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS modules (
			path TEXT PRIMARY KEY,
			filepath TEXT,
			package INTEGER,
			doc TEXT,
			has_doc INTEGER,
			unit_count INTEGER,
			payload JSON
		);`,
		`CREATE INDEX IF NOT EXISTS idx_modules_file ON modules(filepath);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

const upsertModule = `
	INSERT INTO modules (path, filepath, package, doc, has_doc, unit_count, payload)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET
		filepath=excluded.filepath,
		package=excluded.package,
		doc=excluded.doc,
		has_doc=excluded.has_doc,
		unit_count=excluded.unit_count,
		payload=excluded.payload
`

func moduleArgs(mod *extractor.Module) ([]any, error) {
	payload, err := json.Marshal(mod)
	if err != nil {
		return nil, fmt.Errorf("failed to encode module %s: %w", mod.Path, err)
	}
	return []any{mod.Path, mod.Filepath, mod.Package, mod.Doc, mod.HasDoc, len(mod.Units), payload}, nil
}

func (s *SQLiteStore) SaveModule(ctx context.Context, mod *extractor.Module) error {
	args, err := moduleArgs(mod)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, upsertModule, args...)
	return err
}

// SaveModules stores a full snapshot: modules missing from mods are removed.
func (s *SQLiteStore) SaveModules(ctx context.Context, mods []*extractor.Module) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM modules`); err != nil {
		return fmt.Errorf("failed to clear modules: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, upsertModule)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, mod := range mods {
		args, err := moduleArgs(mod)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadModule implements resolver.ModuleLoader.
func (s *SQLiteStore) LoadModule(ctx context.Context, path string) (*extractor.Module, error) {
	row := s.db.QueryRowContext(ctx, "SELECT payload FROM modules WHERE path = ?", path)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("module %q: %w", path, resolver.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query module %s: %w", path, err)
	}
	return decodeModule(payload)
}

func (s *SQLiteStore) ListModules(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT path FROM modules ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func decodeModule(payload []byte) (*extractor.Module, error) {
	var mod extractor.Module
	if err := json.Unmarshal(payload, &mod); err != nil {
		return nil, fmt.Errorf("failed to decode module: %w", err)
	}
	return &mod, nil
}
