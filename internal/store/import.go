package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/ftr/internal/ftr"
)

// timeFormat is fixed width so imported_at sorts as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// Import describes one imported file.
type Import struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	ContentHash string    `json:"content_hash"`
	RecordCount int       `json:"record_count"`
	ImportedAt  time.Time `json:"imported_at"`
}

// ImportRecords stores the records decoded from one file.
// Returns the import and whether it was newly inserted.
//
// Uses ON CONFLICT(content_hash) DO NOTHING for idempotency: if the same
// content was imported before, the existing import is returned with
// inserted=false and no records are written. The insert and all record rows
// are written in a single transaction.
func (s *Store) ImportRecords(ctx context.Context, path, contentHash string, records []ftr.Record) (imp Import, inserted bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Import{}, false, fmt.Errorf("import records: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	imp = Import{
		ID:          s.newID(),
		Path:        path,
		ContentHash: contentHash,
		RecordCount: len(records),
		ImportedAt:  s.now().UTC(),
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO imports (id, path, content_hash, record_count, imported_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO NOTHING
	`,
		imp.ID,
		imp.Path,
		imp.ContentHash,
		imp.RecordCount,
		imp.ImportedAt.Format(timeFormat),
	)
	if err != nil {
		return Import{}, false, fmt.Errorf("import records: insert import: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return Import{}, false, fmt.Errorf("import records: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		existing, err := scanImport(tx.QueryRowContext(ctx, selectImport+`WHERE content_hash = ?`, contentHash))
		if err != nil {
			return Import{}, false, fmt.Errorf("import records: fetch existing: %w", err)
		}
		return existing, false, nil
	}

	for seq, rec := range records {
		if err := writeRecord(ctx, tx, imp.ID, int64(seq), rec); err != nil {
			return Import{}, false, fmt.Errorf("import records: record %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Import{}, false, fmt.Errorf("import records: commit: %w", err)
	}
	return imp, true, nil
}

func writeRecord(ctx context.Context, tx *sql.Tx, importID string, seq int64, rec ftr.Record) error {
	var err error
	switch r := rec.(type) {
	case ftr.StreamDescriptor:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO streams (import_id, seq, stream_id, name, kind)
			VALUES (?, ?, ?, ?, ?)
		`, importID, seq, toSQL(r.StreamID), r.Name, r.Kind)
	case ftr.GeneratorDescriptor:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO generators (import_id, seq, generator_id, name, stream_id)
			VALUES (?, ?, ?, ?, ?)
		`, importID, seq, toSQL(r.GeneratorID), r.Name, toSQL(r.StreamID))
	case ftr.TransactionHeader:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions (import_id, seq, stream_id, tx_id, generator_id, start_time, end_time)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, importID, seq, toSQL(r.StreamID), toSQL(r.ID), toSQL(r.GeneratorID), toSQL(r.StartTime), toSQL(r.EndTime))
	case ftr.AttributeEvent:
		value, merr := marshalValue(r.Value)
		if merr != nil {
			return merr
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO attributes (import_id, seq, stream_id, tx_id, phase, name, type_id, value)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, importID, seq, toSQL(r.StreamID), toSQL(r.TxID), string(r.Phase), r.Name, toSQL(uint64(r.TypeID)), value)
	case ftr.Relation:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO relations (import_id, seq, name, from_tx, to_tx)
			VALUES (?, ?, ?, ?, ?)
		`, importID, seq, r.Name, toSQL(r.From), toSQL(r.To))
	case ftr.Diagnostic:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO diagnostics (import_id, seq, scope, tag, chunk_offset, message)
			VALUES (?, ?, ?, ?, ?, ?)
		`, importID, seq, string(r.Scope), toSQL(r.Tag), r.Offset, r.Message)
	default:
		return fmt.Errorf("unsupported record type %T", rec)
	}
	return err
}

const selectImport = `
	SELECT id, path, content_hash, record_count, imported_at
	FROM imports
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImport(row rowScanner) (Import, error) {
	var imp Import
	var importedAt string
	if err := row.Scan(&imp.ID, &imp.Path, &imp.ContentHash, &imp.RecordCount, &importedAt); err != nil {
		return Import{}, err
	}
	t, err := time.Parse(timeFormat, importedAt)
	if err != nil {
		return Import{}, fmt.Errorf("parse imported_at %q: %w", importedAt, err)
	}
	imp.ImportedAt = t
	return imp, nil
}

// GetImport retrieves one import by id.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetImport(ctx context.Context, id string) (Import, error) {
	return scanImport(s.db.QueryRowContext(ctx, selectImport+`WHERE id = ?`, id))
}

// FindImportByHash retrieves the import of a given content hash.
// Returns sql.ErrNoRows if the content was never imported.
func (s *Store) FindImportByHash(ctx context.Context, contentHash string) (Import, error) {
	return scanImport(s.db.QueryRowContext(ctx, selectImport+`WHERE content_hash = ?`, contentHash))
}

// ListImports returns all imports, oldest first.
// Returns an empty slice (not nil) if nothing was imported.
func (s *Store) ListImports(ctx context.Context) ([]Import, error) {
	rows, err := s.db.QueryContext(ctx, selectImport+`ORDER BY imported_at ASC, id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	imports := []Import{}
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		imports = append(imports, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate imports: %w", err)
	}
	return imports, nil
}

// IsNotFound reports whether err means a lookup matched no row.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
