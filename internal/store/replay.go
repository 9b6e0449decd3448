package store

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/roach88/ftr/internal/ftr"
)

// seqRecord is a record with its position in decode order.
type seqRecord struct {
	seq    int64
	record ftr.Record
}

// ReadRecords returns every record of an import in decode order. The result
// equals the slice that was passed to ImportRecords, except that attribute
// values pass through canonical JSON (see unmarshalValue).
//
// Returns sql.ErrNoRows if the import does not exist.
func (s *Store) ReadRecords(ctx context.Context, importID string) ([]ftr.Record, error) {
	imp, err := s.GetImport(ctx, importID)
	if err != nil {
		return nil, err
	}

	events := make([]seqRecord, 0, imp.RecordCount)
	add := func(seq int64, r ftr.Record) {
		events = append(events, seqRecord{seq: seq, record: r})
	}
	args := []any{importID}

	queries := []struct {
		table string
		query string
		scan  func(*sql.Rows) error
	}{
		{"streams", `SELECT seq, stream_id, name, kind FROM streams WHERE import_id = ?`,
			func(rows *sql.Rows) error {
				var seq, id int64
				var d ftr.StreamDescriptor
				if err := rows.Scan(&seq, &id, &d.Name, &d.Kind); err != nil {
					return err
				}
				d.StreamID = fromSQL(id)
				add(seq, d)
				return nil
			}},
		{"generators", `SELECT seq, generator_id, name, stream_id FROM generators WHERE import_id = ?`,
			func(rows *sql.Rows) error {
				var seq, id, stream int64
				var d ftr.GeneratorDescriptor
				if err := rows.Scan(&seq, &id, &d.Name, &stream); err != nil {
					return err
				}
				d.GeneratorID = fromSQL(id)
				d.StreamID = fromSQL(stream)
				add(seq, d)
				return nil
			}},
		{"transactions", `SELECT seq, stream_id, tx_id, generator_id, start_time, end_time FROM transactions WHERE import_id = ?`,
			func(rows *sql.Rows) error {
				var seq, stream, id, gen, start, end int64
				if err := rows.Scan(&seq, &stream, &id, &gen, &start, &end); err != nil {
					return err
				}
				add(seq, ftr.TransactionHeader{
					StreamID:    fromSQL(stream),
					ID:          fromSQL(id),
					GeneratorID: fromSQL(gen),
					StartTime:   fromSQL(start),
					EndTime:     fromSQL(end),
				})
				return nil
			}},
		{"attributes", `SELECT seq, stream_id, tx_id, phase, name, type_id, value FROM attributes WHERE import_id = ?`,
			func(rows *sql.Rows) error {
				var seq int64
				a, err := scanAttribute(seqScanner{rows: rows, seq: &seq})
				if err != nil {
					return err
				}
				add(seq, a)
				return nil
			}},
		{"relations", `SELECT seq, name, from_tx, to_tx FROM relations WHERE import_id = ?`,
			func(rows *sql.Rows) error {
				var seq int64
				r, err := scanRelation(seqScanner{rows: rows, seq: &seq})
				if err != nil {
					return err
				}
				add(seq, r)
				return nil
			}},
		{"diagnostics", `SELECT seq, scope, tag, chunk_offset, message FROM diagnostics WHERE import_id = ?`,
			func(rows *sql.Rows) error {
				var seq, tag int64
				var scope string
				var d ftr.Diagnostic
				if err := rows.Scan(&seq, &scope, &tag, &d.Offset, &d.Message); err != nil {
					return err
				}
				d.Scope = ftr.DiagnosticScope(scope)
				d.Tag = fromSQL(tag)
				add(seq, d)
				return nil
			}},
	}

	for _, q := range queries {
		if err := s.queryEach(ctx, q.query, args, q.scan); err != nil {
			return nil, fmt.Errorf("read %s: %w", q.table, err)
		}
	}

	slices.SortFunc(events, func(a, b seqRecord) int {
		return cmp.Compare(a.seq, b.seq)
	})

	records := make([]ftr.Record, len(events))
	for i, e := range events {
		records[i] = e.record
	}
	return records, nil
}

// seqScanner reads a leading seq column before handing the rest of the row
// to a row scanner shared with the single-table queries.
type seqScanner struct {
	rows *sql.Rows
	seq  *int64
}

func (s seqScanner) Scan(dest ...any) error {
	return s.rows.Scan(append([]any{s.seq}, dest...)...)
}
