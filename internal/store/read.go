package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/ftr/internal/ftr"
)

// Transaction is one transaction header with its attribute events and the
// relations that touch it.
type Transaction struct {
	Header     ftr.TransactionHeader `json:"header"`
	Attributes []ftr.AttributeEvent  `json:"attributes"`
	Relations  []ftr.Relation        `json:"relations"`
}

// ListStreams returns the stream descriptors of an import in decode order.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListStreams(ctx context.Context, importID string) ([]ftr.StreamDescriptor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stream_id, name, kind
		FROM streams
		WHERE import_id = ?
		ORDER BY seq ASC
	`, importID)
	if err != nil {
		return nil, fmt.Errorf("query streams: %w", err)
	}
	defer rows.Close()

	streams := []ftr.StreamDescriptor{}
	for rows.Next() {
		var d ftr.StreamDescriptor
		var id int64
		if err := rows.Scan(&id, &d.Name, &d.Kind); err != nil {
			return nil, fmt.Errorf("scan stream: %w", err)
		}
		d.StreamID = fromSQL(id)
		streams = append(streams, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streams: %w", err)
	}
	return streams, nil
}

// ReadTransaction retrieves transaction txID of an import. If the id was
// reused across streams the first header in decode order wins; attributes
// are those of that stream.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadTransaction(ctx context.Context, importID string, txID uint64) (Transaction, error) {
	var h ftr.TransactionHeader
	var streamID, id, gen, start, end int64
	err := s.db.QueryRowContext(ctx, `
		SELECT stream_id, tx_id, generator_id, start_time, end_time
		FROM transactions
		WHERE import_id = ? AND tx_id = ?
		ORDER BY seq ASC
		LIMIT 1
	`, importID, toSQL(txID)).Scan(&streamID, &id, &gen, &start, &end)
	if err != nil {
		return Transaction{}, err
	}
	h.StreamID = fromSQL(streamID)
	h.ID = fromSQL(id)
	h.GeneratorID = fromSQL(gen)
	h.StartTime = fromSQL(start)
	h.EndTime = fromSQL(end)

	attrs, err := s.readAttributes(ctx, importID, streamID, toSQL(txID))
	if err != nil {
		return Transaction{}, err
	}
	rels, err := s.readRelations(ctx, importID, toSQL(txID))
	if err != nil {
		return Transaction{}, err
	}

	return Transaction{Header: h, Attributes: attrs, Relations: rels}, nil
}

func (s *Store) readAttributes(ctx context.Context, importID string, streamID, txID int64) ([]ftr.AttributeEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stream_id, tx_id, phase, name, type_id, value
		FROM attributes
		WHERE import_id = ? AND stream_id = ? AND tx_id = ?
		ORDER BY seq ASC
	`, importID, streamID, txID)
	if err != nil {
		return nil, fmt.Errorf("query attributes: %w", err)
	}
	defer rows.Close()

	attrs := []ftr.AttributeEvent{}
	for rows.Next() {
		a, err := scanAttribute(rows)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attributes: %w", err)
	}
	return attrs, nil
}

func (s *Store) readRelations(ctx context.Context, importID string, txID int64) ([]ftr.Relation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, from_tx, to_tx
		FROM relations
		WHERE import_id = ? AND (from_tx = ? OR to_tx = ?)
		ORDER BY seq ASC
	`, importID, txID, txID)
	if err != nil {
		return nil, fmt.Errorf("query relations: %w", err)
	}
	defer rows.Close()

	rels := []ftr.Relation{}
	for rows.Next() {
		r, err := scanRelation(rows)
		if err != nil {
			return nil, err
		}
		rels = append(rels, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relations: %w", err)
	}
	return rels, nil
}

func scanAttribute(row rowScanner) (ftr.AttributeEvent, error) {
	var a ftr.AttributeEvent
	var streamID, txID, typeID int64
	var phase, value string
	if err := row.Scan(&streamID, &txID, &phase, &a.Name, &typeID, &value); err != nil {
		return ftr.AttributeEvent{}, fmt.Errorf("scan attribute: %w", err)
	}
	v, err := unmarshalValue(value)
	if err != nil {
		return ftr.AttributeEvent{}, err
	}
	a.StreamID = fromSQL(streamID)
	a.TxID = fromSQL(txID)
	a.Phase = ftr.Phase(phase)
	a.TypeID = ftr.TypeID(fromSQL(typeID))
	a.Value = v
	return a, nil
}

func scanRelation(row rowScanner) (ftr.Relation, error) {
	var r ftr.Relation
	var from, to int64
	if err := row.Scan(&r.Name, &from, &to); err != nil {
		return ftr.Relation{}, fmt.Errorf("scan relation: %w", err)
	}
	r.From = fromSQL(from)
	r.To = fromSQL(to)
	return r, nil
}

// queryEach runs query with args and calls scan for every row.
func (s *Store) queryEach(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
