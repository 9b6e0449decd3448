package store

import (
	"context"
	"reflect"
	"testing"

	"github.com/roach88/ftr/internal/ftr"
)

func importSample(t *testing.T, s *Store) Import {
	t.Helper()
	imp, _, err := s.ImportRecords(context.Background(), "run.ftr", "hash-1", sampleRecords())
	if err != nil {
		t.Fatalf("ImportRecords() failed: %v", err)
	}
	return imp
}

func TestReadRecords_ReproducesDecodeOrder(t *testing.T) {
	s := createTestStore(t)
	imp := importSample(t, s)

	records, err := s.ReadRecords(context.Background(), imp.ID)
	if err != nil {
		t.Fatalf("ReadRecords() failed: %v", err)
	}
	if !reflect.DeepEqual(records, sampleRecords()) {
		t.Errorf("ReadRecords() mismatch\n got: %#v\nwant: %#v", records, sampleRecords())
	}
}

func TestReadRecords_UnknownImport(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRecords(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Errorf("ReadRecords() error = %v, want sql.ErrNoRows", err)
	}
}

func TestListStreams(t *testing.T) {
	s := createTestStore(t)
	imp := importSample(t, s)

	streams, err := s.ListStreams(context.Background(), imp.ID)
	if err != nil {
		t.Fatalf("ListStreams() failed: %v", err)
	}
	want := []ftr.StreamDescriptor{{StreamID: 1, Name: "bus", Kind: "fifo"}}
	if !reflect.DeepEqual(streams, want) {
		t.Errorf("ListStreams() = %+v, want %+v", streams, want)
	}

	none, err := s.ListStreams(context.Background(), "missing")
	if err != nil {
		t.Fatalf("ListStreams(missing) failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("ListStreams(missing) = %#v, want empty slice", none)
	}
}

func TestReadTransaction(t *testing.T) {
	s := createTestStore(t)
	imp := importSample(t, s)

	tx, err := s.ReadTransaction(context.Background(), imp.ID, 10)
	if err != nil {
		t.Fatalf("ReadTransaction() failed: %v", err)
	}

	wantHeader := ftr.TransactionHeader{StreamID: 1, ID: 10, GeneratorID: 2, StartTime: 100, EndTime: 150}
	if tx.Header != wantHeader {
		t.Errorf("Header = %+v, want %+v", tx.Header, wantHeader)
	}
	if len(tx.Attributes) != 2 {
		t.Fatalf("len(Attributes) = %d, want 2", len(tx.Attributes))
	}
	if tx.Attributes[0].Value != uint64(0x80) {
		t.Errorf("addr value = %#v, want uint64(0x80)", tx.Attributes[0].Value)
	}
	if tx.Attributes[1].Value != "OKAY" {
		t.Errorf("status value = %#v, want OKAY", tx.Attributes[1].Value)
	}
	wantRel := []ftr.Relation{{Name: "parent", From: 10, To: 11}}
	if !reflect.DeepEqual(tx.Relations, wantRel) {
		t.Errorf("Relations = %+v, want %+v", tx.Relations, wantRel)
	}
}

func TestReadTransaction_LargeTimestamps(t *testing.T) {
	s := createTestStore(t)
	imp := importSample(t, s)

	tx, err := s.ReadTransaction(context.Background(), imp.ID, 11)
	if err != nil {
		t.Fatalf("ReadTransaction() failed: %v", err)
	}
	if tx.Header.EndTime != 1<<63+5 {
		t.Errorf("EndTime = %d, want %d", tx.Header.EndTime, uint64(1<<63+5))
	}
	if len(tx.Attributes) != 1 || tx.Attributes[0].Value != int64(-3) {
		t.Errorf("Attributes = %+v, want one int64(-3) value", tx.Attributes)
	}
}

func TestReadTransaction_NotFound(t *testing.T) {
	s := createTestStore(t)
	imp := importSample(t, s)

	_, err := s.ReadTransaction(context.Background(), imp.ID, 999)
	if !IsNotFound(err) {
		t.Errorf("ReadTransaction() error = %v, want sql.ErrNoRows", err)
	}
}
