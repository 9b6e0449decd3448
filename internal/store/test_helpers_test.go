package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/ftr/internal/ftr"
	"github.com/roach88/ftr/internal/testutil"
)

// createTestStore creates a store in a temp dir with deterministic import
// ids and timestamps.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewSequentialIDs("").Generate),
		WithClock(testutil.NewDeterministicClock().Now),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleRecords covers every record kind in a plausible decode order.
func sampleRecords() []ftr.Record {
	return []ftr.Record{
		ftr.StreamDescriptor{StreamID: 1, Name: "bus", Kind: "fifo"},
		ftr.GeneratorDescriptor{GeneratorID: 2, Name: "write", StreamID: 1},
		ftr.Diagnostic{Scope: ftr.ScopeChunk, Tag: 99, Offset: 40, Message: "unknown chunk tag 99"},
		ftr.TransactionHeader{StreamID: 1, ID: 10, GeneratorID: 2, StartTime: 100, EndTime: 150},
		ftr.AttributeEvent{StreamID: 1, TxID: 10, Phase: ftr.PhaseBegin, Name: "addr", TypeID: ftr.TypeUnsigned, Value: uint64(0x80)},
		ftr.AttributeEvent{StreamID: 1, TxID: 10, Phase: ftr.PhaseEnd, Name: "status", TypeID: ftr.TypeEnumeration, Value: "OKAY"},
		ftr.TransactionHeader{StreamID: 1, ID: 11, GeneratorID: 2, StartTime: 150, EndTime: 1<<63 + 5},
		ftr.AttributeEvent{StreamID: 1, TxID: 11, Phase: ftr.PhaseRecord, Name: "delta", TypeID: ftr.TypeInteger, Value: int64(-3)},
		ftr.Relation{Name: "parent", From: 10, To: 11},
	}
}
