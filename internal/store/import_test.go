package store

import (
	"context"
	"reflect"
	"testing"

	"github.com/roach88/ftr/internal/ftr"
	"github.com/roach88/ftr/internal/testutil"
)

func TestImportRecords_Basic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	imp, inserted, err := s.ImportRecords(ctx, "run.ftr", "hash-1", sampleRecords())
	if err != nil {
		t.Fatalf("ImportRecords() failed: %v", err)
	}
	if !inserted {
		t.Error("inserted = false, want true")
	}
	if imp.ID != "import-0001" {
		t.Errorf("ID = %q, want import-0001", imp.ID)
	}
	if imp.RecordCount != len(sampleRecords()) {
		t.Errorf("RecordCount = %d, want %d", imp.RecordCount, len(sampleRecords()))
	}
	if !imp.ImportedAt.Equal(testutil.ClockEpoch) {
		t.Errorf("ImportedAt = %v, want %v", imp.ImportedAt, testutil.ClockEpoch)
	}

	got, err := s.GetImport(ctx, imp.ID)
	if err != nil {
		t.Fatalf("GetImport() failed: %v", err)
	}
	if !sameImport(got, imp) {
		t.Errorf("GetImport() = %+v, want %+v", got, imp)
	}
}

func TestImportRecords_IdempotentByContentHash(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, _, err := s.ImportRecords(ctx, "run.ftr", "hash-1", sampleRecords())
	if err != nil {
		t.Fatalf("first ImportRecords() failed: %v", err)
	}

	second, inserted, err := s.ImportRecords(ctx, "copy-of-run.ftr", "hash-1", sampleRecords())
	if err != nil {
		t.Fatalf("second ImportRecords() failed: %v", err)
	}
	if inserted {
		t.Error("inserted = true for duplicate content, want false")
	}
	if !sameImport(second, first) {
		t.Errorf("duplicate import returned %+v, want existing %+v", second, first)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count); err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if count != 2 {
		t.Errorf("transactions = %d, want 2 (no duplicate rows)", count)
	}
}

func TestImportRecords_Empty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	imp, inserted, err := s.ImportRecords(ctx, "empty.ftr", "hash-empty", []ftr.Record{})
	if err != nil {
		t.Fatalf("ImportRecords() failed: %v", err)
	}
	if !inserted || imp.RecordCount != 0 {
		t.Errorf("got inserted=%v count=%d, want true 0", inserted, imp.RecordCount)
	}

	records, err := s.ReadRecords(ctx, imp.ID)
	if err != nil {
		t.Fatalf("ReadRecords() failed: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("ReadRecords() = %#v, want empty non-nil slice", records)
	}
}

func TestImportRecords_RollsBackOnBadValue(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	records := []ftr.Record{
		ftr.StreamDescriptor{StreamID: 1, Name: "bus", Kind: "fifo"},
		ftr.AttributeEvent{StreamID: 1, TxID: 1, Phase: ftr.PhaseBegin, Name: "x", TypeID: 3, Value: struct{}{}},
	}
	if _, _, err := s.ImportRecords(ctx, "bad.ftr", "hash-bad", records); err == nil {
		t.Fatal("expected error for unsupported attribute value")
	}

	imports, err := s.ListImports(ctx)
	if err != nil {
		t.Fatalf("ListImports() failed: %v", err)
	}
	if len(imports) != 0 {
		t.Errorf("imports after failed import = %d, want 0", len(imports))
	}
}

func TestListImports_Order(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if imports, err := s.ListImports(ctx); err != nil || imports == nil || len(imports) != 0 {
		t.Fatalf("ListImports() on empty store = %v, %v; want empty slice", imports, err)
	}

	for _, hash := range []string{"h1", "h2", "h3"} {
		if _, _, err := s.ImportRecords(ctx, hash+".ftr", hash, nil); err != nil {
			t.Fatalf("ImportRecords(%s) failed: %v", hash, err)
		}
	}

	imports, err := s.ListImports(ctx)
	if err != nil {
		t.Fatalf("ListImports() failed: %v", err)
	}
	var hashes []string
	for _, imp := range imports {
		hashes = append(hashes, imp.ContentHash)
	}
	if want := []string{"h1", "h2", "h3"}; !reflect.DeepEqual(hashes, want) {
		t.Errorf("hashes = %v, want %v", hashes, want)
	}
}

func TestGetImport_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetImport(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Errorf("GetImport() error = %v, want sql.ErrNoRows", err)
	}
}

func TestFindImportByHash(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	imp, _, err := s.ImportRecords(ctx, "run.ftr", "hash-1", nil)
	if err != nil {
		t.Fatalf("ImportRecords() failed: %v", err)
	}

	got, err := s.FindImportByHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("FindImportByHash() failed: %v", err)
	}
	if got.ID != imp.ID {
		t.Errorf("ID = %q, want %q", got.ID, imp.ID)
	}

	if _, err := s.FindImportByHash(ctx, "hash-2"); !IsNotFound(err) {
		t.Errorf("FindImportByHash(unknown) error = %v, want sql.ErrNoRows", err)
	}
}

func TestDeleteImport_CascadesToRecords(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	imp, _, err := s.ImportRecords(ctx, "run.ftr", "hash-1", sampleRecords())
	if err != nil {
		t.Fatalf("ImportRecords() failed: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM imports WHERE id = ?", imp.ID); err != nil {
		t.Fatalf("delete import: %v", err)
	}

	for _, table := range []string{"streams", "generators", "transactions", "attributes", "relations", "diagnostics"} {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" WHERE import_id = ?", imp.ID).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s has %d rows after deleting the import, want 0", table, n)
		}
	}
}

func sameImport(a, b Import) bool {
	return a.ID == b.ID &&
		a.Path == b.Path &&
		a.ContentHash == b.ContentHash &&
		a.RecordCount == b.RecordCount &&
		a.ImportedAt.Equal(b.ImportedAt)
}
