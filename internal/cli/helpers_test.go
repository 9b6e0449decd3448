package cli

import (
	"bytes"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ftr/internal/store"
	"github.com/roach88/ftr/internal/testutil"
)

// sampleContainer has one stream, one generator, two transactions, a
// relation between them and an unknown chunk.
func sampleContainer(t *testing.T) []byte {
	t.Helper()
	return testutil.NewBuilder().
		Dictionary(map[uint64]string{
			1: "orders", 2: "append-only", 3: "read", 4: "addr",
			5: "cmd", 6: "READ", 7: "parent", 8: "status",
		}).
		Stream(3, 1, 2).
		Generator(7, 3, 3).
		TransactionsCompressed(3,
			testutil.TxEntry(1, 7, 10, 20),
			testutil.BeginAttr(4, 3, uint64(4096)),
			testutil.RecordAttr(5, 12, uint64(6)),
			testutil.EndAttr(8, 0, true),
			testutil.TxEntry(2, 7, 20, 35),
			testutil.BeginAttr(4, 3, uint64(8192)),
		).
		Relations([3]uint64{7, 1, 2}).
		Raw(99, []any{uint64(1)}).
		MustBytes(t)
}

// wideValueContainer has attribute values that decode through the
// standard CBOR tags: a bignum above 64 bits and an epoch timestamp.
func wideValueContainer(t *testing.T) []byte {
	t.Helper()
	return testutil.NewBuilder().
		Dictionary(map[uint64]string{1: "bus", 2: "wide", 3: "stamp"}).
		Stream(1, 1, 1).
		Transactions(1,
			testutil.TxEntry(1, 1, 0, 10),
			testutil.BeginAttr(2, 3, new(big.Int).Lsh(big.NewInt(1), 70)),
			testutil.EndAttr(3, 2, cbor.Tag{Number: 1, Content: uint64(1700000000)}),
		).
		MustBytes(t)
}

// brokenContainer references dictionary id 5 before any dictionary chunk.
func brokenContainer(t *testing.T) []byte {
	t.Helper()
	return testutil.NewBuilder().Stream(1, 5, 5).MustBytes(t)
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func zstdCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

// execute runs cmd with args and returns stdout and stderr separately.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// importSample imports the sample container into a fresh database and
// returns the database path and the import id.
func importSample(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := writeFile(t, dir, "run.ftr", sampleContainer(t))
	dbPath := filepath.Join(dir, "ftr.db")

	_, _, err := execute(NewImportCommand(&RootOptions{Format: "text"}), "--db", dbPath, path)
	require.NoError(t, err)
	return dbPath, importIDOf(t, dbPath)
}

// importIDOf returns the id of the only import in a database.
func importIDOf(t *testing.T, dbPath string) string {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	imports, err := st.ListImports(t.Context())
	require.NoError(t, err)
	require.Len(t, imports, 1)
	return imports[0].ID
}
