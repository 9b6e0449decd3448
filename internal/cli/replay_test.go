package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayMatchesDump(t *testing.T) {
	dbPath, id := importSample(t)

	stdout, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}),
		"--db", dbPath, "--import", id)
	require.NoError(t, err)

	golden, err := os.ReadFile(filepath.Join("testdata", "golden", "dump_text.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(golden), stdout)
}

func TestReplayJSONCarriesImportPath(t *testing.T) {
	dbPath, id := importSample(t)

	stdout, _, err := execute(NewReplayCommand(&RootOptions{Format: "json"}),
		"--db", dbPath, "--import", id)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"record":"relation"`)
	assert.Contains(t, stdout, `run.ftr"`)
}

func TestReplayUnknownImport(t *testing.T) {
	dbPath, _ := importSample(t)

	_, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}),
		"--db", dbPath, "--import", "does-not-exist")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "import does-not-exist not found")
}

func TestReplayMissingDatabaseFlag(t *testing.T) {
	_, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--import", "x")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
