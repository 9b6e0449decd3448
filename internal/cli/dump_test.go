package cli

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpTextGolden(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.ftr", sampleContainer(t))

	stdout, _, err := execute(NewDumpCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "dump_text", []byte(stdout))
}

func TestDumpJSONLines(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.ftr", sampleContainer(t))

	stdout, _, err := execute(NewDumpCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var kinds []string
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		var obj map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &obj), "line %q", scanner.Text())
		assert.Equal(t, path, obj["file"])
		kinds = append(kinds, obj["record"].(string))
	}
	require.NoError(t, scanner.Err())

	assert.Equal(t, []string{
		"stream", "generator",
		"transaction", "attribute", "attribute", "attribute",
		"transaction", "attribute",
		"relation", "diagnostic",
	}, kinds)
}

func TestDumpJSONIsCanonical(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.ftr", sampleContainer(t))

	stdout, _, err := execute(NewDumpCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	first := strings.SplitN(stdout, "\n", 2)[0]
	want := `{"file":"` + path + `","kind":"append-only","name":"orders","record":"stream","stream_id":3}`
	assert.Equal(t, want, first)
}

func TestDumpMultipleFilesWithFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.ftr", sampleContainer(t))
	bad := writeFile(t, dir, "bad.ftr", brokenContainer(t))

	stdout, stderr, err := execute(NewDumpCommand(&RootOptions{Format: "text", Workers: 2}), bad, good)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 file(s) failed")

	assert.Contains(t, stdout, "==> "+good+" <==")
	assert.NotContains(t, stdout, "==> "+bad+" <==")
	assert.Contains(t, stdout, "trans id:2, gen:7, start:20, end:35")
	assert.Contains(t, stderr, bad)
	assert.Contains(t, stderr, "UNKNOWN_STRING_ID")
}

func TestDumpJSONFailureLine(t *testing.T) {
	bad := writeFile(t, t.TempDir(), "bad.ftr", brokenContainer(t))

	stdout, _, err := execute(NewDumpCommand(&RootOptions{Format: "json"}), bad)
	require.Error(t, err)

	var line struct {
		File  string `json:"file"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(stdout)), &line))
	assert.Equal(t, bad, line.File)
	assert.Equal(t, "UNKNOWN_STRING_ID", line.Error.Code)
}

func TestDumpZstdMatchesRaw(t *testing.T) {
	dir := t.TempDir()
	data := sampleContainer(t)
	raw := writeFile(t, dir, "run.ftr", data)
	packed := writeFile(t, dir, "run.ftr.zst", zstdCompress(t, data))

	rawOut, _, err := execute(NewDumpCommand(&RootOptions{Format: "text"}), raw)
	require.NoError(t, err)
	packedOut, _, err := execute(NewDumpCommand(&RootOptions{Format: "text"}), packed)
	require.NoError(t, err)

	assert.Equal(t, rawOut, packedOut)
}

func TestDumpVerboseLogsChunks(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.ftr", sampleContainer(t))

	stdout, stderr, err := execute(NewDumpCommand(&RootOptions{Format: "text", Verbose: true}), path)
	require.NoError(t, err)

	assert.Contains(t, stderr, "level=DEBUG")
	assert.Contains(t, stderr, "dictionary chunk")
	assert.Contains(t, stderr, "decoding 1 file(s)")
	assert.NotContains(t, stdout, "level=DEBUG")
}

func TestDumpMaxDecompressedSize(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.ftr", sampleContainer(t))

	_, stderr, err := execute(NewDumpCommand(&RootOptions{Format: "text", MaxDecompressedSize: 8}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "MALFORMED_CHUNK")
}

func TestDumpRequiresFiles(t *testing.T) {
	_, _, err := execute(NewDumpCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}
