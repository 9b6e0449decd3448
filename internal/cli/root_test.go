package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "ftr", cmd.Use)
	assert.Contains(t, cmd.Long, "LZ4")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"dump", "stats", "import", "imports", "tx", "replay"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "workers", "max-decompressed-size"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "268435456", cmd.PersistentFlags().Lookup("max-decompressed-size").DefValue)
}

func TestStoreCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"import", "imports", "tx", "replay"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			dbFlag := sub.Flags().Lookup("db")
			require.NotNil(t, dbFlag)
			assert.Equal(t, "", dbFlag.DefValue)
		})
	}

	txCmd, _, err := cmd.Find([]string{"tx"})
	require.NoError(t, err)
	require.NotNil(t, txCmd.Flags().Lookup("import"))
	require.NotNil(t, txCmd.Flags().Lookup("tx"))
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.ftr", sampleContainer(t))

	_, _, err := execute(NewRootCommand(), "--format", "invalid", "dump", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestWorkersValidation(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run.ftr", sampleContainer(t))

	_, _, err := execute(NewRootCommand(), "--workers", "0", "dump", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfigFileApplies(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.ftr", sampleContainer(t))
	dbPath := filepath.Join(dir, "from-config.db")
	cfgPath := writeFile(t, dir, "ftr.yaml", []byte("format: json\nworkers: 2\ndatabase: "+dbPath+"\n"))

	stdout, _, err := execute(NewRootCommand(), "--config", cfgPath, "import", path)
	require.NoError(t, err)

	var resp importResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, 1, resp.Data.Imported)

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database should come from the config file")
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.ftr", sampleContainer(t))
	cfgPath := writeFile(t, dir, "ftr.cue", []byte(`format: "json"`+"\n"))

	stdout, _, err := execute(NewRootCommand(), "--config", cfgPath, "--format", "text", "dump", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "stream id:3, name:orders, kind:append-only\n")
}

func TestInvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.ftr", sampleContainer(t))
	cfgPath := writeFile(t, dir, "ftr.yaml", []byte("colour: blue\n"))

	_, _, err := execute(NewRootCommand(), "--config", cfgPath, "dump", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}
