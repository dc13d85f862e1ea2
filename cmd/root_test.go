package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"score", "sample", "export", "upload", "runs", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "lead-quality-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestScoreCommand_Flags(t *testing.T) {
	for _, name := range []string{"seed", "format", "output", "save"} {
		require.NotNil(t, scoreCmd.Flags().Lookup(name), "score command should have --%s flag", name)
	}
}

func TestExportCommand_Flags(t *testing.T) {
	for _, name := range []string{"seed", "format", "output"} {
		require.NotNil(t, exportCmd.Flags().Lookup(name), "export command should have --%s flag", name)
	}
}

func TestUploadCommand_Flags(t *testing.T) {
	require.NotNil(t, uploadCmd.Flags().Lookup("dry-run"))
}

func TestSampleCommand_Defaults(t *testing.T) {
	count := sampleCmd.Flags().Lookup("count")
	require.NotNil(t, count)
	assert.Equal(t, "100", count.DefValue)

	seed := sampleCmd.Flags().Lookup("seed")
	require.NotNil(t, seed)
	assert.Equal(t, "42", seed.DefValue)
}
