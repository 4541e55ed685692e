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

	expected := []string{
		"overview", "responses", "show", "analytics", "export",
		"status", "alert", "escalate", "seed", "serve",
	}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "nps-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestFilterCommands_HaveFilterFlags(t *testing.T) {
	for _, c := range []string{"responses", "analytics", "export"} {
		cmd, _, err := rootCmd.Find([]string{c})
		require.NoError(t, err)
		for _, flag := range []string{"search", "from", "to", "nps", "branch", "status"} {
			assert.NotNil(t, cmd.Flags().Lookup(flag), "%s should have --%s flag", c, flag)
		}
	}
}

func TestExportCommand_Flags(t *testing.T) {
	flag := exportCmd.Flags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "csv", flag.DefValue)
	assert.NotNil(t, exportCmd.Flags().Lookup("out"))
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestEscalateCommand_Flags(t *testing.T) {
	for _, name := range []string{"voc-only", "dry-run"} {
		flag := escalateCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "escalate should have --%s flag", name)
		assert.Equal(t, "false", flag.DefValue)
	}
}

func TestStatusCommand_RequiresTwoArgs(t *testing.T) {
	assert.Error(t, statusCmd.Args(statusCmd, []string{"only-id"}))
	assert.NoError(t, statusCmd.Args(statusCmd, []string{"id", "resolved"}))
}

func TestSeedCommand_Flags(t *testing.T) {
	flag := seedCmd.Flags().Lookup("file")
	require.NotNil(t, flag)
	assert.Equal(t, "fixtures.yaml", flag.DefValue)
}
