package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "orderd dev")
	assert.Contains(t, out, "go version")
}

func TestValidateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orderd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600))

	out, err := execute(t, "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, ":9090")
}

func TestValidateCommandRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orderd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  failure_rate: 2\n"), 0o600))

	_, err := execute(t, "validate", "--config", path)
	require.Error(t, err)
}

func TestValidateCommandRequiresConfig(t *testing.T) {
	// Reset the flag so a previous run doesn't satisfy the requirement.
	require.NoError(t, validateCmd.Flags().Set("config", ""))
	_, err := execute(t, "validate")
	require.Error(t, err)
}
