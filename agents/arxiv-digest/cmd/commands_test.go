package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envWith(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestShouldRun(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		local bool
		want  bool
	}{
		{name: "unset", env: map[string]string{}, want: false},
		{name: "false", env: map[string]string{"GITHUB_ACTIONS": "false"}, want: false},
		{name: "true", env: map[string]string{"GITHUB_ACTIONS": "true"}, want: true},
		{name: "local without CI", env: map[string]string{}, local: true, want: true},
		{name: "local with CI false", env: map[string]string{"GITHUB_ACTIONS": "false"}, local: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldRun(envWith(tt.env), tt.local))
		})
	}
}

func TestRunOutsideCIDoesNothing(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "")
	// A config file that cannot be parsed proves Load is never reached
	t.Setenv("CONFIG_FILE", writeBrokenConfig(t))
	t.Chdir(t.TempDir())

	require.NoError(t, runCmd.Flags().Set("local", "false"))
	assert.NoError(t, runDigest(runCmd, nil))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["schedule"])
	assert.True(t, names["fetch"])

	assert.NotNil(t, runCmd.Flags().Lookup("local"))
	assert.NotNil(t, runCmd.Flags().Lookup("dump"))
	assert.NotNil(t, fetchCmd.Flags().Lookup("dump"))
}

func writeBrokenConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("arxiv: [not: valid"), 0o644))
	return path
}
