// Package helpers provides shared fixtures for carbonsim integration tests.
package helpers

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ecoimpact/carbonsim/internal/cli"
	"github.com/ecoimpact/carbonsim/internal/config"
)

// CLIHelper runs the carbonsim root command inside an isolated home directory.
type CLIHelper struct {
	t    *testing.T
	home string
	// Stderr holds the error stream of the last Execute call.
	Stderr string
}

// NewCLIHelper isolates CARBONSIM_* settings for t and resets global config on cleanup.
func NewCLIHelper(t *testing.T) *CLIHelper {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvProjectDir, "")
	t.Setenv(config.EnvLogLevel, "error")
	for _, env := range []string{
		config.EnvOutputFormat, config.EnvLogFormat, config.EnvLogFile, config.EnvDataPath,
		config.EnvMaxYears, config.EnvCacheEnabled, config.EnvCacheTTL, config.EnvCacheMaxSizeMB,
		config.EnvMetricsFile,
	} {
		t.Setenv(env, "")
	}
	t.Setenv(config.EnvCacheDir, filepath.Join(home, "cache"))
	t.Cleanup(func() {
		config.ResetGlobalConfigForTest()
		config.SetResolvedProjectDir("")
	})
	return &CLIHelper{t: t, home: home}
}

// Home is the isolated CARBONSIM_HOME.
func (h *CLIHelper) Home() string { return h.home }

// Execute runs carbonsim with args and returns stdout.
func (h *CLIHelper) Execute(args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.NewRootCmd("integration")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	h.Stderr = errOut.String()
	return out.String(), err
}

// WriteFile writes content under a fresh temp directory and returns its path.
func (h *CLIHelper) WriteFile(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		h.t.Fatalf("writing %s: %v", name, err)
	}
	return path
}
