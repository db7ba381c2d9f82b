package cli_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ecoimpact/carbonsim/internal/cli"
	"github.com/ecoimpact/carbonsim/internal/config"
)

// setupCLITest isolates the configuration home and environment and registers
// cleanup for global state. It returns the temporary home directory.
func setupCLITest(t *testing.T) string {
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
	return home
}

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if errOut.Len() > 0 {
		t.Logf("stderr: %s", errOut.String())
	}
	return out.String(), err
}
