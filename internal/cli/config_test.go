package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoimpact/carbonsim/internal/config"
)

// TestConfigInit_Global verifies that "config init" outside a project writes
// the global file under CARBONSIM_HOME.
func TestConfigInit_Global(t *testing.T) {
	home := setupCLITest(t)

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized successfully")

	cfg, err := config.Load(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "table", cfg.Output.DefaultFormat)

	_, err = execute(t, "config", "init")
	require.Error(t, err, "existing file is not overwritten without --force")
	assert.Contains(t, err.Error(), "--force")

	_, err = execute(t, "config", "init", "--force")
	require.NoError(t, err)
}

// TestConfigInit_Project verifies that --project-dir creates the project
// overlay and its .gitignore.
func TestConfigInit_Project(t *testing.T) {
	setupCLITest(t)
	projectRoot := t.TempDir()

	out, err := execute(t, "config", "init", "--project-dir", projectRoot)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized at")
	assert.Contains(t, out, "Created .gitignore")

	_, err = os.Stat(filepath.Join(projectRoot, ".carbonsim", "config.yaml"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(projectRoot, ".carbonsim", ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, config.GitignoreContent(), string(data))
}

// TestConfigInit_ExistingGitignorePreserved verifies that "config init --force"
// never overwrites an existing .gitignore.
func TestConfigInit_ExistingGitignorePreserved(t *testing.T) {
	setupCLITest(t)
	projectRoot := t.TempDir()
	dir := filepath.Join(projectRoot, ".carbonsim")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	custom := "# mine\n*.secret\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(custom), 0o644))
	t.Setenv(config.EnvProjectDir, projectRoot)

	_, err := execute(t, "config", "init", "--force")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}

func TestConfigSetGet(t *testing.T) {
	home := setupCLITest(t)

	out, err := execute(t, "config", "set", "projection.max_years", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "Set projection.max_years = 30")

	out, err = execute(t, "config", "get", "projection.max_years")
	require.NoError(t, err)
	assert.Equal(t, "30\n", out)

	cfg, err := config.Load(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
	require.NotNil(t, cfg.Projection.MaxYears)
	assert.Equal(t, 30, *cfg.Projection.MaxYears)

	// The new bound is honored by simulate.
	res := simulateAsJSON(t, append(canadaTax, "--years", "25")...)
	assert.Len(t, res.Projections, 25)
}

func TestConfigSet_Errors(t *testing.T) {
	home := setupCLITest(t)

	_, err := execute(t, "config", "set", "output.colour", "blue")
	require.ErrorIs(t, err, config.ErrUnknownKey)

	_, err = execute(t, "config", "set", "projection.max_years", "99")
	require.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = execute(t, "config", "set", "cache.enabled", "maybe")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(home, "config.yaml"))
	assert.True(t, os.IsNotExist(statErr), "invalid values are never saved")

	_, err = execute(t, "config", "get", "nope")
	require.ErrorIs(t, err, config.ErrUnknownKey)
}

func TestConfigSet_ProjectOverlay(t *testing.T) {
	home := setupCLITest(t)
	projectRoot := t.TempDir()
	t.Setenv(config.EnvProjectDir, projectRoot)

	_, err := execute(t, "config", "set", "output.default_format", "json")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(projectRoot, ".carbonsim", "config.yaml"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(home, "config.yaml"))
	assert.True(t, os.IsNotExist(err))

	out, err := execute(t, "config", "get", "output.default_format")
	require.NoError(t, err)
	assert.Equal(t, "json\n", out)

	_, err = execute(t, "config", "set", "--global", "logging.level", "warn")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
}

func TestConfigList(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "projection.min_revenue_growth")
	assert.Contains(t, out, "0.015")

	out, err = execute(t, "config", "list", "-o", "json")
	require.NoError(t, err)
	var m map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "20", m["projection.max_years"])
	assert.Equal(t, "true", m["cache.enabled"])
	assert.Len(t, m, len(config.Keys()))
}

func TestConfigValidate(t *testing.T) {
	home := setupCLITest(t)

	out, err := execute(t, "config", "validate", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "carbonsim-default")

	// The environment would otherwise mask the file's logging level.
	t.Setenv(config.EnvLogLevel, "")
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"),
		[]byte("logging: {level: chatty, format: xml}\n"), 0o600))
	_, err = execute(t, "config", "validate")
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestRoot_EnvFromDotEnv(t *testing.T) {
	setupCLITest(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CARBONSIM_OUTPUT_FORMAT=json\n"), 0o600))
	t.Chdir(dir)
	// godotenv never overrides a variable that is already set, even to "".
	require.NoError(t, os.Unsetenv(config.EnvOutputFormat))

	out, err := execute(t, "config", "get", "output.default_format")
	require.NoError(t, err)
	assert.Equal(t, "json\n", out)
}

func TestRoot_Version(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "carbonsim version test")
}
