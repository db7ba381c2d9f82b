package cli_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheStatusJSON struct {
	Enabled   bool   `json:"enabled"`
	Directory string `json:"directory"`
	Entries   int    `json:"entries"`
	SizeBytes int64  `json:"size_bytes"`
	TTL       string `json:"ttl"`
}

func cacheStatus(t *testing.T, args ...string) cacheStatusJSON {
	t.Helper()
	out, err := execute(t, append([]string{"cache", "status", "-o", "json"}, args...)...)
	require.NoError(t, err)
	var st cacheStatusJSON
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	return st
}

func TestCache_StatusClear(t *testing.T) {
	setupCLITest(t)

	st := cacheStatus(t)
	assert.True(t, st.Enabled)
	assert.Zero(t, st.Entries)
	assert.Equal(t, "1d", st.TTL)

	_, err := execute(t, append([]string{"simulate"}, canadaTax...)...)
	require.NoError(t, err)
	_, err = execute(t, "simulate", "--country", "Chile", "--type", "tax", "--price", "20", "--coverage", "30")
	require.NoError(t, err)

	st = cacheStatus(t)
	assert.Equal(t, 2, st.Entries)
	assert.Positive(t, st.SizeBytes)

	out, err := execute(t, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:")
	assert.Contains(t, out, st.Directory)

	out, err = execute(t, "cache", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 cached results")
	assert.Zero(t, cacheStatus(t).Entries)
}

func TestCache_ClearRequiresConfirmation(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "cache", "clear")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestCache_Cleanup(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, append([]string{"simulate"}, canadaTax...)...)
	require.NoError(t, err)

	out, err := execute(t, "cache", "cleanup")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 expired results")
	assert.Equal(t, 1, cacheStatus(t).Entries)
}

func TestCache_DisabledStillInspectable(t *testing.T) {
	setupCLITest(t)
	t.Setenv("CARBONSIM_CACHE_ENABLED", "false")

	_, err := execute(t, append([]string{"simulate"}, canadaTax...)...)
	require.NoError(t, err)

	st := cacheStatus(t)
	assert.False(t, st.Enabled)
	assert.Zero(t, st.Entries)
}
