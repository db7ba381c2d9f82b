package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestConfirm(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		interactive bool
		want        PromptResult
	}{
		{name: "yes", input: "y\n", interactive: true, want: PromptResult{Accepted: true}},
		{name: "YES", input: "YES\n", interactive: true, want: PromptResult{Accepted: true}},
		{name: "no", input: "n\n", interactive: true, want: PromptResult{}},
		{name: "empty defaults to no", input: "\n", interactive: true, want: PromptResult{}},
		{name: "eof", input: "", interactive: true, want: PromptResult{}},
		{name: "not interactive", input: "y\n", interactive: false, want: PromptResult{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := Confirm(&out, strings.NewReader(tt.input), tt.interactive, "Delete everything?")
			assert.Equal(t, tt.want, got)
			if tt.interactive {
				assert.Contains(t, out.String(), "Delete everything? [y/N]")
			} else {
				assert.Empty(t, out.String())
			}
		})
	}

	t.Run("read error", func(t *testing.T) {
		got := Confirm(&bytes.Buffer{}, failingReader{}, true, "Continue?")
		assert.True(t, got.Cancelled)
	})
}
