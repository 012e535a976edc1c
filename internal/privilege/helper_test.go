package privilege

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelperMainMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "staged")
	dst := filepath.Join(dir, "hosts")
	require.NoError(t, os.WriteFile(src, []byte("new\n"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("old\n"), 0o644))

	var stderr bytes.Buffer
	code := HelperMain(ActionMove, src, dst, &stderr)

	assert.Equal(t, HelperSuccessCode, code)
	assert.Empty(t, stderr.String())
	assert.NoFileExists(t, src)
	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(content))
}

func TestHelperMainFailures(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "hosts")
	require.NoError(t, os.WriteFile(dst, []byte("old\n"), 0o644))

	tests := []struct {
		name   string
		action string
		src    string
		dst    string
		code   int
	}{
		{name: "missing source", action: ActionMove, src: filepath.Join(dir, "nope"), dst: dst, code: 1},
		{name: "missing arguments", action: ActionMove, code: 1},
		{name: "unknown action", action: "chmod", src: "a", dst: "b", code: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, tt.code, HelperMain(tt.action, tt.src, tt.dst, &stderr))
			assert.NotEmpty(t, stderr.String())
		})
	}

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(content))
}

func TestHelperArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"helper", "move", "--src", "/tmp/a", "--dst", "/etc/hosts"},
		HelperArgs(ActionMove, "/tmp/a", "/etc/hosts"))
}
