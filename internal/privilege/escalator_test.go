package privilege

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectWritableTarget(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("detection depends on the process token on windows")
	}

	target := filepath.Join(t.TempDir(), "hosts")
	assert.Equal(t, "direct", Detect(target).Name())
}

func TestNewWriterDefaultsToUnsupported(t *testing.T) {
	w := NewWriter("/etc/hosts", nil)

	assert.Equal(t, "/etc/hosts", w.Target())
	assert.Equal(t, "unsupported", w.Escalator().Name())
	assert.ErrorContains(t, w.Escalator().Escalate(context.Background(), "/etc/hosts", nil), "not supported")
}
