package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfhosts/internal/config"
	"cfhosts/internal/dnscache"
	"cfhosts/internal/privilege"
)

type fixture struct {
	runner *Runner
	hosts  string
	out    *bytes.Buffer
	err    *bytes.Buffer
}

func newFixture(t *testing.T, hostsContent string) *fixture {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.HostsFile = filepath.Join(dir, "hosts")
	cfg.SpeedTestDir = filepath.Join(dir, "CloudflareSpeedTest")
	cfg.Hostnames = []string{"nsarchive.e6ex.com"}
	require.NoError(t, os.WriteFile(cfg.HostsFile, []byte(hostsContent), 0o644))

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	f := &fixture{hosts: cfg.HostsFile, out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	f.runner = &Runner{
		Config:    cfg,
		Build:     BuildInfo{Repo: "cfhosts", Version: "abc123", Time: "now"},
		Escalator: privilege.DirectWrite{},
		Flusher:   dnscache.Nop{},
		Log:       log,
		Out:       f.out,
		Err:       f.err,
	}
	return f
}

func (f *fixture) read(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile(f.hosts)
	require.NoError(t, err)
	return string(b)
}

func (f *fixture) writeResult(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(f.runner.Config.SpeedTestDir, 0o755))
	require.NoError(t, os.WriteFile(f.runner.Config.ResultPath(), []byte(content), 0o644))
}

func TestApplyExplicitIP(t *testing.T) {
	f := newFixture(t, "127.0.0.1 localhost\n1.1.1.1 nsarchive.e6ex.com other.com\n")

	code := f.runner.Execute([]string{"apply", "104.16.1.1"})
	require.Equal(t, 0, code, f.err.String())

	assert.Equal(t, "127.0.0.1 localhost\n1.1.1.1 other.com\n104.16.1.1 nsarchive.e6ex.com\n", f.read(t))
	assert.Contains(t, f.out.String(), "nsarchive.e6ex.com -> 104.16.1.1")
}

func TestApplyFromResult(t *testing.T) {
	f := newFixture(t, "127.0.0.1 localhost\n")
	f.writeResult(t, "IP,Sent,Received\n104.16.2.2,4,4\n104.16.3.3,4,4\n")

	code := f.runner.Execute([]string{"apply", "-n", "a.com,b.com"})
	require.Equal(t, 0, code, f.err.String())
	assert.Equal(t, "127.0.0.1 localhost\n104.16.2.2 a.com b.com\n", f.read(t))
}

func TestApplyWithoutResult(t *testing.T) {
	f := newFixture(t, "127.0.0.1 localhost\n")

	code := f.runner.Execute([]string{"apply"})
	assert.Equal(t, 1, code)
	assert.Contains(t, f.err.String(), "cfhosts run")
	assert.Equal(t, "127.0.0.1 localhost\n", f.read(t))
}

func TestApplyInvalidIP(t *testing.T) {
	f := newFixture(t, "127.0.0.1 localhost\n")

	code := f.runner.Execute([]string{"apply", "not-an-ip"})
	assert.Equal(t, 1, code)
	assert.Contains(t, f.err.String(), "invalid IP address")
}

func TestRemove(t *testing.T) {
	f := newFixture(t, "127.0.0.1 localhost\n104.16.1.1 nsarchive.e6ex.com\n")

	code := f.runner.Execute([]string{"remove"})
	require.Equal(t, 0, code, f.err.String())
	assert.Equal(t, "127.0.0.1 localhost\n", f.read(t))
}

func TestStatus(t *testing.T) {
	f := newFixture(t, "104.16.1.1 nsarchive.e6ex.com\n")

	code := f.runner.Execute([]string{"status", "-n", "nsarchive.e6ex.com,missing.com"})
	require.Equal(t, 0, code, f.err.String())
	assert.Contains(t, f.out.String(), "-> 104.16.1.1")
	assert.Contains(t, f.out.String(), "-> (not set)")
}

func TestResult(t *testing.T) {
	f := newFixture(t, "")
	f.writeResult(t, "IP,Sent\n104.16.2.2,4\n")

	code := f.runner.Execute([]string{"result"})
	require.Equal(t, 0, code, f.err.String())
	assert.Equal(t, "IP,Sent\n104.16.2.2,4\n", f.out.String())
}

func TestRunWithoutTool(t *testing.T) {
	f := newFixture(t, "")

	code := f.runner.Execute([]string{"run"})
	assert.Equal(t, 1, code)
	assert.Contains(t, f.err.String(), "install it into")
}

func TestVersion(t *testing.T) {
	f := newFixture(t, "")

	require.Equal(t, 0, f.runner.Execute([]string{"version"}))
	assert.Equal(t, "cfhosts: Build abc123, Time now\n", f.out.String())
}

func TestHelperMove(t *testing.T) {
	f := newFixture(t, "old\n")
	src := filepath.Join(t.TempDir(), "staged")
	require.NoError(t, os.WriteFile(src, []byte("new\n"), 0o644))

	code := f.runner.Execute(privilege.HelperArgs(privilege.ActionMove, src, f.hosts))
	assert.Equal(t, privilege.HelperSuccessCode, code)
	assert.Equal(t, "new\n", f.read(t))
}

func TestHelperUnknownAction(t *testing.T) {
	f := newFixture(t, "")

	code := f.runner.Execute([]string{"helper", "copy", "--src", "a", "--dst", "b"})
	assert.Equal(t, 2, code)
}

func TestDescribeWriteError(t *testing.T) {
	f := newFixture(t, "")
	f.runner.defaults()

	msg := f.runner.describe(&privilege.HostsWriteError{Path: "/etc/hosts", Err: os.ErrPermission})
	assert.Contains(t, msg, "elevated privileges")
}
