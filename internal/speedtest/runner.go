package speedtest

import (
	"bufio"
	"container/list"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"cfhosts/internal/notify"
	"cfhosts/pkg/models"
)

const maxLogEntries = 100

// ErrToolMissing is returned when the speed-test binary is not installed
var ErrToolMissing = errors.New("CloudflareSpeedTest not found")

// Runner runs the external speed-test tool and collects its output
type Runner struct {
	dir    string
	binary string
	args   []string
	sink   notify.Sink

	logs *list.List
	mu   sync.RWMutex
}

// NewRunner creates a runner for binary inside dir
func NewRunner(dir, binary string, args []string, sink notify.Sink) *Runner {
	if sink == nil {
		sink = notify.Discard{}
	}
	return &Runner{
		dir:    dir,
		binary: binary,
		args:   args,
		sink:   sink,
		logs:   list.New(),
	}
}

// BinaryPath returns the resolved tool location
func (r *Runner) BinaryPath() string {
	if filepath.IsAbs(r.binary) {
		return r.binary
	}
	return filepath.Join(r.dir, r.binary)
}

// Installed reports whether the tool binary exists
func (r *Runner) Installed() bool {
	info, err := os.Stat(r.BinaryPath())
	return err == nil && !info.IsDir()
}

// Run starts the tool in its directory and waits for it to exit. There is
// no timeout besides ctx; a speed test can take minutes.
func (r *Runner) Run(ctx context.Context) error {
	bin := r.BinaryPath()
	if _, err := os.Stat(bin); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.sink.Warn(fmt.Sprintf("CloudflareSpeedTest not found at %s", bin))
			return fmt.Errorf("%w: %s", ErrToolMissing, bin)
		}
		return fmt.Errorf("failed to stat %s: %w", bin, err)
	}

	absBin, err := filepath.Abs(bin)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", bin, err)
	}

	cmd := exec.CommandContext(ctx, absBin, r.args...)
	cmd.Dir = r.dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	r.sink.Info(fmt.Sprintf("Starting CloudflareSpeedTest: %s %v", absBin, r.args))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", absBin, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.scanLogs(stdout, "stdout")
	}()
	go func() {
		defer wg.Done()
		r.scanLogs(stderr, "stderr")
	}()
	// pipes must be drained before Wait closes them
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("CloudflareSpeedTest exited with error: %w", err)
	}
	r.sink.Info("CloudflareSpeedTest finished")
	return nil
}

// GetLogs returns the captured output, oldest first
func (r *Runner) GetLogs() []models.LogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []models.LogEntry
	for e := r.logs.Front(); e != nil; e = e.Next() {
		entries = append(entries, *(e.Value.(*models.LogEntry)))
	}
	return entries
}

// addLogEntry adds a new log entry to the collection
func (r *Runner) addLogEntry(entry *models.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.logs.Len() >= maxLogEntries {
		r.logs.Remove(r.logs.Front())
	}
	r.logs.PushBack(entry)
}

// scanLogs scans output from a reader and records each line
func (r *Runner) scanLogs(reader io.Reader, channel string) {
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		now := time.Now()
		entry := &models.LogEntry{
			Timestamp: now,
			UnixTime:  now.Unix(),
			Channel:   channel,
			Message:   scanner.Text(),
		}
		r.addLogEntry(entry)
		r.sink.Info(entry.Message)
	}

	if err := scanner.Err(); err != nil {
		r.sink.Warn(fmt.Sprintf("Error scanning %s: %v", channel, err))
	}
}
