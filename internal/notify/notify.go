// Package notify carries operator-facing progress messages from the
// reconciler and speed-test runner to whatever the caller wires in.
package notify

import (
	"container/list"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"cfhosts/pkg/models"
)

// Sink receives progress messages
type Sink interface {
	Info(msg string)
	Warn(msg string)
}

// LogSink forwards messages to a logrus logger
type LogSink struct {
	log logrus.FieldLogger
}

// NewLogSink creates a sink writing to log
func NewLogSink(log logrus.FieldLogger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Info(msg string) { s.log.Info(msg) }
func (s *LogSink) Warn(msg string) { s.log.Warn(msg) }

// Discard drops every message
type Discard struct{}

func (Discard) Info(string) {}
func (Discard) Warn(string) {}

const defaultRecorderSize = 100

// Recorder keeps the most recent messages in memory
type Recorder struct {
	max  int
	logs *list.List
	mu   sync.RWMutex
}

// NewRecorder creates a recorder holding at most max messages
func NewRecorder(max int) *Recorder {
	if max <= 0 {
		max = defaultRecorderSize
	}
	return &Recorder{max: max, logs: list.New()}
}

func (r *Recorder) Info(msg string) { r.add("info", msg) }
func (r *Recorder) Warn(msg string) { r.add("warn", msg) }

// Entries returns recorded messages, oldest first
func (r *Recorder) Entries() []models.LogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]models.LogEntry, 0, r.logs.Len())
	for e := r.logs.Front(); e != nil; e = e.Next() {
		entries = append(entries, *(e.Value.(*models.LogEntry)))
	}
	return entries
}

// Messages returns only the text of recorded messages
func (r *Recorder) Messages() []string {
	entries := r.Entries()
	msgs := make([]string, len(entries))
	for i, e := range entries {
		msgs[i] = e.Message
	}
	return msgs
}

func (r *Recorder) add(channel, msg string) {
	now := time.Now()
	entry := &models.LogEntry{
		Timestamp: now,
		UnixTime:  now.Unix(),
		Channel:   channel,
		Message:   msg,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.logs.Len() >= r.max {
		r.logs.Remove(r.logs.Front())
	}
	r.logs.PushBack(entry)
}

// Multi fans messages out to several sinks
type Multi []Sink

func (m Multi) Info(msg string) {
	for _, s := range m {
		s.Info(msg)
	}
}

func (m Multi) Warn(msg string) {
	for _, s := range m {
		s.Warn(msg)
	}
}
