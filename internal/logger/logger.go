package logger

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/cobaltsec/preflight/internal/guard"
	"github.com/cobaltsec/preflight/internal/redact"
)

// DecisionEvent is one JSONL record of the decision log. One line per
// evaluated command, append-only.
type DecisionEvent struct {
	Timestamp      string            `json:"timestamp"`
	Command        string            `json:"command"`
	Agent          string            `json:"agent,omitempty"`
	Action         string            `json:"action"`
	RuleID         string            `json:"rule_id,omitempty"`
	PackID         string            `json:"pack_id,omitempty"`
	Severity       string            `json:"severity,omitempty"`
	Reason         string            `json:"reason,omitempty"`
	Dynamic        bool              `json:"dynamic,omitempty"`
	Allowlisted    bool              `json:"allowlisted,omitempty"`
	AllowlistScope string            `json:"allowlist_scope,omitempty"`
	Diagnostics    []guard.Diagnostic `json:"diagnostics,omitempty"`
	ElapsedMicros  int64             `json:"elapsed_us"`
	Error          string            `json:"error,omitempty"`
}

// defaultMaxLogBytes caps the log size; at the cap the file is rotated to
// a single .1 backup.
const defaultMaxLogBytes = 5 << 20

// DecisionLogger appends decision events to a JSONL file. Safe for
// concurrent use.
type DecisionLogger struct {
	path string
	file *os.File
	size int64
	mu   sync.Mutex
}

func New(path string) (*DecisionLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	l := &DecisionLogger{path: path, file: file}
	if info, err := file.Stat(); err == nil {
		l.size = info.Size()
	}
	return l, nil
}

// rotate moves the full log to a .1 backup and starts a fresh file. Called
// with the mutex held.
func (l *DecisionLogger) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}
	if err := os.Rename(l.path, l.path+".1"); err != nil {
		return err
	}
	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	l.file = file
	l.size = 0
	return nil
}

// LogDecision records one evaluation outcome.
func (l *DecisionLogger) LogDecision(dec guard.Decision) error {
	event := DecisionEvent{
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Command:        dec.Command,
		Agent:          dec.Agent,
		Action:         string(dec.Action),
		RuleID:         dec.RuleID,
		PackID:         dec.PackID,
		Reason:         dec.Reason,
		Dynamic:        dec.Dynamic,
		Allowlisted:    dec.Allowlisted,
		AllowlistScope: dec.AllowlistScope,
		Diagnostics:    dec.Diagnostics,
		ElapsedMicros:  dec.Elapsed.Microseconds(),
	}
	if dec.RuleID != "" {
		event.Severity = dec.Severity.String()
	}
	return l.Log(event)
}

// Log writes one event. Commands and reasons are redacted first so tokens
// pasted into a command line never land in the log.
func (l *DecisionLogger) Log(event DecisionEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	event.Command = redact.Redact(event.Command)
	if event.Reason != "" {
		event.Reason = redact.Redact(event.Reason)
	}
	if event.Error != "" {
		event.Error = redact.Redact(event.Error)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if l.size >= defaultMaxLogBytes {
		if err := l.rotate(); err != nil {
			return err
		}
	}
	n, err := l.file.Write(data)
	l.size += int64(n)
	return err
}

func (l *DecisionLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
