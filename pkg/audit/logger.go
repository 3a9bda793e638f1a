package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/newtron-network/fabricgen/pkg/util"
)

// Logger records deployment runs and answers history queries.
type Logger interface {
	Log(event *Event) error
	Query(filter Filter) ([]*Event, error)
	Close() error
}

// backupLayout names rotated files; it sorts lexically in time order.
const backupLayout = "20060102-150405.000000"

// FileLogger appends runs to a JSON-lines file. When the file grows past
// MaxSize it is renamed with a timestamp suffix and a new one is started.
// Queries read the live file and every retained backup, so history survives
// rotation.
type FileLogger struct {
	path     string
	file     *os.File
	mu       sync.Mutex
	rotation RotationConfig
	now      func() time.Time
}

// RotationConfig configures log file rotation
type RotationConfig struct {
	MaxSize    int64 // Max file size in bytes before rotation
	MaxBackups int   // Max number of old files to retain, 0 keeps all
}

// NewFileLogger opens (or creates) the history file at path.
func NewFileLogger(path string, rotation RotationConfig) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	l := &FileLogger{path: path, rotation: rotation, now: time.Now}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FileLogger) open() error {
	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	l.file = file
	return nil
}

// Log appends one run. The line is encoded before any rotation so a run
// never straddles two files.
func (l *FileLogger) Log(event *Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	// Check if rotation needed
	if l.rotation.MaxSize > 0 {
		if info, err := l.file.Stat(); err == nil && info.Size() > 0 &&
			info.Size()+int64(len(line)) > l.rotation.MaxSize {
			if err := l.rotate(); err != nil {
				return fmt.Errorf("rotating audit log: %w", err)
			}
		}
	}

	_, err = l.file.Write(line)
	return err
}

// Query returns the runs matching filter, newest first. Offset and Limit
// apply after ordering.
func (l *FileLogger) Query(filter Filter) ([]*Event, error) {
	l.mu.Lock()
	files := append(l.backups(), l.path)
	l.mu.Unlock()

	var events []*Event
	for _, path := range files {
		batch, err := readEvents(path, filter)
		if err != nil {
			return nil, err
		}
		events = append(events, batch...)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	// Apply offset and limit
	if filter.Offset > 0 {
		if filter.Offset >= len(events) {
			return []*Event{}, nil
		}
		events = events[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(events) {
		events = events[:filter.Limit]
	}
	return events, nil
}

// LastRun returns the most recent run of operation, or nil if it never ran.
func (l *FileLogger) LastRun(operation string) (*Event, error) {
	events, err := l.Query(Filter{Operation: operation, Limit: 1})
	if err != nil || len(events) == 0 {
		return nil, err
	}
	return events[0], nil
}

// Close closes the log file
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func readEvents(path string, filter Filter) ([]*Event, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var events []*Event
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		var event Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			util.Warnf("audit: skipping malformed entry at %s:%d: %v", filepath.Base(path), lineNum, err)
			continue
		}
		if filter.matches(&event) {
			events = append(events, &event)
		}
	}
	return events, scanner.Err()
}

func (f Filter) matches(e *Event) bool {
	switch {
	case f.User != "" && e.User != f.User:
		return false
	case f.Operation != "" && e.Operation != f.Operation:
		return false
	case f.Inventory != "" && e.Inventory != f.Inventory:
		return false
	case !f.StartTime.IsZero() && e.Timestamp.Before(f.StartTime):
		return false
	case !f.EndTime.IsZero() && e.Timestamp.After(f.EndTime):
		return false
	case f.SuccessOnly && !e.Success:
		return false
	case f.FailureOnly && e.Success:
		return false
	case f.VaultOnly && !e.Vault:
		return false
	}
	return true
}

func (l *FileLogger) rotate() error {
	// Close current file
	if err := l.file.Close(); err != nil {
		return err
	}

	// Rename current file with timestamp
	rotated := l.path + "." + l.now().Format(backupLayout)
	if err := os.Rename(l.path, rotated); err != nil {
		return err
	}

	// Open new file
	if err := l.open(); err != nil {
		return err
	}

	// Cleanup old files if configured
	if l.rotation.MaxBackups > 0 {
		backups := l.backups()
		for len(backups) > l.rotation.MaxBackups {
			os.Remove(backups[0])
			backups = backups[1:]
		}
	}
	return nil
}

// backups lists rotated files, oldest first. The suffix is a timestamp, so
// name order is age order.
func (l *FileLogger) backups() []string {
	matches, err := filepath.Glob(l.path + ".*")
	if err != nil {
		return nil
	}
	out := matches[:0]
	for _, m := range matches {
		suffix := strings.TrimPrefix(m, l.path+".")
		if _, err := time.Parse(backupLayout, suffix); err == nil {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}
