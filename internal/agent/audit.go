package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// AuditConfig configures the JSONL event log.
type AuditConfig struct {
	Enabled   bool
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
	// Kinds limits the log to these event kinds; empty logs everything.
	Kinds []Kind
}

// AuditLog appends every event as one JSON line, rotating the file when it
// grows past MaxSizeMB.
type AuditLog struct {
	mu          sync.Mutex
	file        *os.File
	config      AuditConfig
	currentSize int64
}

// NewAuditLog opens or creates the log file. A disabled config yields a log
// that discards everything.
func NewAuditLog(cfg AuditConfig) (*AuditLog, error) {
	if !cfg.Enabled {
		return &AuditLog{config: cfg}, nil
	}

	dir := filepath.Dir(cfg.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log %s: %w", cfg.FilePath, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat audit log: %w", err)
	}

	return &AuditLog{
		file:        f,
		config:      cfg,
		currentSize: stat.Size(),
	}, nil
}

// Listener returns the listener that writes to this log.
func (l *AuditLog) Listener() Listener {
	return EventFunc(l.Write)
}

func (l *AuditLog) wants(k Kind) bool {
	if len(l.config.Kinds) == 0 {
		return true
	}
	for _, want := range l.config.Kinds {
		if want == k {
			return true
		}
	}
	return false
}

// Write records one event.
func (l *AuditLog) Write(e Event) {
	if l == nil || !l.config.Enabled || !l.wants(e.Kind) {
		return
	}

	line, err := json.Marshal(e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode audit event: %v\n", err)
		return
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}

	maxBytes := int64(l.config.MaxSizeMB) * 1024 * 1024
	if maxBytes > 0 && l.currentSize >= maxBytes {
		if err := l.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "audit log rotation failed: %v\n", err)
		}
		if l.file == nil {
			return
		}
	}

	n, err := l.file.Write(line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write audit event: %v\n", err)
		return
	}
	l.currentSize += int64(n)
}

// Close closes the log file.
func (l *AuditLog) Close() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// rotate shifts events.jsonl to events.jsonl.1 and so on, keeping MaxFiles
// rotated files.
func (l *AuditLog) rotate() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	basePath := l.config.FilePath
	for i := l.config.MaxFiles; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", basePath, i)
		if i == l.config.MaxFiles {
			os.Remove(oldPath)
		} else {
			os.Rename(oldPath, fmt.Sprintf("%s.%d", basePath, i+1))
		}
	}

	if l.config.MaxFiles > 0 {
		if err := os.Rename(basePath, basePath+".1"); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to rotate audit log: %w", err)
		}
	} else if err := os.Truncate(basePath, 0); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to truncate audit log: %w", err)
	}

	f, err := os.OpenFile(basePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open new audit log: %w", err)
	}

	l.file = f
	l.currentSize = 0
	return nil
}

// ParseKinds converts comma-separated kind names; unknown names are an error.
func ParseKinds(s string) ([]Kind, error) {
	var out []Kind
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k := Kind(part)
		switch k {
		case KindSystemBarTints, KindAccessibility, KindVisibility, KindFocus:
			out = append(out, k)
		default:
			return nil, fmt.Errorf("unknown event kind %q", part)
		}
	}
	return out, nil
}
