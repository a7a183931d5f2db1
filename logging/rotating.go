package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultMaxFileSize is used when no size limit is configured
	DefaultMaxFileSize int64 = 100 * 1024 * 1024

	cleanupInterval = 24 * time.Hour
)

// RotatingLogger is an io.Writer over weekly log files named
// <prefix>-YYYY-Www.log. A week that outgrows maxFileSize continues in
// <prefix>-YYYY-Www_NN.log. Files older than the retention are removed daily.
type RotatingLogger struct {
	dir         string
	prefix      string
	numbered    *regexp.Regexp
	retention   time.Duration
	maxFileSize int64

	mu          sync.Mutex
	file        *os.File
	week        string
	size        atomic.Int64
	stop        context.CancelFunc
	cleanupDone chan struct{}
}

// NewRotatingLogger creates a writer for dir. Nothing is opened until the
// first Write or Open.
func NewRotatingLogger(dir, prefix string, retentionWeeks int, maxFileSize int64) *RotatingLogger {
	return &RotatingLogger{
		dir:         dir,
		prefix:      prefix,
		numbered:    regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-\d{4}-W\d{2}_(\d{2})\.log$`),
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
	}
}

// Open creates the log directory, opens this week's file and starts the
// retention cleanup loop.
func (rl *RotatingLogger) Open() error {
	if err := os.MkdirAll(rl.dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", rl.dir, err)
	}

	rl.mu.Lock()
	err := rl.rotate(getWeekKey(time.Now()), false)
	rl.mu.Unlock()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	rl.stop = cancel
	rl.cleanupDone = make(chan struct{})

	go func() {
		defer close(rl.cleanupDone)
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := rl.cleanupOldLogs(time.Now()); err != nil {
					slog.Warn("Failed to cleanup old logs", "error", err)
				}
			}
		}
	}()

	return nil
}

// getWeekKey returns the week key in YYYY-Www format (ISO week)
func getWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func (rl *RotatingLogger) baseName(week string) string {
	return fmt.Sprintf("%s-%s.log", rl.prefix, week)
}

// rotate switches to the file for week (caller must hold mu). full means
// the current file hit the size limit and a numbered file is needed.
func (rl *RotatingLogger) rotate(week string, full bool) error {
	if rl.file != nil {
		if err := rl.file.Close(); err != nil {
			slog.Warn("Failed to close log file during rotation", "error", err)
		}
		rl.file = nil
	}

	name, fresh := rl.pickFile(week, full)
	path := filepath.Join(rl.dir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	rl.file = file
	rl.week = week
	rl.size.Store(0)
	if !fresh {
		if info, err := file.Stat(); err == nil {
			rl.size.Store(info.Size())
		}
	}

	return nil
}

// pickFile returns the file to append to for week and whether it is new
func (rl *RotatingLogger) pickFile(week string, full bool) (string, bool) {
	base := rl.baseName(week)

	if !full {
		info, err := os.Stat(filepath.Join(rl.dir, base))
		if err != nil {
			return base, true
		}
		if rl.maxFileSize <= 0 || info.Size() < rl.maxFileSize {
			return base, false
		}
	}

	highest, lastName, lastSize := rl.highestNumbered(week)
	if lastName != "" && lastSize < rl.maxFileSize && !full {
		return lastName, false
	}

	return fmt.Sprintf("%s-%s_%02d.log", rl.prefix, week, highest+1), true
}

// highestNumbered finds the size-rotated file with the largest sequence number
func (rl *RotatingLogger) highestNumbered(week string) (int, string, int64) {
	matches, _ := filepath.Glob(filepath.Join(rl.dir, fmt.Sprintf("%s-%s_??.log", rl.prefix, week)))

	highest := 0
	var name string
	var size int64

	for _, match := range matches {
		sub := rl.numbered.FindStringSubmatch(filepath.Base(match))
		if len(sub) < 2 {
			continue
		}
		num, _ := strconv.Atoi(sub[1])
		if num <= highest {
			continue
		}
		highest = num
		name = filepath.Base(match)
		size = 0
		if info, err := os.Stat(match); err == nil {
			size = info.Size()
		}
	}

	return highest, name, size
}

// Write writes p to the current file, rotating on week change or when p
// would push the file past the size limit.
func (rl *RotatingLogger) Write(p []byte) (int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	week := getWeekKey(time.Now())

	switch {
	case rl.file == nil || rl.week != week:
		if err := rl.rotate(week, false); err != nil {
			return 0, err
		}
	case rl.maxFileSize > 0 && rl.size.Load() > 0 && rl.size.Load()+int64(len(p)) > rl.maxFileSize:
		if err := rl.rotate(week, true); err != nil {
			return 0, err
		}
	}

	n, err := rl.file.Write(p)
	rl.size.Add(int64(n))
	return n, err
}

// cleanupOldLogs removes this logger's files last modified before the
// retention window and returns how many were removed.
func (rl *RotatingLogger) cleanupOldLogs(now time.Time) (int, error) {
	entries, err := os.ReadDir(rl.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := now.Add(-rl.retention)
	deleted := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, rl.prefix+"-") || !strings.HasSuffix(name, ".log") {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(rl.dir, name)); err == nil {
			deleted++
		}
	}

	if deleted > 0 {
		// Console only, the file logger may be the one being cleaned
		fmt.Fprintf(os.Stderr, "Cleaned up %d old log files\n", deleted)
	}

	return deleted, nil
}

// Close stops the cleanup loop and closes the current file
func (rl *RotatingLogger) Close() error {
	if rl.stop != nil {
		rl.stop()
		select {
		case <-rl.cleanupDone:
		case <-time.After(time.Second):
		}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.file == nil {
		return nil
	}
	err := rl.file.Close()
	rl.file = nil
	return err
}

// multiHandler fans records out to several handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
