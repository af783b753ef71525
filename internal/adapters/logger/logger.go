// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/core/ports"
	"go.trai.ch/bundlerule/internal/ui/style"
)

// messager is an error reporting its own message without the wrapped chain, as zerr errors do.
type messager interface {
	Message() string
}

// metadataer is an error carrying key/value metadata.
type metadataer interface {
	Metadata() map[string]any
}

// LabelKey is the attribute naming the action a line of bundler output belongs to.
const LabelKey = "label"

// categories are the classification sentinels that are not shown as causes.
var categories = []error{domain.ErrConfig, domain.ErrResolution, domain.ErrExecution}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	jsonMode bool
	output   io.Writer
}

// New creates a new Logger writing pretty output to stderr.
func New() ports.Logger {
	l := &Logger{output: os.Stderr}
	l.logger = slog.New(l.handler())
	return l
}

// SetOutput updates the logger's output destination, keeping the current mode.
// If w is nil, os.Stderr is used.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.logger = slog.New(l.handler())
}

// SetJSON switches between JSON and pretty logging.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.logger = slog.New(l.handler())
}

func (l *Logger) handler() slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if l.jsonMode {
		return slog.NewJSONHandler(l.output, opts)
	}
	return NewPrettyHandler(l.output, opts)
}

// Info logs an informational message. Bundler output lines prefixed with
// "[label] " are logged with the label as the LabelKey attribute.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if label, line, ok := splitActionLine(msg); ok {
		l.logger.Info(line, LabelKey, label)
		return
	}
	l.logger.Info(msg)
}

func splitActionLine(msg string) (label, line string, ok bool) {
	rest, ok := strings.CutPrefix(msg, "[")
	if !ok {
		return "", "", false
	}
	label, line, ok = strings.Cut(rest, "] ")
	if !ok || !strings.Contains(label, "//") {
		return "", "", false
	}
	if _, err := domain.ParseLabel(label, ""); err != nil {
		return "", "", false
	}
	return label, line, true
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs err with its chain of causes.
func (l *Logger) Error(err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err == nil {
		return
	}

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}

	l.logger.Error(formatErrorEntries(collectErrorEntries(err)))
}

// ErrorEntry is one level of an error chain.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries flattens the error chain into one entry per message.
// Joined errors contribute each of their members in order; category sentinels are skipped.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	var walk func(error)
	walk = func(current error) {
		for current != nil {
			if multi, ok := current.(interface{ Unwrap() []error }); ok {
				for _, member := range multi.Unwrap() {
					if slices.Contains(categories, member) {
						continue
					}
					walk(member)
				}
				return
			}

			m, ok := current.(messager)
			if !ok {
				entries = append(entries, ErrorEntry{Message: current.Error()})
				return
			}

			entry := ErrorEntry{Message: m.Message(), Metadata: map[string]any{}}
			if md, ok := current.(metadataer); ok {
				for k, v := range md.Metadata() {
					entry.Metadata[k] = v
				}
			}
			entries = append(entries, entry)
			current = errors.Unwrap(current)
		}
	}
	walk(err)
	return entries
}

// formatErrorEntries renders entries as an "Error:" line followed by a "Caused by:" list.
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")
		head, indent := "Error: ", "       "
		if i > 0 {
			if i == 1 {
				lines = append(lines, "", "  Caused by:")
			}
			head, indent = "    "+style.Arrow+" ", "      "
		}

		lines = append(lines, head+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, indent+line)
		}

		keys := make([]string, 0, len(entry.Metadata))
		for k := range entry.Metadata {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, k, entry.Metadata[k]))
		}
	}

	return strings.Join(lines, "\n")
}
