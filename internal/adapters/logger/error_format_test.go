package logger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/bundlerule/internal/adapters/logger"
	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/zerr"
)

func messages(entries []logger.ErrorEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Message)
	}
	return out
}

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "standard error",
			err:  errors.New("simple error"),
			want: []string{"simple error"},
		},
		{
			name: "zerr wrapped chain",
			err:  zerr.Wrap(zerr.Wrap(errors.New("root cause"), "middle layer"), "outer layer"),
			want: []string{"outer layer", "middle layer", "root cause"},
		},
		{
			name: "category is not reported as a cause",
			err:  domain.ResolutionError(zerr.Wrap(errors.New("root"), "outer")),
			want: []string{"outer", "root"},
		},
		{
			name: "joined members in order",
			err:  errors.Join(domain.ErrBuildExecutionFailed, domain.ExecutionError(zerr.Wrap(errors.New("exit status 1"), "bundler process failed"))),
			want: []string{"build execution failed", "bundler process failed", "exit status 1"},
		},
		{
			name: "nil error",
			err:  nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, messages(logger.CollectErrorEntries(tt.err)))
		})
	}
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{
			name:    "single entry",
			entries: []logger.ErrorEntry{{Message: "single error"}},
			want:    "Error: single error",
		},
		{
			name:    "two entries with caused by",
			entries: []logger.ErrorEntry{{Message: "outer error"}, {Message: "inner error"}},
			want:    "Error: outer error\n\n  Caused by:\n    → inner error",
		},
		{
			name:    "three entries",
			entries: []logger.ErrorEntry{{Message: "first"}, {Message: "second"}, {Message: "third"}},
			want:    "Error: first\n\n  Caused by:\n    → second\n    → third",
		},
		{
			name:    "metadata on main error",
			entries: []logger.ErrorEntry{{Message: "main error", Metadata: map[string]any{"attribute": "entry_point"}}},
			want:    "Error: main error\n       attribute: entry_point",
		},
		{
			name: "metadata on cause",
			entries: []logger.ErrorEntry{
				{Message: "main"},
				{Message: "cause", Metadata: map[string]any{"exit_code": 2}},
			},
			want: "Error: main\n\n  Caused by:\n    → cause\n      exit_code: 2",
		},
		{
			name:    "multiline message",
			entries: []logger.ErrorEntry{{Message: "line1\nline2"}},
			want:    "Error: line1\n       line2",
		},
		{
			name:    "multiline cause message",
			entries: []logger.ErrorEntry{{Message: "main"}, {Message: "cause line1\ncause line2"}},
			want:    "Error: main\n\n  Caused by:\n    → cause line1\n      cause line2",
		},
		{
			name: "metadata sorted alphabetically",
			entries: []logger.ErrorEntry{{
				Message:  "error",
				Metadata: map[string]any{"zebra": "z", "alpha": "a", "mike": "m"},
			}},
			want: "Error: error\n       alpha: a\n       mike: m\n       zebra: z",
		},
		{
			name:    "empty entries",
			entries: []logger.ErrorEntry{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}
