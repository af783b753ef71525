package fs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bundlerule/internal/adapters/fs"
	"go.trai.ch/bundlerule/internal/core/domain"
)

func TestVerifier_VerifyOutputs(t *testing.T) {
	plan := domain.FileSetPlan([]domain.OutputEntry{
		{Chunk: "main", File: gen("app/main.js"), Sourcemap: ptr(gen("app/main.js.map"))},
		{Chunk: "other", File: gen("app/other.js")},
	})

	tests := []struct {
		name  string
		files []string
		plan  domain.OutputPlan
		want  []string
	}{
		{
			name:  "all outputs present",
			files: []string{"bazel-out/bin/app/main.js", "bazel-out/bin/app/main.js.map", "bazel-out/bin/app/other.js"},
			plan:  plan,
			want:  nil,
		},
		{
			name:  "missing sourcemap and chunk",
			files: []string{"bazel-out/bin/app/main.js"},
			plan:  plan,
			want:  []string{"bazel-out/bin/app/main.js.map", "bazel-out/bin/app/other.js"},
		},
		{
			name:  "directory present",
			files: []string{"bazel-out/bin/app/chunks/main.js"},
			plan:  domain.DirectoryPlan(gen("app/chunks")),
			want:  nil,
		},
		{
			name:  "directory declared but a file was written",
			files: []string{"bazel-out/bin/app/chunks"},
			plan:  domain.DirectoryPlan(gen("app/chunks")),
			want:  []string{"bazel-out/bin/app/chunks"},
		},
		{
			name: "directory missing",
			plan: domain.DirectoryPlan(gen("app/chunks")),
			want: []string{"bazel-out/bin/app/chunks"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, f := range tt.files {
				writeFile(t, root, f, "x")
			}

			missing, err := fs.NewVerifier().VerifyOutputs(root, tt.plan)
			require.NoError(t, err)
			assert.Equal(t, tt.want, missing)
		})
	}
}
