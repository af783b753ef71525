package template_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bundlerule/internal/adapters/template"
	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/core/ports"
)

func substitutions(info, version string) []ports.Substitution {
	return []ports.Substitution{
		{Placeholder: "bazel_info_file", Value: info},
		{Placeholder: "bazel_version_file", Value: version},
	}
}

func TestMaterializer_DefaultTemplate(t *testing.T) {
	tests := []struct {
		name       string
		subs       []ports.Substitution
		goldenName string
	}{
		{
			name:       "stamped",
			subs:       substitutions(`"bazel-out/stable-status.txt"`, `"bazel-out/volatile-status.txt"`),
			goldenName: "default_stamped",
		},
		{
			name:       "unstamped",
			subs:       substitutions("undefined", "undefined"),
			goldenName: "default_unstamped",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			output := domain.NewGeneratedFile(domain.DefaultOutputRoot, "app/_bundle.rollup_config.js")

			err := template.NewMaterializer().Materialize(context.Background(), ports.ConfigRequest{
				Root:          root,
				Output:        output,
				Substitutions: tt.subs,
			})
			require.NoError(t, err)

			content, err := os.ReadFile(filepath.Join(root, output.Path()))
			require.NoError(t, err)

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, content)
		})
	}
}

func TestMaterializer_CustomTemplate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app"), domain.DirPerm))
	tmpl := "const a = bazel_info_file;\nconst b = bazel_info_file;\nconst c = bazel_version_file;\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "app", "rollup.config.js"), []byte(tmpl), domain.FilePerm))

	source := domain.NewSourceFile("app/rollup.config.js")
	output := domain.NewGeneratedFile(domain.DefaultOutputRoot, "app/_bundle.rollup_config.js")

	err := template.NewMaterializer().Materialize(context.Background(), ports.ConfigRequest{
		Root:          root,
		Template:      &source,
		Output:        output,
		Substitutions: substitutions(`"s.txt"`, `"v.txt"`),
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(root, output.Path()))
	require.NoError(t, err)
	assert.Equal(t, "const a = \"s.txt\";\nconst b = \"s.txt\";\nconst c = \"v.txt\";\n", string(content))
}

func TestMaterializer_LeavesUpToDateFileUntouched(t *testing.T) {
	root := t.TempDir()
	output := domain.NewGeneratedFile(domain.DefaultOutputRoot, "_bundle.rollup_config.js")
	req := ports.ConfigRequest{Root: root, Output: output, Substitutions: substitutions("undefined", "undefined")}
	m := template.NewMaterializer()

	require.NoError(t, m.Materialize(context.Background(), req))
	path := filepath.Join(root, output.Path())
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, past, past))

	require.NoError(t, m.Materialize(context.Background(), req))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past), "unchanged config must not be rewritten")

	req.Substitutions = substitutions(`"s.txt"`, `"v.txt"`)
	require.NoError(t, m.Materialize(context.Background(), req))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.False(t, info.ModTime().Equal(past))
}

func TestMaterializer_Errors(t *testing.T) {
	root := t.TempDir()
	missing := domain.NewSourceFile("app/missing.config.js")

	err := template.NewMaterializer().Materialize(context.Background(), ports.ConfigRequest{
		Root:     root,
		Template: &missing,
		Output:   domain.NewGeneratedFile(domain.DefaultOutputRoot, "_x.rollup_config.js"),
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrTemplateReadFailed.Error())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = template.NewMaterializer().Materialize(ctx, ports.ConfigRequest{Root: root})
	require.ErrorIs(t, err, context.Canceled)
}

func TestExpand(t *testing.T) {
	got := template.Expand([]byte("x bazel_version_file y"), substitutions("A", "B"))
	assert.Equal(t, "x B y", string(got))
	assert.Equal(t, template.DefaultTemplate(), template.Expand(template.DefaultTemplate(), nil))
}
