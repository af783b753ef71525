// Package template materializes bundler configuration files from templates.
package template

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/core/ports"
	"go.trai.ch/zerr"
)

//go:embed rollup.config.js
var defaultTemplate []byte

// DefaultTemplate returns the configuration used when a rule sets no config_file.
func DefaultTemplate() []byte {
	return bytes.Clone(defaultTemplate)
}

// Materializer implements ports.ConfigMaterializer on the local filesystem.
type Materializer struct{}

// NewMaterializer creates a new Materializer.
func NewMaterializer() *Materializer {
	return &Materializer{}
}

// Materialize expands the template of req and writes it to the output artifact.
// The file is left untouched when its content is already up to date.
func (m *Materializer) Materialize(ctx context.Context, req ports.ConfigRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmpl := defaultTemplate
	if req.Template != nil {
		path := filepath.Join(req.Root, filepath.FromSlash(req.Template.Path()))
		//nolint:gosec // Path is a declared source file under the workspace root
		data, err := os.ReadFile(path)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrTemplateReadFailed.Error()), "template", req.Template.Path())
		}
		tmpl = data
	}

	content := Expand(tmpl, req.Substitutions)

	out := filepath.Join(req.Root, filepath.FromSlash(req.Output.Path()))
	//nolint:gosec // Path is the declared config artifact under the output root
	existing, err := os.ReadFile(out)
	switch {
	case err == nil && bytes.Equal(existing, content):
		return nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return zerr.With(zerr.Wrap(err, domain.ErrTemplateWriteFailed.Error()), "output", req.Output.Path())
	}

	if err := os.MkdirAll(filepath.Dir(out), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrTemplateWriteFailed.Error()), "output", req.Output.Path())
	}
	//nolint:gosec // Path is the declared config artifact under the output root
	if err := os.WriteFile(out, content, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrTemplateWriteFailed.Error()), "output", req.Output.Path())
	}
	return nil
}

// Expand replaces every occurrence of each placeholder, applying substitutions in order.
func Expand(tmpl []byte, subs []ports.Substitution) []byte {
	out := tmpl
	for _, s := range subs {
		out = bytes.ReplaceAll(out, []byte(s.Placeholder), []byte(s.Value))
	}
	return out
}
