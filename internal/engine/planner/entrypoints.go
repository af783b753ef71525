package planner

import (
	"fmt"

	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/zerr"
)

// ResolveEntryPoints maps the declared entry points to the files handed to the bundler.
//
// filesOf returns the files each referenced entry point label provides. In the single
// form the chunk is named after the rule. A non-javascript entry point resolves to the
// first javascript input with the same stem, scanning inputs in aggregation order.
func ResolveEntryPoints(
	spec domain.EntryPointSpec,
	ruleName string,
	filesOf map[domain.Label][]domain.SourceFile,
	inputs []domain.SourceFile,
) ([]domain.ResolvedEntryPoint, error) {
	switch {
	case spec.HasSingle() && spec.HasMapping():
		return nil, domain.ConfigError(zerr.With(domain.ErrBothEntryPointForms, "attribute", "entry_point"))
	case !spec.HasSingle() && !spec.HasMapping():
		return nil, domain.ConfigError(zerr.With(domain.ErrNoEntryPoint, "attribute", "entry_points"))
	}

	if spec.HasSingle() {
		files := filesOf[*spec.Single]
		if len(files) != 1 {
			return nil, domain.ConfigError(fileCountError(*spec.Single, "entry_point", len(files)))
		}
		file, err := resolveJSInput(files[0], inputs)
		if err != nil {
			return nil, err
		}
		return []domain.ResolvedEntryPoint{{File: file, Chunk: ruleName}}, nil
	}

	resolved := make([]domain.ResolvedEntryPoint, 0, len(spec.Mapping))
	byFile := make(map[string]domain.Label, len(spec.Mapping))
	byChunk := make(map[string]domain.Label, len(spec.Mapping))
	for _, decl := range spec.Mapping {
		files := filesOf[decl.Ref]
		if len(files) != 1 {
			return nil, domain.ConfigError(fileCountError(decl.Ref, "entry_points", len(files)))
		}

		file, err := resolveJSInput(files[0], inputs)
		if err != nil {
			return nil, err
		}

		if prev, dup := byFile[file.Path()]; dup {
			err := zerr.With(domain.ErrDuplicateEntryPoint, "file", file.Path())
			return nil, domain.ConfigError(zerr.With(err, "keys", prev.String()+", "+decl.Ref.String()))
		}
		if prev, dup := byChunk[decl.Chunk]; dup {
			err := zerr.With(domain.ErrDuplicateEntryPoint, "chunk", decl.Chunk)
			return nil, domain.ConfigError(zerr.With(err, "keys", prev.String()+", "+decl.Ref.String()))
		}
		byFile[file.Path()] = decl.Ref
		byChunk[decl.Chunk] = decl.Ref

		resolved = append(resolved, domain.ResolvedEntryPoint{File: file, Chunk: decl.Chunk})
	}
	return resolved, nil
}

func resolveJSInput(f domain.SourceFile, inputs []domain.SourceFile) (domain.SourceFile, error) {
	if f.IsJS() {
		return f, nil
	}

	stem := f.Stem()
	for _, in := range inputs {
		if in.IsJS() && in.Stem() == stem {
			return in, nil
		}
	}

	err := zerr.Wrap(domain.ErrUnresolvedEntryPoint, fmt.Sprintf(
		"could not find corresponding javascript entry point for %s, add the %s.js to your deps", f.Path(), stem))
	return domain.SourceFile{}, domain.ResolutionError(zerr.With(err, "stem", stem))
}

func fileCountError(ref domain.Label, attribute string, count int) error {
	subject := "keys in " + attribute
	if attribute == "entry_point" {
		subject = attribute
	}
	var err error = zerr.Wrap(domain.ErrEntryPointFileCount, fmt.Sprintf(
		"%s must provide one file, but %s has %d", subject, ref.String(), count))
	err = zerr.With(err, "attribute", attribute)
	err = zerr.With(err, "label", ref.String())
	return zerr.With(err, "count", count)
}
