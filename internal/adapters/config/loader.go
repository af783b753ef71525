// Package config loads bundle rules and their dependency targets from BUILD and bundle.yaml files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.PackageLoader.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a new Loader reading from the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: NewOSFS()}
}

// NewLoaderWithFS creates a new Loader reading from fsys.
func NewLoaderWithFS(logger ports.Logger, fsys FileSystem) *Loader {
	return &Loader{Logger: logger, FS: fsys}
}

// FindWorkspaceRoot walks up from dir to the nearest directory holding a workspace marker.
func (l *Loader) FindWorkspaceRoot(dir string) (string, error) {
	currentDir := filepath.Clean(dir)
	for {
		for _, marker := range domain.WorkspaceMarkers {
			if _, err := l.FS.Stat(filepath.Join(currentDir, marker)); err == nil {
				return currentDir, nil
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(domain.ErrWorkspaceNotFound, "cwd", dir)
}

// LoadPackage loads the first rule file found in the package directory.
func (l *Loader) LoadPackage(root, pkg string) (*domain.Package, error) {
	dir := filepath.Join(root, filepath.FromSlash(pkg))
	for _, name := range domain.PackageFiles {
		path := filepath.Join(dir, name)
		data, err := l.FS.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "file", path)
		}

		rel := relativeFile(pkg, name)
		if name == domain.BundleFileName {
			return l.loadBundlefile(pkg, rel, data)
		}
		return l.loadBuildFile(pkg, rel, data)
	}
	return nil, domain.ErrPackageNotFound
}

func (l *Loader) loadBuildFile(pkg, file string, data []byte) (*domain.Package, error) {
	decls, skipped, err := parseBuildFile(file, data)
	if err != nil {
		return nil, domain.ConfigError(err)
	}
	for _, fn := range skipped {
		l.Logger.Warn(fmt.Sprintf("ignoring unsupported call %s() in %s", fn, file))
	}

	p := domain.NewPackage(pkg, file)
	for _, d := range decls {
		if err := addDeclaration(p, d.kind, d.name, d.bundle, d.target); err != nil {
			return nil, domain.Annotate(domain.ConfigError(err), "file", file)
		}
	}
	return p, nil
}

func (l *Loader) loadBundlefile(pkg, file string, data []byte) (*domain.Package, error) {
	var bundlefile Bundlefile
	if err := yaml.Unmarshal(data, &bundlefile); err != nil {
		return nil, domain.ConfigError(zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "file", file))
	}

	p := domain.NewPackage(pkg, file)
	for _, e := range bundlefile.Bundles {
		bundle := e.Value
		if bundle == nil {
			bundle = &BundleDTO{}
		}
		if err := addDeclaration(p, domain.RuleKind, e.Key, bundle, nil); err != nil {
			return nil, domain.Annotate(domain.ConfigError(err), "file", file)
		}
	}
	for _, e := range bundlefile.Targets {
		if e.Value == nil {
			err := zerr.With(domain.ErrInvalidAttribute, "attribute", "kind")
			return nil, domain.ConfigError(zerr.With(err, "target", e.Key))
		}
		if err := addDeclaration(p, e.Value.Kind, e.Key, nil, e.Value); err != nil {
			return nil, domain.Annotate(domain.ConfigError(err), "file", file)
		}
	}
	return p, nil
}

func addDeclaration(p *domain.Package, kind, name string, bundle *BundleDTO, target *TargetDTO) error {
	if name == "" {
		return zerr.With(domain.ErrMissingName, "kind", kind)
	}

	if kind == domain.RuleKind {
		r, err := buildRule(p.Path, name, bundle)
		if err != nil {
			return zerr.With(err, "rule", name)
		}
		return p.AddRule(r)
	}

	t, err := buildTarget(p.Path, name, target)
	if err != nil {
		return zerr.With(err, "target", name)
	}
	return p.AddTarget(t)
}

// buildRule converts the declared attributes of a bundle into a domain.Rule.
func buildRule(pkg, name string, dto *BundleDTO) (*domain.Rule, error) {
	r := domain.NewRule(domain.Label{Pkg: pkg, Name: name})

	var err error
	if dto.EntryPoint != "" {
		l, err := parseAttrLabel(dto.EntryPoint, pkg, "entry_point")
		if err != nil {
			return nil, err
		}
		r.EntryPoint = &l
	}

	for _, e := range dto.EntryPoints {
		l, err := parseAttrLabel(e.Key, pkg, "entry_points")
		if err != nil {
			return nil, err
		}
		r.EntryPoints = append(r.EntryPoints, domain.EntryPointDecl{Ref: l, Chunk: e.Value})
	}

	if r.Srcs, err = parseAttrLabels(dto.Srcs, pkg, "srcs"); err != nil {
		return nil, err
	}
	if r.Deps, err = parseAttrLabels(dto.Deps, pkg, "deps"); err != nil {
		return nil, err
	}

	if r.Format, err = domain.ParseFormat(dto.Format); err != nil {
		return nil, zerr.With(err, "attribute", "format")
	}
	if r.Sourcemap, err = domain.ParseSourcemap(dto.Sourcemap); err != nil {
		return nil, zerr.With(err, "attribute", "sourcemap")
	}
	if r.Stamp, err = domain.ParseStamp(dto.Stamp); err != nil {
		return nil, zerr.With(err, "attribute", "stamp")
	}

	if dto.ConfigFile != "" {
		l, err := parseAttrLabel(dto.ConfigFile, pkg, "config_file")
		if err != nil {
			return nil, err
		}
		r.ConfigFile = &l
	}

	r.OutputDir = dto.OutputDir
	r.Silent = dto.Silent
	r.SilentOnSuccess = dto.SilentOnSuccess
	r.SupportsWorkers = dto.SupportsWorkers
	r.LinkWorkspaceRoot = dto.LinkWorkspaceRoot
	r.Args = dto.Args
	return r, nil
}

func buildTarget(pkg, name string, dto *TargetDTO) (*domain.Target, error) {
	kind := domain.TargetKind(dto.Kind)
	switch kind {
	case domain.KindJSLibrary, domain.KindFilegroup, domain.KindNpmPackage:
	default:
		return nil, zerr.With(zerr.With(domain.ErrInvalidAttribute, "attribute", "kind"), "kind", dto.Kind)
	}

	t := &domain.Target{Label: domain.Label{Pkg: pkg, Name: name}, Kind: kind}
	var err error
	if t.Srcs, err = parseAttrLabels(dto.Srcs, pkg, "srcs"); err != nil {
		return nil, err
	}
	if t.ESMSrcs, err = parseAttrLabels(dto.EsmSrcs, pkg, "esm_srcs"); err != nil {
		return nil, err
	}
	if t.Deps, err = parseAttrLabels(dto.Deps, pkg, "deps"); err != nil {
		return nil, err
	}
	return t, nil
}

func parseAttrLabel(s, pkg, attribute string) (domain.Label, error) {
	l, err := domain.ParseLabel(s, pkg)
	if err != nil {
		return domain.Label{}, zerr.With(err, "attribute", attribute)
	}
	return l, nil
}

func parseAttrLabels(values []string, pkg, attribute string) ([]domain.Label, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]domain.Label, 0, len(values))
	for _, v := range values {
		l, err := parseAttrLabel(v, pkg, attribute)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func relativeFile(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return strings.TrimSuffix(pkg, "/") + "/" + name
}
