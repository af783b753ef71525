package domain

import "go.trai.ch/zerr"

// TargetKind is the rule function that declared a dependency target.
type TargetKind string

// Supported dependency target kinds.
const (
	KindJSLibrary  TargetKind = "js_library"
	KindFilegroup  TargetKind = "filegroup"
	KindNpmPackage TargetKind = "npm_package"
)

// Target is a non-bundle target a rule can depend on.
type Target struct {
	Label Label
	Kind  TargetKind
	// Srcs are the target's generic module sources, or its files for a filegroup.
	Srcs []Label
	// ESMSrcs are ES module sources of a js_library.
	ESMSrcs []Label
	// Deps are targets whose files a filegroup or js_library re-exports.
	Deps []Label
}

// Package is one loaded rule file.
type Package struct {
	// Path is the package path relative to the workspace root.
	Path string
	// File is the rule file the package was loaded from.
	File    string
	Rules   map[string]*Rule
	Targets map[string]*Target
	// Order lists rule names in declaration order.
	Order []string
}

// NewPackage creates an empty package at path, loaded from file.
func NewPackage(path, file string) *Package {
	return &Package{
		Path:    path,
		File:    file,
		Rules:   make(map[string]*Rule),
		Targets: make(map[string]*Target),
	}
}

// AddRule adds r to the package.
func (p *Package) AddRule(r *Rule) error {
	if err := p.checkName(r.Label.Name); err != nil {
		return err
	}
	p.Rules[r.Label.Name] = r
	p.Order = append(p.Order, r.Label.Name)
	return nil
}

// AddTarget adds t to the package.
func (p *Package) AddTarget(t *Target) error {
	if err := p.checkName(t.Label.Name); err != nil {
		return err
	}
	p.Targets[t.Label.Name] = t
	return nil
}

// BundleLabels returns the labels of the package's bundle rules in declaration order.
func (p *Package) BundleLabels() []Label {
	out := make([]Label, 0, len(p.Order))
	for _, name := range p.Order {
		out = append(out, p.Rules[name].Label)
	}
	return out
}

func (p *Package) checkName(name string) error {
	_, isRule := p.Rules[name]
	_, isTarget := p.Targets[name]
	if isRule || isTarget {
		return zerr.With(zerr.With(ErrDuplicateTarget, "package", p.Path), "name", name)
	}
	return nil
}
