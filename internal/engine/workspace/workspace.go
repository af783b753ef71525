// Package workspace resolves labels to the rules, targets and files they name.
package workspace

import (
	"errors"
	"io/fs"

	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/core/ports"
	"go.trai.ch/zerr"
)

// NodeKind is what a label resolved to.
type NodeKind int

const (
	// NodeFile is a source file checked into the workspace.
	NodeFile NodeKind = iota
	// NodeTarget is a js_library, filegroup or npm_package target.
	NodeTarget
	// NodeRule is a bundle rule.
	NodeRule
)

// Node is the result of resolving a label.
type Node struct {
	Kind   NodeKind
	Rule   *domain.Rule
	Target *domain.Target
	File   domain.SourceFile
}

// Workspace loads packages on demand and resolves labels across them.
type Workspace struct {
	root     string
	loader   ports.PackageLoader
	files    fs.FS
	packages map[string]*domain.Package
}

// New creates a Workspace rooted at root.
// files is the view of the source tree used to check that file labels exist.
func New(root string, loader ports.PackageLoader, files fs.FS) *Workspace {
	return &Workspace{
		root:     root,
		loader:   loader,
		files:    files,
		packages: make(map[string]*domain.Package),
	}
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// Package returns the package at pkg, loading it on first use.
// A directory without a rule file is an empty package.
func (w *Workspace) Package(pkg string) (*domain.Package, error) {
	if p, ok := w.packages[pkg]; ok {
		return p, nil
	}

	p, err := w.loader.LoadPackage(w.root, pkg)
	if errors.Is(err, domain.ErrPackageNotFound) {
		p, err = domain.NewPackage(pkg, ""), nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to load package"), "package", pkg)
	}

	w.packages[pkg] = p
	return p, nil
}

// Lookup resolves l to the rule, target or source file it names.
func (w *Workspace) Lookup(l domain.Label) (Node, error) {
	pkg, err := w.Package(l.Pkg)
	if err != nil {
		return Node{}, err
	}

	if r, ok := pkg.Rules[l.Name]; ok {
		return Node{Kind: NodeRule, Rule: r}, nil
	}
	if t, ok := pkg.Targets[l.Name]; ok {
		return Node{Kind: NodeTarget, Target: t}, nil
	}

	info, err := fs.Stat(w.files, l.FilePath())
	if err != nil || info.IsDir() {
		return Node{}, zerr.With(domain.ErrUnknownTarget, "label", l.String())
	}
	return Node{Kind: NodeFile, File: domain.NewSourceFile(l.FilePath())}, nil
}

// Rule resolves l and requires it to be a bundle rule.
func (w *Workspace) Rule(l domain.Label) (*domain.Rule, error) {
	n, err := w.Lookup(l)
	if err != nil {
		return nil, err
	}
	if n.Kind != NodeRule {
		return nil, zerr.With(domain.ErrNotABundle, "label", l.String())
	}
	return n.Rule, nil
}
