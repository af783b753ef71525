package domain

import (
	"path"
	"strings"

	"github.com/bazelbuild/buildtools/labels"
	"go.trai.ch/zerr"
)

// Label identifies a target or source file within the workspace.
type Label struct {
	Pkg  string
	Name string
}

// ParseLabel parses s relative to the package pkg.
// Accepted forms are "//pkg:name", "//pkg", ":name" and "name".
func ParseLabel(s, pkg string) (Label, error) {
	if strings.TrimSpace(s) == "" {
		return Label{}, zerr.With(ErrInvalidLabel, "label", s)
	}

	parsed := labels.ParseRelative(s, pkg)
	if parsed.Repository != "" {
		err := zerr.With(ErrInvalidLabel, "label", s)
		return Label{}, zerr.With(err, "reason", "external repositories are not supported")
	}
	if parsed.Target == "" || strings.HasPrefix(parsed.Package, "/") {
		return Label{}, zerr.With(ErrInvalidLabel, "label", s)
	}

	return Label{Pkg: parsed.Package, Name: parsed.Target}, nil
}

// MustParseLabel parses an absolute label or panics. Use only for constants and tests.
func MustParseLabel(s string) Label {
	l, err := ParseLabel(s, "")
	if err != nil {
		panic(err)
	}
	return l
}

// String returns the canonical "//pkg:name" form.
func (l Label) String() string {
	return "//" + l.Pkg + ":" + l.Name
}

// FilePath returns the workspace-relative path of the source file the label names.
func (l Label) FilePath() string {
	return path.Join(l.Pkg, l.Name)
}

// IsZero reports whether the label is empty.
func (l Label) IsZero() bool {
	return l.Pkg == "" && l.Name == ""
}

// Compare orders labels by package, then name.
func (l Label) Compare(other Label) int {
	if c := strings.Compare(l.Pkg, other.Pkg); c != 0 {
		return c
	}
	return strings.Compare(l.Name, other.Name)
}

// MarshalText implements encoding.TextMarshaler.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}
