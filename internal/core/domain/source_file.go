package domain

import (
	"path"
	"strings"
)

// SourceFile is a handle to a build artifact, identified by its path relative to the execution root.
// Generated artifacts additionally carry the output root they live under.
type SourceFile struct {
	path InternedString
	root InternedString
}

// NewSourceFile returns a handle for a file checked into the source tree.
func NewSourceFile(p string) SourceFile {
	return SourceFile{path: NewInternedString(path.Clean(p))}
}

// NewGeneratedFile returns a handle for a file produced under outputRoot.
// shortPath is the file's path relative to outputRoot.
func NewGeneratedFile(outputRoot, shortPath string) SourceFile {
	root := path.Clean(outputRoot)
	return SourceFile{
		path: NewInternedString(path.Join(root, shortPath)),
		root: NewInternedString(root),
	}
}

// Path returns the file's path relative to the execution root.
func (f SourceFile) Path() string {
	return f.path.String()
}

// Root returns the output root of a generated file, or "" for a source file.
func (f SourceFile) Root() string {
	return f.root.String()
}

// ShortPath returns the path relative to the file's root.
func (f SourceFile) ShortPath() string {
	if f.root.IsZero() {
		return f.Path()
	}
	return strings.TrimPrefix(f.Path(), f.Root()+"/")
}

// Extension returns the file extension without the leading dot.
func (f SourceFile) Extension() string {
	return strings.TrimPrefix(path.Ext(f.Path()), ".")
}

// Stem returns the short path without its extension.
// A source file and the file generated from it share a stem.
func (f SourceFile) Stem() string {
	p := f.ShortPath()
	return strings.TrimSuffix(p, path.Ext(p))
}

// IsJS reports whether the file is a javascript module the bundler accepts as an entry point.
func (f SourceFile) IsJS() bool {
	ext := f.Extension()
	return ext == "js" || ext == "mjs"
}

// IsGenerated reports whether the file is produced by an action.
func (f SourceFile) IsGenerated() bool {
	return !f.root.IsZero()
}

// IsZero reports whether the handle is empty.
func (f SourceFile) IsZero() bool {
	return f.path.IsZero()
}

// String returns the file path.
func (f SourceFile) String() string {
	return f.Path()
}

// MarshalText implements encoding.TextMarshaler.
func (f SourceFile) MarshalText() ([]byte, error) {
	return []byte(f.Path()), nil
}

// FilterJS returns the javascript files of files, preserving order.
func FilterJS(files []SourceFile) []SourceFile {
	out := make([]SourceFile, 0, len(files))
	for _, f := range files {
		if f.IsJS() {
			out = append(out, f)
		}
	}
	return out
}
