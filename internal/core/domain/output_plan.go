package domain

// OutputKind distinguishes the two output plan shapes.
type OutputKind int

const (
	// OutputFileSet declares one file, and optionally a sourcemap, per chunk.
	OutputFileSet OutputKind = iota
	// OutputDirectory declares a single directory whose contents the bundler decides.
	OutputDirectory
)

func (k OutputKind) String() string {
	if k == OutputDirectory {
		return "directory"
	}
	return "file_set"
}

// MarshalText implements encoding.TextMarshaler.
func (k OutputKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// OutputEntry is one declared chunk of a file set plan.
type OutputEntry struct {
	Chunk     string      `json:"chunk"`
	File      SourceFile  `json:"file"`
	Sourcemap *SourceFile `json:"sourcemap,omitempty"`
}

// OutputPlan is the explicit set of artifacts an action declares.
type OutputPlan struct {
	Kind      OutputKind    `json:"kind"`
	Directory *SourceFile   `json:"directory,omitempty"`
	Entries   []OutputEntry `json:"entries,omitempty"`
}

// DirectoryPlan returns a plan declaring dir.
func DirectoryPlan(dir SourceFile) OutputPlan {
	return OutputPlan{Kind: OutputDirectory, Directory: &dir}
}

// FileSetPlan returns a plan declaring entries.
func FileSetPlan(entries []OutputEntry) OutputPlan {
	return OutputPlan{Kind: OutputFileSet, Entries: entries}
}

// Artifacts returns every declared output in declaration order, sourcemaps following their chunk.
func (p OutputPlan) Artifacts() []SourceFile {
	if p.Kind == OutputDirectory {
		if p.Directory == nil {
			return nil
		}
		return []SourceFile{*p.Directory}
	}
	out := make([]SourceFile, 0, 2*len(p.Entries))
	for _, e := range p.Entries {
		out = append(out, e.File)
		if e.Sourcemap != nil {
			out = append(out, *e.Sourcemap)
		}
	}
	return out
}

// Primary returns the first declared output, used for progress messages.
func (p OutputPlan) Primary() SourceFile {
	artifacts := p.Artifacts()
	if len(artifacts) == 0 {
		return SourceFile{}
	}
	return artifacts[0]
}
