package domain

// EntryPointDecl is one key of the entry_points mapping.
type EntryPointDecl struct {
	Ref   Label
	Chunk string
}

// EntryPointSpec holds whichever entry point forms a rule declared.
// Exactly one of Single or Mapping must be set for the spec to be valid.
type EntryPointSpec struct {
	Single  *Label
	Mapping []EntryPointDecl
}

// HasSingle reports whether the single form was declared.
func (s EntryPointSpec) HasSingle() bool {
	return s.Single != nil
}

// HasMapping reports whether the mapping form was declared.
func (s EntryPointSpec) HasMapping() bool {
	return len(s.Mapping) > 0
}

// Refs returns every label referenced as an entry point, in declaration order.
func (s EntryPointSpec) Refs() []Label {
	refs := make([]Label, 0, len(s.Mapping)+1)
	if s.Single != nil {
		refs = append(refs, *s.Single)
	}
	for _, m := range s.Mapping {
		refs = append(refs, m.Ref)
	}
	return refs
}

// ResolvedEntryPoint is the file handed to the bundler for one output chunk.
type ResolvedEntryPoint struct {
	File  SourceFile `json:"file"`
	Chunk string     `json:"chunk"`
}
