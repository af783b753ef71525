package planner

import "go.trai.ch/bundlerule/internal/core/domain"

// Aggregate merges a rule's direct files and the sources of its dependencies into one
// ordered input set. Files are deduplicated by path and the first occurrence wins.
//
// For each dependency the shapes contribute in a fixed order: ES module sources, then
// module sources or, only when module sources are absent, default files, then external
// package sources. Every present shape contributes.
func Aggregate(direct []domain.SourceFile, deps []domain.Dependency) []domain.SourceFile {
	set := newFileSet()
	set.add(direct...)
	for _, dep := range deps {
		set.add(DependencySources(dep.Providers)...)
	}
	return set.files
}

// DependencySources returns the ordered, deduplicated files one dependency contributes.
func DependencySources(info domain.ModuleInfo) []domain.SourceFile {
	set := newFileSet()
	set.add(info.Files(domain.ESModuleSources)...)
	if info.Has(domain.ModuleSources) {
		set.add(info.Files(domain.ModuleSources)...)
	} else {
		set.add(info.Files(domain.DefaultFiles)...)
	}
	set.add(info.Files(domain.ExternalPackageSources)...)
	return set.files
}

// fileSet is an insertion-ordered set of files keyed by path.
type fileSet struct {
	seen  map[string]struct{}
	files []domain.SourceFile
}

func newFileSet() *fileSet {
	return &fileSet{seen: make(map[string]struct{}), files: []domain.SourceFile{}}
}

func (s *fileSet) add(files ...domain.SourceFile) {
	for _, f := range files {
		if _, ok := s.seen[f.Path()]; ok {
			continue
		}
		s.seen[f.Path()] = struct{}{}
		s.files = append(s.files, f)
	}
}
