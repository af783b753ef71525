package domain

import "encoding/json"

// ProviderShape enumerates the ways a dependency can expose source files.
type ProviderShape int

const (
	// ESModuleSources holds ES module sources.
	ESModuleSources ProviderShape = iota
	// ModuleSources holds generic module sources.
	ModuleSources
	// DefaultFiles holds the raw files of a target.
	DefaultFiles
	// ExternalPackageSources holds the sources of an external npm package.
	ExternalPackageSources
)

// AggregationOrder is the fixed order in which shapes are probed when aggregating a dependency.
var AggregationOrder = []ProviderShape{ESModuleSources, ModuleSources, DefaultFiles, ExternalPackageSources}

func (s ProviderShape) String() string {
	switch s {
	case ESModuleSources:
		return "es_module_sources"
	case ModuleSources:
		return "module_sources"
	case DefaultFiles:
		return "default_files"
	case ExternalPackageSources:
		return "external_package_sources"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s ProviderShape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ModuleInfo is the set of provider shapes a target exposes.
// A shape that was never set is absent, which is distinct from present and empty.
type ModuleInfo struct {
	shapes map[ProviderShape][]SourceFile
}

// NewModuleInfo returns an empty ModuleInfo.
func NewModuleInfo() ModuleInfo {
	return ModuleInfo{shapes: make(map[ProviderShape][]SourceFile)}
}

// With returns a copy of m exposing files under shape.
func (m ModuleInfo) With(shape ProviderShape, files []SourceFile) ModuleInfo {
	next := make(map[ProviderShape][]SourceFile, len(m.shapes)+1)
	for k, v := range m.shapes {
		next[k] = v
	}
	next[shape] = append(make([]SourceFile, 0, len(files)), files...)
	return ModuleInfo{shapes: next}
}

// Has reports whether shape is present.
func (m ModuleInfo) Has(shape ProviderShape) bool {
	_, ok := m.shapes[shape]
	return ok
}

// Files returns the files of shape, or nil when it is absent.
func (m ModuleInfo) Files(shape ProviderShape) []SourceFile {
	return m.shapes[shape]
}

// MarshalJSON encodes the present shapes in aggregation order.
func (m ModuleInfo) MarshalJSON() ([]byte, error) {
	type entry struct {
		Shape ProviderShape `json:"shape"`
		Files []SourceFile  `json:"files"`
	}
	entries := make([]entry, 0, len(m.shapes))
	for _, shape := range AggregationOrder {
		if files, ok := m.shapes[shape]; ok {
			entries = append(entries, entry{Shape: shape, Files: files})
		}
	}
	return json.Marshal(entries)
}

// Dependency is one resolved dependency target and the providers it exposes.
type Dependency struct {
	Label     Label
	Providers ModuleInfo
}
