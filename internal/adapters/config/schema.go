package config

import (
	"gopkg.in/yaml.v3"
)

// Bundlefile represents the structure of the bundle.yaml rule file.
type Bundlefile struct {
	Version string              `yaml:"version"`
	Bundles Ordered[*BundleDTO] `yaml:"bundles"`
	Targets Ordered[*TargetDTO] `yaml:"targets"`
}

// BundleDTO holds the attributes of one rollup_bundle declaration.
// BUILD and YAML declarations are both decoded into it.
type BundleDTO struct {
	EntryPoint        string          `yaml:"entry_point"`
	EntryPoints       Ordered[string] `yaml:"entry_points"`
	Srcs              []string        `yaml:"srcs"`
	Deps              []string        `yaml:"deps"`
	Format            string          `yaml:"format"`
	OutputDir         bool            `yaml:"output_dir"`
	Sourcemap         string          `yaml:"sourcemap"`
	Silent            bool            `yaml:"silent"`
	SilentOnSuccess   bool            `yaml:"silent_on_success"`
	SupportsWorkers   bool            `yaml:"supports_workers"`
	LinkWorkspaceRoot bool            `yaml:"link_workspace_root"`
	Stamp             string          `yaml:"stamp"`
	Args              []string        `yaml:"args"`
	ConfigFile        string          `yaml:"config_file"`
}

// TargetDTO holds a js_library, filegroup or npm_package declaration.
type TargetDTO struct {
	Kind    string   `yaml:"kind"`
	Srcs    []string `yaml:"srcs"`
	EsmSrcs []string `yaml:"esm_srcs"`
	Deps    []string `yaml:"deps"`
}

// Entry is one key of an Ordered mapping.
type Entry[T any] struct {
	Key   string
	Value T
}

// Ordered is a YAML mapping decoded in declaration order.
type Ordered[T any] []Entry[T]

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Ordered[T]) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return &yaml.TypeError{Errors: []string{"expected a mapping"}}
	}

	entries := make(Ordered[T], 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var v T
		if err := value.Content[i+1].Decode(&v); err != nil {
			return err
		}
		entries = append(entries, Entry[T]{Key: value.Content[i].Value, Value: v})
	}
	*o = entries
	return nil
}
