package domain

import (
	"strconv"

	"go.trai.ch/zerr"
)

// RuleKind is the rule function name that declares a bundle.
const RuleKind = "rollup_bundle"

// Format is the module format of the bundled output.
type Format string

// Supported output formats.
const (
	FormatAMD    Format = "amd"
	FormatCJS    Format = "cjs"
	FormatESM    Format = "esm"
	FormatIIFE   Format = "iife"
	FormatUMD    Format = "umd"
	FormatSystem Format = "system"
)

// DefaultFormat is used when a rule does not set format.
const DefaultFormat = FormatESM

// ParseFormat validates s as an output format. An empty string yields DefaultFormat.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return DefaultFormat, nil
	case FormatAMD, FormatCJS, FormatESM, FormatIIFE, FormatUMD, FormatSystem:
		return f, nil
	default:
		return "", zerr.With(ErrInvalidFormat, "format", s)
	}
}

// SourcemapMode controls how the bundler emits sourcemaps.
type SourcemapMode string

// Supported sourcemap modes.
const (
	SourcemapInline SourcemapMode = "inline"
	SourcemapHidden SourcemapMode = "hidden"
	SourcemapTrue   SourcemapMode = "true"
	SourcemapFalse  SourcemapMode = "false"
)

// DefaultSourcemap is used when a rule does not set sourcemap.
const DefaultSourcemap = SourcemapInline

// ParseSourcemap validates s as a sourcemap mode. An empty string yields DefaultSourcemap.
func ParseSourcemap(s string) (SourcemapMode, error) {
	switch m := SourcemapMode(s); m {
	case "":
		return DefaultSourcemap, nil
	case SourcemapInline, SourcemapHidden, SourcemapTrue, SourcemapFalse:
		return m, nil
	default:
		return "", zerr.With(ErrInvalidSourcemap, "sourcemap", s)
	}
}

// EmitsSeparateFile reports whether the mode produces a .map artifact next to each output.
func (m SourcemapMode) EmitsSeparateFile() bool {
	return m == SourcemapTrue
}

// StampMode is the tri-state stamping attribute.
type StampMode int

// Stamping modes.
const (
	StampAuto StampMode = -1
	StampOff  StampMode = 0
	StampOn   StampMode = 1
)

// ParseStamp accepts -1, 0, 1 and their names auto, off, on. An empty string yields StampAuto.
func ParseStamp(s string) (StampMode, error) {
	switch s {
	case "", "auto":
		return StampAuto, nil
	case "off":
		return StampOff, nil
	case "on":
		return StampOn, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return StampAuto, zerr.With(ErrInvalidStamp, "stamp", s)
	}
	return StampFromInt(n)
}

// StampFromInt converts the integer form of the attribute.
func StampFromInt(n int) (StampMode, error) {
	switch StampMode(n) {
	case StampAuto, StampOff, StampOn:
		return StampMode(n), nil
	default:
		return StampAuto, zerr.With(ErrInvalidStamp, "stamp", n)
	}
}

// Resolve decides whether to stamp given the global --stamp setting.
func (s StampMode) Resolve(global bool) bool {
	switch s {
	case StampOn:
		return true
	case StampOff:
		return false
	default:
		return global
	}
}

func (s StampMode) String() string {
	switch s {
	case StampOn:
		return "on"
	case StampOff:
		return "off"
	default:
		return "auto"
	}
}

// Rule is a declared bundle request.
type Rule struct {
	Label Label
	// EntryPoint is the single entry point form. Its chunk name is the rule name.
	EntryPoint *Label
	// EntryPoints is the mapping form in declaration order.
	EntryPoints       []EntryPointDecl
	Srcs              []Label
	Deps              []Label
	Format            Format
	OutputDir         bool
	Sourcemap         SourcemapMode
	Silent            bool
	SilentOnSuccess   bool
	SupportsWorkers   bool
	LinkWorkspaceRoot bool
	Stamp             StampMode
	Args              []string
	ConfigFile        *Label
}

// NewRule returns a rule named l with every attribute at its default.
func NewRule(l Label) *Rule {
	return &Rule{
		Label:     l,
		Format:    DefaultFormat,
		Sourcemap: DefaultSourcemap,
		Stamp:     StampAuto,
	}
}

// EntryPointSpec returns the rule's entry point declarations.
func (r *Rule) EntryPointSpec() EntryPointSpec {
	return EntryPointSpec{Single: r.EntryPoint, Mapping: r.EntryPoints}
}
