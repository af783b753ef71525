package ports

import (
	"context"

	"go.trai.ch/bundlerule/internal/core/domain"
)

// Substitution replaces every occurrence of Placeholder in a template with Value.
type Substitution struct {
	Placeholder string
	Value       string
}

// ConfigRequest describes one configuration file to materialize.
type ConfigRequest struct {
	// Root is the execution root that artifact paths are relative to.
	Root string
	// Template is the template artifact, or nil for the built-in default template.
	Template *domain.SourceFile
	// Output is the artifact to write.
	Output domain.SourceFile
	// Substitutions are applied in order.
	Substitutions []Substitution
}

// ConfigMaterializer expands configuration templates.
//
//go:generate go run go.uber.org/mock/mockgen -source=materializer.go -destination=mocks/mock_materializer.go -package=mocks
type ConfigMaterializer interface {
	// Materialize writes the expanded template to the request's output artifact.
	Materialize(ctx context.Context, req ConfigRequest) error
}
