package ports

import "go.trai.ch/bundlerule/internal/core/domain"

// Hasher defines the interface for computing digests.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeDescriptorHash digests the canonical encoding of desc.
	ComputeDescriptorHash(desc *domain.InvocationDescriptor) (string, error)

	// ComputeOutputHash digests the contents of the outputs declared by plan under root.
	ComputeOutputHash(root string, plan domain.OutputPlan) (string, error)
}
