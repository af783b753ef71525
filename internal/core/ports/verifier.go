package ports

import "go.trai.ch/bundlerule/internal/core/domain"

// Verifier defines the interface for verifying declared outputs.
//
//go:generate go run go.uber.org/mock/mockgen -source=verifier.go -destination=mocks/mock_verifier.go -package=mocks
type Verifier interface {
	// VerifyOutputs returns the paths of the outputs missing under root.
	VerifyOutputs(root string, plan domain.OutputPlan) ([]string, error)
}
