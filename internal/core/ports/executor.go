// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"time"

	"go.trai.ch/bundlerule/internal/core/domain"
)

// Executor runs planned bundler actions.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the action described by desc with execRoot as working directory.
	//
	// A non-zero exit is returned as an error joined with domain.ErrExecution. The
	// result is returned alongside the error whenever the process ran.
	Execute(ctx context.Context, execRoot string, desc *domain.InvocationDescriptor) (*domain.ExecutionResult, error)
}

// WorkerPool runs actions on long-lived persistent worker processes.
type WorkerPool interface {
	Executor

	// SetIdleTimeout sets how long an unused worker process is kept alive.
	SetIdleTimeout(d time.Duration)

	// Close stops every worker process.
	Close() error
}
