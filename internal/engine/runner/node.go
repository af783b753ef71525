package runner

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bundlerule/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bundlerule/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bundlerule/internal/adapters/shell"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bundlerule/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bundlerule/internal/adapters/worker"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/bundlerule/internal/core/ports"
)

// NodeID is the unique identifier for the runner Graft node.
const NodeID graft.ID = "engine.runner"

func init() {
	graft.Register(graft.Node[*Runner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			worker.NodeID,
			fs.VerifierNodeID,
			fs.HasherNodeID,
			telemetry.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Runner, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}

			workers, err := graft.Dep[ports.WorkerPool](ctx)
			if err != nil {
				return nil, err
			}

			verifier, err := graft.Dep[ports.Verifier](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(executor, workers, verifier, hasher, tracer, log), nil
		},
	})
}
