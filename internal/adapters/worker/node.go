package worker

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bundlerule/internal/adapters/logger"
	"go.trai.ch/bundlerule/internal/core/ports"
)

// NodeID is the unique identifier for the worker pool Graft node.
const NodeID graft.ID = "adapter.worker_pool"

func init() {
	graft.Register(graft.Node[ports.WorkerPool]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.WorkerPool, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewPool(log, DefaultIdleTimeout), nil
		},
	})
}
