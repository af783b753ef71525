package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bundlerule/internal/adapters/logger"
	"go.trai.ch/bundlerule/internal/core/ports"
)

// NodeID is the unique identifier for the package loader Graft node.
const NodeID graft.ID = "adapter.package_loader"

func init() {
	graft.Register(graft.Node[ports.PackageLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.PackageLoader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log), nil
		},
	})
}
