package template

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bundlerule/internal/core/ports"
)

// NodeID is the unique identifier for the config materializer Graft node.
const NodeID graft.ID = "adapter.config_materializer"

func init() {
	graft.Register(graft.Node[ports.ConfigMaterializer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{},
		Run: func(_ context.Context) (ports.ConfigMaterializer, error) {
			return NewMaterializer(), nil
		},
	})
}
