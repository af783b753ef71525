package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bundlerule/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/bundlerule/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/bundlerule/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/bundlerule/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/bundlerule/internal/adapters/template"  //nolint:depguard // Wired in app layer
	"go.trai.ch/bundlerule/internal/adapters/worker"    //nolint:depguard // Wired in app layer
	"go.trai.ch/bundlerule/internal/core/ports"
	"go.trai.ch/bundlerule/internal/engine/runner"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized components the CLI layer needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			template.NodeID,
			fs.HasherNodeID,
			telemetry.NodeID,
			logger.NodeID,
			worker.NodeID,
			runner.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.PackageLoader](ctx)
	if err != nil {
		return nil, err
	}

	materializer, err := graft.Dep[ports.ConfigMaterializer](ctx)
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

	workers, err := graft.Dep[ports.WorkerPool](ctx)
	if err != nil {
		return nil, err
	}

	r, err := graft.Dep[*runner.Runner](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, materializer, hasher, tracer, log, workers, r), nil
}
