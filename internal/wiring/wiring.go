// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/bundlerule/internal/adapters/config"
	_ "go.trai.ch/bundlerule/internal/adapters/fs"
	_ "go.trai.ch/bundlerule/internal/adapters/logger"
	_ "go.trai.ch/bundlerule/internal/adapters/shell"
	_ "go.trai.ch/bundlerule/internal/adapters/telemetry"
	_ "go.trai.ch/bundlerule/internal/adapters/template"
	_ "go.trai.ch/bundlerule/internal/adapters/worker"
	// Register app and engine nodes.
	_ "go.trai.ch/bundlerule/internal/app"
	_ "go.trai.ch/bundlerule/internal/engine/runner"
)
