// Package app implements the application layer for bundlerule.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/bundlerule/internal/adapters/telemetry"
	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/core/ports"
	"go.trai.ch/bundlerule/internal/engine/planner"
	"go.trai.ch/bundlerule/internal/engine/runner"
	"go.trai.ch/bundlerule/internal/engine/workspace"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	loader       ports.PackageLoader
	materializer ports.ConfigMaterializer
	hasher       ports.Hasher
	tracer       ports.Tracer
	logger       ports.Logger
	workers      ports.WorkerPool
	runner       *runner.Runner
}

// New creates a new App instance.
func New(
	loader ports.PackageLoader,
	materializer ports.ConfigMaterializer,
	hasher ports.Hasher,
	tracer ports.Tracer,
	log ports.Logger,
	workers ports.WorkerPool,
	r *runner.Runner,
) *App {
	return &App{
		loader:       loader,
		materializer: materializer,
		hasher:       hasher,
		tracer:       tracer,
		logger:       log,
		workers:      workers,
		runner:       r,
	}
}

// Settings are process wide options applied before a command runs.
type Settings struct {
	// LogJSON switches the logger to JSON lines.
	LogJSON bool
	// Timings logs the duration of every traced span.
	Timings bool
}

// Configure applies settings and returns a function flushing the tracer provider.
func (a *App) Configure(settings Settings) func(context.Context) error {
	if l, ok := a.logger.(interface{ SetJSON(enable bool) }); ok {
		l.SetJSON(settings.LogJSON)
	}
	if !settings.Timings {
		return func(context.Context) error { return nil }
	}
	return telemetry.Install(telemetry.NewBridge(a.logger))
}

// PlanOptions configuration for the Plan method.
type PlanOptions struct {
	// Dir is the directory the workspace is searched from. Empty means the working directory.
	Dir     string
	Planner planner.Options
}

// PlannedAction is a planned action and the digest of its descriptor.
type PlannedAction struct {
	Descriptor *domain.InvocationDescriptor `json:"descriptor"`
	Digest     string                       `json:"digest"`
}

// Plan is the result of planning a set of targets.
type Plan struct {
	// Root is the workspace root, which is also the execution root.
	Root  string
	Graph *domain.ActionGraph
	// Actions are the planned actions in execution order.
	Actions []PlannedAction
}

// Plan loads the workspace and plans the targets, or every bundle rule of the
// current package when targets is empty.
func (a *App) Plan(ctx context.Context, targets []string, opts PlanOptions) (*Plan, error) {
	ws, pkg, err := a.openWorkspace(opts.Dir)
	if err != nil {
		return nil, err
	}

	labels, err := a.resolveTargets(ws, pkg, targets)
	if err != nil {
		return nil, err
	}

	graph, err := planner.New(a.materializer, a.tracer, opts.Planner).PlanAll(ctx, ws, labels)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Root: ws.Root(), Graph: graph, Actions: make([]PlannedAction, 0, graph.Len())}
	for desc := range graph.Walk() {
		digest, err := a.hasher.ComputeDescriptorHash(desc)
		if err != nil {
			return nil, err
		}
		plan.Actions = append(plan.Actions, PlannedAction{Descriptor: desc, Digest: digest})
	}
	return plan, nil
}

func (a *App) openWorkspace(dir string) (*workspace.Workspace, string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, "", zerr.Wrap(err, "failed to get working directory")
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", zerr.Wrap(err, "failed to resolve workspace directory")
	}

	root, err := a.loader.FindWorkspaceRoot(dir)
	if err != nil {
		return nil, "", err
	}

	pkg, err := filepath.Rel(root, dir)
	if err != nil {
		return nil, "", zerr.Wrap(err, "failed to resolve current package")
	}
	pkg = filepath.ToSlash(pkg)
	if pkg == "." {
		pkg = ""
	}

	return workspace.New(root, a.loader, os.DirFS(root)), pkg, nil
}

func (a *App) resolveTargets(ws *workspace.Workspace, pkg string, targets []string) ([]domain.Label, error) {
	if len(targets) == 0 {
		p, err := ws.Package(pkg)
		if err != nil {
			return nil, err
		}
		labels := p.BundleLabels()
		if len(labels) == 0 {
			return nil, domain.ConfigError(zerr.With(domain.ErrNoTargetsSpecified, "package", "//"+pkg))
		}
		return labels, nil
	}

	labels := make([]domain.Label, 0, len(targets))
	for _, t := range targets {
		l, err := domain.ParseLabel(t, pkg)
		if err != nil {
			return nil, domain.ConfigError(err)
		}
		labels = append(labels, l)
	}
	return labels, nil
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	Plan   PlanOptions
	Runner runner.Options
	// WorkerIdleTimeout overrides how long unused worker processes are kept alive.
	WorkerIdleTimeout time.Duration
}

// Run plans the targets and executes the resulting actions.
func (a *App) Run(ctx context.Context, targets []string, opts RunOptions) error {
	plan, err := a.Plan(ctx, targets, opts.Plan)
	if err != nil {
		return err
	}

	if opts.WorkerIdleTimeout > 0 {
		a.workers.SetIdleTimeout(opts.WorkerIdleTimeout)
	}
	defer func() {
		_ = a.workers.Close()
	}()

	_, runErr := a.runner.Run(ctx, plan.Root, plan.Graph, opts.Runner)
	a.logger.Info(summarize(a.runner.Statuses()))
	return runErr
}

func summarize(statuses map[domain.Label]runner.ActionStatus) string {
	counts := make(map[runner.ActionStatus]int)
	for _, s := range statuses {
		counts[s]++
	}

	parts := []string{fmt.Sprintf("%d built", counts[runner.StatusCompleted])}
	for _, s := range []runner.ActionStatus{runner.StatusFailed, runner.StatusSkipped, runner.StatusCanceled} {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(string(s))))
		}
	}
	return fmt.Sprintf("%d actions: %s", len(statuses), strings.Join(parts, ", "))
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	// Dir is the directory the workspace is searched from. Empty means the working directory.
	Dir string
	// OutputRoot is the generated artifact directory relative to the workspace root.
	OutputRoot string
}

// Clean removes the output root of the workspace.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	ws, _, err := a.openWorkspace(opts.Dir)
	if err != nil {
		return err
	}

	outputRoot := opts.OutputRoot
	if outputRoot == "" {
		outputRoot = domain.DefaultOutputRoot
	}
	if !filepath.IsLocal(outputRoot) || filepath.Clean(outputRoot) == "." {
		return domain.ConfigError(zerr.With(domain.ErrOutputRootOutsideWorkspace, "output_root", outputRoot))
	}

	path := filepath.Join(ws.Root(), outputRoot)
	a.logger.Info(fmt.Sprintf("removing %s...", outputRoot))
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove output root"), "path", path)
	}
	a.logger.Info(fmt.Sprintf("removed %s", outputRoot))
	return nil
}
