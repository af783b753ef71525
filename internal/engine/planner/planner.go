// Package planner turns bundle rules into invocation descriptors.
package planner

import (
	"context"
	"strings"

	"go.trai.ch/bundlerule/internal/core/domain"
	"go.trai.ch/bundlerule/internal/core/ports"
	"go.trai.ch/bundlerule/internal/engine/workspace"
	"go.trai.ch/zerr"
)

// Options configure how rules are planned.
type Options struct {
	// OutputRoot is the directory generated artifacts are declared under.
	OutputRoot string
	// Bundler is the one-shot bundler executable.
	Bundler string
	// Worker is the persistent worker executable used by rules that support workers.
	Worker string
	// Stamp is the global stamping setting that auto stamp rules follow.
	Stamp bool
	// StableStatusFile and VolatileStatusFile are the build metadata files used when stamping.
	StableStatusFile   string
	VolatileStatusFile string
	// CompilationMode is passed to the bundler unmodified.
	CompilationMode string
}

func (o Options) compilationMode() string {
	if o.CompilationMode == "" {
		return domain.DefaultCompilationMode
	}
	return o.CompilationMode
}

func (o Options) stableStatus() domain.SourceFile {
	if o.StableStatusFile == "" {
		return domain.NewSourceFile(domain.DefaultStableStatusFile)
	}
	return domain.NewSourceFile(o.StableStatusFile)
}

func (o Options) volatileStatus() domain.SourceFile {
	if o.VolatileStatusFile == "" {
		return domain.NewSourceFile(domain.DefaultVolatileStatusFile)
	}
	return domain.NewSourceFile(o.VolatileStatusFile)
}

// Planner plans bundle rules.
type Planner struct {
	materializer ports.ConfigMaterializer
	tracer       ports.Tracer
	opts         Options
}

// New creates a Planner.
func New(materializer ports.ConfigMaterializer, tracer ports.Tracer, opts Options) *Planner {
	if opts.OutputRoot == "" {
		opts.OutputRoot = domain.DefaultOutputRoot
	}
	return &Planner{
		materializer: materializer,
		tracer:       tracer,
		opts:         opts,
	}
}

// Plan plans the bundle rule at l, along with any bundle rules it consumes.
func (p *Planner) Plan(ctx context.Context, ws *workspace.Workspace, l domain.Label) (*domain.InvocationDescriptor, error) {
	s := p.newSession(ws)
	return s.plan(ctx, l)
}

// PlanAll plans every rule in labels and the bundle rules they transitively consume.
// The returned graph is validated.
func (p *Planner) PlanAll(ctx context.Context, ws *workspace.Workspace, labels []domain.Label) (*domain.ActionGraph, error) {
	ctx, span := p.tracer.Start(ctx, "plan")
	defer span.End()
	span.SetAttribute("targets", len(labels))

	s := p.newSession(ws)
	for _, l := range labels {
		if _, err := s.plan(ctx, l); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	if err := s.graph.Validate(); err != nil {
		span.RecordError(err)
		return nil, domain.ConfigError(err)
	}
	return s.graph, nil
}

// session holds the state of one planning request.
type session struct {
	p       *Planner
	ws      *workspace.Workspace
	graph   *domain.ActionGraph
	planned map[domain.Label]*domain.InvocationDescriptor
	targets map[domain.Label]resolvedTarget
	stack   []domain.Label
}

// resolvedTarget is a dependency's providers and the bundle rules reachable through it.
type resolvedTarget struct {
	info    domain.ModuleInfo
	bundles []domain.Label
}

func (p *Planner) newSession(ws *workspace.Workspace) *session {
	return &session{
		p:       p,
		ws:      ws,
		graph:   domain.NewActionGraph(),
		planned: make(map[domain.Label]*domain.InvocationDescriptor),
		targets: make(map[domain.Label]resolvedTarget),
	}
}

func (s *session) plan(ctx context.Context, l domain.Label) (*domain.InvocationDescriptor, error) {
	if d, ok := s.planned[l]; ok {
		return d, nil
	}

	leave, err := s.enter(l)
	if err != nil {
		return nil, err
	}
	defer leave()

	rule, err := s.ws.Rule(l)
	if err != nil {
		return nil, domain.ConfigError(err)
	}

	ctx, span := s.p.tracer.Start(ctx, "plan "+l.String())
	defer span.End()

	d, err := s.planRule(ctx, rule)
	if err != nil {
		span.RecordError(err)
		return nil, domain.Annotate(err, "rule", l.String())
	}
	span.SetAttribute("transport", d.Transport.String())
	span.SetAttribute("outputs", len(d.Outputs))

	s.planned[l] = d
	if err := s.graph.AddAction(d); err != nil {
		return nil, err
	}
	return d, nil
}

// enter pushes l onto the resolution stack, failing when l is already being resolved.
func (s *session) enter(l domain.Label) (func(), error) {
	for i, visiting := range s.stack {
		if visiting == l {
			return nil, domain.ConfigError(cycleError(s.stack[i:], l))
		}
	}
	s.stack = append(s.stack, l)
	return func() { s.stack = s.stack[:len(s.stack)-1] }, nil
}

func (s *session) planRule(ctx context.Context, rule *domain.Rule) (*domain.InvocationDescriptor, error) {
	edges := newLabelSet()
	spec := rule.EntryPointSpec()

	// Entry point files are inputs too, but only their javascript files.
	filesOf := make(map[domain.Label][]domain.SourceFile)
	var direct []domain.SourceFile
	for _, ref := range spec.Refs() {
		files, err := s.files(ctx, ref, edges)
		if err != nil {
			return nil, err
		}
		filesOf[ref] = files
		direct = append(direct, domain.FilterJS(files)...)
	}

	for _, src := range rule.Srcs {
		files, err := s.files(ctx, src, edges)
		if err != nil {
			return nil, err
		}
		direct = append(direct, files...)
	}

	deps := make([]domain.Dependency, 0, len(rule.Deps))
	for _, dep := range rule.Deps {
		info, err := s.providers(ctx, dep, edges)
		if err != nil {
			return nil, err
		}
		deps = append(deps, domain.Dependency{Label: dep, Providers: info})
	}

	inputs := Aggregate(direct, deps)

	entries, err := ResolveEntryPoints(spec, rule.Label.Name, filesOf, inputs)
	if err != nil {
		return nil, err
	}

	outputs, err := PlanOutputs(entries, rule.OutputDir, rule.Sourcemap, s.p.opts.OutputRoot, rule.Label)
	if err != nil {
		return nil, err
	}

	var template *domain.SourceFile
	if rule.ConfigFile != nil {
		files, err := s.files(ctx, *rule.ConfigFile, edges)
		if err != nil {
			return nil, err
		}
		if len(files) != 1 {
			err := zerr.With(domain.ErrInvalidAttribute, "attribute", "config_file")
			return nil, domain.ConfigError(zerr.With(err, "count", len(files)))
		}
		template = &files[0]
	}

	stamp := rule.Stamp.Resolve(s.p.opts.Stamp)
	req := configRequest(s.ws.Root(), rule, template, stamp, s.p.opts)

	d, err := BuildInvocation(InvocationRequest{
		Rule:        rule,
		EntryPoints: entries,
		Inputs:      inputs,
		Outputs:     outputs,
		Config:      req.Output,
		Stamp:       stamp,
		DependsOn:   edges.labels,
	}, s.p.opts)
	if err != nil {
		return nil, err
	}

	if err := s.p.materializer.Materialize(ctx, req); err != nil {
		return nil, err
	}
	return d, nil
}

// files returns the files a label provides, as a rule attribute listing it would see them.
func (s *session) files(ctx context.Context, l domain.Label, edges *labelSet) ([]domain.SourceFile, error) {
	info, err := s.providers(ctx, l, edges)
	if err != nil {
		return nil, err
	}
	return info.Files(domain.DefaultFiles), nil
}

// providers resolves l to the provider shapes it exposes.
func (s *session) providers(ctx context.Context, l domain.Label, edges *labelSet) (domain.ModuleInfo, error) {
	if t, ok := s.targets[l]; ok {
		edges.add(t.bundles...)
		return t.info, nil
	}

	node, err := s.ws.Lookup(l)
	if err != nil {
		return domain.ModuleInfo{}, domain.ConfigError(err)
	}

	var resolved resolvedTarget
	switch node.Kind {
	case workspace.NodeFile:
		resolved.info = domain.NewModuleInfo().With(domain.DefaultFiles, []domain.SourceFile{node.File})
	case workspace.NodeRule:
		d, err := s.plan(ctx, l)
		if err != nil {
			return domain.ModuleInfo{}, err
		}
		resolved = resolvedTarget{info: d.Provides, bundles: []domain.Label{l}}
	case workspace.NodeTarget:
		leave, err := s.enter(l)
		if err != nil {
			return domain.ModuleInfo{}, err
		}
		resolved, err = s.targetProviders(ctx, node.Target)
		leave()
		if err != nil {
			return domain.ModuleInfo{}, err
		}
	}

	s.targets[l] = resolved
	edges.add(resolved.bundles...)
	return resolved.info, nil
}

func (s *session) targetProviders(ctx context.Context, t *domain.Target) (resolvedTarget, error) {
	edges := newLabelSet()
	collect := func(labels []domain.Label, shapes ...domain.ProviderShape) (map[domain.ProviderShape][]domain.SourceFile, error) {
		out := make(map[domain.ProviderShape][]domain.SourceFile, len(shapes))
		for _, l := range labels {
			info, err := s.providers(ctx, l, edges)
			if err != nil {
				return nil, err
			}
			for _, shape := range shapes {
				out[shape] = append(out[shape], info.Files(shape)...)
			}
		}
		return out, nil
	}

	info := domain.NewModuleInfo()
	switch t.Kind {
	case domain.KindJSLibrary:
		srcs, err := collect(t.Srcs, domain.DefaultFiles)
		if err != nil {
			return resolvedTarget{}, err
		}
		esm, err := collect(t.ESMSrcs, domain.DefaultFiles)
		if err != nil {
			return resolvedTarget{}, err
		}
		deps, err := collect(t.Deps, domain.ModuleSources, domain.ESModuleSources, domain.DefaultFiles)
		if err != nil {
			return resolvedTarget{}, err
		}

		modules := newFileSet()
		modules.add(srcs[domain.DefaultFiles]...)
		modules.add(deps[domain.ModuleSources]...)
		info = info.With(domain.ModuleSources, modules.files)

		if len(esm[domain.DefaultFiles]) > 0 || len(deps[domain.ESModuleSources]) > 0 {
			es := newFileSet()
			es.add(esm[domain.DefaultFiles]...)
			es.add(deps[domain.ESModuleSources]...)
			info = info.With(domain.ESModuleSources, es.files)
		}

		all := newFileSet()
		all.add(srcs[domain.DefaultFiles]...)
		all.add(esm[domain.DefaultFiles]...)
		all.add(deps[domain.DefaultFiles]...)
		info = info.With(domain.DefaultFiles, all.files)

	case domain.KindFilegroup:
		srcs, err := collect(append(append([]domain.Label(nil), t.Srcs...), t.Deps...), domain.DefaultFiles)
		if err != nil {
			return resolvedTarget{}, err
		}
		files := newFileSet()
		files.add(srcs[domain.DefaultFiles]...)
		info = info.With(domain.DefaultFiles, files.files)

	case domain.KindNpmPackage:
		srcs, err := collect(t.Srcs, domain.DefaultFiles)
		if err != nil {
			return resolvedTarget{}, err
		}
		files := newFileSet()
		files.add(srcs[domain.DefaultFiles]...)
		info = info.
			With(domain.ExternalPackageSources, files.files).
			With(domain.DefaultFiles, files.files)
	}

	return resolvedTarget{info: info, bundles: edges.labels}, nil
}

func cycleError(path []domain.Label, back domain.Label) error {
	parts := make([]string, 0, len(path)+1)
	for _, l := range path {
		parts = append(parts, l.String())
	}
	parts = append(parts, back.String())
	return zerr.With(domain.ErrCycleDetected, "cycle", strings.Join(parts, " -> "))
}

// labelSet is an insertion-ordered set of labels.
type labelSet struct {
	seen   map[domain.Label]struct{}
	labels []domain.Label
}

func newLabelSet() *labelSet {
	return &labelSet{seen: make(map[domain.Label]struct{})}
}

func (s *labelSet) add(labels ...domain.Label) {
	for _, l := range labels {
		if _, ok := s.seen[l]; ok {
			continue
		}
		s.seen[l] = struct{}{}
		s.labels = append(s.labels, l)
	}
}
