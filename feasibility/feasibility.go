// Package feasibility orchestrates one feasibility assessment: it fans out
// to the registered assessment providers through the event bus, assembles
// the bundle, evaluates it, and resolves the reports the decision requires.
//
// The service initializes from configuration via New, creating the bus,
// statistics aggregator, provider registry and decision engine internally.
// Functional options allow test overrides.
//
//	svc, err := feasibility.New(&cfg)
//	svc.Registry().Register(tool, handler)
//	result, err := svc.Assess(ctx, feasibility.Request{...})
package feasibility

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/feasibility/assessment"
	"github.com/tailored-agentic-units/feasibility/bus"
	"github.com/tailored-agentic-units/feasibility/decision"
	"github.com/tailored-agentic-units/feasibility/observability"
	"github.com/tailored-agentic-units/feasibility/reports"
	"github.com/tailored-agentic-units/feasibility/stats"
	"github.com/tailored-agentic-units/feasibility/tools"
)

// Request seeds one assessment, typically from a FRAGO.
type Request struct {
	OperationName  string    `json:"operation_name" yaml:"operation_name"`
	GridReference  string    `json:"grid_reference" yaml:"grid_reference"`
	StartTime      time.Time `json:"start_time" yaml:"start_time"`
	DurationHours  int       `json:"duration_hours" yaml:"duration_hours"`
	Unit           string    `json:"unit,omitempty" yaml:"unit,omitempty"`
	VehicleType    string    `json:"vehicle_type,omitempty" yaml:"vehicle_type,omitempty"`
	PersonnelCount int       `json:"personnel_count,omitempty" yaml:"personnel_count,omitempty"`
	Supplies       []string  `json:"supplies,omitempty" yaml:"supplies,omitempty"`
}

// Result holds the outcome of an assessment.
type Result struct {
	Bundle  *assessment.Bundle `json:"bundle"`
	Record  *decision.Record   `json:"record"`
	Reports []reports.Request  `json:"reports"`
}

// Option configures a Service after config-driven initialization.
type Option func(*Service)

// WithEvaluator overrides the config-created decision engine.
func WithEvaluator(e decision.Evaluator) Option {
	return func(s *Service) { s.evaluator = e }
}

// WithGenerator sets the report generator invoked when a decision requires
// reports.
func WithGenerator(g reports.Generator) Option {
	return func(s *Service) { s.generator = g }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source used to compute forecast offsets.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service runs feasibility assessments.
type Service struct {
	bus       *bus.Bus
	stats     *stats.Aggregator
	registry  *tools.Registry
	evaluator decision.Evaluator
	generator reports.Generator
	logger    *slog.Logger
	now       func() time.Time

	rates    assessment.ConsumptionRates
	supplies []string
}

// New creates a Service from configuration. The statistics aggregator is
// subscribed inline; observers named in the config are resolved from the
// observability registry and share one mailbox subscription.
func New(cfg *Config, opts ...Option) (*Service, error) {
	s := &Service{
		logger:   slog.Default(),
		now:      time.Now,
		rates:    cfg.Consumption,
		supplies: cfg.Supplies,
		stats:    stats.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.bus = bus.New(bus.WithLogger(s.logger), bus.WithMailboxSize(cfg.MailboxSize))
	if _, err := s.bus.Subscribe(s.stats, bus.Inline()); err != nil {
		return nil, fmt.Errorf("failed to subscribe statistics: %w", err)
	}

	observers, err := observability.ResolveObservers(cfg.Observers...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observers: %w", err)
	}
	if sinks := observability.NewMultiObserver(observers...); sinks.Len() > 0 {
		sinks.OnFailure = func(obs observability.Observer, e observability.Event, recovered any) {
			s.logger.Error("observer failed", "observer", fmt.Sprintf("%T", obs), "event", e.Type, "panic", recovered)
		}
		if _, err := s.bus.Subscribe(sinks); err != nil {
			return nil, fmt.Errorf("failed to subscribe observers: %w", err)
		}
	}

	s.registry = tools.NewRegistry(s.bus)

	if s.evaluator == nil {
		engine := decision.NewEngine(cfg.Policy)
		s.evaluator = engine
		if !cfg.NoCache {
			cached, err := decision.NewCachedEngine(engine, cfg.CacheSize)
			if err != nil {
				return nil, err
			}
			s.evaluator = cached
		}
	}

	return s, nil
}

// Registry returns the provider registry. Providers registered here are
// invoked through the service's bus.
func (s *Service) Registry() *tools.Registry {
	return s.registry
}

// Bus returns the execution event bus for additional subscribers.
func (s *Service) Bus() *bus.Bus {
	return s.bus
}

// Stats returns a snapshot of the session statistics.
func (s *Service) Stats() stats.Snapshot {
	return s.stats.Snapshot()
}

// ResetStats clears the session statistics.
func (s *Service) ResetStats() {
	s.stats.Reset()
}

// Close shuts down the bus, draining pending observer deliveries.
func (s *Service) Close() error {
	return s.bus.Close()
}

// Assess gathers one result from each registered provider concurrently,
// then evaluates the assembled bundle. Providers that are not registered
// leave their section absent. The first provider failure cancels the
// remaining calls and is returned unchanged.
func (s *Service) Assess(ctx context.Context, req Request) (*Result, error) {
	if req.DurationHours <= 0 {
		return nil, fmt.Errorf("%w: duration_hours must be positive, got %d", assessment.ErrInvalidInput, req.DurationHours)
	}
	if len(s.registry.List()) == 0 {
		return nil, ErrNoProviders
	}

	bundle := &assessment.Bundle{
		OperationName: req.OperationName,
		GridReference: req.GridReference,
		StartTime:     req.StartTime,
		DurationHours: req.DurationHours,
		Unit:          req.Unit,
	}

	g := &gatherer{service: s}
	group, gctx := errgroup.WithContext(ctx)

	hoursAhead := 0
	if !req.StartTime.IsZero() {
		hoursAhead = max(int(req.StartTime.Sub(s.now()).Hours()), 0)
	}

	fetch(gctx, group, g, ToolWeather, map[string]any{
		"grid_reference": req.GridReference,
		"hours_ahead":    hoursAhead,
	}, func(v assessment.Weather) { bundle.Weather = &v })

	fetch(gctx, group, g, ToolTerrain, map[string]any{
		"grid_reference": req.GridReference,
		"radius_km":      5,
	}, func(v assessment.Terrain) { bundle.Terrain = &v })

	fetch(gctx, group, g, ToolThreat, map[string]any{
		"area": req.GridReference,
	}, func(v assessment.Threat) { bundle.Threat = &v })

	fetch(gctx, group, g, ToolReadiness, map[string]any{
		"unit": req.Unit,
	}, func(v assessment.UnitReadiness) { bundle.Readiness = &v })

	if req.VehicleType != "" {
		fetch(gctx, group, g, ToolVehicle, map[string]any{
			"vehicle_type": req.VehicleType,
			"unit":         req.Unit,
		}, func(v assessment.VehicleStatus) { bundle.VehicleStatus = &v })
	}

	fetch(gctx, group, g, ToolComms, map[string]any{},
		func(v assessment.CommsStatus) { bundle.Comms = v })

	supplies := req.Supplies
	if len(supplies) == 0 {
		supplies = s.supplies
	}
	for _, class := range supplies {
		fetch(gctx, group, g, ToolSupply, map[string]any{
			"unit":        req.Unit,
			"supply_type": class,
		}, func(v assessment.SupplyLevel) {
			if bundle.SupplyLevels == nil {
				bundle.SupplyLevels = make(map[string]assessment.SupplyLevel)
			}
			bundle.SupplyLevels[class] = v
		})
	}

	if req.PersonnelCount > 0 {
		group.Go(func() error {
			projection, err := s.sustainment(gctx, req)
			if err != nil {
				return err
			}
			g.set(func() { bundle.SustainmentProjection = &projection })
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return s.Evaluate(ctx, bundle)
}

// Evaluate scores a pre-assembled bundle, resolves its report requirements,
// and hands them to the generator when one is configured.
func (s *Service) Evaluate(ctx context.Context, bundle *assessment.Bundle) (*Result, error) {
	record, err := s.evaluator.Evaluate(bundle)
	if err != nil {
		return nil, err
	}

	requests := reports.Resolve(record, bundle)

	s.logger.InfoContext(ctx, "feasibility assessed",
		"operation", bundle.OperationName,
		"decision", record.Decision,
		"score", record.Score,
		"issues", len(record.Issues),
		"reports", len(requests),
	)

	if s.generator != nil && len(requests) > 0 {
		if err := s.generator.Generate(ctx, record, bundle, requests); err != nil {
			return nil, fmt.Errorf("report generation failed: %w", err)
		}
	}

	return &Result{Bundle: bundle, Record: record, Reports: requests}, nil
}

func (s *Service) sustainment(ctx context.Context, req Request) (assessment.SustainmentProjection, error) {
	params := map[string]any{
		"unit":                  req.Unit,
		"personnel_count":       req.PersonnelCount,
		"duration_hours":        req.DurationHours,
		"mres_per_person_day":   s.rates.MREsPerPersonDay,
		"fuel_gallons_per_hour": s.rates.FuelGallonsPerHour,
	}

	var (
		out any
		err error
	)
	if s.registry.Has(ToolSustainment) {
		out, err = s.registry.Execute(ctx, ToolSustainment, params)
	} else {
		out, err = s.bus.Invoke(ctx, bus.Call{
			Tool:       ToolSustainment,
			Section:    string(assessment.SectionLogistics),
			Parameters: params,
		}, func(context.Context) (any, error) {
			return assessment.CalculateSustainment(req.PersonnelCount, req.DurationHours, s.rates)
		})
	}
	if err != nil {
		return assessment.SustainmentProjection{}, err
	}

	projection, err := assessment.Decode[assessment.SustainmentProjection](out)
	if err != nil {
		return assessment.SustainmentProjection{}, fmt.Errorf("%s: %w", ToolSustainment, err)
	}
	return projection, nil
}

// gatherer serializes writes into the bundle from concurrent fetches.
type gatherer struct {
	service *Service
	mu      sync.Mutex
}

func (g *gatherer) set(assign func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	assign()
}

// fetch schedules one provider call when the provider is registered and
// decodes its result into T before assigning it.
func fetch[T any](ctx context.Context, group *errgroup.Group, g *gatherer, tool string, params map[string]any, assign func(T)) {
	s := g.service
	if !s.registry.Has(tool) {
		s.logger.DebugContext(ctx, "provider not registered, section omitted", "tool", tool)
		return
	}

	group.Go(func() error {
		out, err := s.registry.Execute(ctx, tool, params)
		if err != nil {
			return err
		}
		v, err := assessment.Decode[T](out)
		if err != nil {
			return fmt.Errorf("%s: %w", tool, err)
		}
		g.set(func() { assign(v) })
		return nil
	})
}
