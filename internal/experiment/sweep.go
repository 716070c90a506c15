// Package experiment implements the sweep driver spec.md §6 describes:
// for each value along one of five parameter axes, run several
// independent trials per scheduler and average the results.
package experiment

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/perf-analysis/internal/eventsource"
	"github.com/perf-analysis/internal/simulator"
	"github.com/perf-analysis/pkg/apperrors"
	"github.com/perf-analysis/pkg/parallel"
	"github.com/perf-analysis/pkg/resultswriter"
	"github.com/perf-analysis/pkg/utils"
)

// trialParams is the full set of simulator/eventsource knobs a sweep
// point can mutate; every axis changes exactly one field and leaves the
// rest at their base values.
type trialParams struct {
	servers           int
	jobSizeLambda     float64
	arrivalLambda     float64
	partialServers    bool
	fullReallocPeriod int
}

// SweepConfig bundles everything Sweep needs for one run of the driver.
type SweepConfig struct {
	Axis       Axis
	Trials     int
	Schedulers []string // e.g. {"EQUI", "R1", ..., "R9"}; defaults to all ten if empty
	NumEvents  int
	Seed       uint64
	Workers    int // worker pool size; 0 uses parallel.DefaultPoolConfig
	Logger     utils.Logger

	Base trialParams
}

// DefaultBase returns the base parameters used for every axis except the
// one actually being swept.
func DefaultBase() trialParams {
	return trialParams{
		servers:           100,
		jobSizeLambda:     1,
		arrivalLambda:     1,
		partialServers:    false,
		fullReallocPeriod: 10,
	}
}

// AllSchedulers lists every scheduler name the CSV output recognizes.
func AllSchedulers() []string {
	out := make([]string, 0, 10)
	out = append(out, "EQUI")
	for d := 1; d <= 9; d++ {
		out = append(out, fmt.Sprintf("R%d", d))
	}
	return out
}

// Validate reports configuration errors before any simulation begins,
// per spec.md §7's "The experiment driver surfaces configuration errors
// to the user before any simulation begins."
func (c SweepConfig) Validate() error {
	if c.Trials < 1 {
		return apperrors.New(apperrors.CodeInvalidConfig, "trials must be >= 1")
	}
	if c.NumEvents < 1 {
		return apperrors.New(apperrors.CodeInvalidConfig, "num events must be >= 1")
	}
	for _, name := range c.Schedulers {
		if _, _, err := parseSchedulerName(name); err != nil {
			return err
		}
	}
	return nil
}

// SweepSummary is the optional end-of-sweep JSON artifact: one object
// summarizing the whole sweep rather than a queryable store.
type SweepSummary struct {
	Axis    string              `json:"axis"`
	Trials  int                 `json:"trials"`
	Results []resultswriter.Row `json:"results"`
}

// Sweep runs cfg.Trials independent simulations per (scheduler, axis
// value) pair and returns one averaged Row per pair plus a JSON-ready
// summary of the whole run.
func Sweep(ctx context.Context, cfg SweepConfig) ([]resultswriter.Row, SweepSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, SweepSummary{}, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = utils.GetGlobalLogger()
	}
	schedulers := cfg.Schedulers
	if len(schedulers) == 0 {
		schedulers = AllSchedulers()
	}
	base := cfg.Base
	if base == (trialParams{}) {
		base = DefaultBase()
	}

	poolCfg := parallel.DefaultPoolConfig()
	if cfg.Workers > 0 {
		poolCfg = poolCfg.WithWorkers(cfg.Workers)
	}
	pool := parallel.NewWorkerPool[trialInput, simulator.Result](poolCfg)

	var rows []resultswriter.Row
	for _, pt := range points(cfg.Axis) {
		params := applyAxis(base, cfg.Axis, pt)

		for _, name := range schedulers {
			kind, depth, err := parseSchedulerName(name)
			if err != nil {
				return nil, SweepSummary{}, err
			}

			inputs := make([]trialInput, cfg.Trials)
			for i := range inputs {
				inputs[i] = trialInput{
					params: params,
					kind:   kind,
					depth:  depth,
					seed:   cfg.Seed + uint64(i)*1_000_003 + uint64(pt.value*97) + hashString(name),
					events: cfg.NumEvents,
					logger: logger,
				}
			}

			results := pool.ExecuteFunc(ctx, inputs, runTrial)

			var sumProcessing, sumReal float64
			completed := 0
			for _, r := range results {
				if r.Error != nil {
					logger.Warn("trial failed: %v", r.Error)
					continue
				}
				sumProcessing += r.Result.MeanSojournTime
				sumReal += r.Result.SchedulerWallTime
				completed++
			}
			if completed == 0 {
				continue
			}

			rows = append(rows, resultswriter.Row{
				Scheduler:             name,
				Parameter:             cfg.Axis.String(),
				Value:                 pt.display,
				AverageProcessingTime: sumProcessing / float64(completed),
				AvgRealTime:           sumReal / float64(completed),
			})
		}
	}

	summary := SweepSummary{Axis: cfg.Axis.String(), Trials: cfg.Trials, Results: rows}
	return rows, summary, nil
}

// trialInput is the unit of work the worker pool executes.
type trialInput struct {
	params trialParams
	kind   simulator.SchedulerKind
	depth  int
	seed   uint64
	events int
	logger utils.Logger
}

func runTrial(_ context.Context, in trialInput) (simulator.Result, error) {
	queue := eventsource.Generate(eventsource.Config{
		NumEvents:     in.events,
		ArrivalLambda: in.params.arrivalLambda,
		JobSizeLambda: in.params.jobSizeLambda,
		Seed:          in.seed,
	})

	sim, err := simulator.New(simulator.Config{
		Kind:              in.kind,
		Depth:             in.depth,
		Servers:           in.params.servers,
		PartialServers:    in.params.partialServers,
		FullReallocPeriod: in.params.fullReallocPeriod,
		JobSizeLambda:     in.params.jobSizeLambda,
		Logger:            in.logger,
	})
	if err != nil {
		return simulator.Result{}, err
	}

	return sim.Run(context.Background(), queue), nil
}

// applyAxis returns a copy of base with the field axis addresses set
// from pt.
func applyAxis(base trialParams, axis Axis, pt axisPoint) trialParams {
	out := base
	switch axis {
	case AxisServers:
		out.servers = int(pt.value)
	case AxisJobSizeLambda:
		out.jobSizeLambda = pt.value
	case AxisArrivalLambda:
		out.arrivalLambda = pt.value
	case AxisPartialServers:
		out.partialServers = pt.boolean
	case AxisReallocPeriod:
		out.fullReallocPeriod = int(pt.value)
	}
	return out
}

// parseSchedulerName maps "EQUI" or "R1".."R9" to a simulator kind and,
// for RCGREEDY, its tree depth.
func parseSchedulerName(name string) (simulator.SchedulerKind, int, error) {
	if name == "EQUI" {
		return simulator.EQUI, 0, nil
	}
	if strings.HasPrefix(name, "R") {
		depth, err := strconv.Atoi(strings.TrimPrefix(name, "R"))
		if err == nil && depth >= 1 && depth <= 9 {
			return simulator.RCGreedy, depth, nil
		}
	}
	return 0, 0, apperrors.New(apperrors.CodeInvalidConfig, fmt.Sprintf("unknown scheduler name %q", name))
}

// hashString is a tiny FNV-1a hash, used only to vary the trial seed per
// scheduler name so R3 and R4 don't draw identical workloads.
func hashString(s string) uint64 {
	var h uint64 = 14695981039346656037
	for _, c := range s {
		h ^= uint64(c)
		h *= 1099511628211
	}
	return h
}
