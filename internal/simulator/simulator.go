package simulator

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/perf-analysis/pkg/apperrors"
	"github.com/perf-analysis/pkg/speedup"
	"github.com/perf-analysis/pkg/utils"
)

var tracer = otel.Tracer("rcgreedy-sim")

// staleTolerance is the epsilon used to detect a COMPLETION event that
// was superseded by a later reschedule for the same job.
const staleTolerance = 1e-6

// SchedulerKind selects which policy a Simulator runs.
type SchedulerKind int

const (
	// EQUI is the flat equipartitioning policy.
	EQUI SchedulerKind = iota
	// RCGreedy is the hierarchical binary-tree policy; Depth must also
	// be set in Config.
	RCGreedy
)

// Config bundles every construction-time parameter for a single trial.
type Config struct {
	Kind              SchedulerKind
	Depth             int // only meaningful when Kind == RCGreedy, in [1,9]
	Servers           int
	PartialServers    bool
	FullReallocPeriod int
	JobSizeLambda     float64 // mean_size = 1/lambda, used by RCGREEDY's split objective
	Logger            utils.Logger
}

// Validate reports configuration errors per the spec's "invalid
// configuration" error taxonomy: reported at construction, never
// surfaced mid-run.
func (c Config) Validate() error {
	if c.Servers <= 1 {
		return apperrors.New(apperrors.CodeInvalidConfig, "server count must be > 1")
	}
	if c.FullReallocPeriod < 1 {
		return apperrors.New(apperrors.CodeInvalidConfig, "full realloc period must be >= 1")
	}
	if c.Kind == RCGreedy {
		if c.Depth < 0 || c.Depth > 10 {
			return apperrors.New(apperrors.CodeInvalidConfig, "RCGREEDY depth out of range [0,10]")
		}
		if c.JobSizeLambda <= 0 {
			return apperrors.New(apperrors.CodeInvalidConfig, "job size lambda must be > 0")
		}
	}
	return nil
}

// jobState is the per-job progress record the spec's
// update_job_processing operates on.
type jobState struct {
	arrivalTime        float64
	remainingSize      float64
	currentSpeedup     float64
	lastUpdateTime     float64
	expectedCompletion float64
}

// Result holds the aggregate outputs of one Run.
type Result struct {
	CompletedJobs     int
	MeanSojournTime   float64
	SchedulerWallTime float64 // seconds spent inside scheduler mutation calls
}

// Simulator owns the event queue, the scheduler instance, and every
// live job's progress state for the duration of one Run call. Nothing
// here is safe for concurrent use; the design is intentionally
// single-threaded (see the concurrency model this package implements).
type Simulator struct {
	cfg        Config
	scheduler  scheduler
	jobs       map[int64]*jobState
	jobPValues map[int64]float64

	opsSinceRealloc int
	sojournSum      float64
	completed       int

	timer *utils.Timer
}

// New validates cfg and constructs a Simulator ready to consume an
// event queue.
func New(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = utils.GetGlobalLogger()
	}

	var sched scheduler
	switch cfg.Kind {
	case EQUI:
		sched = newEquiScheduler(cfg.Servers, cfg.PartialServers, cfg.Logger)
	case RCGreedy:
		meanSize := 1.0 / cfg.JobSizeLambda
		sched = newRCGreedyScheduler(cfg.Servers, cfg.Depth, meanSize, cfg.PartialServers, cfg.Logger)
	default:
		return nil, apperrors.New(apperrors.CodeInvalidConfig, "unknown scheduler kind")
	}

	return &Simulator{
		cfg:        cfg,
		scheduler:  sched,
		jobs:       make(map[int64]*jobState),
		jobPValues: make(map[int64]float64),
		timer:      utils.NewTimer("simulator", utils.WithLogger(cfg.Logger), utils.WithEnabled(false)),
	}, nil
}

// Run drains queue, dispatching ARRIVAL and COMPLETION events until it
// is empty, and returns the aggregate result.
func (s *Simulator) Run(ctx context.Context, queue *EventQueue) Result {
	_, span := tracer.Start(ctx, "rcgreedy_sim.simulate")
	defer span.End()
	span.SetAttributes(
		attribute.Int("rcgreedy_sim.servers", s.cfg.Servers),
		attribute.Bool("rcgreedy_sim.partial_servers", s.cfg.PartialServers),
	)

	for !queue.Empty() {
		e := queue.PopEvent()
		switch e.Kind {
		case Arrival:
			s.handleArrival(queue, e)
		case Completion:
			s.handleCompletion(queue, e)
		}
	}

	result := Result{CompletedJobs: s.completed, SchedulerWallTime: s.timer.TotalDuration().Seconds()}
	if s.completed > 0 {
		result.MeanSojournTime = s.sojournSum / float64(s.completed)
	}
	span.SetAttributes(attribute.Int("rcgreedy_sim.completed_jobs", s.completed))
	return result
}

func (s *Simulator) handleArrival(queue *EventQueue, e Event) {
	s.jobs[e.JobID] = &jobState{
		arrivalTime:    e.Time,
		remainingSize:  e.Size,
		currentSpeedup: 1,
		lastUpdateTime: e.Time,
	}
	s.jobPValues[e.JobID] = e.P

	forceFull := s.opsSinceRealloc >= s.cfg.FullReallocPeriod
	s.opsSinceRealloc++

	// Per spec: when the period counter expires, the global split is
	// recomputed over the job set *excluding* the arriving job, which is
	// then placed by its own local realloc. So full_realloc runs first.
	if forceFull {
		s.timer.TimeFunc("scheduler_mutation", func() {
			s.scheduler.FullRealloc()
		})
		s.opsSinceRealloc = 0
		s.processAllocationChanges(queue, e.Time)
	}

	s.timer.TimeFunc("scheduler_mutation", func() {
		if err := s.scheduler.Insert(e.JobID, e.P); err != nil {
			s.cfg.Logger.Debug("scheduler insert soft error: %v", err)
		}
	})

	s.processAllocationChanges(queue, e.Time)
}

func (s *Simulator) handleCompletion(queue *EventQueue, e Event) {
	state, ok := s.jobs[e.JobID]
	if !ok {
		return
	}
	if diff := e.Time - state.expectedCompletion; diff > staleTolerance || diff < -staleTolerance {
		s.cfg.Logger.Debug("%v job=%d", apperrors.New(apperrors.CodeStaleEvent, "stale completion event"), e.JobID)
		return
	}

	s.sojournSum += e.Time - state.arrivalTime
	s.completed++

	forceFull := s.opsSinceRealloc >= s.cfg.FullReallocPeriod
	s.opsSinceRealloc++

	// Same ordering as handleArrival: the periodic global split is
	// computed over the job set that still includes the completing job,
	// before it is removed and its budget drained by Delete.
	if forceFull {
		s.timer.TimeFunc("scheduler_mutation", func() {
			s.scheduler.FullRealloc()
		})
		s.opsSinceRealloc = 0
		s.processAllocationChanges(queue, e.Time)
	}

	s.timer.TimeFunc("scheduler_mutation", func() {
		if err := s.scheduler.Delete(e.JobID); err != nil {
			s.cfg.Logger.Debug("scheduler delete soft error: %v", err)
		}
	})

	s.processAllocationChanges(queue, e.Time)
	delete(s.jobs, e.JobID)
	delete(s.jobPValues, e.JobID)
}

// processAllocationChanges collects the affected (job, new_servers) set
// from the scheduler and applies update_job_processing to each.
func (s *Simulator) processAllocationChanges(queue *EventQueue, t float64) {
	for _, change := range s.scheduler.Changes() {
		state, ok := s.jobs[change.ID]
		if !ok {
			continue
		}
		s.updateJobProcessing(queue, state, change.ID, t, change.Share)
	}
}

// updateJobProcessing implements the spec's update_job_processing: it
// advances remaining work to t, recomputes speedup under the new
// allocation k, and pushes a fresh COMPLETION event. The old completion
// event, if still pending, is left in the queue and rejected on pop by
// the timestamp check in handleCompletion.
func (s *Simulator) updateJobProcessing(queue *EventQueue, state *jobState, jobID int64, t, k float64) {
	state.remainingSize -= state.currentSpeedup * (t - state.lastUpdateTime)
	if state.remainingSize < 0 {
		state.remainingSize = 0
	}
	state.lastUpdateTime = t

	p := s.jobP(jobID)
	state.currentSpeedup = speedup.Factor(p, k)
	state.expectedCompletion = t + state.remainingSize/state.currentSpeedup

	queue.PushEvent(Event{Time: state.expectedCompletion, Kind: Completion, JobID: jobID})
}

// jobP looks up a job's speedup parameter for the update_job_processing
// step. EQUI doesn't track p per policy (it doesn't need it for its own
// split), so the simulator keeps its own copy alongside progress state
// for every scheduler kind.
func (s *Simulator) jobP(jobID int64) float64 {
	p, ok := s.jobPValues[jobID]
	if !ok {
		return 0
	}
	return p
}
