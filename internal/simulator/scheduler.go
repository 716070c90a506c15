package simulator

import (
	"github.com/perf-analysis/internal/scheduler/equi"
	"github.com/perf-analysis/internal/scheduler/rcgreedy"
	"github.com/perf-analysis/pkg/collections"
	"github.com/perf-analysis/pkg/utils"
)

// allocationPool amortizes the per-event Changes() slice across a
// trial's whole event loop instead of allocating one per ARRIVAL or
// COMPLETION.
var allocationPool = collections.NewSlicePool[Allocation](64)

// Allocation pairs a job id with its current server share. It mirrors
// the shape both scheduler packages already use; this copy lets the
// simulator stay decoupled from either package's own Allocation type.
type Allocation struct {
	ID    int64
	Share float64
}

// scheduler is the minimal surface the simulator's event loop needs from
// either policy. Insert/Delete take p even though EQUI ignores it, so
// the simulator's ARRIVAL/COMPLETION handlers don't need a type switch.
type scheduler interface {
	Insert(id int64, p float64) error
	Delete(id int64) error
	FullRealloc()
	// Changes returns every (job, new allocation) pair affected by the
	// most recent Insert, Delete, or FullRealloc call: the full job set
	// for EQUI, or the delta since the last operation for RCGREEDY.
	Changes() []Allocation
}

// equiScheduler adapts equi.Policy to the scheduler interface. EQUI's
// flat split means every operation potentially changes every job's
// share, so Changes always reports the whole live set.
type equiScheduler struct {
	policy *equi.Policy
	buf    *[]Allocation
}

func newEquiScheduler(servers int, partial bool, logger utils.Logger) *equiScheduler {
	return &equiScheduler{policy: equi.New(servers, partial, logger), buf: allocationPool.Get()}
}

func (s *equiScheduler) Insert(id int64, _ float64) error { return s.policy.Insert(id) }
func (s *equiScheduler) Delete(id int64) error            { return s.policy.Delete(id) }
func (s *equiScheduler) FullRealloc()                     {}

func (s *equiScheduler) Changes() []Allocation {
	all := s.policy.AllAllocations()
	*s.buf = (*s.buf)[:0]
	for _, a := range all {
		*s.buf = append(*s.buf, Allocation{ID: a.ID, Share: a.Share})
	}
	return *s.buf
}

// rcgreedyScheduler adapts rcgreedy.Policy to the scheduler interface.
// Every Insert/Delete forces a local reallocation (the simulator decides
// separately, via its full-realloc-period counter, when to escalate to a
// full realloc instead).
type rcgreedyScheduler struct {
	policy *rcgreedy.Policy
	raw    []rcgreedy.Allocation
	buf    *[]Allocation
}

func newRCGreedyScheduler(servers, depth int, meanSize float64, partial bool, logger utils.Logger) *rcgreedyScheduler {
	return &rcgreedyScheduler{policy: rcgreedy.New(servers, depth, meanSize, partial, logger), buf: allocationPool.Get()}
}

func (s *rcgreedyScheduler) Insert(id int64, p float64) error { return s.policy.Add(id, p, true) }
func (s *rcgreedyScheduler) Delete(id int64) error            { return s.policy.Delete(id, true) }
func (s *rcgreedyScheduler) FullRealloc()                     { s.policy.FullRealloc() }

func (s *rcgreedyScheduler) Changes() []Allocation {
	s.raw = s.policy.Changes()
	*s.buf = (*s.buf)[:0]
	for _, a := range s.raw {
		*s.buf = append(*s.buf, Allocation{ID: a.ID, Share: a.Share})
	}
	return *s.buf
}
