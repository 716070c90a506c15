// Package equi implements the EQUI scheduling policy: a flat
// equipartitioning of servers across the currently live job set.
package equi

import (
	"github.com/perf-analysis/pkg/apperrors"
	"github.com/perf-analysis/pkg/utils"
)

// Allocation pairs a job id with its current server share.
type Allocation struct {
	ID    int64
	Share float64
}

// Policy maintains an insertion-ordered set of jobs and splits a fixed
// server budget evenly across them.
type Policy struct {
	servers int
	partial bool
	order   []int64
	index   map[int64]int // id -> position in order
	logger  utils.Logger
}

// New creates an EQUI policy over servers servers. When partial is true,
// Allocation returns servers/n for every job; otherwise it distributes the
// integer remainder to the first (servers mod n) jobs by insertion order.
func New(servers int, partial bool, logger utils.Logger) *Policy {
	if logger == nil {
		logger = utils.GetGlobalLogger()
	}
	return &Policy{
		servers: servers,
		partial: partial,
		order:   make([]int64, 0),
		index:   make(map[int64]int),
		logger:  logger,
	}
}

// Insert appends id to the job set. Re-inserting an existing id is a
// soft no-op error.
func (p *Policy) Insert(id int64) error {
	if _, exists := p.index[id]; exists {
		err := apperrors.Wrap(apperrors.CodeDuplicateJob, "EQUI: job already present", nil)
		p.logger.Error("%v (id=%d)", err, id)
		return err
	}
	p.index[id] = len(p.order)
	p.order = append(p.order, id)
	return nil
}

// Delete removes id from the job set. Deleting an absent id is a soft
// no-op error.
func (p *Policy) Delete(id int64) error {
	pos, exists := p.index[id]
	if !exists {
		err := apperrors.Wrap(apperrors.CodeMissingJob, "EQUI: job not present", nil)
		p.logger.Error("%v (id=%d)", err, id)
		return err
	}

	p.order = append(p.order[:pos], p.order[pos+1:]...)
	delete(p.index, id)
	for i := pos; i < len(p.order); i++ {
		p.index[p.order[i]] = i
	}
	return nil
}

// JobCount returns the number of live jobs.
func (p *Policy) JobCount() int { return len(p.order) }

// ServerCount returns the configured server budget.
func (p *Policy) ServerCount() int { return p.servers }

// Allocation returns id's current server share, or 0 with a soft error if
// id is absent or the job set is empty.
func (p *Policy) Allocation(id int64) (float64, error) {
	n := len(p.order)
	if n == 0 {
		return 0, apperrors.New(apperrors.CodeMissingJob, "EQUI: no live jobs")
	}
	pos, exists := p.index[id]
	if !exists {
		err := apperrors.New(apperrors.CodeMissingJob, "EQUI: job not present")
		p.logger.Error("%v (id=%d)", err, id)
		return 0, err
	}

	if p.partial {
		return float64(p.servers) / float64(n), nil
	}

	base := p.servers / n
	remainder := p.servers % n
	if pos < remainder {
		return float64(base + 1), nil
	}
	return float64(base), nil
}

// AllAllocations returns every live job's current allocation, in
// insertion order.
func (p *Policy) AllAllocations() []Allocation {
	n := len(p.order)
	out := make([]Allocation, 0, n)
	if n == 0 {
		return out
	}

	if p.partial {
		share := float64(p.servers) / float64(n)
		for _, id := range p.order {
			out = append(out, Allocation{ID: id, Share: share})
		}
		return out
	}

	base := p.servers / n
	remainder := p.servers % n
	for i, id := range p.order {
		share := float64(base)
		if i < remainder {
			share = float64(base + 1)
		}
		out = append(out, Allocation{ID: id, Share: share})
	}
	return out
}
