// Package rcgreedy implements the RCGREEDY hierarchical scheduling
// policy: jobs are grouped by their Amdahl speedup parameter p into the
// leaves of a fixed-depth binary tree, and servers are allocated top-down
// by recursively solving a two-way split maximization at each internal
// node.
//
// The tree is array-backed rather than keyed by bit-string path (see
// Design Notes in the specification this package implements): node 1 is
// the root, node i's children are 2i and 2i+1, and the tree has
// 2^(depth+1)-1 nodes total.
package rcgreedy

import (
	"math"
	"sort"

	"github.com/perf-analysis/pkg/apperrors"
	"github.com/perf-analysis/pkg/speedup"
	"github.com/perf-analysis/pkg/utils"
)

// Epsilon is the floating-point tolerance used throughout the split
// maximization and the tie-break rule.
const Epsilon = 1e-6

// MaxDepth is the deepest tree this policy will build; depth is clamped
// to [0, MaxDepth] at construction.
const MaxDepth = 10

// Allocation pairs a job id with its current server share.
type Allocation struct {
	ID    int64
	Share float64
}

// group is one node of the complete binary tree.
type group struct {
	jobCount    int
	totalP      float64
	allocated   float64
	updateCount uint64
}

// jobInfo is what the policy remembers about a live job.
type jobInfo struct {
	p    float64
	leaf int // array index of the job's leaf node
}

// Policy is the RCGREEDY scheduler.
type Policy struct {
	servers    int
	depth      int
	partial    bool
	kappa      float64 // maximization constant = 1/mean_size
	generation uint64

	groups  []group            // 1-indexed; groups[0] unused
	members map[int]map[int64]struct{} // leaf index -> member ids
	jobs    map[int64]jobInfo

	// history is the changes buffer: the allocations recorded by the most
	// recent Add, Delete, or FullRealloc, returned by Changes.
	history []Allocation

	logger utils.Logger
}

// New constructs an RCGREEDY policy over servers servers, a tree of the
// given depth (clamped to [0, MaxDepth]), and meanSize the expected job
// size (used to compute the maximization constant kappa = 1/meanSize).
func New(servers, depth int, meanSize float64, partial bool, logger utils.Logger) *Policy {
	if depth < 0 {
		depth = 0
	}
	if depth > MaxDepth {
		depth = MaxDepth
	}
	if meanSize <= 0 {
		meanSize = 1
	}
	if logger == nil {
		logger = utils.GetGlobalLogger()
	}

	numNodes := 1<<(depth+1) - 1
	p := &Policy{
		servers: servers,
		depth:   depth,
		partial: partial,
		kappa:   1.0 / meanSize,
		groups:  make([]group, numNodes+1),
		members: make(map[int]map[int64]struct{}),
		jobs:    make(map[int64]jobInfo),
		history: make([]Allocation, 0),
		logger:  logger,
	}
	p.groups[1].allocated = float64(servers)
	return p
}

func (p *Policy) isLeaf(node int) bool {
	return node >= 1<<p.depth
}

func (p *Policy) left(node int) int  { return node * 2 }
func (p *Policy) right(node int) int { return node*2 + 1 }

// leafFor computes the deterministic bisection path for p, returning the
// array index of the depth-D leaf its interval contains.
func (p *Policy) leafFor(val float64) int {
	node := 1
	lo, hi := 0.0, 1.0
	for d := 0; d < p.depth; d++ {
		mid := (lo + hi) / 2
		if val >= mid {
			node = p.right(node)
			lo = mid
		} else {
			node = p.left(node)
			hi = mid
		}
	}
	return node
}

// Add inserts job id with speedup parameter jobP. If forceLocal is true
// and the job's leaf currently has no live server budget, a partial
// reallocation is forced starting at the deepest fresh node on the job's
// path that does have budget (the spec's "last_servered" node).
func (p *Policy) Add(id int64, jobP float64, forceLocal bool) error {
	if _, exists := p.jobs[id]; exists {
		err := apperrors.Wrap(apperrors.CodeDuplicateJob, "RCGREEDY: job already present", nil)
		p.logger.Error("%v (id=%d)", err, id)
		return err
	}

	leaf := p.leafFor(jobP)
	p.jobs[id] = jobInfo{p: jobP, leaf: leaf}
	if p.members[leaf] == nil {
		p.members[leaf] = make(map[int64]struct{})
	}
	p.members[leaf][id] = struct{}{}

	currentUpdate := p.groups[1].updateCount
	lastServered := 0
	node := 1
	for {
		g := &p.groups[node]
		if g.updateCount >= currentUpdate {
			currentUpdate = g.updateCount
			if g.allocated > 0 {
				lastServered = node
			}
		} else {
			g.updateCount = currentUpdate
			g.allocated = 0
		}
		g.jobCount++
		g.totalP += jobP

		if node == leaf {
			break
		}
		// descend toward the leaf along the bisection path
		node = p.nextOnPathTo(node, leaf)
	}

	if forceLocal && leaf != lastServered {
		p.generation++
		p.clearHistory()
		if lastServered != 0 {
			p.partialRealloc(lastServered)
		}
	} else {
		p.clearHistory()
		p.recordLeafMembers(leaf)
	}
	return nil
}

// nextOnPathTo returns the child of node that lies on the path to
// descendant leaf. Both node and leaf must be array indices in the same
// subtree with node an ancestor of (or equal to) leaf.
func (p *Policy) nextOnPathTo(node, leaf int) int {
	// Walk leaf's ancestors up until we find the one whose parent is node.
	cur := leaf
	for cur > node {
		parent := cur / 2
		if parent == node {
			return cur
		}
		cur = parent
	}
	return leaf
}

// Delete removes job id. If forceLocal is true and the job was the sole
// occupant of its leaf, the leaf's server budget is drained up the chain
// of now-empty ancestors and delivered to the surviving sibling subtree,
// per the "drain only the empty chain" resolution of the spec's Open
// Question.
func (p *Policy) Delete(id int64, forceLocal bool) error {
	info, exists := p.jobs[id]
	if !exists {
		err := apperrors.Wrap(apperrors.CodeMissingJob, "RCGREEDY: job not present", nil)
		p.logger.Error("%v (id=%d)", err, id)
		return err
	}

	leaf := info.leaf
	delete(p.members[leaf], id)
	delete(p.jobs, id)

	local := forceLocal && p.groups[leaf].jobCount == 1
	var reallocServers float64
	if local {
		reallocServers = p.groups[leaf].allocated
	}

	// Walk leaf up to root decrementing counts. The drained budget stays
	// put until findDrainTarget below decides where it should land.
	node := leaf
	for {
		g := &p.groups[node]
		g.jobCount--
		g.totalP -= info.p
		if node == 1 {
			break
		}
		node /= 2
	}

	if local {
		p.groups[leaf].allocated -= reallocServers
		drainTarget := p.findDrainTarget(leaf)
		p.groups[drainTarget].allocated += reallocServers
		p.generation++
		p.clearHistory()
		p.partialRealloc(drainTarget)
	} else {
		p.clearHistory()
		p.recordLeafMembers(leaf)
	}
	return nil
}

// sibling returns node's sibling under their shared parent.
func (p *Policy) sibling(node int) int {
	if node%2 == 0 {
		return node + 1
	}
	return node - 1
}

// findDrainTarget walks from leaf toward the root looking for the
// lowest ancestor whose job count is still positive after the deletion,
// then returns that ancestor's empty child's sibling (the subtree that
// should receive the drained budget).
func (p *Policy) findDrainTarget(leaf int) int {
	node := leaf
	for node != 1 {
		parent := node / 2
		if p.groups[parent].jobCount > 0 {
			// one of parent's two children is now empty (node's branch,
			// unless node itself still has jobs — walk to find which).
			if p.groups[node].jobCount == 0 {
				return p.sibling(node)
			}
			return node
		}
		node = parent
	}
	return 1
}

// partialRealloc performs the top-down optimal-split reallocation
// starting at node, whose allocated budget is taken as authoritative.
func (p *Policy) partialRealloc(node int) {
	g := &p.groups[node]
	g.updateCount = p.generation
	if g.jobCount == 0 {
		return
	}
	if p.isLeaf(node) {
		p.recordLeafMembers(node)
		return
	}

	l, r := p.left(node), p.right(node)
	lg, rg := &p.groups[l], &p.groups[r]

	if lg.jobCount == 0 {
		rg.allocated = g.allocated
		lg.allocated = 0
		lg.updateCount = p.generation
		rg.updateCount = p.generation
		p.partialRealloc(r)
		return
	}
	if rg.jobCount == 0 {
		lg.allocated = g.allocated
		rg.allocated = 0
		lg.updateCount = p.generation
		rg.updateCount = p.generation
		p.partialRealloc(l)
		return
	}

	pL := lg.totalP / float64(lg.jobCount)
	pR := rg.totalP / float64(rg.jobCount)
	a := optimalSplit(pL, lg.jobCount, pR, rg.jobCount, g.allocated, p.kappa)
	lg.allocated = a
	rg.allocated = g.allocated - a

	p.partialRealloc(l)
	p.partialRealloc(r)
}

// optimalSplit performs the exhaustive integer search over a in [0, T]
// maximizing
//
//	nL*kappa*s(pL, a/nL) + nR*kappa*s(pR, (T-a)/nR)
//
// preferring the larger a on (near-)ties, per the spec's tie-break rule.
func optimalSplit(pL float64, nL int, pR float64, nR int, total float64, kappa float64) float64 {
	T := int(math.Round(total))
	constL := float64(nL) * kappa
	constR := float64(nR) * kappa

	best := 0.0
	maxValue := 0.0
	for a := 0; a <= T; a++ {
		cur := constL*speedup.Factor(pL, float64(a)/float64(nL)) +
			constR*speedup.Factor(pR, float64(T-a)/float64(nR))
		if maxValue-cur < Epsilon {
			best = float64(a)
			maxValue = cur
		}
	}
	return best
}

// FullRealloc performs a top-down reallocation from the root, clearing
// and repopulating the changes history with every live job.
func (p *Policy) FullRealloc() {
	p.generation++
	p.clearHistory()
	if len(p.jobs) == 0 {
		return
	}
	p.partialRealloc(1)
}

// clearHistory resets the changes-history buffer; callers append to it
// immediately after.
func (p *Policy) clearHistory() {
	p.history = p.history[:0]
}

// recordLeafMembers appends the current allocation of every member of
// leaf to the changes history, applying the within-leaf EQUI split.
func (p *Policy) recordLeafMembers(leaf int) {
	members := p.members[leaf]
	if len(members) == 0 {
		return
	}
	ids := make([]int64, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	budget := p.groups[leaf].allocated
	n := len(ids)

	if p.partial {
		share := budget / float64(n)
		for _, id := range ids {
			p.history = append(p.history, Allocation{ID: id, Share: share})
		}
		return
	}

	total := int(math.Round(budget))
	base := total / n
	remainder := total % n
	for i, id := range ids {
		share := float64(base)
		if i < remainder {
			share = float64(base + 1)
		}
		p.history = append(p.history, Allocation{ID: id, Share: share})
	}
}

// ServerCount returns job id's current allocation, or 0 with a soft
// error if the job is absent.
func (p *Policy) ServerCount(id int64) (float64, error) {
	info, exists := p.jobs[id]
	if !exists {
		err := apperrors.New(apperrors.CodeMissingJob, "RCGREEDY: job not present")
		p.logger.Error("%v (id=%d)", err, id)
		return 0, err
	}

	members := p.members[info.leaf]
	if len(members) == 1 {
		return p.groups[info.leaf].allocated, nil
	}

	ids := make([]int64, 0, len(members))
	for mid := range members {
		ids = append(ids, mid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	budget := p.groups[info.leaf].allocated
	n := len(ids)
	if p.partial {
		return budget / float64(n), nil
	}
	total := int(math.Round(budget))
	base := total / n
	remainder := total % n
	for i, mid := range ids {
		if mid == id {
			if i < remainder {
				return float64(base + 1), nil
			}
			return float64(base), nil
		}
	}
	return float64(base), nil
}

// GroupAllocations appends every member of id's leaf (not just id
// itself) to out.
func (p *Policy) GroupAllocations(id int64, out []Allocation) []Allocation {
	info, exists := p.jobs[id]
	if !exists {
		p.logger.Error("%v (id=%d)", apperrors.New(apperrors.CodeMissingJob, "RCGREEDY: job not present"), id)
		return out
	}
	return p.leafAllocations(info.leaf, out)
}

func (p *Policy) leafAllocations(leaf int, out []Allocation) []Allocation {
	members := p.members[leaf]
	if len(members) == 0 {
		return out
	}
	ids := make([]int64, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	budget := p.groups[leaf].allocated
	n := len(ids)
	if p.partial {
		share := budget / float64(n)
		for _, id := range ids {
			out = append(out, Allocation{ID: id, Share: share})
		}
		return out
	}
	total := int(math.Round(budget))
	base := total / n
	remainder := total % n
	for i, id := range ids {
		share := float64(base)
		if i < remainder {
			share = float64(base + 1)
		}
		out = append(out, Allocation{ID: id, Share: share})
	}
	return out
}

// AllAllocations appends every live job's current allocation to out.
func (p *Policy) AllAllocations(out []Allocation) []Allocation {
	leaves := make([]int, 0, len(p.members))
	for leaf := range p.members {
		leaves = append(leaves, leaf)
	}
	sort.Ints(leaves)
	for _, leaf := range leaves {
		out = p.leafAllocations(leaf, out)
	}
	return out
}

// Changes returns the allocation changes recorded by the most recent
// Add, Delete, or FullRealloc call. Every value reported is current, not
// stale.
func (p *Policy) Changes() []Allocation {
	out := make([]Allocation, len(p.history))
	copy(out, p.history)
	return out
}

// JobCount returns the number of live jobs across the whole tree.
func (p *Policy) JobCount() int { return len(p.jobs) }
