// Package eventsource generates the simulator's initial event queue: a
// Poisson arrival process, with job sizes and speedup parameters drawn
// from independent, seedable random streams.
package eventsource

import (
	"math"
	"math/rand/v2"

	"github.com/perf-analysis/internal/simulator"
)

// stream indices, used to derive three independent PCG sub-streams from
// a single seed so that redrawing one never perturbs another.
const (
	streamArrival = iota
	streamSize
	streamP
)

// Config controls one generated workload.
type Config struct {
	NumEvents     int
	ArrivalLambda float64 // inter-arrival times are Exp(ArrivalLambda)
	JobSizeLambda float64 // job sizes are Exp(JobSizeLambda)
	Seed          uint64
}

// Generate returns an EventQueue pre-seeded with cfg.NumEvents ARRIVAL
// events. Inter-arrival times are exponential with rate
// cfg.ArrivalLambda, job sizes exponential with rate cfg.JobSizeLambda,
// and each job's speedup parameter p is drawn uniformly on [0,1] — all
// three from independent streams so the same seed always reproduces the
// identical workload regardless of which streams a caller also happens
// to draw from elsewhere.
func Generate(cfg Config) *simulator.EventQueue {
	arrivalRNG := rand.New(rand.NewPCG(cfg.Seed, streamArrival))
	sizeRNG := rand.New(rand.NewPCG(cfg.Seed, streamSize))
	pRNG := rand.New(rand.NewPCG(cfg.Seed, streamP))

	queue := simulator.NewEventQueue()

	t := 0.0
	for jobID := int64(1); jobID <= int64(cfg.NumEvents); jobID++ {
		t += exponential(arrivalRNG, cfg.ArrivalLambda)
		size := exponential(sizeRNG, cfg.JobSizeLambda)
		p := pRNG.Float64()

		queue.PushEvent(simulator.Event{
			Time:  t,
			Kind:  simulator.Arrival,
			JobID: jobID,
			Size:  size,
			P:     p,
		})
	}
	return queue
}

// exponential draws a sample from Exp(lambda) using inverse-CDF
// sampling against a uniform draw from rng.
func exponential(rng *rand.Rand, lambda float64) float64 {
	u := rng.Float64()
	for u == 0 {
		u = rng.Float64()
	}
	return -math.Log(u) / lambda
}
