package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/perf-analysis/internal/scheduler/equi"
	"github.com/perf-analysis/internal/scheduler/rcgreedy"
	"github.com/perf-analysis/pkg/speedup"
)

// testCmd runs the in-process property checks from spec §8 as a smoke
// harness, printing pass/fail per property rather than shelling out to
// `go test`.
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the built-in scheduling-property checks",
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

type propertyCheck struct {
	name string
	run  func() error
}

func runTest(cmd *cobra.Command, args []string) error {
	checks := []propertyCheck{
		{"EQUI conservation", checkEquiConservation},
		{"EQUI fairness", checkEquiFairness},
		{"RCGREEDY conservation", checkRCGreedyConservation},
		{"RCGREEDY order-independence", checkRCGreedyOrderIndependence},
		{"Speedup monotonicity", checkSpeedupMonotonicity},
	}

	failures := 0
	for _, c := range checks {
		if err := c.run(); err != nil {
			fmt.Printf("FAIL  %s: %v\n", c.name, err)
			failures++
			continue
		}
		fmt.Printf("PASS  %s\n", c.name)
	}

	if failures > 0 {
		os.Exit(1)
	}
	return nil
}

func checkEquiConservation() error {
	p := equi.New(17, false, nil)
	for i := int64(0); i < 7; i++ {
		if err := p.Insert(i); err != nil {
			return err
		}
	}
	sum := 0.0
	for _, a := range p.AllAllocations() {
		sum += a.Share
	}
	if sum != 17 {
		return fmt.Errorf("expected sum 17, got %v", sum)
	}
	return nil
}

func checkEquiFairness() error {
	p := equi.New(13, false, nil)
	for i := int64(1); i <= 5; i++ {
		if err := p.Insert(i); err != nil {
			return err
		}
	}
	all := p.AllAllocations()
	maxShare, minShare := all[0].Share, all[0].Share
	for _, a := range all {
		if a.Share > maxShare {
			maxShare = a.Share
		}
		if a.Share < minShare {
			minShare = a.Share
		}
	}
	if maxShare-minShare > 1.0 {
		return fmt.Errorf("max-min spread %v exceeds 1", maxShare-minShare)
	}
	return nil
}

func checkRCGreedyConservation() error {
	p := rcgreedy.New(8, 3, 2, false, nil)
	jobs := []struct {
		id int64
		pv float64
	}{{1, 0.3}, {2, 0.6}, {3, 0.8}}
	for _, j := range jobs {
		if err := p.Add(j.id, j.pv, false); err != nil {
			return err
		}
	}
	p.FullRealloc()

	var out []rcgreedy.Allocation
	out = p.AllAllocations(out)
	sum := 0.0
	for _, a := range out {
		sum += a.Share
	}
	if diff := sum - 8; diff > 1e-6 || diff < -1e-6 {
		return fmt.Errorf("expected sum 8, got %v", sum)
	}
	return nil
}

func checkRCGreedyOrderIndependence() error {
	jobs := []struct {
		id int64
		pv float64
	}{{1, 0.3}, {2, 0.6}, {3, 0.8}}

	forward := rcgreedy.New(10, 3, 2, false, nil)
	for _, j := range jobs {
		if err := forward.Add(j.id, j.pv, false); err != nil {
			return err
		}
	}
	forward.FullRealloc()

	reverse := rcgreedy.New(10, 3, 2, false, nil)
	for i := len(jobs) - 1; i >= 0; i-- {
		if err := reverse.Add(jobs[i].id, jobs[i].pv, false); err != nil {
			return err
		}
	}
	reverse.FullRealloc()

	var fwd, rev []rcgreedy.Allocation
	fwd = forward.AllAllocations(fwd)
	rev = reverse.AllAllocations(rev)

	sortAllocations(fwd)
	sortAllocations(rev)

	if len(fwd) != len(rev) {
		return fmt.Errorf("allocation set sizes differ: %d vs %d", len(fwd), len(rev))
	}
	for i := range fwd {
		if fwd[i] != rev[i] {
			return fmt.Errorf("allocation sets differ at index %d: %v vs %v", i, fwd[i], rev[i])
		}
	}
	return nil
}

func sortAllocations(a []rcgreedy.Allocation) {
	sort.Slice(a, func(i, j int) bool {
		if a[i].Share != a[j].Share {
			return a[i].Share < a[j].Share
		}
		return a[i].ID < a[j].ID
	})
}

func checkSpeedupMonotonicity() error {
	for _, p := range []float64{0.1, 0.5, 0.9} {
		prev := speedup.Factor(p, 1)
		for k := 2.0; k <= 16; k++ {
			cur := speedup.Factor(p, k)
			if cur < prev {
				return fmt.Errorf("speedup decreased from k=%v to k=%v at p=%v", k-1, k, p)
			}
			prev = cur
		}
	}
	return nil
}
