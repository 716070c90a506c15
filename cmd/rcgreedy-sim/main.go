package main

import (
	"github.com/perf-analysis/cmd/rcgreedy-sim/cmd"
)

func main() {
	cmd.Execute()
}
