package experiment

import "strconv"

// Axis identifies one of the five parameter sweeps spec.md §6 defines.
type Axis int

const (
	AxisServers Axis = iota
	AxisJobSizeLambda
	AxisArrivalLambda
	AxisPartialServers
	AxisReallocPeriod
)

// String names the axis the way the CSV output's Parameter column does.
func (a Axis) String() string {
	switch a {
	case AxisServers:
		return "servers"
	case AxisJobSizeLambda:
		return "job_size_lambda"
	case AxisArrivalLambda:
		return "arrival_lambda"
	case AxisPartialServers:
		return "partial_servers"
	case AxisReallocPeriod:
		return "full_realloc_period"
	default:
		return "unknown"
	}
}

// AxisFromOption maps the CLI's `--option {1..5}` selector to an Axis, in
// the order spec.md §6 lists the five axes.
func AxisFromOption(option int) (Axis, bool) {
	switch option {
	case 1:
		return AxisServers, true
	case 2:
		return AxisJobSizeLambda, true
	case 3:
		return AxisArrivalLambda, true
	case 4:
		return AxisPartialServers, true
	case 5:
		return AxisReallocPeriod, true
	default:
		return 0, false
	}
}

// axisPoint is one value along an axis's sweep, with both its float form
// (for trialParams mutation) and its display string (for the CSV).
type axisPoint struct {
	value   float64
	boolean bool // only meaningful for AxisPartialServers
	display string
}

// points enumerates every value spec.md §6 specifies for axis.
func points(axis Axis) []axisPoint {
	switch axis {
	case AxisServers:
		return rangeInt(50, 200, 25)
	case AxisJobSizeLambda:
		return rangeFloat(0.1, 20, 0.5)
	case AxisArrivalLambda:
		return rangeFloat(0.5, 2.5, 0.5)
	case AxisPartialServers:
		return []axisPoint{
			{boolean: false, display: "false"},
			{boolean: true, display: "true"},
		}
	case AxisReallocPeriod:
		out := make([]axisPoint, 0, 5)
		for _, v := range []int{1, 5, 10, 15, 20} {
			out = append(out, axisPoint{value: float64(v), display: strconv.Itoa(v)})
		}
		return out
	default:
		return nil
	}
}

func rangeInt(lo, hi, step int) []axisPoint {
	out := make([]axisPoint, 0)
	for v := lo; v <= hi; v += step {
		out = append(out, axisPoint{value: float64(v), display: strconv.Itoa(v)})
	}
	return out
}

func rangeFloat(lo, hi, step float64) []axisPoint {
	out := make([]axisPoint, 0)
	for v := lo; v <= hi+1e-9; v += step {
		out = append(out, axisPoint{value: v, display: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	return out
}
