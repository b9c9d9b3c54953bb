package measure

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/xlab/treeprint"
	"gonum.org/v1/gonum/stat"
)

// Estimate summarises the samples of one bench. Times are nanoseconds per
// iteration.
type Estimate struct {
	Label          string
	Samples        int
	Iterations     uint64
	Mean           float64
	StdDev         float64
	Variance       float64
	Median         float64
	Min            float64
	Max            float64
	MildOutliers   int
	SevereOutliers int
}

func newEstimate(label string, ns []float64, iters uint64) Estimate {
	sorted := slices.Clone(ns)
	slices.Sort(sorted)

	e := Estimate{
		Label:      label,
		Samples:    len(ns),
		Iterations: iters,
		Min:        sorted[0],
		Max:        sorted[len(sorted)-1],
		Median:     stat.Quantile(0.5, stat.LinInterp, sorted, nil),
	}
	if len(ns) > 1 {
		e.Mean, e.Variance = stat.MeanVariance(ns, nil)
		e.StdDev = math.Sqrt(e.Variance)
	} else {
		e.Mean = ns[0]
	}

	// Tukey fences
	q1 := stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	q3 := stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	iqr := q3 - q1
	for _, v := range sorted {
		switch {
		case v < q1-3*iqr || v > q3+3*iqr:
			e.SevereOutliers++
		case v < q1-1.5*iqr || v > q3+1.5*iqr:
			e.MildOutliers++
		}
	}
	return e
}

func (e Estimate) MeanDuration() time.Duration {
	return time.Duration(math.Round(e.Mean))
}

// Throughput is invocations per second at the mean.
func (e Estimate) Throughput() float64 {
	if e.Mean <= 0 {
		return 0
	}
	return 1e9 / e.Mean
}

func (e Estimate) String() string {
	return fmt.Sprintf("%s: time %s ± %s (median %s, min %s, max %s), thrpt %s, outliers %d mild / %d severe",
		e.Label,
		fmtNanos(e.Mean), fmtNanos(e.StdDev), fmtNanos(e.Median), fmtNanos(e.Min), fmtNanos(e.Max),
		fmtRate(e.Throughput()), e.MildOutliers, e.SevereOutliers)
}

// GroupReport holds the estimates of one group in registration order.
type GroupReport struct {
	Name      string
	Estimates []Estimate
}

// Fastest returns the estimate with the lowest mean.
func (g GroupReport) Fastest() (Estimate, bool) {
	if len(g.Estimates) == 0 {
		return Estimate{}, false
	}
	return slices.MinFunc(g.Estimates, func(a, b Estimate) int {
		switch {
		case a.Mean < b.Mean:
			return -1
		case a.Mean > b.Mean:
			return 1
		}
		return 0
	}), true
}

type Report struct {
	Groups []GroupReport
}

// Tree renders the report with one branch per group.
func (r Report) Tree() treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue("poseidon-bench")
	for _, g := range r.Groups {
		branch := tree.AddBranch(g.Name)
		for _, e := range g.Estimates {
			branch.AddNode(e.String())
		}
		if fastest, ok := g.Fastest(); ok && len(g.Estimates) > 1 {
			for _, e := range g.Estimates {
				if e.Label == fastest.Label || fastest.Mean <= 0 {
					continue
				}
				branch.AddNode(fmt.Sprintf("%s is %.2fx faster than %s", fastest.Label, e.Mean/fastest.Mean, e.Label))
			}
		}
	}
	return tree
}

func (r Report) String() string {
	return r.Tree().String()
}

func fmtNanos(ns float64) string {
	switch {
	case ns < 1e3:
		return fmt.Sprintf("%.2f ns", ns)
	case ns < 1e6:
		return fmt.Sprintf("%.2f µs", ns/1e3)
	case ns < 1e9:
		return fmt.Sprintf("%.2f ms", ns/1e6)
	}
	return fmt.Sprintf("%.2f s", ns/1e9)
}

func fmtRate(opsPerSec float64) string {
	switch {
	case opsPerSec >= 1e6:
		return fmt.Sprintf("%.2f Mop/s", opsPerSec/1e6)
	case opsPerSec >= 1e3:
		return fmt.Sprintf("%.2f Kop/s", opsPerSec/1e3)
	}
	return fmt.Sprintf("%.2f op/s", opsPerSec)
}
