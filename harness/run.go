package harness

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/google/uuid"
)

// Result holds the repeated measurements of one variant of one benchmark.
type Result struct {
	Benchmark   string    `cbor:"benchmark"`
	Variant     Variant   `cbor:"variant"`
	Pairs       int       `cbor:"pairs"`
	NsPerOp     []float32 `cbor:"ns_per_op"`
	AllocsPerOp int64     `cbor:"allocs_per_op"`
	BytesPerOp  int64     `cbor:"bytes_per_op"`
}

// Key identifies the result within a report.
func (r *Result) Key() string {
	return r.Benchmark + "." + string(r.Variant)
}

func (r *Result) Mean() float32 {
	if len(r.NsPerOp) == 0 {
		return 0
	}
	var sum float32
	for _, v := range r.NsPerOp {
		sum += v
	}
	return sum / float32(len(r.NsPerOp))
}

// Stddev is the sample standard deviation, zero with fewer than two samples.
func (r *Result) Stddev() float32 {
	if len(r.NsPerOp) < 2 {
		return 0
	}
	mean := r.Mean()
	var sq float32
	for _, v := range r.NsPerOp {
		sq += (v - mean) * (v - mean)
	}
	return math32.Sqrt(sq / float32(len(r.NsPerOp)-1))
}

func (r *Result) Min() float32 {
	if len(r.NsPerOp) == 0 {
		return 0
	}
	m := math32.Inf(1)
	for _, v := range r.NsPerOp {
		m = math32.Min(m, v)
	}
	return m
}

// NsPerPair is the mean cost of a single advance.
func (r *Result) NsPerPair() float32 {
	if r.Pairs == 0 {
		return 0
	}
	return r.Mean() / float32(r.Pairs)
}

// Runner executes plans.  The zero value logs through the standard logger
// and measures with testing.Benchmark.
type Runner struct {
	// Logf receives one line per measurement.  Nil means log.Printf.
	Logf func(format string, args ...any)

	// Bench measures one benchmark function.  Nil means testing.Benchmark.
	Bench func(f func(b *testing.B)) testing.BenchmarkResult
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (r *Runner) bench(f func(b *testing.B)) testing.BenchmarkResult {
	if r.Bench != nil {
		return r.Bench(f)
	}
	return testing.Benchmark(f)
}

// Run verifies every benchmark of plan and then measures each variant Count
// times.  ctx is checked between measurements.
func (r *Runner) Run(ctx context.Context, plan *Plan) (*Report, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     uuid.New(),
		Started:   time.Now().UTC(),
		GoVersion: runtime.Version(),
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
	}

	for i := range plan.Benchmarks {
		bm := &plan.Benchmarks[i]

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("while running %s: %w", bm.Name, err)
		}
		if err := Verify(bm); err != nil {
			return nil, fmt.Errorf("while verifying %q: %w", bm.Name, err)
		}
		r.logf("benchmark %s: %d variants agree over %d pairs", bm.Name, len(bm.Variants), bm.Pairs())

		for _, v := range bm.Variants {
			res := Result{
				Benchmark: bm.Name,
				Variant:   v,
				Pairs:     bm.Pairs(),
			}

			for c := 0; c < bm.Count; c++ {
				if err := ctx.Err(); err != nil {
					return nil, fmt.Errorf("while running %s: %w", res.Key(), err)
				}

				var traverseErr error
				br := r.bench(func(b *testing.B) {
					b.ReportAllocs()
					for b.Loop() {
						if _, err := Traverse(v, bm.Segments, bm.Yield); err != nil {
							traverseErr = err
							return
						}
					}
				})
				if traverseErr != nil {
					return nil, fmt.Errorf("while running %s: %w", res.Key(), traverseErr)
				}
				if br.N == 0 {
					return nil, fmt.Errorf("while running %s: benchmark made no iterations", res.Key())
				}

				nsPerOp := float32(br.T.Nanoseconds()) / float32(br.N)
				res.NsPerOp = append(res.NsPerOp, nsPerOp)
				res.AllocsPerOp = br.AllocsPerOp()
				res.BytesPerOp = br.AllocedBytesPerOp()

				r.logf("%s run %d/%d: %.0f ns/op (%.2f ns/pair) %d allocs/op", res.Key(), c+1, bm.Count, nsPerOp, nsPerOp/float32(max(res.Pairs, 1)), res.AllocsPerOp)
			}

			report.Results = append(report.Results, res)
		}
	}

	return report, nil
}

// Run executes plan with a default Runner.
func Run(ctx context.Context, plan *Plan) (*Report, error) {
	return (&Runner{}).Run(ctx, plan)
}
