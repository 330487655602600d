package harness

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/sbinet/npyio/npz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmedtd/kvgen/kvgen"
)

func TestTraverseCountsEveryVariant(t *testing.T) {
	segs := []Segment{{From: 3, To: 1203}}
	for _, v := range Variants() {
		t.Run(string(v), func(t *testing.T) {
			tally, err := Traverse(v, segs, false)
			require.NoError(t, err)
			assert.Equal(t, 1200, tally.Pairs)
			// "key_NNNNN" + "value_NNNNN"
			assert.Equal(t, 1200*(9+11), tally.Bytes)
		})
	}
}

func TestTraverseConcatSegments(t *testing.T) {
	tally, err := Traverse(Concat, []Segment{{From: 0, To: 2}, {From: 0, To: 0}, {From: 5, To: 7}}, false)
	require.NoError(t, err)
	assert.Equal(t, Tally{Pairs: 4, Bytes: 4 * 20}, tally)
}

func TestTraverseRejects(t *testing.T) {
	_, err := Traverse(Variant("virtual"), []Segment{{From: 0, To: 1}}, false)
	assert.ErrorIs(t, err, ErrUnknownVariant)

	_, err = Traverse(Native, []Segment{{From: 0, To: 1}, {From: 1, To: 2}}, false)
	assert.Error(t, err)
}

func TestOpenMatchesGenerator(t *testing.T) {
	segs := []Segment{{From: 40, To: 90}}
	want := kvgen.Collect(kvgen.New(40, 90))

	for _, v := range Variants() {
		it, release, err := Open(v, segs, true)
		require.NoError(t, err, v)
		got := kvgen.Collect(it)
		release()

		if diff := cmp.Diff(got, want); diff != "" {
			t.Errorf("variant %s: wrong output; diff (-got +want)\n%s", v, diff)
		}
	}
}

func TestOpenReleaseStopsEarly(t *testing.T) {
	for _, v := range []Variant{Seq, Stream} {
		it, release, err := Open(v, []Segment{{From: 0, To: 1000000}}, false)
		require.NoError(t, err)
		k, _, ok := it.Next()
		require.True(t, ok)
		assert.Equal(t, "key_00000", string(k))
		release()
	}
}

func TestVerifyDefaultPlan(t *testing.T) {
	plan := DefaultPlan()
	require.NoError(t, plan.Validate())

	// Shrink the segments; the variant wiring is what is under test.
	for i := range plan.Benchmarks {
		for j := range plan.Benchmarks[i].Segments {
			s := &plan.Benchmarks[i].Segments[j]
			s.From /= 1000
			s.To /= 1000
		}
	}
	for i := range plan.Benchmarks {
		assert.NoError(t, Verify(&plan.Benchmarks[i]), plan.Benchmarks[i].Name)
	}
}

// skewed drops one pair from an otherwise correct generator.
type skewed struct {
	it   kvgen.Iterator
	skip int
	pos  int
}

func (s *skewed) Next() ([]byte, []byte, bool) {
	if s.pos == s.skip {
		s.it.Next()
	}
	s.pos++
	return s.it.Next()
}

func TestCompareReportsMismatch(t *testing.T) {
	err := compare("bad", []Variant{Native, "skewed"}, []kvgen.Iterator{
		kvgen.New(0, 10),
		&skewed{it: kvgen.New(0, 10), skip: 4},
	})
	require.ErrorIs(t, err, ErrMismatch)
	assert.Contains(t, err.Error(), "pair 4")

	err = compare("short", []Variant{Native, Native}, []kvgen.Iterator{
		kvgen.New(0, 10),
		kvgen.New(0, 9),
	})
	require.ErrorIs(t, err, ErrMismatch)
	assert.Contains(t, err.Error(), "length")

	assert.NoError(t, compare("same", []Variant{Native, Boxed}, []kvgen.Iterator{
		kvgen.New(0, 10),
		kvgen.FromBoxed(kvgen.New(0, 10)),
	}))
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("static")
	require.NoError(t, err)
	assert.Equal(t, Static, v)

	_, err = ParseVariant("dyn")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestResultStatistics(t *testing.T) {
	r := &Result{Pairs: 4, NsPerOp: []float32{2, 4, 4, 4, 5, 5, 7, 9}}
	assert.InDelta(t, 5.0, r.Mean(), 1e-6)
	assert.InDelta(t, 2.13809, r.Stddev(), 1e-4)
	assert.Equal(t, float32(2), r.Min())
	assert.InDelta(t, 1.25, r.NsPerPair(), 1e-6)

	empty := &Result{}
	assert.Zero(t, empty.Mean())
	assert.Zero(t, empty.Stddev())
	assert.Zero(t, empty.Min())
	assert.Zero(t, empty.NsPerPair())
}

func fakeBench(f func(b *testing.B)) testing.BenchmarkResult {
	return testing.BenchmarkResult{
		N:         1000,
		T:         2 * time.Millisecond,
		MemAllocs: 3000,
		MemBytes:  48000,
	}
}

func TestRunnerRun(t *testing.T) {
	plan := &Plan{
		Benchmarks: []Benchmark{
			{
				Name:     "tiny",
				Variants: []Variant{Native, Boxed, Static},
				Segments: []Segment{{From: 0, To: 100}},
				Count:    2,
			},
			{
				Name:     "joined",
				Variants: []Variant{Concat},
				Segments: []Segment{{From: 0, To: 50}, {From: 50, To: 100}},
				Count:    1,
			},
		},
	}

	var lines int
	r := &Runner{
		Logf:  func(string, ...any) { lines++ },
		Bench: fakeBench,
	}
	report, err := r.Run(context.Background(), plan)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, report.RunID)
	require.Len(t, report.Results, 4)

	res, ok := report.Lookup("tiny", Boxed)
	require.True(t, ok)
	assert.Equal(t, 100, res.Pairs)
	assert.Equal(t, []float32{2000, 2000}, res.NsPerOp)
	assert.Equal(t, int64(3), res.AllocsPerOp)
	assert.Equal(t, int64(48), res.BytesPerOp)

	res, ok = report.Lookup("joined", Concat)
	require.True(t, ok)
	assert.Len(t, res.NsPerOp, 1)

	_, ok = report.Lookup("joined", Native)
	assert.False(t, ok)

	// Two verification lines plus one per measurement.
	assert.Equal(t, 2+3*2+1, lines)
}

func TestRunnerHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Logf: func(string, ...any) {}, Bench: fakeBench}
	_, err := r.Run(ctx, DefaultPlan())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunnerRejectsInvalidPlan(t *testing.T) {
	r := &Runner{Logf: func(string, ...any) {}, Bench: fakeBench}
	_, err := r.Run(context.Background(), &Plan{})
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestRunMeasuresForReal(t *testing.T) {
	if testing.Short() {
		t.Skip("runs testing.Benchmark")
	}
	plan := &Plan{
		Benchmarks: []Benchmark{{
			Name:     "real",
			Variants: []Variant{Native},
			Segments: []Segment{{From: 0, To: 1000}},
			Count:    1,
		}},
	}
	report, err := (&Runner{Logf: t.Logf}).Run(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Greater(t, report.Results[0].Mean(), float32(0))
}

func sampleReport() *Report {
	return &Report{
		RunID:     uuid.MustParse("0b1c7a8e-54f3-4d0e-9c3a-2f4b6d8e0a12"),
		Started:   time.Date(2024, 3, 1, 12, 30, 45, 123456789, time.UTC),
		GoVersion: "go1.25.0",
		GOOS:      "linux",
		GOARCH:    "amd64",
		Results: []Result{
			{Benchmark: "single", Variant: Native, Pairs: 1000000, NsPerOp: []float32{1.5e7, 1.6e7}},
			{Benchmark: "single", Variant: Boxed, Pairs: 1000000, NsPerOp: []float32{2.5e7}, AllocsPerOp: 1000000, BytesPerOp: 8000000},
		},
	}
}

func TestReportCBORRoundTrip(t *testing.T) {
	want := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, want.WriteCBOR(&buf))

	got, err := ReadReport(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(got, want); diff != "" {
		t.Fatalf("Wrong report; diff (-got +want)\n%s", diff)
	}
}

func TestReadReportRejectsGarbage(t *testing.T) {
	_, err := ReadReport(bytes.NewReader([]byte{0xff, 0x00}))
	assert.Error(t, err)
}

func TestWriteSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.npz")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, sampleReport().WriteSamples(f))
	require.NoError(t, f.Close())

	r, err := npz.Open(path)
	require.NoError(t, err)
	defer r.Close()

	var native []float32
	require.NoError(t, r.Read("single.native.npy", &native))
	assert.Equal(t, []float32{1.5e7, 1.6e7}, native)

	var boxed []float32
	require.NoError(t, r.Read("single.boxed.npy", &boxed))
	assert.Equal(t, []float32{2.5e7}, boxed)
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().PrintTable(&buf))

	out := buf.String()
	assert.Contains(t, out, "0b1c7a8e-54f3-4d0e-9c3a-2f4b6d8e0a12")
	assert.Contains(t, out, "Variant")
	assert.Contains(t, out, "boxed")
	assert.Contains(t, out, "15500000")
}
