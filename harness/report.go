package harness

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/sbinet/npyio/npz"
)

// Report is the outcome of one Run.
type Report struct {
	RunID     uuid.UUID `cbor:"run_id"`
	Started   time.Time `cbor:"started"`
	GoVersion string    `cbor:"go_version"`
	GOOS      string    `cbor:"goos"`
	GOARCH    string    `cbor:"goarch"`
	Results   []Result  `cbor:"results"`
}

// Lookup finds the result for a benchmark and variant.
func (r *Report) Lookup(benchmark string, v Variant) (*Result, bool) {
	for i := range r.Results {
		if r.Results[i].Benchmark == benchmark && r.Results[i].Variant == v {
			return &r.Results[i], true
		}
	}
	return nil, false
}

var reportEncMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

func (r *Report) WriteCBOR(w io.Writer) error {
	if err := reportEncMode.NewEncoder(w).Encode(r); err != nil {
		return fmt.Errorf("while encoding report: %w", err)
	}
	return nil
}

func ReadReport(rd io.Reader) (*Report, error) {
	r := &Report{}
	if err := cbor.NewDecoder(rd).Decode(r); err != nil {
		return nil, fmt.Errorf("while decoding report: %w", err)
	}
	return r, nil
}

// WriteSamples writes every result's ns/op samples as a float32 array named
// "<benchmark>.<variant>.npy" inside an npz archive.
func (r *Report) WriteSamples(w io.Writer) error {
	zw := npz.NewWriter(w)
	for i := range r.Results {
		res := &r.Results[i]
		if err := zw.Write(res.Key()+".npy", res.NsPerOp); err != nil {
			return fmt.Errorf("while writing samples for %s: %w", res.Key(), err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("while closing samples archive: %w", err)
	}
	return nil
}

// PrintTable writes one aligned row per result.
func (r *Report) PrintTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "# run %s started %s (%s %s/%s)\n\n", r.RunID, r.Started.Format(time.RFC3339), r.GoVersion, r.GOOS, r.GOARCH)
	fmt.Fprintln(tw, "Benchmark\tVariant\tPairs\tRuns\tns/op\t± stddev\tmin ns/op\tns/pair\tallocs/op\tB/op")
	for i := range r.Results {
		res := &r.Results[i]
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.0f\t%.0f\t%.0f\t%.2f\t%d\t%d\n",
			res.Benchmark,
			res.Variant,
			res.Pairs,
			len(res.NsPerOp),
			res.Mean(),
			res.Stddev(),
			res.Min(),
			res.NsPerPair(),
			res.AllocsPerOp,
			res.BytesPerOp,
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("while writing table: %w", err)
	}
	return nil
}
