// Package harness drives kvgen traversals through each dispatch variant,
// checks that the variants agree, and measures them with testing.Benchmark.
package harness

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

var ErrInvalidPlan = errors.New("invalid plan")

// Segment is one generator's bounds, [From, To).
type Segment struct {
	From int `toml:"from"`
	To   int `toml:"to"`
}

func (s Segment) Len() int {
	return max(s.To-s.From, 0)
}

// Benchmark is one traversal measured under several variants.  Every variant
// except Concat takes exactly one segment.
type Benchmark struct {
	Name     string    `toml:"name"`
	Variants []Variant `toml:"variants"`
	Segments []Segment `toml:"segment"`
	Yield    bool      `toml:"yield"`
	Count    int       `toml:"count"`
}

// Pairs is the number of pairs one traversal produces.
func (b *Benchmark) Pairs() int {
	n := 0
	for _, s := range b.Segments {
		n += s.Len()
	}
	return n
}

type Plan struct {
	Benchmarks []Benchmark `toml:"benchmark"`
}

// DefaultPlan walks a million pairs through every single-generator variant,
// and the same million pairs split over a concatenation.
func DefaultPlan() *Plan {
	return &Plan{
		Benchmarks: []Benchmark{
			{
				Name:     "single",
				Variants: []Variant{Native, Boxed, Static, Seq, Stream},
				Segments: []Segment{{From: 0, To: 1000000}},
				Count:    3,
			},
			{
				Name:     "concat",
				Variants: []Variant{Concat},
				Segments: []Segment{
					{From: 0, To: 250000},
					{From: 250000, To: 500000},
					{From: 0, To: 0},
					{From: 500000, To: 1000000},
				},
				Count: 3,
			},
		},
	}
}

// LoadPlan reads a TOML plan.  Unknown keys are rejected so that a typo does
// not silently fall back to a default.
func LoadPlan(path string) (*Plan, error) {
	plan := &Plan{}
	md, err := toml.DecodeFile(path, plan)
	if err != nil {
		return nil, fmt.Errorf("while decoding plan %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidPlan, path, strings.Join(keys, ", "))
	}

	for i := range plan.Benchmarks {
		if plan.Benchmarks[i].Count == 0 {
			plan.Benchmarks[i].Count = 1
		}
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

func (p *Plan) Validate() error {
	if len(p.Benchmarks) == 0 {
		return fmt.Errorf("%w: no benchmarks", ErrInvalidPlan)
	}

	var names []string
	for _, b := range p.Benchmarks {
		if b.Name == "" {
			return fmt.Errorf("%w: benchmark without a name", ErrInvalidPlan)
		}
		if slices.Contains(names, b.Name) {
			return fmt.Errorf("%w: duplicate benchmark %q", ErrInvalidPlan, b.Name)
		}
		names = append(names, b.Name)

		if b.Count < 1 {
			return fmt.Errorf("%w: benchmark %q: count %d", ErrInvalidPlan, b.Name, b.Count)
		}
		if len(b.Variants) == 0 {
			return fmt.Errorf("%w: benchmark %q: no variants", ErrInvalidPlan, b.Name)
		}
		if len(b.Segments) == 0 {
			return fmt.Errorf("%w: benchmark %q: no segments", ErrInvalidPlan, b.Name)
		}
		for _, s := range b.Segments {
			if s.From < 0 {
				return fmt.Errorf("%w: benchmark %q: negative segment start %d", ErrInvalidPlan, b.Name, s.From)
			}
		}
		for _, v := range b.Variants {
			if !v.Known() {
				return fmt.Errorf("%w: benchmark %q: %w: %q", ErrInvalidPlan, b.Name, ErrUnknownVariant, v)
			}
			if v != Concat && len(b.Segments) != 1 {
				return fmt.Errorf("%w: benchmark %q: variant %s takes one segment, got %d", ErrInvalidPlan, b.Name, v, len(b.Segments))
			}
		}
	}
	return nil
}
