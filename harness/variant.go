package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/ahmedtd/kvgen/kvgen"
)

var (
	ErrUnknownVariant = errors.New("unknown variant")
	ErrMismatch       = errors.New("variants disagree")
)

// Variant names a way of advancing a generator.
type Variant string

const (
	Native Variant = "native"
	Boxed  Variant = "boxed"
	Static Variant = "static"
	Seq    Variant = "seq"
	Stream Variant = "stream"
	Concat Variant = "concat"
)

func Variants() []Variant {
	return []Variant{Native, Boxed, Static, Seq, Stream, Concat}
}

func (v Variant) Known() bool {
	return slices.Contains(Variants(), v)
}

func ParseVariant(s string) (Variant, error) {
	v := Variant(s)
	if !v.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
	return v, nil
}

// streamBuffer is the channel capacity used by the Stream variant.
const streamBuffer = 64

// Tally summarizes one traversal.  Touching every byte keeps the compiler
// from discarding the work.
type Tally struct {
	Pairs int
	Bytes int
}

func (t *Tally) add(k, v []byte) {
	t.Pairs++
	t.Bytes += len(k) + len(v)
}

func generators(segs []Segment, yield bool) []*kvgen.Generator {
	gens := make([]*kvgen.Generator, len(segs))
	for i, s := range segs {
		gens[i] = kvgen.New(s.From, s.To).WithYield(yield)
	}
	return gens
}

func single(v Variant, segs []Segment, yield bool) (*kvgen.Generator, error) {
	if len(segs) != 1 {
		return nil, fmt.Errorf("variant %s takes one segment, got %d", v, len(segs))
	}
	return kvgen.New(segs[0].From, segs[0].To).WithYield(yield), nil
}

// Traverse runs one full traversal of segs through v.  Each variant has its
// own loop so that only the dispatch under test sits on the hot path.
func Traverse(v Variant, segs []Segment, yield bool) (Tally, error) {
	var t Tally

	if v == Concat {
		var it kvgen.Iterator = kvgen.NewConcat(generators(segs, yield)...)
		for {
			k, val, ok := it.Next()
			if !ok {
				return t, nil
			}
			t.add(k, val)
		}
	}

	if !v.Known() {
		return t, fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
	g, err := single(v, segs, yield)
	if err != nil {
		return t, err
	}

	switch v {
	case Native:
		var it kvgen.Iterator = g
		for {
			k, val, ok := it.Next()
			if !ok {
				break
			}
			t.add(k, val)
		}
	case Boxed:
		var it kvgen.BoxedIterator = g
		for {
			k, val, ok := it.NextBoxed().Await()
			if !ok {
				break
			}
			t.add(k, val)
		}
	case Static:
		traverseStatic[kvgen.NextFuture](g, &t)
	case Seq:
		for k, val := range kvgen.All(g) {
			t.add(k, val)
		}
	case Stream:
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		for p := range kvgen.Stream(ctx, g, streamBuffer) {
			t.add(p.Key, p.Value)
		}
	}
	return t, nil
}

func traverseStatic[F kvgen.Future, I kvgen.StaticIterator[F]](it I, t *Tally) {
	for {
		k, v, ok := it.NextStatic().Await()
		if !ok {
			return
		}
		t.add(k, v)
	}
}

type pullIterator struct {
	next func() ([]byte, []byte, bool)
}

func (p pullIterator) Next() ([]byte, []byte, bool) {
	return p.next()
}

type chanIterator struct {
	ch <-chan kvgen.Pair
}

func (c chanIterator) Next() ([]byte, []byte, bool) {
	p, ok := <-c.ch
	if !ok {
		return nil, nil, false
	}
	return p.Key, p.Value, true
}

// Open exposes variant v over segs as a plain Iterator.  release must be
// called once the iterator is no longer needed.
func Open(v Variant, segs []Segment, yield bool) (it kvgen.Iterator, release func(), err error) {
	if v == Concat {
		return kvgen.NewConcat(generators(segs, yield)...), func() {}, nil
	}
	if !v.Known() {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
	g, err := single(v, segs, yield)
	if err != nil {
		return nil, nil, err
	}

	switch v {
	case Boxed:
		return kvgen.FromBoxed(g), func() {}, nil
	case Static:
		return kvgen.FromStatic[kvgen.NextFuture](g), func() {}, nil
	case Seq:
		next, stop := iter.Pull2(kvgen.All(g))
		return pullIterator{next: next}, stop, nil
	case Stream:
		ctx, cancel := context.WithCancel(context.Background())
		return chanIterator{ch: kvgen.Stream(ctx, g, streamBuffer)}, cancel, nil
	default:
		return g, func() {}, nil
	}
}

// Verify advances every variant of b in lockstep and fails with ErrMismatch
// at the first pair where any of them differs from the first variant.
func Verify(b *Benchmark) error {
	its := make([]kvgen.Iterator, 0, len(b.Variants))
	for _, v := range b.Variants {
		it, release, err := Open(v, b.Segments, b.Yield)
		if err != nil {
			return fmt.Errorf("while opening variant %s of %q: %w", v, b.Name, err)
		}
		defer release()
		its = append(its, it)
	}
	return compare(b.Name, b.Variants, its)
}

func compare(name string, variants []Variant, its []kvgen.Iterator) error {
	if len(its) < 2 {
		return nil
	}
	for pos := 0; ; pos++ {
		k0, v0, ok0 := its[0].Next()
		for i := 1; i < len(its); i++ {
			k, v, ok := its[i].Next()
			if ok != ok0 {
				return fmt.Errorf("%w: benchmark %q: %s and %s differ in length at pair %d", ErrMismatch, name, variants[0], variants[i], pos)
			}
			if !bytes.Equal(k, k0) || !bytes.Equal(v, v0) {
				return fmt.Errorf("%w: benchmark %q: pair %d is %s=%s from %s but %s=%s from %s", ErrMismatch, name, pos, k0, v0, variants[0], k, v, variants[i])
			}
		}
		if !ok0 {
			return nil
		}
	}
}
