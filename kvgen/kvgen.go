// Package kvgen produces bounded, deterministic sequences of key/value pairs
// and exposes them through several dispatch mechanisms, so that the cost of
// each mechanism can be compared on identical work.
//
// Keys and values returned by an advance call alias buffers owned by the
// iterator.  They are valid only until the next advance of the same
// iterator.  Use Collect, Stream, or Pair.Clone to keep them longer.
package kvgen

import (
	"bytes"
	"fmt"
	"runtime"
)

// Iterator is advanced with a plain method call.
type Iterator interface {
	// Next returns the next pair.  ok is false once the iterator is exhausted,
	// and stays false on every later call.
	Next() (key, value []byte, ok bool)
}

// Future is a pending advance.  Await completes it.
type Future interface {
	Await() (key, value []byte, ok bool)
}

// BoxedIterator hands out a heap-allocated Future, behind an interface, for
// every advance.
type BoxedIterator interface {
	NextBoxed() Future
}

// StaticIterator lets each implementation name its own concrete future type.
// Drivers that are generic over F await it without boxing.
type StaticIterator[F Future] interface {
	NextStatic() F
}

// Pair is an owned copy of one key/value pair.
type Pair struct {
	Key   []byte
	Value []byte
}

// Clone copies key and value into a Pair that outlives the iterator buffers.
func Clone(key, value []byte) Pair {
	return Pair{Key: bytes.Clone(key), Value: bytes.Clone(value)}
}

func (p Pair) String() string {
	return fmt.Sprintf("%s=%s", p.Key, p.Value)
}

// Generator yields ("key_NNNNN", "value_NNNNN") for every index in
// [from, to).  Indices are zero padded to five digits; wider indices print all
// of their digits.
type Generator struct {
	idx   int
	toIdx int
	yield bool

	key   []byte
	value []byte
}

var (
	_ Iterator                   = (*Generator)(nil)
	_ BoxedIterator              = (*Generator)(nil)
	_ StaticIterator[NextFuture] = (*Generator)(nil)
)

// New returns a generator over [fromIdx, toIdx).  A toIdx at or below fromIdx
// gives an empty generator.
func New(fromIdx, toIdx int) *Generator {
	if fromIdx < 0 {
		panic(fmt.Sprintf("invalid bounds: [%d, %d)", fromIdx, toIdx))
	}
	return &Generator{
		idx:   fromIdx,
		toIdx: toIdx,
	}
}

// WithYield makes every advance give up the processor at its suspension
// point.
func (g *Generator) WithYield(yield bool) *Generator {
	g.yield = yield
	return g
}

// Remaining reports how many pairs are left.
func (g *Generator) Remaining() int {
	if g.idx >= g.toIdx {
		return 0
	}
	return g.toIdx - g.idx
}

// advance is shared by every dispatch variant, so they cannot drift apart.
func (g *Generator) advance() ([]byte, []byte, bool) {
	if g.yield {
		runtime.Gosched()
	}

	if g.idx >= g.toIdx {
		return nil, nil, false
	}

	// The buffers are reused, so a warm generator does not allocate.
	g.key = appendPad5(append(g.key[:0], "key_"...), g.idx)
	g.value = appendPad5(append(g.value[:0], "value_"...), g.idx)

	g.idx++
	return g.key, g.value, true
}

// Next returns views into the generator's buffers, valid until the next
// advance.
func (g *Generator) Next() ([]byte, []byte, bool) {
	return g.advance()
}

type boxedNext struct {
	g *Generator
}

func (f *boxedNext) Await() ([]byte, []byte, bool) {
	return f.g.advance()
}

// NextBoxed allocates a new future per call.  The pair it resolves to is
// valid until the next advance.
func (g *Generator) NextBoxed() Future {
	return &boxedNext{g: g}
}

// NextFuture is the future type Generator names for StaticIterator.
type NextFuture struct {
	g *Generator
}

func (f NextFuture) Await() ([]byte, []byte, bool) {
	return f.g.advance()
}

// NextStatic returns the future by value.  The pair it resolves to is valid
// until the next advance.
func (g *Generator) NextStatic() NextFuture {
	return NextFuture{g: g}
}

type boxedAdapter struct {
	it BoxedIterator
}

func (a boxedAdapter) Next() ([]byte, []byte, bool) {
	return a.it.NextBoxed().Await()
}

// FromBoxed adapts a BoxedIterator to Iterator.
func FromBoxed(it BoxedIterator) Iterator {
	return boxedAdapter{it: it}
}

type staticAdapter[F Future, I StaticIterator[F]] struct {
	it I
}

func (a staticAdapter[F, I]) Next() ([]byte, []byte, bool) {
	return a.it.NextStatic().Await()
}

// FromStatic adapts a StaticIterator to Iterator.
func FromStatic[F Future, I StaticIterator[F]](it I) Iterator {
	return staticAdapter[F, I]{it: it}
}

// Collect drains it into owned pairs.
func Collect(it Iterator) []Pair {
	var out []Pair
	for {
		k, v, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, Clone(k, v))
	}
}
