package kvgen

// Concat flattens an ordered list of iterators into one sequence.  Children
// are visited in order and each child runs to exhaustion before the next one
// starts.
//
// Concat copies every pair into its own buffers, so its output does not
// depend on a child's buffers surviving.  The copy is still only valid until
// the next call to Next.
type Concat[I Iterator] struct {
	iters   []I
	current int

	key   []byte
	value []byte
}

var _ Iterator = (*Concat[Iterator])(nil)

// NewConcat takes ownership of iters.  With no children the result is
// already exhausted.
func NewConcat[I Iterator](iters ...I) *Concat[I] {
	return &Concat[I]{iters: iters}
}

func (c *Concat[I]) Next() ([]byte, []byte, bool) {
	for c.current < len(c.iters) {
		k, v, ok := c.iters[c.current].Next()
		if ok {
			c.key = append(c.key[:0], k...)
			c.value = append(c.value[:0], v...)
			return c.key, c.value, true
		}
		c.current++
	}
	return nil, nil, false
}
