package kvgen

import (
	"context"
	"iter"
)

// All exposes it as a range-over-func sequence.  The yielded slices follow
// the same lifetime rule as Next.
func All(it Iterator) iter.Seq2[[]byte, []byte] {
	return func(yield func([]byte, []byte) bool) {
		for {
			k, v, ok := it.Next()
			if !ok || !yield(k, v) {
				return
			}
		}
	}
}

// ConcatSeq chains seqs one after the other.
func ConcatSeq(seqs ...iter.Seq2[[]byte, []byte]) iter.Seq2[[]byte, []byte] {
	return func(yield func([]byte, []byte) bool) {
		for _, seq := range seqs {
			for k, v := range seq {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// CollectSeq drains seq into owned pairs.
func CollectSeq(seq iter.Seq2[[]byte, []byte]) []Pair {
	var out []Pair
	for k, v := range seq {
		out = append(out, Clone(k, v))
	}
	return out
}

// Stream advances it on a separate goroutine and sends owned copies of every
// pair.  The channel is closed when it is exhausted or ctx is done.  The
// goroutine owns it from here on; callers must not advance it themselves.
// Abandoning the channel without cancelling ctx leaks the goroutine.
func Stream(ctx context.Context, it Iterator, buffer int) <-chan Pair {
	ch := make(chan Pair, buffer)
	go func() {
		defer close(ch)
		for {
			k, v, ok := it.Next()
			if !ok {
				return
			}
			select {
			case ch <- Clone(k, v):
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
