package kvgen

import (
	"iter"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConcatSkipsEmptyChildren(t *testing.T) {
	c := NewConcat(New(0, 2), New(0, 0), New(5, 7))

	got := Collect(c)
	want := []Pair{
		{Key: []byte("key_00000"), Value: []byte("value_00000")},
		{Key: []byte("key_00001"), Value: []byte("value_00001")},
		{Key: []byte("key_00005"), Value: []byte("value_00005")},
		{Key: []byte("key_00006"), Value: []byte("value_00006")},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Fatalf("Wrong output; diff (-got +want)\n%s", diff)
	}

	for i := 0; i < 3; i++ {
		if _, _, ok := c.Next(); ok {
			t.Fatalf("Next after exhaustion returned ok")
		}
	}
}

func TestConcatNoChildren(t *testing.T) {
	c := NewConcat[*Generator]()
	if k, v, ok := c.Next(); ok || k != nil || v != nil {
		t.Fatalf("Next() = (%q, %q, %v), want exhausted", k, v, ok)
	}
	if _, _, ok := c.Next(); ok {
		t.Fatalf("Second Next() returned ok")
	}
}

func TestConcatAllEmptyChildren(t *testing.T) {
	c := NewConcat(New(0, 0), New(3, 3), New(9, 1))
	if got := Collect(c); len(got) != 0 {
		t.Fatalf("Got %d pairs from empty children, want 0", len(got))
	}
}

func TestConcatCopiesChildOutput(t *testing.T) {
	child := New(0, 10)
	c := NewConcat(child)

	k, v, _ := c.Next()

	// Advancing the child directly rewrites the child's buffers, not the
	// wrapper's.
	child.Next()

	if string(k) != "key_00000" || string(v) != "value_00000" {
		t.Errorf("Concat output changed to (%q, %q) after child advanced", k, v)
	}
}

func TestConcatNested(t *testing.T) {
	inner := NewConcat(New(0, 1), New(2, 3))
	outer := NewConcat[Iterator](inner, New(4, 5), FromBoxed(New(6, 7)))

	var keys []string
	for _, p := range Collect(outer) {
		keys = append(keys, string(p.Key))
	}
	want := []string{"key_00000", "key_00002", "key_00004", "key_00006"}
	if diff := cmp.Diff(keys, want); diff != "" {
		t.Errorf("Wrong keys; diff (-got +want)\n%s", diff)
	}
}

func TestConcatSeqMatchesConcat(t *testing.T) {
	bounds := [][2]int{{0, 2}, {0, 0}, {5, 7}, {100, 140}}

	var children []*Generator
	var seqs []iter.Seq2[[]byte, []byte]
	for _, bd := range bounds {
		children = append(children, New(bd[0], bd[1]))
		seqs = append(seqs, All(New(bd[0], bd[1])))
	}

	want := Collect(NewConcat(children...))
	got := CollectSeq(ConcatSeq(seqs...))
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("ConcatSeq disagrees with Concat; diff (-got +want)\n%s", diff)
	}
}
