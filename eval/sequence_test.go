// Copyright © 2024 The ELPS authors

package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ints(n int) []Value {
	vals := make([]Value, n)
	for i := range vals {
		vals[i] = Integer(int64(i + 1))
	}
	return vals
}

// deepCopy returns a snapshot of seq which shares no sequences with it.
func deepCopy(seq *Sequence) *Sequence {
	cp := seq.CopyAtMax(0, -1)
	for i := 0; i < cp.Len(); i++ {
		v := cp.At(i)
		if v.IsSequence() {
			v.Seq = deepCopy(v.Seq)
			cp.Set(i, v)
		}
	}
	return cp
}

func checkCollapsed(t *testing.T, seq *Sequence, limit int) {
	t.Helper()
	require.LessOrEqual(t, seq.Len(), limit+1)
	for i := 0; i < seq.Len(); i++ {
		v := seq.At(i)
		if v.Kind == KindBlock || v.Kind == KindGroup {
			checkCollapsed(t, v.Seq, limit)
		}
	}
}

func TestCollapse(t *testing.T) {
	deep := BlockOf(ints(2)...)
	for i := 0; i < 4; i++ {
		deep = BlockOf(append(ints(5), deep)...)
	}
	sources := []*Sequence{
		NewSequence(),
		NewSequence(ints(3)...),
		NewSequence(ints(10)...),
		NewSequence(BlockOf(ints(6)...), Group(NewSequence(ints(4)...)), Integer(1)),
		NewSequence(BlockOf(BlockOf(BlockOf(ints(8)...)))),
		NewSequence(deep, deep),
	}
	for _, limit := range []int{0, 1, 3, 7} {
		for _, src := range sources {
			snapshot := deepCopy(src)
			collapsed := Collapse(src, limit)
			checkCollapsed(t, collapsed, limit)
			assert.True(t, Equal(Block(snapshot), Block(src)), "source modified: %v", src)
		}
	}
}

func TestCollapseMarker(t *testing.T) {
	seq := NewSequence(Integer(1), BlockOf(ints(5)...), Integer(3), Integer(4))
	assert.Equal(t, "1 [1 2 3 ...] 3 ...", Collapse(seq, 3).String())
	assert.Equal(t, "1 [1 2 3 4 5] 3 4", Collapse(seq, 5).String())
	assert.Equal(t, "...", Collapse(seq, 0).String())
}

func TestCollapseNestedShort(t *testing.T) {
	// A short block still has its long children collapsed.
	seq := NewSequence(BlockOf(BlockOf(ints(5)...)))
	assert.Equal(t, "[[1 2 ...]]", Collapse(seq, 2).String())
	assert.Equal(t, "[[1 2 3 4 5]]", seq.String())
}

func TestCollapseIndexedBlock(t *testing.T) {
	b := BlockOf(ints(6)...)
	b.Index = 4
	seq := NewSequence(b)
	assert.Equal(t, "[5 6]", Collapse(seq, 3).String())
}

func TestCollapseCyclic(t *testing.T) {
	b := NewSequence(Word("id"))
	b.Append(Block(b))
	assert.Equal(t, "id [...]", Collapse(b, 3).String())
	assert.Equal(t, "[...]", CollapseAt(b, 1, 3).String())

	// Recurrence is detected below the top level too.
	inner := NewSequence(Integer(1))
	inner.Append(Block(inner))
	seq := NewSequence(Word("x"), Block(inner), Group(inner))
	assert.Equal(t, "x [1 [...]] (1 [...])", Collapse(seq, 3).String())
	assert.Equal(t, 2, inner.Len())
}

func TestMoldCyclic(t *testing.T) {
	b := NewSequence(Word("id"))
	b.Append(Block(b))
	assert.Equal(t, "[id [...]]", Mold(Block(b)))
	assert.Equal(t, "id [...]", b.String())
}

func TestMoldSkipsEnd(t *testing.T) {
	seq := NewSequence(String("sk"), End(), Integer(1))
	assert.Equal(t, `"sk" 1`, seq.String())
	assert.Equal(t, `["sk"]`, Mold(BlockOf(String("sk"), End())))
	assert.Equal(t, "", Mold(End()))
}

func TestSequenceEdit(t *testing.T) {
	seq := NewSequence(ints(3)...)
	seq.Insert(0, Word("a"))
	seq.Insert(10, Word("z"))
	assert.Equal(t, "a 1 2 3 z", seq.String())
	seq.Remove(1, 2)
	assert.Equal(t, "a 3 z", seq.String())
	seq.Remove(2, 10)
	assert.Equal(t, "a 3", seq.String())
	seq.Remove(5, 1)
	assert.Equal(t, 2, seq.Len())
	seq.Clear(0)
	assert.Equal(t, 0, seq.Len())
	assert.True(t, seq.At(0).IsEnd())
	assert.True(t, seq.At(-1).IsEnd())
}

func TestCopyAtMax(t *testing.T) {
	seq := NewSequence(ints(5)...)
	assert.Equal(t, "2 3", seq.CopyAtMax(1, 2).String())
	assert.Equal(t, "4 5", seq.CopyAtMax(3, 10).String())
	assert.Equal(t, "", seq.CopyAtMax(9, 1).String())
	assert.Equal(t, "1 2 3 4 5", seq.CopyAtMax(-1, -1).String())
}

func TestSequenceDistinct(t *testing.T) {
	a := NewSequence(ints(2)...)
	b := NewSequence(ints(2)...)
	assert.True(t, Equal(Block(a), Block(b)))
	a.Append(Integer(3))
	assert.False(t, Equal(Block(a), Block(b)))
}

func TestMoldLineHints(t *testing.T) {
	seq := NewSequence(
		Word("a"),
		Word("b").WithLine(),
		BlockOf(Word("c"), Word("d").WithLine()),
	)
	assert.Equal(t, "a\nb [c\n    d\n]", seq.String())
	assert.Equal(t, "[a\n    b [c\n        d\n    ]\n]", Mold(Block(seq)))
}

func TestMoldValues(t *testing.T) {
	tests := []struct {
		v    Value
		mold string
	}{
		{Blank(), "_"},
		{Bar(), "|"},
		{Logic(true), "#[true]"},
		{Decimal(2), "2.0"},
		{Decimal(0.25), "0.25"},
		{String("a\n"), `"a\n"`},
		{SetWord("x"), "x:"},
		{GetWord("x"), ":x"},
		{LitWord("x"), "'x"},
		{Path(Word("a"), Integer(1)), "a/1"},
		{Slash(), "/"},
		{Refinement("only"), "/only"},
		{Group(NewSequence(Word("x"))), "(x)"},
		{ActionValue(NewNative("add", nil, nil)), "#[action! add]"},
		{FrameValue(FrameHandle{label: "foo"}), "#[frame! foo]"},
	}
	for _, test := range tests {
		assert.Equal(t, test.mold, Mold(test.v))
	}
}
