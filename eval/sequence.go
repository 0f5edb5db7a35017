// Copyright © 2024 The ELPS authors

package eval

// Sequence is an ordered container of values.  Two sequences are distinct
// entities even when their contents are equal.
//
// Sequences may be mutated by the code that is being evaluated over them.
// Readers must tolerate the length changing between any two accesses.
type Sequence struct {
	cells []Value
	holds int
}

// NewSequence returns a sequence containing a copy of vals.
func NewSequence(vals ...Value) *Sequence {
	cells := make([]Value, len(vals))
	copy(cells, vals)
	for i := range cells {
		cells[i].stale = false
	}
	return &Sequence{cells: cells}
}

// MakeSequence returns an empty sequence with capacity for n values.
func MakeSequence(n int) *Sequence {
	return &Sequence{cells: make([]Value, 0, n)}
}

// Len returns the number of values in s.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.cells)
}

// At returns the value at index i.  At returns the End sentinel for indexes
// outside of s.
func (s *Sequence) At(i int) Value {
	if s == nil || i < 0 || i >= len(s.cells) {
		return End()
	}
	return s.cells[i]
}

// Set replaces the value at index i.
func (s *Sequence) Set(i int, v Value) {
	v.stale = false
	s.cells[i] = v
}

// Append adds vals to the tail of s.
func (s *Sequence) Append(vals ...Value) {
	for _, v := range vals {
		v.stale = false
		s.cells = append(s.cells, v)
	}
}

// Insert inserts v at index i, shifting later values toward the tail.  An
// index past the tail appends.
func (s *Sequence) Insert(i int, v Value) {
	v.stale = false
	if i >= len(s.cells) {
		s.cells = append(s.cells, v)
		return
	}
	if i < 0 {
		i = 0
	}
	s.cells = append(s.cells, Value{})
	copy(s.cells[i+1:], s.cells[i:])
	s.cells[i] = v
}

// Remove deletes up to n values starting at index i.
func (s *Sequence) Remove(i, n int) {
	if i < 0 || i >= len(s.cells) || n <= 0 {
		return
	}
	end := i + n
	if end > len(s.cells) {
		end = len(s.cells)
	}
	copy(s.cells[i:], s.cells[end:])
	for j := len(s.cells) - (end - i); j < len(s.cells); j++ {
		s.cells[j] = Value{}
	}
	s.cells = s.cells[:len(s.cells)-(end-i)]
}

// Clear truncates s at index i.
func (s *Sequence) Clear(i int) {
	if i < 0 {
		i = 0
	}
	if i >= len(s.cells) {
		return
	}
	for j := i; j < len(s.cells); j++ {
		s.cells[j] = Value{}
	}
	s.cells = s.cells[:i]
}

// CopyAtMax returns a new sequence holding a shallow copy of at most max
// values of s starting at index.  Out of range arguments are clamped.
func (s *Sequence) CopyAtMax(index, max int) *Sequence {
	n := s.Len()
	if index < 0 {
		index = 0
	}
	if index > n {
		index = n
	}
	end := n
	if max >= 0 && index+max < end {
		end = index + max
	}
	return NewSequence(s.cells[index:end]...)
}

// Hold marks s as protected from reclamation.  Holds nest.
func (s *Sequence) Hold() { s.holds++ }

// Release undoes one Hold.
func (s *Sequence) Release() {
	if s.holds > 0 {
		s.holds--
	}
}

// IsHeld returns true while s has outstanding holds.
func (s *Sequence) IsHeld() bool { return s.holds > 0 }

// String molds s as the contents of a block.
func (s *Sequence) String() string {
	return MoldItems(s, 0)
}

// Collapse returns a display copy of seq.  When seq holds more than limit
// values the copy is truncated to limit values and a trailing `...` word is
// appended.  Nested sequence values longer than limit are replaced, at every
// depth, by collapsed copies.  Neither seq nor any nested sequence is
// modified.  A sequence nested within itself is replaced by [...] where it
// recurs.
func Collapse(seq *Sequence, limit int) *Sequence {
	return CollapseAt(seq, 0, limit)
}

// CollapseAt is like Collapse but copies seq from index.
func CollapseAt(seq *Sequence, index int, limit int) *Sequence {
	cp := collapseCopy(seq, index, limit)
	collapseNested(cp, limit, map[*Sequence]bool{seq: true})
	return cp
}

func collapseCopy(seq *Sequence, index int, limit int) *Sequence {
	if seq.Len()-index > limit {
		cp := seq.CopyAtMax(index, limit)
		cp.Append(Word(SymEllipsis))
		return cp
	}
	return seq.CopyAtMax(index, -1)
}

// collapseNested replaces overlong nested sequences of seq in place.  Only
// seq itself, which must be a private copy, is modified.  Sequences in path
// are being collapsed by a caller and are not entered again.
func collapseNested(seq *Sequence, limit int, path map[*Sequence]bool) {
	for i, n := 0, seq.Len(); i < n; i++ {
		item := seq.cells[i]
		if item.Kind != KindBlock && item.Kind != KindGroup {
			continue
		}
		var cp *Sequence
		if path[item.Seq] {
			cp = NewSequence(Word(SymEllipsis))
		} else {
			cp = collapseCopy(item.Seq, item.Index, limit)
			path[item.Seq] = true
			collapseNested(cp, limit, path)
			delete(path, item.Seq)
		}
		item.Seq = cp
		item.Index = 0
		seq.cells[i] = item
	}
}
