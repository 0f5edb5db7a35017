// Copyright © 2024 The ELPS authors

package eval

import (
	"strings"
)

// Kind is the datatype of a Value.
type Kind uint8

// Possible Kind values.
const (
	// KindEnd (0) is not a real datatype.  The zero Value has KindEnd and is
	// used as the "empty" sentinel for output cells and for the end of a
	// feed.
	KindEnd Kind = iota
	KindBlank
	// KindBar values are expression barriers (written `|`).  They are
	// invisible when evaluated and stop argument gathering.
	KindBar
	KindLogic
	KindInteger
	KindDecimal
	KindString
	// KindWord values store their spelling in Value.Str.  The same is true of
	// the other word kinds.
	KindWord
	KindSetWord
	KindGetWord
	KindLitWord
	// KindPath values use Value.Seq to store their segments.  A path whose
	// two segments are both blank is the `/` operator.  A path whose first
	// segment is blank is a refinement (e.g. `/only` in a function spec).
	KindPath
	// KindBlock and KindGroup values reference a Sequence and an index into
	// it.  Groups evaluate their contents, blocks are inert.
	KindBlock
	KindGroup
	KindAction
	// KindFrame values hold a FrameHandle referencing a call stack entry,
	// which may or may not still be live.
	KindFrame
	// KindMax is not a real datatype but is numerically greater than all
	// valid Kind values.
	KindMax
)

var kindStrings = []string{
	KindEnd:     "end!",
	KindBlank:   "blank!",
	KindBar:     "bar!",
	KindLogic:   "logic!",
	KindInteger: "integer!",
	KindDecimal: "decimal!",
	KindString:  "string!",
	KindWord:    "word!",
	KindSetWord: "set-word!",
	KindGetWord: "get-word!",
	KindLitWord: "lit-word!",
	KindPath:    "path!",
	KindBlock:   "block!",
	KindGroup:   "group!",
	KindAction:  "action!",
	KindFrame:   "frame!",
}

func (k Kind) String() string {
	if k >= KindMax {
		return "invalid!"
	}
	return kindStrings[k]
}

// KindOf returns the Kind named by a datatype name like "integer!".  The
// second return value is false if the name is unknown.
func KindOf(name string) (Kind, bool) {
	if !strings.HasSuffix(name, "!") {
		name += "!"
	}
	for k, s := range kindStrings {
		if s == name && Kind(k) != KindEnd {
			return Kind(k), true
		}
	}
	return KindEnd, false
}

// TypeSet is a set of kinds.  The zero TypeSet accepts any value.
type TypeSet uint32

// Types returns a TypeSet containing kinds.
func Types(kinds ...Kind) TypeSet {
	var ts TypeSet
	for _, k := range kinds {
		ts |= 1 << k
	}
	return ts
}

// Accepts returns true if values of kind k satisfy ts.
func (ts TypeSet) Accepts(k Kind) bool {
	if ts == 0 {
		return true
	}
	return ts&(1<<k) != 0
}

// IsAny returns true if ts is unconstrained.
func (ts TypeSet) IsAny() bool {
	return ts == 0
}

func (ts TypeSet) String() string {
	if ts == 0 {
		return "any-value!"
	}
	var names []string
	for k := KindBlank; k < KindMax; k++ {
		if ts&(1<<k) != 0 {
			names = append(names, k.String())
		}
	}
	return strings.Join(names, " ")
}

// Value is a cell in the evaluator.  Values are copied by value; copying a
// sequence value copies the reference to its Sequence, not the Sequence
// itself.
type Value struct {
	// Seq is used by path, block and group values.
	Seq *Sequence

	// Action is used by action values.
	Action *Action

	// Frame is used by frame values.
	Frame FrameHandle

	// Str stores the spelling of word kinds and the content of strings.
	Str string

	Int   int64
	Dec   float64
	Index int

	Kind Kind

	// Line is a display hint requesting a line break before the value when
	// it is molded inside a block.
	Line bool

	// Const marks a sequence value that may not be mutated through this
	// reference.
	Const bool

	stale bool
}

// End returns the empty sentinel value.
func End() Value { return Value{} }

// Blank returns a blank value.
func Blank() Value { return Value{Kind: KindBlank} }

// Bar returns an expression barrier.
func Bar() Value { return Value{Kind: KindBar} }

// Logic returns a logic value.
func Logic(b bool) Value {
	v := Value{Kind: KindLogic}
	if b {
		v.Int = 1
	}
	return v
}

// Integer returns an integer value.
func Integer(x int64) Value { return Value{Kind: KindInteger, Int: x} }

// Decimal returns a decimal value.
func Decimal(x float64) Value { return Value{Kind: KindDecimal, Dec: x} }

// String returns a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Word returns a word with the given spelling.
func Word(spelling string) Value { return Value{Kind: KindWord, Str: spelling} }

// SetWord returns a set-word with the given spelling.
func SetWord(spelling string) Value { return Value{Kind: KindSetWord, Str: spelling} }

// GetWord returns a get-word with the given spelling.
func GetWord(spelling string) Value { return Value{Kind: KindGetWord, Str: spelling} }

// LitWord returns a lit-word with the given spelling.
func LitWord(spelling string) Value { return Value{Kind: KindLitWord, Str: spelling} }

// Block returns a block value positioned at the head of seq.
func Block(seq *Sequence) Value { return Value{Kind: KindBlock, Seq: seq} }

// BlockOf returns a block value referencing a new sequence of vals.
func BlockOf(vals ...Value) Value { return Block(NewSequence(vals...)) }

// Group returns a group value positioned at the head of seq.
func Group(seq *Sequence) Value { return Value{Kind: KindGroup, Seq: seq} }

// Path returns a path value with the given segments.
func Path(segments ...Value) Value { return Value{Kind: KindPath, Seq: NewSequence(segments...)} }

// Slash returns the `/` path operator.
func Slash() Value { return Path(Blank(), Blank()) }

// Refinement returns a refinement such as `/only`.
func Refinement(name string) Value { return Path(Blank(), Word(name)) }

// ActionValue returns a value referencing act.
func ActionValue(act *Action) Value { return Value{Kind: KindAction, Action: act} }

// FrameValue returns a value holding h.
func FrameValue(h FrameHandle) Value { return Value{Kind: KindFrame, Frame: h} }

// IsEnd returns true if v is the empty sentinel.
func (v Value) IsEnd() bool { return v.Kind == KindEnd }

// IsStale returns true if v was preloaded into an output cell and no
// evaluation step overwrote it.
func (v Value) IsStale() bool { return v.stale }

// IsInert returns true if v evaluates to itself with no dispatch.
func (v Value) IsInert() bool {
	switch v.Kind {
	case KindBlank, KindLogic, KindInteger, KindDecimal, KindString, KindBlock, KindFrame:
		return true
	}
	return false
}

// IsWordKind returns true for any of the word kinds.
func (v Value) IsWordKind() bool {
	switch v.Kind {
	case KindWord, KindSetWord, KindGetWord, KindLitWord:
		return true
	}
	return false
}

// IsSequence returns true for values that reference a Sequence.
func (v Value) IsSequence() bool {
	switch v.Kind {
	case KindPath, KindBlock, KindGroup:
		return true
	}
	return false
}

// IsTruthy returns the conditional truth of v.  Only blank and false logic
// values are falsey.
func (v Value) IsTruthy() bool {
	switch v.Kind {
	case KindBlank, KindEnd:
		return false
	case KindLogic:
		return v.Int != 0
	}
	return true
}

// IsSlash returns true if v is the `/` path operator.
func (v Value) IsSlash() bool {
	if v.Kind != KindPath || v.Seq == nil || v.Seq.Len() != 2 {
		return false
	}
	return v.Seq.At(0).Kind == KindBlank && v.Seq.At(1).Kind == KindBlank
}

// IsRefinement returns true if v is a path of a blank and a word.
func (v Value) IsRefinement() bool {
	if v.Kind != KindPath || v.Seq == nil || v.Seq.Len() != 2 {
		return false
	}
	return v.Seq.At(0).Kind == KindBlank && v.Seq.At(1).Kind == KindWord
}

// Len returns the number of items from a sequence value's index to the tail
// of its Sequence.  Len returns 0 for non-sequence values and for positions
// past the tail.
func (v Value) Len() int {
	if !v.IsSequence() || v.Seq == nil {
		return 0
	}
	n := v.Seq.Len() - v.Index
	if n < 0 {
		return 0
	}
	return n
}

// Items returns a copy of the items of a sequence value from its index.
func (v Value) Items() []Value {
	n := v.Len()
	if n == 0 {
		return nil
	}
	items := make([]Value, n)
	copy(items, v.Seq.cells[v.Index:])
	return items
}

// WithLine returns a copy of v with the line hint set.
func (v Value) WithLine() Value {
	v.Line = true
	return v
}

// Equal reports whether a and b are structurally equal.  Display hints and
// const bits are ignored.  Sequences are compared item by item from their
// respective indexes.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindEnd, KindBlank, KindBar:
		return true
	case KindLogic, KindInteger:
		return a.Int == b.Int
	case KindDecimal:
		return a.Dec == b.Dec
	case KindString, KindWord, KindSetWord, KindGetWord, KindLitWord:
		return a.Str == b.Str
	case KindAction:
		return a.Action == b.Action
	case KindFrame:
		return a.Frame.Same(b.Frame)
	}
	if a.Len() != b.Len() {
		return false
	}
	for i, n := 0, a.Len(); i < n; i++ {
		if !Equal(a.Seq.At(a.Index+i), b.Seq.At(b.Index+i)) {
			return false
		}
	}
	return true
}
