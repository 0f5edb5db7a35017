// Copyright © 2024 The ELPS authors

package eval

import (
	"strconv"
	"strings"
)

const moldIndent = "    "

func (v Value) String() string {
	return Mold(v)
}

// Mold returns the source form of v.  Elements of blocks and groups carrying
// the Line hint are written at the start of a new, indented line.
func Mold(v Value) string {
	var m molder
	m.mold(v, 0)
	return m.buf.String()
}

// MoldItems returns the source form of the items in seq, without enclosing
// brackets, as if they were contained in a block at the given depth.
func MoldItems(seq *Sequence, depth int) string {
	m := molder{open: map[*Sequence]bool{seq: true}}
	m.moldItems(seq, 0, depth)
	return m.buf.String()
}

// molder writes source forms.  A sequence which contains itself is written
// as [...] where it recurs.
type molder struct {
	buf  strings.Builder
	open map[*Sequence]bool
}

func (m *molder) mold(v Value, depth int) {
	buf := &m.buf
	switch v.Kind {
	case KindEnd:
	case KindBlank:
		buf.WriteString("_")
	case KindBar:
		buf.WriteString("|")
	case KindLogic:
		if v.Int != 0 {
			buf.WriteString("#[true]")
		} else {
			buf.WriteString("#[false]")
		}
	case KindInteger:
		buf.WriteString(strconv.FormatInt(v.Int, 10))
	case KindDecimal:
		s := strconv.FormatFloat(v.Dec, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		buf.WriteString(s)
	case KindString:
		buf.WriteString(strconv.Quote(v.Str))
	case KindWord:
		buf.WriteString(v.Str)
	case KindSetWord:
		buf.WriteString(v.Str)
		buf.WriteString(":")
	case KindGetWord:
		buf.WriteString(":")
		buf.WriteString(v.Str)
	case KindLitWord:
		buf.WriteString("'")
		buf.WriteString(v.Str)
	case KindPath:
		for i, n := v.Index, v.Seq.Len(); i < n; i++ {
			if i > v.Index {
				buf.WriteString("/")
			}
			seg := v.Seq.At(i)
			if seg.Kind == KindBlank {
				continue
			}
			m.mold(seg, depth)
		}
	case KindBlock:
		m.moldNested(v, "[", "]", depth)
	case KindGroup:
		m.moldNested(v, "(", ")", depth)
	case KindAction:
		buf.WriteString("#[action! ")
		buf.WriteString(v.Action.Name)
		buf.WriteString("]")
	case KindFrame:
		buf.WriteString("#[frame! ")
		if v.Frame.label != "" {
			buf.WriteString(v.Frame.label)
		} else {
			buf.WriteString("_")
		}
		buf.WriteString("]")
	default:
		buf.WriteString("#[invalid!]")
	}
}

func (m *molder) moldNested(v Value, open, close string, depth int) {
	m.buf.WriteString(open)
	if m.open[v.Seq] {
		m.buf.WriteString(SymEllipsis)
	} else {
		if m.open == nil {
			m.open = make(map[*Sequence]bool)
		}
		m.open[v.Seq] = true
		m.moldItems(v.Seq, v.Index, depth+1)
		delete(m.open, v.Seq)
	}
	m.buf.WriteString(close)
}

// moldItems writes the items of seq from index.  End cells, such as unfilled
// arguments, are skipped.
func (m *molder) moldItems(seq *Sequence, index int, depth int) {
	buf := &m.buf
	broke := false
	first := true
	for i, n := index, seq.Len(); i < n; i++ {
		item := seq.At(i)
		if item.IsEnd() {
			continue
		}
		switch {
		case item.Line:
			broke = true
			buf.WriteString("\n")
			buf.WriteString(strings.Repeat(moldIndent, depth))
		case !first:
			buf.WriteString(" ")
		}
		first = false
		m.mold(item, depth)
	}
	if broke && depth > 0 {
		buf.WriteString("\n")
		buf.WriteString(strings.Repeat(moldIndent, depth-1))
	}
}
