// Copyright © 2024 The ELPS authors

package eval

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// level is one frame visited by walkLevels.
type level struct {
	frame   *Frame
	number  int
	pending bool
	pause   bool
}

// walkLevels visits the frames of the stack from the top to the base,
// numbering them the way backtraces show them.  Guard-only frames are not
// visited.  Running frames are numbered from 1, except that a leading pause
// frame is numbered 0.  Pending frames are not numbered.  Level resolution
// and backtrace listing both number frames with walkLevels, so they always
// agree.
func (rt *Runtime) walkLevels(skipCurrent bool, fn func(lvl level) bool) {
	frames := rt.Stack.Frames
	top := len(frames) - 1
	if skipCurrent {
		top--
	}
	first := true
	number := 0
	for i := top; i >= 0; i-- {
		f := frames[i]
		if f.Mode == ModeGuardOnly {
			continue
		}
		lvl := level{frame: f}
		if f.Mode.IsPending() {
			lvl.pending = true
		} else {
			if first && rt.IsPause(f) {
				lvl.pause = true
			} else {
				number++
			}
			first = false
			lvl.number = number
		}
		if !fn(lvl) {
			return
		}
	}
}

// FrameForLevel resolves a level selector to a frame on the stack.  The
// selector may be
//
//   - End or blank, for the first running frame which is not a pause,
//   - a non-negative integer, for the running frame with that number (0 only
//     matches a leading pause frame),
//   - an action, for the most recent running invocation of it, or
//   - a frame handle, for the frame it references, running or pending.
//
// If skipCurrent is true the top frame, normally that of the caller, is not
// considered.  The level number of the frame is returned along with it;
// pending frames have no number and report -1.
func (rt *Runtime) FrameForLevel(sel Value, skipCurrent bool) (*Frame, int, bool) {
	if sel.Kind == KindInteger && sel.Int < 0 {
		return nil, 0, false
	}
	var found *Frame
	number := -1
	rt.walkLevels(skipCurrent, func(lvl level) bool {
		var match bool
		switch sel.Kind {
		case KindEnd, KindBlank:
			match = !lvl.pending && !lvl.pause
		case KindInteger:
			match = !lvl.pending && int64(lvl.number) == sel.Int
		case KindAction:
			match = !lvl.pending && !lvl.pause && lvl.frame.Action == sel.Action
		case KindFrame:
			f, ok := sel.Frame.Live()
			match = ok && f == lvl.frame
		}
		if !match {
			return true
		}
		found = lvl.frame
		if !lvl.pending {
			number = lvl.number
		}
		return false
	})
	return found, number, found != nil
}

// BacktraceOptions control Backtrace.
type BacktraceOptions struct {
	// Level selects a single frame, as FrameForLevel does.  When Level is
	// End or blank the backtrace is listed instead.
	Level Value
	// Limit bounds the number of rows listed.  End selects the runtime
	// default, blank lists every frame.
	Limit Value
	// Brief lists only the label of each frame.
	Brief bool
	// SkipCurrent omits the top frame.
	SkipCurrent bool
}

// Backtrace returns a frame value for the frame selected by opts.Level, or
// lists the frames on the stack.
//
// The listing is filled back to front, so the most recent frame is last.
// Each frame contributes its number, or `*` when it is pending, followed by
// its where summary.  Brief listings contain only labels.  If the frames do
// not fit within the limit the final row is the pair `* +` (just `+` when
// brief).
func (rt *Runtime) Backtrace(opts BacktraceOptions) (Value, error) {
	direct := !(opts.Level.IsEnd() || opts.Level.Kind == KindBlank)
	if direct {
		if !opts.Limit.IsEnd() || opts.Brief {
			return End(), Errorf(ErrConflictingOptions, "a backtrace level cannot be combined with a limit or brief listing")
		}
		if opts.Level.Kind == KindInteger && opts.Level.Int < 0 {
			return End(), Errorf(ErrInvalidArgument, "negative backtrace level: %d", opts.Level.Int)
		}
		f, _, ok := rt.FrameForLevel(opts.Level, opts.SkipCurrent)
		if !ok {
			return End(), Errorf(ErrInvalidArgument, "no frame at backtrace level %v", opts.Level)
		}
		return FrameValue(f.Handle()), nil
	}

	maxRows, err := rt.maxRows(opts.Limit)
	if err != nil {
		return End(), err
	}
	perRow := 2
	if opts.Brief {
		perRow = 1
	}

	index := 0
	row := 0
	rt.walkLevels(opts.SkipCurrent, func(lvl level) bool {
		index += perRow
		row++
		return row < maxRows
	})

	cells := make([]Value, index)
	row = 0
	rt.walkLevels(opts.SkipCurrent, func(lvl level) bool {
		row++
		if row >= maxRows {
			index--
			cells[index] = Word(SymPlus)
			if !opts.Brief {
				index--
				cells[index] = Word(SymAsterisk).WithLine()
			}
			return false
		}
		if checkInvariants && !lvl.pending {
			f, n, _ := rt.FrameForLevel(Integer(int64(lvl.number)), opts.SkipCurrent)
			checkf(f == lvl.frame && n == lvl.number, "backtrace level %d does not resolve to its frame", lvl.number)
		}
		index--
		if opts.Brief {
			cells[index] = labelValue(lvl.frame.Label)
			return true
		}
		cells[index] = Block(rt.WhereFor(lvl.frame))
		index--
		if lvl.pending {
			cells[index] = Word(SymAsterisk).WithLine()
		} else {
			cells[index] = Integer(int64(lvl.number)).WithLine()
		}
		return true
	})
	checkf(index == 0, "backtrace filled with %d slots left over", index)
	return Block(NewSequence(cells...)), nil
}

// maxRows returns the number of rows a listing may have, counting the row
// reserved for the elision marker.
func (rt *Runtime) maxRows(limit Value) (int, error) {
	switch limit.Kind {
	case KindEnd:
		return rt.BacktraceRows, nil
	case KindBlank:
		return math.MaxInt, nil
	case KindInteger:
		if limit.Int < 0 {
			return 0, Errorf(ErrInvalidArgument, "negative backtrace limit: %d", limit.Int)
		}
		if limit.Int >= math.MaxInt32 {
			return math.MaxInt, nil
		}
		return int(limit.Int) + 1, nil
	}
	return 0, Errorf(ErrTypeMismatch, "backtrace limit must be an integer or blank, got %v", limit.Kind)
}

// WhereFor summarizes what f is evaluating: its label followed by the
// values of its feed from the start of its current expression up to the
// feed's position, with `...` appended when f is pending.  Nested
// sequences longer than the runtime's collapse limit are collapsed.  A
// variadic feed is reified first.
func (rt *Runtime) WhereFor(f *Frame) *Sequence {
	feed := f.Feed
	if feed.IsVariadic() {
		feed.Reify()
		rt.Log.WithField("label", f.Label).Debug("reified variadic feed")
	}
	src := feed.Sequence()
	n := src.Len()
	start := f.ExprIndex
	if f.exprVirtual {
		start = feed.translate(start)
	}
	end := feed.Index()
	if start > n || end > n {
		rt.Log.WithFields(logrus.Fields{
			"label":  f.Label,
			"start":  start,
			"end":    end,
			"length": n,
		}).Debug("where range clamped to mutated source")
	}
	if end > n {
		end = n
	}
	if start > end {
		start = end
	}

	where := MakeSequence(end - start + 2)
	where.Append(labelValue(f.Label))
	for i := start; i < end; i++ {
		where.Append(src.At(i))
	}
	if end > start {
		head := where.At(1)
		head.Line = false
		where.Set(1, head)
	}
	collapseNested(where, rt.CollapseLimit, map[*Sequence]bool{src: true})
	if f.Mode.IsPending() {
		where.Append(Word(SymEllipsis))
	}
	return where
}

func labelValue(label string) Value {
	if label == "" {
		return Blank()
	}
	return Word(label)
}

// Record is a flattened backtrace row.
type Record struct {
	Level   int    `yaml:"level" json:"level"`
	Pending bool   `yaml:"pending,omitempty" json:"pending,omitempty"`
	Label   string `yaml:"label" json:"label"`
	Where   string `yaml:"where" json:"where"`
}

func (r Record) String() string {
	if r.Pending {
		return fmt.Sprintf("* %s", r.Where)
	}
	return fmt.Sprintf("%d %s", r.Level, r.Where)
}

// Records returns every running and pending frame on the stack, the most
// recent last.
func (rt *Runtime) Records() []Record {
	var recs []Record
	rt.walkLevels(false, func(lvl level) bool {
		recs = append(recs, Record{
			Level:   lvl.number,
			Pending: lvl.pending,
			Label:   lvl.frame.Label,
			Where:   Mold(Block(rt.WhereFor(lvl.frame))),
		})
		return true
	})
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs
}
