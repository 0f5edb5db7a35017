// Copyright © 2024 The ELPS authors

package eval

import (
	"errors"
)

// evalCore dispatches one expression of the feed of f into f.Out and then
// performs enfix lookahead.  The frame must be pushed.
func (rt *Runtime) evalCore(f *Frame) (threw bool, err error) {
	feed := f.Feed
	out := f.Out
	ctx := feed.ctx

	switch {
	case f.Flags.Has(EvalPostSwitch):
		// The fast path already consumed the left hand value.
		f.Flags &^= EvalPostSwitch | EvalInertOptimization
		f.markExprStart(-1)
		return rt.lookahead(f)
	case f.Flags.Has(EvalReevaluateCell):
		f.Flags &^= EvalReevaluateCell
		f.Current = f.reeval
		f.reeval = End()
		f.markExprStart(-1)
	default:
		if feed.AtEnd() {
			return false, nil
		}
		f.Current = feed.value
		f.markExprStart(0)
		feed.Advance()
	}
	current := f.Current

	if rt.tracing() {
		rt.Tracer.Step(f)
	}

	switch current.Kind {
	case KindBar:
		feed.SetFlag(FeedBarrierHit)
		return false, nil

	case KindWord:
		if act, _ := rt.enfixAt(feed); act != nil && act.QuotesFirst() {
			// The enfix action to the right quotes this word as its left
			// hand argument.
			*out = current
			out.Line = false
			break
		}
		v, ok := ctx.Get(current.Str)
		if !ok {
			return false, Errorf(ErrNoValue, "%s has no value", current.Str)
		}
		if v.Kind == KindAction {
			threw, err = rt.invoke(f, v.Action, current.Str, nil, headLeft(v.Action))
			if threw || err != nil {
				return threw, err
			}
			break
		}
		*out = v

	case KindSetWord:
		if feed.AtEnd() || feed.value.Kind == KindBar {
			return false, Errorf(ErrNeedValue, "%v is missing its value", current)
		}
		exprIndex, exprVirtual := f.ExprIndex, f.exprVirtual
		out.stale = true
		threw, err = rt.EvalStepMidFrame(f, f.Flags&^EvalToEnd)
		f.ExprIndex, f.exprVirtual = exprIndex, exprVirtual
		f.Current = current
		if threw || err != nil {
			return threw, err
		}
		if out.stale {
			return false, Errorf(ErrNeedValue, "%v is missing its value", current)
		}
		ctx.Set(current.Str, *out)
		// Lookahead has been performed by the nested step.
		return false, nil

	case KindGetWord:
		v, ok := ctx.Get(current.Str)
		if !ok {
			return false, Errorf(ErrNoValue, "%s has no value", current.Str)
		}
		*out = v

	case KindLitWord:
		*out = Word(current.Str)

	case KindGroup:
		tmp := End()
		threw, err = rt.EvalBlock(&tmp, current, ctx)
		if threw {
			*out = tmp
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if !tmp.IsEnd() {
			*out = tmp
		}

	case KindPath:
		threw, err = rt.evalPath(f, current)
		if threw || err != nil {
			return threw, err
		}

	case KindAction:
		threw, err = rt.invoke(f, current.Action, "", nil, headLeft(current.Action))
		if threw || err != nil {
			return threw, err
		}

	default:
		// inert
		*out = current
		out.Line = false
	}

	return rt.lookahead(f)
}

// headLeft returns the left hand argument of an action found at the head of
// an expression, where there is nothing to its left.
func headLeft(act *Action) *Value {
	if !act.Enfix {
		return nil
	}
	left := End()
	return &left
}

// lookahead invokes enfix actions following the value in f.Out, left to
// right, using the output as their first argument.  A pending no-lookahead
// is consumed here.
func (rt *Runtime) lookahead(f *Frame) (bool, error) {
	feed := f.Feed
	defer feed.ClearFlag(FeedNoLookahead)
	for !feed.AtEnd() {
		act, label := rt.enfixAt(feed)
		if act == nil {
			return false, nil
		}
		first, _ := act.FirstParam()
		if feed.TakeNoLookahead() {
			if !(act.QuotesFirst() && first.Class == ParamHardQuote) {
				return false, nil
			}
		}
		left := *f.Out
		if act.SkippableFirst() && !left.IsEnd() && !first.Types.Accepts(left.Kind) {
			return false, nil
		}
		feed.Advance()
		threw, err := rt.invoke(f, act, label, nil, &left)
		if threw || err != nil {
			return threw, err
		}
	}
	return false, nil
}

// enfixAt returns the enfix action referenced by the lookahead of feed, if
// any, and the label it is referenced by.
func (rt *Runtime) enfixAt(feed *Feed) (*Action, string) {
	v := feed.value
	var act *Action
	var label string
	switch {
	case v.Kind == KindWord:
		act, label = feed.ctx.Action(v.Str), v.Str
	case v.IsSlash():
		act, label = feed.ctx.Action(SymSlash), SymSlash
	}
	if act == nil || !act.Enfix {
		return nil, ""
	}
	return act, label
}

// invoke gathers the arguments of act from the feed of f and runs it,
// writing the product into f.Out.  Left is the left hand argument of an
// enfix invocation.  The frame moves through ModeArgs and
// ModeRefinementPickup into ModeFunction and returns to ModeGuardOnly when
// the action is finished.
func (rt *Runtime) invoke(f *Frame, act *Action, label string, refinements []string, left *Value) (threw bool, err error) {
	feed := f.Feed
	f.Action = act
	f.Label = label
	f.refinements = refinements
	f.Args = make([]Value, len(act.Params))
	f.Mode = ModeArgs
	f.serial = f.stack.nextSerial()
	defer func() {
		f.Mode = ModeGuardOnly
		f.Action = nil
		f.Label = ""
		f.Args = nil
		f.refinements = nil
	}()

	// A no-lookahead pending for the enclosing argument applies after this
	// invocation, not to its arguments.
	noLookahead := feed.TakeNoLookahead()
	threw, err = rt.gatherArgs(f, left)
	if noLookahead {
		feed.SetFlag(FeedNoLookahead)
	}
	if threw {
		return true, nil
	}
	if err != nil {
		return false, rt.annotate(f, err)
	}

	f.Mode = ModeFunction
	if rt.tracing() {
		done := rt.Tracer.Start(f)
		defer done()
	}
	if act.Native == nil {
		return false, rt.annotate(f, Errorf(ErrInvalidArgument, "action %s has no implementation", act.Name))
	}
	prior := *f.Out
	threw, err = act.Native(rt, f)
	if err != nil {
		return false, rt.annotate(f, err)
	}
	if act.Invisible && !threw {
		*f.Out = prior
	}
	return threw, nil
}

// gatherArgs fills f.Args.  Ordinary parameters are gathered in order, then
// the parameters of each refinement in the order the refinements appear in
// the invoking path.
func (rt *Runtime) gatherArgs(f *Frame, left *Value) (bool, error) {
	act := f.Action
	for i, p := range act.Params {
		if p.Class == ParamRefinement {
			f.Args[i] = Logic(false)
		}
	}
	for _, name := range f.refinements {
		i := act.ParamIndex(name)
		if i < 0 || act.Params[i].Class != ParamRefinement {
			return false, Errorf(ErrInvalidArgument, "%s has no refinement /%s", f.name(), name)
		}
		if f.Args[i].IsTruthy() {
			return false, Errorf(ErrInvalidArgument, "refinement /%s used twice", name)
		}
		f.Args[i] = Logic(true)
	}

	for i, p := range act.Params {
		if p.Class == ParamRefinement || p.Refinement >= 0 {
			continue
		}
		if left != nil {
			v := *left
			left = nil
			v.stale = false
			if v.IsEnd() {
				if !p.Endable {
					return false, Errorf(ErrNeedValue, "%s is missing its %s argument", f.name(), p.Name)
				}
				continue
			}
			if !p.Types.Accepts(v.Kind) {
				return false, rt.typeError(f, p, v)
			}
			f.Args[i] = v
			continue
		}
		threw, err := rt.gatherArg(f, i)
		if threw || err != nil {
			return threw, err
		}
	}

	if len(f.refinements) == 0 {
		return false, nil
	}
	f.Mode = ModeRefinementPickup
	for _, name := range f.refinements {
		r := act.ParamIndex(name)
		for i := r + 1; i < len(act.Params) && act.Params[i].Refinement == r; i++ {
			threw, err := rt.gatherArg(f, i)
			if threw || err != nil {
				return threw, err
			}
		}
	}
	return false, nil
}

// gatherArg fills f.Args[i] from the feed of f.
func (rt *Runtime) gatherArg(f *Frame, i int) (bool, error) {
	p := f.Action.Params[i]
	feed := f.Feed
	slot := &f.Args[i]
	*slot = End()

	if rt.argEnded(feed) {
		if p.Endable {
			return false, nil
		}
		return false, Errorf(ErrNeedValue, "%s is missing its %s argument", f.name(), p.Name)
	}

	switch p.Class {
	case ParamHardQuote, ParamSoftQuote:
		v := feed.value
		if p.Skippable && !p.Types.Accepts(v.Kind) {
			return false, nil
		}
		feed.Advance()
		if p.Class == ParamSoftQuote && (v.Kind == KindGroup || v.Kind == KindGetWord) {
			threw, err := rt.ReevaluateInSubframe(slot, f, v, EvalFulfillingArg)
			if threw {
				*f.Out = *slot
				return true, nil
			}
			if err != nil {
				return false, err
			}
			break
		}
		v.Line = false
		*slot = v

	default:
		if p.Skippable {
			v := feed.value
			if v.IsInert() && !p.Types.Accepts(v.Kind) {
				return false, nil
			}
		}
		for {
			if f.Action.Enfix {
				// Enfix arguments do not look ahead, so chains of enfix
				// operators evaluate left to right.
				feed.SetFlag(FeedNoLookahead)
			}
			threw, err := rt.EvalStepInSubframe(slot, f, EvalFulfillingArg)
			feed.ClearFlag(FeedNoLookahead)
			if threw {
				*f.Out = *slot
				return true, nil
			}
			if err != nil {
				return false, err
			}
			if !slot.IsEnd() {
				break
			}
			// The step was invisible; the argument is the next step.
			if rt.argEnded(feed) {
				if p.Endable {
					return false, nil
				}
				return false, Errorf(ErrNeedValue, "%s is missing its %s argument", f.name(), p.Name)
			}
		}
		slot.Line = false
	}

	if !slot.IsEnd() && !p.Types.Accepts(slot.Kind) {
		return false, rt.typeError(f, p, *slot)
	}
	return false, nil
}

// argEnded returns true if argument gathering cannot continue on feed.  A
// `|` in the argument position sets FeedBarrierHit.
func (rt *Runtime) argEnded(feed *Feed) bool {
	if feed.AtEnd() {
		return true
	}
	if feed.value.Kind == KindBar {
		feed.SetFlag(FeedBarrierHit)
		return true
	}
	return false
}

func (rt *Runtime) typeError(f *Frame, p Param, v Value) error {
	return Errorf(ErrTypeMismatch, "%s does not allow %v for its %s argument", f.name(), v.Kind, p.Name)
}

// evalPath dispatches a path.  The `/` path invokes the action bound to `/`.
// A path headed by an action invokes it with the remaining segments as
// refinements.  Other paths select into the value of their head.
func (rt *Runtime) evalPath(f *Frame, path Value) (bool, error) {
	ctx := f.Feed.ctx
	if path.IsSlash() {
		v, ok := ctx.Get(SymSlash)
		if !ok || v.Kind != KindAction {
			return false, Errorf(ErrNoValue, "/ has no value")
		}
		return rt.invoke(f, v.Action, SymSlash, nil, headLeft(v.Action))
	}
	segs := path.Items()
	if len(segs) == 0 {
		return false, Errorf(ErrInvalidArgument, "empty path")
	}
	head := segs[0]
	if head.Kind == KindBlank {
		// A refinement evaluates to itself.
		*f.Out = path
		f.Out.Line = false
		return false, nil
	}
	if head.Kind != KindWord {
		return false, Errorf(ErrInvalidArgument, "path %v must start with a word", path)
	}
	v, ok := ctx.Get(head.Str)
	if !ok {
		return false, Errorf(ErrNoValue, "%s has no value", head.Str)
	}
	if v.Kind == KindAction {
		refs := make([]string, 0, len(segs)-1)
		for _, seg := range segs[1:] {
			if seg.Kind != KindWord {
				return false, Errorf(ErrInvalidArgument, "refinement %v in path %v is not a word", seg, path)
			}
			refs = append(refs, seg.Str)
		}
		return rt.invoke(f, v.Action, head.Str, refs, headLeft(v.Action))
	}
	for _, seg := range segs[1:] {
		var err error
		v, err = Pick(v, seg)
		if err != nil {
			return false, err
		}
	}
	*f.Out = v
	return false, nil
}

// Pick selects from a block or group.  An integer picks by 1-based position
// and a word selects the value following the first word with the same
// spelling.  Pick returns blank when nothing is selected.
func Pick(v Value, picker Value) (Value, error) {
	if !v.IsSequence() {
		return End(), Errorf(ErrTypeMismatch, "cannot pick from %v", v.Kind)
	}
	switch picker.Kind {
	case KindInteger:
		i := int(picker.Int) - 1
		if i < 0 || i >= v.Len() {
			return Blank(), nil
		}
		item := v.Seq.At(v.Index + i)
		item.Line = false
		return item, nil
	case KindWord:
		for i, n := v.Index, v.Seq.Len(); i < n-1; i++ {
			item := v.Seq.At(i)
			if item.IsWordKind() && item.Str == picker.Str {
				next := v.Seq.At(i + 1)
				next.Line = false
				return next, nil
			}
		}
		return Blank(), nil
	}
	return End(), Errorf(ErrInvalidArgument, "cannot pick with %v", picker.Kind)
}

// annotate attaches the label of f and a backtrace to err the first time
// err leaves an action.
func (rt *Runtime) annotate(f *Frame, err error) error {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Message: err.Error(), Cause: err}
		if errors.Is(err, ErrStackOverflow) {
			e.Condition = ErrStackOverflow
		}
	}
	if e.Stack == nil {
		e.Stack = rt.Records()
		if f != nil {
			e.Label = f.name()
		}
	}
	return e
}

// markExprStart records the current feed position, adjusted by delta, as
// the start of the expression f is evaluating.
func (f *Frame) markExprStart(delta int) {
	p := f.Feed.pos() + delta
	if p < 0 {
		p = 0
	}
	f.ExprIndex = p
	f.exprVirtual = f.Feed.IsVariadic()
}

// name returns the label of f, or the name of its action.
func (f *Frame) name() string {
	if f.Label != "" {
		return f.Label
	}
	if f.Action != nil {
		return f.Action.Name
	}
	return ""
}
