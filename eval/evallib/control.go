// Copyright © 2018 The ELPS authors

package evallib

import (
	"strings"

	"github.com/luthersystems/reval/eval"
)

func controlNatives() []*eval.Native {
	return []*eval.Native{
		{Name: "if", Formals: eval.Formals("condition", "branch block!"), Fun: nativeIf,
			Doc: `Evaluates branch when condition is neither blank nor false
			and returns its product.  Otherwise returns blank.`},
		{Name: "either", Formals: eval.Formals("condition", "true-branch block!", "false-branch block!"), Fun: nativeEither,
			Doc: `Evaluates true-branch or false-branch according to
			condition.`},
		{Name: "do", Formals: eval.Formals("source block! group! string! action!"), Fun: nativeDo,
			Doc: `Evaluates a block, or source text parsed by the runtime's
			reader.  An action is invoked with arguments gathered from the
			values following do.`},
		{Name: "eval", Formals: eval.Formals("value"), Fun: nativeEval,
			Doc: `Evaluates value as if it appeared in place of the call.
			Arguments for an action are gathered from the values
			following eval, and enfix operators following them apply.`},
		{Name: "apply", Formals: eval.Formals("action action!", "args block!"), Fun: nativeApply,
			Doc: `Invokes action with its arguments evaluated from args.  It
			is an error for args to hold more than the action consumes.`},
		{Name: "reduce", Formals: eval.Formals("block block! group!"), Fun: nativeReduce,
			Doc: `Evaluates each expression of block and returns a block of
			the products.`},
		{Name: "quote", Formals: eval.Formals("'value"), Fun: nativeQuote,
			Doc: `Returns value without evaluating it.`},
		{Name: "comment", Formals: eval.Formals("'discarded"), Fun: nativeInvisible, Invisible: true,
			Doc: `Skips the value following it and produces nothing.`},
		{Name: "elide", Formals: eval.Formals("discarded <end>"), Fun: nativeInvisible, Invisible: true,
			Doc: `Evaluates its argument and produces nothing.`},
		{Name: "throw", Formals: eval.Formals("value <end>", "/name", "word"), Fun: nativeThrow,
			Doc: `Throws value to the nearest catch, or the nearest catch
			with a matching /name.`},
		{Name: "catch", Formals: eval.Formals("block block!", "/name", "word"), Fun: nativeCatch,
			Doc: `Evaluates block, returning the value of a throw that
			reaches it.  With /name only throws with an equal name are
			caught.`},
		{Name: "fail", Formals: eval.Formals("reason string! block! word!"), Fun: nativeFail,
			Doc: `Raises an error.`},
		{Name: "func", Formals: eval.Formals("spec block!", "body block!"), Fun: nativeFunc,
			Doc: `Returns a new action.  Words of spec name parameters,
			lit-words name quoted parameters, get-words name soft quoted
			parameters and refinements start optional groups.  Within body
			return leaves the function with a value.`},
		{Name: "->", Formals: eval.Formals("'word word!", "body block!"), Fun: nativeLambda, Enfix: true,
			Doc: `Returns a new action of one parameter named by the word on
			its left.`},
		{Name: "enfix", Formals: eval.Formals("action action!"), Fun: nativeEnfix,
			Doc: `Returns a copy of action that takes its first argument from
			its left.`},
	}
}

// evalBranch evaluates branch into f.Out, producing blank if nothing is
// produced.
func evalBranch(rt *eval.Runtime, f *eval.Frame, branch eval.Value) (bool, error) {
	tmp := eval.End()
	threw, err := rt.EvalBlock(&tmp, branch, f.Feed.Context())
	if err != nil {
		return false, err
	}
	if threw {
		*f.Out = tmp
		return true, nil
	}
	if tmp.IsEnd() {
		tmp = eval.Blank()
	}
	*f.Out = tmp
	return false, nil
}

func nativeIf(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	if !f.Arg("condition").IsTruthy() {
		*f.Out = eval.Blank()
		return false, nil
	}
	return evalBranch(rt, f, f.Arg("branch"))
}

func nativeEither(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	if f.Arg("condition").IsTruthy() {
		return evalBranch(rt, f, f.Arg("true-branch"))
	}
	return evalBranch(rt, f, f.Arg("false-branch"))
}

func nativeDo(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	src := f.Arg("source")
	switch src.Kind {
	case eval.KindString:
		if rt.Reader == nil {
			return false, eval.Errorf(eval.ErrInvalidArgument, "no reader for runtime")
		}
		seq, err := rt.Reader.Read("do", strings.NewReader(src.Str))
		if err != nil {
			return false, eval.WrapError(eval.ErrInvalidArgument, err)
		}
		src = eval.Block(seq)
	case eval.KindAction:
		return rt.ReevaluateInSubframe(f.Out, f, src, 0)
	}
	return evalBranch(rt, f, src)
}

func nativeEval(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	tmp := eval.End()
	threw, err := rt.ReevaluateInSubframe(&tmp, f, f.Arg("value"), 0)
	if err != nil {
		return false, err
	}
	if threw || !tmp.IsEnd() {
		*f.Out = tmp
	}
	return threw, nil
}

func nativeApply(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	tmp := eval.End()
	args := f.Arg("args").Items()
	threw, err := rt.EvalStepVariadic(&tmp, f.Arg("action"), eval.Values(args...), f.Feed.Context(), eval.EvalNoResidue)
	if err != nil {
		return false, err
	}
	if threw || !tmp.IsEnd() {
		*f.Out = tmp
	}
	return threw, nil
}

func nativeReduce(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	v, threw, err := reduceBlock(rt, f.Arg("block"), f.Feed.Context())
	if threw || err == nil {
		*f.Out = v
	}
	return threw, err
}

// reduceBlock evaluates each expression of block, gathering the products on
// the data stack.  When evaluation throws the label of the throw is returned.
func reduceBlock(rt *eval.Runtime, block eval.Value, ctx *eval.Context) (eval.Value, bool, error) {
	var flags eval.FeedFlags
	if block.Const {
		flags |= eval.FeedConst
	}
	feed := eval.NewSequenceFeed(eval.End(), block.Seq, block.Index, ctx, flags)
	defer feed.Release()
	sub := eval.NewFrame(feed, nil, 0)
	err := rt.Stack.Push(sub)
	if err != nil {
		return eval.End(), false, err
	}
	defer rt.Stack.Drop(sub)

	dsp := rt.Data.Len()
	for !feed.AtEnd() {
		cell := eval.End()
		threw, err := rt.EvalStep(&cell, sub)
		if threw || err != nil {
			rt.Data.DropTo(dsp)
			return cell, threw, err
		}
		if !cell.IsEnd() {
			rt.Data.Push(cell)
		}
	}
	return eval.Block(rt.Data.PopSequence(dsp)), false, nil
}

func nativeQuote(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	*f.Out = f.Arg("value")
	return false, nil
}

func nativeInvisible(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	return false, nil
}

func nativeThrow(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	name := eval.Blank()
	if f.Ref("name") {
		name = f.Arg("word")
	}
	value := f.Arg("value")
	if value.IsEnd() {
		value = eval.Blank()
	}
	return rt.Throw(f.Out, name, value), nil
}

func nativeCatch(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	tmp := eval.End()
	threw, err := rt.EvalBlock(&tmp, f.Arg("block"), f.Feed.Context())
	if err != nil {
		return false, err
	}
	if !threw {
		if tmp.IsEnd() {
			tmp = eval.Blank()
		}
		*f.Out = tmp
		return false, nil
	}
	want := eval.Blank()
	if f.Ref("name") {
		want = f.Arg("word")
	}
	if !eval.Equal(tmp, want) {
		// Not ours; keep it in flight.
		*f.Out = tmp
		return true, nil
	}
	rt.CatchThrown(&tmp)
	*f.Out = tmp
	return false, nil
}

func nativeFail(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	reason := f.Arg("reason")
	switch reason.Kind {
	case eval.KindString:
		return false, eval.Errorf(eval.ErrUser, "%s", reason.Str)
	case eval.KindBlock:
		return false, eval.Errorf(eval.ErrUser, "%s", formItems(reason))
	}
	return false, eval.Errorf(eval.ErrUser, "%s", reason.Str)
}

func nativeFunc(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	params, err := eval.ParseSpec(f.Arg("spec"))
	if err != nil {
		return false, err
	}
	act := newFunction("function", params, f.Arg("body"), f.Feed.Context())
	for _, item := range f.Arg("spec").Items() {
		if item.Kind == eval.KindString {
			act.Doc = item.Str
			break
		}
	}
	*f.Out = eval.ActionValue(act)
	return false, nil
}

func nativeLambda(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	word := f.Arg("word")
	params := []eval.Param{{Name: word.Str, Refinement: -1}}
	act := newFunction("lambda", params, f.Arg("body"), f.Feed.Context())
	*f.Out = eval.ActionValue(act)
	return false, nil
}

func nativeEnfix(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	act := f.Arg("action").Action
	if _, ok := act.FirstParam(); !ok {
		return false, eval.Errorf(eval.ErrInvalidArgument, "%s has no argument to take from its left", act.Name)
	}
	*f.Out = eval.ActionValue(act.Enfixed())
	return false, nil
}

// newFunction returns an action which evaluates body in a new context
// inheriting from def, with its arguments bound to the names of params.  The
// word return is bound in that context to an action which throws to the
// invocation.
func newFunction(name string, params []eval.Param, body eval.Value, def *eval.Context) *eval.Action {
	return eval.NewNative(name, params, func(rt *eval.Runtime, f *eval.Frame) (bool, error) {
		ctx := eval.NewContext(def)
		for i, p := range params {
			arg := f.Args[i]
			if arg.IsEnd() {
				arg = eval.Blank()
			}
			ctx.Put(p.Name, arg)
		}
		self := eval.FrameValue(f.Handle())
		ctx.Put("return", eval.ActionValue(returnAction(self)))

		tmp := eval.End()
		threw, err := rt.EvalBlock(&tmp, body, ctx)
		if err != nil {
			return false, err
		}
		if threw {
			if !eval.Equal(tmp, self) {
				*f.Out = tmp
				return true, nil
			}
			rt.CatchThrown(&tmp)
		}
		if tmp.IsEnd() {
			tmp = eval.Blank()
		}
		*f.Out = tmp
		return false, nil
	})
}

func returnAction(target eval.Value) *eval.Action {
	return eval.NewNative("return", eval.Formals("value <end>"), func(rt *eval.Runtime, f *eval.Frame) (bool, error) {
		value := f.Arg("value")
		if value.IsEnd() {
			value = eval.Blank()
		}
		return rt.Throw(f.Out, target, value), nil
	})
}
