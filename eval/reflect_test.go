// Copyright © 2024 The ELPS authors

package eval_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/luthersystems/reval/eval"
	"github.com/luthersystems/reval/evaltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nested defines a, b and c where a calls b which calls c, and c evaluates
// body.
func nested(body string) evaltest.TestSequence {
	return evaltest.TestSequence{
		{`c: func [] ` + body, `#[action! function]`, ``},
		{`b: func [] [c]`, `#[action! function]`, ``},
		{`a: func [] [b]`, `#[action! function]`, ``},
	}
}

func withCall(seq evaltest.TestSequence, expr, result, output string) evaltest.TestSequence {
	return append(seq, struct {
		Expr   string
		Result string
		Output string
	}{expr, result, output})
}

func TestBacktrace(t *testing.T) {
	tests := evaltest.TestSuite{
		{"limited listing", withCall(nested(`[backtrace/quiet/limit 2]`),
			`a`, "[\n    * +\n    2 [b]\n    1 [c]\n]", ``)},
		{"unlimited listing", withCall(nested(`[backtrace/quiet/limit _]`),
			`a`, "[\n    3 [a]\n    2 [b]\n    1 [c]\n]", ``)},
		{"zero limit", withCall(nested(`[backtrace/quiet/limit 0]`),
			`a`, "[\n    * +\n]", ``)},
		{"brief listing", withCall(nested(`[backtrace/quiet/brief]`),
			`a`, `[a b c]`, ``)},
		{"brief limited listing", withCall(nested(`[backtrace/quiet/brief/limit 1]`),
			`a`, `[+ c]`, ``)},
		{"printed listing", withCall(nested(`[backtrace/limit 0]`),
			`a`, `_`, "  * +\n")},
		{"pending frames", withCall(
			append(nested(`[id backtrace/quiet]`), struct {
				Expr   string
				Result string
				Output string
			}{`id: func [x] [x]`, `#[action! function]`, ``}),
			`a`, "[\n    3 [a]\n    2 [b]\n    1 [c]\n    * [id backtrace/quiet ...]\n]", ``)},
		{"collapsed where", withCall(
			append(nested(`[id2 [1 2 3 4 5] backtrace/quiet/limit 1]`), struct {
				Expr   string
				Result string
				Output string
			}{`id2: func [x y] [y]`, `#[action! function]`, ``}),
			`a`, "[\n    * +\n    * [id2 [1 2 3 ...] backtrace/quiet/limit 1 ...]\n]", ``)},
		{"direct lookup", withCall(nested(`[label-of backtrace/at 2]`),
			`a`, `b`, ``)},
		{"direct lookup by action", withCall(nested(`[label-of backtrace/at :b]`),
			`a`, `b`, ``)},
		{"conflicting options", withCall(nested(`[backtrace/at/limit 1 2]`),
			`a`, `#[error! conflicting-options]`, ``)},
		{"conflicting brief", withCall(nested(`[backtrace/at/brief 1]`),
			`a`, `#[error! conflicting-options]`, ``)},
		{"negative level", withCall(nested(`[backtrace/at -1]`),
			`a`, `#[error! invalid-argument]`, ``)},
		{"missing level", withCall(nested(`[backtrace/at 9]`),
			`a`, `#[error! invalid-argument]`, ``)},
		{"negative limit", withCall(nested(`[backtrace/limit -1]`),
			`a`, `#[error! invalid-argument]`, ``)},
		{"backtrace index", withCall(nested(`[reduce [backtrace-index :a backtrace-index :c backtrace-index :reduce]]`),
			`a`, `[4 2 1]`, ``)},
		{"where of levels", withCall(nested(`[x: 10 where-of 1]`),
			`a`, `[c]`, ``)},
		{"where of blank", withCall(nested(`[where-of _]`),
			`a`, `[c]`, ``)},
		{"function of", withCall(nested(`[function-of 2]`),
			`a`, `#[action! function]`, ``)},
	}
	evaltest.RunTestSuite(t, tests)
}

func TestFrameValues(t *testing.T) {
	tests := evaltest.TestSuite{
		{"running during the call", withCall(nested(`[running? backtrace/at 1]`),
			`a`, `#[true]`, ``)},
		{"not pending during the call", withCall(nested(`[pending? backtrace/at 1]`),
			`a`, `#[false]`, ``)},
		{"dead after the call", evaltest.TestSequence{
			{`c: func [] [backtrace/at 1]`, `#[action! function]`, ``},
			{`h: c`, `#[frame! c]`, ``},
			{`running? h`, `#[false]`, ``},
			{`pending? h`, `#[false]`, ``},
			{`label-of h`, `_`, ``},
			{`function-of h`, `#[action! function]`, ``},
			{`backtrace-index h`, `_`, ``},
		}},
	}
	evaltest.RunTestSuite(t, tests)
}

func TestSecurity(t *testing.T) {
	deny := eval.WithSecurity(func(op string) error {
		return errors.New("denied")
	})
	tests := evaltest.TestSuite{
		{"denied", evaltest.TestSequence{
			{`backtrace`, `#[error! security]`, ``},
			{`where-of 1`, `#[error! security]`, ``},
			{`pause`, `#[error! security]`, ``},
			{`1 + 2`, `3`, ``},
		}},
	}
	evaltest.RunTestSuite(t, tests, deny)
}

// loadNative binds a native with no parameters implemented by fn.
func loadNative(rt *eval.Runtime, name string, fn eval.NativeFunc) {
	eval.Load(rt.Context, []*eval.Native{{Name: name, Formals: eval.Formals(), Fun: fn}})
}

func define(t *testing.T, rt *eval.Runtime, source string) {
	t.Helper()
	result := evaltest.Eval(rt, source)
	require.NotContains(t, result, "#[error!")
}

func TestLevelsAgree(t *testing.T) {
	rt := evaltest.NewRuntime(t, io.Discard)
	var rows int
	loadNative(rt, "check-levels", func(rt *eval.Runtime, f *eval.Frame) (bool, error) {
		bt, err := rt.Backtrace(eval.BacktraceOptions{Limit: eval.Blank(), SkipCurrent: true})
		if err != nil {
			return false, err
		}
		cells := bt.Items()
		require.Equal(t, 0, len(cells)%2)
		for i := 0; i < len(cells); i += 2 {
			rows++
			if cells[i].Kind != eval.KindInteger {
				continue
			}
			frame, n, ok := rt.FrameForLevel(cells[i], true)
			require.True(t, ok, "level %v", cells[i])
			assert.Equal(t, int(cells[i].Int), n)
			assert.Equal(t, eval.Mold(cells[i+1]), eval.Mold(eval.Block(rt.WhereFor(frame))))
		}
		*f.Out = eval.Integer(int64(len(cells) / 2))
		return false, nil
	})
	define(t, rt, `id: func [x] [x]`)
	define(t, rt, `c: func [] [id reduce [check-levels]]`)
	define(t, rt, `b: func [] [c]`)
	define(t, rt, `a: func [] [id b]`)
	// a, id, b, c, id and reduce.  Each id is pending.
	assert.Equal(t, "[6]", evaltest.Eval(rt, `a`))
	assert.Equal(t, 6, rows)
}

func TestHandleModes(t *testing.T) {
	rt := evaltest.NewRuntime(t, io.Discard)
	var handle eval.FrameHandle
	var pendingThen, runningThen bool
	loadNative(rt, "grab-caller", func(rt *eval.Runtime, f *eval.Frame) (bool, error) {
		caller := rt.Stack.Prior(f)
		handle = caller.Handle()
		pendingThen, runningThen = handle.Pending(), handle.Running()
		*f.Out = eval.Blank()
		return false, nil
	})
	define(t, rt, `id: func [x] [x]`)
	assert.Equal(t, "_", evaltest.Eval(rt, `id grab-caller`))
	assert.True(t, pendingThen)
	assert.False(t, runningThen)
	assert.Equal(t, "id", handle.Label())
	assert.False(t, handle.Pending())
	assert.False(t, handle.Running())
}

func TestWhereClampsMutation(t *testing.T) {
	rt := evaltest.NewRuntime(t, io.Discard)
	define(t, rt, `id: func [x] [x]`)
	seq := eval.NewSequence(eval.Word("id"), eval.Word("id"), eval.Word("shrink"))
	loadNative(rt, "shrink", func(rt *eval.Runtime, f *eval.Frame) (bool, error) {
		seq.Clear(0)
		*f.Out = eval.Block(rt.WhereFor(rt.Stack.Prior(f)))
		return false, nil
	})
	out := eval.End()
	threw, err := rt.EvalSequence(&out, seq, 0, rt.Context)
	require.NoError(t, err)
	require.False(t, threw)
	assert.Equal(t, "[id ...]", eval.Mold(out))
	assert.Equal(t, 0, rt.Stack.Len())
}

func TestWhereReifiesVariadic(t *testing.T) {
	rt := evaltest.NewRuntime(t, io.Discard)
	define(t, rt, `id: func [x] [x]`)
	loadNative(rt, "where-prior", func(rt *eval.Runtime, f *eval.Frame) (bool, error) {
		*f.Out = eval.Block(rt.WhereFor(rt.Stack.Prior(f)))
		return false, nil
	})
	out := eval.End()
	threw, err := rt.EvalVariadic(&out, eval.Word("id"), eval.Values(eval.Word("where-prior")), rt.Context)
	require.NoError(t, err)
	require.False(t, threw)
	assert.Equal(t, "[id --optimized-out-- ...]", eval.Mold(out))
}

func TestPauseLevelZero(t *testing.T) {
	var listing, nested string
	var zero, blank *eval.Frame
	handler := func(rt *eval.Runtime, f *eval.Frame) error {
		bt, err := rt.Backtrace(eval.BacktraceOptions{})
		if err != nil {
			return err
		}
		listing = eval.Mold(bt)
		zero, _, _ = rt.FrameForLevel(eval.Integer(0), false)
		blank, _, _ = rt.FrameForLevel(eval.Blank(), false)
		nested = evaltest.Eval(rt, `backtrace/quiet/brief`)
		return nil
	}
	rt := evaltest.NewRuntime(t, io.Discard, eval.WithPauseHandler(handler))
	define(t, rt, `c: func [] [pause]`)
	define(t, rt, `b: func [] [c]`)
	define(t, rt, `a: func [] [b]`)
	assert.Equal(t, "_", evaltest.Eval(rt, `a`))
	assert.Equal(t, "[\n    3 [a]\n    2 [b]\n    1 [c]\n    0 [pause]\n]", listing)
	require.NotNil(t, zero)
	assert.Equal(t, "pause", zero.Label)
	require.NotNil(t, blank)
	assert.Equal(t, "c", blank.Label)
	assert.Equal(t, "[a b c pause]", nested)
}

func TestDefaultRows(t *testing.T) {
	rt := evaltest.NewRuntime(t, io.Discard)
	define(t, rt, `r: func [n] [either n > 0 [r n - 1] [backtrace/quiet]]`)
	assert.Equal(t, "40", evaltest.Eval(rt, `length-of r 30`))
	assert.Equal(t, "*", evaltest.Eval(rt, `pick r 30 1`))

	rt = evaltest.NewRuntime(t, io.Discard, eval.WithBacktraceRows(3))
	define(t, rt, `r: func [n] [either n > 0 [r n - 1] [backtrace/quiet/brief]]`)
	assert.Equal(t, "[+ r either]", evaltest.Eval(rt, `r 30`))
}

func TestEvalStepMaybeStale(t *testing.T) {
	rt := evaltest.NewRuntime(t, io.Discard)
	seq := eval.NewSequence(eval.Word("comment"), eval.String("x"), eval.Integer(10))
	feed := eval.NewSequenceFeed(eval.End(), seq, 0, rt.Context, 0)
	f := eval.NewFrame(feed, nil, 0)
	require.NoError(t, rt.Stack.Push(f))
	defer rt.Stack.Drop(f)

	out := eval.Integer(1)
	threw, err := rt.EvalStepMaybeStale(&out, f)
	require.NoError(t, err)
	require.False(t, threw)
	assert.True(t, out.IsStale())
	assert.Equal(t, "1", eval.Mold(out))

	threw, err = rt.EvalStepMaybeStale(&out, f)
	require.NoError(t, err)
	require.False(t, threw)
	assert.False(t, out.IsStale())
	assert.Equal(t, "10", eval.Mold(out))
	assert.True(t, feed.AtEnd())
}

func TestEvalStepRequiresEmptyCell(t *testing.T) {
	rt := evaltest.NewRuntime(t, io.Discard)
	feed := eval.NewSequenceFeed(eval.End(), eval.NewSequence(eval.Integer(1)), 0, rt.Context, 0)
	f := eval.NewFrame(feed, nil, 0)
	require.NoError(t, rt.Stack.Push(f))
	defer rt.Stack.Drop(f)
	out := eval.Integer(1)
	assert.Panics(t, func() { _, _ = rt.EvalStep(&out, f) })
}

func TestEvalValue(t *testing.T) {
	rt := evaltest.NewRuntime(t, io.Discard)
	out := eval.End()
	_, err := rt.EvalValue(&out, eval.Integer(3), rt.Context)
	require.NoError(t, err)
	assert.Equal(t, "3", eval.Mold(out))

	group := eval.Group(eval.NewSequence(eval.Integer(1), eval.Word("+"), eval.Integer(2)))
	_, err = rt.EvalValue(&out, group, rt.Context)
	require.NoError(t, err)
	assert.Equal(t, "3", eval.Mold(out))

	_, err = rt.EvalValue(&out, eval.Word("pause"), rt.Context)
	assert.True(t, errors.Is(err, eval.ErrNoValue))
}

func TestUncaughtThrow(t *testing.T) {
	var buf bytes.Buffer
	rt := evaltest.NewRuntime(t, &buf)
	out := eval.End()
	threw, err := rt.LoadString(&out, "test", `throw/name 1 'x`)
	require.NoError(t, err)
	require.True(t, threw)
	err = rt.UncaughtError(&out)
	assert.True(t, errors.Is(err, eval.ErrNoCatch))
	assert.Contains(t, err.Error(), "named x")
	assert.Equal(t, "1", eval.Mold(out))
}

func TestErrorUnderCyclicBlock(t *testing.T) {
	rt := evaltest.NewRuntime(t, io.Discard)
	define(t, rt, `id: func [x] [fail "boom"]`)
	define(t, rt, `b: copy [id]`)
	define(t, rt, `append b b`)
	assert.Equal(t, "#[error! user-error]", evaltest.Eval(rt, `catch [do b]`))

	out := eval.End()
	_, err := rt.LoadString(&out, "test", `do b`)
	var e *eval.Error
	require.True(t, errors.As(err, &e))
	require.NotEmpty(t, e.Stack)
	var cyclic bool
	for _, rec := range e.Stack {
		assert.NotContains(t, rec.Where, "[id [id", "level %d", rec.Level)
		cyclic = cyclic || strings.Contains(rec.Where, "[...]")
	}
	assert.True(t, cyclic, "%v", e.Stack)
}

func TestSkippableEnfix(t *testing.T) {
	rt := evaltest.NewRuntime(t, io.Discard)
	eval.Load(rt.Context, []*eval.Native{{
		Name:    "sk",
		Formals: eval.Formals("left integer! <skip> <end>"),
		Enfix:   true,
		Fun: func(rt *eval.Runtime, f *eval.Frame) (bool, error) {
			*f.Out = eval.BlockOf(eval.String("sk"), f.Arg("left"))
			return false, nil
		},
	}})
	// A left hand value of the wrong type is not taken.
	assert.Equal(t, `["a" ["sk"]]`, evaltest.Eval(rt, `reduce ["a" sk]`))
	assert.Equal(t, `[["sk" 1]]`, evaltest.Eval(rt, `reduce [1 sk]`))
}

func TestSoftQuoteEnfixNoLookahead(t *testing.T) {
	rt := evaltest.NewRuntime(t, io.Discard)
	eval.Load(rt.Context, []*eval.Native{{
		Name:    "sq",
		Formals: eval.Formals(":left <end>"),
		Enfix:   true,
		Fun: func(rt *eval.Runtime, f *eval.Frame) (bool, error) {
			*f.Out = eval.BlockOf(eval.String("sq"), f.Arg("left"))
			return false, nil
		},
	}})
	seq := eval.NewSequence(eval.Integer(1), eval.Word("sq"))
	feed := eval.NewSequenceFeed(eval.End(), seq, 0, rt.Context, eval.FeedNoLookahead)
	f := eval.NewFrame(feed, nil, 0)
	require.NoError(t, rt.Stack.Push(f))
	defer rt.Stack.Drop(f)

	out := eval.End()
	threw, err := rt.EvalStep(&out, f)
	require.NoError(t, err)
	require.False(t, threw)
	assert.Equal(t, "1", eval.Mold(out))
	assert.Equal(t, "[]", feed.Flags().String())
	assert.Equal(t, "[]", f.Flags.String())
	assert.Equal(t, "sq", eval.Mold(feed.Value()))

	// Without the flag the soft quote takes the left hand value.
	assert.Equal(t, `["sq" 1]`, evaltest.Eval(rt, `1 sq`))
}

func TestEvalStepMidFrame(t *testing.T) {
	rt := evaltest.NewRuntime(t, io.Discard)
	seq := eval.NewSequence(eval.Integer(1), eval.Word("+"), eval.Integer(2), eval.Integer(10))
	feed := eval.NewSequenceFeed(eval.End(), seq, 0, rt.Context, 0)
	out := eval.End()
	f := eval.NewFrame(feed, &out, eval.EvalToEnd)
	require.NoError(t, rt.Stack.Push(f))
	defer rt.Stack.Drop(f)
	f.DSPOrig = rt.Data.Len()

	threw, err := rt.EvalStepMidFrame(f, 0)
	require.NoError(t, err)
	require.False(t, threw)
	assert.Equal(t, "3", eval.Mold(out))
	assert.Equal(t, eval.EvalToEnd, f.Flags)
	assert.Equal(t, "[]", feed.Flags().String())
	assert.Equal(t, "10", eval.Mold(feed.Value()))
	assert.Equal(t, 1, rt.Stack.Len())
}

func TestEvalStepInSubframe(t *testing.T) {
	rt := evaltest.NewRuntime(t, io.Discard)
	seq := eval.NewSequence(eval.Integer(1), eval.Word("+"), eval.Integer(2), eval.Word("+"), eval.Integer(1))
	feed := eval.NewSequenceFeed(eval.End(), seq, 0, rt.Context, 0)
	f := eval.NewFrame(feed, nil, 0)
	require.NoError(t, rt.Stack.Push(f))
	defer rt.Stack.Drop(f)

	out := eval.End()
	threw, err := rt.EvalStepInSubframe(&out, f, 0)
	require.NoError(t, err)
	require.False(t, threw)
	assert.Equal(t, "4", eval.Mold(out))
	assert.True(t, feed.AtEnd())
	assert.Equal(t, 1, rt.Stack.Len())
	assert.Equal(t, eval.EvalFlags(0), f.Flags)
}

func TestReevaluateInSubframe(t *testing.T) {
	rt := evaltest.NewRuntime(t, io.Discard)
	seq := eval.NewSequence(eval.Word("+"), eval.Integer(1), eval.Integer(10))
	feed := eval.NewSequenceFeed(eval.End(), seq, 0, rt.Context, 0)
	f := eval.NewFrame(feed, nil, 0)
	require.NoError(t, rt.Stack.Push(f))
	defer rt.Stack.Drop(f)

	out := eval.End()
	threw, err := rt.ReevaluateInSubframe(&out, f, eval.Integer(5), 0)
	require.NoError(t, err)
	require.False(t, threw)
	assert.Equal(t, "6", eval.Mold(out))
	assert.Equal(t, "10", eval.Mold(feed.Value()))
	assert.Equal(t, 1, rt.Stack.Len())

	// Lookahead stops at a value which is not enfix.
	out = eval.End()
	threw, err = rt.ReevaluateInSubframe(&out, f, eval.Integer(7), 0)
	require.NoError(t, err)
	require.False(t, threw)
	assert.Equal(t, "7", eval.Mold(out))
	assert.Equal(t, "10", eval.Mold(feed.Value()))
}
