// Copyright © 2018 The ELPS authors

// Package evaltest provides helpers for testing code evaluated by a
// runtime with the standard natives loaded.
package evaltest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/luthersystems/reval/eval"
	"github.com/luthersystems/reval/eval/evallib"
	"github.com/luthersystems/reval/parser"
)

// BenchmarkParse returns a benchmark which parses the file at path with a
// reader returned by r.
func BenchmarkParse(path string, r func() eval.Reader) func(*testing.B) {
	return func(b *testing.B) {
		buf, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		b.SetBytes(int64(len(buf)))
		for i := 0; i < b.N; i++ {
			_, err := r().Read("test", bytes.NewReader(buf))
			if err != nil {
				b.Fatalf("Parse failure: %v", err)
			}
		}
	}
}

// NewRuntime returns a runtime with the standard natives loaded and the
// default reader.  Printed output is written to stdout and logging goes to
// t.  The given configs are applied after the defaults.
func NewRuntime(t testing.TB, stdout io.Writer, config ...eval.Config) *eval.Runtime {
	t.Helper()
	entry, logger := NewLogEntry(t)
	t.Cleanup(logger.Flush)
	base := []eval.Config{
		eval.WithReader(parser.NewReader()),
		eval.WithStdout(stdout),
		eval.WithStderr(logger),
		eval.WithLogger(entry),
		eval.WithMaxFrames(25000),
	}
	rt, err := eval.StandardRuntime(append(base, config...)...)
	if err != nil {
		t.Fatalf("failed to initialize runtime: %v", err)
	}
	err = evallib.LoadLibrary(rt)
	if err != nil {
		t.Fatalf("failed to load library: %v", err)
	}
	return rt
}

// Eval evaluates source in the user context of rt and returns the molded
// result, as TestSequence results are written.
func Eval(rt *eval.Runtime, source string) string {
	out := eval.End()
	threw, err := rt.LoadString(&out, "test", source)
	if threw {
		err = rt.UncaughtError(&out)
	}
	return Result(out, err)
}

// Result formats the product of an evaluation.  Errors are formatted as
// #[error! condition] and a missing value as the empty string.
func Result(v eval.Value, err error) string {
	if err != nil {
		var e *eval.Error
		if errors.As(err, &e) {
			return fmt.Sprintf("#[error! %s]", e.ConditionName())
		}
		return fmt.Sprintf("#[error! %v]", err)
	}
	return eval.Mold(v)
}

// TestSequence is a sequence of source texts which are evaluated
// sequentially by one runtime.
type TestSequence []struct {
	Expr   string // source text
	Result string // the molded result
	Output string // printed output written to Runtime.Stdout
}

// TestSuite is a set of named TestSequences
type TestSuite []struct {
	Name string
	TestSequence
}

// RunTestSuite runs each TestSequence in tests on isolated runtimes.
func RunTestSuite(t *testing.T, tests TestSuite, config ...eval.Config) {
	for i, test := range tests {
		var outBuf bytes.Buffer
		rt := NewRuntime(t, &outBuf, config...)
		for j, expr := range test.TestSequence {
			outBuf.Reset()
			result := Eval(rt, expr.Expr)
			if result != expr.Result {
				t.Errorf("test %d %q: expr %d: expected result %s (got %s)", i, test.Name, j, expr.Result, result)
			}
			if outBuf.String() != expr.Output {
				t.Errorf("test %d %q: expr %d: expected output %q (got %q)", i, test.Name, j, expr.Output, outBuf.String())
			}
			if rt.Stack.Len() != 0 {
				t.Errorf("test %d %q: expr %d: %d frames left on the stack", i, test.Name, j, rt.Stack.Len())
			}
			if rt.Data.Len() != 0 {
				t.Errorf("test %d %q: expr %d: %d values left on the data stack", i, test.Name, j, rt.Data.Len())
			}
		}
	}
}

// RunBenchmark runs a standard benchmark that evaluates source.
func RunBenchmark(b *testing.B, source string) {
	b.StopTimer()
	p := parser.NewReader()
	seq, err := p.Read("benchmark", strings.NewReader(source))
	if err != nil {
		b.Fatalf("parse error: %v", err)
	}
	for i := 0; i < b.N; i++ {
		rt := NewRuntime(b, io.Discard)
		b.StartTimer()
		out := eval.End()
		_, err := rt.EvalSequence(&out, seq, 0, rt.Context)
		b.StopTimer()
		if err != nil {
			b.Fatal(err)
		}
	}
}
