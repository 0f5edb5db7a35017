// Copyright © 2018 The ELPS authors

// Package repl implements an interactive loop over a runtime with the
// standard natives loaded.  A pause evaluated by the loop opens a nested
// loop at the paused> prompt until the user enters resume.
package repl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/luthersystems/reval/diagnostic"
	"github.com/luthersystems/reval/eval"
	"github.com/luthersystems/reval/eval/evallib"
	"github.com/luthersystems/reval/parser"
)

// PausePrompt is shown while evaluation is suspended by pause.
const PausePrompt = "paused> "

type config struct {
	stdin   io.ReadCloser
	stderr  io.Writer
	color   diagnostic.ColorMode
	format  diagnostic.Format
	runtime []eval.Config
}

func newConfig(opts ...Option) *config {
	config := &config{}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output to the REPL.  Printed output of
// the runtime goes to stderr as well.
func WithStderr(stderr io.Writer) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithColor sets the color mode of rendered errors.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// WithErrorFormat sets the format of rendered errors.
func WithErrorFormat(format diagnostic.Format) Option {
	return func(c *config) {
		c.format = format
	}
}

// WithRuntimeConfig adds configs applied to the runtime created by RunRepl.
func WithRuntimeConfig(configs ...eval.Config) Option {
	return func(c *config) {
		c.runtime = append(c.runtime, configs...)
	}
}

// RunRepl runs a simple repl in a standard runtime.
func RunRepl(prompt string, opts ...Option) {
	cfg := newConfig(opts...)
	rtOpts := []eval.Config{
		eval.WithReader(parser.NewReader()),
	}
	if cfg.stderr != nil {
		rtOpts = append(rtOpts, eval.WithStdout(cfg.stderr), eval.WithStderr(cfg.stderr))
	}
	rtOpts = append(rtOpts, cfg.runtime...)

	rt, err := eval.StandardRuntime(rtOpts...)
	if err != nil {
		errlnf("Runtime initialization failure: %v", err)
		os.Exit(1)
	}
	err = evallib.LoadLibrary(rt)
	if err != nil {
		errlnf("Library initialization failure: %v", err)
		os.Exit(1)
	}

	RunRuntime(rt, prompt, strings.Repeat(" ", len(prompt)), opts...)
}

type repl struct {
	rt       *eval.Runtime
	rl       *readline.Instance
	out      io.Writer
	cont     string
	renderer *diagnostic.Renderer
}

// RunRuntime runs a simple repl evaluating in the user context of rt.  If rt
// has no pause handler, pauses open a nested loop.
func RunRuntime(rt *eval.Runtime, prompt, cont string, opts ...Option) {
	if rt.Reader == nil {
		errlnf("REPL runtime has no reader.")
		os.Exit(1)
	}

	cfg := newConfig(opts...)
	if cfg.stderr != nil {
		rt.Stderr = cfg.stderr
	}

	history := historyPath()
	ensureHistoryFilePermissions(history)
	rlCfg := &readline.Config{
		Stdout:            rt.Stderr,
		Stderr:            rt.Stderr,
		Prompt:            prompt,
		HistoryFile:       history,
		HistorySearchFold: true,
		AutoComplete:      &wordCompleter{ctx: rt.Context},
	}

	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		panic(err)
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	r := &repl{
		rt:       rt,
		rl:       rl,
		out:      rt.Stderr,
		cont:     cont,
		renderer: &diagnostic.Renderer{Color: cfg.color, Format: cfg.format},
	}
	if rt.PauseHandler == nil {
		rt.PauseHandler = r.pause
		defer func() { rt.PauseHandler = nil }()
	}

	for {
		seq, err := r.read(prompt)
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintln(r.out, err) //nolint:errcheck // best-effort error display
			continue
		}
		r.evalPrint(seq)
	}
}

// read returns the values of the next complete input.  Lines are
// accumulated while the input ends inside a block, group or string.
func (r *repl) read(prompt string) (*eval.Sequence, error) {
	var buf bytes.Buffer
	r.rl.SetPrompt(prompt)
	for {
		line, err := r.rl.ReadSlice()
		if err == readline.ErrInterrupt {
			buf.Reset()
			r.rl.SetPrompt(prompt)
			continue
		}
		if err != nil {
			return nil, io.EOF
		}
		if buf.Len() == 0 && len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		buf.Write(line)
		buf.WriteByte('\n')
		seq, err := r.rt.Reader.Read("stdin", bytes.NewReader(buf.Bytes()))
		if errors.Is(err, parser.ErrIncomplete) {
			r.rl.SetPrompt(r.cont)
			continue
		}
		return seq, err
	}
}

func (r *repl) evalPrint(seq *eval.Sequence) {
	out := eval.End()
	threw, err := r.rt.EvalSequence(&out, seq, 0, r.rt.Context)
	if threw {
		err = r.rt.UncaughtError(&out)
	}
	if err != nil {
		r.renderError(err)
		return
	}
	if out.IsEnd() {
		return
	}
	fmt.Fprintf(r.out, "== %s\n", eval.Mold(out)) //nolint:errcheck // best-effort REPL output
}

// pause runs a nested loop until the user enters resume or input ends.
func (r *repl) pause(rt *eval.Runtime, f *eval.Frame) error {
	//nolint:errcheck // best-effort REPL output
	fmt.Fprintf(r.out, "paused; enter resume to continue\n")
	for {
		seq, err := r.read(PausePrompt)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			fmt.Fprintln(r.out, err) //nolint:errcheck // best-effort error display
			continue
		}
		if isResume(seq) {
			return nil
		}
		r.evalPrint(seq)
	}
}

func isResume(seq *eval.Sequence) bool {
	if seq.Len() != 1 {
		return false
	}
	v := seq.At(0)
	return v.Kind == eval.KindWord && v.Str == "resume"
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".reval_history")
}

// ensureHistoryFilePermissions creates the history file if it is missing and
// restricts it to the owner.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600) //nolint:gosec // path is under the user's home
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}

func errlnf(format string, v ...interface{}) {
	if strings.HasSuffix(format, "\n") {
		errf(format, v...)
		return
	}
	errf(format+"\n", v...)
}

func errf(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format, v...)
}
