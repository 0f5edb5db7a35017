// Copyright © 2018 The ELPS authors

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/reval/diagnostic"
	"github.com/luthersystems/reval/eval"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	runExpression bool
	runPrint      bool
)

// errReported is returned after an evaluation error has been rendered.
var errReported = errors.New("evaluation failed")

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flags] FILE...",
	Short: "Run source code",
	Long: `Run source code supplied via the command line or files.  Each
argument is evaluated in turn in the same user context.  Evaluation stops
at the first error, which is reported with its backtrace.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, err := loadSettings(viper.GetViper())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		exprs, err := runReadExpressions(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		err = runSources(s, args, exprs, os.Stdout, os.Stderr)
		if err != nil {
			if !errors.Is(err, errReported) {
				fmt.Fprintln(os.Stderr, err)
			}
			os.Exit(1)
		}
	},
}

func runReadExpressions(args []string) ([][]byte, error) {
	exprs := make([][]byte, len(args))
	if runExpression {
		for i := range args {
			exprs[i] = []byte(args[i])
		}
		return exprs, nil
	}
	for i, path := range args {
		b, err := os.ReadFile(path) //nolint:gosec // runs user-specified source files
		if err != nil {
			return nil, err
		}
		exprs[i] = b
	}
	return exprs, nil
}

// runSources evaluates each expression in a runtime configured by s.
// Evaluation errors are rendered to stderr and errReported is returned.
func runSources(s *settings, names []string, exprs [][]byte, stdout, stderr io.Writer) error {
	rt, complete, err := newRuntime(s, stdout, stderr)
	if err != nil {
		return err
	}
	defer func() {
		if err := complete(); err != nil {
			rt.Log.WithError(err).Warn("tracing did not complete")
		}
	}()
	for i := range exprs {
		name := names[i]
		if runExpression {
			name = "expression"
		}
		out := eval.End()
		threw, err := rt.Load(&out, name, bytes.NewReader(exprs[i]))
		if threw {
			err = rt.UncaughtError(&out)
		}
		if err != nil {
			_ = s.renderer().Render(stderr, diagnostic.FromError(err))
			return errReported
		}
		if runPrint && !out.IsEnd() {
			if _, err := fmt.Fprintln(stdout, eval.Mold(out)); err != nil {
				return err
			}
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Here flags for the run command are defined
	runCmd.Flags().BoolVarP(&runExpression, "expression", "e", false,
		"Interpret arguments as expressions")
	runCmd.Flags().BoolVarP(&runPrint, "print", "p", false,
		"Print expression values to stdout")
}
