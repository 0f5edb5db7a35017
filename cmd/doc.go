// Copyright © 2021 The ELPS authors

package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/luthersystems/reval/diagnostic"
	"github.com/luthersystems/reval/docs"
	"github.com/luthersystems/reval/eval"
	"github.com/luthersystems/reval/eval/evallib"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var docSourceFile string
var docMissing bool
var docGuide bool

// docCmd represents the doc command
var docCmd = &cobra.Command{
	Use:   "doc [flags] [WORD]",
	Short: "Show documentation for words",
	Long: `Show built-in documentation for natives and the values of words.

With no WORD, lists every word bound in the user context.  Use -f to load a
source file first (useful for documenting your own functions, whose
documentation is the string leading their spec block).

Examples:
  reval doc backtrace              Show docs for the backtrace native
  reval doc +                      Show the signature of an infix action
  reval doc -f mylib.r my-func     Load a file, then show docs for my-func
  reval doc -m                     List natives without documentation
  reval doc --guide                Show the stack reflection guide`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, err := loadSettings(viper.GetViper())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		out := bufio.NewWriter(os.Stdout)
		err = docExec(s, out, args)
		_ = out.Flush()
		if err != nil {
			_ = s.renderer().Render(os.Stderr, diagnostic.FromError(err))
			os.Exit(1)
		}
	},
}

func docExec(s *settings, w io.Writer, args []string) error {
	if docGuide {
		_, err := io.WriteString(w, docs.DebuggingGuide)
		return err
	}
	// runtime output is typically discarded but a buffer is maintained in
	// case of an error while loading user source files.
	errbuf := &bytes.Buffer{}
	rt, complete, err := newRuntime(s, errbuf, errbuf)
	if err != nil {
		return err
	}
	defer complete() //nolint:errcheck // tracing a doc query is best-effort
	if docSourceFile != "" {
		src, err := os.ReadFile(docSourceFile)
		if err != nil {
			return err
		}
		out := eval.End()
		threw, err := rt.Load(&out, docSourceFile, bytes.NewReader(src))
		if threw {
			err = rt.UncaughtError(&out)
		}
		if err != nil {
			_, _ = os.Stderr.Write(errbuf.Bytes())
			return err
		}
	}
	if docMissing {
		missing := evallib.CheckMissing(rt.Context)
		for _, m := range missing {
			if _, err := fmt.Fprintln(w, m.Name); err != nil {
				return err
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%d undocumented actions", len(missing))
		}
		return nil
	}
	if len(args) == 0 {
		return evallib.RenderWords(w, rt.Context)
	}
	return evallib.RenderWord(w, rt.Context, args[0])
}

func init() {
	rootCmd.AddCommand(docCmd)

	// Here flags for the doc command are defined
	docCmd.Flags().StringVarP(&docSourceFile, "source-file", "f", "",
		"Evaluate a source file before querying documentation (presumably desired docs are in source code).")
	docCmd.Flags().BoolVarP(&docMissing, "missing", "m", false,
		"List actions which have no documentation.")
	docCmd.Flags().BoolVar(&docGuide, "guide", false,
		"Show the stack reflection and debugging guide.")
}
