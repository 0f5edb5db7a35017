// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/luthersystems/reval/repl"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive REPL",
	Long: `Start an interactive read-eval-print loop.

Line editing, word completion and command history are supported via
readline.  Input which ends inside a block, group or string continues on
the next line.  Use Ctrl-D to exit.

A pause suspends evaluation and opens a nested loop at the paused> prompt
where the stack can be inspected.  Enter resume to continue.

Example REPL session:
  reval> square: func [x] [x * x]
  == #[action! function]
  reval> square 5
  == 25
  reval> f: func [] [pause 1]
  == #[action! function]
  reval> f
  paused; enter resume to continue
  paused> backtrace
    1 [f]
    0 [pause]
  == _
  paused> resume
  == 1`,
	Run: func(cmd *cobra.Command, args []string) {
		s, err := loadSettings(viper.GetViper())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		rt, complete, err := newRuntime(s, os.Stdout, os.Stderr)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		prompt := filepath.Base(os.Args[0]) + "> "
		repl.RunRuntime(rt, prompt, "... ",
			repl.WithColor(s.Color),
			repl.WithErrorFormat(s.ErrorFormat))
		if err := complete(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
