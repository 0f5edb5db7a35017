// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reval",
	Short: "reval is a stepping evaluator with stack reflection",
	Long: `reval evaluates block-structured source text one expression step at a
time.  Words are looked up at the moment they are reached, infix actions
take their left argument from the previous step and every invocation is a
frame on a call stack that running code can inspect.

Getting started:
  reval run file.r             Run a source file
  reval run -e '1 + 2'         Evaluate an expression
  reval repl                   Start an interactive REPL
  reval doc backtrace          Show documentation for a word

Stack reflection:
  backtrace                    Print the levels of the running stack
  backtrace/brief              Labels of the levels as a block
  backtrace 2                  The frame at level 2
  where-of 1                   The expression running at level 1
  pause                        Suspend in the REPL (level 0)

Configuration is read from $HOME/.reval.yaml and REVAL_* environment
variables, e.g. REVAL_LOG_LEVEL=debug or REVAL_BACKTRACE_ROWS=40.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.reval.yaml)")
	flags.String(keyColor, "auto",
		`Control colored output: "auto", "always", or "never".`)
	flags.String(keyLogLevel, "warn",
		"Log level of the runtime: trace, debug, info, warn or error.")
	flags.String(keyErrorFormat, "text",
		`Format of reported errors: "text" or "yaml".`)
	flags.String(keyTrace, "",
		`Trace action invocations: "otel", "opencensus", "log" or "pprof".`)
	flags.Int(keyBacktraceRows, 20,
		"Rows listed by a backtrace which does not specify a limit.")
	flags.Int(keyMaxFrames, 10000,
		"Maximum height of the call stack (0 is unlimited).")
	flags.Int(keyCollapseLimit, 3,
		"Length beyond which nested blocks are collapsed in where summaries.")
	for _, key := range settingKeys {
		if err := viper.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".reval" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".reval")
	}

	viper.SetEnvPrefix("reval")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
