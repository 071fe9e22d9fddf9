// Command hydroc compiles a single hydro source file to a native Linux
// x86-64 executable. It is the CLI front end over pkg/driver, built with
// cobra/pflag the way the rest of this corpus's CLI tools are (keurnel's
// assembler and opal's runtime both wire subcommands and flags this way),
// in place of the teacher's hand-rolled os.Args switch in cmd/smog/main.go.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/hydro-lang/hydroc/pkg/diagnostics"
	"github.com/hydro-lang/hydroc/pkg/driver"
)

var version = "0.1.0"

var (
	flagOutput  string
	flagKeepAsm bool
	flagEmitAsm bool
	flagVerbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hydroc <source-file>",
		Short:         "hydroc compiles a small imperative language to x86-64 assembly",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0])
		},
	}

	root.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "output executable path (default: source path without its extension)")
	root.PersistentFlags().BoolVar(&flagKeepAsm, "keep-asm", false, "keep the generated .s file after assembling")
	root.PersistentFlags().BoolVar(&flagEmitAsm, "emit-asm", false, "stop after emitting assembly; do not invoke nasm/ld")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "report build statistics")

	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <source-file> [-- program-args...]",
		Short: "build and immediately execute the program, exiting with its status",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := optionsFromFlags()
			code, err := driver.Run(args[0], opts, args[1:], cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				printDiagnostic(cmd, err)
				os.Exit(1)
			}
			os.Exit(code)
			return nil
		},
	}
}

func optionsFromFlags() driver.Options {
	return driver.Options{
		OutputPath:  flagOutput,
		KeepAsm:     flagKeepAsm,
		EmitAsmOnly: flagEmitAsm,
		Verbose:     flagVerbose,
	}
}

func runBuild(cmd *cobra.Command, sourcePath string) error {
	res, err := driver.Build(sourcePath, optionsFromFlags())
	if err != nil {
		printDiagnostic(cmd, err)
		return err
	}

	if res.Stats != nil {
		printStats(cmd, res.Stats)
	}
	return nil
}

// printDiagnostic renders a compiler error the way the rest of the
// reference corpus colors failing CLI output: red when standard error is a
// terminal, plain otherwise (fatih/color + go-isatty, following
// dphaener-conduit and sunholo-data-ailang's diagnostic styling).
func printDiagnostic(cmd *cobra.Command, err error) {
	stderr := cmd.ErrOrStderr()
	useColor := isatty.IsTerminal(os.Stderr.Fd())

	if d, ok := diagnostics.As(err); ok {
		if useColor {
			fmt.Fprintln(stderr, color.RedString("error: %s", d.Error()))
		} else {
			fmt.Fprintf(stderr, "error: %s\n", d.Error())
		}
		return
	}

	if useColor {
		fmt.Fprintln(stderr, color.RedString("error: %v", err))
	} else {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
}

func printStats(cmd *cobra.Command, s *driver.Stats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "build %s\n", s.BuildID)
	fmt.Fprintf(out, "  source:  %s\n", s.SourceBytes)
	fmt.Fprintf(out, "  tokens:  %d\n", s.TokenCount)
	fmt.Fprintf(out, "  nodes:   %d\n", s.NodeCount)
	fmt.Fprintf(out, "  asm:     %s\n", s.AsmBytes)
	fmt.Fprintf(out, "  elapsed: %s\n", s.Elapsed)
	if s.OutputPath != "" {
		fmt.Fprintf(out, "  output:  %s\n", s.OutputPath)
	}
}
