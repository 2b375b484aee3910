package main

import (
	"fmt"
	"os"

	"github.com/obentoo/pipinside"
	"github.com/obentoo/pipinside/internal/common/output"
	"github.com/obentoo/pipinside/internal/installer"
	"github.com/obentoo/pipinside/internal/interpreter"
	"github.com/obentoo/pipinside/internal/pipcmd"
	"github.com/spf13/cobra"
)

var (
	buildOpts   = newOptionCollector()
	buildLoaded = &loadedFlags{}
	buildArgv   bool
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [--] <pip args...>",
	Short: "Print the pip install command without running it",
	Long: `Build the pip install command line exactly as install would, check it
against pip's option grammar and print it. Nothing is executed.

With --argv the full child command, including the interpreter, is printed.
With --verbose the targets and any already-loaded modules are listed too.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().SetInterspersed(false)
	buildOpts.register(buildCmd.Flags())
	buildLoaded.register(buildCmd.Flags())
	buildCmd.Flags().BoolVar(&buildArgv, "argv", false, "Print the interpreter invocation as well")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	settings, err := pipinside.LoadSettings(configPath, dir, pythonPath)
	if err != nil {
		return err
	}

	registry, err := buildLoaded.registry()
	if err != nil {
		return err
	}

	inst := installer.New(settings.Python,
		installer.WithDefaults(settings.Defaults),
		installer.WithRegistry(registry),
	)
	plan, err := inst.Plan(args, buildOpts.Options())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if buildArgv {
		python, err := interpreter.Locate(settings.Python)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, pipcmd.FormatCommand(plan.Argv(python)))
	} else {
		fmt.Fprintln(out, pipcmd.FormatCommand(plan.Command))
	}

	if verbose {
		output.Fprintf(out, output.Header, "Targets:\n")
		for _, target := range plan.Targets {
			fmt.Fprintf(out, "  %s\n", target)
		}
		locations := make(map[string]string, len(plan.AlreadyLoaded))
		for name, m := range plan.AlreadyLoaded {
			locations[name] = m.Path
		}
		output.AlreadyLoaded(out, locations)
	}
	return nil
}
