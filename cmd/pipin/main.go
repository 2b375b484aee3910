package main

import (
	"errors"
	"os"

	"github.com/obentoo/pipinside/internal/common/logger"
	"github.com/obentoo/pipinside/internal/common/output"
	"github.com/obentoo/pipinside/internal/installer"
	"github.com/obentoo/pipinside/internal/pipcmd"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	quiet      bool
	noColor    bool
	pythonPath string
	configPath string
	logFile    string
)

// errUsage marks command line mistakes caught by cobra or pflag
var errUsage = errors.New("usage error")

var rootCmd = &cobra.Command{
	Use:   "pipin",
	Short: "Install Python packages with pip from keyword options",
	Long: `pipin builds a pip install command line from positional arguments and
keyword options, runs it under the selected Python interpreter and reports
packages the calling process had already imported.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Configure logging based on flags
		if verbose {
			logger.SetVerbose(true)
		}
		if quiet {
			logger.SetQuiet(true)
		}
		if noColor {
			output.NoColor()
		}
		if cmd.Flags().Changed("log-file") {
			if err := logger.EnableFileLogging(logFile); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&pythonPath, "python", "", "Python interpreter to install into (default: $PIPIN_PYTHON, $VIRTUAL_ENV, python3 on PATH)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/pipin/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write log lines to this file (empty: the default log directory)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Join(errUsage, err)
	})
}

// exitCodeFor maps a command error to the process exit status.
// A failed pip child passes its own status through.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	var subErr *installer.SubprocessError
	switch {
	case errors.As(err, &subErr):
		return subErr.ExitCode
	case errors.Is(err, pipcmd.ErrInvalidArgument),
		errors.Is(err, pipcmd.ErrParse),
		errors.Is(err, errUsage):
		return 2
	default:
		return 1
	}
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		logger.Error("%s", output.Sprintf(output.Error, "✗ %v", err))
	}
	logger.Close()
	os.Exit(exitCodeFor(err))
}
