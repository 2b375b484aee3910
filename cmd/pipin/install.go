package main

import (
	"os"
	"strings"

	"github.com/obentoo/pipinside"
	"github.com/obentoo/pipinside/internal/common/logger"
	"github.com/spf13/cobra"
)

var (
	installOpts   = newOptionCollector()
	installLoaded = &loadedFlags{}
)

var installCmd = &cobra.Command{
	Use:   "install [flags] [--] <pip args...>",
	Short: "Run pip install under the selected interpreter",
	Long: `Build a pip install command line and run it as "<python> -m pip install ...".

A single argument starting with "pip install " is used as the whole command
line. Otherwise keyword options come first, in the order given, followed by
the remaining arguments. Put pip's own options after "--".

Examples:
  pipin install 'pip install --user --upgrade some_pkg'
  pipin install --flag user --flag upgrade some_pkg
  pipin install --opt r=requirements.txt
  pipin install --opt find_links=/local/dir/ -- --no-index some_pkg`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().SetInterspersed(false)
	installOpts.register(installCmd.Flags())
	installLoaded.register(installCmd.Flags())
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	settings, err := pipinside.LoadSettings(configPath, dir, pythonPath)
	if err != nil {
		return err
	}
	settings.WarnLockfiles(dir)

	registry, err := installLoaded.registry()
	if err != nil {
		return err
	}
	logger.Debug("already loaded: %s", strings.Join(registry.Names(), ", "))

	inst, err := pipinside.NewInstaller(settings.Python,
		pipinside.WithDefaults(settings.Defaults),
		pipinside.WithRegistry(registry),
		pipinside.WithOutput(cmd.OutOrStdout()),
	)
	if err != nil {
		return err
	}
	logger.Debug("using %s", inst.Python())

	_, err = inst.Install(args, installOpts.Options())
	return err
}
