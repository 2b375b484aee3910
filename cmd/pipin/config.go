package main

import (
	"fmt"
	"os"

	"github.com/obentoo/pipinside"
	"github.com/obentoo/pipinside/internal/common/config"
	"github.com/obentoo/pipinside/internal/common/output"
	"github.com/obentoo/pipinside/internal/pipcmd"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the pipin configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings for the current directory",
	Long: `Print the interpreter and default options pipin would use here, after
merging the user config with the nearest pyproject.toml [tool.pipin] table.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd, configShowCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// resolveConfigPath returns --config or the first existing config file
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.FindConfigPath()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.Default()
	if pythonPath != "" {
		cfg.Python = pythonPath
	}
	if err := cfg.SaveTo(path); err != nil {
		return err
	}

	output.Fprintf(cmd.OutOrStdout(), output.Success, "✓ wrote %s\n", path)
	return nil
}

// effectiveSettings is what config show prints
type effectiveSettings struct {
	ConfigFile  string          `yaml:"config_file"`
	ProjectFile string          `yaml:"project_file,omitempty"`
	Python      string          `yaml:"python,omitempty"`
	Lockfiles   lockfileView    `yaml:"lockfiles"`
	Defaults    *pipcmd.Options `yaml:"defaults"`
}

type lockfileView struct {
	Names []string `yaml:"names"`
	Depth int      `yaml:"depth"`
	Warn  bool     `yaml:"warn"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	settings, err := pipinside.LoadSettings(path, dir, pythonPath)
	if err != nil {
		return err
	}

	view := effectiveSettings{
		ConfigFile:  path,
		ProjectFile: settings.Project.Path,
		Python:      settings.Python,
		Lockfiles: lockfileView{
			Names: settings.Config.LockfileNames(),
			Depth: settings.Config.LockfileDepth(),
			Warn:  settings.Config.WarnLockfiles(),
		},
		Defaults: settings.Defaults,
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return err
	}
	return enc.Close()
}
