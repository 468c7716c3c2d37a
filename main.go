// pvecfg inspects and normalises the property strings stored in virtual
// machine and container configurations.
//
// Usage:
//
//	pvecfg parse <format> <value>        decode a property string
//	pvecfg normalize <format> <value>    decode and re-encode a property string
//	pvecfg guest <file>                  decode every known key of a guest config
//	pvecfg nextdisk <file>               next free disk slot of a guest
//	pvecfg nextmp <file>                 next free mount point of a container
//	pvecfg days <dow>                    render a backup weekday selection
//	pvecfg version compare|atleast|ceph  compare versions
//	pvecfg usage <resources.json>        guest and host usage
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doridoridoriand/pvecfg/internal/cli"
	"github.com/doridoridoriand/pvecfg/internal/config"
	"github.com/doridoridoriand/pvecfg/internal/log"
	"github.com/doridoridoriand/pvecfg/internal/parser"
)

const appVersion = "0.1.0"

func main() {
	os.Exit(Main())
}

// app carries the state shared by all commands once settings are loaded.
type app struct {
	settings *config.Settings
	logger   *log.Logger
	parser   parser.Parser
	loader   config.FileParser
	stdout   io.Writer

	flagConfig   string
	flagLogLevel cli.OptionalString
	flagOutput   cli.OptionalOutput
	flagLogJSON  cli.OptionalBool
}

// Main runs the command line and returns the process exit code.
func Main() int {
	a := &app{}
	if err := a.rootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pvecfg",
		Short: "Decode and normalise guest configuration property strings",
		Long: `pvecfg decodes the comma separated key=value property strings used in
virtual machine and container configurations, re-encodes them in canonical
form, and derives values such as the next free disk slot or usage ratios.`,
		Version:           appVersion,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.flagConfig, "config", "", "settings file (default $XDG_CONFIG_HOME/pvecfg/config.toml)")
	flags.Var(&a.flagLogLevel, "log-level", "log level: debug|info|warn|error (override settings)")
	flags.VarP(&a.flagOutput, "output", "o", "output format: text|json|yaml (override settings)")
	flags.Var(&a.flagLogJSON, "log-json", "write log entries as JSON lines")
	flags.Lookup("log-json").NoOptDefVal = "true"

	root.AddCommand(
		a.parseCmd(),
		a.normalizeCmd(),
		a.guestCmd(),
		a.nextDiskCmd(),
		a.nextMPCmd(),
		a.daysCmd(),
		a.versionCmd(),
		a.usageCmd(),
	)
	return root
}

// setup loads settings, applying flag overrides, and prepares the logger
// and parser.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.stdout = cmd.OutOrStdout()
	a.logger = log.NewLogger(log.LevelWarn)
	a.logger.SetOutput(cmd.ErrOrStderr())
	if v, ok := a.flagLogJSON.Value(); ok && v {
		a.logger.SetFormat(log.FormatJSON)
	}

	path := a.flagConfig
	if path == "" {
		path = config.DefaultSettingsPath()
	}
	settings, err := a.loader.LoadSettings(a.flagConfig, a.buildOverrides(cmd))
	if err != nil {
		a.logger.LogConfigLoad(false, path, err)
		return err
	}
	a.settings = settings

	a.logger.SetLevel(log.ParseLevel(settings.LogLevel))
	a.logger.LogConfigLoad(true, path, nil)
	a.parser = parser.New(a.logger)
	return nil
}

func (a *app) buildOverrides(cmd *cobra.Command) config.CLIOverrides {
	overrides := config.CLIOverrides{}

	if v, ok := a.flagLogLevel.Value(); ok && v != "" {
		value := v
		overrides.LogLevel = &value
	}
	if v, ok := a.flagOutput.Value(); ok {
		value := v
		overrides.Output = &value
	}
	if f := cmd.Flags().Lookup("controllers"); f != nil {
		if list, ok := f.Value.(*cli.OptionalList); ok {
			if v, set := list.Value(); set {
				overrides.Controllers = v
			}
		}
	}
	if f := cmd.Flags().Lookup("ostype"); f != nil {
		if s, ok := f.Value.(*cli.OptionalString); ok {
			if v, set := s.Value(); set {
				value := v
				overrides.OSType = &value
			}
		}
	}
	if f := cmd.Flags().Lookup("metrics-mode"); f != nil {
		if m, ok := f.Value.(*cli.OptionalMetricsMode); ok {
			if v, set := m.Value(); set {
				value := v
				overrides.MetricsMode = &value
			}
		}
	}

	return overrides
}
