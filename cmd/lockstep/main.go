package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lockstep-sync/lockstep/pkg/lockstep"
	"github.com/lockstep-sync/lockstep/pkg/logging"
)

func rootMain(command *cobra.Command, arguments []string) error {
	// Print version information, if requested.
	if rootConfiguration.version {
		fmt.Println(lockstep.Version)
		return nil
	}

	// If no flags were set, then print help information and bail.
	return command.Help()
}

// rootPreRun applies global configuration before any command runs.
func rootPreRun(command *cobra.Command, arguments []string) error {
	// Reconfigure the root logger if a level was requested.
	if rootConfiguration.logLevel != "" {
		level, err := logging.ParseLevel(rootConfiguration.logLevel)
		if err != nil {
			return err
		}
		logging.RootLogger = logging.NewLogger(level)
	}
	return nil
}

var rootCommand = &cobra.Command{
	Use:               "lockstep",
	Short:             "Lockstep decides and performs bidirectional file synchronization.",
	RunE:              rootMain,
	PersistentPreRunE: rootPreRun,
	SilenceUsage:      true,
}

var rootConfiguration struct {
	// help indicates the presence of the -h/--help flag.
	help bool
	// version indicates the presence of the -V/--version flag.
	version bool
	// logLevel is the requested root log level.
	logLevel string
}

func init() {
	// Bind flags to configuration. We manually add help to override the
	// default message, but Cobra still implements it automatically.
	flags := rootCommand.Flags()
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVarP(&rootConfiguration.version, "version", "V", false, "Show version information")
	rootCommand.PersistentFlags().StringVar(&rootConfiguration.logLevel, "log-level", "", "Set the log level (disabled, error, warn, info, debug)")

	// Disable Cobra's command sorting behavior. By default, it sorts
	// commands alphabetically in the help output.
	cobra.EnableCommandSorting = false

	// Register commands. We do this here (rather than in individual init
	// functions) so that we can control the order.
	rootCommand.AddCommand(
		planCommand,
	)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
