package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tmc/internal/api"
	"tmc/internal/cli"
	"tmc/internal/config"
	"tmc/internal/pdq"
	"tmc/pkg/logging"
)

// Exit codes for CLI commands.
// These follow common conventions so scripts can tell failure kinds apart.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (bad response body, transform
	// failure, pagination overrun, I/O).
	ExitCodeError = 1
	// ExitCodeUsage indicates bad input: an unknown query name, invalid
	// flags, or missing credentials.
	ExitCodeUsage = 2
	// ExitCodeUpstream indicates the API answered with an error status.
	ExitCodeUpstream = 3
)

var flags cli.CommandFlags

// rootCmd represents the base command for the tmc application. The single
// positional argument carries the whole query; everything else is flags.
var rootCmd = &cobra.Command{
	Use:   "tmc <api-path | pdq-name | pdqs>",
	Short: "Explore the Tanzu Mission Control API",
	Long: `tmc issues authenticated GET requests against the Tanzu Mission Control
REST API and renders the response as a table or as pretty-printed JSON.

The argument is an API path (/v1alpha1/clusters), the name of a pre-defined
query, or 'pdqs' to list the registered pre-defined queries. Credentials come
from the TMC_DOMAIN and TMC_TOKEN environment variables; a .env file in the
working directory is honored.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(1)(cmd, args); err != nil {
			return &cli.UsageError{Message: err.Error()}
		}
		return nil
	},
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	// SilenceErrors leaves error reporting to Execute, which styles it.
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogging(flags.Debug)

		cfg, err := config.Load(flags.ConfigPath)
		if err != nil {
			return err
		}
		cfg.Debug = cfg.Debug || flags.Debug
		cfg.NoCache = cfg.NoCache || flags.NoCache
		// TMC_DEBUG or .env may have turned debug on during loading, so the
		// level settles only now.
		initLogging(cfg.Debug)

		runner, err := cli.NewRunner(cli.Options{Config: &cfg, Flags: &flags})
		if err != nil {
			return err
		}
		return runner.Run(cmd.Context(), args[0])
	},
}

func initLogging(debug bool) {
	level := logging.LevelWarn
	if debug {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)
}

// SetVersion sets the version for the root command.
// This function is called from the main package to inject the application
// version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application. It runs the root
// command, reports any error in red on stderr, and exits with a code that
// reflects the error kind. This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "tmc version %s\n" .Version}}`)

	if !isatty.IsTerminal(os.Stderr.Fd()) {
		text.DisableColors()
	}

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, text.FgRed.Sprintf("ERROR: %v", err))
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var notFound *pdq.NotFoundError
	if errors.As(err, &notFound) {
		return ExitCodeUsage
	}

	var missingEnv *config.MissingEnvError
	if errors.As(err, &missingEnv) {
		return ExitCodeUsage
	}

	var usage *cli.UsageError
	if errors.As(err, &usage) {
		return ExitCodeUsage
	}

	var upstream *api.UpstreamError
	if errors.As(err, &upstream) {
		return ExitCodeUpstream
	}

	return ExitCodeError
}

func init() {
	cli.RegisterCommonFlags(rootCmd, &flags)

	// Flag parse failures are user errors; typing them here keeps the exit
	// code mapping in one place.
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &cli.UsageError{Message: err.Error()}
	})

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
