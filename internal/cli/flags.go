package cli

import (
	"github.com/spf13/cobra"
)

// CommandFlags holds the flag values of the explore command. The boolean
// toggles also honor their TMC_* environment defaults; the flag wins when
// set.
type CommandFlags struct {
	// Headers is the comma-separated field paths used as table columns.
	Headers string
	// Limit caps the total number of records fetched. Zero means unlimited.
	Limit int
	// Paginate names the response field holding each page's records.
	Paginate string
	// Transform is the projection expression applied to the response.
	Transform string
	// HTTPHeaders are extra request headers as raw "Key: Value" strings.
	HTTPHeaders []string
	// Debug echoes requests, signatures and cache hits to stderr.
	Debug bool
	// NoCache bypasses the response cache in both directions.
	NoCache bool
	// Quiet suppresses the progress spinner and non-essential chatter.
	Quiet bool
	// ConfigPath overrides the config file location.
	ConfigPath string
}

// RegisterCommonFlags registers the explore flags on a command.
//
// The registered flags are:
//   - --headers/-H: field paths to use as table columns
//   - --limit/-l: cap on the total records fetched
//   - --paginate/-p: response field holding each page's records
//   - --transform/-t: projection expression applied to the response
//   - --http-header: extra HTTP header as 'Key: Value', repeatable
//   - --debug: diagnostic echo of requests and cache hits (env: TMC_DEBUG)
//   - --no-cache: bypass the response cache (env: TMC_NO_CACHE)
//   - --quiet/-q: suppress progress output
//   - --config-path: config file location (env: TMC_CONFIG_PATH)
func RegisterCommonFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.Flags().StringVarP(&flags.Headers, "headers", "H", "", "comma-separated field paths to use as table columns")
	cmd.Flags().IntVarP(&flags.Limit, "limit", "l", 0, "limit the total number of records fetched")
	cmd.Flags().StringVarP(&flags.Paginate, "paginate", "p", "", "response field holding each page's records")
	cmd.Flags().StringVarP(&flags.Transform, "transform", "t", "", "projection expression applied to the response")
	cmd.Flags().StringArrayVar(&flags.HTTPHeaders, "http-header", nil, "extra HTTP header as 'Key: Value' (repeatable)")
	cmd.Flags().BoolVar(&flags.Debug, "debug", false, "echo requests, signatures and cache hits to stderr (env: TMC_DEBUG)")
	cmd.Flags().BoolVar(&flags.NoCache, "no-cache", false, "bypass the response cache (env: TMC_NO_CACHE)")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress progress output")
	cmd.Flags().StringVar(&flags.ConfigPath, "config-path", "", "config file (default ~/.config/tmc/config.yaml, env: TMC_CONFIG_PATH)")
}
