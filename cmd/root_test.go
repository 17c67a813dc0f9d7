package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"

	"tmc/internal/api"
	"tmc/internal/cli"
	"tmc/internal/config"
	"tmc/internal/pdq"
)

func TestSetVersion(t *testing.T) {
	testVersion := "1.2.3-test"
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()

	SetVersion(testVersion)

	if rootCmd.Version != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, rootCmd.Version)
	}
	if GetVersion() != testVersion {
		t.Errorf("Expected GetVersion to return %s, got %s", testVersion, GetVersion())
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if rootCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}

	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}

	if !rootCmd.SilenceErrors {
		t.Error("Expected SilenceErrors to be true")
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}

	// Same template as Execute() installs.
	testCmd.SetVersionTemplate(`{{printf "tmc version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)

	testCmd.SetArgs([]string{"--version"})
	err := testCmd.Execute()
	if err != nil {
		t.Fatalf("Error executing version command: %v", err)
	}

	output := buf.String()
	expected := "tmc version 1.0.0\n"
	if output != expected {
		t.Errorf("Expected version output %q, got %q", expected, output)
	}
}

func TestSubcommands(t *testing.T) {
	commands := rootCmd.Commands()

	expectedCommands := []string{"version", "self-update"}
	foundCommands := make(map[string]bool)

	for _, cmd := range commands {
		foundCommands[cmd.Name()] = true
	}

	for _, expected := range expectedCommands {
		if !foundCommands[expected] {
			t.Errorf("Expected subcommand %q to be registered", expected)
		}
	}
}

func TestCommonFlagsRegistered(t *testing.T) {
	for _, name := range []string{
		"headers", "limit", "paginate", "transform",
		"http-header", "debug", "no-cache", "quiet", "config-path",
	} {
		if rootCmd.Flags().Lookup(name) == nil {
			t.Errorf("Expected flag --%s to be registered", name)
		}
	}
}

func TestArgumentCountIsUsageError(t *testing.T) {
	err := rootCmd.Args(rootCmd, []string{})
	if err == nil {
		t.Fatal("Expected an error for zero arguments")
	}
	if got := getExitCode(err); got != ExitCodeUsage {
		t.Errorf("Expected exit code %d for missing argument, got %d", ExitCodeUsage, got)
	}

	if err := rootCmd.Args(rootCmd, []string{"pdqs"}); err != nil {
		t.Errorf("Expected one argument to be accepted, got %v", err)
	}
}

func TestFlagErrorIsUsageError(t *testing.T) {
	err := rootCmd.FlagErrorFunc()(rootCmd, errors.New("unknown flag: --bogus"))
	if got := getExitCode(err); got != ExitCodeUsage {
		t.Errorf("Expected exit code %d for a flag error, got %d", ExitCodeUsage, got)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "unknown pre-defined query",
			err:  &pdq.NotFoundError{Name: "nope"},
			want: ExitCodeUsage,
		},
		{
			name: "missing environment",
			err:  &config.MissingEnvError{Vars: []string{"TMC_TOKEN"}},
			want: ExitCodeUsage,
		},
		{
			name: "invalid flag input",
			err:  &cli.UsageError{Message: "bad header"},
			want: ExitCodeUsage,
		},
		{
			name: "upstream API failure",
			err:  &api.UpstreamError{Status: 503, Body: "unavailable"},
			want: ExitCodeUpstream,
		},
		{
			name: "wrapped upstream API failure",
			err:  fmt.Errorf("running query: %w", &api.UpstreamError{Status: 404}),
			want: ExitCodeUpstream,
		},
		{
			name: "decode failure",
			err:  &api.DecodeError{Path: "/v1alpha1/clusters", Reason: errors.New("bad json")},
			want: ExitCodeError,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: ExitCodeError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := getExitCode(tc.err); got != tc.want {
				t.Errorf("getExitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}
