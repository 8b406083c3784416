package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// NewRootCmd builds the command tree. Each call returns a fresh tree so flag
// state never leaks between executions.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "jsonreq",
		Short:   "Send an HTTP request and print the JSON response",
		Version: version,
		Long: `jsonreq sends a single HTTP request, decodes the response body as JSON
and prints the value. Failures are reported with a stable code:
an HTTP status phrase such as NOT_FOUND, ERR_JSON_PARSE for bodies that
cannot be decoded, and ERR_READ_TIMEOUT when --read-timeout expires.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	for _, method := range []string{"GET", "POST", "PUT", "DELETE", "HEAD", "PATCH"} {
		rootCmd.AddCommand(newMethodCmd(method))
	}
	rootCmd.AddCommand(newRequestCmd())

	return rootCmd
}

// Execute runs the CLI with args and returns the process exit code. Errors not
// already printed by a command are written to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	var exitErr *ExitError
	if err != nil && !(errors.As(err, &exitErr) && exitErr.reported) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return ExitCode(err)
}

// Main runs the CLI against the process arguments, cancelling in-flight
// requests on interrupt.
func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
