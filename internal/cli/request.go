package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/jsonreq/internal/bench"
	"github.com/wesleyorama2/jsonreq/internal/output"
	"github.com/wesleyorama2/jsonreq/jsonrequest"
)

func newMethodCmd(method string) *cobra.Command {
	lower := strings.ToLower(method)
	cmd := &cobra.Command{
		Use:   lower + " URL",
		Short: fmt.Sprintf("Make a %s request to the specified URL", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, method, args[0])
		},
	}
	addRequestFlags(cmd)
	return cmd
}

func newRequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request URL",
		Short: "Make a request with the method given by --method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, _ := cmd.Flags().GetString("method")
			return runRequest(cmd, method, args[0])
		},
	}
	cmd.Flags().StringP("method", "X", "GET", "HTTP method")
	addRequestFlags(cmd)
	return cmd
}

func addRequestFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayP("header", "H", []string{}, "HTTP headers to include as 'Key: Value' (can be used multiple times)")
	flags.StringP("data", "d", "", "Request body, or @file to read it from a file")
	flags.String("read-timeout", "", "Fail with ERR_READ_TIMEOUT if no response arrives in time (e.g. 2s, 500ms, 10)")
	flags.Int("max-redirects", 0, "Redirects to follow (0 uses the default of 10, -1 follows none)")
	flags.Bool("compress", false, "Request and decode gzip, deflate and br bodies")
	flags.StringP("query", "q", "", "Print only the value at this JSONPath (e.g. $.items[0].id)")
	flags.String("schema", "", "Validate the response body against this JSON Schema file")
	flags.StringP("output", "o", "", "Output format: text, json or yaml")
	flags.Bool("no-color", false, "Disable colored output")
	flags.BoolP("verbose", "v", false, "Show request headers and debug logs")
	flags.StringP("config", "c", "", "Config file with default headers and settings")
	flags.IntP("repeat", "n", 1, "Send the request N times and print a latency summary")
	flags.Int("concurrency", 1, "Requests in flight when repeating")
	flags.Float64("rate", 0, "Maximum requests per second when repeating (0 is unlimited)")
}

func runRequest(cmd *cobra.Command, method, rawURL string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	opts := jsonrequest.Options{
		URL:          normalizeURL(rawURL),
		Method:       method,
		Headers:      s.headers,
		Body:         s.body,
		ReadTimeout:  s.readTimeout,
		MaxRedirects: s.maxRedirects,
		Compress:     s.compress,
		Parser:       s.parser,
	}

	client := jsonrequest.NewClient(jsonrequest.WithLogger(newLogger(cmd.ErrOrStderr(), s.verbose)))
	formatter := output.GetFormatter(s.format, s.verbose, noColorFor(cmd.OutOrStdout(), s.noColor))
	stdout := cmd.OutOrStdout()
	ctx := cmd.Context()

	if s.format == output.FormatText {
		fmt.Fprint(stdout, formatter.FormatRequest(jsonrequest.Normalize(opts, "")))
	}

	if s.repeat > 1 {
		return runRepeated(ctx, stdout, formatter, client, opts, s)
	}

	start := time.Now()
	value, err := client.Request(ctx, opts)
	fmt.Fprint(stdout, formatter.FormatResult(output.Result{
		Options: jsonrequest.Normalize(opts, ""),
		Value:   value,
		Err:     err,
		Elapsed: time.Since(start),
	}))
	if err != nil {
		return requestError(err)
	}
	return nil
}

func runRepeated(ctx context.Context, stdout io.Writer, formatter output.FormatProvider, client *jsonrequest.Client, opts jsonrequest.Options, s *settings) error {
	summary, err := bench.Run(ctx, bench.Config{
		Iterations:  s.repeat,
		Concurrency: s.concurrency,
		Rate:        s.rate,
	}, func(ctx context.Context) error {
		_, err := client.Request(ctx, opts)
		return err
	})
	if err != nil && summary.Total == 0 {
		return &ExitError{Code: ExitNetworkError, Err: err}
	}

	fmt.Fprint(stdout, formatter.FormatSummary(summary))
	if summary.Failed > 0 {
		return &ExitError{
			Code:     ExitHTTPError,
			Err:      fmt.Errorf("%d of %d requests failed", summary.Failed, summary.Total),
			reported: true,
		}
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// noColorFor disables color unless w is a terminal.
func noColorFor(w io.Writer, noColor bool) bool {
	f, ok := w.(*os.File)
	if !ok {
		return true
	}
	return output.ColorDisabled(f, noColor)
}
