package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netcanis/feat-network/internal/api"
	"github.com/netcanis/feat-network/internal/config"
	"github.com/netcanis/feat-network/internal/filter"
	"github.com/netcanis/feat-network/internal/iocontext"
	"github.com/netcanis/feat-network/internal/outfmt"
)

// getClient creates an API client from stored credentials
func getClient() (*api.Client, error) {
	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, err
	}
	client := api.New(creds.BaseURL, creds.Token)
	client.SetTimeout(flags.Timeout)
	return client, nil
}

func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

// printJSON outputs data as JSON with optional --jq filtering
func printJSON(cmd *cobra.Command, v any) error {
	ioStreams := iocontext.GetIO(cmd.Context())
	compact := outfmt.IsCompact(cmd.Context())

	if flags.JQ != "" {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		filtered, err := filter.ApplyFromJSON(raw, flags.JQ)
		if err != nil {
			return err
		}
		v = filtered
	}

	if outfmt.IsJSONL(cmd.Context()) {
		if items, ok := v.([]any); ok {
			for _, item := range items {
				if err := outfmt.WriteJSONMaybeCompact(ioStreams.Out, item, true); err != nil {
					return err
				}
			}
			return nil
		}
		return outfmt.WriteJSONMaybeCompact(ioStreams.Out, v, true)
	}

	return outfmt.WriteJSONMaybeCompact(ioStreams.Out, v, compact)
}

// printJSONErr writes a JSON value to stderr.
func printJSONErr(cmd *cobra.Command, v any) error {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.WriteJSON(ioStreams.ErrOut, v)
}

// parseHeaderFlags parses repeated "Key: Value" header flags.
func parseHeaderFlags(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q: expected \"Key: Value\"", v)
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}

// parsePairFlags parses repeated "key=value" flags.
func parsePairFlags(flagName string, values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	pairs := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --%s %q: expected key=value", flagName, v)
		}
		pairs[key] = value
	}
	return pairs, nil
}

// errAlreadyHandled is a sentinel error indicating the error was already
// printed to stderr. Commands using RunE return this to signal Cobra that an
// error occurred (for exit code) without Cobra printing it again (since
// SilenceErrors is true on the root command).
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() error {
	return errAlreadyHandled
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// RunE wraps a command function with enhanced error handling
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err != nil {
			if isJSON(cmd) {
				if structured := api.StructuredErrorFromError(err); structured != nil {
					_ = printJSONErr(cmd, structured)
				}
			} else {
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), HandleError(err))
			}
			// Return a handled error so tests can still inspect the original message.
			return &handledError{err: err, exitCode: ExitCode(err)}
		}
		return nil
	}
}
