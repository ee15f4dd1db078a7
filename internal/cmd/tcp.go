package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/netcanis/feat-network/internal/tcp"
	"github.com/netcanis/feat-network/internal/validation"
)

func newTCPCmd() *cobra.Command {
	var (
		sendData    string
		hexOutput   bool
		noReceive   bool
		dialTimeout time.Duration
		chunkSize   int
	)

	cmd := &cobra.Command{
		Use:   "tcp <host> <port>",
		Short: "Exchange one message with a TCP server",
		Long: `Connect to a TCP server, optionally send a payload, and read one
response chunk.

A single read returns at most --chunk-size bytes (1024 by default); servers
that stream more data need repeated invocations or a higher chunk size.`,
		Example: `  # Send a line and print the reply
  featnet tcp example.com 7000 --send 'PING'

  # Print the reply as hex
  featnet tcp example.com 7000 --send 'PING' --hex

  # Fire and forget
  featnet tcp example.com 7000 --send 'PING' --no-receive`,
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			host := args[0]
			port, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid port %q: must be an integer", args[1])
			}
			if err := validation.ValidateHostPort(net.JoinHostPort(host, args[1])); err != nil {
				return err
			}

			client := tcp.NewClient(
				tcp.DialTimeoutOption(dialTimeout),
				tcp.ChunkSizeOption(chunkSize),
				tcp.OnStateOption(func(s tcp.State) {
					slog.Debug("tcp: state changed", "state", s.String())
				}),
			)

			if err := client.Connect(cmd.Context(), host, port); err != nil {
				return err
			}
			defer client.Disconnect()

			if sendData != "" {
				if err := client.Send([]byte(sendData)); err != nil {
					return err
				}
			}

			if noReceive {
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), flags.Timeout)
			defer cancel()
			data, err := client.Receive(ctx)
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"bytes": len(data),
					"data":  string(data),
					"hex":   hex.EncodeToString(data),
				})
			}

			if hexOutput {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(data))
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}),
	}

	cmd.Flags().StringVar(&sendData, "send", "", "Payload to send after connecting")
	cmd.Flags().BoolVar(&hexOutput, "hex", false, "Print the response as hex")
	cmd.Flags().BoolVar(&noReceive, "no-receive", false, "Skip reading a response")
	cmd.Flags().DurationVar(&dialTimeout, "dial-timeout", 10*time.Second, "Connection timeout")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 1024, "Maximum bytes to read in one receive")

	return cmd
}
