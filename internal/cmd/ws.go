package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/netcanis/feat-network/internal/ws"
)

func newWSCmd() *cobra.Command {
	var (
		sendMsgs []string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "ws <url>",
		Short: "Connect to a WebSocket endpoint and stream messages",
		Long: `Connect to a ws:// or wss:// endpoint, optionally send text messages, and
print incoming messages until the server closes, the message limit is
reached, or the process is interrupted.`,
		Example: `  # Stream messages until Ctrl+C
  featnet ws wss://api.example.com/stream

  # Send a message, print the first reply, then exit
  featnet ws wss://api.example.com/stream --send 'hello' --limit 1`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			rawURL := args[0]

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client, err := ws.Dial(ctx, rawURL)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				for _, m := range sendMsgs {
					if err := client.SendText(gctx, m); err != nil {
						return err
					}
				}
				return nil
			})

			g.Go(func() error {
				received := 0
				for msg := range client.Listen(gctx) {
					if msg.Err != nil {
						// A clean close or local interrupt is not a failure.
						if gctx.Err() != nil {
							return nil
						}
						switch websocket.CloseStatus(msg.Err) {
						case websocket.StatusNormalClosure, websocket.StatusGoingAway:
							return nil
						}
						return msg.Err
					}

					if err := printWSMessage(cmd, msg); err != nil {
						return err
					}
					received++
					if limit > 0 && received >= limit {
						return nil
					}
				}
				return nil
			})

			if err := g.Wait(); err != nil {
				return err
			}
			if ctx.Err() != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Interrupted.")
			}
			return nil
		}),
	}

	cmd.Flags().StringArrayVar(&sendMsgs, "send", nil, "Text message to send after connecting (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Exit after receiving this many messages (0 = unlimited)")

	return cmd
}

func printWSMessage(cmd *cobra.Command, msg ws.Message) error {
	if isJSON(cmd) {
		kind := "text"
		payload := map[string]any{}
		if msg.Type == ws.BinaryMessage {
			kind = "binary"
			payload["hex"] = hex.EncodeToString(msg.Data)
		} else {
			payload["data"] = string(msg.Data)
		}
		payload["type"] = kind
		return printJSON(cmd, payload)
	}

	if msg.Type == ws.BinaryMessage {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(msg.Data))
		return nil
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(msg.Data))
	return nil
}
