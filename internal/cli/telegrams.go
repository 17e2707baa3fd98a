package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var telegramHeaders = []string{"TIME", "SOURCE", "DESTINATION", "DIRECTION", "PAYLOAD"}

func telegramRow(t TelegramResponse) []string {
	return []string{t.Timestamp, t.SourceAddress, t.DestinationAddress, t.Direction, t.Payload}
}

// NewTelegramsCmd создаёт команду просмотра последних телеграмм.
func NewTelegramsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var limit int
	var viaWS bool

	cmd := &cobra.Command{
		Use:   "telegrams",
		Short: "List recent telegrams",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var telegrams []TelegramResponse
			if viaWS {
				ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
				defer cancel()

				ws, err := DialWS(ctx, client.BaseURL())
				if err != nil {
					return err
				}
				defer ws.Close()

				info, err := ws.GroupMonitorInfo(ctx)
				if err != nil {
					return err
				}
				telegrams = info.RecentTelegrams
			} else {
				var err error
				telegrams, err = client.ListTelegrams(limit)
				if err != nil {
					return err
				}
			}

			rows := make([][]string, len(telegrams))
			for i, t := range telegrams {
				rows[i] = telegramRow(t)
			}

			out.Print(telegramHeaders, rows, telegrams)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Max telegrams (server default if 0)")
	cmd.Flags().BoolVar(&viaWS, "ws", false, "Query panel/group_monitor_info instead of HTTP")

	return cmd
}

// NewMonitorCmd создаёт команду живого мониторинга телеграмм.
func NewMonitorCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Stream live telegrams until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ws, err := DialWS(ctx, client.BaseURL())
			if err != nil {
				return err
			}
			defer ws.Close()

			out.Success("Subscribed, press Ctrl+C to stop")

			return ws.SubscribeTelegrams(ctx, func(t TelegramResponse) {
				out.Stream(telegramRow(t), t)
			})
		},
	}
}
