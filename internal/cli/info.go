package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// requestTimeout — таймаут одиночной команды канала.
const requestTimeout = 10 * time.Second

// NewInfoCmd создаёт команду panel/info.
func NewInfoCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show KNX gateway info",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			ws, err := DialWS(ctx, client.BaseURL())
			if err != nil {
				return err
			}
			defer ws.Close()

			info, err := ws.Info(ctx)
			if err != nil {
				return err
			}

			out.Print(
				[]string{"VERSION", "CONNECTED", "ADDRESS"},
				[][]string{{info.Version, strconv.FormatBool(info.Connected), info.CurrentAddress}},
				info,
			)
			return nil
		},
	}
}
