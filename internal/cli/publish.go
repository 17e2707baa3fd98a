package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/knxpanel/internal/knx"
	"github.com/shaiso/knxpanel/internal/mq"
	"github.com/shaiso/knxpanel/internal/telemetry"
)

// PublishOptions — параметры публикуемой телеграммы.
type PublishOptions struct {
	AMQPURL     string
	Destination string
	Source      string
	APCI        string
	Data        string
	Direction   string
}

// Telegram собирает телеграмму из параметров.
func (o PublishOptions) Telegram(now time.Time) (knx.Telegram, error) {
	wire := knx.WireTelegram{
		DestinationAddress: o.Destination,
		SourceAddress:      o.Source,
		APCI:               knx.APCI(o.APCI),
		Data:               o.Data,
		Direction:          knx.Direction(o.Direction),
	}
	return wire.Telegram(func() time.Time { return now })
}

// NewPublishCmd создаёт команду публикации тестовой телеграммы в AMQP-feed.
func NewPublishCmd(outputFn func() *Output) *cobra.Command {
	opts := PublishOptions{
		AMQPURL: os.Getenv("AMQP_URL"),
	}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a telegram to the AMQP feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			t, err := opts.Telegram(time.Now())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			logger := telemetry.NewLogger(os.Stderr, slog.LevelWarn, "text")
			conn, err := mq.NewConnection(mq.ConnectionConfig{URL: opts.AMQPURL, Logger: logger})
			if err != nil {
				return err
			}
			defer conn.Close()

			topo := mq.DefaultTopology()
			if err := mq.SetupTopology(ctx, conn, topo); err != nil {
				return err
			}

			if err := mq.NewPublisher(conn, logger, topo).PublishTelegram(ctx, t); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Published %s %s → %s",
				t.Payload.APCI, t.SourceAddress, t.DestinationAddress))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.AMQPURL, "amqp-url", opts.AMQPURL, "RabbitMQ URL (default $AMQP_URL or local broker)")
	cmd.Flags().StringVar(&opts.Destination, "dst", "", "Destination group address, e.g. 1/2/3")
	cmd.Flags().StringVar(&opts.Source, "src", "1.1.250", "Source individual address")
	cmd.Flags().StringVar(&opts.APCI, "apci", string(knx.GroupValueWrite), "GroupValueRead, GroupValueResponse or GroupValueWrite")
	cmd.Flags().StringVar(&opts.Data, "data", "", "Payload as hex, e.g. 0x01")
	cmd.Flags().StringVar(&opts.Direction, "direction", string(knx.DirectionIncoming), "incoming or outgoing")
	cmd.MarkFlagRequired("dst")

	return cmd
}
