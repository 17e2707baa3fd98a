// knxpanel CLI — инструмент командной строки для просмотра панели,
// состояния шлюза KNX и потока телеграмм.
//
// Использование:
//
//	knxpanel-cli [--url URL] [--json] <command> [flags]
//
// Команды:
//
//	info       Состояние шлюза (panel/info)
//	monitor    Живой поток телеграмм (panel/subscribe_telegrams)
//	telegrams  Последние телеграммы
//	panels     Зарегистрированные панели
//	publish    Отправка телеграммы в AMQP-feed
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/knxpanel/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var serverURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "knxpanel-cli",
		Short:         "knxpanel CLI — KNX admin panel client",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "url", "http://localhost:8123", "knxpanel server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(serverURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewInfoCmd(clientFn, outputFn),
		cli.NewMonitorCmd(clientFn, outputFn),
		cli.NewTelegramsCmd(clientFn, outputFn),
		cli.NewPanelsCmd(clientFn, outputFn),
		cli.NewPublishCmd(outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
