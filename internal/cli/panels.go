package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewPanelsCmd создаёт группу команд для просмотра панелей.
func NewPanelsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panels",
		Short: "Inspect sidebar panels",
	}

	cmd.AddCommand(
		newPanelsListCmd(clientFn, outputFn),
		newPanelsShowCmd(clientFn, outputFn),
	)

	return cmd
}

var panelHeaders = []string{"URL PATH", "COMPONENT", "TITLE", "ICON", "ADMIN"}

func panelRow(p PanelResponse) []string {
	return []string{p.URLPath, p.ComponentName, p.Title, p.Icon, strconv.FormatBool(p.RequireAdmin)}
}

func newPanelsListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered panels",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			panels, err := client.ListPanels()
			if err != nil {
				return err
			}

			rows := make([][]string, len(panels))
			for i, p := range panels {
				rows[i] = panelRow(p)
			}

			out.Print(panelHeaders, rows, panels)
			return nil
		},
	}
}

func newPanelsShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show <url_path>",
		Short: "Show panel details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			panel, err := client.GetPanel(args[0])
			if err != nil {
				return err
			}

			out.Print(panelHeaders, [][]string{panelRow(*panel)}, panel)

			if custom, ok := panel.Config["_panel_custom"].(map[string]any); ok {
				out.Success(fmt.Sprintf("Module: %v, script: %v", custom["name"], custom["js_url"]))
			}
			return nil
		},
	}
}
