package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/incidentd/pkg/schema"
	"github.com/doodlesbykumbi/incidentd/pkg/server/store"
)

// incidentListCmd represents the incident list command
var incidentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List incidents, most recently reported first",
	Long: `List incidents, most recently reported first.

Example:
  incidentctl incident list
  incidentctl incident list --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		incidents, closeStore, err := openIncidentsStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
			os.Exit(1)
		}
		defer closeStore()

		if err := listIncidents(cmd.Context(), cmd.OutOrStdout(), incidents, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list incidents: %v\n", err)
			closeStore()
			os.Exit(1)
		}
	},
}

func init() {
	incidentCmd.AddCommand(incidentListCmd)
	incidentListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func listIncidents(ctx context.Context, out io.Writer, incidents store.IncidentsStore, output string) error {
	if output != "text" && output != "json" {
		return fmt.Errorf("unknown output format %q", output)
	}

	list, err := incidents.ListIncidents(ctx)
	if err != nil {
		return err
	}
	dumped := schema.DumpAll(list)

	if output == "json" {
		data, err := json.MarshalIndent(dumped, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "%-8s %-8s %-34s %s\n", "ID", "SEVERITY", "REPORTED AT", "TITLE")
	for _, inc := range dumped {
		fmt.Fprintf(out, "%-8d %-8s %-34s %s\n", inc.ID, inc.Severity, inc.ReportedAt, inc.Title)
	}
	return nil
}
