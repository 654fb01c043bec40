package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/incidentd/pkg/schema"
	"github.com/doodlesbykumbi/incidentd/pkg/server/store"
)

// incidentCreateCmd represents the incident create command
var incidentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record a new incident",
	Long: `Record a new incident and print it as JSON.

Severity is one of Low, Medium or High.

Example:
  incidentctl incident create --title "Disk full" --description "/var at 100%" --severity High`,
	Run: func(cmd *cobra.Command, args []string) {
		fields := make(map[string]interface{})
		for _, name := range []string{"title", "description", "severity"} {
			if cmd.Flags().Changed(name) {
				fields[name], _ = cmd.Flags().GetString(name)
			}
		}

		incidents, closeStore, err := openIncidentsStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
			os.Exit(1)
		}
		defer closeStore()

		if err := createIncident(cmd.Context(), cmd.OutOrStdout(), incidents, fields); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create incident: %v\n", err)
			closeStore()
			os.Exit(1)
		}
	},
}

func init() {
	incidentCmd.AddCommand(incidentCreateCmd)
	incidentCreateCmd.Flags().String("title", "", "Incident title")
	incidentCreateCmd.Flags().String("description", "", "Incident description")
	incidentCreateCmd.Flags().String("severity", "", "Incident severity (Low, Medium or High)")
}

func createIncident(ctx context.Context, out io.Writer, incidents store.IncidentsStore, fields map[string]interface{}) error {
	input, err := schema.LoadObject(fields)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w\n%s", err, describeViolations(verr))
		}
		return err
	}

	inc := input.Record()
	if err := incidents.CreateIncident(ctx, inc); err != nil {
		return err
	}

	data, err := json.MarshalIndent(schema.Dump(*inc), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func describeViolations(verr *schema.ValidationError) string {
	var sb strings.Builder
	for _, field := range verr.Fields() {
		for _, msg := range verr.Messages[field] {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", field, msg))
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
