package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/incidentd/pkg/server/store"
)

// incidentDeleteCmd represents the incident delete command
var incidentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an incident",
	Long: `Delete an incident by id.

Example:
  incidentctl incident delete 42`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id < 1 {
			fmt.Fprintf(os.Stderr, "Invalid incident id: %q\n", args[0])
			os.Exit(1)
		}

		incidents, closeStore, err := openIncidentsStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
			os.Exit(1)
		}
		defer closeStore()

		if err := deleteIncident(cmd.Context(), cmd.OutOrStdout(), incidents, id); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to delete incident: %v\n", err)
			closeStore()
			os.Exit(1)
		}
	},
}

func init() {
	incidentCmd.AddCommand(incidentDeleteCmd)
}

func deleteIncident(ctx context.Context, out io.Writer, incidents store.IncidentsStore, id int64) error {
	if err := incidents.DeleteIncident(ctx, id); err != nil {
		if errors.Is(err, store.ErrIncidentNotFound) {
			return fmt.Errorf("incident %d not found", id)
		}
		return err
	}
	fmt.Fprintf(out, "Deleted incident %d\n", id)
	return nil
}
