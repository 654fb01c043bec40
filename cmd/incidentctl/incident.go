package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/incidentd/pkg/db"
	"github.com/doodlesbykumbi/incidentd/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/incidentd/pkg/server/store/gorm"
)

// incidentCmd represents the incident command
var incidentCmd = &cobra.Command{
	Use:   "incident",
	Short: "Manage incidents directly in the database",
	Long: `Manage incidents directly in the database.

These commands apply the same validation as the HTTP API and do not need a
running server.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'incident' requires a subcommand (list, create, delete)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(incidentCmd)
}

// openIncidentsStore connects to the configured database. The returned
// function closes the connection.
func openIncidentsStore() (store.IncidentsStore, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	gdb, err := connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return gormstore.NewIncidentsStore(gdb), func() { _ = db.Close(gdb) }, nil
}
