package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "incidentctl",
	Short: "Run and manage the incidents service",
	Long: `Run and manage the incidents service.

Settings come from $INCIDENTS_CONFIG_PATH/incidents.yml and the environment.
A .env file in the working directory is loaded first when present.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := loadDotEnv(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
			os.Exit(1)
		}
	},
}

// loadDotEnv loads path into the environment when it exists. Variables that
// are already set win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
