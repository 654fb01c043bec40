package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/Songmu/retry"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/incidentd/pkg/config"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the incidents server to be ready",
	Long: `Wait for the incidents server to be ready by polling the status endpoint.

This command will repeatedly check the server status until it responds
successfully or the maximum number of retries is reached.

Example:
  incidentctl wait
  incidentctl wait --port 3000 --retries 60`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		retries, _ := cmd.Flags().GetUint("retries")

		url := fmt.Sprintf("http://localhost:%d/", port)
		if err := waitForServer(cmd.OutOrStdout(), url, retries, time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "Server did not become ready: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().IntP("port", "p", defaultPort(), "Server port to check")
	waitCmd.Flags().UintP("retries", "r", 90, "Number of retries")
}

func defaultPort() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return config.Default().Port
}

func waitForServer(out io.Writer, url string, retries uint, interval time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	if retries == 0 {
		retries = 1
	}

	fmt.Fprintln(out, "Waiting for incidentd to be ready...")

	err := retry.Retry(retries, interval, func() error {
		resp, err := client.Get(url)
		if err != nil {
			fmt.Fprint(out, ".")
			return err
		}
		_ = resp.Body.Close()
		if resp.StatusCode >= 300 {
			fmt.Fprint(out, ".")
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		return nil
	})
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("incidentd is not ready after %d attempts: %w", retries, err)
	}

	fmt.Fprintln(out, "incidentd is ready!")
	return nil
}
