package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server is up",
	Args:  cobra.NoArgs,
	Run:   runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) {
	if err := newClient().Health(); err != nil {
		fail("health check failed", err)
	}

	if jsonOutput {
		outputJSON(map[string]string{"status": "ok"})
		return
	}
	fmt.Println("Server is up.")
}
