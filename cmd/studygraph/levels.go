package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List every level in curriculum order",
	Args:  cobra.NoArgs,
	Run:   runLevels,
}

func init() {
	rootCmd.AddCommand(levelsCmd)
}

func runLevels(cmd *cobra.Command, args []string) {
	res, err := newClient().Levels()
	if err != nil {
		fail("levels lookup failed", err)
	}

	if jsonOutput {
		outputJSON(res)
		return
	}

	if res.Count == 0 {
		fmt.Println("No levels.")
		return
	}
	fmt.Printf("Levels (%d):\n\n", res.Count)
	for _, n := range res.Levels {
		fmt.Println("  " + nodeLine(n))
	}
}
