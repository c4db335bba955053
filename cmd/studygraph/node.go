package main

import (
	"github.com/spf13/cobra"
)

var nodeCmd = &cobra.Command{
	Use:   "node NAME",
	Short: "Show one concept's details",
	Long: `Show a concept's labels and properties.

Names resolve by case-insensitive substring match; an exact match wins
over a longer one.

Examples:
  studygraph node "Data Structures"
  studygraph node recursion`,
	Args: cobra.ExactArgs(1),
	Run:  runNode,
}

func init() {
	rootCmd.AddCommand(nodeCmd)
}

func runNode(cmd *cobra.Command, args []string) {
	res, err := newClient().Node(args[0])
	if err != nil {
		fail("node lookup failed", err)
	}

	if jsonOutput {
		outputJSON(res)
		return
	}
	printNode(res.Node)
}
