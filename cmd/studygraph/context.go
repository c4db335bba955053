package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var contextDepth int

var contextCmd = &cobra.Command{
	Use:   "context NAME",
	Short: "Show a concept with its neighbourhood",
	Long: `Show a concept and everything connected to it within a few hops,
in either direction, along with the relationship types seen on the way.

Examples:
  studygraph context Algorithms
  studygraph context Algorithms --depth 2`,
	Args: cobra.ExactArgs(1),
	Run:  runContext,
}

func init() {
	contextCmd.Flags().IntVar(&contextDepth, "depth", 0,
		"Traversal depth 1-4 (0 = server default)")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) {
	res, err := newClient().NodeContext(args[0], contextDepth)
	if err != nil {
		fail("context lookup failed", err)
	}

	if jsonOutput {
		outputJSON(res)
		return
	}

	printNode(res.Node)

	if len(res.ConnectedNodes) == 0 {
		fmt.Println("\nNo connected concepts.")
		return
	}
	fmt.Printf("\nConnected concepts (%d):\n", len(res.ConnectedNodes))
	for _, n := range res.ConnectedNodes {
		fmt.Println("  " + nodeLine(n))
	}
	fmt.Printf("\nRelationship types: %s\n", strings.Join(res.RelationshipTypes, ", "))
}
