package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var similarCmd = &cobra.Command{
	Use:   "similar NAME",
	Short: "List the other concepts at a concept's difficulty",
	Long: `List every other concept sharing NAME's exact difficulty level.

Concepts without a difficulty level have no similar set.

Examples:
  studygraph similar Trees
  studygraph similar "Linear Algebra"`,
	Args: cobra.ExactArgs(1),
	Run:  runSimilar,
}

func init() {
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) {
	res, err := newClient().Similar(args[0])
	if err != nil {
		fail("similar lookup failed", err)
	}

	if jsonOutput {
		outputJSON(res)
		return
	}

	if res.DifficultyLevel == nil {
		fmt.Printf("%s has no difficulty level.\n", res.Node.Name)
		return
	}
	if res.SimilarCount == 0 {
		fmt.Printf("No other concepts at difficulty %v.\n", res.DifficultyLevel)
		return
	}
	fmt.Printf("Concepts at difficulty %v (%d):\n\n", res.DifficultyLevel, res.SimilarCount)
	for _, n := range res.SimilarNodes {
		fmt.Println("  " + nodeLine(n))
	}
}
