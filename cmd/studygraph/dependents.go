package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dependentsCmd = &cobra.Command{
	Use:   "dependents NAME",
	Short: "List the concepts a concept unlocks",
	Long: `List the concepts that have NAME as a prerequisite, strongest
edge first.

Examples:
  studygraph dependents "Programming Basics"
  studygraph dependents arithmetic`,
	Args: cobra.ExactArgs(1),
	Run:  runDependents,
}

func init() {
	rootCmd.AddCommand(dependentsCmd)
}

func runDependents(cmd *cobra.Command, args []string) {
	res, err := newClient().Dependents(args[0])
	if err != nil {
		fail("dependents lookup failed", err)
	}

	if jsonOutput {
		outputJSON(res)
		return
	}

	if res.DependentCount == 0 {
		fmt.Printf("%s unlocks nothing.\n", res.Node.Name)
		return
	}
	fmt.Printf("%s unlocks (%d):\n\n", res.Node.Name, res.DependentCount)
	for _, n := range res.Dependents {
		fmt.Println("  " + nodeLine(n))
	}
}
