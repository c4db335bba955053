package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var prereqsCmd = &cobra.Command{
	Use:     "prereqs NAME",
	Aliases: []string{"prerequisites"},
	Short:   "List what must be learned before a concept",
	Long: `List the concepts with a prerequisite edge into NAME, strongest
edge first.

Examples:
  studygraph prereqs Algorithms
  studygraph prereqs "Machine Learning"`,
	Args: cobra.ExactArgs(1),
	Run:  runPrereqs,
}

func init() {
	rootCmd.AddCommand(prereqsCmd)
}

func runPrereqs(cmd *cobra.Command, args []string) {
	res, err := newClient().Prerequisites(args[0])
	if err != nil {
		fail("prerequisites lookup failed", err)
	}

	if jsonOutput {
		outputJSON(res)
		return
	}

	if res.PrerequisiteCount == 0 {
		fmt.Printf("%s has no prerequisites.\n", res.Node.Name)
		return
	}
	fmt.Printf("Prerequisites of %s (%d):\n\n", res.Node.Name, res.PrerequisiteCount)
	for _, n := range res.Prerequisites {
		fmt.Println("  " + nodeLine(n))
	}
}
