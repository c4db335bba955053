package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studygraph/studygraph/cmd/studygraph/client"
)

var pathMaxDepth int

var pathCmd = &cobra.Command{
	Use:   "path START END",
	Short: "Find the shortest prerequisite chain between two concepts",
	Long: `Find the shortest chain of prerequisite edges leading from START
to END. The search is bounded: chains longer than --max-depth hops are
not considered.

Examples:
  studygraph path "Programming Basics" Databases
  studygraph path Arithmetic Calculus --max-depth 8`,
	Args: cobra.ExactArgs(2),
	Run:  runPath,
}

func init() {
	pathCmd.Flags().IntVar(&pathMaxDepth, "max-depth", 0,
		"Maximum chain length in hops, 1-10 (0 = server default)")
	rootCmd.AddCommand(pathCmd)
}

func runPath(cmd *cobra.Command, args []string) {
	res, err := newClient().LearningPath(args[0], args[1], pathMaxDepth)
	if err != nil {
		fail("path search failed", err)
	}

	if jsonOutput {
		outputJSON(res)
		if res.Status == client.StatusNodesNotFound {
			os.Exit(1)
		}
		return
	}

	switch res.Status {
	case client.StatusFound:
		names := make([]string, 0, len(res.Path))
		for _, n := range res.Path {
			names = append(names, n.Name)
		}
		fmt.Printf("Path found (%d hops):\n\n  %s\n", res.PathLength, strings.Join(names, " -> "))
	case client.StatusNodesNotFound:
		fmt.Fprintf(os.Stderr, "%s: %s, %s\n", res.Message, res.StartNode, res.EndNode)
		os.Exit(1)
	default:
		fmt.Printf("%s: %s -> %s\n", res.Message, res.StartNode, res.EndNode)
	}
}
