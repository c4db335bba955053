package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studygraph/studygraph/cmd/studygraph/client"
)

var (
	searchLabel      string
	searchDifficulty string
	searchLimit      int
	searchOrder      string
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search concepts by name, description, or key concepts",
	Long: `Search concepts by case-insensitive substring match.

Matches against names and descriptions; with --order=relevance the key
concepts list is searched too and results rank by match quality instead
of name.

Examples:
  studygraph search algebra
  studygraph search "data structures" --label Topic
  studygraph search recursion --order relevance --limit 5`,
	Args: cobra.ExactArgs(1),
	Run:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchLabel, "label", "",
		"Filter by label: Level, Topic, or Subtopic")
	searchCmd.Flags().StringVar(&searchDifficulty, "difficulty", "",
		"Filter by exact difficulty")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0,
		"Maximum results (0 = server default)")
	searchCmd.Flags().StringVar(&searchOrder, "order", "",
		"Result order: name or relevance")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	res, err := newClient().Search(args[0], client.SearchOptions{
		Label:      searchLabel,
		Difficulty: searchDifficulty,
		Limit:      searchLimit,
		Order:      searchOrder,
	})
	if err != nil {
		fail("search failed", err)
	}

	if jsonOutput {
		outputJSON(res)
		return
	}

	if res.Count == 0 {
		fmt.Println("No matches.")
		return
	}
	fmt.Printf("Found %d concepts:\n\n", res.Count)
	for _, n := range res.Results {
		fmt.Println("  " + nodeLine(n))
	}
}
