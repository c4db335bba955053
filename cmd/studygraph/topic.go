package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var topicCmd = &cobra.Command{
	Use:   "topic NAME",
	Short: "Show a topic with its subtopics",
	Long: `Show a topic and its subtopics in name order.

Examples:
  studygraph topic "Data Structures"
  studygraph topic algebra`,
	Args: cobra.ExactArgs(1),
	Run:  runTopic,
}

func init() {
	rootCmd.AddCommand(topicCmd)
}

func runTopic(cmd *cobra.Command, args []string) {
	res, err := newClient().Topic(args[0])
	if err != nil {
		fail("topic lookup failed", err)
	}

	if jsonOutput {
		outputJSON(res)
		return
	}

	printNode(res.Topic)

	if res.SubtopicCount == 0 {
		fmt.Println("\nNo subtopics.")
		return
	}
	fmt.Printf("\nSubtopics (%d):\n", res.SubtopicCount)
	for _, n := range res.Subtopics {
		fmt.Println("  " + nodeLine(n))
	}
}
