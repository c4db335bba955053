package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studygraph/studygraph/cmd/studygraph/client"
)

var (
	serverURL  string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "studygraph",
	Short: "Query a concept graph of levels, topics, and subtopics",
	Long: `studygraph is a command line client for the studygraph server.

It answers retrieval questions over a curriculum concept graph: what a
concept is, what it requires, what it unlocks, and how to get from one
concept to another through prerequisite edges.

The server address comes from --server, then the STUDYGRAPH_SERVER
environment variable, then http://localhost:8080.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "",
		"Server base URL (default STUDYGRAPH_SERVER or http://localhost:8080)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output as JSON for scripting")
}

// newClient resolves the server address. Precedence: --server flag, then
// STUDYGRAPH_SERVER, then the local default.
func newClient() *client.Client {
	addr := serverURL
	if addr == "" {
		addr = os.Getenv("STUDYGRAPH_SERVER")
	}
	return client.New(addr)
}

// outputJSON prints any result as indented JSON.
func outputJSON(result any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
}

// fail prints an error and exits.
func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}

// nodeLine formats one node for list output.
func nodeLine(n *client.Node) string {
	line := n.Name
	if len(n.Labels) > 0 {
		line += "  [" + strings.Join(n.Labels, ", ") + "]"
	}
	if d, ok := n.Properties["difficulty"]; ok {
		line += fmt.Sprintf("  difficulty=%v", d)
	}
	return line
}

// printNode prints a node followed by its properties in key order. The
// name property is skipped; it is already on the first line.
func printNode(n *client.Node) {
	fmt.Println(nodeLine(n))

	keys := make([]string, 0, len(n.Properties))
	for k := range n.Properties {
		if k == "name" || k == "difficulty" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %v\n", k, n.Properties[k])
	}
}
