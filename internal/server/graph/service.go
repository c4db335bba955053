// Package graph exposes read operations over a concept graph of levels,
// topics, and subtopics joined by typed relationships. The primary backend
// is Neo4j; an embedded SQLite backend covers single-binary deployments and
// tests. Both implement Service with identical result shapes.
package graph

import (
	"context"
	"strconv"
)

// Node is one concept as returned to callers. Labels is always populated
// and sorted; Properties carries the store properties verbatim. The store
// identity is kept for in-process bookkeeping but never serialised.
type Node struct {
	ID         string         `json:"-"`
	Name       string         `json:"name"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

// SearchParams are the optional filters of a Search call. Zero values mean
// unfiltered. Limit is clamped by the engine.
type SearchParams struct {
	Term       string
	Label      string
	Difficulty string
	Limit      int
	// ByRelevance orders results by match quality instead of name.
	ByRelevance bool
}

// SearchResult lists the nodes matching a search, ordered and truncated.
type SearchResult struct {
	Count   int     `json:"count"`
	Results []*Node `json:"results"`
}

// NodeResult carries a single resolved node. Node is nil when nothing
// matched; that is a structural outcome, not an error.
type NodeResult struct {
	Node *Node `json:"node"`
}

// ContextResult is a node with its neighbourhood: the deduplicated nodes
// reachable within the requested depth and the deduplicated relationship
// types seen on the way.
type ContextResult struct {
	Node              *Node    `json:"node"`
	ConnectedNodes    []*Node  `json:"connected_nodes"`
	RelationshipTypes []string `json:"relationship_types"`
}

// TopicResult is a topic with its subtopics in name order.
type TopicResult struct {
	Topic         *Node   `json:"topic"`
	Subtopics     []*Node `json:"subtopics"`
	SubtopicCount int     `json:"subtopic_count"`
}

// PrereqResult lists what must be learned before a node, strongest edge
// first.
type PrereqResult struct {
	Node              *Node   `json:"node"`
	Prerequisites     []*Node `json:"prerequisites"`
	PrerequisiteCount int     `json:"prerequisite_count"`
}

// DependentsResult lists what a node unlocks.
type DependentsResult struct {
	Node           *Node   `json:"node"`
	Dependents     []*Node `json:"dependents"`
	DependentCount int     `json:"dependent_count"`
}

// PathStatus discriminates the three outcomes of a path search.
type PathStatus string

const (
	PathFound         PathStatus = "found"
	PathNodesNotFound PathStatus = "nodes_not_found"
	PathNotFound      PathStatus = "no_path"
)

// Fixed messages accompanying each path status.
const (
	MsgPathFound     = "Path found successfully"
	MsgNodesNotFound = "One or both nodes not found"
	MsgNoPath        = "No path found within depth limit"
)

// PathResult is the outcome of a learning path search. StartNode and
// EndNode echo the request until resolution succeeds, then carry the
// resolved names so a no_path outcome still shows what was searched
// between. PathLength is the hop count, len(Path)-1.
type PathResult struct {
	StartNode  string     `json:"start_node"`
	EndNode    string     `json:"end_node"`
	Status     PathStatus `json:"status"`
	Message    string     `json:"message"`
	Path       []*Node    `json:"path"`
	PathLength int        `json:"path_length"`
}

// SimilarityResult lists the other nodes sharing a node's difficulty.
// DifficultyLevel is nil when the node has no difficulty property, and the
// similar set is then empty.
type SimilarityResult struct {
	Node            *Node   `json:"node"`
	DifficultyLevel any     `json:"difficulty_level"`
	SimilarNodes    []*Node `json:"similar_nodes"`
	SimilarCount    int     `json:"similar_count"`
}

// Service is the read interface over the concept graph. Name inputs resolve
// by case-insensitive substring containment, exact matches preferred and
// ties broken lexicographically, so the same input always anchors the same
// node. A failed resolution surfaces as a nil node field, never as an
// error; errors mean the store call itself failed.
type Service interface {
	// Search returns nodes matching the term in name or description
	// (key concepts too when ordering by relevance), optionally filtered
	// by label and difficulty.
	Search(ctx context.Context, p SearchParams) (*SearchResult, error)

	// NodeDetails resolves one node by name.
	NodeDetails(ctx context.Context, name string) (*NodeResult, error)

	// NodeContext resolves a node and expands its neighbourhood up to
	// depth hops in both directions.
	NodeContext(ctx context.Context, name string, depth int) (*ContextResult, error)

	// TopicWithSubtopics resolves a topic and lists its subtopics.
	TopicWithSubtopics(ctx context.Context, name string) (*TopicResult, error)

	// Prerequisites lists the nodes with a prerequisite edge into the
	// resolved node.
	Prerequisites(ctx context.Context, name string) (*PrereqResult, error)

	// Dependents lists the nodes the resolved node is a prerequisite for.
	Dependents(ctx context.Context, name string) (*DependentsResult, error)

	// LearningPath finds the shortest prerequisite chain from start to
	// end, bounded to maxDepth hops. maxDepth outside the permitted range
	// is rejected with query.ErrDepthOutOfRange before any store call.
	LearningPath(ctx context.Context, start, end string, maxDepth int) (*PathResult, error)

	// SimilarByDifficulty lists the other nodes at the resolved node's
	// exact difficulty, excluded by identity rather than name.
	SimilarByDifficulty(ctx context.Context, name string) (*SimilarityResult, error)

	// Levels lists every level in curriculum order.
	Levels(ctx context.Context) ([]*Node, error)

	// Close releases the backing store.
	Close(ctx context.Context) error
}

// DifficultyValue converts a difficulty filter string to the type it is
// stored under. Graph data stores numeric difficulties, so integers and
// floats bind numerically; anything else binds as text.
func DifficultyValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
