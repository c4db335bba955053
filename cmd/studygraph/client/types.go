package client

// Node is one concept as served by the graph API.
type Node struct {
	Name       string         `json:"name"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

// SearchResult lists the nodes matching a search.
type SearchResult struct {
	Count   int     `json:"count"`
	Results []*Node `json:"results"`
}

// NodeResult carries a single resolved node.
type NodeResult struct {
	Node *Node `json:"node"`
}

// ContextResult is a node with its neighbourhood.
type ContextResult struct {
	Node              *Node    `json:"node"`
	ConnectedNodes    []*Node  `json:"connected_nodes"`
	RelationshipTypes []string `json:"relationship_types"`
}

// TopicResult is a topic with its subtopics.
type TopicResult struct {
	Topic         *Node   `json:"topic"`
	Subtopics     []*Node `json:"subtopics"`
	SubtopicCount int     `json:"subtopic_count"`
}

// PrereqResult lists what must be learned before a node.
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

// Path search outcomes.
const (
	StatusFound         = "found"
	StatusNodesNotFound = "nodes_not_found"
	StatusNoPath        = "no_path"
)

// PathResult is the outcome of a learning path search.
type PathResult struct {
	StartNode  string  `json:"start_node"`
	EndNode    string  `json:"end_node"`
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	Path       []*Node `json:"path"`
	PathLength int     `json:"path_length"`
}

// SimilarityResult lists the other nodes at a node's difficulty.
type SimilarityResult struct {
	Node            *Node   `json:"node"`
	DifficultyLevel any     `json:"difficulty_level"`
	SimilarNodes    []*Node `json:"similar_nodes"`
	SimilarCount    int     `json:"similar_count"`
}

// LevelsResult lists every level in curriculum order.
type LevelsResult struct {
	Count  int     `json:"count"`
	Levels []*Node `json:"levels"`
}
