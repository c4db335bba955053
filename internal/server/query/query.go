// Package query assembles the Cypher executed against the graph store.
// Every statement lives here as a named Plan so failures can be reported
// by plan ID without echoing user input. Only validated schema tokens and
// bounded integers are ever interpolated into query text; names, terms,
// and difficulty values travel as bound parameters.
package query

import (
	"errors"
	"fmt"

	"github.com/studygraph/studygraph/internal/server/schema"
)

// Plan is a prepared Cypher statement with a stable identifier.
type Plan struct {
	ID   string
	Text string
}

// Bounds applied to caller-supplied knobs. Limits and context depth clamp;
// path depth rejects, because an unbounded variable-length match is the one
// knob that can take the store down.
const (
	DefaultLimit = 10
	MinLimit     = 1
	MaxLimit     = 500

	DefaultContextDepth = 1
	MinContextDepth     = 1
	MaxContextDepth     = 4

	DefaultPathDepth = 5
	MinPathDepth     = 1
	MaxPathDepth     = 10
)

// ErrDepthOutOfRange reports a path depth outside [MinPathDepth, MaxPathDepth].
var ErrDepthOutOfRange = errors.New("max depth out of range [1, 10]")

// ClampLimit normalises a result limit. Zero or negative selects the default.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ClampContextDepth normalises a neighbourhood expansion depth. Zero or
// negative selects the default.
func ClampContextDepth(depth int) int {
	if depth <= 0 {
		return DefaultContextDepth
	}
	if depth > MaxContextDepth {
		return MaxContextDepth
	}
	return depth
}

// CheckPathDepth validates a path search depth. Zero selects the default;
// anything else outside [MinPathDepth, MaxPathDepth] is rejected.
func CheckPathDepth(depth int) (int, error) {
	if depth == 0 {
		return DefaultPathDepth, nil
	}
	if depth < MinPathDepth || depth > MaxPathDepth {
		return 0, ErrDepthOutOfRange
	}
	return depth, nil
}

// resolveClause matches the single node a free-text name resolves to:
// case-insensitive containment, exact matches preferred, ties broken by
// name. Every operation that anchors on a name shares this fragment so
// the same input always resolves to the same node.
func resolveClause(v, param string) string {
	return fmt.Sprintf(`MATCH (%[1]s) WHERE toLower(%[1]s.name) CONTAINS toLower($%[2]s)
WITH %[1]s ORDER BY CASE WHEN toLower(%[1]s.name) = toLower($%[2]s) THEN 0 ELSE 1 END, %[1]s.name
LIMIT 1`, v, param)
}

// SearchOptions selects the optional filters and ordering of a search plan.
type SearchOptions struct {
	// Label restricts matches to one node label. Empty means no restriction.
	Label schema.Label
	// Difficulty enables the difficulty equality filter; the value itself
	// is bound as $difficulty.
	Difficulty bool
	// ByRelevance orders by tiered match quality instead of name, and
	// widens matching to key concepts.
	ByRelevance bool
}

// Search builds the concept search plan. Parameters: $term, $limit, and
// $difficulty when the difficulty filter is enabled.
func Search(opts SearchOptions) Plan {
	match := "MATCH (n)"
	if opts.Label != "" {
		match = fmt.Sprintf("MATCH (n:%s)", opts.Label)
	}

	where := `(toLower(n.name) CONTAINS toLower($term)
   OR toLower(coalesce(n.description, '')) CONTAINS toLower($term)`
	if opts.ByRelevance {
		where += `
   OR any(k IN coalesce(n.key_concepts, []) WHERE toLower(k) CONTAINS toLower($term))`
	}
	where += ")"
	if opts.Difficulty {
		where += `
  AND n.difficulty = $difficulty`
	}

	if opts.ByRelevance {
		return Plan{
			ID: "search_by_relevance",
			Text: fmt.Sprintf(`%s
WHERE %s
WITH n, CASE
      WHEN toLower(n.name) = toLower($term) THEN 1.0
      WHEN toLower(n.name) CONTAINS toLower($term) THEN 0.8
      WHEN toLower(coalesce(n.description, '')) CONTAINS toLower($term) THEN 0.6
      ELSE 0.4 END AS relevance
RETURN n, relevance
ORDER BY relevance DESC, n.difficulty ASC, n.name
LIMIT $limit`, match, where),
		}
	}
	return Plan{
		ID: "search",
		Text: fmt.Sprintf(`%s
WHERE %s
RETURN n
ORDER BY n.name
LIMIT $limit`, match, where),
	}
}

// NodeDetails resolves one node by name. Parameter: $name.
func NodeDetails() Plan {
	return Plan{
		ID: "node_details",
		Text: resolveClause("n", "name") + `
RETURN n`,
	}
}

// Context resolves a node and expands its neighbourhood to the given depth,
// following relationships in both directions. Parameters: $name.
func Context(depth int) Plan {
	depth = ClampContextDepth(depth)
	return Plan{
		ID: "node_context",
		Text: resolveClause("n", "name") + fmt.Sprintf(`
OPTIONAL MATCH (n)-[rels*1..%d]-(connected) WHERE connected <> n
RETURN n, collect(DISTINCT connected) AS connected, collect(rels) AS rels`, depth),
	}
}

// TopicWithSubtopics resolves a topic and collects its subtopics in name
// order. Parameter: $name.
func TopicWithSubtopics() Plan {
	return Plan{
		ID: "topic_subtopics",
		Text: fmt.Sprintf(`MATCH (t:%s) WHERE toLower(t.name) CONTAINS toLower($name)
WITH t ORDER BY CASE WHEN toLower(t.name) = toLower($name) THEN 0 ELSE 1 END, t.name
LIMIT 1
OPTIONAL MATCH (t)-[:%s]->(s:%s)
WITH t, s ORDER BY s.name
RETURN t, collect(s) AS subtopics`, schema.LabelTopic, schema.RelHasSubtopic, schema.LabelSubtopic),
	}
}

// Prerequisites resolves a node and collects the nodes that must be learned
// before it, strongest edge first. Parameter: $name.
func Prerequisites() Plan {
	return Plan{
		ID: "prerequisites",
		Text: resolveClause("n", "name") + fmt.Sprintf(`
OPTIONAL MATCH (p)-[r:%s]->(n)
WITH n, p, r ORDER BY coalesce(r.weight, r.strength, -1.0) DESC, p.name
RETURN n, collect(p) AS prerequisites`, schema.RelPrerequisiteFor),
	}
}

// Dependents resolves a node and collects the nodes it unlocks, strongest
// edge first. Parameter: $name.
func Dependents() Plan {
	return Plan{
		ID: "dependents",
		Text: resolveClause("n", "name") + fmt.Sprintf(`
OPTIONAL MATCH (n)-[r:%s]->(d)
WITH n, d, r ORDER BY coalesce(r.weight, r.strength, -1.0) DESC, d.name
RETURN n, collect(d) AS dependents`, schema.RelPrerequisiteFor),
	}
}

// PathEndpoints resolves both endpoints of a path search in one statement.
// Zero rows means at least one endpoint did not resolve. Parameters:
// $start, $end.
func PathEndpoints() Plan {
	return Plan{
		ID: "path_endpoints",
		Text: `MATCH (s) WHERE toLower(s.name) CONTAINS toLower($start)
WITH s ORDER BY CASE WHEN toLower(s.name) = toLower($start) THEN 0 ELSE 1 END, s.name
LIMIT 1
MATCH (e) WHERE toLower(e.name) CONTAINS toLower($end)
WITH s, e ORDER BY CASE WHEN toLower(e.name) = toLower($end) THEN 0 ELSE 1 END, e.name
LIMIT 1
RETURN s, e`,
	}
}

// ShortestPath finds the shortest prerequisite chain between two already
// resolved nodes, addressed by element ID so the endpoints cannot drift
// from the check that resolved them. Parameters: $startId, $endId.
func ShortestPath(maxDepth int) (Plan, error) {
	depth, err := CheckPathDepth(maxDepth)
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		ID: "shortest_path",
		Text: fmt.Sprintf(`MATCH (s) WHERE elementId(s) = $startId
MATCH (e) WHERE elementId(e) = $endId
MATCH path = shortestPath((s)-[:%s*1..%d]->(e))
RETURN path`, schema.RelPrerequisiteFor, depth),
	}, nil
}

// SimilarByDifficulty resolves a node and collects other nodes at the same
// difficulty, in name order. A node with no difficulty collects nothing.
// Parameters: $name, $limit.
func SimilarByDifficulty() Plan {
	return Plan{
		ID: "similar_by_difficulty",
		Text: resolveClause("n", "name") + `
OPTIONAL MATCH (similar)
WHERE similar <> n AND n.difficulty IS NOT NULL AND similar.difficulty = n.difficulty
WITH n, similar ORDER BY similar.name
LIMIT $limit
RETURN n, n.difficulty AS difficulty, collect(similar) AS similar`,
	}
}

// AllLevels lists every level in curriculum order.
func AllLevels() Plan {
	return Plan{
		ID: "all_levels",
		Text: fmt.Sprintf(`MATCH (l:%s)
RETURN l
ORDER BY l.order, l.name`, schema.LabelLevel),
	}
}
