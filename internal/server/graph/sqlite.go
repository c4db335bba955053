package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/studygraph/studygraph/internal/server/metrics"
	"github.com/studygraph/studygraph/internal/server/query"
	"github.com/studygraph/studygraph/internal/server/schema"
)

// SQLiteService implements Service over an embedded SQLite file for
// single-binary deployments and tests. Resolution rules, result shapes,
// and bounds match the Neo4j retriever; traversal runs in process instead
// of in the store. Difficulty values are normalised to text for equality
// grouping, so 3, 3.0, and "3" share a bucket.
type SQLiteService struct {
	db      *sql.DB
	log     *zap.Logger
	metrics *metrics.Collector
}

const selectNodeColumns = `SELECT id, name, labels, difficulty, properties FROM nodes`

// NewSQLite opens the graph database at path, creating it and its schema
// when missing.
func NewSQLite(ctx context.Context, path string, log *zap.Logger, collector *metrics.Collector) (*SQLiteService, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &UnavailableError{URI: path, Err: err}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &UnavailableError{URI: path, Err: err}
	}

	for _, pragma := range allPragmas() {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, &UnavailableError{URI: path, Err: fmt.Errorf("applying pragma: %w", err)}
		}
	}

	for _, stmt := range allSchemaStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, &UnavailableError{URI: path, Err: fmt.Errorf("preparing schema: %w", err)}
		}
	}

	log.Info("opened embedded graph store", zap.String("path", path))
	return &SQLiteService{db: db, log: log, metrics: collector}, nil
}

var _ Service = (*SQLiteService)(nil)

// AddNode inserts a concept node and returns its generated ID. The name is
// mirrored into the property map so properties stay the verbatim record of
// the node, matching what the Neo4j backend returns. Labels must be
// registered. The graph is assumed pre-loaded in production; this exists
// to populate embedded stores and test fixtures.
func (s *SQLiteService) AddNode(ctx context.Context, name string, labels []schema.Label, props map[string]any) (string, error) {
	labelStrs := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, err := schema.ValidateLabel(string(l)); err != nil {
			return "", err
		}
		labelStrs = append(labelStrs, string(l))
	}
	sort.Strings(labelStrs)

	merged := make(map[string]any, len(props)+1)
	for k, v := range props {
		merged[k] = v
	}
	merged["name"] = name

	labelsJSON, err := json.Marshal(labelStrs)
	if err != nil {
		return "", fmt.Errorf("encoding labels: %w", err)
	}
	propsJSON, err := json.Marshal(merged)
	if err != nil {
		return "", fmt.Errorf("encoding properties: %w", err)
	}

	var difficulty any
	if key := difficultyKey(merged["difficulty"]); key != "" {
		difficulty = key
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO nodes (id, name, labels, difficulty, properties) VALUES (?, ?, ?, ?, ?)`,
		id, name, string(labelsJSON), difficulty, string(propsJSON))
	if err != nil {
		return "", fmt.Errorf("inserting node: %w", err)
	}
	return id, nil
}

// AddRelationship inserts a typed edge between two existing nodes. The
// type must be registered; the edge weight is taken from the weight or
// strength property when present.
func (s *SQLiteService) AddRelationship(ctx context.Context, sourceID, targetID string, relType schema.RelType, props map[string]any) error {
	if _, err := schema.ValidateRelType(string(relType)); err != nil {
		return err
	}
	if props == nil {
		props = map[string]any{}
	}
	propsJSON, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("encoding relationship properties: %w", err)
	}

	var weight any
	if w, ok := numericProp(props, "weight"); ok {
		weight = w
	} else if w, ok := numericProp(props, "strength"); ok {
		weight = w
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO relationships (source_id, target_id, type, weight, properties) VALUES (?, ?, ?, ?, ?)`,
		sourceID, targetID, string(relType), weight, string(propsJSON))
	if err != nil {
		return fmt.Errorf("inserting relationship: %w", err)
	}
	return nil
}

func (s *SQLiteService) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	started := time.Now()
	plan := "search"
	if p.ByRelevance {
		plan = "search_by_relevance"
	}

	var label schema.Label
	if p.Label != "" {
		l, err := schema.ValidateLabel(p.Label)
		if err != nil {
			return nil, err
		}
		label = l
	}

	// The raw property JSON matches more than the description, so this is
	// only a prefilter; matchTier applies the real predicate.
	q := selectNodeColumns + `
WHERE (lower(name) LIKE '%' || lower(?) || '%' OR lower(properties) LIKE '%' || lower(?) || '%')`
	args := []any{p.Term, p.Term}
	if label != "" {
		q += ` AND labels LIKE ?`
		args = append(args, labelPattern(label))
	}
	if p.Difficulty != "" {
		q += ` AND difficulty = ?`
		args = append(args, difficultyKey(DifficultyValue(p.Difficulty)))
	}
	q += `
ORDER BY name`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, s.fail(plan, started, err)
	}
	defer rows.Close()

	candidates, err := scanNodes(rows)
	if err != nil {
		return nil, s.fail(plan, started, err)
	}

	type ranked struct {
		node *Node
		tier float64
	}
	matches := []ranked{}
	for _, n := range candidates {
		tier, ok := matchTier(n, p.Term, p.ByRelevance)
		if !ok {
			continue
		}
		matches = append(matches, ranked{node: n, tier: tier})
	}
	if p.ByRelevance {
		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].tier != matches[j].tier {
				return matches[i].tier > matches[j].tier
			}
			di, dj := difficultyRank(matches[i].node), difficultyRank(matches[j].node)
			if di != dj {
				return di < dj
			}
			return matches[i].node.Name < matches[j].node.Name
		})
	}

	limit := query.ClampLimit(p.Limit)
	results := []*Node{}
	for _, m := range matches {
		if len(results) == limit {
			break
		}
		results = append(results, m.node)
	}

	s.done(plan, started)
	return &SearchResult{Count: len(results), Results: results}, nil
}

func (s *SQLiteService) NodeDetails(ctx context.Context, name string) (*NodeResult, error) {
	started := time.Now()
	n, err := s.resolveNode(ctx, name, "")
	if err != nil {
		return nil, s.fail("node_details", started, err)
	}
	s.done("node_details", started)
	return &NodeResult{Node: n}, nil
}

func (s *SQLiteService) NodeContext(ctx context.Context, name string, depth int) (*ContextResult, error) {
	started := time.Now()
	depth = query.ClampContextDepth(depth)

	res := &ContextResult{ConnectedNodes: []*Node{}, RelationshipTypes: []string{}}
	anchor, err := s.resolveNode(ctx, name, "")
	if err != nil {
		return nil, s.fail("node_context", started, err)
	}
	if anchor == nil {
		s.done("node_context", started)
		return res, nil
	}
	res.Node = anchor

	visited := map[string]bool{anchor.ID: true}
	frontier := []string{anchor.ID}
	connected := []string{}
	relTypes := map[string]struct{}{}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		next := []string{}
		for _, id := range frontier {
			neighbors, err := s.neighbors(ctx, id)
			if err != nil {
				return nil, s.fail("node_context", started, err)
			}
			for _, nb := range neighbors {
				relTypes[nb.relType] = struct{}{}
				if visited[nb.id] {
					continue
				}
				visited[nb.id] = true
				connected = append(connected, nb.id)
				next = append(next, nb.id)
			}
		}
		frontier = next
	}

	nodes, err := s.loadNodes(ctx, connected)
	if err != nil {
		return nil, s.fail("node_context", started, err)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	res.ConnectedNodes = nodes
	for t := range relTypes {
		res.RelationshipTypes = append(res.RelationshipTypes, t)
	}
	sort.Strings(res.RelationshipTypes)

	s.done("node_context", started)
	return res, nil
}

func (s *SQLiteService) TopicWithSubtopics(ctx context.Context, name string) (*TopicResult, error) {
	started := time.Now()
	res := &TopicResult{Subtopics: []*Node{}}

	topic, err := s.resolveNode(ctx, name, schema.LabelTopic)
	if err != nil {
		return nil, s.fail("topic_subtopics", started, err)
	}
	if topic == nil {
		s.done("topic_subtopics", started)
		return res, nil
	}
	res.Topic = topic

	rows, err := s.db.QueryContext(ctx, `
SELECT n.id, n.name, n.labels, n.difficulty, n.properties
FROM relationships r
JOIN nodes n ON n.id = r.target_id
WHERE r.source_id = ? AND r.type = ? AND n.labels LIKE ?
ORDER BY n.name`,
		topic.ID, string(schema.RelHasSubtopic), labelPattern(schema.LabelSubtopic))
	if err != nil {
		return nil, s.fail("topic_subtopics", started, err)
	}
	defer rows.Close()

	subtopics, err := scanNodes(rows)
	if err != nil {
		return nil, s.fail("topic_subtopics", started, err)
	}
	res.Subtopics = subtopics
	res.SubtopicCount = len(subtopics)

	s.done("topic_subtopics", started)
	return res, nil
}

func (s *SQLiteService) Prerequisites(ctx context.Context, name string) (*PrereqResult, error) {
	started := time.Now()
	res := &PrereqResult{Prerequisites: []*Node{}}

	anchor, err := s.resolveNode(ctx, name, "")
	if err != nil {
		return nil, s.fail("prerequisites", started, err)
	}
	if anchor == nil {
		s.done("prerequisites", started)
		return res, nil
	}
	res.Node = anchor

	rows, err := s.db.QueryContext(ctx, `
SELECT n.id, n.name, n.labels, n.difficulty, n.properties
FROM relationships r
JOIN nodes n ON n.id = r.source_id
WHERE r.target_id = ? AND r.type = ?
ORDER BY coalesce(r.weight, -1.0) DESC, n.name`,
		anchor.ID, string(schema.RelPrerequisiteFor))
	if err != nil {
		return nil, s.fail("prerequisites", started, err)
	}
	defer rows.Close()

	prereqs, err := scanNodes(rows)
	if err != nil {
		return nil, s.fail("prerequisites", started, err)
	}
	res.Prerequisites = prereqs
	res.PrerequisiteCount = len(prereqs)

	s.done("prerequisites", started)
	return res, nil
}

func (s *SQLiteService) Dependents(ctx context.Context, name string) (*DependentsResult, error) {
	started := time.Now()
	res := &DependentsResult{Dependents: []*Node{}}

	anchor, err := s.resolveNode(ctx, name, "")
	if err != nil {
		return nil, s.fail("dependents", started, err)
	}
	if anchor == nil {
		s.done("dependents", started)
		return res, nil
	}
	res.Node = anchor

	rows, err := s.db.QueryContext(ctx, `
SELECT n.id, n.name, n.labels, n.difficulty, n.properties
FROM relationships r
JOIN nodes n ON n.id = r.target_id
WHERE r.source_id = ? AND r.type = ?
ORDER BY coalesce(r.weight, -1.0) DESC, n.name`,
		anchor.ID, string(schema.RelPrerequisiteFor))
	if err != nil {
		return nil, s.fail("dependents", started, err)
	}
	defer rows.Close()

	dependents, err := scanNodes(rows)
	if err != nil {
		return nil, s.fail("dependents", started, err)
	}
	res.Dependents = dependents
	res.DependentCount = len(dependents)

	s.done("dependents", started)
	return res, nil
}

func (s *SQLiteService) LearningPath(ctx context.Context, start, end string, maxDepth int) (*PathResult, error) {
	started := time.Now()
	depth, err := query.CheckPathDepth(maxDepth)
	if err != nil {
		return nil, err
	}

	res := &PathResult{StartNode: start, EndNode: end, Path: []*Node{}}

	startNode, err := s.resolveNode(ctx, start, "")
	if err != nil {
		return nil, s.fail("shortest_path", started, err)
	}
	endNode, err := s.resolveNode(ctx, end, "")
	if err != nil {
		return nil, s.fail("shortest_path", started, err)
	}
	if startNode == nil || endNode == nil {
		res.Status = PathNodesNotFound
		res.Message = MsgNodesNotFound
		s.done("shortest_path", started)
		return res, nil
	}
	res.StartNode = startNode.Name
	res.EndNode = endNode.Name

	if startNode.ID == endNode.ID {
		res.Status = PathFound
		res.Message = MsgPathFound
		res.Path = []*Node{startNode}
		s.done("shortest_path", started)
		return res, nil
	}

	ids, err := s.shortestPathIDs(ctx, startNode.ID, endNode.ID, depth)
	if err != nil {
		return nil, s.fail("shortest_path", started, err)
	}
	if ids == nil {
		res.Status = PathNotFound
		res.Message = MsgNoPath
		s.done("shortest_path", started)
		return res, nil
	}

	nodes, err := s.loadNodes(ctx, ids)
	if err != nil {
		return nil, s.fail("shortest_path", started, err)
	}
	res.Path = nodes
	res.PathLength = len(nodes) - 1
	res.Status = PathFound
	res.Message = MsgPathFound

	s.done("shortest_path", started)
	return res, nil
}

func (s *SQLiteService) SimilarByDifficulty(ctx context.Context, name string) (*SimilarityResult, error) {
	started := time.Now()
	res := &SimilarityResult{SimilarNodes: []*Node{}}

	anchor, err := s.resolveNode(ctx, name, "")
	if err != nil {
		return nil, s.fail("similar_by_difficulty", started, err)
	}
	if anchor == nil {
		s.done("similar_by_difficulty", started)
		return res, nil
	}
	res.Node = anchor

	level := anchor.Properties["difficulty"]
	key := difficultyKey(level)
	if key == "" {
		s.done("similar_by_difficulty", started)
		return res, nil
	}
	res.DifficultyLevel = level

	rows, err := s.db.QueryContext(ctx, selectNodeColumns+`
WHERE difficulty = ? AND id != ?
ORDER BY name
LIMIT ?`,
		key, anchor.ID, query.MaxLimit)
	if err != nil {
		return nil, s.fail("similar_by_difficulty", started, err)
	}
	defer rows.Close()

	similar, err := scanNodes(rows)
	if err != nil {
		return nil, s.fail("similar_by_difficulty", started, err)
	}
	res.SimilarNodes = similar
	res.SimilarCount = len(similar)

	s.done("similar_by_difficulty", started)
	return res, nil
}

func (s *SQLiteService) Levels(ctx context.Context) ([]*Node, error) {
	started := time.Now()

	rows, err := s.db.QueryContext(ctx, selectNodeColumns+` WHERE labels LIKE ?`,
		labelPattern(schema.LabelLevel))
	if err != nil {
		return nil, s.fail("all_levels", started, err)
	}
	defer rows.Close()

	levels, err := scanNodes(rows)
	if err != nil {
		return nil, s.fail("all_levels", started, err)
	}

	sort.SliceStable(levels, func(i, j int) bool {
		oi, oj := orderRank(levels[i]), orderRank(levels[j])
		if oi != oj {
			return oi < oj
		}
		return levels[i].Name < levels[j].Name
	})

	s.done("all_levels", started)
	return levels, nil
}

// Close releases the database handle.
func (s *SQLiteService) Close(context.Context) error {
	return s.db.Close()
}

// resolveNode finds the single node a name resolves to: case-insensitive
// containment, exact matches first, ties broken by name. An optional label
// restricts candidates. Nil without error when nothing matches.
func (s *SQLiteService) resolveNode(ctx context.Context, name string, label schema.Label) (*Node, error) {
	q := selectNodeColumns + `
WHERE lower(name) LIKE '%' || lower(?) || '%'`
	args := []any{name}
	if label != "" {
		q += ` AND labels LIKE ?`
		args = append(args, labelPattern(label))
	}
	q += `
ORDER BY CASE WHEN lower(name) = lower(?) THEN 0 ELSE 1 END, name
LIMIT 1`
	args = append(args, name)

	n, err := scanSQLiteNode(s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return n, err
}

type sqliteNeighbor struct {
	id      string
	relType string
}

// neighbors lists the nodes one hop away in either direction, with the
// relationship type crossed to reach them.
func (s *SQLiteService) neighbors(ctx context.Context, id string) ([]sqliteNeighbor, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT target_id, type FROM relationships WHERE source_id = ?
UNION ALL
SELECT source_id, type FROM relationships WHERE target_id = ?`, id, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []sqliteNeighbor{}
	for rows.Next() {
		var nb sqliteNeighbor
		if err := rows.Scan(&nb.id, &nb.relType); err != nil {
			return nil, err
		}
		out = append(out, nb)
	}
	return out, rows.Err()
}

// shortestPathIDs runs a breadth-first search over prerequisite edges from
// startID towards endID, bounded to maxDepth hops. Neighbors expand in
// name order, which is the tie-break between equal-length paths. Nil when
// no path exists within the bound.
func (s *SQLiteService) shortestPathIDs(ctx context.Context, startID, endID string, maxDepth int) ([]string, error) {
	parent := map[string]string{}
	visited := map[string]bool{startID: true}
	frontier := []string{startID}

	for hop := 0; hop < maxDepth && len(frontier) > 0; hop++ {
		next := []string{}
		for _, id := range frontier {
			targets, err := s.prerequisiteTargets(ctx, id)
			if err != nil {
				return nil, err
			}
			for _, t := range targets {
				if visited[t] {
					continue
				}
				visited[t] = true
				parent[t] = id
				if t == endID {
					path := []string{t}
					for cur := id; ; cur = parent[cur] {
						path = append(path, cur)
						if cur == startID {
							break
						}
					}
					for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
						path[i], path[j] = path[j], path[i]
					}
					return path, nil
				}
				next = append(next, t)
			}
		}
		frontier = next
	}
	return nil, nil
}

// prerequisiteTargets lists the nodes directly unlocked by id, in name
// order.
func (s *SQLiteService) prerequisiteTargets(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT n.id
FROM relationships r
JOIN nodes n ON n.id = r.target_id
WHERE r.source_id = ? AND r.type = ?
ORDER BY n.name`, id, string(schema.RelPrerequisiteFor))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// loadNodes fetches full nodes for a set of IDs, preserving input order.
func (s *SQLiteService) loadNodes(ctx context.Context, ids []string) ([]*Node, error) {
	if len(ids) == 0 {
		return []*Node{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, selectNodeColumns+` WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes, err := scanNodes(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteNode(row rowScanner) (*Node, error) {
	var id, name, labelsJSON, propsJSON string
	var difficulty sql.NullString
	if err := row.Scan(&id, &name, &labelsJSON, &difficulty, &propsJSON); err != nil {
		return nil, err
	}

	labels := []string{}
	if err := json.Unmarshal([]byte(labelsJSON), &labels); err != nil {
		return nil, fmt.Errorf("decoding labels: %w", err)
	}
	sort.Strings(labels)

	props := map[string]any{}
	if err := json.Unmarshal([]byte(propsJSON), &props); err != nil {
		return nil, fmt.Errorf("decoding properties: %w", err)
	}

	return &Node{ID: id, Name: name, Labels: labels, Properties: props}, nil
}

func scanNodes(rows *sql.Rows) ([]*Node, error) {
	nodes := []*Node{}
	for rows.Next() {
		n, err := scanSQLiteNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// matchTier scores how a node matches a term: exact name, name contains,
// description contains, then key concepts when relevance matching is on.
func matchTier(n *Node, term string, byRelevance bool) (float64, bool) {
	t := strings.ToLower(term)
	name := strings.ToLower(n.Name)
	if name == t {
		return 1.0, true
	}
	if strings.Contains(name, t) {
		return 0.8, true
	}
	if desc, ok := n.Properties["description"].(string); ok && strings.Contains(strings.ToLower(desc), t) {
		return 0.6, true
	}
	if byRelevance {
		if concepts, ok := n.Properties["key_concepts"].([]any); ok {
			for _, c := range concepts {
				if cs, ok := c.(string); ok && strings.Contains(strings.ToLower(cs), t) {
					return 0.4, true
				}
			}
		}
	}
	return 0, false
}

// difficultyKey normalises a difficulty value to the text form used for
// equality grouping.
func difficultyKey(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func difficultyRank(n *Node) float64 {
	switch v := n.Properties["difficulty"].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return math.Inf(1)
}

func orderRank(n *Node) float64 {
	switch v := n.Properties["order"].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return math.Inf(1)
}

func labelPattern(l schema.Label) string {
	return `%"` + string(l) + `"%`
}

func numericProp(props map[string]any, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func (s *SQLiteService) done(plan string, started time.Time) {
	s.metrics.ObserveQuery(plan, metrics.StatusOK, time.Since(started))
}

func (s *SQLiteService) fail(plan string, started time.Time, err error) error {
	elapsed := time.Since(started)
	if errors.Is(err, context.DeadlineExceeded) {
		s.metrics.ObserveQuery(plan, metrics.StatusTimeout, elapsed)
		return &TimeoutError{Plan: plan, Timeout: elapsed}
	}
	s.metrics.ObserveQuery(plan, metrics.StatusError, elapsed)
	s.log.Warn("graph query failed", zap.String("plan", plan), zap.Error(err))
	return &QueryError{Plan: plan, Err: err}
}
