package graph

import (
	"context"

	"go.uber.org/zap"

	"github.com/studygraph/studygraph/internal/server/query"
	"github.com/studygraph/studygraph/internal/server/schema"
)

// Retriever implements Service over a Neo4j store. It holds no mutable
// state of its own; every call is one or two bounded read round trips.
type Retriever struct {
	store *Store
	log   *zap.Logger
}

// NewRetriever creates a retriever over an already connected store.
func NewRetriever(store *Store, log *zap.Logger) *Retriever {
	return &Retriever{store: store, log: log}
}

var _ Service = (*Retriever)(nil)

func (r *Retriever) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	opts := query.SearchOptions{ByRelevance: p.ByRelevance}
	if p.Label != "" {
		label, err := schema.ValidateLabel(p.Label)
		if err != nil {
			return nil, err
		}
		opts.Label = label
	}

	params := map[string]any{
		"term":  p.Term,
		"limit": query.ClampLimit(p.Limit),
	}
	if p.Difficulty != "" {
		opts.Difficulty = true
		params["difficulty"] = DifficultyValue(p.Difficulty)
	}

	records, err := r.store.Read(ctx, query.Search(opts), params)
	if err != nil {
		return nil, err
	}

	results := []*Node{}
	for _, record := range records {
		if v, ok := record.Get("n"); ok {
			if n := nodeValue(v); n != nil {
				results = append(results, n)
			}
		}
	}
	return &SearchResult{Count: len(results), Results: results}, nil
}

func (r *Retriever) NodeDetails(ctx context.Context, name string) (*NodeResult, error) {
	records, err := r.store.Read(ctx, query.NodeDetails(), map[string]any{"name": name})
	if err != nil {
		return nil, err
	}

	res := &NodeResult{}
	if len(records) > 0 {
		if v, ok := records[0].Get("n"); ok {
			res.Node = nodeValue(v)
		}
	}
	return res, nil
}

func (r *Retriever) NodeContext(ctx context.Context, name string, depth int) (*ContextResult, error) {
	records, err := r.store.Read(ctx, query.Context(depth), map[string]any{"name": name})
	if err != nil {
		return nil, err
	}

	res := &ContextResult{ConnectedNodes: []*Node{}, RelationshipTypes: []string{}}
	if len(records) == 0 {
		return res, nil
	}
	record := records[0]
	if v, ok := record.Get("n"); ok {
		res.Node = nodeValue(v)
	}
	if v, ok := record.Get("connected"); ok {
		res.ConnectedNodes = nodeList(v)
	}
	if v, ok := record.Get("rels"); ok {
		res.RelationshipTypes = relTypeSet(v)
	}
	return res, nil
}

func (r *Retriever) TopicWithSubtopics(ctx context.Context, name string) (*TopicResult, error) {
	records, err := r.store.Read(ctx, query.TopicWithSubtopics(), map[string]any{"name": name})
	if err != nil {
		return nil, err
	}

	res := &TopicResult{Subtopics: []*Node{}}
	if len(records) == 0 {
		return res, nil
	}
	record := records[0]
	if v, ok := record.Get("t"); ok {
		res.Topic = nodeValue(v)
	}
	if v, ok := record.Get("subtopics"); ok {
		res.Subtopics = nodeList(v)
	}
	res.SubtopicCount = len(res.Subtopics)
	return res, nil
}

func (r *Retriever) Prerequisites(ctx context.Context, name string) (*PrereqResult, error) {
	records, err := r.store.Read(ctx, query.Prerequisites(), map[string]any{"name": name})
	if err != nil {
		return nil, err
	}

	res := &PrereqResult{Prerequisites: []*Node{}}
	if len(records) == 0 {
		return res, nil
	}
	record := records[0]
	if v, ok := record.Get("n"); ok {
		res.Node = nodeValue(v)
	}
	if v, ok := record.Get("prerequisites"); ok {
		res.Prerequisites = nodeList(v)
	}
	res.PrerequisiteCount = len(res.Prerequisites)
	return res, nil
}

func (r *Retriever) Dependents(ctx context.Context, name string) (*DependentsResult, error) {
	records, err := r.store.Read(ctx, query.Dependents(), map[string]any{"name": name})
	if err != nil {
		return nil, err
	}

	res := &DependentsResult{Dependents: []*Node{}}
	if len(records) == 0 {
		return res, nil
	}
	record := records[0]
	if v, ok := record.Get("n"); ok {
		res.Node = nodeValue(v)
	}
	if v, ok := record.Get("dependents"); ok {
		res.Dependents = nodeList(v)
	}
	res.DependentCount = len(res.Dependents)
	return res, nil
}

// LearningPath runs the two-phase path contract: resolve both endpoints
// first, then search only if both resolved. The phases are distinguishable
// in the result so a caller can tell "no such nodes" from "no such path".
func (r *Retriever) LearningPath(ctx context.Context, start, end string, maxDepth int) (*PathResult, error) {
	pathPlan, err := query.ShortestPath(maxDepth)
	if err != nil {
		return nil, err
	}

	res := &PathResult{StartNode: start, EndNode: end, Path: []*Node{}}

	records, err := r.store.Read(ctx, query.PathEndpoints(), map[string]any{
		"start": start,
		"end":   end,
	})
	if err != nil {
		return nil, err
	}

	var startNode, endNode *Node
	if len(records) > 0 {
		if v, ok := records[0].Get("s"); ok {
			startNode = nodeValue(v)
		}
		if v, ok := records[0].Get("e"); ok {
			endNode = nodeValue(v)
		}
	}
	if startNode == nil || endNode == nil {
		res.Status = PathNodesNotFound
		res.Message = MsgNodesNotFound
		return res, nil
	}
	res.StartNode = startNode.Name
	res.EndNode = endNode.Name

	if startNode.ID == endNode.ID {
		res.Status = PathFound
		res.Message = MsgPathFound
		res.Path = []*Node{startNode}
		return res, nil
	}

	records, err = r.store.Read(ctx, pathPlan, map[string]any{
		"startId": startNode.ID,
		"endId":   endNode.ID,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		res.Status = PathNotFound
		res.Message = MsgNoPath
		r.log.Debug("no path within depth limit",
			zap.String("start", startNode.Name),
			zap.String("end", endNode.Name))
		return res, nil
	}

	if v, ok := records[0].Get("path"); ok {
		res.Path = pathNodes(v)
	}
	res.Status = PathFound
	res.Message = MsgPathFound
	if len(res.Path) > 0 {
		res.PathLength = len(res.Path) - 1
	}
	return res, nil
}

func (r *Retriever) SimilarByDifficulty(ctx context.Context, name string) (*SimilarityResult, error) {
	records, err := r.store.Read(ctx, query.SimilarByDifficulty(), map[string]any{
		"name":  name,
		"limit": query.MaxLimit,
	})
	if err != nil {
		return nil, err
	}

	res := &SimilarityResult{SimilarNodes: []*Node{}}
	if len(records) == 0 {
		return res, nil
	}
	record := records[0]
	if v, ok := record.Get("n"); ok {
		res.Node = nodeValue(v)
	}
	if v, ok := record.Get("difficulty"); ok {
		res.DifficultyLevel = v
	}
	if v, ok := record.Get("similar"); ok {
		res.SimilarNodes = nodeList(v)
	}
	res.SimilarCount = len(res.SimilarNodes)
	return res, nil
}

func (r *Retriever) Levels(ctx context.Context) ([]*Node, error) {
	records, err := r.store.Read(ctx, query.AllLevels(), nil)
	if err != nil {
		return nil, err
	}

	levels := []*Node{}
	for _, record := range records {
		if v, ok := record.Get("l"); ok {
			if n := nodeValue(v); n != nil {
				levels = append(levels, n)
			}
		}
	}
	return levels, nil
}

func (r *Retriever) Close(ctx context.Context) error {
	return r.store.Close(ctx)
}
