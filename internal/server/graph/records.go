package graph

import (
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// nodeFrom converts a driver node into the wire shape. Labels is always a
// fresh sorted slice, never nil, so consumers see a uniform label set.
func nodeFrom(n neo4j.Node) *Node {
	labels := make([]string, len(n.Labels))
	copy(labels, n.Labels)
	sort.Strings(labels)

	props := n.Props
	if props == nil {
		props = map[string]any{}
	}
	return &Node{
		ID:         n.ElementId,
		Name:       stringProp(props, "name"),
		Labels:     labels,
		Properties: props,
	}
}

// nodeValue decodes a single record value. Nil for anything that is not a
// node, which covers the null rows OPTIONAL MATCH produces.
func nodeValue(v any) *Node {
	n, ok := v.(neo4j.Node)
	if !ok {
		return nil
	}
	return nodeFrom(n)
}

// nodeList decodes a collect() of nodes. Non-node entries are skipped, so
// a collect over an empty OPTIONAL MATCH decodes to an empty slice.
func nodeList(v any) []*Node {
	out := []*Node{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if n, ok := item.(neo4j.Node); ok {
			out = append(out, nodeFrom(n))
		}
	}
	return out
}

// relTypeSet decodes a collect() of variable-length relationship lists into
// the deduplicated, sorted set of relationship types observed.
func relTypeSet(v any) []string {
	seen := map[string]struct{}{}
	if outer, ok := v.([]any); ok {
		for _, hop := range outer {
			inner, ok := hop.([]any)
			if !ok {
				continue
			}
			for _, item := range inner {
				if r, ok := item.(neo4j.Relationship); ok {
					seen[r.Type] = struct{}{}
				}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// pathNodes decodes a path value into its node sequence, start to end.
func pathNodes(v any) []*Node {
	p, ok := v.(neo4j.Path)
	if !ok {
		return nil
	}
	out := make([]*Node, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		out = append(out, nodeFrom(n))
	}
	return out
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
