package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/studygraph/studygraph/internal/server/schema"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{1, 1},
		{7, 7},
		{500, 500},
		{501, 500},
		{100000, 500},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClampContextDepth(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultContextDepth},
		{-1, DefaultContextDepth},
		{1, 1},
		{4, 4},
		{9, MaxContextDepth},
	}
	for _, tt := range tests {
		if got := ClampContextDepth(tt.in); got != tt.want {
			t.Errorf("ClampContextDepth(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCheckPathDepth(t *testing.T) {
	tests := []struct {
		in      int
		want    int
		wantErr bool
	}{
		{0, DefaultPathDepth, false},
		{1, 1, false},
		{10, 10, false},
		{11, 0, true},
		{-1, 0, true},
	}
	for _, tt := range tests {
		got, err := CheckPathDepth(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrDepthOutOfRange) {
				t.Errorf("CheckPathDepth(%d) error = %v, want ErrDepthOutOfRange", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("CheckPathDepth(%d) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CheckPathDepth(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSearchPlanVariants(t *testing.T) {
	plain := Search(SearchOptions{})
	if plain.ID != "search" {
		t.Errorf("plain search ID = %q, want %q", plain.ID, "search")
	}
	if !strings.Contains(plain.Text, "ORDER BY n.name") {
		t.Error("plain search should order by name")
	}
	if strings.Contains(plain.Text, "relevance") {
		t.Error("plain search should not compute relevance")
	}
	if strings.Contains(plain.Text, "key_concepts") {
		t.Error("plain search should not widen matching to key concepts")
	}

	ranked := Search(SearchOptions{ByRelevance: true})
	if ranked.ID != "search_by_relevance" {
		t.Errorf("ranked search ID = %q, want %q", ranked.ID, "search_by_relevance")
	}
	if !strings.Contains(ranked.Text, "ORDER BY relevance DESC") {
		t.Error("ranked search should order by relevance first")
	}
	if !strings.Contains(ranked.Text, "key_concepts") {
		t.Error("ranked search should widen matching to key concepts")
	}

	labelled := Search(SearchOptions{Label: schema.LabelTopic})
	if !strings.Contains(labelled.Text, "MATCH (n:Topic)") {
		t.Errorf("labelled search should pin the label:\n%s", labelled.Text)
	}

	filtered := Search(SearchOptions{Difficulty: true})
	if !strings.Contains(filtered.Text, "n.difficulty = $difficulty") {
		t.Error("difficulty filter should bind $difficulty")
	}
	if strings.Contains(plain.Text, "$difficulty") {
		t.Error("plain search should not reference $difficulty")
	}
}

func TestShortestPathDepth(t *testing.T) {
	p, err := ShortestPath(0)
	if err != nil {
		t.Fatalf("ShortestPath(0) unexpected error: %v", err)
	}
	if !strings.Contains(p.Text, "*1..5") {
		t.Errorf("default depth not applied:\n%s", p.Text)
	}

	p, err = ShortestPath(3)
	if err != nil {
		t.Fatalf("ShortestPath(3) unexpected error: %v", err)
	}
	if !strings.Contains(p.Text, "*1..3") {
		t.Errorf("explicit depth not applied:\n%s", p.Text)
	}

	if _, err := ShortestPath(11); !errors.Is(err, ErrDepthOutOfRange) {
		t.Errorf("ShortestPath(11) error = %v, want ErrDepthOutOfRange", err)
	}
}

func TestPlanIDsStable(t *testing.T) {
	shortest, err := ShortestPath(0)
	if err != nil {
		t.Fatalf("ShortestPath(0) unexpected error: %v", err)
	}
	plans := []struct {
		plan Plan
		id   string
	}{
		{NodeDetails(), "node_details"},
		{Context(1), "node_context"},
		{TopicWithSubtopics(), "topic_subtopics"},
		{Prerequisites(), "prerequisites"},
		{Dependents(), "dependents"},
		{PathEndpoints(), "path_endpoints"},
		{shortest, "shortest_path"},
		{SimilarByDifficulty(), "similar_by_difficulty"},
		{AllLevels(), "all_levels"},
	}
	for _, tt := range plans {
		if tt.plan.ID != tt.id {
			t.Errorf("plan ID = %q, want %q", tt.plan.ID, tt.id)
		}
		if strings.Contains(tt.plan.Text, "%!") {
			t.Errorf("plan %s has a formatting artefact:\n%s", tt.id, tt.plan.Text)
		}
	}
}

func TestContextDepthInterpolation(t *testing.T) {
	tests := []struct {
		depth int
		want  string
	}{
		{0, "*1..1"},
		{2, "*1..2"},
		{4, "*1..4"},
		{9, "*1..4"},
	}
	for _, tt := range tests {
		p := Context(tt.depth)
		if !strings.Contains(p.Text, tt.want) {
			t.Errorf("Context(%d) missing %q:\n%s", tt.depth, tt.want, p.Text)
		}
	}
}

func TestResolutionPrefersExactMatches(t *testing.T) {
	for _, p := range []Plan{NodeDetails(), Context(1), Prerequisites(), Dependents(), SimilarByDifficulty()} {
		if !strings.Contains(p.Text, "CASE WHEN toLower(n.name) = toLower($name) THEN 0 ELSE 1 END") {
			t.Errorf("plan %s does not share the resolution fragment:\n%s", p.ID, p.Text)
		}
	}
	endpoints := PathEndpoints()
	for _, param := range []string{"$start", "$end"} {
		if !strings.Contains(endpoints.Text, param) {
			t.Errorf("path endpoints plan missing %s parameter", param)
		}
	}
}
