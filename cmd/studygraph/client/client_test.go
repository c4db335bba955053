package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func TestSearchBuildsQuery(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		writeJSON(w, http.StatusOK, SearchResult{
			Count:   1,
			Results: []*Node{{Name: "Algebra", Labels: []string{"Topic"}}},
		})
	})

	res, err := c.Search("algebra", SearchOptions{Label: "Topic", Limit: 5, Order: "relevance"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotPath != "/api/graph/search" {
		t.Errorf("path = %q, want /api/graph/search", gotPath)
	}
	if gotQuery.Get("q") != "algebra" || gotQuery.Get("label") != "Topic" ||
		gotQuery.Get("limit") != "5" || gotQuery.Get("order") != "relevance" {
		t.Errorf("query = %v", gotQuery)
	}
	if gotQuery.Has("difficulty") {
		t.Error("difficulty should be omitted when unset")
	}
	if res.Count != 1 || res.Results[0].Name != "Algebra" {
		t.Errorf("result = %+v, want one Algebra", res)
	}
}

func TestNodeEscapesName(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		writeJSON(w, http.StatusOK, NodeResult{Node: &Node{Name: "Data Structures"}})
	})

	res, err := c.Node("Data Structures")
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if gotPath != "/api/graph/nodes/Data%20Structures" {
		t.Errorf("path = %q, want escaped name segment", gotPath)
	}
	if res.Node == nil || res.Node.Name != "Data Structures" {
		t.Errorf("node = %+v, want Data Structures", res.Node)
	}
}

func TestContextDepthParam(t *testing.T) {
	var gotQuery url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		writeJSON(w, http.StatusOK, ContextResult{Node: &Node{Name: "Trees"}})
	})

	if _, err := c.NodeContext("Trees", 0); err != nil {
		t.Fatalf("NodeContext: %v", err)
	}
	if gotQuery.Has("depth") {
		t.Error("depth should be omitted when zero")
	}

	if _, err := c.NodeContext("Trees", 3); err != nil {
		t.Fatalf("NodeContext: %v", err)
	}
	if gotQuery.Get("depth") != "3" {
		t.Errorf("depth = %q, want 3", gotQuery.Get("depth"))
	}
}

func TestNotFoundCarriesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "node not found"})
	})

	_, err := c.Node("quantum")
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "node not found") {
		t.Errorf("error = %v, want status and message", err)
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "query search failed: connection reset",
		})
	})

	_, err := c.Search("algebra", SearchOptions{})
	if err == nil {
		t.Fatal("expected error for 500")
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("error = %v, want server diagnostic", err)
	}
}

func TestLearningPathParams(t *testing.T) {
	var gotQuery url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		writeJSON(w, http.StatusOK, PathResult{
			StartNode:  "Algorithms",
			EndNode:    "Databases",
			Status:     StatusFound,
			Path:       []*Node{{Name: "Algorithms"}, {Name: "Databases"}},
			PathLength: 1,
		})
	})

	res, err := c.LearningPath("Algorithms", "Databases", 7)
	if err != nil {
		t.Fatalf("LearningPath: %v", err)
	}
	if gotQuery.Get("start") != "Algorithms" || gotQuery.Get("end") != "Databases" ||
		gotQuery.Get("max_depth") != "7" {
		t.Errorf("query = %v", gotQuery)
	}
	if res.Status != StatusFound || res.PathLength != 1 {
		t.Errorf("result = %+v, want found path of length 1", res)
	}
}

func TestLearningPathDecodesNotFoundEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, PathResult{
			StartNode: "quantum",
			EndNode:   "Databases",
			Status:    StatusNodesNotFound,
			Message:   "One or both nodes not found",
		})
	})

	res, err := c.LearningPath("quantum", "Databases", 0)
	if err != nil {
		t.Fatalf("LearningPath: %v", err)
	}
	if res.Status != StatusNodesNotFound {
		t.Errorf("status = %q, want %q", res.Status, StatusNodesNotFound)
	}
	if res.StartNode != "quantum" {
		t.Errorf("start_node = %q, want quantum", res.StartNode)
	}
}

func TestLevels(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/graph/levels" {
			t.Errorf("path = %q, want /api/graph/levels", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, LevelsResult{
			Count:  2,
			Levels: []*Node{{Name: "Beginner"}, {Name: "Advanced"}},
		})
	})

	res, err := c.Levels()
	if err != nil {
		t.Fatalf("Levels: %v", err)
	}
	if res.Count != 2 || len(res.Levels) != 2 {
		t.Errorf("result = %+v, want 2 levels", res)
	}
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if err := c.Health(); err != nil {
		t.Errorf("Health: %v", err)
	}

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if err := c.Health(); err == nil {
		t.Error("expected error for unhealthy server")
	}
}
