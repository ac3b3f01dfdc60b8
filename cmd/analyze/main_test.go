package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/pathviz/visualizer/engine"
)

func writeLayout(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write layout: %v", err)
	}
	return path
}

func TestAnalyzeLayout(t *testing.T) {
	path := writeLayout(t, t.TempDir(), "wall.json", `{
		"name": "Wall",
		"layout": [
			"S.#..",
			"..#..",
			"....E"
		]
	}`)

	analysis, err := analyzeLayout(context.Background(), path)
	if err != nil {
		t.Fatalf("analyzeLayout failed: %v", err)
	}

	if analysis.Name != "Wall" || analysis.Rows != 3 || analysis.Cols != 5 {
		t.Errorf("Unexpected layout info: %+v", analysis)
	}
	if analysis.Obstacles != 2 {
		t.Errorf("Expected 2 obstacles, got %d", analysis.Obstacles)
	}
	if analysis.Manhattan != 6 {
		t.Errorf("Expected Manhattan distance 6, got %d", analysis.Manhattan)
	}
	if len(analysis.Runs) != len(engine.Algorithms) {
		t.Fatalf("Expected %d runs, got %d", len(engine.Algorithms), len(analysis.Runs))
	}

	for i, run := range analysis.Runs {
		if run.Algorithm != engine.Algorithms[i] {
			t.Errorf("Run %d: expected %s, got %s", i, engine.Algorithms[i], run.Algorithm)
		}
		if !run.Found {
			t.Errorf("%s: expected a path", run.Algorithm)
		}
		if shortest[run.Algorithm] && run.PathLength != 6 {
			t.Errorf("%s: expected path length 6, got %d", run.Algorithm, run.PathLength)
		}
		if run.PathLength < 6 {
			t.Errorf("%s: path length %d shorter than Manhattan distance", run.Algorithm, run.PathLength)
		}
	}

	if analysis.Disagreement() {
		t.Error("Expected shortest-path algorithms to agree")
	}
}

func TestAnalyzeLayout_NoPath(t *testing.T) {
	path := writeLayout(t, t.TempDir(), "boxed.json", `{"name": "Boxed", "layout": ["S#E"]}`)

	analysis, err := analyzeLayout(context.Background(), path)
	if err != nil {
		t.Fatalf("analyzeLayout failed: %v", err)
	}
	for _, run := range analysis.Runs {
		if run.Found || run.PathLength != -1 {
			t.Errorf("%s: expected no path, got %+v", run.Algorithm, run)
		}
	}
}

func TestAnalyzeLayout_InvalidFile(t *testing.T) {
	if _, err := analyzeLayout(context.Background(), "/non/existent/file.json"); err == nil {
		t.Error("Expected error for missing file")
	}

	path := writeLayout(t, t.TempDir(), "bad.json", `{"name": "Bad", invalid}`)
	if _, err := analyzeLayout(context.Background(), path); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestDisagreement(t *testing.T) {
	a := &Analysis{Runs: []RunStats{
		{Algorithm: engine.AStar, Found: true, PathLength: 4},
		{Algorithm: engine.Dijkstra, Found: true, PathLength: 4},
		{Algorithm: engine.DFS, Found: true, PathLength: 10},
		{Algorithm: engine.BFS, Found: true, PathLength: 4},
	}}
	if a.Disagreement() {
		t.Error("DFS length must not count as a disagreement")
	}

	a.Runs[1].PathLength = 5
	if !a.Disagreement() {
		t.Error("Expected disagreement when Dijkstra differs")
	}
}

func TestAnalyzeDir(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, "open.json", `{"name": "Open", "layout": ["S..", "..E"]}`)
	writeLayout(t, dir, "bad.json", `{"name": "Bad", "layout": ["S.X"]}`)
	writeLayout(t, dir, "readme.md", "ignored")

	var buf bytes.Buffer
	if err := analyzeDir(context.Background(), &buf, dir); err != nil {
		t.Fatalf("analyzeDir failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"=== Analyzing bad.json ===",
		"Error:",
		"=== Analyzing open.json ===",
		"Name: Open",
		"ALGORITHM",
		"dijkstra",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "readme.md") {
		t.Error("Non-layout files must be skipped")
	}
	if strings.Index(out, "bad.json") > strings.Index(out, "open.json") {
		t.Error("Expected layouts in name order")
	}

	if err := analyzeDir(context.Background(), &buf, filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error for missing directory")
	}
}
