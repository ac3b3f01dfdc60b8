// Command analyze runs every search algorithm headless against each layout in
// the layouts directory and prints a comparison of path length, cells
// explored and run time. It flags layouts where the shortest-path algorithms
// disagree on the path length.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/pathviz/visualizer/config"
	"github.com/wricardo/pathviz/visualizer/engine"
)

// shortest lists the algorithms that guarantee a shortest path
var shortest = map[engine.Algorithm]bool{
	engine.AStar:    true,
	engine.Dijkstra: true,
	engine.BFS:      true,
}

// RunStats is one algorithm's outcome on one layout
type RunStats struct {
	Algorithm  engine.Algorithm
	Found      bool
	PathLength int
	Visited    int
	Duration   time.Duration
}

// Analysis summarizes all algorithm runs against a single layout
type Analysis struct {
	Name      string
	Rows      int
	Cols      int
	Obstacles int
	Start     engine.Coordinate
	End       engine.Coordinate
	Manhattan int
	Runs      []RunStats
}

// Disagreement reports whether the shortest-path algorithms returned
// different path lengths.
func (a *Analysis) Disagreement() bool {
	length, seen := 0, false
	for _, run := range a.Runs {
		if !shortest[run.Algorithm] {
			continue
		}
		if !seen {
			length, seen = run.PathLength, true
			continue
		}
		if run.PathLength != length {
			return true
		}
	}
	return false
}

// analyzeLayout loads a layout file and runs each algorithm on a fresh board
func analyzeLayout(ctx context.Context, path string) (*Analysis, error) {
	layout, err := config.ReadLayoutFile(path)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{Name: layout.Name}

	for _, algorithm := range engine.Algorithms {
		board, start, end, err := engine.NewBoardFromLayout(layout)
		if err != nil {
			return nil, err
		}
		analysis.Rows, analysis.Cols = board.Rows(), board.Cols()
		analysis.Obstacles = len(board.Obstacles())
		analysis.Start, analysis.End = start, end
		analysis.Manhattan = engine.Manhattan(start, end)

		result, err := engine.New(board, start, end, engine.WithPacer(engine.NoPacer)).Run(ctx, algorithm)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", algorithm, err)
		}

		analysis.Runs = append(analysis.Runs, RunStats{
			Algorithm:  algorithm,
			Found:      result.Found,
			PathLength: result.PathLength(),
			Visited:    len(result.Visited),
			Duration:   result.Duration,
		})
	}

	return analysis, nil
}

// printAnalysis writes a human-readable report for one layout
func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid: %d x %d\n", a.Rows, a.Cols)
	fmt.Fprintf(w, "Obstacles: %d\n", a.Obstacles)
	fmt.Fprintf(w, "Start: %s End: %s (Manhattan %d)\n", a.Start, a.End, a.Manhattan)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGORITHM\tFOUND\tPATH\tVISITED\tDURATION")
	for _, run := range a.Runs {
		length := "-"
		if run.Found {
			length = fmt.Sprintf("%d", run.PathLength)
		}
		fmt.Fprintf(tw, "%s\t%v\t%s\t%d\t%s\n", run.Algorithm, run.Found, length, run.Visited, run.Duration.Round(time.Microsecond))
	}
	tw.Flush()

	if a.Disagreement() {
		fmt.Fprintln(w, "⚠️  Shortest-path algorithms disagree on path length")
	}
}

// analyzeDir analyzes every layout file in dir in name order
func analyzeDir(ctx context.Context, w io.Writer, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read layouts directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && config.IsLayoutFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", name)
		analysis, err := analyzeLayout(ctx, filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			continue
		}
		printAnalysis(w, analysis)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Compare search algorithms across layout files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "layouts-dir",
				Value:   "layouts",
				Usage:   "Directory containing layout files",
				Sources: cli.EnvVars("LAYOUTS_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return analyzeDir(ctx, os.Stdout, cmd.String("layouts-dir"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
