// Command validate checks the layout files in a layouts directory. It checks:
//   - JSON or HCL structure and required fields
//   - Grid consistency and allowed characters (., #, S, E)
//   - At most one start (S) and one end (E), and defaulted endpoints off obstacles
//   - Connectivity: the end is reachable from the start
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/pathviz/visualizer/config"
	"github.com/wricardo/pathviz/visualizer/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateLayout loads and validates a single layout file
func validateLayout(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	layout, err := config.ReadLayoutFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	board, start, end, err := engine.NewBoardFromLayout(layout)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	connectivity := validateConnectivity(board, start, end)
	if !connectivity.Valid {
		result.Valid = false
		result.Errors = append(result.Errors, connectivity.Errors...)
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", layout.Name))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", board.Rows(), board.Cols()))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Obstacles: %d", len(board.Obstacles())))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Start: %s End: %s", start, end))
	result.Errors = append(result.Errors, connectivity.Errors...)

	return result
}

// validateConnectivity runs a breadth-first search from start and reports
// whether end is reachable, with the shortest path length when it is.
func validateConnectivity(board *engine.Board, start, end engine.Coordinate) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	if board.IsObstacle(start) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Start %s is an obstacle", start))
		return result
	}
	if board.IsObstacle(end) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("End %s is an obstacle", end))
		return result
	}

	run, err := engine.New(board, start, end).Run(context.Background(), engine.BFS)
	board.ResetGrid(nil)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Connectivity check failed: %v", err))
		return result
	}

	if !run.Found {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Connectivity failure: end %s unreachable from start %s (%d cells explored)",
			end, start, len(run.Visited)))
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Connectivity: shortest path %d steps", run.PathLength()))
	return result
}

// layoutFiles lists the layout files in dir in name order
func layoutFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && config.IsLayoutFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// validateDir validates every layout file in dir, printing a concise report.
// It reports whether all files were valid.
func validateDir(dir string) (bool, error) {
	files, err := layoutFiles(dir)
	if err != nil {
		return false, fmt.Errorf("error finding layout files: %w", err)
	}

	allValid := true
	for _, file := range files {
		result := validateLayout(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Printf("✅ All %d layouts are valid!\n", len(files))
	} else {
		fmt.Println("❌ Some layouts have errors")
	}
	return allValid, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "validate",
		Usage: "Validate visualizer layout files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "layouts-dir",
				Value:   "layouts",
				Usage:   "Directory containing layout files",
				Sources: cli.EnvVars("LAYOUTS_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ok, err := validateDir(cmd.String("layouts-dir"))
			if err != nil {
				return err
			}
			if !ok {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
