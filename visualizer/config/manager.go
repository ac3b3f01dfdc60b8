package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/wricardo/pathviz/visualizer/engine"
	"github.com/wricardo/pathviz/visualizer/service"
)

var (
	ErrLayoutNotFound = service.ErrLayoutNotFound
	ErrInvalidLayout  = service.ErrInvalidLayout
)

// DefaultLayoutName is loaded as the default layout when present
const DefaultLayoutName = "default"

// Supported layout file extensions, in lookup order
var extensions = []string{".json", ".hcl"}

// Manager handles layout loading and caching
type Manager struct {
	layoutDir     string
	defaultLayout *engine.LayoutConfig
	layouts       map[string]*engine.LayoutConfig
	mu            sync.RWMutex
}

// NewManager creates a new layout manager
func NewManager(layoutDir string) (*Manager, error) {
	if _, err := os.Stat(layoutDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("layout directory does not exist: %s", layoutDir)
	}

	m := &Manager{
		layoutDir: layoutDir,
		layouts:   make(map[string]*engine.LayoutConfig),
	}

	m.loadDefaultLayout()
	return m, nil
}

// LoadLayout loads a layout by name. The name may omit its extension.
func (m *Manager) LoadLayout(name string) (*engine.LayoutConfig, error) {
	id := layoutID(name)

	m.mu.RLock()
	if layout, exists := m.layouts[id]; exists {
		m.mu.RUnlock()
		return layout, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if layout, exists := m.layouts[id]; exists {
		return layout, nil
	}

	path, err := m.findFile(name)
	if err != nil {
		return nil, err
	}

	layout, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	if err := engine.ValidateLayout(layout); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	m.layouts[id] = layout
	return layout, nil
}

// findFile resolves a layout name to a file in the layout directory
func (m *Manager) findFile(name string) (string, error) {
	if ext := filepath.Ext(name); ext == ".json" || ext == ".hcl" {
		path := filepath.Join(m.layoutDir, filepath.Base(name))
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
		}
		return path, nil
	}

	for _, ext := range extensions {
		path := filepath.Join(m.layoutDir, filepath.Base(name)+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
}

// ListLayouts returns information about all valid layouts in the directory
func (m *Manager) ListLayouts() ([]*service.LayoutInfo, error) {
	entries, err := os.ReadDir(m.layoutDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout directory: %w", err)
	}

	var layouts []*service.LayoutInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".json" && ext != ".hcl") {
			continue
		}

		id := layoutID(entry.Name())
		if seen[id] {
			continue
		}

		layout, err := m.LoadLayout(entry.Name())
		if err != nil {
			// Skip invalid layouts
			continue
		}
		seen[id] = true

		board, _, _, err := engine.NewBoardFromLayout(layout)
		if err != nil {
			continue
		}

		layouts = append(layouts, &service.LayoutInfo{
			Filename:    entry.Name(),
			LayoutID:    id,
			Name:        layout.Name,
			Description: layout.Description,
			Rows:        board.Rows(),
			Cols:        board.Cols(),
			Obstacles:   len(board.Obstacles()),
		})
	}

	sort.Slice(layouts, func(i, j int) bool { return layouts[i].LayoutID < layouts[j].LayoutID })
	return layouts, nil
}

// GetDefault returns the default layout
func (m *Manager) GetDefault() *engine.LayoutConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLayout
}

// SetDefault sets the default layout by name
func (m *Manager) SetDefault(name string) error {
	layout, err := m.LoadLayout(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLayout = layout
	return nil
}

// RefreshCache drops all cached layouts and reloads the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.layouts = make(map[string]*engine.LayoutConfig)
	m.mu.Unlock()

	m.loadDefaultLayout()
}

// loadDefaultLayout picks "default", then the first valid layout, then a blank grid
func (m *Manager) loadDefaultLayout() {
	layout, err := m.LoadLayout(DefaultLayoutName)
	if err != nil {
		layouts, listErr := m.ListLayouts()
		if listErr == nil && len(layouts) > 0 {
			layout, err = m.LoadLayout(layouts[0].Filename)
		}
	}
	if err != nil || layout == nil {
		layout = engine.BlankLayout(DefaultLayoutName, engine.DefaultRows, engine.DefaultCols)
	}

	m.mu.Lock()
	m.defaultLayout = layout
	m.mu.Unlock()
}

// SaveLayout validates a layout and writes it as JSON, or as HCL when name
// ends in .hcl
func (m *Manager) SaveLayout(name string, layout *engine.LayoutConfig) error {
	if err := engine.ValidateLayout(layout); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	id := layoutID(name)
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%w: bad layout name %q", ErrInvalidLayout, name)
	}

	var (
		data []byte
		err  error
		file string
	)
	if filepath.Ext(name) == ".hcl" {
		data = encodeHCL(layout)
		file = id + ".hcl"
	} else {
		data, err = json.MarshalIndent(layout, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal layout: %w", err)
		}
		file = id + ".json"
	}

	if err := os.WriteFile(filepath.Join(m.layoutDir, file), data, 0644); err != nil {
		return fmt.Errorf("failed to write layout file: %w", err)
	}

	m.mu.Lock()
	m.layouts[id] = layout
	m.mu.Unlock()

	return nil
}

// layoutID strips any directory and extension from a layout name
func layoutID(name string) string {
	base := filepath.Base(name)
	for _, ext := range extensions {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// IsLayoutFile reports whether name has a supported layout extension
func IsLayoutFile(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ReadLayoutFile reads and validates a single JSON or HCL layout file outside
// any managed directory
func ReadLayoutFile(path string) (*engine.LayoutConfig, error) {
	layout, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	if err := engine.ValidateLayout(layout); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	return layout, nil
}

// decodeFile parses a JSON or HCL layout file
func decodeFile(path string) (*engine.LayoutConfig, error) {
	var layout engine.LayoutConfig

	switch filepath.Ext(path) {
	case ".hcl":
		parser := hclparse.NewParser()
		f, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse layout %s: %w", filepath.Base(path), diags)
		}
		if diags := gohcl.DecodeBody(f.Body, nil, &layout); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode layout %s: %w", filepath.Base(path), diags)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, ErrLayoutNotFound
			}
			return nil, fmt.Errorf("failed to read layout file: %w", err)
		}
		if err := json.Unmarshal(data, &layout); err != nil {
			return nil, fmt.Errorf("failed to parse layout %s: %w", filepath.Base(path), err)
		}
	}

	return &layout, nil
}

// encodeHCL renders a layout in the same attribute form decodeFile reads
func encodeHCL(layout *engine.LayoutConfig) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "name = %q\n", layout.Name)
	if layout.Description != "" {
		fmt.Fprintf(&sb, "description = %q\n", layout.Description)
	}
	sb.WriteString("\nlayout = [\n")
	for _, row := range layout.Layout {
		fmt.Fprintf(&sb, "  %q,\n", row)
	}
	sb.WriteString("]\n")
	return []byte(sb.String())
}
