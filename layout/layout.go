// Package layout holds the restaurant's static floor plan. The plan is read once
// at startup and never mutated afterwards; mutable table state lives in the
// database and is joined with this configuration at read time.
package layout

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

//go:embed floorplan.json
var defaultPlan []byte

type TableConfig struct {
	Number   int    `json:"number"`
	Capacity int    `json:"capacity"`
	Area     string `json:"area"`
	PosX     int    `json:"pos_x"`
	PosY     int    `json:"pos_y"`
}

type AreaConfig struct {
	Name        string        `json:"name"`
	Label       string        `json:"label"`
	GridColumns int           `json:"grid_columns"`
	GridRows    int           `json:"grid_rows"`
	Tables      []TableConfig `json:"tables"`
}

// Provider is the read-only view of the floor plan consumed by the services.
type Provider interface {
	AllTables() []TableConfig
	Areas() []AreaConfig
	Lookup(number int) (TableConfig, bool)
	ByArea(area string) []TableConfig
}

type Static struct {
	areas    []AreaConfig
	byNumber map[int]TableConfig
}

type planFile struct {
	Areas []AreaConfig `json:"areas"`
}

// Default returns the embedded restaurant floor plan.
func Default() (*Static, error) {
	return Load(bytes.NewReader(defaultPlan))
}

func Load(r io.Reader) (*Static, error) {
	var plan planFile
	if err := json.NewDecoder(r).Decode(&plan); err != nil {
		return nil, fmt.Errorf("cannot decode floor plan: %w", err)
	}
	return New(plan.Areas)
}

// New validates the areas and builds an immutable plan from them.
func New(areas []AreaConfig) (*Static, error) {
	s := &Static{byNumber: make(map[int]TableConfig)}
	seenAreas := make(map[string]bool)

	for _, a := range areas {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return nil, fmt.Errorf("floor plan area without name")
		}
		if seenAreas[name] {
			return nil, fmt.Errorf("duplicate area %q", name)
		}
		seenAreas[name] = true

		area := AreaConfig{
			Name:        name,
			Label:       a.Label,
			GridColumns: a.GridColumns,
			GridRows:    a.GridRows,
			Tables:      make([]TableConfig, 0, len(a.Tables)),
		}
		if area.Label == "" {
			area.Label = name
		}

		for _, t := range a.Tables {
			if t.Number <= 0 {
				return nil, fmt.Errorf("area %q: invalid table number %d", name, t.Number)
			}
			if t.Capacity < 0 {
				return nil, fmt.Errorf("table %d: negative capacity", t.Number)
			}
			if _, dup := s.byNumber[t.Number]; dup {
				return nil, fmt.Errorf("table %d declared twice", t.Number)
			}
			t.Area = name
			s.byNumber[t.Number] = t
			area.Tables = append(area.Tables, t)
		}
		s.areas = append(s.areas, area)
	}

	return s, nil
}

func (s *Static) AllTables() []TableConfig {
	out := make([]TableConfig, 0, len(s.byNumber))
	for _, a := range s.areas {
		out = append(out, a.Tables...)
	}
	return out
}

func (s *Static) Areas() []AreaConfig {
	out := make([]AreaConfig, len(s.areas))
	for i, a := range s.areas {
		a.Tables = append([]TableConfig(nil), a.Tables...)
		out[i] = a
	}
	return out
}

func (s *Static) Lookup(number int) (TableConfig, bool) {
	t, ok := s.byNumber[number]
	return t, ok
}

// ByArea returns the area's tables, or nil for an unknown area.
func (s *Static) ByArea(area string) []TableConfig {
	for _, a := range s.areas {
		if a.Name == area {
			return append([]TableConfig(nil), a.Tables...)
		}
	}
	return nil
}

// Numbers lists every configured table number in ascending order.
func Numbers(p Provider) []int {
	all := p.AllTables()
	out := make([]int, len(all))
	for i, t := range all {
		out[i] = t.Number
	}
	sort.Ints(out)
	return out
}
