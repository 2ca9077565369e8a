package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ezoushen/listproxy/internal/diffkit"
	"github.com/ezoushen/listproxy/internal/model"
)

// Scenario defines one diff conformance case: two snapshot fixtures,
// the differ flags, and the expected instruction.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// InferMoves enables delete+insert pairing into move operations.
	InferMoves bool `yaml:"infer_moves,omitempty"`

	// ReverseOrder flips the tie-break so insertions keep matched
	// elements closest to the end.
	ReverseOrder bool `yaml:"reverse_order,omitempty"`

	// Old and New are the snapshots to diff. Either may be empty.
	Old []SectionFixture `yaml:"old"`
	New []SectionFixture `yaml:"new"`

	// Expect optionally pins the exact instruction. Omitted fields are
	// not checked.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// SectionFixture is one section given as a key plus text rows. A row's
// text doubles as its identity, matching model.TextRow.
type SectionFixture struct {
	Key  string   `yaml:"key"`
	Rows []string `yaml:"rows,omitempty"`
}

// ExpectClause pins instruction contents. Each field is a subset
// assertion: nil means "don't care", an empty list means "must be
// empty".
type ExpectClause struct {
	// Empty asserts the instruction has no operations at all.
	Empty bool `yaml:"empty,omitempty"`

	DeleteSections []int            `yaml:"delete_sections,omitempty"`
	InsertSections []int            `yaml:"insert_sections,omitempty"`
	MoveSections   []MoveFixture    `yaml:"move_sections,omitempty"`
	DeleteRows     []PathFixture    `yaml:"delete_rows,omitempty"`
	InsertRows     []PathFixture    `yaml:"insert_rows,omitempty"`
	MoveRows       []RowMoveFixture `yaml:"move_rows,omitempty"`

	// OpCount asserts the total operation count.
	OpCount *int `yaml:"op_count,omitempty"`
}

// MoveFixture mirrors diffkit.Move.
type MoveFixture struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// PathFixture mirrors diffkit.RowPath.
type PathFixture struct {
	Section int `yaml:"section"`
	Row     int `yaml:"row"`
}

// RowMoveFixture mirrors diffkit.RowMove.
type RowMoveFixture struct {
	From PathFixture `yaml:"from"`
	To   PathFixture `yaml:"to"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", path, err)
	}
	return &scenario, nil
}

// Snapshot converts fixtures into a model snapshot.
func Snapshot(fixtures []SectionFixture) model.Snapshot {
	s := make(model.Snapshot, len(fixtures))
	for i, f := range fixtures {
		s[i] = model.NewSection(f.Key, model.TextRows(f.Rows...)...)
	}
	return s
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if err := validateFixtures("old", s.Old, s.InferMoves); err != nil {
		return err
	}
	if err := validateFixtures("new", s.New, s.InferMoves); err != nil {
		return err
	}
	return nil
}

// ValidateFixtures checks the identity-key preconditions on a single
// fixture list, outside any scenario. Used by the CLI validate command.
func ValidateFixtures(fixtures []SectionFixture, inferMoves bool) error {
	return validateFixtures("fixture", fixtures, inferMoves)
}

// validateFixtures enforces the identity-key preconditions the differ
// would otherwise panic on: unique section keys, unique rows per
// section, and globally unique rows when move inference is on.
func validateFixtures(side string, fixtures []SectionFixture, inferMoves bool) error {
	sectionKeys := map[string]int{}
	globalRows := map[string]string{}

	for i, f := range fixtures {
		if f.Key == "" {
			return fmt.Errorf("%s[%d]: key is required", side, i)
		}
		if prev, ok := sectionKeys[f.Key]; ok {
			return fmt.Errorf("%s: duplicate section key %q at %d and %d", side, f.Key, prev, i)
		}
		sectionKeys[f.Key] = i

		rowKeys := map[string]int{}
		for j, row := range f.Rows {
			if prev, ok := rowKeys[row]; ok {
				return fmt.Errorf("%s[%d]: duplicate row %q at %d and %d", side, i, row, prev, j)
			}
			rowKeys[row] = j

			if inferMoves {
				if prevSec, ok := globalRows[row]; ok {
					return fmt.Errorf("%s: row %q appears in sections %q and %q but move inference needs global uniqueness",
						side, row, prevSec, f.Key)
				}
				globalRows[row] = f.Key
			}
		}
	}
	return nil
}

func (e *ExpectClause) moveSections() []diffkit.Move {
	out := make([]diffkit.Move, len(e.MoveSections))
	for i, m := range e.MoveSections {
		out[i] = diffkit.Move{From: m.From, To: m.To}
	}
	return out
}

func (e *ExpectClause) deleteRows() []diffkit.RowPath {
	return toPaths(e.DeleteRows)
}

func (e *ExpectClause) insertRows() []diffkit.RowPath {
	return toPaths(e.InsertRows)
}

func (e *ExpectClause) moveRows() []diffkit.RowMove {
	out := make([]diffkit.RowMove, len(e.MoveRows))
	for i, m := range e.MoveRows {
		out[i] = diffkit.RowMove{
			From: diffkit.RowPath{Section: m.From.Section, Row: m.From.Row},
			To:   diffkit.RowPath{Section: m.To.Section, Row: m.To.Row},
		}
	}
	return out
}

func toPaths(fixtures []PathFixture) []diffkit.RowPath {
	out := make([]diffkit.RowPath, len(fixtures))
	for i, p := range fixtures {
		out[i] = diffkit.RowPath{Section: p.Section, Row: p.Row}
	}
	return out
}
