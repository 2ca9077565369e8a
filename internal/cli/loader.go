package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/ezoushen/listproxy/internal/harness"
)

// LoadFixture reads a snapshot fixture from a CUE file.
//
// Fixture shape:
//
//	sections: [
//		{key: "inbox", rows: ["m1", "m2"]},
//		{key: "archive"},
//	]
//
// Row strings double as identity keys, matching model.TextRow.
func LoadFixture(path string) ([]harness.SectionFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compile fixture %s: %w", path, err)
	}

	sectionsVal := value.LookupPath(cue.ParsePath("sections"))
	if !sectionsVal.Exists() {
		return nil, fmt.Errorf("fixture %s: missing \"sections\" list", path)
	}

	var raw []struct {
		Key  string   `json:"key"`
		Rows []string `json:"rows"`
	}
	if err := sectionsVal.Decode(&raw); err != nil {
		return nil, fmt.Errorf("fixture %s: decode sections: %w", path, err)
	}

	fixtures := make([]harness.SectionFixture, len(raw))
	for i, r := range raw {
		fixtures[i] = harness.SectionFixture{Key: r.Key, Rows: r.Rows}
	}
	return fixtures, nil
}
