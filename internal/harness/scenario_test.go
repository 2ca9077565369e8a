package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/section-swap.yaml")

	require.NoError(t, err)
	assert.Equal(t, "section-swap", s.Name)
	assert.False(t, s.InferMoves)
	require.NotNil(t, s.Expect)
	assert.Equal(t, []int{0}, s.Expect.DeleteSections)
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: catches field typos
old: []
new: []
expectt:
  op_count: 0
`)

	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestLoadScenario_RequiresName(t *testing.T) {
	path := writeScenario(t, `
description: missing the name
old: []
new: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestLoadScenario_RejectsDuplicateSectionKeys(t *testing.T) {
	path := writeScenario(t, `
name: dup
description: duplicate section keys are a fixture bug
old:
  - key: A
  - key: A
new: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate section key")
}

func TestLoadScenario_RejectsCrossSectionRowDuplicateWithInference(t *testing.T) {
	okPath := writeScenario(t, `
name: dup-rows
description: per-section uniqueness suffices without move inference
old:
  - key: A
    rows: [x]
  - key: B
    rows: [x]
new: []
`)
	_, err := LoadScenario(okPath)
	assert.NoError(t, err)

	badPath := writeScenario(t, `
name: dup-rows
description: move inference needs globally unique rows
infer_moves: true
old:
  - key: A
    rows: [x]
  - key: B
    rows: [x]
new: []
`)
	_, err = LoadScenario(badPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "global uniqueness")
}

func TestSnapshot_Conversion(t *testing.T) {
	s := Snapshot([]SectionFixture{
		{Key: "A", Rows: []string{"r1", "r2"}},
		{Key: "B"},
	})

	require.Len(t, s, 2)
	assert.Equal(t, "A", s[0].Key)
	require.Len(t, s[0].Rows, 2)
	assert.Equal(t, "r1", s[0].Rows[0].IdentityKey())
	assert.Empty(t, s[1].Rows)
}
