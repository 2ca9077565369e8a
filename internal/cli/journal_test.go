package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoushen/listproxy/internal/diffkit"
	"github.com/ezoushen/listproxy/internal/journal"
	"github.com/ezoushen/listproxy/internal/model"
)

func seedJournal(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := journal.Open(path)
	require.NoError(t, err)
	defer j.Close()

	old := model.Snapshot{model.NewSection("A")}
	next := model.Snapshot{model.NewSection("A"), model.NewSection("B")}
	_, err = j.Record(context.Background(), old, next, diffkit.New().Diff(old, next))
	require.NoError(t, err)

	return path
}

func TestJournalCommand_Text(t *testing.T) {
	path := seedJournal(t)

	out, err := execute(t, "journal", "--db", path)

	require.NoError(t, err)
	assert.Contains(t, out, "1 entr(ies)")
	assert.Contains(t, out, "ops=1")
}

func TestJournalCommand_JSON(t *testing.T) {
	path := seedJournal(t)

	out, err := execute(t, "--format", "json", "journal", "--db", path)

	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	entries, ok := data["entries"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)
}

func TestJournalCommand_EmptyJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")

	out, err := execute(t, "journal", "--db", path)

	require.NoError(t, err)
	assert.Contains(t, out, "journal is empty")
}

func TestJournalCommand_RequiresDBFlag(t *testing.T) {
	_, err := execute(t, "journal")

	assert.Error(t, err)
}
