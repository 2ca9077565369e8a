package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ezoushen/listproxy/internal/diffkit"
	"github.com/ezoushen/listproxy/internal/journal"
)

// JournalReport is the serializable timeline dump.
type JournalReport struct {
	Database string         `json:"database"`
	Entries  []JournalEntry `json:"entries"`
}

// JournalEntry is the serializable form of one journal entry.
type JournalEntry struct {
	ID         string      `json:"id"`
	BeforeHash string      `json:"before_hash"`
	AfterHash  string      `json:"after_hash"`
	OpCount    int         `json:"op_count"`
	RecordedAt time.Time   `json:"recorded_at"`
	Ops        diffkit.Ops `json:"ops"`
}

// String renders the timeline for text output.
func (r JournalReport) String() string {
	if len(r.Entries) == 0 {
		return fmt.Sprintf("%s: journal is empty", r.Database)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d entr(ies)\n", r.Database, len(r.Entries))
	for i, e := range r.Entries {
		fmt.Fprintf(&b, "%3d. %s  %s -> %s  ops=%d  %s\n",
			i+1,
			shortHash(e.ID),
			shortHash(e.BeforeHash),
			shortHash(e.AfterHash),
			e.OpCount,
			e.RecordedAt.Format(time.RFC3339))
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Dump an applied-instruction journal",
		Long: `Dump the applied-instruction timeline from a journal database.

Entries are listed in recording order with the snapshot hashes on
either side of each application.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(rootOpts, dbPath, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to the journal database (required)")
	cmd.MarkFlagRequired("db")

	return cmd
}

func runJournal(opts *RootOptions, dbPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	j, err := journal.Open(dbPath)
	if err != nil {
		formatter.Error(ErrCodeJournalOpen, err.Error())
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	defer j.Close()

	entries, err := j.Timeline(cmd.Context())
	if err != nil {
		formatter.Error(ErrCodeJournalRead, err.Error())
		return WrapExitError(ExitCommandError, "read journal", err)
	}

	report := JournalReport{
		Database: dbPath,
		Entries:  make([]JournalEntry, len(entries)),
	}
	for i, e := range entries {
		report.Entries[i] = JournalEntry{
			ID:         e.ID,
			BeforeHash: e.BeforeHash,
			AfterHash:  e.AfterHash,
			OpCount:    e.OpCount,
			RecordedAt: e.RecordedAt,
			Ops:        e.Ops,
		}
	}
	return formatter.Success(report)
}
