package model

// Row is an opaque application value displayed in one slot of a section.
//
// IdentityKey is the stable key by which a row is matched between an old
// and a new snapshot. ContentHash summarizes the row's current values and
// detects in-place mutation of a row whose identity did not change.
//
// Identity and content hash may coincide (see TextRow) but need not.
//
// INVARIANT: when move inference is enabled, identity keys must be unique
// across the entire snapshot, not just within a section, because a row
// can relocate from one section to another. The diff engine validates
// this and fails loudly on violation.
type Row interface {
	IdentityKey() string
	ContentHash() string
}

// Section is a keyed, ordered sequence of rows.
//
// Two sections are identity-equal iff their keys are equal, independent
// of their rows.
type Section struct {
	// Key defines section identity.
	Key string

	// Rows is the ordered row sequence.
	Rows []Row
}

// NewSection builds a section from a key and rows.
func NewSection(key string, rows ...Row) Section {
	return Section{Key: key, Rows: rows}
}

// IdentityKey returns the section key.
func (s Section) IdentityKey() string {
	return s.Key
}

// ContentHash combines the key's hash with the content hashes of all
// rows, in order. Reordering rows changes the section hash even though
// row identities are unchanged.
func (s Section) ContentHash() string {
	fields := make([]string, 0, len(s.Rows)+1)
	fields = append(fields, s.Key)
	for _, r := range s.Rows {
		fields = append(fields, r.ContentHash())
	}
	return HashFields(DomainSection, fields...)
}

// Snapshot is an ordered sequence of sections: what is currently
// materialized in the widget. A nil snapshot means "nothing materialized
// yet" (first render) and is distinct from an empty snapshot.
type Snapshot []Section

// ContentHash folds section content hashes in order.
// A nil and an empty snapshot hash identically; the nil/empty distinction
// is a materialization-state concern, not a content concern.
func (s Snapshot) ContentHash() string {
	fields := make([]string, 0, len(s))
	for _, sec := range s {
		fields = append(fields, sec.ContentHash())
	}
	return HashFields(DomainSnapshot, fields...)
}

// SectionIndex returns the index of the section with the given key,
// or -1 if absent.
func (s Snapshot) SectionIndex(key string) int {
	for i, sec := range s {
		if sec.Key == key {
			return i
		}
	}
	return -1
}

// RowCount returns the total number of rows across all sections.
func (s Snapshot) RowCount() int {
	n := 0
	for _, sec := range s {
		n += len(sec.Rows)
	}
	return n
}

// IdentityEqual reports whether two snapshots have the same section keys
// and row identity keys in the same order. Content hashes are ignored:
// this is the "did the structure change" question, not "did any value
// change".
func IdentityEqual(a, b Snapshot) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || len(a[i].Rows) != len(b[i].Rows) {
			return false
		}
		for j := range a[i].Rows {
			if a[i].Rows[j].IdentityKey() != b[i].Rows[j].IdentityKey() {
				return false
			}
		}
	}
	return true
}
