package model

// TextRow is the simplest row: its identity is its content.
//
// Useful for fixtures and tests, and for real lists whose rows are
// immutable display strings. Because identity and content coincide, a
// TextRow can never mutate in place - any change is a different row.
type TextRow string

// IdentityKey returns the text itself.
func (r TextRow) IdentityKey() string {
	return string(r)
}

// ContentHash hashes the text.
func (r TextRow) ContentHash() string {
	return HashFields(DomainRow, string(r))
}

// KeyedRow separates identity from content: the key is stable while the
// fields may mutate in place.
//
// Fields participate in the content hash in order. Callers decide which
// fields are semantically meaningful - an ignorable field (a view-local
// timestamp, a cache token) is simply left out of Fields, so touching it
// does not trigger a re-render.
type KeyedRow struct {
	Key    string
	Fields []string
}

// IdentityKey returns the stable key.
func (r KeyedRow) IdentityKey() string {
	return r.Key
}

// ContentHash hashes the key plus all fields, in order.
func (r KeyedRow) ContentHash() string {
	fields := make([]string, 0, len(r.Fields)+1)
	fields = append(fields, r.Key)
	fields = append(fields, r.Fields...)
	return HashFields(DomainRow, fields...)
}

// TextRows converts a string slice into a row slice.
// Fixture helper used by the harness and the CLI loader.
func TextRows(texts ...string) []Row {
	rows := make([]Row, len(texts))
	for i, t := range texts {
		rows[i] = TextRow(t)
	}
	return rows
}
