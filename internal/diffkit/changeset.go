package diffkit

// Change is one element-level edit in an edit script.
type Change struct {
	// Key is the identity key of the affected element.
	Key string

	// Index is the element's offset: in the OLD sequence for removals,
	// in the NEW sequence for insertions.
	Index int

	// AssociatedWith is filled by move inference. On a removal it holds
	// the new offset the element reappears at; on an insertion it holds
	// the old offset the element came from. Nil when the edit is a plain
	// removal or insertion.
	AssociatedWith *int
}

// Changeset is a minimal edit script over one sequence.
// Removals are in ascending old offsets, insertions in ascending new
// offsets.
type Changeset struct {
	Removals   []Change
	Insertions []Change
}

// Empty reports whether the script contains no edits.
func (c Changeset) Empty() bool {
	return len(c.Removals) == 0 && len(c.Insertions) == 0
}

// associateMoves pairs each removal with the insertion sharing its
// identity key, filling AssociatedWith on both sides.
//
// Key uniqueness (validated upstream) guarantees at most one removal and
// one insertion per key, so the pairing is never ambiguous.
func associateMoves(c *Changeset) {
	removalAt := make(map[string]int, len(c.Removals))
	for i, r := range c.Removals {
		removalAt[r.Key] = i
	}

	for i := range c.Insertions {
		ins := &c.Insertions[i]
		ri, ok := removalAt[ins.Key]
		if !ok {
			continue
		}
		rem := &c.Removals[ri]

		from := rem.Index
		to := ins.Index
		ins.AssociatedWith = &from
		rem.AssociatedWith = &to
	}
}
