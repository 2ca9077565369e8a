package diffkit

import "fmt"

// DuplicateKeyError is the panic payload raised when an identity key
// appears more than once in a sequence handed to the diff engine.
//
// Duplicate keys break the correlation between removals and insertions:
// move inference would silently misattribute a delete/insert pair and
// the sink would corrupt the widget's visible state. This is a
// precondition violation, so the engine fails loudly instead of
// degrading.
type DuplicateKeyError struct {
	// Granularity is "section" or "row".
	Granularity string

	// Key is the duplicated identity key.
	Key string

	// First and Second are the positions of the two occurrences.
	First  int
	Second int
}

// Error implements the error interface.
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s identity key %q (positions %d and %d)",
		e.Granularity, e.Key, e.First, e.Second)
}

// validateUniqueKeys panics with *DuplicateKeyError if any key repeats.
func validateUniqueKeys(granularity string, keys []string) {
	seen := make(map[string]int, len(keys))
	for i, k := range keys {
		if first, ok := seen[k]; ok {
			panic(&DuplicateKeyError{
				Granularity: granularity,
				Key:         k,
				First:       first,
				Second:      i,
			})
		}
		seen[k] = i
	}
}
