// Package diffkit computes the minimal, order-correct sequence of
// structural edits that transforms one snapshot into another.
//
// The pipeline has three stages:
//
//  1. Edit script. A Myers O(ND) difference over identity keys produces
//     a minimal set of removals (old offsets) and insertions (new
//     offsets). Content-hash differences between matched entities are
//     deliberately NOT surfaced: an in-place content change is the
//     provider's responsibility (force an identity change), not this
//     engine's.
//
//  2. Two-level recursion. The section-level script is computed first;
//     for every section key that survives, the two matched row
//     sequences are diffed the same way. Row deletes are addressed in
//     the OLD index space and row inserts in the NEW index space,
//     because a sink resolves deletions against the array it sees
//     before mutation begins and insertions against the array after.
//
//  3. Synthesis. Section and row scripts merge into one immutable
//     Instruction, optionally rewriting removal+insertion pairs of the
//     same identity into moves (WithMoveInference), and optionally
//     re-expressing overlapping delete/insert pairs from the other side
//     (WithReverseOrder).
//
// DETERMINISM: an Instruction is a pure function of (old, new,
// move-inference flag, reverse-order flag). Tied minimal scripts are
// broken by preferring removals, which keeps matches closest to the
// origin index.
//
// PRECONDITION: identity keys must be unique within each sequence, and
// - when move inference is enabled - row keys must be unique across the
// whole snapshot, because a row may relocate between sections. The
// engine validates this and panics with *DuplicateKeyError on
// violation; continuing would corrupt the widget's visible state.
package diffkit
