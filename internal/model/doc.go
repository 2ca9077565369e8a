// Package model defines the identity and content-hash model for the
// two-level (section -> row) collections that listproxy keeps in sync
// with a list widget.
//
// Two notions of equality coexist and must not be conflated:
//
// Identity equality:
// Rows and sections are matched between an old and a new snapshot by
// their identity key alone. The diff engine only ever compares identity
// keys. Two sections with the same key are the "same" section even if
// every row inside them changed.
//
// Content equality:
// A content hash summarizes the current values of an entity. It detects
// in-place mutation of an entity whose identity did not change. A
// section's content hash folds the content hashes of its rows in order,
// so reordering rows changes the section hash even though row identities
// are unchanged.
//
// CRITICAL: content hashes use the canonical field encoding from this
// package (length-prefixed, NFC-normalized, domain-separated SHA-256).
// No other serialization may be used for hash computation.
package model
