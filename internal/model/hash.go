package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content hashing.
// Version suffix enables future algorithm migration.
const (
	DomainRow      = "listproxy/row/v1"
	DomainSection  = "listproxy/section/v1"
	DomainSnapshot = "listproxy/snapshot/v1"
	DomainJournal  = "listproxy/journal/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashFields computes the canonical hash of an ordered field list.
//
// Encoding: each field is NFC normalized, then length-prefixed as
// "${len}:${value}" to avoid delimiter ambiguity (an empty field encodes
// as "0:"). The concatenation is hashed with domain separation.
//
// The encoding is deliberately order-sensitive: HashFields(d, "a", "b")
// and HashFields(d, "b", "a") differ. Callers that want order-insensitive
// hashing must sort before calling.
func HashFields(domain string, fields ...string) string {
	var builder strings.Builder

	for _, field := range fields {
		// NFC normalize at the hashing boundary so visually identical
		// strings with different codepoint sequences hash equally.
		normalized := norm.NFC.String(field)
		builder.WriteString(strconv.Itoa(len(normalized)))
		builder.WriteByte(':')
		builder.WriteString(normalized)
	}

	return hashWithDomain(domain, []byte(builder.String()))
}
