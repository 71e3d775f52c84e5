// Package ident handles the opaque string identifiers that name graph
// nodes: user IDs, beacon IDs, comment IDs.
//
// Identifiers cross two boundaries — the relational store and the rank
// engine — and the two must agree byte-for-byte on what names a node.
// All identifiers are therefore NFC-normalized once, at the point they
// enter the system, and validated before any adapter call.
package ident

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxLen is the maximum identifier length in bytes after normalization.
// Matches the VARCHAR-sized key columns in the relational schema.
const MaxLen = 256

// Normalize returns the canonical form of an identifier.
// NFC normalization happens here and nowhere else; callers must pass
// identifiers through Normalize before storing or routing them.
func Normalize(id string) string {
	return norm.NFC.String(id)
}

// Validate reports whether id is a well-formed identifier.
// A valid identifier is non-empty, valid UTF-8, at most MaxLen bytes,
// and contains no control characters.
//
// Validate does not normalize; call Normalize first.
func Validate(id string) error {
	if id == "" {
		return fmt.Errorf("identifier is empty")
	}
	if len(id) > MaxLen {
		return fmt.Errorf("identifier exceeds %d bytes: %d", MaxLen, len(id))
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("identifier is not valid UTF-8")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return fmt.Errorf("identifier contains control character %U", r)
		}
	}
	return nil
}
