package parser

import (
	"strings"
	"unicode"
)

// NormalizeLabel trims s and collapses every run of inner whitespace to a
// single space, so "Tyto  alba\t" and "Tyto alba" name the same class.
func NormalizeLabel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
