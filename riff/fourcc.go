// Copyright 2024 The ipatch Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package riff

// FourCC is a four-byte tag identifying a chunk kind, stored in file byte
// order for fast comparison (spec.md §3).
type FourCC [4]byte

// Well-known tags used by the RIFF layer itself. Format-specific callers
// define their own tags as FourCC literals (e.g. riff.Tag("INFO")).
var (
	TagRIFF = FourCC{'R', 'I', 'F', 'F'}
	TagRIFX = FourCC{'R', 'I', 'F', 'X'}
	TagLIST = FourCC{'L', 'I', 'S', 'T'}
)

// Tag builds a FourCC from a string. It panics if s is not exactly 4
// bytes; it is meant for compile-time-constant tag literals, analogous to
// the teacher's [4]byte chunk-id literals.
func Tag(s string) FourCC {
	if len(s) != 4 {
		panic("riff: FourCC tag must be exactly 4 bytes: " + s)
	}
	var f FourCC
	copy(f[:], s)
	return f
}

// String returns the tag's ASCII representation.
func (f FourCC) String() string { return string(f[:]) }

// Valid reports whether f satisfies the FourCC validation rule (spec.md
// §3, §6): each byte must be alphanumeric, or — once a non-space byte has
// been seen — a trailing space. A tag of four spaces is invalid; at least
// one non-space byte must appear before any padding spaces.
func (f FourCC) Valid() bool {
	sawNonSpace := false
	for i, b := range f {
		switch {
		case isAlnum(b):
			sawNonSpace = true
		case b == ' ':
			if !sawNonSpace {
				return false
			}
			// Once padding starts, every remaining byte must also be a
			// space; "A B " (non-space after a space) is not well-formed.
			for _, rest := range f[i+1:] {
				if rest != ' ' {
					return false
				}
			}
			return true
		default:
			return false
		}
	}
	return sawNonSpace
}

func isAlnum(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= '0' && b <= '9':
		return true
	default:
		return false
	}
}
