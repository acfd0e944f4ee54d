// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cipher

import "strings"

// Separator joins the segments of a target code.
const Separator = "-"

// FragmentMap is the structured form of a target code: segment key
// ("AAA", "BBB", ...) to fragment identifier ("A1", "A2", ...) to the
// single character stored there.
//
// Round-trip law: Build(Split(code)) == code for every code accepted by
// Validate under the same format.
type FragmentMap map[string]map[string]string

// Validate checks a target code against its declared format.
//
// Returns ErrEmptyCode for an empty string and ErrBadFormat when the
// code does not consist of exactly Format.Segments groups of
// SegmentLength characters from the declared alphabet, joined by "-".
// Lowercase input is rejected, never folded.
func Validate(code string, f Format) error {
	if code == "" {
		return ErrEmptyCode
	}
	parts := strings.Split(code, Separator)
	if len(parts) != f.Segments {
		return ErrBadFormat
	}
	for _, part := range parts {
		if len(part) != SegmentLength {
			return ErrBadFormat
		}
		for _, c := range part {
			if !f.Alphabet.allows(c) {
				return ErrBadFormat
			}
		}
	}
	return nil
}

// Split decomposes a validated target code into its FragmentMap,
// mapping character i of segment s to fragment identifier
// {segmentLetter}{i+1}. Fails with the Validate error for malformed
// input.
func Split(code string, f Format) (FragmentMap, error) {
	if err := Validate(code, f); err != nil {
		return nil, err
	}
	m := make(FragmentMap, f.Segments)
	for seg, part := range strings.Split(code, Separator) {
		fragments := make(map[string]string, SegmentLength)
		for pos, c := range part {
			fragments[FragmentID(seg, pos)] = string(c)
		}
		m[f.SegmentKey(seg)] = fragments
	}
	return m, nil
}

// Build reassembles a complete FragmentMap into its flat target code.
//
// Build has no failure mode for a well-formed map. Callers must not
// pass a partially filled map: missing fragments produce a malformed
// code. Partial visibility is RenderPartial's job, via masking.
func Build(m FragmentMap, f Format) string {
	var b strings.Builder
	b.Grow(f.FragmentCount() + f.Segments - 1)
	for seg := 0; seg < f.Segments; seg++ {
		if seg > 0 {
			b.WriteString(Separator)
		}
		fragments := m[f.SegmentKey(seg)]
		for pos := 0; pos < SegmentLength; pos++ {
			b.WriteString(fragments[FragmentID(seg, pos)])
		}
	}
	return b.String()
}
