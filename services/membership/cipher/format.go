// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cipher implements the segmented access-code puzzle engine.
//
// A challenge hides a secret target code such as "VEX-ARC-042" behind a
// set of individually unlockable fragments. Each fragment is one
// character of the code, addressed by a segment letter and a position:
// A1 is the first character of the first segment, D3 the last character
// of an optional fourth segment. Participants reveal fragments by
// solving access-code-gated sub-challenges; this package provides the
// code format, the split/build codec, partial rendering, completion
// math, the submission gate, and the progress tracker.
//
// The engine is synchronous and performs no concurrency coordination of
// its own. Persistence happens behind the ProgressStore interface; a
// single Unlock call is all-or-nothing with respect to the stored
// record.
package cipher

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SegmentLength is the fixed number of characters per code segment.
const SegmentLength = 3

// Mask is the character shown in place of a locked fragment.
const Mask = 'X'

// segmentLetters indexes segment position to its fragment letter.
const segmentLetters = "ABCD"

// Alphabet declares which characters a target code may contain.
// It is an authored property of a challenge, never inferred from input.
type Alphabet int

const (
	// AlphabetLetters allows uppercase A-Z only.
	AlphabetLetters Alphabet = iota

	// AlphabetLettersDigits allows uppercase A-Z and 0-9, for codes
	// like "VEX-ARC-042".
	AlphabetLettersDigits
)

// String returns the wire name of the alphabet ("letters" or
// "letters_digits").
func (a Alphabet) String() string {
	text, err := a.MarshalText()
	if err != nil {
		return fmt.Sprintf("alphabet(%d)", int(a))
	}
	return string(text)
}

// MarshalText implements encoding.TextMarshaler so Alphabet round-trips
// through JSON documents and YAML challenge files.
func (a Alphabet) MarshalText() ([]byte, error) {
	switch a {
	case AlphabetLetters:
		return []byte("letters"), nil
	case AlphabetLettersDigits:
		return []byte("letters_digits"), nil
	default:
		return nil, fmt.Errorf("unknown alphabet value %d", int(a))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Alphabet) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "letters":
		*a = AlphabetLetters
	case "letters_digits":
		*a = AlphabetLettersDigits
	default:
		return fmt.Errorf("unknown alphabet %q", string(text))
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler; yaml.v3 does not consult the
// text marshalers above.
func (a Alphabet) MarshalYAML() (any, error) {
	text, err := a.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Alphabet) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	return a.UnmarshalText([]byte(name))
}

// allows reports whether c is a legal target-code character under a.
func (a Alphabet) allows(c rune) bool {
	if c >= 'A' && c <= 'Z' {
		return true
	}
	return a == AlphabetLettersDigits && c >= '0' && c <= '9'
}

// Format describes the shape of a target code: how many 3-character
// segments it has and which characters those segments may contain.
// A Format is authored once per challenge and is immutable thereafter.
type Format struct {
	Segments int      `json:"segments" yaml:"segments"`
	Alphabet Alphabet `json:"alphabet" yaml:"alphabet"`
}

// NewFormat builds a Format, rejecting segment counts other than 3 or 4.
func NewFormat(segments int, alphabet Alphabet) (Format, error) {
	f := Format{Segments: segments, Alphabet: alphabet}
	if err := f.Check(); err != nil {
		return Format{}, err
	}
	return f, nil
}

// Check validates an authored format. Only 3- and 4-segment codes exist.
func (f Format) Check() error {
	if f.Segments != 3 && f.Segments != 4 {
		return fmt.Errorf("segment count must be 3 or 4, got %d", f.Segments)
	}
	if f.Alphabet != AlphabetLetters && f.Alphabet != AlphabetLettersDigits {
		return fmt.Errorf("unknown alphabet value %d", int(f.Alphabet))
	}
	return nil
}

// FragmentCount returns the size of the fragment universe (9 or 12).
func (f Format) FragmentCount() int {
	return f.Segments * SegmentLength
}

// SegmentKey returns the key for segment i: "AAA", "BBB", "CCC", "DDD".
func (f Format) SegmentKey(i int) string {
	return segmentKey(i)
}

func segmentKey(i int) string {
	return strings.Repeat(string(segmentLetters[i]), SegmentLength)
}

// SegmentKeys returns the segment keys in code order.
func (f Format) SegmentKeys() []string {
	keys := make([]string, f.Segments)
	for i := range keys {
		keys[i] = f.SegmentKey(i)
	}
	return keys
}

// SegmentFragments returns the fragment identifiers of segment i in
// position order, e.g. ["B1","B2","B3"] for i=1.
func (f Format) SegmentFragments(i int) []string {
	ids := make([]string, SegmentLength)
	for pos := range ids {
		ids[pos] = FragmentID(i, pos)
	}
	return ids
}

// FragmentIDs returns the full ordered fragment universe, e.g.
// A1,A2,A3,B1,B2,B3,C1,C2,C3 for a 3-segment format.
func (f Format) FragmentIDs() []string {
	ids := make([]string, 0, f.FragmentCount())
	for seg := 0; seg < f.Segments; seg++ {
		ids = append(ids, f.SegmentFragments(seg)...)
	}
	return ids
}

// Contains reports whether id names a fragment inside this format's
// universe.
func (f Format) Contains(id string) bool {
	seg, _, ok := parseFragmentID(id)
	return ok && seg < f.Segments
}

// segmentIndex resolves a segment key ("AAA".."DDD") to its position,
// or -1 if the key does not belong to this format.
func (f Format) segmentIndex(key string) int {
	for i := 0; i < f.Segments; i++ {
		if f.SegmentKey(i) == key {
			return i
		}
	}
	return -1
}

// FragmentID names the fragment at position pos (0-based) of segment
// seg (0-based): FragmentID(1, 2) == "B3".
func FragmentID(seg, pos int) string {
	return fmt.Sprintf("%c%d", segmentLetters[seg], pos+1)
}

// parseFragmentID decomposes an identifier like "C2" into segment and
// position indexes. ok is false for anything outside A1..D3.
func parseFragmentID(id string) (seg, pos int, ok bool) {
	if len(id) != 2 {
		return 0, 0, false
	}
	seg = strings.IndexByte(segmentLetters, id[0])
	if seg < 0 {
		return 0, 0, false
	}
	pos = int(id[1] - '1')
	if pos < 0 || pos >= SegmentLength {
		return 0, 0, false
	}
	return seg, pos, true
}
