// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cipher

// Percentage computes how much of the fragment universe is unlocked,
// as an integer 0-100. Identifiers outside the universe are ignored,
// and the result truncates: 3 of 9 fragments is 33, not 34.
func Percentage(unlocked []string, f Format) int {
	open := toSet(unlocked)
	count := 0
	for _, id := range f.FragmentIDs() {
		if _, ok := open[id]; ok {
			count++
		}
	}
	return 100 * count / f.FragmentCount()
}

// SegmentComplete reports whether every fragment of the segment named
// by key ("AAA".."DDD") is unlocked. An unknown key is never complete.
func SegmentComplete(key string, unlocked []string, f Format) bool {
	seg := f.segmentIndex(key)
	if seg < 0 {
		return false
	}
	open := toSet(unlocked)
	for _, id := range f.SegmentFragments(seg) {
		if _, ok := open[id]; !ok {
			return false
		}
	}
	return true
}

// FragmentValue looks up the character stored at a fragment identifier.
// The bool result distinguishes "nonexistent identifier" from a real
// lookup, so callers can tell a locked fragment from one outside the
// universe without error plumbing.
func FragmentValue(id string, m FragmentMap) (string, bool) {
	seg, _, ok := parseFragmentID(id)
	if !ok {
		return "", false
	}
	fragments, ok := m[segmentKey(seg)]
	if !ok {
		return "", false
	}
	value, ok := fragments[id]
	return value, ok
}
