// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cipher

import "strings"

// RenderPartial renders the participant-visible view of a target code:
// unlocked fragments show their stored character, locked fragments show
// the mask character, segments keep their "-" grouping.
//
// With no unlocked fragments the result is fully masked ("XXX-XXX-XXX"
// for a 3-segment format); with every fragment unlocked it equals the
// original target code. Pure and deterministic.
func RenderPartial(unlocked []string, m FragmentMap, f Format) string {
	open := toSet(unlocked)
	var b strings.Builder
	b.Grow(f.FragmentCount() + f.Segments - 1)
	for seg := 0; seg < f.Segments; seg++ {
		if seg > 0 {
			b.WriteString(Separator)
		}
		fragments := m[f.SegmentKey(seg)]
		for pos := 0; pos < SegmentLength; pos++ {
			id := FragmentID(seg, pos)
			if _, ok := open[id]; ok {
				b.WriteString(fragments[id])
			} else {
				b.WriteRune(Mask)
			}
		}
	}
	return b.String()
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
