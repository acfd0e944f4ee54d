// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cipher

import "testing"

func TestPercentage(t *testing.T) {
	cases := []struct {
		name     string
		unlocked []string
		format   Format
		want     int
	}{
		{"nothing unlocked", nil, letters3(), 0},
		{"three of nine truncates to 33", []string{"A1", "B2", "C3"}, letters3(), 33},
		{"three of twelve is exactly 25", []string{"A1", "B2", "C3"}, letters4(), 25},
		{"all nine is 100", letters3().FragmentIDs(), letters3(), 100},
		{"all twelve is 100", letters4().FragmentIDs(), letters4(), 100},
		{"out-of-universe ids do not count", []string{"D1", "D2", "D3"}, letters3(), 0},
		{"duplicates do not inflate", []string{"A1", "A1", "A1"}, letters3(), 11},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Percentage(tc.unlocked, tc.format); got != tc.want {
				t.Errorf("Percentage(%v) = %d, want %d", tc.unlocked, got, tc.want)
			}
		})
	}
}

// TestPercentageMonotonic checks that adding fragments never lowers the
// percentage.
func TestPercentageMonotonic(t *testing.T) {
	f := letters3()
	var unlocked []string
	prev := 0
	for _, id := range f.FragmentIDs() {
		unlocked = append(unlocked, id)
		got := Percentage(unlocked, f)
		if got < prev {
			t.Fatalf("percentage decreased from %d to %d after adding %s", prev, got, id)
		}
		prev = got
	}
	if prev != 100 {
		t.Errorf("full universe percentage = %d, want 100", prev)
	}
}

func TestSegmentComplete(t *testing.T) {
	f := letters3()

	t.Run("complete segment", func(t *testing.T) {
		if !SegmentComplete("AAA", []string{"A1", "A2", "A3", "B1"}, f) {
			t.Error("AAA should be complete with A1,A2,A3 unlocked")
		}
	})

	t.Run("partial segment", func(t *testing.T) {
		if SegmentComplete("BBB", []string{"B1", "B2"}, f) {
			t.Error("BBB should not be complete with only B1,B2")
		}
	})

	t.Run("unknown segment key", func(t *testing.T) {
		if SegmentComplete("DDD", letters3().FragmentIDs(), f) {
			t.Error("DDD is outside a 3-segment format and can never be complete")
		}
	})
}

func TestFragmentValue(t *testing.T) {
	m, err := Split("ABC-DEF-GHI", letters3())
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	t.Run("direct lookup", func(t *testing.T) {
		got, ok := FragmentValue("B2", m)
		if !ok || got != "E" {
			t.Errorf("FragmentValue(B2) = %q, %v, want E, true", got, ok)
		}
	})

	t.Run("outside the universe is not-found, not an error", func(t *testing.T) {
		if _, ok := FragmentValue("D1", m); ok {
			t.Error("D1 should not resolve in a 3-segment map")
		}
		if _, ok := FragmentValue("bogus", m); ok {
			t.Error("malformed id should not resolve")
		}
	})
}
