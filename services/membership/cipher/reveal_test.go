// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cipher

import "testing"

func TestRenderPartial(t *testing.T) {
	f := letters3()
	m, err := Split("ABC-DEF-GHI", f)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	cases := []struct {
		name     string
		unlocked []string
		want     string
	}{
		{"nothing unlocked", nil, "XXX-XXX-XXX"},
		{"one per segment", []string{"A1", "B2", "C3"}, "AXX-XEX-XXI"},
		{"first segment complete", []string{"A1", "A2", "A3"}, "ABC-XXX-XXX"},
		{"everything unlocked", f.FragmentIDs(), "ABC-DEF-GHI"},
		{"out-of-universe ids are ignored", []string{"D1", "E9"}, "XXX-XXX-XXX"},
		{"unlock order is irrelevant", []string{"C3", "A1", "B2"}, "AXX-XEX-XXI"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RenderPartial(tc.unlocked, m, f); got != tc.want {
				t.Errorf("RenderPartial(%v) = %q, want %q", tc.unlocked, got, tc.want)
			}
		})
	}
}

func TestRenderPartialFourSegments(t *testing.T) {
	f := letters4()
	m, err := Split("ABC-DEF-GHI-JKL", f)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if got := RenderPartial(nil, m, f); got != "XXX-XXX-XXX-XXX" {
		t.Errorf("empty reveal = %q, want fully masked 4-segment code", got)
	}
	if got := RenderPartial([]string{"D1", "D2", "D3"}, m, f); got != "XXX-XXX-XXX-JKL" {
		t.Errorf("fourth segment reveal = %q, want XXX-XXX-XXX-JKL", got)
	}
}
