// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cipher

import (
	"errors"
	"testing"
)

func letters3() Format {
	return Format{Segments: 3, Alphabet: AlphabetLetters}
}

func mixed3() Format {
	return Format{Segments: 3, Alphabet: AlphabetLettersDigits}
}

func letters4() Format {
	return Format{Segments: 4, Alphabet: AlphabetLetters}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		code   string
		format Format
		want   error
	}{
		{"empty code", "", letters3(), ErrEmptyCode},
		{"plain three segments", "ABC-DEF-GHI", letters3(), nil},
		{"four segments when declared", "ABC-DEF-GHI-JKL", letters4(), nil},
		{"digits when declared", "VEX-ARC-042", mixed3(), nil},
		{"digits rejected under letters-only", "VEX-ARC-042", letters3(), ErrBadFormat},
		{"oversized segment", "ABCD-123-XYZ", mixed3(), ErrBadFormat},
		{"lowercase rejected", "abc-def-ghi", letters3(), ErrBadFormat},
		{"missing separators", "ABCDEFGHI", letters3(), ErrBadFormat},
		{"three segments when four declared", "ABC-DEF-GHI", letters4(), ErrBadFormat},
		{"four segments when three declared", "ABC-DEF-GHI-JKL", letters3(), ErrBadFormat},
		{"wrong separator", "ABC_DEF_GHI", letters3(), ErrBadFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Validate(tc.code, tc.format)
			if !errors.Is(got, tc.want) && !(got == nil && tc.want == nil) {
				t.Errorf("Validate(%q) = %v, want %v", tc.code, got, tc.want)
			}
			if got != nil && !errors.Is(got, ErrInvalidCode) {
				t.Errorf("Validate(%q) = %v, want it to match ErrInvalidCode", tc.code, got)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	t.Run("maps characters to fragment identifiers", func(t *testing.T) {
		m, err := Split("ABC-DEF-GHI", letters3())
		if err != nil {
			t.Fatalf("Split failed: %v", err)
		}
		want := FragmentMap{
			"AAA": {"A1": "A", "A2": "B", "A3": "C"},
			"BBB": {"B1": "D", "B2": "E", "B3": "F"},
			"CCC": {"C1": "G", "C2": "H", "C3": "I"},
		}
		if len(m) != len(want) {
			t.Fatalf("got %d segments, want %d", len(m), len(want))
		}
		for key, fragments := range want {
			for id, char := range fragments {
				if m[key][id] != char {
					t.Errorf("m[%s][%s] = %q, want %q", key, id, m[key][id], char)
				}
			}
		}
		if _, ok := m["DDD"]; ok {
			t.Error("DDD segment should be absent for a 3-segment code")
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		if _, err := Split("abc-def-ghi", letters3()); !errors.Is(err, ErrBadFormat) {
			t.Errorf("expected ErrBadFormat, got %v", err)
		}
		if _, err := Split("", letters3()); !errors.Is(err, ErrEmptyCode) {
			t.Errorf("expected ErrEmptyCode, got %v", err)
		}
	})
}

func TestBuildRoundTrip(t *testing.T) {
	cases := []struct {
		code   string
		format Format
	}{
		{"ABC-DEF-GHI", letters3()},
		{"VEX-ARC-042", mixed3()},
		{"ZZZ-ZZZ-ZZZ", letters3()},
		{"ABC-DEF-GHI-JKL", letters4()},
		{"A1B-2C3-D4E-999", Format{Segments: 4, Alphabet: AlphabetLettersDigits}},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			m, err := Split(tc.code, tc.format)
			if err != nil {
				t.Fatalf("Split(%q) failed: %v", tc.code, err)
			}
			if got := Build(m, tc.format); got != tc.code {
				t.Errorf("Build(Split(%q)) = %q, want identity", tc.code, got)
			}
		})
	}
}

func TestFormatUniverse(t *testing.T) {
	t.Run("three segments yield nine fragments", func(t *testing.T) {
		f := letters3()
		ids := f.FragmentIDs()
		want := []string{"A1", "A2", "A3", "B1", "B2", "B3", "C1", "C2", "C3"}
		if len(ids) != len(want) {
			t.Fatalf("got %d fragment ids, want %d", len(ids), len(want))
		}
		for i, id := range want {
			if ids[i] != id {
				t.Errorf("ids[%d] = %q, want %q", i, ids[i], id)
			}
		}
	})

	t.Run("four segments yield twelve fragments", func(t *testing.T) {
		f := letters4()
		if got := f.FragmentCount(); got != 12 {
			t.Errorf("FragmentCount = %d, want 12", got)
		}
		if !f.Contains("D3") {
			t.Error("D3 should be in the 4-segment universe")
		}
	})

	t.Run("contains rejects out-of-universe ids", func(t *testing.T) {
		f := letters3()
		for _, id := range []string{"D1", "E1", "A0", "A4", "AA", "", "a1"} {
			if f.Contains(id) {
				t.Errorf("Contains(%q) = true, want false", id)
			}
		}
	})

	t.Run("segment counts other than 3 or 4 are rejected", func(t *testing.T) {
		for _, n := range []int{0, 1, 2, 5} {
			if _, err := NewFormat(n, AlphabetLetters); err == nil {
				t.Errorf("NewFormat(%d) accepted, want error", n)
			}
		}
	})
}
