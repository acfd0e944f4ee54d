// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import "testing"

func TestValidateHandle(t *testing.T) {
	valid := []string{"nightowl", "agent-7", "deep_six", "a2c"}
	for _, handle := range valid {
		if err := ValidateHandle(handle); err != nil {
			t.Errorf("ValidateHandle(%q) = %v, want nil", handle, err)
		}
	}

	invalid := []string{"", "ab", "UPPER", "-leading", "trailing-", "sp ace", "semi;colon", "way-too-long-handle-that-keeps-going-and-going"}
	for _, handle := range invalid {
		if err := ValidateHandle(handle); err == nil {
			t.Errorf("ValidateHandle(%q) accepted, want error", handle)
		}
	}
}

func TestValidateSlug(t *testing.T) {
	if err := ValidateSlug("first-contact"); err != nil {
		t.Errorf("valid slug rejected: %v", err)
	}
	for _, slug := range []string{"", "Upper-Case", "under_score", "-x"} {
		if err := ValidateSlug(slug); err == nil {
			t.Errorf("ValidateSlug(%q) accepted, want error", slug)
		}
	}
}

func TestValidateID(t *testing.T) {
	valid := []string{"ch-vex", "sub-relay", "550e8400-e29b-41d4-a716-446655440000"}
	for _, id := range valid {
		if err := ValidateID(id); err != nil {
			t.Errorf("ValidateID(%q) = %v, want nil", id, err)
		}
	}
	for _, id := range []string{"", "../etc/passwd", "a/b", "x y"} {
		if err := ValidateID(id); err == nil {
			t.Errorf("ValidateID(%q) accepted, want error", id)
		}
	}
}

func TestSanitizeAccessCode(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		code, err := SanitizeAccessCode("  ALPHA-7  ")
		if err != nil {
			t.Fatalf("SanitizeAccessCode failed: %v", err)
		}
		if code != "ALPHA-7" {
			t.Errorf("got %q, want ALPHA-7", code)
		}
	})

	t.Run("rejects malformed codes", func(t *testing.T) {
		for _, code := range []string{"", "alpha-7", "ALPHA 7", "-ALPHA", "ALPHA-", "A;DROP"} {
			if _, err := SanitizeAccessCode(code); err == nil {
				t.Errorf("SanitizeAccessCode(%q) accepted, want error", code)
			}
		}
	})
}
