// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for user-supplied
// identifiers. Everything that ends up in a storage key or a log line
// passes through here first, so malformed or hostile input never
// reaches the document store.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// handlePattern matches agent handles: lowercase alphanumeric with
// single inner hyphens or underscores, 3-32 characters.
var handlePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,30}[a-z0-9]$`)

// slugPattern matches badge/division slugs: lowercase alphanumeric
// with single inner hyphens, 2-48 characters.
var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,46}[a-z0-9]$`)

// idPattern matches document identifiers: UUIDs and the ch-/sub-/rc-
// style ids used by authored content. Conservative on purpose; these
// values become storage keys.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// accessCodePattern matches challenge access codes: uppercase
// alphanumeric groups joined by hyphens, like "ALPHA-7".
var accessCodePattern = regexp.MustCompile(`^[A-Z0-9]+(-[A-Z0-9]+)*$`)

// ValidateHandle validates an agent handle.
func ValidateHandle(handle string) error {
	if handle == "" {
		return fmt.Errorf("handle cannot be empty")
	}
	if !handlePattern.MatchString(handle) {
		return fmt.Errorf("invalid handle %q: 3-32 lowercase alphanumeric characters, hyphens, or underscores", handle)
	}
	return nil
}

// ValidateSlug validates a badge or division slug.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("invalid slug %q: 2-48 lowercase alphanumeric characters or hyphens", slug)
	}
	return nil
}

// ValidateID validates a document identifier taken from a URL path.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid id %q", id)
	}
	return nil
}

// SanitizeAccessCode trims whitespace and validates the shape of an
// access code without revealing whether it exists. Returns the cleaned
// code.
func SanitizeAccessCode(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", fmt.Errorf("access code cannot be empty")
	}
	if len(trimmed) > 64 || !accessCodePattern.MatchString(trimmed) {
		return "", fmt.Errorf("invalid access code format")
	}
	return trimmed, nil
}
