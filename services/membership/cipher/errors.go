// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cipher

import (
	"errors"
	"fmt"
)

// Sentinel errors for the expected failure modes of the engine. The
// request layer maps these to HTTP responses; anything else wrapping
// ErrStorageUnavailable is a persistence outage and the only condition
// that aborts an otherwise valid operation.
var (
	// ErrInvalidCode is the umbrella for every code rejected by the
	// codec. ErrEmptyCode and ErrBadFormat both wrap it, so callers
	// that do not care which rule failed can match on this alone.
	ErrInvalidCode = errors.New("invalid code")

	// ErrEmptyCode is returned when a target code or access code is empty.
	ErrEmptyCode = fmt.Errorf("%w: code is empty", ErrInvalidCode)

	// ErrBadFormat is returned when a target code does not match its
	// declared segment count, segment length, separator, or alphabet.
	ErrBadFormat = fmt.Errorf("%w: code does not match the declared format", ErrInvalidCode)

	// ErrNotFound is returned when an access code or sub-challenge
	// identifier resolves to nothing. Invalid, inactive, and nonexistent
	// entries are deliberately indistinguishable so access codes cannot
	// be enumerated from error shapes.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable is wrapped by store implementations when the
	// persistence boundary fails.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
