// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validChallenge = `
id: ch-vex
title: The Vex Archive
target_code: VEX-ARC-042
format:
  segments: 3
  alphabet: letters_digits
shared: false
sub_challenges:
  - id: sub-relay
    access_code: ALPHA-7
    prompt_lines:
      - Recover the relay sequence.
    hint_lines:
      - The archive indexes by era.
    expected_output: TEMPORAL_SEQUENCE_V
    fragment_ids: [A1, B1]
    reward_id: reward-relay
    active: true
timeline:
  - id: start
    lines:
      - A terminal flickers to life.
    choices:
      - label: Read the log
        next: log
        grant_fragments: [C1]
  - id: log
    lines:
      - The log ends mid-sentence.
`

const badFragmentChallenge = `
id: ch-broken
title: Broken
target_code: ABC-DEF-GHI
format:
  segments: 3
  alphabet: letters
sub_challenges:
  - id: sub-1
    access_code: GATE-1
    prompt_lines: [Prompt.]
    expected_output: ANSWER
    fragment_ids: [D1]
    active: true
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCatalogLoad(t *testing.T) {
	t.Run("valid definition is published", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "vex.yaml", validChallenge)

		c := New(dir, nil)
		require.NoError(t, c.Load())

		def, ok := c.Get("ch-vex")
		require.True(t, ok)
		assert.Equal(t, "VEX-ARC-042", def.TargetCode)
		assert.Equal(t, 3, def.Format.Segments)
		require.Len(t, def.SubChallenges, 1)
		assert.Equal(t, "ALPHA-7", def.SubChallenges[0].AccessCode)
		require.NotNil(t, def.Graph())
		assert.Equal(t, 2, def.Graph().Len())
	})

	t.Run("invalid fragment reference is skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "broken.yaml", badFragmentChallenge)
		writeFile(t, dir, "vex.yaml", validChallenge)

		c := New(dir, nil)
		require.NoError(t, c.Load())

		_, ok := c.Get("ch-broken")
		assert.False(t, ok, "definition referencing D1 in a 3-segment format must be rejected")
		_, ok = c.Get("ch-vex")
		assert.True(t, ok, "valid sibling files still load")
	})

	t.Run("non-yaml files are ignored", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "notes.txt", "not a challenge")
		writeFile(t, dir, "vex.yaml", validChallenge)

		c := New(dir, nil)
		require.NoError(t, c.Load())
		assert.Len(t, c.List(), 1)
	})

	t.Run("missing directory errors", func(t *testing.T) {
		c := New(filepath.Join(t.TempDir(), "nope"), nil)
		assert.Error(t, c.Load())
	})

	t.Run("reload replaces previous definitions", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "vex.yaml", validChallenge)

		c := New(dir, nil)
		require.NoError(t, c.Load())
		require.Len(t, c.List(), 1)

		require.NoError(t, os.Remove(filepath.Join(dir, "vex.yaml")))
		require.NoError(t, c.Load())
		assert.Empty(t, c.List())
	})
}
