// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cipher

import (
	"fmt"
	"time"
)

// SubChallenge is one discrete puzzle within a challenge. Solving it
// unlocks its declared fragment identifiers, which may span segments.
// Authored by an administrator; immutable during normal operation
// except for Active toggling.
type SubChallenge struct {
	ID             string   `json:"id" yaml:"id"`
	AccessCode     string   `json:"access_code" yaml:"access_code"`
	PromptLines    []string `json:"prompt_lines" yaml:"prompt_lines"`
	HintLines      []string `json:"hint_lines,omitempty" yaml:"hint_lines,omitempty"`
	ExpectedOutput string   `json:"expected_output" yaml:"expected_output"`
	FragmentIDs    []string `json:"fragment_ids" yaml:"fragment_ids"`
	RewardID       string   `json:"reward_id,omitempty" yaml:"reward_id,omitempty"`
	Active         bool     `json:"active" yaml:"active"`
}

// Challenge owns a target code, its format, and the sub-challenges
// that unlock it. Shared challenges pool progress across all
// participants instead of tracking it per participant.
type Challenge struct {
	ID            string         `json:"id" yaml:"id"`
	Title         string         `json:"title" yaml:"title"`
	Description   string         `json:"description,omitempty" yaml:"description,omitempty"`
	TargetCode    string         `json:"target_code" yaml:"target_code"`
	Format        Format         `json:"format" yaml:"format"`
	Shared        bool           `json:"shared" yaml:"shared"`
	SubChallenges []SubChallenge `json:"sub_challenges" yaml:"sub_challenges"`
}

// Fragments splits the challenge's target code into its structured
// fragment map.
func (c *Challenge) Fragments() (FragmentMap, error) {
	return Split(c.TargetCode, c.Format)
}

// CheckDefinition validates an authored challenge: the format is legal,
// the target code matches it, and every fragment identifier referenced
// by a sub-challenge exists in the fragment universe. Coverage of the
// full universe is a construction-time concern, not enforced here.
func (c *Challenge) CheckDefinition() error {
	if c.ID == "" {
		return fmt.Errorf("challenge has no id")
	}
	if err := c.Format.Check(); err != nil {
		return fmt.Errorf("challenge %s: %w", c.ID, err)
	}
	if err := Validate(c.TargetCode, c.Format); err != nil {
		return fmt.Errorf("challenge %s: target code: %w", c.ID, err)
	}
	seen := make(map[string]bool, len(c.SubChallenges))
	for _, sub := range c.SubChallenges {
		if sub.ID == "" {
			return fmt.Errorf("challenge %s: sub-challenge has no id", c.ID)
		}
		if seen[sub.ID] {
			return fmt.Errorf("challenge %s: duplicate sub-challenge id %q", c.ID, sub.ID)
		}
		seen[sub.ID] = true
		if sub.AccessCode == "" {
			return fmt.Errorf("challenge %s: sub-challenge %s has no access code", c.ID, sub.ID)
		}
		if sub.ExpectedOutput == "" {
			return fmt.Errorf("challenge %s: sub-challenge %s has no expected output", c.ID, sub.ID)
		}
		for _, id := range sub.FragmentIDs {
			if !c.Format.Contains(id) {
				return fmt.Errorf("challenge %s: sub-challenge %s references unknown fragment %q",
					c.ID, sub.ID, id)
			}
		}
	}
	return nil
}

// AgentProgress is the persisted unlock record for one participant on
// one challenge (or the single pooled record of a shared challenge).
// Created lazily on first unlock; never deleted by the engine.
type AgentProgress struct {
	ChallengeID string    `json:"challenge_id"`
	AgentID     string    `json:"agent_id"`
	Unlocked    []string  `json:"unlocked_fragments"`
	Complete    bool      `json:"complete"`
	LastUpdated time.Time `json:"last_updated"`
}

// Has reports whether the fragment identifier is already unlocked.
func (p *AgentProgress) Has(id string) bool {
	for _, got := range p.Unlocked {
		if got == id {
			return true
		}
	}
	return false
}
