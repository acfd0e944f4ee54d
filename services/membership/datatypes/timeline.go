// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// TimelineChoice is one option a participant can pick at a timeline
// node. Choices may grant code fragments (routed through the same
// unlock path as the challenge gate) and rewards; the timeline itself
// has no code-splitting logic.
type TimelineChoice struct {
	Label          string   `json:"label" yaml:"label"`
	Next           string   `json:"next" yaml:"next"`
	GrantFragments []string `json:"grant_fragments,omitempty" yaml:"grant_fragments,omitempty"`
	RewardID       string   `json:"reward_id,omitempty" yaml:"reward_id,omitempty"`
}

// TimelineNode is one scene of a challenge's dialogue graph. A node
// with no choices is terminal.
type TimelineNode struct {
	ID      string           `json:"id" yaml:"id"`
	Lines   []string         `json:"lines" yaml:"lines"`
	Choices []TimelineChoice `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// TimelineState is a participant's persisted position in a challenge's
// timeline.
type TimelineState struct {
	ChallengeID string    `json:"challenge_id"`
	AgentID     string    `json:"agent_id"`
	NodeID      string    `json:"node_id"`
	VisitedIDs  []string  `json:"visited_ids,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
