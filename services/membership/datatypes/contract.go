// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// Contract statuses. A contract moves open -> accepted -> completed,
// or is withdrawn by an administrator at any point before completion.
const (
	ContractOpen      = "open"
	ContractAccepted  = "accepted"
	ContractCompleted = "completed"
	ContractWithdrawn = "withdrawn"
)

// Contract is a task offer an agent can accept and complete for a
// reward.
type Contract struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Body        string     `json:"body,omitempty"`
	Status      string     `json:"status"`
	AgentID     string     `json:"agent_id,omitempty"` // the accepting agent
	RewardID    string     `json:"reward_id,omitempty"`
	IssuedAt    time.Time  `json:"issued_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RewardCode is a single-use code redeemable for a reward.
type RewardCode struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	RewardID   string     `json:"reward_id"`
	Redeemed   bool       `json:"redeemed"`
	RedeemedBy string     `json:"redeemed_by,omitempty"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
	MintedAt   time.Time  `json:"minted_at"`
}
