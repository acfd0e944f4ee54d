// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the JSON document models of the membership
// platform. Documents are strict structs persisted as-is; there is no
// runtime shape inference or deep-merge repair of loose maps.
package datatypes

import "time"

// AgentProfile is a community member's profile document.
type AgentProfile struct {
	ID          string    `json:"id"`
	Handle      string    `json:"handle"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio,omitempty"`
	DivisionID  string    `json:"division_id,omitempty"`
	Roles       []string  `json:"roles,omitempty"`
	BadgeIDs    []string  `json:"badge_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasRole reports whether the profile carries the named role.
func (a *AgentProfile) HasRole(role string) bool {
	for _, got := range a.Roles {
		if got == role {
			return true
		}
	}
	return false
}

// HasBadge reports whether the badge is already granted.
func (a *AgentProfile) HasBadge(badgeID string) bool {
	for _, got := range a.BadgeIDs {
		if got == badgeID {
			return true
		}
	}
	return false
}
