// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// Badge is an achievement emblem agents can earn.
type Badge struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IconURL     string    `json:"icon_url,omitempty"`
	Tier        string    `json:"tier,omitempty"` // bronze, silver, gold
	CreatedAt   time.Time `json:"created_at"`
}

// Division is an organizational unit agents belong to.
type Division struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Motto       string    `json:"motto,omitempty"`
	LeadAgentID string    `json:"lead_agent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
