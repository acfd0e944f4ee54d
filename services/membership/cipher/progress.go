// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cipher

import (
	"context"
	"fmt"
	"time"
)

// PooledAgentID is the storage participant key for shared challenges,
// where all unlocks apply to one pooled record. It cannot collide with
// real participant identifiers, which never start with '@'.
const PooledAgentID = "@shared"

// ProgressStore is the persistence boundary for unlock records.
//
// LoadProgress returns (nil, nil) when no record exists yet: progress
// is created lazily and is never required to pre-exist. Implementations
// must make SaveProgress atomic per record (no partial writes) and wrap
// outages in ErrStorageUnavailable.
type ProgressStore interface {
	LoadProgress(ctx context.Context, challengeID, agentID string) (*AgentProgress, error)
	SaveProgress(ctx context.Context, progress *AgentProgress) error
}

// Tracker maintains per-participant unlock records. Unlock is a set
// union, so concurrent submissions racing over the same fragments
// converge on the same final state.
type Tracker struct {
	store ProgressStore
	now   func() time.Time
}

// NewTracker creates a Tracker backed by the given store.
func NewTracker(store ProgressStore) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// WithClock overrides the tracker's time source. Test hook.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// storageAgent selects the storage participant key: the pooled key for
// shared challenges, the real participant otherwise. Callers never
// special-case this; only key selection changes.
func storageAgent(ch *Challenge, agentID string) string {
	if ch.Shared {
		return PooledAgentID
	}
	return agentID
}

// Get returns the participant's progress on a challenge, or a fresh
// zero-state record (nothing unlocked, not complete) if none exists.
func (t *Tracker) Get(ctx context.Context, ch *Challenge, agentID string) (*AgentProgress, error) {
	agent := storageAgent(ch, agentID)
	progress, err := t.store.LoadProgress(ctx, ch.ID, agent)
	if err != nil {
		return nil, fmt.Errorf("load progress for %s/%s: %w", ch.ID, agent, err)
	}
	if progress == nil {
		progress = &AgentProgress{ChallengeID: ch.ID, AgentID: agent}
	}
	return progress, nil
}

// Unlock unions fragmentIDs into the participant's record, recomputes
// completion against the full fragment universe, stamps LastUpdated,
// and persists. Identifiers outside the challenge's universe are
// dropped so the stored set stays a subset of the universe. The second
// return value counts the fragments this call actually opened.
//
// Unlocking already-open fragments is a no-op: the record is returned
// unchanged with a zero count and not rewritten. On a store failure
// the prior record is left untouched and the error propagates wrapped.
func (t *Tracker) Unlock(ctx context.Context, ch *Challenge, agentID string, fragmentIDs []string) (*AgentProgress, int, error) {
	progress, err := t.Get(ctx, ch, agentID)
	if err != nil {
		return nil, 0, err
	}

	opened := 0
	for _, id := range fragmentIDs {
		if !ch.Format.Contains(id) || progress.Has(id) {
			continue
		}
		progress.Unlocked = append(progress.Unlocked, id)
		opened++
	}
	if opened == 0 {
		return progress, 0, nil
	}

	progress.Unlocked = sortByUniverse(progress.Unlocked, ch.Format)
	progress.Complete = len(progress.Unlocked) == ch.Format.FragmentCount()
	progress.LastUpdated = t.now()

	if err := t.store.SaveProgress(ctx, progress); err != nil {
		return nil, 0, fmt.Errorf("save progress for %s/%s: %w", ch.ID, progress.AgentID, err)
	}
	return progress, opened, nil
}

// sortByUniverse orders unlocked identifiers by their position in the
// format's fragment list, so stored records and API responses are
// stable regardless of unlock order.
func sortByUniverse(ids []string, f Format) []string {
	open := toSet(ids)
	sorted := make([]string, 0, len(ids))
	for _, id := range f.FragmentIDs() {
		if _, ok := open[id]; ok {
			sorted = append(sorted, id)
		}
	}
	return sorted
}
