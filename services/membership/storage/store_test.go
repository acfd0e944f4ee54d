// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpost-collective/outpost/services/membership/cipher"
	"github.com/outpost-collective/outpost/services/membership/datatypes"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestAgentCRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	agent := &datatypes.AgentProfile{
		ID:        "agent-1",
		Handle:    "nightowl",
		Roles:     []string{"member"},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.PutAgent(ctx, agent))

	got, err := store.GetAgent(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, "nightowl", got.Handle)

	byHandle, err := store.FindAgentByHandle(ctx, "nightowl")
	require.NoError(t, err)
	assert.Equal(t, "agent-1", byHandle.ID)

	_, err = store.FindAgentByHandle(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNoDocument)

	agents, err := store.ListAgents(ctx)
	require.NoError(t, err)
	assert.Len(t, agents, 1)

	require.NoError(t, store.DeleteAgent(ctx, "agent-1"))
	_, err = store.GetAgent(ctx, "agent-1")
	assert.ErrorIs(t, err, ErrNoDocument)

	assert.ErrorIs(t, store.DeleteAgent(ctx, "agent-1"), ErrNoDocument)
}

func TestRewardCodeRedemption(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	code := &datatypes.RewardCode{
		ID:       "rc-1",
		Code:     "WELCOME-2026",
		RewardID: "badge-welcome",
		MintedAt: time.Now().UTC(),
	}
	require.NoError(t, store.MintRewardCode(ctx, code))
	assert.ErrorIs(t, store.MintRewardCode(ctx, code), ErrDuplicate)

	now := time.Now().UTC()
	redeemed, err := store.RedeemRewardCode(ctx, "WELCOME-2026", "agent-1", func(rc *datatypes.RewardCode) {
		rc.RedeemedAt = &now
	})
	require.NoError(t, err)
	assert.True(t, redeemed.Redeemed)
	assert.Equal(t, "agent-1", redeemed.RedeemedBy)

	_, err = store.RedeemRewardCode(ctx, "WELCOME-2026", "agent-2", nil)
	assert.ErrorIs(t, err, ErrAlreadyRedeemed)

	_, err = store.RedeemRewardCode(ctx, "NO-SUCH-CODE", "agent-1", nil)
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestRewardCodeRedemptionRace(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.MintRewardCode(ctx, &datatypes.RewardCode{
		ID: "rc-2", Code: "RACE-CODE", RewardID: "badge-race", MintedAt: time.Now().UTC(),
	}))

	const racers = 8
	var wins sync.Map
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := store.RedeemRewardCode(ctx, "RACE-CODE", "agent", nil); err == nil {
				wins.Store(n, true)
			}
		}(i)
	}
	wg.Wait()

	count := 0
	wins.Range(func(_, _ any) bool { count++; return true })
	assert.Equal(t, 1, count, "exactly one racer may redeem the code")
}

func TestProgressStoreContract(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("absent record loads as nil", func(t *testing.T) {
		progress, err := store.LoadProgress(ctx, "ch-1", "agent-1")
		require.NoError(t, err)
		assert.Nil(t, progress)
	})

	t.Run("round trip", func(t *testing.T) {
		saved := &cipher.AgentProgress{
			ChallengeID: "ch-1",
			AgentID:     "agent-1",
			Unlocked:    []string{"A1", "B2"},
			LastUpdated: time.Now().UTC().Truncate(time.Millisecond),
		}
		require.NoError(t, store.SaveProgress(ctx, saved))

		loaded, err := store.LoadProgress(ctx, "ch-1", "agent-1")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, saved.Unlocked, loaded.Unlocked)
		assert.True(t, saved.LastUpdated.Equal(loaded.LastUpdated))
	})

	t.Run("records are keyed per participant", func(t *testing.T) {
		progress, err := store.LoadProgress(ctx, "ch-1", "agent-2")
		require.NoError(t, err)
		assert.Nil(t, progress)
	})
}

func TestTimelineState(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	state, err := store.GetTimelineState(ctx, "ch-1", "agent-1")
	require.NoError(t, err)
	assert.Nil(t, state)

	require.NoError(t, store.PutTimelineState(ctx, &datatypes.TimelineState{
		ChallengeID: "ch-1",
		AgentID:     "agent-1",
		NodeID:      "node-dock",
		VisitedIDs:  []string{"node-start", "node-dock"},
		UpdatedAt:   time.Now().UTC(),
	}))

	state, err = store.GetTimelineState(ctx, "ch-1", "agent-1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "node-dock", state.NodeID)
}
