// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package timeline

import (
	"context"
	"errors"
	"testing"

	"github.com/outpost-collective/outpost/services/membership/cipher"
	"github.com/outpost-collective/outpost/services/membership/datatypes"
)

// memStates is an in-memory StateStore.
type memStates struct {
	states map[string]*datatypes.TimelineState
}

func newMemStates() *memStates {
	return &memStates{states: make(map[string]*datatypes.TimelineState)}
}

func (s *memStates) GetTimelineState(_ context.Context, challengeID, agentID string) (*datatypes.TimelineState, error) {
	state, ok := s.states[challengeID+"/"+agentID]
	if !ok {
		return nil, nil
	}
	clone := *state
	return &clone, nil
}

func (s *memStates) PutTimelineState(_ context.Context, state *datatypes.TimelineState) error {
	clone := *state
	s.states[state.ChallengeID+"/"+state.AgentID] = &clone
	return nil
}

// memProgress is an in-memory cipher.ProgressStore.
type memProgress struct {
	records map[string]*cipher.AgentProgress
}

func newMemProgress() *memProgress {
	return &memProgress{records: make(map[string]*cipher.AgentProgress)}
}

func (s *memProgress) LoadProgress(_ context.Context, challengeID, agentID string) (*cipher.AgentProgress, error) {
	record, ok := s.records[challengeID+"/"+agentID]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (s *memProgress) SaveProgress(_ context.Context, progress *cipher.AgentProgress) error {
	clone := *progress
	s.records[progress.ChallengeID+"/"+progress.AgentID] = &clone
	return nil
}

func testNodes() []datatypes.TimelineNode {
	return []datatypes.TimelineNode{
		{
			ID:    "start",
			Lines: []string{"A courier hands you a sealed envelope."},
			Choices: []datatypes.TimelineChoice{
				{Label: "Open it", Next: "opened", GrantFragments: []string{"A1"}},
				{Label: "Walk away", Next: "refused"},
			},
		},
		{ID: "opened", Lines: []string{"Inside: a strip of paper with one letter."}},
		{ID: "refused", Lines: []string{"The courier vanishes into the crowd."}},
	}
}

func testChallenge() *cipher.Challenge {
	return &cipher.Challenge{
		ID:         "ch-courier",
		TargetCode: "ABC-DEF-GHI",
		Format:     cipher.Format{Segments: 3, Alphabet: cipher.AlphabetLetters},
	}
}

func TestNewGraph(t *testing.T) {
	t.Run("valid graph", func(t *testing.T) {
		g, err := NewGraph(testNodes())
		if err != nil {
			t.Fatalf("NewGraph failed: %v", err)
		}
		if g.Len() != 3 {
			t.Errorf("Len = %d, want 3", g.Len())
		}
	})

	t.Run("missing start node", func(t *testing.T) {
		if _, err := NewGraph([]datatypes.TimelineNode{{ID: "middle"}}); err == nil {
			t.Error("graph without start node accepted")
		}
	})

	t.Run("dangling choice target", func(t *testing.T) {
		nodes := []datatypes.TimelineNode{{
			ID:      "start",
			Choices: []datatypes.TimelineChoice{{Label: "Go", Next: "nowhere"}},
		}}
		if _, err := NewGraph(nodes); err == nil {
			t.Error("dangling choice accepted")
		}
	})

	t.Run("duplicate node id", func(t *testing.T) {
		nodes := []datatypes.TimelineNode{{ID: "start"}, {ID: "start"}}
		if _, err := NewGraph(nodes); err == nil {
			t.Error("duplicate node id accepted")
		}
	})
}

func TestWalker(t *testing.T) {
	ctx := context.Background()

	t.Run("first visit lands on start without persisting", func(t *testing.T) {
		states := newMemStates()
		walker := NewWalker(states, cipher.NewTracker(newMemProgress()), nil)
		g, _ := NewGraph(testNodes())

		node, err := walker.Current(ctx, g, "ch-courier", "agent-1")
		if err != nil {
			t.Fatalf("Current failed: %v", err)
		}
		if node.ID != "start" {
			t.Errorf("first node = %q, want start", node.ID)
		}
		if len(states.states) != 0 {
			t.Error("viewing the timeline must not write state")
		}
	})

	t.Run("choice advances and grants fragments", func(t *testing.T) {
		states := newMemStates()
		progressStore := newMemProgress()
		tracker := cipher.NewTracker(progressStore)
		walker := NewWalker(states, tracker, nil)
		g, _ := NewGraph(testNodes())
		ch := testChallenge()

		next, progress, err := walker.Choose(ctx, ch, g, "agent-1", 0)
		if err != nil {
			t.Fatalf("Choose failed: %v", err)
		}
		if next.ID != "opened" {
			t.Errorf("advanced to %q, want opened", next.ID)
		}
		if progress == nil || len(progress.Unlocked) != 1 || progress.Unlocked[0] != "A1" {
			t.Errorf("choice should grant A1, got %+v", progress)
		}

		node, err := walker.Current(ctx, g, ch.ID, "agent-1")
		if err != nil {
			t.Fatalf("Current failed: %v", err)
		}
		if node.ID != "opened" {
			t.Errorf("persisted position = %q, want opened", node.ID)
		}
	})

	t.Run("choice without grants leaves progress alone", func(t *testing.T) {
		progressStore := newMemProgress()
		walker := NewWalker(newMemStates(), cipher.NewTracker(progressStore), nil)
		g, _ := NewGraph(testNodes())

		next, progress, err := walker.Choose(ctx, testChallenge(), g, "agent-1", 1)
		if err != nil {
			t.Fatalf("Choose failed: %v", err)
		}
		if next.ID != "refused" {
			t.Errorf("advanced to %q, want refused", next.ID)
		}
		if progress != nil {
			t.Errorf("no-grant choice returned progress %+v", progress)
		}
		if len(progressStore.records) != 0 {
			t.Error("no-grant choice wrote a progress record")
		}
	})

	t.Run("out of range choice", func(t *testing.T) {
		walker := NewWalker(newMemStates(), cipher.NewTracker(newMemProgress()), nil)
		g, _ := NewGraph(testNodes())
		if _, _, err := walker.Choose(ctx, testChallenge(), g, "agent-1", 5); !errors.Is(err, cipher.ErrNotFound) {
			t.Errorf("expected cipher.ErrNotFound, got %v", err)
		}
	})

	t.Run("terminal node has no choices", func(t *testing.T) {
		states := newMemStates()
		walker := NewWalker(states, cipher.NewTracker(newMemProgress()), nil)
		g, _ := NewGraph(testNodes())
		ch := testChallenge()

		if _, _, err := walker.Choose(ctx, ch, g, "agent-1", 0); err != nil {
			t.Fatalf("Choose failed: %v", err)
		}
		if _, _, err := walker.Choose(ctx, ch, g, "agent-1", 0); !errors.Is(err, cipher.ErrNotFound) {
			t.Errorf("choosing at a terminal node should report not found, got %v", err)
		}
	})
}
