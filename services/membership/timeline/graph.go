// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package timeline walks a challenge's dialogue graph. A timeline is a
// set of nodes with choices; picking a choice can grant code fragments,
// routed through the same tracker as the challenge gate. The timeline
// carries no code-splitting logic of its own.
package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/outpost-collective/outpost/services/membership/cipher"
	"github.com/outpost-collective/outpost/services/membership/datatypes"
)

// StartNodeID is where every participant's walk begins.
const StartNodeID = "start"

// Graph is an immutable, validated dialogue graph.
type Graph struct {
	nodes map[string]*datatypes.TimelineNode
}

// NewGraph indexes and validates a node list: a start node must exist,
// node ids must be unique, and every choice must point at a known node.
func NewGraph(nodes []datatypes.TimelineNode) (*Graph, error) {
	indexed := make(map[string]*datatypes.TimelineNode, len(nodes))
	for i := range nodes {
		node := &nodes[i]
		if node.ID == "" {
			return nil, fmt.Errorf("timeline node %d has no id", i)
		}
		if _, dup := indexed[node.ID]; dup {
			return nil, fmt.Errorf("duplicate timeline node id %q", node.ID)
		}
		indexed[node.ID] = node
	}
	if _, ok := indexed[StartNodeID]; !ok {
		return nil, fmt.Errorf("timeline has no %q node", StartNodeID)
	}
	for _, node := range indexed {
		for i, choice := range node.Choices {
			if _, ok := indexed[choice.Next]; !ok {
				return nil, fmt.Errorf("node %s choice %d points at unknown node %q",
					node.ID, i, choice.Next)
			}
		}
	}
	return &Graph{nodes: indexed}, nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*datatypes.TimelineNode, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// Len returns the node count.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// StateStore persists a participant's position in a timeline.
// GetTimelineState returns (nil, nil) for a participant who has not
// started yet.
type StateStore interface {
	GetTimelineState(ctx context.Context, challengeID, agentID string) (*datatypes.TimelineState, error)
	PutTimelineState(ctx context.Context, state *datatypes.TimelineState) error
}

// Walker advances participants through a challenge's timeline and
// applies fragment grants through the challenge tracker.
type Walker struct {
	states  StateStore
	tracker *cipher.Tracker
	logger  *slog.Logger
	now     func() time.Time
}

// NewWalker creates a Walker. A nil logger falls back to slog.Default.
func NewWalker(states StateStore, tracker *cipher.Tracker, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{states: states, tracker: tracker, logger: logger, now: time.Now}
}

// Current returns the participant's current node, synthesizing a
// position at the start node for first-time visitors without writing
// anything.
func (w *Walker) Current(ctx context.Context, g *Graph, challengeID, agentID string) (*datatypes.TimelineNode, error) {
	state, err := w.states.GetTimelineState(ctx, challengeID, agentID)
	if err != nil {
		return nil, fmt.Errorf("load timeline state: %w", err)
	}
	nodeID := StartNodeID
	if state != nil {
		nodeID = state.NodeID
	}
	node, ok := g.Node(nodeID)
	if !ok {
		// The stored position predates a timeline edit; restart.
		node, _ = g.Node(StartNodeID)
	}
	return node, nil
}

// Choose applies choice choiceIndex at the participant's current node:
// grants the choice's fragments (if any) through the tracker, persists
// the new position, and returns the next node. An out-of-range index
// reports cipher.ErrNotFound.
func (w *Walker) Choose(ctx context.Context, ch *cipher.Challenge, g *Graph, agentID string, choiceIndex int) (*datatypes.TimelineNode, *cipher.AgentProgress, error) {
	node, err := w.Current(ctx, g, ch.ID, agentID)
	if err != nil {
		return nil, nil, err
	}
	if choiceIndex < 0 || choiceIndex >= len(node.Choices) {
		return nil, nil, cipher.ErrNotFound
	}
	choice := node.Choices[choiceIndex]

	var progress *cipher.AgentProgress
	if len(choice.GrantFragments) > 0 {
		progress, _, err = w.tracker.Unlock(ctx, ch, agentID, choice.GrantFragments)
		if err != nil {
			return nil, nil, err
		}
	}

	next, _ := g.Node(choice.Next)
	state, err := w.states.GetTimelineState(ctx, ch.ID, agentID)
	if err != nil {
		return nil, nil, fmt.Errorf("load timeline state: %w", err)
	}
	if state == nil {
		state = &datatypes.TimelineState{ChallengeID: ch.ID, AgentID: agentID}
	}
	state.NodeID = next.ID
	state.VisitedIDs = appendVisited(state.VisitedIDs, next.ID)
	state.UpdatedAt = w.now()
	if err := w.states.PutTimelineState(ctx, state); err != nil {
		return nil, nil, fmt.Errorf("save timeline state: %w", err)
	}

	w.logger.Info("timeline advanced",
		"challenge_id", ch.ID,
		"node_id", next.ID,
		"granted_fragments", len(choice.GrantFragments))
	return next, progress, nil
}

func appendVisited(visited []string, id string) []string {
	for _, got := range visited {
		if got == id {
			return visited
		}
	}
	return append(visited, id)
}
