// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cipher

import (
	"context"
	"log/slog"
)

// SubmitResult is the outcome of one answer submission. Wrong answers
// are a negative result, not an error: Correct is false and the
// participant's state is untouched. Retries are unlimited.
type SubmitResult struct {
	Correct  bool     `json:"correct"`
	Unlocked []string `json:"unlocked_fragments"`
	Complete bool     `json:"complete"`
	Percent  int      `json:"completion_percent"`
	RewardID string   `json:"reward_id,omitempty"`

	// NewlyUnlocked counts fragments this submission opened. Zero on a
	// resubmission of an already-solved sub-challenge.
	NewlyUnlocked int `json:"newly_unlocked"`
}

// Gate runs the access-code-gated sub-challenge workflow: an access
// code opens a sub-challenge's prompts, a matching answer unlocks its
// declared fragments through the Tracker.
type Gate struct {
	tracker *Tracker
	logger  *slog.Logger
}

// NewGate creates a Gate. A nil logger falls back to slog.Default.
func NewGate(tracker *Tracker, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{tracker: tracker, logger: logger}
}

// EnterByAccessCode resolves an access code to its sub-challenge by
// case-sensitive linear search over the challenge's active entries.
//
// Returns ErrEmptyCode for an empty code and ErrNotFound when nothing
// matches; inactive matches also report ErrNotFound so observers
// cannot tell valid-but-disabled codes from nonexistent ones. No state
// transition happens here; prompts may be viewed repeatedly.
func (g *Gate) EnterByAccessCode(ch *Challenge, accessCode string) (*SubChallenge, error) {
	if accessCode == "" {
		return nil, ErrEmptyCode
	}
	for i := range ch.SubChallenges {
		sub := &ch.SubChallenges[i]
		if sub.Active && sub.AccessCode == accessCode {
			return sub, nil
		}
	}
	return nil, ErrNotFound
}

// SubmitAnswer checks a proposed answer against a sub-challenge's
// expected output and, on a match, unlocks its declared fragments for
// the participant.
//
// The comparison is an exact string match; case is a property of the
// authored expected output and is never normalized. Resubmitting a
// correct answer after the fragments are already open is a no-op and
// still reports Correct with the unchanged set. Unknown or inactive
// sub-challenge identifiers return ErrNotFound.
func (g *Gate) SubmitAnswer(ctx context.Context, ch *Challenge, subChallengeID, answer, agentID string) (SubmitResult, error) {
	sub := findActive(ch, subChallengeID)
	if sub == nil {
		return SubmitResult{}, ErrNotFound
	}

	if answer != sub.ExpectedOutput {
		progress, err := g.tracker.Get(ctx, ch, agentID)
		if err != nil {
			return SubmitResult{}, err
		}
		return SubmitResult{
			Correct:  false,
			Unlocked: progress.Unlocked,
			Complete: progress.Complete,
			Percent:  Percentage(progress.Unlocked, ch.Format),
		}, nil
	}

	progress, opened, err := g.tracker.Unlock(ctx, ch, agentID, sub.FragmentIDs)
	if err != nil {
		return SubmitResult{}, err
	}
	g.logger.Info("sub-challenge solved",
		"challenge_id", ch.ID,
		"sub_challenge_id", sub.ID,
		"unlocked", len(progress.Unlocked),
		"complete", progress.Complete)

	return SubmitResult{
		Correct:       true,
		Unlocked:      progress.Unlocked,
		Complete:      progress.Complete,
		Percent:       Percentage(progress.Unlocked, ch.Format),
		RewardID:      sub.RewardID,
		NewlyUnlocked: opened,
	}, nil
}

func findActive(ch *Challenge, subChallengeID string) *SubChallenge {
	for i := range ch.SubChallenges {
		sub := &ch.SubChallenges[i]
		if sub.Active && sub.ID == subChallengeID {
			return sub
		}
	}
	return nil
}
