// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/outpost-collective/outpost/services/membership/cipher"
	"github.com/outpost-collective/outpost/services/membership/datatypes"
)

// Key prefixes, one per collection.
const (
	prefixAgent    = "agent/"
	prefixBadge    = "badge/"
	prefixDivision = "division/"
	prefixContract = "contract/"
	prefixReward   = "rewardcode/"
	prefixProgress = "progress/"
	prefixTimeline = "timeline/"
)

var (
	// ErrNoDocument is returned when a key has no stored document.
	ErrNoDocument = errors.New("document not found")

	// ErrAlreadyRedeemed is returned when a reward code was spent before.
	ErrAlreadyRedeemed = errors.New("reward code already redeemed")

	// ErrDuplicate is returned when creating a document whose key exists.
	ErrDuplicate = errors.New("document already exists")
)

// Store provides typed access to the platform's document collections.
type Store struct {
	db *DB
}

// NewStore wraps an open database.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// =============================================================================
// Generic JSON document plumbing
// =============================================================================

func putJSON(txn *badger.Txn, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set([]byte(key), raw)
}

func getJSON[T any](txn *badger.Txn, key string) (*T, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	var doc T
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &doc)
	}); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &doc, nil
}

func get[T any](ctx context.Context, db *DB, key string) (*T, error) {
	var doc *T
	err := db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		var err error
		doc, err = getJSON[T](txn, key)
		return err
	})
	return doc, err
}

func put(ctx context.Context, db *DB, key string, v any) error {
	return db.WithTxn(ctx, func(txn *badger.Txn) error {
		return putJSON(txn, key, v)
	})
}

func del(ctx context.Context, db *DB, key string) error {
	return db.WithTxn(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoDocument
		}
		return txn.Delete([]byte(key))
	})
}

func list[T any](ctx context.Context, db *DB, prefix string) ([]*T, error) {
	var docs []*T
	err := db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var doc T
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			docs = append(docs, &doc)
		}
		return nil
	})
	return docs, err
}

// =============================================================================
// Agents
// =============================================================================

func (s *Store) PutAgent(ctx context.Context, agent *datatypes.AgentProfile) error {
	return put(ctx, s.db, prefixAgent+agent.ID, agent)
}

func (s *Store) GetAgent(ctx context.Context, id string) (*datatypes.AgentProfile, error) {
	return get[datatypes.AgentProfile](ctx, s.db, prefixAgent+id)
}

func (s *Store) ListAgents(ctx context.Context) ([]*datatypes.AgentProfile, error) {
	return list[datatypes.AgentProfile](ctx, s.db, prefixAgent)
}

func (s *Store) DeleteAgent(ctx context.Context, id string) error {
	return del(ctx, s.db, prefixAgent+id)
}

// FindAgentByHandle scans the agent collection for a handle match.
// Handles are unique by construction (CreateAgent rejects duplicates).
func (s *Store) FindAgentByHandle(ctx context.Context, handle string) (*datatypes.AgentProfile, error) {
	agents, err := s.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	for _, agent := range agents {
		if agent.Handle == handle {
			return agent, nil
		}
	}
	return nil, ErrNoDocument
}

// =============================================================================
// Badges and divisions
// =============================================================================

func (s *Store) PutBadge(ctx context.Context, badge *datatypes.Badge) error {
	return put(ctx, s.db, prefixBadge+badge.ID, badge)
}

func (s *Store) GetBadge(ctx context.Context, id string) (*datatypes.Badge, error) {
	return get[datatypes.Badge](ctx, s.db, prefixBadge+id)
}

func (s *Store) ListBadges(ctx context.Context) ([]*datatypes.Badge, error) {
	return list[datatypes.Badge](ctx, s.db, prefixBadge)
}

func (s *Store) DeleteBadge(ctx context.Context, id string) error {
	return del(ctx, s.db, prefixBadge+id)
}

func (s *Store) PutDivision(ctx context.Context, division *datatypes.Division) error {
	return put(ctx, s.db, prefixDivision+division.ID, division)
}

func (s *Store) GetDivision(ctx context.Context, id string) (*datatypes.Division, error) {
	return get[datatypes.Division](ctx, s.db, prefixDivision+id)
}

func (s *Store) ListDivisions(ctx context.Context) ([]*datatypes.Division, error) {
	return list[datatypes.Division](ctx, s.db, prefixDivision)
}

func (s *Store) DeleteDivision(ctx context.Context, id string) error {
	return del(ctx, s.db, prefixDivision+id)
}

// =============================================================================
// Contracts
// =============================================================================

func (s *Store) PutContract(ctx context.Context, contract *datatypes.Contract) error {
	return put(ctx, s.db, prefixContract+contract.ID, contract)
}

func (s *Store) GetContract(ctx context.Context, id string) (*datatypes.Contract, error) {
	return get[datatypes.Contract](ctx, s.db, prefixContract+id)
}

func (s *Store) ListContracts(ctx context.Context) ([]*datatypes.Contract, error) {
	return list[datatypes.Contract](ctx, s.db, prefixContract)
}

func (s *Store) DeleteContract(ctx context.Context, id string) error {
	return del(ctx, s.db, prefixContract+id)
}

// =============================================================================
// Reward codes
// =============================================================================

// MintRewardCode stores a fresh code, rejecting duplicates.
func (s *Store) MintRewardCode(ctx context.Context, code *datatypes.RewardCode) error {
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		key := prefixReward + code.Code
		if _, err := txn.Get([]byte(key)); err == nil {
			return ErrDuplicate
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return putJSON(txn, key, code)
	})
}

func (s *Store) GetRewardCode(ctx context.Context, code string) (*datatypes.RewardCode, error) {
	return get[datatypes.RewardCode](ctx, s.db, prefixReward+code)
}

func (s *Store) ListRewardCodes(ctx context.Context) ([]*datatypes.RewardCode, error) {
	return list[datatypes.RewardCode](ctx, s.db, prefixReward)
}

// RedeemRewardCode marks a code as spent by agentID inside one
// transaction, so two racing redemptions cannot both win. The mutate
// callback stamps the redemption time.
func (s *Store) RedeemRewardCode(ctx context.Context, code, agentID string, mutate func(*datatypes.RewardCode)) (*datatypes.RewardCode, error) {
	var redeemed *datatypes.RewardCode
	err := s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		key := prefixReward + code
		doc, err := getJSON[datatypes.RewardCode](txn, key)
		if err != nil {
			return err
		}
		if doc.Redeemed {
			return ErrAlreadyRedeemed
		}
		doc.Redeemed = true
		doc.RedeemedBy = agentID
		if mutate != nil {
			mutate(doc)
		}
		if err := putJSON(txn, key, doc); err != nil {
			return err
		}
		redeemed = doc
		return nil
	})
	return redeemed, err
}

// =============================================================================
// Challenge progress (cipher.ProgressStore)
// =============================================================================

func progressKey(challengeID, agentID string) string {
	return prefixProgress + challengeID + "/" + agentID
}

// LoadProgress returns the stored unlock record, or (nil, nil) when no
// record exists yet. Infrastructure failures are wrapped in
// cipher.ErrStorageUnavailable.
func (s *Store) LoadProgress(ctx context.Context, challengeID, agentID string) (*cipher.AgentProgress, error) {
	progress, err := get[cipher.AgentProgress](ctx, s.db, progressKey(challengeID, agentID))
	if errors.Is(err, ErrNoDocument) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cipher.ErrStorageUnavailable, err)
	}
	return progress, nil
}

// SaveProgress writes the whole record in one transaction; badger
// either commits it or leaves the prior version untouched.
func (s *Store) SaveProgress(ctx context.Context, progress *cipher.AgentProgress) error {
	key := progressKey(progress.ChallengeID, progress.AgentID)
	if err := put(ctx, s.db, key, progress); err != nil {
		return fmt.Errorf("%w: %w", cipher.ErrStorageUnavailable, err)
	}
	return nil
}

var _ cipher.ProgressStore = (*Store)(nil)

// =============================================================================
// Timeline state
// =============================================================================

func timelineKey(challengeID, agentID string) string {
	return prefixTimeline + challengeID + "/" + agentID
}

// GetTimelineState returns (nil, nil) when the participant has not
// started the timeline yet.
func (s *Store) GetTimelineState(ctx context.Context, challengeID, agentID string) (*datatypes.TimelineState, error) {
	state, err := get[datatypes.TimelineState](ctx, s.db, timelineKey(challengeID, agentID))
	if errors.Is(err, ErrNoDocument) {
		return nil, nil
	}
	return state, err
}

func (s *Store) PutTimelineState(ctx context.Context, state *datatypes.TimelineState) error {
	return put(ctx, s.db, timelineKey(state.ChallengeID, state.AgentID), state)
}
