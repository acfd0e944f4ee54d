// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRewards_MintRequiresAdmin(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodPost, "/v1/rewards/codes", agentToken,
		gin.H{"code": "OUTPOST-GOLD-7", "rewardID": "reward-patch"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestRewards_MintAndRedeem(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/rewards/codes", adminToken,
		gin.H{"code": "OUTPOST-GOLD-7", "rewardID": "reward-patch"})
	if w.Code != http.StatusCreated {
		t.Fatalf("mint: status = %d, body %s", w.Code, w.Body.String())
	}

	t.Run("duplicate mint conflicts", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/rewards/codes", adminToken,
			gin.H{"code": "OUTPOST-GOLD-7", "rewardID": "reward-other"})
		if w.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", w.Code)
		}
	})

	t.Run("codes list is admin only", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/v1/rewards/codes", agentToken, nil)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
		w = doJSON(t, router, http.MethodGet, "/v1/rewards/codes", adminToken, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		out := decodeBody(t, w)
		if len(out["rewardCodes"].([]any)) != 1 {
			t.Fatalf("expected 1 minted code: %v", out)
		}
	})

	t.Run("single code lookup", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/v1/rewards/codes/OUTPOST-GOLD-7", adminToken, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		out := decodeBody(t, w)
		if out["reward_id"] != "reward-patch" || out["redeemed"] != false {
			t.Errorf("unexpected code: %v", out)
		}
		w = doJSON(t, router, http.MethodGet, "/v1/rewards/codes/NOT-MINTED", adminToken, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("unknown code: status = %d, want 404", w.Code)
		}
	})

	t.Run("redeem", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/rewards/redeem", agentToken,
			gin.H{"code": "OUTPOST-GOLD-7"})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		out := decodeBody(t, w)
		if out["reward_id"] != "reward-patch" || out["redeemed"] != true {
			t.Errorf("unexpected redemption: %v", out)
		}
		if out["redeemed_by"] != "agent-7" || out["redeemed_at"] == nil {
			t.Errorf("redemption not stamped: %v", out)
		}
	})

	t.Run("second redemption conflicts", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/rewards/redeem", adminToken,
			gin.H{"code": "OUTPOST-GOLD-7"})
		if w.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", w.Code)
		}
	})

	t.Run("whitespace is trimmed before lookup", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/v1/rewards/redeem", adminToken,
			gin.H{"code": "  OUTPOST-GOLD-7  "})
		// Still the already-redeemed code, proving the trim matched it.
		if w.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", w.Code)
		}
	})
}

func TestRewards_RedeemUnknownCode(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodPost, "/v1/rewards/redeem", agentToken,
		gin.H{"code": "NEVER-MINTED"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
