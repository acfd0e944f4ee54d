// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/outpost-collective/outpost/pkg/validation"
	"github.com/outpost-collective/outpost/services/membership/datatypes"
	"github.com/outpost-collective/outpost/services/membership/middleware"
	"github.com/outpost-collective/outpost/services/membership/observability"
	"github.com/outpost-collective/outpost/services/membership/storage"
)

type mintRewardRequest struct {
	Code     string `json:"code" binding:"required"`
	RewardID string `json:"rewardID" binding:"required"`
}

// MintRewardCode issues a single-use reward code. Admin only; enforced
// at the route.
func MintRewardCode(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mintRewardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "code and rewardID are required"})
			return
		}
		code, err := validation.SanitizeAccessCode(req.Code)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		reward := &datatypes.RewardCode{
			ID:       uuid.New().String(),
			Code:     code,
			RewardID: req.RewardID,
			MintedAt: time.Now().UTC(),
		}
		if err := store.MintRewardCode(c.Request.Context(), reward); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "code already minted"})
				return
			}
			slog.Error("failed to mint reward code", "rewardID", req.RewardID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mint reward code"})
			return
		}
		slog.Info("reward code minted", "rewardID", reward.RewardID)
		c.JSON(http.StatusCreated, reward)
	}
}

// ListRewardCodes returns all minted codes. Admin only; enforced at
// the route.
func ListRewardCodes(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		codes, err := store.ListRewardCodes(c.Request.Context())
		if err != nil {
			slog.Error("failed to list reward codes", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reward codes"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rewardCodes": codes})
	}
}

// GetRewardCode returns one minted code by its code string. Admin
// only; enforced at the route.
func GetRewardCode(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")
		reward, err := store.GetRewardCode(c.Request.Context(), code)
		if err != nil {
			if errors.Is(err, storage.ErrNoDocument) {
				c.JSON(http.StatusNotFound, gin.H{"error": "code not recognized"})
				return
			}
			slog.Error("failed to load reward code", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reward code"})
			return
		}
		c.JSON(http.StatusOK, reward)
	}
}

type redeemRewardRequest struct {
	Code string `json:"code" binding:"required"`
}

// RedeemRewardCode spends a reward code for the calling agent. The
// redemption is transactional: of two racing calls exactly one wins.
// Spent and unknown codes are reported distinctly, since the holder of
// a physical code deserves to know which happened.
func RedeemRewardCode(store *storage.Store, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.GetIdentity(c)
		if id == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		var req redeemRewardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
			return
		}
		code, err := validation.SanitizeAccessCode(req.Code)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		reward, err := store.RedeemRewardCode(c.Request.Context(), code, id.AgentID,
			func(doc *datatypes.RewardCode) {
				now := time.Now().UTC()
				doc.RedeemedAt = &now
			})
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrNoDocument):
				if metrics != nil {
					metrics.RecordRedemption("not_found")
				}
				c.JSON(http.StatusNotFound, gin.H{"error": "code not recognized"})
			case errors.Is(err, storage.ErrAlreadyRedeemed):
				if metrics != nil {
					metrics.RecordRedemption("already_redeemed")
				}
				c.JSON(http.StatusConflict, gin.H{"error": "code already redeemed"})
			default:
				slog.Error("failed to redeem reward code", "agentID", id.AgentID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to redeem code"})
			}
			return
		}
		if metrics != nil {
			metrics.RecordRedemption("redeemed")
		}
		slog.Info("reward code redeemed", "rewardID", reward.RewardID, "agentID", id.AgentID)
		c.JSON(http.StatusOK, reward)
	}
}
