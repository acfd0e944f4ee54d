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

	"github.com/outpost-collective/outpost/services/membership/datatypes"
	"github.com/outpost-collective/outpost/services/membership/middleware"
	"github.com/outpost-collective/outpost/services/membership/storage"
)

type createContractRequest struct {
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body"`
	RewardID string `json:"rewardID"`
}

// CreateContract posts a new open contract. Admin only; enforced at
// the route.
func CreateContract(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createContractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		contract := &datatypes.Contract{
			ID:       uuid.New().String(),
			Title:    req.Title,
			Body:     req.Body,
			Status:   datatypes.ContractOpen,
			RewardID: req.RewardID,
			IssuedAt: time.Now().UTC(),
		}
		if err := store.PutContract(c.Request.Context(), contract); err != nil {
			slog.Error("failed to save contract", "title", req.Title, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create contract"})
			return
		}
		slog.Info("contract posted", "contractID", contract.ID, "title", contract.Title)
		c.JSON(http.StatusCreated, contract)
	}
}

// GetContract returns one contract.
func GetContract(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		contract, err := store.GetContract(c.Request.Context(), c.Param("contractId"))
		if err != nil {
			if errors.Is(err, storage.ErrNoDocument) {
				c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
				return
			}
			slog.Error("failed to load contract", "contractID", c.Param("contractId"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contract"})
			return
		}
		c.JSON(http.StatusOK, contract)
	}
}

// ListContracts returns all contracts, optionally filtered by the
// "status" query parameter.
func ListContracts(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		contracts, err := store.ListContracts(c.Request.Context())
		if err != nil {
			slog.Error("failed to list contracts", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list contracts"})
			return
		}
		if status := c.Query("status"); status != "" {
			filtered := contracts[:0]
			for _, contract := range contracts {
				if contract.Status == status {
					filtered = append(filtered, contract)
				}
			}
			contracts = filtered
		}
		if contracts == nil {
			contracts = []*datatypes.Contract{}
		}
		c.JSON(http.StatusOK, gin.H{"contracts": contracts})
	}
}

// AcceptContract claims an open contract for the calling agent.
func AcceptContract(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.GetIdentity(c)
		if id == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		contractID := c.Param("contractId")
		ctx := c.Request.Context()

		contract, err := store.GetContract(ctx, contractID)
		if err != nil {
			if errors.Is(err, storage.ErrNoDocument) {
				c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
				return
			}
			slog.Error("failed to load contract", "contractID", contractID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept contract"})
			return
		}
		if contract.Status != datatypes.ContractOpen {
			c.JSON(http.StatusConflict, gin.H{"error": "contract is not open"})
			return
		}

		contract.Status = datatypes.ContractAccepted
		contract.AgentID = id.AgentID
		if err := store.PutContract(ctx, contract); err != nil {
			slog.Error("failed to save contract", "contractID", contractID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept contract"})
			return
		}
		slog.Info("contract accepted", "contractID", contractID, "agentID", id.AgentID)
		c.JSON(http.StatusOK, contract)
	}
}

// CompleteContract marks an accepted contract completed. Only the
// accepting agent or an admin may complete it.
func CompleteContract(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.GetIdentity(c)
		if id == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		contractID := c.Param("contractId")
		ctx := c.Request.Context()

		contract, err := store.GetContract(ctx, contractID)
		if err != nil {
			if errors.Is(err, storage.ErrNoDocument) {
				c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
				return
			}
			slog.Error("failed to load contract", "contractID", contractID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete contract"})
			return
		}
		if contract.Status != datatypes.ContractAccepted {
			c.JSON(http.StatusConflict, gin.H{"error": "contract is not accepted"})
			return
		}
		if contract.AgentID != id.AgentID && !id.HasRole("admin") {
			c.JSON(http.StatusForbidden, gin.H{"error": "contract belongs to another agent"})
			return
		}

		now := time.Now().UTC()
		contract.Status = datatypes.ContractCompleted
		contract.CompletedAt = &now
		if err := store.PutContract(ctx, contract); err != nil {
			slog.Error("failed to save contract", "contractID", contractID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete contract"})
			return
		}
		slog.Info("contract completed", "contractID", contractID, "agentID", contract.AgentID)
		c.JSON(http.StatusOK, contract)
	}
}

// WithdrawContract retires a contract before completion. Admin only;
// enforced at the route.
func WithdrawContract(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		contractID := c.Param("contractId")
		ctx := c.Request.Context()

		contract, err := store.GetContract(ctx, contractID)
		if err != nil {
			if errors.Is(err, storage.ErrNoDocument) {
				c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
				return
			}
			slog.Error("failed to load contract", "contractID", contractID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to withdraw contract"})
			return
		}
		if contract.Status == datatypes.ContractCompleted {
			c.JSON(http.StatusConflict, gin.H{"error": "completed contracts cannot be withdrawn"})
			return
		}

		contract.Status = datatypes.ContractWithdrawn
		if err := store.PutContract(ctx, contract); err != nil {
			slog.Error("failed to save contract", "contractID", contractID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to withdraw contract"})
			return
		}
		slog.Info("contract withdrawn", "contractID", contractID)
		c.JSON(http.StatusOK, contract)
	}
}

// DeleteContract removes a contract document entirely. Withdrawn and
// completed contracts normally stay on record; hard deletion is for
// contracts issued by mistake. Admin only; enforced at the route.
func DeleteContract(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		contractID := c.Param("contractId")

		if err := store.DeleteContract(c.Request.Context(), contractID); err != nil {
			if errors.Is(err, storage.ErrNoDocument) {
				c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
				return
			}
			slog.Error("failed to delete contract", "contractID", contractID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete contract"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted", "contractID": contractID})
	}
}
