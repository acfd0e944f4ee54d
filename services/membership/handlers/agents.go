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
	"github.com/outpost-collective/outpost/services/membership/storage"
)

type createAgentRequest struct {
	Handle      string `json:"handle" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
	Bio         string `json:"bio"`
	DivisionID  string `json:"divisionID"`
}

type updateAgentRequest struct {
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio"`
	DivisionID  *string `json:"divisionID"`
}

// CreateAgent registers a new agent profile. Handles are unique across
// the community.
func CreateAgent(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createAgentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "handle and displayName are required"})
			return
		}
		if err := validation.ValidateHandle(req.Handle); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()

		existing, err := store.FindAgentByHandle(ctx, req.Handle)
		if err != nil && !errors.Is(err, storage.ErrNoDocument) {
			slog.Error("failed to check handle uniqueness", "handle", req.Handle, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create agent"})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "handle already taken"})
			return
		}

		if req.DivisionID != "" {
			if _, err := store.GetDivision(ctx, req.DivisionID); err != nil {
				if errors.Is(err, storage.ErrNoDocument) {
					c.JSON(http.StatusBadRequest, gin.H{"error": "division does not exist"})
					return
				}
				slog.Error("failed to resolve division", "divisionID", req.DivisionID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create agent"})
				return
			}
		}

		now := time.Now().UTC()
		agent := &datatypes.AgentProfile{
			ID:          uuid.New().String(),
			Handle:      req.Handle,
			DisplayName: req.DisplayName,
			Bio:         req.Bio,
			DivisionID:  req.DivisionID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := store.PutAgent(ctx, agent); err != nil {
			slog.Error("failed to save agent", "agentID", agent.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create agent"})
			return
		}
		slog.Info("agent registered", "agentID", agent.ID, "handle", agent.Handle)
		c.JSON(http.StatusCreated, agent)
	}
}

// GetAgent returns one agent profile.
func GetAgent(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		agent, err := store.GetAgent(c.Request.Context(), c.Param("agentId"))
		if err != nil {
			if errors.Is(err, storage.ErrNoDocument) {
				c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
				return
			}
			slog.Error("failed to load agent", "agentID", c.Param("agentId"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load agent"})
			return
		}
		c.JSON(http.StatusOK, agent)
	}
}

// ListAgents returns all agent profiles.
func ListAgents(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		agents, err := store.ListAgents(c.Request.Context())
		if err != nil {
			slog.Error("failed to list agents", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list agents"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"agents": agents})
	}
}

// UpdateAgent edits the mutable fields of a profile. Agents edit their
// own profile; admins may edit anyone's.
func UpdateAgent(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		agentID := c.Param("agentId")
		id := middleware.GetIdentity(c)
		if id == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if id.AgentID != agentID && !id.HasRole("admin") {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot edit another agent's profile"})
			return
		}

		var req updateAgentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
			return
		}
		ctx := c.Request.Context()

		agent, err := store.GetAgent(ctx, agentID)
		if err != nil {
			if errors.Is(err, storage.ErrNoDocument) {
				c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
				return
			}
			slog.Error("failed to load agent", "agentID", agentID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update agent"})
			return
		}

		if req.DisplayName != nil {
			agent.DisplayName = *req.DisplayName
		}
		if req.Bio != nil {
			agent.Bio = *req.Bio
		}
		if req.DivisionID != nil {
			if *req.DivisionID != "" {
				if _, err := store.GetDivision(ctx, *req.DivisionID); err != nil {
					if errors.Is(err, storage.ErrNoDocument) {
						c.JSON(http.StatusBadRequest, gin.H{"error": "division does not exist"})
						return
					}
					slog.Error("failed to resolve division", "divisionID", *req.DivisionID, "error", err)
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update agent"})
					return
				}
			}
			agent.DivisionID = *req.DivisionID
		}
		agent.UpdatedAt = time.Now().UTC()

		if err := store.PutAgent(ctx, agent); err != nil {
			slog.Error("failed to save agent", "agentID", agentID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update agent"})
			return
		}
		c.JSON(http.StatusOK, agent)
	}
}

// DeleteAgent removes a profile. Admin only; enforced at the route.
func DeleteAgent(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		agentID := c.Param("agentId")
		if err := store.DeleteAgent(c.Request.Context(), agentID); err != nil {
			if errors.Is(err, storage.ErrNoDocument) {
				c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
				return
			}
			slog.Error("failed to delete agent", "agentID", agentID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete agent"})
			return
		}
		slog.Info("agent deleted", "agentID", agentID)
		c.JSON(http.StatusOK, gin.H{"status": "deleted", "agentID": agentID})
	}
}

type awardBadgeRequest struct {
	BadgeID string `json:"badgeID" binding:"required"`
}

// AwardBadge grants a badge to an agent. Granting a badge the agent
// already holds is a no-op. Admin only; enforced at the route.
func AwardBadge(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		agentID := c.Param("agentId")
		var req awardBadgeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "badgeID is required"})
			return
		}
		ctx := c.Request.Context()

		if _, err := store.GetBadge(ctx, req.BadgeID); err != nil {
			if errors.Is(err, storage.ErrNoDocument) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "badge does not exist"})
				return
			}
			slog.Error("failed to resolve badge", "badgeID", req.BadgeID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to award badge"})
			return
		}

		agent, err := store.GetAgent(ctx, agentID)
		if err != nil {
			if errors.Is(err, storage.ErrNoDocument) {
				c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
				return
			}
			slog.Error("failed to load agent", "agentID", agentID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to award badge"})
			return
		}

		if !agent.HasBadge(req.BadgeID) {
			agent.BadgeIDs = append(agent.BadgeIDs, req.BadgeID)
			agent.UpdatedAt = time.Now().UTC()
			if err := store.PutAgent(ctx, agent); err != nil {
				slog.Error("failed to save agent", "agentID", agentID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to award badge"})
				return
			}
			slog.Info("badge awarded", "agentID", agentID, "badgeID", req.BadgeID)
		}
		c.JSON(http.StatusOK, agent)
	}
}
