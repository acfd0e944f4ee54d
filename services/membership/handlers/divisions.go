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
	"github.com/outpost-collective/outpost/services/membership/storage"
)

type createDivisionRequest struct {
	Slug        string `json:"slug" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Motto       string `json:"motto"`
	LeadAgentID string `json:"leadAgentID"`
}

// CreateDivision registers a division. Admin only; enforced at the
// route.
func CreateDivision(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createDivisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slug and name are required"})
			return
		}
		if err := validation.ValidateSlug(req.Slug); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()

		if req.LeadAgentID != "" {
			if _, err := store.GetAgent(ctx, req.LeadAgentID); err != nil {
				if errors.Is(err, storage.ErrNoDocument) {
					c.JSON(http.StatusBadRequest, gin.H{"error": "lead agent does not exist"})
					return
				}
				slog.Error("failed to resolve lead agent", "agentID", req.LeadAgentID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create division"})
				return
			}
		}

		division := &datatypes.Division{
			ID:          uuid.New().String(),
			Slug:        req.Slug,
			Name:        req.Name,
			Motto:       req.Motto,
			LeadAgentID: req.LeadAgentID,
			CreatedAt:   time.Now().UTC(),
		}
		if err := store.PutDivision(ctx, division); err != nil {
			slog.Error("failed to save division", "slug", req.Slug, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create division"})
			return
		}
		slog.Info("division created", "divisionID", division.ID, "slug", division.Slug)
		c.JSON(http.StatusCreated, division)
	}
}

// GetDivision returns one division.
func GetDivision(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		division, err := store.GetDivision(c.Request.Context(), c.Param("divisionId"))
		if err != nil {
			if errors.Is(err, storage.ErrNoDocument) {
				c.JSON(http.StatusNotFound, gin.H{"error": "division not found"})
				return
			}
			slog.Error("failed to load division", "divisionID", c.Param("divisionId"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load division"})
			return
		}
		c.JSON(http.StatusOK, division)
	}
}

// ListDivisions returns all divisions.
func ListDivisions(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		divisions, err := store.ListDivisions(c.Request.Context())
		if err != nil {
			slog.Error("failed to list divisions", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list divisions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"divisions": divisions})
	}
}

// DeleteDivision removes a division. Member profiles keep their
// division reference; display layers resolve missing divisions as
// disbanded.
func DeleteDivision(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		divisionID := c.Param("divisionId")
		if err := store.DeleteDivision(c.Request.Context(), divisionID); err != nil {
			if errors.Is(err, storage.ErrNoDocument) {
				c.JSON(http.StatusNotFound, gin.H{"error": "division not found"})
				return
			}
			slog.Error("failed to delete division", "divisionID", divisionID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete division"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted", "divisionID": divisionID})
	}
}
