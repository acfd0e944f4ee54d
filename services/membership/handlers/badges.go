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

type createBadgeRequest struct {
	Slug        string `json:"slug" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IconURL     string `json:"iconURL"`
	Tier        string `json:"tier"`
}

// CreateBadge registers a badge definition. Admin only; enforced at
// the route.
func CreateBadge(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createBadgeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slug and name are required"})
			return
		}
		if err := validation.ValidateSlug(req.Slug); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		badge := &datatypes.Badge{
			ID:          uuid.New().String(),
			Slug:        req.Slug,
			Name:        req.Name,
			Description: req.Description,
			IconURL:     req.IconURL,
			Tier:        req.Tier,
			CreatedAt:   time.Now().UTC(),
		}
		if err := store.PutBadge(c.Request.Context(), badge); err != nil {
			slog.Error("failed to save badge", "slug", req.Slug, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create badge"})
			return
		}
		slog.Info("badge created", "badgeID", badge.ID, "slug", badge.Slug)
		c.JSON(http.StatusCreated, badge)
	}
}

// GetBadge returns one badge definition.
func GetBadge(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		badge, err := store.GetBadge(c.Request.Context(), c.Param("badgeId"))
		if err != nil {
			if errors.Is(err, storage.ErrNoDocument) {
				c.JSON(http.StatusNotFound, gin.H{"error": "badge not found"})
				return
			}
			slog.Error("failed to load badge", "badgeID", c.Param("badgeId"), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load badge"})
			return
		}
		c.JSON(http.StatusOK, badge)
	}
}

// ListBadges returns all badge definitions.
func ListBadges(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		badges, err := store.ListBadges(c.Request.Context())
		if err != nil {
			slog.Error("failed to list badges", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list badges"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"badges": badges})
	}
}

// DeleteBadge removes a badge definition. Profiles keep any references
// they hold; display layers resolve missing badges as retired.
func DeleteBadge(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		badgeID := c.Param("badgeId")
		if err := store.DeleteBadge(c.Request.Context(), badgeID); err != nil {
			if errors.Is(err, storage.ErrNoDocument) {
				c.JSON(http.StatusNotFound, gin.H{"error": "badge not found"})
				return
			}
			slog.Error("failed to delete badge", "badgeID", badgeID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete badge"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted", "badgeID": badgeID})
	}
}
