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

	"github.com/gin-gonic/gin"

	"github.com/outpost-collective/outpost/services/membership/catalog"
	"github.com/outpost-collective/outpost/services/membership/cipher"
	"github.com/outpost-collective/outpost/services/membership/datatypes"
	"github.com/outpost-collective/outpost/services/membership/timeline"
)

// timelineNodeView is the public shape of a timeline node. Choice
// targets and fragment grants stay hidden; the point of the walk is
// discovering where a choice leads.
type timelineNodeView struct {
	ID       string   `json:"id"`
	Lines    []string `json:"lines"`
	Choices  []string `json:"choices"`
	Terminal bool     `json:"terminal"`
}

func toTimelineNodeView(node *datatypes.TimelineNode) timelineNodeView {
	labels := make([]string, 0, len(node.Choices))
	for _, choice := range node.Choices {
		labels = append(labels, choice.Label)
	}
	return timelineNodeView{
		ID:       node.ID,
		Lines:    node.Lines,
		Choices:  labels,
		Terminal: len(node.Choices) == 0,
	}
}

// GetTimelineNode returns the caller's current position in a
// challenge's timeline. First-time visitors see the start node without
// anything being written.
func GetTimelineNode(cat *catalog.Catalog, walker *timeline.Walker) gin.HandlerFunc {
	return func(c *gin.Context) {
		def, ok := cat.Get(c.Param("challengeId"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "challenge not found"})
			return
		}
		graph := def.Graph()
		if graph == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "challenge has no timeline"})
			return
		}
		agentID, ok := resolveAgent(c)
		if !ok {
			return
		}

		node, err := walker.Current(c.Request.Context(), graph, def.ID, agentID)
		if err != nil {
			slog.Error("failed to load timeline position",
				"challengeID", def.ID, "agentID", agentID, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "timeline storage unavailable"})
			return
		}
		c.JSON(http.StatusOK, toTimelineNodeView(node))
	}
}

type timelineChoiceRequest struct {
	Choice *int `json:"choice" binding:"required"`
}

// ChooseTimelinePath applies one choice at the caller's current node.
// Choices that grant fragments unlock them through the regular
// progress path, so the live feed and percent stay consistent with
// gate submissions.
func ChooseTimelinePath(cat *catalog.Catalog, walker *timeline.Walker) gin.HandlerFunc {
	return func(c *gin.Context) {
		def, ok := cat.Get(c.Param("challengeId"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "challenge not found"})
			return
		}
		graph := def.Graph()
		if graph == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "challenge has no timeline"})
			return
		}
		var req timelineChoiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "choice is required"})
			return
		}
		agentID, ok := resolveAgent(c)
		if !ok {
			return
		}

		next, progress, err := walker.Choose(c.Request.Context(), &def.Challenge, graph, agentID, *req.Choice)
		if err != nil {
			switch {
			case errors.Is(err, cipher.ErrNotFound):
				c.JSON(http.StatusBadRequest, gin.H{"error": "choice out of range"})
			case errors.Is(err, cipher.ErrStorageUnavailable):
				slog.Error("timeline storage failure",
					"challengeID", def.ID, "agentID", agentID, "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "timeline storage unavailable"})
			default:
				slog.Error("timeline choice failed",
					"challengeID", def.ID, "agentID", agentID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "timeline choice failed"})
			}
			return
		}

		response := gin.H{"node": toTimelineNodeView(next)}
		if progress != nil {
			response["unlocked"] = progress.Unlocked
			response["percent"] = cipher.Percentage(progress.Unlocked, def.Format)
			response["complete"] = progress.Complete
		}
		c.JSON(http.StatusOK, response)
	}
}
