// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the membership service HTTP handlers.
//
// Handlers are factory functions returning gin.HandlerFunc with their
// dependencies injected, so routes.go decides the wiring and tests can
// pass in-memory fakes. Responses use plain JSON objects; errors are
// always {"error": "..."} with an appropriate status code.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/outpost-collective/outpost/services/membership/catalog"
	"github.com/outpost-collective/outpost/services/membership/cipher"
	"github.com/outpost-collective/outpost/services/membership/middleware"
	"github.com/outpost-collective/outpost/services/membership/observability"
)

// =============================================================================
// Public Views
// =============================================================================

// challengeView is the public shape of a challenge. The target code
// and per-sub-challenge answers never leave the server; access codes
// are distributed out of band, so they are hidden from listings too.
type challengeView struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Segments      int      `json:"segments"`
	Alphabet      string   `json:"alphabet"`
	Shared        bool     `json:"shared"`
	SubChallenges int      `json:"subChallenges"`
	SegmentKeys   []string `json:"segmentKeys"`
}

func toChallengeView(def *catalog.Definition) challengeView {
	return challengeView{
		ID:            def.ID,
		Title:         def.Title,
		Description:   def.Description,
		Segments:      def.Format.Segments,
		Alphabet:      def.Format.Alphabet.String(),
		Shared:        def.Shared,
		SubChallenges: len(def.SubChallenges),
		SegmentKeys:   def.Format.SegmentKeys(),
	}
}

// subChallengeView is what an agent sees after entering a valid access
// code: the prompt, optional hints, and which fragments solving it
// unlocks. The expected output stays server-side.
type subChallengeView struct {
	ID          string   `json:"id"`
	PromptLines []string `json:"promptLines"`
	HintLines   []string `json:"hintLines,omitempty"`
	FragmentIDs []string `json:"fragmentIDs"`
}

// progressView is the agent-facing progress report for one challenge.
type progressView struct {
	ChallengeID string          `json:"challengeID"`
	AgentID     string          `json:"agentID"`
	Unlocked    []string        `json:"unlocked"`
	PartialCode string          `json:"partialCode"`
	Percent     int             `json:"percent"`
	Complete    bool            `json:"complete"`
	Segments    map[string]bool `json:"segments"`
}

func buildProgressView(def *catalog.Definition, record *cipher.AgentProgress) (progressView, error) {
	fragments, err := def.Fragments()
	if err != nil {
		return progressView{}, err
	}
	segments := make(map[string]bool, def.Format.Segments)
	for _, key := range def.Format.SegmentKeys() {
		segments[key] = cipher.SegmentComplete(key, record.Unlocked, def.Format)
	}
	return progressView{
		ChallengeID: def.ID,
		AgentID:     record.AgentID,
		Unlocked:    record.Unlocked,
		PartialCode: cipher.RenderPartial(record.Unlocked, fragments, def.Format),
		Percent:     cipher.Percentage(record.Unlocked, def.Format),
		Complete:    record.Complete,
		Segments:    segments,
	}, nil
}

// =============================================================================
// Request Bodies
// =============================================================================

type enterRequest struct {
	AccessCode string `json:"accessCode" binding:"required"`
}

type submitRequest struct {
	SubChallengeID string `json:"subChallengeID" binding:"required"`
	Answer         string `json:"answer" binding:"required"`
}

// =============================================================================
// Handlers
// =============================================================================

// ListChallenges returns the public view of every published challenge.
func ListChallenges(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		defs := cat.List()
		views := make([]challengeView, 0, len(defs))
		for _, def := range defs {
			views = append(views, toChallengeView(def))
		}
		c.JSON(http.StatusOK, gin.H{"challenges": views})
	}
}

// GetChallenge returns the public view of one challenge.
func GetChallenge(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		def, ok := cat.Get(c.Param("challengeId"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "challenge not found"})
			return
		}
		c.JSON(http.StatusOK, toChallengeView(def))
	}
}

// GetChallengeProgress returns the caller's progress on a challenge:
// unlocked fragments, the masked code, percent, and per-segment state.
// Agents that have never submitted get a zero-progress view.
func GetChallengeProgress(cat *catalog.Catalog, tracker *cipher.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		def, ok := cat.Get(c.Param("challengeId"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "challenge not found"})
			return
		}
		agentID, ok := resolveAgent(c)
		if !ok {
			return
		}
		record, err := tracker.Get(c.Request.Context(), &def.Challenge, agentID)
		if err != nil {
			slog.Error("failed to load progress",
				"challengeID", def.ID, "agentID", agentID, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "progress storage unavailable"})
			return
		}
		view, err := buildProgressView(def, record)
		if err != nil {
			slog.Error("challenge definition is inconsistent", "challengeID", def.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "challenge definition error"})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// EnterAccessCode resolves an access code to its sub-challenge prompt.
// Unknown and retired codes are indistinguishable to the caller, and
// entry never changes stored progress.
func EnterAccessCode(cat *catalog.Catalog, gate *cipher.Gate, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		def, ok := cat.Get(c.Param("challengeId"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "challenge not found"})
			return
		}
		var req enterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "accessCode is required"})
			return
		}

		sub, err := gate.EnterByAccessCode(&def.Challenge, req.AccessCode)
		if err != nil {
			if metrics != nil {
				metrics.RecordAccessCodeEntry(false)
			}
			switch {
			case errors.Is(err, cipher.ErrEmptyCode):
				c.JSON(http.StatusBadRequest, gin.H{"error": "accessCode is required"})
			case errors.Is(err, cipher.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "access code not recognized"})
			default:
				slog.Error("access code entry failed", "challengeID", def.ID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "entry failed"})
			}
			return
		}
		if metrics != nil {
			metrics.RecordAccessCodeEntry(true)
		}

		c.JSON(http.StatusOK, subChallengeView{
			ID:          sub.ID,
			PromptLines: sub.PromptLines,
			HintLines:   sub.HintLines,
			FragmentIDs: sub.FragmentIDs,
		})
	}
}

// SubmitAnswer checks an answer against a sub-challenge. A correct
// answer unlocks its fragments for the caller (or the shared pool) and
// reports the updated progress; an incorrect one reports the current
// state with correct=false and writes nothing.
func SubmitAnswer(cat *catalog.Catalog, gate *cipher.Gate, metrics *observability.Metrics, feed *Feed) gin.HandlerFunc {
	return func(c *gin.Context) {
		def, ok := cat.Get(c.Param("challengeId"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "challenge not found"})
			return
		}
		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "subChallengeID and answer are required"})
			return
		}
		agentID, ok := resolveAgent(c)
		if !ok {
			return
		}

		result, err := gate.SubmitAnswer(c.Request.Context(), &def.Challenge, req.SubChallengeID, req.Answer, agentID)
		if err != nil {
			switch {
			case errors.Is(err, cipher.ErrNotFound):
				if metrics != nil {
					metrics.RecordSubmission("not_found")
				}
				c.JSON(http.StatusNotFound, gin.H{"error": "sub-challenge not found"})
			case errors.Is(err, cipher.ErrStorageUnavailable):
				slog.Error("submission storage failure",
					"challengeID", def.ID, "subChallengeID", req.SubChallengeID, "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "progress storage unavailable"})
			default:
				slog.Error("submission failed",
					"challengeID", def.ID, "subChallengeID", req.SubChallengeID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "submission failed"})
			}
			return
		}

		if metrics != nil {
			if result.Correct {
				metrics.RecordSubmission("correct")
				metrics.RecordUnlock(def.ID, result.NewlyUnlocked,
					result.Complete && result.NewlyUnlocked > 0)
			} else {
				metrics.RecordSubmission("incorrect")
			}
		}

		fragments, err := def.Fragments()
		if err != nil {
			slog.Error("challenge definition is inconsistent", "challengeID", def.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "challenge definition error"})
			return
		}
		response := gin.H{
			"correct":     result.Correct,
			"unlocked":    result.Unlocked,
			"partialCode": cipher.RenderPartial(result.Unlocked, fragments, def.Format),
			"percent":     result.Percent,
			"complete":    result.Complete,
		}
		if result.Correct && result.RewardID != "" {
			response["rewardID"] = result.RewardID
		}

		if result.Correct && feed != nil {
			feed.Publish(ProgressEvent{
				ChallengeID: def.ID,
				AgentID:     agentID,
				Shared:      def.Shared,
				Percent:     result.Percent,
				Complete:    result.Complete,
			})
		}
		c.JSON(http.StatusOK, response)
	}
}

// =============================================================================
// Helpers
// =============================================================================

// resolveAgent determines which agent the request acts for. The caller
// acts for itself; admins may act for another agent via the "agent"
// query parameter. On failure the response is already written and ok
// is false.
func resolveAgent(c *gin.Context) (string, bool) {
	id := middleware.GetIdentity(c)
	if id == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	if override := c.Query("agent"); override != "" && override != id.AgentID {
		if !id.HasRole("admin") {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot act for another agent"})
			return "", false
		}
		return override, true
	}
	return id.AgentID, true
}
