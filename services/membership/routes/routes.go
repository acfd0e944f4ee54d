// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/outpost-collective/outpost/services/membership/catalog"
	"github.com/outpost-collective/outpost/services/membership/cipher"
	"github.com/outpost-collective/outpost/services/membership/handlers"
	"github.com/outpost-collective/outpost/services/membership/middleware"
	"github.com/outpost-collective/outpost/services/membership/observability"
	"github.com/outpost-collective/outpost/services/membership/storage"
	"github.com/outpost-collective/outpost/services/membership/timeline"
)

// Options carries the wired dependencies for route registration.
type Options struct {
	Store    *storage.Store
	Catalog  *catalog.Catalog
	Gate     *cipher.Gate
	Tracker  *cipher.Tracker
	Walker   *timeline.Walker
	Verifier middleware.TokenVerifier
	Metrics  *observability.Metrics
	Feed     *handlers.Feed
}

// SetupRoutes registers every endpoint of the membership service.
// /health and /metrics are unauthenticated; everything under /v1 goes
// through the bearer token verifier, with admin-only routes behind an
// additional role guard.
func SetupRoutes(router *gin.Engine, opts Options) {
	router.GET("/health", handlers.HealthCheck(opts.Catalog))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.Use(middleware.Authenticate(opts.Verifier))
	if opts.Metrics != nil {
		v1.Use(requestMetrics(opts.Metrics))
	}
	{
		agents := v1.Group("/agents")
		{
			agents.POST("", handlers.CreateAgent(opts.Store))
			agents.GET("", handlers.ListAgents(opts.Store))
			agents.GET("/:agentId", handlers.GetAgent(opts.Store))
			agents.PUT("/:agentId", handlers.UpdateAgent(opts.Store))
			agents.DELETE("/:agentId", middleware.RequireRole("admin"), handlers.DeleteAgent(opts.Store))
			agents.POST("/:agentId/badges", middleware.RequireRole("admin"), handlers.AwardBadge(opts.Store))
		}

		badges := v1.Group("/badges")
		{
			badges.POST("", middleware.RequireRole("admin"), handlers.CreateBadge(opts.Store))
			badges.GET("", handlers.ListBadges(opts.Store))
			badges.GET("/:badgeId", handlers.GetBadge(opts.Store))
			badges.DELETE("/:badgeId", middleware.RequireRole("admin"), handlers.DeleteBadge(opts.Store))
		}

		divisions := v1.Group("/divisions")
		{
			divisions.POST("", middleware.RequireRole("admin"), handlers.CreateDivision(opts.Store))
			divisions.GET("", handlers.ListDivisions(opts.Store))
			divisions.GET("/:divisionId", handlers.GetDivision(opts.Store))
			divisions.DELETE("/:divisionId", middleware.RequireRole("admin"), handlers.DeleteDivision(opts.Store))
		}

		contracts := v1.Group("/contracts")
		{
			contracts.POST("", middleware.RequireRole("admin"), handlers.CreateContract(opts.Store))
			contracts.GET("", handlers.ListContracts(opts.Store))
			contracts.GET("/:contractId", handlers.GetContract(opts.Store))
			contracts.POST("/:contractId/accept", handlers.AcceptContract(opts.Store))
			contracts.POST("/:contractId/complete", handlers.CompleteContract(opts.Store))
			contracts.POST("/:contractId/withdraw", middleware.RequireRole("admin"), handlers.WithdrawContract(opts.Store))
			contracts.DELETE("/:contractId", middleware.RequireRole("admin"), handlers.DeleteContract(opts.Store))
		}

		rewards := v1.Group("/rewards")
		{
			rewards.POST("/codes", middleware.RequireRole("admin"), handlers.MintRewardCode(opts.Store))
			rewards.GET("/codes", middleware.RequireRole("admin"), handlers.ListRewardCodes(opts.Store))
			rewards.GET("/codes/:code", middleware.RequireRole("admin"), handlers.GetRewardCode(opts.Store))
			rewards.POST("/redeem", handlers.RedeemRewardCode(opts.Store, opts.Metrics))
		}

		challenges := v1.Group("/challenges")
		{
			challenges.GET("", handlers.ListChallenges(opts.Catalog))
			challenges.GET("/:challengeId", handlers.GetChallenge(opts.Catalog))
			challenges.GET("/:challengeId/progress", handlers.GetChallengeProgress(opts.Catalog, opts.Tracker))
			challenges.POST("/:challengeId/enter", handlers.EnterAccessCode(opts.Catalog, opts.Gate, opts.Metrics))
			challenges.POST("/:challengeId/submit", handlers.SubmitAnswer(opts.Catalog, opts.Gate, opts.Metrics, opts.Feed))
			challenges.GET("/:challengeId/timeline", handlers.GetTimelineNode(opts.Catalog, opts.Walker))
			challenges.POST("/:challengeId/timeline/choose", handlers.ChooseTimelinePath(opts.Catalog, opts.Walker))
		}

		v1.GET("/feed", handlers.ProgressFeed(opts.Feed))
	}
}

// requestMetrics records handler latency labeled by route template, so
// /v1/agents/:agentId stays one series regardless of the agent.
func requestMetrics(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(route, c.Request.Method,
			strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
