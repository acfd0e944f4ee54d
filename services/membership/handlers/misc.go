// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/outpost-collective/outpost/services/membership/catalog"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// HealthCheck reports liveness plus the size of the published catalog.
// A running service with zero challenges is healthy but probably
// misconfigured, so the count is surfaced for operators.
func HealthCheck(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"version":    Version,
			"challenges": len(cat.List()),
		})
	}
}
