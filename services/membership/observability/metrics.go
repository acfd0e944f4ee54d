// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the membership
// service.
//
// # Description
//
// Metrics cover the challenge engine (submissions, fragment unlocks,
// completions), reward code redemption, catalog reloads, and the live
// progress feed. They are exposed on /metrics for scraping.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal
// locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "outpost"

// Subsystem for membership metrics
const membershipSubsystem = "membership"

// Metrics holds all Prometheus metrics for the membership service.
// Initialize once at startup via InitMetrics(); registering twice
// panics.
type Metrics struct {
	// SubmissionsTotal counts answer submissions by result.
	// Labels: result (correct, incorrect, not_found)
	SubmissionsTotal *prometheus.CounterVec

	// AccessCodeEntriesTotal counts access-code gate entries by result.
	// Labels: result (found, not_found)
	AccessCodeEntriesTotal *prometheus.CounterVec

	// FragmentsUnlockedTotal counts newly unlocked fragments by challenge.
	// Labels: challenge_id
	FragmentsUnlockedTotal *prometheus.CounterVec

	// CompletionsTotal counts challenge completions by challenge.
	// Labels: challenge_id
	CompletionsTotal *prometheus.CounterVec

	// RewardRedemptionsTotal counts redemption attempts by result.
	// Labels: result (redeemed, already_redeemed, not_found)
	RewardRedemptionsTotal *prometheus.CounterVec

	// CatalogReloadsTotal counts catalog loads by result.
	// Labels: result (ok, error)
	CatalogReloadsTotal *prometheus.CounterVec

	// CatalogChallenges tracks the number of published challenges.
	CatalogChallenges prometheus.Gauge

	// RequestDurationSeconds measures handler latency.
	// Labels: route, method, status
	RequestDurationSeconds *prometheus.HistogramVec

	// FeedSubscribers tracks currently connected progress feed clients.
	FeedSubscribers prometheus.Gauge

	// FeedEventsDroppedTotal counts feed events dropped on slow clients.
	FeedEventsDroppedTotal prometheus.Counter
}

// Default is the singleton instance of Metrics, set by InitMetrics().
var Default *Metrics

// InitMetrics creates and registers all Prometheus metrics on the
// default registry. Call once at startup.
func InitMetrics() *Metrics {
	Default = &Metrics{
		SubmissionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "submissions_total",
				Help:      "Total answer submissions by result",
			},
			[]string{"result"},
		),

		AccessCodeEntriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "access_code_entries_total",
				Help:      "Total access-code gate entries by result",
			},
			[]string{"result"},
		),

		FragmentsUnlockedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "fragments_unlocked_total",
				Help:      "Total newly unlocked code fragments by challenge",
			},
			[]string{"challenge_id"},
		),

		CompletionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "completions_total",
				Help:      "Total challenge completions by challenge",
			},
			[]string{"challenge_id"},
		),

		RewardRedemptionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "reward_redemptions_total",
				Help:      "Total reward code redemption attempts by result",
			},
			[]string{"result"},
		),

		CatalogReloadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "catalog_reloads_total",
				Help:      "Total challenge catalog loads by result",
			},
			[]string{"result"},
		),

		CatalogChallenges: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "catalog_challenges",
				Help:      "Number of published challenges in the catalog",
			},
		),

		RequestDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Handler latency by route, method, and status",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"route", "method", "status"},
		),

		FeedSubscribers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "feed_subscribers",
				Help:      "Currently connected progress feed clients",
			},
		),

		FeedEventsDroppedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "feed_events_dropped_total",
				Help:      "Progress feed events dropped on slow clients",
			},
		),
	}

	return Default
}

// =============================================================================
// Helper Methods
// =============================================================================

// RecordSubmission records an answer submission outcome.
func (m *Metrics) RecordSubmission(result string) {
	m.SubmissionsTotal.WithLabelValues(result).Inc()
}

// RecordAccessCodeEntry records a gate entry outcome.
func (m *Metrics) RecordAccessCodeEntry(found bool) {
	result := "found"
	if !found {
		result = "not_found"
	}
	m.AccessCodeEntriesTotal.WithLabelValues(result).Inc()
}

// RecordUnlock records newly unlocked fragments, and the completion if
// the unlock finished the challenge.
func (m *Metrics) RecordUnlock(challengeID string, newFragments int, complete bool) {
	if newFragments > 0 {
		m.FragmentsUnlockedTotal.WithLabelValues(challengeID).Add(float64(newFragments))
	}
	if complete {
		m.CompletionsTotal.WithLabelValues(challengeID).Inc()
	}
}

// RecordRedemption records a reward code redemption outcome.
func (m *Metrics) RecordRedemption(result string) {
	m.RewardRedemptionsTotal.WithLabelValues(result).Inc()
}

// RecordCatalogReload records a catalog load and the resulting
// published challenge count.
func (m *Metrics) RecordCatalogReload(ok bool, challenges int) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.CatalogReloadsTotal.WithLabelValues(result).Inc()
	if ok {
		m.CatalogChallenges.Set(float64(challenges))
	}
}

// ObserveRequest records one handled HTTP request.
func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	m.RequestDurationSeconds.WithLabelValues(route, method, status).Observe(seconds)
}

// FeedSubscribed increments the feed subscriber gauge.
func (m *Metrics) FeedSubscribed() {
	m.FeedSubscribers.Inc()
}

// FeedUnsubscribed decrements the feed subscriber gauge.
func (m *Metrics) FeedUnsubscribed() {
	m.FeedSubscribers.Dec()
}

// FeedEventDropped counts one dropped feed event.
func (m *Metrics) FeedEventDropped() {
	m.FeedEventsDroppedTotal.Inc()
}
