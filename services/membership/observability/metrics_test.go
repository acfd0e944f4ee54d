// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// newTestMetrics creates a Metrics instance on a private registry so
// tests stay independent of the global Prometheus registry.
func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()

	reg := prometheus.NewRegistry()

	m := &Metrics{
		SubmissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "submissions_total",
			},
			[]string{"result"},
		),
		AccessCodeEntriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "access_code_entries_total",
			},
			[]string{"result"},
		),
		FragmentsUnlockedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "fragments_unlocked_total",
			},
			[]string{"challenge_id"},
		),
		CompletionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "completions_total",
			},
			[]string{"challenge_id"},
		),
		RewardRedemptionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "reward_redemptions_total",
			},
			[]string{"result"},
		),
		CatalogReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "catalog_reloads_total",
			},
			[]string{"result"},
		),
		CatalogChallenges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "catalog_challenges",
			},
		),
		RequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "request_duration_seconds",
				Buckets:   []float64{0.01, 0.1, 1.0},
			},
			[]string{"route", "method", "status"},
		),
		FeedSubscribers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "feed_subscribers",
			},
		),
		FeedEventsDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: membershipSubsystem,
				Name:      "feed_events_dropped_total",
			},
		),
	}

	reg.MustRegister(
		m.SubmissionsTotal,
		m.AccessCodeEntriesTotal,
		m.FragmentsUnlockedTotal,
		m.CompletionsTotal,
		m.RewardRedemptionsTotal,
		m.CatalogReloadsTotal,
		m.CatalogChallenges,
		m.RequestDurationSeconds,
		m.FeedSubscribers,
		m.FeedEventsDroppedTotal,
	)

	return m
}

func TestMetrics_RecordSubmission(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordSubmission("correct")
	m.RecordSubmission("correct")
	m.RecordSubmission("incorrect")

	if val := testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues("correct")); val != 2 {
		t.Errorf("SubmissionsTotal[correct] = %f, want 2", val)
	}
	if val := testutil.ToFloat64(m.SubmissionsTotal.WithLabelValues("incorrect")); val != 1 {
		t.Errorf("SubmissionsTotal[incorrect] = %f, want 1", val)
	}
}

func TestMetrics_RecordAccessCodeEntry(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordAccessCodeEntry(true)
	m.RecordAccessCodeEntry(false)
	m.RecordAccessCodeEntry(false)

	if val := testutil.ToFloat64(m.AccessCodeEntriesTotal.WithLabelValues("found")); val != 1 {
		t.Errorf("AccessCodeEntriesTotal[found] = %f, want 1", val)
	}
	if val := testutil.ToFloat64(m.AccessCodeEntriesTotal.WithLabelValues("not_found")); val != 2 {
		t.Errorf("AccessCodeEntriesTotal[not_found] = %f, want 2", val)
	}
}

func TestMetrics_RecordUnlock(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordUnlock("vault-01", 2, false)
	m.RecordUnlock("vault-01", 0, false) // resubmission, nothing new
	m.RecordUnlock("vault-01", 7, true)

	if val := testutil.ToFloat64(m.FragmentsUnlockedTotal.WithLabelValues("vault-01")); val != 9 {
		t.Errorf("FragmentsUnlockedTotal[vault-01] = %f, want 9", val)
	}
	if val := testutil.ToFloat64(m.CompletionsTotal.WithLabelValues("vault-01")); val != 1 {
		t.Errorf("CompletionsTotal[vault-01] = %f, want 1", val)
	}
}

func TestMetrics_RecordRedemption(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordRedemption("redeemed")
	m.RecordRedemption("already_redeemed")

	if val := testutil.ToFloat64(m.RewardRedemptionsTotal.WithLabelValues("redeemed")); val != 1 {
		t.Errorf("RewardRedemptionsTotal[redeemed] = %f, want 1", val)
	}
	if val := testutil.ToFloat64(m.RewardRedemptionsTotal.WithLabelValues("already_redeemed")); val != 1 {
		t.Errorf("RewardRedemptionsTotal[already_redeemed] = %f, want 1", val)
	}
}

func TestMetrics_RecordCatalogReload(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordCatalogReload(true, 5)
	if val := testutil.ToFloat64(m.CatalogChallenges); val != 5 {
		t.Errorf("CatalogChallenges = %f, want 5", val)
	}

	// A failed reload keeps the last published count.
	m.RecordCatalogReload(false, 0)
	if val := testutil.ToFloat64(m.CatalogChallenges); val != 5 {
		t.Errorf("CatalogChallenges after failed reload = %f, want 5", val)
	}
	if val := testutil.ToFloat64(m.CatalogReloadsTotal.WithLabelValues("error")); val != 1 {
		t.Errorf("CatalogReloadsTotal[error] = %f, want 1", val)
	}
}

func TestMetrics_FeedLifecycle(t *testing.T) {
	m := newTestMetrics(t)

	m.FeedSubscribed()
	m.FeedSubscribed()
	m.FeedUnsubscribed()
	m.FeedEventDropped()

	if val := testutil.ToFloat64(m.FeedSubscribers); val != 1 {
		t.Errorf("FeedSubscribers = %f, want 1", val)
	}
	if val := testutil.ToFloat64(m.FeedEventsDroppedTotal); val != 1 {
		t.Errorf("FeedEventsDroppedTotal = %f, want 1", val)
	}
}

func TestMetrics_ObserveRequest(t *testing.T) {
	m := newTestMetrics(t)

	m.ObserveRequest("/v1/challenges", "GET", "200", 0.02)

	if count := testutil.CollectAndCount(m.RequestDurationSeconds); count == 0 {
		t.Error("expected the request histogram to have observations")
	}
}

// InitMetrics registers on the default registry, so it can only run
// once per test binary.
var initMetricsOnce bool

func TestInitMetrics(t *testing.T) {
	if initMetricsOnce {
		t.Skip("InitMetrics can only be called once per test run")
	}
	initMetricsOnce = true

	m := InitMetrics()
	if m == nil {
		t.Fatal("InitMetrics() returned nil")
	}
	if Default != m {
		t.Error("Default should equal the returned value")
	}

	m.RecordSubmission("correct")
	m.RecordAccessCodeEntry(true)
	m.RecordUnlock("vault-01", 1, false)
	m.RecordRedemption("redeemed")
	m.RecordCatalogReload(true, 1)
	m.ObserveRequest("/health", "GET", "200", 0.001)
}
