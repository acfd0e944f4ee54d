// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/outpost-collective/outpost/services/membership/observability"
)

// ProgressEvent is one live progress update pushed to feed clients.
// Progress on shared challenges is pooled, so observers watching the
// same board see the same percent.
type ProgressEvent struct {
	ChallengeID string `json:"challengeID"`
	AgentID     string `json:"agentID"`
	Shared      bool   `json:"shared"`
	Percent     int    `json:"percent"`
	Complete    bool   `json:"complete"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
}

// feedClient is one connected feed subscriber. Events are queued on a
// buffered channel; a full queue or an over-rate client drops events
// rather than blocking the publisher.
type feedClient struct {
	send    chan ProgressEvent
	limiter *rate.Limiter
}

// Feed broadcasts progress events to connected websocket clients.
type Feed struct {
	mu      sync.Mutex
	clients map[*feedClient]struct{}

	limit   rate.Limit
	burst   int
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewFeed creates a Feed. eventsPerSecond throttles delivery per
// client; zero disables throttling. A nil logger falls back to
// slog.Default.
func NewFeed(eventsPerSecond float64, burst int, metrics *observability.Metrics, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if eventsPerSecond > 0 {
		limit = rate.Limit(eventsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &Feed{
		clients: make(map[*feedClient]struct{}),
		limit:   limit,
		burst:   burst,
		metrics: metrics,
		logger:  logger,
	}
}

// Publish fans the event out to all connected clients. Never blocks:
// slow clients lose events instead of stalling submissions.
func (f *Feed) Publish(event ProgressEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for client := range f.clients {
		if !client.limiter.Allow() {
			f.dropped()
			continue
		}
		select {
		case client.send <- event:
		default:
			f.dropped()
		}
	}
}

// Subscribers returns the number of connected clients.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

func (f *Feed) subscribe() *feedClient {
	client := &feedClient{
		send:    make(chan ProgressEvent, 16),
		limiter: rate.NewLimiter(f.limit, f.burst),
	}
	f.mu.Lock()
	f.clients[client] = struct{}{}
	f.mu.Unlock()
	if f.metrics != nil {
		f.metrics.FeedSubscribed()
	}
	return client
}

func (f *Feed) unsubscribe(client *feedClient) {
	f.mu.Lock()
	_, present := f.clients[client]
	delete(f.clients, client)
	f.mu.Unlock()
	if present {
		close(client.send)
		if f.metrics != nil {
			f.metrics.FeedUnsubscribed()
		}
	}
}

func (f *Feed) dropped() {
	if f.metrics != nil {
		f.metrics.FeedEventDropped()
	}
}

// ProgressFeed upgrades the connection to a websocket and streams
// progress events until the client disconnects. The feed is one-way;
// anything the client sends is discarded.
func ProgressFeed(feed *Feed) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()

		client := feed.subscribe()
		defer feed.unsubscribe(client)
		slog.Info("progress feed client connected")

		done := make(chan struct{})

		// Drain reads so we notice the close handshake.
		go func() {
			defer close(done)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case event, ok := <-client.send:
				if !ok {
					return
				}
				ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := ws.WriteJSON(event); err != nil {
					slog.Info("progress feed client disconnected", "error", err.Error())
					return
				}
			case <-done:
				slog.Info("progress feed client disconnected")
				return
			}
		}
	}
}
