// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package catalog loads challenge definitions from a directory of YAML
// files and serves them to the request layer. Definitions are validated
// against the cipher engine at load time and are immutable in memory
// once published; editing a file triggers a hot reload.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/outpost-collective/outpost/services/membership/cipher"
	"github.com/outpost-collective/outpost/services/membership/datatypes"
	"github.com/outpost-collective/outpost/services/membership/timeline"
)

// Definition is one authored challenge file: the cipher challenge plus
// its optional dialogue timeline.
type Definition struct {
	cipher.Challenge `yaml:",inline"`
	Timeline         []datatypes.TimelineNode `yaml:"timeline,omitempty"`

	graph *timeline.Graph
}

// Graph returns the validated timeline graph, or nil when the
// definition has no timeline.
func (d *Definition) Graph() *timeline.Graph {
	return d.graph
}

// Check validates the whole definition: code format, fragment
// references, and, when a timeline is present, graph shape and
// fragment grants.
func (d *Definition) Check() error {
	if err := d.CheckDefinition(); err != nil {
		return err
	}
	if len(d.Timeline) == 0 {
		return nil
	}
	graph, err := timeline.NewGraph(d.Timeline)
	if err != nil {
		return fmt.Errorf("challenge %s: %w", d.ID, err)
	}
	for _, node := range d.Timeline {
		for _, choice := range node.Choices {
			for _, id := range choice.GrantFragments {
				if !d.Format.Contains(id) {
					return fmt.Errorf("challenge %s: timeline node %s grants unknown fragment %q",
						d.ID, node.ID, id)
				}
			}
		}
	}
	d.graph = graph
	return nil
}

// Catalog holds the published challenge definitions. Reads are served
// under a read lock; reloads swap the whole map.
type Catalog struct {
	dir    string
	logger *slog.Logger

	// onReload, if set, is called after every Load with the published
	// challenge count.
	onReload func(count int)

	mu   sync.RWMutex
	byID map[string]*Definition
}

// New creates an empty catalog for the given directory. Call Load
// before serving.
func New(dir string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{dir: dir, logger: logger, byID: make(map[string]*Definition)}
}

// OnReload registers a hook called after every successful Load. Set it
// before Watch starts.
func (c *Catalog) OnReload(fn func(count int)) {
	c.onReload = fn
}

// Load parses every .yaml/.yml file in the catalog directory and
// publishes the valid definitions. Invalid files are logged and
// skipped; they never take the service down. Returns an error only
// when the directory itself is unreadable.
func (c *Catalog) Load() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("read catalog directory %s: %w", c.dir, err)
	}

	loaded := make(map[string]*Definition)
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		path := filepath.Join(c.dir, entry.Name())
		def, err := loadFile(path)
		if err != nil {
			c.logger.Error("skipping invalid challenge file", "path", path, "error", err)
			continue
		}
		if _, dup := loaded[def.ID]; dup {
			c.logger.Error("skipping duplicate challenge id", "path", path, "challenge_id", def.ID)
			continue
		}
		loaded[def.ID] = def
	}

	c.mu.Lock()
	c.byID = loaded
	c.mu.Unlock()
	c.logger.Info("challenge catalog loaded", "dir", c.dir, "challenges", len(loaded))
	if c.onReload != nil {
		c.onReload(len(loaded))
	}
	return nil
}

// Get returns the definition with the given id.
func (c *Catalog) Get(id string) (*Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.byID[id]
	return def, ok
}

// List returns all definitions ordered by id.
func (c *Catalog) List() []*Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	defs := make([]*Definition, 0, len(c.byID))
	for _, def := range c.byID {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// Watch reloads the catalog when files in the directory change.
// Blocks until the context is cancelled; run it in a goroutine.
// Events are debounced so editors that write in bursts trigger one
// reload.
func (c *Catalog) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.dir); err != nil {
		return fmt.Errorf("watch %s: %w", c.dir, err)
	}
	c.logger.Info("watching challenge catalog", "dir", c.dir)

	const debounce = 250 * time.Millisecond
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isYAML(event.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("catalog watcher error", "error", err)
		case <-timerC:
			timer = nil
			timerC = nil
			if err := c.Load(); err != nil {
				c.logger.Error("catalog reload failed", "error", err)
			}
		}
	}
}

// LoadFile parses and checks a single challenge file. Used by the CLI
// linter; the catalog itself goes through Load.
func LoadFile(path string) (*Definition, error) {
	return loadFile(path)
}

func loadFile(path string) (*Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := def.Check(); err != nil {
		return nil, err
	}
	return &def, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
