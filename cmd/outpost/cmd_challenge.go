// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/outpost-collective/outpost/pkg/ux"
	"github.com/outpost-collective/outpost/services/membership/catalog"
)

func challengeDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "challenges"
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// runChallengeLint checks every challenge file in the directory and
// exits non-zero if any fails.
func runChallengeLint(cmd *cobra.Command, args []string) {
	dir := challengeDir(args)
	entries, err := os.ReadDir(dir)
	if err != nil {
		ux.Error(fmt.Sprintf("cannot read %s: %v", dir, err))
		os.Exit(1)
	}

	var checked, failed int
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		checked++
		path := filepath.Join(dir, entry.Name())
		def, err := catalog.LoadFile(path)
		if err != nil {
			failed++
			ux.Error(fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		if prev, dup := seen[def.ID]; dup {
			failed++
			ux.Error(fmt.Sprintf("%s: duplicate challenge id %q (also in %s)", entry.Name(), def.ID, prev))
			continue
		}
		seen[def.ID] = entry.Name()
		ux.Success(fmt.Sprintf("%s: %s (%d sub-challenges)", entry.Name(), def.ID, len(def.SubChallenges)))
	}

	if checked == 0 {
		ux.Warning(fmt.Sprintf("no challenge files found in %s", dir))
		return
	}
	if failed > 0 {
		ux.Error(fmt.Sprintf("%d of %d files failed", failed, checked))
		os.Exit(1)
	}
	ux.Success(fmt.Sprintf("%d files OK", checked))
}

// runChallengeList loads the directory like the service would and
// prints a summary per challenge.
func runChallengeList(cmd *cobra.Command, args []string) {
	dir := challengeDir(args)
	cat := catalog.New(dir, nil)
	if err := cat.Load(); err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}

	defs := cat.List()
	if len(defs) == 0 {
		ux.Warning(fmt.Sprintf("no valid challenges in %s", dir))
		return
	}

	ux.Title(fmt.Sprintf("Challenges in %s", dir))
	for _, def := range defs {
		shared := ""
		if def.Shared {
			shared = " [shared]"
		}
		ux.Info(fmt.Sprintf("%s (%s): %d segments, %d sub-challenges%s",
			def.ID, def.Title, def.Format.Segments, len(def.SubChallenges), shared))
		if def.Graph() != nil {
			ux.Muted(fmt.Sprintf("  timeline: %d nodes", len(def.Timeline)))
		}
	}
}
