// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/outpost-collective/outpost/pkg/ux"
)

// --- Global Command Variables ---
var (
	serverURL   string
	accessToken string
	plainOutput bool

	rootCmd = &cobra.Command{
		Use:   "outpost",
		Short: "A CLI to manage an Outpost HQ membership service",
		Long: `Outpost is the operator tool for the Outpost HQ community platform:
lint and inspect challenge files, check a running service, and manage
reward codes.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if plainOutput {
				ux.SetPlain(true)
			}
		},
	}

	// --- Challenges ---
	challengeCmd = &cobra.Command{
		Use:   "challenge",
		Short: "Work with challenge definition files",
	}
	challengeLintCmd = &cobra.Command{
		Use:   "lint [dir]",
		Short: "Check every challenge file in a directory and report problems",
		Args:  cobra.MaximumNArgs(1),
		Run:   runChallengeLint, // Defined in cmd_challenge.go
	}
	challengeListCmd = &cobra.Command{
		Use:   "list [dir]",
		Short: "List the challenges a directory defines",
		Args:  cobra.MaximumNArgs(1),
		Run:   runChallengeList, // Defined in cmd_challenge.go
	}

	// --- Service ---
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Check the health of a running membership service",
		Run:   runStatus, // Defined in cmd_service.go
	}

	// --- Rewards ---
	rewardCmd = &cobra.Command{
		Use:   "reward",
		Short: "Manage reward codes on a running service",
	}
	rewardMintCmd = &cobra.Command{
		Use:   "mint [code] [reward-id]",
		Short: "Mint a redeemable reward code (admin token required)",
		Args:  cobra.ExactArgs(2),
		Run:   runRewardMint, // Defined in cmd_service.go
	}
	rewardListCmd = &cobra.Command{
		Use:   "list",
		Short: "List minted reward codes (admin token required)",
		Run:   runRewardList, // Defined in cmd_service.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8095",
		"Base URL of the membership service")
	rootCmd.PersistentFlags().StringVar(&accessToken, "token", "",
		"Bearer token for authenticated endpoints (or OUTPOST_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false,
		"Disable styled terminal output")

	challengeCmd.AddCommand(challengeLintCmd, challengeListCmd)
	rewardCmd.AddCommand(rewardMintCmd, rewardListCmd)
	rootCmd.AddCommand(challengeCmd, statusCmd, rewardCmd)
}
