// Copyright (C) 2026 Outpost Collective (dev@outpostcollective.org)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/outpost-collective/outpost/pkg/ux"
	"github.com/outpost-collective/outpost/services/membership/datatypes"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

func token() string {
	if accessToken != "" {
		return accessToken
	}
	return os.Getenv("OUTPOST_TOKEN")
}

// callService performs one request against the membership service and
// decodes the JSON response into out (when out is non-nil).
func callService(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, serverURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// runStatus hits /health and prints the result.
func runStatus(cmd *cobra.Command, args []string) {
	var health struct {
		Status     string `json:"status"`
		Version    string `json:"version"`
		Challenges int    `json:"challenges"`
	}
	if err := callService(http.MethodGet, "/health", nil, &health); err != nil {
		ux.Error(fmt.Sprintf("service unreachable: %v", err))
		os.Exit(1)
	}
	ux.Success(fmt.Sprintf("service %s at %s", health.Status, serverURL))
	ux.KeyValue("version", health.Version)
	ux.KeyValue("challenges", fmt.Sprintf("%d", health.Challenges))
}

// runRewardMint mints a new reward code.
func runRewardMint(cmd *cobra.Command, args []string) {
	code, rewardID := args[0], args[1]
	var minted datatypes.RewardCode
	err := callService(http.MethodPost, "/v1/rewards/codes",
		map[string]string{"code": code, "rewardID": rewardID}, &minted)
	if err != nil {
		ux.Error(fmt.Sprintf("mint failed: %v", err))
		os.Exit(1)
	}
	ux.Success(fmt.Sprintf("minted %s for reward %s", minted.Code, minted.RewardID))
}

// runRewardList lists minted codes with their redemption state.
func runRewardList(cmd *cobra.Command, args []string) {
	var listing struct {
		RewardCodes []datatypes.RewardCode `json:"rewardCodes"`
	}
	if err := callService(http.MethodGet, "/v1/rewards/codes", nil, &listing); err != nil {
		ux.Error(fmt.Sprintf("list failed: %v", err))
		os.Exit(1)
	}
	if len(listing.RewardCodes) == 0 {
		ux.Muted("no reward codes minted")
		return
	}
	for _, rc := range listing.RewardCodes {
		state := "unredeemed"
		if rc.Redeemed {
			state = "redeemed by " + rc.RedeemedBy
		}
		ux.Info(fmt.Sprintf("%s -> %s (%s)", rc.Code, rc.RewardID, state))
	}
}
