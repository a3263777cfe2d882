/*
Copyright 2025 Trove Market Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package valuation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/trovemarket/settle/config"
)

type httpProvider struct {
	config     config.ValuationConfig
	httpClient *http.Client
}

// NewHTTPProvider builds the provider adapter for the configured valuation
// endpoint. The client timeout bounds every call; a timeout is treated like
// any other provider failure by the Engine.
func NewHTTPProvider(cfg config.ValuationConfig) Provider {
	return &httpProvider{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
	}
}

func (p *httpProvider) Name() string {
	return "http"
}

type estimateRequest struct {
	Model string      `json:"model,omitempty"`
	Item  ItemDetails `json:"item"`
	// Instruction nudges LLM-backed providers into the structured shape we
	// parse below.
	Instruction string `json:"instruction"`
}

const responseInstruction = "Respond with a single JSON object containing estimated_retail_price, confidence, reasoning, market_factors, condition_assessment, depreciation, brand_value, market_demand, category and suggested_listing_price."

func (p *httpProvider) EstimateValue(ctx context.Context, item ItemDetails) (*ProviderEstimate, error) {
	body := estimateRequest{
		Model:       p.config.Model,
		Item:        item,
		Instruction: responseInstruction,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := strings.TrimRight(p.config.BaseURL, "/") + "/v1/valuations"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return parseEstimate(raw)
}

// parseEstimate decodes a provider payload. LLM-backed providers sometimes
// wrap the JSON object in prose; when direct decoding fails we salvage the
// first balanced object embedded in the text before giving up.
func parseEstimate(raw []byte) (*ProviderEstimate, error) {
	var estimate ProviderEstimate
	if err := json.Unmarshal(raw, &estimate); err == nil {
		return &estimate, nil
	}

	salvaged, ok := extractJSONObject(string(raw))
	if !ok {
		return nil, fmt.Errorf("provider response is not valid JSON: %q", truncate(string(raw), 200))
	}
	if err := json.Unmarshal([]byte(salvaged), &estimate); err != nil {
		return nil, fmt.Errorf("salvaged provider payload is not valid JSON: %w", err)
	}
	return &estimate, nil
}

// extractJSONObject returns the first balanced {...} block in s, tracking
// strings and escapes so braces inside values do not confuse the scan.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
