// internal/estimate/client.go
package estimate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client talks to the estimation gateway: free meal text in, a JSON nutrition
// estimate out. The gateway's output is untrusted; everything it returns is
// pushed through Normalize before anyone else sees it.
type Client struct {
	http   *resty.Client
	model  string
	logger *zap.Logger
}

func NewClient(logger *zap.Logger) *Client {
	gatewayURL := os.Getenv("ESTIMATOR_URL")
	if gatewayURL == "" {
		gatewayURL = "http://mcp-compose-http-proxy:9876/openrouter-gateway"
	}

	apiKey := os.Getenv("ESTIMATOR_API_KEY")
	if apiKey == "" {
		apiKey = "myapikey"
	}

	model := os.Getenv("ESTIMATOR_MODEL")
	if model == "" {
		model = "anthropic/claude-3.5-sonnet"
	}

	http := resty.New().
		SetBaseURL(gatewayURL).
		SetTimeout(60 * time.Second).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &Client{http: http, model: model, logger: logger}
}

const systemPrompt = `You are a nutrition expert rating how minimally-processed (whole-foods) a meal is.

IMPORTANT: Always respond with valid JSON in this exact format:
{
  "optimal_score": [0-100 integer],
  "summary": "one sentence on the meal",
  "positive": ["up to 3 short strengths"],
  "improve": ["up to 3 short weaknesses"],
  "nutrients": {
    "protein_g": [number], "carbs_g": [number], "fat_g": [number],
    "fiber_g": [number], "saturated_fat_g": [number], "added_sugar_g": [number],
    "omega3_g": [number], "sodium_mg": [number], "cholesterol_mg": [number],
    "potassium_mg": [number], "magnesium_mg": [number], "calcium_mg": [number],
    "iron_mg": [number], "zinc_mg": [number], "choline_mg": [number],
    "vitamin_c_mg": [number], "vitamin_d_mcg": [number], "vitamin_b12_mcg": [number],
    "vitamin_b6_mg": [number], "folate_mcg": [number], "iodine_mcg": [number],
    "selenium_mcg": [number], "vitamin_a_mcg_rae": [number], "vitamin_e_mg": [number],
    "vitamin_k_mcg": [number]
  },
  "recommendation": "one actionable improvement",
  "recommendation_options": ["up to 4 alternatives"],
  "size_label": "small|medium|large",
  "size_weight": [0.5-2 number],
  "confidence": "high|medium|low"
}`

// EstimateMeal asks the gateway for an estimate of the described meal. A
// transport or gateway failure is an error; a reply that is not usable JSON
// is not, it degrades to a low-confidence fallback estimate.
func (c *Client) EstimateMeal(ctx context.Context, description string) (*Estimate, error) {
	request := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name": "create_completion",
			"arguments": map[string]interface{}{
				"model":         c.model,
				"system_prompt": systemPrompt,
				"messages": []map[string]interface{}{
					{
						"role":    "user",
						"content": fmt.Sprintf("Rate this meal and estimate its nutrients: %q", description),
					},
				},
				"max_tokens":  2000,
				"temperature": 0.1,
			},
		},
	}

	var reply map[string]interface{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&reply).
		Post("")
	if err != nil {
		return nil, fmt.Errorf("estimation request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("estimation request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	text, ok := extractText(reply)
	if !ok {
		return nil, fmt.Errorf("unexpected gateway response format")
	}

	est := c.parseEstimate(text)
	return &est, nil
}

// extractText digs the completion text out of the gateway's tool-call
// envelope (result.content[0].text).
func extractText(reply map[string]interface{}) (string, bool) {
	result, ok := reply["result"].(map[string]interface{})
	if !ok {
		return "", false
	}
	content, ok := result["content"].([]interface{})
	if !ok || len(content) == 0 {
		return "", false
	}
	first, ok := content[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	text, ok := first["text"].(string)
	return text, ok
}

// parseEstimate finds the JSON object embedded in the model's reply and
// normalizes it. Anything unusable yields the fallback estimate.
func (c *Client) parseEstimate(text string) Estimate {
	content := text

	// The gateway may wrap the completion in its own JSON envelope.
	var completion map[string]interface{}
	if err := json.Unmarshal([]byte(text), &completion); err == nil {
		if inner, ok := completion["content"].(string); ok {
			content = inner
		}
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		c.logger.Warn("estimator reply had no JSON object, using fallback",
			zap.Int("reply_len", len(text)))
		return fallbackEstimate()
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(content[start:end+1]), &doc); err != nil {
		c.logger.Warn("estimator reply was not valid JSON, using fallback", zap.Error(err))
		return fallbackEstimate()
	}
	return Normalize(doc)
}

func fallbackEstimate() Estimate {
	return Normalize(map[string]interface{}{
		"optimal_score": 50.0,
		"summary":       "Estimate unavailable, using neutral defaults.",
		"confidence":    "low",
	})
}
