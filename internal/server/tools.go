// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/google/uuid"

	"mcp-nutrition-log/internal/aggregate"
	"mcp-nutrition-log/internal/entrymeta"
	"mcp-nutrition-log/internal/models"
	"mcp-nutrition-log/internal/nutrient"
	"mcp-nutrition-log/internal/profile"
	"mcp-nutrition-log/internal/targets"
)

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

func (s *NutritionLogServer) toolHandlers() map[string]toolHandler {
	return map[string]toolHandler{
		"log_meal":        s.handleLogMeal,
		"estimate_meal":   s.handleEstimateMeal,
		"get_meals":       s.handleGetMeals,
		"delete_meal":     s.handleDeleteMeal,
		"daily_summary":   s.handleDailySummary,
		"weekly_summary":  s.handleWeeklySummary,
		"get_streak":      s.handleGetStreak,
		"get_profile":     s.handleGetProfile,
		"update_profile":  s.handleUpdateProfile,
		"get_targets":     s.handleGetTargets,
		"update_targets":  s.handleUpdateTargets,
		"get_settings":    s.handleGetSettings,
		"update_settings": s.handleUpdateSettings,
	}
}

type LogMealParams struct {
	Description string `json:"description" description:"Description of the meal eaten"`
	Timestamp   string `json:"timestamp,omitempty" description:"ISO timestamp of when the meal was eaten (defaults to now)"`
	Mood        string `json:"mood,omitempty" description:"How the user felt about the meal"`
}

type EstimateMealParams struct {
	Description string `json:"description" description:"Description of the meal to analyze without logging it"`
}

type GetMealsParams struct {
	StartDate string `json:"start_date,omitempty" description:"Start date for the query (YYYY-MM-DD)"`
	EndDate   string `json:"end_date,omitempty" description:"End date for the query (YYYY-MM-DD)"`
	Limit     int    `json:"limit,omitempty" description:"Maximum number of meals to return"`
}

type DeleteMealParams struct {
	ID string `json:"id" description:"ID of the meal entry to delete"`
}

type DailySummaryParams struct {
	Date string `json:"date,omitempty" description:"Day to summarize (YYYY-MM-DD, defaults to today)"`
}

type WeeklySummaryParams struct {
	EndDate string `json:"end_date,omitempty" description:"Last day of the 7-day window (YYYY-MM-DD, defaults to today)"`
}

type UpdateProfileParams struct {
	Age       *int     `json:"age,omitempty"`
	HeightFt  *int     `json:"heightFt,omitempty"`
	HeightIn  *int     `json:"heightIn,omitempty"`
	WeightLbs *float64 `json:"weightLbs,omitempty"`
	Sex       *string  `json:"sex,omitempty"`
	AvgSteps  *int     `json:"avgSteps,omitempty"`
}

type UpdateTargetsParams struct {
	Overrides map[string]float64 `json:"overrides" description:"Per-nutrient daily target overrides, e.g. {\"protein_g\": 150}"`
}

type UpdateSettingsParams struct {
	GoalPercent int `json:"goalPercent" description:"Daily whole-foods goal percentage (0-100)"`
}

// extractParams safely extracts parameters from the request arguments.
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("failed to unmarshal parameters: %w", err)
	}
	return nil
}

// handleLogMeal estimates the described meal, packs the estimate into entry
// metadata, and persists the entry.
func (s *NutritionLogServer) handleLogMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if strings.TrimSpace(params.Description) == "" {
		return nil, fmt.Errorf("meal description is required")
	}

	timestamp := time.Now()
	if params.Timestamp != "" {
		var err error
		timestamp, err = time.Parse(time.RFC3339, params.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp format: %w", err)
		}
	}

	est, err := s.estimator.EstimateMeal(ctx, params.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate meal: %w", err)
	}

	notes, err := entrymeta.Encode(entrymeta.MetaV2{
		Nutrients:             est.Nutrients,
		Positive:              est.Positive,
		Improve:               est.Improve,
		Recommendation:        est.Recommendation,
		RecommendationOptions: est.RecommendationOptions,
		Confidence:            est.Confidence,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode entry metadata: %w", err)
	}

	now := time.Now()
	entry := &models.MealEntry{
		ID:                uuid.NewString(),
		MealText:          params.Description,
		Timestamp:         timestamp,
		Mood:              params.Mood,
		WholeFoodsPercent: est.OptimalScore,
		LLMReason:         est.Summary,
		Notes:             &notes,
		SizeLabel:         &est.SizeLabel,
		SizeWeight:        &est.SizeWeight,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.storage.SaveEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	return s.createJSONResponse(entry)
}

// handleEstimateMeal runs the estimation without logging anything.
func (s *NutritionLogServer) handleEstimateMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params EstimateMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if strings.TrimSpace(params.Description) == "" {
		return nil, fmt.Errorf("meal description is required")
	}

	est, err := s.estimator.EstimateMeal(ctx, params.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate meal: %w", err)
	}
	return s.createJSONResponse(est)
}

func (s *NutritionLogServer) handleGetMeals(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetMealsParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if params.Limit <= 0 {
		params.Limit = 20
	}

	entries, err := s.storage.GetEntries(params.StartDate, params.EndDate, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}
	return s.createJSONResponse(entries)
}

func (s *NutritionLogServer) handleDeleteMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DeleteMealParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if params.ID == "" {
		return nil, fmt.Errorf("entry id is required")
	}
	if err := s.storage.DeleteEntry(params.ID); err != nil {
		return nil, fmt.Errorf("failed to delete entry: %w", err)
	}
	return s.createJSONResponse(map[string]interface{}{"deleted": params.ID})
}

func (s *NutritionLogServer) handleDailySummary(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DailySummaryParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	date, err := parseDayParam(params.Date)
	if err != nil {
		return nil, err
	}

	dayTargets, err := s.resolveTargets()
	if err != nil {
		return nil, err
	}

	// The storage prefilter matches stored UTC dates and a local day can
	// straddle two of them, so widen the window by a day each side;
	// SummarizeDay's day-key filter stays authoritative.
	start := date.AddDate(0, 0, -1).Format("2006-01-02")
	end := date.AddDate(0, 0, 1).Format("2006-01-02")
	entries, err := s.storage.GetEntries(start, end, 600)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	return s.createJSONResponse(aggregate.SummarizeDay(entries, dayTargets, date))
}

func (s *NutritionLogServer) handleWeeklySummary(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params WeeklySummaryParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	end, err := parseDayParam(params.EndDate)
	if err != nil {
		return nil, err
	}

	dayTargets, err := s.resolveTargets()
	if err != nil {
		return nil, err
	}
	settings, err := s.storage.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	// Pull extra history so the streak can run past the 7-day window.
	entries, err := s.storage.GetEntriesSince(end.AddDate(0, 0, -90))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	return s.createJSONResponse(aggregate.SummarizeWeek(entries, dayTargets, settings.GoalPercent, end))
}

func (s *NutritionLogServer) handleGetStreak(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	settings, err := s.storage.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	now := time.Now()
	entries, err := s.storage.GetEntriesSince(now.AddDate(0, 0, -90))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	streak := aggregate.ComputeStreak(entries, settings.GoalPercent, now)
	return s.createJSONResponse(map[string]interface{}{
		"streak":       streak,
		"goal_percent": settings.GoalPercent,
	})
}

func (s *NutritionLogServer) handleGetProfile(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	p, err := s.storage.LoadProfile()
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return s.createJSONResponse(p)
}

// handleUpdateProfile applies a partial profile edit. Absent fields keep
// their stored values; everything is clamped on save.
func (s *NutritionLogServer) handleUpdateProfile(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params UpdateProfileParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	p, err := s.storage.LoadProfile()
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if params.Age != nil {
		p.Age = *params.Age
	}
	if params.HeightFt != nil {
		p.HeightFt = *params.HeightFt
	}
	if params.HeightIn != nil {
		p.HeightIn = *params.HeightIn
	}
	if params.WeightLbs != nil {
		p.WeightLbs = *params.WeightLbs
	}
	if params.Sex != nil {
		p.Sex = profile.Sex(*params.Sex)
	}
	if params.AvgSteps != nil {
		p.AvgSteps = *params.AvgSteps
	}

	if err := s.storage.SaveProfile(p); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return s.createJSONResponse(p.Clamped())
}

func (s *NutritionLogServer) handleGetTargets(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	t, err := s.resolveTargets()
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(t)
}

func (s *NutritionLogServer) handleUpdateTargets(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params UpdateTargetsParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if len(params.Overrides) == 0 {
		return nil, fmt.Errorf("at least one target override is required")
	}

	if err := s.storage.SaveTargetOverrides(params.Overrides); err != nil {
		return nil, fmt.Errorf("failed to save target overrides: %w", err)
	}

	t, err := s.resolveTargets()
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(t)
}

func (s *NutritionLogServer) handleGetSettings(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	settings, err := s.storage.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return s.createJSONResponse(settings)
}

func (s *NutritionLogServer) handleUpdateSettings(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params UpdateSettingsParams
	if err := extractParams(req, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	settings := models.Settings{GoalPercent: params.GoalPercent}.Clamped()
	if err := s.storage.SaveSettings(settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return s.createJSONResponse(settings)
}

// resolveTargets computes the effective daily targets: profile-derived
// defaults with any persisted per-nutrient overrides merged on top.
func (s *NutritionLogServer) resolveTargets() (nutrient.Totals, error) {
	p, err := s.storage.LoadProfile()
	if err != nil {
		return nutrient.Totals{}, fmt.Errorf("failed to load profile: %w", err)
	}
	defaults := targets.ComputeDefaults(p)

	overrides, err := s.storage.LoadTargetOverrides()
	if err != nil {
		return nutrient.Totals{}, fmt.Errorf("failed to load target overrides: %w", err)
	}
	return nutrient.MergeWithDefaults(defaults, overrides), nil
}

// parseDayParam turns an optional YYYY-MM-DD parameter into a local time,
// defaulting to now.
func parseDayParam(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, err)
	}
	return t, nil
}
