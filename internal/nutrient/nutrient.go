// internal/nutrient/nutrient.go
package nutrient

import (
	"math"
	"strconv"
)

// Totals is the fixed nutrient vector tracked per meal and per day. Every
// field is always populated and clamped to its bounds; externally sourced
// data must enter through Sanitize.
type Totals struct {
	ProteinG       float64 `json:"protein_g"`
	CarbsG         float64 `json:"carbs_g"`
	FatG           float64 `json:"fat_g"`
	FiberG         float64 `json:"fiber_g"`
	SaturatedFatG  float64 `json:"saturated_fat_g"`
	AddedSugarG    float64 `json:"added_sugar_g"`
	Omega3G        float64 `json:"omega3_g"`
	SodiumMg       float64 `json:"sodium_mg"`
	CholesterolMg  float64 `json:"cholesterol_mg"`
	PotassiumMg    float64 `json:"potassium_mg"`
	MagnesiumMg    float64 `json:"magnesium_mg"`
	CalciumMg      float64 `json:"calcium_mg"`
	IronMg         float64 `json:"iron_mg"`
	ZincMg         float64 `json:"zinc_mg"`
	CholineMg      float64 `json:"choline_mg"`
	VitaminCMg     float64 `json:"vitamin_c_mg"`
	VitaminDMcg    float64 `json:"vitamin_d_mcg"`
	VitaminB12Mcg  float64 `json:"vitamin_b12_mcg"`
	VitaminB6Mg    float64 `json:"vitamin_b6_mg"`
	FolateMcg      float64 `json:"folate_mcg"`
	IodineMcg      float64 `json:"iodine_mcg"`
	SeleniumMcg    float64 `json:"selenium_mcg"`
	VitaminAMcgRAE float64 `json:"vitamin_a_mcg_rae"`
	VitaminEMg     float64 `json:"vitamin_e_mg"`
	VitaminKMcg    float64 `json:"vitamin_k_mcg"`
}

// Class splits nutrients by how coverage against a daily target should be
// read: target-fill nutrients want to reach the target, upper-bound
// nutrients want to stay under it.
type Class int

const (
	TargetFill Class = iota
	UpperBound
)

// Field describes one nutrient: its wire key, hard bounds, class, and an
// accessor into a Totals value. Minimum is 0 for every nutrient; Max is a
// global ceiling that caps even multi-meal daily sums.
type Field struct {
	Key   string
	Max   float64
	Class Class
	ptr   func(*Totals) *float64
}

// Get returns the field's value in t.
func (f Field) Get(t *Totals) float64 { return *f.ptr(t) }

var fields = []Field{
	{"protein_g", 400, TargetFill, func(t *Totals) *float64 { return &t.ProteinG }},
	{"carbs_g", 1000, TargetFill, func(t *Totals) *float64 { return &t.CarbsG }},
	{"fat_g", 400, TargetFill, func(t *Totals) *float64 { return &t.FatG }},
	{"fiber_g", 200, TargetFill, func(t *Totals) *float64 { return &t.FiberG }},
	{"saturated_fat_g", 200, UpperBound, func(t *Totals) *float64 { return &t.SaturatedFatG }},
	{"added_sugar_g", 500, UpperBound, func(t *Totals) *float64 { return &t.AddedSugarG }},
	{"omega3_g", 50, TargetFill, func(t *Totals) *float64 { return &t.Omega3G }},
	{"sodium_mg", 12000, UpperBound, func(t *Totals) *float64 { return &t.SodiumMg }},
	{"cholesterol_mg", 3000, UpperBound, func(t *Totals) *float64 { return &t.CholesterolMg }},
	{"potassium_mg", 15000, TargetFill, func(t *Totals) *float64 { return &t.PotassiumMg }},
	{"magnesium_mg", 2000, TargetFill, func(t *Totals) *float64 { return &t.MagnesiumMg }},
	{"calcium_mg", 5000, TargetFill, func(t *Totals) *float64 { return &t.CalciumMg }},
	{"iron_mg", 100, TargetFill, func(t *Totals) *float64 { return &t.IronMg }},
	{"zinc_mg", 100, TargetFill, func(t *Totals) *float64 { return &t.ZincMg }},
	{"choline_mg", 3000, TargetFill, func(t *Totals) *float64 { return &t.CholineMg }},
	{"vitamin_c_mg", 2000, TargetFill, func(t *Totals) *float64 { return &t.VitaminCMg }},
	{"vitamin_d_mcg", 250, TargetFill, func(t *Totals) *float64 { return &t.VitaminDMcg }},
	{"vitamin_b12_mcg", 500, TargetFill, func(t *Totals) *float64 { return &t.VitaminB12Mcg }},
	{"vitamin_b6_mg", 100, TargetFill, func(t *Totals) *float64 { return &t.VitaminB6Mg }},
	{"folate_mcg", 2000, TargetFill, func(t *Totals) *float64 { return &t.FolateMcg }},
	{"iodine_mcg", 1100, TargetFill, func(t *Totals) *float64 { return &t.IodineMcg }},
	{"selenium_mcg", 400, TargetFill, func(t *Totals) *float64 { return &t.SeleniumMcg }},
	{"vitamin_a_mcg_rae", 3000, TargetFill, func(t *Totals) *float64 { return &t.VitaminAMcgRAE }},
	{"vitamin_e_mg", 1000, TargetFill, func(t *Totals) *float64 { return &t.VitaminEMg }},
	{"vitamin_k_mcg", 1000, TargetFill, func(t *Totals) *float64 { return &t.VitaminKMcg }},
}

// Fields returns the field table in canonical order.
func Fields() []Field { return fields }

// Sanitize coerces an untrusted record into a complete Totals. Every known
// key is coerced to a number (missing or non-numeric values become 0) and
// clamped to its bounds; unknown keys are ignored. This is the single choke
// point for externally sourced nutrient data.
func Sanitize(raw map[string]interface{}) Totals {
	var out Totals
	for _, f := range fields {
		*f.ptr(&out) = clamp(coerceNumber(raw[f.Key]), 0, f.Max)
	}
	return out
}

// Add sums two vectors elementwise. Each field is re-clamped: a day of meals
// may legitimately exceed a single-meal maximum but is still capped at the
// global ceiling so display values cannot run away.
func Add(a, b Totals) Totals {
	var out Totals
	for _, f := range fields {
		*f.ptr(&out) = clamp(*f.ptr(&a)+*f.ptr(&b), 0, f.Max)
	}
	return out
}

// Scale multiplies every field by factor without re-clamping. Used to derive
// multi-day target vectors, which may legitimately exceed single-day field
// ceilings.
func Scale(t Totals, factor float64) Totals {
	var out Totals
	for _, f := range fields {
		*f.ptr(&out) = *f.ptr(&t) * factor
	}
	return out
}

// MergeWithDefaults overlays a partial, untrusted override onto an
// already-valid defaults vector. A key overrides only when it parses as a
// finite number; everything else keeps the default. Used to restore persisted
// user-customized targets without losing fields added after they were saved.
func MergeWithDefaults(defaults Totals, override map[string]interface{}) Totals {
	out := defaults
	for _, f := range fields {
		v, ok := override[f.Key]
		if !ok {
			continue
		}
		if n, numeric := asNumber(v); numeric {
			*f.ptr(&out) = clamp(n, 0, f.Max)
		}
	}
	return out
}

// coerceNumber is asNumber with a zero fallback.
func coerceNumber(v interface{}) float64 {
	n, ok := asNumber(v)
	if !ok {
		return 0
	}
	return n
}

func asNumber(v interface{}) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
