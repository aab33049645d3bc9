// Package plan contains the request-scoped planning model: normalized
// user preferences, the compiled meal schedule, and its audit trail.
package plan

import (
	"strconv"
	"strings"
)

// DefaultDays is the plan length used when the request does not say.
const DefaultDays = 7

// Preferences is the canonical, request-scoped preference shape. It is
// built exactly once at the boundary from the historically multiply-shaped
// payloads; nothing downstream ever probes raw request fields.
type Preferences struct {
	Goal        string   `json:"goal,omitempty"`
	Diet        string   `json:"diet,omitempty"`
	Cuisines    []string `json:"cuisines,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
	Exclusions  []string `json:"exclusions,omitempty"`
	Days        int      `json:"days" validate:"min=1"`
	PantryItems []string `json:"ingredients_at_home,omitempty"`
}

// Request is a tolerant plan request envelope. user_id/chat_id and days
// may appear at the top level or inside preferences; the accessors below
// resolve them in that order.
type Request struct {
	UserID      string         `json:"user_id"`
	ChatID      string         `json:"chat_id"`
	Days        int            `json:"days"`
	Preferences map[string]any `json:"preferences"`

	// Legacy flat payloads carry preference fields at the top level.
	Extra map[string]any `json:"-"`
}

// ResolveUserID returns the user identity from any of its historical
// locations, or "" when the request carries none.
func (r Request) ResolveUserID() string {
	for _, v := range []string{r.UserID, r.ChatID} {
		if v != "" {
			return v
		}
	}
	for _, k := range []string{"user_id", "chat_id"} {
		if s := stringField(r.Preferences, k); s != "" {
			return s
		}
	}
	return ""
}

// NormalizePreferences maps every accepted field alias onto the canonical
// Preferences shape. The alias set is closed: these are exactly the names
// the historical payloads used.
func NormalizePreferences(raw map[string]any) Preferences {
	p := Preferences{
		Goal: stringField(raw, "goal"),
		Diet: firstString(raw, "diet", "food_preference"),
		Days: DefaultDays,
	}

	p.Cuisines = firstList(raw, "cuisines", "cuisinePreference")
	p.PantryItems = firstList(raw, "ingredients_at_home", "ingredientsAtHome", "available_ingredients")
	// "includeIngredients" really carried exclusions in the legacy payloads.
	p.Exclusions = firstList(raw, "exclusions", "includeIngredients")

	if v, ok := numberField(raw, "budget"); ok {
		p.Budget = &v
	}
	if d, ok := numberField(raw, "days"); ok && int(d) >= 1 {
		p.Days = int(d)
	}

	return p
}

// NormalizeRequest builds the canonical preferences for a request,
// falling back to top-level fields for flat legacy payloads.
func NormalizeRequest(req Request) Preferences {
	raw := req.Preferences
	if len(raw) == 0 {
		raw = req.Extra
	}
	p := NormalizePreferences(raw)
	if req.Days >= 1 {
		p.Days = req.Days
	}
	return p
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringField(m, k); s != "" {
			return s
		}
	}
	return ""
}

func numberField(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func firstList(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		if out := asList(m[k]); len(out) > 0 {
			return out
		}
	}
	return nil
}

// asList accepts a string list, an any-list, or a comma-separated string.
func asList(v any) []string {
	var items []string
	switch val := v.(type) {
	case nil:
		return nil
	case []string:
		items = val
	case []any:
		for _, e := range val {
			if s, ok := e.(string); ok {
				items = append(items, s)
			}
		}
	case string:
		items = strings.Split(val, ",")
	default:
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
