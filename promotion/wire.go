package promotion

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PromotionPayload is the request body for creating or updating a promotion.
// Rules and actions are already wire-shaped and pass through unchanged.
// UsageCount is deliberately absent: it is never client-writable.
type PromotionPayload struct {
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	StartsAt    *time.Time       `json:"starts_at,omitempty"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
	UsageLimit  *int             `json:"usage_limit,omitempty"`
	Active      bool             `json:"active"`
	Rules       []RuleInstance   `json:"rules"`
	Actions     []ActionInstance `json:"actions"`
}

// Serialize maps a draft 1:1 onto the wire shape. The validity window is
// day-granular: both endpoints are normalized to UTC midnight even though
// the picker exposes a full date-time.
func Serialize(d *Draft) PromotionPayload {
	p := PromotionPayload{
		Code:        d.Code,
		Name:        d.Name,
		Description: d.Description,
		StartsAt:    truncateToDay(d.StartsAt),
		ExpiresAt:   truncateToDay(d.ExpiresAt),
		UsageLimit:  d.UsageLimit,
		Active:      d.Active,
		Rules:       append([]RuleInstance{}, d.Rules...),
		Actions:     append([]ActionInstance{}, d.Actions...),
	}
	return p
}

func truncateToDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return &day
}

// PreferencePair is the server's flat key/value encoding of one preference.
type PreferencePair struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// EditRule is a persisted rule as the edit endpoint returns it: preferences
// arrive as a flat list of pairs, not a map.
type EditRule struct {
	Name        string           `json:"name"`
	Module      string           `json:"module"`
	Preferences []PreferencePair `json:"preferences"`
}

// EditAction is a persisted action as the edit endpoint returns it. The
// action_data array has two elements: the calculator module, then a
// one-entry array holding the single calculator preference pair.
type EditAction struct {
	Name       string            `json:"name"`
	Module     string            `json:"module"`
	ActionData []json.RawMessage `json:"action_data"`
}

// EditResponse is the server representation of a promotion fetched for
// editing.
type EditResponse struct {
	ID          string       `json:"id"`
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	StartsAt    *time.Time   `json:"starts_at"`
	ExpiresAt   *time.Time   `json:"expires_at"`
	UsageLimit  *int         `json:"usage_limit"`
	UsageCount  int          `json:"usage_count"`
	Active      bool         `json:"active"`
	Rules       []EditRule   `json:"rules"`
	Actions     []EditAction `json:"actions"`
}

// Deserialize inverts the server's nested edit encoding back into the draft
// shape the builder produces, so create and edit share one assembler
// contract. Round-trip law: Serialize(Deserialize(x)) reproduces x's
// configuration, modulo the day-granularity truncation of the dates.
func Deserialize(r EditResponse) (Draft, error) {
	d := Draft{
		ID:          r.ID,
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		StartsAt:    r.StartsAt,
		ExpiresAt:   r.ExpiresAt,
		UsageLimit:  r.UsageLimit,
		UsageCount:  r.UsageCount,
		Active:      r.Active,
		Rules:       make([]RuleInstance, 0, len(r.Rules)),
		Actions:     make([]ActionInstance, 0, len(r.Actions)),
	}

	for _, rule := range r.Rules {
		d.Rules = append(d.Rules, RuleInstance{
			ID:          uuid.New(),
			Name:        rule.Name,
			Module:      rule.Module,
			Preferences: foldPreferencePairs(rule.Preferences),
		})
	}

	for _, action := range r.Actions {
		prefs, err := unwrapActionData(action.ActionData)
		if err != nil {
			return Draft{}, fmt.Errorf("action %q: %w", action.Module, err)
		}
		d.Actions = append(d.Actions, ActionInstance{
			ID:          uuid.New(),
			Name:        action.Name,
			Module:      action.Module,
			Preferences: prefs,
		})
	}

	return d, nil
}

func foldPreferencePairs(pairs []PreferencePair) map[string]interface{} {
	prefs := make(map[string]interface{}, len(pairs))
	for _, p := range pairs {
		prefs[p.Key] = p.Value
	}
	return prefs
}

// unwrapActionData recovers {calculator_module, calculator_preferences} from
// the two-element action_data encoding.
func unwrapActionData(data []json.RawMessage) (ActionPreferences, error) {
	if len(data) != 2 {
		return ActionPreferences{}, fmt.Errorf("action_data has %d elements, want 2", len(data))
	}

	var module string
	if err := json.Unmarshal(data[0], &module); err != nil {
		return ActionPreferences{}, fmt.Errorf("action_data calculator module: %w", err)
	}

	var pairs []PreferencePair
	if err := json.Unmarshal(data[1], &pairs); err != nil {
		return ActionPreferences{}, fmt.Errorf("action_data preferences: %w", err)
	}

	prefs := make(map[string]interface{}, 1)
	if len(pairs) > 0 {
		// One-entry array by contract; the single pair is the calculator's
		// sole preference value.
		prefs[pairs[0].Key] = pairs[0].Value
	}

	return ActionPreferences{CalculatorModule: module, CalculatorPreferences: prefs}, nil
}
