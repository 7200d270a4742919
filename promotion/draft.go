package promotion

import (
	"time"

	"github.com/google/uuid"
)

// MatchPolicy controls how a set-based rule combines its members.
type MatchPolicy string

const (
	MatchAll  MatchPolicy = "all"
	MatchAny  MatchPolicy = "any"
	MatchNone MatchPolicy = "none"
)

// Valid reports whether p is one of the known policies.
func (p MatchPolicy) Valid() bool {
	return p == MatchAll || p == MatchAny || p == MatchNone
}

// Kind is one selectable entry from a server-supplied catalog of rule,
// action or calculator types.
type Kind struct {
	Module string `json:"module"`
	Name   string `json:"name"`
}

// RuleInstance is one committed promotion rule. The shape of Preferences is
// determined entirely by Module. Instances are immutable once committed and
// carry a locally generated ID so deletes survive list reordering.
type RuleInstance struct {
	ID          uuid.UUID              `json:"-"`
	Name        string                 `json:"name"`
	Module      string                 `json:"module"`
	Preferences map[string]interface{} `json:"preferences"`
}

// ActionPreferences pairs a calculator with its single preference value.
type ActionPreferences struct {
	CalculatorModule      string                 `json:"calculator_module"`
	CalculatorPreferences map[string]interface{} `json:"calculator_preferences"`
}

// ActionInstance is one committed promotion action.
type ActionInstance struct {
	ID          uuid.UUID         `json:"-"`
	Name        string            `json:"name"`
	Module      string            `json:"module"`
	Preferences ActionPreferences `json:"preferences"`
}

// Draft is the in-memory promotion being created or edited. It exists only
// for the duration of one builder session; the backend is the sole source of
// truth for IDs and usage counts. UsageCount is server-assigned and is never
// written back.
type Draft struct {
	ID          string     `json:"id,omitempty"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UsageLimit  *int       `json:"usage_limit,omitempty"`
	UsageCount  int        `json:"usage_count"`
	Active      bool       `json:"active"`

	Rules   []RuleInstance   `json:"rules"`
	Actions []ActionInstance `json:"actions"`
}

// NewDraft returns an empty draft with non-nil rule and action lists.
func NewDraft() Draft {
	return Draft{
		Rules:   []RuleInstance{},
		Actions: []ActionInstance{},
	}
}

// DeleteRule removes the committed rule with the given id. Unknown ids are
// ignored.
func (d *Draft) DeleteRule(id uuid.UUID) {
	for i, r := range d.Rules {
		if r.ID == id {
			d.Rules = append(d.Rules[:i], d.Rules[i+1:]...)
			return
		}
	}
}

// DeleteRuleAt removes the rule at index i, shifting later entries down by
// one. An out-of-range index is a no-op.
func (d *Draft) DeleteRuleAt(i int) {
	if i < 0 || i >= len(d.Rules) {
		return
	}
	d.Rules = append(d.Rules[:i], d.Rules[i+1:]...)
}

// DeleteAction removes the committed action with the given id. Unknown ids
// are ignored.
func (d *Draft) DeleteAction(id uuid.UUID) {
	for i, a := range d.Actions {
		if a.ID == id {
			d.Actions = append(d.Actions[:i], d.Actions[i+1:]...)
			return
		}
	}
}

// DeleteActionAt removes the action at index i. An out-of-range index is a
// no-op.
func (d *Draft) DeleteActionAt(i int) {
	if i < 0 || i >= len(d.Actions) {
		return
	}
	d.Actions = append(d.Actions[:i], d.Actions[i+1:]...)
}
