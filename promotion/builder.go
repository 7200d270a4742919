package promotion

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PanelState tracks a rule or action sub-form through its lifecycle. A saved
// instance lands on the draft and the panel returns to Closed; in-progress
// configuration is never visible outside the panel.
type PanelState int

const (
	PanelClosed PanelState = iota
	PanelOpen
	PanelKindSelected
	PanelConfigured
)

func (s PanelState) String() string {
	switch s {
	case PanelClosed:
		return "closed"
	case PanelOpen:
		return "open"
	case PanelKindSelected:
		return "kind_selected"
	case PanelConfigured:
		return "configured"
	default:
		return "unknown"
	}
}

var (
	ErrPanelClosed      = errors.New("panel is closed")
	ErrNoKindSelected   = errors.New("no kind selected")
	ErrIncompleteConfig = errors.New("required fields are missing")
	ErrNoCalculator     = errors.New("no calculator selected")
	ErrKeyUnresolved    = errors.New("calculator preference key not resolved")
)

type rulePanel struct {
	state  PanelState
	kind   Kind
	config ruleConfig
}

type actionPanel struct {
	state      PanelState
	kind       Kind
	calculator Kind
	calcKey    string
	amount     *float64
}

// Builder owns one draft and its rule/action panels for a single create or
// edit session. It is not safe for concurrent use; callers serialize access.
type Builder struct {
	draft   Draft
	rules   rulePanel
	actions actionPanel
}

// New returns a builder around an empty draft.
func New() *Builder {
	return &Builder{draft: NewDraft()}
}

// FromDraft returns a builder pre-populated for editing. Create and edit
// share the same draft shape, so nothing else differs.
func FromDraft(d Draft) *Builder {
	if d.Rules == nil {
		d.Rules = []RuleInstance{}
	}
	if d.Actions == nil {
		d.Actions = []ActionInstance{}
	}
	return &Builder{draft: d}
}

// Draft exposes the builder's draft for top-level field edits and
// serialization. Rules and actions on it contain only committed instances.
func (b *Builder) Draft() *Draft { return &b.draft }

// ---- rule panel ----

func (b *Builder) RulePanelState() PanelState { return b.rules.state }

// OpenRules expands the rule panel. Re-opening an already open panel is a
// no-op.
func (b *Builder) OpenRules() {
	if b.rules.state == PanelClosed {
		b.rules.state = PanelOpen
	}
}

// SelectRuleKind picks the rule type for the in-progress rule. Kinds the
// builder has no sub-form for still select; saving them is a silent no-op.
func (b *Builder) SelectRuleKind(k Kind) error {
	if b.rules.state == PanelClosed {
		return ErrPanelClosed
	}
	b.rules.kind = k
	b.rules.config = nil
	b.rules.state = PanelKindSelected
	return nil
}

// SelectedRuleModule returns the module of the rule kind in progress, or ""
// when none is selected.
func (b *Builder) SelectedRuleModule() string {
	if b.rules.state < PanelKindSelected {
		return ""
	}
	return b.rules.kind.Module
}

// ConfigureOrderTotal fills the order-total sub-form.
func (b *Builder) ConfigureOrderTotal(lower, upper float64) error {
	if b.rules.state < PanelKindSelected {
		return ErrNoKindSelected
	}
	if b.rules.kind.Module != ModuleOrderTotal {
		return fmt.Errorf("selected rule is %q, not %q", b.rules.kind.Module, ModuleOrderTotal)
	}
	b.rules.config = OrderTotalConfig{LowerRange: lower, UpperRange: upper}
	b.rules.state = PanelConfigured
	return nil
}

// ConfigureProducts fills the product-membership sub-form.
func (b *Builder) ConfigureProducts(productIDs []int64, policy MatchPolicy) error {
	if b.rules.state < PanelKindSelected {
		return ErrNoKindSelected
	}
	if b.rules.kind.Module != ModuleProduct {
		return fmt.Errorf("selected rule is %q, not %q", b.rules.kind.Module, ModuleProduct)
	}
	if len(productIDs) == 0 {
		return ErrIncompleteConfig
	}
	if !policy.Valid() {
		return fmt.Errorf("invalid match policy %q", policy)
	}
	b.rules.config = ProductConfig{ProductIDs: productIDs, MatchPolicy: policy}
	b.rules.state = PanelConfigured
	return nil
}

// SaveRule commits the in-progress rule: exactly one instance is appended to
// the draft and the panel returns to Closed. Saving a kind the builder has no
// sub-form for discards it silently, mirroring the unknown-kind variant that
// renders nothing.
func (b *Builder) SaveRule() error {
	switch b.rules.state {
	case PanelClosed:
		return ErrPanelClosed
	case PanelOpen:
		return ErrNoKindSelected
	case PanelKindSelected:
		if !KnownRuleModule(b.rules.kind.Module) {
			b.resetRulePanel()
			return nil
		}
		return ErrIncompleteConfig
	}

	b.draft.Rules = append(b.draft.Rules, RuleInstance{
		ID:          uuid.New(),
		Name:        b.rules.kind.Name,
		Module:      b.rules.kind.Module,
		Preferences: b.rules.config.preferences(),
	})
	b.resetRulePanel()
	return nil
}

// CancelRule discards the in-progress rule and closes the panel. The draft is
// untouched.
func (b *Builder) CancelRule() { b.resetRulePanel() }

func (b *Builder) resetRulePanel() { b.rules = rulePanel{} }

// DeleteRule removes a committed rule by id; unknown ids are ignored.
func (b *Builder) DeleteRule(id uuid.UUID) { b.draft.DeleteRule(id) }

// DeleteRuleAt removes a committed rule by position; out of range is a no-op.
func (b *Builder) DeleteRuleAt(i int) { b.draft.DeleteRuleAt(i) }

// ---- action panel ----

func (b *Builder) ActionPanelState() PanelState { return b.actions.state }

// OpenActions expands the action panel.
func (b *Builder) OpenActions() {
	if b.actions.state == PanelClosed {
		b.actions.state = PanelOpen
	}
}

// SelectActionKind picks the action type. Selecting a new kind drops any
// calculator choice already made.
func (b *Builder) SelectActionKind(k Kind) error {
	if b.actions.state == PanelClosed {
		return ErrPanelClosed
	}
	b.actions.kind = k
	b.actions.calculator = Kind{}
	b.actions.calcKey = ""
	b.actions.amount = nil
	b.actions.state = PanelKindSelected
	return nil
}

func (b *Builder) SelectedActionModule() string {
	if b.actions.state < PanelKindSelected {
		return ""
	}
	return b.actions.kind.Module
}

// SelectCalculator picks the value calculator for the action. The amount
// field stays absent until the calculator's preference key is resolved from
// the backend and set via SetCalculatorKey.
func (b *Builder) SelectCalculator(k Kind) error {
	if b.actions.state < PanelKindSelected {
		return ErrNoKindSelected
	}
	b.actions.calculator = k
	b.actions.calcKey = ""
	b.actions.amount = nil
	b.actions.state = PanelKindSelected
	return nil
}

func (b *Builder) SelectedCalculatorModule() string { return b.actions.calculator.Module }

// SetCalculatorKey records the server-resolved preference key (for example
// "amount" or "percent_amount"). Key names are never hardcoded by callers.
func (b *Builder) SetCalculatorKey(key string) error {
	if b.actions.calculator.Module == "" {
		return ErrNoCalculator
	}
	if key == "" {
		return ErrKeyUnresolved
	}
	b.actions.calcKey = key
	return nil
}

// CalculatorKey returns the resolved preference key, or "" while unresolved.
func (b *Builder) CalculatorKey() string { return b.actions.calcKey }

// SetAmount fills the single calculator preference value. It requires a
// resolved key; until then there is no amount slot at all.
func (b *Builder) SetAmount(v float64) error {
	if b.actions.calcKey == "" {
		return ErrKeyUnresolved
	}
	b.actions.amount = &v
	b.actions.state = PanelConfigured
	return nil
}

// SaveAction commits the in-progress action and closes the panel. Calculators
// the builder has no amount entry for discard silently, like unknown rule
// kinds.
func (b *Builder) SaveAction() error {
	switch b.actions.state {
	case PanelClosed:
		return ErrPanelClosed
	case PanelOpen:
		return ErrNoKindSelected
	case PanelKindSelected:
		if b.actions.kind.Module != "" && b.actions.calculator.Module != "" &&
			!KnownCalculatorModule(b.actions.calculator.Module) {
			b.resetActionPanel()
			return nil
		}
		if b.actions.calculator.Module == "" {
			return ErrNoCalculator
		}
		if b.actions.calcKey == "" {
			return ErrKeyUnresolved
		}
		return ErrIncompleteConfig
	}

	b.draft.Actions = append(b.draft.Actions, ActionInstance{
		ID:     uuid.New(),
		Name:   b.actions.kind.Name,
		Module: b.actions.kind.Module,
		Preferences: ActionPreferences{
			CalculatorModule: b.actions.calculator.Module,
			CalculatorPreferences: map[string]interface{}{
				b.actions.calcKey: *b.actions.amount,
			},
		},
	})
	b.resetActionPanel()
	return nil
}

// CancelAction discards the in-progress action and closes the panel.
func (b *Builder) CancelAction() { b.resetActionPanel() }

func (b *Builder) resetActionPanel() { b.actions = actionPanel{} }

// DeleteAction removes a committed action by id; unknown ids are ignored.
func (b *Builder) DeleteAction(id uuid.UUID) { b.draft.DeleteAction(id) }

// DeleteActionAt removes a committed action by position; out of range is a
// no-op.
func (b *Builder) DeleteActionAt(i int) { b.draft.DeleteActionAt(i) }
