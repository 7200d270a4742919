package promotion

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestOpenRulesFromClosed(t *testing.T) {
	b := New()
	if b.RulePanelState() != PanelClosed {
		t.Fatalf("expected new builder rule panel closed, got %v", b.RulePanelState())
	}

	b.OpenRules()
	if b.RulePanelState() != PanelOpen {
		t.Errorf("expected rule panel open, got %v", b.RulePanelState())
	}

	// Re-opening is a no-op
	b.OpenRules()
	if b.RulePanelState() != PanelOpen {
		t.Errorf("expected rule panel still open, got %v", b.RulePanelState())
	}
}

func TestSelectRuleKindRequiresOpenPanel(t *testing.T) {
	b := New()
	err := b.SelectRuleKind(Kind{Module: ModuleOrderTotal, Name: "Order total"})
	if !errors.Is(err, ErrPanelClosed) {
		t.Errorf("expected ErrPanelClosed, got %v", err)
	}
}

func TestSaveOrderTotalRuleAppendsExactlyOne(t *testing.T) {
	b := New()
	b.OpenRules()
	if err := b.SelectRuleKind(Kind{Module: ModuleOrderTotal, Name: "Order total"}); err != nil {
		t.Fatalf("select rule kind: %v", err)
	}
	if err := b.ConfigureOrderTotal(50, 200); err != nil {
		t.Fatalf("configure order total: %v", err)
	}
	if err := b.SaveRule(); err != nil {
		t.Fatalf("save rule: %v", err)
	}

	rules := b.Draft().Rules
	if len(rules) != 1 {
		t.Fatalf("expected exactly 1 committed rule, got %d", len(rules))
	}
	r := rules[0]
	if r.Module != ModuleOrderTotal || r.Name != "Order total" {
		t.Errorf("unexpected rule identity: %+v", r)
	}
	if r.ID == uuid.Nil {
		t.Error("expected committed rule to carry a generated id")
	}
	if r.Preferences["lower_range"] != 50.0 || r.Preferences["upper_range"] != 200.0 {
		t.Errorf("unexpected preferences: %v", r.Preferences)
	}
	if b.RulePanelState() != PanelClosed {
		t.Errorf("expected rule panel closed after save, got %v", b.RulePanelState())
	}
}

func TestSaveProductRule(t *testing.T) {
	b := New()
	b.OpenRules()
	if err := b.SelectRuleKind(Kind{Module: ModuleProduct, Name: "Product"}); err != nil {
		t.Fatalf("select rule kind: %v", err)
	}
	if err := b.ConfigureProducts([]int64{3, 7}, MatchAny); err != nil {
		t.Fatalf("configure products: %v", err)
	}
	if err := b.SaveRule(); err != nil {
		t.Fatalf("save rule: %v", err)
	}

	rules := b.Draft().Rules
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	prefs := rules[0].Preferences
	ids, ok := prefs["product_ids"].([]int64)
	if !ok || len(ids) != 2 || ids[0] != 3 || ids[1] != 7 {
		t.Errorf("unexpected product_ids: %v", prefs["product_ids"])
	}
	if prefs["match_policy"] != "any" {
		t.Errorf("unexpected match_policy: %v", prefs["match_policy"])
	}
}

func TestConfigureProductsValidation(t *testing.T) {
	b := New()
	b.OpenRules()
	b.SelectRuleKind(Kind{Module: ModuleProduct, Name: "Product"})

	if err := b.ConfigureProducts(nil, MatchAll); !errors.Is(err, ErrIncompleteConfig) {
		t.Errorf("expected ErrIncompleteConfig for empty product set, got %v", err)
	}
	if err := b.ConfigureProducts([]int64{1}, MatchPolicy("some")); err == nil {
		t.Error("expected error for invalid match policy")
	}
}

func TestSaveRuleWithoutConfiguration(t *testing.T) {
	b := New()
	b.OpenRules()

	if err := b.SaveRule(); !errors.Is(err, ErrNoKindSelected) {
		t.Errorf("expected ErrNoKindSelected, got %v", err)
	}

	b.SelectRuleKind(Kind{Module: ModuleOrderTotal, Name: "Order total"})
	if err := b.SaveRule(); !errors.Is(err, ErrIncompleteConfig) {
		t.Errorf("expected ErrIncompleteConfig, got %v", err)
	}
	if len(b.Draft().Rules) != 0 {
		t.Errorf("draft must stay empty after failed saves, got %d rules", len(b.Draft().Rules))
	}
}

func TestSaveUnknownRuleKindDiscardsSilently(t *testing.T) {
	b := New()
	b.OpenRules()
	if err := b.SelectRuleKind(Kind{Module: "FirstOrder", Name: "First order"}); err != nil {
		t.Fatalf("select rule kind: %v", err)
	}
	if err := b.SaveRule(); err != nil {
		t.Fatalf("saving an unknown kind must not error, got %v", err)
	}
	if len(b.Draft().Rules) != 0 {
		t.Errorf("unknown kind must not commit, got %d rules", len(b.Draft().Rules))
	}
	if b.RulePanelState() != PanelClosed {
		t.Errorf("expected panel closed after silent discard, got %v", b.RulePanelState())
	}
}

func TestCancelRuleLeavesDraftUntouched(t *testing.T) {
	b := New()
	b.OpenRules()
	b.SelectRuleKind(Kind{Module: ModuleOrderTotal, Name: "Order total"})
	b.ConfigureOrderTotal(10, 20)
	b.CancelRule()

	if len(b.Draft().Rules) != 0 {
		t.Errorf("cancel must not commit, got %d rules", len(b.Draft().Rules))
	}
	if b.RulePanelState() != PanelClosed {
		t.Errorf("expected panel closed after cancel, got %v", b.RulePanelState())
	}
}

func TestDeleteRuleSemantics(t *testing.T) {
	b := New()
	for i := 0; i < 3; i++ {
		b.OpenRules()
		b.SelectRuleKind(Kind{Module: ModuleOrderTotal, Name: "Order total"})
		b.ConfigureOrderTotal(float64(i), float64(i+10))
		if err := b.SaveRule(); err != nil {
			t.Fatalf("save rule %d: %v", i, err)
		}
	}

	second := b.Draft().Rules[1].ID
	b.DeleteRule(second)
	if len(b.Draft().Rules) != 2 {
		t.Fatalf("expected 2 rules after delete, got %d", len(b.Draft().Rules))
	}
	for _, r := range b.Draft().Rules {
		if r.ID == second {
			t.Error("deleted rule still present")
		}
	}

	// Unknown id and out-of-range index are no-ops
	b.DeleteRule(uuid.New())
	b.DeleteRuleAt(5)
	b.DeleteRuleAt(-1)
	if len(b.Draft().Rules) != 2 {
		t.Errorf("no-op deletes changed the draft, got %d rules", len(b.Draft().Rules))
	}

	b.DeleteRuleAt(0)
	if len(b.Draft().Rules) != 1 {
		t.Errorf("expected 1 rule after positional delete, got %d", len(b.Draft().Rules))
	}
}

func TestActionFlowFlatPercent(t *testing.T) {
	b := New()
	b.OpenActions()
	if err := b.SelectActionKind(Kind{Module: ModuleOrderAction, Name: "Whole-order discount"}); err != nil {
		t.Fatalf("select action kind: %v", err)
	}
	if err := b.SelectCalculator(Kind{Module: CalculatorFlatPercent, Name: "Flat percent"}); err != nil {
		t.Fatalf("select calculator: %v", err)
	}

	// Amount is not settable until the preference key resolves
	if err := b.SetAmount(15); !errors.Is(err, ErrKeyUnresolved) {
		t.Fatalf("expected ErrKeyUnresolved before key set, got %v", err)
	}
	if err := b.SetCalculatorKey("percent_amount"); err != nil {
		t.Fatalf("set calculator key: %v", err)
	}
	if err := b.SetAmount(15); err != nil {
		t.Fatalf("set amount: %v", err)
	}
	if err := b.SaveAction(); err != nil {
		t.Fatalf("save action: %v", err)
	}

	actions := b.Draft().Actions
	if len(actions) != 1 {
		t.Fatalf("expected exactly 1 committed action, got %d", len(actions))
	}
	a := actions[0]
	if a.Module != ModuleOrderAction {
		t.Errorf("unexpected action module %q", a.Module)
	}
	if a.Preferences.CalculatorModule != CalculatorFlatPercent {
		t.Errorf("unexpected calculator %q", a.Preferences.CalculatorModule)
	}
	if got := a.Preferences.CalculatorPreferences["percent_amount"]; got != 15.0 {
		t.Errorf("expected percent_amount 15, got %v", got)
	}
	if b.ActionPanelState() != PanelClosed {
		t.Errorf("expected action panel closed after save, got %v", b.ActionPanelState())
	}
}

func TestSelectActionKindDropsCalculator(t *testing.T) {
	b := New()
	b.OpenActions()
	b.SelectActionKind(Kind{Module: ModuleOrderAction, Name: "Whole-order discount"})
	b.SelectCalculator(Kind{Module: CalculatorFlatRate, Name: "Flat rate"})
	b.SetCalculatorKey("amount")

	b.SelectActionKind(Kind{Module: ModuleLineItemAction, Name: "Line-item discount"})
	if b.SelectedCalculatorModule() != "" {
		t.Errorf("re-selecting the action kind must drop the calculator, got %q", b.SelectedCalculatorModule())
	}
	if b.CalculatorKey() != "" {
		t.Errorf("expected calculator key cleared, got %q", b.CalculatorKey())
	}
}

func TestSaveActionRequiresCalculatorAndKey(t *testing.T) {
	b := New()
	b.OpenActions()
	b.SelectActionKind(Kind{Module: ModuleOrderAction, Name: "Whole-order discount"})

	if err := b.SaveAction(); !errors.Is(err, ErrNoCalculator) {
		t.Errorf("expected ErrNoCalculator, got %v", err)
	}

	b.SelectCalculator(Kind{Module: CalculatorFlatRate, Name: "Flat rate"})
	if err := b.SaveAction(); !errors.Is(err, ErrKeyUnresolved) {
		t.Errorf("expected ErrKeyUnresolved, got %v", err)
	}
	if len(b.Draft().Actions) != 0 {
		t.Errorf("failed saves must not commit, got %d actions", len(b.Draft().Actions))
	}
}

func TestSaveUnknownCalculatorDiscardsSilently(t *testing.T) {
	b := New()
	b.OpenActions()
	b.SelectActionKind(Kind{Module: ModuleOrderAction, Name: "Whole-order discount"})
	b.SelectCalculator(Kind{Module: "TieredPercent", Name: "Tiered percent"})

	if err := b.SaveAction(); err != nil {
		t.Fatalf("saving an unknown calculator must not error, got %v", err)
	}
	if len(b.Draft().Actions) != 0 {
		t.Errorf("unknown calculator must not commit, got %d actions", len(b.Draft().Actions))
	}
	if b.ActionPanelState() != PanelClosed {
		t.Errorf("expected panel closed after silent discard, got %v", b.ActionPanelState())
	}
}

func TestDeleteActionSemantics(t *testing.T) {
	b := New()
	for i := 0; i < 2; i++ {
		b.OpenActions()
		b.SelectActionKind(Kind{Module: ModuleOrderAction, Name: "Whole-order discount"})
		b.SelectCalculator(Kind{Module: CalculatorFlatRate, Name: "Flat rate"})
		b.SetCalculatorKey("amount")
		b.SetAmount(float64(i + 1))
		if err := b.SaveAction(); err != nil {
			t.Fatalf("save action %d: %v", i, err)
		}
	}

	first := b.Draft().Actions[0].ID
	b.DeleteAction(first)
	if len(b.Draft().Actions) != 1 {
		t.Fatalf("expected 1 action after delete, got %d", len(b.Draft().Actions))
	}

	b.DeleteAction(uuid.New())
	b.DeleteActionAt(9)
	if len(b.Draft().Actions) != 1 {
		t.Errorf("no-op deletes changed the draft, got %d actions", len(b.Draft().Actions))
	}
}

func TestFromDraftNormalizesNilSlices(t *testing.T) {
	b := FromDraft(Draft{Code: "SAVE10"})
	d := b.Draft()
	if d.Rules == nil || d.Actions == nil {
		t.Error("expected non-nil rule and action slices")
	}
	if d.Code != "SAVE10" {
		t.Errorf("expected code preserved, got %q", d.Code)
	}
}

func TestPanelsAreIndependent(t *testing.T) {
	b := New()
	b.OpenRules()
	b.SelectRuleKind(Kind{Module: ModuleOrderTotal, Name: "Order total"})

	b.OpenActions()
	if b.RulePanelState() != PanelKindSelected {
		t.Errorf("opening the action panel must not disturb the rule panel, got %v", b.RulePanelState())
	}
	b.CancelAction()
	if b.RulePanelState() != PanelKindSelected {
		t.Errorf("cancelling an action must not disturb the rule panel, got %v", b.RulePanelState())
	}
}
