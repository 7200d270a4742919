package promotion

// Module identifiers the builder knows how to configure. The server catalogs
// are the source of truth and may list kinds the builder has no sub-form for;
// those select fine but save as a silent no-op.
const (
	ModuleOrderTotal     = "OrderTotal"
	ModuleProduct        = "Product"
	ModuleOrderAction    = "OrderAction"
	ModuleLineItemAction = "LineItemAction"

	CalculatorFlatRate    = "FlatRate"
	CalculatorFlatPercent = "FlatPercent"
)

// ruleConfig is the typed sub-form for one rule kind. Implementations are a
// closed set dispatched over the rule's module identifier.
type ruleConfig interface {
	preferences() map[string]interface{}
}

// OrderTotalConfig configures the order-total-in-range rule.
type OrderTotalConfig struct {
	LowerRange float64
	UpperRange float64
}

func (c OrderTotalConfig) preferences() map[string]interface{} {
	return map[string]interface{}{
		"lower_range": c.LowerRange,
		"upper_range": c.UpperRange,
	}
}

// ProductConfig configures the product-membership rule.
type ProductConfig struct {
	ProductIDs  []int64
	MatchPolicy MatchPolicy
}

func (c ProductConfig) preferences() map[string]interface{} {
	return map[string]interface{}{
		"product_ids":  c.ProductIDs,
		"match_policy": string(c.MatchPolicy),
	}
}

// KnownRuleModule reports whether the builder renders a sub-form for the
// given rule module.
func KnownRuleModule(module string) bool {
	return module == ModuleOrderTotal || module == ModuleProduct
}

// KnownActionModule reports whether the builder renders a sub-form for the
// given action module.
func KnownActionModule(module string) bool {
	return module == ModuleOrderAction || module == ModuleLineItemAction
}

// KnownCalculatorModule reports whether the builder renders an amount entry
// for the given calculator module.
func KnownCalculatorModule(module string) bool {
	return module == CalculatorFlatRate || module == CalculatorFlatPercent
}
