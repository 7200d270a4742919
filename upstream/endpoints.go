package upstream

// Commerce API paths. The archive endpoint lives under the short /api/promo
// prefix, unlike the rest of the promotion routes.
const (
	PromotionsPath            = "/api/promotions/"
	PromotionPathFmt          = "/api/promotions/%s"
	PromotionEditPathFmt      = "/api/promotions/%s/edit"
	PromotionArchivePathFmt   = "/api/promo/%s/archive"
	RuleKindsPath             = "/api/promo-rules"
	ActionKindsPath           = "/api/promo-actions"
	CalculatorKindsPath       = "/api/promo-calculators"
	RulePreferencesPath       = "/api/promo-rule-prefs"
	CalculatorPreferencesPath = "/api/promo-calc-prefs"
	ProductsPath              = "/api/products"
)
