package upstream

import (
	"context"

	"storefront-admin/promotion"
)

// ProductSummary is one product eligible for the product-membership rule.
type ProductSummary struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
}

// ListRuleKinds fetches the catalog of selectable rule types.
func (c *Client) ListRuleKinds(ctx context.Context) ([]promotion.Kind, error) {
	return c.listKinds(ctx, RuleKindsPath)
}

// ListActionKinds fetches the catalog of selectable action types.
func (c *Client) ListActionKinds(ctx context.Context) ([]promotion.Kind, error) {
	return c.listKinds(ctx, ActionKindsPath)
}

// ListCalculatorKinds fetches the catalog of selectable calculators.
func (c *Client) ListCalculatorKinds(ctx context.Context) ([]promotion.Kind, error) {
	return c.listKinds(ctx, CalculatorKindsPath)
}

func (c *Client) listKinds(ctx context.Context, path string) ([]promotion.Kind, error) {
	var envelope struct {
		Data []promotion.Kind `json:"data"`
	}
	if err := c.get(ctx, path, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// ListProducts fetches the products eligible for set-based rules.
func (c *Client) ListProducts(ctx context.Context) ([]ProductSummary, error) {
	var body struct {
		Products []ProductSummary `json:"products"`
	}
	if err := c.get(ctx, ProductsPath, &body); err != nil {
		return nil, err
	}
	return body.Products, nil
}

// ResolveRulePreferenceSchema notifies the backend of the selected rule
// kind. The response carries nothing the builder needs, so only the error is
// surfaced.
func (c *Client) ResolveRulePreferenceSchema(ctx context.Context, module string) error {
	body := map[string]string{"rule": module}
	return c.post(ctx, RulePreferencesPath, body, nil)
}

// ResolveCalculatorPreferenceSchema asks the backend which single preference
// key the chosen calculator expects (for example "amount" or
// "percent_amount").
func (c *Client) ResolveCalculatorPreferenceSchema(ctx context.Context, module string) (string, error) {
	body := map[string]string{"calculator": module}
	var envelope struct {
		Data struct {
			Key string `json:"key"`
		} `json:"data"`
	}
	if err := c.post(ctx, CalculatorPreferencesPath, body, &envelope); err != nil {
		return "", err
	}
	return envelope.Data.Key, nil
}
