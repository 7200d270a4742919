package upstream

import (
	"context"
	"fmt"
	"time"

	"storefront-admin/promotion"
)

// PromotionSummary is one row of the promotion list.
type PromotionSummary struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	StartsAt   *time.Time `json:"starts_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	UsageCount int        `json:"usage_count"`
	UsageLimit *int       `json:"usage_limit"`
	Active     bool       `json:"active"`
}

// ListPromotions fetches all promotions. The endpoint is unpaginated.
func (c *Client) ListPromotions(ctx context.Context) ([]PromotionSummary, error) {
	var envelope struct {
		Data []PromotionSummary `json:"data"`
	}
	if err := c.get(ctx, PromotionsPath, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// CreatePromotion posts a new promotion document.
func (c *Client) CreatePromotion(ctx context.Context, payload promotion.PromotionPayload) error {
	return c.post(ctx, PromotionsPath, payload, nil)
}

// UpdatePromotion replaces an existing promotion document.
func (c *Client) UpdatePromotion(ctx context.Context, id string, payload promotion.PromotionPayload) error {
	return c.put(ctx, fmt.Sprintf(PromotionPathFmt, id), payload, nil)
}

// ArchivePromotion archives the promotion with the given id.
func (c *Client) ArchivePromotion(ctx context.Context, id string) error {
	return c.put(ctx, fmt.Sprintf(PromotionArchivePathFmt, id), nil, nil)
}

// GetPromotionForEdit fetches the server representation of a promotion,
// including the nested rule and action preference encodings.
func (c *Client) GetPromotionForEdit(ctx context.Context, id string) (promotion.EditResponse, error) {
	var envelope struct {
		Data promotion.EditResponse `json:"data"`
	}
	if err := c.get(ctx, fmt.Sprintf(PromotionEditPathFmt, id), &envelope); err != nil {
		return promotion.EditResponse{}, err
	}
	return envelope.Data, nil
}
