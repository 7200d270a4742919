package views

import (
	"context"
	"sync"

	"storefront-admin/promotion"
	"storefront-admin/upstream"

	"github.com/rs/zerolog"
)

// PromotionList is the list view's state: a snapshot of the promotions the
// admin is looking at. Archiving removes the row from the snapshot before
// the backend call resolves and performs no rollback on failure; the row
// reappears on the next Refresh if the archive did not stick. That
// non-atomic behavior is deliberate.
type PromotionList struct {
	client *upstream.Client
	log    zerolog.Logger

	mu    sync.Mutex
	items []upstream.PromotionSummary
}

// NewPromotionList returns an empty list view backed by the given client.
func NewPromotionList(client *upstream.Client, log zerolog.Logger) *PromotionList {
	return &PromotionList{client: client, log: log}
}

// Refresh replaces the snapshot with the server's current promotion list. On
// failure the previous snapshot is kept unchanged.
func (v *PromotionList) Refresh(ctx context.Context) error {
	items, err := v.client.ListPromotions(ctx)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.items = items
	v.mu.Unlock()
	return nil
}

// Items returns the current snapshot.
func (v *PromotionList) Items() []upstream.PromotionSummary {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.items == nil {
		return []upstream.PromotionSummary{}
	}
	return v.items
}

// Archive optimistically drops the promotion from the snapshot, then issues
// the archive call. Failures are logged and otherwise ignored.
func (v *PromotionList) Archive(ctx context.Context, id string) {
	v.mu.Lock()
	for i, item := range v.items {
		if item.ID == id {
			v.items = append(v.items[:i], v.items[i+1:]...)
			break
		}
	}
	v.mu.Unlock()

	if err := v.client.ArchivePromotion(ctx, id); err != nil {
		v.log.Error().Err(err).Str("promotion_id", id).Msg("archive did not stick")
	}
}

// EditDraft fetches the server representation of a promotion and hands back
// a draft pre-populated for the builder.
func (v *PromotionList) EditDraft(ctx context.Context, id string) (promotion.Draft, error) {
	resp, err := v.client.GetPromotionForEdit(ctx, id)
	if err != nil {
		return promotion.Draft{}, err
	}
	return promotion.Deserialize(resp)
}
