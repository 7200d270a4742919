package handlers

import (
	"net/http"

	"storefront-admin/catalog"
	"storefront-admin/models"
	"storefront-admin/promotion"
	"storefront-admin/session"
	"storefront-admin/upstream"
	"storefront-admin/views"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type PromotionHandler struct {
	DB       *gorm.DB
	Client   *upstream.Client
	List     *views.PromotionList
	Sessions *session.Store
	Log      zerolog.Logger
}

// ListPromotions refreshes the list view from the commerce API and returns
// the snapshot.
func (h *PromotionHandler) ListPromotions(c *gin.Context) {
	if err := h.List.Refresh(c.Request.Context()); err != nil {
		h.Log.Error().Err(err).Msg("promotion list refresh failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch promotions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.List.Items()})
}

// ArchivePromotion removes the row from the list view immediately and fires
// the upstream archive call. The response does not wait for, or report, the
// upstream outcome; a failed archive resurfaces on the next list refresh.
func (h *PromotionHandler) ArchivePromotion(c *gin.Context) {
	id := c.Param("id")

	h.List.Archive(c.Request.Context(), id)
	h.recordAudit(c, "archive", id, "", "accepted")

	c.JSON(http.StatusOK, gin.H{"message": "Promotion archived"})
}

// EditPromotion fetches a promotion for editing and opens a builder session
// pre-populated with it.
func (h *PromotionHandler) EditPromotion(c *gin.Context) {
	id := c.Param("id")

	draft, err := h.List.EditDraft(c.Request.Context(), id)
	if err != nil {
		if apiErr, ok := upstream.AsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Promotion not found"})
			return
		}
		h.Log.Error().Err(err).Str("promotion_id", id).Msg("edit fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch promotion"})
		return
	}

	b := promotion.FromDraft(draft)
	sess := h.Sessions.Create(currentUserID(c), b, catalog.NewLoader(h.Client, h.Log), id)
	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"draft":      draftResponse(sess.Builder.Draft()),
	})
}

// ListAuditEntries returns the most recent admin actions.
func (h *PromotionHandler) ListAuditEntries(c *gin.Context) {
	var entries []models.AuditEntry
	if err := h.DB.Order("created_at DESC").Limit(100).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit log"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (h *PromotionHandler) recordAudit(c *gin.Context, action, promotionID, code, outcome string) {
	entry := models.AuditEntry{
		UserID:        currentUserID(c),
		Action:        action,
		PromotionID:   promotionID,
		PromotionCode: code,
		Outcome:       outcome,
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		h.Log.Error().Err(err).Str("action", action).Msg("audit write failed")
	}
}
