package handlers

import (
	"net/http"
	"time"

	"storefront-admin/catalog"
	"storefront-admin/models"
	"storefront-admin/promotion"
	"storefront-admin/session"
	"storefront-admin/upstream"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type BuilderHandler struct {
	DB       *gorm.DB
	Client   *upstream.Client
	Sessions *session.Store
	Log      zerolog.Logger
}

// StartSession opens a fresh builder session around an empty draft.
func (h *BuilderHandler) StartSession(c *gin.Context) {
	sess := h.Sessions.Create(currentUserID(c), promotion.New(), catalog.NewLoader(h.Client, h.Log), "")
	c.JSON(http.StatusCreated, gin.H{
		"session_id": sess.ID,
		"draft":      draftResponse(sess.Builder.Draft()),
	})
}

// GetSession returns the session's draft and panel states.
func (h *BuilderHandler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"session_id":         sess.ID,
		"draft":              draftResponse(sess.Builder.Draft()),
		"rule_panel_state":   sess.Builder.RulePanelState().String(),
		"action_panel_state": sess.Builder.ActionPanelState().String(),
	})
}

// DiscardSession drops the session and its draft without submitting.
func (h *BuilderHandler) DiscardSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.Sessions.Delete(sess.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Session discarded"})
}

// SetFields updates the draft's top-level fields. Only the fields present in
// the request body change; usage_count is not accepted here or anywhere else.
func (h *BuilderHandler) SetFields(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Code        *string    `json:"code"`
		Name        *string    `json:"name"`
		Description *string    `json:"description"`
		StartsAt    *time.Time `json:"starts_at"`
		ExpiresAt   *time.Time `json:"expires_at"`
		UsageLimit  *int       `json:"usage_limit"`
		Active      *bool      `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	draft := sess.Builder.Draft()
	if req.Code != nil {
		draft.Code = *req.Code
	}
	if req.Name != nil {
		draft.Name = *req.Name
	}
	if req.Description != nil {
		draft.Description = *req.Description
	}
	if req.StartsAt != nil {
		draft.StartsAt = req.StartsAt
	}
	if req.ExpiresAt != nil {
		draft.ExpiresAt = req.ExpiresAt
	}
	if req.UsageLimit != nil {
		draft.UsageLimit = req.UsageLimit
	}
	if req.Active != nil {
		draft.Active = *req.Active
	}

	c.JSON(http.StatusOK, gin.H{"draft": draftResponse(draft)})
}

// ---- rule panel ----

// OpenRulePanel expands the rule panel and returns the catalogs its sub-forms
// need. Catalogs load once per session; an unreachable catalog comes back
// empty rather than failing the request.
func (h *BuilderHandler) OpenRulePanel(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()

	sess.Catalog.EnsureLoaded(c.Request.Context())
	sess.Builder.OpenRules()

	c.JSON(http.StatusOK, gin.H{
		"rule_kinds": kindsOrEmpty(sess.Catalog.RuleKinds()),
		"products":   productsOrEmpty(sess.Catalog.Products()),
	})
}

// SelectRuleKind picks the rule type for the in-progress rule and fires the
// backend's preference-schema fetch for it, as the form does on selection.
func (h *BuilderHandler) SelectRuleKind(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Module string `json:"module" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "module is required"})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	kind, found := sess.Catalog.FindKind(req.Module)
	if !found {
		kind = promotion.Kind{Module: req.Module}
	}
	if err := sess.Builder.SelectRuleKind(kind); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	// The schema response carries nothing the builder needs; the fetch
	// mirrors the form's behavior and failures only get logged.
	if err := h.Client.ResolveRulePreferenceSchema(c.Request.Context(), req.Module); err != nil {
		h.Log.Warn().Err(err).Str("module", req.Module).Msg("rule preference schema fetch failed")
	}

	c.JSON(http.StatusOK, gin.H{"rule_panel_state": sess.Builder.RulePanelState().String()})
}

// ConfigureRule fills the sub-form for the selected rule kind. The accepted
// fields depend on which kind is selected.
func (h *BuilderHandler) ConfigureRule(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		LowerRange  *float64              `json:"lower_range"`
		UpperRange  *float64              `json:"upper_range"`
		ProductIDs  []int64               `json:"product_ids"`
		MatchPolicy promotion.MatchPolicy `json:"match_policy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	var err error
	switch sess.Builder.SelectedRuleModule() {
	case promotion.ModuleOrderTotal:
		if req.LowerRange == nil || req.UpperRange == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lower_range and upper_range are required"})
			return
		}
		err = sess.Builder.ConfigureOrderTotal(*req.LowerRange, *req.UpperRange)
	case promotion.ModuleProduct:
		err = sess.Builder.ConfigureProducts(req.ProductIDs, req.MatchPolicy)
	case "":
		c.JSON(http.StatusConflict, gin.H{"error": promotion.ErrNoKindSelected.Error()})
		return
	default:
		// Kinds without a sub-form accept no configuration; saving them
		// discards silently.
		c.JSON(http.StatusOK, gin.H{"rule_panel_state": sess.Builder.RulePanelState().String()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rule_panel_state": sess.Builder.RulePanelState().String()})
}

// SaveRule commits the in-progress rule onto the draft.
func (h *BuilderHandler) SaveRule(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()

	if err := sess.Builder.SaveRule(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draftResponse(sess.Builder.Draft())})
}

// CancelRule discards the in-progress rule; the draft is untouched.
func (h *BuilderHandler) CancelRule(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()

	sess.Builder.CancelRule()
	c.JSON(http.StatusOK, gin.H{"draft": draftResponse(sess.Builder.Draft())})
}

// DeleteRule removes a committed rule from the draft. An unknown rule id is
// ignored, so deletes are idempotent.
func (h *BuilderHandler) DeleteRule(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	ruleID, err := uuid.Parse(c.Param("ruleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule ID"})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	sess.Builder.DeleteRule(ruleID)
	c.JSON(http.StatusOK, gin.H{"draft": draftResponse(sess.Builder.Draft())})
}

// ---- action panel ----

// OpenActionPanel expands the action panel and returns the action and
// calculator catalogs.
func (h *BuilderHandler) OpenActionPanel(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()

	sess.Catalog.EnsureLoaded(c.Request.Context())
	sess.Builder.OpenActions()

	c.JSON(http.StatusOK, gin.H{
		"action_kinds":     kindsOrEmpty(sess.Catalog.ActionKinds()),
		"calculator_kinds": kindsOrEmpty(sess.Catalog.CalculatorKinds()),
	})
}

// SelectActionKind picks the action type. Any calculator choice already made
// is dropped.
func (h *BuilderHandler) SelectActionKind(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Module string `json:"module" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "module is required"})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	kind, found := sess.Catalog.FindKind(req.Module)
	if !found {
		kind = promotion.Kind{Module: req.Module}
	}
	if err := sess.Builder.SelectActionKind(kind); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"action_panel_state": sess.Builder.ActionPanelState().String()})
}

// SelectCalculator picks the value calculator and resolves its preference key
// from the backend. When resolution fails the key stays unresolved and the
// amount field is not offered; selecting again retries.
func (h *BuilderHandler) SelectCalculator(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Module string `json:"module" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "module is required"})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	kind, found := sess.Catalog.FindKind(req.Module)
	if !found {
		kind = promotion.Kind{Module: req.Module}
	}
	if err := sess.Builder.SelectCalculator(kind); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	key, err := sess.Catalog.ResolveCalculatorKey(c.Request.Context(), req.Module)
	if err != nil {
		h.Log.Warn().Err(err).Str("module", req.Module).Msg("calculator preference key unresolved")
		c.JSON(http.StatusOK, gin.H{
			"action_panel_state": sess.Builder.ActionPanelState().String(),
		})
		return
	}
	if err := sess.Builder.SetCalculatorKey(key); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"action_panel_state": sess.Builder.ActionPanelState().String(),
		"preference_key":     key,
	})
}

// SetAmount fills the calculator's single preference value. It is rejected
// while the preference key is unresolved.
func (h *BuilderHandler) SetAmount(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Value *float64 `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	if err := sess.Builder.SetAmount(*req.Value); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"action_panel_state": sess.Builder.ActionPanelState().String()})
}

// SaveAction commits the in-progress action onto the draft.
func (h *BuilderHandler) SaveAction(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()

	if err := sess.Builder.SaveAction(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draftResponse(sess.Builder.Draft())})
}

// CancelAction discards the in-progress action.
func (h *BuilderHandler) CancelAction(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()

	sess.Builder.CancelAction()
	c.JSON(http.StatusOK, gin.H{"draft": draftResponse(sess.Builder.Draft())})
}

// DeleteAction removes a committed action from the draft.
func (h *BuilderHandler) DeleteAction(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	actionID, err := uuid.Parse(c.Param("actionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action ID"})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	sess.Builder.DeleteAction(actionID)
	c.JSON(http.StatusOK, gin.H{"draft": draftResponse(sess.Builder.Draft())})
}

// ---- submit ----

// Submit serializes the draft and sends it to the commerce API: a create for
// new drafts, a full replace for edits. Validation rejections come back as
// 422 with the backend's field errors verbatim and the session stays open so
// the admin can fix and resubmit. Transport failures leave the draft
// untouched too.
func (h *BuilderHandler) Submit(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()

	draft := sess.Builder.Draft()
	payload := promotion.Serialize(draft)

	var err error
	action := "create"
	if sess.PromotionID != "" {
		action = "update"
		err = h.Client.UpdatePromotion(c.Request.Context(), sess.PromotionID, payload)
	} else {
		err = h.Client.CreatePromotion(c.Request.Context(), payload)
	}

	if err != nil {
		if apiErr, apiOK := upstream.AsAPIError(err); apiOK && apiErr.IsValidation() {
			h.recordSubmitAudit(c, action, sess.PromotionID, draft.Code, "rejected")
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": apiErr.Errors})
			return
		}
		h.Log.Error().Err(err).Str("action", action).Msg("promotion submit failed")
		h.recordSubmitAudit(c, action, sess.PromotionID, draft.Code, "failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to submit promotion"})
		return
	}

	h.recordSubmitAudit(c, action, sess.PromotionID, draft.Code, "accepted")
	h.Sessions.Delete(sess.ID)

	status := http.StatusCreated
	if action == "update" {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"message": "Promotion submitted"})
}

func (h *BuilderHandler) recordSubmitAudit(c *gin.Context, action, promotionID, code, outcome string) {
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

// session resolves the :id path param to a live session, writing the error
// response itself when it cannot.
func (h *BuilderHandler) session(c *gin.Context) (*session.Session, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
		return nil, false
	}
	sess, exists := h.Sessions.Get(id)
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	return sess, true
}

// draftResponse renders a draft with the locally generated instance ids the
// delete endpoints take. The wire payload sent upstream never includes them.
func draftResponse(d *promotion.Draft) gin.H {
	rules := make([]gin.H, 0, len(d.Rules))
	for _, r := range d.Rules {
		rules = append(rules, gin.H{
			"id":          r.ID,
			"name":        r.Name,
			"module":      r.Module,
			"preferences": r.Preferences,
		})
	}
	actions := make([]gin.H, 0, len(d.Actions))
	for _, a := range d.Actions {
		actions = append(actions, gin.H{
			"id":          a.ID,
			"name":        a.Name,
			"module":      a.Module,
			"preferences": a.Preferences,
		})
	}
	return gin.H{
		"id":          d.ID,
		"code":        d.Code,
		"name":        d.Name,
		"description": d.Description,
		"starts_at":   d.StartsAt,
		"expires_at":  d.ExpiresAt,
		"usage_limit": d.UsageLimit,
		"usage_count": d.UsageCount,
		"active":      d.Active,
		"rules":       rules,
		"actions":     actions,
	}
}

func kindsOrEmpty(kinds []promotion.Kind) []promotion.Kind {
	if kinds == nil {
		return []promotion.Kind{}
	}
	return kinds
}

func productsOrEmpty(products []upstream.ProductSummary) []upstream.ProductSummary {
	if products == nil {
		return []upstream.ProductSummary{}
	}
	return products
}
