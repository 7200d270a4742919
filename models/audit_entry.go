package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditEntry records one admin action against the upstream commerce API.
// Drafts themselves are never persisted; only the outcome of a submit or
// archive lands here.
type AuditEntry struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Action        string    `gorm:"not null" json:"action"` // create, update, archive
	PromotionID   string    `json:"promotion_id"`
	PromotionCode string    `json:"promotion_code"`
	Outcome       string    `gorm:"not null" json:"outcome"` // accepted, rejected, failed
	CreatedAt     time.Time `json:"created_at"`
}

func (a *AuditEntry) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
