package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentStatus tracks the payment side of a registration.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
	PaymentStatusFree    PaymentStatus = "free"
)

// registrations — unique per (profile, event).
type Registration struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	ProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_profile_event"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_profile_event;index"`

	RegisteredAt  time.Time     `gorm:"not null"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(16);not null;default:'pending'"`
}

func (r *Registration) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
