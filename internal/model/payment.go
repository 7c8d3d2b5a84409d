package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// payments — authoritative record for a paid registration once the gateway
// webhook has fired. Emails and title are copied at creation so the row
// stays meaningful after the referenced entities are deleted.
type Payment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventID    *uuid.UUID `gorm:"type:uuid;index"`
	EventTitle string     `gorm:"type:varchar(255);not null"`

	BuyerID    *uuid.UUID `gorm:"type:uuid;index"`
	BuyerEmail string     `gorm:"type:varchar(255);not null"`

	OrganizerID    *uuid.UUID `gorm:"type:uuid;index"`
	OrganizerEmail string     `gorm:"type:varchar(255);not null"`

	// Net amount for the organizer, platform fee, and gross price.
	Amount     float64 `gorm:"not null"`
	Fee        float64 `gorm:"not null"`
	BrutAmount float64 `gorm:"not null"`

	SessionID       string `gorm:"type:varchar(255);not null;index"`
	PaymentIntentID string `gorm:"type:varchar(255)"`

	Status PaymentStatus `gorm:"type:varchar(16);not null;default:'pending'"`

	CreatedAt time.Time `gorm:"not null"`
}

func (p *Payment) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
