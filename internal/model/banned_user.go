package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// banned_users — keyed by email so the ban survives account deletion.
type BannedUser struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	BannedEmail   string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	BannedByEmail string    `gorm:"type:varchar(255)"`
	BannedAt      time.Time `gorm:"not null"`
}

func (b *BannedUser) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
