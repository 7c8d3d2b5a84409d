package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// likes — unique per (profile, event); existence is boolean.
type Like struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	ProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_profile_event"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_profile_event;index"`

	CreatedAt time.Time `gorm:"not null"`
}

func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
