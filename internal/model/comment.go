package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// comments
type Comment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Content   string    `gorm:"type:text;not null"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null;index"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index"`

	CreatedAt time.Time `gorm:"not null"`

	Profile *Profile `gorm:"foreignKey:ProfileID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Event   *Event   `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
