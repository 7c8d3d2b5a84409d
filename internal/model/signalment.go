package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SignalStatusPending is the initial status of every signalment. Admins may
// set any status string afterwards; the signalment is consumed (deleted) by a
// dismiss-or-ban decision.
const SignalStatusPending = "pending"

// signaled_users — a report filed by ReporterID against UserID.
type SignaledUser struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ReporterID uuid.UUID `gorm:"type:uuid;not null;index"`
	ReasonID   int64     `gorm:"not null"`

	Status    string    `gorm:"type:varchar(64);not null;default:'pending'"`
	CreatedAt time.Time `gorm:"not null"`

	Reason *Reason `gorm:"foreignKey:ReasonID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (s *SignaledUser) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// signaled_comments
type SignaledComment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	CommentID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ReporterID uuid.UUID `gorm:"type:uuid;not null;index"`
	ReasonID   int64     `gorm:"not null"`

	Status    string    `gorm:"type:varchar(64);not null;default:'pending'"`
	CreatedAt time.Time `gorm:"not null"`

	Reason *Reason `gorm:"foreignKey:ReasonID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (s *SignaledComment) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// signaled_events
type SignaledEvent struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ReporterID uuid.UUID `gorm:"type:uuid;not null;index"`
	ReasonID   int64     `gorm:"not null"`

	Status    string    `gorm:"type:varchar(64);not null;default:'pending'"`
	CreatedAt time.Time `gorm:"not null"`

	Reason *Reason `gorm:"foreignKey:ReasonID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (s *SignaledEvent) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
