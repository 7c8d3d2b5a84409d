package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// events
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Title       string  `gorm:"type:varchar(255);not null;index"`
	Description string  `gorm:"type:text"`
	NbPlaces    int64   `gorm:"not null"`
	Price       float64 `gorm:"not null;default:0"`

	ProfileID uuid.UUID `gorm:"type:uuid;not null;index"`

	// Denormalized counters maintained inline by like/comment mutations.
	NbLikes    int64 `gorm:"not null;default:0"`
	NbComments int64 `gorm:"not null;default:0"`

	Date           time.Time `gorm:"not null"`
	ClotureBillets time.Time `gorm:"not null"`

	AddressID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Profile  *Profile       `gorm:"foreignKey:ProfileID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Address  *Address       `gorm:"foreignKey:AddressID;references:ID"`
	Pictures []EventPicture `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Types    []Type         `gorm:"many2many:event_types;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (e *Event) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// addresses — owned 1:1 by an event, deleted with it.
type Address struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Street  string `gorm:"type:varchar(255)"`
	Number  string `gorm:"type:varchar(32)"`
	City    string `gorm:"type:varchar(255)"`
	Zipcode string `gorm:"type:varchar(32)"`
	Country string `gorm:"type:varchar(255)"`
}

func (a *Address) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// event_pictures — owned list, cascade-deleted with the event.
type EventPicture struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventID uuid.UUID `gorm:"type:uuid;not null;index"`
	Photo   string    `gorm:"type:text;not null"`
}

func (p *EventPicture) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// types — shared reference data, never cascade-deleted.
type Type struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(64);not null;uniqueIndex"`

	Events []Event `gorm:"many2many:event_types"`
}
