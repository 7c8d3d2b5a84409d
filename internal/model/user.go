package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// users
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	PhoneNumber  string `gorm:"type:varchar(32)"`
	IsPlanner    bool   `gorm:"not null;default:false"`
	IsVerified   bool   `gorm:"not null;default:false"`

	RoleID int64 `gorm:"not null;index"`

	// Connected account id at the payment gateway; empty until onboarding completes.
	GatewayAccountID string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"not null"`

	Role    *Role    `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
