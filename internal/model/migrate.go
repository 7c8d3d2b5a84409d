package model

import "gorm.io/gorm"

// AutoMigrate creates or updates the schema for every persisted entity.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Role{},
		&User{},
		&Profile{},
		&Address{},
		&Type{},
		&Event{},
		&EventPicture{},
		&Comment{},
		&Like{},
		&Registration{},
		&Payment{},
		&Reason{},
		&SignaledUser{},
		&SignaledComment{},
		&SignaledEvent{},
		&BannedUser{},
		&ActionLog{},
	)
}
