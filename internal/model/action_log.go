package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit log levels.
type LogLevel string

const (
	LogLevelInfo     LogLevel = "info"
	LogLevelWarning  LogLevel = "warning"
	LogLevelError    LogLevel = "error"
	LogLevelCritical LogLevel = "critical"
)

// Audited action types.
type ActionType string

const (
	ActionEventRegistered    ActionType = "event_registered"
	ActionRegistrationPurged ActionType = "registration_purged"
	ActionCommentDeleted     ActionType = "comment_deleted"
	ActionEventDeleted       ActionType = "event_deleted"
	ActionUserDeleted        ActionType = "user_deleted"
	ActionSignalDismissed    ActionType = "signal_dismissed"
	ActionSignalBanned       ActionType = "signal_banned"
	ActionUserBanned         ActionType = "user_banned"
)

// action_logs — audit trail of moderation and registration milestones.
// ActorID is nulled when the acting user is later deleted.
type ActionLog struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	ActorID *uuid.UUID `gorm:"type:uuid;index"`

	LogType    LogLevel   `gorm:"type:varchar(16);not null;index"`
	ActionType ActionType `gorm:"type:varchar(32);not null;index"`

	Description string         `gorm:"type:text"`
	Details     datatypes.JSON `gorm:"type:jsonb"`

	Date time.Time `gorm:"not null;index"`
}

func (l *ActionLog) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
