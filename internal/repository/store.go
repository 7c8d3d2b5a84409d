package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// Store bundles every repository over one gorm handle. Cascade operations
// build a Store around a transaction so all steps commit or roll back as one.
type Store struct {
	Users            UserRepository
	Roles            RoleRepository
	Profiles         ProfileRepository
	Events           EventRepository
	Addresses        AddressRepository
	Types            TypeRepository
	Comments         CommentRepository
	Likes            LikeRepository
	Registrations    RegistrationRepository
	Payments         PaymentRepository
	SignaledUsers    SignaledUserRepository
	SignaledComments SignaledCommentRepository
	SignaledEvents   SignaledEventRepository
	BannedUsers      BannedUserRepository
	Reasons          ReasonRepository
	ActionLogs       ActionLogRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		Users:            NewGormUserRepository(db),
		Roles:            NewGormRoleRepository(db),
		Profiles:         NewGormProfileRepository(db),
		Events:           NewGormEventRepository(db),
		Addresses:        NewGormAddressRepository(db),
		Types:            NewGormTypeRepository(db),
		Comments:         NewGormCommentRepository(db),
		Likes:            NewGormLikeRepository(db),
		Registrations:    NewGormRegistrationRepository(db),
		Payments:         NewGormPaymentRepository(db),
		SignaledUsers:    NewGormSignaledUserRepository(db),
		SignaledComments: NewGormSignaledCommentRepository(db),
		SignaledEvents:   NewGormSignaledEventRepository(db),
		BannedUsers:      NewGormBannedUserRepository(db),
		Reasons:          NewGormReasonRepository(db),
		ActionLogs:       NewGormActionLogRepository(db),
	}
}

// flooredAdd builds a column update that adds delta but never goes below zero.
// CASE WHEN keeps it portable across postgres and the sqlite used in tests.
func flooredAdd(column string, delta int64) any {
	expr := fmt.Sprintf("CASE WHEN %s + ? < 0 THEN 0 ELSE %s + ? END", column, column)
	return gorm.Expr(expr, delta, delta)
}
