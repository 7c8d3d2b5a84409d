package model

// Role codes. A user holds exactly one role.
const (
	RoleUser       = "ROLE_USER"
	RoleAdmin      = "ROLE_ADMIN"
	RoleSuperAdmin = "ROLE_SUPER_ADMIN"
)

// roles
type Role struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(32);not null;uniqueIndex"`
}

// IsAdminRole reports whether the role code grants moderation rights.
func IsAdminRole(name string) bool {
	return name == RoleAdmin || name == RoleSuperAdmin
}
