package models

// Role is the access tier of a user. Students own and submit complaints,
// admins triage all of them.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// UserRole assigns a role to a user. UserID is the primary key, so the
// schema itself enforces one role per user.
type UserRole struct {
	UserID string `gorm:"primaryKey" json:"user_id"`
	Role   Role   `gorm:"type:text;not null" json:"role"`
}
