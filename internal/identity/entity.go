// AngelaMos | 2026
// entity.go

package identity

import (
	"time"
)

// Role is the single access level attached to a user. The three levels are
// strictly ordered: viewer < staff < admin. Writes need staff, deletes need
// admin.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleViewer || r == RoleStaff || r == RoleAdmin
}

func (r Role) CanWrite() bool {
	return r == RoleStaff || r == RoleAdmin
}

func (r Role) CanDelete() bool {
	return r == RoleAdmin
}

// ParseRole maps unknown values to viewer. Least privilege: an identity with
// an unresolvable role must never gain write access by accident.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleStaff:
		return RoleStaff
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleViewer
	}
}

type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Name         string     `db:"name"`
	Role         Role       `db:"role"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
