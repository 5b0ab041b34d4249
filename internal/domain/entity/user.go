package entity

import "time"

// Role controls which operations a user may perform.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// User is an application account. Employees double as reimbursement
// requestors; admins run the finance side.
// PasswordHash is never serialized in API responses.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Position     string    `json:"position"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	PhotoRef     string    `json:"photo_ref,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
