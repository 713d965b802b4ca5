package models

import (
	"time"
)

// Role is a user's authorization level. Only Admin and Staff may enter the
// admin area.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleStaff    Role = "Staff"
	RoleCustomer Role = "Customer"
)

// IsValidRole reports whether r is a known role
func IsValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleStaff || r == RoleCustomer
}

// UserStatus marks an account active or disabled
type UserStatus string

const (
	UserStatusActive   UserStatus = "Active"
	UserStatusInactive UserStatus = "Inactive"
)

// IsValidUserStatus reports whether s is a known user status
func IsValidUserStatus(s UserStatus) bool {
	return s == UserStatusActive || s == UserStatusInactive
}

// User is an admin/staff/customer account. Email is unique across all
// users. IsFirstLogin starts true and is cleared exactly once by the first
// password reset.
type User struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         Role       `db:"role" json:"role"`
	Status       UserStatus `db:"status" json:"status"`
	IsFirstLogin bool       `db:"is_first_login" json:"isFirstLogin"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// NewUser creates a user in the freshly provisioned state
func NewUser(name, email, passwordHash string, role Role, status UserStatus) *User {
	now := GetCurrentTime()

	return &User{
		ID:           GenerateID("usr"),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       status,
		IsFirstLogin: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
