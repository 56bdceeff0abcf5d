package models

import "time"

// User roles.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is an account in the identity store. The engine only consumes the
// ID and Role; credential handling lives in the user service.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null;default:USER" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user carries the ADMIN role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
