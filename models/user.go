package models

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleAuthor UserRole = "author"
	RoleAdmin  UserRole = "admin"
)

type User struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Username  string    `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      UserRole  `json:"role" gorm:"type:varchar(20);default:'author'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity is the caller of an operation as established by the auth
// middleware. The zero value is an anonymous caller.
type Identity struct {
	UserID   uint     `json:"user_id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != 0 && i.Username != ""
}

func (i Identity) IsInRole(role UserRole) bool {
	return i.IsAuthenticated() && strings.EqualFold(string(i.Role), string(role))
}

func (i Identity) IsAdmin() bool {
	return i.IsInRole(RoleAdmin)
}
