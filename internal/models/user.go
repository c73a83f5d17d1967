package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values assigned to users.
const (
	RoleMember = "MEMBER"
	RoleLeader = "LEADER"
	RoleAdmin  = "ADMIN"
)

// User represents a registered account.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Role         string    `gorm:"size:16;not null;default:MEMBER" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
