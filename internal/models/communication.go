package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Comment is attached to a scripture passage inside a session. ParentID forms
// a reply tree capped at two levels; a reply must reference a comment on the
// same passage.
type Comment struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	SessionID   string    `gorm:"size:36;index;not null" json:"session_id"`
	PassageID   string    `gorm:"size:36;index;not null" json:"passage_id"`
	UserID      string    `gorm:"size:36;index;not null" json:"user_id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	VerseNumber *int      `json:"verse_number,omitempty"`
	ParentID    *string   `gorm:"size:36;index" json:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ChatMessage is a live message inside a session room.
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	SessionID string    `gorm:"size:36;index;not null" json:"session_id"`
	UserID    string    `gorm:"size:36;index;not null" json:"user_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// GroupChatMessage is a live message inside a group room.
type GroupChatMessage struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	GroupID   string    `gorm:"size:36;index;not null" json:"group_id"`
	UserID    string    `gorm:"size:36;index;not null" json:"user_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *GroupChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Notification is a durable per-user notice (join invites, comment replies).
type Notification struct {
	ID        string            `gorm:"primaryKey;size:36" json:"id"`
	UserID    string            `gorm:"size:36;index;not null" json:"user_id"`
	Type      string            `gorm:"size:64;not null" json:"type"`
	Message   string            `gorm:"type:text;not null" json:"message"`
	Data      datatypes.JSONMap `gorm:"type:json" json:"data,omitempty"`
	Read      bool              `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
