package dto

import (
	"time"

	"github.com/berea-app/berea-api/internal/models"
)

// AddCommentRequest captures a comment on a scripture passage. ParentID, when
// set, must reference a comment on the same passage; threads are capped at
// one reply level below a top-level comment.
type AddCommentRequest struct {
	Content     string  `json:"content" validate:"required,min=1,max=10000"`
	VerseNumber *int    `json:"verse_number" validate:"omitempty,min=1"`
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid4"`
}

// UpdateCommentRequest edits a comment's content.
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=10000"`
}

// CommentResponse serializes a comment with its resolved author and replies.
type CommentResponse struct {
	ID          string            `json:"id"`
	SessionID   string            `json:"session_id"`
	PassageID   string            `json:"passage_id"`
	UserID      string            `json:"user_id"`
	Content     string            `json:"content"`
	VerseNumber *int              `json:"verse_number,omitempty"`
	ParentID    *string           `json:"parent_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	User        *UserResponse     `json:"user,omitempty"`
	Replies     []CommentResponse `json:"replies,omitempty"`
}

// SendChatMessageRequest captures a live chat message.
type SendChatMessageRequest struct {
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// ChatMessageResponse serializes a session chat message.
type ChatMessageResponse struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	UserID    string        `json:"user_id"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"created_at"`
	User      *UserResponse `json:"user,omitempty"`
}

// GroupChatMessageResponse serializes a group chat message.
type GroupChatMessageResponse struct {
	ID        string        `json:"id"`
	GroupID   string        `json:"group_id"`
	UserID    string        `json:"user_id"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"created_at"`
	User      *UserResponse `json:"user,omitempty"`
}

// NotificationResponse serializes a durable notification.
type NotificationResponse struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewCommentResponse converts a comment model into a DTO.
func NewCommentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:          comment.ID,
		SessionID:   comment.SessionID,
		PassageID:   comment.PassageID,
		UserID:      comment.UserID,
		Content:     comment.Content,
		VerseNumber: comment.VerseNumber,
		ParentID:    comment.ParentID,
		CreatedAt:   comment.CreatedAt,
		UpdatedAt:   comment.UpdatedAt,
	}
}

// NewChatMessageResponse converts a session chat message model into a DTO.
func NewChatMessageResponse(message models.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        message.ID,
		SessionID: message.SessionID,
		UserID:    message.UserID,
		Message:   message.Message,
		CreatedAt: message.CreatedAt,
	}
}

// NewChatMessageResponseSlice converts a batch of session chat messages.
func NewChatMessageResponseSlice(messages []models.ChatMessage) []ChatMessageResponse {
	out := make([]ChatMessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewChatMessageResponse(message))
	}
	return out
}

// NewGroupChatMessageResponse converts a group chat message model into a DTO.
func NewGroupChatMessageResponse(message models.GroupChatMessage) GroupChatMessageResponse {
	return GroupChatMessageResponse{
		ID:        message.ID,
		GroupID:   message.GroupID,
		UserID:    message.UserID,
		Message:   message.Message,
		CreatedAt: message.CreatedAt,
	}
}

// NewGroupChatMessageResponseSlice converts a batch of group chat messages.
func NewGroupChatMessageResponseSlice(messages []models.GroupChatMessage) []GroupChatMessageResponse {
	out := make([]GroupChatMessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewGroupChatMessageResponse(message))
	}
	return out
}

// NewNotificationResponse converts a notification model into a DTO.
func NewNotificationResponse(notification models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        notification.ID,
		UserID:    notification.UserID,
		Type:      notification.Type,
		Message:   notification.Message,
		Data:      notification.Data,
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a batch of notifications.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		out = append(out, NewNotificationResponse(notification))
	}
	return out
}
