package dto

import (
	"time"

	"github.com/berea-app/berea-api/internal/models"
)

// CreateGroupRequest captures the payload for creating a group.
type CreateGroupRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=10000"`
	ImageURL    string `json:"image_url" validate:"omitempty,url,max=512"`
	Visibility  string `json:"visibility" validate:"omitempty,oneof=PUBLIC PRIVATE"`
}

// UpdateGroupRequest captures partial group updates.
type UpdateGroupRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	ImageURL    *string `json:"image_url" validate:"omitempty,max=512"`
	Visibility  *string `json:"visibility" validate:"omitempty,oneof=PUBLIC PRIVATE"`
}

// AddGroupMemberRequest adds a user to a group by ID.
type AddGroupMemberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

// AssignGroupRequest attaches a group to a session or series.
type AssignGroupRequest struct {
	SessionID *string `json:"session_id" validate:"omitempty,uuid4"`
	SeriesID  *string `json:"series_id" validate:"omitempty,uuid4"`
}

// GroupResponse serializes a group.
type GroupResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	ImageURL    string                `json:"image_url,omitempty"`
	Visibility  string                `json:"visibility"`
	LeaderID    string                `json:"leader_id"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Leader      *UserResponse         `json:"leader,omitempty"`
	Members     []GroupMemberResponse `json:"members,omitempty"`
}

// GroupMemberResponse serializes a group membership row.
type GroupMemberResponse struct {
	ID       string        `json:"id"`
	GroupID  string        `json:"group_id"`
	UserID   string        `json:"user_id"`
	Role     string        `json:"role"`
	JoinedAt time.Time     `json:"joined_at"`
	User     *UserResponse `json:"user,omitempty"`
}

// GroupAssignmentResponse reports the outcome of assigning a group,
// including how many members the fan-out actually added.
type GroupAssignmentResponse struct {
	GroupID      string `json:"group_id"`
	SessionID    string `json:"session_id,omitempty"`
	SeriesID     string `json:"series_id,omitempty"`
	MembersAdded int    `json:"members_added"`
}

// NewGroupResponse converts a group model into a DTO.
func NewGroupResponse(group models.Group) GroupResponse {
	response := GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		ImageURL:    group.ImageURL,
		Visibility:  group.Visibility,
		LeaderID:    group.LeaderID,
		CreatedAt:   group.CreatedAt,
		UpdatedAt:   group.UpdatedAt,
	}
	for _, member := range group.Members {
		response.Members = append(response.Members, NewGroupMemberResponse(member))
	}
	return response
}

// NewGroupResponseSlice converts a batch of group models.
func NewGroupResponseSlice(groups []models.Group) []GroupResponse {
	out := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		out = append(out, NewGroupResponse(group))
	}
	return out
}

// NewGroupMemberResponse converts a group member model into a DTO.
func NewGroupMemberResponse(member models.GroupMember) GroupMemberResponse {
	return GroupMemberResponse{
		ID:       member.ID,
		GroupID:  member.GroupID,
		UserID:   member.UserID,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}
