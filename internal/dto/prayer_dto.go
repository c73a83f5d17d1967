package dto

import (
	"time"

	"github.com/berea-app/berea-api/internal/models"
)

// CreatePrayerRequestRequest captures a new prayer item.
type CreatePrayerRequestRequest struct {
	Content     string `json:"content" validate:"required,min=1,max=10000"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// TogglePrayerReactionRequest toggles a reaction on a prayer item.
type TogglePrayerReactionRequest struct {
	ReactionType string `json:"reaction_type" validate:"required,oneof=HEART PRAYING_HANDS"`
}

// PrayerRequestResponse serializes a prayer item. For anonymous items the
// author is withheld from everyone but the author themselves.
type PrayerRequestResponse struct {
	ID            string                   `json:"id"`
	UserID        string                   `json:"user_id,omitempty"`
	Content       string                   `json:"content"`
	IsAnonymous   bool                     `json:"is_anonymous"`
	CreatedAt     time.Time                `json:"created_at"`
	User          *UserResponse            `json:"user,omitempty"`
	Reactions     []PrayerReactionResponse `json:"reactions,omitempty"`
	ReactionCount map[string]int           `json:"reaction_count,omitempty"`
}

// PrayerReactionResponse serializes a single reaction.
type PrayerReactionResponse struct {
	ID              string    `json:"id"`
	PrayerRequestID string    `json:"prayer_request_id"`
	UserID          string    `json:"user_id"`
	ReactionType    string    `json:"reaction_type"`
	CreatedAt       time.Time `json:"created_at"`
}

// TogglePrayerReactionResponse reports the post-toggle state.
type TogglePrayerReactionResponse struct {
	PrayerRequestID string `json:"prayer_request_id"`
	ReactionType    string `json:"reaction_type"`
	Reacted         bool   `json:"reacted"`
}

// NewPrayerRequestResponse converts a prayer model into a DTO. viewerID
// controls whether an anonymous author is revealed.
func NewPrayerRequestResponse(request models.PrayerRequest, viewerID string) PrayerRequestResponse {
	response := PrayerRequestResponse{
		ID:          request.ID,
		Content:     request.Content,
		IsAnonymous: request.IsAnonymous,
		CreatedAt:   request.CreatedAt,
	}
	if !request.IsAnonymous || request.UserID == viewerID {
		response.UserID = request.UserID
	}
	if len(request.Reactions) > 0 {
		response.ReactionCount = make(map[string]int)
		for _, reaction := range request.Reactions {
			response.Reactions = append(response.Reactions, NewPrayerReactionResponse(reaction))
			response.ReactionCount[reaction.ReactionType]++
		}
	}
	return response
}

// NewPrayerRequestResponseSlice converts a batch of prayer models.
func NewPrayerRequestResponseSlice(requests []models.PrayerRequest, viewerID string) []PrayerRequestResponse {
	out := make([]PrayerRequestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, NewPrayerRequestResponse(request, viewerID))
	}
	return out
}

// NewPrayerReactionResponse converts a reaction model into a DTO.
func NewPrayerReactionResponse(reaction models.PrayerReaction) PrayerReactionResponse {
	return PrayerReactionResponse{
		ID:              reaction.ID,
		PrayerRequestID: reaction.PrayerRequestID,
		UserID:          reaction.UserID,
		ReactionType:    reaction.ReactionType,
		CreatedAt:       reaction.CreatedAt,
	}
}
