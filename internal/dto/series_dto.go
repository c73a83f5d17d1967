package dto

import (
	"time"

	"github.com/berea-app/berea-api/internal/models"
)

// CreateSeriesRequest captures the payload for creating a series.
type CreateSeriesRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=10000"`
	ImageURL    string `json:"image_url" validate:"omitempty,url,max=512"`
}

// UpdateSeriesRequest captures partial series updates.
type UpdateSeriesRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	ImageURL    *string `json:"image_url" validate:"omitempty,max=512"`
}

// SeriesResponse serializes a series.
type SeriesResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	ImageURL    string            `json:"image_url,omitempty"`
	LeaderID    string            `json:"leader_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Leader      *UserResponse     `json:"leader,omitempty"`
	Sessions    []SessionResponse `json:"sessions,omitempty"`
}

// NewSeriesResponse converts a series model into a DTO.
func NewSeriesResponse(series models.Series) SeriesResponse {
	response := SeriesResponse{
		ID:          series.ID,
		Title:       series.Title,
		Description: series.Description,
		ImageURL:    series.ImageURL,
		LeaderID:    series.LeaderID,
		CreatedAt:   series.CreatedAt,
		UpdatedAt:   series.UpdatedAt,
	}
	for _, session := range series.Sessions {
		response.Sessions = append(response.Sessions, NewSessionResponse(session, false))
	}
	return response
}

// NewSeriesResponseSlice converts a batch of series models.
func NewSeriesResponseSlice(series []models.Series) []SeriesResponse {
	out := make([]SeriesResponse, 0, len(series))
	for _, item := range series {
		out = append(out, NewSeriesResponse(item))
	}
	return out
}
