package dto

import (
	"time"

	"github.com/berea-app/berea-api/internal/models"
)

// CreateSessionRequest captures the payload for creating a study session.
type CreateSessionRequest struct {
	Title        string     `json:"title" validate:"required,min=1,max=255"`
	Description  string     `json:"description" validate:"max=10000"`
	StartDate    time.Time  `json:"start_date" validate:"required"`
	EndDate      *time.Time `json:"end_date"`
	Visibility   string     `json:"visibility" validate:"omitempty,oneof=PUBLIC PRIVATE"`
	SessionType  string     `json:"session_type" validate:"max=32"`
	VideoCallURL string     `json:"video_call_url" validate:"omitempty,url,max=512"`
	ImageURL     string     `json:"image_url" validate:"omitempty,url,max=512"`
	SeriesID     *string    `json:"series_id" validate:"omitempty,uuid4"`
}

// UpdateSessionRequest captures partial session updates. A SeriesID pointing
// at an empty string detaches the session from its series.
type UpdateSessionRequest struct {
	Title        *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description  *string    `json:"description" validate:"omitempty,max=10000"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Visibility   *string    `json:"visibility" validate:"omitempty,oneof=PUBLIC PRIVATE"`
	SessionType  *string    `json:"session_type" validate:"omitempty,max=32"`
	VideoCallURL *string    `json:"video_call_url" validate:"omitempty,max=512"`
	ImageURL     *string    `json:"image_url" validate:"omitempty,max=512"`
	SeriesID     *string    `json:"series_id"`
}

// AddPassageRequest captures a scripture passage attachment.
type AddPassageRequest struct {
	Book       string `json:"book" validate:"required,min=1,max=64"`
	Chapter    int    `json:"chapter" validate:"required,min=1"`
	VerseStart int    `json:"verse_start" validate:"required,min=1"`
	VerseEnd   *int   `json:"verse_end" validate:"omitempty,min=1"`
	Content    string `json:"content" validate:"max=50000"`
	Order      int    `json:"order" validate:"min=0"`
}

// AddResourceRequest captures a study material reference.
type AddResourceRequest struct {
	FileName     string `json:"file_name" validate:"required,min=1,max=255"`
	FileURL      string `json:"file_url" validate:"required,url,max=512"`
	FileType     string `json:"file_type" validate:"required,max=128"`
	ResourceType string `json:"resource_type" validate:"omitempty,oneof=FILE VIDEO LINK"`
	VideoID      string `json:"video_id" validate:"max=64"`
	Description  string `json:"description" validate:"max=10000"`
}

// JoinByCodeRequest carries the shareable join code.
type JoinByCodeRequest struct {
	JoinCode string `json:"join_code" validate:"required,len=6"`
}

// CreateJoinRequestRequest invites a user into a private session.
type CreateJoinRequestRequest struct {
	ToID string `json:"to_id" validate:"required,uuid4"`
}

// RespondJoinRequestRequest accepts or rejects a pending invite.
type RespondJoinRequestRequest struct {
	Status string `json:"status" validate:"required,oneof=ACCEPTED REJECTED"`
}

// SessionResponse serializes a session. JoinCode is only populated for the
// session's leader.
type SessionResponse struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	StartDate    time.Time             `json:"start_date"`
	EndDate      *time.Time            `json:"end_date,omitempty"`
	Visibility   string                `json:"visibility"`
	SessionType  string                `json:"session_type,omitempty"`
	VideoCallURL string                `json:"video_call_url,omitempty"`
	ImageURL     string                `json:"image_url,omitempty"`
	JoinCode     string                `json:"join_code,omitempty"`
	LeaderID     string                `json:"leader_id"`
	SeriesID     *string               `json:"series_id,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Leader       *UserResponse         `json:"leader,omitempty"`
	Passages     []PassageResponse     `json:"passages,omitempty"`
	Resources    []ResourceResponse    `json:"resources,omitempty"`
	Participants []ParticipantResponse `json:"participants,omitempty"`
}

// ParticipantResponse serializes a session membership row.
type ParticipantResponse struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	UserID    string        `json:"user_id"`
	Role      string        `json:"role"`
	JoinedAt  time.Time     `json:"joined_at"`
	User      *UserResponse `json:"user,omitempty"`
}

// JoinRequestResponse serializes a private-session invite.
type JoinRequestResponse struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	FromID    string           `json:"from_id"`
	ToID      string           `json:"to_id"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Session   *SessionResponse `json:"session,omitempty"`
	From      *UserResponse    `json:"from,omitempty"`
}

// PassageResponse serializes a scripture passage.
type PassageResponse struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Book       string    `json:"book"`
	Chapter    int       `json:"chapter"`
	VerseStart int       `json:"verse_start"`
	VerseEnd   *int      `json:"verse_end,omitempty"`
	Content    string    `json:"content"`
	Order      int       `json:"order"`
	CreatedAt  time.Time `json:"created_at"`
}

// ResourceResponse serializes a study material reference.
type ResourceResponse struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	FileName     string    `json:"file_name"`
	FileURL      string    `json:"file_url"`
	FileType     string    `json:"file_type"`
	ResourceType string    `json:"resource_type"`
	VideoID      string    `json:"video_id,omitempty"`
	Description  string    `json:"description,omitempty"`
	UploadedBy   string    `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// JoinByCodeResponse reports the outcome of a code join, including the
// series-wide fan-out.
type JoinByCodeResponse struct {
	Participant         ParticipantResponse `json:"participant"`
	Session             SessionResponse     `json:"session"`
	Series              *SeriesResponse     `json:"series,omitempty"`
	AddedToSeries       []SessionResponse   `json:"added_to_series_sessions"`
	TotalSessionsJoined int                 `json:"total_sessions_joined"`
}

// NewSessionResponse converts a session model into a DTO. includeJoinCode is
// true only when the viewer leads the session.
func NewSessionResponse(session models.Session, includeJoinCode bool) SessionResponse {
	response := SessionResponse{
		ID:           session.ID,
		Title:        session.Title,
		Description:  session.Description,
		StartDate:    session.StartDate,
		EndDate:      session.EndDate,
		Visibility:   session.Visibility,
		SessionType:  session.SessionType,
		VideoCallURL: session.VideoCallURL,
		ImageURL:     session.ImageURL,
		LeaderID:     session.LeaderID,
		SeriesID:     session.SeriesID,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	}
	if includeJoinCode {
		response.JoinCode = session.JoinCode
	}
	for _, passage := range session.Passages {
		response.Passages = append(response.Passages, NewPassageResponse(passage))
	}
	for _, resource := range session.Resources {
		response.Resources = append(response.Resources, NewResourceResponse(resource))
	}
	for _, participant := range session.Participants {
		response.Participants = append(response.Participants, NewParticipantResponse(participant))
	}
	return response
}

// NewSessionResponseSlice converts a batch of sessions for a viewer who does
// not lead them.
func NewSessionResponseSlice(sessions []models.Session, viewerID string) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, NewSessionResponse(session, session.LeaderID == viewerID))
	}
	return out
}

// NewParticipantResponse converts a participant model into a DTO.
func NewParticipantResponse(participant models.SessionParticipant) ParticipantResponse {
	return ParticipantResponse{
		ID:        participant.ID,
		SessionID: participant.SessionID,
		UserID:    participant.UserID,
		Role:      participant.Role,
		JoinedAt:  participant.JoinedAt,
	}
}

// NewJoinRequestResponse converts a join request model into a DTO.
func NewJoinRequestResponse(request models.JoinRequest) JoinRequestResponse {
	return JoinRequestResponse{
		ID:        request.ID,
		SessionID: request.SessionID,
		FromID:    request.FromID,
		ToID:      request.ToID,
		Status:    request.Status,
		CreatedAt: request.CreatedAt,
		UpdatedAt: request.UpdatedAt,
	}
}

// NewPassageResponse converts a passage model into a DTO.
func NewPassageResponse(passage models.ScripturePassage) PassageResponse {
	return PassageResponse{
		ID:         passage.ID,
		SessionID:  passage.SessionID,
		Book:       passage.Book,
		Chapter:    passage.Chapter,
		VerseStart: passage.VerseStart,
		VerseEnd:   passage.VerseEnd,
		Content:    passage.Content,
		Order:      passage.Order,
		CreatedAt:  passage.CreatedAt,
	}
}

// NewResourceResponse converts a resource model into a DTO.
func NewResourceResponse(resource models.SessionResource) ResourceResponse {
	return ResourceResponse{
		ID:           resource.ID,
		SessionID:    resource.SessionID,
		FileName:     resource.FileName,
		FileURL:      resource.FileURL,
		FileType:     resource.FileType,
		ResourceType: resource.ResourceType,
		VideoID:      resource.VideoID,
		Description:  resource.Description,
		UploadedBy:   resource.UploadedBy,
		CreatedAt:    resource.CreatedAt,
	}
}
