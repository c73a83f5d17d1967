package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session visibility values.
const (
	VisibilityPublic  = "PUBLIC"
	VisibilityPrivate = "PRIVATE"
)

// Join request lifecycle states.
const (
	JoinRequestPending  = "PENDING"
	JoinRequestAccepted = "ACCEPTED"
	JoinRequestRejected = "REJECTED"
)

// Series is an ordered collection of sessions under one leader.
type Series struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"size:512" json:"image_url"`
	LeaderID    string    `gorm:"size:36;index;not null" json:"leader_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Sessions    []Session `gorm:"foreignKey:SeriesID" json:"sessions,omitempty"`
}

func (s *Series) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Session is a single scheduled study event.
type Session struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	StartDate    time.Time  `gorm:"index" json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Visibility   string     `gorm:"size:16;not null;default:PUBLIC" json:"visibility"`
	SessionType  string     `gorm:"size:32" json:"session_type,omitempty"`
	VideoCallURL string     `gorm:"size:512" json:"video_call_url,omitempty"`
	ImageURL     string     `gorm:"size:512" json:"image_url,omitempty"`
	JoinCode     string     `gorm:"size:8;uniqueIndex" json:"join_code,omitempty"`
	LeaderID     string     `gorm:"size:36;index;not null" json:"leader_id"`
	SeriesID     *string    `gorm:"size:36;index" json:"series_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Passages     []ScripturePassage   `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"passages,omitempty"`
	Participants []SessionParticipant `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
	Resources    []SessionResource    `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"resources,omitempty"`
	JoinRequests []JoinRequest        `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"join_requests,omitempty"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SessionParticipant records current membership. Row existence is membership;
// the (session_id, user_id) pair is unique so repeated fan-out stays idempotent.
type SessionParticipant struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	SessionID string    `gorm:"size:36;not null;uniqueIndex:idx_session_user" json:"session_id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_session_user" json:"user_id"`
	Role      string    `gorm:"size:16;not null;default:MEMBER" json:"role"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (p *SessionParticipant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// JoinRequest is a leader-issued invite into a private session. It transitions
// at most once away from PENDING.
type JoinRequest struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	SessionID string    `gorm:"size:36;not null;uniqueIndex:idx_session_invitee" json:"session_id"`
	FromID    string    `gorm:"size:36;not null" json:"from_id"`
	ToID      string    `gorm:"size:36;not null;uniqueIndex:idx_session_invitee" json:"to_id"`
	Status    string    `gorm:"size:16;not null;default:PENDING" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (j *JoinRequest) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}

// ScripturePassage is an ordered scripture excerpt attached to a session.
type ScripturePassage struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	SessionID  string    `gorm:"size:36;index;not null" json:"session_id"`
	Book       string    `gorm:"size:64;not null" json:"book"`
	Chapter    int       `gorm:"not null" json:"chapter"`
	VerseStart int       `gorm:"not null" json:"verse_start"`
	VerseEnd   *int      `json:"verse_end,omitempty"`
	Content    string    `gorm:"type:text" json:"content"`
	Order      int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (p *ScripturePassage) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// SessionResource references a study material already hosted elsewhere.
type SessionResource struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	SessionID    string    `gorm:"size:36;index;not null" json:"session_id"`
	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	FileURL      string    `gorm:"size:512;not null" json:"file_url"`
	FileType     string    `gorm:"size:128;not null" json:"file_type"`
	ResourceType string    `gorm:"size:16;not null;default:FILE" json:"resource_type"`
	VideoID      string    `gorm:"size:64" json:"video_id,omitempty"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	UploadedBy   string    `gorm:"size:36;index;not null" json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r *SessionResource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
