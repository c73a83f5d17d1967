package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/observability"
	"github.com/berea-app/berea-api/internal/repository"
	"github.com/berea-app/berea-api/internal/utils"
)

const joinCodeAttempts = 10

// SessionService manages study sessions, their visibility rules and the
// participant propagation between a session and its series.
type SessionService interface {
	Create(ctx context.Context, leaderID string, req dto.CreateSessionRequest) (dto.SessionResponse, error)
	Get(ctx context.Context, viewerID, sessionID string) (dto.SessionResponse, error)
	Update(ctx context.Context, callerID, sessionID string, req dto.UpdateSessionRequest) (dto.SessionResponse, error)
	Delete(ctx context.Context, callerID, sessionID string) error
	List(ctx context.Context, viewerID string, limit, offset int) ([]dto.SessionResponse, error)
	ListMine(ctx context.Context, userID string, limit, offset int) ([]dto.SessionResponse, error)
	ListPublic(ctx context.Context, viewerID string, limit, offset int) ([]dto.SessionResponse, error)
	RegenerateJoinCode(ctx context.Context, callerID, sessionID string) (dto.SessionResponse, error)

	// Authorize reports whether viewerID may see the session, applying the
	// same rules as Get. Other services guard their reads with it.
	Authorize(ctx context.Context, viewerID string, session models.Session) error
}

type sessionService struct {
	sessions     repository.SessionRepository
	participants repository.ParticipantRepository
	series       repository.SeriesRepository
	passages     repository.PassageRepository
	resources    repository.ResourceRepository
	users        repository.UserRepository
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	tracer       trace.Tracer
	logger       zerolog.Logger
}

// NewSessionService constructs the session service.
func NewSessionService(
	sessions repository.SessionRepository,
	participants repository.ParticipantRepository,
	series repository.SeriesRepository,
	passages repository.PassageRepository,
	resources repository.ResourceRepository,
	users repository.UserRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) SessionService {
	return &sessionService{
		sessions:     sessions,
		participants: participants,
		series:       series,
		passages:     passages,
		resources:    resources,
		users:        users,
		validator:    validate,
		sanitizer:    bluemonday.StrictPolicy(),
		tracer:       otel.Tracer("github.com/berea-app/berea-api/internal/service/session"),
		logger:       logger.With().Str("component", "session_service").Logger(),
	}
}

func (s *sessionService) Create(ctx context.Context, leaderID string, req dto.CreateSessionRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SessionResponse{}, err
	}
	if err := requireLeaderRole(ctx, s.users, leaderID); err != nil {
		return dto.SessionResponse{}, err
	}

	if req.SeriesID != nil {
		owner, err := s.series.GetByID(ctx, *req.SeriesID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.SessionResponse{}, ErrForbidden
			}
			return dto.SessionResponse{}, err
		}
		if owner.LeaderID != leaderID {
			return dto.SessionResponse{}, ErrForbidden
		}
	}

	code, err := s.mintJoinCode(ctx)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	session := models.Session{
		Title:        s.sanitizer.Sanitize(req.Title),
		Description:  s.sanitizer.Sanitize(req.Description),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Visibility:   visibility,
		SessionType:  req.SessionType,
		VideoCallURL: req.VideoCallURL,
		ImageURL:     req.ImageURL,
		JoinCode:     code,
		LeaderID:     leaderID,
		SeriesID:     req.SeriesID,
	}
	if err := s.sessions.Create(ctx, &session); err != nil {
		return dto.SessionResponse{}, err
	}

	// A session born into a series inherits the series' audience: everyone
	// already participating anywhere in the series joins the new session.
	if session.SeriesID != nil {
		if err := s.pullSeriesParticipants(ctx, &session); err != nil {
			s.logger.Error().Err(err).Str("session_id", session.ID).Msg("series participant pull failed")
			return dto.SessionResponse{}, err
		}
	}

	s.logger.Info().Str("session_id", session.ID).Str("leader_id", leaderID).Msg("session created")
	return dto.NewSessionResponse(session, true), nil
}

func (s *sessionService) Get(ctx context.Context, viewerID, sessionID string) (dto.SessionResponse, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrNotFound
		}
		return dto.SessionResponse{}, err
	}

	if err := s.Authorize(ctx, viewerID, session); err != nil {
		return dto.SessionResponse{}, err
	}

	if session.Passages, err = s.passages.ListBySession(ctx, sessionID); err != nil {
		return dto.SessionResponse{}, err
	}
	if session.Resources, err = s.resources.ListBySession(ctx, sessionID); err != nil {
		return dto.SessionResponse{}, err
	}
	if session.Participants, err = s.participants.ListBySession(ctx, sessionID); err != nil {
		return dto.SessionResponse{}, err
	}

	return dto.NewSessionResponse(session, session.LeaderID == viewerID), nil
}

// Authorize implements the visibility rules: public sessions are open to all
// authenticated users; private sessions to their leader, current participants,
// and invitees holding an accepted join request.
func (s *sessionService) Authorize(ctx context.Context, viewerID string, session models.Session) error {
	if session.Visibility == models.VisibilityPublic || session.LeaderID == viewerID {
		return nil
	}
	member, err := s.participants.Exists(ctx, session.ID, viewerID)
	if err != nil {
		return err
	}
	if member {
		return nil
	}
	accepted, err := s.participants.HasAcceptedJoinRequest(ctx, session.ID, viewerID)
	if err != nil {
		return err
	}
	if !accepted {
		return ErrForbidden
	}
	return nil
}

func (s *sessionService) Update(ctx context.Context, callerID, sessionID string, req dto.UpdateSessionRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SessionResponse{}, err
	}

	session, err := s.ownedSession(ctx, callerID, sessionID)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	if req.Title != nil {
		session.Title = s.sanitizer.Sanitize(*req.Title)
	}
	if req.Description != nil {
		session.Description = s.sanitizer.Sanitize(*req.Description)
	}
	if req.StartDate != nil {
		session.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		session.EndDate = req.EndDate
	}
	if req.Visibility != nil {
		session.Visibility = *req.Visibility
	}
	if req.SessionType != nil {
		session.SessionType = *req.SessionType
	}
	if req.VideoCallURL != nil {
		session.VideoCallURL = *req.VideoCallURL
	}
	if req.ImageURL != nil {
		session.ImageURL = *req.ImageURL
	}

	attachedSeries := ""
	if req.SeriesID != nil {
		switch {
		case *req.SeriesID == "":
			session.SeriesID = nil
		case session.SeriesID == nil || *session.SeriesID != *req.SeriesID:
			owner, err := s.series.GetByID(ctx, *req.SeriesID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return dto.SessionResponse{}, ErrForbidden
				}
				return dto.SessionResponse{}, err
			}
			if owner.LeaderID != callerID {
				return dto.SessionResponse{}, ErrForbidden
			}
			session.SeriesID = req.SeriesID
			attachedSeries = *req.SeriesID
		}
	}

	if err := s.sessions.Update(ctx, &session); err != nil {
		return dto.SessionResponse{}, err
	}

	// Attaching an existing session to a series merges the audiences in both
	// directions: series participants join this session, and this session's
	// participants join every other session in the series.
	if attachedSeries != "" {
		if err := s.mergeSeriesAudience(ctx, &session, attachedSeries); err != nil {
			s.logger.Error().Err(err).Str("session_id", session.ID).Str("series_id", attachedSeries).Msg("series audience merge failed")
			return dto.SessionResponse{}, err
		}
	}

	return dto.NewSessionResponse(session, true), nil
}

func (s *sessionService) Delete(ctx context.Context, callerID, sessionID string) error {
	if _, err := s.ownedSession(ctx, callerID, sessionID); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, sessionID)
}

func (s *sessionService) List(ctx context.Context, viewerID string, limit, offset int) ([]dto.SessionResponse, error) {
	sessions, err := s.sessions.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponseSlice(sessions, viewerID), nil
}

func (s *sessionService) ListMine(ctx context.Context, userID string, limit, offset int) ([]dto.SessionResponse, error) {
	sessions, err := s.sessions.ListForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponseSlice(sessions, userID), nil
}

func (s *sessionService) ListPublic(ctx context.Context, viewerID string, limit, offset int) ([]dto.SessionResponse, error) {
	sessions, err := s.sessions.ListPublic(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponseSlice(sessions, viewerID), nil
}

func (s *sessionService) RegenerateJoinCode(ctx context.Context, callerID, sessionID string) (dto.SessionResponse, error) {
	session, err := s.ownedSession(ctx, callerID, sessionID)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	code, err := s.mintJoinCode(ctx)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	session.JoinCode = code
	if err := s.sessions.Update(ctx, &session); err != nil {
		return dto.SessionResponse{}, err
	}
	return dto.NewSessionResponse(session, true), nil
}

// ownedSession loads a session and verifies the caller leads it. Missing and
// non-owned sessions are indistinguishable to the caller.
func (s *sessionService) ownedSession(ctx context.Context, callerID, sessionID string) (models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Session{}, ErrForbidden
		}
		return models.Session{}, err
	}
	if session.LeaderID != callerID {
		return models.Session{}, ErrForbidden
	}
	return session, nil
}

func (s *sessionService) mintJoinCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := utils.GenerateJoinCode()
		if err != nil {
			return "", err
		}
		exists, err := s.sessions.JoinCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrJoinCodeExhausted
}

// pullSeriesParticipants adds every current series participant to session.
func (s *sessionService) pullSeriesParticipants(ctx context.Context, session *models.Session) error {
	ctx, span := s.tracer.Start(ctx, "sessions.pull_series_participants", trace.WithAttributes(
		attribute.String("session.id", session.ID),
		attribute.String("series.id", *session.SeriesID),
	))
	defer span.End()

	userIDs, err := s.participants.DistinctUserIDsBySeries(ctx, *session.SeriesID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int("participants.count", len(userIDs)))
	return s.addAll(ctx, session.ID, userIDs)
}

// mergeSeriesAudience runs the two-way propagation for a session newly
// attached to seriesID. A failure mid-way aborts and reports; rows already
// written stay, the unique index makes a retry idempotent.
func (s *sessionService) mergeSeriesAudience(ctx context.Context, session *models.Session, seriesID string) error {
	ctx, span := s.tracer.Start(ctx, "sessions.merge_series_audience", trace.WithAttributes(
		attribute.String("session.id", session.ID),
		attribute.String("series.id", seriesID),
	))
	defer span.End()

	seriesUsers, err := s.participants.DistinctUserIDsBySeries(ctx, seriesID)
	if err != nil {
		return err
	}
	if err := s.addAll(ctx, session.ID, seriesUsers); err != nil {
		return err
	}

	own, err := s.participants.ListBySession(ctx, session.ID)
	if err != nil {
		return err
	}
	ownIDs := make([]string, 0, len(own))
	for _, participant := range own {
		ownIDs = append(ownIDs, participant.UserID)
	}

	siblings, err := s.sessions.ListBySeries(ctx, seriesID, session.ID)
	if err != nil {
		return err
	}
	for _, sibling := range siblings {
		if err := s.addAll(ctx, sibling.ID, ownIDs); err != nil {
			return err
		}
	}
	return nil
}

func (s *sessionService) addAll(ctx context.Context, sessionID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]models.SessionParticipant, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, models.SessionParticipant{SessionID: sessionID, UserID: userID, Role: models.RoleMember})
	}
	if err := s.participants.CreateSkipDuplicates(ctx, rows); err != nil {
		return err
	}
	observability.SessionFanoutInserts().Add(float64(len(rows)))
	return nil
}
