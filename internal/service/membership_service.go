package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/loader"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/observability"
	"github.com/berea-app/berea-api/internal/repository"
)

// MembershipService manages who participates in a session: direct joins,
// code joins with series fan-out, leaving, and the invite lifecycle for
// private sessions.
type MembershipService interface {
	Join(ctx context.Context, userID, sessionID string) (dto.ParticipantResponse, error)
	JoinByCode(ctx context.Context, userID, code string) (dto.JoinByCodeResponse, error)
	Leave(ctx context.Context, userID, sessionID string) error

	Invite(ctx context.Context, callerID, sessionID, toID string) (dto.JoinRequestResponse, error)
	Respond(ctx context.Context, callerID, requestID, status string) (dto.JoinRequestResponse, error)
	ListMyInvites(ctx context.Context, userID string) ([]dto.JoinRequestResponse, error)
	ListSessionInvites(ctx context.Context, callerID, sessionID string) ([]dto.JoinRequestResponse, error)
}

type membershipService struct {
	sessions      repository.SessionRepository
	participants  repository.ParticipantRepository
	series        repository.SeriesRepository
	users         repository.UserRepository
	notifications NotificationService
	logger        zerolog.Logger
}

// NewMembershipService constructs the membership service.
func NewMembershipService(
	sessions repository.SessionRepository,
	participants repository.ParticipantRepository,
	series repository.SeriesRepository,
	users repository.UserRepository,
	notifications NotificationService,
	logger zerolog.Logger,
) MembershipService {
	return &membershipService{
		sessions:      sessions,
		participants:  participants,
		series:        series,
		users:         users,
		notifications: notifications,
		logger:        logger.With().Str("component", "membership_service").Logger(),
	}
}

func (s *membershipService) Join(ctx context.Context, userID, sessionID string) (dto.ParticipantResponse, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ParticipantResponse{}, ErrNotFound
		}
		return dto.ParticipantResponse{}, err
	}

	// Private sessions require an accepted invite; possession of the session
	// ID alone is not enough.
	if session.Visibility == models.VisibilityPrivate && session.LeaderID != userID {
		accepted, err := s.participants.HasAcceptedJoinRequest(ctx, sessionID, userID)
		if err != nil {
			return dto.ParticipantResponse{}, err
		}
		if !accepted {
			return dto.ParticipantResponse{}, ErrPrivateSession
		}
	}

	exists, err := s.participants.Exists(ctx, sessionID, userID)
	if err != nil {
		return dto.ParticipantResponse{}, err
	}
	if exists {
		return dto.ParticipantResponse{}, ErrAlreadyJoined
	}

	participant := models.SessionParticipant{SessionID: sessionID, UserID: userID, Role: models.RoleMember}
	if err := s.participants.Create(ctx, &participant); err != nil {
		return dto.ParticipantResponse{}, err
	}
	return dto.NewParticipantResponse(participant), nil
}

// JoinByCode joins the session behind the code, then fans the user out to
// every other session in the same series. The direct join is strict: a
// duplicate is a conflict. Fan-out duplicates are skipped silently.
func (s *membershipService) JoinByCode(ctx context.Context, userID, code string) (dto.JoinByCodeResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	session, err := s.sessions.GetByJoinCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JoinByCodeResponse{}, ErrInvalidJoinCode
		}
		return dto.JoinByCodeResponse{}, err
	}

	exists, err := s.participants.Exists(ctx, session.ID, userID)
	if err != nil {
		return dto.JoinByCodeResponse{}, err
	}
	if exists {
		return dto.JoinByCodeResponse{}, ErrAlreadyJoined
	}

	participant := models.SessionParticipant{SessionID: session.ID, UserID: userID, Role: models.RoleMember}
	if err := s.participants.Create(ctx, &participant); err != nil {
		return dto.JoinByCodeResponse{}, err
	}

	response := dto.JoinByCodeResponse{
		Participant:         dto.NewParticipantResponse(participant),
		Session:             dto.NewSessionResponse(session, session.LeaderID == userID),
		TotalSessionsJoined: 1,
	}
	response.AddedToSeries = []dto.SessionResponse{}

	if session.SeriesID == nil {
		return response, nil
	}

	seriesModel, err := s.series.GetByID(ctx, *session.SeriesID)
	if err == nil {
		converted := dto.NewSeriesResponse(seriesModel)
		response.Series = &converted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.JoinByCodeResponse{}, err
	}

	siblings, err := s.sessions.ListBySeries(ctx, *session.SeriesID, session.ID)
	if err != nil {
		return dto.JoinByCodeResponse{}, err
	}
	for _, sibling := range siblings {
		member, err := s.participants.Exists(ctx, sibling.ID, userID)
		if err != nil {
			return dto.JoinByCodeResponse{}, err
		}
		if member {
			continue
		}
		row := models.SessionParticipant{SessionID: sibling.ID, UserID: userID, Role: models.RoleMember}
		if err := s.participants.Create(ctx, &row); err != nil {
			return dto.JoinByCodeResponse{}, err
		}
		observability.SessionFanoutInserts().Inc()
		response.AddedToSeries = append(response.AddedToSeries, dto.NewSessionResponse(sibling, false))
	}

	response.TotalSessionsJoined = 1 + len(response.AddedToSeries)
	s.logger.Info().
		Str("user_id", userID).
		Str("session_id", session.ID).
		Int("total_sessions_joined", response.TotalSessionsJoined).
		Msg("joined by code")
	return response, nil
}

func (s *membershipService) Leave(ctx context.Context, userID, sessionID string) error {
	exists, err := s.participants.Exists(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return s.participants.Delete(ctx, sessionID, userID)
}

func (s *membershipService) Invite(ctx context.Context, callerID, sessionID, toID string) (dto.JoinRequestResponse, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JoinRequestResponse{}, ErrForbidden
		}
		return dto.JoinRequestResponse{}, err
	}
	if session.LeaderID != callerID {
		return dto.JoinRequestResponse{}, ErrForbidden
	}
	// Public sessions are joined directly; invites only exist for private ones.
	if session.Visibility != models.VisibilityPrivate {
		return dto.JoinRequestResponse{}, ErrForbidden
	}

	if _, err := s.users.GetByID(ctx, toID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JoinRequestResponse{}, ErrNotFound
		}
		return dto.JoinRequestResponse{}, err
	}

	invited, err := s.participants.JoinRequestExists(ctx, sessionID, toID)
	if err != nil {
		return dto.JoinRequestResponse{}, err
	}
	if invited {
		return dto.JoinRequestResponse{}, ErrAlreadyInvited
	}

	request := models.JoinRequest{
		SessionID: sessionID,
		FromID:    callerID,
		ToID:      toID,
		Status:    models.JoinRequestPending,
	}
	if err := s.participants.CreateJoinRequest(ctx, &request); err != nil {
		return dto.JoinRequestResponse{}, err
	}

	if err := s.notifications.Publish(ctx, toID, NotificationJoinRequest,
		fmt.Sprintf("You were invited to join %q", session.Title),
		map[string]any{"session_id": sessionID, "join_request_id": request.ID}); err != nil {
		s.logger.Warn().Err(err).Str("join_request_id", request.ID).Msg("failed to notify invitee")
	}

	return dto.NewJoinRequestResponse(request), nil
}

func (s *membershipService) Respond(ctx context.Context, callerID, requestID, status string) (dto.JoinRequestResponse, error) {
	request, err := s.participants.GetJoinRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JoinRequestResponse{}, ErrForbidden
		}
		return dto.JoinRequestResponse{}, err
	}
	if request.ToID != callerID {
		return dto.JoinRequestResponse{}, ErrForbidden
	}
	if request.Status != models.JoinRequestPending {
		return dto.JoinRequestResponse{}, ErrJoinRequestResolved
	}

	updated, err := s.participants.UpdateJoinRequestStatus(ctx, requestID, status)
	if err != nil {
		return dto.JoinRequestResponse{}, err
	}

	notificationType := NotificationRequestRejected
	verb := "declined"
	if status == models.JoinRequestAccepted {
		notificationType = NotificationRequestAccepted
		verb = "accepted"

		row := []models.SessionParticipant{{SessionID: request.SessionID, UserID: callerID, Role: models.RoleMember}}
		if err := s.participants.CreateSkipDuplicates(ctx, row); err != nil {
			return dto.JoinRequestResponse{}, err
		}
	}

	if err := s.notifications.Publish(ctx, request.FromID, notificationType,
		fmt.Sprintf("Your invitation was %s", verb),
		map[string]any{"session_id": request.SessionID, "join_request_id": request.ID}); err != nil {
		s.logger.Warn().Err(err).Str("join_request_id", request.ID).Msg("failed to notify inviter")
	}

	return dto.NewJoinRequestResponse(updated), nil
}

// ListMyInvites returns the caller's invites expanded with their session and
// inviter. Expansion goes through a per-call loader set so invites into the
// same session, or from the same leader, collapse into one query each.
func (s *membershipService) ListMyInvites(ctx context.Context, userID string) ([]dto.JoinRequestResponse, error) {
	requests, err := s.participants.ListJoinRequestsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	loaders := loader.NewSet(s.users, s.sessions)
	sessionIDs := make([]string, 0, len(requests))
	fromIDs := make([]string, 0, len(requests))
	for _, request := range requests {
		sessionIDs = append(sessionIDs, request.SessionID)
		fromIDs = append(fromIDs, request.FromID)
	}
	sessions, err := loaders.Sessions.LoadMany(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}
	inviters, err := loaders.Users.LoadMany(ctx, fromIDs)
	if err != nil {
		return nil, err
	}

	out := make([]dto.JoinRequestResponse, 0, len(requests))
	for _, request := range requests {
		response := dto.NewJoinRequestResponse(request)
		if session, ok := sessions[request.SessionID]; ok {
			converted := dto.NewSessionResponse(session, false)
			response.Session = &converted
		}
		if inviter, ok := inviters[request.FromID]; ok {
			converted := dto.NewUserResponse(inviter)
			response.From = &converted
		}
		out = append(out, response)
	}
	return out, nil
}

func (s *membershipService) ListSessionInvites(ctx context.Context, callerID, sessionID string) ([]dto.JoinRequestResponse, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if session.LeaderID != callerID {
		return nil, ErrForbidden
	}

	requests, err := s.participants.ListJoinRequestsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.JoinRequestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, dto.NewJoinRequestResponse(request))
	}
	return out, nil
}
