package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/observability"
	"github.com/berea-app/berea-api/internal/repository"
)

// GroupService manages groups, their membership, and group assignment: adding
// a whole group's members to a session or series in one operation.
type GroupService interface {
	Create(ctx context.Context, leaderID string, req dto.CreateGroupRequest) (dto.GroupResponse, error)
	Get(ctx context.Context, viewerID, groupID string) (dto.GroupResponse, error)
	Update(ctx context.Context, callerID, groupID string, req dto.UpdateGroupRequest) (dto.GroupResponse, error)
	Delete(ctx context.Context, callerID, groupID string) error
	List(ctx context.Context, viewerID string) ([]dto.GroupResponse, error)
	ListPublic(ctx context.Context) ([]dto.GroupResponse, error)
	ListMine(ctx context.Context, userID string) ([]dto.GroupResponse, error)

	Join(ctx context.Context, userID, groupID string) (dto.GroupMemberResponse, error)
	AddMember(ctx context.Context, callerID, groupID, userID string) (dto.GroupMemberResponse, error)
	RemoveMember(ctx context.Context, callerID, groupID, userID string) error

	AssignToSession(ctx context.Context, callerID, groupID, sessionID string) (dto.GroupAssignmentResponse, error)
	AssignToSeries(ctx context.Context, callerID, groupID, seriesID string) (dto.GroupAssignmentResponse, error)
	UnassignFromSession(ctx context.Context, callerID, groupID, sessionID string) error
	UnassignFromSeries(ctx context.Context, callerID, groupID, seriesID string) error
}

type groupService struct {
	groups        repository.GroupRepository
	sessions      repository.SessionRepository
	participants  repository.ParticipantRepository
	series        repository.SeriesRepository
	users         repository.UserRepository
	notifications NotificationService
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
}

// NewGroupService constructs the group service.
func NewGroupService(
	groups repository.GroupRepository,
	sessions repository.SessionRepository,
	participants repository.ParticipantRepository,
	series repository.SeriesRepository,
	users repository.UserRepository,
	notifications NotificationService,
	validate *validator.Validate,
	logger zerolog.Logger,
) GroupService {
	return &groupService{
		groups:        groups,
		sessions:      sessions,
		participants:  participants,
		series:        series,
		users:         users,
		notifications: notifications,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "group_service").Logger(),
	}
}

func (s *groupService) Create(ctx context.Context, leaderID string, req dto.CreateGroupRequest) (dto.GroupResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.GroupResponse{}, err
	}
	if err := requireLeaderRole(ctx, s.users, leaderID); err != nil {
		return dto.GroupResponse{}, err
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	group := models.Group{
		Name:        s.sanitizer.Sanitize(req.Name),
		Description: s.sanitizer.Sanitize(req.Description),
		ImageURL:    req.ImageURL,
		Visibility:  visibility,
		LeaderID:    leaderID,
	}
	if err := s.groups.Create(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	// The leader is always a member of their own group.
	member := models.GroupMember{GroupID: group.ID, UserID: leaderID, Role: models.RoleLeader}
	if err := s.groups.AddMember(ctx, &member); err != nil {
		return dto.GroupResponse{}, err
	}
	group.Members = []models.GroupMember{member}

	return dto.NewGroupResponse(group), nil
}

func (s *groupService) Get(ctx context.Context, viewerID, groupID string) (dto.GroupResponse, error) {
	group, err := s.groups.GetWithMembers(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, ErrNotFound
		}
		return dto.GroupResponse{}, err
	}

	if group.Visibility == models.VisibilityPrivate && group.LeaderID != viewerID {
		member, err := s.groups.MemberExists(ctx, groupID, viewerID)
		if err != nil {
			return dto.GroupResponse{}, err
		}
		if !member {
			return dto.GroupResponse{}, ErrForbidden
		}
	}
	return dto.NewGroupResponse(group), nil
}

func (s *groupService) Update(ctx context.Context, callerID, groupID string, req dto.UpdateGroupRequest) (dto.GroupResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.GroupResponse{}, err
	}

	group, err := s.ownedGroup(ctx, callerID, groupID)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	if req.Name != nil {
		group.Name = s.sanitizer.Sanitize(*req.Name)
	}
	if req.Description != nil {
		group.Description = s.sanitizer.Sanitize(*req.Description)
	}
	if req.ImageURL != nil {
		group.ImageURL = *req.ImageURL
	}
	if req.Visibility != nil {
		group.Visibility = *req.Visibility
	}

	if err := s.groups.Update(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}
	return dto.NewGroupResponse(group), nil
}

func (s *groupService) Delete(ctx context.Context, callerID, groupID string) error {
	if _, err := s.ownedGroup(ctx, callerID, groupID); err != nil {
		return err
	}
	return s.groups.Delete(ctx, groupID)
}

func (s *groupService) List(ctx context.Context, viewerID string) ([]dto.GroupResponse, error) {
	groups, err := s.groups.ListVisibleTo(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return dto.NewGroupResponseSlice(groups), nil
}

func (s *groupService) ListPublic(ctx context.Context) ([]dto.GroupResponse, error) {
	groups, err := s.groups.ListPublic(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewGroupResponseSlice(groups), nil
}

func (s *groupService) ListMine(ctx context.Context, userID string) ([]dto.GroupResponse, error) {
	groups, err := s.groups.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewGroupResponseSlice(groups), nil
}

// Join is self-service entry into a public group. Private groups only grow
// through their leader.
func (s *groupService) Join(ctx context.Context, userID, groupID string) (dto.GroupMemberResponse, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupMemberResponse{}, ErrNotFound
		}
		return dto.GroupMemberResponse{}, err
	}
	if group.Visibility != models.VisibilityPublic {
		return dto.GroupMemberResponse{}, ErrPrivateGroup
	}
	return s.addMember(ctx, groupID, userID)
}

func (s *groupService) AddMember(ctx context.Context, callerID, groupID, userID string) (dto.GroupMemberResponse, error) {
	if _, err := s.ownedGroup(ctx, callerID, groupID); err != nil {
		return dto.GroupMemberResponse{}, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupMemberResponse{}, ErrNotFound
		}
		return dto.GroupMemberResponse{}, err
	}
	return s.addMember(ctx, groupID, userID)
}

func (s *groupService) addMember(ctx context.Context, groupID, userID string) (dto.GroupMemberResponse, error) {
	exists, err := s.groups.MemberExists(ctx, groupID, userID)
	if err != nil {
		return dto.GroupMemberResponse{}, err
	}
	if exists {
		return dto.GroupMemberResponse{}, ErrAlreadyMember
	}

	member := models.GroupMember{GroupID: groupID, UserID: userID, Role: models.RoleMember}
	if err := s.groups.AddMember(ctx, &member); err != nil {
		return dto.GroupMemberResponse{}, err
	}
	return dto.NewGroupMemberResponse(member), nil
}

// RemoveMember drops a user from a group. The leader may remove anyone but
// themselves; members may remove themselves.
func (s *groupService) RemoveMember(ctx context.Context, callerID, groupID, userID string) error {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}

	if callerID != group.LeaderID && callerID != userID {
		return ErrForbidden
	}
	if userID == group.LeaderID {
		return ErrLeaderRemoval
	}

	exists, err := s.groups.MemberExists(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return s.groups.RemoveMember(ctx, groupID, userID)
}

// AssignToSession snapshots the group's current members into the session's
// participant list. Later group joins do not flow through; re-assigning is a
// no-op thanks to the assignment record.
func (s *groupService) AssignToSession(ctx context.Context, callerID, groupID, sessionID string) (dto.GroupAssignmentResponse, error) {
	group, err := s.ownedGroup(ctx, callerID, groupID)
	if err != nil {
		return dto.GroupAssignmentResponse{}, err
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupAssignmentResponse{}, ErrForbidden
		}
		return dto.GroupAssignmentResponse{}, err
	}
	if session.LeaderID != callerID {
		return dto.GroupAssignmentResponse{}, ErrForbidden
	}

	assigned, err := s.groups.SessionAssignmentExists(ctx, groupID, sessionID)
	if err != nil {
		return dto.GroupAssignmentResponse{}, err
	}
	if !assigned {
		if err := s.groups.CreateSessionAssignment(ctx, &models.GroupSession{GroupID: groupID, SessionID: sessionID}); err != nil {
			return dto.GroupAssignmentResponse{}, err
		}
	}

	added, err := s.fanOutToSessions(ctx, group, []models.Session{session})
	if err != nil {
		return dto.GroupAssignmentResponse{}, err
	}

	return dto.GroupAssignmentResponse{GroupID: groupID, SessionID: sessionID, MembersAdded: added}, nil
}

// AssignToSeries snapshots the group's current members into every session of
// the series.
func (s *groupService) AssignToSeries(ctx context.Context, callerID, groupID, seriesID string) (dto.GroupAssignmentResponse, error) {
	group, err := s.ownedGroup(ctx, callerID, groupID)
	if err != nil {
		return dto.GroupAssignmentResponse{}, err
	}

	series, err := s.series.GetByID(ctx, seriesID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupAssignmentResponse{}, ErrForbidden
		}
		return dto.GroupAssignmentResponse{}, err
	}
	if series.LeaderID != callerID {
		return dto.GroupAssignmentResponse{}, ErrForbidden
	}

	assigned, err := s.groups.SeriesAssignmentExists(ctx, groupID, seriesID)
	if err != nil {
		return dto.GroupAssignmentResponse{}, err
	}
	if !assigned {
		if err := s.groups.CreateSeriesAssignment(ctx, &models.GroupSeries{GroupID: groupID, SeriesID: seriesID}); err != nil {
			return dto.GroupAssignmentResponse{}, err
		}
	}

	sessions, err := s.sessions.ListBySeries(ctx, seriesID, "")
	if err != nil {
		return dto.GroupAssignmentResponse{}, err
	}

	added, err := s.fanOutToSessions(ctx, group, sessions)
	if err != nil {
		return dto.GroupAssignmentResponse{}, err
	}

	return dto.GroupAssignmentResponse{GroupID: groupID, SeriesID: seriesID, MembersAdded: added}, nil
}

// UnassignFromSession removes the assignment record only. Participants who
// arrived through the earlier fan-out keep their seats.
func (s *groupService) UnassignFromSession(ctx context.Context, callerID, groupID, sessionID string) error {
	if _, err := s.ownedGroup(ctx, callerID, groupID); err != nil {
		return err
	}

	assigned, err := s.groups.SessionAssignmentExists(ctx, groupID, sessionID)
	if err != nil {
		return err
	}
	if !assigned {
		return ErrNotFound
	}
	return s.groups.DeleteSessionAssignment(ctx, groupID, sessionID)
}

// UnassignFromSeries removes the assignment record only, same as the session
// variant.
func (s *groupService) UnassignFromSeries(ctx context.Context, callerID, groupID, seriesID string) error {
	if _, err := s.ownedGroup(ctx, callerID, groupID); err != nil {
		return err
	}

	assigned, err := s.groups.SeriesAssignmentExists(ctx, groupID, seriesID)
	if err != nil {
		return err
	}
	if !assigned {
		return ErrNotFound
	}
	return s.groups.DeleteSeriesAssignment(ctx, groupID, seriesID)
}

// fanOutToSessions adds every current group member to each session, skipping
// rows that already exist, and notifies the members once.
func (s *groupService) fanOutToSessions(ctx context.Context, group models.Group, sessions []models.Session) (int, error) {
	members, err := s.groups.ListMembers(ctx, group.ID)
	if err != nil {
		return 0, err
	}
	if len(members) == 0 || len(sessions) == 0 {
		return 0, nil
	}

	added := 0
	for _, session := range sessions {
		for _, member := range members {
			exists, err := s.participants.Exists(ctx, session.ID, member.UserID)
			if err != nil {
				return added, err
			}
			if exists {
				continue
			}
			row := []models.SessionParticipant{{SessionID: session.ID, UserID: member.UserID, Role: models.RoleMember}}
			if err := s.participants.CreateSkipDuplicates(ctx, row); err != nil {
				return added, err
			}
			observability.SessionFanoutInserts().Inc()
			added++
		}
	}

	for _, member := range members {
		if member.UserID == group.LeaderID {
			continue
		}
		if err := s.notifications.Publish(ctx, member.UserID, NotificationGroupAssigned,
			fmt.Sprintf("Your group %q was added to a study", group.Name),
			map[string]any{"group_id": group.ID}); err != nil {
			s.logger.Warn().Err(err).Str("group_id", group.ID).Msg("failed to notify group member")
		}
	}

	return added, nil
}

func (s *groupService) ownedGroup(ctx context.Context, callerID, groupID string) (models.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Group{}, ErrForbidden
		}
		return models.Group{}, err
	}
	if group.LeaderID != callerID {
		return models.Group{}, ErrForbidden
	}
	return group, nil
}
