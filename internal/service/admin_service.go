package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/repository"
)

const adminStatsCacheKey = "admin:stats:v1"

// AdminService exposes the platform-wide admin surface: user management and
// aggregate statistics.
type AdminService interface {
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)
	UpdateUserRole(ctx context.Context, callerID, userID string, req dto.UpdateUserRoleRequest) (dto.UserResponse, error)
	DeleteUser(ctx context.Context, callerID, userID string) error
	ListSessions(ctx context.Context, limit, offset int) ([]dto.SessionResponse, error)
	DeleteSession(ctx context.Context, sessionID string) error
	ListGroups(ctx context.Context) ([]dto.GroupResponse, error)
	DeleteGroup(ctx context.Context, groupID string) error
	DeleteSeries(ctx context.Context, seriesID string) error
	Stats(ctx context.Context) (dto.AdminStatsResponse, error)
}

type adminService struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	groups    repository.GroupRepository
	series    repository.SeriesRepository
	comments  repository.CommentRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAdminService constructs the admin service.
func NewAdminService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	groups repository.GroupRepository,
	series repository.SeriesRepository,
	comments repository.CommentRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger zerolog.Logger,
) AdminService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &adminService{
		users:     users,
		sessions:  sessions,
		groups:    groups,
		series:    series,
		comments:  comments,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "admin_service").Logger(),
	}
}

func (s *adminService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

func (s *adminService) UpdateUserRole(ctx context.Context, callerID, userID string, req dto.UpdateUserRoleRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}
	if callerID == userID {
		return dto.UserResponse{}, ErrSelfDemotion
	}

	user, err := s.users.UpdateRole(ctx, userID, req.Role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrNotFound
		}
		return dto.UserResponse{}, err
	}
	s.logger.Info().Str("user_id", userID).Str("role", req.Role).Msg("user role updated")
	return dto.NewUserResponse(user), nil
}

func (s *adminService) DeleteUser(ctx context.Context, callerID, userID string) error {
	if callerID == userID {
		return ErrSelfDemotion
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *adminService) ListSessions(ctx context.Context, limit, offset int) ([]dto.SessionResponse, error) {
	sessions, err := s.sessions.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, dto.NewSessionResponse(session, true))
	}
	return out, nil
}

func (s *adminService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.logger.Info().Str("session_id", sessionID).Msg("session deleted by admin")
	return nil
}

func (s *adminService) ListGroups(ctx context.Context) ([]dto.GroupResponse, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewGroupResponseSlice(groups), nil
}

func (s *adminService) DeleteGroup(ctx context.Context, groupID string) error {
	if err := s.groups.Delete(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.logger.Info().Str("group_id", groupID).Msg("group deleted by admin")
	return nil
}

func (s *adminService) DeleteSeries(ctx context.Context, seriesID string) error {
	if err := s.series.Delete(ctx, seriesID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.logger.Info().Str("series_id", seriesID).Msg("series deleted by admin")
	return nil
}

// Stats aggregates platform counts, cached briefly so dashboard refreshes do
// not hammer the database.
func (s *adminService) Stats(ctx context.Context) (dto.AdminStatsResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, adminStatsCacheKey).Result(); err == nil && cached != "" {
			var stats dto.AdminStatsResponse
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return stats, nil
			}
		}
	}

	roles, err := s.users.CountByRole(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}
	sessionCount, err := s.sessions.Count(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}
	groupCount, err := s.groups.Count(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}
	commentCount, err := s.comments.Count(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, err
	}

	stats := dto.AdminStatsResponse{
		TotalUsers:    roles.Total,
		TotalLeaders:  roles.Leaders,
		TotalMembers:  roles.Members,
		TotalSessions: sessionCount,
		TotalGroups:   groupCount,
		TotalComments: commentCount,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, adminStatsCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache admin stats")
			}
		}
	}
	return stats, nil
}
