package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/repository"
)

// SeriesService manages study series.
type SeriesService interface {
	Create(ctx context.Context, leaderID string, req dto.CreateSeriesRequest) (dto.SeriesResponse, error)
	Get(ctx context.Context, seriesID string) (dto.SeriesResponse, error)
	Update(ctx context.Context, callerID, seriesID string, req dto.UpdateSeriesRequest) (dto.SeriesResponse, error)
	Delete(ctx context.Context, callerID, seriesID string) error
	List(ctx context.Context) ([]dto.SeriesResponse, error)
	ListMine(ctx context.Context, userID string) ([]dto.SeriesResponse, error)
}

type seriesService struct {
	series    repository.SeriesRepository
	sessions  repository.SessionRepository
	users     repository.UserRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewSeriesService constructs the series service.
func NewSeriesService(series repository.SeriesRepository, sessions repository.SessionRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) SeriesService {
	return &seriesService{
		series:    series,
		sessions:  sessions,
		users:     users,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "series_service").Logger(),
	}
}

func (s *seriesService) Create(ctx context.Context, leaderID string, req dto.CreateSeriesRequest) (dto.SeriesResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SeriesResponse{}, err
	}
	if err := requireLeaderRole(ctx, s.users, leaderID); err != nil {
		return dto.SeriesResponse{}, err
	}

	series := models.Series{
		Title:       s.sanitizer.Sanitize(req.Title),
		Description: s.sanitizer.Sanitize(req.Description),
		ImageURL:    req.ImageURL,
		LeaderID:    leaderID,
	}
	if err := s.series.Create(ctx, &series); err != nil {
		return dto.SeriesResponse{}, err
	}
	return dto.NewSeriesResponse(series), nil
}

func (s *seriesService) Get(ctx context.Context, seriesID string) (dto.SeriesResponse, error) {
	series, err := s.series.GetByID(ctx, seriesID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SeriesResponse{}, ErrNotFound
		}
		return dto.SeriesResponse{}, err
	}

	if series.Sessions, err = s.sessions.ListBySeries(ctx, seriesID, ""); err != nil {
		return dto.SeriesResponse{}, err
	}
	return dto.NewSeriesResponse(series), nil
}

func (s *seriesService) Update(ctx context.Context, callerID, seriesID string, req dto.UpdateSeriesRequest) (dto.SeriesResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SeriesResponse{}, err
	}

	series, err := s.ownedSeries(ctx, callerID, seriesID)
	if err != nil {
		return dto.SeriesResponse{}, err
	}

	if req.Title != nil {
		series.Title = s.sanitizer.Sanitize(*req.Title)
	}
	if req.Description != nil {
		series.Description = s.sanitizer.Sanitize(*req.Description)
	}
	if req.ImageURL != nil {
		series.ImageURL = *req.ImageURL
	}

	if err := s.series.Update(ctx, &series); err != nil {
		return dto.SeriesResponse{}, err
	}
	return dto.NewSeriesResponse(series), nil
}

func (s *seriesService) Delete(ctx context.Context, callerID, seriesID string) error {
	if _, err := s.ownedSeries(ctx, callerID, seriesID); err != nil {
		return err
	}
	return s.series.Delete(ctx, seriesID)
}

func (s *seriesService) List(ctx context.Context) ([]dto.SeriesResponse, error) {
	series, err := s.series.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewSeriesResponseSlice(series), nil
}

func (s *seriesService) ListMine(ctx context.Context, userID string) ([]dto.SeriesResponse, error) {
	series, err := s.series.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewSeriesResponseSlice(series), nil
}

func (s *seriesService) ownedSeries(ctx context.Context, callerID, seriesID string) (models.Series, error) {
	series, err := s.series.GetByID(ctx, seriesID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Series{}, ErrForbidden
		}
		return models.Series{}, err
	}
	if series.LeaderID != callerID {
		return models.Series{}, ErrForbidden
	}
	return series, nil
}
