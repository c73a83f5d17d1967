package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/repository"
)

// PrayerService manages community prayer requests and their toggleable
// reactions.
type PrayerService interface {
	Create(ctx context.Context, userID string, req dto.CreatePrayerRequestRequest) (dto.PrayerRequestResponse, error)
	Get(ctx context.Context, viewerID, requestID string) (dto.PrayerRequestResponse, error)
	Delete(ctx context.Context, callerID, requestID string) error
	List(ctx context.Context, viewerID string) ([]dto.PrayerRequestResponse, error)
	ToggleReaction(ctx context.Context, userID, requestID string, req dto.TogglePrayerReactionRequest) (dto.TogglePrayerReactionResponse, error)
}

type prayerService struct {
	prayers   repository.PrayerRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewPrayerService constructs the prayer service.
func NewPrayerService(prayers repository.PrayerRepository, validate *validator.Validate, logger zerolog.Logger) PrayerService {
	return &prayerService{
		prayers:   prayers,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "prayer_service").Logger(),
	}
}

func (s *prayerService) Create(ctx context.Context, userID string, req dto.CreatePrayerRequestRequest) (dto.PrayerRequestResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PrayerRequestResponse{}, err
	}

	request := models.PrayerRequest{
		UserID:      userID,
		Content:     strings.TrimSpace(s.sanitizer.Sanitize(req.Content)),
		IsAnonymous: req.IsAnonymous,
	}
	if err := s.prayers.Create(ctx, &request); err != nil {
		return dto.PrayerRequestResponse{}, err
	}
	return dto.NewPrayerRequestResponse(request, userID), nil
}

func (s *prayerService) Get(ctx context.Context, viewerID, requestID string) (dto.PrayerRequestResponse, error) {
	request, err := s.prayers.GetWithReactions(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PrayerRequestResponse{}, ErrNotFound
		}
		return dto.PrayerRequestResponse{}, err
	}
	return dto.NewPrayerRequestResponse(request, viewerID), nil
}

func (s *prayerService) Delete(ctx context.Context, callerID, requestID string) error {
	request, err := s.prayers.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}
	if request.UserID != callerID {
		return ErrForbidden
	}
	return s.prayers.Delete(ctx, requestID)
}

func (s *prayerService) List(ctx context.Context, viewerID string) ([]dto.PrayerRequestResponse, error) {
	requests, err := s.prayers.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewPrayerRequestResponseSlice(requests, viewerID), nil
}

// ToggleReaction adds the reaction if the user has not reacted with this type
// yet, removes it otherwise.
func (s *prayerService) ToggleReaction(ctx context.Context, userID, requestID string, req dto.TogglePrayerReactionRequest) (dto.TogglePrayerReactionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TogglePrayerReactionResponse{}, err
	}

	if _, err := s.prayers.GetByID(ctx, requestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TogglePrayerReactionResponse{}, ErrNotFound
		}
		return dto.TogglePrayerReactionResponse{}, err
	}

	existing, err := s.prayers.GetReaction(ctx, requestID, userID, req.ReactionType)
	switch {
	case err == nil:
		if err := s.prayers.DeleteReaction(ctx, existing.ID); err != nil {
			return dto.TogglePrayerReactionResponse{}, err
		}
		return dto.TogglePrayerReactionResponse{PrayerRequestID: requestID, ReactionType: req.ReactionType, Reacted: false}, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		reaction := models.PrayerReaction{PrayerRequestID: requestID, UserID: userID, ReactionType: req.ReactionType}
		if err := s.prayers.CreateReaction(ctx, &reaction); err != nil {
			return dto.TogglePrayerReactionResponse{}, err
		}
		return dto.TogglePrayerReactionResponse{PrayerRequestID: requestID, ReactionType: req.ReactionType, Reacted: true}, nil
	default:
		return dto.TogglePrayerReactionResponse{}, err
	}
}
