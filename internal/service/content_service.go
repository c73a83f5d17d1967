package service

import (
	"context"
	"errors"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/repository"
)

// ErrUnknownFileType covers resources whose declared MIME type is not a
// registered type.
var ErrUnknownFileType = errors.New("unrecognized file type")

// ContentService manages the material attached to a session. Scripture
// passages are leader-only; resources can also come from participants, and
// uploaders keep the right to remove their own.
type ContentService interface {
	AddPassage(ctx context.Context, callerID, sessionID string, req dto.AddPassageRequest) (dto.PassageResponse, error)
	RemovePassage(ctx context.Context, callerID, passageID string) error
	ListPassages(ctx context.Context, viewerID, sessionID string) ([]dto.PassageResponse, error)

	AddResource(ctx context.Context, callerID, sessionID string, req dto.AddResourceRequest) (dto.ResourceResponse, error)
	RemoveResource(ctx context.Context, callerID, resourceID string) error
	ListResources(ctx context.Context, viewerID, sessionID string) ([]dto.ResourceResponse, error)
}

type contentService struct {
	sessions     repository.SessionRepository
	participants repository.ParticipantRepository
	passages     repository.PassageRepository
	resources    repository.ResourceRepository
	guard        SessionService
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
}

// NewContentService constructs the content service. guard supplies the
// session visibility rules for reads.
func NewContentService(
	sessions repository.SessionRepository,
	participants repository.ParticipantRepository,
	passages repository.PassageRepository,
	resources repository.ResourceRepository,
	guard SessionService,
	validate *validator.Validate,
	logger zerolog.Logger,
) ContentService {
	return &contentService{
		sessions:     sessions,
		participants: participants,
		passages:     passages,
		resources:    resources,
		guard:        guard,
		validator:    validate,
		sanitizer:    bluemonday.StrictPolicy(),
		logger:       logger.With().Str("component", "content_service").Logger(),
	}
}

func (s *contentService) AddPassage(ctx context.Context, callerID, sessionID string, req dto.AddPassageRequest) (dto.PassageResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PassageResponse{}, err
	}
	if _, err := s.leaderSession(ctx, callerID, sessionID); err != nil {
		return dto.PassageResponse{}, err
	}

	passage := models.ScripturePassage{
		SessionID:  sessionID,
		Book:       strings.TrimSpace(req.Book),
		Chapter:    req.Chapter,
		VerseStart: req.VerseStart,
		VerseEnd:   req.VerseEnd,
		Content:    s.sanitizer.Sanitize(req.Content),
		Order:      req.Order,
	}
	if err := s.passages.Create(ctx, &passage); err != nil {
		return dto.PassageResponse{}, err
	}
	return dto.NewPassageResponse(passage), nil
}

func (s *contentService) RemovePassage(ctx context.Context, callerID, passageID string) error {
	passage, err := s.passages.GetByID(ctx, passageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}
	if _, err := s.leaderSession(ctx, callerID, passage.SessionID); err != nil {
		return err
	}
	return s.passages.Delete(ctx, passageID)
}

func (s *contentService) ListPassages(ctx context.Context, viewerID, sessionID string) ([]dto.PassageResponse, error) {
	if err := s.visibleSession(ctx, viewerID, sessionID); err != nil {
		return nil, err
	}

	passages, err := s.passages.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PassageResponse, 0, len(passages))
	for _, passage := range passages {
		out = append(out, dto.NewPassageResponse(passage))
	}
	return out, nil
}

func (s *contentService) AddResource(ctx context.Context, callerID, sessionID string, req dto.AddResourceRequest) (dto.ResourceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ResourceResponse{}, err
	}
	if err := s.memberSession(ctx, callerID, sessionID); err != nil {
		return dto.ResourceResponse{}, err
	}

	fileType, err := normalizeFileType(req.FileType, req.FileName)
	if err != nil {
		return dto.ResourceResponse{}, err
	}

	resourceType := req.ResourceType
	if resourceType == "" {
		resourceType = "FILE"
	}

	resource := models.SessionResource{
		SessionID:    sessionID,
		FileName:     strings.TrimSpace(req.FileName),
		FileURL:      req.FileURL,
		FileType:     fileType,
		ResourceType: resourceType,
		VideoID:      req.VideoID,
		Description:  s.sanitizer.Sanitize(req.Description),
		UploadedBy:   callerID,
	}
	if err := s.resources.Create(ctx, &resource); err != nil {
		return dto.ResourceResponse{}, err
	}
	return dto.NewResourceResponse(resource), nil
}

// RemoveResource deletes a resource. The uploader removes their own; the
// session leader removes any.
func (s *contentService) RemoveResource(ctx context.Context, callerID, resourceID string) error {
	resource, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}
	if resource.UploadedBy != callerID {
		if _, err := s.leaderSession(ctx, callerID, resource.SessionID); err != nil {
			return err
		}
	}
	return s.resources.Delete(ctx, resourceID)
}

func (s *contentService) ListResources(ctx context.Context, viewerID, sessionID string) ([]dto.ResourceResponse, error) {
	if err := s.visibleSession(ctx, viewerID, sessionID); err != nil {
		return nil, err
	}

	resources, err := s.resources.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ResourceResponse, 0, len(resources))
	for _, resource := range resources {
		out = append(out, dto.NewResourceResponse(resource))
	}
	return out, nil
}

func (s *contentService) leaderSession(ctx context.Context, callerID, sessionID string) (models.Session, error) {
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

// memberSession verifies the caller leads or participates in the session.
func (s *contentService) memberSession(ctx context.Context, callerID, sessionID string) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}
	if session.LeaderID == callerID {
		return nil
	}
	member, err := s.participants.Exists(ctx, sessionID, callerID)
	if err != nil {
		return err
	}
	if !member {
		return ErrForbidden
	}
	return nil
}

func (s *contentService) visibleSession(ctx context.Context, viewerID, sessionID string) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.guard.Authorize(ctx, viewerID, session)
}

// normalizeFileType validates the declared MIME type. A bare extension or an
// empty declaration falls back to resolution from the file name.
func normalizeFileType(declared, fileName string) (string, error) {
	declared = strings.TrimSpace(strings.ToLower(declared))
	if strings.Contains(declared, "/") {
		if known := mimetype.Lookup(declared); known != nil {
			return known.String(), nil
		}
		// Syntactically valid but unregistered types pass through unchanged.
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
			return mediaType, nil
		}
		return "", ErrUnknownFileType
	}

	ext := strings.TrimPrefix(declared, ".")
	if ext == "" {
		ext = strings.TrimPrefix(filepath.Ext(fileName), ".")
	}
	if ext == "" {
		return "", ErrUnknownFileType
	}
	if byExt := mime.TypeByExtension("." + ext); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil {
			return mediaType, nil
		}
	}
	return "", ErrUnknownFileType
}
