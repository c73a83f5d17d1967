package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/loader"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/realtime"
	"github.com/berea-app/berea-api/internal/repository"
)

// CommentService manages passage comment threads. Threads are two levels
// deep: top-level comments and their direct replies.
type CommentService interface {
	Add(ctx context.Context, userID, sessionID, passageID string, req dto.AddCommentRequest) (dto.CommentResponse, error)
	Update(ctx context.Context, callerID, commentID string, req dto.UpdateCommentRequest) (dto.CommentResponse, error)
	Delete(ctx context.Context, callerID, commentID string) error
	Thread(ctx context.Context, viewerID, passageID string) ([]dto.CommentResponse, error)
	SessionThread(ctx context.Context, viewerID, sessionID string) ([]dto.CommentResponse, error)

	// Stream authorization for the websocket upgrade path.
	AuthorizeStream(ctx context.Context, viewerID, sessionID string) error
}

type commentService struct {
	comments      repository.CommentRepository
	passages      repository.PassageRepository
	sessions      repository.SessionRepository
	users         repository.UserRepository
	guard         SessionService
	notifications NotificationService
	broker        *realtime.Broker
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
}

// NewCommentService constructs the comment service.
func NewCommentService(
	comments repository.CommentRepository,
	passages repository.PassageRepository,
	sessions repository.SessionRepository,
	users repository.UserRepository,
	guard SessionService,
	notifications NotificationService,
	broker *realtime.Broker,
	validate *validator.Validate,
	logger zerolog.Logger,
) CommentService {
	sanitizer := bluemonday.UGCPolicy()
	sanitizer.AllowElements("br")

	return &commentService{
		comments:      comments,
		passages:      passages,
		sessions:      sessions,
		users:         users,
		guard:         guard,
		notifications: notifications,
		broker:        broker,
		validator:     validate,
		sanitizer:     sanitizer,
		logger:        logger.With().Str("component", "comment_service").Logger(),
	}
}

func (s *commentService) Add(ctx context.Context, userID, sessionID, passageID string, req dto.AddCommentRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CommentResponse{}, err
	}

	passage, err := s.passages.GetByID(ctx, passageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CommentResponse{}, ErrNotFound
		}
		return dto.CommentResponse{}, err
	}
	if passage.SessionID != sessionID {
		return dto.CommentResponse{}, ErrNotFound
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CommentResponse{}, ErrNotFound
		}
		return dto.CommentResponse{}, err
	}
	if err := s.guard.Authorize(ctx, userID, session); err != nil {
		return dto.CommentResponse{}, err
	}

	var parent *models.Comment
	if req.ParentID != nil {
		loaded, err := s.comments.GetByID(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.CommentResponse{}, ErrNotFound
			}
			return dto.CommentResponse{}, err
		}
		if loaded.PassageID != passageID {
			return dto.CommentResponse{}, ErrReplyPassageMismatch
		}
		if loaded.ParentID != nil {
			return dto.CommentResponse{}, ErrReplyDepthExceeded
		}
		parent = &loaded
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if clean == "" {
		return dto.CommentResponse{}, fmt.Errorf("comment content empty after sanitization")
	}

	comment := models.Comment{
		SessionID:   sessionID,
		PassageID:   passageID,
		UserID:      userID,
		Content:     clean,
		VerseNumber: req.VerseNumber,
		ParentID:    req.ParentID,
	}
	if err := s.comments.Create(ctx, &comment); err != nil {
		return dto.CommentResponse{}, err
	}

	response := dto.NewCommentResponse(comment)
	if user, err := s.users.GetByID(ctx, userID); err == nil {
		converted := dto.NewUserResponse(user)
		response.User = &converted
	}

	if s.broker != nil {
		if err := s.broker.Publish(ctx, realtime.CommentAddedTopic(sessionID), response); err != nil {
			s.logger.Warn().Err(err).Str("comment_id", comment.ID).Msg("failed to broadcast comment")
		}
	}

	if parent != nil && parent.UserID != userID {
		if err := s.notifications.Publish(ctx, parent.UserID, NotificationCommentReply,
			"Someone replied to your comment",
			map[string]any{"session_id": sessionID, "passage_id": passageID, "comment_id": comment.ID}); err != nil {
			s.logger.Warn().Err(err).Str("comment_id", comment.ID).Msg("failed to notify parent author")
		}
	}

	return response, nil
}

func (s *commentService) Update(ctx context.Context, callerID, commentID string, req dto.UpdateCommentRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CommentResponse{}, err
	}

	comment, err := s.ownedComment(ctx, callerID, commentID)
	if err != nil {
		return dto.CommentResponse{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if clean == "" {
		return dto.CommentResponse{}, fmt.Errorf("comment content empty after sanitization")
	}
	comment.Content = clean
	if err := s.comments.Update(ctx, &comment); err != nil {
		return dto.CommentResponse{}, err
	}
	return dto.NewCommentResponse(comment), nil
}

// Delete removes a comment. The comment's author and the session leader may
// both delete.
func (s *commentService) Delete(ctx context.Context, callerID, commentID string) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}

	if comment.UserID != callerID {
		session, err := s.sessions.GetByID(ctx, comment.SessionID)
		if err != nil {
			return err
		}
		if session.LeaderID != callerID {
			return ErrForbidden
		}
	}
	return s.comments.Delete(ctx, commentID)
}

// Thread returns the two-level comment tree for a passage with authors
// resolved. Author lookups for the whole tree collapse into one batch.
func (s *commentService) Thread(ctx context.Context, viewerID, passageID string) ([]dto.CommentResponse, error) {
	passage, err := s.passages.GetByID(ctx, passageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	session, err := s.sessions.GetByID(ctx, passage.SessionID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, viewerID, session); err != nil {
		return nil, err
	}

	roots, err := s.comments.ListTopLevelByPassage(ctx, passageID)
	if err != nil {
		return nil, err
	}

	rootIDs := make([]string, 0, len(roots))
	for _, root := range roots {
		rootIDs = append(rootIDs, root.ID)
	}
	replies, err := s.comments.ListByParentIDs(ctx, rootIDs)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, roots, replies)
}

// SessionThread returns every comment thread in a session across all of its
// passages, same shape and visibility rule as Thread.
func (s *commentService) SessionThread(ctx context.Context, viewerID, sessionID string) ([]dto.CommentResponse, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.guard.Authorize(ctx, viewerID, session); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var roots, replies []models.Comment
	for _, comment := range comments {
		if comment.ParentID == nil {
			roots = append(roots, comment)
		} else {
			replies = append(replies, comment)
		}
	}
	return s.assemble(ctx, roots, replies)
}

// assemble attaches replies to their roots and resolves every author through
// one batched lookup.
func (s *commentService) assemble(ctx context.Context, roots, replies []models.Comment) ([]dto.CommentResponse, error) {
	authors := loader.New(func(ctx context.Context, ids []string) (map[string]models.User, error) {
		found, err := s.users.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]models.User, len(found))
		for _, user := range found {
			byID[user.ID] = user
		}
		return byID, nil
	})

	authorIDs := make([]string, 0, len(roots)+len(replies))
	for _, root := range roots {
		authorIDs = append(authorIDs, root.UserID)
	}
	for _, reply := range replies {
		authorIDs = append(authorIDs, reply.UserID)
	}
	users, err := authors.LoadMany(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	withAuthor := func(comment models.Comment) dto.CommentResponse {
		response := dto.NewCommentResponse(comment)
		if user, ok := users[comment.UserID]; ok {
			converted := dto.NewUserResponse(user)
			response.User = &converted
		}
		return response
	}

	byParent := make(map[string][]dto.CommentResponse, len(roots))
	for _, reply := range replies {
		byParent[*reply.ParentID] = append(byParent[*reply.ParentID], withAuthor(reply))
	}

	out := make([]dto.CommentResponse, 0, len(roots))
	for _, root := range roots {
		response := withAuthor(root)
		response.Replies = byParent[root.ID]
		out = append(out, response)
	}
	return out, nil
}

// AuthorizeStream checks that viewerID may watch the session's comment feed,
// which is the same visibility rule as reading a thread.
func (s *commentService) AuthorizeStream(ctx context.Context, viewerID, sessionID string) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.guard.Authorize(ctx, viewerID, session)
}

func (s *commentService) ownedComment(ctx context.Context, callerID, commentID string) (models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Comment{}, ErrForbidden
		}
		return models.Comment{}, err
	}
	if comment.UserID != callerID {
		return models.Comment{}, ErrForbidden
	}
	return comment, nil
}
