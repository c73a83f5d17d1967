package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/repository"
)

// requireLeaderRole verifies the caller holds the LEADER role. ADMIN subsumes
// it. Creating sessions, series and groups is gated on this check.
func requireLeaderRole(ctx context.Context, users repository.UserRepository, userID string) error {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}
	if user.Role != models.RoleLeader && user.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}
