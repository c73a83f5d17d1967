package loader

import (
	"context"

	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/repository"
)

// Set bundles the per-request loaders used when expanding API responses.
// Handlers build one Set per request so sibling expansions of the same user
// or session collapse into a single query.
type Set struct {
	Users    *Loader[string, models.User]
	Sessions *Loader[string, models.Session]
}

// NewSet wires a fresh loader set over the repositories' bulk lookups.
func NewSet(users repository.UserRepository, sessions repository.SessionRepository) *Set {
	return &Set{
		Users: New(func(ctx context.Context, ids []string) (map[string]models.User, error) {
			found, err := users.GetByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			byID := make(map[string]models.User, len(found))
			for _, user := range found {
				byID[user.ID] = user
			}
			return byID, nil
		}),
		Sessions: New(func(ctx context.Context, ids []string) (map[string]models.Session, error) {
			found, err := sessions.GetByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			byID := make(map[string]models.Session, len(found))
			for _, session := range found {
				byID[session.ID] = session
			}
			return byID, nil
		}),
	}
}
