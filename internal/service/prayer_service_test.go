package service

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/repository"
)

func newPrayerService(db *gorm.DB) PrayerService {
	return NewPrayerService(repository.NewPrayerRepository(db), testValidator(), zerolog.Nop())
}

func TestPrayerAnonymityHidesAuthorFromOthers(t *testing.T) {
	db := setupTestDB(t)
	svc := newPrayerService(db)
	alice := seedUser(t, db, "alice", models.RoleMember)
	bob := seedUser(t, db, "bob", models.RoleMember)

	created, err := svc.Create(testCtx, alice.ID, dto.CreatePrayerRequestRequest{Content: "Please pray", IsAnonymous: true})
	require.NoError(t, err)
	require.Equal(t, alice.ID, created.UserID, "the author always sees themselves")

	forBob, err := svc.List(testCtx, bob.ID)
	require.NoError(t, err)
	require.Len(t, forBob, 1)
	require.Empty(t, forBob[0].UserID)
	require.True(t, forBob[0].IsAnonymous)

	forAlice, err := svc.List(testCtx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, alice.ID, forAlice[0].UserID)
}

func TestPrayerGetIncludesReactions(t *testing.T) {
	db := setupTestDB(t)
	svc := newPrayerService(db)
	alice := seedUser(t, db, "alice", models.RoleMember)
	bob := seedUser(t, db, "bob", models.RoleMember)

	created, err := svc.Create(testCtx, alice.ID, dto.CreatePrayerRequestRequest{Content: "For rest", IsAnonymous: true})
	require.NoError(t, err)
	_, err = svc.ToggleReaction(testCtx, bob.ID, created.ID, dto.TogglePrayerReactionRequest{ReactionType: "HEART"})
	require.NoError(t, err)

	got, err := svc.Get(testCtx, bob.ID, created.ID)
	require.NoError(t, err)
	require.Empty(t, got.UserID)
	require.Equal(t, map[string]int{"HEART": 1}, got.ReactionCount)

	_, err = svc.Get(testCtx, bob.ID, "11111111-1111-4111-8111-111111111111")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPrayerDeleteOnlyByAuthor(t *testing.T) {
	db := setupTestDB(t)
	svc := newPrayerService(db)
	alice := seedUser(t, db, "alice", models.RoleMember)
	bob := seedUser(t, db, "bob", models.RoleMember)

	created, err := svc.Create(testCtx, alice.ID, dto.CreatePrayerRequestRequest{Content: "For healing"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(testCtx, bob.ID, created.ID), ErrForbidden)
	require.NoError(t, svc.Delete(testCtx, alice.ID, created.ID))
	require.ErrorIs(t, svc.Delete(testCtx, alice.ID, created.ID), ErrForbidden)
}

func TestPrayerReactionToggles(t *testing.T) {
	db := setupTestDB(t)
	svc := newPrayerService(db)
	alice := seedUser(t, db, "alice", models.RoleMember)
	bob := seedUser(t, db, "bob", models.RoleMember)

	created, err := svc.Create(testCtx, alice.ID, dto.CreatePrayerRequestRequest{Content: "For peace"})
	require.NoError(t, err)

	on, err := svc.ToggleReaction(testCtx, bob.ID, created.ID, dto.TogglePrayerReactionRequest{ReactionType: "HEART"})
	require.NoError(t, err)
	require.True(t, on.Reacted)

	// A second type from the same user coexists with the first.
	praying, err := svc.ToggleReaction(testCtx, bob.ID, created.ID, dto.TogglePrayerReactionRequest{ReactionType: "PRAYING_HANDS"})
	require.NoError(t, err)
	require.True(t, praying.Reacted)

	listed, err := svc.List(testCtx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"HEART": 1, "PRAYING_HANDS": 1}, listed[0].ReactionCount)

	off, err := svc.ToggleReaction(testCtx, bob.ID, created.ID, dto.TogglePrayerReactionRequest{ReactionType: "HEART"})
	require.NoError(t, err)
	require.False(t, off.Reacted)

	listed, err = svc.List(testCtx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"PRAYING_HANDS": 1}, listed[0].ReactionCount)
}

func TestPrayerReactionUnknownRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newPrayerService(db)
	alice := seedUser(t, db, "alice", models.RoleMember)

	_, err := svc.ToggleReaction(testCtx, alice.ID, "22222222-2222-4222-8222-222222222222", dto.TogglePrayerReactionRequest{ReactionType: "HEART"})
	require.ErrorIs(t, err, ErrNotFound)
}
