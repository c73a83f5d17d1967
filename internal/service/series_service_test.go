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

func newSeriesService(db *gorm.DB) SeriesService {
	return NewSeriesService(repository.NewSeriesRepository(db), repository.NewSessionRepository(db), repository.NewUserRepository(db), testValidator(), zerolog.Nop())
}

func TestSeriesCreateRequiresLeaderRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newSeriesService(db)
	member := seedUser(t, db, "member", models.RoleMember)
	leader := seedUser(t, db, "leader", models.RoleLeader)

	_, err := svc.Create(testCtx, member.ID, dto.CreateSeriesRequest{Title: "Blocked"})
	require.ErrorIs(t, err, ErrForbidden)

	created, err := svc.Create(testCtx, leader.ID, dto.CreateSeriesRequest{Title: "Romans"})
	require.NoError(t, err)
	require.Equal(t, leader.ID, created.LeaderID)
}

func TestSeriesGetIncludesSessions(t *testing.T) {
	db := setupTestDB(t)
	svc := newSeriesService(db)
	leader := seedUser(t, db, "leader", models.RoleLeader)

	series := seedSeries(t, db, leader.ID)
	seedSession(t, db, leader.ID, "SERI01", models.VisibilityPublic, &series.ID)
	seedSession(t, db, leader.ID, "SERI02", models.VisibilityPublic, &series.ID)

	got, err := svc.Get(testCtx, series.ID)
	require.NoError(t, err)
	require.Len(t, got.Sessions, 2)

	_, err = svc.Get(testCtx, "44444444-4444-4444-8444-444444444444")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSeriesListReturnsAll(t *testing.T) {
	db := setupTestDB(t)
	svc := newSeriesService(db)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	other := seedUser(t, db, "other", models.RoleLeader)

	seedSeries(t, db, leader.ID)
	seedSeries(t, db, other.ID)

	all, err := svc.List(testCtx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	mine, err := svc.ListMine(testCtx, leader.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestSeriesUpdateAndDeleteAreLeaderOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := newSeriesService(db)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	other := seedUser(t, db, "other", models.RoleLeader)

	series := seedSeries(t, db, leader.ID)

	title := "Renamed"
	_, err := svc.Update(testCtx, other.ID, series.ID, dto.UpdateSeriesRequest{Title: &title})
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(testCtx, leader.ID, series.ID, dto.UpdateSeriesRequest{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)

	require.ErrorIs(t, svc.Delete(testCtx, other.ID, series.ID), ErrForbidden)
	require.NoError(t, svc.Delete(testCtx, leader.ID, series.ID))
}
