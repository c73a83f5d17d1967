package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/repository"
)

func newAdminService(db *gorm.DB, cache *redis.Client) AdminService {
	return NewAdminService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		repository.NewGroupRepository(db),
		repository.NewSeriesRepository(db),
		repository.NewCommentRepository(db),
		cache,
		time.Minute,
		testValidator(),
		zerolog.Nop(),
	)
}

func TestAdminListUsers(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminService(db, nil)
	seedUser(t, db, "alice", models.RoleMember)
	seedUser(t, db, "bob", models.RoleLeader)

	users, err := svc.ListUsers(testCtx)
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestAdminUpdateUserRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminService(db, nil)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	alice := seedUser(t, db, "alice", models.RoleMember)

	updated, err := svc.UpdateUserRole(testCtx, admin.ID, alice.ID, dto.UpdateUserRoleRequest{Role: models.RoleLeader})
	require.NoError(t, err)
	require.Equal(t, models.RoleLeader, updated.Role)

	// Admins cannot change their own role.
	_, err = svc.UpdateUserRole(testCtx, admin.ID, admin.ID, dto.UpdateUserRoleRequest{Role: models.RoleMember})
	require.ErrorIs(t, err, ErrSelfDemotion)

	_, err = svc.UpdateUserRole(testCtx, admin.ID, "33333333-3333-4333-8333-333333333333", dto.UpdateUserRoleRequest{Role: models.RoleLeader})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAdminDeleteUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminService(db, nil)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	alice := seedUser(t, db, "alice", models.RoleMember)

	require.ErrorIs(t, svc.DeleteUser(testCtx, admin.ID, admin.ID), ErrSelfDemotion)
	require.NoError(t, svc.DeleteUser(testCtx, admin.ID, alice.ID))
	require.ErrorIs(t, svc.DeleteUser(testCtx, admin.ID, alice.ID), ErrNotFound)
}

func TestAdminSessionAndGroupSurface(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminService(db, nil)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	session := seedSession(t, db, leader.ID, "ADMN01", models.VisibilityPrivate, nil)

	group := models.Group{Name: "Team", Visibility: models.VisibilityPublic, LeaderID: leader.ID}
	require.NoError(t, db.Create(&group).Error)

	sessions, err := svc.ListSessions(testCtx, 10, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	// Admin listings expose join codes even on private sessions.
	require.Equal(t, "ADMN01", sessions[0].JoinCode)

	groups, err := svc.ListGroups(testCtx)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	require.NoError(t, svc.DeleteSession(testCtx, session.ID))
	require.ErrorIs(t, svc.DeleteSession(testCtx, session.ID), ErrNotFound)
	require.NoError(t, svc.DeleteGroup(testCtx, group.ID))
	require.ErrorIs(t, svc.DeleteGroup(testCtx, group.ID), ErrNotFound)
}

func TestAdminDeleteSeries(t *testing.T) {
	db := setupTestDB(t)
	svc := newAdminService(db, nil)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	series := seedSeries(t, db, leader.ID)

	require.NoError(t, svc.DeleteSeries(testCtx, series.ID))
	require.ErrorIs(t, svc.DeleteSeries(testCtx, series.ID), ErrNotFound)
}

func TestAdminStatsAreCached(t *testing.T) {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := newAdminService(db, cache)

	leader := seedUser(t, db, "leader", models.RoleLeader)
	seedUser(t, db, "alice", models.RoleMember)
	seedSession(t, db, leader.ID, "STAT01", models.VisibilityPublic, nil)

	stats, err := svc.Stats(testCtx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalUsers)
	require.Equal(t, int64(1), stats.TotalLeaders)
	require.Equal(t, int64(1), stats.TotalMembers)
	require.Equal(t, int64(1), stats.TotalSessions)
	require.True(t, mr.Exists(adminStatsCacheKey))

	// Within the TTL the cached snapshot wins over fresh rows.
	seedUser(t, db, "late", models.RoleMember)
	cached, err := svc.Stats(testCtx)
	require.NoError(t, err)
	require.Equal(t, int64(2), cached.TotalUsers)

	mr.FastForward(2 * time.Minute)
	refreshed, err := svc.Stats(testCtx)
	require.NoError(t, err)
	require.Equal(t, int64(3), refreshed.TotalUsers)
}
