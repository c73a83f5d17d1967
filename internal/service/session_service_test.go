package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/utils"
)

func TestSessionCreateMintsJoinCode(t *testing.T) {
	db := setupTestDB(t)
	svc := newSessionService(db)
	leader := seedUser(t, db, "leader", models.RoleLeader)

	created, err := svc.Create(testCtx, leader.ID, dto.CreateSessionRequest{
		Title:     "Genesis Kickoff",
		StartDate: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, created.JoinCode, utils.JoinCodeLength)
	require.Equal(t, models.VisibilityPublic, created.Visibility)
	require.Equal(t, leader.ID, created.LeaderID)
}

func TestSessionCreateRequiresLeaderRole(t *testing.T) {
	db := setupTestDB(t)
	svc := newSessionService(db)
	member := seedUser(t, db, "member", models.RoleMember)
	admin := seedUser(t, db, "admin", models.RoleAdmin)

	_, err := svc.Create(testCtx, member.ID, dto.CreateSessionRequest{
		Title:     "Not Allowed",
		StartDate: time.Now().Add(time.Hour),
	})
	require.ErrorIs(t, err, ErrForbidden)
	require.Equal(t, int64(0), sessionCount(t, db))

	_, err = svc.Create(testCtx, admin.ID, dto.CreateSessionRequest{
		Title:     "Admin Led",
		StartDate: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
}

func TestSessionCreateInSeriesPullsSeriesAudience(t *testing.T) {
	db := setupTestDB(t)
	svc := newSessionService(db)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	alice := seedUser(t, db, "alice", models.RoleMember)
	bob := seedUser(t, db, "bob", models.RoleMember)

	series := seedSeries(t, db, leader.ID)
	first := seedSession(t, db, leader.ID, "AAAAA2", models.VisibilityPublic, &series.ID)
	second := seedSession(t, db, leader.ID, "AAAAA3", models.VisibilityPublic, &series.ID)
	seedParticipant(t, db, first.ID, alice.ID)
	seedParticipant(t, db, second.ID, alice.ID)
	seedParticipant(t, db, second.ID, bob.ID)

	created, err := svc.Create(testCtx, leader.ID, dto.CreateSessionRequest{
		Title:     "Week Three",
		StartDate: time.Now().Add(time.Hour),
		SeriesID:  &series.ID,
	})
	require.NoError(t, err)

	// Alice and Bob both participate somewhere in the series; each lands in
	// the new session exactly once.
	require.Equal(t, int64(2), participantCount(t, db, created.ID))
}

func TestSessionCreateRejectsForeignSeries(t *testing.T) {
	db := setupTestDB(t)
	svc := newSessionService(db)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	other := seedUser(t, db, "other", models.RoleLeader)
	series := seedSeries(t, db, other.ID)

	_, err := svc.Create(testCtx, leader.ID, dto.CreateSessionRequest{
		Title:     "Hijack",
		StartDate: time.Now(),
		SeriesID:  &series.ID,
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSessionUpdateAttachMergesAudienceBothWays(t *testing.T) {
	db := setupTestDB(t)
	svc := newSessionService(db)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	alice := seedUser(t, db, "alice", models.RoleMember)
	bob := seedUser(t, db, "bob", models.RoleMember)

	series := seedSeries(t, db, leader.ID)
	inSeries := seedSession(t, db, leader.ID, "BBBBB2", models.VisibilityPublic, &series.ID)
	standalone := seedSession(t, db, leader.ID, "BBBBB3", models.VisibilityPublic, nil)
	seedParticipant(t, db, inSeries.ID, alice.ID)
	seedParticipant(t, db, standalone.ID, bob.ID)

	updated, err := svc.Update(testCtx, leader.ID, standalone.ID, dto.UpdateSessionRequest{SeriesID: &series.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.SeriesID)
	require.Equal(t, series.ID, *updated.SeriesID)

	// Alice flows into the attached session, Bob flows out to the sibling.
	require.Equal(t, int64(2), participantCount(t, db, standalone.ID))
	require.Equal(t, int64(2), participantCount(t, db, inSeries.ID))
}

func TestSessionUpdateDetachLeavesParticipants(t *testing.T) {
	db := setupTestDB(t)
	svc := newSessionService(db)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	alice := seedUser(t, db, "alice", models.RoleMember)

	series := seedSeries(t, db, leader.ID)
	session := seedSession(t, db, leader.ID, "CCCCC2", models.VisibilityPublic, &series.ID)
	seedParticipant(t, db, session.ID, alice.ID)

	detach := ""
	updated, err := svc.Update(testCtx, leader.ID, session.ID, dto.UpdateSessionRequest{SeriesID: &detach})
	require.NoError(t, err)
	require.Nil(t, updated.SeriesID)
	require.Equal(t, int64(1), participantCount(t, db, session.ID))
}

func TestSessionAuthorizePrivateRules(t *testing.T) {
	db := setupTestDB(t)
	svc := newSessionService(db)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	member := seedUser(t, db, "member", models.RoleMember)
	outsider := seedUser(t, db, "outsider", models.RoleMember)

	session := seedSession(t, db, leader.ID, "DDDDD2", models.VisibilityPrivate, nil)
	seedParticipant(t, db, session.ID, member.ID)

	loaded, err := svc.Get(testCtx, leader.ID, session.ID)
	require.NoError(t, err)
	require.Equal(t, session.JoinCode, loaded.JoinCode, "leader sees the join code")

	asMember, err := svc.Get(testCtx, member.ID, session.ID)
	require.NoError(t, err)
	require.Empty(t, asMember.JoinCode, "join code is leader-only")

	_, err = svc.Get(testCtx, outsider.ID, session.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSessionAuthorizeHonorsAcceptedInvite(t *testing.T) {
	db := setupTestDB(t)
	svc := newSessionService(db)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	invitee := seedUser(t, db, "invitee", models.RoleMember)
	pending := seedUser(t, db, "pending", models.RoleMember)
	session := seedSession(t, db, leader.ID, "DDDDD3", models.VisibilityPrivate, nil)

	require.NoError(t, db.Create(&models.JoinRequest{
		SessionID: session.ID, FromID: leader.ID, ToID: invitee.ID, Status: models.JoinRequestAccepted,
	}).Error)
	require.NoError(t, db.Create(&models.JoinRequest{
		SessionID: session.ID, FromID: leader.ID, ToID: pending.ID, Status: models.JoinRequestPending,
	}).Error)

	// An accepted invite grants read access before the invitee joins.
	_, err := svc.Get(testCtx, invitee.ID, session.ID)
	require.NoError(t, err)

	_, err = svc.Get(testCtx, pending.ID, session.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSessionListIsPaginated(t *testing.T) {
	db := setupTestDB(t)
	svc := newSessionService(db)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	viewer := seedUser(t, db, "viewer", models.RoleMember)
	seedSession(t, db, leader.ID, "LIST01", models.VisibilityPublic, nil)
	seedSession(t, db, leader.ID, "LIST02", models.VisibilityPrivate, nil)

	all, err := svc.List(testCtx, viewer.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, session := range all {
		require.Empty(t, session.JoinCode, "join codes are leader-only")
	}

	page, err := svc.List(testCtx, viewer.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
}

func TestSessionGetMissingIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newSessionService(db)
	viewer := seedUser(t, db, "viewer", models.RoleMember)

	_, err := svc.Get(testCtx, viewer.ID, "11111111-1111-4111-8111-111111111111")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRegenerateJoinCodeInvalidatesOld(t *testing.T) {
	db := setupTestDB(t)
	svc := newSessionService(db)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	member := seedUser(t, db, "member", models.RoleMember)
	session := seedSession(t, db, leader.ID, "EEEEE2", models.VisibilityPublic, nil)

	_, err := svc.RegenerateJoinCode(testCtx, member.ID, session.ID)
	require.ErrorIs(t, err, ErrForbidden)

	rotated, err := svc.RegenerateJoinCode(testCtx, leader.ID, session.ID)
	require.NoError(t, err)
	require.NotEqual(t, "EEEEE2", rotated.JoinCode)
	require.Len(t, rotated.JoinCode, utils.JoinCodeLength)

	var stored models.Session
	require.NoError(t, db.First(&stored, "id = ?", session.ID).Error)
	require.Equal(t, rotated.JoinCode, stored.JoinCode)
}

func TestSessionDeleteRequiresLeader(t *testing.T) {
	db := setupTestDB(t)
	svc := newSessionService(db)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	member := seedUser(t, db, "member", models.RoleMember)
	session := seedSession(t, db, leader.ID, "FFFFF2", models.VisibilityPublic, nil)

	require.ErrorIs(t, svc.Delete(testCtx, member.ID, session.ID), ErrForbidden)
	require.NoError(t, svc.Delete(testCtx, leader.ID, session.ID))

	_, err := svc.Get(testCtx, leader.ID, session.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
