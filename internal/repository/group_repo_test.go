package repository

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/berea-app/berea-api/internal/models"
)

func TestGroupListVisibleTo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)
	leader := seedUser(t, db, "leader")
	alice := seedUser(t, db, "alice")

	public := models.Group{Name: "Open", Visibility: models.VisibilityPublic, LeaderID: leader.ID}
	mine := models.Group{Name: "Mine", Visibility: models.VisibilityPrivate, LeaderID: alice.ID}
	joined := models.Group{Name: "Joined", Visibility: models.VisibilityPrivate, LeaderID: leader.ID}
	hidden := models.Group{Name: "Hidden", Visibility: models.VisibilityPrivate, LeaderID: leader.ID}
	for _, group := range []*models.Group{&public, &mine, &joined, &hidden} {
		require.NoError(t, repo.Create(testCtx, group))
	}
	require.NoError(t, repo.AddMember(testCtx, &models.GroupMember{
		GroupID: joined.ID, UserID: alice.ID, Role: models.RoleMember,
	}))

	visible, err := repo.ListVisibleTo(testCtx, alice.ID)
	require.NoError(t, err)

	ids := make([]string, 0, len(visible))
	for _, group := range visible {
		ids = append(ids, group.ID)
	}
	require.ElementsMatch(t, []string{public.ID, mine.ID, joined.ID}, ids)
}

func TestGroupAssignmentExistence(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)
	leader := seedUser(t, db, "leader")
	session := seedSession(t, db, leader.ID, "GRPR01", nil)

	group := models.Group{Name: "Team", Visibility: models.VisibilityPublic, LeaderID: leader.ID}
	require.NoError(t, repo.Create(testCtx, &group))

	exists, err := repo.SessionAssignmentExists(testCtx, group.ID, session.ID)
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, repo.CreateSessionAssignment(testCtx, &models.GroupSession{
		GroupID: group.ID, SessionID: session.ID,
	}))

	exists, err = repo.SessionAssignmentExists(testCtx, group.ID, session.ID)
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, repo.DeleteSessionAssignment(testCtx, group.ID, session.ID))
	exists, err = repo.SessionAssignmentExists(testCtx, group.ID, session.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestGroupMembersOrderedByJoin(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)
	leader := seedUser(t, db, "leader")
	alice := seedUser(t, db, "alice")

	group := models.Group{Name: "Team", Visibility: models.VisibilityPublic, LeaderID: leader.ID}
	require.NoError(t, repo.Create(testCtx, &group))
	require.NoError(t, repo.AddMember(testCtx, &models.GroupMember{GroupID: group.ID, UserID: leader.ID, Role: models.RoleLeader}))
	require.NoError(t, repo.AddMember(testCtx, &models.GroupMember{GroupID: group.ID, UserID: alice.ID, Role: models.RoleMember}))

	withMembers, err := repo.GetWithMembers(testCtx, group.ID)
	require.NoError(t, err)
	require.Len(t, withMembers.Members, 2)

	exists, err := repo.MemberExists(testCtx, group.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, exists)
}
