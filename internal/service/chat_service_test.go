package service

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/realtime"
	"github.com/berea-app/berea-api/internal/repository"
)

func newChatService(db *gorm.DB, broker *realtime.Broker) ChatService {
	return NewChatService(
		repository.NewChatRepository(db),
		repository.NewSessionRepository(db),
		repository.NewParticipantRepository(db),
		repository.NewGroupRepository(db),
		broker,
		testValidator(),
		zerolog.Nop(),
	)
}

func TestChatSessionRoomAuthorization(t *testing.T) {
	db := setupTestDB(t)
	svc := newChatService(db, nil)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	member := seedUser(t, db, "member", models.RoleMember)
	outsider := seedUser(t, db, "outsider", models.RoleMember)
	session := seedSession(t, db, leader.ID, "CHAT01", models.VisibilityPublic, nil)
	seedParticipant(t, db, session.ID, member.ID)

	// Public visibility does not open the chat room; membership does.
	_, err := svc.SendToSession(testCtx, outsider.ID, session.ID, dto.SendChatMessageRequest{Message: "hi"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.SendToSession(testCtx, member.ID, session.ID, dto.SendChatMessageRequest{Message: "hi"})
	require.NoError(t, err)
	_, err = svc.SendToSession(testCtx, leader.ID, session.ID, dto.SendChatMessageRequest{Message: "welcome"})
	require.NoError(t, err)

	history, err := svc.SessionHistory(testCtx, member.ID, session.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "hi", history[0].Message, "history is oldest first")

	_, err = svc.SessionHistory(testCtx, outsider.ID, session.ID, 0)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestChatSendBroadcastsToRoomTopic(t *testing.T) {
	db := setupTestDB(t)
	broker := realtime.NewBroker(nil, "", nil, zerolog.Nop())
	svc := newChatService(db, broker)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	session := seedSession(t, db, leader.ID, "CHAT11", models.VisibilityPublic, nil)

	sub := broker.Subscribe(realtime.ChatMessageAddedTopic(session.ID))
	defer sub.Close()

	sent, err := svc.SendToSession(testCtx, leader.ID, session.ID, dto.SendChatMessageRequest{Message: "<i>hello</i>"})
	require.NoError(t, err)
	require.Equal(t, "<i>hello</i>", sent.Message)

	select {
	case message := <-sub.C:
		require.Equal(t, realtime.ChatMessageAddedTopic(session.ID), message.Topic)
	default:
		t.Fatal("expected chat broadcast")
	}
}

func TestChatGroupRoomAuthorization(t *testing.T) {
	db := setupTestDB(t)
	svc := newChatService(db, nil)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	member := seedUser(t, db, "member", models.RoleMember)
	outsider := seedUser(t, db, "outsider", models.RoleMember)

	group := models.Group{Name: "Team", Visibility: models.VisibilityPublic, LeaderID: leader.ID}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&models.GroupMember{GroupID: group.ID, UserID: member.ID, Role: models.RoleMember}).Error)

	_, err := svc.SendToGroup(testCtx, outsider.ID, group.ID, dto.SendChatMessageRequest{Message: "hi"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.SendToGroup(testCtx, member.ID, group.ID, dto.SendChatMessageRequest{Message: "hi"})
	require.NoError(t, err)

	history, err := svc.GroupHistory(testCtx, leader.ID, group.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)

	require.NoError(t, svc.AuthorizeGroupRoom(testCtx, leader.ID, group.ID))
	require.ErrorIs(t, svc.AuthorizeGroupRoom(testCtx, outsider.ID, group.ID), ErrForbidden)
}

func TestChatRejectsEmptyAfterSanitization(t *testing.T) {
	db := setupTestDB(t)
	svc := newChatService(db, nil)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	session := seedSession(t, db, leader.ID, "CHAT21", models.VisibilityPublic, nil)

	_, err := svc.SendToSession(testCtx, leader.ID, session.ID, dto.SendChatMessageRequest{Message: "<script>x</script>"})
	require.Error(t, err)
}
