package service

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/realtime"
	"github.com/berea-app/berea-api/internal/repository"
)

func TestNotificationPublishPersistsAndBroadcasts(t *testing.T) {
	db := setupTestDB(t)
	broker := realtime.NewBroker(nil, "", nil, zerolog.Nop())
	svc := NewNotificationService(repository.NewNotificationRepository(db), broker, zerolog.Nop())
	alice := seedUser(t, db, "alice", models.RoleMember)

	sub := broker.Subscribe(realtime.NotificationTopic(alice.ID))
	defer sub.Close()

	err := svc.Publish(testCtx, alice.ID, NotificationCommentReply, "Someone replied", map[string]any{"comment_id": "c1"})
	require.NoError(t, err)

	require.Len(t, unreadNotifications(t, db, alice.ID), 1)

	select {
	case message := <-sub.C:
		require.Equal(t, realtime.NotificationTopic(alice.ID), message.Topic)
	default:
		t.Fatal("expected notification broadcast")
	}
}

func TestNotificationListAndUnreadCount(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotificationService(db)
	alice := seedUser(t, db, "alice", models.RoleMember)
	bob := seedUser(t, db, "bob", models.RoleMember)

	require.NoError(t, svc.Publish(testCtx, alice.ID, NotificationJoinRequest, "one", nil))
	require.NoError(t, svc.Publish(testCtx, alice.ID, NotificationGroupAssigned, "two", nil))
	require.NoError(t, svc.Publish(testCtx, bob.ID, NotificationJoinRequest, "other", nil))

	listed, err := svc.List(testCtx, alice.ID, false, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	count, err := svc.UnreadCount(testCtx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	require.NoError(t, svc.MarkRead(testCtx, alice.ID, listed[0].ID))

	unread, err := svc.List(testCtx, alice.ID, true, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
}

func TestNotificationMarkReadIsScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotificationService(db)
	alice := seedUser(t, db, "alice", models.RoleMember)
	bob := seedUser(t, db, "bob", models.RoleMember)

	require.NoError(t, svc.Publish(testCtx, alice.ID, NotificationJoinRequest, "hello", nil))
	listed, err := svc.List(testCtx, alice.ID, false, 0)
	require.NoError(t, err)

	// Another user cannot mark it, and the attempt reads as missing.
	require.ErrorIs(t, svc.MarkRead(testCtx, bob.ID, listed[0].ID), ErrNotFound)
	require.Len(t, unreadNotifications(t, db, alice.ID), 1)
}

func TestNotificationMarkAllRead(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotificationService(db)
	alice := seedUser(t, db, "alice", models.RoleMember)

	require.NoError(t, svc.Publish(testCtx, alice.ID, NotificationJoinRequest, "one", nil))
	require.NoError(t, svc.Publish(testCtx, alice.ID, NotificationJoinRequest, "two", nil))

	require.NoError(t, svc.MarkAllRead(testCtx, alice.ID))
	require.Empty(t, unreadNotifications(t, db, alice.ID))

	count, err := svc.UnreadCount(testCtx, alice.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}
