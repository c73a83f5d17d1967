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

func newCommentService(db *gorm.DB, broker *realtime.Broker) CommentService {
	sessions := newSessionService(db)
	return NewCommentService(
		repository.NewCommentRepository(db),
		repository.NewPassageRepository(db),
		repository.NewSessionRepository(db),
		repository.NewUserRepository(db),
		sessions,
		newNotificationService(db),
		broker,
		testValidator(),
		zerolog.Nop(),
	)
}

func seedPassage(t *testing.T, db *gorm.DB, sessionID string) models.ScripturePassage {
	t.Helper()
	passage := models.ScripturePassage{SessionID: sessionID, Book: "John", Chapter: 3, VerseStart: 16}
	require.NoError(t, db.Create(&passage).Error)
	return passage
}

func TestCommentAddSanitizesAndBroadcasts(t *testing.T) {
	db := setupTestDB(t)
	broker := realtime.NewBroker(nil, "", nil, zerolog.Nop())
	svc := newCommentService(db, broker)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	session := seedSession(t, db, leader.ID, "COMM01", models.VisibilityPublic, nil)
	passage := seedPassage(t, db, session.ID)

	// Comment events are scoped to the session, so one subscription covers
	// every passage in it.
	sub := broker.Subscribe(realtime.CommentAddedTopic(session.ID))
	defer sub.Close()

	comment, err := svc.Add(testCtx, leader.ID, session.ID, passage.ID, dto.AddCommentRequest{
		Content: `<script>alert("x")</script><b>amen</b>`,
	})
	require.NoError(t, err)
	require.Equal(t, "<b>amen</b>", comment.Content)
	require.NotNil(t, comment.User)

	select {
	case message := <-sub.C:
		require.Equal(t, realtime.CommentAddedTopic(session.ID), message.Topic)
	default:
		t.Fatal("expected comment broadcast")
	}

	secondPassage := seedPassage(t, db, session.ID)
	_, err = svc.Add(testCtx, leader.ID, session.ID, secondPassage.ID, dto.AddCommentRequest{Content: "also here"})
	require.NoError(t, err)

	select {
	case message := <-sub.C:
		require.Equal(t, realtime.CommentAddedTopic(session.ID), message.Topic)
	default:
		t.Fatal("expected broadcast from the second passage on the same stream")
	}
}

func TestCommentReplyRules(t *testing.T) {
	db := setupTestDB(t)
	svc := newCommentService(db, nil)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	alice := seedUser(t, db, "alice", models.RoleMember)
	session := seedSession(t, db, leader.ID, "COMM11", models.VisibilityPublic, nil)
	passage := seedPassage(t, db, session.ID)
	otherPassage := seedPassage(t, db, session.ID)

	root, err := svc.Add(testCtx, leader.ID, session.ID, passage.ID, dto.AddCommentRequest{Content: "Thoughts?"})
	require.NoError(t, err)

	// A reply on a different passage than its parent is rejected.
	_, err = svc.Add(testCtx, alice.ID, session.ID, otherPassage.ID, dto.AddCommentRequest{Content: "Hi", ParentID: &root.ID})
	require.ErrorIs(t, err, ErrReplyPassageMismatch)

	reply, err := svc.Add(testCtx, alice.ID, session.ID, passage.ID, dto.AddCommentRequest{Content: "Indeed", ParentID: &root.ID})
	require.NoError(t, err)

	// Replying to a reply exceeds the two-level cap.
	_, err = svc.Add(testCtx, leader.ID, session.ID, passage.ID, dto.AddCommentRequest{Content: "Deeper", ParentID: &reply.ID})
	require.ErrorIs(t, err, ErrReplyDepthExceeded)

	// The parent's author hears about the reply, but not about their own.
	require.Len(t, unreadNotifications(t, db, leader.ID), 1)
	require.Len(t, unreadNotifications(t, db, alice.ID), 0)
}

func TestCommentThreadAssemblesTwoLevels(t *testing.T) {
	db := setupTestDB(t)
	svc := newCommentService(db, nil)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	alice := seedUser(t, db, "alice", models.RoleMember)
	session := seedSession(t, db, leader.ID, "COMM21", models.VisibilityPublic, nil)
	passage := seedPassage(t, db, session.ID)

	first, err := svc.Add(testCtx, leader.ID, session.ID, passage.ID, dto.AddCommentRequest{Content: "First"})
	require.NoError(t, err)
	_, err = svc.Add(testCtx, alice.ID, session.ID, passage.ID, dto.AddCommentRequest{Content: "Reply A", ParentID: &first.ID})
	require.NoError(t, err)
	_, err = svc.Add(testCtx, leader.ID, session.ID, passage.ID, dto.AddCommentRequest{Content: "Reply B", ParentID: &first.ID})
	require.NoError(t, err)
	_, err = svc.Add(testCtx, alice.ID, session.ID, passage.ID, dto.AddCommentRequest{Content: "Second"})
	require.NoError(t, err)

	thread, err := svc.Thread(testCtx, alice.ID, passage.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	require.Equal(t, "First", thread[0].Content)
	require.Len(t, thread[0].Replies, 2)
	require.Empty(t, thread[1].Replies)
	require.NotNil(t, thread[0].User)
	require.Equal(t, leader.Name, thread[0].User.Name)
}

func TestCommentThreadRespectsSessionVisibility(t *testing.T) {
	db := setupTestDB(t)
	svc := newCommentService(db, nil)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	outsider := seedUser(t, db, "outsider", models.RoleMember)
	session := seedSession(t, db, leader.ID, "COMM31", models.VisibilityPrivate, nil)
	passage := seedPassage(t, db, session.ID)

	_, err := svc.Thread(testCtx, outsider.ID, passage.ID)
	require.ErrorIs(t, err, ErrForbidden)

	require.ErrorIs(t, svc.AuthorizeStream(testCtx, outsider.ID, session.ID), ErrForbidden)
	require.NoError(t, svc.AuthorizeStream(testCtx, leader.ID, session.ID))
}

func TestCommentSessionThreadSpansPassages(t *testing.T) {
	db := setupTestDB(t)
	svc := newCommentService(db, nil)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	alice := seedUser(t, db, "alice", models.RoleMember)
	session := seedSession(t, db, leader.ID, "COMM61", models.VisibilityPublic, nil)
	first := seedPassage(t, db, session.ID)
	second := seedPassage(t, db, session.ID)

	root, err := svc.Add(testCtx, leader.ID, session.ID, first.ID, dto.AddCommentRequest{Content: "On the first"})
	require.NoError(t, err)
	_, err = svc.Add(testCtx, alice.ID, session.ID, first.ID, dto.AddCommentRequest{Content: "Reply", ParentID: &root.ID})
	require.NoError(t, err)
	_, err = svc.Add(testCtx, alice.ID, session.ID, second.ID, dto.AddCommentRequest{Content: "On the second"})
	require.NoError(t, err)

	thread, err := svc.SessionThread(testCtx, alice.ID, session.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	require.Len(t, thread[0].Replies, 1)
	require.NotNil(t, thread[0].User)
	require.Empty(t, thread[1].Replies)
}

func TestCommentDeleteByAuthorOrLeader(t *testing.T) {
	db := setupTestDB(t)
	svc := newCommentService(db, nil)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	alice := seedUser(t, db, "alice", models.RoleMember)
	bob := seedUser(t, db, "bob", models.RoleMember)
	session := seedSession(t, db, leader.ID, "COMM41", models.VisibilityPublic, nil)
	passage := seedPassage(t, db, session.ID)

	mine, err := svc.Add(testCtx, alice.ID, session.ID, passage.ID, dto.AddCommentRequest{Content: "Mine"})
	require.NoError(t, err)
	other, err := svc.Add(testCtx, alice.ID, session.ID, passage.ID, dto.AddCommentRequest{Content: "Other"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(testCtx, bob.ID, mine.ID), ErrForbidden)
	require.NoError(t, svc.Delete(testCtx, alice.ID, mine.ID))
	require.NoError(t, svc.Delete(testCtx, leader.ID, other.ID))
}

func TestCommentUpdateOnlyByAuthor(t *testing.T) {
	db := setupTestDB(t)
	svc := newCommentService(db, nil)
	leader := seedUser(t, db, "leader", models.RoleLeader)
	alice := seedUser(t, db, "alice", models.RoleMember)
	session := seedSession(t, db, leader.ID, "COMM51", models.VisibilityPublic, nil)
	passage := seedPassage(t, db, session.ID)

	comment, err := svc.Add(testCtx, alice.ID, session.ID, passage.ID, dto.AddCommentRequest{Content: "Draft"})
	require.NoError(t, err)

	_, err = svc.Update(testCtx, leader.ID, comment.ID, dto.UpdateCommentRequest{Content: "Edited"})
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(testCtx, alice.ID, comment.ID, dto.UpdateCommentRequest{Content: "Edited"})
	require.NoError(t, err)
	require.Equal(t, "Edited", updated.Content)
}
