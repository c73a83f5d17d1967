package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/repository"
)

// setupTestDB opens a fresh in-memory database migrated with the full schema.
// The database is named after the test so parallel packages never collide.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Series{},
		&models.Session{},
		&models.SessionParticipant{},
		&models.JoinRequest{},
		&models.ScripturePassage{},
		&models.SessionResource{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupSession{},
		&models.GroupSeries{},
		&models.Comment{},
		&models.ChatMessage{},
		&models.GroupChatMessage{},
		&models.Notification{},
		&models.PrayerRequest{},
		&models.PrayerReaction{},
	))
	return db
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()
	user := models.User{Email: name + "@example.com", PasswordHash: "x", Name: name, Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedSeries(t *testing.T, db *gorm.DB, leaderID string) models.Series {
	t.Helper()
	series := models.Series{Title: "Romans", LeaderID: leaderID}
	require.NoError(t, db.Create(&series).Error)
	return series
}

func seedSession(t *testing.T, db *gorm.DB, leaderID, joinCode, visibility string, seriesID *string) models.Session {
	t.Helper()
	session := models.Session{
		Title:      "Study",
		Visibility: visibility,
		JoinCode:   joinCode,
		LeaderID:   leaderID,
		SeriesID:   seriesID,
	}
	require.NoError(t, db.Create(&session).Error)
	return session
}

func seedParticipant(t *testing.T, db *gorm.DB, sessionID, userID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.SessionParticipant{SessionID: sessionID, UserID: userID, Role: models.RoleMember}).Error)
}

func sessionCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Session{}).Count(&count).Error)
	return count
}

func participantCount(t *testing.T, db *gorm.DB, sessionID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.SessionParticipant{}).Where("session_id = ?", sessionID).Count(&count).Error)
	return count
}

// newSessionService wires a session service over real repositories.
func newSessionService(db *gorm.DB) SessionService {
	return NewSessionService(
		repository.NewSessionRepository(db),
		repository.NewParticipantRepository(db),
		repository.NewSeriesRepository(db),
		repository.NewPassageRepository(db),
		repository.NewResourceRepository(db),
		repository.NewUserRepository(db),
		testValidator(),
		zerolog.Nop(),
	)
}

func newMembershipService(db *gorm.DB) MembershipService {
	return NewMembershipService(
		repository.NewSessionRepository(db),
		repository.NewParticipantRepository(db),
		repository.NewSeriesRepository(db),
		repository.NewUserRepository(db),
		newNotificationService(db),
		zerolog.Nop(),
	)
}

func newNotificationService(db *gorm.DB) NotificationService {
	return NewNotificationService(repository.NewNotificationRepository(db), nil, zerolog.Nop())
}

func unreadNotifications(t *testing.T, db *gorm.DB, userID string) []models.Notification {
	t.Helper()
	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ? AND read = ?", userID, false).Find(&notifications).Error)
	return notifications
}

var testCtx = context.Background()
