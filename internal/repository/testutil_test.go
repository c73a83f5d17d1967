package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/models"
)

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
		&models.Group{},
		&models.GroupMember{},
		&models.GroupSession{},
		&models.GroupSeries{},
		&models.Notification{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{Email: name + "@example.com", PasswordHash: "x", Name: name, Role: models.RoleMember}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedSession(t *testing.T, db *gorm.DB, leaderID, joinCode string, seriesID *string) models.Session {
	t.Helper()
	session := models.Session{
		Title:      "Study",
		Visibility: models.VisibilityPublic,
		JoinCode:   joinCode,
		LeaderID:   leaderID,
		SeriesID:   seriesID,
	}
	require.NoError(t, db.Create(&session).Error)
	return session
}

var testCtx = context.Background()
