package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/repository"
)

const testJWTSecret = "test-secret"

func newAuthService(db *gorm.DB) AuthService {
	return NewAuthService(repository.NewUserRepository(db), testJWTSecret, time.Hour, testValidator(), zerolog.Nop())
}

func TestSignupAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	signed, err := svc.Signup(testCtx, dto.SignupRequest{
		Email:    "  Alice@Example.com ",
		Password: "correct horse",
		Name:     "Alice",
	})
	require.NoError(t, err)
	require.NotEmpty(t, signed.Token)
	require.Equal(t, "alice@example.com", signed.User.Email)
	require.Equal(t, models.RoleMember, signed.User.Role)

	token, err := jwt.Parse(signed.Token, func(*jwt.Token) (any, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, signed.User.ID, claims["sub"])
	require.Equal(t, models.RoleMember, claims["role"])

	logged, err := svc.Login(testCtx, dto.LoginRequest{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.Equal(t, signed.User.ID, logged.User.ID)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Signup(testCtx, dto.SignupRequest{Email: "alice@example.com", Password: "correct horse", Name: "Alice"})
	require.NoError(t, err)

	_, err = svc.Signup(testCtx, dto.SignupRequest{Email: "ALICE@example.com", Password: "other password", Name: "Imposter"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Signup(testCtx, dto.SignupRequest{Email: "alice@example.com", Password: "correct horse", Name: "Alice"})
	require.NoError(t, err)

	_, err = svc.Login(testCtx, dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// An unknown email looks identical to a wrong password from the outside.
	_, err = svc.Login(testCtx, dto.LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	signed, err := svc.Signup(testCtx, dto.SignupRequest{Email: "alice@example.com", Password: "correct horse", Name: "Alice"})
	require.NoError(t, err)

	err = svc.ChangePassword(testCtx, signed.User.ID, dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "brand new pass"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(testCtx, signed.User.ID, dto.ChangePasswordRequest{CurrentPassword: "correct horse", NewPassword: "brand new pass"})
	require.NoError(t, err)

	_, err = svc.Login(testCtx, dto.LoginRequest{Email: "alice@example.com", Password: "correct horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(testCtx, dto.LoginRequest{Email: "alice@example.com", Password: "brand new pass"})
	require.NoError(t, err)
}

func TestUpdateProfileGuardsEmailUniqueness(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	alice, err := svc.Signup(testCtx, dto.SignupRequest{Email: "alice@example.com", Password: "correct horse", Name: "Alice"})
	require.NoError(t, err)
	_, err = svc.Signup(testCtx, dto.SignupRequest{Email: "bob@example.com", Password: "correct horse", Name: "Bob"})
	require.NoError(t, err)

	taken := "bob@example.com"
	_, err = svc.UpdateProfile(testCtx, alice.User.ID, dto.UpdateProfileRequest{Email: &taken})
	require.ErrorIs(t, err, ErrEmailTaken)

	newName := "Alice B."
	updated, err := svc.UpdateProfile(testCtx, alice.User.ID, dto.UpdateProfileRequest{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, "Alice B.", updated.Name)
}
