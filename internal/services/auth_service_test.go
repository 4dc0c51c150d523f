package services

import (
	"testing"

	"github.com/pharmatchapp/pharmatch-backend/internal/config"
	"github.com/pharmatchapp/pharmatch-backend/internal/dto"
	"github.com/pharmatchapp/pharmatch-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	cfg := config.Load()
	cfg.JWTSecret = "test-secret"
	return NewAuthService(db, cfg)
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	auth := newAuthService(db)

	resp, err := auth.Register(&dto.RegisterRequest{
		Email:    "pharmacist@test.dev",
		Password: "correct-horse",
		UserType: "candidate",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "candidate", resp.User.UserType)

	login, err := auth.Login(&dto.LoginRequest{Email: "pharmacist@test.dev", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = auth.Login(&dto.LoginRequest{Email: "pharmacist@test.dev", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	db := setupTestDB(t)
	auth := newAuthService(db)

	_, err := auth.Register(&dto.RegisterRequest{Email: "a@b.c", Password: "short", UserType: "candidate"})
	assert.Error(t, err)

	_, err = auth.Register(&dto.RegisterRequest{Email: "a@b.c", Password: "long-enough", UserType: "wizard"})
	assert.ErrorIs(t, err, ErrInvalidUserType)

	_, err = auth.Register(&dto.RegisterRequest{Email: "dup@b.c", Password: "long-enough", UserType: "employer"})
	require.NoError(t, err)
	_, err = auth.Register(&dto.RegisterRequest{Email: "dup@b.c", Password: "long-enough", UserType: "employer"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRefreshRotatesToken(t *testing.T) {
	db := setupTestDB(t)
	auth := newAuthService(db)

	resp, err := auth.Register(&dto.RegisterRequest{
		Email:    "rotate@test.dev",
		Password: "long-enough",
		UserType: "laboratory",
	})
	require.NoError(t, err)

	refreshed, err := auth.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)

	// The old token is single-use.
	_, err = auth.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesToken(t *testing.T) {
	db := setupTestDB(t)
	auth := newAuthService(db)

	resp, err := auth.Register(&dto.RegisterRequest{
		Email:    "logout@test.dev",
		Password: "long-enough",
		UserType: "animator",
	})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(&dto.LogoutRequest{RefreshToken: resp.RefreshToken}))
	_, err = auth.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDeleteAccount(t *testing.T) {
	db := setupTestDB(t)
	auth := newAuthService(db)

	resp, err := auth.Register(&dto.RegisterRequest{
		Email:    "gone@test.dev",
		Password: "long-enough",
		UserType: "candidate",
	})
	require.NoError(t, err)

	err = auth.DeleteAccount(resp.User.ID, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, auth.DeleteAccount(resp.User.ID, "long-enough"))

	var user models.User
	err = db.First(&user, "id = ?", resp.User.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
