package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/mailer"
	"alcyxob/gym-app/internal/repository/memory"
	"alcyxob/gym-app/internal/session"
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ana@gym.test"
	testPassword = "correct-horse"
)

func newTestAuthService(t *testing.T) (AuthService, *mailer.LogMailer) {
	t.Helper()
	mail := mailer.NewLogMailer()
	svc := NewAuthService(memory.NewRepositories().Profiles, session.NewMemoryStore(), mail, AuthConfig{
		JWTSecret:     "test-secret",
		JWTExpiration: time.Minute,
		AppURL:        "https://gym.test/",
	})
	_, err := svc.SignUp(context.Background(), SignUpInput{
		Email:    testEmail,
		Password: testPassword,
		FullName: "Ana",
		Role:     domain.RoleStudent,
	})
	require.NoError(t, err)
	return svc, mail
}

// tokenFromLastMail pulls the token query parameter out of the newest email.
func tokenFromLastMail(t *testing.T, mail *mailer.LogMailer) string {
	t.Helper()
	sent := mail.Sent()
	require.NotEmpty(t, sent)
	for _, field := range strings.Fields(sent[len(sent)-1].Body) {
		if u, err := url.Parse(field); err == nil && u.Query().Get("token") != "" {
			return u.Query().Get("token")
		}
	}
	t.Fatal("no link in email")
	return ""
}

func TestAuthService_SignUp(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, SignUpInput{Email: "ANA@gym.test", Password: testPassword, FullName: "Ana", Role: domain.RoleStudent})
	requireKind(t, err, domain.KindConflict)

	_, err = svc.SignUp(ctx, SignUpInput{Email: "root@gym.test", Password: testPassword, FullName: "Root", Role: domain.RoleAdmin})
	requireKind(t, err, domain.KindValidation)

	_, err = svc.SignUp(ctx, SignUpInput{Email: "not-an-email", Password: testPassword, FullName: "X", Role: domain.RoleTrainer})
	requireKind(t, err, domain.KindValidation)

	_, err = svc.SignUp(ctx, SignUpInput{Email: "Ana <ana2@gym.test>", Password: testPassword, FullName: "X", Role: domain.RoleTrainer})
	requireKind(t, err, domain.KindValidation)

	_, err = svc.SignUp(ctx, SignUpInput{Email: "short@gym.test", Password: "short", FullName: "X", Role: domain.RoleTrainer})
	requireKind(t, err, domain.KindValidation)

	p, err := svc.SignUp(ctx, SignUpInput{Email: "  Coach@GYM.test ", Password: testPassword, FullName: "Coach", Role: domain.RoleTrainer})
	require.NoError(t, err)
	assert.Equal(t, "coach@gym.test", p.Email)
}

func TestAuthService_SignInAndParse(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.SignIn(ctx, testEmail, "wrong-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, err = svc.SignIn(ctx, "nobody@gym.test", testPassword)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	sess, err := svc.SignIn(ctx, testEmail, testPassword)
	require.NoError(t, err)
	assert.Empty(t, sess.Profile.PasswordHash)

	claims, err := svc.ParseAccessToken(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.Profile.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleStudent, claims.Role)

	_, err = svc.ParseAccessToken(sess.AccessToken + "x")
	assert.Error(t, err)
}

func TestAuthService_RefreshRotates(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	sess, err := svc.SignIn(ctx, testEmail, testPassword)
	require.NoError(t, err)

	next, err := svc.RefreshSession(ctx, sess.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, sess.RefreshToken, next.RefreshToken)

	_, err = svc.RefreshSession(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "a refresh token is single use")

	require.NoError(t, svc.SignOut(ctx, next.RefreshToken))
	_, err = svc.RefreshSession(ctx, next.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_PasswordReset(t *testing.T) {
	svc, mail := newTestAuthService(t)
	ctx := context.Background()
	existing, err := svc.SignIn(ctx, testEmail, testPassword)
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "nobody@gym.test"))
	assert.Empty(t, mail.Sent(), "unknown emails get no mail")

	require.NoError(t, svc.RequestPasswordReset(ctx, testEmail))
	token := tokenFromLastMail(t, mail)
	assert.Contains(t, mail.Sent()[0].Body, "https://gym.test/reset-password?token=")

	requireKind(t, svc.ResetPassword(ctx, token, "short"), domain.KindValidation)
	require.NoError(t, svc.ResetPassword(ctx, token, "new-password-1"))
	assert.ErrorIs(t, svc.ResetPassword(ctx, token, "new-password-2"), ErrInvalidToken)

	_, err = svc.RefreshSession(ctx, existing.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "a reset ends sessions opened with the old password")

	_, err = svc.SignIn(ctx, testEmail, testPassword)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, err = svc.SignIn(ctx, testEmail, "new-password-1")
	assert.NoError(t, err)
}

func TestAuthService_MagicLink(t *testing.T) {
	svc, mail := newTestAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestMagicLink(ctx, testEmail))
	token := tokenFromLastMail(t, mail)

	sess, err := svc.SignInWithMagicLink(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, testEmail, sess.Profile.Email)

	_, err = svc.SignInWithMagicLink(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.SignInWithMagicLink(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_UpdatePassword(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	sess, err := svc.SignIn(ctx, testEmail, testPassword)
	require.NoError(t, err)
	otherDevice, err := svc.SignIn(ctx, testEmail, testPassword)
	require.NoError(t, err)

	err = svc.UpdatePassword(ctx, sess.Profile.ID, "wrong-password", "new-password-1")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, err = svc.RefreshSession(ctx, otherDevice.RefreshToken)
	require.NoError(t, err, "a failed attempt keeps sessions")

	require.NoError(t, svc.UpdatePassword(ctx, sess.Profile.ID, testPassword, "new-password-1"))
	_, err = svc.RefreshSession(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.SignIn(ctx, testEmail, "new-password-1")
	assert.NoError(t, err)
}
