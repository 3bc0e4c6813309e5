package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/mailer"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/session"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var validate = validator.New()

// Session is what a successful sign-in hands back to the client.
type Session struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	ExpiresAt    time.Time       `json:"expiresAt"`
	Profile      *domain.Profile `json:"profile"`
}

// Claims is the payload of access tokens.
type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type SignUpInput struct {
	Email    string
	Password string
	FullName string
	Role     domain.Role
}

// AuthService is the in-process identity provider.
type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*domain.Profile, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	SignOut(ctx context.Context, refreshToken string) error
	GetCurrentUser(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error)

	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	UpdatePassword(ctx context.Context, userID primitive.ObjectID, currentPassword, newPassword string) error

	RequestMagicLink(ctx context.Context, email string) error
	SignInWithMagicLink(ctx context.Context, token string) (*Session, error)

	ParseAccessToken(tokenString string) (*Claims, error)
}

type AuthConfig struct {
	JWTSecret         string
	JWTExpiration     time.Duration
	RefreshExpiration time.Duration
	AppURL            string // base of reset and magic links
}

// authService implements the AuthService interface.
type authService struct {
	profiles repository.ProfileRepository
	sessions session.Store
	mail     mailer.Mailer
	cfg      AuthConfig
	now      func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(profiles repository.ProfileRepository, sessions session.Store, mail mailer.Mailer, cfg AuthConfig) AuthService {
	if cfg.JWTSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if cfg.JWTExpiration <= 0 {
		cfg.JWTExpiration = time.Hour
	}
	if cfg.RefreshExpiration <= 0 {
		cfg.RefreshExpiration = 30 * 24 * time.Hour
	}
	return &authService{
		profiles: profiles,
		sessions: sessions,
		mail:     mail,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SignUp registers a student or trainer. Admin accounts are only created by
// another admin through AdminService.CreateUser.
func (s *authService) SignUp(ctx context.Context, in SignUpInput) (*domain.Profile, error) {
	if in.Role != domain.RoleStudent && in.Role != domain.RoleTrainer {
		return nil, domain.NewValidationError("role must be student or trainer")
	}
	return createAccount(ctx, s.profiles, in)
}

// createAccount validates in, hashes the password and stores the profile.
// The role claim is mirrored into the profile.
func createAccount(ctx context.Context, profiles repository.ProfileRepository, in SignUpInput) (*domain.Profile, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.FullName) == "" {
		return nil, domain.NewValidationError("full name is required")
	}
	if !in.Role.Valid() {
		return nil, domain.NewValidationError("unknown role %q", in.Role)
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewStoreError(err, "hash password")
	}

	profile := &domain.Profile{
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if _, err := profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, domain.NewConflictError("user with this email already exists")
		}
		return nil, translate(err, "profile", "create profile")
	}
	profile.PasswordHash = ""
	return profile, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return "", domain.NewValidationError("email is not valid")
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return domain.NewValidationError("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

// SignIn handles user authentication and session issuance.
func (s *authService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, domain.NewValidationError("email and password cannot be empty")
	}

	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, translate(err, "profile", "sign in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthenticationFailed
	}
	return s.issueSession(ctx, profile)
}

// RefreshSession rotates the refresh token: the presented one is consumed
// and a new pair is issued.
func (s *authService) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	profile, err := s.consume(ctx, session.KindRefresh, refreshToken)
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, profile)
}

func (s *authService) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, session.KindRefresh, refreshToken); err != nil {
		return translate(err, "session", "revoke refresh token")
	}
	return nil
}

func (s *authService) GetCurrentUser(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "profile", "get current user")
	}
	profile.PasswordHash = ""
	return profile, nil
}

// RequestPasswordReset emails a one-hour reset link. Unknown emails succeed
// silently so the endpoint cannot be used to probe accounts.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		log.WithField("email", email).Debug("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return translate(err, "profile", "request password reset")
	}

	token, err := s.sessions.Issue(ctx, session.KindReset, profile.ID.Hex(), session.DefaultResetTTL)
	if err != nil {
		return translate(err, "session", "issue reset token")
	}
	if err := s.mail.SendPasswordReset(ctx, profile.Email, s.link("/reset-password", token)); err != nil {
		return domain.NewStoreError(err, "send password reset email")
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	profile, err := s.consume(ctx, session.KindReset, token)
	if err != nil {
		return err
	}
	return s.setPassword(ctx, profile.ID, newPassword)
}

func (s *authService) UpdatePassword(ctx context.Context, userID primitive.ObjectID, currentPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return translate(err, "profile", "update password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrAuthenticationFailed
	}
	return s.setPassword(ctx, userID, newPassword)
}

// setPassword stores the new hash and ends every session and pending link of
// the user. Access tokens already handed out stay valid until they expire.
func (s *authService) setPassword(ctx context.Context, userID primitive.ObjectID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.NewStoreError(err, "hash password")
	}
	if err := s.profiles.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return translate(err, "profile", "update password hash")
	}
	for _, kind := range []session.Kind{session.KindRefresh, session.KindReset, session.KindMagicLink} {
		if err := s.sessions.RevokeAll(ctx, kind, userID.Hex()); err != nil {
			return translate(err, "session", "revoke sessions")
		}
	}
	return nil
}

// RequestMagicLink emails a one-time 15 minute sign-in link.
func (s *authService) RequestMagicLink(ctx context.Context, email string) error {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return translate(err, "profile", "request magic link")
	}

	token, err := s.sessions.Issue(ctx, session.KindMagicLink, profile.ID.Hex(), session.DefaultMagicLinkTTL)
	if err != nil {
		return translate(err, "session", "issue magic link token")
	}
	if err := s.mail.SendMagicLink(ctx, profile.Email, s.link("/magic-link", token)); err != nil {
		return domain.NewStoreError(err, "send magic link email")
	}
	return nil
}

func (s *authService) SignInWithMagicLink(ctx context.Context, token string) (*Session, error) {
	profile, err := s.consume(ctx, session.KindMagicLink, token)
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, profile)
}

func (s *authService) link(path, token string) string {
	return strings.TrimRight(s.cfg.AppURL, "/") + path + "?token=" + url.QueryEscape(token)
}

// consume redeems a one-time token and loads the profile it was issued for.
func (s *authService) consume(ctx context.Context, kind session.Kind, token string) (*domain.Profile, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	userID, err := s.sessions.Consume(ctx, kind, token)
	if err != nil {
		if errors.Is(err, session.ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, translate(err, "session", "consume token")
	}
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, translate(err, "profile", "load token owner")
	}
	return profile, nil
}

func (s *authService) issueSession(ctx context.Context, profile *domain.Profile) (*Session, error) {
	accessToken, expiresAt, err := s.generateJWT(profile)
	if err != nil {
		return nil, domain.NewStoreError(err, "generate access token")
	}
	refreshToken, err := s.sessions.Issue(ctx, session.KindRefresh, profile.ID.Hex(), s.cfg.RefreshExpiration)
	if err != nil {
		return nil, translate(err, "session", "issue refresh token")
	}
	profile.PasswordHash = ""
	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		Profile:      profile,
	}, nil
}

// --- JWT Helper ---

// generateJWT creates a new access token for the given profile.
func (s *authService) generateJWT(profile *domain.Profile) (string, time.Time, error) {
	now := s.now()
	expirationTime := now.Add(s.cfg.JWTExpiration)
	claims := &Claims{
		UserID: profile.ID.Hex(),
		Role:   profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "gym-app",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signedToken, expirationTime, nil
}

// ParseAccessToken validates signature, algorithm and expiry.
func (s *authService) ParseAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
