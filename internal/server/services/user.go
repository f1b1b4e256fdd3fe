// Package services contains server-side business logic. This file implements
// UserService, which handles sign-up, sign-in and issuing session tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/EdProwise/beawar-school-sub001/internal/common"
	"github.com/EdProwise/beawar-school-sub001/internal/cryptox"
	"github.com/EdProwise/beawar-school-sub001/internal/server/auth"
	"github.com/EdProwise/beawar-school-sub001/internal/server/config"
	"github.com/EdProwise/beawar-school-sub001/internal/server/models"
	"github.com/EdProwise/beawar-school-sub001/internal/server/repositories/repomanager"
)

// SessionUser is the public view of an account.
type SessionUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	CreatedAt    string         `json:"created_at"`
}

// Session is what the client stores and sends back as a bearer token.
type Session struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	ExpiresAt   int64        `json:"expires_at"`
	User        *SessionUser `json:"user"`
}

// AuthResult is the payload of sign-in and sign-up.
type AuthResult struct {
	User    *SessionUser `json:"user"`
	Session *Session     `json:"session"`
}

// UserService provides authentication-related operations:
// - SignUp: create an account and open a session
// - SignIn: verify credentials and open a session
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	now                         func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		now:                         time.Now,
	}
}

// SignUp creates an account. A taken email yields common.ErrorAlreadyExists.
func (s *UserService) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*AuthResult, error) {
	salt := cryptox.NewSalt()
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	user := &models.User{
		Email:        normalizeEmail(email),
		PasswordHash: cryptox.HashPassword(pw, salt),
		Salt:         salt,
		Metadata:     metadata,
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return s.openSession(u)
}

// SignIn checks the credentials. Unknown emails and wrong passwords both
// yield common.ErrorUnauthorized.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// same work as a real check, so timing does not reveal the account
			cryptox.VerifyPassword(pw, cryptox.NewSalt(), nil)
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !cryptox.VerifyPassword(pw, user.Salt, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}
	return s.openSession(user)
}

// GetUser returns the account behind a verified token.
func (s *UserService) GetUser(ctx context.Context, userID string) (*SessionUser, error) {
	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return publicUser(user), nil
}

func (s *UserService) openSession(user *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	pub := publicUser(user)
	return &AuthResult{
		User: pub,
		Session: &Session{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresIn:   int64(s.accessTokenValidityDuration.Seconds()),
			ExpiresAt:   s.now().Add(s.accessTokenValidityDuration).Unix(),
			User:        pub,
		},
	}, nil
}

func publicUser(u *models.User) *SessionUser {
	meta := u.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return &SessionUser{
		ID:           u.ID,
		Email:        u.Email,
		UserMetadata: meta,
		CreatedAt:    u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
