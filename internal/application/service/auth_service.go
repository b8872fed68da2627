package service

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/invoicer/internal/domain/repository"
	"github.com/sangkips/invoicer/pkg/apperror"
	"github.com/sangkips/invoicer/pkg/metrics"
	"github.com/sangkips/invoicer/pkg/utils"
	"go.uber.org/zap"
)

// SessionState is where a login attempt ended up
type SessionState int

const (
	SessionUnauthenticated SessionState = iota
	SessionAuthenticated
	SessionRejected
)

func (s SessionState) String() string {
	switch s {
	case SessionAuthenticated:
		return "authenticated"
	case SessionRejected:
		return "rejected"
	default:
		return "unauthenticated"
	}
}

// Session is the result of a login attempt
type Session struct {
	State       SessionState
	Username    string
	DisplayName string
	Token       string
	ExpiresAt   time.Time
}

// AuthService verifies configured credentials and issues session tokens
type AuthService struct {
	credRepo   repository.CredentialRepository
	jwtManager *utils.JWTManager
	metrics    *metrics.Metrics
	log        *zap.Logger
	dummyHash  string
}

// NewAuthService creates a new auth service
func NewAuthService(
	credRepo repository.CredentialRepository,
	jwtManager *utils.JWTManager,
	m *metrics.Metrics,
	log *zap.Logger,
) (*AuthService, error) {
	// compared against when the username is unknown so both paths cost the same
	dummy, err := utils.HashPassword("invoicer-timing-equalizer")
	if err != nil {
		return nil, err
	}
	return &AuthService{
		credRepo:   credRepo,
		jwtManager: jwtManager,
		metrics:    m,
		log:        log,
		dummyHash:  dummy,
	}, nil
}

// LoginInput represents the login input
type LoginInput struct {
	Username string
	Password string
}

// Login checks the password and returns an authenticated session.
// Unknown users and wrong passwords both yield ErrInvalidCredentials with a rejected session.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*Session, error) {
	rejected := &Session{State: SessionRejected, Username: input.Username}

	cred, err := s.credRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	if cred == nil {
		_, _ = utils.VerifyPassword(input.Password, s.dummyHash)
		s.metrics.LoginAttempt("rejected")
		s.log.Info("login rejected", zap.String("username", input.Username), zap.String("reason", "unknown user"))
		return rejected, apperror.ErrInvalidCredentials
	}

	ok, err := utils.VerifyPassword(input.Password, cred.PasswordHash)
	if err != nil {
		s.log.Error("stored password hash unusable", zap.String("username", cred.Username), zap.Error(err))
	}
	if !ok {
		s.metrics.LoginAttempt("rejected")
		s.log.Info("login rejected", zap.String("username", input.Username), zap.String("reason", "password mismatch"))
		return rejected, apperror.ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwtManager.GenerateAccessToken(cred.Username, cred.DisplayName)
	if err != nil {
		return nil, err
	}

	s.metrics.LoginAttempt("success")
	s.log.Info("login succeeded", zap.String("username", cred.Username))

	return &Session{
		State:       SessionAuthenticated,
		Username:    cred.Username,
		DisplayName: cred.DisplayName,
		Token:       token,
		ExpiresAt:   expiresAt,
	}, nil
}

// ValidateToken returns the claims of a valid session token
func (s *AuthService) ValidateToken(token string) (*utils.JWTClaims, error) {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, apperror.ErrTokenExpired
		}
		return nil, apperror.ErrInvalidToken
	}
	return claims, nil
}

// Profile is the public view of a configured user
type Profile struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// GetProfile returns the display details for username
func (s *AuthService) GetProfile(ctx context.Context, username string) (*Profile, error) {
	cred, err := s.credRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return &Profile{Username: cred.Username, DisplayName: cred.DisplayName}, nil
}
