package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// AuthService handles phone verification for members and credential
// login for the single admin identity.
type AuthService struct {
	provider VerificationProvider
	members  repository.MemberRepository
	tokens   *auth.TokenManager
	cfg      config.AuthConfig
	logger   *zap.Logger
}

// Session is an issued access token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, provider VerificationProvider, members repository.MemberRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		provider: provider,
		members:  members,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// SendOTP normalizes the phone and asks the verification collaborator
// to issue a challenge.
func (s *AuthService) SendOTP(ctx context.Context, rawPhone string) error {
	phone := NormalizePhone(rawPhone, s.cfg.DefaultCountryCode)
	if phone == "" {
		return apperrors.NewValidationError("phone is required", nil)
	}
	return s.provider.Send(ctx, phone)
}

// VerifyOTP checks the candidate code; on success the member is
// upserted by phone and a session token is issued.
func (s *AuthService) VerifyOTP(ctx context.Context, rawPhone, code string) (*domain.Member, *Session, error) {
	phone := NormalizePhone(rawPhone, s.cfg.DefaultCountryCode)
	if phone == "" || code == "" {
		return nil, nil, apperrors.NewValidationError("phone and code are required", nil)
	}

	ok, err := s.provider.Verify(ctx, phone, code)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, apperrors.NewUnauthorized("invalid verification code")
	}

	member, err := s.members.UpsertByPhone(ctx, phone, repository.MemberProfile{})
	if err != nil {
		return nil, nil, err
	}

	token, expiresAt, err := s.tokens.GenerateToken(member.ID, domain.SubjectTypeMember, member.Phone)
	if err != nil {
		return nil, nil, err
	}
	return member, &Session{Token: token, ExpiresAt: expiresAt}, nil
}

// AdminLogin checks dashboard credentials against the configured
// bcrypt hash and issues an admin session.
func (s *AuthService) AdminLogin(ctx context.Context, username, password string) (*Session, error) {
	if s.cfg.AdminPasswordHash == "" {
		return nil, apperrors.NewUnauthorized("admin login not configured")
	}
	if username != s.cfg.AdminUsername {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(s.cfg.AdminUsername, domain.SubjectTypeAdmin, "")
	if err != nil {
		return nil, err
	}
	s.logger.Info("admin login", zap.String("username", username))
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}
