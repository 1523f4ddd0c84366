package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mammoth-reserve/reserve-backend/internal/config"
	"github.com/mammoth-reserve/reserve-backend/internal/dto"
	"github.com/mammoth-reserve/reserve-backend/internal/models"
	"github.com/mammoth-reserve/reserve-backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidAccessCode  = errors.New("invalid staff access code")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
)

// AuthService issues sessions for the three sign-in paths: approved
// organizations (email + password), dining-hall staff (shared access
// code), and students (accountless guest sessions).
type AuthService struct {
	store store.Store
	cfg   *config.Config
}

func NewAuthService(st store.Store, cfg *config.Config) *AuthService {
	return &AuthService{store: st, cfg: cfg}
}

// Authenticate matches the email case-insensitively against an approved
// organization and compares the password against its bcrypt hash. Pending,
// rejected, and revoked registrations cannot sign in.
func (s *AuthService) Authenticate(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.store.Users().GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != models.UserApproved || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.generateAccessToken(user.ID.String(), user.Email, user.Type)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Type,
		},
	}, nil
}

// StaffLogin verifies the shared dining-hall access code. Staff sessions
// are access-token only; they have no backing user record.
func (s *AuthService) StaffLogin(req *dto.StaffLoginRequest) (*dto.AuthResponse, error) {
	if s.cfg.StaffAccessCode == "" {
		return nil, ErrInvalidAccessCode
	}
	if subtle.ConstantTimeCompare([]byte(req.AccessCode), []byte(s.cfg.StaffAccessCode)) != 1 {
		return nil, ErrInvalidAccessCode
	}

	accessToken, err := s.generateAccessToken(uuid.New().String(), "", models.RoleDiningHall)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken: accessToken,
		User:        dto.UserResponse{Role: models.RoleDiningHall},
	}, nil
}

// StudentSession issues an accountless guest session with the student
// role, mirroring the sign-in-free student entry point.
func (s *AuthService) StudentSession() (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(uuid.New().String(), "", models.RoleStudent)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken: accessToken,
		User:        dto.UserResponse{Role: models.RoleStudent},
	}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// new pair is issued. Revoked or expired tokens fail, including tokens
// invalidated by an approval revoke.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	stored, err := s.store.RefreshTokens().GetByHash(ctx, hashToken(req.RefreshToken))
	if err != nil || stored.Revoked {
		return nil, ErrInvalidToken
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.store.RefreshTokens().Revoke(ctx, stored.ID)
		return nil, ErrInvalidToken
	}
	if err := s.store.RefreshTokens().Revoke(ctx, stored.ID); err != nil {
		return nil, err
	}

	user, err := s.store.Users().Get(ctx, stored.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if user.Status != models.UserApproved {
		return nil, ErrInvalidToken
	}

	accessToken, err := s.generateAccessToken(user.ID.String(), user.Email, user.Type)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Type,
		},
	}, nil
}

// Logout revokes the presented refresh token. Unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	stored, err := s.store.RefreshTokens().GetByHash(ctx, hashToken(req.RefreshToken))
	if err != nil {
		return nil
	}
	return s.store.RefreshTokens().Revoke(ctx, stored.ID)
}

func (s *AuthService) generateAccessToken(sub, email, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"role":  role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}
	if err := s.store.RefreshTokens().Create(ctx, record); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
