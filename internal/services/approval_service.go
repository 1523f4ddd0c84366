package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mammoth-reserve/reserve-backend/internal/dto"
	"github.com/mammoth-reserve/reserve-backend/internal/models"
	"github.com/mammoth-reserve/reserve-backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// ApprovalService runs the organization registration workflow:
// pending -> approved|rejected, approved -> pending (revoke),
// rejected -> pending (recover) or deleted.
type ApprovalService struct {
	store store.Store
}

func NewApprovalService(st store.Store) *ApprovalService {
	return &ApprovalService{store: st}
}

// Register submits a new organization registration. It starts pending
// with no usable credentials.
func (s *ApprovalService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.PendingUser, error) {
	if req.Email == "" {
		return nil, validationErr("email", "email is required")
	}
	if req.PhoneNumber == "" {
		return nil, validationErr("phoneNumber", "phone number is required")
	}
	if !models.ValidUserType(req.Type) {
		return nil, validationErr("type", fmt.Sprintf("unknown registration type %q", req.Type))
	}
	switch req.Type {
	case models.UserTypeStudentGroup:
		if req.GroupName == "" {
			return nil, validationErr("groupName", "group name is required")
		}
	case models.UserTypeFoodBank:
		if req.BusinessName == "" {
			return nil, validationErr("businessName", "business name is required")
		}
	}
	user := &models.PendingUser{
		ID:           uuid.New(),
		Seq:          time.Now().UnixNano(),
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		Type:         req.Type,
		Status:       models.UserPending,
		GroupName:    req.GroupName,
		College:      req.College,
		MemberCount:  req.MemberCount,
		BusinessName: req.BusinessName,
		ManagerName:  req.ManagerName,
		Location:     req.Location,
		Purpose:      req.Purpose,
	}

	// Email uniqueness is enforced atomically inside the store's Create.
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, validationErr("email", "email already registered")
		}
		return nil, err
	}

	slog.Info("registration submitted", "user_id", user.ID, "type", user.Type)
	return user, nil
}

// Approve grants the registration, stores a bcrypt hash of the assigned
// password, and returns the email preview payload for the operator.
func (s *ApprovalService) Approve(ctx context.Context, userID uuid.UUID, password string) (*dto.ApprovalResponse, error) {
	if len(password) < 8 {
		return nil, validationErr("password", "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.Users().Update(ctx, userID, func(u *models.PendingUser) error {
		u.Status = models.UserApproved
		u.PasswordHash = string(hash)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("registration approved", "user_id", user.ID, "type", user.Type)
	return &dto.ApprovalResponse{
		User:  user,
		Email: GenerateApprovalEmail(user, password),
	}, nil
}

// Reject marks the registration rejected. Credentials are untouched.
func (s *ApprovalService) Reject(ctx context.Context, userID uuid.UUID) (*models.PendingUser, error) {
	user, err := s.store.Users().Update(ctx, userID, func(u *models.PendingUser) error {
		u.Status = models.UserRejected
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("registration rejected", "user_id", userID)
	return user, nil
}

// Revoke returns an approved organization to pending and clears its
// credentials. All live sessions are invalidated immediately.
func (s *ApprovalService) Revoke(ctx context.Context, userID uuid.UUID) (*models.PendingUser, error) {
	user, err := s.store.Users().Update(ctx, userID, func(u *models.PendingUser) error {
		u.Status = models.UserPending
		u.PasswordHash = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.RefreshTokens().RevokeAllForUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to revoke sessions: %w", err)
	}

	slog.Info("approval revoked", "user_id", userID)
	return user, nil
}

// Recover moves a rejected registration back to pending.
func (s *ApprovalService) Recover(ctx context.Context, userID uuid.UUID) (*models.PendingUser, error) {
	user, err := s.store.Users().Update(ctx, userID, func(u *models.PendingUser) error {
		u.Status = models.UserPending
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("registration recovered", "user_id", userID)
	return user, nil
}

// Delete permanently removes a registration. Only rejected registrations
// can be deleted.
func (s *ApprovalService) Delete(ctx context.Context, userID uuid.UUID) error {
	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.Status != models.UserRejected {
		return validationErr("status", "only rejected registrations can be deleted")
	}

	if err := s.store.Users().Delete(ctx, userID); err != nil {
		return err
	}
	slog.Info("registration deleted", "user_id", userID)
	return nil
}

// List returns every registration, newest first, for the staff review
// screen.
func (s *ApprovalService) List(ctx context.Context) ([]models.PendingUser, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Seq > users[j].Seq })
	return users, nil
}
