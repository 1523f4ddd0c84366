package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mammoth-reserve/reserve-backend/internal/models"
)

// ErrNotFound is returned for unknown donation, reservation, or user ids.
// Callers surface it; missing ids are not silently ignored.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail is returned by UserStore.Create when a registration
// with the same email (case-insensitively) already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// Store aggregates access to the persistent collections. Two backends
// exist: an in-memory store and a GORM-backed SQL store.
type Store interface {
	Donations() DonationStore
	Users() UserStore
	RefreshTokens() RefreshTokenStore
}

// DonationStore holds donations together with their owned reservations.
type DonationStore interface {
	Create(ctx context.Context, d *models.Donation) error
	Get(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	List(ctx context.Context) ([]models.Donation, error)

	// Update loads the donation, applies mutate, and persists the result
	// under the store's mutual-exclusion boundary: at most one mutation is
	// in flight per donation, and a mutate error leaves the stored record
	// untouched. The returned donation reflects the persisted state.
	Update(ctx context.Context, id uuid.UUID, mutate func(*models.Donation) error) (*models.Donation, error)
}

type UserStore interface {
	// Create enforces email uniqueness and returns ErrDuplicateEmail on a
	// collision, so concurrent registrations cannot both slip through.
	Create(ctx context.Context, u *models.PendingUser) error
	Get(ctx context.Context, id uuid.UUID) (*models.PendingUser, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*models.PendingUser, error)
	List(ctx context.Context) ([]models.PendingUser, error)
	Update(ctx context.Context, id uuid.UUID, mutate func(*models.PendingUser) error) (*models.PendingUser, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type RefreshTokenStore interface {
	Create(ctx context.Context, t *models.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	// RevokeAllForUser invalidates every session belonging to a user.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}
