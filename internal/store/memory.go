package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mammoth-reserve/reserve-backend/internal/models"
)

// Memory is a process-memory Store. A single mutex serializes all
// mutations, so each operation either fully applies or is a no-op with no
// partial-update visibility. State does not survive a restart.
type Memory struct {
	mu        sync.RWMutex
	donations map[uuid.UUID]*models.Donation
	users     map[uuid.UUID]*models.PendingUser
	tokens    map[uuid.UUID]*models.RefreshToken
}

func NewMemory() *Memory {
	return &Memory{
		donations: make(map[uuid.UUID]*models.Donation),
		users:     make(map[uuid.UUID]*models.PendingUser),
		tokens:    make(map[uuid.UUID]*models.RefreshToken),
	}
}

func (m *Memory) Donations() DonationStore         { return (*memoryDonations)(m) }
func (m *Memory) Users() UserStore                 { return (*memoryUsers)(m) }
func (m *Memory) RefreshTokens() RefreshTokenStore { return (*memoryTokens)(m) }

func cloneDonation(d *models.Donation) *models.Donation {
	out := *d
	out.AlertFor = append([]string(nil), d.AlertFor...)
	out.Allergens = append([]string(nil), d.Allergens...)
	out.Reservations = append([]models.Reservation(nil), d.Reservations...)
	if d.SafetyInfo.TimeOutInHours != nil {
		v := *d.SafetyInfo.TimeOutInHours
		out.SafetyInfo.TimeOutInHours = &v
	}
	if d.AIAnalysis != nil {
		a := *d.AIAnalysis
		a.Observations = append([]string(nil), d.AIAnalysis.Observations...)
		if d.AIAnalysis.EstimatedServings != nil {
			v := *d.AIAnalysis.EstimatedServings
			a.EstimatedServings = &v
		}
		if d.AIAnalysis.EstimatedWeightLbs != nil {
			v := *d.AIAnalysis.EstimatedWeightLbs
			a.EstimatedWeightLbs = &v
		}
		out.AIAnalysis = &a
	}
	return &out
}

// --- donations ---

type memoryDonations Memory

func (m *memoryDonations) Create(_ context.Context, d *models.Donation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.donations[d.ID] = cloneDonation(d)
	return nil
}

func (m *memoryDonations) Get(_ context.Context, id uuid.UUID) (*models.Donation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.donations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDonation(d), nil
}

func (m *memoryDonations) List(_ context.Context) ([]models.Donation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Donation, 0, len(m.donations))
	for _, d := range m.donations {
		out = append(out, *cloneDonation(d))
	}
	return out, nil
}

func (m *memoryDonations) Update(_ context.Context, id uuid.UUID, mutate func(*models.Donation) error) (*models.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.donations[id]
	if !ok {
		return nil, ErrNotFound
	}
	// Mutate a copy so a failed mutation leaves the stored record intact.
	working := cloneDonation(stored)
	if err := mutate(working); err != nil {
		return nil, err
	}
	m.donations[id] = working
	return cloneDonation(working), nil
}

// --- pending users ---

type memoryUsers Memory

func (m *memoryUsers) Create(_ context.Context, u *models.PendingUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicateEmail
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memoryUsers) Get(_ context.Context, id uuid.UUID) (*models.PendingUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*models.PendingUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryUsers) List(_ context.Context) ([]models.PendingUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.PendingUser, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memoryUsers) Update(_ context.Context, id uuid.UUID, mutate func(*models.PendingUser) error) (*models.PendingUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	working := *stored
	if err := mutate(&working); err != nil {
		return nil, err
	}
	m.users[id] = &working
	cp := working
	return &cp, nil
}

func (m *memoryUsers) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// --- refresh tokens ---

type memoryTokens Memory

func (m *memoryTokens) Create(_ context.Context, t *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tokens[t.ID] = &cp
	return nil
}

func (m *memoryTokens) GetByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tokens {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryTokens) Revoke(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok {
		return ErrNotFound
	}
	t.Revoked = true
	return nil
}

func (m *memoryTokens) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}
