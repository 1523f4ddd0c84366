package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mammoth-reserve/reserve-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm is the SQL-backed Store. Production runs it against Postgres;
// tests run it against sqlite.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Donations() DonationStore         { return &gormDonations{db: g.db} }
func (g *Gorm) Users() UserStore                 { return &gormUsers{db: g.db} }
func (g *Gorm) RefreshTokens() RefreshTokenStore { return &gormTokens{db: g.db} }

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- donations ---

type gormDonations struct {
	db *gorm.DB
}

func (g *gormDonations) Create(ctx context.Context, d *models.Donation) error {
	return g.db.WithContext(ctx).Create(d).Error
}

func (g *gormDonations) Get(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	var d models.Donation
	err := g.db.WithContext(ctx).Preload("Reservations").First(&d, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &d, nil
}

func (g *gormDonations) List(ctx context.Context) ([]models.Donation, error) {
	var out []models.Donation
	err := g.db.WithContext(ctx).Preload("Reservations").Find(&out).Error
	return out, err
}

// Update runs the mutation in a transaction with the donation row locked,
// which is the mutual-exclusion boundary for concurrent reservers. The
// reservation rows are replaced wholesale on every mutation, matching the
// whole-collection replace semantics the allocation rules assume.
func (g *gormDonations) Update(ctx context.Context, id uuid.UUID, mutate func(*models.Donation) error) (*models.Donation, error) {
	var result *models.Donation
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Preload("Reservations")
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var d models.Donation
		if err := q.First(&d, "id = ?", id).Error; err != nil {
			return translateErr(err)
		}

		if err := mutate(&d); err != nil {
			return err
		}

		if err := tx.Where("donation_id = ?", id).Delete(&models.Reservation{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Reservations").Save(&d).Error; err != nil {
			return err
		}
		if len(d.Reservations) > 0 {
			if err := tx.Create(&d.Reservations).Error; err != nil {
				return err
			}
		}

		result = &d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// --- pending users ---

type gormUsers struct {
	db *gorm.DB
}

func (g *gormUsers) Create(ctx context.Context, u *models.PendingUser) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.PendingUser{}).
			Where("LOWER(email) = LOWER(?)", u.Email).Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateEmail
		}
		return tx.Create(u).Error
	})
}

func (g *gormUsers) Get(ctx context.Context, id uuid.UUID) (*models.PendingUser, error) {
	var u models.PendingUser
	if err := g.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &u, nil
}

func (g *gormUsers) GetByEmail(ctx context.Context, email string) (*models.PendingUser, error) {
	var u models.PendingUser
	err := g.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &u, nil
}

func (g *gormUsers) List(ctx context.Context) ([]models.PendingUser, error) {
	var out []models.PendingUser
	err := g.db.WithContext(ctx).Find(&out).Error
	return out, err
}

func (g *gormUsers) Update(ctx context.Context, id uuid.UUID, mutate func(*models.PendingUser) error) (*models.PendingUser, error) {
	var result *models.PendingUser
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Session(&gorm.Session{})
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var u models.PendingUser
		if err := q.First(&u, "id = ?", id).Error; err != nil {
			return translateErr(err)
		}
		if err := mutate(&u); err != nil {
			return err
		}
		if err := tx.Save(&u).Error; err != nil {
			return err
		}
		result = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (g *gormUsers) Delete(ctx context.Context, id uuid.UUID) error {
	res := g.db.WithContext(ctx).Delete(&models.PendingUser{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- refresh tokens ---

type gormTokens struct {
	db *gorm.DB
}

func (g *gormTokens) Create(ctx context.Context, t *models.RefreshToken) error {
	return g.db.WithContext(ctx).Create(t).Error
}

func (g *gormTokens) GetByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := g.db.WithContext(ctx).Where("token_hash = ?", hash).First(&t).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &t, nil
}

func (g *gormTokens) Revoke(ctx context.Context, id uuid.UUID) error {
	return g.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ?", id).Update("revoked", true).Error
}

func (g *gormTokens) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return g.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ?", userID).Update("revoked", true).Error
}
