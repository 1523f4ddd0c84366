package models

import (
	"time"

	"github.com/google/uuid"
)

// Reservation status values.
const (
	ReservationPending   = "pending"
	ReservationCompleted = "completed"
)

// Reservation is a claim against a donation's remaining quantity. It is
// owned by its parent donation: created by a reserve action, marked
// completed by a pickup confirmation, or removed entirely by a
// cancellation (which refunds its servings to the parent). ServingsTaken
// is fixed at creation and never renegotiated.
type Reservation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DonationID    uuid.UUID `gorm:"type:uuid;not null;index" json:"donationId"`
	Seq           int64     `gorm:"not null;index" json:"-"`
	ReserverRole  string    `gorm:"size:20;not null" json:"reserverRole"`
	PickupTime    string    `gorm:"size:255;not null" json:"pickupTime"`
	ServingsTaken int       `gorm:"not null" json:"servingsTaken"`
	Status        string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Reservation) TableName() string {
	return "reservations"
}
