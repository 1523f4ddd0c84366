package models

import (
	"time"

	"github.com/google/uuid"
)

// Donation status values. Status is always a pure function of
// RemainingServings: fully-reserved iff no servings remain.
const (
	DonationAvailable     = "available"
	DonationFullyReserved = "fully-reserved"
)

// FoodSafetyInfo is the donor-entered safety checklist.
type FoodSafetyInfo struct {
	SafeTemp        bool `json:"safeTemp"`
	NotContaminated bool `json:"notContaminated"`
	IsOpened        bool `json:"isOpened"`
	TimeOutInHours  *int `json:"timeOutInHours,omitempty"`
}

// AIAnalysis is the structured summary produced by the image-analysis
// collaborator. All fields are best-effort.
type AIAnalysis struct {
	FoodName           string   `json:"foodName"`
	Summary            string   `json:"summary"`
	Observations       []string `json:"observations"`
	EstimatedServings  *int     `json:"estimatedServings,omitempty"`
	EstimatedWeightLbs *float64 `json:"estimatedWeightLbs,omitempty"`
}

// Donation is a single surplus-food listing with a fixed initial quantity.
// Donations are never deleted; only reservation create/cancel/complete
// mutate them after creation.
//
// Seq is a creation-instant nanosecond timestamp. All "most recent first"
// views order on Seq descending, never on lexical comparison of the id.
type Donation struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Seq               int64          `gorm:"not null;index" json:"-"`
	FoodItem          string         `gorm:"size:255;not null" json:"foodItem"`
	InitialServings   int            `gorm:"not null" json:"initialServings"`
	RemainingServings int            `gorm:"not null" json:"remainingServings"`
	FoodWeightLbs     float64        `gorm:"not null" json:"foodWeightLbs"`
	Status            string         `gorm:"size:20;not null" json:"status"`
	DonorType         string         `gorm:"size:20;not null;index" json:"donorType"`
	SafetyInfo        FoodSafetyInfo `gorm:"type:jsonb;serializer:json" json:"safetyInfo"`
	PickupLocation    string         `gorm:"size:255;not null" json:"pickupLocation"`
	AlertFor          []string       `gorm:"type:jsonb;serializer:json" json:"alertFor"`
	Allergens         []string       `gorm:"type:jsonb;serializer:json" json:"allergens,omitempty"`
	AlertMessage      string         `gorm:"type:text" json:"alertMessage"`
	ImageURL          string         `gorm:"type:text" json:"imageUrl"`
	AIAnalysis        *AIAnalysis    `gorm:"type:jsonb;serializer:json" json:"aiAnalysis,omitempty"`
	Reservations      []Reservation  `gorm:"foreignKey:DonationID" json:"reservations"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (Donation) TableName() string {
	return "donations"
}

// RecomputeStatus derives Status from RemainingServings.
func (d *Donation) RecomputeStatus() {
	if d.RemainingServings <= 0 {
		d.Status = DonationFullyReserved
	} else {
		d.Status = DonationAvailable
	}
}

// AlertsRole reports whether role is in the donation's notification set.
func (d *Donation) AlertsRole(role string) bool {
	for _, r := range d.AlertFor {
		if r == role {
			return true
		}
	}
	return false
}

// FindReservation returns the index of the reservation with the given id,
// or -1 when absent.
func (d *Donation) FindReservation(id uuid.UUID) int {
	for i := range d.Reservations {
		if d.Reservations[i].ID == id {
			return i
		}
	}
	return -1
}
