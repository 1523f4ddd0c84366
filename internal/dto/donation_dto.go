package dto

import "github.com/mammoth-reserve/reserve-backend/internal/models"

type CreateDonationRequest struct {
	FoodItem        string                `json:"foodItem"`
	InitialServings int                   `json:"initialServings"`
	FoodWeightLbs   float64               `json:"foodWeightLbs"`
	SafetyInfo      models.FoodSafetyInfo `json:"safetyInfo"`
	PickupLocation  string                `json:"pickupLocation"`
	AlertFor        []string              `json:"alertFor"`
	Allergens       []string              `json:"allergens,omitempty"`
	ImageURL        string                `json:"imageUrl,omitempty"`
	// ImageData is an optional base64 image; when set and no prior analysis
	// is supplied, the server runs the image-analysis collaborator itself.
	ImageData  string             `json:"imageData,omitempty"`
	AIAnalysis *models.AIAnalysis `json:"aiAnalysis,omitempty"`
}

type ReserveRequest struct {
	PickupTime    string `json:"pickupTime"`
	ServingsTaken int    `json:"servingsTaken"`
}

type AnalyzeImageRequest struct {
	ImageData string `json:"imageData"`
}

// ReservationEntry is a reservation joined with the donation context the
// history and confirmation views display.
type ReservationEntry struct {
	models.Reservation
	FoodItem       string `json:"foodItem"`
	PickupLocation string `json:"pickupLocation"`
	DonorType      string `json:"donorType"`
}

type DayServings struct {
	Day      string `json:"day"`
	Servings int    `json:"servings"`
}

// DashboardResponse is the role-scoped impact view: totals, the weekly
// chart series, and the viewer's donation history.
type DashboardResponse struct {
	TotalServings      int               `json:"totalServings"`
	TotalFoodWeightLbs float64           `json:"totalFoodWeightLbs"`
	Weekly             []DayServings     `json:"weekly"`
	Donations          []models.Donation `json:"donations"`
}

// ConfirmationsResponse partitions reservations against dining-hall
// donations into pickup queues for staff.
type ConfirmationsResponse struct {
	Pending   []ReservationEntry `json:"pending"`
	Completed []ReservationEntry `json:"completed"`
}
