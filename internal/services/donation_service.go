package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mammoth-reserve/reserve-backend/internal/dto"
	"github.com/mammoth-reserve/reserve-backend/internal/genai"
	"github.com/mammoth-reserve/reserve-backend/internal/models"
	"github.com/mammoth-reserve/reserve-backend/internal/store"
)

// fallbackLbsPerServing is the weight estimate used when neither the donor
// nor the image analysis supplied one.
const fallbackLbsPerServing = 1.25

// AIClient is the collaborator contract the donation service depends on.
// Failures degrade to local fallbacks and never abort a core mutation.
type AIClient interface {
	AnalyzeFoodImage(ctx context.Context, base64Image string) (*models.AIAnalysis, error)
	GenerateAlertMessage(ctx context.Context, foodItem string, servings int) (string, error)
}

// DonationService owns the donation/reservation lifecycle: creation,
// serving allocation, cancellation, pickup completion, and the role-scoped
// projections the dashboards read.
type DonationService struct {
	store store.Store
	ai    AIClient
}

func NewDonationService(st store.Store, ai AIClient) *DonationService {
	return &DonationService{store: st, ai: ai}
}

// Create validates and stores a new donation, enriched best-effort by the
// AI collaborators. remainingServings starts equal to initialServings and
// is only ever touched by reservation create/cancel.
func (s *DonationService) Create(ctx context.Context, donorRole string, req *dto.CreateDonationRequest) (*models.Donation, error) {
	if !models.CanDonate(donorRole) {
		return nil, validationErr("donorType", "only dining halls and student groups can donate")
	}
	if req.FoodItem == "" {
		return nil, validationErr("foodItem", "food item is required")
	}
	if req.InitialServings <= 0 {
		return nil, validationErr("initialServings", "servings must be a positive number")
	}
	if req.PickupLocation == "" {
		return nil, validationErr("pickupLocation", "pickup location is required")
	}
	if len(req.AlertFor) == 0 {
		return nil, validationErr("alertFor", "select at least one group to notify")
	}
	for _, r := range req.AlertFor {
		if !models.ValidRole(r) {
			return nil, validationErr("alertFor", fmt.Sprintf("unknown role %q", r))
		}
	}

	analysis := req.AIAnalysis
	if analysis == nil && req.ImageData != "" {
		result, err := s.ai.AnalyzeFoodImage(ctx, req.ImageData)
		if err != nil {
			slog.Warn("image analysis failed, using fallback", "error", err, "food_item", req.FoodItem)
			result = genai.FallbackAnalysis()
		}
		analysis = result
	}

	weight := req.FoodWeightLbs
	if weight <= 0 {
		if analysis != nil && analysis.EstimatedWeightLbs != nil && *analysis.EstimatedWeightLbs > 0 {
			weight = *analysis.EstimatedWeightLbs
		} else {
			weight = float64(req.InitialServings) * fallbackLbsPerServing
		}
	}

	alertMessage, err := s.ai.GenerateAlertMessage(ctx, req.FoodItem, req.InitialServings)
	if err != nil {
		slog.Warn("alert generation failed, using fallback", "error", err, "food_item", req.FoodItem)
		alertMessage = genai.FallbackAlertMessage(req.FoodItem, req.InitialServings)
	}

	// Allergen declarations are only collected from dining halls.
	var allergens []string
	if donorRole == models.RoleDiningHall {
		allergens = req.Allergens
	}

	now := time.Now()
	donation := &models.Donation{
		ID:                uuid.New(),
		Seq:               now.UnixNano(),
		FoodItem:          req.FoodItem,
		InitialServings:   req.InitialServings,
		RemainingServings: req.InitialServings,
		FoodWeightLbs:     weight,
		Status:            models.DonationAvailable,
		DonorType:         donorRole,
		SafetyInfo:        req.SafetyInfo,
		PickupLocation:    req.PickupLocation,
		AlertFor:          req.AlertFor,
		Allergens:         allergens,
		AlertMessage:      alertMessage,
		ImageURL:          req.ImageURL,
		AIAnalysis:        analysis,
		Reservations:      []models.Reservation{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.Donations().Create(ctx, donation); err != nil {
		return nil, err
	}

	slog.Info("donation created",
		"donation_id", donation.ID,
		"donor_type", donorRole,
		"servings", donation.InitialServings)
	return donation, nil
}

// AnalyzeImage exposes the image-analysis collaborator to the donation
// form. Failures degrade to the fallback analysis rather than an error.
func (s *DonationService) AnalyzeImage(ctx context.Context, base64Image string) (*models.AIAnalysis, error) {
	if base64Image == "" {
		return nil, validationErr("imageData", "image data is required")
	}
	result, err := s.ai.AnalyzeFoodImage(ctx, base64Image)
	if err != nil {
		slog.Warn("image analysis failed, using fallback", "error", err)
		return genai.FallbackAnalysis(), nil
	}
	return result, nil
}

// Reserve claims servings against a donation. This is the only guard
// against over-allocation; there is no reservation expiry.
func (s *DonationService) Reserve(ctx context.Context, donationID uuid.UUID, reserverRole, pickupTime string, servingsTaken int) (*models.Reservation, error) {
	if !models.CanReserve(reserverRole) {
		return nil, validationErr("reserverRole", "this role cannot reserve donations")
	}
	if pickupTime == "" {
		return nil, validationErr("pickupTime", "please provide a pickup time")
	}

	var created models.Reservation
	_, err := s.store.Donations().Update(ctx, donationID, func(d *models.Donation) error {
		if servingsTaken <= 0 || servingsTaken > d.RemainingServings {
			return validationErr("servingsTaken",
				fmt.Sprintf("please enter a valid number of servings (1-%d)", d.RemainingServings))
		}

		now := time.Now()
		created = models.Reservation{
			ID:            uuid.New(),
			DonationID:    d.ID,
			Seq:           now.UnixNano(),
			ReserverRole:  reserverRole,
			PickupTime:    pickupTime,
			ServingsTaken: servingsTaken,
			Status:        models.ReservationPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		d.RemainingServings -= servingsTaken
		d.UpdatedAt = now
		d.Reservations = append(d.Reservations, created)
		d.RecomputeStatus()
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("reservation created",
		"donation_id", donationID,
		"reservation_id", created.ID,
		"servings", servingsTaken,
		"role", reserverRole)
	return &created, nil
}

// CancelReservation removes a reservation and refunds its servings in
// full. Cancelling always reopens availability, even when other active
// reservations remain; this matches the derived-status invariant since the
// refund lifts remainingServings above zero.
func (s *DonationService) CancelReservation(ctx context.Context, donationID, reservationID uuid.UUID) (*models.Donation, error) {
	return s.store.Donations().Update(ctx, donationID, func(d *models.Donation) error {
		i := d.FindReservation(reservationID)
		if i < 0 {
			return store.ErrNotFound
		}
		d.RemainingServings += d.Reservations[i].ServingsTaken
		d.Reservations = append(d.Reservations[:i], d.Reservations[i+1:]...)
		d.Status = models.DonationAvailable
		return nil
	})
}

// CompletePickup marks a reservation completed. Servings were already
// deducted at reservation time, so nothing else changes.
func (s *DonationService) CompletePickup(ctx context.Context, donationID, reservationID uuid.UUID) (*models.Donation, error) {
	return s.store.Donations().Update(ctx, donationID, func(d *models.Donation) error {
		i := d.FindReservation(reservationID)
		if i < 0 {
			return store.ErrNotFound
		}
		d.Reservations[i].Status = models.ReservationCompleted
		return nil
	})
}

// Dashboard builds the role-scoped impact view. Dining halls and student
// groups see only their own donations; students and food banks see the
// community-wide totals.
func (s *DonationService) Dashboard(ctx context.Context, role string) (*dto.DashboardResponse, error) {
	all, err := s.store.Donations().List(ctx)
	if err != nil {
		return nil, err
	}

	scoped := all
	if role == models.RoleDiningHall || role == models.RoleStudentGroup {
		scoped = make([]models.Donation, 0, len(all))
		for _, d := range all {
			if d.DonorType == role {
				scoped = append(scoped, d)
			}
		}
	}
	sortDonationsNewestFirst(scoped)

	resp := &dto.DashboardResponse{
		Weekly:    weeklyServings(scoped),
		Donations: scoped,
	}
	for _, d := range scoped {
		resp.TotalServings += d.InitialServings
		resp.TotalFoodWeightLbs += d.FoodWeightLbs
	}
	return resp, nil
}

// Available lists donations the viewer may reserve: still available and
// addressed to the viewer's role, most recent first.
func (s *DonationService) Available(ctx context.Context, role string) ([]models.Donation, error) {
	all, err := s.store.Donations().List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Donation, 0, len(all))
	for _, d := range all {
		if d.Status == models.DonationAvailable && d.AlertsRole(role) {
			out = append(out, d)
		}
	}
	sortDonationsNewestFirst(out)
	return out, nil
}

// ReservationHistory lists the viewer's reservations across all
// donations, most recent first.
func (s *DonationService) ReservationHistory(ctx context.Context, role string) ([]dto.ReservationEntry, error) {
	all, err := s.store.Donations().List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ReservationEntry, 0)
	for _, d := range all {
		for _, r := range d.Reservations {
			if r.ReserverRole == role {
				out = append(out, dto.ReservationEntry{
					Reservation:    r,
					FoodItem:       d.FoodItem,
					PickupLocation: d.PickupLocation,
					DonorType:      d.DonorType,
				})
			}
		}
	}
	sortEntriesNewestFirst(out)
	return out, nil
}

// Confirmations partitions the reservations against dining-hall-originated
// donations into pending and completed pickup queues for staff.
func (s *DonationService) Confirmations(ctx context.Context) (*dto.ConfirmationsResponse, error) {
	all, err := s.store.Donations().List(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.ConfirmationsResponse{
		Pending:   []dto.ReservationEntry{},
		Completed: []dto.ReservationEntry{},
	}
	for _, d := range all {
		if d.DonorType != models.RoleDiningHall {
			continue
		}
		for _, r := range d.Reservations {
			entry := dto.ReservationEntry{
				Reservation:    r,
				FoodItem:       d.FoodItem,
				PickupLocation: d.PickupLocation,
				DonorType:      d.DonorType,
			}
			if r.Status == models.ReservationCompleted {
				resp.Completed = append(resp.Completed, entry)
			} else {
				resp.Pending = append(resp.Pending, entry)
			}
		}
	}
	sortEntriesNewestFirst(resp.Pending)
	sortEntriesNewestFirst(resp.Completed)
	return resp, nil
}

// Recency ordering is on the monotonic Seq, never on the id text.

func sortDonationsNewestFirst(ds []models.Donation) {
	sort.Slice(ds, func(i, j int) bool { return ds[i].Seq > ds[j].Seq })
}

func sortEntriesNewestFirst(es []dto.ReservationEntry) {
	sort.Slice(es, func(i, j int) bool { return es[i].Seq > es[j].Seq })
}

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// weeklyServings aggregates donated servings per day of week for the
// dashboard chart.
func weeklyServings(ds []models.Donation) []dto.DayServings {
	totals := make(map[string]int, len(weekdays))
	for _, d := range ds {
		totals[weekdays[d.CreatedAt.Weekday()]] += d.InitialServings
	}

	out := make([]dto.DayServings, 0, len(weekdays))
	for _, day := range weekdays {
		out = append(out, dto.DayServings{Day: day, Servings: totals[day]})
	}
	return out
}
