package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mammoth-reserve/reserve-backend/internal/dto"
	"github.com/mammoth-reserve/reserve-backend/internal/genai"
	"github.com/mammoth-reserve/reserve-backend/internal/models"
	"github.com/mammoth-reserve/reserve-backend/internal/store"
	"github.com/stretchr/testify/require"
)

// stubAI is a controllable collaborator double.
type stubAI struct {
	failAnalyze bool
	failAlert   bool
	alert       string
	analysis    *models.AIAnalysis
}

func (s *stubAI) AnalyzeFoodImage(_ context.Context, _ string) (*models.AIAnalysis, error) {
	if s.failAnalyze {
		return nil, errors.New("provider unavailable")
	}
	if s.analysis != nil {
		return s.analysis, nil
	}
	return &models.AIAnalysis{FoodName: "pasta", Summary: "a tray of pasta", Observations: []string{"full tray"}}, nil
}

func (s *stubAI) GenerateAlertMessage(_ context.Context, _ string, _ int) (string, error) {
	if s.failAlert {
		return "", errors.New("provider unavailable")
	}
	if s.alert != "" {
		return s.alert, nil
	}
	return "Fresh food available now!", nil
}

func newDonationService() *DonationService {
	return NewDonationService(store.NewMemory(), &stubAI{failAnalyze: true, failAlert: true})
}

func createDonation(t *testing.T, svc *DonationService, servings int, alertFor ...string) *models.Donation {
	t.Helper()
	if len(alertFor) == 0 {
		alertFor = []string{models.RoleStudent, models.RoleFoodBank}
	}
	d, err := svc.Create(context.Background(), models.RoleDiningHall, &dto.CreateDonationRequest{
		FoodItem:        "Vegetable Lasagna",
		InitialServings: servings,
		PickupLocation:  "North Dining Hall",
		AlertFor:        alertFor,
	})
	require.NoError(t, err)
	return d
}

func TestCreateDonationDefaults(t *testing.T) {
	svc := newDonationService()
	d := createDonation(t, svc, 12)

	require.Equal(t, 12, d.InitialServings)
	require.Equal(t, 12, d.RemainingServings)
	require.Equal(t, models.DonationAvailable, d.Status)
	require.Equal(t, models.RoleDiningHall, d.DonorType)
	require.Empty(t, d.Reservations)
	require.NotZero(t, d.Seq)
}

func TestCreateDonationStampsCreationTime(t *testing.T) {
	svc := newDonationService()
	ctx := context.Background()
	d := createDonation(t, svc, 6)

	// The service assigns timestamps itself so the memory backend behaves
	// like the SQL one.
	require.False(t, d.CreatedAt.IsZero())

	res, err := svc.Reserve(ctx, d.ID, models.RoleStudent, "5 PM", 2)
	require.NoError(t, err)
	require.False(t, res.CreatedAt.IsZero())
}

func TestDashboardWeeklyBucketsToday(t *testing.T) {
	svc := newDonationService()
	createDonation(t, svc, 7)

	resp, err := svc.Dashboard(context.Background(), models.RoleFoodBank)
	require.NoError(t, err)
	require.Len(t, resp.Weekly, 7)

	today := weekdays[time.Now().Weekday()]
	for _, day := range resp.Weekly {
		if day.Day == today {
			require.Equal(t, 7, day.Servings)
		} else {
			require.Zero(t, day.Servings)
		}
	}
}

func TestCreateDonationValidation(t *testing.T) {
	svc := newDonationService()
	ctx := context.Background()

	tests := []struct {
		name  string
		role  string
		req   dto.CreateDonationRequest
		field string
	}{
		{
			name:  "students cannot donate",
			role:  models.RoleStudent,
			req:   dto.CreateDonationRequest{FoodItem: "Bread", InitialServings: 3, PickupLocation: "A", AlertFor: []string{models.RoleStudent}},
			field: "donorType",
		},
		{
			name:  "missing food item",
			role:  models.RoleDiningHall,
			req:   dto.CreateDonationRequest{InitialServings: 3, PickupLocation: "A", AlertFor: []string{models.RoleStudent}},
			field: "foodItem",
		},
		{
			name:  "non-positive servings",
			role:  models.RoleDiningHall,
			req:   dto.CreateDonationRequest{FoodItem: "Bread", InitialServings: 0, PickupLocation: "A", AlertFor: []string{models.RoleStudent}},
			field: "initialServings",
		},
		{
			name:  "missing pickup location",
			role:  models.RoleDiningHall,
			req:   dto.CreateDonationRequest{FoodItem: "Bread", InitialServings: 3, AlertFor: []string{models.RoleStudent}},
			field: "pickupLocation",
		},
		{
			name:  "empty alert set",
			role:  models.RoleDiningHall,
			req:   dto.CreateDonationRequest{FoodItem: "Bread", InitialServings: 3, PickupLocation: "A"},
			field: "alertFor",
		},
		{
			name:  "unknown alert role",
			role:  models.RoleDiningHall,
			req:   dto.CreateDonationRequest{FoodItem: "Bread", InitialServings: 3, PickupLocation: "A", AlertFor: []string{"janitor"}},
			field: "alertFor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.role, &tt.req)
			ve, ok := AsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			require.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestCreateDonationCollaboratorFallbacks(t *testing.T) {
	svc := NewDonationService(store.NewMemory(), &stubAI{failAnalyze: true, failAlert: true})

	d, err := svc.Create(context.Background(), models.RoleDiningHall, &dto.CreateDonationRequest{
		FoodItem:        "Chicken Tikka",
		InitialServings: 8,
		PickupLocation:  "South Hall",
		AlertFor:        []string{models.RoleFoodBank},
		ImageData:       "aW1hZ2U=",
	})
	require.NoError(t, err)

	// Collaborator failure never blocks creation; fallbacks step in.
	require.Equal(t, genai.FallbackAlertMessage("Chicken Tikka", 8), d.AlertMessage)
	require.InEpsilon(t, 8*1.25, d.FoodWeightLbs, 1e-9)
	require.NotNil(t, d.AIAnalysis)
	require.Equal(t, "AI analysis could not be performed on the image.", d.AIAnalysis.Summary)
}

func TestCreateDonationUsesAnalysisWeight(t *testing.T) {
	weight := 11.5
	svc := NewDonationService(store.NewMemory(), &stubAI{
		analysis: &models.AIAnalysis{FoodName: "soup", Summary: "big pot", Observations: []string{"steaming"}, EstimatedWeightLbs: &weight},
	})

	d, err := svc.Create(context.Background(), models.RoleDiningHall, &dto.CreateDonationRequest{
		FoodItem:        "Tomato Soup",
		InitialServings: 10,
		PickupLocation:  "West Hall",
		AlertFor:        []string{models.RoleStudent},
		ImageData:       "aW1hZ2U=",
	})
	require.NoError(t, err)
	require.Equal(t, 11.5, d.FoodWeightLbs)
}

func TestCreateDonationKeepsDonorWeight(t *testing.T) {
	svc := newDonationService()
	d, err := svc.Create(context.Background(), models.RoleDiningHall, &dto.CreateDonationRequest{
		FoodItem:        "Rice",
		InitialServings: 4,
		FoodWeightLbs:   6.2,
		PickupLocation:  "East Hall",
		AlertFor:        []string{models.RoleStudent},
	})
	require.NoError(t, err)
	require.Equal(t, 6.2, d.FoodWeightLbs)
}

func TestAllergensOnlyRecordedForDiningHall(t *testing.T) {
	svc := newDonationService()
	ctx := context.Background()

	dh, err := svc.Create(ctx, models.RoleDiningHall, &dto.CreateDonationRequest{
		FoodItem: "Pad Thai", InitialServings: 5, PickupLocation: "A",
		AlertFor: []string{models.RoleStudent}, Allergens: []string{"Peanuts"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Peanuts"}, dh.Allergens)

	sg, err := svc.Create(ctx, models.RoleStudentGroup, &dto.CreateDonationRequest{
		FoodItem: "Cookies", InitialServings: 5, PickupLocation: "B",
		AlertFor: []string{models.RoleStudent}, Allergens: []string{"Gluten"},
	})
	require.NoError(t, err)
	require.Empty(t, sg.Allergens)
}

func TestReserveDecrementsAndDerivesStatus(t *testing.T) {
	svc := newDonationService()
	ctx := context.Background()
	d := createDonation(t, svc, 10)

	res, err := svc.Reserve(ctx, d.ID, models.RoleStudent, "Today at 5:30 PM", 4)
	require.NoError(t, err)
	require.Equal(t, models.ReservationPending, res.Status)
	require.Equal(t, 4, res.ServingsTaken)

	got, err := svc.store.Donations().Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, 6, got.RemainingServings)
	require.Equal(t, models.DonationAvailable, got.Status)
	require.Len(t, got.Reservations, 1)
}

func TestReserveValidation(t *testing.T) {
	svc := newDonationService()
	ctx := context.Background()
	d := createDonation(t, svc, 5)

	tests := []struct {
		name       string
		pickupTime string
		servings   int
		field      string
	}{
		{"blank pickup time", "", 2, "pickupTime"},
		{"zero servings", "Today 6 PM", 0, "servingsTaken"},
		{"negative servings", "Today 6 PM", -1, "servingsTaken"},
		{"exceeds remaining", "Today 6 PM", 6, "servingsTaken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Reserve(ctx, d.ID, models.RoleFoodBank, tt.pickupTime, tt.servings)
			ve, ok := AsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			require.Equal(t, tt.field, ve.Field)

			// A failed reserve leaves the donation untouched.
			got, getErr := svc.store.Donations().Get(ctx, d.ID)
			require.NoError(t, getErr)
			require.Equal(t, 5, got.RemainingServings)
			require.Equal(t, models.DonationAvailable, got.Status)
			require.Empty(t, got.Reservations)
		})
	}
}

func TestReserveUnknownDonation(t *testing.T) {
	svc := newDonationService()
	_, err := svc.Reserve(context.Background(), uuid.New(), models.RoleStudent, "Now", 1)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestReserveBlankPickupTimeBeforeLookup(t *testing.T) {
	svc := newDonationService()

	// Input validation runs before the store is consulted, so a blank
	// pickup time reports the field error even for an unknown donation.
	_, err := svc.Reserve(context.Background(), uuid.New(), models.RoleStudent, "", 1)
	ve, ok := AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	require.Equal(t, "pickupTime", ve.Field)
}

func TestReserveThenCancelIsIdentity(t *testing.T) {
	svc := newDonationService()
	ctx := context.Background()
	d := createDonation(t, svc, 9)

	res, err := svc.Reserve(ctx, d.ID, models.RoleFoodBank, "Tomorrow at noon", 7)
	require.NoError(t, err)

	after, err := svc.CancelReservation(ctx, d.ID, res.ID)
	require.NoError(t, err)
	require.Equal(t, 9, after.RemainingServings)
	require.Equal(t, models.DonationAvailable, after.Status)
	require.Empty(t, after.Reservations)
}

func TestCancelAlwaysReopensAvailability(t *testing.T) {
	svc := newDonationService()
	ctx := context.Background()
	d := createDonation(t, svc, 6)

	first, err := svc.Reserve(ctx, d.ID, models.RoleStudent, "5 PM", 4)
	require.NoError(t, err)
	_, err = svc.Reserve(ctx, d.ID, models.RoleFoodBank, "6 PM", 2)
	require.NoError(t, err)

	got, err := svc.store.Donations().Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, models.DonationFullyReserved, got.Status)

	after, err := svc.CancelReservation(ctx, d.ID, first.ID)
	require.NoError(t, err)
	require.Equal(t, 4, after.RemainingServings)
	require.Equal(t, models.DonationAvailable, after.Status)
	require.Len(t, after.Reservations, 1)
}

func TestCancelUnknownReservation(t *testing.T) {
	svc := newDonationService()
	ctx := context.Background()
	d := createDonation(t, svc, 3)

	_, err := svc.CancelReservation(ctx, d.ID, uuid.New())
	require.ErrorIs(t, err, store.ErrNotFound)

	// The failed cancel is a pure no-op.
	got, err := svc.store.Donations().Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.RemainingServings)
}

func TestCompletePickupOnlyChangesTarget(t *testing.T) {
	svc := newDonationService()
	ctx := context.Background()
	d := createDonation(t, svc, 10)

	first, err := svc.Reserve(ctx, d.ID, models.RoleStudent, "5 PM", 3)
	require.NoError(t, err)
	second, err := svc.Reserve(ctx, d.ID, models.RoleFoodBank, "6 PM", 2)
	require.NoError(t, err)

	after, err := svc.CompletePickup(ctx, d.ID, first.ID)
	require.NoError(t, err)
	require.Equal(t, 5, after.RemainingServings)

	i := after.FindReservation(first.ID)
	require.GreaterOrEqual(t, i, 0)
	require.Equal(t, models.ReservationCompleted, after.Reservations[i].Status)

	j := after.FindReservation(second.ID)
	require.GreaterOrEqual(t, j, 0)
	require.Equal(t, models.ReservationPending, after.Reservations[j].Status)
}

// Mirrors the canonical allocation walkthrough: 10 servings, two claims of
// five, an over-claim that must fail, then a refund.
func TestAllocationScenario(t *testing.T) {
	svc := newDonationService()
	ctx := context.Background()
	d := createDonation(t, svc, 10)

	first, err := svc.Reserve(ctx, d.ID, models.RoleStudent, "5 PM", 5)
	require.NoError(t, err)
	got, err := svc.store.Donations().Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, 5, got.RemainingServings)
	require.Equal(t, models.DonationAvailable, got.Status)

	_, err = svc.Reserve(ctx, d.ID, models.RoleFoodBank, "6 PM", 5)
	require.NoError(t, err)
	got, err = svc.store.Donations().Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.RemainingServings)
	require.Equal(t, models.DonationFullyReserved, got.Status)

	_, err = svc.Reserve(ctx, d.ID, models.RoleStudent, "7 PM", 1)
	_, ok := AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)

	after, err := svc.CancelReservation(ctx, d.ID, first.ID)
	require.NoError(t, err)
	require.Equal(t, 5, after.RemainingServings)
	require.Equal(t, models.DonationAvailable, after.Status)
}

func TestAvailableFiltersByStatusAndAlertSet(t *testing.T) {
	svc := newDonationService()
	ctx := context.Background()

	forStudents := createDonation(t, svc, 5, models.RoleStudent)
	forBanks := createDonation(t, svc, 5, models.RoleFoodBank)
	exhausted := createDonation(t, svc, 2, models.RoleStudent)
	_, err := svc.Reserve(ctx, exhausted.ID, models.RoleStudent, "Now", 2)
	require.NoError(t, err)

	visible, err := svc.Available(ctx, models.RoleStudent)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, forStudents.ID, visible[0].ID)

	visible, err = svc.Available(ctx, models.RoleFoodBank)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, forBanks.ID, visible[0].ID)
}

func TestAvailableOrdersNewestFirst(t *testing.T) {
	svc := newDonationService()
	ctx := context.Background()

	first := createDonation(t, svc, 5, models.RoleStudent)
	time.Sleep(time.Millisecond)
	second := createDonation(t, svc, 5, models.RoleStudent)
	time.Sleep(time.Millisecond)
	third := createDonation(t, svc, 5, models.RoleStudent)

	visible, err := svc.Available(ctx, models.RoleStudent)
	require.NoError(t, err)
	require.Len(t, visible, 3)
	require.Equal(t, third.ID, visible[0].ID)
	require.Equal(t, second.ID, visible[1].ID)
	require.Equal(t, first.ID, visible[2].ID)
}

func TestDashboardScoping(t *testing.T) {
	svc := newDonationService()
	ctx := context.Background()

	_, err := svc.Create(ctx, models.RoleDiningHall, &dto.CreateDonationRequest{
		FoodItem: "Stew", InitialServings: 10, FoodWeightLbs: 12,
		PickupLocation: "A", AlertFor: []string{models.RoleStudent},
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.RoleStudentGroup, &dto.CreateDonationRequest{
		FoodItem: "Bagels", InitialServings: 6, FoodWeightLbs: 3,
		PickupLocation: "B", AlertFor: []string{models.RoleStudent},
	})
	require.NoError(t, err)

	// Donor roles only see their own impact.
	dh, err := svc.Dashboard(ctx, models.RoleDiningHall)
	require.NoError(t, err)
	require.Equal(t, 10, dh.TotalServings)
	require.Equal(t, 12.0, dh.TotalFoodWeightLbs)
	require.Len(t, dh.Donations, 1)

	// Students and food banks see the whole community.
	fb, err := svc.Dashboard(ctx, models.RoleFoodBank)
	require.NoError(t, err)
	require.Equal(t, 16, fb.TotalServings)
	require.Equal(t, 15.0, fb.TotalFoodWeightLbs)
	require.Len(t, fb.Donations, 2)
	require.Len(t, fb.Weekly, 7)
}

func TestReservationHistoryScopedToViewer(t *testing.T) {
	svc := newDonationService()
	ctx := context.Background()

	d1 := createDonation(t, svc, 10)
	d2 := createDonation(t, svc, 10)

	older, err := svc.Reserve(ctx, d1.ID, models.RoleStudent, "5 PM", 2)
	require.NoError(t, err)
	_, err = svc.Reserve(ctx, d1.ID, models.RoleFoodBank, "6 PM", 3)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	newer, err := svc.Reserve(ctx, d2.ID, models.RoleStudent, "7 PM", 1)
	require.NoError(t, err)

	history, err := svc.ReservationHistory(ctx, models.RoleStudent)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, newer.ID, history[0].ID)
	require.Equal(t, older.ID, history[1].ID)
	require.Equal(t, d2.FoodItem, history[0].FoodItem)
}

func TestConfirmationsPartitionDiningHallOnly(t *testing.T) {
	svc := newDonationService()
	ctx := context.Background()

	dh := createDonation(t, svc, 10)
	sg, err := svc.Create(ctx, models.RoleStudentGroup, &dto.CreateDonationRequest{
		FoodItem: "Muffins", InitialServings: 4,
		PickupLocation: "Club Room", AlertFor: []string{models.RoleStudent},
	})
	require.NoError(t, err)

	done, err := svc.Reserve(ctx, dh.ID, models.RoleStudent, "5 PM", 2)
	require.NoError(t, err)
	pending, err := svc.Reserve(ctx, dh.ID, models.RoleFoodBank, "6 PM", 3)
	require.NoError(t, err)
	_, err = svc.Reserve(ctx, sg.ID, models.RoleStudent, "7 PM", 1)
	require.NoError(t, err)

	_, err = svc.CompletePickup(ctx, dh.ID, done.ID)
	require.NoError(t, err)

	resp, err := svc.Confirmations(ctx)
	require.NoError(t, err)
	require.Len(t, resp.Pending, 1)
	require.Equal(t, pending.ID, resp.Pending[0].ID)
	require.Len(t, resp.Completed, 1)
	require.Equal(t, done.ID, resp.Completed[0].ID)
}

func TestAnalyzeImageFallsBack(t *testing.T) {
	svc := newDonationService()

	analysis, err := svc.AnalyzeImage(context.Background(), "aW1hZ2U=")
	require.NoError(t, err)
	require.Equal(t, "AI analysis could not be performed on the image.", analysis.Summary)
	require.Equal(t, []string{"Please describe the food manually."}, analysis.Observations)
}
