package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridepoolapp/backend/internal/domain"
	"github.com/ridepoolapp/backend/internal/recur"
	"github.com/ridepoolapp/backend/internal/repo"
	"github.com/ridepoolapp/backend/testutil"
)

// newTestTx opens a transaction against the test database that is rolled
// back when the test finishes, giving free per-test isolation.
//
// Requires TEST_DATABASE_URL to be set; TestMain has already applied all
// migrations by the time any test runs.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		// Rollback discards all changes made during the test — no cleanup SQL needed.
		_ = tx.Rollback(context.Background())
	})

	return tx
}

// tripFixture returns an active one-off driver offer with sensible defaults.
// Callers override fields after calling this function.
func tripFixture() domain.Trip {
	return domain.Trip{
		ID:            recur.NewTripID(),
		Kind:          domain.TripKindOffer,
		OwnerID:       "driver-1",
		Origin:        "Lisboa",
		Destination:   "Porto",
		DepartureDate: time.Date(2025, 6, 6, 0, 0, 0, 0, time.Local),
		DepartureTime: "08:30",
		StartDate:     time.Date(2025, 6, 6, 0, 0, 0, 0, time.Local),
		Price:         15,
		SeatsOffered:  3,
		SeatsRemaining: 3,
		VehicleModel:  "Renault Clio",
		VehicleColor:  "blue",
		ContactName:   "Ana",
		ContactPhone:  "+351900000000",
		Status:        domain.TripStatusActive,
	}
}

// seriesFixture returns n instances of one recurring Friday series, one week apart.
func seriesFixture(n int) []domain.Trip {
	recurrenceID := recur.NewRecurrenceID("Lisboa", "Porto", "08:30",
		time.Date(2025, 6, 6, 0, 0, 0, 0, time.Local))
	end := time.Date(2025, 8, 29, 0, 0, 0, 0, time.Local)

	out := make([]domain.Trip, n)
	for i := range out {
		trip := tripFixture()
		trip.ID = recur.NewTripID()
		trip.RecurrenceID = recurrenceID
		trip.Weekdays = []string{"friday"}
		trip.EndDate = &end
		trip.PublishLeadDays = 7
		trip.DepartureDate = trip.DepartureDate.AddDate(0, 0, 7*i)
		out[i] = trip
	}
	return out
}

func TestTripRepo_CreateBatch_OneOff(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	input := tripFixture()
	got, err := r.CreateBatch(ctx, []domain.Trip{input})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, input.ID, got[0].ID)
	assert.Empty(t, got[0].RecurrenceID)
	assert.Nil(t, got[0].EndDate)
	assert.Equal(t, input.Origin, got[0].Origin)
	assert.True(t, recur.SameDate(input.DepartureDate, got[0].DepartureDate))
	assert.False(t, got[0].CreatedAt.IsZero(), "created_at should be DB-generated")
}

func TestTripRepo_CreateBatch_Series(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	series := seriesFixture(3)
	got, err := r.CreateBatch(ctx, series)

	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, trip := range got {
		assert.Equal(t, series[0].RecurrenceID, trip.RecurrenceID, "shared recurrence ID")
		assert.Equal(t, []string{"friday"}, trip.Weekdays)
		assert.True(t, recur.SameDate(series[i].DepartureDate, trip.DepartureDate))
		require.NotNil(t, trip.EndDate)
	}
}

func TestTripRepo_CreateBatch_Empty(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))

	got, err := r.CreateBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTripRepo_GetByID_NotFound(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))

	_, err := r.GetByID(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripRepo_Search_Filters(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	lisbonPorto := tripFixture()
	bragaFaro := tripFixture()
	bragaFaro.ID = recur.NewTripID()
	bragaFaro.Origin = "Braga"
	bragaFaro.Destination = "Faro"
	cancelled := tripFixture()
	cancelled.ID = recur.NewTripID()
	cancelled.Status = domain.TripStatusCancelled

	_, err := r.CreateBatch(ctx, []domain.Trip{lisbonPorto, bragaFaro, cancelled})
	require.NoError(t, err)

	got, err := r.Search(ctx, domain.TripFilter{
		Kind:   domain.TripKindOffer,
		Origin: "lisb", // ILIKE substring
		Status: domain.TripStatusActive,
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, lisbonPorto.ID, got[0].ID)
}

func TestTripRepo_Search_DateFloor(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	past := tripFixture()
	past.DepartureDate = time.Date(2025, 5, 1, 0, 0, 0, 0, time.Local)
	future := tripFixture()
	future.ID = recur.NewTripID()

	_, err := r.CreateBatch(ctx, []domain.Trip{past, future})
	require.NoError(t, err)

	floor := time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)
	got, err := r.Search(ctx, domain.TripFilter{DateFrom: &floor})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, future.ID, got[0].ID)
}

func TestTripRepo_GetByRecurrenceAndDate(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	series := seriesFixture(3)
	_, err := r.CreateBatch(ctx, series)
	require.NoError(t, err)

	got, err := r.GetByRecurrenceAndDate(ctx, series[1].RecurrenceID, series[1].DepartureDate)

	require.NoError(t, err)
	assert.Equal(t, series[1].ID, got.ID)

	_, err = r.GetByRecurrenceAndDate(ctx, series[1].RecurrenceID,
		series[1].DepartureDate.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripRepo_DeleteByRecurrenceID(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	series := seriesFixture(3)
	keeper := tripFixture()
	keeper.ID = recur.NewTripID()
	_, err := r.CreateBatch(ctx, append(series, keeper))
	require.NoError(t, err)

	n, err := r.DeleteByRecurrenceID(ctx, series[0].RecurrenceID)

	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = r.GetByID(ctx, series[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = r.GetByID(ctx, keeper.ID)
	assert.NoError(t, err, "unrelated trip must survive a series delete")
}

func TestTripRepo_UpdateStatusByRecurrenceID(t *testing.T) {
	r := repo.NewTripRepo(newTestTx(t))
	ctx := context.Background()

	series := seriesFixture(2)
	_, err := r.CreateBatch(ctx, series)
	require.NoError(t, err)

	n, err := r.UpdateStatusByRecurrenceID(ctx, series[0].RecurrenceID, domain.TripStatusCancelled)

	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := r.GetByID(ctx, series[1].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TripStatusCancelled, got.Status)
}


