package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"ponto/internal/checkin/models"
	"ponto/internal/checkin/store"
	"ponto/internal/compliance"
	"ponto/internal/geo"
	id "ponto/pkg/domain"
	"ponto/pkg/requestcontext"
	"ponto/pkg/testutil"
)

var (
	testInstitutionID = id.InstitutionID(uuid.New())
	testStaffID       = id.StaffID(uuid.New())
	testNow           = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
)

func newComplianceRouter(t *testing.T, events *store.InMemoryEventStore) http.Handler {
	t.Helper()
	svc, err := compliance.New(events)
	require.NoError(t, err)

	h := New(svc, testutil.DiscardLogger())
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithInstitutionID(req.Context(), testInstitutionID)
			ctx = requestcontext.WithTime(ctx, testNow)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.Register(r)
	return r
}

func seedEvents(t *testing.T, events *store.InMemoryEventStore) {
	t.Helper()
	for i, within := range []bool{true, true, false} {
		err := events.Append(context.Background(), &models.CheckinEvent{
			ID:            id.NewCheckinID(),
			InstitutionID: testInstitutionID,
			StaffID:       testStaffID,
			Kind:          models.KindArrival,
			OccurredAt:    testNow.Add(-time.Duration(i+1) * time.Hour),
			Coordinate:    geo.Coordinate{Latitude: -12.9714, Longitude: -38.5014},
			WithinRadius:  within,
		})
		require.NoError(t, err)
	}
}

func TestFleetReport(t *testing.T) {
	events := store.NewInMemoryEvents()
	seedEvents(t, events)
	router := newComplianceRouter(t, events)

	req := testutil.NewRequest(t, http.MethodGet, "/attendance/compliance?range=week")
	rec := testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rec)

	resp := testutil.UnmarshalResponse[compliance.FleetSummary](t, rec)
	require.Equal(t, 1, resp.StaffCount)
	require.Equal(t, 3, resp.TotalCheckins)
	require.Equal(t, 2, resp.WithinRadius)
	require.Equal(t, 1, resp.OutsideRadius)
}

func TestStaffReport(t *testing.T) {
	events := store.NewInMemoryEvents()
	seedEvents(t, events)
	router := newComplianceRouter(t, events)

	req := testutil.NewRequest(t, http.MethodGet, "/attendance/compliance?staff_id="+testStaffID.String())
	rec := testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rec)

	resp := testutil.UnmarshalResponse[compliance.StaffSummary](t, rec)
	require.Equal(t, 3, resp.TotalCheckins)
	require.Equal(t, testNow.Add(-time.Hour), resp.LastCheckinAt)
}

func TestReportRejectsBadInput(t *testing.T) {
	router := newComplianceRouter(t, store.NewInMemoryEvents())

	t.Run("unknown range", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/attendance/compliance?range=decade")
		rec := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rec, http.StatusBadRequest, "invalid_input")
	})

	t.Run("malformed staff id", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/attendance/compliance?staff_id=not-a-uuid")
		rec := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rec, http.StatusBadRequest, "invalid_input")
	})
}
