package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"ponto/internal/checkin/service"
	"ponto/internal/checkin/store"
	gfservice "ponto/internal/geofence/service"
	gfstore "ponto/internal/geofence/store"
	proofstore "ponto/internal/proof/store"
	id "ponto/pkg/domain"
	"ponto/pkg/requestcontext"
	"ponto/pkg/testutil"
)

var (
	testInstitutionID = id.InstitutionID(uuid.New())
	testStaffID       = id.StaffID(uuid.New())
	testNow           = time.Date(2026, 3, 9, 7, 55, 0, 0, time.UTC)
)

func newCheckinRouter(t *testing.T, authenticated bool) http.Handler {
	t.Helper()

	geofenceSvc, err := gfservice.New(gfstore.NewInMemory())
	require.NoError(t, err)

	recorder, err := service.NewRecorder(
		store.NewInMemoryEvents(),
		store.NewInMemorySessions(),
		store.NewInMemoryAttempts(),
		proofstore.NewInMemory("https://proofs.example"),
		geofenceSvc,
	)
	require.NoError(t, err)

	h := New(recorder, testutil.DiscardLogger())
	r := chi.NewRouter()
	if authenticated {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := requestcontext.WithStaffID(req.Context(), testStaffID)
				ctx = requestcontext.WithInstitutionID(ctx, testInstitutionID)
				ctx = requestcontext.WithTime(ctx, testNow)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}
	h.Register(r)
	return r
}

func submitBody(t *testing.T, kind string) *bytes.Reader {
	t.Helper()
	payload := map[string]any{
		"kind": kind,
		"coordinate": map[string]float64{
			"latitude":  -12.9714,
			"longitude": -38.5014,
		},
		"proof": map[string]string{
			"data":         base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")),
			"content_type": "image/jpeg",
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestSubmitCheckin(t *testing.T) {
	router := newCheckinRouter(t, true)

	req := httptest.NewRequest(http.MethodPost, "/attendance/checkins", submitBody(t, "arrival"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CheckinResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "arrival", resp.Kind)
	require.Equal(t, testStaffID.String(), resp.StaffID)
	require.True(t, resp.WithinRadius, "no geofence on file admits every coordinate")
	require.Nil(t, resp.DistanceMeters, "no geofence on file means no distance to report")
	require.Contains(t, resp.ProofRef, fmt.Sprintf("%s/%s/", testInstitutionID, testStaffID))
}

func TestSubmitRequiresAuthentication(t *testing.T) {
	router := newCheckinRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/attendance/checkins", submitBody(t, "arrival"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitRejectsBadPayloads(t *testing.T) {
	router := newCheckinRouter(t, true)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"unknown kind", map[string]any{
			"kind":       "lunch",
			"coordinate": map[string]float64{"latitude": -12.9714, "longitude": -38.5014},
			"proof":      map[string]string{"data": base64.StdEncoding.EncodeToString([]byte("x"))},
		}},
		{"missing coordinate", map[string]any{
			"kind":  "arrival",
			"proof": map[string]string{"data": base64.StdEncoding.EncodeToString([]byte("x"))},
		}},
		{"latitude out of range", map[string]any{
			"kind":       "arrival",
			"coordinate": map[string]float64{"latitude": 91, "longitude": 0},
			"proof":      map[string]string{"data": base64.StdEncoding.EncodeToString([]byte("x"))},
		}},
		{"missing proof", map[string]any{
			"kind":       "arrival",
			"coordinate": map[string]float64{"latitude": -12.9714, "longitude": -38.5014},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, err := json.Marshal(tc.body)
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPost, "/attendance/checkins", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListCheckins(t *testing.T) {
	router := newCheckinRouter(t, true)

	for _, kind := range []string{"arrival", "departure"} {
		req := httptest.NewRequest(http.MethodPost, "/attendance/checkins", submitBody(t, kind))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	t.Run("all events", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/attendance/checkins?range=week", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Equal(t, 2, resp.Count)
	})

	t.Run("kind filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/attendance/checkins?kind=arrival", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Equal(t, 1, resp.Count)
		require.Equal(t, "arrival", resp.Checkins[0].Kind)
	})

	t.Run("staff filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/attendance/checkins?staff_id="+testStaffID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Equal(t, 2, resp.Count)
	})

	t.Run("unknown range rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/attendance/checkins?range=fortnight", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
