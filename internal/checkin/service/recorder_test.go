package service

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"ponto/internal/audit"
	"ponto/internal/checkin/models"
	"ponto/internal/checkin/store"
	"ponto/internal/geo"
	gfmodels "ponto/internal/geofence/models"
	gfservice "ponto/internal/geofence/service"
	gfstore "ponto/internal/geofence/store"
	"ponto/internal/proof"
	proofstore "ponto/internal/proof/store"
	id "ponto/pkg/domain"
	dErrors "ponto/pkg/domain-errors"
	"ponto/pkg/requestcontext"
)

var (
	campusCenter = geo.Coordinate{Latitude: -12.9714, Longitude: -38.5014}
	farAway      = geo.Coordinate{Latitude: -12.9800, Longitude: -38.5100}
)

type failingObjectStore struct{}

func (failingObjectStore) Put(context.Context, proofstore.Object) error { return fmt.Errorf("bucket down") }
func (failingObjectStore) Get(context.Context, string) (*proofstore.Object, error) {
	return nil, fmt.Errorf("bucket down")
}
func (failingObjectStore) URL(string) string { return "" }

type failingEventStore struct{}

func (failingEventStore) Append(context.Context, *models.CheckinEvent) error {
	return fmt.Errorf("ledger down")
}
func (failingEventStore) ListByInstitution(context.Context, id.InstitutionID, models.Window, ...models.CheckKind) ([]*models.CheckinEvent, error) {
	return nil, nil
}
func (failingEventStore) ListByStaff(context.Context, id.InstitutionID, id.StaffID, models.Window) ([]*models.CheckinEvent, error) {
	return nil, nil
}

type flakyObjectStore struct {
	*proofstore.InMemoryObjectStore
	failures int
}

func (s *flakyObjectStore) Put(ctx context.Context, obj proofstore.Object) error {
	if s.failures > 0 {
		s.failures--
		return fmt.Errorf("bucket down")
	}
	return s.InMemoryObjectStore.Put(ctx, obj)
}

type flakyEventStore struct {
	*store.InMemoryEventStore
	failures int
}

func (s *flakyEventStore) Append(ctx context.Context, event *models.CheckinEvent) error {
	if s.failures > 0 {
		s.failures--
		return fmt.Errorf("ledger down")
	}
	return s.InMemoryEventStore.Append(ctx, event)
}

type recorderFixture struct {
	recorder   *Recorder
	events     *store.InMemoryEventStore
	sessions   *store.InMemorySessionStore
	objects    *proofstore.InMemoryObjectStore
	geofences  *gfstore.InMemoryConfigStore
	auditStore *audit.InMemoryStore
}

type RecorderSuite struct {
	suite.Suite

	institutionID id.InstitutionID
	staffID       id.StaffID
	now           time.Time
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) SetupTest() {
	s.institutionID = id.InstitutionID(uuid.New())
	s.staffID = id.StaffID(uuid.New())
	s.now = time.Date(2026, 3, 9, 7, 55, 0, 0, time.UTC)
}

func (s *RecorderSuite) newFixture(opts ...RecorderOption) *recorderFixture {
	f := &recorderFixture{
		events:     store.NewInMemoryEvents(),
		sessions:   store.NewInMemorySessions(),
		objects:    proofstore.NewInMemory("https://proofs.example"),
		geofences:  gfstore.NewInMemory(),
		auditStore: audit.NewInMemoryStore(),
	}
	geofenceSvc, err := gfservice.New(f.geofences)
	s.Require().NoError(err)

	publisher := audit.NewPublisher(f.auditStore)
	opts = append([]RecorderOption{WithAuditPublisher(publisher)}, opts...)

	f.recorder, err = NewRecorder(f.events, f.sessions, store.NewInMemoryAttempts(), f.objects, geofenceSvc, opts...)
	s.Require().NoError(err)
	return f
}

func (s *RecorderSuite) ctx() context.Context {
	ctx := requestcontext.WithTime(context.Background(), s.now)
	return requestcontext.WithDeviceID(ctx, "device-1")
}

func (s *RecorderSuite) request(kind models.CheckKind, coordinate geo.Coordinate) RecordRequest {
	return RecordRequest{
		InstitutionID: s.institutionID,
		StaffID:       s.staffID,
		Kind:          kind,
		Coordinate:    &coordinate,
		Proof:         &proof.Artifact{Data: []byte("jpeg-bytes"), ContentType: "image/jpeg"},
		AttemptID:     id.NewAttemptID(),
	}
}

func (s *RecorderSuite) setGeofence(f *recorderFixture, radius int, enabled bool) {
	err := f.geofences.Upsert(context.Background(), &gfmodels.GeofenceConfig{
		ID:            id.GeofenceID(uuid.New()),
		InstitutionID: s.institutionID,
		Center:        campusCenter,
		RadiusMeters:  radius,
		Enabled:       enabled,
		UpdatedAt:     s.now,
	})
	s.Require().NoError(err)
}

func (s *RecorderSuite) auditActions(f *recorderFixture) []audit.Action {
	events, err := f.auditStore.ListByStaff(context.Background(), s.staffID.String())
	s.Require().NoError(err)
	actions := make([]audit.Action, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	return actions
}

func (s *RecorderSuite) TestCommitWithinRadius() {
	f := s.newFixture()
	s.setGeofence(f, 150, true)

	event, err := f.recorder.Record(s.ctx(), s.request(models.KindArrival, campusCenter))
	s.Require().NoError(err)

	s.Equal(models.KindArrival, event.Kind)
	s.True(event.WithinRadius)
	s.InDelta(0, event.DistanceMeters, 0.5)
	s.Equal(s.now, event.OccurredAt)

	expectedPath := proof.ObjectPath(s.institutionID, s.staffID, s.now)
	s.Equal("https://proofs.example/"+expectedPath, event.ProofRef)
	obj, err := f.objects.Get(context.Background(), expectedPath)
	s.Require().NoError(err)
	s.Equal("image/jpeg", obj.ContentType)

	session, err := f.sessions.GetByStaffDay(context.Background(), s.institutionID, s.staffID, "2026-03-09")
	s.Require().NoError(err)
	s.Require().NotNil(session)
	s.Equal(models.StatusPendingValidation, session.Status)
	s.Require().NotNil(session.ArrivalTime)
	s.Equal(s.now, *session.ArrivalTime)
	s.Equal(expectedPath, session.ArrivalPhotoPath)
	s.Nil(session.DepartureTime)

	s.Contains(s.auditActions(f), audit.ActionCheckinCommitted)
}

func (s *RecorderSuite) TestCommitOutsideRadius() {
	f := s.newFixture()
	s.setGeofence(f, 100, true)

	event, err := f.recorder.Record(s.ctx(), s.request(models.KindArrival, farAway))
	s.Require().NoError(err)

	s.False(event.WithinRadius, "outside-radius submissions are admitted and flagged, not blocked")
	s.Greater(event.DistanceMeters, 100.0)
	s.Equal(1, f.events.Len())

	actions := s.auditActions(f)
	s.Contains(actions, audit.ActionCheckinCommitted)
	s.Contains(actions, audit.ActionCheckinOutsideRadius)
}

func (s *RecorderSuite) TestCommitWithoutGeofenceConfig() {
	f := s.newFixture()

	event, err := f.recorder.Record(s.ctx(), s.request(models.KindArrival, farAway))
	s.Require().NoError(err)

	s.True(event.WithinRadius)
	s.True(math.IsNaN(event.DistanceMeters))
}

func (s *RecorderSuite) TestDepartureCompletesExistingSession() {
	f := s.newFixture()
	s.setGeofence(f, 150, true)
	ctx := s.ctx()

	_, err := f.recorder.Record(ctx, s.request(models.KindArrival, campusCenter))
	s.Require().NoError(err)

	departAt := s.now.Add(9 * time.Hour)
	ctx = requestcontext.WithTime(ctx, departAt)
	_, err = f.recorder.Record(ctx, s.request(models.KindDeparture, campusCenter))
	s.Require().NoError(err)

	session, err := f.sessions.GetByStaffDay(context.Background(), s.institutionID, s.staffID, "2026-03-09")
	s.Require().NoError(err)
	s.Require().NotNil(session)
	s.Require().NotNil(session.ArrivalTime, "departure must not clobber the arrival half")
	s.Equal(s.now, *session.ArrivalTime)
	s.Require().NotNil(session.DepartureTime)
	s.Equal(departAt, *session.DepartureTime)
	s.Equal(2, f.events.Len(), "both boundaries are separate ledger entries")
}

func (s *RecorderSuite) TestUploadFailureWritesNothing() {
	f := s.newFixture()
	s.setGeofence(f, 150, true)

	geofenceSvc, err := gfservice.New(f.geofences)
	s.Require().NoError(err)
	recorder, err := NewRecorder(f.events, f.sessions, store.NewInMemoryAttempts(), failingObjectStore{}, geofenceSvc,
		WithAuditPublisher(audit.NewPublisher(f.auditStore)))
	s.Require().NoError(err)

	_, err = recorder.Record(s.ctx(), s.request(models.KindArrival, campusCenter))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	s.Equal(0, f.events.Len(), "a failed upload must leave the ledger untouched")
	session, err := f.sessions.GetByStaffDay(context.Background(), s.institutionID, s.staffID, "2026-03-09")
	s.Require().NoError(err)
	s.Nil(session)
	s.Contains(s.auditActions(f), audit.ActionCheckinRejected)
}

func (s *RecorderSuite) TestPersistFailureOrphansArtifact() {
	f := s.newFixture()
	s.setGeofence(f, 150, true)

	geofenceSvc, err := gfservice.New(f.geofences)
	s.Require().NoError(err)
	recorder, err := NewRecorder(failingEventStore{}, f.sessions, store.NewInMemoryAttempts(), f.objects, geofenceSvc,
		WithAuditPublisher(audit.NewPublisher(f.auditStore)))
	s.Require().NoError(err)

	_, err = recorder.Record(s.ctx(), s.request(models.KindArrival, campusCenter))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	s.Equal(1, f.objects.Len(), "the uploaded artifact stays behind as an orphan")
	s.Contains(s.auditActions(f), audit.ActionProofOrphaned)
}

func (s *RecorderSuite) TestUploadFailureIsRetryableWithSameAttempt() {
	f := s.newFixture()
	s.setGeofence(f, 150, true)

	objects := &flakyObjectStore{InMemoryObjectStore: f.objects, failures: 1}
	geofenceSvc, err := gfservice.New(f.geofences)
	s.Require().NoError(err)
	recorder, err := NewRecorder(f.events, f.sessions, store.NewInMemoryAttempts(), objects, geofenceSvc,
		WithAuditPublisher(audit.NewPublisher(f.auditStore)))
	s.Require().NoError(err)

	req := s.request(models.KindArrival, campusCenter)
	_, err = recorder.Record(s.ctx(), req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal(0, f.events.Len())

	// The bucket recovers; the user's retry reuses the same attempt token and
	// must not be mistaken for a replay.
	event, err := recorder.Record(s.ctx(), req)
	s.Require().NoError(err)
	s.Equal(models.KindArrival, event.Kind)
	s.Equal(1, f.events.Len())
}

func (s *RecorderSuite) TestCommitFailureIsRetryableWithSameAttempt() {
	f := s.newFixture()
	s.setGeofence(f, 150, true)

	events := &flakyEventStore{InMemoryEventStore: f.events, failures: 1}
	geofenceSvc, err := gfservice.New(f.geofences)
	s.Require().NoError(err)
	recorder, err := NewRecorder(events, f.sessions, store.NewInMemoryAttempts(), f.objects, geofenceSvc,
		WithAuditPublisher(audit.NewPublisher(f.auditStore)))
	s.Require().NoError(err)

	req := s.request(models.KindArrival, campusCenter)
	_, err = recorder.Record(s.ctx(), req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Contains(s.auditActions(f), audit.ActionProofOrphaned)

	_, err = recorder.Record(s.ctx(), req)
	s.Require().NoError(err)
	s.Equal(1, f.events.Len())
}

func (s *RecorderSuite) TestDuplicateAttemptRejected() {
	f := s.newFixture()
	s.setGeofence(f, 150, true)

	req := s.request(models.KindArrival, campusCenter)
	_, err := f.recorder.Record(s.ctx(), req)
	s.Require().NoError(err)

	_, err = f.recorder.Record(s.ctx(), req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	s.Equal(1, f.events.Len())
	s.Equal(1, f.objects.Len(), "the duplicate must be caught before a second upload")
	s.Contains(s.auditActions(f), audit.ActionSubmissionDeduplicated)
}

func (s *RecorderSuite) TestValidationFailsFast() {
	f := s.newFixture()
	s.setGeofence(f, 150, true)

	s.Run("missing coordinate", func() {
		req := s.request(models.KindArrival, campusCenter)
		req.Coordinate = nil
		_, err := f.recorder.Record(s.ctx(), req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("missing proof", func() {
		req := s.request(models.KindArrival, campusCenter)
		req.Proof = nil
		_, err := f.recorder.Record(s.ctx(), req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("missing identity", func() {
		req := s.request(models.KindArrival, campusCenter)
		req.StaffID = id.StaffID{}
		_, err := f.recorder.Record(s.ctx(), req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown kind", func() {
		req := s.request("lunch", campusCenter)
		_, err := f.recorder.Record(s.ctx(), req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Equal(0, f.objects.Len(), "validation failures must not reach the object store")
	s.Equal(0, f.events.Len())
}
