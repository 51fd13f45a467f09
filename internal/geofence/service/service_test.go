package service

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"ponto/internal/audit"
	"ponto/internal/geo"
	"ponto/internal/geofence/models"
	geofenceStore "ponto/internal/geofence/store"
	id "ponto/pkg/domain"
	dErrors "ponto/pkg/domain-errors"
)

// Salvador city-center fixture used across the admissibility tests.
var (
	salvadorCenter = geo.Coordinate{Latitude: -12.9714, Longitude: -38.5014}
	salvadorEdge   = geo.Coordinate{Latitude: -12.9800, Longitude: -38.5100}
)

type GeofenceServiceSuite struct {
	suite.Suite
	store   *geofenceStore.InMemoryConfigStore
	audits  *audit.InMemoryStore
	service *Service
}

func TestGeofenceServiceSuite(t *testing.T) {
	suite.Run(t, new(GeofenceServiceSuite))
}

func (s *GeofenceServiceSuite) SetupTest() {
	s.store = geofenceStore.NewInMemory()
	s.audits = audit.NewInMemoryStore()

	var err error
	s.service, err = New(s.store, WithAuditPublisher(audit.NewPublisher(s.audits)))
	s.Require().NoError(err)
}

func (s *GeofenceServiceSuite) config(enabled bool, radius int) *models.GeofenceConfig {
	return &models.GeofenceConfig{
		InstitutionID: id.InstitutionID(uuid.New()),
		Center:        salvadorCenter,
		RadiusMeters:  radius,
		Enabled:       enabled,
	}
}

func (s *GeofenceServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "config store is required")
	})
}

func (s *GeofenceServiceSuite) TestUpsert() {
	ctx := context.Background()

	s.Run("saves a valid config and assigns an id", func() {
		cfg := s.config(true, 100)
		saved, err := s.service.Upsert(ctx, cfg)
		s.NoError(err)
		s.NotEqual(id.GeofenceID{}, saved.ID)
		s.False(saved.UpdatedAt.IsZero())

		loaded, err := s.service.Get(ctx, cfg.InstitutionID)
		s.NoError(err)
		s.Require().NotNil(loaded)
		s.Equal(100, loaded.RadiusMeters)
	})

	s.Run("negative radius is rejected with no row written", func() {
		cfg := s.config(true, -5)
		_, err := s.service.Upsert(ctx, cfg)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		loaded, err := s.service.Get(ctx, cfg.InstitutionID)
		s.NoError(err)
		s.Nil(loaded)
	})

	s.Run("out-of-range latitude is rejected with no partial write", func() {
		cfg := s.config(true, 100)
		cfg.Center.Latitude = 91
		_, err := s.service.Upsert(ctx, cfg)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

		loaded, err := s.service.Get(ctx, cfg.InstitutionID)
		s.NoError(err)
		s.Nil(loaded)
	})

	s.Run("invalid radius does not clobber an existing row", func() {
		cfg := s.config(true, 100)
		_, err := s.service.Upsert(ctx, cfg)
		s.Require().NoError(err)

		bad := *cfg
		bad.RadiusMeters = 0
		_, err = s.service.Upsert(ctx, &bad)
		s.Error(err)

		loaded, err := s.service.Get(ctx, cfg.InstitutionID)
		s.NoError(err)
		s.Require().NotNil(loaded)
		s.Equal(100, loaded.RadiusMeters)
	})

	s.Run("disable toggle keeps center and radius", func() {
		cfg := s.config(true, 250)
		saved, err := s.service.Upsert(ctx, cfg)
		s.Require().NoError(err)

		saved.Enabled = false
		toggled, err := s.service.Upsert(ctx, saved)
		s.Require().NoError(err)

		loaded, err := s.service.Get(ctx, cfg.InstitutionID)
		s.NoError(err)
		s.Require().NotNil(loaded)
		s.False(loaded.Enabled)
		s.Equal(250, loaded.RadiusMeters)
		s.Equal(salvadorCenter, loaded.Center)
		s.Equal(toggled.ID, loaded.ID)
	})

	s.Run("save emits a geofence_updated audit event", func() {
		cfg := s.config(true, 100)
		_, err := s.service.Upsert(ctx, cfg)
		s.Require().NoError(err)

		events, err := s.audits.ListAll(ctx)
		s.Require().NoError(err)
		s.Require().NotEmpty(events)
		s.Equal(audit.ActionGeofenceUpdated, events[len(events)-1].Action)
	})
}

func (s *GeofenceServiceSuite) TestEvaluate() {
	s.Run("fix at the center is within radius with near-zero distance", func() {
		cfg := s.config(true, 100)
		eval := Evaluate(salvadorCenter, cfg)
		s.True(eval.WithinRadius)
		s.InDelta(0, eval.DistanceMeters, 0.01)
	})

	s.Run("fix a kilometer out is rejected", func() {
		cfg := s.config(true, 100)
		eval := Evaluate(salvadorEdge, cfg)
		s.False(eval.WithinRadius)
		s.Greater(eval.DistanceMeters, 1000.0)
	})

	s.Run("disabled config always admits but still measures", func() {
		cfg := s.config(false, 100)
		eval := Evaluate(salvadorEdge, cfg)
		s.True(eval.WithinRadius)
		s.Greater(eval.DistanceMeters, 1000.0)
	})

	s.Run("absent config admits with NaN distance", func() {
		eval := Evaluate(salvadorEdge, nil)
		s.True(eval.WithinRadius)
		s.True(math.IsNaN(eval.DistanceMeters))
	})

	s.Run("EvaluateFor treats a missing row as enforcement disabled", func() {
		eval, err := s.service.EvaluateFor(context.Background(), id.InstitutionID(uuid.New()), salvadorEdge)
		s.NoError(err)
		s.True(eval.WithinRadius)
		s.True(math.IsNaN(eval.DistanceMeters))
	})
}
