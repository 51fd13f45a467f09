// Package service orchestrates attendance recording: the client-facing flow
// state machine and the ordered commit protocol behind it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ponto/internal/audit"
	"ponto/internal/checkin/metrics"
	"ponto/internal/checkin/models"
	"ponto/internal/checkin/store"
	"ponto/internal/geo"
	gfmodels "ponto/internal/geofence/models"
	"ponto/internal/proof"
	proofstore "ponto/internal/proof/store"
	id "ponto/pkg/domain"
	dErrors "ponto/pkg/domain-errors"
	"ponto/pkg/platform/sentinel"
	"ponto/pkg/requestcontext"
)

// GeofenceEvaluator is the admissibility port.
type GeofenceEvaluator interface {
	EvaluateFor(ctx context.Context, institutionID id.InstitutionID, coordinate geo.Coordinate) (gfmodels.Evaluation, error)
}

// AuditPublisher is the audit emission port.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RecordRequest carries everything the commit protocol needs. Coordinate and
// Proof must have been gathered beforehand; Record never re-acquires either.
type RecordRequest struct {
	InstitutionID id.InstitutionID
	StaffID       id.StaffID
	Kind          models.CheckKind
	Coordinate    *geo.Coordinate
	Proof         *proof.Artifact
	// AttemptID deduplicates rapid double-submission. Generated when the
	// client omits it, which forfeits the dedup protection for that attempt.
	AttemptID id.AttemptID
}

// Recorder runs the two-phase commit protocol: upload the proof artifact,
// then write the ledger entry referencing it. The ordering is the core
// correctness invariant: a committed event never references a failed upload.
// An upload may succeed without ever being referenced (orphan-tolerant, not
// orphan-causing).
type Recorder struct {
	events   store.EventStore
	sessions store.SessionStore
	attempts store.AttemptStore
	objects  proofstore.ObjectStore
	geofence GeofenceEvaluator

	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer

	inflight inflightGuard
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) RecorderOption {
	return func(r *Recorder) { r.auditPublisher = publisher }
}

func WithMetrics(m *metrics.Metrics) RecorderOption {
	return func(r *Recorder) { r.metrics = m }
}

// NewRecorder constructs a Recorder over its required stores and ports.
func NewRecorder(
	events store.EventStore,
	sessions store.SessionStore,
	attempts store.AttemptStore,
	objects proofstore.ObjectStore,
	geofence GeofenceEvaluator,
	opts ...RecorderOption,
) (*Recorder, error) {
	if events == nil {
		return nil, fmt.Errorf("event store is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if attempts == nil {
		return nil, fmt.Errorf("attempt store is required")
	}
	if objects == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if geofence == nil {
		return nil, fmt.Errorf("geofence evaluator is required")
	}

	r := &Recorder{
		events:   events,
		sessions: sessions,
		attempts: attempts,
		objects:  objects,
		geofence: geofence,
		tracer:   otel.Tracer("ponto/checkin"),
		inflight: inflightGuard{active: make(map[string]struct{})},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Record runs the ordered commit protocol:
//
//  1. fail fast on missing coordinate, proof, or identity, before any
//     network call;
//  2. reserve the attempt token, then upload the artifact; on failure
//     release the token and stop with zero ledger writes;
//  3. evaluate geofence admissibility with the coordinate captured in step 1;
//  4. commit the ledger entry and update the paired session row with
//     status pending_validation.
//
// A persist failure after a successful upload orphans the artifact; that is
// logged and audited for later reconciliation, never hidden.
func (r *Recorder) Record(ctx context.Context, req RecordRequest) (*models.CheckinEvent, error) {
	ctx, span := r.tracer.Start(ctx, "checkin.record")
	defer span.End()
	start := time.Now()

	if err := r.validate(req); err != nil {
		r.countRejection("validation")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("checkin.kind", string(req.Kind)),
		attribute.String("checkin.institution_id", req.InstitutionID.String()),
	)

	// One in-flight submission per staff member and device.
	lockKey := req.StaffID.String() + "|" + requestcontext.DeviceID(ctx)
	if !r.inflight.tryAcquire(lockKey) {
		r.countRejection("in_flight")
		return nil, dErrors.New(dErrors.CodeConflict, "a submission is already in progress")
	}
	defer r.inflight.release(lockKey)

	attemptID := req.AttemptID
	if attemptID.IsNil() {
		attemptID = id.NewAttemptID()
	}
	if err := r.attempts.Reserve(ctx, attemptID); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			r.countRejection("duplicate_attempt")
			r.emitAudit(ctx, req, audit.ActionSubmissionDeduplicated, attemptID.String())
			return nil, dErrors.New(dErrors.CodeConflict, "this submission attempt was already processed")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve submission attempt")
	}

	occurredAt := requestcontext.Now(ctx)
	path := proof.ObjectPath(req.InstitutionID, req.StaffID, occurredAt)

	// Phase one: durable upload. Nothing is written to the ledger unless
	// this succeeds.
	err := r.objects.Put(ctx, proofstore.Object{
		Path:        path,
		Data:        req.Proof.Data,
		ContentType: req.Proof.ContentType,
	})
	if err != nil {
		r.releaseAttempt(ctx, attemptID)
		if r.metrics != nil {
			r.metrics.ProofUploadsFailed.Inc()
		}
		r.emitAudit(ctx, req, audit.ActionCheckinRejected, "proof upload failed")
		r.logWarn(ctx, "proof upload failed", req, err)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "proof upload failed, nothing was recorded")
	}

	evaluation, err := r.geofence.EvaluateFor(ctx, req.InstitutionID, *req.Coordinate)
	if err != nil {
		// The artifact is already durable; treat this like a failed commit.
		return nil, r.orphaned(ctx, req, attemptID, path, err)
	}
	r.countEvaluation(evaluation)

	event := &models.CheckinEvent{
		ID:             id.NewCheckinID(),
		InstitutionID:  req.InstitutionID,
		StaffID:        req.StaffID,
		Kind:           req.Kind,
		OccurredAt:     occurredAt,
		Coordinate:     *req.Coordinate,
		DistanceMeters: evaluation.DistanceMeters,
		WithinRadius:   evaluation.WithinRadius,
		ProofRef:       r.objects.URL(path),
	}

	// Phase two: ledger commit.
	if err := r.events.Append(ctx, event); err != nil {
		return nil, r.orphaned(ctx, req, attemptID, path, err)
	}

	if err := r.upsertSession(ctx, event, path); err != nil {
		// The ledger entry is committed; the paired row is a denormalized
		// view that reconciliation can rebuild.
		r.logWarn(ctx, "attendance session update failed after commit", req, err)
	}

	r.emitAudit(ctx, req, audit.ActionCheckinCommitted, event.ID.String())
	if !evaluation.WithinRadius {
		r.emitAudit(ctx, req, audit.ActionCheckinOutsideRadius,
			fmt.Sprintf("distance=%.0fm", evaluation.DistanceMeters))
	}
	if r.metrics != nil {
		r.metrics.CheckinsCommitted.WithLabelValues(string(req.Kind)).Inc()
		r.metrics.SubmitDuration.Observe(time.Since(start).Seconds())
	}
	if r.logger != nil {
		r.logger.InfoContext(ctx, "checkin committed",
			"checkin_id", event.ID,
			"institution_id", event.InstitutionID,
			"staff_id", event.StaffID,
			"kind", event.Kind,
			"within_radius", event.WithinRadius,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return event, nil
}

// History lists the institution's ledger entries for a named range, newest
// first, optionally filtered by boundary kind. The read is capped at the
// window limit; callers see at most that many entries per request.
func (r *Recorder) History(ctx context.Context, institutionID id.InstitutionID, rng models.WindowRange, kinds ...models.CheckKind) ([]*models.CheckinEvent, error) {
	if institutionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "institution_id is required")
	}
	window, err := models.WindowFor(rng, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	events, err := r.events.ListByInstitution(ctx, institutionID, window, kinds...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list checkins")
	}
	return events, nil
}

// StaffHistory lists one staff member's ledger entries for a named range.
func (r *Recorder) StaffHistory(ctx context.Context, institutionID id.InstitutionID, staffID id.StaffID, rng models.WindowRange) ([]*models.CheckinEvent, error) {
	if institutionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "institution_id is required")
	}
	if staffID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "staff_id is required")
	}
	window, err := models.WindowFor(rng, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	events, err := r.events.ListByStaff(ctx, institutionID, staffID, window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list checkins")
	}
	return events, nil
}

func (r *Recorder) validate(req RecordRequest) error {
	if req.InstitutionID.IsNil() || req.StaffID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "missing staff or institution identity")
	}
	if !req.Kind.Valid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown checkin kind %q", req.Kind)
	}
	if req.Coordinate == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "missing coordinate")
	}
	if err := req.Coordinate.Validate(); err != nil {
		return err
	}
	if req.Proof == nil || len(req.Proof.Data) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "missing proof artifact")
	}
	return nil
}

func (r *Recorder) upsertSession(ctx context.Context, event *models.CheckinEvent, path string) error {
	day := event.OccurredAt.UTC().Format("2006-01-02")
	session, err := r.sessions.GetByStaffDay(ctx, event.InstitutionID, event.StaffID, day)
	if err != nil {
		return err
	}
	if session == nil {
		session = &models.AttendanceSession{
			ID:            id.NewAttendanceSessionID(),
			InstitutionID: event.InstitutionID,
			StaffID:       event.StaffID,
			Day:           day,
		}
	}

	occurred := event.OccurredAt
	coord := event.Coordinate
	switch event.Kind {
	case models.KindArrival:
		session.ArrivalTime = &occurred
		session.ArrivalPhotoPath = path
		session.ArrivalCoords = &coord
	case models.KindDeparture:
		session.DepartureTime = &occurred
		session.DeparturePhotoPath = path
		session.DepartureCoords = &coord
	}
	session.Status = models.StatusPendingValidation

	return r.sessions.Upsert(ctx, session)
}

// orphaned handles a commit failure after the artifact became durable. The
// attempt reservation is released so the client's retry with the same token
// is not mistaken for a replay.
func (r *Recorder) orphaned(ctx context.Context, req RecordRequest, attemptID id.AttemptID, path string, err error) error {
	r.releaseAttempt(ctx, attemptID)
	if r.metrics != nil {
		r.metrics.ProofsOrphaned.Inc()
	}
	r.emitAudit(ctx, req, audit.ActionProofOrphaned, path)
	r.logWarn(ctx, "ledger commit failed, proof artifact orphaned", req, err)
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit checkin")
}

func (r *Recorder) releaseAttempt(ctx context.Context, attemptID id.AttemptID) {
	if err := r.attempts.Release(ctx, attemptID); err != nil && r.logger != nil {
		r.logger.WarnContext(ctx, "failed to release attempt reservation",
			"attempt_id", attemptID,
			"error", err,
		)
	}
}

func (r *Recorder) emitAudit(ctx context.Context, req RecordRequest, action audit.Action, subject string) {
	if r.auditPublisher == nil {
		return
	}
	_ = r.auditPublisher.Emit(ctx, audit.Event{
		InstitutionID: req.InstitutionID,
		StaffID:       req.StaffID,
		Action:        action,
		Subject:       subject,
		Reason:        string(req.Kind),
	})
}

func (r *Recorder) countRejection(reason string) {
	if r.metrics != nil {
		r.metrics.SubmissionsRejected.WithLabelValues(reason).Inc()
	}
}

func (r *Recorder) countEvaluation(evaluation gfmodels.Evaluation) {
	if r.metrics == nil {
		return
	}
	outcome := "within"
	if !evaluation.WithinRadius {
		outcome = "outside"
	}
	r.metrics.GeofenceEvaluations.WithLabelValues(outcome).Inc()
}

func (r *Recorder) logWarn(ctx context.Context, msg string, req RecordRequest, err error) {
	if r.logger == nil {
		return
	}
	r.logger.WarnContext(ctx, msg,
		"institution_id", req.InstitutionID,
		"staff_id", req.StaffID,
		"kind", req.Kind,
		"error", err,
	)
}

// inflightGuard rejects a second concurrent submission for the same key.
type inflightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func (g *inflightGuard) tryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.active[key]; held {
		return false
	}
	g.active[key] = struct{}{}
	return true
}

func (g *inflightGuard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, key)
}
