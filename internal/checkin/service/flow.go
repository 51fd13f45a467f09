package service

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"ponto/internal/checkin/models"
	"ponto/internal/geo"
	"ponto/internal/proof"
	id "ponto/pkg/domain"
	dErrors "ponto/pkg/domain-errors"
)

// FlowState is one position in the submission lifecycle.
type FlowState string

const (
	StateIdle       FlowState = "idle"
	StateCapturing  FlowState = "capturing"
	StateSubmitting FlowState = "submitting"
	StateFailed     FlowState = "failed"
)

// LocationSource yields a fresh coordinate per call.
type LocationSource interface {
	Acquire(ctx context.Context) (geo.Coordinate, error)
}

// Committer runs the commit protocol for one gathered submission.
type Committer interface {
	Record(ctx context.Context, req RecordRequest) (*models.CheckinEvent, error)
}

// Flow drives one staff member's submission lifecycle on a device:
// idle -> capturing -> submitting, then back to idle on success or to failed
// otherwise. Inputs are gathered while capturing and handed to the Committer
// exactly once per attempt; a second Submit while one is in flight is
// rejected rather than queued.
type Flow struct {
	location LocationSource
	capturer proof.Capturer
	recorder Committer

	mu         sync.Mutex
	state      FlowState
	coordinate *geo.Coordinate
	artifact   *proof.Artifact
	attemptID  id.AttemptID
	failure    string
}

// NewFlow constructs a Flow in the idle state.
func NewFlow(location LocationSource, capturer proof.Capturer, recorder Committer) (*Flow, error) {
	if location == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "location source is required")
	}
	if capturer == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "capturer is required")
	}
	if recorder == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "recorder is required")
	}
	return &Flow{
		location: location,
		capturer: capturer,
		recorder: recorder,
		state:    StateIdle,
	}, nil
}

// State reports the current lifecycle position.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// FailureReason returns the message recorded by the last failed submission.
func (f *Flow) FailureReason() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failure
}

// Begin moves an idle flow into capturing and gathers location and proof
// concurrently. Either gather failing leaves the flow capturing so the user
// can refresh or retake; nothing downstream is touched.
func (f *Flow) Begin(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateIdle {
		f.mu.Unlock()
		return dErrors.Newf(dErrors.CodeConflict, "cannot begin from state %q", f.state)
	}
	f.state = StateCapturing
	f.attemptID = id.NewAttemptID()
	f.mu.Unlock()

	return f.gather(ctx, true, true)
}

// RefreshLocation discards the held coordinate and acquires a fresh one.
func (f *Flow) RefreshLocation(ctx context.Context) error {
	if err := f.requireCapturing(); err != nil {
		return err
	}
	return f.gather(ctx, true, false)
}

// Retake discards the held artifact and captures again.
func (f *Flow) Retake(ctx context.Context) error {
	if err := f.requireCapturing(); err != nil {
		return err
	}
	return f.gather(ctx, false, true)
}

// Submit hands the gathered inputs to the commit protocol. On success the
// flow returns to idle, ready for the day's next boundary; on failure it
// lands in failed and stays there until Retry. Re-submission reuses the same
// attempt token, so a retry after an ambiguous network failure cannot
// double-commit.
func (f *Flow) Submit(ctx context.Context, institutionID id.InstitutionID, staffID id.StaffID, kind models.CheckKind) (*models.CheckinEvent, error) {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeConflict, "a submission is already in progress")
	}
	if f.state != StateCapturing {
		f.mu.Unlock()
		return nil, dErrors.Newf(dErrors.CodeConflict, "cannot submit from state %q", f.state)
	}
	if f.coordinate == nil {
		f.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeInvalidInput, "missing coordinate")
	}
	if f.artifact == nil {
		f.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeInvalidInput, "missing proof artifact")
	}
	req := RecordRequest{
		InstitutionID: institutionID,
		StaffID:       staffID,
		Kind:          kind,
		Coordinate:    f.coordinate,
		Proof:         f.artifact,
		AttemptID:     f.attemptID,
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	event, err := f.recorder.Record(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = StateFailed
		f.failure = err.Error()
		return nil, err
	}
	f.state = StateIdle
	f.failure = ""
	f.coordinate = nil
	f.artifact = nil
	f.attemptID = id.AttemptID{}
	return event, nil
}

// Retry moves a failed flow back to capturing, keeping the gathered inputs
// and the attempt token for an identical resubmission.
func (f *Flow) Retry() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateFailed {
		return dErrors.Newf(dErrors.CodeConflict, "cannot retry from state %q", f.state)
	}
	f.state = StateCapturing
	return nil
}

// Reset returns the flow to idle, discarding any gathered inputs. Used to
// abandon an attempt.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return
	}
	f.state = StateIdle
	f.coordinate = nil
	f.artifact = nil
	f.attemptID = id.AttemptID{}
	f.failure = ""
}

func (f *Flow) requireCapturing() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateCapturing {
		return dErrors.Newf(dErrors.CodeConflict, "cannot capture from state %q", f.state)
	}
	return nil
}

// gather acquires the requested inputs concurrently. Whatever succeeds is
// kept even when the other input fails, so a granted camera capture survives
// a denied location permission and vice versa.
func (f *Flow) gather(ctx context.Context, wantLocation, wantProof bool) error {
	// A plain group, not WithContext: one input failing must not cancel the
	// other mid-acquisition.
	var g errgroup.Group
	if wantLocation {
		g.Go(func() error {
			coordinate, err := f.location.Acquire(ctx)
			if err != nil {
				return err
			}
			f.mu.Lock()
			f.coordinate = &coordinate
			f.mu.Unlock()
			return nil
		})
	}
	if wantProof {
		g.Go(func() error {
			artifact, err := f.capturer.Capture(ctx)
			if err != nil {
				return err
			}
			f.mu.Lock()
			f.artifact = artifact
			f.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}
