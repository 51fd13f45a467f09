package handler

import (
	"strings"

	"ponto/internal/checkin/models"
	"ponto/internal/geo"
	id "ponto/pkg/domain"
	dErrors "ponto/pkg/domain-errors"
)

// maxProofBytes bounds the decoded artifact payload. Mirrors the object
// store's own limit so oversized uploads fail at the edge.
const maxProofBytes = 10 << 20

// SubmitRequest is the HTTP request body for POST /attendance/checkins.
type SubmitRequest struct {
	Kind       string          `json:"kind"`
	Coordinate *geo.Coordinate `json:"coordinate"`
	Proof      ProofPayload    `json:"proof"`
	AttemptID  string          `json:"attempt_id"`

	// Parsed values (populated by Validate)
	parsedKind      models.CheckKind
	parsedAttemptID id.AttemptID
}

// ProofPayload carries the captured still image. Data is base64 in transit.
type ProofPayload struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	kind := models.CheckKind(strings.TrimSpace(r.Kind))
	if !kind.Valid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "kind must be %q or %q", models.KindArrival, models.KindDeparture)
	}
	r.parsedKind = kind

	if r.Coordinate == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "coordinate is required")
	}
	if err := r.Coordinate.Validate(); err != nil {
		return err
	}

	if len(r.Proof.Data) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "proof.data is required")
	}
	if len(r.Proof.Data) > maxProofBytes {
		return dErrors.New(dErrors.CodeInvalidInput, "proof.data exceeds the maximum size")
	}

	if r.AttemptID != "" {
		attemptID, err := id.ParseAttemptID(r.AttemptID)
		if err != nil {
			return err
		}
		r.parsedAttemptID = attemptID
	}
	return nil
}

// ParsedKind returns the validated boundary kind.
func (r *SubmitRequest) ParsedKind() models.CheckKind {
	return r.parsedKind
}

// ParsedAttemptID returns the validated attempt token, zero when omitted.
func (r *SubmitRequest) ParsedAttemptID() id.AttemptID {
	return r.parsedAttemptID
}
