// Package verification is the verification pipeline (C7): the review
// state machine a handle claim or badge application moves through, grounded
// on the same Base/repository idiom as internal/store and on the teacher's
// logic-struct-per-operation layout.
package verification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// Pipeline drives a VerificationRequest through spec §3's state machine:
// submitted -> under_review -> {approved, rejected, needs_info -> under_review}.
type Pipeline struct {
	repo *store.VerificationRepo
}

func NewPipeline(repo *store.VerificationRepo) *Pipeline {
	return &Pipeline{repo: repo}
}

// Open creates a new request in status=submitted, implementing
// handleengine.VerificationRequester for C4's claim workflow.
func (p *Pipeline) Open(ctx context.Context, identityID uuid.UUID, kind store.VerificationType, priority int) (*store.VerificationRequest, error) {
	now := time.Now().UTC()
	req := &store.VerificationRequest{
		ID:         uuid.New(),
		IdentityID: identityID,
		Type:       kind,
		Priority:   priority,
		Status:     store.ReqSubmitted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Assign moves a submitted request under review, pinning it to a reviewer.
func (p *Pipeline) Assign(ctx context.Context, req *store.VerificationRequest, reviewer string) error {
	if req.Status != store.ReqSubmitted && req.Status != store.ReqNeedsInfo {
		return errs.Newf(errs.Conflict, "request %s is not assignable from status %s", req.ID, req.Status)
	}
	req.Status = store.ReqUnderReview
	req.AssignedReviewer = &reviewer
	req.UpdatedAt = time.Now().UTC()
	return p.repo.UpdateStatus(ctx, req)
}

// Approve transitions an under-review request to approved.
func (p *Pipeline) Approve(ctx context.Context, req *store.VerificationRequest) error {
	if req.Status != store.ReqUnderReview {
		return errs.Newf(errs.Conflict, "request %s is not under review", req.ID)
	}
	req.Status = store.ReqApproved
	req.UpdatedAt = time.Now().UTC()
	return p.repo.UpdateStatus(ctx, req)
}

// Reject transitions an under-review request to rejected with a reason.
func (p *Pipeline) Reject(ctx context.Context, req *store.VerificationRequest, reason string) error {
	if req.Status != store.ReqUnderReview {
		return errs.Newf(errs.Conflict, "request %s is not under review", req.ID)
	}
	req.Status = store.ReqRejected
	req.RejectReason = &reason
	req.UpdatedAt = time.Now().UTC()
	return p.repo.UpdateStatus(ctx, req)
}

// RequestInfo bounces an under-review request back to the submitter with a
// note on what's missing; a subsequent Assign moves it back under review.
func (p *Pipeline) RequestInfo(ctx context.Context, req *store.VerificationRequest, note string) error {
	if req.Status != store.ReqUnderReview {
		return errs.Newf(errs.Conflict, "request %s is not under review", req.ID)
	}
	req.Status = store.ReqNeedsInfo
	req.NeedsInfoNote = &note
	req.UpdatedAt = time.Now().UTC()
	return p.repo.UpdateStatus(ctx, req)
}
