package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// VerificationRepo persists Verification request and Document rows (spec §3/§4.7).
type VerificationRepo struct {
	*Base
}

func NewVerificationRepo(base *Base) *VerificationRepo {
	return &VerificationRepo{Base: base}
}

func (r *VerificationRepo) Create(ctx context.Context, req *VerificationRequest) error {
	_, err := sqlx.NamedExecContext(ctx, r.DB, `
		INSERT INTO verification_requests (id, identity_id, type, priority,
			status, assigned_reviewer, reject_reason, needs_info_note,
			created_at, updated_at)
		VALUES (:id, :identity_id, :type, :priority, :status,
			:assigned_reviewer, :reject_reason, :needs_info_note,
			:created_at, :updated_at)`, req)
	return wrapExec(err, "create verification request")
}

func (r *VerificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*VerificationRequest, error) {
	var out VerificationRequest
	err := r.DB.GetContext(ctx, &out, `
		SELECT id, identity_id, type, priority, status, assigned_reviewer,
			reject_reason, needs_info_note, created_at, updated_at
		FROM verification_requests WHERE id = $1`, id)
	if err != nil {
		return nil, NotFoundOrErr("verification request", err)
	}
	return &out, nil
}

// ListQueue returns the reviewer queue ordered by priority then age —
// supplemented beyond spec.md §4.7 (see SPEC_FULL.md §C item 3).
func (r *VerificationRepo) ListQueue(ctx context.Context, status VerificationRequestStatus, limit int) ([]VerificationRequest, error) {
	var out []VerificationRequest
	err := r.DB.SelectContext(ctx, &out, `
		SELECT id, identity_id, type, priority, status, assigned_reviewer,
			reject_reason, needs_info_note, created_at, updated_at
		FROM verification_requests
		WHERE status = $1
		ORDER BY priority ASC, created_at ASC
		LIMIT $2`, status, limit)
	return out, wrapExec(err, "list verification queue")
}

func (r *VerificationRepo) UpdateStatus(ctx context.Context, req *VerificationRequest) error {
	_, err := sqlx.NamedExecContext(ctx, r.DB, `
		UPDATE verification_requests SET status = :status,
			assigned_reviewer = :assigned_reviewer,
			reject_reason = :reject_reason, needs_info_note = :needs_info_note,
			updated_at = :updated_at
		WHERE id = :id`, req)
	return wrapExec(err, "update verification request")
}

func (r *VerificationRepo) AddDocument(ctx context.Context, d *Document) error {
	_, err := sqlx.NamedExecContext(ctx, r.DB, `
		INSERT INTO verification_documents (id, request_id, type, blob_url,
			sha256, size_bytes, mime_type, verified, created_at)
		VALUES (:id, :request_id, :type, :blob_url, :sha256, :size_bytes,
			:mime_type, :verified, :created_at)`, d)
	return wrapExec(err, "add verification document")
}

func (r *VerificationRepo) ListDocuments(ctx context.Context, requestID uuid.UUID) ([]Document, error) {
	var out []Document
	err := r.DB.SelectContext(ctx, &out, `
		SELECT id, request_id, type, blob_url, sha256, size_bytes, mime_type,
			verified, created_at
		FROM verification_documents WHERE request_id = $1`, requestID)
	return out, wrapExec(err, "list verification documents")
}
