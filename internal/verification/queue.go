package verification

import (
	"context"

	"github.com/entativa/eid/internal/store"
	"github.com/entativa/eid/third_party/search"
)

// DefaultQueuePageSize bounds a single reviewer-queue fetch.
const DefaultQueuePageSize = 50

// Queue reads the reviewer work queue and mirrors it into MeiliSearch so
// reviewers can full-text search by identity, type, or note.
type Queue struct {
	repo   *store.VerificationRepo
	search *search.MeiliSearchClient
}

func NewQueue(repo *store.VerificationRepo, meili *search.MeiliSearchClient) *Queue {
	return &Queue{repo: repo, search: meili}
}

// Pending returns the submitted/needs_info queue, priority ASC then
// created_at ASC, matching spec §4.7's reviewer ordering.
func (q *Queue) Pending(ctx context.Context, limit int) ([]store.VerificationRequest, error) {
	if limit <= 0 {
		limit = DefaultQueuePageSize
	}
	submitted, err := q.repo.ListQueue(ctx, store.ReqSubmitted, limit)
	if err != nil {
		return nil, err
	}
	needsInfo, err := q.repo.ListQueue(ctx, store.ReqNeedsInfo, limit)
	if err != nil {
		return nil, err
	}
	return append(submitted, needsInfo...), nil
}

// indexDoc is the flattened shape MeiliSearch indexes for a request.
type indexDoc struct {
	ID         string `json:"id"`
	IdentityID string `json:"identity_id"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	Priority   int    `json:"priority"`
}

// Reindex pushes the current queue into the verification_queue index,
// called after any status transition so reviewer search stays current.
func (q *Queue) Reindex(ctx context.Context, reqs []store.VerificationRequest) error {
	if q.search == nil {
		return nil
	}
	docs := make([]indexDoc, 0, len(reqs))
	for _, r := range reqs {
		docs = append(docs, indexDoc{
			ID:         r.ID.String(),
			IdentityID: r.IdentityID.String(),
			Type:       string(r.Type),
			Status:     string(r.Status),
			Priority:   r.Priority,
		})
	}
	return q.search.AddDocuments(search.VerificationQueueIndex, docs)
}
