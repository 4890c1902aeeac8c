package verification

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// MaxDocumentBytes caps a single submitted document (spec §4.7).
const MaxDocumentBytes = 25 << 20 // 25 MiB

// AttachDocument content-addresses a submitted file by its SHA-256 digest
// and records it against a request. blobURL is wherever the caller already
// persisted the raw bytes (object storage, local disk); this package never
// touches the bytes themselves beyond hashing them.
func AttachDocument(ctx context.Context, repo *store.VerificationRepo, requestID uuid.UUID, docType, blobURL, mimeType string, content []byte) (*store.Document, error) {
	if len(content) == 0 {
		return nil, errs.New(errs.InvalidArgument, "document content is empty")
	}
	if len(content) > MaxDocumentBytes {
		return nil, errs.Newf(errs.InvalidArgument, "document exceeds %d bytes", MaxDocumentBytes)
	}
	sum := sha256.Sum256(content)
	doc := &store.Document{
		ID:        uuid.New(),
		RequestID: requestID,
		Type:      docType,
		BlobURL:   blobURL,
		SHA256:    hex.EncodeToString(sum[:]),
		SizeBytes: int64(len(content)),
		MimeType:  mimeType,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.AddDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
