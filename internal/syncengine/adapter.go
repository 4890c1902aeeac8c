package syncengine

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// Adapter pushes one job's payload to a single downstream platform. A
// platform-specific implementation wraps whatever transport that platform
// speaks; HTTPAdapter below is the reference implementation for a plain
// webhook-style downstream.
type Adapter interface {
	// Apply pushes job to platform, returning a conflict detail (non-nil)
	// when the downstream reports its own version is newer, or an error
	// for anything else (network, 5xx, malformed response).
	Apply(ctx context.Context, platform string, job *store.SyncJob) (*ConflictInfo, error)
}

// ConflictInfo is returned by Adapter.Apply when the downstream platform
// detects a conflicting concurrent write (spec §4.8).
type ConflictInfo struct {
	RemoteVersion int64
	RemotePayload store.JSONMap
}

// HTTPAdapter applies a job by POSTing its payload to a per-platform
// webhook URL, the simplest adapter shape every platform without a native
// SDK in this module can use.
type HTTPAdapter struct {
	Endpoints map[string]string
	Client    *http.Client
}

func NewHTTPAdapter(endpoints map[string]string) *HTTPAdapter {
	return &HTTPAdapter{
		Endpoints: endpoints,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type applyRequest struct {
	EntityType string        `json:"entity_type"`
	EntityID   string        `json:"entity_id"`
	Payload    store.JSONMap `json:"payload"`
	Delta      store.JSONMap `json:"delta"`
	Checksum   string        `json:"checksum"`
}

type applyResponse struct {
	Conflict      bool          `json:"conflict"`
	RemoteVersion int64         `json:"remote_version"`
	RemotePayload store.JSONMap `json:"remote_payload"`
}

func (a *HTTPAdapter) Apply(ctx context.Context, platform string, job *store.SyncJob) (*ConflictInfo, error) {
	url, ok := a.Endpoints[platform]
	if !ok {
		return nil, errs.Newf(errs.PermanentError, "no adapter endpoint configured for platform %q", platform)
	}
	body, err := json.Marshal(applyRequest{
		EntityType: job.EntityType,
		EntityID:   job.EntityID,
		Payload:    job.Payload,
		Delta:      job.Delta,
		Checksum:   job.PayloadChecksum,
	})
	if err != nil {
		return nil, errs.Newf(errs.Internal, "marshal sync payload: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errs.Newf(errs.Internal, "build sync request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, errs.Newf(errs.TransientError, "sync apply to %s: %v", platform, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		var out applyResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, errs.Newf(errs.TransientError, "decode conflict response from %s: %v", platform, err)
		}
		return &ConflictInfo{RemoteVersion: out.RemoteVersion, RemotePayload: out.RemotePayload}, nil
	}
	if resp.StatusCode >= 500 {
		return nil, errs.Newf(errs.TransientError, "sync apply to %s: status %d", platform, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, errs.Newf(errs.PermanentError, "sync apply to %s: status %d", platform, resp.StatusCode)
	}
	return nil, nil
}
