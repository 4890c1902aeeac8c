// Package platform owns the set of downstream platforms the sync engine
// (C8) fans identity mutations out to: each platform is a webhook URL the
// worker's HTTPAdapter posts a job's payload to. Grounded on the teacher's
// config-driven service-endpoint pattern (services/gateway/growth's
// serviceContext wiring concrete URLs out of config rather than hardcoding
// them), generalized here from "one growth-service URL" to an arbitrary
// per-platform set.
package platform

import (
	"sort"

	"github.com/entativa/eid/internal/errs"
)

// Registry is the validated, read-only view of config.WorkerConfig.Platforms
// that internal/syncengine's HTTPAdapter dispatches against.
type Registry struct {
	endpoints map[string]string
}

// NewRegistry validates cfg (non-empty platform names and endpoint URLs)
// and returns a Registry, or an error if any entry is malformed.
func NewRegistry(cfg map[string]string) (*Registry, error) {
	endpoints := make(map[string]string, len(cfg))
	for platform, url := range cfg {
		if platform == "" {
			return nil, errs.New(errs.InvalidArgument, "platform registry: empty platform name")
		}
		if url == "" {
			return nil, errs.Newf(errs.InvalidArgument, "platform registry: empty endpoint for platform %q", platform)
		}
		endpoints[platform] = url
	}
	return &Registry{endpoints: endpoints}, nil
}

// Endpoints returns the platform->webhook-URL map in the shape
// syncengine.NewHTTPAdapter expects.
func (r *Registry) Endpoints() map[string]string {
	out := make(map[string]string, len(r.endpoints))
	for k, v := range r.endpoints {
		out[k] = v
	}
	return out
}

// Names returns every registered platform name, sorted, for admin/debug
// listing.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.endpoints))
	for name := range r.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether platform is a known sync target.
func (r *Registry) Has(platform string) bool {
	_, ok := r.endpoints[platform]
	return ok
}
