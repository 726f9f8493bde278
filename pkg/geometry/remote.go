package geometry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/modhouse/pkg/cache"
	"github.com/matzehuels/modhouse/pkg/errors"
)

// DefaultRemoteTimeout is the per-request timeout of [Remote].
const DefaultRemoteTimeout = 30 * time.Second

// Remote fetches geometry from a geometry service over HTTP:
//
//	GET {BaseURL}/systems/{system}/modules/{dna}/geometry
//
// The response body is a JSON [Data]. Network failures, 429 and 5xx
// responses are marked retryable so [Retrying] can retry them.
type Remote struct {
	BaseURL string
	Client  *http.Client
}

// NewRemote creates a remote provider with a default client.
func NewRemote(baseURL string) *Remote {
	return &Remote{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: DefaultRemoteTimeout},
	}
}

// FetchModuleGeometry implements [Provider].
func (p *Remote) FetchModuleGeometry(ctx context.Context, ref Ref) (*Data, error) {
	u := fmt.Sprintf("%s/systems/%s/modules/%s/geometry", p.BaseURL, url.PathEscape(ref.SystemID), url.PathEscape(ref.DNA))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeGeometryFetch, err, "build request for %s", ref.DNA)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeGeometryFetch, err, "fetch %s", ref.DNA))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeGeometryFetch, "no geometry for %s", ref.DNA)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, cache.Retryable(errors.New(errors.ErrCodeGeometryFetch, "fetch %s: %s", ref.DNA, resp.Status))
	case resp.StatusCode != http.StatusOK:
		return nil, errors.New(errors.ErrCodeGeometryFetch, "fetch %s: %s", ref.DNA, resp.Status)
	}

	var d Data
	if err := json.NewDecoder(io.LimitReader(resp.Body, 16<<20)).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeGeometryFetch, err, "decode geometry for %s", ref.DNA)
	}
	if d.Ref.DNA == "" {
		d.Ref = ref
	}
	return &d, nil
}

var _ Provider = (*Remote)(nil)
