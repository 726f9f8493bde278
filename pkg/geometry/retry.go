package geometry

import (
	"context"
	"time"

	"github.com/matzehuels/modhouse/pkg/cache"
	"github.com/matzehuels/modhouse/pkg/errors"
)

type retryingProvider struct {
	next     Provider
	attempts int
	delay    time.Duration
}

// Retrying wraps next so that failures marked with [cache.Retryable] are
// retried up to attempts times with exponential backoff starting at delay.
// Exhausted or permanent failures surface as GEOMETRY_FETCH_ERROR.
func Retrying(next Provider, attempts int, delay time.Duration) Provider {
	return &retryingProvider{next: next, attempts: attempts, delay: delay}
}

func (p *retryingProvider) FetchModuleGeometry(ctx context.Context, ref Ref) (*Data, error) {
	var out *Data
	err := cache.Retry(ctx, p.attempts, p.delay, func() error {
		d, err := p.next.FetchModuleGeometry(ctx, ref)
		if err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		if errors.Is(err, errors.ErrCodeGeometryFetch) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeGeometryFetch, err, "fetch %s", ref.DNA)
	}
	return out, nil
}
