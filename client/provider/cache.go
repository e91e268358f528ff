package provider

import (
	"context"
	"time"

	"github.com/ReneKroon/ttlcache/v2"
	"github.com/cockroachdb/errors"
)

// EndpointCache remembers the RPC endpoints that were resolved per net for a fixed time.
type EndpointCache struct {
	endpoints *ttlcache.Cache
}

// NewEndpointCache creates an EndpointCache. A ttl of zero disables caching.
func NewEndpointCache(ttl time.Duration) (*EndpointCache, error) {
	if ttl <= 0 {
		return &EndpointCache{}, nil
	}

	endpoints := ttlcache.NewCache()
	endpoints.SkipTTLExtensionOnHit(true)
	if err := endpoints.SetTTL(ttl); err != nil {
		return nil, errors.WithStack(err)
	}

	return &EndpointCache{endpoints: endpoints}, nil
}

// Get returns the cached endpoint of net or calls load and caches its result. Failed loads are not cached.
func (e *EndpointCache) Get(ctx context.Context, net string, load func(ctx context.Context) (string, error)) (string, error) {
	if e == nil || e.endpoints == nil {
		return load(ctx)
	}

	if cached, err := e.endpoints.Get(net); err == nil {
		return cached.(string), nil
	} else if !errors.Is(err, ttlcache.ErrNotFound) {
		return "", errors.WithStack(err)
	}

	endpoint, err := load(ctx)
	if err != nil {
		return "", err
	}

	if err := e.endpoints.Set(net, endpoint); err != nil {
		return "", errors.WithStack(err)
	}

	return endpoint, nil
}

// Close stops the expiration of the cache.
func (e *EndpointCache) Close() error {
	if e == nil || e.endpoints == nil {
		return nil
	}

	return errors.WithStack(e.endpoints.Close())
}
