// Package provider defines the contract of the REST services that report the coins, the claimable GAS and a healthy
// RPC node of an address, together with the HTTP plumbing shared by the implementations.
package provider

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/cityofzion/neon-go/packages/config"
	"github.com/cityofzion/neon-go/packages/ledgerstate"
)

var (
	// ErrInvalidProvider is returned if a stage is invoked without a provider or with an unknown provider name.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrBadResponse is returned if a provider answers with a body that can not be interpreted.
	ErrBadResponse = errors.New("bad response")

	// ErrBadRequest defines the "bad request" error.
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound defines the "not found" error.
	ErrNotFound = errors.New("not found")

	// ErrInternalServerError defines the "internal server error" error.
	ErrInternalServerError = errors.New("internal server error")

	// ErrUnknownError defines the "unknown error" error.
	ErrUnknownError = errors.New("unknown error")

	// ErrUnknownNetwork is returned if a net is neither a configured network name nor a URL.
	ErrUnknownNetwork = config.ErrUnknownNetwork
)

// Provider is a read-only REST service that knows the state of the chain.
type Provider interface {
	// Name returns the name that is used in logs and metrics.
	Name() string

	// GetBalance returns the spendable coins of an address.
	GetBalance(ctx context.Context, net, address string) (*ledgerstate.Balance, error)

	// GetClaims returns the claimable GAS of an address.
	GetClaims(ctx context.Context, net, address string) (*ledgerstate.Claims, error)

	// GetRPCEndpoint returns the URL of a healthy RPC node.
	GetRPCEndpoint(ctx context.Context, net string) (string, error)
}

// ResolveURL returns the base URL of a provider for the given net. A net that already is a URL is used as is, any
// other value is looked up in the configured networks and passed to selectURL.
func ResolveURL(cfg *config.Config, net string, selectURL func(config.Network) string) (string, error) {
	if IsURL(net) {
		return strings.TrimRight(net, "/"), nil
	}

	if cfg == nil {
		return "", errors.Wrapf(ErrUnknownNetwork, "network %q", net)
	}

	network, err := cfg.Network(net)
	if err != nil {
		return "", err
	}

	url := selectURL(network)
	if url == "" {
		return "", errors.Wrapf(ErrUnknownNetwork, "network %q has no endpoint for this provider", net)
	}

	return strings.TrimRight(url, "/"), nil
}

// IsURL returns true if s starts with an http or https scheme.
func IsURL(s string) bool {
	lower := strings.ToLower(s)

	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ParseHash parses a transaction or asset id as reported by a provider, with or without a 0x prefix.
func ParseHash(s string) (ledgerstate.Uint256, error) {
	hash, err := ledgerstate.Uint256FromString(strings.TrimPrefix(strings.ToLower(s), "0x"))
	if err != nil {
		return ledgerstate.EmptyUint256, errors.Wrapf(ErrBadResponse, "invalid hash %q: %s", s, err)
	}

	return hash, nil
}
