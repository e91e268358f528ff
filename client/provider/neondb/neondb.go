// Package neondb implements a provider.Provider on top of the neonDB wallet API.
package neondb

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/cityofzion/neon-go/client/provider"
	"github.com/cityofzion/neon-go/packages/config"
	"github.com/cityofzion/neon-go/packages/ledgerstate"
	"github.com/cityofzion/neon-go/packages/logger"
	"github.com/cityofzion/neon-go/packages/metrics"
)

// Name is the name of the provider in logs and metrics.
const Name = "neonDB"

// region Provider /////////////////////////////////////////////////////////////////////////////////////////////////////

// Provider queries the neonDB API of a network.
type Provider struct {
	config    *config.Config
	log       *zap.SugaredLogger
	metrics   *metrics.Metrics
	rest      *provider.RESTClient
	endpoints *provider.EndpointCache
}

// New creates a neonDB provider. Without a WithConfig option the built-in network endpoints are used.
func New(options ...Option) (*Provider, error) {
	p := &Provider{}
	for _, option := range options {
		option(p)
	}

	if p.config == nil {
		p.config = config.Default()
	}
	p.log = logger.OrNop(p.log)
	p.rest = provider.NewRESTClient(Name, p.config.Provider.HTTPTimeout, p.log, p.metrics)

	endpoints, err := provider.NewEndpointCache(p.config.Provider.EndpointCacheTTL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create endpoint cache")
	}
	p.endpoints = endpoints

	return p, nil
}

// Name returns "neonDB".
func (p *Provider) Name() string {
	return Name
}

// GetBalance returns the unspent coins of an address grouped by asset symbol.
func (p *Provider) GetBalance(ctx context.Context, net, address string) (*ledgerstate.Balance, error) {
	apiURL, err := p.apiURL(net)
	if err != nil {
		return nil, err
	}

	response := make(map[string]json.RawMessage)
	if err := p.rest.Get(ctx, "getBalance", apiURL+"/v2/address/balance/"+url.PathEscape(address), &response); err != nil {
		return nil, err
	}

	balance := ledgerstate.NewBalance(net, address)
	for symbol, rawAsset := range response {
		if symbol == "net" || symbol == "address" {
			continue
		}

		assetBalance, err := parseAssetBalance(rawAsset)
		if err != nil {
			return nil, errors.Wrapf(err, "asset %s", symbol)
		}
		balance.AddAsset(symbol, assetBalance)
	}
	p.log.Debugw("retrieved balance", "net", net, "address", address, "assets", balance.AssetSymbols())

	return balance, nil
}

// GetClaims returns the claimable GAS of an address.
func (p *Provider) GetClaims(ctx context.Context, net, address string) (*ledgerstate.Claims, error) {
	apiURL, err := p.apiURL(net)
	if err != nil {
		return nil, err
	}

	response := &claimsResponse{}
	if err := p.rest.Get(ctx, "getClaims", apiURL+"/v2/address/claims/"+url.PathEscape(address), response); err != nil {
		return nil, err
	}

	claims := ledgerstate.NewClaims(net, address)
	for _, entry := range response.Claims {
		txID, err := provider.ParseHash(entry.TxID)
		if err != nil {
			return nil, err
		}

		claims.Claims = append(claims.Claims, &ledgerstate.Claim{
			TxID:  txID,
			Index: entry.Index,
			Claim: ledgerstate.Fixed8(entry.Claim),
			Value: entry.Value,
			Start: entry.Start,
			End:   entry.End,
		})
	}
	p.log.Debugw("retrieved claims", "net", net, "address", address, "claims", len(claims.Claims))

	return claims, nil
}

// GetRPCEndpoint returns the node that neonDB currently considers the best one. Results are cached per net.
func (p *Provider) GetRPCEndpoint(ctx context.Context, net string) (string, error) {
	apiURL, err := p.apiURL(net)
	if err != nil {
		return "", err
	}

	return p.endpoints.Get(ctx, apiURL, func(ctx context.Context) (string, error) {
		response := &bestNodeResponse{}
		if err := p.rest.Get(ctx, "getRPCEndpoint", apiURL+"/v2/network/best_node", response); err != nil {
			return "", err
		}
		if response.Node == "" {
			return "", errors.Wrap(provider.ErrBadResponse, "best node is empty")
		}
		p.log.Debugw("resolved best node", "net", net, "node", response.Node)

		return response.Node, nil
	})
}

// Close releases the endpoint cache.
func (p *Provider) Close() error {
	return p.endpoints.Close()
}

func (p *Provider) apiURL(net string) (string, error) {
	return provider.ResolveURL(p.config, net, func(network config.Network) string {
		return network.NeonDB
	})
}

var _ provider.Provider = &Provider{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Options //////////////////////////////////////////////////////////////////////////////////////////////////////

// Option configures a Provider.
type Option func(*Provider)

// WithConfig sets the configuration that holds the network endpoints and the HTTP settings.
func WithConfig(cfg *config.Config) Option {
	return func(p *Provider) {
		p.config = cfg
	}
}

// WithLogger sets the logger of the Provider.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(p *Provider) {
		p.log = log
	}
}

// WithMetrics sets the collectors that record the request durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Provider) {
		p.metrics = m
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region responses ////////////////////////////////////////////////////////////////////////////////////////////////////

type assetResponse struct {
	Balance ledgerstate.Fixed8 `json:"balance"`
	Unspent []struct {
		Index uint16             `json:"index"`
		TxID  string             `json:"txid"`
		Value ledgerstate.Fixed8 `json:"value"`
	} `json:"unspent"`
}

type claimsResponse struct {
	Net     string `json:"net"`
	Address string `json:"address"`
	Claims  []struct {
		Claim int64              `json:"claim"`
		End   uint32             `json:"end"`
		Index uint16             `json:"index"`
		Start uint32             `json:"start"`
		TxID  string             `json:"txid"`
		Value ledgerstate.Fixed8 `json:"value"`
	} `json:"claims"`
}

type bestNodeResponse struct {
	Node string `json:"node"`
}

func parseAssetBalance(rawAsset json.RawMessage) (*ledgerstate.AssetBalance, error) {
	asset := &assetResponse{}
	if err := json.Unmarshal(rawAsset, asset); err != nil {
		return nil, errors.Wrapf(provider.ErrBadResponse, "failed to decode asset balance: %s", err)
	}

	coins := make([]*ledgerstate.Coin, 0, len(asset.Unspent))
	for _, unspent := range asset.Unspent {
		txID, err := provider.ParseHash(unspent.TxID)
		if err != nil {
			return nil, err
		}
		coins = append(coins, &ledgerstate.Coin{TxID: txID, Index: unspent.Index, Value: unspent.Value})
	}

	return ledgerstate.NewAssetBalance(coins...), nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
