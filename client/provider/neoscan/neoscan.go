// Package neoscan implements a provider.Provider on top of the neoscan block explorer API.
package neoscan

import (
	"context"
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
const Name = "neoscan"

// notFoundAddress is what neoscan reports as address of an address that it has never seen.
const notFoundAddress = "not found"

// region Provider /////////////////////////////////////////////////////////////////////////////////////////////////////

// Provider queries the neoscan API of a network.
type Provider struct {
	config    *config.Config
	log       *zap.SugaredLogger
	metrics   *metrics.Metrics
	rest      *provider.RESTClient
	endpoints *provider.EndpointCache
}

// New creates a neoscan provider. Without a WithConfig option the built-in network endpoints are used.
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

// Name returns "neoscan".
func (p *Provider) Name() string {
	return Name
}

// GetBalance returns the unspent coins of an address grouped by asset symbol. Unknown addresses have an empty Balance.
func (p *Provider) GetBalance(ctx context.Context, net, address string) (*ledgerstate.Balance, error) {
	apiURL, err := p.apiURL(net)
	if err != nil {
		return nil, err
	}

	response := &balanceResponse{}
	if err := p.rest.Get(ctx, "getBalance", apiURL+"/v1/get_balance/"+url.PathEscape(address), response); err != nil {
		return nil, err
	}

	balance := ledgerstate.NewBalance(net, address)
	if response.Address == notFoundAddress {
		p.log.Debugw("address is unknown", "net", net, "address", address)
		return balance, nil
	}

	for _, entry := range response.Balance {
		symbol, err := entry.symbol()
		if err != nil {
			return nil, err
		}

		coins := make([]*ledgerstate.Coin, 0, len(entry.Unspent))
		for _, unspent := range entry.Unspent {
			txID, err := provider.ParseHash(unspent.TxID)
			if err != nil {
				return nil, err
			}
			coins = append(coins, &ledgerstate.Coin{TxID: txID, Index: unspent.N, Value: unspent.Value})
		}
		balance.AddAsset(symbol, ledgerstate.NewAssetBalance(coins...))
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

	response := &claimableResponse{}
	if err := p.rest.Get(ctx, "getClaims", apiURL+"/v1/get_claimable/"+url.PathEscape(address), response); err != nil {
		return nil, err
	}

	claims := ledgerstate.NewClaims(net, address)
	for _, entry := range response.Claimable {
		txID, err := provider.ParseHash(entry.TxID)
		if err != nil {
			return nil, err
		}

		claims.Claims = append(claims.Claims, &ledgerstate.Claim{
			TxID:  txID,
			Index: entry.N,
			Claim: entry.Unclaimed,
			Value: entry.Value,
			Start: entry.StartHeight,
			End:   entry.EndHeight,
		})
	}
	p.log.Debugw("retrieved claims", "net", net, "address", address, "claims", len(claims.Claims))

	return claims, nil
}

// GetRPCEndpoint returns the node with the highest block height. Results are cached per net.
func (p *Provider) GetRPCEndpoint(ctx context.Context, net string) (string, error) {
	apiURL, err := p.apiURL(net)
	if err != nil {
		return "", err
	}

	return p.endpoints.Get(ctx, apiURL, func(ctx context.Context) (string, error) {
		var nodes []node
		if err := p.rest.Get(ctx, "getRPCEndpoint", apiURL+"/v1/get_all_nodes", &nodes); err != nil {
			return "", err
		}

		best, err := highestNode(nodes)
		if err != nil {
			return "", err
		}
		p.log.Debugw("resolved best node", "net", net, "node", best.URL, "height", best.Height)

		return best.URL, nil
	})
}

// Close releases the endpoint cache.
func (p *Provider) Close() error {
	return p.endpoints.Close()
}

func (p *Provider) apiURL(net string) (string, error) {
	return provider.ResolveURL(p.config, net, func(network config.Network) string {
		return network.Neoscan
	})
}

// highestNode returns the first node with the highest block height.
func highestNode(nodes []node) (best node, err error) {
	for _, candidate := range nodes {
		if candidate.URL == "" {
			continue
		}
		if best.URL == "" || candidate.Height > best.Height {
			best = candidate
		}
	}
	if best.URL == "" {
		err = errors.Wrap(provider.ErrBadResponse, "no nodes reported")
	}

	return
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

type balanceResponse struct {
	Address string         `json:"address"`
	Balance []balanceEntry `json:"balance"`
}

type balanceEntry struct {
	Asset       string             `json:"asset"`
	AssetSymbol string             `json:"asset_symbol"`
	AssetHash   string             `json:"asset_hash"`
	Amount      ledgerstate.Fixed8 `json:"amount"`
	Unspent     []struct {
		TxID  string             `json:"txid"`
		Value ledgerstate.Fixed8 `json:"value"`
		N     uint16             `json:"n"`
	} `json:"unspent"`
}

// symbol prefers the reported symbol and falls back to the asset hash and then to the asset name.
func (b *balanceEntry) symbol() (string, error) {
	if b.AssetSymbol != "" {
		return b.AssetSymbol, nil
	}

	if b.AssetHash != "" {
		assetID, err := provider.ParseHash(b.AssetHash)
		if err != nil {
			return "", err
		}
		if symbol, err := ledgerstate.SymbolFromAssetID(assetID); err == nil {
			return symbol, nil
		}
	}

	if b.Asset == "" {
		return "", errors.Wrap(provider.ErrBadResponse, "balance entry without asset")
	}

	return b.Asset, nil
}

type claimableResponse struct {
	Address   string `json:"address"`
	Claimable []struct {
		TxID        string             `json:"txid"`
		N           uint16             `json:"n"`
		Value       ledgerstate.Fixed8 `json:"value"`
		Unclaimed   ledgerstate.Fixed8 `json:"unclaimed"`
		StartHeight uint32             `json:"start_height"`
		EndHeight   uint32             `json:"end_height"`
	} `json:"claimable"`
}

type node struct {
	URL    string `json:"url"`
	Height uint64 `json:"height"`
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
