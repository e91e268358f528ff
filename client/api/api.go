// Package api builds, signs and submits transactions in stages that enrich a Config. The high level operations fetch
// the state of an address from a primary provider and fall back to a secondary provider if that fails.
package api

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/cityofzion/neon-go/client/provider"
	"github.com/cityofzion/neon-go/client/provider/neondb"
	"github.com/cityofzion/neon-go/client/provider/neoscan"
	"github.com/cityofzion/neon-go/client/rpc"
	"github.com/cityofzion/neon-go/packages/config"
	"github.com/cityofzion/neon-go/packages/logger"
	"github.com/cityofzion/neon-go/packages/metrics"
)

var (
	// ErrMissingProperty is returned if a stage needs a field of the Config that is not set.
	ErrMissingProperty = errors.New("missing property")

	// ErrAddressMismatch is returned if the key material does not belong to the address of the Config.
	ErrAddressMismatch = errors.New("key does not match address")

	// ErrNoSigningMethod is returned if neither a private key nor a signing function is configured.
	ErrNoSigningMethod = errors.New("no signing method")
)

// region Pipeline /////////////////////////////////////////////////////////////////////////////////////////////////////

// Pipeline runs the stages of the transaction build process.
type Pipeline struct {
	primary   provider.Provider
	secondary provider.Provider
	rpc       *rpc.Client
	metrics   *metrics.Metrics
	log       *zap.SugaredLogger
}

// New creates a Pipeline. Without a WithRPCClient option a client with the default timeout is used.
func New(options ...Option) *Pipeline {
	p := &Pipeline{}
	for _, option := range options {
		option(p)
	}

	p.log = logger.OrNop(p.log)
	if p.rpc == nil {
		p.rpc = rpc.New(rpc.WithLogger(p.log.Named("rpc")))
	}

	return p
}

// NewFromConfig creates a Pipeline whose providers, RPC client, logger and metrics follow the configuration.
func NewFromConfig(cfg *config.Config, root *zap.Logger, m *metrics.Metrics) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	primary, err := NewProvider(cfg.Provider.Primary, cfg, root, m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create primary provider")
	}

	options := []Option{
		WithPrimary(primary),
		WithRPCClient(rpc.New(rpc.WithTimeout(cfg.RPC.Timeout), rpc.WithLogger(logger.NewNamed(root, "rpc")))),
		WithMetrics(m),
		WithLogger(logger.NewNamed(root, "api")),
	}

	if cfg.Provider.Secondary != "" {
		secondary, err := NewProvider(cfg.Provider.Secondary, cfg, root, m)
		if err != nil {
			_ = closeProvider(primary)
			return nil, errors.Wrap(err, "failed to create secondary provider")
		}
		options = append(options, WithSecondary(secondary))
	}

	return New(options...), nil
}

// NewProvider creates the provider with the given name ("neondb" or "neoscan", ignoring case).
func NewProvider(name string, cfg *config.Config, root *zap.Logger, m *metrics.Metrics) (provider.Provider, error) {
	switch strings.ToLower(name) {
	case strings.ToLower(neondb.Name):
		return neondb.New(neondb.WithConfig(cfg), neondb.WithLogger(logger.NewNamed(root, neondb.Name)), neondb.WithMetrics(m))
	case strings.ToLower(neoscan.Name):
		return neoscan.New(neoscan.WithConfig(cfg), neoscan.WithLogger(logger.NewNamed(root, neoscan.Name)), neoscan.WithMetrics(m))
	}

	return nil, errors.Wrapf(provider.ErrInvalidProvider, "unknown provider %q", name)
}

// Primary returns the provider that is asked first.
func (p *Pipeline) Primary() provider.Provider {
	return p.primary
}

// Secondary returns the provider that is asked if the primary fails.
func (p *Pipeline) Secondary() provider.Provider {
	return p.secondary
}

// Close releases the resources of the providers.
func (p *Pipeline) Close() error {
	var err error
	for _, prov := range []provider.Provider{p.primary, p.secondary} {
		err = errors.CombineErrors(err, closeProvider(prov))
	}

	return err
}

func closeProvider(prov provider.Provider) error {
	if closer, ok := prov.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Options //////////////////////////////////////////////////////////////////////////////////////////////////////

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPrimary sets the provider that is asked first.
func WithPrimary(prov provider.Provider) Option {
	return func(p *Pipeline) {
		p.primary = prov
	}
}

// WithSecondary sets the provider that is asked if the primary fails.
func WithSecondary(prov provider.Provider) Option {
	return func(p *Pipeline) {
		p.secondary = prov
	}
}

// WithRPCClient sets the client that submits transactions.
func WithRPCClient(client *rpc.Client) Option {
	return func(p *Pipeline) {
		p.rpc = client
	}
}

// WithMetrics sets the collectors of the Pipeline.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithLogger sets the logger of the Pipeline.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
