// Package config loads the settings of the providers, the RPC client, the logger and the metrics from flags,
// environment variables and config files.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// MainNet is the name of the production network.
	MainNet = "MainNet"

	// TestNet is the name of the public test network.
	TestNet = "TestNet"

	// EnvPrefix is the prefix of environment variables that override settings, e.g. NEON_PROVIDER_HTTPTIMEOUT.
	EnvPrefix = "NEON"
)

// ErrUnknownNetwork is returned if a network name is not configured.
var ErrUnknownNetwork = errors.New("unknown network")

// Network holds the endpoints of a named network.
type Network struct {
	NeonDB  string `mapstructure:"neondb"`
	Neoscan string `mapstructure:"neoscan"`
	RPC     string `mapstructure:"rpc"`
}

// ProviderParameters configures the REST providers.
type ProviderParameters struct {
	HTTPTimeout      time.Duration `default:"30s" usage:"timeout of provider requests"`
	EndpointCacheTTL time.Duration `default:"1m" usage:"how long a resolved RPC endpoint is reused"`
	Primary          string        `default:"neondb" usage:"provider that is asked first"`
	Secondary        string        `default:"neoscan" usage:"provider that is asked if the primary fails"`
}

// RPCParameters configures the JSON-RPC client.
type RPCParameters struct {
	Timeout time.Duration `default:"30s" usage:"timeout of RPC requests"`
}

// LoggerParameters configures the zap logger.
type LoggerParameters struct {
	Level             string   `default:"info" usage:"the minimum log level"`
	Encoding          string   `default:"console" usage:"the log encoding (console or json)"`
	OutputPaths       []string `default:"stdout" usage:"the log outputs"`
	DisableCaller     bool     `default:"true" usage:"do not annotate logs with the calling function"`
	DisableStacktrace bool     `default:"false" usage:"do not add stack traces to error logs"`
}

// MetricsParameters configures the prometheus collectors.
type MetricsParameters struct {
	Namespace string `default:"neon" usage:"the namespace of all metrics"`
}

// Config is the complete configuration.
type Config struct {
	Networks map[string]Network `mapstructure:"networks"`
	Provider ProviderParameters `mapstructure:"provider"`
	RPC      RPCParameters      `mapstructure:"rpc"`
	Logger   LoggerParameters   `mapstructure:"logger"`
	Metrics  MetricsParameters  `mapstructure:"metrics"`
}

var defaultNetworks = map[string]Network{
	MainNet: {
		NeonDB:  "http://api.wallet.cityofzion.io",
		Neoscan: "https://neoscan.io/api/main_net",
	},
	TestNet: {
		NeonDB:  "http://testnet-api.wallet.cityofzion.io",
		Neoscan: "https://neoscan-testnet.io/api/test_net",
	},
}

// New creates a viper instance with the defaults of all settings that reads overrides from NEON_ prefixed
// environment variables.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, network := range defaultNetworks {
		prefix := "networks." + strings.ToLower(name)
		v.SetDefault(prefix+".neondb", network.NeonDB)
		v.SetDefault(prefix+".neoscan", network.Neoscan)
		v.SetDefault(prefix+".rpc", network.RPC)
	}

	defaults := pflag.NewFlagSet("defaults", pflag.ContinueOnError)
	defineAll(defaults, &Config{})
	defaults.VisitAll(func(f *pflag.Flag) {
		v.SetDefault(f.Name, f.Value.String())
		if sliceValue, ok := f.Value.(pflag.SliceValue); ok {
			v.SetDefault(f.Name, sliceValue.GetSlice())
		}
	})

	return v
}

// RegisterFlags defines a flag for every scalar setting and binds the flags to viper.
func RegisterFlags(flagSet *pflag.FlagSet, v *viper.Viper) error {
	defineAll(flagSet, &Config{})

	if err := v.BindPFlags(flagSet); err != nil {
		return errors.Wrap(err, "failed to bind flags")
	}

	return nil
}

// ReadFile merges a config file (json, yaml or toml) into viper.
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}

	return nil
}

// Load unmarshals the settings of viper.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return cfg, nil
}

// Default returns the configuration that New produces without any overrides.
func Default() *Config {
	cfg, err := Load(New())
	if err != nil {
		panic(err)
	}

	return cfg
}

// Network returns the endpoints of a named network. The lookup ignores case.
func (c *Config) Network(name string) (Network, error) {
	network, exists := c.Networks[strings.ToLower(name)]
	if !exists {
		return Network{}, errors.Wrapf(ErrUnknownNetwork, "network %q", name)
	}

	return network, nil
}

func defineAll(flagSet *pflag.FlagSet, cfg *Config) {
	DefineParameters(flagSet, &cfg.Provider, "provider")
	DefineParameters(flagSet, &cfg.RPC, "rpc")
	DefineParameters(flagSet, &cfg.Logger, "logger")
	DefineParameters(flagSet, &cfg.Metrics, "metrics")
}
