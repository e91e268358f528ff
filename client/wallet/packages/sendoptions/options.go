package sendoptions

import (
	"github.com/cockroachdb/errors"

	"github.com/cityofzion/neon-go/packages/ledgerstate"
)

// SendFundsOption is a function that provides an option.
type SendFundsOption func(options *SendFundsOptions) error

// Destination is an option for the SendFunds call that defines a destination for funds that are supposed to be moved.
func Destination(address, symbol string, amount ledgerstate.Fixed8) SendFundsOption {
	return func(options *SendFundsOptions) error {
		if amount <= 0 {
			return errors.Wrapf(ledgerstate.ErrInvalidAmount, "amount %s of %s", amount, symbol)
		}
		if !ledgerstate.IsAddress(address) {
			return errors.Wrapf(ledgerstate.ErrInvalidAddress, "%q", address)
		}
		if _, err := ledgerstate.AssetIDFromSymbol(symbol); err != nil {
			return err
		}

		if options.Destinations[address] == nil {
			options.Destinations[address] = make(map[string]ledgerstate.Fixed8)
			options.addresses = append(options.addresses, address)
		}
		options.Destinations[address][symbol] += amount

		return nil
	}
}

// Remark is an option for the SendFunds call that attaches a remark attribute to the transaction.
func Remark(remark string) SendFundsOption {
	return func(options *SendFundsOptions) error {
		options.Remarks = append(options.Remarks, remark)
		return nil
	}
}

// Version is an option for the SendFunds call that overrides the version of the transaction.
func Version(version byte) SendFundsOption {
	return func(options *SendFundsOptions) error {
		options.Version = &version
		return nil
	}
}

// SendFundsOptions is a struct that is used to aggregate the optional parameters provided in the SendFunds call.
type SendFundsOptions struct {
	Destinations map[string]map[string]ledgerstate.Fixed8
	Remarks      []string
	Version      *byte

	addresses []string
}

// Build is a utility function that constructs the SendFundsOptions.
func Build(options ...SendFundsOption) (result *SendFundsOptions, err error) {
	// create options to collect the arguments provided
	result = &SendFundsOptions{
		Destinations: make(map[string]map[string]ledgerstate.Fixed8),
	}

	// apply arguments to our options
	for _, option := range options {
		if err = option(result); err != nil {
			return nil, err
		}
	}

	// sanitize parameters
	if len(result.Destinations) == 0 {
		return nil, errors.Wrap(ledgerstate.ErrEmptyIntent, "you need to provide at least one Destination for a valid transfer to be issued")
	}

	return
}

// Addresses returns the destination addresses in the order in which they were first given.
func (s *SendFundsOptions) Addresses() []string {
	return append([]string{}, s.addresses...)
}

// TransactionOptions returns the factory options that correspond to the remarks and the version.
func (s *SendFundsOptions) TransactionOptions() []ledgerstate.Option {
	options := make([]ledgerstate.Option, 0, len(s.Remarks)+1)
	if s.Version != nil {
		options = append(options, ledgerstate.WithVersion(*s.Version))
	}
	for _, remark := range s.Remarks {
		options = append(options, ledgerstate.WithRemark(remark))
	}

	return options
}
