package ledgerstate

import (
	"github.com/cityofzion/neon-go/packages/keys"
	"golang.org/x/xerrors"
)

// region Options //////////////////////////////////////////////////////////////////////////////////////////////////////

// Option overrides a default of the transaction factories.
type Option func(*buildOptions)

type buildOptions struct {
	version    *byte
	attributes []*Attribute
	remarks    []string
}

// WithVersion overrides the default version of the transaction type.
func WithVersion(version byte) Option {
	return func(options *buildOptions) {
		options.version = &version
	}
}

// WithAttributes adds attributes to the created Transaction.
func WithAttributes(attributes ...*Attribute) Option {
	return func(options *buildOptions) {
		options.attributes = append(options.attributes, attributes...)
	}
}

// WithRemark adds a remark attribute to the created Transaction.
func WithRemark(remark string) Option {
	return func(options *buildOptions) {
		options.remarks = append(options.remarks, remark)
	}
}

func newTransaction(transactionType TransactionType, exclusive ExclusiveData, optionalOptions []Option) (*Transaction, error) {
	options := &buildOptions{}
	for _, option := range optionalOptions {
		option(options)
	}

	definition, err := TransactionTypeDefinitionOf(transactionType)
	if err != nil {
		return nil, err
	}
	version := definition.DefaultVersion
	if options.version != nil {
		version = *options.version
	}

	transaction, err := NewTransaction(transactionType, version, exclusive)
	if err != nil {
		return nil, err
	}
	for _, attribute := range options.attributes {
		transaction.AddAttribute(attribute)
	}
	for _, remark := range options.remarks {
		if err = transaction.AddRemark(remark); err != nil {
			return nil, err
		}
	}

	return transaction, nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// CreateClaimTx creates a Transaction that claims the GAS of the first MaxClaimsPerTransaction claims. The claimant is
// either an address or the hex representation of a public key.
func CreateClaimTx(claimant string, claims *Claims, options ...Option) (*Transaction, error) {
	scriptHash, err := claimantScriptHash(claimant)
	if err != nil {
		return nil, err
	}
	if claims == nil || len(claims.Claims) == 0 {
		return nil, xerrors.Errorf("no claims for %s: %w", claimant, ErrEmptyIntent)
	}

	claimed := claims.Claims
	if len(claimed) > MaxClaimsPerTransaction {
		claimed = claimed[:MaxClaimsPerTransaction]
	}

	exclusive := &ClaimExclusive{Claims: make([]*Input, 0, len(claimed))}
	var total Fixed8
	for _, claim := range claimed {
		exclusive.Claims = append(exclusive.Claims, claim.Input())
		if total, err = total.Add(claim.Claim); err != nil {
			return nil, xerrors.Errorf("failed to sum claims of %s: %w", claimant, err)
		}
	}

	transaction, err := newTransaction(ClaimType, exclusive, options)
	if err != nil {
		return nil, err
	}
	transaction.AddOutput(NewOutput(GASAssetID, total, scriptHash))

	return transaction, nil
}

// CreateContractTx creates a transfer of the intents that is funded by the Balance.
func CreateContractTx(balance *Balance, intents []*Output, options ...Option) (*Transaction, error) {
	if len(intents) == 0 {
		return nil, xerrors.Errorf("contract transaction without outputs: %w", ErrEmptyIntent)
	}

	transaction, err := newTransaction(ContractType, nil, options)
	if err != nil {
		return nil, err
	}
	for _, intent := range intents {
		transaction.AddOutput(intent)
	}
	if err = transaction.Calculate(balance); err != nil {
		return nil, err
	}

	return transaction, nil
}

// CreateInvocationTx creates a Transaction that runs the script and pays gas for it. The optional intents are funded
// by the Balance together with the gas.
func CreateInvocationTx(balance *Balance, intents []*Output, script Script, gas Fixed8, options ...Option) (*Transaction, error) {
	if script == nil {
		return nil, xerrors.Errorf("invocation transaction without script: %w", ErrEmptyIntent)
	}
	scriptBytes, err := script.Bytes()
	if err != nil {
		return nil, xerrors.Errorf("failed to compile invocation script: %w", err)
	}
	if gas < 0 {
		return nil, xerrors.Errorf("gas %s is negative: %w", gas, ErrInvalidAmount)
	}

	transaction, err := newTransaction(InvocationType, &InvocationExclusive{Script: scriptBytes, Gas: gas}, options)
	if err != nil {
		return nil, err
	}
	if gas > 0 && transaction.version == 0 {
		return nil, xerrors.Errorf("version 0 invocations can not pay gas: %w", ErrIncompatibleVersion)
	}
	for _, intent := range intents {
		transaction.AddOutput(intent)
	}
	if err = transaction.Calculate(balance); err != nil {
		return nil, err
	}

	return transaction, nil
}

func claimantScriptHash(claimant string) (ScriptHash, error) {
	if IsAddress(claimant) {
		return ScriptHashFromAddress(claimant)
	}

	publicKey, err := keys.PublicKeyFromHex(claimant)
	if err != nil {
		return ScriptHash{}, xerrors.Errorf("claimant %q is neither an address nor a public key: %w", claimant, ErrInvalidAddress)
	}

	return ScriptHashFromPublicKey(publicKey), nil
}
