package multiversx

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Family is the chain family name of MultiversX networks.
const Family = "multiversx"

// Network names of the public MultiversX networks.
const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
	NetworkDevnet  = "devnet"
)

// ErrVMQuery is returned when the VM executed a view but reported a non "ok" return code,
// e.g. "Proposal does not exist".
var ErrVMQuery = errors.New("contract query failed")

// OnchainClient is the subset of gateway operations used by the contract bindings and the
// dashboard. It is implemented by rpcclient.MultiClient.
type OnchainClient interface {
	QueryContract(ctx context.Context, query VMQuery) (*VMOutput, error)
	SendTransaction(ctx context.Context, tx Transaction) (string, error)
	TransactionStatus(ctx context.Context, txHash string) (string, error)
	NetworkConfig(ctx context.Context) (*NetworkConfig, error)
	Account(ctx context.Context, address string) (*Account, error)
}

// VMQuery is a read-only call of a contract view.
type VMQuery struct {
	ScAddress string   `json:"scAddress"`
	FuncName  string   `json:"funcName"`
	Caller    string   `json:"caller,omitempty"`
	Value     string   `json:"value,omitempty"`
	Args      []string `json:"args"`
}

// VMOutput is the result of a VMQuery. ReturnData holds base64 encoded values.
type VMOutput struct {
	ReturnData    []string `json:"returnData"`
	ReturnCode    string   `json:"returnCode"`
	ReturnMessage string   `json:"returnMessage"`
}

// NetworkConfig holds the network parameters needed to build transactions.
type NetworkConfig struct {
	ChainID        string `json:"erd_chain_id"`
	MinGasPrice    uint64 `json:"erd_min_gas_price"`
	MinGasLimit    uint64 `json:"erd_min_gas_limit"`
	GasPerDataByte uint64 `json:"erd_gas_per_data_byte"`
	MinTxVersion   uint32 `json:"erd_min_transaction_version"`
}

// Account is the on-chain state of an address.
type Account struct {
	Address string `json:"address"`
	Nonce   uint64 `json:"nonce"`
	Balance string `json:"balance"`
}

// Chain represents a MultiversX network the dashboard talks to.
type Chain struct {
	// Network is the network name, e.g. "devnet".
	Network string
	// ChainID is the value used in the transaction chainID field, e.g. "D".
	ChainID string
	// Client is the gateway client used for queries and broadcasts.
	Client OnchainClient
	// URL is the primary gateway URL.
	URL string
	// WalletURL is the web wallet used for login and signing hooks.
	WalletURL string
	// ExplorerURL is the block explorer base URL.
	ExplorerURL string
}

// Name returns the network name.
func (c Chain) Name() string {
	return c.Network
}

// Family returns the chain family.
func (c Chain) Family() string {
	return Family
}

// String returns the network name and chain ID "<name> (<chain id>)".
func (c Chain) String() string {
	return fmt.Sprintf("%s (%s)", c.Network, c.ChainID)
}

// DisplayName returns a human readable network name such as "MultiversX Devnet".
func (c Chain) DisplayName() string {
	if c.Network == "" {
		return "MultiversX"
	}

	return "MultiversX " + strings.ToUpper(c.Network[:1]) + c.Network[1:]
}

// ExplorerTxURL links a transaction hash on the block explorer.
func (c Chain) ExplorerTxURL(txHash string) string {
	return joinURL(c.ExplorerURL, "transactions", txHash)
}

// ExplorerAddressURL links an account or contract on the block explorer.
func (c Chain) ExplorerAddressURL(address string) string {
	return joinURL(c.ExplorerURL, "accounts", address)
}

func joinURL(base string, elem ...string) string {
	if base == "" {
		return ""
	}

	u, err := url.JoinPath(base, elem...)
	if err != nil {
		return ""
	}

	return u
}
