package multiversx

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

const (
	// DefaultGasPrice is the minimum gas price on every public MultiversX network.
	DefaultGasPrice uint64 = 1_000_000_000
	// DefaultTxVersion is the transaction version accepted by the gateways.
	DefaultTxVersion uint32 = 1
	// signatureLength is the length in bytes of an ed25519 signature.
	signatureLength = 64
)

// Transaction is a MultiversX transaction in the JSON shape accepted by the gateway
// `/transaction/send` route. Data is serialized as base64 by encoding/json.
type Transaction struct {
	Nonce     uint64 `json:"nonce"`
	Value     string `json:"value"`
	Receiver  string `json:"receiver"`
	Sender    string `json:"sender"`
	GasPrice  uint64 `json:"gasPrice"`
	GasLimit  uint64 `json:"gasLimit"`
	Data      []byte `json:"data,omitempty"`
	ChainID   string `json:"chainID"`
	Version   uint32 `json:"version"`
	Signature string `json:"signature,omitempty"`
}

// DataString returns the transaction data field as plain text, e.g. "vote@0000000000000001".
func (tx Transaction) DataString() string {
	return string(tx.Data)
}

// IsSigned reports whether a signature has been attached to the transaction.
func (tx Transaction) IsSigned() bool {
	return tx.Signature != ""
}

// ValidateUnsigned checks the fields every transaction needs before it is handed to a wallet.
func (tx Transaction) ValidateUnsigned() error {
	if !IsValidAddress(tx.Receiver) {
		return fmt.Errorf("receiver: %w", ErrInvalidAddress)
	}
	if !IsValidAddress(tx.Sender) {
		return fmt.Errorf("sender: %w", ErrInvalidAddress)
	}
	if tx.ChainID == "" {
		return errors.New("chain ID is required")
	}
	if tx.GasLimit == 0 {
		return errors.New("gas limit is required")
	}
	if _, ok := new(big.Int).SetString(tx.Value, 10); !ok {
		return fmt.Errorf("invalid value %q", tx.Value)
	}

	return nil
}

// ValidateSigned checks an externally signed transaction before it is broadcast.
func (tx Transaction) ValidateSigned() error {
	if err := tx.ValidateUnsigned(); err != nil {
		return err
	}
	if !tx.IsSigned() {
		return errors.New("signature is required")
	}

	sig, err := hex.DecodeString(tx.Signature)
	if err != nil {
		return fmt.Errorf("signature is not hex: %w", err)
	}
	if len(sig) != signatureLength {
		return fmt.Errorf("signature must be %d bytes, got %d", signatureLength, len(sig))
	}

	return nil
}
