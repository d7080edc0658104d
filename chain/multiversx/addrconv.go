package multiversx

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	// AddressHRP is the human readable part of every MultiversX bech32 address.
	AddressHRP = "erd"
	// PubKeyLength is the length in bytes of an account or contract public key.
	PubKeyLength = 32
)

var ErrInvalidAddress = errors.New("invalid MultiversX address")

// DecodeAddress converts a bech32 "erd1..." address into its 32 byte public key.
func DecodeAddress(address string) ([]byte, error) {
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidAddress, address, err)
	}
	if hrp != AddressHRP {
		return nil, fmt.Errorf("%w %q: expected prefix %q, got %q", ErrInvalidAddress, address, AddressHRP, hrp)
	}

	pubKey, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidAddress, address, err)
	}
	if len(pubKey) != PubKeyLength {
		return nil, fmt.Errorf("%w %q: expected %d bytes, got %d", ErrInvalidAddress, address, PubKeyLength, len(pubKey))
	}

	return pubKey, nil
}

// EncodeAddress converts a 32 byte public key into its bech32 "erd1..." address.
func EncodeAddress(pubKey []byte) (string, error) {
	if len(pubKey) != PubKeyLength {
		return "", fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, PubKeyLength, len(pubKey))
	}

	data, err := bech32.ConvertBits(pubKey, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("failed to convert public key: %w", err)
	}

	return bech32.Encode(AddressHRP, data)
}

// IsValidAddress reports whether address is a well formed "erd1..." address.
func IsValidAddress(address string) bool {
	_, err := DecodeAddress(address)
	return err == nil
}

// TruncateAddress shortens an address for display as "<head chars>...<tail chars>".
// Addresses too short to be shortened are returned unchanged.
func TruncateAddress(address string, head, tail int) string {
	if head < 0 || tail < 0 || len(address) <= head+tail+3 {
		return address
	}

	return address[:head] + "..." + address[len(address)-tail:]
}
