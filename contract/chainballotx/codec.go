package chainballotx

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
)

const txDataSeparator = "@"

// EncodeU64Arg encodes a u64 query argument with the top-level encoding: minimal big-endian
// bytes, so 0 encodes to the empty string.
func EncodeU64Arg(v uint64) string {
	if v == 0 {
		return ""
	}
	s := strconv.FormatUint(v, 16)
	if len(s)%2 == 1 {
		s = "0" + s
	}

	return s
}

// EncodeU64Fixed encodes a u64 transaction argument as 8 big-endian bytes.
func EncodeU64Fixed(v uint64) string {
	return fmt.Sprintf("%016x", v)
}

// EncodeBytesArg hex encodes a raw bytes argument.
func EncodeBytesArg(b []byte) string {
	return hex.EncodeToString(b)
}

// EncodeAddressArg hex encodes the public key of a bech32 address.
func EncodeAddressArg(address string) (string, error) {
	pub, err := multiversx.DecodeAddress(address)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(pub), nil
}

// EncodeTxData joins an endpoint and its already encoded arguments into transaction data,
// e.g. "vote@0000000000000001".
func EncodeTxData(endpoint string, args ...string) []byte {
	return []byte(strings.Join(append([]string{endpoint}, args...), txDataSeparator))
}

// firstReturn decodes the first return value. present is false when there is none.
func firstReturn(returnData []string) (value []byte, present bool, err error) {
	if len(returnData) == 0 {
		return nil, false, nil
	}

	value, err = base64.StdEncoding.DecodeString(returnData[0])
	if err != nil {
		return nil, false, fmt.Errorf("invalid base64 return value %q: %w", returnData[0], err)
	}

	return value, true, nil
}

// DecodeString decodes a bytes return value as UTF-8 text.
func DecodeString(returnData []string) (string, bool, error) {
	b, ok, err := firstReturn(returnData)
	if err != nil || !ok {
		return "", ok, err
	}

	return string(b), true, nil
}

// DecodeU64 decodes a big-endian unsigned return value. An empty value is 0.
func DecodeU64(returnData []string) (uint64, bool, error) {
	b, ok, err := firstReturn(returnData)
	if err != nil || !ok {
		return 0, ok, err
	}
	if len(b) > 8 {
		return 0, true, fmt.Errorf("u64 return value has %d bytes", len(b))
	}

	var buf [8]byte
	copy(buf[8-len(b):], b)

	return binary.BigEndian.Uint64(buf[:]), true, nil
}

// DecodeBool decodes a bool return value: true only for the single byte 0x01.
func DecodeBool(returnData []string) (bool, error) {
	b, _, err := firstReturn(returnData)
	if err != nil {
		return false, err
	}

	return len(b) == 1 && b[0] == 0x01, nil
}

// DecodeAddress decodes a 32 byte public key return value into a bech32 address. An empty
// value decodes to "".
func DecodeAddress(returnData []string) (string, error) {
	b, _, err := firstReturn(returnData)
	if err != nil || len(b) == 0 {
		return "", err
	}

	return multiversx.EncodeAddress(b)
}
