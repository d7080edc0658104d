package multiversx

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAddress returns a deterministic valid address derived from b.
func testAddress(t *testing.T, b byte) string {
	t.Helper()

	addr, err := EncodeAddress(bytes.Repeat([]byte{b}, PubKeyLength))
	require.NoError(t, err)

	return addr
}

func validTx(t *testing.T) Transaction {
	t.Helper()

	return Transaction{
		Nonce:    7,
		Value:    "0",
		Receiver: testAddress(t, 0x01),
		Sender:   testAddress(t, 0x02),
		GasPrice: DefaultGasPrice,
		GasLimit: 6_000_000,
		Data:     []byte("vote@0000000000000001"),
		ChainID:  "D",
		Version:  DefaultTxVersion,
	}
}

func TestTransaction_JSONShape(t *testing.T) {
	t.Parallel()

	tx := validTx(t)
	b, err := json.Marshal(tx)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))

	// data travels base64 encoded
	assert.Equal(t, "dm90ZUAwMDAwMDAwMDAwMDAwMDAx", raw["data"])
	assert.Equal(t, "D", raw["chainID"])
	assert.InDelta(t, 6_000_000, raw["gasLimit"], 0)
	assert.NotContains(t, raw, "signature")
	assert.Equal(t, "vote@0000000000000001", tx.DataString())
}

func TestTransaction_ValidateUnsigned(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr string
	}{
		{name: "valid", mutate: func(*Transaction) {}},
		{name: "bad receiver", mutate: func(tx *Transaction) { tx.Receiver = "erd1nope" }, wantErr: "receiver"},
		{name: "bad sender", mutate: func(tx *Transaction) { tx.Sender = "" }, wantErr: "sender"},
		{name: "missing chain id", mutate: func(tx *Transaction) { tx.ChainID = "" }, wantErr: "chain ID is required"},
		{name: "missing gas limit", mutate: func(tx *Transaction) { tx.GasLimit = 0 }, wantErr: "gas limit is required"},
		{name: "bad value", mutate: func(tx *Transaction) { tx.Value = "1.5" }, wantErr: `invalid value "1.5"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tx := validTx(t)
			tt.mutate(&tx)

			err := tx.ValidateUnsigned()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTransaction_ValidateSigned(t *testing.T) {
	t.Parallel()

	tx := validTx(t)
	require.ErrorContains(t, tx.ValidateSigned(), "signature is required")

	tx.Signature = "zz"
	require.ErrorContains(t, tx.ValidateSigned(), "signature is not hex")

	tx.Signature = "abcd"
	require.ErrorContains(t, tx.ValidateSigned(), "signature must be 64 bytes, got 2")

	tx.Signature = strings.Repeat("ab", 64)
	require.NoError(t, tx.ValidateSigned())
	assert.True(t, tx.IsSigned())
}
