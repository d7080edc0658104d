package chainballotx

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
)

func testAddress(t *testing.T, b byte) string {
	t.Helper()

	addr, err := multiversx.EncodeAddress(bytes.Repeat([]byte{b}, multiversx.PubKeyLength))
	require.NoError(t, err)

	return addr
}

func b64(b ...byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func b64s(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

type queryFunc func(args []string) (*multiversx.VMOutput, error)

// fakeOnchain answers contract queries per view name and records them.
type fakeOnchain struct {
	mu      sync.Mutex
	views   map[string]queryFunc
	queries []multiversx.VMQuery

	networkConfig    *multiversx.NetworkConfig
	networkConfigErr error
	account          *multiversx.Account
	accountErr       error
}

var _ multiversx.OnchainClient = (*fakeOnchain)(nil)

func newFakeOnchain() *fakeOnchain {
	return &fakeOnchain{views: map[string]queryFunc{}}
}

func (f *fakeOnchain) returns(view string, data ...string) *fakeOnchain {
	f.views[view] = func([]string) (*multiversx.VMOutput, error) {
		return &multiversx.VMOutput{ReturnData: data, ReturnCode: "ok"}, nil
	}

	return f
}

func (f *fakeOnchain) fails(view string, err error) *fakeOnchain {
	f.views[view] = func([]string) (*multiversx.VMOutput, error) {
		return nil, err
	}

	return f
}

func (f *fakeOnchain) QueryContract(_ context.Context, q multiversx.VMQuery) (*multiversx.VMOutput, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	fn, ok := f.views[q.FuncName]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s: unexpected view", multiversx.ErrVMQuery, q.FuncName)
	}

	return fn(q.Args)
}

func (f *fakeOnchain) countQueries(view string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, q := range f.queries {
		if q.FuncName == view {
			n++
		}
	}

	return n
}

func (f *fakeOnchain) SendTransaction(context.Context, multiversx.Transaction) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeOnchain) TransactionStatus(context.Context, string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeOnchain) NetworkConfig(context.Context) (*multiversx.NetworkConfig, error) {
	if f.networkConfigErr != nil {
		return nil, f.networkConfigErr
	}
	if f.networkConfig == nil {
		return &multiversx.NetworkConfig{ChainID: "D", MinGasPrice: multiversx.DefaultGasPrice, MinTxVersion: 1}, nil
	}

	return f.networkConfig, nil
}

func (f *fakeOnchain) Account(_ context.Context, address string) (*multiversx.Account, error) {
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	if f.account == nil {
		return &multiversx.Account{Address: address}, nil
	}

	return f.account, nil
}
