package rpcclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/chainballotx/chainballotx-dashboard/chain/multiversx"
	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

const (
	// Default retry configuration for gateway calls
	RPCDefaultRetryAttempts = 2
	RPCDefaultRetryDelay    = 500 * time.Millisecond
	RPCDefaultRetryTimeout  = 10 * time.Second

	// Default timeout for health checks
	RPCDefaultHealthCheckTimeout = 2 * time.Second

	vmReturnCodeOK = "ok"
)

// GatewayError is a non successful HTTP answer of a gateway.
type GatewayError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// RPC is a single gateway endpoint.
type RPC struct {
	Name string
	URL  string
}

// RPCConfig lists the gateways of a network. The first RPC is the primary one, the others are
// used as backups.
type RPCConfig struct {
	Network string
	RPCs    []RPC
}

type RetryConfig struct {
	Attempts uint
	Delay    time.Duration
	Timeout  time.Duration
}

func defaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts: RPCDefaultRetryAttempts,
		Delay:    RPCDefaultRetryDelay,
		Timeout:  RPCDefaultRetryTimeout,
	}
}

// WithRetryConfig overrides the default retry configuration.
func WithRetryConfig(cfg RetryConfig) func(*MultiClient) {
	return func(mc *MultiClient) {
		mc.RetryConfig = cfg
	}
}

// WithHTTPClient sets the underlying HTTP client of every gateway.
func WithHTTPClient(hc *http.Client) func(*MultiClient) {
	return func(mc *MultiClient) {
		mc.httpClient = hc
	}
}

// MultiClient should comply with the OnchainClient interface
var _ multiversx.OnchainClient = &MultiClient{}

// MultiClient talks to a primary gateway and falls back to backup gateways when calls keep
// failing after retries. A backup that succeeds becomes the new primary.
type MultiClient struct {
	Client      *resty.Client
	Backups     []*resty.Client
	RetryConfig RetryConfig
	lggr        logger.Logger
	network     string
	httpClient  *http.Client
	mu          sync.RWMutex
}

func NewMultiClient(lggr logger.Logger, rpcsCfg RPCConfig, opts ...func(client *MultiClient)) (*MultiClient, error) {
	if len(rpcsCfg.RPCs) == 0 {
		return nil, errors.New("no gateways provided, need at least one")
	}

	mc := MultiClient{
		lggr:        lggr,
		network:     rpcsCfg.Network,
		RetryConfig: defaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(&mc)
	}
	// retry-go treats zero attempts as "retry forever"
	if mc.RetryConfig.Attempts == 0 {
		mc.RetryConfig.Attempts = 1
	}

	clients := make([]*resty.Client, 0, len(rpcsCfg.RPCs))
	for i, rpc := range rpcsCfg.RPCs {
		if _, err := url.ParseRequestURI(rpc.URL); err != nil {
			lggr.Warnf("skipping gateway %d '%s' for network %q: invalid URL %q: %v", i, rpc.Name, mc.network, rpc.URL, err)

			continue
		}
		clients = append(clients, mc.newRestyClient(rpc))
	}

	if len(clients) == 0 {
		return nil, errors.New("no valid gateway clients created")
	}

	mc.Client = clients[0]
	mc.Backups = clients[1:]

	return &mc, nil
}

func (mc *MultiClient) newRestyClient(rpc RPC) *resty.Client {
	var c *resty.Client
	if mc.httpClient != nil {
		c = resty.NewWithClient(mc.httpClient)
	} else {
		c = resty.New()
	}

	return c.
		SetBaseURL(rpc.URL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "chainballotx-dashboard")
}

// gatewayResponse is the envelope every gateway route answers with.
type gatewayResponse[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

// QueryContract executes a read-only contract view.
func (mc *MultiClient) QueryContract(ctx context.Context, query multiversx.VMQuery) (*multiversx.VMOutput, error) {
	if query.Args == nil {
		query.Args = []string{}
	}

	var out struct {
		Data multiversx.VMOutput `json:"data"`
	}
	err := mc.retryWithBackups(ctx, "QueryContract", func(ctx context.Context, c *resty.Client) error {
		return doJSON(ctx, c, http.MethodPost, "/vm-values/query", query, &out)
	})
	if err != nil {
		return nil, err
	}

	if out.Data.ReturnCode != vmReturnCodeOK {
		return &out.Data, fmt.Errorf("%w: %s: %s (%s)", multiversx.ErrVMQuery, query.FuncName, out.Data.ReturnMessage, out.Data.ReturnCode)
	}

	return &out.Data, nil
}

// SendTransaction broadcasts a signed transaction and returns its hash.
func (mc *MultiClient) SendTransaction(ctx context.Context, tx multiversx.Transaction) (string, error) {
	var out struct {
		TxHash string `json:"txHash"`
	}
	err := mc.retryWithBackups(ctx, "SendTransaction", func(ctx context.Context, c *resty.Client) error {
		return doJSON(ctx, c, http.MethodPost, "/transaction/send", tx, &out)
	})
	if err != nil {
		return "", err
	}
	if out.TxHash == "" {
		return "", errors.New("gateway accepted the transaction but returned no hash")
	}

	return out.TxHash, nil
}

// TransactionStatus returns the processing status of a transaction, e.g. "pending" or "success".
func (mc *MultiClient) TransactionStatus(ctx context.Context, txHash string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	err := mc.retryWithBackups(ctx, "TransactionStatus", func(ctx context.Context, c *resty.Client) error {
		return doJSON(ctx, c, http.MethodGet, "/transaction/"+url.PathEscape(txHash)+"/status", nil, &out)
	})

	return out.Status, err
}

// NetworkConfig returns the network parameters.
func (mc *MultiClient) NetworkConfig(ctx context.Context) (*multiversx.NetworkConfig, error) {
	var out struct {
		Config multiversx.NetworkConfig `json:"config"`
	}
	err := mc.retryWithBackups(ctx, "NetworkConfig", func(ctx context.Context, c *resty.Client) error {
		return doJSON(ctx, c, http.MethodGet, "/network/config", nil, &out)
	})
	if err != nil {
		return nil, err
	}

	return &out.Config, nil
}

// Account returns the on-chain state of an address.
func (mc *MultiClient) Account(ctx context.Context, address string) (*multiversx.Account, error) {
	var out struct {
		Account multiversx.Account `json:"account"`
	}
	err := mc.retryWithBackups(ctx, "Account", func(ctx context.Context, c *resty.Client) error {
		return doJSON(ctx, c, http.MethodGet, "/address/"+url.PathEscape(address), nil, &out)
	})
	if err != nil {
		return nil, err
	}

	return &out.Account, nil
}

// HealthCheck verifies that the primary gateway answers the network config route.
func (mc *MultiClient) HealthCheck(ctx context.Context) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, RPCDefaultHealthCheckTimeout)
	defer cancel()

	var out struct {
		Config multiversx.NetworkConfig `json:"config"`
	}
	if err := doJSON(timeoutCtx, mc.clients()[0], http.MethodGet, "/network/config", nil, &out); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	return nil
}

func doJSON[T any](ctx context.Context, c *resty.Client, method, path string, body any, out *T) error {
	var (
		result gatewayResponse[T]
		failed gatewayResponse[T]
	)

	req := c.R().SetContext(ctx).SetResult(&result).SetError(&failed)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}

	if resp.IsError() {
		gerr := &GatewayError{StatusCode: resp.StatusCode(), Code: failed.Code, Message: failed.Error}
		if gerr.Message == "" {
			gerr.Message = resp.String()
		}
		if resp.StatusCode() < http.StatusInternalServerError {
			return retry.Unrecoverable(gerr)
		}

		return gerr
	}

	if result.Error != "" {
		return &GatewayError{StatusCode: resp.StatusCode(), Code: result.Code, Message: result.Error}
	}

	*out = result.Data

	return nil
}

func (mc *MultiClient) retryWithBackups(ctx context.Context, opName string, op func(context.Context, *resty.Client) error) error {
	var err error
	traceID := uuid.New()

	for rpcIndex, client := range mc.clients() {
		retryCount := 0
		terminal := false
		err2 := retry.Do(func() error {
			timeoutCtx, cancel := ensureTimeout(ctx, mc.RetryConfig.Timeout)
			defer cancel()

			err = op(timeoutCtx, client)
			if err != nil {
				if !retry.IsRecoverable(err) {
					terminal = true
					return err
				}
				mc.lggr.Warnf("traceID %q: network %q: op: %q: client index %d: failed execution - retryable error '%s'", traceID.String(), mc.network, opName, rpcIndex, err)

				return err
			}

			mc.promote(client)

			return nil
		}, retry.Context(ctx), retry.Attempts(mc.RetryConfig.Attempts), retry.Delay(mc.RetryConfig.Delay),
			retry.LastErrorOnly(true),
			retry.OnRetry(func(n uint, err error) { retryCount++ }))
		if err2 == nil {
			if retryCount > 0 {
				mc.lggr.Infof("traceID %q: network %q: op: %q: client index %d: successfully executed after %d retry", traceID.String(), mc.network, opName, rpcIndex, retryCount)
			}

			return nil
		}
		if terminal {
			var gerr *GatewayError
			if errors.As(err2, &gerr) {
				return gerr
			}

			return err2
		}
		if ctx.Err() != nil {
			return errors.Join(err, ctx.Err())
		}
		mc.lggr.Infof("traceID %q: network %q: op: %q: client index %d: failed, trying next client", traceID.String(), mc.network, opName, rpcIndex)
	}

	return errors.Join(err, fmt.Errorf("all gateways failed for network %q", mc.network))
}

// ensureTimeout checks if the parent context has a deadline.
// If it does, it returns a new cancelable context using the parent's deadline.
// If it doesn't, it creates a new context with the specified timeout.
func ensureTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := parent.Deadline(); hasDeadline || timeout <= 0 {
		return context.WithCancel(parent)
	}

	return context.WithTimeout(parent, timeout)
}

// promote makes client the primary gateway. Gateways listed before it move to the end of the
// backups. Concurrent calls may see a stale snapshot, so the client is looked up by identity.
func (mc *MultiClient) promote(client *resty.Client) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.Client == client {
		return
	}
	i := slices.Index(mc.Backups, client)
	if i < 0 {
		return
	}

	reordered := make([]*resty.Client, 0, len(mc.Backups))
	reordered = append(reordered, mc.Backups[i+1:]...)
	reordered = append(reordered, mc.Backups[:i]...)
	reordered = append(reordered, mc.Client)

	mc.Backups = reordered
	mc.Client = client
}

func (mc *MultiClient) clients() []*resty.Client {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return append([]*resty.Client{mc.Client}, mc.Backups...)
}
