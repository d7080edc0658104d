package multiversx

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// Wallet hook statuses returned on the sign callback.
const (
	WalletStatusSigned    = "transactionsSigned"
	WalletStatusCancelled = "cancelled"
)

var ErrWalletCancelled = errors.New("transaction signing cancelled in wallet")

// WalletHook builds redirect URLs for the web wallet login and sign hooks and parses the
// values the wallet sends back. Signing always happens inside the wallet.
type WalletHook struct {
	WalletURL string
}

// LoginURL returns the wallet login hook URL; the wallet redirects to callbackURL with an
// `address` query parameter.
func (w WalletHook) LoginURL(callbackURL string) (string, error) {
	u, err := w.hookURL("login")
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("callbackUrl", callbackURL)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// SignURL returns the wallet sign hook URL for an unsigned transaction.
func (w WalletHook) SignURL(tx Transaction, callbackURL string) (string, error) {
	u, err := w.hookURL("sign")
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("receiver", tx.Receiver)
	q.Set("value", tx.Value)
	q.Set("gasLimit", strconv.FormatUint(tx.GasLimit, 10))
	q.Set("gasPrice", strconv.FormatUint(tx.GasPrice, 10))
	q.Set("nonce", strconv.FormatUint(tx.Nonce, 10))
	q.Set("data", tx.DataString())
	q.Set("chainID", tx.ChainID)
	q.Set("version", strconv.FormatUint(uint64(tx.Version), 10))
	q.Set("callbackUrl", callbackURL)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// ParseLoginCallback extracts and validates the address returned by the login hook.
func (WalletHook) ParseLoginCallback(q url.Values) (string, error) {
	address := q.Get("address")
	if !IsValidAddress(address) {
		return "", fmt.Errorf("login callback: %w", ErrInvalidAddress)
	}

	return address, nil
}

// ParseSignCallback rebuilds the signed transaction from the sign hook callback parameters.
func (WalletHook) ParseSignCallback(q url.Values) (Transaction, error) {
	switch status := q.Get("status"); status {
	case WalletStatusSigned:
	case WalletStatusCancelled:
		return Transaction{}, ErrWalletCancelled
	default:
		return Transaction{}, fmt.Errorf("unexpected wallet status %q", status)
	}

	nonce, err := parseUintParam(q, "nonce", 0)
	if err != nil {
		return Transaction{}, err
	}
	gasPrice, err := parseUintParam(q, "gasPrice", DefaultGasPrice)
	if err != nil {
		return Transaction{}, err
	}
	gasLimit, err := parseUintParam(q, "gasLimit", 0)
	if err != nil {
		return Transaction{}, err
	}
	version, err := parseUintParam(q, "version", uint64(DefaultTxVersion))
	if err != nil {
		return Transaction{}, err
	}

	tx := Transaction{
		Nonce:     nonce,
		Value:     q.Get("value"),
		Receiver:  q.Get("receiver"),
		Sender:    q.Get("sender"),
		GasPrice:  gasPrice,
		GasLimit:  gasLimit,
		ChainID:   q.Get("chainID"),
		Version:   uint32(version),
		Signature: q.Get("signature"),
	}
	if data := q.Get("data"); data != "" {
		tx.Data = []byte(data)
	}
	if tx.Value == "" {
		tx.Value = "0"
	}

	if err := tx.ValidateSigned(); err != nil {
		return Transaction{}, fmt.Errorf("sign callback: %w", err)
	}

	return tx, nil
}

func (w WalletHook) hookURL(hook string) (*url.URL, error) {
	if w.WalletURL == "" {
		return nil, errors.New("wallet URL is not configured")
	}

	raw, err := url.JoinPath(w.WalletURL, "hook", hook)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet URL %q: %w", w.WalletURL, err)
	}

	return url.Parse(raw)
}

func parseUintParam(q url.Values, key string, def uint64) (uint64, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}

	return v, nil
}
