// Package lcd talks to a chain's LCD (REST) endpoint: it reads account state,
// builds unsigned transactions around it, and broadcasts signed ones.
package lcd

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mrz1836/stationkey/internal/chain"
	"github.com/mrz1836/stationkey/internal/metrics"
	"github.com/mrz1836/stationkey/internal/tx"
	stationerr "github.com/mrz1836/stationkey/pkg/errors"
)

const (
	// accountsPath is the auth module account query.
	accountsPath = "/cosmos/auth/v1beta1/accounts/"

	// txsPath is the tx service broadcast endpoint.
	txsPath = "/cosmos/tx/v1beta1/txs"

	// broadcastModeSync returns after CheckTx.
	broadcastModeSync = "BROADCAST_MODE_SYNC"

	// httpTimeout is the default HTTP request timeout.
	httpTimeout = 30 * time.Second

	// maxResponseBody is the maximum response body size to read (1 MB).
	maxResponseBody = 1 << 20
)

// ErrNoEndpoint indicates a chain without a configured LCD URL.
var ErrNoEndpoint = errors.New("no LCD endpoint configured")

// ClientOptions configures an LCD client.
type ClientOptions struct {
	// BaseURL overrides the chain's LCD URL (useful for testing).
	BaseURL string
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	// RateLimiter is shared between clients; one is created when nil.
	RateLimiter *RateLimiter
}

// Client is the LCD client for a single chain.
type Client struct {
	info        chain.Info
	baseURL     string
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewClient creates an LCD client for the chain described by info.
func NewClient(info chain.Info, opts *ClientOptions) (*Client, error) {
	c := &Client{
		info:    info,
		baseURL: info.LCD,
		httpClient: &http.Client{
			Timeout: httpTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
	}

	if opts != nil {
		if opts.BaseURL != "" {
			c.baseURL = opts.BaseURL
		}
		if opts.HTTPClient != nil {
			c.httpClient = opts.HTTPClient
		}
		c.rateLimiter = opts.RateLimiter
	}
	if c.rateLimiter == nil {
		c.rateLimiter = DefaultRateLimiter()
	}

	c.baseURL = strings.TrimRight(c.baseURL, "/")
	if c.baseURL == "" {
		return nil, stationerr.WithDetails(stationerr.ErrConfigInvalid, map[string]string{
			"chain":  info.ChainID,
			"reason": ErrNoEndpoint.Error(),
		})
	}
	return c, nil
}

// ChainID returns the chain this client talks to.
func (c *Client) ChainID() string {
	return c.info.ChainID
}

// baseAccount is the auth module's BaseAccount JSON form.
type baseAccount struct {
	Address string `json:"address"`
	PubKey  *struct {
		Key string `json:"key"`
	} `json:"pub_key"`
	AccountNumber uint64 `json:"account_number,string"`
	Sequence      uint64 `json:"sequence,string"`
}

// accountResponse covers base accounts and vesting accounts, which nest
// the base account one or two levels down.
type accountResponse struct {
	Account struct {
		baseAccount

		BaseAccount        *baseAccount `json:"base_account"`
		BaseVestingAccount *struct {
			BaseAccount *baseAccount `json:"base_account"`
		} `json:"base_vesting_account"`
	} `json:"account"`
}

func (r *accountResponse) base() *baseAccount {
	acc := &r.Account
	switch {
	case acc.BaseVestingAccount != nil && acc.BaseVestingAccount.BaseAccount != nil:
		return acc.BaseVestingAccount.BaseAccount
	case acc.BaseAccount != nil:
		return acc.BaseAccount
	default:
		return &acc.baseAccount
	}
}

// FetchAccount returns the account number, sequence and public key of address.
// Accounts that have never received funds report ErrAccountNotFound.
func (c *Client) FetchAccount(ctx context.Context, address string) (*tx.AccountInfo, error) {
	body, status, err := c.do(ctx, http.MethodGet, accountsPath+address, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, stationerr.WithDetails(stationerr.ErrAccountNotFound, map[string]string{
			"address": address,
			"chain":   c.info.ChainID,
		})
	}
	if status != http.StatusOK {
		return nil, httpError(status, body)
	}

	var resp accountResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing account response: %w", err)
	}

	acc := resp.base()
	info := &tx.AccountInfo{
		Address:       address,
		AccountNumber: acc.AccountNumber,
		Sequence:      acc.Sequence,
	}
	if acc.PubKey != nil && acc.PubKey.Key != "" {
		if info.PubKey, err = base64.StdEncoding.DecodeString(acc.PubKey.Key); err != nil {
			return nil, fmt.Errorf("decoding account public key: %w", err)
		}
	}
	return info, nil
}

// Create builds an unsigned transaction for signers, fetching each signer's
// account number and sequence. A nil fee is filled from the chain defaults.
func (c *Client) Create(ctx context.Context, signers []tx.Signer, opts *tx.Options) (*tx.UnsignedTx, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(signers) == 0 {
		return nil, stationerr.WithDetails(stationerr.ErrInvalidTransaction, map[string]string{"field": "signers"})
	}

	fee, err := c.fee(opts.Fee)
	if err != nil {
		return nil, err
	}

	unsigned := &tx.UnsignedTx{
		ChainID: opts.ChainID,
		Body: tx.Body{
			Messages:      opts.Msgs,
			Memo:          opts.Memo,
			TimeoutHeight: opts.TimeoutHeight,
		},
		AuthInfo: tx.AuthInfo{Fee: fee},
	}

	for i, s := range signers {
		acc, err := c.FetchAccount(ctx, s.Address)
		if err != nil {
			return nil, err
		}
		unsigned.AuthInfo.SignerInfos = append(unsigned.AuthInfo.SignerInfos, tx.SignerInfo{
			PubKey:   s.PubKey,
			Sequence: acc.Sequence,
		})
		if i == 0 {
			unsigned.AccountNumber = acc.AccountNumber
			unsigned.Sequence = acc.Sequence
		}
	}
	return unsigned, nil
}

func (c *Client) fee(requested *tx.Fee) (tx.Fee, error) {
	if requested != nil {
		return *requested, nil
	}
	amount, err := c.info.DefaultFee()
	if err != nil {
		return tx.Fee{}, stationerr.WithDetails(stationerr.ErrConfigInvalid, map[string]string{
			"chain":     c.info.ChainID,
			"gas_price": c.info.GasPrice,
		})
	}
	return tx.Fee{
		Amount:   []tx.Coin{{Denom: c.info.Denom, Amount: amount.String()}},
		GasLimit: c.info.GasLimit,
	}, nil
}

type broadcastRequest struct {
	TxBytes string `json:"tx_bytes"`
	Mode    string `json:"mode"`
}

type broadcastResponse struct {
	TxResponse struct {
		Height    string `json:"height"`
		TxHash    string `json:"txhash"`
		Codespace string `json:"codespace"`
		Code      uint32 `json:"code"`
		RawLog    string `json:"raw_log"`
	} `json:"tx_response"`
}

// BroadcastSync submits signed and returns the CheckTx result. A result with
// a non-zero code is returned as-is; callers decide how to report it.
func (c *Client) BroadcastSync(ctx context.Context, signed *tx.SignedTx) (*tx.BroadcastResult, error) {
	payload, err := json.Marshal(broadcastRequest{TxBytes: signed.Base64(), Mode: broadcastModeSync})
	if err != nil {
		return nil, fmt.Errorf("marshaling broadcast request: %w", err)
	}

	body, status, err := c.do(ctx, http.MethodPost, txsPath, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, httpError(status, body)
	}

	var resp broadcastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing broadcast response: %w", err)
	}

	r := resp.TxResponse
	result := &tx.BroadcastResult{
		TxHash:    r.TxHash,
		Code:      r.Code,
		Codespace: r.Codespace,
		RawLog:    r.RawLog,
	}
	if r.Height != "" {
		if result.Height, err = strconv.ParseInt(r.Height, 10, 64); err != nil {
			return nil, fmt.Errorf("parsing broadcast height: %w", err)
		}
	}
	return result, nil
}

// do performs a rate-limited request and returns the body and status code.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) (body []byte, status int, err error) {
	start := time.Now()
	defer func() { metrics.Global.RecordLCDCall(time.Since(start), err) }()

	if err = c.rateLimiter.Wait(ctx, c.info.ChainID); err != nil {
		return nil, 0, err
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL is constructed from validated config, not user input
	if err != nil {
		return nil, 0, stationerr.Wrap(stationerr.ErrNetworkError, "%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// errorResponse is the gRPC-gateway error body.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func httpError(status int, body []byte) error {
	details := map[string]string{"status": strconv.Itoa(status)}
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Message != "" {
		details["message"] = truncateBody(er.Message, 256)
	} else {
		details["body"] = truncateBody(string(body), 512)
	}
	return stationerr.WithDetails(stationerr.ErrNetworkError, details)
}

// truncateBody truncates a string to maxLen characters.
func truncateBody(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
