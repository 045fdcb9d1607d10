package lcd

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github/chapool/side-transfer/internal/util"
	"github/chapool/side-transfer/internal/wallet/txerr"
)

const (
	DefaultTimeout = 30 * time.Second

	// error bodies beyond this are truncated
	maxBodyBytes = 1 << 20
)

// Client talks to the cosmos REST gateway
type Client struct {
	baseURL       string
	httpClient    *http.Client
	timeout       time.Duration
	broadcastMode string
}

type Option func(*Client)

// WithHTTPClient uses a copy of hc as the underlying http.Client. nil is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout, overriding the http.Client's own
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithBroadcastMode(mode string) Option {
	return func(c *Client) {
		if mode != "" {
			c.broadcastMode = mode
		}
	}
}

// NewClient creates a client for the gateway rooted at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: DefaultTimeout},
		broadcastMode: BroadcastModeSync,
	}

	for _, opt := range opts {
		opt(c)
	}

	// the caller's client may be shared
	hc := *c.httpClient
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.httpClient = &hc

	return c
}

// BaseURL returns the normalized endpoint
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetAccountInfo fetches account number and sequence for address
func (c *Client) GetAccountInfo(ctx context.Context, address string) (*Account, error) {
	const op = "account_lookup"

	log := util.LogFromContext(ctx)
	endpoint := c.baseURL + accountsPath + url.PathEscape(address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &txerr.TransportError{Op: op, URL: endpoint, Err: errors.Wrap(err, "failed to create request")}
	}
	req.Header.Set("Accept", "application/json")

	var resp accountResponse
	if err := c.do(req, op, &resp); err != nil {
		return nil, err
	}

	account := resp.toAccount()

	log.Debug().
		Str("address", address).
		Str("account_type", account.Type).
		Uint64("account_number", account.AccountNumber).
		Uint64("sequence", account.Sequence).
		Msg("Fetched account info")

	return account, nil
}

// BroadcastTx submits signed TxRaw bytes. A transaction the ledger refuses
// yields *txerr.RemoteRejectionError even though the HTTP exchange succeeded.
func (c *Client) BroadcastTx(ctx context.Context, txBytes []byte) (*BroadcastResult, error) {
	const op = "broadcast"

	log := util.LogFromContext(ctx)
	endpoint := c.baseURL + broadcastPath

	payload, err := json.Marshal(broadcastRequest{
		TxBytes: base64.StdEncoding.EncodeToString(txBytes),
		Mode:    c.broadcastMode,
	})
	if err != nil {
		return nil, &txerr.TransportError{Op: op, URL: endpoint, Err: errors.Wrap(err, "failed to encode request")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &txerr.TransportError{Op: op, URL: endpoint, Err: errors.Wrap(err, "failed to create request")}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var resp broadcastResponse
	if err := c.do(req, op, &resp); err != nil {
		return nil, err
	}

	txResp := resp.TxResponse
	if txResp == nil {
		return nil, &txerr.TransportError{Op: op, URL: endpoint, Err: errors.New("response has no tx_response")}
	}

	if txResp.Code != 0 {
		return nil, &txerr.RemoteRejectionError{
			Code:      txResp.Code,
			Codespace: txResp.Codespace,
			RawLog:    txResp.RawLog,
			TxHash:    txResp.TxHash,
		}
	}

	if txResp.TxHash == "" {
		return nil, &txerr.TransportError{Op: op, URL: endpoint, Err: errors.New("response has no txhash")}
	}

	log.Info().
		Str("tx_hash", txResp.TxHash).
		Str("mode", c.broadcastMode).
		Msg("Transaction broadcast")

	return &BroadcastResult{
		TxHash: txResp.TxHash,
		Height: uint64(txResp.Height),
		RawLog: txResp.RawLog,
	}, nil
}

// do executes req and decodes a 2xx JSON body into out. Everything else is a TransportError.
func (c *Client) do(req *http.Request, op string, out any) error {
	endpoint := req.URL.String()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &txerr.TransportError{Op: op, URL: endpoint, Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return &txerr.TransportError{Op: op, URL: endpoint, StatusCode: res.StatusCode, Err: errors.Wrap(err, "failed to read response body")}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		terr := &txerr.TransportError{Op: op, URL: endpoint, StatusCode: res.StatusCode}

		var gwErr gatewayError
		if json.Unmarshal(body, &gwErr) == nil && gwErr.Message != "" {
			terr.Code = gwErr.Code
			terr.Message = gwErr.Message
		} else {
			terr.Err = errors.Errorf("unexpected response: %s", truncate(body, 256))
		}

		return terr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &txerr.TransportError{Op: op, URL: endpoint, StatusCode: res.StatusCode, Err: errors.Wrap(err, "failed to decode response")}
	}

	return nil
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
