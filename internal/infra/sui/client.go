package sui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/core/port"
)

// epochCacheTTL bounds how stale a cached epoch may be. Sui epochs last
// roughly a day, so a short cache keeps RequireAuthenticated from issuing an
// RPC per command without risking a meaningfully stale expiry check.
const epochCacheTTL = 60 * time.Second

// Client talks JSON-RPC to a Sui fullnode. Consumed as an opaque read/write
// API; no transaction semantics live here.
type Client struct {
	rpcURL string
	http   *http.Client
	logger *zap.Logger

	epochMu      sync.Mutex
	cachedEpoch  uint64
	epochFetched time.Time
}

// NewClient constructs a fullnode client for the network. rpcURL overrides
// the network's public endpoint when non-empty.
func NewClient(network domain.Network, rpcURL string, log *zap.Logger) *Client {
	if rpcURL == "" {
		rpcURL = network.DefaultRPCURL()
	}
	return &Client{
		rpcURL: rpcURL,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: log,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(payload, &rpcResp); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s: %w", method, rpcResp.Error)
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

// CurrentEpoch returns the chain's current epoch, cached briefly.
func (c *Client) CurrentEpoch(ctx context.Context) (uint64, error) {
	c.epochMu.Lock()
	if c.cachedEpoch > 0 && time.Since(c.epochFetched) < epochCacheTTL {
		epoch := c.cachedEpoch
		c.epochMu.Unlock()
		return epoch, nil
	}
	c.epochMu.Unlock()

	var state struct {
		Epoch string `json:"epoch"`
	}
	if err := c.call(ctx, "suix_getLatestSuiSystemState", []any{}, &state); err != nil {
		return 0, err
	}
	epoch, err := strconv.ParseUint(state.Epoch, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse epoch %q: %w", state.Epoch, err)
	}

	c.epochMu.Lock()
	c.cachedEpoch = epoch
	c.epochFetched = time.Now()
	c.epochMu.Unlock()

	return epoch, nil
}

// GetBalance returns the aggregate balance for an address and coin type.
func (c *Client) GetBalance(ctx context.Context, address, coinType string) (domain.Balance, error) {
	var result struct {
		CoinType        string `json:"coinType"`
		CoinObjectCount int    `json:"coinObjectCount"`
		TotalBalance    string `json:"totalBalance"`
	}
	if err := c.call(ctx, "suix_getBalance", []any{address, coinType}, &result); err != nil {
		return domain.Balance{}, err
	}

	total, err := strconv.ParseUint(result.TotalBalance, 10, 64)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("parse total balance %q: %w", result.TotalBalance, err)
	}

	return domain.Balance{
		CoinType:     result.CoinType,
		CoinCount:    result.CoinObjectCount,
		TotalBalance: total,
	}, nil
}

// BuildTransfer constructs an unsigned pay transaction funded by the sender's
// first suitable coin and returns its base64 BCS bytes.
func (c *Client) BuildTransfer(ctx context.Context, req port.TransferRequest) (string, error) {
	var coins struct {
		Data []struct {
			CoinObjectID string `json:"coinObjectId"`
			Balance      string `json:"balance"`
		} `json:"data"`
	}
	if err := c.call(ctx, "suix_getCoins", []any{req.Sender, req.CoinType, nil, nil}, &coins); err != nil {
		return "", err
	}
	if len(coins.Data) == 0 {
		return "", fmt.Errorf("no %s coins owned by %s", req.CoinType, req.Sender)
	}

	var tx struct {
		TxBytes string `json:"txBytes"`
	}
	params := []any{
		req.Sender,
		[]string{coins.Data[0].CoinObjectID},
		[]string{req.Recipient},
		[]string{strconv.FormatUint(req.AmountMist, 10)},
		nil,
		strconv.FormatUint(req.GasBudget, 10),
	}
	if err := c.call(ctx, "unsafe_paySui", params, &tx); err != nil {
		return "", err
	}
	return tx.TxBytes, nil
}

// ExecuteTransaction submits a signed transaction, waiting for local
// execution, and returns its digest.
func (c *Client) ExecuteTransaction(ctx context.Context, signed domain.SignedTransaction) (string, error) {
	var result struct {
		Digest string `json:"digest"`
	}
	params := []any{
		signed.TxBytes,
		[]string{signed.Signature},
		map[string]bool{"showEffects": true},
		"WaitForLocalExecution",
	}
	if err := c.call(ctx, "sui_executeTransactionBlock", params, &result); err != nil {
		return "", err
	}

	c.logger.Info("transaction executed", zap.String("digest", result.Digest))
	return result.Digest, nil
}

var _ port.ChainClient = (*Client)(nil)
