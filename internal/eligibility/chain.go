// Package eligibility gates the elite queue on an on-chain ERC-20 balance.
package eligibility

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"
)

// balanceOfSelector is the 4-byte selector of balanceOf(address).
const balanceOfSelector = "0x70a08231"

// ChainChecker resolves eligibility with an eth_call balanceOf query against
// a JSON-RPC endpoint. Callers are expected to wrap it in a Cache; one RPC
// round trip per check is too slow for the match path.
type ChainChecker struct {
	rpcURL     string
	token      string // ERC-20 contract address, 0x-prefixed
	minBalance *big.Int
	client     *http.Client
}

// NewChainChecker creates a checker for the given token contract.
func NewChainChecker(rpcURL, tokenAddress string, minBalance *big.Int) *ChainChecker {
	return &ChainChecker{
		rpcURL:     rpcURL,
		token:      tokenAddress,
		minBalance: minBalance,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// IsEligible returns whether the wallet holds at least the minimum balance.
// Any transport or contract error reads as ineligible with the error
// attached; the caller decides whether to cache the negative.
func (c *ChainChecker) IsEligible(ctx context.Context, walletAddress string) (bool, error) {
	data := balanceOfSelector + fmt.Sprintf("%064s", strings.TrimPrefix(strings.ToLower(walletAddress), "0x"))
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_call",
		Params: []any{
			map[string]string{"to": c.token, "data": data},
			"latest",
		},
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, err
	}
	if out.Error != nil {
		return false, fmt.Errorf("eth_call: %s", out.Error.Message)
	}

	balance, ok := new(big.Int).SetString(strings.TrimPrefix(out.Result, "0x"), 16)
	if !ok {
		return false, fmt.Errorf("eth_call: malformed balance %q", out.Result)
	}
	return balance.Cmp(c.minBalance) >= 0, nil
}
