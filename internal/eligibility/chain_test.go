package eligibility

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWallet = "0xAbCd111111111111111111111111111111111111"

func rpcServer(t *testing.T, result string, rpcErr string) (*httptest.Server, *string) {
	t.Helper()
	var lastData string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			Params []any  `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "eth_call", req.Method)
		call := req.Params[0].(map[string]any)
		lastData = call["data"].(string)

		if rpcErr != "" {
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": -32000, "message": rpcErr},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"result": result})
	}))
	t.Cleanup(srv.Close)
	return srv, &lastData
}

func TestChainCheckerAboveMinimum(t *testing.T) {
	srv, lastData := rpcServer(t, "0x0de0b6b3a7640000", "") // 1e18
	c := NewChainChecker(srv.URL, "0x9999999999999999999999999999999999999999", big.NewInt(1_000_000))

	eligible, err := c.IsEligible(context.Background(), testWallet)
	require.NoError(t, err)
	assert.True(t, eligible)

	// selector + the lowercased address left-padded to 32 bytes
	assert.Equal(t,
		"0x70a08231000000000000000000000000abcd111111111111111111111111111111111111",
		*lastData)
}

func TestChainCheckerBelowMinimum(t *testing.T) {
	srv, _ := rpcServer(t, "0x5", "")
	c := NewChainChecker(srv.URL, "0x9999999999999999999999999999999999999999", big.NewInt(6))

	eligible, err := c.IsEligible(context.Background(), testWallet)
	require.NoError(t, err)
	assert.False(t, eligible)
}

func TestChainCheckerExactMinimumQualifies(t *testing.T) {
	srv, _ := rpcServer(t, "0x6", "")
	c := NewChainChecker(srv.URL, "0x9999999999999999999999999999999999999999", big.NewInt(6))

	eligible, err := c.IsEligible(context.Background(), testWallet)
	require.NoError(t, err)
	assert.True(t, eligible)
}

func TestChainCheckerRPCError(t *testing.T) {
	srv, _ := rpcServer(t, "", "execution reverted")
	c := NewChainChecker(srv.URL, "0x9999999999999999999999999999999999999999", big.NewInt(1))

	eligible, err := c.IsEligible(context.Background(), testWallet)
	require.Error(t, err)
	assert.False(t, eligible)
	assert.Contains(t, err.Error(), "execution reverted")
}

func TestChainCheckerMalformedResult(t *testing.T) {
	srv, _ := rpcServer(t, "0xnothex", "")
	c := NewChainChecker(srv.URL, "0x9999999999999999999999999999999999999999", big.NewInt(1))

	_, err := c.IsEligible(context.Background(), testWallet)
	require.Error(t, err)
}

func TestChainCheckerUnreachableEndpoint(t *testing.T) {
	c := NewChainChecker("http://127.0.0.1:1", "0x9999999999999999999999999999999999999999", big.NewInt(1))
	eligible, err := c.IsEligible(context.Background(), testWallet)
	require.Error(t, err)
	assert.False(t, eligible)
}
