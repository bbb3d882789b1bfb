package sui

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/core/port"
)

type rpcCall struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// newRPCServer answers each method with a canned result and records calls.
func newRPCServer(t *testing.T, results map[string]string) (*httptest.Server, *[]rpcCall) {
	t.Helper()

	var calls []rpcCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var call rpcCall
		if err := json.Unmarshal(body, &call); err != nil {
			t.Errorf("bad rpc request: %v", err)
		}
		calls = append(calls, call)

		result, ok := results[call.Method]
		if !ok {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method not found"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":` + result + `}`))
	}))
	return srv, &calls
}

func TestCurrentEpochParsesAndCaches(t *testing.T) {
	srv, calls := newRPCServer(t, map[string]string{
		"suix_getLatestSuiSystemState": `{"epoch":"412"}`,
	})
	defer srv.Close()

	client := NewClient(domain.NetworkDevnet, srv.URL, zap.NewNop())

	epoch, err := client.CurrentEpoch(context.Background())
	if err != nil {
		t.Fatalf("CurrentEpoch: %v", err)
	}
	if epoch != 412 {
		t.Errorf("expected epoch 412, got %d", epoch)
	}

	// A second call inside the cache window must not hit the node.
	if _, err := client.CurrentEpoch(context.Background()); err != nil {
		t.Fatalf("cached CurrentEpoch: %v", err)
	}
	if len(*calls) != 1 {
		t.Errorf("expected one rpc call, got %d", len(*calls))
	}
}

func TestGetBalance(t *testing.T) {
	srv, _ := newRPCServer(t, map[string]string{
		"suix_getBalance": `{"coinType":"0x2::sui::SUI","coinObjectCount":3,"totalBalance":"2500000000"}`,
	})
	defer srv.Close()

	client := NewClient(domain.NetworkDevnet, srv.URL, zap.NewNop())
	balance, err := client.GetBalance(context.Background(), "0xabc", "0x2::sui::SUI")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance.TotalBalance != 2_500_000_000 || balance.CoinCount != 3 {
		t.Errorf("unexpected balance %+v", balance)
	}
}

func TestBuildTransferSelectsFirstCoin(t *testing.T) {
	srv, calls := newRPCServer(t, map[string]string{
		"suix_getCoins": `{"data":[{"coinObjectId":"0xc01","balance":"9000000000"},{"coinObjectId":"0xc02","balance":"100"}]}`,
		"unsafe_paySui": `{"txBytes":"dHgtYnl0ZXM="}`,
	})
	defer srv.Close()

	client := NewClient(domain.NetworkDevnet, srv.URL, zap.NewNop())
	txBytes, err := client.BuildTransfer(context.Background(), port.TransferRequest{
		Sender:     "0xabc",
		Recipient:  "0xdef",
		AmountMist: 1_000_000_000,
		CoinType:   "0x2::sui::SUI",
		GasBudget:  10_000_000,
	})
	if err != nil {
		t.Fatalf("BuildTransfer: %v", err)
	}
	if txBytes != "dHgtYnl0ZXM=" {
		t.Errorf("unexpected tx bytes %q", txBytes)
	}

	last := (*calls)[len(*calls)-1]
	if last.Method != "unsafe_paySui" {
		t.Fatalf("expected unsafe_paySui, got %s", last.Method)
	}
	coins, _ := last.Params[1].([]any)
	if len(coins) != 1 || coins[0] != "0xc01" {
		t.Errorf("expected the first coin to fund the transfer, got %v", coins)
	}
}

func TestBuildTransferNoCoins(t *testing.T) {
	srv, _ := newRPCServer(t, map[string]string{
		"suix_getCoins": `{"data":[]}`,
	})
	defer srv.Close()

	client := NewClient(domain.NetworkDevnet, srv.URL, zap.NewNop())
	_, err := client.BuildTransfer(context.Background(), port.TransferRequest{
		Sender:   "0xabc",
		CoinType: "0x2::sui::SUI",
	})
	if err == nil {
		t.Fatal("expected error when the sender owns no coins")
	}
}

func TestExecuteTransaction(t *testing.T) {
	srv, calls := newRPCServer(t, map[string]string{
		"sui_executeTransactionBlock": `{"digest":"8kQx"}`,
	})
	defer srv.Close()

	client := NewClient(domain.NetworkDevnet, srv.URL, zap.NewNop())
	digest, err := client.ExecuteTransaction(context.Background(), domain.SignedTransaction{
		TxBytes:   "dHg=",
		Signature: "c2ln",
	})
	if err != nil {
		t.Fatalf("ExecuteTransaction: %v", err)
	}
	if digest != "8kQx" {
		t.Errorf("unexpected digest %q", digest)
	}

	params := (*calls)[0].Params
	if params[3] != "WaitForLocalExecution" {
		t.Errorf("expected WaitForLocalExecution, got %v", params[3])
	}
}

func TestRPCErrorSurfaced(t *testing.T) {
	srv, _ := newRPCServer(t, nil)
	defer srv.Close()

	client := NewClient(domain.NetworkDevnet, srv.URL, zap.NewNop())
	if _, err := client.CurrentEpoch(context.Background()); err == nil {
		t.Fatal("expected rpc error to surface")
	}
}

func TestDefaultRPCURLPerNetwork(t *testing.T) {
	client := NewClient(domain.NetworkTestnet, "", zap.NewNop())
	if client.rpcURL != "https://fullnode.testnet.sui.io:443" {
		t.Errorf("unexpected default url %q", client.rpcURL)
	}
}
