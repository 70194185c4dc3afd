package rpcclient

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/meridian-chain/meridian-ledger/internal/ledger"
	mlog "github.com/meridian-chain/meridian-ledger/internal/log"
	"github.com/meridian-chain/meridian-ledger/internal/rpc"
	"github.com/meridian-chain/meridian-ledger/internal/storage"
	"github.com/meridian-chain/meridian-ledger/pkg/types"
)

var (
	ctrl  = types.Principal([]byte{0x01, 0x0a})
	alice = types.Principal([]byte{0x02, 0x0b, 0x0b})
	bob   = types.Principal([]byte{0x03, 0x0c, 0x0c, 0x0c})
)

type testEnv struct {
	client *Client
	ledger *ledger.Ledger
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mlog.Init("error", false, "")

	now := uint64(1_700_000_000) * uint64(time.Second/time.Nanosecond)
	l, err := ledger.New(storage.NewMemory(), ledger.Options{
		Now:               func() uint64 { return now },
		GenesisController: ctrl,
	})
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { l.Close() })

	srv := rpc.New("127.0.0.1:0", l)
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return &testEnv{
		client: New("http://" + srv.Addr() + "/"),
		ledger: l,
	}
}

// createToken makes a token over the wire and returns its hex id.
func createToken(t *testing.T, env *testEnv) string {
	t.Helper()
	var result rpc.CreateTokenResult
	err := env.client.Call("create_token", rpc.CreateTokenParam{
		Caller:   ctrl.String(),
		Name:     "Client Token",
		Symbol:   "CLT",
		Decimals: 8,
		Fee:      "10",
	}, &result)
	if err != nil {
		t.Fatalf("create_token: %v", err)
	}
	return result.TokenID
}

func TestClient_GetInfo(t *testing.T) {
	env := setupTestEnv(t)

	var result ledger.Info
	if err := env.client.Call("get_info", nil, &result); err != nil {
		t.Fatalf("Call error: %v", err)
	}

	if result.Name != "meridian-ledger" {
		t.Errorf("name = %q, want %q", result.Name, "meridian-ledger")
	}
	if result.Controller != ctrl.String() {
		t.Errorf("controller = %q, want %q", result.Controller, ctrl.String())
	}
	if result.TxCount != 0 {
		t.Errorf("tx_count = %d, want 0", result.TxCount)
	}
}

func TestClient_TransferRoundTrip(t *testing.T) {
	env := setupTestEnv(t)
	tokenID := createToken(t, env)

	var minted rpc.TxIDResult
	err := env.client.Call("mint_tokens", rpc.MintParam{
		Caller:  ctrl.String(),
		TokenID: tokenID,
		To:      rpc.AccountRef{Owner: alice.String()},
		Amount:  "1000",
	}, &minted)
	if err != nil {
		t.Fatalf("mint_tokens: %v", err)
	}

	var transferred rpc.TxIDResult
	err = env.client.Call("transfer", rpc.TransferParam{
		Caller:  alice.String(),
		TokenID: tokenID,
		To:      rpc.AccountRef{Owner: bob.String()},
		Amount:  "400",
	}, &transferred)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if transferred.TxID != minted.TxID+1 {
		t.Errorf("tx_id = %d, want %d", transferred.TxID, minted.TxID+1)
	}

	var balance rpc.BalanceResult
	err = env.client.Call("get_balance", rpc.BalanceParam{
		TokenID: tokenID,
		Account: rpc.AccountRef{Owner: bob.String()},
	}, &balance)
	if err != nil {
		t.Fatalf("get_balance: %v", err)
	}
	if balance.Amount != "400" {
		t.Errorf("balance = %q, want %q", balance.Amount, "400")
	}
}

func TestClient_LedgerErrorData(t *testing.T) {
	env := setupTestEnv(t)
	tokenID := createToken(t, env)

	var result rpc.TxIDResult
	err := env.client.Call("transfer", rpc.TransferParam{
		Caller:  alice.String(),
		TokenID: tokenID,
		To:      rpc.AccountRef{Owner: bob.String()},
		Amount:  "400",
	}, &result)
	if err == nil {
		t.Fatal("expected error for unfunded transfer")
	}

	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != -32001 {
		t.Errorf("error code = %d, want -32001", rpcErr.Code)
	}

	var data rpc.LedgerErrorData
	if err := json.Unmarshal(rpcErr.Data, &data); err != nil {
		t.Fatalf("decode error data: %v", err)
	}
	if data.Kind != "InsufficientFunds" {
		t.Errorf("kind = %q, want %q", data.Kind, "InsufficientFunds")
	}
	if data.Balance != "0" {
		t.Errorf("balance = %q, want %q", data.Balance, "0")
	}
}

func TestClient_GetTokenMetadata_NotFound(t *testing.T) {
	env := setupTestEnv(t)

	missing := "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
	var raw json.RawMessage
	err := env.client.Call("get_token_metadata", rpc.TokenIDParam{TokenID: missing}, &raw)
	if err == nil {
		t.Fatal("expected error for unknown token")
	}

	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != -32000 {
		t.Errorf("error code = %d, want -32000", rpcErr.Code)
	}
}

func TestClient_Call_InvalidEndpoint(t *testing.T) {
	client := New("http://127.0.0.1:1/") // nothing listens on port 1

	var raw json.RawMessage
	err := client.Call("get_info", nil, &raw)
	if err == nil {
		t.Fatal("expected connection error")
	}
}

func TestClient_Call_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)

	var raw json.RawMessage
	err := env.client.Call("nonexistent_method", nil, &raw)
	if err == nil {
		t.Fatal("expected error for unknown method")
	}

	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != -32601 {
		t.Errorf("error code = %d, want -32601", rpcErr.Code)
	}
}
