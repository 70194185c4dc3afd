package node

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meridian-chain/meridian-ledger/config"
	"github.com/meridian-chain/meridian-ledger/internal/ledger"
	"github.com/meridian-chain/meridian-ledger/internal/rpcclient"
	"github.com/meridian-chain/meridian-ledger/pkg/types"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	tests := []struct {
		input, want string
	}{
		{"~/foo/bar", filepath.Join(home, "foo/bar")},
		{"~/.meridian/meridian.conf", filepath.Join(home, ".meridian/meridian.conf")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}
	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.RPC.Addr = "127.0.0.1"
	cfg.RPC.Port = 0 // random port
	cfg.RPC.AllowedIPs = nil
	cfg.Ledger.Controller = "1f2a3b"
	cfg.Log.Level = "error"
	return cfg
}

func TestNode_StartStop(t *testing.T) {
	cfg := testConfig(t)
	if err := config.EnsureDataDirs(cfg); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer n.Stop()

	if n.RPCAddr() == "" {
		t.Fatal("RPC addr is empty")
	}

	client := rpcclient.New("http://" + n.RPCAddr() + "/")
	var info struct {
		Name       string `json:"name"`
		Controller string `json:"controller"`
	}
	if err := client.Call("get_info", nil, &info); err != nil {
		t.Fatalf("get_info: %v", err)
	}
	if info.Name != "meridian-ledger" {
		t.Errorf("name = %q", info.Name)
	}

	want, err := types.HexToPrincipal(cfg.Ledger.Controller)
	if err != nil {
		t.Fatalf("parse controller: %v", err)
	}
	if info.Controller != want.String() {
		t.Errorf("controller = %q, want %q", info.Controller, want.String())
	}
}

func TestNode_FreshStoreNeedsController(t *testing.T) {
	cfg := testConfig(t)
	cfg.Ledger.Controller = ""
	if err := config.EnsureDataDirs(cfg); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for fresh store without genesis controller")
	}
}

func TestNode_RPCDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.RPC.Enabled = false
	if err := config.EnsureDataDirs(cfg); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := n.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer n.Stop()

	if n.RPCAddr() != "" {
		t.Errorf("RPC addr = %q, want empty", n.RPCAddr())
	}
	if n.Ledger() == nil {
		t.Error("ledger is nil")
	}
}

func TestNode_RestartKeepsState(t *testing.T) {
	cfg := testConfig(t)
	if err := config.EnsureDataDirs(cfg); err != nil {
		t.Fatalf("ensure dirs: %v", err)
	}

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	ctrl, _ := types.HexToPrincipal(cfg.Ledger.Controller)
	args := ledger.CreateTokenArgs{Name: "Persist", Symbol: "PST", Decimals: 8}
	if _, err := n.Ledger().CreateToken(ctrl, args); err != nil {
		t.Fatalf("create token: %v", err)
	}
	n.Stop()

	// A different configured controller must lose to the stored set.
	cfg.Ledger.Controller = "aabbcc"
	n2, err := New(cfg)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer n2.Stop()

	tokens, err := n2.Ledger().ListTokens()
	if err != nil {
		t.Fatalf("list tokens: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Metadata.Symbol != "PST" {
		t.Fatalf("tokens after restart = %v", tokens)
	}

	p, ok, err := n2.Ledger().PrimaryController()
	if err != nil || !ok {
		t.Fatalf("primary controller: %v ok=%v", err, ok)
	}
	if !p.Equal(ctrl) {
		t.Errorf("primary = %s, want original %s", p, ctrl)
	}
}
