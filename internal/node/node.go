// Package node provides a reusable ledger node that can be embedded in
// any binary.
package node

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/meridian-chain/meridian-ledger/config"
	"github.com/meridian-chain/meridian-ledger/internal/ledger"
	mlog "github.com/meridian-chain/meridian-ledger/internal/log"
	"github.com/meridian-chain/meridian-ledger/internal/rpc"
	"github.com/meridian-chain/meridian-ledger/internal/storage"
	"github.com/meridian-chain/meridian-ledger/pkg/types"
)

// Node is a fully-initialized ledger node.
type Node struct {
	cfg    *config.Config
	logger zerolog.Logger

	ledger    *ledger.Ledger
	rpcServer *rpc.Server
}

// New wires up a node from configuration: logger, store, ledger engine,
// and RPC server. Nothing listens until Start.
func New(cfg *config.Config) (*Node, error) {
	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := expandHome(cfg.Log.File)
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = filepath.Join(logsDir, "meridian.log")
	}
	if err := mlog.Init(cfg.Log.Level, !cfg.Log.Pretty, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := mlog.WithComponent("node")

	logger.Info().
		Str("version", ledger.Version).
		Str("datadir", cfg.DataDir).
		Msg("Starting Meridian ledger node")

	// ── 2. Genesis controller ───────────────────────────────────────
	var genesis types.Principal
	if cfg.Ledger.Controller != "" {
		p, err := types.HexToPrincipal(cfg.Ledger.Controller)
		if err != nil {
			return nil, fmt.Errorf("parse genesis controller: %w", err)
		}
		genesis = p
	}

	// ── 3. Open storage + ledger ────────────────────────────────────
	db, err := storage.NewBadger(cfg.LedgerDir())
	if err != nil {
		return nil, fmt.Errorf("open database at %s: %w", cfg.LedgerDir(), err)
	}

	l, err := ledger.New(db, ledger.Options{GenesisController: genesis})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	logger.Info().Str("path", cfg.LedgerDir()).Msg("Database opened")

	n := &Node{
		cfg:    cfg,
		logger: logger,
		ledger: l,
	}

	// ── 4. RPC server ───────────────────────────────────────────────
	if cfg.RPC.Enabled {
		addr := fmt.Sprintf("%s:%d", cfg.RPC.Addr, cfg.RPC.Port)
		n.rpcServer = rpc.New(addr, l, cfg.RPC)
	}

	return n, nil
}

// NewWithLedger wraps an already-open ledger, used by in-process embedders
// that manage their own store. The RPC server follows cfg.RPC as in New.
func NewWithLedger(cfg *config.Config, l *ledger.Ledger) *Node {
	n := &Node{
		cfg:    cfg,
		logger: mlog.WithComponent("node"),
		ledger: l,
	}
	if cfg.RPC.Enabled {
		addr := fmt.Sprintf("%s:%d", cfg.RPC.Addr, cfg.RPC.Port)
		n.rpcServer = rpc.New(addr, l, cfg.RPC)
	}
	return n
}

// Start begins serving. It returns after the RPC listener is bound.
func (n *Node) Start() error {
	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			return fmt.Errorf("start rpc: %w", err)
		}
		n.logger.Info().Str("addr", n.rpcServer.Addr()).Msg("RPC server listening")
	}

	status, err := n.ledger.HealthCheck()
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	n.logger.Info().Str("status", status).Msg("Node started successfully")
	return nil
}

// Stop performs graceful shutdown in reverse order.
func (n *Node) Stop() {
	if n.rpcServer != nil {
		if err := n.rpcServer.Stop(); err != nil {
			n.logger.Warn().Err(err).Msg("RPC shutdown")
		}
	}
	if n.ledger != nil {
		if err := n.ledger.Close(); err != nil {
			n.logger.Warn().Err(err).Msg("Ledger close")
		}
	}
	n.logger.Info().Msg("Goodbye!")
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// Ledger returns the underlying engine for in-process embedders.
func (n *Node) Ledger() *ledger.Ledger {
	return n.ledger
}
