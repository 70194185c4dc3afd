package config

import (
	"fmt"

	"github.com/meridian-chain/meridian-ledger/pkg/types"
)

// Validate checks runtime node config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}
	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be in range [0, 65535]")
	}
	if cfg.Ledger.Controller != "" {
		p, err := types.HexToPrincipal(cfg.Ledger.Controller)
		if err != nil {
			return fmt.Errorf("ledger.controller: %w", err)
		}
		if p.IsAnonymous() {
			return fmt.Errorf("ledger.controller must not be the anonymous principal")
		}
	}
	return nil
}
