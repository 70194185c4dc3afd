package ledger

import (
	"fmt"

	"github.com/meridian-chain/meridian-ledger/pkg/types"
)

// controllerMember marks set membership; the key carries the identity.
var controllerMember = []byte{1}

// bootstrapControllers installs the genesis controller on a fresh
// database. A populated controller set wins over the configured genesis.
func (l *Ledger) bootstrapControllers(genesis types.Principal) error {
	n, err := l.st.controllers.Len()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if len(genesis) == 0 {
		return fmt.Errorf("fresh database requires a genesis controller")
	}

	o, st, err := l.begin()
	if err != nil {
		return err
	}
	if err := st.controllers.Insert(genesis, controllerMember); err != nil {
		return err
	}
	if err := st.primary.Set(genesis); err != nil {
		return err
	}
	if err := l.commit(o); err != nil {
		return err
	}
	l.log.Info().Str("controller", genesis.String()).Msg("genesis controller installed")
	return nil
}

// authorize fails unless the caller is a current controller.
func (l *Ledger) authorize(st *view, caller types.Principal) error {
	ok, err := st.controllers.Has(caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}

// AddController adds p to the controller set.
func (l *Ledger) AddController(caller, p types.Principal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(l.st, caller); err != nil {
		return err
	}
	if len(p) == 0 {
		return fmt.Errorf("empty controller principal")
	}

	o, st, err := l.begin()
	if err != nil {
		return err
	}
	if err := st.controllers.Insert(p, controllerMember); err != nil {
		return err
	}
	if err := l.commit(o); err != nil {
		return err
	}
	l.log.Info().Str("controller", p.String()).Msg("controller added")
	return nil
}

// RemoveController removes p from the controller set. The set may never
// become empty.
func (l *Ledger) RemoveController(caller, p types.Principal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(l.st, caller); err != nil {
		return err
	}

	n, err := l.st.controllers.Len()
	if err != nil {
		return err
	}
	isMember, err := l.st.controllers.Has(p)
	if err != nil {
		return err
	}
	if isMember && n <= 1 {
		return ErrLastController
	}
	if !isMember {
		return nil
	}

	o, st, err := l.begin()
	if err != nil {
		return err
	}
	if err := st.controllers.Remove(p); err != nil {
		return err
	}
	if err := l.commit(o); err != nil {
		return err
	}
	l.log.Info().Str("controller", p.String()).Msg("controller removed")
	return nil
}

// SetController makes p the primary controller, adding it to the set.
func (l *Ledger) SetController(caller, p types.Principal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(l.st, caller); err != nil {
		return err
	}
	if len(p) == 0 {
		return fmt.Errorf("empty controller principal")
	}

	o, st, err := l.begin()
	if err != nil {
		return err
	}
	if err := st.controllers.Insert(p, controllerMember); err != nil {
		return err
	}
	if err := st.primary.Set(p); err != nil {
		return err
	}
	if err := l.commit(o); err != nil {
		return err
	}
	l.log.Info().Str("controller", p.String()).Msg("primary controller replaced")
	return nil
}

// ListControllers returns every controller principal.
func (l *Ledger) ListControllers() ([]types.Principal, error) {
	var out []types.Principal
	err := l.st.controllers.ForEachPrefix(nil, func(key, value []byte) error {
		p := make(types.Principal, len(key))
		copy(p, key)
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PrimaryController returns the distinguished primary, if one is set.
func (l *Ledger) PrimaryController() (types.Principal, bool, error) {
	raw, ok, err := l.st.primary.Get()
	if err != nil || !ok {
		return nil, false, err
	}
	p := make(types.Principal, len(raw))
	copy(p, raw)
	return p, true, nil
}
