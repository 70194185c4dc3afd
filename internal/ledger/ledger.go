package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/meridian-chain/meridian-ledger/internal/log"
	"github.com/meridian-chain/meridian-ledger/internal/stable"
	"github.com/meridian-chain/meridian-ledger/internal/storage"
	"github.com/meridian-chain/meridian-ledger/pkg/tx"
	"github.com/meridian-chain/meridian-ledger/pkg/types"
)

// Version is the engine version reported by health and info queries.
const Version = "0.3.0"

// Time windows for submitted timestamps. The drift window bounds how far
// in the future a client clock may run; the dedup window bounds both the
// accepted age of a submission and the lifetime of a dedup entry.
const (
	DriftWindow = 5 * time.Minute
	DedupWindow = 24 * time.Hour
)

// defaultFee is the per-token transfer fee installed at creation when the
// creator does not choose one.
var defaultFee = uint64(10_000)

// view binds the stable containers to one backing DB, either the
// committed database or a per-operation overlay.
type view struct {
	tokens        *stable.Map
	balances      *stable.Map
	controllers   *stable.Map
	primary       *stable.Cell
	txlog         *stable.Log
	transferDedup *stable.Map
	counter       *stable.Cell
	allowances    *stable.Map
	approveDedup  *stable.Map
}

func newView(base storage.DB) (*view, error) {
	m := storage.NewRegionManager(base)
	var firstErr error
	open := func(id uint8) *storage.PrefixDB {
		r, err := m.Open(id)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return r
	}

	v := &view{}
	v.tokens = stable.NewMap(open(storage.RegionTokens))
	v.balances = stable.NewMap(open(storage.RegionBalances))
	ctrl := open(storage.RegionControllers)
	v.controllers = stable.NewMap(ctrl)
	v.primary = stable.NewCell(ctrl)
	v.txlog = stable.NewLog(open(storage.RegionTxLog), tx.RecordSize)
	v.transferDedup = stable.NewMap(open(storage.RegionTxDedup))
	v.counter = stable.NewCell(open(storage.RegionTxCounter))
	v.allowances = stable.NewMap(open(storage.RegionAllowances))
	v.approveDedup = stable.NewMap(open(storage.RegionApproveDedup))
	if firstErr != nil {
		return nil, firstErr
	}
	return v, nil
}

// Options configure a Ledger.
type Options struct {
	// Now supplies the ledger clock in nanoseconds since the Unix epoch.
	// Defaults to the wall clock.
	Now func() uint64

	// GenesisController is installed as the primary controller when the
	// controller set is empty (first start on a fresh database).
	GenesisController types.Principal
}

// Ledger is the engine. Updates take the mutex so state transitions are
// totally ordered; queries read committed state only.
type Ledger struct {
	mu  sync.Mutex
	db  storage.DB
	st  *view // committed state
	now func() uint64
	log zerolog.Logger
}

// New opens a ledger over db, installing the genesis controller on first
// start.
func New(db storage.DB, opts Options) (*Ledger, error) {
	st, err := newView(db)
	if err != nil {
		return nil, fmt.Errorf("open regions: %w", err)
	}

	now := opts.Now
	if now == nil {
		now = func() uint64 { return uint64(time.Now().UnixNano()) }
	}

	l := &Ledger{
		db:  db,
		st:  st,
		now: now,
		log: log.Ledger,
	}

	if err := l.bootstrapControllers(opts.GenesisController); err != nil {
		return nil, err
	}
	return l, nil
}

// Close releases the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// begin opens a staged view for one update. Nothing the update writes is
// visible until commit.
func (l *Ledger) begin() (*storage.Overlay, *view, error) {
	o := storage.NewOverlay(l.db)
	st, err := newView(o)
	if err != nil {
		return nil, nil, err
	}
	return o, st, nil
}

// commit flushes the staged writes through one batch so they land
// together or not at all.
func (l *Ledger) commit(o *storage.Overlay) error {
	var b storage.Batch
	if batcher, ok := l.db.(storage.Batcher); ok {
		b = batcher.NewBatch()
	} else {
		b = storage.NewPrefixDB(l.db, nil).NewBatch()
	}
	if err := o.Flush(b); err != nil {
		return err
	}
	return b.Commit()
}

// nextTxID hands out the next transaction id from the persistent counter
// and advances it. The id always equals the log index of the record being
// appended.
func nextTxID(st *view) (uint64, error) {
	id := uint64(0)
	raw, ok, err := st.counter.Get()
	if err != nil {
		return 0, err
	}
	if ok {
		if len(raw) != 8 {
			return 0, fmt.Errorf("corrupt tx counter: %d bytes", len(raw))
		}
		id = beUint64(raw)
	}
	if err := st.counter.Set(bePutUint64(id + 1)); err != nil {
		return 0, err
	}
	return id, nil
}

// appendRecord gives the record the next id and appends it to the log.
func appendRecord(st *view, rec *tx.StoredTx) (uint64, error) {
	id, err := nextTxID(st)
	if err != nil {
		return 0, err
	}
	encoded, err := rec.Encode()
	if err != nil {
		return 0, err
	}
	index, err := st.txlog.Append(encoded)
	if err != nil {
		return 0, err
	}
	if index != id {
		return 0, fmt.Errorf("tx counter %d diverged from log length %d", id, index)
	}
	return id, nil
}
