package storage

import (
	"errors"
	"testing"
)

func TestRegionManager_Open(t *testing.T) {
	m := NewRegionManager(NewMemory())
	defer m.Close()

	for _, id := range []uint8{
		RegionTokens, RegionBalances, RegionControllers, RegionTxLog,
		RegionTxDedup, RegionTxCounter, RegionAllowances, RegionApproveDedup,
	} {
		r, err := m.Open(id)
		if err != nil {
			t.Fatalf("Open(%d): %v", id, err)
		}
		if r == nil {
			t.Fatalf("Open(%d) returned nil region", id)
		}
	}
}

func TestRegionManager_ReservedID(t *testing.T) {
	m := NewRegionManager(NewMemory())
	defer m.Close()

	for _, id := range []uint8{4, 5, 7, 8, 11, 13, 255} {
		_, err := m.Open(id)
		if !errors.Is(err, ErrRegionReserved) {
			t.Errorf("Open(%d) = %v, want ErrRegionReserved", id, err)
		}
	}
}

func TestRegionManager_DoubleOpen(t *testing.T) {
	m := NewRegionManager(NewMemory())
	defer m.Close()

	if _, err := m.Open(RegionBalances); err != nil {
		t.Fatalf("first Open: %v", err)
	}
	_, err := m.Open(RegionBalances)
	if !errors.Is(err, ErrRegionOpen) {
		t.Fatalf("second Open = %v, want ErrRegionOpen", err)
	}
}

func TestRegionManager_Isolation(t *testing.T) {
	m := NewRegionManager(NewMemory())
	defer m.Close()

	tokens, _ := m.Open(RegionTokens)
	balances, _ := m.Open(RegionBalances)

	if err := tokens.Put([]byte("k"), []byte("from-tokens")); err != nil {
		t.Fatal(err)
	}
	if err := balances.Put([]byte("k"), []byte("from-balances")); err != nil {
		t.Fatal(err)
	}

	got, err := tokens.Get([]byte("k"))
	if err != nil || string(got) != "from-tokens" {
		t.Fatalf("tokens.Get = %q, %v", got, err)
	}
	got, err = balances.Get([]byte("k"))
	if err != nil || string(got) != "from-balances" {
		t.Fatalf("balances.Get = %q, %v", got, err)
	}
}

func TestRegionManager_CrossRegionBatch(t *testing.T) {
	m := NewRegionManager(NewMemory())
	defer m.Close()

	tokens, _ := m.Open(RegionTokens)
	balances, _ := m.Open(RegionBalances)

	b := m.NewBatch()
	if err := tokens.BatchOn(b).Put([]byte("t"), []byte("1")); err != nil {
		t.Fatalf("tokens batch Put: %v", err)
	}
	if err := balances.BatchOn(b).Put([]byte("b"), []byte("2")); err != nil {
		t.Fatalf("balances batch Put: %v", err)
	}

	if ok, _ := tokens.Has([]byte("t")); ok {
		t.Fatal("write visible before batch commit")
	}

	if err := b.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if ok, _ := tokens.Has([]byte("t")); !ok {
		t.Error("tokens write missing after commit")
	}
	if ok, _ := balances.Has([]byte("b")); !ok {
		t.Error("balances write missing after commit")
	}
}
