package types

import (
	"bytes"
	"testing"
)

// FuzzPrincipalRoundtrip checks that every valid principal survives the
// owner-block encoding unchanged and that decode never panics.
func FuzzPrincipalRoundtrip(f *testing.F) {
	f.Add([]byte{0x01})
	f.Add([]byte{0x04})
	f.Add([]byte{0xde, 0xad, 0xbe, 0xef})
	f.Add(bytes.Repeat([]byte{0x7f}, MaxPrincipalLen))

	f.Fuzz(func(t *testing.T, raw []byte) {
		p, err := NewPrincipal(raw)
		if err != nil {
			return
		}
		got, err := PrincipalFromOwnerBlock(p.OwnerBlock())
		if err != nil {
			t.Fatalf("decode of own encoding failed: %v", err)
		}
		if !got.Equal(p) {
			t.Fatalf("roundtrip(%x) = %x", raw, []byte(got))
		}
	})
}

// FuzzOwnerBlockDecode checks that arbitrary 32-byte blocks either decode
// into a principal that re-encodes to the same block, or fail cleanly.
func FuzzOwnerBlockDecode(f *testing.F) {
	valid, _ := NewPrincipal([]byte{0xaa, 0xbb})
	b := valid.OwnerBlock()
	f.Add(b[:])
	f.Add(make([]byte, OwnerBlockSize))
	f.Add(bytes.Repeat([]byte{0xff}, OwnerBlockSize))

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) != OwnerBlockSize {
			return
		}
		var block [OwnerBlockSize]byte
		copy(block[:], data)
		p, err := PrincipalFromOwnerBlock(block)
		if err != nil {
			return
		}
		if p.OwnerBlock() != block {
			t.Fatalf("decoded principal %x re-encodes differently", []byte(p))
		}
	})
}

// FuzzParseU128 checks that arbitrary decimal strings either parse into a
// value that fits 128 bits and reparses from its printed form to the same
// value, or fail.
func FuzzParseU128(f *testing.F) {
	f.Add("0")
	f.Add("1")
	f.Add("340282366920938463463374607431768211455")
	f.Add("340282366920938463463374607431768211456")
	f.Add("-1")
	f.Add("1e9")
	f.Add("00")

	f.Fuzz(func(t *testing.T, s string) {
		v, err := ParseU128(s)
		if err != nil {
			return
		}
		if !FitsU128(v) {
			t.Fatalf("ParseU128(%q) exceeds 128 bits", s)
		}
		again, err := ParseU128(v.Dec())
		if err != nil || !again.Eq(v) {
			t.Fatalf("reparse of %q lost value", s)
		}
	})
}

// FuzzAccountKeyRoundtrip checks that arbitrary 64-byte keys either decode
// into an account whose canonical key is the input, or fail cleanly.
func FuzzAccountKeyRoundtrip(f *testing.F) {
	owner, _ := NewPrincipal([]byte{0x01, 0x02})
	var sub [SubaccountSize]byte
	sub[3] = 9
	k := NewAccount(owner, &sub).Key()
	f.Add(k[:])
	f.Add(make([]byte, AccountKeySize))

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) != AccountKeySize {
			return
		}
		var key [AccountKeySize]byte
		copy(key[:], data)
		a, err := AccountFromKey(key)
		if err != nil {
			return
		}
		if a.Key() != key {
			t.Fatalf("decoded account %s re-encodes differently", a)
		}
	})
}
