package types

import (
	"strings"
	"testing"
)

func TestHash_IsZero(t *testing.T) {
	var zero Hash
	if !zero.IsZero() {
		t.Error("zero-value Hash should be zero")
	}

	nonZero := Hash{0x01}
	if nonZero.IsZero() {
		t.Error("non-zero Hash should not be zero")
	}
}

func TestHash_String(t *testing.T) {
	var h Hash
	s := h.String()
	if len(s) != 64 {
		t.Errorf("String() length = %d, want 64", len(s))
	}
	if s != strings.Repeat("0", 64) {
		t.Errorf("zero hash String() = %s, want all zeros", s)
	}

	h[0] = 0xab
	h[31] = 0xcd
	s = h.String()
	if !strings.HasPrefix(s, "ab") {
		t.Errorf("String() should start with 'ab', got %s", s[:2])
	}
	if !strings.HasSuffix(s, "cd") {
		t.Errorf("String() should end with 'cd', got %s", s[62:])
	}
}

func TestHash_Bytes(t *testing.T) {
	h := Hash{0x01, 0x02, 0x03}
	b := h.Bytes()

	if len(b) != HashSize {
		t.Errorf("Bytes() length = %d, want %d", len(b), HashSize)
	}
	if b[0] != 0x01 || b[1] != 0x02 || b[2] != 0x03 {
		t.Errorf("Bytes() content mismatch")
	}

	// Ensure it's a copy, not a reference
	b[0] = 0xFF
	if h[0] == 0xFF {
		t.Error("Bytes() should return a copy, not a reference")
	}
}

func TestHexToHash(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:  "valid 64 hex chars",
			input: "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262",
		},
		{
			name:  "all zeros",
			input: strings.Repeat("0", 64),
		},
		{
			name:    "too short",
			input:   "abcd",
			wantErr: true,
		},
		{
			name:    "too long",
			input:   strings.Repeat("a", 66),
			wantErr: true,
		},
		{
			name:    "invalid hex character",
			input:   strings.Repeat("g", 64),
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := HexToHash(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("HexToHash(%q) should have returned error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("HexToHash(%q) unexpected error: %v", tt.input, err)
			}
			// Roundtrip check
			if h.String() != tt.input {
				t.Errorf("roundtrip: got %s, want %s", h.String(), tt.input)
			}
		})
	}
}

func TestDeriveTokenID(t *testing.T) {
	id := DeriveTokenID("Wrapped Meridian", "WMER", 8)
	if id.IsZero() {
		t.Fatal("derived token ID should not be zero")
	}

	// Deterministic: same fields give the same ID.
	again := DeriveTokenID("Wrapped Meridian", "WMER", 8)
	if id != again {
		t.Error("identical metadata should derive identical IDs")
	}

	// Any field change moves the ID.
	if DeriveTokenID("Wrapped Meridian", "WMER", 9) == id {
		t.Error("decimals change should change the ID")
	}
	if DeriveTokenID("Wrapped Meridian", "WMERX", 8) == id {
		t.Error("symbol change should change the ID")
	}
	if DeriveTokenID("Wrapped meridian", "WMER", 8) == id {
		t.Error("name change should change the ID")
	}
}

func TestDeriveTokenID_NoSeparator(t *testing.T) {
	// Fields are concatenated raw with no separators, so only the combined
	// byte stream matters. Persisted IDs depend on this staying true.
	a := DeriveTokenID("ab", "c", 0)
	b := DeriveTokenID("a", "bc", 0)
	if a != b {
		t.Error("derivation must concatenate fields without separators")
	}
}

func TestTokenID_IsZero(t *testing.T) {
	var zero TokenID
	if !zero.IsZero() {
		t.Error("zero-value TokenID should be zero")
	}

	nonZero := TokenID{0x01}
	if nonZero.IsZero() {
		t.Error("non-zero TokenID should not be zero")
	}
}

func TestTokenID_String(t *testing.T) {
	tid := TokenID{0xde, 0xad}
	s := tid.String()
	if !strings.HasPrefix(s, "dead") {
		t.Errorf("TokenID.String() = %s, expected to start with 'dead'", s)
	}
}

func TestHexToTokenID(t *testing.T) {
	in := strings.Repeat("ab", 32)
	id, err := HexToTokenID(in)
	if err != nil {
		t.Fatalf("HexToTokenID: %v", err)
	}
	if id.String() != in {
		t.Errorf("roundtrip: got %s, want %s", id.String(), in)
	}

	if _, err := HexToTokenID("abcd"); err == nil {
		t.Error("short input should fail")
	}
}
