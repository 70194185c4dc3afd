package types

import (
	"errors"
	"strings"
	"testing"

	"github.com/holiman/uint256"
)

func TestMaxU128(t *testing.T) {
	max := MaxU128()
	if max.BitLen() != 128 {
		t.Errorf("MaxU128 bit length = %d, want 128", max.BitLen())
	}
	if max.Dec() != "340282366920938463463374607431768211455" {
		t.Errorf("MaxU128 = %s", max.Dec())
	}
}

func TestPutU128_U128_Roundtrip(t *testing.T) {
	values := []*uint256.Int{
		uint256.NewInt(0),
		uint256.NewInt(1),
		uint256.NewInt(10_000),
		new(uint256.Int).Lsh(uint256.NewInt(1), 64),
		MaxU128(),
	}

	for _, v := range values {
		buf := make([]byte, U128Size)
		if err := PutU128(buf, v); err != nil {
			t.Fatalf("PutU128(%s): %v", v.Dec(), err)
		}
		got, err := U128(buf)
		if err != nil {
			t.Fatalf("U128: %v", err)
		}
		if !got.Eq(v) {
			t.Errorf("roundtrip(%s) = %s", v.Dec(), got.Dec())
		}
	}
}

func TestPutU128_BigEndian(t *testing.T) {
	buf := make([]byte, U128Size)
	if err := PutU128(buf, uint256.NewInt(0x0102)); err != nil {
		t.Fatal(err)
	}
	if buf[U128Size-2] != 0x01 || buf[U128Size-1] != 0x02 {
		t.Errorf("encoding = %x, want big-endian tail 0102", buf)
	}
	for i := 0; i < U128Size-2; i++ {
		if buf[i] != 0 {
			t.Fatalf("buf[%d] = %#x, want zero", i, buf[i])
		}
	}
}

func TestPutU128_RangeEnforced(t *testing.T) {
	over := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	buf := make([]byte, U128Size)
	if err := PutU128(buf, over); !errors.Is(err, ErrU128Range) {
		t.Errorf("PutU128(2^128) err = %v, want ErrU128Range", err)
	}
}

func TestPutU128_ShortBuffer(t *testing.T) {
	if err := PutU128(make([]byte, 8), uint256.NewInt(1)); err == nil {
		t.Error("PutU128 with short buffer should fail")
	}
	if _, err := U128(make([]byte, 8)); err == nil {
		t.Error("U128 with short buffer should fail")
	}
}

func TestParseU128(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "zero", input: "0", want: "0"},
		{name: "typical fee", input: "10000", want: "10000"},
		{name: "max", input: "340282366920938463463374607431768211455", want: "340282366920938463463374607431768211455"},
		{name: "over max", input: "340282366920938463463374607431768211456", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "not a number", input: "ten", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "absurdly long", input: strings.Repeat("9", 100), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseU128(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseU128(%q) should have failed", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseU128(%q): %v", tt.input, err)
			}
			if v.Dec() != tt.want {
				t.Errorf("ParseU128(%q) = %s, want %s", tt.input, v.Dec(), tt.want)
			}
		})
	}
}
