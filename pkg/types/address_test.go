package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAddressType(t *testing.T) {
	tests := []struct {
		input string
		want  AddressType
	}{
		{"segwit", AddressSegwit},
		{"Bech32", AddressSegwit},
		{"p2wpkh", AddressSegwit},
		{"legacy", AddressLegacy},
		{" P2PKH ", AddressLegacy},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAddressType(tt.input)
			if err != nil {
				t.Fatalf("ParseAddressType(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAddressType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAddressType_Unknown(t *testing.T) {
	for _, s := range []string{"", "taproot", "p2sh"} {
		if _, err := ParseAddressType(s); !errors.Is(err, ErrUnknownAddressType) {
			t.Errorf("ParseAddressType(%q) error = %v, want ErrUnknownAddressType", s, err)
		}
	}
}

func TestAddressType_String(t *testing.T) {
	if AddressSegwit.String() != "segwit" {
		t.Errorf("AddressSegwit.String() = %q", AddressSegwit.String())
	}
	if AddressLegacy.String() != "legacy" {
		t.Errorf("AddressLegacy.String() = %q", AddressLegacy.String())
	}
	if AddressType(9).Valid() {
		t.Error("AddressType(9) should not be valid")
	}
}

func TestAddress_JSON(t *testing.T) {
	a := Address{
		Text:  "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu",
		Type:  AddressSegwit,
		Path:  "m/84'/0'/0'/0/0",
		Index: 0,
	}

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"address":"bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu","type":"segwit","path":"m/84'/0'/0'/0/0","index":0}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	a.Type = AddressType(9)
	if _, err := json.Marshal(a); !errors.Is(err, ErrUnknownAddressType) {
		t.Errorf("Marshal(invalid type) error = %v, want ErrUnknownAddressType", err)
	}
}

func TestAddress_IsZero(t *testing.T) {
	var zero Address
	if !zero.IsZero() {
		t.Error("zero-value Address should be zero")
	}
	if (Address{Text: "1abc"}).IsZero() {
		t.Error("address with text should not be zero")
	}
}
