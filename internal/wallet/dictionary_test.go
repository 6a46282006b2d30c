package wallet

import (
	"errors"
	"fmt"
	"testing"
)

func TestEnglish(t *testing.T) {
	d := English()
	if d != English() {
		t.Error("English() should return the same dictionary")
	}
	if d.Word(0) != "abandon" || d.Word(3) != "about" || d.Word(2047) != "zoo" {
		t.Errorf("unexpected words: %s %s %s", d.Word(0), d.Word(3), d.Word(2047))
	}
	if i, ok := d.Index("zoo"); !ok || i != 2047 {
		t.Errorf("Index(zoo) = %d, %v", i, ok)
	}
	if d.Contains("bitcoin") {
		t.Error("bitcoin should not be a dictionary word")
	}
}

func TestDictionary_WithPrefix(t *testing.T) {
	d := English()

	got := d.WithPrefix("aba", 0)
	if len(got) != 1 || got[0] != "abandon" {
		t.Errorf("WithPrefix(aba) = %v", got)
	}

	got = d.WithPrefix("ab", 3)
	if len(got) != 3 || got[0] != "abandon" {
		t.Errorf("WithPrefix(ab, 3) = %v", got)
	}

	if got := d.WithPrefix("", 10); got != nil {
		t.Errorf("WithPrefix(\"\") = %v, want nil", got)
	}
	if got := d.WithPrefix("qqq", 10); len(got) != 0 {
		t.Errorf("WithPrefix(qqq) = %v, want empty", got)
	}
}

func TestNewDictionary_Invalid(t *testing.T) {
	words := func(mod func([]string)) []string {
		w := make([]string, DictionarySize)
		for i := range w {
			w[i] = fmt.Sprintf("w%04d", i)
		}
		if mod != nil {
			mod(w)
		}
		return w
	}

	if _, err := NewDictionary(words(nil)); err != nil {
		t.Fatalf("NewDictionary(valid) error: %v", err)
	}

	tests := []struct {
		name  string
		words []string
	}{
		{"short", words(nil)[:2047]},
		{"duplicate", words(func(w []string) { w[5] = w[4] })},
		{"empty word", words(func(w []string) { w[0] = "" })},
		{"uppercase", words(func(w []string) { w[0] = "Abc" })},
		{"space", words(func(w []string) { w[0] = "a b" })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDictionary(tt.words); !errors.Is(err, ErrInvalidDict) {
				t.Errorf("NewDictionary() error = %v, want ErrInvalidDict", err)
			}
		})
	}
}
