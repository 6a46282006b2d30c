package wallet

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tyler-smith/go-bip39/wordlists"
)

// DictionarySize is the number of words in a mnemonic dictionary (2^11).
const DictionarySize = 2048

// Dictionary is an immutable ordered word list. Index i corresponds to the
// 11-bit group value i.
type Dictionary struct {
	words []string
	index map[string]int
}

var (
	englishOnce sync.Once
	english     *Dictionary
)

// English returns the standard BIP-39 English dictionary. It is loaded once
// and shared read-only.
func English() *Dictionary {
	englishOnce.Do(func() {
		d, err := NewDictionary(wordlists.English)
		if err != nil {
			panic(fmt.Sprintf("wallet: english word list: %v", err))
		}
		english = d
	})
	return english
}

// NewDictionary validates and indexes a word list: exactly 2048 unique,
// non-empty, lowercase words.
func NewDictionary(words []string) (*Dictionary, error) {
	if len(words) != DictionarySize {
		return nil, fmt.Errorf("%w: %d words, want %d", ErrInvalidDict, len(words), DictionarySize)
	}
	d := &Dictionary{
		words: make([]string, len(words)),
		index: make(map[string]int, len(words)),
	}
	for i, w := range words {
		if w == "" || w != strings.ToLower(w) || strings.ContainsAny(w, " \t\r\n") {
			return nil, fmt.Errorf("%w: bad word %q at %d", ErrInvalidDict, w, i)
		}
		if _, dup := d.index[w]; dup {
			return nil, fmt.Errorf("%w: duplicate word %q", ErrInvalidDict, w)
		}
		d.words[i] = w
		d.index[w] = i
	}
	return d, nil
}

// Word returns the word at index i (0 <= i < 2048).
func (d *Dictionary) Word(i int) string {
	return d.words[i]
}

// Index returns the index of word, or false if it is not in the dictionary.
func (d *Dictionary) Index(word string) (int, bool) {
	i, ok := d.index[word]
	return i, ok
}

// Contains reports whether word is in the dictionary.
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.index[word]
	return ok
}

// WithPrefix returns up to limit words starting with prefix, in dictionary
// order. A limit <= 0 means no limit.
func (d *Dictionary) WithPrefix(prefix string, limit int) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil
	}
	var out []string
	for _, w := range d.words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}
