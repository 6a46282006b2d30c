package wallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip32"

	"github.com/Klingon-tech/seedsim/pkg/types"
)

// HardenedOffset is added to an index to select hardened derivation.
const HardenedOffset = bip32.FirstHardenedChild

// Derivation path constants.
// Full path: m/purpose'/coin'/account'/change/index
const (
	// PurposeLegacy is the BIP-44 purpose for P2PKH addresses.
	PurposeLegacy = 44

	// PurposeSegwit is the BIP-84 purpose for native segwit addresses.
	PurposeSegwit = 84

	// ChangeExternal is the receiving chain. Change addresses are not
	// derived.
	ChangeExternal = 0
)

// Path is a sequence of child indices starting at the master key.
type Path []uint32

// ParsePath parses paths like "m/84'/0'/0'/0/5". Hardened components may be
// marked with ', h or H. Every component must fit below 2^31 before the
// hardened offset is applied.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "/")
	if len(parts) == 0 || (parts[0] != "m" && parts[0] != "M") {
		return nil, fmt.Errorf("%w: %q must start with m", ErrInvalidPath, s)
	}

	path := make(Path, 0, len(parts)-1)
	for i, part := range parts[1:] {
		hardened := false
		if n := len(part); n > 0 && (part[n-1] == '\'' || part[n-1] == 'h' || part[n-1] == 'H') {
			hardened = true
			part = part[:n-1]
		}
		if part == "" || part[0] == '+' || part[0] == '-' {
			return nil, fmt.Errorf("%w: component %d of %q", ErrInvalidPath, i+1, s)
		}
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: component %d of %q: %v", ErrInvalidPath, i+1, s, err)
		}
		if v >= uint64(HardenedOffset) {
			return nil, fmt.Errorf("%w: component %d of %q out of range", ErrInvalidPath, i+1, s)
		}
		idx := uint32(v)
		if hardened {
			idx += HardenedOffset
		}
		path = append(path, idx)
	}
	return path, nil
}

// String formats the path with ' as the hardened marker.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("m")
	for _, idx := range p {
		sb.WriteByte('/')
		if idx >= HardenedOffset {
			sb.WriteString(strconv.FormatUint(uint64(idx-HardenedOffset), 10))
			sb.WriteByte('\'')
		} else {
			sb.WriteString(strconv.FormatUint(uint64(idx), 10))
		}
	}
	return sb.String()
}

// Child returns a new path with idx appended.
func (p Path) Child(idx uint32) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, idx)
}

// Purpose returns the path purpose for an address type.
func Purpose(typ types.AddressType) (uint32, error) {
	switch typ {
	case types.AddressLegacy:
		return PurposeLegacy, nil
	case types.AddressSegwit:
		return PurposeSegwit, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrAddressType, typ)
	}
}

// AccountPath returns m/purpose'/coin'/account' for the network.
func AccountPath(typ types.AddressType, net *chaincfg.Params, account uint32) (Path, error) {
	purpose, err := Purpose(typ)
	if err != nil {
		return nil, err
	}
	if account >= HardenedOffset {
		return nil, fmt.Errorf("%w: account %d out of range", ErrInvalidPath, account)
	}
	return Path{
		HardenedOffset + purpose,
		HardenedOffset + net.HDCoinType,
		HardenedOffset + account,
	}, nil
}

// ExternalChainPath returns m/purpose'/coin'/0'/0, the parent of every
// receiving address.
func ExternalChainPath(typ types.AddressType, net *chaincfg.Params) (Path, error) {
	acct, err := AccountPath(typ, net, 0)
	if err != nil {
		return nil, err
	}
	return acct.Child(ChangeExternal), nil
}

// AddressPath returns m/purpose'/coin'/0'/0/index.
func AddressPath(typ types.AddressType, net *chaincfg.Params, index uint32) (Path, error) {
	if index >= HardenedOffset {
		return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidPath, index)
	}
	chain, err := ExternalChainPath(typ, net)
	if err != nil {
		return nil, err
	}
	return chain.Child(index), nil
}
