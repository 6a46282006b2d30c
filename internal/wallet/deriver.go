package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Klingon-tech/seedsim/internal/log"
	"github.com/Klingon-tech/seedsim/pkg/crypto"
	"github.com/Klingon-tech/seedsim/pkg/types"
)

// DefaultWorkers bounds the per-index fan-out of a range derivation.
const DefaultWorkers = 4

// MaxFindRange caps how many indices Find will scan.
const MaxFindRange = 10000

// SLIP-132 versions for native segwit account public keys.
var (
	VersionZPub = KeyVersion{0x04, 0xb2, 0x47, 0x46}
	VersionVPub = KeyVersion{0x04, 0x5f, 0x1c, 0xf6}
)

// DeriverOption configures a Deriver.
type DeriverOption func(*Deriver)

// WithWorkers sets the number of concurrent per-index derivations.
func WithWorkers(n int) DeriverOption {
	return func(d *Deriver) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithLogger sets the deriver's logger.
func WithLogger(l zerolog.Logger) DeriverOption {
	return func(d *Deriver) {
		d.logger = l
	}
}

// Deriver combines a KeyTree and an AddressEncoder for one network.
// A Deriver without a curve still constructs, but every derivation fails
// with ErrCapabilityUnavailable.
type Deriver struct {
	tree    *KeyTree
	enc     *AddressEncoder
	net     *chaincfg.Params
	workers int
	logger  zerolog.Logger
}

// NewDeriver creates a deriver. A nil network selects mainnet.
func NewDeriver(curve crypto.Curve, net *chaincfg.Params, opts ...DeriverOption) *Deriver {
	if net == nil {
		net = &chaincfg.MainNetParams
	}
	d := &Deriver{
		net:     net,
		workers: DefaultWorkers,
		logger:  log.Wallet,
	}
	if curve != nil {
		d.tree, _ = NewKeyTree(curve)
		d.enc, _ = NewAddressEncoder(curve, net)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Network returns the deriver's network parameters.
func (d *Deriver) Network() *chaincfg.Params {
	return d.net
}

// Available reports whether curve math is available.
func (d *Deriver) Available() bool {
	return d.tree != nil
}

// Encoder returns the address encoder, or nil without a curve.
func (d *Deriver) Encoder() *AddressEncoder {
	return d.enc
}

// AddressesForRange derives the receiving addresses at indices
// [start, start+count) in order.
func (d *Deriver) AddressesForRange(ctx context.Context, seed Seed, typ types.AddressType, start, count uint32) ([]types.Address, error) {
	if !d.Available() {
		return nil, ErrCapabilityUnavailable
	}
	if err := checkRange(start, count); err != nil {
		return nil, err
	}
	chain, err := d.externalChain(seed, typ)
	if err != nil {
		return nil, err
	}
	defer chain.Zero()

	return d.addressesFrom(ctx, chain, typ, 0, start, count)
}

// AccountKey exports the account-level extended public key (account 0):
// xpub/tpub for legacy, zpub/vpub for segwit.
func (d *Deriver) AccountKey(seed Seed, typ types.AddressType) (string, error) {
	if !d.Available() {
		return "", ErrCapabilityUnavailable
	}
	path, err := AccountPath(typ, d.net, 0)
	if err != nil {
		return "", err
	}
	master, err := d.tree.Master(seed)
	if err != nil {
		return "", err
	}
	defer master.Zero()
	acct, err := d.tree.DerivePath(master, path)
	if err != nil {
		return "", err
	}
	defer acct.Zero()
	return d.accountKeyFrom(acct, typ), nil
}

func (d *Deriver) accountKeyFrom(acct *ExtendedKey, typ types.AddressType) string {
	return acct.Neuter().Serialize(d.publicVersion(typ))
}

// WatchRange derives addresses from a serialized account public key without
// any private material. The address type follows the key's version.
func (d *Deriver) WatchRange(ctx context.Context, accountKey string, start, count uint32) ([]types.Address, error) {
	if !d.Available() {
		return nil, ErrCapabilityUnavailable
	}
	if err := checkRange(start, count); err != nil {
		return nil, err
	}
	acct, version, err := d.tree.ParseExtendedKey(accountKey)
	if err != nil {
		return nil, err
	}
	if acct.IsPrivate() {
		acct.Zero()
		return nil, fmt.Errorf("%w: expected a public account key", ErrValidation)
	}
	typ, err := d.typeForVersion(version)
	if err != nil {
		return nil, err
	}
	if acct.Depth() != 3 || !acct.Hardened() {
		return nil, fmt.Errorf("%w: key at depth %d is not an account key", ErrValidation, acct.Depth())
	}

	chain, err := d.tree.Child(acct, ChangeExternal)
	if err != nil {
		return nil, err
	}
	return d.addressesFrom(ctx, chain, typ, acct.ChildIndex()-HardenedOffset, start, count)
}

// Find scans indices [0, limit) of the address type text decodes as. It
// returns the matching address and true, or false if it is not among them.
func (d *Deriver) Find(ctx context.Context, seed Seed, text string, limit uint32) (types.Address, bool, error) {
	if !d.Available() {
		return types.Address{}, false, ErrCapabilityUnavailable
	}
	if limit == 0 || limit > MaxFindRange {
		return types.Address{}, false, fmt.Errorf("%w: find limit %d not in 1..%d", ErrInvalidCount, limit, MaxFindRange)
	}
	typ, _, err := d.enc.Decode(text)
	if err != nil {
		return types.Address{}, false, err
	}
	// Derived addresses are trimmed and bech32 ones lowercase.
	want := strings.TrimSpace(text)
	if typ == types.AddressSegwit {
		want = strings.ToLower(want)
	}

	chain, err := d.externalChain(seed, typ)
	if err != nil {
		return types.Address{}, false, err
	}
	defer chain.Zero()

	const batch = 100
	for start := uint32(0); start < limit; start += batch {
		n := uint32(batch)
		if limit-start < n {
			n = limit - start
		}
		addrs, err := d.addressesFrom(ctx, chain, typ, 0, start, n)
		if err != nil {
			return types.Address{}, false, err
		}
		for _, a := range addrs {
			if a.Text == want {
				return a, true, nil
			}
		}
	}
	return types.Address{}, false, nil
}

// externalChain derives m/purpose'/coin'/0'/0 from a seed.
func (d *Deriver) externalChain(seed Seed, typ types.AddressType) (*ExtendedKey, error) {
	path, err := ExternalChainPath(typ, d.net)
	if err != nil {
		return nil, err
	}
	master, err := d.tree.Master(seed)
	if err != nil {
		return nil, err
	}
	defer master.Zero()
	return d.tree.DerivePath(master, path)
}

// addressAt derives the address at index below the external chain node.
func (d *Deriver) addressAt(chain *ExtendedKey, typ types.AddressType, account, index uint32) (types.Address, error) {
	child, err := d.tree.Child(chain, index)
	if err != nil {
		return types.Address{}, err
	}
	defer child.Zero()

	text, err := d.enc.Encode(child.pub, typ)
	if err != nil {
		return types.Address{}, err
	}
	acct, err := AccountPath(typ, d.net, account)
	if err != nil {
		return types.Address{}, err
	}
	return types.Address{
		Text:  text,
		Type:  typ,
		Path:  acct.Child(ChangeExternal).Child(index).String(),
		Index: index,
	}, nil
}

// addressesFrom derives [start, start+count) concurrently. Results are
// placed by index so the output order is deterministic.
func (d *Deriver) addressesFrom(ctx context.Context, chain *ExtendedKey, typ types.AddressType, account, start, count uint32) ([]types.Address, error) {
	out := make([]types.Address, count)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i := uint32(0); i < count; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			addr, err := d.addressAt(chain, typ, account, start+i)
			if err != nil {
				return err
			}
			out[i] = addr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.logger.Debug().
		Str("type", typ.String()).
		Uint32("start", start).
		Uint32("count", count).
		Msg("Derived address range")
	return out, nil
}

func (d *Deriver) isMainNet() bool {
	return d.net.Net == chaincfg.MainNetParams.Net
}

// publicVersion returns the account public key version for typ.
func (d *Deriver) publicVersion(typ types.AddressType) KeyVersion {
	switch {
	case typ == types.AddressSegwit && d.isMainNet():
		return VersionZPub
	case typ == types.AddressSegwit:
		return VersionVPub
	default:
		return KeyVersion(d.net.HDPublicKeyID)
	}
}

// typeForVersion maps a public key version on this network to its address type.
func (d *Deriver) typeForVersion(v KeyVersion) (types.AddressType, error) {
	switch v {
	case d.publicVersion(types.AddressSegwit):
		return types.AddressSegwit, nil
	case d.publicVersion(types.AddressLegacy):
		return types.AddressLegacy, nil
	default:
		return 0, fmt.Errorf("%w: key version %x is not a %s account public key", ErrValidation, v[:], d.net.Name)
	}
}

// checkRange validates a derivation range of non-hardened indices.
func checkRange(start, count uint32) error {
	if count == 0 {
		return fmt.Errorf("%w: count must be at least 1", ErrInvalidCount)
	}
	if uint64(start)+uint64(count) > uint64(HardenedOffset) {
		return fmt.Errorf("%w: range %d+%d exceeds non-hardened indices", ErrInvalidCount, start, count)
	}
	return nil
}
