package wallet

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Klingon-tech/seedsim/pkg/types"
)

func testFlow(opts ...CodecOption) *Flow {
	return NewFlow(NewCodec(nil, opts...), testDeriver())
}

func TestFlow_CoinTosses(t *testing.T) {
	f := testFlow()

	if _, err := f.AppendEntropyBit(0); !errors.Is(err, ErrNoEntropy) {
		t.Fatalf("AppendEntropyBit() before Begin error = %v, want ErrNoEntropy", err)
	}
	if _, err := f.Begin(100); !errors.Is(err, ErrEntropyLength) {
		t.Fatalf("Begin(100) error = %v, want ErrEntropyLength", err)
	}
	if _, err := f.Begin(128); err != nil {
		t.Fatalf("Begin() error: %v", err)
	}
	if _, err := f.Finalize(); !errors.Is(err, ErrBufferIncomplete) {
		t.Fatalf("Finalize() on empty buffer error = %v, want ErrBufferIncomplete", err)
	}

	for i := 0; i < 128; i++ {
		if _, err := f.AppendEntropyBit(0); err != nil {
			t.Fatalf("AppendEntropyBit() #%d error: %v", i, err)
		}
	}
	if _, err := f.AppendEntropyBit(1); !errors.Is(err, ErrBufferFull) {
		t.Fatalf("AppendEntropyBit() past target error = %v, want ErrBufferFull", err)
	}

	m, err := f.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	if m.String() != abandonAbout {
		t.Errorf("Finalize() = %q", m.String())
	}
	if _, ok := f.EntropyState(); ok {
		t.Error("entropy buffer should be consumed by Finalize")
	}
	if f.Mnemonic().String() != abandonAbout {
		t.Error("Mnemonic() should return the finalized mnemonic")
	}
}

func TestFlow_PasteBits(t *testing.T) {
	f := testFlow()
	f.Begin(256)
	state, err := f.AppendEntropyBits(strings.Repeat("1", 256))
	if err != nil {
		t.Fatalf("AppendEntropyBits() error: %v", err)
	}
	if !state.Complete {
		t.Fatal("buffer should be complete")
	}
	m, _ := f.Finalize()
	if m.String() != strings.Repeat("zoo ", 23)+"vote" {
		t.Errorf("Finalize() = %q", m.String())
	}
}

func TestFlow_ImportAndUnlock(t *testing.T) {
	f := testFlow()

	if _, err := f.Unlock(context.Background(), "", types.AddressSegwit); !errors.Is(err, ErrNoMnemonic) {
		t.Fatalf("Unlock() without mnemonic error = %v, want ErrNoMnemonic", err)
	}

	if _, err := f.Import(abandonAbout); err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	sess, err := f.Unlock(context.Background(), "", types.AddressSegwit)
	if err != nil {
		t.Fatalf("Unlock() error: %v", err)
	}
	got, err := sess.More(context.Background(), 1)
	if err != nil {
		t.Fatalf("More() error: %v", err)
	}
	if got[0].Text != bip84Index0Addr {
		t.Errorf("first address = %s, want %s", got[0].Text, bip84Index0Addr)
	}

	if !f.Mnemonic().IsZero() {
		t.Error("mnemonic should be released once the session owns the seed")
	}
	active, err := f.Session()
	if err != nil || active != sess {
		t.Errorf("Session() = %v, %v", active, err)
	}
}

func TestFlow_ImportChecksum(t *testing.T) {
	bad := strings.TrimSpace(strings.Repeat("abandon ", 12))

	if _, err := testFlow().Import(bad); !errors.Is(err, ErrChecksum) {
		t.Errorf("strict Import() error = %v, want ErrChecksum", err)
	}
	if _, err := testFlow(WithChecksumVerification(false)).Import(bad); err != nil {
		t.Errorf("lenient Import() error: %v", err)
	}
	if _, err := testFlow().Import("abandon abandon"); !errors.Is(err, ErrWordCount) {
		t.Errorf("Import(2 words) error = %v, want ErrWordCount", err)
	}
}

func TestFlow_UseRandomEntropy(t *testing.T) {
	f := testFlow()
	m, err := f.UseRandomEntropy(256)
	if err != nil {
		t.Fatalf("UseRandomEntropy() error: %v", err)
	}
	if m.Len() != 24 {
		t.Errorf("random mnemonic has %d words, want 24", m.Len())
	}
	if _, err := f.Codec().Parse(m.String()); err != nil {
		t.Errorf("random mnemonic should parse: %v", err)
	}
}

func TestFlow_Restart(t *testing.T) {
	f := testFlow()
	f.Import(abandonAbout)
	sess, err := f.Unlock(context.Background(), "", types.AddressSegwit)
	if err != nil {
		t.Fatalf("Unlock() error: %v", err)
	}
	f.Begin(128)
	f.AppendEntropyBits("0101")

	f.Restart()

	if _, err := f.Session(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Session() after Restart error = %v, want ErrNoSession", err)
	}
	if _, err := sess.More(context.Background(), 1); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("old session More() error = %v, want ErrSessionClosed", err)
	}
	if _, ok := f.EntropyState(); ok {
		t.Error("Restart() should clear the entropy buffer")
	}
	if !f.Mnemonic().IsZero() {
		t.Error("Restart() should clear the mnemonic")
	}
}

func TestFlow_RestartDuringStretch(t *testing.T) {
	f := testFlow()
	f.Import(abandonAbout)

	started := make(chan struct{})
	release := make(chan struct{})
	f.stretch = func(ctx context.Context, m Mnemonic, pass string) *PendingSeed {
		close(started)
		p := &PendingSeed{done: make(chan struct{})}
		go func() {
			defer close(p.done)
			<-release
			p.seed, p.err = DeriveSeed(m, pass)
		}()
		return p
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.Unlock(context.Background(), "", types.AddressSegwit)
		done <- err
	}()

	<-started
	if _, err := f.Unlock(context.Background(), "", types.AddressSegwit); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent Unlock() error = %v, want ErrBusy", err)
	}

	f.Restart()
	close(release)

	select {
	case err := <-done:
		if !errors.Is(err, ErrRestarted) {
			t.Errorf("Unlock() error = %v, want ErrRestarted", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Unlock() did not return after Restart")
	}
	if _, err := f.Session(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Session() error = %v, want ErrNoSession", err)
	}
}

func TestFlow_UnlockCancelled(t *testing.T) {
	f := testFlow()
	f.Import(abandonAbout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Unlock(ctx, "", types.AddressSegwit); !errors.Is(err, context.Canceled) {
		t.Fatalf("Unlock(cancelled) error = %v, want context.Canceled", err)
	}

	// The flow is usable again.
	if _, err := f.Unlock(context.Background(), "", types.AddressSegwit); err != nil {
		t.Errorf("Unlock() after cancel error: %v", err)
	}
}
