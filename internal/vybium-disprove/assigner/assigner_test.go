package assigner

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/core"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/elements"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/vm"
)

func fq(name string, v uint64) *elements.Fq {
	var x fp.Element
	x.SetUint64(v)
	return elements.NewFq(name).Fill(x)
}

func equalItems(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestDummyAssigner(t *testing.T) {
	t.Run("HashOpening", func(t *testing.T) {
		a := NewDummyAssigner(elements.DefaultRevealSet())
		e := fq("a", 1)

		w, err := a.Witness(e)
		if err != nil {
			t.Fatalf("Witness() error: %v", err)
		}
		want, _ := e.ToHashWitness()
		if !equalItems(w, want) {
			t.Error("opening is not the value digest")
		}

		s, err := a.LockingScript(e)
		if err != nil {
			t.Fatalf("LockingScript() error: %v", err)
		}
		if s.Len() != 0 {
			t.Errorf("locking fragment has %d instructions, want 0", s.Len())
		}
	})

	t.Run("RevealOpening", func(t *testing.T) {
		a := NewDummyAssigner(elements.DefaultRevealSet())
		var x fr.Element
		x.SetUint64(77)
		e := elements.NewFr(elements.Scalar1).Fill(x)

		w, err := a.Witness(e)
		if err != nil {
			t.Fatalf("Witness() error: %v", err)
		}
		if len(w) != e.WitnessSize() {
			t.Fatalf("opening has %d items, want %d", len(w), e.WitnessSize())
		}
		c, ok := a.Lookup(elements.Scalar1)
		if !ok || !c.Reveal {
			t.Error("revealed name not recorded as revealed")
		}
	})

	t.Run("FirstSightWins", func(t *testing.T) {
		a := NewDummyAssigner(elements.RevealSet{})
		first, _ := a.Witness(fq("x", 1))
		second, _ := a.Witness(fq("x", 2))
		if !equalItems(first, second) {
			t.Error("opening changed after the name was committed")
		}
	})

	t.Run("NotFilled", func(t *testing.T) {
		a := NewDummyAssigner(elements.RevealSet{})
		_, err := a.Witness(elements.NewFq("empty"))
		if !errors.Is(err, ErrNotFilled) {
			t.Fatalf("got %v, want ErrNotFilled", err)
		}
		if len(a.Names()) != 0 {
			t.Error("failed commit must not be recorded")
		}
	})

	t.Run("KindConflict", func(t *testing.T) {
		a := NewDummyAssigner(elements.RevealSet{})
		if _, err := a.Witness(fq("x", 1)); err != nil {
			t.Fatal(err)
		}
		var v fr.Element
		_, err := a.LockingScript(elements.NewFr("x").Fill(v))
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("got %v, want ErrConflict", err)
		}
	})

	t.Run("Names", func(t *testing.T) {
		a := NewDummyAssigner(elements.RevealSet{})
		for _, n := range []string{"c", "a", "b", "a"} {
			if _, err := a.Witness(fq(n, 1)); err != nil {
				t.Fatal(err)
			}
		}
		got := a.Names()
		want := []string{"c", "a", "b"}
		if len(got) != len(want) {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("Names() = %v, want %v", got, want)
			}
		}
	})
}

func TestPinnedAssigner(t *testing.T) {
	a := NewPinnedAssigner(elements.RevealSet{})
	e := fq("p", 5)

	lock, err := a.LockingScript(e)
	if err != nil {
		t.Fatalf("LockingScript() error: %v", err)
	}
	opening, err := a.Witness(e)
	if err != nil {
		t.Fatalf("Witness() error: %v", err)
	}

	t.Run("AcceptsOpening", func(t *testing.T) {
		r := vm.Execute(lock, opening)
		if !r.Success {
			t.Fatalf("execution failed: %v", r.Err)
		}
		if !equalItems(r.FinalStack, opening) {
			t.Error("fragment did not leave the opening in place")
		}
		if len(r.AltStack) != 0 {
			t.Errorf("alt stack has %d items", len(r.AltStack))
		}
	})

	t.Run("RejectsTamperedOpening", func(t *testing.T) {
		for i := range opening {
			bad := core.CloneItems(opening)
			bad[i][0] ^= 0x01
			r := vm.Execute(lock, bad)
			if r.Success {
				t.Fatalf("tampered limb %d accepted", i)
			}
			if !errors.Is(r.Err, vm.ErrVerify) {
				t.Errorf("limb %d: got %v, want verify failure", i, r.Err)
			}
		}
	})

	t.Run("RejectsOtherName", func(t *testing.T) {
		other, err := a.Witness(fq("q", 6))
		if err != nil {
			t.Fatal(err)
		}
		if r := vm.Execute(lock, other); r.Success {
			t.Error("opening of another name accepted")
		}
	})
}

func TestConcurrentCommit(t *testing.T) {
	a := NewPinnedAssigner(elements.RevealSet{})
	names := []string{"n0", "n1", "n2", "n3"}

	const workers = 16
	results := make([][][]byte, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i, n := range names {
				// Every worker offers a different value; only one may win per name.
				if _, err := a.LockingScript(fq(n, uint64(w*10+i))); err != nil {
					t.Errorf("LockingScript(%s): %v", n, err)
					return
				}
			}
			out, err := a.Witness(fq(names[0], 0))
			if err != nil {
				t.Errorf("Witness: %v", err)
				return
			}
			results[w] = out
		}(w)
	}
	wg.Wait()

	for w := 1; w < workers; w++ {
		if !equalItems(results[0], results[w]) {
			t.Fatalf("worker %d observed a different opening", w)
		}
	}
	if got := len(a.Names()); got != len(names) {
		t.Errorf("Names() has %d entries, want %d", got, len(names))
	}
}
