package segment

import (
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/script"
)

// EqualVerify expects two runs of n items, a then b, on top of the stack and
// aborts unless a[i] == b[i] for every i. All 2n items are consumed.
func EqualVerify(n int) *script.Script {
	s := script.New()
	for i := 0; i < n; i++ {
		s.AddInt(int64(n - i)).
			AddOp(script.OP_ROLL).
			AddOp(script.OP_EQUALVERIFY)
	}
	return s
}

// NotEqual expects two runs of n items like EqualVerify, but never aborts:
// it leaves true if any pair differs and false if all pairs match.
func NotEqual(n int) *script.Script {
	if n == 0 {
		return script.New().AddOp(script.OP_0)
	}

	s := script.New()
	for i := 0; i < n; i++ {
		s.AddInt(int64(n - i)).
			AddOp(script.OP_ROLL).
			AddOp(script.OP_EQUAL).
			AddOp(script.OP_TOALTSTACK)
	}
	s.AddOps(script.OP_FROMALTSTACK, n)
	s.AddOps(script.OP_BOOLAND, n-1)
	return s.AddOp(script.OP_NOT)
}

// HashVar replaces the top n items with their digest limbs
func HashVar(n int) *script.Script {
	return script.New().AddInt(int64(n)).AddOp(script.OP_HASHN)
}
