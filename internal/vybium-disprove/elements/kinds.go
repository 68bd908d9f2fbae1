package elements

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/core"
)

// encodeFp serializes base field elements big-endian, 8 limbs each
func encodeFp(vs ...fp.Element) [][]byte {
	out := make([][]byte, 0, len(vs)*fieldLimbs)
	for i := range vs {
		b := vs[i].Bytes()
		out = append(out, core.SplitLimbs(b[:])...)
	}
	return out
}

// decodeFp parses canonical base field elements from limbs
func decodeFp(items [][]byte) ([]fp.Element, error) {
	raw, err := core.JoinLimbs(items)
	if err != nil {
		return nil, err
	}
	out := make([]fp.Element, len(raw)/fp.Bytes)
	for i := range out {
		if err := out[i].SetBytesCanonical(raw[i*fp.Bytes : (i+1)*fp.Bytes]); err != nil {
			return nil, fmt.Errorf("field element %d: %w", i, err)
		}
	}
	return out, nil
}

func (e *element) fields() ([]fp.Element, error) {
	if e.data == nil {
		return nil, fmt.Errorf("%s %q is not filled", e.kind, e.id)
	}
	return decodeFp(e.data)
}

// ============================================================================
// Fr: scalar field element
// ============================================================================

// Fr is a scalar of the BN254 scalar field
type Fr struct{ element }

// NewFr creates an unfilled scalar named id
func NewFr(id string) *Fr {
	return &Fr{element{id: id, kind: KindFr}}
}

// Fill sets the value
func (e *Fr) Fill(v fr.Element) *Fr {
	b := v.Bytes()
	e.data = core.SplitLimbs(b[:])
	return e
}

// Value decodes the value
func (e *Fr) Value() (fr.Element, error) {
	var v fr.Element
	if e.data == nil {
		return v, fmt.Errorf("%s %q is not filled", e.kind, e.id)
	}
	raw, err := core.JoinLimbs(e.data)
	if err != nil {
		return v, err
	}
	err = v.SetBytesCanonical(raw)
	return v, err
}

// SetWitness fills the element from serialized items
func (e *Fr) SetWitness(items [][]byte) error { return e.setItems(items) }

func (e *Fr) Clone() Element { return &Fr{e.snapshot()} }

// ============================================================================
// Fq: base field element
// ============================================================================

// Fq is an element of the BN254 base field
type Fq struct{ element }

// NewFq creates an unfilled base field element named id
func NewFq(id string) *Fq {
	return &Fq{element{id: id, kind: KindFq}}
}

// Fill sets the value
func (e *Fq) Fill(v fp.Element) *Fq {
	e.data = encodeFp(v)
	return e
}

// Value decodes the value
func (e *Fq) Value() (fp.Element, error) {
	fs, err := e.fields()
	if err != nil {
		return fp.Element{}, err
	}
	return fs[0], nil
}

// SetWitness fills the element from serialized items
func (e *Fq) SetWitness(items [][]byte) error { return e.setItems(items) }

func (e *Fq) Clone() Element { return &Fq{e.snapshot()} }

// ============================================================================
// Fq2: quadratic extension element, A0 + A1·u
// ============================================================================

// Fq2 is an element of the quadratic extension
type Fq2 struct{ element }

// NewFq2 creates an unfilled extension element named id
func NewFq2(id string) *Fq2 {
	return &Fq2{element{id: id, kind: KindFq2}}
}

// Fill sets the coefficients (A0, A1)
func (e *Fq2) Fill(v [2]fp.Element) *Fq2 {
	e.data = encodeFp(v[:]...)
	return e
}

// Value decodes the coefficients
func (e *Fq2) Value() ([2]fp.Element, error) {
	var v [2]fp.Element
	fs, err := e.fields()
	if err != nil {
		return v, err
	}
	copy(v[:], fs)
	return v, nil
}

// SetWitness fills the element from serialized items
func (e *Fq2) SetWitness(items [][]byte) error { return e.setItems(items) }

func (e *Fq2) Clone() Element { return &Fq2{e.snapshot()} }

// ============================================================================
// Fq6: sextic extension element
// ============================================================================

// Fq6 is an element of the sextic extension, coefficients ordered
// B0.A0, B0.A1, B1.A0, B1.A1, B2.A0, B2.A1
type Fq6 struct{ element }

// NewFq6 creates an unfilled extension element named id
func NewFq6(id string) *Fq6 {
	return &Fq6{element{id: id, kind: KindFq6}}
}

// Fill sets the coefficients
func (e *Fq6) Fill(v [6]fp.Element) *Fq6 {
	e.data = encodeFp(v[:]...)
	return e
}

// FillFromGT sets the value to the lower half (C0) of a target group element
func (e *Fq6) FillFromGT(gt bn254.GT) *Fq6 {
	return e.Fill([6]fp.Element{
		gt.C0.B0.A0, gt.C0.B0.A1,
		gt.C0.B1.A0, gt.C0.B1.A1,
		gt.C0.B2.A0, gt.C0.B2.A1,
	})
}

// Value decodes the coefficients
func (e *Fq6) Value() ([6]fp.Element, error) {
	var v [6]fp.Element
	fs, err := e.fields()
	if err != nil {
		return v, err
	}
	copy(v[:], fs)
	return v, nil
}

// SetWitness fills the element from serialized items
func (e *Fq6) SetWitness(items [][]byte) error { return e.setItems(items) }

func (e *Fq6) Clone() Element { return &Fq6{e.snapshot()} }

// ============================================================================
// Fq12: target group element
// ============================================================================

// Fq12 is an element of the degree-12 extension (the pairing target group)
type Fq12 struct{ element }

// NewFq12 creates an unfilled target group element named id
func NewFq12(id string) *Fq12 {
	return &Fq12{element{id: id, kind: KindFq12}}
}

// Fill sets the value
func (e *Fq12) Fill(v bn254.GT) *Fq12 {
	e.data = encodeFp(
		v.C0.B0.A0, v.C0.B0.A1, v.C0.B1.A0, v.C0.B1.A1, v.C0.B2.A0, v.C0.B2.A1,
		v.C1.B0.A0, v.C1.B0.A1, v.C1.B1.A0, v.C1.B1.A1, v.C1.B2.A0, v.C1.B2.A1,
	)
	return e
}

// Value decodes the value
func (e *Fq12) Value() (bn254.GT, error) {
	var v bn254.GT
	fs, err := e.fields()
	if err != nil {
		return v, err
	}
	v.C0.B0.A0, v.C0.B0.A1 = fs[0], fs[1]
	v.C0.B1.A0, v.C0.B1.A1 = fs[2], fs[3]
	v.C0.B2.A0, v.C0.B2.A1 = fs[4], fs[5]
	v.C1.B0.A0, v.C1.B0.A1 = fs[6], fs[7]
	v.C1.B1.A0, v.C1.B1.A1 = fs[8], fs[9]
	v.C1.B2.A0, v.C1.B2.A1 = fs[10], fs[11]
	return v, nil
}

// SetWitness fills the element from serialized items
func (e *Fq12) SetWitness(items [][]byte) error { return e.setItems(items) }

func (e *Fq12) Clone() Element { return &Fq12{e.snapshot()} }

// ============================================================================
// G1Point / G2Point: affine curve points
// ============================================================================

// G1Point is an affine point of the BN254 G1 group, serialized X then Y
type G1Point struct{ element }

// NewG1Point creates an unfilled G1 point named id
func NewG1Point(id string) *G1Point {
	return &G1Point{element{id: id, kind: KindG1Point}}
}

// Fill sets the point
func (e *G1Point) Fill(p bn254.G1Affine) *G1Point {
	e.data = encodeFp(p.X, p.Y)
	return e
}

// Value decodes the point
func (e *G1Point) Value() (bn254.G1Affine, error) {
	var p bn254.G1Affine
	fs, err := e.fields()
	if err != nil {
		return p, err
	}
	p.X, p.Y = fs[0], fs[1]
	return p, nil
}

// SetWitness fills the element from serialized items
func (e *G1Point) SetWitness(items [][]byte) error { return e.setItems(items) }

func (e *G1Point) Clone() Element { return &G1Point{e.snapshot()} }

// G2Point is an affine point of the BN254 G2 group, serialized X.A0, X.A1, Y.A0, Y.A1
type G2Point struct{ element }

// NewG2Point creates an unfilled G2 point named id
func NewG2Point(id string) *G2Point {
	return &G2Point{element{id: id, kind: KindG2Point}}
}

// Fill sets the point
func (e *G2Point) Fill(p bn254.G2Affine) *G2Point {
	e.data = encodeFp(p.X.A0, p.X.A1, p.Y.A0, p.Y.A1)
	return e
}

// Value decodes the point
func (e *G2Point) Value() (bn254.G2Affine, error) {
	var p bn254.G2Affine
	fs, err := e.fields()
	if err != nil {
		return p, err
	}
	p.X.A0, p.X.A1, p.Y.A0, p.Y.A1 = fs[0], fs[1], fs[2], fs[3]
	return p, nil
}

// SetWitness fills the element from serialized items
func (e *G2Point) SetWitness(items [][]byte) error { return e.setItems(items) }

func (e *G2Point) Clone() Element { return &G2Point{e.snapshot()} }
