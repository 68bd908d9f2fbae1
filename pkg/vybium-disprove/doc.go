// Package vybiumdisprove compiles a chunked pairing verifier into disprove leaves
// for an optimistic fraud-proof protocol on a Bitcoin-style stack machine.
//
// An operator computes the verifier off-chain and commits to every intermediate
// value by name. The verifier is split into segments; each segment becomes a
// leaf script plus the witness that satisfies it. Executing a leaf re-checks
// the commitments of its inputs, recomputes its fragment and compares the
// results with the committed ones. A consistent leaf leaves the no-fault
// marker (false); an inconsistent one leaves the fault marker (true), which a
// watcher can publish to slash the operator.
//
// # Features
//
// - Segment builder with ordered parameters, results and hints
// - Five-phase leaf compiler with the aggregate fault gadget
// - Witness builder laid out to match the compiler exactly
// - BN254 value kinds (Fr, Fq, Fq2, Fq6, Fq12, G1, G2) via gnark-crypto
// - Direct-reveal set for proof components compared by raw value
// - Reference interpreter with OP_CAT and a variable-length hash opcode
// - Concurrent batch compilation with chain consistency checks
// - SQLite leaf store
//
// # Quick Start
//
// Compiling and checking one segment:
//
//	d, err := vybiumdisprove.NewDisprover(vybiumdisprove.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	var v fp.Element
//	v.SetUint64(42)
//	a := vybiumdisprove.NewFq("a").Fill(v)
//
//	seg := vybiumdisprove.NewSegment("copy", nil).
//		AddParameter(a).
//		AddResult(a).
//		Build()
//
//	leaves, err := d.Compile(ctx, []*vybiumdisprove.Segment{seg})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	report := d.Check(leaves[0])
//	fmt.Println(report.Outcome) // no-fault
//
// # Witness Layout
//
// For parameters p0, p1 and results r0, r1 the witness is, bottom first:
//
//	hints.., p0.., p1.., open(p1).., open(p0).., open(r0).., open(r1)..
//
// Reordering parameters or results changes the leaf; a witness built for one
// order is rejected by a script compiled for another.
//
// # Architecture
//
// - pkg/vybium-disprove/: Public API (this package)
// - internal/vybium-disprove/: Private implementation (not importable)
//
// Internal packages: script (opcodes and bytecode), vm (reference interpreter),
// core (hash primitive and limbs), elements (value kinds), assigner
// (commitment capabilities), hints, segment (compiler and witness builder),
// chunker (batches and outcomes), store (SQLite), utils (configuration).
package vybiumdisprove
