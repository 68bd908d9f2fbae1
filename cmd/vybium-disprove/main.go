// Command vybium-disprove proves a toy Groth16 statement on BN254, chunks a
// verifier transcript over the proof into segments and compiles every
// segment into a disprove leaf. Each leaf is executed and classified; the
// batch can be stored in SQLite and is printed as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/logger"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/vybium/vybium-disprove/internal/vybium-disprove/hints"
	"github.com/vybium/vybium-disprove/internal/vybium-disprove/script"
	vybiumdisprove "github.com/vybium/vybium-disprove/pkg/vybium-disprove"
)

// squareCircuit proves knowledge of X such that X*X == Y
type squareCircuit struct {
	X frontend.Variable
	Y frontend.Variable `gnark:",public"`
}

func (c *squareCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(api.Mul(c.X, c.X), c.Y)
	return nil
}

type leafOutput struct {
	Index       int             `json:"index"`
	Name        string          `json:"name"`
	Terminal    bool            `json:"terminal"`
	Outcome     string          `json:"outcome"`
	Cycles      uint64          `json:"cycles"`
	ScriptSize  int             `json:"script_size"`
	WitnessSize int             `json:"witness_size"`
	Fingerprint hexutil.Uint64  `json:"fingerprint"`
	Error       string          `json:"error,omitempty"`
	Script      hexutil.Bytes   `json:"script,omitempty"`
	Witness     []hexutil.Bytes `json:"witness,omitempty"`
}

type batchOutput struct {
	BatchID string       `json:"batch_id,omitempty"`
	Label   string       `json:"label"`
	Public  uint64       `json:"public_input"`
	Leaves  []leafOutput `json:"leaves"`
	Faults  []int        `json:"faults"`
}

func main() {
	var (
		dbPath  = flag.String("db", "", "SQLite file to store the batch in (empty: do not store)")
		label   = flag.String("label", "groth16-square", "batch label")
		secret  = flag.Uint64("x", 3, "secret witness of the toy circuit")
		workers = flag.Int("workers", 0, "compilation workers (0: one per CPU)")
		gadget  = flag.Bool("terminal-gadget", false, "append the fault gadget to terminal leaves")
		pinned  = flag.Bool("pinned", false, "bind every committed name inside its locking fragment")
		tamper  = flag.Bool("tamper", false, "commit a wrong value for an intermediate to produce a fault")
		dump    = flag.Bool("dump", false, "include scripts and witnesses in the output")
		outPath = flag.String("out", "", "write JSON here instead of stdout")
		verbose = flag.Bool("v", false, "debug logging")
		timeout = flag.Duration("timeout", 5*time.Minute, "overall deadline")
	)
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger.Set(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger())
	log := logger.Logger().With().Str("label", *label).Logger()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	proof, public, err := proveSquare(*secret)
	if err != nil {
		fatal("groth16", err)
	}
	log.Info().Uint64("public", public).Msg("proof verified")

	cfg := vybiumdisprove.DefaultConfig().WithTerminalGadget(*gadget)
	if *workers > 0 {
		cfg = cfg.WithWorkers(*workers)
	}
	opts := []vybiumdisprove.Option{vybiumdisprove.WithLogger(log)}
	if *pinned {
		opts = append(opts, vybiumdisprove.WithPinnedCommitments())
	}
	d, err := vybiumdisprove.NewDisprover(cfg, opts...)
	if err != nil {
		fatal("configuration", err)
	}

	segs, err := transcript(proof, public)
	if err != nil {
		fatal("transcript", err)
	}

	if *tamper {
		// The operator commits to a point that the swap leaf does not produce.
		wrong := vybiumdisprove.NewG1Point("c_swapped").Fill(proof.Ar)
		if _, err := d.Assigner().LockingScript(wrong); err != nil {
			fatal("tamper", err)
		}
		log.Warn().Str("name", "c_swapped").Msg("committed a wrong intermediate")
	}

	leaves, err := d.Compile(ctx, segs)
	if err != nil {
		fatal("compile", err)
	}

	bar := progressbar.NewOptions(len(leaves),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("checking leaves"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	reports := checkLeaves(d, leaves, bar, log)

	out := batchOutput{Label: *label, Public: public, Faults: []int{}}
	for i, leaf := range leaves {
		r := reports[i]
		lo := leafOutput{
			Index:       leaf.Index,
			Name:        leaf.Name,
			Terminal:    leaf.Terminal,
			Outcome:     r.Outcome.String(),
			Cycles:      r.Cycles,
			ScriptSize:  len(leaf.Script),
			WitnessSize: len(leaf.Witness),
			Fingerprint: hexutil.Uint64(leaf.Fingerprint),
		}
		if r.Err != nil {
			lo.Error = r.Err.Error()
		}
		if *dump {
			lo.Script = leaf.Script
			for _, item := range leaf.Witness {
				lo.Witness = append(lo.Witness, item)
			}
		}
		if r.Outcome == vybiumdisprove.OutcomeFault {
			out.Faults = append(out.Faults, leaf.Index)
		}
		out.Leaves = append(out.Leaves, lo)
	}

	if *dbPath != "" {
		out.BatchID, err = save(*dbPath, *label, d.Config(), leaves, reports)
		if err != nil {
			fatal("store", err)
		}
		log.Info().Str("batch", out.BatchID).Str("db", *dbPath).Msg("batch stored")
	}

	if err := write(*outPath, out); err != nil {
		fatal("output", err)
	}
	if len(out.Faults) > 0 {
		log.Warn().Ints("leaves", out.Faults).Msg("fault markers found")
	}
}

// checkLeaves executes every leaf in order, advancing bar once per leaf
func checkLeaves(d *vybiumdisprove.Disprover, leaves []vybiumdisprove.Leaf, bar *progressbar.ProgressBar, log zerolog.Logger) []vybiumdisprove.Report {
	reports := make([]vybiumdisprove.Report, len(leaves))
	for i, leaf := range leaves {
		reports[i] = d.Check(leaf)
		if err := bar.Add(1); err != nil {
			log.Debug().Err(err).Msg("progress bar")
		}
	}
	if err := bar.Finish(); err != nil {
		log.Debug().Err(err).Msg("progress bar")
	}
	return reports
}

// proveSquare proves x*x == y and returns the BN254 proof with y
func proveSquare(x uint64) (*groth16bn254.Proof, uint64, error) {
	y := x * x

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &squareCircuit{})
	if err != nil {
		return nil, 0, fmt.Errorf("compile circuit: %w", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, 0, fmt.Errorf("setup: %w", err)
	}

	w, err := frontend.NewWitness(&squareCircuit{X: x, Y: y}, ecc.BN254.ScalarField())
	if err != nil {
		return nil, 0, fmt.Errorf("witness: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, w)
	if err != nil {
		return nil, 0, fmt.Errorf("prove: %w", err)
	}
	pub, err := w.Public()
	if err != nil {
		return nil, 0, fmt.Errorf("public witness: %w", err)
	}
	if err := groth16.Verify(proof, vk, pub); err != nil {
		return nil, 0, fmt.Errorf("verify: %w", err)
	}

	p, ok := proof.(*groth16bn254.Proof)
	if !ok {
		return nil, 0, fmt.Errorf("unexpected proof type %T", proof)
	}
	return p, y, nil
}

// transcript splits a fragment of the verifier over the proof into segments.
// Every intermediate is named; the same name in two segments is the same
// committed value.
func transcript(p *groth16bn254.Proof, public uint64) ([]*vybiumdisprove.Segment, error) {
	var y fr.Element
	y.SetUint64(public)

	gt, err := bn254.Pair([]bn254.G1Affine{p.Ar}, []bn254.G2Affine{p.Bs})
	if err != nil {
		return nil, fmt.Errorf("pair: %w", err)
	}

	var (
		proofA = vybiumdisprove.NewG1Point(vybiumdisprove.ProofA).Fill(p.Ar)
		proofB = vybiumdisprove.NewG2Point(vybiumdisprove.ProofB).Fill(p.Bs)
		proofC = vybiumdisprove.NewG1Point(vybiumdisprove.ProofC).Fill(p.Krs)
		input  = vybiumdisprove.NewFr(vybiumdisprove.Scalar1).Fill(y)

		aCopy    = vybiumdisprove.NewG1Point("a_copy").Fill(p.Ar)
		bCopy    = vybiumdisprove.NewG2Point("b_copy").Fill(p.Bs)
		cCopy    = vybiumdisprove.NewG1Point("c_copy").Fill(p.Krs)
		cSwapped = vybiumdisprove.NewG1Point("c_swapped").Fill(p.Krs)
		aSwapped = vybiumdisprove.NewG1Point("a_swapped").Fill(p.Ar)
		input0   = vybiumdisprove.NewFr("input_0").Fill(y)
		fab      = vybiumdisprove.NewFq12("f_ab").Fill(gt)
		fabLow   = vybiumdisprove.NewFq6("f_ab_c0").FillFromGT(gt)
	)

	// Hints carrying e(A, B), coefficients in serialization order.
	coeffs := []fp.Element{
		gt.C0.B0.A0, gt.C0.B0.A1, gt.C0.B1.A0, gt.C0.B1.A1, gt.C0.B2.A0, gt.C0.B2.A1,
		gt.C1.B0.A0, gt.C1.B0.A1, gt.C1.B1.A0, gt.C1.B1.A1, gt.C1.B2.A0, gt.C1.B2.A1,
	}
	pairing := make([]hints.Hint, 0, len(coeffs))
	for _, c := range coeffs {
		pairing = append(pairing, hints.FqHint{Value: c})
	}

	g1 := aCopy.WitnessSize()
	g2 := bCopy.WitnessSize()
	segs := []*vybiumdisprove.Segment{
		vybiumdisprove.NewSegment("load_proof", nil).
			AddParameter(proofA).AddParameter(proofB).AddParameter(proofC).
			AddResult(aCopy).AddResult(bCopy).AddResult(cCopy).
			Build(),

		vybiumdisprove.NewSegment("load_input", dropItems(input.WitnessSize())).
			AddParameter(input).
			AddResult(input0).
			AddHints([]hints.Hint{hints.U256Hint{Value: uint256.NewInt(public)}}).
			Build(),

		vybiumdisprove.NewSegment("swap_ac", rollItems(g1, 2*g1-1)).
			AddParameter(aCopy).AddParameter(cCopy).
			AddResult(cSwapped).AddResult(aSwapped).
			Build(),

		vybiumdisprove.NewSegment("pairing_ab", dropItems(g1+g2)).
			AddParameter(aCopy).AddParameter(bCopy).
			AddResult(fab).
			AddHints(pairing).
			Build(),

		vybiumdisprove.NewSegment("final", dropItems(fab.WitnessSize()-fabLow.WitnessSize())).
			AddParameter(fab).
			AddResult(fabLow).
			MarkTerminal().
			Build(),
	}
	return segs, nil
}

// dropItems removes the top n items
func dropItems(n int) *script.Script {
	s := script.New().AddOps(script.OP_2DROP, n/2)
	if n%2 == 1 {
		s.AddOp(script.OP_DROP)
	}
	return s
}

// rollItems moves n items starting at depth to the top, deepest first
func rollItems(n, depth int) *script.Script {
	s := script.New()
	for i := 0; i < n; i++ {
		s.AddInt(int64(depth)).AddOp(script.OP_ROLL)
	}
	return s
}

func save(path, label string, cfg *vybiumdisprove.Config, leaves []vybiumdisprove.Leaf, reports []vybiumdisprove.Report) (string, error) {
	st, err := vybiumdisprove.OpenStore(path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	rec, err := st.SaveBatch(label, cfg, leaves)
	if err != nil {
		return "", err
	}
	if err := st.SaveReports(rec.BatchID, reports); err != nil {
		return "", err
	}
	return rec.BatchID, nil
}

func write(path string, out batchOutput) error {
	f := os.Stdout
	if path != "" {
		var err error
		if f, err = os.Create(path); err != nil {
			return err
		}
		defer f.Close()
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func fatal(stage string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", stage, err)
	os.Exit(1)
}
