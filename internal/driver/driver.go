// Package driver repeatedly sweeps an entrypoint's instructions through
// internal/ir's dispatcher until a pass makes no further progress, the
// fixpoint loop spec.md §5 describes as an external caller's
// responsibility. Grounded on the teacher's
// internal/ir/optimizations.go's OptimizationPipeline.Run — that pipeline
// runs a fixed list of whole-program passes once each and reports which
// ones changed anything; this driver instead repeats one pass (a full
// instruction sweep through SimplifyInstruction) until the accumulated
// phase-mask settles at zero or an iteration cap is hit.
package driver

import "sparseir/internal/ir"

// Config controls how many sweeps Run is willing to make before giving up.
type Config struct {
	// MaxPasses caps the number of full sweeps. Zero means DefaultMaxPasses.
	MaxPasses int
}

// DefaultMaxPasses is the "small constant limit" spec.md §5 recommends: a
// buggy rewrite that never settles stops here instead of looping forever.
const DefaultMaxPasses = 64

// Result reports what one Run call did.
type Result struct {
	Passes     int
	CapHit     bool
	FinalPhase ir.PhaseMask
}

// Run sweeps every live instruction in every block of ep, calling
// ir.SimplifyInstruction on each, until a full sweep leaves
// ctx.RepeatPhase at zero or cfg.MaxPasses sweeps have run. Each sweep
// resets ctx.RepeatPhase before walking so Result.FinalPhase reflects only
// the last sweep's findings, not a running total across the whole run.
func Run(ctx *ir.Context, ep *ir.Entrypoint, cfg Config) Result {
	maxPasses := cfg.MaxPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}

	var res Result
	for res.Passes = 1; ; res.Passes++ {
		ctx.RepeatPhase = ir.PhaseNone
		sweep(ctx, ep)
		res.FinalPhase = ctx.RepeatPhase
		if ctx.RepeatPhase == ir.PhaseNone {
			return res
		}
		if res.Passes >= maxPasses {
			res.CapHit = true
			return res
		}
	}
}

// sweep visits every instruction currently in ep's blocks once, in block
// and program order. Instructions a rewrite kills or that a later rewrite
// splices in are picked up on the next sweep, which is what drives the
// loop to a fixpoint rather than a single pass being expected to finish
// the job.
func sweep(ctx *ir.Context, ep *ir.Entrypoint) {
	for _, bb := range ep.Blocks {
		for _, insn := range bb.Insns {
			ir.SimplifyInstruction(ctx, insn)
		}
	}
}
