package oir

import "occ/ir"

// Translate builds an SSA-form Func from a front-end's pre-SSA
// IrFunctionBody, the "external translator" spec.md §3 hands the optimizer.
// The front-end is assumed to have already resolved phi placeholders to
// operand lists ordered the same as the destination block's eventual
// predecessor order — a real C front-end performs this during its own
// structured-control-flow lowering, before handing the body to the core.
func Translate(mod *ir.IrModule, decl ir.FunctionDecl, body *ir.IrFunctionBody) *Func {
	fn := &Func{Name: decl.Name, Decl: decl, Module: mod, DebugRoot: body.DebugRoot}
	fn.instrs = make([]Instr, 1)
	fn.blocks = make([]Block, len(body.Blocks))
	for i := range body.Blocks {
		fn.blocks[i] = Block{Kind: BlockGoto, Ctrl: NoInstr, PublicLabel: body.Blocks[i].PublicLabel}
	}
	fn.Entry = BlockRef(body.EntryBlock)

	// local-id -> InstrRef, scoped per block: front-end instruction indices
	// are block-local, so the map is rebuilt per block in two passes —
	// first allocate, then wire operands, so forward references within a
	// block (there are none in valid input, but loop back-edges across
	// blocks need both blocks already allocated) resolve.
	localToRef := make(map[[2]int]InstrRef)

	for bi, blk := range body.Blocks {
		for ii, instr := range blk.Instrs {
			op := translateOp(instr.Op)
			ref := fn.newInstrRaw(Instr{
				Op:        op,
				Type:      instr.Type,
				Block:     BlockRef(bi),
				AuxInt:    instr.Int,
				AuxBigInt: instr.BigInt,
				AuxSymbol: instr.Symbol,
				DebugPos:  instr.DebugPos,
			})
			fn.blocks[bi].Instrs = append(fn.blocks[bi].Instrs, ref)
			localToRef[[2]int{bi, ii}] = ref
		}
	}

	// Second pass: wire terminator edges only, so every block's Preds list
	// is complete before phi incoming edges (which are keyed by
	// predecessor) are built in the third pass.
	for bi, blk := range body.Blocks {
		for ii, instr := range blk.Instrs {
			ref := localToRef[[2]int{bi, ii}]
			wireTerminator(fn, BlockRef(bi), instr, ref)
		}
	}

	// Third pass: wire ordinary operands, and build real Phi records for
	// OpPhiPlaceholder instructions now that predecessor order is fixed.
	for bi, blk := range body.Blocks {
		for ii, instr := range blk.Instrs {
			ref := localToRef[[2]int{bi, ii}]
			in := fn.Instr(ref)

			if instr.Op == ir.OpPhiPlaceholder {
				pref := PhiRef(len(fn.phis))
				fn.phis = append(fn.phis, Phi{Block: BlockRef(bi), Type: instr.Type, Self: ref})
				in.AuxPhi = pref
				preds := fn.blocks[bi].Preds
				for k, operand := range instr.Operands {
					argRef, ok := localToRef[[2]int{bi, int(operand)}]
					if !ok || k >= len(preds) {
						continue
					}
					fn.phis[pref].Incoming = append(fn.phis[pref].Incoming, PhiEdge{Pred: preds[k], Value: argRef})
					fn.instrs[argRef].Uses = append(fn.instrs[argRef].Uses, ref)
				}
				fn.blocks[bi].Phis = append(fn.blocks[bi].Phis, pref)
				continue
			}

			var args []InstrRef
			for _, operand := range instr.Operands {
				argRef, ok := localToRef[[2]int{bi, int(operand)}]
				if !ok {
					continue
				}
				args = append(args, argRef)
				fn.instrs[argRef].Uses = append(fn.instrs[argRef].Uses, ref)
			}
			in.Args = args

			if instr.Op == ir.OpCall {
				cref := CallRef(len(fn.calls))
				fn.calls = append(fn.calls, CallNode{Callee: instr.Symbol, Args: args})
				in.AuxCall = cref
			}
		}
	}

	return fn
}

func translateOp(op ir.Opcode) Opcode {
	switch op {
	case ir.OpIntConst:
		return OpConstInt
	case ir.OpBigIntConst:
		return OpConstBigInt
	case ir.OpFloatConst:
		return OpConstFloat
	case ir.OpLoad, ir.OpGetLocal, ir.OpGetGlobal:
		return OpLoad
	case ir.OpStore, ir.OpSetLocal, ir.OpSetGlobal:
		return OpStore
	case ir.OpAdd:
		return OpAdd
	case ir.OpSub:
		return OpSub
	case ir.OpMul:
		return OpMul
	case ir.OpDiv:
		return OpSDiv
	case ir.OpMod:
		return OpSMod
	case ir.OpNeg:
		return OpNeg
	case ir.OpNot:
		return OpNot
	case ir.OpAnd:
		return OpAnd
	case ir.OpOr:
		return OpOr
	case ir.OpXor:
		return OpXor
	case ir.OpShl:
		return OpShl
	case ir.OpShr:
		return OpAShr
	case ir.OpCmpEq:
		return OpICmpEq
	case ir.OpCmpNe:
		return OpICmpNe
	case ir.OpCmpLt:
		return OpICmpSLt
	case ir.OpCmpLe:
		return OpICmpSLe
	case ir.OpCmpGt:
		return OpICmpSGt
	case ir.OpCmpGe:
		return OpICmpSGe
	case ir.OpCast:
		return OpBitcast
	case ir.OpCall:
		return OpCall
	case ir.OpReturn:
		return OpReturn
	case ir.OpBranch:
		return OpJump
	case ir.OpCondBranch:
		return OpBranch
	case ir.OpPhiPlaceholder:
		return OpPhi
	}
	return OpInvalid
}

func wireTerminator(fn *Func, bref BlockRef, instr ir.IrInstr, ref InstrRef) {
	b := &fn.blocks[bref]
	switch instr.Op {
	case ir.OpBranch:
		if len(instr.Targets) != 1 {
			return
		}
		b.Kind = BlockGoto
		b.Ctrl = NoInstr
		dest := BlockRef(instr.Targets[0])
		fn.WireEdge(bref, dest)
	case ir.OpCondBranch:
		if len(instr.Targets) != 2 {
			return
		}
		b.Kind = BlockIf
		b.Ctrl = ref
		fn.WireEdge(bref, BlockRef(instr.Targets[0]))
		fn.WireEdge(bref, BlockRef(instr.Targets[1]))
	case ir.OpReturn:
		b.Kind = BlockReturn
		b.Ctrl = ref
	}
}
