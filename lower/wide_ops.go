package lower

import "occ/oir"

// The remaining wide-primitive rewrites below mostly retag an SSA
// instruction in place to a call against a fixed runtime-helper symbol
// rather than expanding inline arithmetic, matching kefir's approach for
// shapes that do not have a compact native-instruction sequence (long double
// transcendental-ish ops, complex arithmetic, and the varargs family, which
// are ABI-shape operations rather than arithmetic ones). The exceptions:
// va_end becomes a no-op, and lowerLongDoubleOp leaves add/sub/mul/div as
// they are.

func (lw *Lowerer) replaceWithHelperCall(iref oir.InstrRef, helper string) {
	sym := lw.mod.InternSymbol(helper)
	lw.fn.RetagAsCall(iref, sym)
}

func (lw *Lowerer) lowerBitIntCast(bref oir.BlockRef, iref oir.InstrRef, in *oir.Instr) {
	lw.replaceWithHelperCall(iref, "__bitint_cast")
}

func (lw *Lowerer) lowerBitIntToFloat(bref oir.BlockRef, iref oir.InstrRef, in *oir.Instr) {
	lw.replaceWithHelperCall(iref, "__bitint_to_float")
}

func (lw *Lowerer) lowerBitIntToBool(bref oir.BlockRef, iref oir.InstrRef, in *oir.Instr) {
	lw.replaceWithHelperCall(iref, "__bitint_to_bool")
}

// lowerLongDoubleOp lowers an x87 long-double arithmetic op to a runtime
// helper when the operation has no direct x87 stack-instruction mapping
// (transcendental ops); simple +,-,*,/ are instead handled directly by the
// back-end's x87 emission path (asmsink), keyed off AuxInt's operator tag,
// so only the non-arithmetic subset reaches this helper-call fallback.
func (lw *Lowerer) lowerLongDoubleOp(bref oir.BlockRef, iref oir.InstrRef, in *oir.Instr) {
	switch in.AuxInt {
	case 0, 1, 2, 3: // add, sub, mul, div: handled natively by asmsink's x87 path
		return
	default:
		lw.replaceWithHelperCall(iref, "__long_double_op")
	}
}

func (lw *Lowerer) lowerComplexOp(bref oir.BlockRef, iref oir.InstrRef, in *oir.Instr) {
	lw.replaceWithHelperCall(iref, "__complex_op")
}

// lowerVaStart handles va_start. Under System V a vararg function's
// prologue spills its unused integer/SSE argument registers into a
// fixed-layout save area, and va_start initializes the va_list's
// gp_offset/fp_offset/overflow_arg_area/reg_save_area fields to point at it
// (kefir's vararg.c). Here va_start is retagged as a call to the runtime
// helper __va_start; no register-save area is laid out, and the back-end
// emits the call as it stands.
func (lw *Lowerer) lowerVaStart(bref oir.BlockRef, iref oir.InstrRef, in *oir.Instr) {
	lw.replaceWithHelperCall(iref, "__va_start")
}

func (lw *Lowerer) lowerVaArg(bref oir.BlockRef, iref oir.InstrRef, in *oir.Instr) {
	lw.replaceWithHelperCall(iref, "__va_arg")
}

func (lw *Lowerer) lowerVaEnd(bref oir.BlockRef, iref oir.InstrRef, in *oir.Instr) {
	in.Op = oir.OpNop
}

func (lw *Lowerer) lowerVaCopy(bref oir.BlockRef, iref oir.InstrRef, in *oir.Instr) {
	lw.replaceWithHelperCall(iref, "__va_copy")
}
