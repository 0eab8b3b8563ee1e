// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Instruction is one decoded bytecode instruction. Every concrete type
// below corresponds to one operand shape of JVMS §6.5; opcodes that share
// an operand shape (the four dozen zero-operand arithmetic/stack opcodes,
// say) share one Go type distinguished by their Op field, rather than each
// getting a bespoke empty struct, since the wire shape — not the mnemonic —
// is what decode/encode dispatches on.
//
// InsnBranch targets are stored as instruction indices (ordinals within
// the method's code list), not byte offsets: decode builds a
// byte-offset→instruction-index map while reading and resolves each branch
// offset through it (a target that is not an instruction start keeps its
// byte offset). tableswitch and lookupswitch offsets stay raw wire-relative
// values (see InsnTableswitch). The Code attribute resolves its exception
// table, LineNumberTable and StackMapTable positions through the same map.
type Instruction interface {
	// Opcode returns the wire opcode byte of this instruction.
	Opcode() Opcode
}

// InsnSimple is a zero-operand instruction (e.g. nop, iadd, areturn).
type InsnSimple struct{ Op Opcode }

func (i InsnSimple) Opcode() Opcode { return i.Op }

// InsnLocalVar is a local-variable-indexed instruction (iload, istore,
// ret, ...). Index is a byte on the wire unless Wide is set, in which case
// it was promoted to u16 by a preceding 0xC4 prefix.
type InsnLocalVar struct {
	Op    Opcode
	Index uint16
	Wide  bool
}

func (i InsnLocalVar) Opcode() Opcode { return i.Op }

// InsnIntConst carries an immediate integer constant (bipush: i8, sipush:
// i16).
type InsnIntConst struct {
	Op    Opcode
	Value int32
}

func (i InsnIntConst) Opcode() Opcode { return i.Op }

// InsnLoadConst is ldc/ldc_w/ldc2_w: a constant-pool index whose width
// depends on the opcode (ldc: u8, ldc_w/ldc2_w: u16).
type InsnLoadConst struct {
	Op    Opcode
	Index uint16
}

func (i InsnLoadConst) Opcode() Opcode { return i.Op }

// InsnFieldOrMethodRef is getstatic/putstatic/getfield/putfield/
// invokevirtual/invokespecial/invokestatic: a u16 constant-pool index.
type InsnFieldOrMethodRef struct {
	Op    Opcode
	Index uint16
}

func (i InsnFieldOrMethodRef) Opcode() Opcode { return i.Op }

// InsnInvokeInterface is invokeinterface: cp index, argument count, and a
// mandatory trailing zero byte (checked, not stored, at decode time).
type InsnInvokeInterface struct {
	Index uint16
	Count uint8
}

func (InsnInvokeInterface) Opcode() Opcode { return OpInvokeinterface }

// InsnInvokeDynamic is invokedynamic: a u16 constant-pool index followed
// by two reserved zero bytes (checked, not stored).
type InsnInvokeDynamic struct{ Index uint16 }

func (InsnInvokeDynamic) Opcode() Opcode { return OpInvokedynamic }

// InsnType is new/anewarray/checkcast/instanceof: a u16 Class constant
// index.
type InsnType struct {
	Op    Opcode
	Index uint16
}

func (i InsnType) Opcode() Opcode { return i.Op }

// InsnNewarray is the primitive-array allocation instruction.
type InsnNewarray struct{ Type ArrayType }

func (InsnNewarray) Opcode() Opcode { return OpNewarray }

// InsnMultianewarray is multianewarray: a u16 Class constant index plus a
// u8 dimension count.
type InsnMultianewarray struct {
	Index      uint16
	Dimensions uint8
}

func (InsnMultianewarray) Opcode() Opcode { return OpMultianewarray }

// InsnIinc increments local variable Index by Const. Wide promotes Index
// to u16 and Const to i16 (default i8).
type InsnIinc struct {
	Index uint16
	Const int16
	Wide  bool
}

func (InsnIinc) Opcode() Opcode { return OpIinc }

// InsnBranch is any of the conditional/unconditional branch opcodes
// (ifeq..if_acmpne, goto, jsr, ifnull, ifnonnull, goto_w, jsr_w). Target is
// the resolved instruction index, not a byte offset.
type InsnBranch struct {
	Op     Opcode
	Target int
}

func (i InsnBranch) Opcode() Opcode { return i.Op }

// InsnTableswitch is the tableswitch instruction (JVMS §6.5 tableswitch).
// Default and Offsets are kept as the raw signed wire offsets, relative to
// the instruction's own byte position, rather than translated to
// instruction indices: unlike a plain branch, a switch's jump table can
// hold hundreds of entries, and leaving them as wire-relative offsets
// means encode can write them back without needing an instruction→byte
// map lookup per entry. CodeAttr does not keep the byte↔instruction maps,
// and nothing in this package resolves these offsets to instruction indices.
type InsnTableswitch struct {
	Default int32
	Low     int32
	High    int32
	Offsets []int32
}

func (InsnTableswitch) Opcode() Opcode { return OpTableswitch }

// LookupswitchPair is one (match, offset) entry of a lookupswitch. Offset
// is the raw signed wire value, relative to the lookupswitch's own byte
// position (see InsnTableswitch).
type LookupswitchPair struct {
	Match  int32
	Offset int32
}

// InsnLookupswitch is the lookupswitch instruction (JVMS §6.5
// lookupswitch). Pairs are sorted ascending by Match on the wire; decode
// preserves wire order without re-sorting.
type InsnLookupswitch struct {
	Default int32
	Pairs   []LookupswitchPair
}

func (InsnLookupswitch) Opcode() Opcode { return OpLookupswitch }

// fixedLength gives the total instruction length in bytes (opcode byte
// included) for every opcode whose length does not depend on alignment or
// a following wide prefix. tableswitch, lookupswitch and wide are handled
// specially by decodeInstruction.
var fixedLength = map[Opcode]int{
	OpBipush: 2, OpLdc: 2, OpIload: 2, OpLload: 2, OpFload: 2, OpDload: 2, OpAload: 2,
	OpIstore: 2, OpLstore: 2, OpFstore: 2, OpDstore: 2, OpAstore: 2, OpRet: 2, OpNewarray: 2,
	OpSipush: 3, OpLdcW: 3, OpLdc2W: 3, OpIinc: 3,
	OpIfeq: 3, OpIfne: 3, OpIflt: 3, OpIfge: 3, OpIfgt: 3, OpIfle: 3,
	OpIfIcmpeq: 3, OpIfIcmpne: 3, OpIfIcmplt: 3, OpIfIcmpge: 3, OpIfIcmpgt: 3, OpIfIcmple: 3,
	OpIfAcmpeq: 3, OpIfAcmpne: 3, OpGoto: 3, OpJsr: 3,
	OpGetstatic: 3, OpPutstatic: 3, OpGetfield: 3, OpPutfield: 3,
	OpInvokevirtual: 3, OpInvokespecial: 3, OpInvokestatic: 3,
	OpNew: 3, OpAnewarray: 3, OpCheckcast: 3, OpInstanceof: 3,
	OpIfnull: 3, OpIfnonnull: 3,
	OpMultianewarray: 4,
	OpInvokeinterface: 5, OpInvokedynamic: 5,
	OpGotoW: 5, OpJsrW: 5,
}

// isSimple reports whether op is an opcode whose InsnSimple form has no
// operand bytes at all.
func isSimple(op Opcode) bool {
	switch op {
	case OpNop, OpAconstNull,
		OpIconstM1, OpIconst0, OpIconst1, OpIconst2, OpIconst3, OpIconst4, OpIconst5,
		OpLconst0, OpLconst1, OpFconst0, OpFconst1, OpFconst2, OpDconst0, OpDconst1,
		OpIload0, OpIload1, OpIload2, OpIload3,
		OpLload0, OpLload1, OpLload2, OpLload3,
		OpFload0, OpFload1, OpFload2, OpFload3,
		OpDload0, OpDload1, OpDload2, OpDload3,
		OpAload0, OpAload1, OpAload2, OpAload3,
		OpIaload, OpLaload, OpFaload, OpDaload, OpAaload, OpBaload, OpCaload, OpSaload,
		OpIstore0, OpIstore1, OpIstore2, OpIstore3,
		OpLstore0, OpLstore1, OpLstore2, OpLstore3,
		OpFstore0, OpFstore1, OpFstore2, OpFstore3,
		OpDstore0, OpDstore1, OpDstore2, OpDstore3,
		OpAstore0, OpAstore1, OpAstore2, OpAstore3,
		OpIastore, OpLastore, OpFastore, OpDastore, OpAastore, OpBastore, OpCastore, OpSastore,
		OpPop, OpPop2, OpDup, OpDupX1, OpDupX2, OpDup2, OpDup2X1, OpDup2X2, OpSwap,
		OpIadd, OpLadd, OpFadd, OpDadd, OpIsub, OpLsub, OpFsub, OpDsub,
		OpImul, OpLmul, OpFmul, OpDmul, OpIdiv, OpLdiv, OpFdiv, OpDdiv,
		OpIrem, OpLrem, OpFrem, OpDrem, OpIneg, OpLneg, OpFneg, OpDneg,
		OpIshl, OpLshl, OpIshr, OpLshr, OpIushr, OpLushr, OpIand, OpLand, OpIor, OpLor, OpIxor, OpLxor,
		OpI2l, OpI2f, OpI2d, OpL2i, OpL2f, OpL2d, OpF2i, OpF2l, OpF2d, OpD2i, OpD2l, OpD2f,
		OpI2b, OpI2c, OpI2s, OpLcmp, OpFcmpl, OpFcmpg, OpDcmpl, OpDcmpg,
		OpIreturn, OpLreturn, OpFreturn, OpDreturn, OpAreturn, OpReturn,
		OpArraylength, OpAthrow, OpMonitorenter, OpMonitorexit,
		OpBreakpoint, OpImpdep1, OpImpdep2:
		return true
	default:
		return false
	}
}

// decodeInstructions reads a method's entire code array and returns both
// the decoded instruction list and the byte-offset→instruction-index map
// needed to resolve branch targets and PC-valued attribute fields.
func decodeInstructions(code []byte) ([]Instruction, map[uint32]int, error) {
	r := newReader(code)
	var insns []Instruction
	byteToIndex := make(map[uint32]int)

	for r.remaining() > 0 {
		startPos := r.position()
		byteToIndex[startPos] = len(insns)

		insn, err := decodeOneInstruction(r, startPos)
		if err != nil {
			return nil, nil, err
		}
		insns = append(insns, insn)
	}

	// Resolve branch targets now that the full map is known.
	for idx, insn := range insns {
		insns[idx] = resolveBranchTarget(insn, byteToIndex)
	}
	return insns, byteToIndex, nil
}

// decodeOneInstruction decodes a single instruction starting at the
// reader's current position. startPos is the opcode's own byte offset,
// needed to compute branch targets and tableswitch/lookupswitch padding.
func decodeOneInstruction(r *reader, startPos uint32) (Instruction, error) {
	opByte, err := r.readU8()
	if err != nil {
		return nil, err
	}
	op := Opcode(opByte)

	switch {
	case isSimple(op):
		return InsnSimple{Op: op}, nil

	case op == OpBipush:
		v, err := r.readI8()
		return InsnIntConst{Op: op, Value: int32(v)}, err

	case op == OpSipush:
		v, err := r.readI16()
		return InsnIntConst{Op: op, Value: int32(v)}, err

	case op == OpLdc:
		v, err := r.readU8()
		return InsnLoadConst{Op: op, Index: uint16(v)}, err

	case op == OpLdcW || op == OpLdc2W:
		v, err := r.readU16()
		return InsnLoadConst{Op: op, Index: v}, err

	case op == OpIload || op == OpLload || op == OpFload || op == OpDload || op == OpAload ||
		op == OpIstore || op == OpLstore || op == OpFstore || op == OpDstore || op == OpAstore:
		v, err := r.readU8()
		return InsnLocalVar{Op: op, Index: uint16(v)}, err

	case op == OpRet:
		v, err := r.readU8()
		return InsnLocalVar{Op: op, Index: uint16(v)}, err

	case op == OpIinc:
		idx, err := r.readU8()
		if err != nil {
			return nil, err
		}
		c, err := r.readI8()
		return InsnIinc{Index: uint16(idx), Const: int16(c)}, err

	case op == OpGetstatic || op == OpPutstatic || op == OpGetfield || op == OpPutfield ||
		op == OpInvokevirtual || op == OpInvokespecial || op == OpInvokestatic:
		v, err := r.readU16()
		return InsnFieldOrMethodRef{Op: op, Index: v}, err

	case op == OpInvokeinterface:
		idx, err := r.readU16()
		if err != nil {
			return nil, err
		}
		count, err := r.readU8()
		if err != nil {
			return nil, err
		}
		zero, err := r.readU8()
		if err != nil {
			return nil, err
		}
		if zero != 0 {
			return nil, &InvalidInstructionError{Opcode: uint8(op)}
		}
		return InsnInvokeInterface{Index: idx, Count: count}, nil

	case op == OpInvokedynamic:
		idx, err := r.readU16()
		if err != nil {
			return nil, err
		}
		r1, err := r.readU8()
		if err != nil {
			return nil, err
		}
		r2, err := r.readU8()
		if err != nil {
			return nil, err
		}
		if r1 != 0 || r2 != 0 {
			return nil, &InvalidInstructionError{Opcode: uint8(op)}
		}
		return InsnInvokeDynamic{Index: idx}, nil

	case op == OpNew || op == OpAnewarray || op == OpCheckcast || op == OpInstanceof:
		v, err := r.readU16()
		return InsnType{Op: op, Index: v}, err

	case op == OpNewarray:
		v, err := r.readU8()
		return InsnNewarray{Type: ArrayType(v)}, err

	case op == OpMultianewarray:
		idx, err := r.readU16()
		if err != nil {
			return nil, err
		}
		dim, err := r.readU8()
		return InsnMultianewarray{Index: idx, Dimensions: dim}, err

	case op == OpIfeq || op == OpIfne || op == OpIflt || op == OpIfge || op == OpIfgt || op == OpIfle ||
		op == OpIfIcmpeq || op == OpIfIcmpne || op == OpIfIcmplt || op == OpIfIcmpge ||
		op == OpIfIcmpgt || op == OpIfIcmple || op == OpIfAcmpeq || op == OpIfAcmpne ||
		op == OpGoto || op == OpJsr || op == OpIfnull || op == OpIfnonnull:
		offset, err := r.readI16()
		if err != nil {
			return nil, err
		}
		// Target is stashed as a raw byte offset here; resolveBranchTarget
		// converts it to an instruction index once the full map exists.
		return InsnBranch{Op: op, Target: int(int32(startPos) + int32(offset))}, nil

	case op == OpGotoW || op == OpJsrW:
		offset, err := r.readI32()
		if err != nil {
			return nil, err
		}
		return InsnBranch{Op: op, Target: int(int32(startPos) + offset)}, nil

	case op == OpTableswitch:
		return decodeTableswitch(r, startPos)

	case op == OpLookupswitch:
		return decodeLookupswitch(r, startPos)

	case op == OpWide:
		return decodeWide(r)

	default:
		return nil, &InvalidInstructionError{Opcode: opByte}
	}
}

// resolveBranchTarget converts an InsnBranch's raw byte-offset Target into
// an instruction index, using the byte→instruction map produced by the
// decode pass. Tableswitch/lookupswitch offsets are left untouched (see
// InsnTableswitch).
func resolveBranchTarget(insn Instruction, byteToIndex map[uint32]int) Instruction {
	switch v := insn.(type) {
	case InsnBranch:
		if idx, ok := byteToIndex[uint32(v.Target)]; ok {
			v.Target = idx
		}
		return v
	default:
		return insn
	}
}

// decodeTableswitch reads a tableswitch instruction, whose default/low/
// high/offsets words are aligned so that the default word starts at an
// offset that is a multiple of 4 from the start of the code array (JVMS
// §6.5 tableswitch).
func decodeTableswitch(r *reader, startPos uint32) (Instruction, error) {
	if err := skipPadding(r, startPos); err != nil {
		return nil, err
	}
	defaultOff, err := r.readI32()
	if err != nil {
		return nil, err
	}
	low, err := r.readI32()
	if err != nil {
		return nil, err
	}
	high, err := r.readI32()
	if err != nil {
		return nil, err
	}
	if high < low {
		return nil, &InvalidInstructionError{Opcode: uint8(OpTableswitch)}
	}
	count := uint32(high-low) + 1
	if _, err := boundedCount(count, 0, 4, r.remaining()); err != nil {
		return nil, err
	}
	offsets := make([]int32, 0, count)
	for i := uint32(0); i < count; i++ {
		off, err := r.readI32()
		if err != nil {
			return nil, err
		}
		offsets = append(offsets, off)
	}
	return InsnTableswitch{
		Default: defaultOff,
		Low:     low,
		High:    high,
		Offsets: offsets,
	}, nil
}

// decodeLookupswitch reads a lookupswitch instruction; padded identically
// to tableswitch.
func decodeLookupswitch(r *reader, startPos uint32) (Instruction, error) {
	if err := skipPadding(r, startPos); err != nil {
		return nil, err
	}
	defaultOff, err := r.readI32()
	if err != nil {
		return nil, err
	}
	npairs, err := r.readI32()
	if err != nil {
		return nil, err
	}
	if npairs < 0 {
		return nil, &InvalidInstructionError{Opcode: uint8(OpLookupswitch)}
	}
	if _, err := boundedCount(uint32(npairs), 0, 8, r.remaining()); err != nil {
		return nil, err
	}
	pairs := make([]LookupswitchPair, 0, npairs)
	for i := int32(0); i < npairs; i++ {
		match, err := r.readI32()
		if err != nil {
			return nil, err
		}
		off, err := r.readI32()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, LookupswitchPair{Match: match, Offset: off})
	}
	return InsnLookupswitch{
		Default: defaultOff,
		Pairs:   pairs,
	}, nil
}

// skipPadding consumes the 0-3 zero padding bytes following a
// tableswitch/lookupswitch opcode so the next read lands on a 4-byte
// boundary relative to the start of the code array.
func skipPadding(r *reader, startPos uint32) error {
	afterOpcode := startPos + 1
	pad := (4 - afterOpcode%4) % 4
	_, err := r.readExact(pad)
	return err
}

// decodeWide reads a wide-prefixed instruction (JVMS §6.5 wide): the
// following opcode's local-variable index is promoted to u16, and for
// iinc the constant is additionally promoted to i16.
func decodeWide(r *reader) (Instruction, error) {
	subByte, err := r.readU8()
	if err != nil {
		return nil, err
	}
	sub := Opcode(subByte)
	if !wideEligible[sub] {
		return nil, &InvalidWideInstructionError{Opcode: subByte}
	}
	if sub == OpIinc {
		idx, err := r.readU16()
		if err != nil {
			return nil, err
		}
		c, err := r.readI16()
		return InsnIinc{Index: idx, Const: c, Wide: true}, err
	}
	idx, err := r.readU16()
	return InsnLocalVar{Op: sub, Index: idx, Wide: true}, err
}

// encodeInstructions serialises insns back to a code byte array, given the
// instruction-index branch/PC targets already resolved. Returns the bytes
// plus the instruction→byte-offset map callers need to translate any
// instruction-indexed PC field back to a wire byte offset.
func encodeInstructions(insns []Instruction) ([]byte, map[int]uint32, error) {
	w := newWriter()
	indexToByte := make(map[int]uint32, len(insns))

	// First pass: tentatively assign byte offsets assuming current
	// instruction order, to size branch offsets against.
	offsets := make([]uint32, len(insns)+1)
	pos := uint32(0)
	for i, insn := range insns {
		offsets[i] = pos
		pos += instructionLength(insn, pos)
	}
	offsets[len(insns)] = pos
	for i := range insns {
		indexToByte[i] = offsets[i]
	}

	for i, insn := range insns {
		if err := encodeOneInstruction(w, insn, offsets[i], indexToByte); err != nil {
			return nil, nil, err
		}
	}
	return w.bytes(), indexToByte, nil
}

// instructionLength returns the wire byte length of insn when it starts at
// byte offset pos (needed since switch instructions' padding depends on
// position).
func instructionLength(insn Instruction, pos uint32) uint32 {
	op := insn.Opcode()
	switch v := insn.(type) {
	case InsnSimple:
		return 1
	case InsnLocalVar:
		if v.Wide {
			return 4
		}
		return 2
	case InsnIinc:
		if v.Wide {
			return 6
		}
		return 3
	case InsnTableswitch:
		pad := (4 - (pos+1)%4) % 4
		return 1 + pad + 12 + uint32(len(v.Offsets))*4
	case InsnLookupswitch:
		pad := (4 - (pos+1)%4) % 4
		return 1 + pad + 8 + uint32(len(v.Pairs))*8
	default:
		if n, ok := fixedLength[op]; ok {
			return uint32(n)
		}
		return 1
	}
}

// encodeOneInstruction appends insn's wire form to w. pos is insn's own
// byte offset (needed for switch padding and branch offset computation);
// indexToByte resolves every other instruction's byte offset for branch
// targets.
func encodeOneInstruction(w *writer, insn Instruction, pos uint32, indexToByte map[int]uint32) error {
	switch v := insn.(type) {
	case InsnSimple:
		w.writeU8(uint8(v.Op))

	case InsnIntConst:
		w.writeU8(uint8(v.Op))
		if v.Op == OpBipush {
			w.writeI8(int8(v.Value))
		} else {
			w.writeI16(int16(v.Value))
		}

	case InsnLoadConst:
		w.writeU8(uint8(v.Op))
		if v.Op == OpLdc {
			w.writeU8(uint8(v.Index))
		} else {
			w.writeU16(v.Index)
		}

	case InsnLocalVar:
		if v.Wide {
			w.writeU8(uint8(OpWide))
			w.writeU8(uint8(v.Op))
			w.writeU16(v.Index)
		} else {
			w.writeU8(uint8(v.Op))
			w.writeU8(uint8(v.Index))
		}

	case InsnIinc:
		if v.Wide {
			w.writeU8(uint8(OpWide))
			w.writeU8(uint8(OpIinc))
			w.writeU16(v.Index)
			w.writeI16(v.Const)
		} else {
			w.writeU8(uint8(OpIinc))
			w.writeU8(uint8(v.Index))
			w.writeI8(int8(v.Const))
		}

	case InsnFieldOrMethodRef:
		w.writeU8(uint8(v.Op))
		w.writeU16(v.Index)

	case InsnInvokeInterface:
		w.writeU8(uint8(OpInvokeinterface))
		w.writeU16(v.Index)
		w.writeU8(v.Count)
		w.writeU8(0)

	case InsnInvokeDynamic:
		w.writeU8(uint8(OpInvokedynamic))
		w.writeU16(v.Index)
		w.writeU8(0)
		w.writeU8(0)

	case InsnType:
		w.writeU8(uint8(v.Op))
		w.writeU16(v.Index)

	case InsnNewarray:
		w.writeU8(uint8(OpNewarray))
		w.writeU8(uint8(v.Type))

	case InsnMultianewarray:
		w.writeU8(uint8(OpMultianewarray))
		w.writeU16(v.Index)
		w.writeU8(v.Dimensions)

	case InsnBranch:
		targetByte := indexToByte[v.Target]
		offset := int64(targetByte) - int64(pos)
		w.writeU8(uint8(v.Op))
		if v.Op == OpGotoW || v.Op == OpJsrW {
			w.writeI32(int32(offset))
		} else {
			w.writeI16(int16(offset))
		}

	case InsnTableswitch:
		w.writeU8(uint8(OpTableswitch))
		padTo(w, pos)
		w.writeI32(v.Default)
		w.writeI32(v.Low)
		w.writeI32(v.High)
		for _, off := range v.Offsets {
			w.writeI32(off)
		}

	case InsnLookupswitch:
		w.writeU8(uint8(OpLookupswitch))
		padTo(w, pos)
		w.writeI32(v.Default)
		w.writeI32(int32(len(v.Pairs)))
		for _, p := range v.Pairs {
			w.writeI32(p.Match)
			w.writeI32(p.Offset)
		}

	default:
		return &InvalidInstructionError{Opcode: uint8(insn.Opcode())}
	}
	return nil
}

// padTo writes the 0-3 zero padding bytes a switch instruction needs so
// its default word starts on a 4-byte boundary relative to pos.
func padTo(w *writer, pos uint32) {
	afterOpcode := pos + 1
	pad := (4 - afterOpcode%4) % 4
	for i := uint32(0); i < pad; i++ {
		w.writeU8(0)
	}
}
