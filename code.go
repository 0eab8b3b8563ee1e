// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// ExceptionTableEntry is one entry of a Code attribute's exception table
// (JVMS §4.7.3). StartPC, EndPC and HandlerPC are instruction indices, not
// byte offsets. EndPC is exclusive on the wire: an end_pc that is an
// instruction start is stored as that instruction's index, and any other
// end_pc (code_length included) is stored as one past the instruction that
// starts at the largest byte offset below it, so a range ending exactly at
// code_length is stored as len(Code).
type ExceptionTableEntry struct {
	StartPC   int
	EndPC     int
	HandlerPC int
	CatchType uint16 // 0 means catch-all (finally)
}

// CodeAttr is the Code attribute (JVMS §4.7.3): a method's bytecode, its
// exception table, and any sub-attributes (LineNumberTable,
// LocalVariableTable(Type)Table, StackMapTable, ...).
type CodeAttr struct {
	NameIndex      uint16
	MaxStack       uint16
	MaxLocals      uint16
	Code           []Instruction
	ExceptionTable []ExceptionTableEntry
	Attributes     []Attribute
}

func (CodeAttr) Name() string { return "Code" }

// decodeCodeAttr reads a Code attribute's payload (the name_index/length
// envelope has already been consumed by the caller).
func decodeCodeAttr(r *reader, nameIndex uint16, cp *ConstantPool, opts *Options, depth uint32) (CodeAttr, error) {
	maxStack, err := r.readU16()
	if err != nil {
		return CodeAttr{}, err
	}
	maxLocals, err := r.readU16()
	if err != nil {
		return CodeAttr{}, err
	}
	codeLength, err := r.readU32()
	if err != nil {
		return CodeAttr{}, err
	}
	limit := opts.resourceLimit(opts.MaxCodeLength, DefaultMaxCodeLength)
	if codeLength > limit {
		return CodeAttr{}, ErrResourceLimitExceeded
	}
	codeBytes, err := r.readExact(codeLength)
	if err != nil {
		return CodeAttr{}, err
	}

	insns, byteToIndex, err := decodeInstructions(codeBytes)
	if err != nil {
		return CodeAttr{}, err
	}

	excCount, err := r.readU16()
	if err != nil {
		return CodeAttr{}, err
	}
	excLimit := opts.resourceLimit(opts.MaxExceptionTableLength, DefaultMaxExceptionTableLen)
	if uint32(excCount) > excLimit {
		return CodeAttr{}, ErrResourceLimitExceeded
	}
	excTable := make([]ExceptionTableEntry, 0, excCount)
	for i := uint16(0); i < excCount; i++ {
		startPC, err := r.readU16()
		if err != nil {
			return CodeAttr{}, err
		}
		endPC, err := r.readU16()
		if err != nil {
			return CodeAttr{}, err
		}
		handlerPC, err := r.readU16()
		if err != nil {
			return CodeAttr{}, err
		}
		catchType, err := r.readU16()
		if err != nil {
			return CodeAttr{}, err
		}

		startIdx, ok := byteToIndex[uint32(startPC)]
		if !ok {
			return CodeAttr{}, &InvalidInstructionOffsetError{Offset: uint32(startPC)}
		}
		handlerIdx, ok := byteToIndex[uint32(handlerPC)]
		if !ok {
			return CodeAttr{}, &InvalidInstructionOffsetError{Offset: uint32(handlerPC)}
		}
		endIdx := largestInstructionAtOrBefore(byteToIndex, uint32(endPC))

		excTable = append(excTable, ExceptionTableEntry{
			StartPC: startIdx, EndPC: endIdx, HandlerPC: handlerIdx, CatchType: catchType,
		})
	}

	cm := &codeMaps{byteToIndex: byteToIndex}
	attrCount, err := r.readU16()
	if err != nil {
		return CodeAttr{}, err
	}
	attrs, err := decodeAttributeListN(r, cp, opts, depth+1, attrCount, cm)
	if err != nil {
		return CodeAttr{}, err
	}

	return CodeAttr{
		NameIndex:      nameIndex,
		MaxStack:       maxStack,
		MaxLocals:      maxLocals,
		Code:           insns,
		ExceptionTable: excTable,
		Attributes:     attrs,
	}, nil
}

// largestInstructionAtOrBefore resolves a wire end_pc to an instruction
// index. A target that is an instruction start returns that instruction's
// index; any other target returns one past the instruction starting at the
// largest byte offset below it, so code_length resolves to one past the
// last instruction, matching the wire convention that end_pc is exclusive.
// It returns 0 when byteToIndex holds no offset <= target.
func largestInstructionAtOrBefore(byteToIndex map[uint32]int, target uint32) int {
	if idx, ok := byteToIndex[target]; ok {
		return idx
	}
	best := -1
	bestOff := uint32(0)
	maxIdx := 0
	for off, idx := range byteToIndex {
		if idx > maxIdx {
			maxIdx = idx
		}
		if off <= target && (best == -1 || off > bestOff) {
			best = idx
			bestOff = off
		}
	}
	if best == -1 {
		return 0
	}
	if target > bestOff {
		// target is not an instruction start (mid-instruction or
		// end-of-code): resolve to one past that instruction.
		return best + 1
	}
	return best
}

// encodeCodeAttr serialises a CodeAttr's payload.
func encodeCodeAttr(w *writer, c CodeAttr) error {
	codeBytes, indexToByte, err := encodeInstructions(c.Code)
	if err != nil {
		return err
	}
	codeLen := uint32(len(codeBytes))

	w.writeU16(c.MaxStack)
	w.writeU16(c.MaxLocals)
	w.writeU32(codeLen)
	w.writeBytes(codeBytes)

	w.writeU16(uint16(len(c.ExceptionTable)))
	for _, e := range c.ExceptionTable {
		w.writeU16(uint16(indexToByte[e.StartPC]))
		w.writeU16(uint16(endPCByteOffset(e.EndPC, indexToByte, codeLen)))
		w.writeU16(uint16(indexToByte[e.HandlerPC]))
		w.writeU16(e.CatchType)
	}

	cm := &codeMaps{indexToByte: indexToByte}
	w.writeU16(uint16(len(c.Attributes)))
	for _, a := range c.Attributes {
		if err := encodeAttribute(w, a, cm); err != nil {
			return err
		}
	}
	return nil
}

// endPCByteOffset inverts largestInstructionAtOrBefore: an EndPC one past
// the last instruction index maps back to codeLen; otherwise it maps to
// that instruction's own byte offset.
func endPCByteOffset(endIdx int, indexToByte map[int]uint32, codeLen uint32) uint32 {
	if b, ok := indexToByte[endIdx]; ok {
		return b
	}
	return codeLen
}

// codeMaps carries the byte↔instruction translation tables needed to
// decode/encode the PC-valued fields of LineNumberTable,
// LocalVariableTable(Type)Table and StackMapTable. nil when an attribute
// list is being decoded outside of a Code attribute's sub-attributes.
type codeMaps struct {
	byteToIndex map[uint32]int
	indexToByte map[int]uint32
}

// LineNumberEntry is one row of a LineNumberTable attribute (JVMS §4.7.12).
// StartPC is an instruction index.
type LineNumberEntry struct {
	StartPC    int
	LineNumber uint16
}

// LineNumberTableAttr maps instruction indices to source line numbers.
type LineNumberTableAttr struct {
	NameIndex uint16
	Entries   []LineNumberEntry
}

func (LineNumberTableAttr) Name() string { return "LineNumberTable" }

func decodeLineNumberTableAttr(r *reader, nameIndex uint16, cm *codeMaps) (LineNumberTableAttr, error) {
	count, err := r.readU16()
	if err != nil {
		return LineNumberTableAttr{}, err
	}
	entries := make([]LineNumberEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		startPC, err := r.readU16()
		if err != nil {
			return LineNumberTableAttr{}, err
		}
		lineNumber, err := r.readU16()
		if err != nil {
			return LineNumberTableAttr{}, err
		}
		entries = append(entries, LineNumberEntry{StartPC: resolvePC(cm, startPC), LineNumber: lineNumber})
	}
	return LineNumberTableAttr{NameIndex: nameIndex, Entries: entries}, nil
}

func encodeLineNumberTableAttr(w *writer, a LineNumberTableAttr, cm *codeMaps) {
	w.writeU16(uint16(len(a.Entries)))
	for _, e := range a.Entries {
		w.writeU16(uint16(unresolvePC(cm, e.StartPC)))
		w.writeU16(e.LineNumber)
	}
}

// LocalVariableEntry is one row of a LocalVariableTable attribute (JVMS
// §4.7.13). StartPC and Length are instruction-quantities in memory (byte
// quantities on the wire).
type LocalVariableEntry struct {
	StartPC         int
	Length          int
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

type LocalVariableTableAttr struct {
	NameIndex uint16
	Entries   []LocalVariableEntry
}

func (LocalVariableTableAttr) Name() string { return "LocalVariableTable" }

func decodeLocalVariableTableAttr(r *reader, nameIndex uint16, cm *codeMaps) (LocalVariableTableAttr, error) {
	count, err := r.readU16()
	if err != nil {
		return LocalVariableTableAttr{}, err
	}
	entries := make([]LocalVariableEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		startPC, err := r.readU16()
		if err != nil {
			return LocalVariableTableAttr{}, err
		}
		length, err := r.readU16()
		if err != nil {
			return LocalVariableTableAttr{}, err
		}
		nameIdx, err := r.readU16()
		if err != nil {
			return LocalVariableTableAttr{}, err
		}
		descIdx, err := r.readU16()
		if err != nil {
			return LocalVariableTableAttr{}, err
		}
		index, err := r.readU16()
		if err != nil {
			return LocalVariableTableAttr{}, err
		}
		entries = append(entries, LocalVariableEntry{
			StartPC: resolvePC(cm, startPC), Length: resolveLength(cm, startPC, length),
			NameIndex: nameIdx, DescriptorIndex: descIdx, Index: index,
		})
	}
	return LocalVariableTableAttr{NameIndex: nameIndex, Entries: entries}, nil
}

func encodeLocalVariableTableAttr(w *writer, a LocalVariableTableAttr, cm *codeMaps) {
	w.writeU16(uint16(len(a.Entries)))
	for _, e := range a.Entries {
		startByte := unresolvePC(cm, e.StartPC)
		endByte := unresolvePC(cm, e.StartPC+e.Length)
		w.writeU16(uint16(startByte))
		w.writeU16(uint16(endByte - startByte))
		w.writeU16(e.NameIndex)
		w.writeU16(e.DescriptorIndex)
		w.writeU16(e.Index)
	}
}

// LocalVariableTypeEntry is one row of a LocalVariableTypeTable attribute
// (JVMS §4.7.14): same shape as LocalVariableEntry but carrying a generic
// signature index instead of a descriptor index.
type LocalVariableTypeEntry struct {
	StartPC        int
	Length         int
	NameIndex      uint16
	SignatureIndex uint16
	Index          uint16
}

type LocalVariableTypeTableAttr struct {
	NameIndex uint16
	Entries   []LocalVariableTypeEntry
}

func (LocalVariableTypeTableAttr) Name() string { return "LocalVariableTypeTable" }

func decodeLocalVariableTypeTableAttr(r *reader, nameIndex uint16, cm *codeMaps) (LocalVariableTypeTableAttr, error) {
	count, err := r.readU16()
	if err != nil {
		return LocalVariableTypeTableAttr{}, err
	}
	entries := make([]LocalVariableTypeEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		startPC, err := r.readU16()
		if err != nil {
			return LocalVariableTypeTableAttr{}, err
		}
		length, err := r.readU16()
		if err != nil {
			return LocalVariableTypeTableAttr{}, err
		}
		nameIdx, err := r.readU16()
		if err != nil {
			return LocalVariableTypeTableAttr{}, err
		}
		sigIdx, err := r.readU16()
		if err != nil {
			return LocalVariableTypeTableAttr{}, err
		}
		index, err := r.readU16()
		if err != nil {
			return LocalVariableTypeTableAttr{}, err
		}
		entries = append(entries, LocalVariableTypeEntry{
			StartPC: resolvePC(cm, startPC), Length: resolveLength(cm, startPC, length),
			NameIndex: nameIdx, SignatureIndex: sigIdx, Index: index,
		})
	}
	return LocalVariableTypeTableAttr{NameIndex: nameIndex, Entries: entries}, nil
}

func encodeLocalVariableTypeTableAttr(w *writer, a LocalVariableTypeTableAttr, cm *codeMaps) {
	w.writeU16(uint16(len(a.Entries)))
	for _, e := range a.Entries {
		startByte := unresolvePC(cm, e.StartPC)
		endByte := unresolvePC(cm, e.StartPC+e.Length)
		w.writeU16(uint16(startByte))
		w.writeU16(uint16(endByte - startByte))
		w.writeU16(e.NameIndex)
		w.writeU16(e.SignatureIndex)
		w.writeU16(e.Index)
	}
}

// resolvePC converts a wire byte PC to an instruction index when cm is
// available; outside a Code context (cm == nil) the raw byte value passes
// through unchanged, since there is no instruction stream to index into.
func resolvePC(cm *codeMaps, bytePC uint16) int {
	if cm == nil {
		return int(bytePC)
	}
	if idx, ok := cm.byteToIndex[uint32(bytePC)]; ok {
		return idx
	}
	return int(bytePC)
}

// resolveLength converts a (start, length) byte pair to an instruction
// count by resolving both endpoints through the byte map and subtracting.
func resolveLength(cm *codeMaps, startBytePC, length uint16) int {
	if cm == nil {
		return int(length)
	}
	startIdx := resolvePC(cm, startBytePC)
	endIdx := largestInstructionAtOrBefore(cm.byteToIndex, uint32(startBytePC)+uint32(length))
	return endIdx - startIdx
}

func unresolvePC(cm *codeMaps, instrIdx int) uint32 {
	if cm == nil {
		return uint32(instrIdx)
	}
	if b, ok := cm.indexToByte[instrIdx]; ok {
		return b
	}
	return uint32(instrIdx)
}

// StackMapTableAttr is the StackMapTable attribute (JVMS §4.7.4): a list of
// frames, each describing the verification type state at one instruction.
type StackMapTableAttr struct {
	NameIndex uint16
	Frames    []StackMapFrame
}

func (StackMapTableAttr) Name() string { return "StackMapTable" }

// decodeStackMapTableAttr reads a StackMapTable's frames, re-indexing each
// frame's wire offset_delta against the instruction stream as it goes
// (JVMS §4.4.2's frame chaining, re-derived in instruction-index terms
// instead of byte terms). A frame's bci on the wire is prevByte+delta+1
// (delta alone for the first frame); the same recurrence holds for the
// resolved instruction index, threaded across frames via prevByte/prevInstr
// so each frame's InstrDelta ends up expressed against the previous frame's
// resolved instruction index rather than its byte offset.
func decodeStackMapTableAttr(r *reader, nameIndex uint16, cm *codeMaps) (StackMapTableAttr, error) {
	count, err := r.readU16()
	if err != nil {
		return StackMapTableAttr{}, err
	}
	var byteToIndex map[uint32]int
	if cm != nil {
		byteToIndex = cm.byteToIndex
	}
	frames := make([]StackMapFrame, 0, count)
	prevByte, prevInstr := -1, -1
	for i := uint16(0); i < count; i++ {
		f, err := decodeStackMapFrame(r, byteToIndex)
		if err != nil {
			return StackMapTableAttr{}, err
		}
		wireDelta := f.InstrDelta

		byteOffset := wireDelta
		if prevByte >= 0 {
			byteOffset = prevByte + wireDelta + 1
		}
		instrIdx := resolveFramePosition(byteToIndex, byteOffset)

		if prevInstr >= 0 {
			f.InstrDelta = instrIdx - prevInstr - 1
		} else {
			f.InstrDelta = instrIdx
		}
		prevByte, prevInstr = byteOffset, instrIdx
		frames = append(frames, f)
	}
	return StackMapTableAttr{NameIndex: nameIndex, Frames: frames}, nil
}

// encodeStackMapTableAttr inverts decodeStackMapTableAttr's re-indexing:
// each frame's InstrDelta (instruction-index domain) is walked back to an
// absolute instruction index, translated to a byte offset via cm, and
// re-expressed as the wire-domain offset_delta before reindexFrameDelta
// picks the frame_type encoding and encodeStackMapFrame writes it.
func encodeStackMapTableAttr(w *writer, a StackMapTableAttr, cm *codeMaps) error {
	var indexToByte map[int]uint32
	if cm != nil {
		indexToByte = cm.indexToByte
	}
	w.writeU16(uint16(len(a.Frames)))
	prevByte, prevInstr := -1, -1
	for _, f := range a.Frames {
		instrIdx := f.InstrDelta
		if prevInstr >= 0 {
			instrIdx = prevInstr + f.InstrDelta + 1
		}
		byteOffset := frameBytePosition(indexToByte, instrIdx)

		wireDelta := byteOffset
		if prevByte >= 0 {
			wireDelta = byteOffset - prevByte - 1
		}

		frameType, _ := reindexFrameDelta(f.FrameType, wireDelta)
		f.FrameType = frameType
		f.InstrDelta = wireDelta
		if err := encodeStackMapFrame(w, f, indexToByte); err != nil {
			return err
		}
		prevByte, prevInstr = byteOffset, instrIdx
	}
	return nil
}

// resolveFramePosition and frameBytePosition translate a StackMapTable
// frame's chained position between the byte and instruction-index domains,
// the same identity-on-miss fallback as resolvePC/unresolvePC.
func resolveFramePosition(byteToIndex map[uint32]int, byteOffset int) int {
	if byteToIndex == nil {
		return byteOffset
	}
	if idx, ok := byteToIndex[uint32(byteOffset)]; ok {
		return idx
	}
	return byteOffset
}

func frameBytePosition(indexToByte map[int]uint32, instrIdx int) int {
	if indexToByte == nil {
		return instrIdx
	}
	if b, ok := indexToByte[instrIdx]; ok {
		return int(b)
	}
	return instrIdx
}
