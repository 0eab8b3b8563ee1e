// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// VerificationTypeTag is the one-byte discriminator of a VerificationType
// (JVMS §4.7.4 Table 4.7.4-A).
type VerificationTypeTag uint8

const (
	VTTop               VerificationTypeTag = 0
	VTInteger           VerificationTypeTag = 1
	VTFloat             VerificationTypeTag = 2
	VTDouble            VerificationTypeTag = 3
	VTLong              VerificationTypeTag = 4
	VTNull              VerificationTypeTag = 5
	VTUninitializedThis VerificationTypeTag = 6
	VTObject            VerificationTypeTag = 7
	VTUninitialized     VerificationTypeTag = 8
)

// VerificationType is one local or stack slot's type state within a
// StackMapTable frame.
type VerificationType struct {
	Tag VerificationTypeTag

	// CPoolIndex is set for VTObject: the Class constant naming the type.
	CPoolIndex uint16

	// Offset is set for VTUninitialized: the instruction index of the new
	// instruction that created this not-yet-initialized object (translated
	// from the wire byte offset by the Code attribute's byte→instruction
	// map, same as exception table PCs).
	Offset int
}

func decodeVerificationType(r *reader) (VerificationType, error) {
	tag, err := r.readU8()
	if err != nil {
		return VerificationType{}, err
	}
	vt := VerificationType{Tag: VerificationTypeTag(tag)}
	switch vt.Tag {
	case VTObject:
		idx, err := r.readU16()
		if err != nil {
			return VerificationType{}, err
		}
		vt.CPoolIndex = idx
	case VTUninitialized:
		off, err := r.readU16()
		if err != nil {
			return VerificationType{}, err
		}
		vt.Offset = int(off)
	}
	return vt, nil
}

func encodeVerificationType(w *writer, vt VerificationType) {
	w.writeU8(uint8(vt.Tag))
	switch vt.Tag {
	case VTObject:
		w.writeU16(vt.CPoolIndex)
	case VTUninitialized:
		w.writeU16(uint16(vt.Offset))
	}
}

// Stack map frame type discriminator ranges (JVMS §4.7.4).
const (
	frameSameMax                  = 63
	frameSameLocals1StackItemMin  = 64
	frameSameLocals1StackItemMax  = 127
	frameSameLocals1StackItemExt  = 247
	frameChopMin                  = 248
	frameChopMax                  = 250
	frameSameFrameExtended        = 251
	frameAppendMin                = 252
	frameAppendMax                = 254
	frameFull                     = 255
)

// StackMapFrame is one entry of a StackMapTable attribute (JVMS §4.7.4).
// InstrDelta is the re-indexed analogue of the wire offset_delta: see
// StackMapTableAttr for the delta re-encoding rule.
type StackMapFrame struct {
	FrameType uint8

	// InstrDelta is the frame's position, expressed as a delta against the
	// previous frame's resolved instruction index (raw frame_type byte for
	// SameFrame/SameLocals1StackItemFrame, explicit field otherwise).
	InstrDelta int

	// Locals/Stack are populated for SameLocals1StackItemFrame(Extended),
	// Append and Full frames.
	Stack  []VerificationType
	Locals []VerificationType

	// ChopCount is populated for Chop frames: 251 - frame_type locals are
	// removed from the end of the effective locals list.
	ChopCount int
}

// decodeStackMapFrame reads one frame. codeByteToIndex resolves the
// VTUninitialized Offset field, which is PC-valued on the wire.
func decodeStackMapFrame(r *reader, codeByteToIndex map[uint32]int) (StackMapFrame, error) {
	frameType, err := r.readU8()
	if err != nil {
		return StackMapFrame{}, err
	}

	switch {
	case frameType <= frameSameMax:
		return StackMapFrame{FrameType: frameType, InstrDelta: int(frameType)}, nil

	case frameType >= frameSameLocals1StackItemMin && frameType <= frameSameLocals1StackItemMax:
		vt, err := decodeVerificationType(r)
		if err != nil {
			return StackMapFrame{}, err
		}
		resolveUninitializedOffset(&vt, codeByteToIndex)
		return StackMapFrame{
			FrameType:  frameType,
			InstrDelta: int(frameType) - 64,
			Stack:      []VerificationType{vt},
		}, nil

	case frameType == frameSameLocals1StackItemExt:
		delta, err := r.readU16()
		if err != nil {
			return StackMapFrame{}, err
		}
		vt, err := decodeVerificationType(r)
		if err != nil {
			return StackMapFrame{}, err
		}
		resolveUninitializedOffset(&vt, codeByteToIndex)
		return StackMapFrame{
			FrameType:  frameType,
			InstrDelta: int(delta),
			Stack:      []VerificationType{vt},
		}, nil

	case frameType >= frameChopMin && frameType <= frameChopMax:
		delta, err := r.readU16()
		if err != nil {
			return StackMapFrame{}, err
		}
		return StackMapFrame{
			FrameType:  frameType,
			InstrDelta: int(delta),
			ChopCount:  int(frameSameFrameExtended - frameType),
		}, nil

	case frameType == frameSameFrameExtended:
		delta, err := r.readU16()
		if err != nil {
			return StackMapFrame{}, err
		}
		return StackMapFrame{FrameType: frameType, InstrDelta: int(delta)}, nil

	case frameType >= frameAppendMin && frameType <= frameAppendMax:
		delta, err := r.readU16()
		if err != nil {
			return StackMapFrame{}, err
		}
		count := int(frameType) - frameSameFrameExtended
		locals := make([]VerificationType, 0, count)
		for i := 0; i < count; i++ {
			vt, err := decodeVerificationType(r)
			if err != nil {
				return StackMapFrame{}, err
			}
			resolveUninitializedOffset(&vt, codeByteToIndex)
			locals = append(locals, vt)
		}
		return StackMapFrame{FrameType: frameType, InstrDelta: int(delta), Locals: locals}, nil

	case frameType == frameFull:
		delta, err := r.readU16()
		if err != nil {
			return StackMapFrame{}, err
		}
		localsCount, err := r.readU16()
		if err != nil {
			return StackMapFrame{}, err
		}
		locals := make([]VerificationType, 0, localsCount)
		for i := uint16(0); i < localsCount; i++ {
			vt, err := decodeVerificationType(r)
			if err != nil {
				return StackMapFrame{}, err
			}
			resolveUninitializedOffset(&vt, codeByteToIndex)
			locals = append(locals, vt)
		}
		stackCount, err := r.readU16()
		if err != nil {
			return StackMapFrame{}, err
		}
		stack := make([]VerificationType, 0, stackCount)
		for i := uint16(0); i < stackCount; i++ {
			vt, err := decodeVerificationType(r)
			if err != nil {
				return StackMapFrame{}, err
			}
			resolveUninitializedOffset(&vt, codeByteToIndex)
			stack = append(stack, vt)
		}
		return StackMapFrame{FrameType: frameType, InstrDelta: int(delta), Locals: locals, Stack: stack}, nil

	default:
		return StackMapFrame{}, &InvalidAttributeLengthError{Name: "StackMapTable"}
	}
}

func resolveUninitializedOffset(vt *VerificationType, codeByteToIndex map[uint32]int) {
	if vt.Tag != VTUninitialized {
		return
	}
	if idx, ok := codeByteToIndex[uint32(vt.Offset)]; ok {
		vt.Offset = idx
	}
}

func unresolveUninitializedOffset(vt *VerificationType, codeIndexToByte map[int]uint32) {
	if vt.Tag != VTUninitialized {
		return
	}
	if b, ok := codeIndexToByte[vt.Offset]; ok {
		vt.Offset = int(b)
	}
}

// encodeStackMapFrame writes one frame. codeIndexToByte resolves
// VTUninitialized's Offset back to a wire PC.
func encodeStackMapFrame(w *writer, f StackMapFrame, codeIndexToByte map[int]uint32) error {
	switch {
	case f.FrameType <= frameSameMax:
		w.writeU8(f.FrameType)

	case f.FrameType >= frameSameLocals1StackItemMin && f.FrameType <= frameSameLocals1StackItemMax:
		w.writeU8(f.FrameType)
		vt := f.Stack[0]
		unresolveUninitializedOffset(&vt, codeIndexToByte)
		encodeVerificationType(w, vt)

	case f.FrameType == frameSameLocals1StackItemExt:
		w.writeU8(f.FrameType)
		w.writeU16(uint16(f.InstrDelta))
		vt := f.Stack[0]
		unresolveUninitializedOffset(&vt, codeIndexToByte)
		encodeVerificationType(w, vt)

	case f.FrameType >= frameChopMin && f.FrameType <= frameChopMax:
		w.writeU8(f.FrameType)
		w.writeU16(uint16(f.InstrDelta))

	case f.FrameType == frameSameFrameExtended:
		w.writeU8(f.FrameType)
		w.writeU16(uint16(f.InstrDelta))

	case f.FrameType >= frameAppendMin && f.FrameType <= frameAppendMax:
		w.writeU8(f.FrameType)
		w.writeU16(uint16(f.InstrDelta))
		for _, vt := range f.Locals {
			unresolveUninitializedOffset(&vt, codeIndexToByte)
			encodeVerificationType(w, vt)
		}

	case f.FrameType == frameFull:
		w.writeU8(f.FrameType)
		w.writeU16(uint16(f.InstrDelta))
		w.writeU16(uint16(len(f.Locals)))
		for _, vt := range f.Locals {
			unresolveUninitializedOffset(&vt, codeIndexToByte)
			encodeVerificationType(w, vt)
		}
		w.writeU16(uint16(len(f.Stack)))
		for _, vt := range f.Stack {
			unresolveUninitializedOffset(&vt, codeIndexToByte)
			encodeVerificationType(w, vt)
		}
	}
	return nil
}

// reindexFrameDelta picks the frame_type byte for a StackMapTable frame's
// offset_delta (as it will actually appear on the wire, already translated
// back from the instruction-index domain by the caller), promoting to the
// extended form when the delta no longer fits the compact
// SameFrame/SameLocals1StackItemFrame window. This is the documented
// resolution of the StackMapTable delta-overflow open question: promote
// rather than silently truncate.
func reindexFrameDelta(originalFrameType uint8, instrDelta int) (frameType uint8, extended bool) {
	switch {
	case originalFrameType <= frameSameMax:
		if instrDelta >= 0 && instrDelta <= frameSameMax {
			return uint8(instrDelta), false
		}
		return frameSameFrameExtended, true
	case originalFrameType >= frameSameLocals1StackItemMin && originalFrameType <= frameSameLocals1StackItemMax:
		if instrDelta >= 0 && instrDelta <= (frameSameLocals1StackItemMax-frameSameLocals1StackItemMin) {
			return uint8(instrDelta + frameSameLocals1StackItemMin), false
		}
		return frameSameLocals1StackItemExt, true
	default:
		return originalFrameType, false
	}
}
