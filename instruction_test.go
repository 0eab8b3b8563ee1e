// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"reflect"
	"testing"
)

// decodeOne decodes a single instruction from raw bytes and asserts the
// whole buffer was consumed, mirroring how decodeInstructions drives
// decodeOneInstruction over a full code array.
func decodeOne(t *testing.T, raw []byte) Instruction {
	t.Helper()
	insns, _, err := decodeInstructions(raw)
	if err != nil {
		t.Fatalf("decodeInstructions(% x) failed: %v", raw, err)
	}
	if len(insns) != 1 {
		t.Fatalf("decodeInstructions(% x) = %d instructions, want 1", raw, len(insns))
	}
	return insns[0]
}

func TestInstructionDecodeEncodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want Instruction
	}{
		{"simple nop", []byte{byte(OpNop)}, InsnSimple{Op: OpNop}},
		{"simple iadd", []byte{byte(OpIadd)}, InsnSimple{Op: OpIadd}},
		{"bipush", []byte{byte(OpBipush), 0x7F}, InsnIntConst{Op: OpBipush, Value: 127}},
		{"sipush", []byte{byte(OpSipush), 0x01, 0x00}, InsnIntConst{Op: OpSipush, Value: 256}},
		{"ldc", []byte{byte(OpLdc), 0x05}, InsnLoadConst{Op: OpLdc, Index: 5}},
		{"ldc_w", []byte{byte(OpLdcW), 0x01, 0x02}, InsnLoadConst{Op: OpLdcW, Index: 0x0102}},
		{"iload", []byte{byte(OpIload), 0x03}, InsnLocalVar{Op: OpIload, Index: 3}},
		{"istore", []byte{byte(OpIstore), 0x02}, InsnLocalVar{Op: OpIstore, Index: 2}},
		{"ret", []byte{byte(OpRet), 0x01}, InsnLocalVar{Op: OpRet, Index: 1}},
		{"getstatic", []byte{byte(OpGetstatic), 0x00, 0x07}, InsnFieldOrMethodRef{Op: OpGetstatic, Index: 7}},
		{"new", []byte{byte(OpNew), 0x00, 0x09}, InsnType{Op: OpNew, Index: 9}},
		{"newarray", []byte{byte(OpNewarray), 0x0A}, InsnNewarray{Type: ArrayType(10)}},
		{"multianewarray", []byte{byte(OpMultianewarray), 0x00, 0x04, 0x02}, InsnMultianewarray{Index: 4, Dimensions: 2}},
		{"iinc", []byte{byte(OpIinc), 0x01, 0xFF}, InsnIinc{Index: 1, Const: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeOne(t, tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("decode = %#v, want %#v", got, tt.want)
			}

			encoded, _, err := encodeInstructions([]Instruction{got})
			if err != nil {
				t.Fatalf("encodeInstructions failed: %v", err)
			}
			if !reflect.DeepEqual(encoded, tt.raw) {
				t.Errorf("encode = % x, want % x", encoded, tt.raw)
			}
		})
	}
}

func TestInstructionWideIload(t *testing.T) {
	raw := []byte{byte(OpWide), byte(OpIload), 0x01, 0x02}
	got := decodeOne(t, raw)
	want := InsnLocalVar{Op: OpIload, Index: 0x0102, Wide: true}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("decode = %#v, want %#v", got, want)
	}

	encoded, _, err := encodeInstructions([]Instruction{got})
	if err != nil {
		t.Fatalf("encodeInstructions failed: %v", err)
	}
	if !reflect.DeepEqual(encoded, raw) {
		t.Errorf("encode = % x, want % x", encoded, raw)
	}
}

func TestInstructionWideIinc(t *testing.T) {
	raw := []byte{byte(OpWide), byte(OpIinc), 0x00, 0x05, 0xFF, 0xFE}
	got := decodeOne(t, raw)
	want := InsnIinc{Index: 5, Const: -2, Wide: true}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("decode = %#v, want %#v", got, want)
	}

	encoded, _, err := encodeInstructions([]Instruction{got})
	if err != nil {
		t.Fatalf("encodeInstructions failed: %v", err)
	}
	if !reflect.DeepEqual(encoded, raw) {
		t.Errorf("encode = % x, want % x", encoded, raw)
	}
}

func TestInstructionInvokeInterface(t *testing.T) {
	raw := []byte{byte(OpInvokeinterface), 0x00, 0x0A, 0x02, 0x00}
	got := decodeOne(t, raw)
	want := InsnInvokeInterface{Index: 10, Count: 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("decode = %#v, want %#v", got, want)
	}

	encoded, _, err := encodeInstructions([]Instruction{got})
	if err != nil {
		t.Fatalf("encodeInstructions failed: %v", err)
	}
	if !reflect.DeepEqual(encoded, raw) {
		t.Errorf("encode = % x, want % x", encoded, raw)
	}
}

func TestInstructionInvokeInterfaceRejectsNonzeroTrailer(t *testing.T) {
	raw := []byte{byte(OpInvokeinterface), 0x00, 0x0A, 0x02, 0x01}
	if _, _, err := decodeInstructions(raw); err == nil {
		t.Error("decodeInstructions succeeded with a nonzero invokeinterface trailer, want error")
	}
}

func TestInstructionInvokeDynamic(t *testing.T) {
	raw := []byte{byte(OpInvokedynamic), 0x00, 0x0B, 0x00, 0x00}
	got := decodeOne(t, raw)
	want := InsnInvokeDynamic{Index: 11}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("decode = %#v, want %#v", got, want)
	}

	encoded, _, err := encodeInstructions([]Instruction{got})
	if err != nil {
		t.Fatalf("encodeInstructions failed: %v", err)
	}
	if !reflect.DeepEqual(encoded, raw) {
		t.Errorf("encode = % x, want % x", encoded, raw)
	}
}

func TestInstructionInvokeDynamicRejectsNonzeroReserved(t *testing.T) {
	tests := [][]byte{
		{byte(OpInvokedynamic), 0x00, 0x0B, 0x01, 0x00},
		{byte(OpInvokedynamic), 0x00, 0x0B, 0x00, 0x01},
	}
	for _, raw := range tests {
		if _, _, err := decodeInstructions(raw); err == nil {
			t.Errorf("decodeInstructions(% x) succeeded, want error", raw)
		}
	}
}

func TestInstructionBranchTargetResolution(t *testing.T) {
	// nop; nop; goto -2 (back to the first nop); nop
	raw := []byte{
		byte(OpNop),
		byte(OpNop),
		byte(OpGoto), 0xFF, 0xFE, // offset -2, relative to the goto's own byte position (index 2)
		byte(OpNop),
	}
	insns, byteToIndex, err := decodeInstructions(raw)
	if err != nil {
		t.Fatalf("decodeInstructions failed: %v", err)
	}
	if len(insns) != 4 {
		t.Fatalf("got %d instructions, want 4", len(insns))
	}
	branch, ok := insns[2].(InsnBranch)
	if !ok {
		t.Fatalf("insns[2] = %#v, want InsnBranch", insns[2])
	}
	if branch.Target != 0 {
		t.Errorf("branch.Target = %d, want 0 (instruction index of first nop)", branch.Target)
	}

	encoded, indexToByte, err := encodeInstructions(insns)
	if err != nil {
		t.Fatalf("encodeInstructions failed: %v", err)
	}
	if !reflect.DeepEqual(encoded, raw) {
		t.Errorf("encode = % x, want % x", encoded, raw)
	}
	if indexToByte[2] != uint32(byteToIndex[2]) {
		// byteToIndex is keyed by byte offset, indexToByte by instruction
		// index; both maps agree the goto lives at byte offset 2.
		t.Errorf("indexToByte[2] = %d, want %d", indexToByte[2], uint32(2))
	}
}

func TestInstructionTableswitchPadding(t *testing.T) {
	// tableswitch opcode at each of the four possible byte positions mod 4,
	// to exercise every padding length from 0 to 3.
	for startPos := 0; startPos < 4; startPos++ {
		t.Run(map[int]string{0: "pad3", 1: "pad2", 2: "pad1", 3: "pad0"}[startPos], func(t *testing.T) {
			prefix := make([]byte, startPos)
			for i := range prefix {
				prefix[i] = byte(OpNop)
			}

			afterOpcode := uint32(startPos) + 1
			pad := (4 - afterOpcode%4) % 4

			body := []byte{byte(OpTableswitch)}
			for i := uint32(0); i < pad; i++ {
				body = append(body, 0)
			}
			// default=10, low=0, high=1, offsets=[20, 30]
			body = append(body,
				0x00, 0x00, 0x00, 0x0A, // default
				0x00, 0x00, 0x00, 0x00, // low
				0x00, 0x00, 0x00, 0x01, // high
				0x00, 0x00, 0x00, 0x14, // offsets[0] = 20
				0x00, 0x00, 0x00, 0x1E, // offsets[1] = 30
			)

			raw := append(prefix, body...)
			insns, _, err := decodeInstructions(raw)
			if err != nil {
				t.Fatalf("decodeInstructions(% x) failed: %v", raw, err)
			}
			ts, ok := insns[len(insns)-1].(InsnTableswitch)
			if !ok {
				t.Fatalf("last instruction = %#v, want InsnTableswitch", insns[len(insns)-1])
			}
			want := InsnTableswitch{Default: 10, Low: 0, High: 1, Offsets: []int32{20, 30}}
			if !reflect.DeepEqual(ts, want) {
				t.Fatalf("decoded tableswitch = %#v, want %#v", ts, want)
			}

			encoded, _, err := encodeInstructions(insns)
			if err != nil {
				t.Fatalf("encodeInstructions failed: %v", err)
			}
			if !reflect.DeepEqual(encoded, raw) {
				t.Errorf("encode = % x, want % x", encoded, raw)
			}
		})
	}
}

func TestInstructionLookupswitch(t *testing.T) {
	// lookupswitch at byte offset 0: padding is 3 zero bytes.
	raw := []byte{byte(OpLookupswitch), 0, 0, 0,
		0x00, 0x00, 0x00, 0x09, // default = 9
		0x00, 0x00, 0x00, 0x02, // npairs = 2
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x10, // (1, 16)
		0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x20, // (2, 32)
	}
	insns, _, err := decodeInstructions(raw)
	if err != nil {
		t.Fatalf("decodeInstructions failed: %v", err)
	}
	ls, ok := insns[0].(InsnLookupswitch)
	if !ok {
		t.Fatalf("insns[0] = %#v, want InsnLookupswitch", insns[0])
	}
	want := InsnLookupswitch{
		Default: 9,
		Pairs: []LookupswitchPair{
			{Match: 1, Offset: 16},
			{Match: 2, Offset: 32},
		},
	}
	if !reflect.DeepEqual(ls, want) {
		t.Fatalf("decoded lookupswitch = %#v, want %#v", ls, want)
	}

	encoded, _, err := encodeInstructions(insns)
	if err != nil {
		t.Fatalf("encodeInstructions failed: %v", err)
	}
	if !reflect.DeepEqual(encoded, raw) {
		t.Errorf("encode = % x, want % x", encoded, raw)
	}
}

func TestInstructionUnknownOpcodeFails(t *testing.T) {
	// 0xCB falls in the unused range between breakpoint (0xca) and
	// impdep1 (0xfe); it has no registered decode shape.
	raw := []byte{0xCB}
	if _, _, err := decodeInstructions(raw); err == nil {
		t.Error("decodeInstructions(0xCB) succeeded, want error for unmapped opcode")
	}
}
