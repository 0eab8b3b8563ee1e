// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"reflect"
	"testing"
)

func TestCodeAttrMinimalRoundTrip(t *testing.T) {
	raw := []byte{
		0x00, 0x01, // max_stack
		0x00, 0x01, // max_locals
		0x00, 0x00, 0x00, 0x01, // code_length
		byte(OpReturn),
		0x00, 0x00, // exception_table_length
		0x00, 0x00, // attributes_count
	}
	r := newReader(raw)
	c, err := decodeCodeAttr(r, 7, nil, &Options{}, 0)
	if err != nil {
		t.Fatalf("decodeCodeAttr failed: %v", err)
	}
	if c.MaxStack != 1 || c.MaxLocals != 1 {
		t.Fatalf("MaxStack/MaxLocals = %d/%d, want 1/1", c.MaxStack, c.MaxLocals)
	}
	if len(c.Code) != 1 {
		t.Fatalf("len(Code) = %d, want 1", len(c.Code))
	}
	if c.Code[0].Opcode() != OpReturn {
		t.Errorf("Code[0].Opcode() = %v, want OpReturn", c.Code[0].Opcode())
	}

	w := newWriter()
	if err := encodeCodeAttr(w, c); err != nil {
		t.Fatalf("encodeCodeAttr failed: %v", err)
	}
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}

func TestCodeAttrExceptionTableEndPCAtCodeLength(t *testing.T) {
	raw := []byte{
		0x00, 0x01, // max_stack
		0x00, 0x01, // max_locals
		0x00, 0x00, 0x00, 0x02, // code_length
		byte(OpNop), byte(OpNop),
		0x00, 0x01, // exception_table_length
		0x00, 0x00, // start_pc = 0
		0x00, 0x02, // end_pc = code_length
		0x00, 0x00, // handler_pc = 0
		0x00, 0x00, // catch_type = 0 (finally)
		0x00, 0x00, // attributes_count
	}
	r := newReader(raw)
	c, err := decodeCodeAttr(r, 7, nil, &Options{}, 0)
	if err != nil {
		t.Fatalf("decodeCodeAttr failed: %v", err)
	}
	if len(c.ExceptionTable) != 1 {
		t.Fatalf("len(ExceptionTable) = %d, want 1", len(c.ExceptionTable))
	}
	entry := c.ExceptionTable[0]
	if entry.EndPC != len(c.Code) {
		t.Errorf("EndPC = %d, want %d (one past the last instruction)", entry.EndPC, len(c.Code))
	}

	w := newWriter()
	if err := encodeCodeAttr(w, c); err != nil {
		t.Fatalf("encodeCodeAttr failed: %v", err)
	}
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}

func TestCodeAttrResourceLimit(t *testing.T) {
	raw := []byte{
		0x00, 0x01, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x02,
		byte(OpNop), byte(OpNop),
		0x00, 0x00,
		0x00, 0x00,
	}
	r := newReader(raw)
	opts := &Options{MaxCodeLength: 1}
	if _, err := decodeCodeAttr(r, 7, nil, opts, 0); err == nil {
		t.Error("decodeCodeAttr succeeded past MaxCodeLength, want error")
	}
}

func TestLineNumberTablePCRoundTrip(t *testing.T) {
	// Code: nop(0); nop(1); nop(2). byteToIndex identity for single-byte ops.
	byteToIndex := map[uint32]int{0: 0, 1: 1, 2: 2}
	indexToByte := map[int]uint32{0: 0, 1: 1, 2: 2}

	raw := []byte{
		0x00, 0x02, // line_number_table_length
		0x00, 0x00, 0x00, 0x0A, // start_pc=0, line=10
		0x00, 0x02, 0x00, 0x0B, // start_pc=2, line=11
	}
	cm := &codeMaps{byteToIndex: byteToIndex}
	r := newReader(raw)
	a, err := decodeLineNumberTableAttr(r, 9, cm)
	if err != nil {
		t.Fatalf("decodeLineNumberTableAttr failed: %v", err)
	}
	want := []LineNumberEntry{{StartPC: 0, LineNumber: 10}, {StartPC: 2, LineNumber: 11}}
	if !reflect.DeepEqual(a.Entries, want) {
		t.Fatalf("Entries = %#v, want %#v", a.Entries, want)
	}

	cmEnc := &codeMaps{indexToByte: indexToByte}
	w := newWriter()
	encodeLineNumberTableAttr(w, a, cmEnc)
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}

func TestLineNumberTableOutsideCodeContextPassesThrough(t *testing.T) {
	raw := []byte{0x00, 0x01, 0x00, 0x2A, 0x00, 0x05}
	r := newReader(raw)
	a, err := decodeLineNumberTableAttr(r, 9, nil)
	if err != nil {
		t.Fatalf("decodeLineNumberTableAttr failed: %v", err)
	}
	if a.Entries[0].StartPC != 42 {
		t.Errorf("StartPC = %d, want raw byte value 42 unresolved", a.Entries[0].StartPC)
	}
}

func TestStackMapTableDeltaReindexedAgainstInstructions(t *testing.T) {
	// Four instructions: three 2-byte bipush at byte 0/2/4 (instr 0/1/2),
	// one 1-byte return at byte 6 (instr 3). A frame at byte 4 (instr 2)
	// followed by a frame at byte 6 (instr 3): the wire deltas (4, then
	// 6-4-1=1) differ from the instruction-index deltas (2, then
	// 3-2-1=0), so a correct reindex must not just copy the wire value.
	byteToIndex := map[uint32]int{0: 0, 2: 1, 4: 2, 6: 3}
	indexToByte := map[int]uint32{0: 0, 1: 2, 2: 4, 3: 6}

	raw := []byte{
		0x00, 0x02, // number_of_entries
		4, // SameFrame, offset_delta=4 -> byte 4 -> instr 2
		1, // SameFrame, offset_delta=1 -> byte 4+1+1=6 -> instr 3
	}
	r := newReader(raw)
	a, err := decodeStackMapTableAttr(r, 9, &codeMaps{byteToIndex: byteToIndex})
	if err != nil {
		t.Fatalf("decodeStackMapTableAttr failed: %v", err)
	}
	if len(a.Frames) != 2 {
		t.Fatalf("len(Frames) = %d, want 2", len(a.Frames))
	}
	if a.Frames[0].InstrDelta != 2 {
		t.Errorf("Frames[0].InstrDelta = %d, want 2 (instr index of the first frame)", a.Frames[0].InstrDelta)
	}
	if a.Frames[1].InstrDelta != 0 {
		t.Errorf("Frames[1].InstrDelta = %d, want 0 (instr 3 - instr 2 - 1)", a.Frames[1].InstrDelta)
	}

	w := newWriter()
	if err := encodeStackMapTableAttr(w, a, &codeMaps{indexToByte: indexToByte}); err != nil {
		t.Fatalf("encodeStackMapTableAttr failed: %v", err)
	}
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}

func TestLocalVariableTablePCRoundTrip(t *testing.T) {
	byteToIndex := map[uint32]int{0: 0, 1: 1, 2: 2, 3: 3}
	indexToByte := map[int]uint32{0: 0, 1: 1, 2: 2, 3: 3}

	raw := []byte{
		0x00, 0x01, // local_variable_table_length
		0x00, 0x00, // start_pc = 0
		0x00, 0x03, // length = 3 (byte span)
		0x00, 0x01, // name_index
		0x00, 0x02, // descriptor_index
		0x00, 0x00, // index
	}
	cm := &codeMaps{byteToIndex: byteToIndex}
	r := newReader(raw)
	a, err := decodeLocalVariableTableAttr(r, 9, cm)
	if err != nil {
		t.Fatalf("decodeLocalVariableTableAttr failed: %v", err)
	}
	if a.Entries[0].StartPC != 0 || a.Entries[0].Length != 3 {
		t.Fatalf("Entries[0] = %#v, want StartPC=0 Length=3", a.Entries[0])
	}

	cmEnc := &codeMaps{indexToByte: indexToByte}
	w := newWriter()
	encodeLocalVariableTableAttr(w, a, cmEnc)
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}
