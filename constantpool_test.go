// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "testing"

func TestConstantPoolEmpty(t *testing.T) {
	cp := NewConstantPool()
	if cp.Count() != 1 {
		t.Errorf("Count() = %d, want 1 (only the unused slot 0)", cp.Count())
	}
	if _, err := cp.Get(0); err == nil {
		t.Error("Get(0) succeeded, want error (slot 0 is never used)")
	}
	if _, err := cp.Get(1); err == nil {
		t.Error("Get(1) succeeded on an empty pool, want error")
	}
}

func TestConstantPoolLongDoubleDoubleSlot(t *testing.T) {
	cp := NewConstantPool()
	idx := cp.Add(ConstantLong{Value: 42})
	if idx != 1 {
		t.Fatalf("Add(Long) returned index %d, want 1", idx)
	}

	// The slot right after a Long is unusable.
	if _, err := cp.Get(2); err == nil {
		t.Error("Get(2) succeeded on the slot after a Long, want error")
	}

	// A following entry lands at index 3, not 2.
	nextIdx := cp.Add(ConstantInteger{Value: 7})
	if nextIdx != 3 {
		t.Errorf("Add(Integer) after a Long returned index %d, want 3", nextIdx)
	}
	if cp.Count() != 4 {
		t.Errorf("Count() = %d, want 4", cp.Count())
	}

	got, err := cp.Get(3)
	if err != nil {
		t.Fatalf("Get(3) failed: %v", err)
	}
	if got != (Constant)(ConstantInteger{Value: 7}) {
		t.Errorf("Get(3) = %#v, want ConstantInteger{7}", got)
	}
}

func TestConstantPoolDoubleAlsoTakesTwoSlots(t *testing.T) {
	cp := NewConstantPool()
	cp.Add(ConstantDouble{Value: 3.5})
	idx := cp.Add(ConstantUtf8{Value: "x"})
	if idx != 3 {
		t.Errorf("Add after a Double returned index %d, want 3", idx)
	}
}

func TestConstantPoolDecodeEncodeRoundTrip(t *testing.T) {
	// constant_pool_count = 6: entries at 1=Utf8("hi"), 2=Long, 3=(unused),
	// 4=Class(name_index=1), 5=Integer.
	raw := []byte{
		TagUtf8, 0x00, 0x02, 'h', 'i',
		TagLong, 0, 0, 0, 0, 0, 0, 0, 99,
		TagClass, 0x00, 0x01,
		TagInteger, 0x00, 0x00, 0x00, 0x2A,
	}
	r := newReader(raw)
	cp, err := decodeConstantPool(r, 6, &Options{})
	if err != nil {
		t.Fatalf("decodeConstantPool failed: %v", err)
	}
	if cp.Count() != 6 {
		t.Fatalf("Count() = %d, want 6", cp.Count())
	}

	utf8, err := cp.Utf8(1)
	if err != nil || utf8 != "hi" {
		t.Errorf("Utf8(1) = %q, %v, want \"hi\", nil", utf8, err)
	}
	if _, err := cp.Get(3); err == nil {
		t.Error("Get(3) succeeded on the slot after a Long, want error")
	}
	className, err := cp.ClassName(4)
	if err != nil || className != "hi" {
		t.Errorf("ClassName(4) = %q, %v, want \"hi\", nil", className, err)
	}

	w := newWriter()
	encodeConstantPool(w, cp)
	if string(w.bytes()) != string(raw) {
		t.Errorf("re-encoded pool = % x, want % x", w.bytes(), raw)
	}
}

func TestConstantPoolAddUtf8Dedups(t *testing.T) {
	cp := NewConstantPool()
	first := cp.AddUtf8("java/lang/Object")
	second := cp.AddUtf8("java/lang/Object")
	if first != second {
		t.Fatalf("AddUtf8 called twice with the same string returned %d then %d, want equal indices", first, second)
	}
	if got, err := cp.Utf8(first); err != nil || got != "java/lang/Object" {
		t.Fatalf("Utf8(%d) = %q, %v, want \"java/lang/Object\", nil", first, got, err)
	}

	other := cp.AddUtf8("java/lang/String")
	if other == first {
		t.Fatalf("AddUtf8 for a distinct string reused index %d", first)
	}
	if count := cp.Count(); count != 3 {
		t.Fatalf("Count() = %d, want 3 (unused slot + two distinct Utf8 entries)", count)
	}
}

func TestConstantPoolResourceLimit(t *testing.T) {
	raw := []byte{TagInteger, 0, 0, 0, 1}
	r := newReader(raw)
	opts := &Options{MaxConstantPoolCount: 1}
	if _, err := decodeConstantPool(r, 5, opts); err == nil {
		t.Error("decodeConstantPool succeeded past MaxConstantPoolCount, want error")
	}
}

func TestValidateConstantPoolCrossReference(t *testing.T) {
	cp := NewConstantPool()
	cp.Add(ConstantInteger{Value: 1}) // index 1, not a Utf8
	cp.Add(ConstantClass{NameIndex: 1})

	if err := validateConstantPool(cp); err == nil {
		t.Error("validateConstantPool succeeded with a Class naming a non-Utf8 entry, want error")
	}
}

func TestValidateConstantPoolValid(t *testing.T) {
	cp := NewConstantPool()
	cp.Add(ConstantUtf8{Value: "Foo"})
	cp.Add(ConstantClass{NameIndex: 1})

	if err := validateConstantPool(cp); err != nil {
		t.Errorf("validateConstantPool failed on a valid pool: %v", err)
	}
}
