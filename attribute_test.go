// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"reflect"
	"testing"
)

func poolWithUtf8(values ...string) *ConstantPool {
	cp := NewConstantPool()
	for _, v := range values {
		cp.Add(ConstantUtf8{Value: v})
	}
	return cp
}

func TestDecodeAttributeSourceFile(t *testing.T) {
	cp := poolWithUtf8("SourceFile", "Foo.java")
	raw := []byte{
		0x00, 0x01, // name_index -> "SourceFile"
		0x00, 0x00, 0x00, 0x02, // length
		0x00, 0x02, // sourcefile_index -> "Foo.java"
	}
	r := newReader(raw)
	attr, err := decodeAttribute(r, cp, &Options{}, 0, nil)
	if err != nil {
		t.Fatalf("decodeAttribute failed: %v", err)
	}
	sf, ok := attr.(SourceFileAttr)
	if !ok {
		t.Fatalf("attr = %#v, want SourceFileAttr", attr)
	}
	if sf.SourceFileIndex != 2 {
		t.Errorf("SourceFileIndex = %d, want 2", sf.SourceFileIndex)
	}

	w := newWriter()
	if err := encodeAttribute(w, attr, nil); err != nil {
		t.Fatalf("encodeAttribute failed: %v", err)
	}
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}

func TestDecodeAttributeUnknownNameRoundTrip(t *testing.T) {
	cp := poolWithUtf8("x-vendor-extension")
	raw := []byte{
		0x00, 0x01, // name_index -> "x-vendor-extension"
		0x00, 0x00, 0x00, 0x03, // length
		0xDE, 0xAD, 0xBE, // arbitrary payload, truncated to 3 bytes by length
	}
	r := newReader(raw)
	attr, err := decodeAttribute(r, cp, &Options{}, 0, nil)
	if err != nil {
		t.Fatalf("decodeAttribute failed: %v", err)
	}
	unk, ok := attr.(UnknownAttr)
	if !ok {
		t.Fatalf("attr = %#v, want UnknownAttr", attr)
	}
	if !reflect.DeepEqual(unk.Info, []byte{0xDE, 0xAD, 0xBE}) {
		t.Errorf("Info = % x, want deadbe", unk.Info)
	}

	w := newWriter()
	if err := encodeAttribute(w, attr, nil); err != nil {
		t.Fatalf("encodeAttribute failed: %v", err)
	}
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}

func TestDecodeAttributeBadNameIndexFails(t *testing.T) {
	cp := NewConstantPool() // empty: index 1 doesn't exist
	raw := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x00}
	r := newReader(raw)
	if _, err := decodeAttribute(r, cp, &Options{}, 0, nil); err == nil {
		t.Error("decodeAttribute succeeded with an unresolvable name_index, want error")
	}
}

func TestDecodeAttributeListResourceLimit(t *testing.T) {
	cp := poolWithUtf8("Deprecated")
	raw := []byte{
		0x00, 0x02, // attributes_count = 2
	}
	r := newReader(raw)
	opts := &Options{MaxAttributesCount: 1}
	if _, err := decodeAttributeListN(r, cp, opts, 0, 2, nil); err == nil {
		t.Error("decodeAttributeListN succeeded past MaxAttributesCount, want error")
	}
}

func TestDecodeAttributeRecursionDepthLimit(t *testing.T) {
	cp := poolWithUtf8("Deprecated")
	r := newReader(nil)
	opts := &Options{MaxAttributeRecursionDepth: 1}
	if _, err := decodeAttributeListN(r, cp, opts, 2, 0, nil); err == nil {
		t.Error("decodeAttributeListN succeeded past MaxAttributeRecursionDepth, want error")
	}
}

func TestDecodeAttributeDeprecatedEmptyPayload(t *testing.T) {
	cp := poolWithUtf8("Deprecated")
	raw := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x00}
	r := newReader(raw)
	attr, err := decodeAttribute(r, cp, &Options{}, 0, nil)
	if err != nil {
		t.Fatalf("decodeAttribute failed: %v", err)
	}
	if _, ok := attr.(DeprecatedAttr); !ok {
		t.Fatalf("attr = %#v, want DeprecatedAttr", attr)
	}

	w := newWriter()
	if err := encodeAttribute(w, attr, nil); err != nil {
		t.Fatalf("encodeAttribute failed: %v", err)
	}
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}

func TestDecodeAttributeExceptionsRoundTrip(t *testing.T) {
	cp := poolWithUtf8("Exceptions")
	raw := []byte{
		0x00, 0x01, // name_index
		0x00, 0x00, 0x00, 0x04, // length = 2 + 2*1
		0x00, 0x01, // number_of_exceptions
		0x00, 0x09, // exception_index_table[0]
	}
	r := newReader(raw)
	attr, err := decodeAttribute(r, cp, &Options{}, 0, nil)
	if err != nil {
		t.Fatalf("decodeAttribute failed: %v", err)
	}
	exc, ok := attr.(ExceptionsAttr)
	if !ok {
		t.Fatalf("attr = %#v, want ExceptionsAttr", attr)
	}
	if !reflect.DeepEqual(exc.ExceptionIndexTable, []uint16{9}) {
		t.Errorf("ExceptionIndexTable = %v, want [9]", exc.ExceptionIndexTable)
	}

	w := newWriter()
	if err := encodeAttribute(w, attr, nil); err != nil {
		t.Fatalf("encodeAttribute failed: %v", err)
	}
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}
