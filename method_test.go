// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"reflect"
	"testing"
)

func TestMethodRoundTrip(t *testing.T) {
	cp := poolWithUtf8("Deprecated")
	raw := []byte{
		0x00, 0x01, // access_flags: ACC_PUBLIC
		0x00, 0x05, // name_index
		0x00, 0x06, // descriptor_index
		0x00, 0x00, // attributes_count
	}
	r := newReader(raw)
	m, err := decodeMethod(r, cp, &Options{})
	if err != nil {
		t.Fatalf("decodeMethod failed: %v", err)
	}
	if m.AccessFlags != AccMethodPublic {
		t.Errorf("AccessFlags = %#x, want ACC_PUBLIC", uint16(m.AccessFlags))
	}
	if _, ok := m.Code(); ok {
		t.Error("Code() found a Code attribute on a method with none")
	}

	w := newWriter()
	if err := encodeMethod(w, m); err != nil {
		t.Fatalf("encodeMethod failed: %v", err)
	}
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}

func TestMethodCodeHelperFindsCodeAttribute(t *testing.T) {
	code := CodeAttr{MaxStack: 1, MaxLocals: 1}
	m := Method{
		AccessFlags: AccMethodPublic,
		Attributes:  []Attribute{DeprecatedAttr{}, code},
	}
	got, ok := m.Code()
	if !ok {
		t.Fatal("Code() did not find the CodeAttr among Attributes")
	}
	if !reflect.DeepEqual(got, code) {
		t.Errorf("Code() = %#v, want %#v", got, code)
	}
}

func TestMethodsResourceLimit(t *testing.T) {
	raw := []byte{0x00, 0x02} // methods_count = 2
	r := newReader(raw)
	opts := &Options{MaxMethodsCount: 1}
	if _, err := decodeMethods(r, nil, opts); err == nil {
		t.Error("decodeMethods succeeded past MaxMethodsCount, want error")
	}
}
