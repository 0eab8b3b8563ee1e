// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"reflect"
	"testing"
)

func TestFieldRoundTrip(t *testing.T) {
	cp := poolWithUtf8("Deprecated")
	raw := []byte{
		0x00, 0x09, // access_flags: ACC_PUBLIC | ACC_STATIC
		0x00, 0x05, // name_index
		0x00, 0x06, // descriptor_index
		0x00, 0x01, // attributes_count
		0x00, 0x01, 0x00, 0x00, 0x00, 0x00, // Deprecated, empty payload
	}
	r := newReader(raw)
	f, err := decodeField(r, cp, &Options{})
	if err != nil {
		t.Fatalf("decodeField failed: %v", err)
	}
	if f.AccessFlags != (AccFieldPublic | AccFieldStatic) {
		t.Errorf("AccessFlags = %#x, want ACC_PUBLIC|ACC_STATIC", uint16(f.AccessFlags))
	}
	if f.NameIndex != 5 || f.DescriptorIndex != 6 {
		t.Fatalf("NameIndex/DescriptorIndex = %d/%d, want 5/6", f.NameIndex, f.DescriptorIndex)
	}
	if len(f.Attributes) != 1 {
		t.Fatalf("len(Attributes) = %d, want 1", len(f.Attributes))
	}

	w := newWriter()
	if err := encodeField(w, f); err != nil {
		t.Fatalf("encodeField failed: %v", err)
	}
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}

func TestFieldsResourceLimit(t *testing.T) {
	raw := []byte{0x00, 0x02} // fields_count = 2
	r := newReader(raw)
	opts := &Options{MaxFieldsCount: 1}
	if _, err := decodeFields(r, nil, opts); err == nil {
		t.Error("decodeFields succeeded past MaxFieldsCount, want error")
	}
}

func TestFieldsEmpty(t *testing.T) {
	raw := []byte{0x00, 0x00}
	r := newReader(raw)
	fields, err := decodeFields(r, nil, &Options{})
	if err != nil {
		t.Fatalf("decodeFields failed: %v", err)
	}
	if len(fields) != 0 {
		t.Fatalf("len(fields) = %d, want 0", len(fields))
	}
}
