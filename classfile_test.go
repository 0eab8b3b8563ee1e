// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"reflect"
	"testing"
)

// minimalObjectClass returns the wire bytes of the smallest legal class
// file: java/lang/Object itself, with an empty constant pool beyond its own
// name, no fields, no methods, no attributes.
func minimalObjectClass() []byte {
	return []byte{
		0xCA, 0xFE, 0xBA, 0xBE, // magic
		0x00, 0x00, // minor
		0x00, 0x34, // major = 52 (Java 8)
		0x00, 0x03, // constant_pool_count
		0x01, 0x00, 0x10, // Utf8 length=16
		'j', 'a', 'v', 'a', '/', 'l', 'a', 'n', 'g', '/', 'O', 'b', 'j', 'e', 'c', 't',
		0x07, 0x00, 0x01, // Class name_index=1
		0x00, 0x20, // access_flags = ACC_SUPER
		0x00, 0x02, // this_class
		0x00, 0x00, // super_class
		0x00, 0x00, // interfaces_count
		0x00, 0x00, // fields_count
		0x00, 0x00, // methods_count
		0x00, 0x00, // attributes_count
	}
}

func TestNewFromBytesMinimalObject(t *testing.T) {
	raw := minimalObjectClass()
	cf, err := NewFromBytes(raw, nil)
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	defer cf.Close()

	if cf.Major != 52 || cf.Minor != 0 {
		t.Errorf("Version = %d.%d, want 52.0", cf.Major, cf.Minor)
	}
	if cf.AccessFlags != AccSuper {
		t.Errorf("AccessFlags = %#x, want ACC_SUPER", uint16(cf.AccessFlags))
	}
	name, err := cf.ThisClassName()
	if err != nil || name != "java/lang/Object" {
		t.Fatalf("ThisClassName() = %q, %v, want java/lang/Object, nil", name, err)
	}
	superName, err := cf.SuperClassName()
	if err != nil || superName != "" {
		t.Fatalf("SuperClassName() = %q, %v, want \"\", nil", superName, err)
	}

	out, err := cf.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !reflect.DeepEqual(out, raw) {
		t.Errorf("Serialize = % x, want % x", out, raw)
	}
}

func TestNewFromBytesRejectsBadMagic(t *testing.T) {
	raw := append([]byte{}, minimalObjectClass()...)
	raw[0] = 0x00
	if _, err := NewFromBytes(raw, nil); err != ErrInvalidMagicNumber {
		t.Errorf("err = %v, want ErrInvalidMagicNumber", err)
	}
}

func TestNewFromBytesFastSkipsVerify(t *testing.T) {
	raw := minimalObjectClass()
	raw[7] = 0x00  // major = 0: Verify rejects this, so success shows Fast skipped it
	raw[33] = 0x00 // access_flags low byte: drop ACC_SUPER, making AccessFlags 0

	cf, err := NewFromBytes(raw, &Options{Fast: true})
	if err != nil {
		t.Fatalf("NewFromBytes with Fast failed: %v", err)
	}
	defer cf.Close()
	if cf.AccessFlags != 0 {
		t.Errorf("AccessFlags = %#x, want 0", uint16(cf.AccessFlags))
	}
}

func TestNewFromBytesRejectsOldMajorVersion(t *testing.T) {
	raw := minimalObjectClass()
	raw[7] = 0x00 // major = 0, predates JDK 1.0.2
	if _, err := NewFromBytes(raw, nil); err == nil {
		t.Error("NewFromBytes succeeded with major version 0, want a VerifyError")
	}
}

func TestVersionAccessor(t *testing.T) {
	raw := minimalObjectClass()
	cf, err := NewFromBytes(raw, nil)
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	defer cf.Close()
	if got := cf.Version(); got != (Version{Major: 52, Minor: 0}) {
		t.Errorf("Version() = %#v, want {52 0}", got)
	}
}
