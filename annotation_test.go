// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"reflect"
	"testing"
)

func TestAnnotationSimpleRoundTrip(t *testing.T) {
	raw := []byte{
		0x00, 0x01, // type_index
		0x00, 0x01, // num_element_value_pairs
		0x00, 0x02, // element_name_index
		'I', 0x00, 0x03, // tag 'I', const_value_index
	}
	r := newReader(raw)
	a, err := decodeAnnotation(r)
	if err != nil {
		t.Fatalf("decodeAnnotation failed: %v", err)
	}
	want := Annotation{
		TypeIndex: 1,
		ElementValuePairs: []ElementValuePair{
			{ElementNameIndex: 2, Value: ElementValue{Tag: 'I', ConstValueIndex: 3}},
		},
	}
	if !reflect.DeepEqual(a, want) {
		t.Fatalf("decoded = %#v, want %#v", a, want)
	}

	w := newWriter()
	encodeAnnotation(w, a)
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}

func TestAnnotationNestedRoundTrip(t *testing.T) {
	// one element value pair whose value is itself an annotation ('@')
	raw := []byte{
		0x00, 0x01, // type_index
		0x00, 0x01, // num pairs
		0x00, 0x02, // element_name_index
		'@',
		0x00, 0x05, // nested type_index
		0x00, 0x00, // nested num pairs = 0
	}
	r := newReader(raw)
	a, err := decodeAnnotation(r)
	if err != nil {
		t.Fatalf("decodeAnnotation failed: %v", err)
	}
	if a.ElementValuePairs[0].Value.AnnotationValue == nil {
		t.Fatal("nested AnnotationValue is nil")
	}
	if a.ElementValuePairs[0].Value.AnnotationValue.TypeIndex != 5 {
		t.Errorf("nested TypeIndex = %d, want 5", a.ElementValuePairs[0].Value.AnnotationValue.TypeIndex)
	}

	w := newWriter()
	encodeAnnotation(w, a)
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}

func TestAnnotationArrayElementValue(t *testing.T) {
	raw := []byte{
		0x00, 0x01,
		0x00, 0x01,
		0x00, 0x02,
		'[', 0x00, 0x02, // array of 2
		'I', 0x00, 0x01,
		'I', 0x00, 0x02,
	}
	r := newReader(raw)
	a, err := decodeAnnotation(r)
	if err != nil {
		t.Fatalf("decodeAnnotation failed: %v", err)
	}
	arr := a.ElementValuePairs[0].Value.ArrayValues
	if len(arr) != 2 || arr[0].ConstValueIndex != 1 || arr[1].ConstValueIndex != 2 {
		t.Fatalf("array values = %#v, want [ConstValueIndex=1, ConstValueIndex=2]", arr)
	}

	w := newWriter()
	encodeAnnotation(w, a)
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}

func TestElementValueUnknownTagFails(t *testing.T) {
	raw := []byte{'?', 0x00, 0x00}
	r := newReader(raw)
	if _, err := decodeElementValue(r); err == nil {
		t.Error("decodeElementValue succeeded on an unknown tag, want error")
	}
}

func TestTypeAnnotationSupertypeTarget(t *testing.T) {
	raw := []byte{
		TASupertype,
		0xFF, 0xFF, // supertype_index = 65535 (the implements clause, per JVMS)
		0x00,       // path_length = 0
		0x00, 0x07, // type_index
		0x00, 0x00, // num_element_value_pairs
	}
	r := newReader(raw)
	ta, err := decodeTypeAnnotation(r)
	if err != nil {
		t.Fatalf("decodeTypeAnnotation failed: %v", err)
	}
	if ta.TargetInfo.SupertypeIndex != 0xFFFF {
		t.Errorf("SupertypeIndex = %d, want 65535", ta.TargetInfo.SupertypeIndex)
	}

	w := newWriter()
	encodeTypeAnnotation(w, ta)
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}

func TestTypeAnnotationLocalVariableTarget(t *testing.T) {
	raw := []byte{
		TALocalVariable,
		0x00, 0x01, // table_length = 1
		0x00, 0x00, // start_pc
		0x00, 0x05, // length
		0x00, 0x02, // index
		0x01,       // path_length = 1
		0x00, 0x00, // (kind, arg index)
		0x00, 0x01, // type_index
		0x00, 0x00, // num_element_value_pairs
	}
	r := newReader(raw)
	ta, err := decodeTypeAnnotation(r)
	if err != nil {
		t.Fatalf("decodeTypeAnnotation failed: %v", err)
	}
	if len(ta.TargetInfo.LocalVarTable) != 1 || ta.TargetInfo.LocalVarTable[0].Length != 5 {
		t.Fatalf("LocalVarTable = %#v", ta.TargetInfo.LocalVarTable)
	}
	if len(ta.TypePath) != 1 {
		t.Fatalf("TypePath = %#v, want 1 entry", ta.TypePath)
	}

	w := newWriter()
	encodeTypeAnnotation(w, ta)
	if !reflect.DeepEqual(w.bytes(), raw) {
		t.Errorf("encode = % x, want % x", w.bytes(), raw)
	}
}

func TestTypeAnnotationUnknownTargetTypeFails(t *testing.T) {
	raw := []byte{0x99}
	r := newReader(raw)
	if _, err := decodeTypeAnnotation(r); err == nil {
		t.Error("decodeTypeAnnotation succeeded on an unmapped target_type, want error")
	}
}
