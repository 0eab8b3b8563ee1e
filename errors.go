// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "fmt"

// Errors returned by the codec. They are flat sentinel values or small typed
// structs carrying the offending numeric index; none of them wrap an
// underlying cause.
var (
	// ErrInvalidMagicNumber is returned when the first four bytes of the
	// input are not 0xCAFEBABE.
	ErrInvalidMagicNumber = fmt.Errorf("classfile: invalid magic number, expected 0xCAFEBABE")

	// ErrOutsideBoundary is returned when a read would run past the end of
	// the input.
	ErrOutsideBoundary = fmt.Errorf("classfile: read outside input boundary")

	// ErrResourceLimitExceeded is returned when a length-prefixed count on
	// the wire exceeds the configured Options limit. This guards against
	// unbounded preallocation driven by a hostile length prefix.
	ErrResourceLimitExceeded = fmt.Errorf("classfile: declared count exceeds configured resource limit")

	// ErrMutf8 is returned on malformed modified-UTF-8 data.
	ErrMutf8 = fmt.Errorf("classfile: invalid modified-UTF-8 encoding")
)

// InvalidConstantTagError is returned when a constant-pool tag byte does not
// match any of the known JVMS §4.4 constant kinds.
type InvalidConstantTagError struct {
	Tag uint8
}

func (e *InvalidConstantTagError) Error() string {
	return fmt.Sprintf("classfile: invalid constant pool tag 0x%02x", e.Tag)
}

// InvalidConstantPoolIndexError is returned when an index field refers to a
// slot that does not exist in the constant pool (out of range, or the
// unusable slot following a Long/Double entry).
type InvalidConstantPoolIndexError struct {
	Index uint16
}

func (e *InvalidConstantPoolIndexError) Error() string {
	return fmt.Sprintf("classfile: invalid constant pool index %d", e.Index)
}

// InvalidConstantPoolIndexTypeError is returned when an index field refers to
// an existing slot whose tag does not match what the caller required.
type InvalidConstantPoolIndexTypeError struct {
	Index uint16
	Want  string
	Got   string
}

func (e *InvalidConstantPoolIndexTypeError) Error() string {
	return fmt.Sprintf("classfile: constant pool index %d has type %s, want %s",
		e.Index, e.Got, e.Want)
}

// InvalidAttributeNameIndexError is returned when an attribute's name_index
// does not resolve to a Utf8 constant.
type InvalidAttributeNameIndexError struct {
	Index uint16
}

func (e *InvalidAttributeNameIndexError) Error() string {
	return fmt.Sprintf("classfile: attribute name_index %d is not a Utf8 constant", e.Index)
}

// InvalidAttributeLengthError is returned when a fixed-size attribute's
// declared length field does not match its expected size.
type InvalidAttributeLengthError struct {
	Name   string
	Length uint32
	Want   uint32
}

func (e *InvalidAttributeLengthError) Error() string {
	return fmt.Sprintf("classfile: attribute %q has invalid length %d, want %d",
		e.Name, e.Length, e.Want)
}

// InvalidInstructionError is returned for an unknown opcode byte, or for an
// instruction whose tail bytes are malformed (e.g. invokeinterface's
// mandatory trailing zero).
type InvalidInstructionError struct {
	Opcode uint8
}

func (e *InvalidInstructionError) Error() string {
	return fmt.Sprintf("classfile: invalid instruction opcode 0x%02x", e.Opcode)
}

// InvalidWideInstructionError is returned for an unknown wide sub-opcode.
type InvalidWideInstructionError struct {
	Opcode uint8
}

func (e *InvalidWideInstructionError) Error() string {
	return fmt.Sprintf("classfile: invalid wide instruction opcode 0x%02x", e.Opcode)
}

// InvalidInstructionOffsetError is returned when a PC does not map to an
// instruction boundary.
type InvalidInstructionOffsetError struct {
	Offset uint32
}

func (e *InvalidInstructionOffsetError) Error() string {
	return fmt.Sprintf("classfile: byte offset %d is not an instruction boundary", e.Offset)
}

// InvalidElementValueTagError is returned for an unrecognised annotation
// element_value tag byte.
type InvalidElementValueTagError struct {
	Tag byte
}

func (e *InvalidElementValueTagError) Error() string {
	return fmt.Sprintf("classfile: invalid element_value tag %q", e.Tag)
}

// InvalidTypeAnnotationTargetError is returned for an unrecognised
// type_annotation target_type byte.
type InvalidTypeAnnotationTargetError struct {
	TargetType uint8
}

func (e *InvalidTypeAnnotationTargetError) Error() string {
	return fmt.Sprintf("classfile: invalid type_annotation target_type 0x%02x", e.TargetType)
}

// VerifyError is returned by Verify for a structural rule violation. Context
// disambiguates which attribute or location raised it.
type VerifyError struct {
	Context string
	Message string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("classfile: verification failed in %s: %s", e.Context, e.Message)
}
