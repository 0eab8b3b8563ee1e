// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Annotation is a single runtime-visible or runtime-invisible annotation
// (JVMS §4.7.16).
type Annotation struct {
	TypeIndex        uint16
	ElementValuePairs []ElementValuePair
}

// ElementValuePair is one (name, value) entry of an Annotation's element
// list.
type ElementValuePair struct {
	ElementNameIndex uint16
	Value            ElementValue
}

// ElementValue is the tagged union of annotation element payloads (JVMS
// §4.7.16.1). Tag is the single ASCII byte read from the wire.
type ElementValue struct {
	Tag byte

	// ConstValueIndex holds the constant pool index for tags
	// B C D F I J S Z s (primitive/String constants).
	ConstValueIndex uint16

	// EnumTypeNameIndex/EnumConstNameIndex are set for tag 'e'.
	EnumTypeNameIndex  uint16
	EnumConstNameIndex uint16

	// ClassInfoIndex is set for tag 'c'.
	ClassInfoIndex uint16

	// AnnotationValue is set for tag '@'.
	AnnotationValue *Annotation

	// ArrayValues is set for tag '['.
	ArrayValues []ElementValue
}

// ParameterAnnotations is one method parameter's annotation list, as found
// in RuntimeVisible/InvisibleParameterAnnotations (JVMS §4.7.18).
type ParameterAnnotations struct {
	Annotations []Annotation
}

// decodeAnnotation reads one Annotation (JVMS §4.7.16).
func decodeAnnotation(r *reader) (Annotation, error) {
	typeIndex, err := r.readU16()
	if err != nil {
		return Annotation{}, err
	}
	count, err := r.readU16()
	if err != nil {
		return Annotation{}, err
	}
	pairs := make([]ElementValuePair, 0, count)
	for i := uint16(0); i < count; i++ {
		nameIndex, err := r.readU16()
		if err != nil {
			return Annotation{}, err
		}
		value, err := decodeElementValue(r)
		if err != nil {
			return Annotation{}, err
		}
		pairs = append(pairs, ElementValuePair{ElementNameIndex: nameIndex, Value: value})
	}
	return Annotation{TypeIndex: typeIndex, ElementValuePairs: pairs}, nil
}

func encodeAnnotation(w *writer, a Annotation) {
	w.writeU16(a.TypeIndex)
	w.writeU16(uint16(len(a.ElementValuePairs)))
	for _, p := range a.ElementValuePairs {
		w.writeU16(p.ElementNameIndex)
		encodeElementValue(w, p.Value)
	}
}

func decodeElementValue(r *reader) (ElementValue, error) {
	tag, err := r.readU8()
	if err != nil {
		return ElementValue{}, err
	}
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		idx, err := r.readU16()
		return ElementValue{Tag: tag, ConstValueIndex: idx}, err

	case 'e':
		typeName, err := r.readU16()
		if err != nil {
			return ElementValue{}, err
		}
		constName, err := r.readU16()
		return ElementValue{Tag: tag, EnumTypeNameIndex: typeName, EnumConstNameIndex: constName}, err

	case 'c':
		idx, err := r.readU16()
		return ElementValue{Tag: tag, ClassInfoIndex: idx}, err

	case '@':
		ann, err := decodeAnnotation(r)
		return ElementValue{Tag: tag, AnnotationValue: &ann}, err

	case '[':
		count, err := r.readU16()
		if err != nil {
			return ElementValue{}, err
		}
		values := make([]ElementValue, 0, count)
		for i := uint16(0); i < count; i++ {
			v, err := decodeElementValue(r)
			if err != nil {
				return ElementValue{}, err
			}
			values = append(values, v)
		}
		return ElementValue{Tag: tag, ArrayValues: values}, nil

	default:
		return ElementValue{}, &InvalidElementValueTagError{Tag: tag}
	}
}

func encodeElementValue(w *writer, v ElementValue) {
	w.writeU8(v.Tag)
	switch v.Tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		w.writeU16(v.ConstValueIndex)
	case 'e':
		w.writeU16(v.EnumTypeNameIndex)
		w.writeU16(v.EnumConstNameIndex)
	case 'c':
		w.writeU16(v.ClassInfoIndex)
	case '@':
		encodeAnnotation(w, *v.AnnotationValue)
	case '[':
		w.writeU16(uint16(len(v.ArrayValues)))
		for _, e := range v.ArrayValues {
			encodeElementValue(w, e)
		}
	}
}

// TypeAnnotation is a single entry of a RuntimeVisible/InvisibleType
// Annotations attribute (JVMS §4.7.20): an Annotation plus a target_type
// discriminator, a type_path, and a target-specific payload.
type TypeAnnotation struct {
	TargetType  uint8
	TargetInfo  TypeAnnotationTargetInfo
	TypePath    []TypePathEntry
	TypeIndex   uint16
	ElementValuePairs []ElementValuePair
}

// TypePathEntry is one step of a type_path (JVMS §4.7.20.2).
type TypePathEntry struct {
	TypePathKind      uint8
	TypeArgumentIndex uint8
}

// TypeAnnotationTargetInfo carries the union of target_info payloads (JVMS
// §4.7.20.1); only the fields relevant to TargetType are populated.
type TypeAnnotationTargetInfo struct {
	TypeParameterIndex uint8
	SupertypeIndex     uint16
	BoundIndex         uint8
	FormalParameterIndex uint8
	ThrowsTypeIndex    uint16
	LocalVarTable      []TypeAnnotationLocalVarEntry
	ExceptionTableIndex uint16
	Offset             uint16
	TypeArgumentIndex  uint8
}

// TypeAnnotationLocalVarEntry is one entry of a localvar_target
// target_info (used by local variable and resource variable targets).
type TypeAnnotationLocalVarEntry struct {
	StartPC uint16
	Length  uint16
	Index   uint16
}

// Type annotation target_type values (JVMS §4.7.20.1 Table 4.7.20-A/B).
const (
	TATypeParameterClass           uint8 = 0x00
	TATypeParameterMethod          uint8 = 0x01
	TASupertype                    uint8 = 0x10
	TATypeParameterBoundClass      uint8 = 0x11
	TATypeParameterBoundMethod     uint8 = 0x12
	TAField                        uint8 = 0x13
	TAReturn                       uint8 = 0x14
	TAReceiver                     uint8 = 0x15
	TAFormalParameter              uint8 = 0x16
	TAThrows                       uint8 = 0x17
	TALocalVariable                uint8 = 0x40
	TAResourceVariable              uint8 = 0x41
	TAExceptionParameter           uint8 = 0x42
	TAInstanceof                   uint8 = 0x43
	TANew                          uint8 = 0x44
	TAConstructorReference        uint8 = 0x45
	TAMethodReference              uint8 = 0x46
	TACast                         uint8 = 0x47
	TAConstructorInvocationTypeArgument uint8 = 0x48
	TAMethodInvocationTypeArgument uint8 = 0x49
	TAConstructorReferenceTypeArgument uint8 = 0x4A
	TAMethodReferenceTypeArgument  uint8 = 0x4B
)

// decodeTypeAnnotation reads one TypeAnnotation entry.
func decodeTypeAnnotation(r *reader) (TypeAnnotation, error) {
	targetType, err := r.readU8()
	if err != nil {
		return TypeAnnotation{}, err
	}
	var info TypeAnnotationTargetInfo
	switch targetType {
	case TATypeParameterClass, TATypeParameterMethod:
		v, err := r.readU8()
		if err != nil {
			return TypeAnnotation{}, err
		}
		info.TypeParameterIndex = v

	case TASupertype:
		v, err := r.readU16()
		if err != nil {
			return TypeAnnotation{}, err
		}
		info.SupertypeIndex = v

	case TATypeParameterBoundClass, TATypeParameterBoundMethod:
		tp, err := r.readU8()
		if err != nil {
			return TypeAnnotation{}, err
		}
		b, err := r.readU8()
		if err != nil {
			return TypeAnnotation{}, err
		}
		info.TypeParameterIndex = tp
		info.BoundIndex = b

	case TAField, TAReturn, TAReceiver:
		// empty target_info

	case TAFormalParameter:
		v, err := r.readU8()
		if err != nil {
			return TypeAnnotation{}, err
		}
		info.FormalParameterIndex = v

	case TAThrows:
		v, err := r.readU16()
		if err != nil {
			return TypeAnnotation{}, err
		}
		info.ThrowsTypeIndex = v

	case TALocalVariable, TAResourceVariable:
		count, err := r.readU16()
		if err != nil {
			return TypeAnnotation{}, err
		}
		entries := make([]TypeAnnotationLocalVarEntry, 0, count)
		for i := uint16(0); i < count; i++ {
			start, err := r.readU16()
			if err != nil {
				return TypeAnnotation{}, err
			}
			length, err := r.readU16()
			if err != nil {
				return TypeAnnotation{}, err
			}
			idx, err := r.readU16()
			if err != nil {
				return TypeAnnotation{}, err
			}
			entries = append(entries, TypeAnnotationLocalVarEntry{StartPC: start, Length: length, Index: idx})
		}
		info.LocalVarTable = entries

	case TAExceptionParameter:
		v, err := r.readU16()
		if err != nil {
			return TypeAnnotation{}, err
		}
		info.ExceptionTableIndex = v

	case TAInstanceof, TANew, TAConstructorReference, TAMethodReference:
		v, err := r.readU16()
		if err != nil {
			return TypeAnnotation{}, err
		}
		info.Offset = v

	case TACast, TAConstructorInvocationTypeArgument, TAMethodInvocationTypeArgument,
		TAConstructorReferenceTypeArgument, TAMethodReferenceTypeArgument:
		off, err := r.readU16()
		if err != nil {
			return TypeAnnotation{}, err
		}
		idx, err := r.readU8()
		if err != nil {
			return TypeAnnotation{}, err
		}
		info.Offset = off
		info.TypeArgumentIndex = idx

	default:
		return TypeAnnotation{}, &InvalidTypeAnnotationTargetError{TargetType: targetType}
	}

	pathLen, err := r.readU8()
	if err != nil {
		return TypeAnnotation{}, err
	}
	path := make([]TypePathEntry, 0, pathLen)
	for i := uint8(0); i < pathLen; i++ {
		kind, err := r.readU8()
		if err != nil {
			return TypeAnnotation{}, err
		}
		argIdx, err := r.readU8()
		if err != nil {
			return TypeAnnotation{}, err
		}
		path = append(path, TypePathEntry{TypePathKind: kind, TypeArgumentIndex: argIdx})
	}

	typeIndex, err := r.readU16()
	if err != nil {
		return TypeAnnotation{}, err
	}
	count, err := r.readU16()
	if err != nil {
		return TypeAnnotation{}, err
	}
	pairs := make([]ElementValuePair, 0, count)
	for i := uint16(0); i < count; i++ {
		nameIndex, err := r.readU16()
		if err != nil {
			return TypeAnnotation{}, err
		}
		value, err := decodeElementValue(r)
		if err != nil {
			return TypeAnnotation{}, err
		}
		pairs = append(pairs, ElementValuePair{ElementNameIndex: nameIndex, Value: value})
	}

	return TypeAnnotation{
		TargetType:        targetType,
		TargetInfo:        info,
		TypePath:          path,
		TypeIndex:         typeIndex,
		ElementValuePairs: pairs,
	}, nil
}

func encodeTypeAnnotation(w *writer, a TypeAnnotation) {
	w.writeU8(a.TargetType)
	info := a.TargetInfo
	switch a.TargetType {
	case TATypeParameterClass, TATypeParameterMethod:
		w.writeU8(info.TypeParameterIndex)
	case TASupertype:
		w.writeU16(info.SupertypeIndex)
	case TATypeParameterBoundClass, TATypeParameterBoundMethod:
		w.writeU8(info.TypeParameterIndex)
		w.writeU8(info.BoundIndex)
	case TAField, TAReturn, TAReceiver:
	case TAFormalParameter:
		w.writeU8(info.FormalParameterIndex)
	case TAThrows:
		w.writeU16(info.ThrowsTypeIndex)
	case TALocalVariable, TAResourceVariable:
		w.writeU16(uint16(len(info.LocalVarTable)))
		for _, e := range info.LocalVarTable {
			w.writeU16(e.StartPC)
			w.writeU16(e.Length)
			w.writeU16(e.Index)
		}
	case TAExceptionParameter:
		w.writeU16(info.ExceptionTableIndex)
	case TAInstanceof, TANew, TAConstructorReference, TAMethodReference:
		w.writeU16(info.Offset)
	case TACast, TAConstructorInvocationTypeArgument, TAMethodInvocationTypeArgument,
		TAConstructorReferenceTypeArgument, TAMethodReferenceTypeArgument:
		w.writeU16(info.Offset)
		w.writeU8(info.TypeArgumentIndex)
	}

	w.writeU8(uint8(len(a.TypePath)))
	for _, p := range a.TypePath {
		w.writeU8(p.TypePathKind)
		w.writeU8(p.TypeArgumentIndex)
	}

	w.writeU16(a.TypeIndex)
	w.writeU16(uint16(len(a.ElementValuePairs)))
	for _, p := range a.ElementValuePairs {
		w.writeU16(p.ElementNameIndex)
		encodeElementValue(w, p.Value)
	}
}
