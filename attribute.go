// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Attribute is the tagged union of the class-file attribute table (JVMS
// §4.7). Every concrete type also carries the name_index of the Utf8
// constant it was read from, since Serialize needs it to reproduce the
// name on the wire without re-interning into the constant pool.
type Attribute interface {
	Name() string
}

// attribute names recognised by decodeAttribute. Anything else decodes to
// an UnknownAttr carrying the raw payload bytes.
const (
	attrConstantValue                        = "ConstantValue"
	attrCode                                 = "Code"
	attrStackMapTable                        = "StackMapTable"
	attrExceptions                           = "Exceptions"
	attrInnerClasses                         = "InnerClasses"
	attrEnclosingMethod                      = "EnclosingMethod"
	attrSynthetic                            = "Synthetic"
	attrSignature                            = "Signature"
	attrSourceFile                           = "SourceFile"
	attrSourceDebugExtension                 = "SourceDebugExtension"
	attrLineNumberTable                      = "LineNumberTable"
	attrLocalVariableTable                   = "LocalVariableTable"
	attrLocalVariableTypeTable               = "LocalVariableTypeTable"
	attrDeprecated                           = "Deprecated"
	attrRuntimeVisibleAnnotations            = "RuntimeVisibleAnnotations"
	attrRuntimeInvisibleAnnotations          = "RuntimeInvisibleAnnotations"
	attrRuntimeVisibleParameterAnnotations   = "RuntimeVisibleParameterAnnotations"
	attrRuntimeInvisibleParameterAnnotations = "RuntimeInvisibleParameterAnnotations"
	attrRuntimeVisibleTypeAnnotations        = "RuntimeVisibleTypeAnnotations"
	attrRuntimeInvisibleTypeAnnotations      = "RuntimeInvisibleTypeAnnotations"
	attrAnnotationDefault                    = "AnnotationDefault"
	attrBootstrapMethods                     = "BootstrapMethods"
	attrMethodParameters                     = "MethodParameters"
	attrModule                               = "Module"
	attrModulePackages                       = "ModulePackages"
	attrModuleMainClass                      = "ModuleMainClass"
	attrNestHost                             = "NestHost"
	attrNestMembers                          = "NestMembers"
	attrRecord                               = "Record"
	attrPermittedSubclasses                  = "PermittedSubclasses"
)

// decodeAttributeList reads a class/field/method-level attributes table
// (count u16 followed by that many attribute entries).
func decodeAttributeList(r *reader, cp *ConstantPool, opts *Options) ([]Attribute, error) {
	count, err := r.readU16()
	if err != nil {
		return nil, err
	}
	return decodeAttributeListN(r, cp, opts, 0, count, nil)
}

// decodeAttributeListN reads count attribute entries. cm is non-nil only
// when decoding a Code attribute's own sub-attributes, giving those entries
// access to the enclosing instruction stream's byte↔index maps.
func decodeAttributeListN(r *reader, cp *ConstantPool, opts *Options, depth uint32, count uint16, cm *codeMaps) ([]Attribute, error) {
	if depth > opts.resourceLimit(opts.MaxAttributeRecursionDepth, DefaultMaxAttrRecursionDepth) {
		return nil, ErrResourceLimitExceeded
	}
	limit := opts.resourceLimit(opts.MaxAttributesCount, DefaultMaxAttributesCount)
	if uint32(count) > limit {
		return nil, ErrResourceLimitExceeded
	}
	attrs := make([]Attribute, 0, count)
	for i := uint16(0); i < count; i++ {
		a, err := decodeAttribute(r, cp, opts, depth, cm)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

// decodeAttribute reads one attribute's common envelope (name_index u16,
// length u32) and dispatches on the resolved name to a concrete decoder.
// A fixed-size attribute whose declared length differs from its size, or a
// payload decoder that reads past the declared length, fails with
// InvalidAttributeLengthError; bytes a decoder leaves unread before the
// declared end are skipped.
func decodeAttribute(r *reader, cp *ConstantPool, opts *Options, depth uint32, cm *codeMaps) (Attribute, error) {
	nameIndex, err := r.readU16()
	if err != nil {
		return nil, err
	}
	length, err := r.readU32()
	if err != nil {
		return nil, err
	}
	name, err := cp.Utf8(nameIndex)
	if err != nil {
		return nil, &InvalidAttributeNameIndexError{Index: nameIndex}
	}

	payloadEnd := r.position() + length
	if payloadEnd > uint32(len(r.data)) {
		return nil, ErrOutsideBoundary
	}

	fixedLength := int64(-1)
	switch name {
	case attrSynthetic, attrDeprecated:
		fixedLength = 0
	case attrConstantValue, attrSignature, attrSourceFile, attrModuleMainClass, attrNestHost:
		fixedLength = 2
	case attrEnclosingMethod:
		fixedLength = 4
	}
	if fixedLength >= 0 && int64(length) != fixedLength {
		return nil, &InvalidAttributeLengthError{Name: name, Length: length, Want: uint32(fixedLength)}
	}

	var attr Attribute
	switch name {
	case attrConstantValue:
		attr, err = decodeConstantValueAttr(r, nameIndex)
	case attrCode:
		attr, err = decodeCodeAttr(r, nameIndex, cp, opts, depth)
	case attrStackMapTable:
		attr, err = decodeStackMapTableAttr(r, nameIndex, cm)
	case attrExceptions:
		attr, err = decodeExceptionsAttr(r, nameIndex)
	case attrInnerClasses:
		attr, err = decodeInnerClassesAttr(r, nameIndex)
	case attrEnclosingMethod:
		attr, err = decodeEnclosingMethodAttr(r, nameIndex)
	case attrSynthetic:
		attr = SyntheticAttr{NameIndex: nameIndex}
	case attrSignature:
		attr, err = decodeSignatureAttr(r, nameIndex)
	case attrSourceFile:
		attr, err = decodeSourceFileAttr(r, nameIndex)
	case attrSourceDebugExtension:
		attr, err = decodeSourceDebugExtensionAttr(r, nameIndex, length)
	case attrLineNumberTable:
		attr, err = decodeLineNumberTableAttr(r, nameIndex, cm)
	case attrLocalVariableTable:
		attr, err = decodeLocalVariableTableAttr(r, nameIndex, cm)
	case attrLocalVariableTypeTable:
		attr, err = decodeLocalVariableTypeTableAttr(r, nameIndex, cm)
	case attrDeprecated:
		attr = DeprecatedAttr{NameIndex: nameIndex}
	case attrRuntimeVisibleAnnotations:
		attr, err = decodeAnnotationsAttr(r, nameIndex, true)
	case attrRuntimeInvisibleAnnotations:
		attr, err = decodeAnnotationsAttr(r, nameIndex, false)
	case attrRuntimeVisibleParameterAnnotations:
		attr, err = decodeParameterAnnotationsAttr(r, nameIndex, true)
	case attrRuntimeInvisibleParameterAnnotations:
		attr, err = decodeParameterAnnotationsAttr(r, nameIndex, false)
	case attrRuntimeVisibleTypeAnnotations:
		attr, err = decodeTypeAnnotationsAttr(r, nameIndex, true)
	case attrRuntimeInvisibleTypeAnnotations:
		attr, err = decodeTypeAnnotationsAttr(r, nameIndex, false)
	case attrAnnotationDefault:
		attr, err = decodeAnnotationDefaultAttr(r, nameIndex)
	case attrBootstrapMethods:
		attr, err = decodeBootstrapMethodsAttr(r, nameIndex)
	case attrMethodParameters:
		attr, err = decodeMethodParametersAttr(r, nameIndex)
	case attrModule:
		attr, err = decodeModuleAttr(r, nameIndex)
	case attrModulePackages:
		attr, err = decodeModulePackagesAttr(r, nameIndex)
	case attrModuleMainClass:
		attr, err = decodeModuleMainClassAttr(r, nameIndex)
	case attrNestHost:
		attr, err = decodeNestHostAttr(r, nameIndex)
	case attrNestMembers:
		attr, err = decodeNestMembersAttr(r, nameIndex)
	case attrRecord:
		attr, err = decodeRecordAttr(r, nameIndex, cp, opts, depth)
	case attrPermittedSubclasses:
		attr, err = decodePermittedSubclassesAttr(r, nameIndex)
	default:
		var info []byte
		info, err = r.readExact(length)
		attr = UnknownAttr{NameIndex: nameIndex, Info: info}
	}
	if err != nil {
		return nil, err
	}

	// Any attribute decoder that didn't consume exactly up to payloadEnd
	// (an optional trailing field it didn't model, or a length mismatch)
	// is resynchronised here rather than left to desync the rest of the
	// stream.
	if r.position() != payloadEnd {
		if payloadEnd < r.position() {
			return nil, &InvalidAttributeLengthError{Name: name, Length: length}
		}
		if _, err := r.readExact(payloadEnd - r.position()); err != nil {
			return nil, err
		}
	}
	return attr, nil
}

// encodeAttribute writes one attribute's common envelope and payload,
// back-patching the length field once the payload size is known.
func encodeAttribute(w *writer, a Attribute, cm *codeMaps) error {
	payload := newWriter()
	var err error
	switch v := a.(type) {
	case ConstantValueAttr:
		w.writeU16(v.NameIndex)
		payload.writeU16(v.ValueIndex)
	case CodeAttr:
		w.writeU16(v.NameIndex)
		err = encodeCodeAttr(payload, v)
	case StackMapTableAttr:
		w.writeU16(v.NameIndex)
		err = encodeStackMapTableAttr(payload, v, cm)
	case ExceptionsAttr:
		w.writeU16(v.NameIndex)
		encodeExceptionsAttr(payload, v)
	case InnerClassesAttr:
		w.writeU16(v.NameIndex)
		encodeInnerClassesAttr(payload, v)
	case EnclosingMethodAttr:
		w.writeU16(v.NameIndex)
		payload.writeU16(v.ClassIndex)
		payload.writeU16(v.MethodIndex)
	case SyntheticAttr:
		w.writeU16(v.NameIndex)
	case SignatureAttr:
		w.writeU16(v.NameIndex)
		payload.writeU16(v.SignatureIndex)
	case SourceFileAttr:
		w.writeU16(v.NameIndex)
		payload.writeU16(v.SourceFileIndex)
	case SourceDebugExtensionAttr:
		w.writeU16(v.NameIndex)
		payload.writeBytes(v.DebugExtension)
	case LineNumberTableAttr:
		w.writeU16(v.NameIndex)
		encodeLineNumberTableAttr(payload, v, cm)
	case LocalVariableTableAttr:
		w.writeU16(v.NameIndex)
		encodeLocalVariableTableAttr(payload, v, cm)
	case LocalVariableTypeTableAttr:
		w.writeU16(v.NameIndex)
		encodeLocalVariableTypeTableAttr(payload, v, cm)
	case DeprecatedAttr:
		w.writeU16(v.NameIndex)
	case RuntimeAnnotationsAttr:
		w.writeU16(v.NameIndex)
		encodeAnnotationsAttr(payload, v)
	case RuntimeParameterAnnotationsAttr:
		w.writeU16(v.NameIndex)
		encodeParameterAnnotationsAttr(payload, v)
	case RuntimeTypeAnnotationsAttr:
		w.writeU16(v.NameIndex)
		encodeTypeAnnotationsAttr(payload, v)
	case AnnotationDefaultAttr:
		w.writeU16(v.NameIndex)
		encodeElementValue(payload, v.Value)
	case BootstrapMethodsAttr:
		w.writeU16(v.NameIndex)
		encodeBootstrapMethodsAttr(payload, v)
	case MethodParametersAttr:
		w.writeU16(v.NameIndex)
		encodeMethodParametersAttr(payload, v)
	case ModuleAttr:
		w.writeU16(v.NameIndex)
		encodeModuleInfo(payload, v.Module)
	case ModulePackagesAttr:
		w.writeU16(v.NameIndex)
		encodeModulePackagesAttr(payload, v)
	case ModuleMainClassAttr:
		w.writeU16(v.NameIndex)
		payload.writeU16(v.MainClassIndex)
	case NestHostAttr:
		w.writeU16(v.NameIndex)
		payload.writeU16(v.HostClassIndex)
	case NestMembersAttr:
		w.writeU16(v.NameIndex)
		encodeNestMembersAttr(payload, v)
	case RecordAttr:
		w.writeU16(v.NameIndex)
		err = encodeRecordAttr(payload, v)
	case PermittedSubclassesAttr:
		w.writeU16(v.NameIndex)
		encodePermittedSubclassesAttr(payload, v)
	case UnknownAttr:
		w.writeU16(v.NameIndex)
		payload.writeBytes(v.Info)
	}
	if err != nil {
		return err
	}
	w.writeU32(payload.len())
	w.writeBytes(payload.bytes())
	return nil
}

// --- simple fixed-shape attributes ---

type ConstantValueAttr struct {
	NameIndex uint16
	ValueIndex uint16
}

func (ConstantValueAttr) Name() string { return "ConstantValue" }

func decodeConstantValueAttr(r *reader, nameIndex uint16) (ConstantValueAttr, error) {
	idx, err := r.readU16()
	return ConstantValueAttr{NameIndex: nameIndex, ValueIndex: idx}, err
}

type ExceptionsAttr struct {
	NameIndex          uint16
	ExceptionIndexTable []uint16
}

func (ExceptionsAttr) Name() string { return "Exceptions" }

func decodeExceptionsAttr(r *reader, nameIndex uint16) (ExceptionsAttr, error) {
	count, err := r.readU16()
	if err != nil {
		return ExceptionsAttr{}, err
	}
	table := make([]uint16, 0, count)
	for i := uint16(0); i < count; i++ {
		v, err := r.readU16()
		if err != nil {
			return ExceptionsAttr{}, err
		}
		table = append(table, v)
	}
	return ExceptionsAttr{NameIndex: nameIndex, ExceptionIndexTable: table}, nil
}

func encodeExceptionsAttr(w *writer, a ExceptionsAttr) {
	w.writeU16(uint16(len(a.ExceptionIndexTable)))
	for _, v := range a.ExceptionIndexTable {
		w.writeU16(v)
	}
}

// InnerClassEntry is one row of an InnerClasses attribute (JVMS §4.7.6).
type InnerClassEntry struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags NestedClassAccessFlags
}

type InnerClassesAttr struct {
	NameIndex uint16
	Classes   []InnerClassEntry
}

func (InnerClassesAttr) Name() string { return "InnerClasses" }

func decodeInnerClassesAttr(r *reader, nameIndex uint16) (InnerClassesAttr, error) {
	count, err := r.readU16()
	if err != nil {
		return InnerClassesAttr{}, err
	}
	classes := make([]InnerClassEntry, 0, count)
	for i := uint16(0); i < count; i++ {
		inner, err := r.readU16()
		if err != nil {
			return InnerClassesAttr{}, err
		}
		outer, err := r.readU16()
		if err != nil {
			return InnerClassesAttr{}, err
		}
		name, err := r.readU16()
		if err != nil {
			return InnerClassesAttr{}, err
		}
		flags, err := r.readU16()
		if err != nil {
			return InnerClassesAttr{}, err
		}
		classes = append(classes, InnerClassEntry{
			InnerClassInfoIndex: inner, OuterClassInfoIndex: outer,
			InnerNameIndex: name, InnerClassAccessFlags: NestedClassAccessFlags(flags),
		})
	}
	return InnerClassesAttr{NameIndex: nameIndex, Classes: classes}, nil
}

func encodeInnerClassesAttr(w *writer, a InnerClassesAttr) {
	w.writeU16(uint16(len(a.Classes)))
	for _, c := range a.Classes {
		w.writeU16(c.InnerClassInfoIndex)
		w.writeU16(c.OuterClassInfoIndex)
		w.writeU16(c.InnerNameIndex)
		w.writeU16(uint16(c.InnerClassAccessFlags))
	}
}

type EnclosingMethodAttr struct {
	NameIndex   uint16
	ClassIndex  uint16
	MethodIndex uint16
}

func (EnclosingMethodAttr) Name() string { return "EnclosingMethod" }

func decodeEnclosingMethodAttr(r *reader, nameIndex uint16) (EnclosingMethodAttr, error) {
	class, err := r.readU16()
	if err != nil {
		return EnclosingMethodAttr{}, err
	}
	method, err := r.readU16()
	return EnclosingMethodAttr{NameIndex: nameIndex, ClassIndex: class, MethodIndex: method}, err
}

type SyntheticAttr struct{ NameIndex uint16 }

func (SyntheticAttr) Name() string { return "Synthetic" }

type DeprecatedAttr struct{ NameIndex uint16 }

func (DeprecatedAttr) Name() string { return "Deprecated" }

type SignatureAttr struct {
	NameIndex      uint16
	SignatureIndex uint16
}

func (SignatureAttr) Name() string { return "Signature" }

func decodeSignatureAttr(r *reader, nameIndex uint16) (SignatureAttr, error) {
	idx, err := r.readU16()
	return SignatureAttr{NameIndex: nameIndex, SignatureIndex: idx}, err
}

type SourceFileAttr struct {
	NameIndex       uint16
	SourceFileIndex uint16
}

func (SourceFileAttr) Name() string { return "SourceFile" }

func decodeSourceFileAttr(r *reader, nameIndex uint16) (SourceFileAttr, error) {
	idx, err := r.readU16()
	return SourceFileAttr{NameIndex: nameIndex, SourceFileIndex: idx}, err
}

type SourceDebugExtensionAttr struct {
	NameIndex      uint16
	DebugExtension []byte
}

func (SourceDebugExtensionAttr) Name() string { return "SourceDebugExtension" }

func decodeSourceDebugExtensionAttr(r *reader, nameIndex uint16, length uint32) (SourceDebugExtensionAttr, error) {
	b, err := r.readExact(length)
	return SourceDebugExtensionAttr{NameIndex: nameIndex, DebugExtension: b}, err
}

// --- annotation-bearing attributes ---

// RuntimeAnnotationsAttr backs both RuntimeVisibleAnnotations and
// RuntimeInvisibleAnnotations; Visible records which one.
type RuntimeAnnotationsAttr struct {
	NameIndex   uint16
	Visible     bool
	Annotations []Annotation
}

func (a RuntimeAnnotationsAttr) Name() string {
	if a.Visible {
		return attrRuntimeVisibleAnnotations
	}
	return attrRuntimeInvisibleAnnotations
}

func decodeAnnotationsAttr(r *reader, nameIndex uint16, visible bool) (RuntimeAnnotationsAttr, error) {
	count, err := r.readU16()
	if err != nil {
		return RuntimeAnnotationsAttr{}, err
	}
	anns := make([]Annotation, 0, count)
	for i := uint16(0); i < count; i++ {
		a, err := decodeAnnotation(r)
		if err != nil {
			return RuntimeAnnotationsAttr{}, err
		}
		anns = append(anns, a)
	}
	return RuntimeAnnotationsAttr{NameIndex: nameIndex, Visible: visible, Annotations: anns}, nil
}

func encodeAnnotationsAttr(w *writer, a RuntimeAnnotationsAttr) {
	w.writeU16(uint16(len(a.Annotations)))
	for _, ann := range a.Annotations {
		encodeAnnotation(w, ann)
	}
}

// RuntimeParameterAnnotationsAttr backs both RuntimeVisibleParameterAnnotations
// and RuntimeInvisibleParameterAnnotations.
type RuntimeParameterAnnotationsAttr struct {
	NameIndex  uint16
	Visible    bool
	Parameters []ParameterAnnotations
}

func (a RuntimeParameterAnnotationsAttr) Name() string {
	if a.Visible {
		return attrRuntimeVisibleParameterAnnotations
	}
	return attrRuntimeInvisibleParameterAnnotations
}

func decodeParameterAnnotationsAttr(r *reader, nameIndex uint16, visible bool) (RuntimeParameterAnnotationsAttr, error) {
	numParams, err := r.readU8()
	if err != nil {
		return RuntimeParameterAnnotationsAttr{}, err
	}
	params := make([]ParameterAnnotations, 0, numParams)
	for i := uint8(0); i < numParams; i++ {
		count, err := r.readU16()
		if err != nil {
			return RuntimeParameterAnnotationsAttr{}, err
		}
		anns := make([]Annotation, 0, count)
		for j := uint16(0); j < count; j++ {
			a, err := decodeAnnotation(r)
			if err != nil {
				return RuntimeParameterAnnotationsAttr{}, err
			}
			anns = append(anns, a)
		}
		params = append(params, ParameterAnnotations{Annotations: anns})
	}
	return RuntimeParameterAnnotationsAttr{NameIndex: nameIndex, Visible: visible, Parameters: params}, nil
}

func encodeParameterAnnotationsAttr(w *writer, a RuntimeParameterAnnotationsAttr) {
	w.writeU8(uint8(len(a.Parameters)))
	for _, p := range a.Parameters {
		w.writeU16(uint16(len(p.Annotations)))
		for _, ann := range p.Annotations {
			encodeAnnotation(w, ann)
		}
	}
}

// RuntimeTypeAnnotationsAttr backs both RuntimeVisibleTypeAnnotations and
// RuntimeInvisibleTypeAnnotations.
type RuntimeTypeAnnotationsAttr struct {
	NameIndex   uint16
	Visible     bool
	Annotations []TypeAnnotation
}

func (a RuntimeTypeAnnotationsAttr) Name() string {
	if a.Visible {
		return attrRuntimeVisibleTypeAnnotations
	}
	return attrRuntimeInvisibleTypeAnnotations
}

func decodeTypeAnnotationsAttr(r *reader, nameIndex uint16, visible bool) (RuntimeTypeAnnotationsAttr, error) {
	count, err := r.readU16()
	if err != nil {
		return RuntimeTypeAnnotationsAttr{}, err
	}
	anns := make([]TypeAnnotation, 0, count)
	for i := uint16(0); i < count; i++ {
		a, err := decodeTypeAnnotation(r)
		if err != nil {
			return RuntimeTypeAnnotationsAttr{}, err
		}
		anns = append(anns, a)
	}
	return RuntimeTypeAnnotationsAttr{NameIndex: nameIndex, Visible: visible, Annotations: anns}, nil
}

func encodeTypeAnnotationsAttr(w *writer, a RuntimeTypeAnnotationsAttr) {
	w.writeU16(uint16(len(a.Annotations)))
	for _, ann := range a.Annotations {
		encodeTypeAnnotation(w, ann)
	}
}

type AnnotationDefaultAttr struct {
	NameIndex uint16
	Value     ElementValue
}

func (AnnotationDefaultAttr) Name() string { return "AnnotationDefault" }

func decodeAnnotationDefaultAttr(r *reader, nameIndex uint16) (AnnotationDefaultAttr, error) {
	v, err := decodeElementValue(r)
	return AnnotationDefaultAttr{NameIndex: nameIndex, Value: v}, err
}

// --- invokedynamic / nest / record / module support attributes ---

// BootstrapMethod is one entry of a BootstrapMethods attribute (JVMS
// §4.7.23).
type BootstrapMethod struct {
	MethodRefIndex uint16
	Arguments      []uint16
}

type BootstrapMethodsAttr struct {
	NameIndex uint16
	Methods   []BootstrapMethod
}

func (BootstrapMethodsAttr) Name() string { return "BootstrapMethods" }

func decodeBootstrapMethodsAttr(r *reader, nameIndex uint16) (BootstrapMethodsAttr, error) {
	count, err := r.readU16()
	if err != nil {
		return BootstrapMethodsAttr{}, err
	}
	methods := make([]BootstrapMethod, 0, count)
	for i := uint16(0); i < count; i++ {
		refIdx, err := r.readU16()
		if err != nil {
			return BootstrapMethodsAttr{}, err
		}
		argCount, err := r.readU16()
		if err != nil {
			return BootstrapMethodsAttr{}, err
		}
		args := make([]uint16, 0, argCount)
		for j := uint16(0); j < argCount; j++ {
			v, err := r.readU16()
			if err != nil {
				return BootstrapMethodsAttr{}, err
			}
			args = append(args, v)
		}
		methods = append(methods, BootstrapMethod{MethodRefIndex: refIdx, Arguments: args})
	}
	return BootstrapMethodsAttr{NameIndex: nameIndex, Methods: methods}, nil
}

func encodeBootstrapMethodsAttr(w *writer, a BootstrapMethodsAttr) {
	w.writeU16(uint16(len(a.Methods)))
	for _, m := range a.Methods {
		w.writeU16(m.MethodRefIndex)
		w.writeU16(uint16(len(m.Arguments)))
		for _, arg := range m.Arguments {
			w.writeU16(arg)
		}
	}
}

// MethodParameterEntry is one row of a MethodParameters attribute (JVMS
// §4.7.24).
type MethodParameterEntry struct {
	NameIndex uint16 // 0 if unnamed
	Flags     uint16
}

type MethodParametersAttr struct {
	NameIndex  uint16
	Parameters []MethodParameterEntry
}

func (MethodParametersAttr) Name() string { return "MethodParameters" }

func decodeMethodParametersAttr(r *reader, nameIndex uint16) (MethodParametersAttr, error) {
	count, err := r.readU8()
	if err != nil {
		return MethodParametersAttr{}, err
	}
	params := make([]MethodParameterEntry, 0, count)
	for i := uint8(0); i < count; i++ {
		nIdx, err := r.readU16()
		if err != nil {
			return MethodParametersAttr{}, err
		}
		flags, err := r.readU16()
		if err != nil {
			return MethodParametersAttr{}, err
		}
		params = append(params, MethodParameterEntry{NameIndex: nIdx, Flags: flags})
	}
	return MethodParametersAttr{NameIndex: nameIndex, Parameters: params}, nil
}

func encodeMethodParametersAttr(w *writer, a MethodParametersAttr) {
	w.writeU8(uint8(len(a.Parameters)))
	for _, p := range a.Parameters {
		w.writeU16(p.NameIndex)
		w.writeU16(p.Flags)
	}
}

type ModuleAttr struct {
	NameIndex uint16
	Module    ModuleInfo
}

func (ModuleAttr) Name() string { return "Module" }

func decodeModuleAttr(r *reader, nameIndex uint16) (ModuleAttr, error) {
	m, err := decodeModuleInfo(r)
	return ModuleAttr{NameIndex: nameIndex, Module: m}, err
}

type ModulePackagesAttr struct {
	NameIndex      uint16
	PackageIndices []uint16
}

func (ModulePackagesAttr) Name() string { return "ModulePackages" }

func decodeModulePackagesAttr(r *reader, nameIndex uint16) (ModulePackagesAttr, error) {
	count, err := r.readU16()
	if err != nil {
		return ModulePackagesAttr{}, err
	}
	pkgs := make([]uint16, 0, count)
	for i := uint16(0); i < count; i++ {
		v, err := r.readU16()
		if err != nil {
			return ModulePackagesAttr{}, err
		}
		pkgs = append(pkgs, v)
	}
	return ModulePackagesAttr{NameIndex: nameIndex, PackageIndices: pkgs}, nil
}

func encodeModulePackagesAttr(w *writer, a ModulePackagesAttr) {
	w.writeU16(uint16(len(a.PackageIndices)))
	for _, v := range a.PackageIndices {
		w.writeU16(v)
	}
}

type ModuleMainClassAttr struct {
	NameIndex      uint16
	MainClassIndex uint16
}

func (ModuleMainClassAttr) Name() string { return "ModuleMainClass" }

func decodeModuleMainClassAttr(r *reader, nameIndex uint16) (ModuleMainClassAttr, error) {
	idx, err := r.readU16()
	return ModuleMainClassAttr{NameIndex: nameIndex, MainClassIndex: idx}, err
}

type NestHostAttr struct {
	NameIndex      uint16
	HostClassIndex uint16
}

func (NestHostAttr) Name() string { return "NestHost" }

func decodeNestHostAttr(r *reader, nameIndex uint16) (NestHostAttr, error) {
	idx, err := r.readU16()
	return NestHostAttr{NameIndex: nameIndex, HostClassIndex: idx}, err
}

type NestMembersAttr struct {
	NameIndex uint16
	Classes   []uint16
}

func (NestMembersAttr) Name() string { return "NestMembers" }

func decodeNestMembersAttr(r *reader, nameIndex uint16) (NestMembersAttr, error) {
	count, err := r.readU16()
	if err != nil {
		return NestMembersAttr{}, err
	}
	classes := make([]uint16, 0, count)
	for i := uint16(0); i < count; i++ {
		v, err := r.readU16()
		if err != nil {
			return NestMembersAttr{}, err
		}
		classes = append(classes, v)
	}
	return NestMembersAttr{NameIndex: nameIndex, Classes: classes}, nil
}

func encodeNestMembersAttr(w *writer, a NestMembersAttr) {
	w.writeU16(uint16(len(a.Classes)))
	for _, v := range a.Classes {
		w.writeU16(v)
	}
}

type PermittedSubclassesAttr struct {
	NameIndex uint16
	Classes   []uint16
}

func (PermittedSubclassesAttr) Name() string { return "PermittedSubclasses" }

func decodePermittedSubclassesAttr(r *reader, nameIndex uint16) (PermittedSubclassesAttr, error) {
	count, err := r.readU16()
	if err != nil {
		return PermittedSubclassesAttr{}, err
	}
	classes := make([]uint16, 0, count)
	for i := uint16(0); i < count; i++ {
		v, err := r.readU16()
		if err != nil {
			return PermittedSubclassesAttr{}, err
		}
		classes = append(classes, v)
	}
	return PermittedSubclassesAttr{NameIndex: nameIndex, Classes: classes}, nil
}

func encodePermittedSubclassesAttr(w *writer, a PermittedSubclassesAttr) {
	w.writeU16(uint16(len(a.Classes)))
	for _, v := range a.Classes {
		w.writeU16(v)
	}
}

// RecordComponentInfo is one entry of a Record attribute (JVMS §4.7.30).
type RecordComponentInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

type RecordAttr struct {
	NameIndex  uint16
	Components []RecordComponentInfo
}

func (RecordAttr) Name() string { return "Record" }

func decodeRecordAttr(r *reader, nameIndex uint16, cp *ConstantPool, opts *Options, depth uint32) (RecordAttr, error) {
	count, err := r.readU16()
	if err != nil {
		return RecordAttr{}, err
	}
	components := make([]RecordComponentInfo, 0, count)
	for i := uint16(0); i < count; i++ {
		nIdx, err := r.readU16()
		if err != nil {
			return RecordAttr{}, err
		}
		dIdx, err := r.readU16()
		if err != nil {
			return RecordAttr{}, err
		}
		attrCount, err := r.readU16()
		if err != nil {
			return RecordAttr{}, err
		}
		attrs, err := decodeAttributeListN(r, cp, opts, depth+1, attrCount, nil)
		if err != nil {
			return RecordAttr{}, err
		}
		components = append(components, RecordComponentInfo{
			NameIndex: nIdx, DescriptorIndex: dIdx, Attributes: attrs,
		})
	}
	return RecordAttr{NameIndex: nameIndex, Components: components}, nil
}

func encodeRecordAttr(w *writer, a RecordAttr) error {
	w.writeU16(uint16(len(a.Components)))
	for _, c := range a.Components {
		w.writeU16(c.NameIndex)
		w.writeU16(c.DescriptorIndex)
		w.writeU16(uint16(len(c.Attributes)))
		for _, sub := range c.Attributes {
			if err := encodeAttribute(w, sub, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// UnknownAttr preserves an attribute this codec does not recognise,
// verbatim, so round-tripping never drops data (JVMS §4.7.1 requires
// unrecognised attributes to be ignored by readers, not rejected).
type UnknownAttr struct {
	NameIndex uint16
	Info      []byte
}

func (UnknownAttr) Name() string { return "<unknown>" }
