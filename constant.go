// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "fmt"

// Constant pool tag bytes, JVMS §4.4 Table 4.4-A.
const (
	TagUtf8               uint8 = 1
	TagInteger            uint8 = 3
	TagFloat              uint8 = 4
	TagLong               uint8 = 5
	TagDouble             uint8 = 6
	TagClass              uint8 = 7
	TagString             uint8 = 8
	TagFieldref           uint8 = 9
	TagMethodref          uint8 = 10
	TagInterfaceMethodref uint8 = 11
	TagNameAndType        uint8 = 12
	TagMethodHandle       uint8 = 15
	TagMethodType         uint8 = 16
	TagDynamic            uint8 = 17
	TagInvokeDynamic      uint8 = 18
	TagModule             uint8 = 19
	TagPackage            uint8 = 20
)

// MethodHandle reference kinds, JVMS §4.4.8 Table 4.4.8-A.
const (
	RefGetField         uint8 = 1
	RefGetStatic        uint8 = 2
	RefPutField         uint8 = 3
	RefPutStatic        uint8 = 4
	RefInvokeVirtual    uint8 = 5
	RefInvokeStatic     uint8 = 6
	RefInvokeSpecial    uint8 = 7
	RefNewInvokeSpecial uint8 = 8
	RefInvokeInterface  uint8 = 9
)

// Constant is a single entry of the constant pool: a tagged union over the
// seventeen kinds enumerated by JVMS §4.4. Each concrete type below
// implements Constant, giving exhaustive dispatch (a type switch) instead
// of a class hierarchy, since every variant has a distinct wire shape and
// no shared behaviour beyond its tag.
type Constant interface {
	// Tag returns the wire tag byte of this constant.
	Tag() uint8
}

// ConstantUtf8 holds a modified-UTF-8 string (JVMS §4.4.7).
type ConstantUtf8 struct{ Value string }

func (ConstantUtf8) Tag() uint8 { return TagUtf8 }

// ConstantInteger holds a 32-bit signed integer (JVMS §4.4.4).
type ConstantInteger struct{ Value int32 }

func (ConstantInteger) Tag() uint8 { return TagInteger }

// ConstantFloat holds an IEEE 754 single-precision float (JVMS §4.4.4).
type ConstantFloat struct{ Value float32 }

func (ConstantFloat) Tag() uint8 { return TagFloat }

// ConstantLong holds a 64-bit signed integer; it occupies two constant pool
// slots (JVMS §4.4.5).
type ConstantLong struct{ Value int64 }

func (ConstantLong) Tag() uint8 { return TagLong }

// ConstantDouble holds an IEEE 754 double-precision float; it occupies two
// constant pool slots (JVMS §4.4.5).
type ConstantDouble struct{ Value float64 }

func (ConstantDouble) Tag() uint8 { return TagDouble }

// ConstantClass refers to a class or interface (JVMS §4.4.1). NameIndex
// must resolve to a Utf8 naming a binary class or array type.
type ConstantClass struct{ NameIndex uint16 }

func (ConstantClass) Tag() uint8 { return TagClass }

// ConstantString refers to a String literal (JVMS §4.4.3). StringIndex must
// resolve to a Utf8.
type ConstantString struct{ StringIndex uint16 }

func (ConstantString) Tag() uint8 { return TagString }

// ConstantFieldref refers to a field (JVMS §4.4.2).
type ConstantFieldref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (ConstantFieldref) Tag() uint8 { return TagFieldref }

// ConstantMethodref refers to a class method (JVMS §4.4.2).
type ConstantMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (ConstantMethodref) Tag() uint8 { return TagMethodref }

// ConstantInterfaceMethodref refers to an interface method (JVMS §4.4.2).
type ConstantInterfaceMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (ConstantInterfaceMethodref) Tag() uint8 { return TagInterfaceMethodref }

// ConstantNameAndType pairs a member name with its descriptor (JVMS §4.4.6).
type ConstantNameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (ConstantNameAndType) Tag() uint8 { return TagNameAndType }

// ConstantMethodHandle refers to a method handle (JVMS §4.4.8).
// ReferenceKind is one of the Ref* constants above; ReferenceIndex resolves
// to a Fieldref, Methodref or InterfaceMethodref depending on the kind.
type ConstantMethodHandle struct {
	ReferenceKind  uint8
	ReferenceIndex uint16
}

func (ConstantMethodHandle) Tag() uint8 { return TagMethodHandle }

// ConstantMethodType refers to a method descriptor (JVMS §4.4.9).
type ConstantMethodType struct{ DescriptorIndex uint16 }

func (ConstantMethodType) Tag() uint8 { return TagMethodType }

// ConstantDynamic refers to a dynamically-computed constant (JVMS §4.4.10).
// BootstrapMethodAttrIndex indexes into the class's BootstrapMethods
// attribute, not the constant pool.
type ConstantDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (ConstantDynamic) Tag() uint8 { return TagDynamic }

// ConstantInvokeDynamic refers to a dynamically-computed call site (JVMS
// §4.4.10). Same shape as ConstantDynamic but a distinct tag, kept as a
// distinct Go type so a type switch can't confuse the two.
type ConstantInvokeDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (ConstantInvokeDynamic) Tag() uint8 { return TagInvokeDynamic }

// ConstantModule names a module (JVMS §4.4.11); only legal in a class file
// whose access_flags has ACC_MODULE set.
type ConstantModule struct{ NameIndex uint16 }

func (ConstantModule) Tag() uint8 { return TagModule }

// ConstantPackage names an exported or opened package (JVMS §4.4.12); same
// restriction as ConstantModule.
type ConstantPackage struct{ NameIndex uint16 }

func (ConstantPackage) Tag() uint8 { return TagPackage }

// tagName returns the mnemonic JVMS name for a tag byte, used in error
// messages and by the verifier to describe a mismatched constant type.
func tagName(tag uint8) string {
	switch tag {
	case TagUtf8:
		return "Utf8"
	case TagInteger:
		return "Integer"
	case TagFloat:
		return "Float"
	case TagLong:
		return "Long"
	case TagDouble:
		return "Double"
	case TagClass:
		return "Class"
	case TagString:
		return "String"
	case TagFieldref:
		return "Fieldref"
	case TagMethodref:
		return "Methodref"
	case TagInterfaceMethodref:
		return "InterfaceMethodref"
	case TagNameAndType:
		return "NameAndType"
	case TagMethodHandle:
		return "MethodHandle"
	case TagMethodType:
		return "MethodType"
	case TagDynamic:
		return "Dynamic"
	case TagInvokeDynamic:
		return "InvokeDynamic"
	case TagModule:
		return "Module"
	case TagPackage:
		return "Package"
	default:
		return fmt.Sprintf("unknown(0x%02x)", tag)
	}
}

// decodeConstant reads a single constant pool entry, dispatching on the tag
// byte read from r.
func decodeConstant(r *reader) (Constant, error) {
	tag, err := r.readU8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case TagUtf8:
		length, err := r.readU16()
		if err != nil {
			return nil, err
		}
		b, err := r.readExact(uint32(length))
		if err != nil {
			return nil, err
		}
		s, err := mutf8Decode(b)
		if err != nil {
			return nil, err
		}
		return ConstantUtf8{Value: s}, nil

	case TagInteger:
		v, err := r.readI32()
		return ConstantInteger{Value: v}, err

	case TagFloat:
		v, err := r.readF32()
		return ConstantFloat{Value: v}, err

	case TagLong:
		v, err := r.readI64()
		return ConstantLong{Value: v}, err

	case TagDouble:
		v, err := r.readF64()
		return ConstantDouble{Value: v}, err

	case TagClass:
		v, err := r.readU16()
		return ConstantClass{NameIndex: v}, err

	case TagString:
		v, err := r.readU16()
		return ConstantString{StringIndex: v}, err

	case TagFieldref:
		c, err := r.readU16()
		if err != nil {
			return nil, err
		}
		nt, err := r.readU16()
		return ConstantFieldref{ClassIndex: c, NameAndTypeIndex: nt}, err

	case TagMethodref:
		c, err := r.readU16()
		if err != nil {
			return nil, err
		}
		nt, err := r.readU16()
		return ConstantMethodref{ClassIndex: c, NameAndTypeIndex: nt}, err

	case TagInterfaceMethodref:
		c, err := r.readU16()
		if err != nil {
			return nil, err
		}
		nt, err := r.readU16()
		return ConstantInterfaceMethodref{ClassIndex: c, NameAndTypeIndex: nt}, err

	case TagNameAndType:
		n, err := r.readU16()
		if err != nil {
			return nil, err
		}
		d, err := r.readU16()
		return ConstantNameAndType{NameIndex: n, DescriptorIndex: d}, err

	case TagMethodHandle:
		k, err := r.readU8()
		if err != nil {
			return nil, err
		}
		ref, err := r.readU16()
		return ConstantMethodHandle{ReferenceKind: k, ReferenceIndex: ref}, err

	case TagMethodType:
		v, err := r.readU16()
		return ConstantMethodType{DescriptorIndex: v}, err

	case TagDynamic:
		bsm, err := r.readU16()
		if err != nil {
			return nil, err
		}
		nt, err := r.readU16()
		return ConstantDynamic{BootstrapMethodAttrIndex: bsm, NameAndTypeIndex: nt}, err

	case TagInvokeDynamic:
		bsm, err := r.readU16()
		if err != nil {
			return nil, err
		}
		nt, err := r.readU16()
		return ConstantInvokeDynamic{BootstrapMethodAttrIndex: bsm, NameAndTypeIndex: nt}, err

	case TagModule:
		v, err := r.readU16()
		return ConstantModule{NameIndex: v}, err

	case TagPackage:
		v, err := r.readU16()
		return ConstantPackage{NameIndex: v}, err

	default:
		return nil, &InvalidConstantTagError{Tag: tag}
	}
}

// encodeConstant appends c's wire form (tag byte + payload) to w.
func encodeConstant(w *writer, c Constant) {
	w.writeU8(c.Tag())
	switch v := c.(type) {
	case ConstantUtf8:
		b := mutf8Encode(v.Value)
		w.writeU16(uint16(len(b)))
		w.writeBytes(b)
	case ConstantInteger:
		w.writeI32(v.Value)
	case ConstantFloat:
		w.writeF32(v.Value)
	case ConstantLong:
		w.writeI64(v.Value)
	case ConstantDouble:
		w.writeF64(v.Value)
	case ConstantClass:
		w.writeU16(v.NameIndex)
	case ConstantString:
		w.writeU16(v.StringIndex)
	case ConstantFieldref:
		w.writeU16(v.ClassIndex)
		w.writeU16(v.NameAndTypeIndex)
	case ConstantMethodref:
		w.writeU16(v.ClassIndex)
		w.writeU16(v.NameAndTypeIndex)
	case ConstantInterfaceMethodref:
		w.writeU16(v.ClassIndex)
		w.writeU16(v.NameAndTypeIndex)
	case ConstantNameAndType:
		w.writeU16(v.NameIndex)
		w.writeU16(v.DescriptorIndex)
	case ConstantMethodHandle:
		w.writeU8(v.ReferenceKind)
		w.writeU16(v.ReferenceIndex)
	case ConstantMethodType:
		w.writeU16(v.DescriptorIndex)
	case ConstantDynamic:
		w.writeU16(v.BootstrapMethodAttrIndex)
		w.writeU16(v.NameAndTypeIndex)
	case ConstantInvokeDynamic:
		w.writeU16(v.BootstrapMethodAttrIndex)
		w.writeU16(v.NameAndTypeIndex)
	case ConstantModule:
		w.writeU16(v.NameIndex)
	case ConstantPackage:
		w.writeU16(v.NameIndex)
	}
}

// constantWireWidth reports how many logical pool slots c occupies: 2 for
// Long/Double, 1 for everything else (JVMS §4.4.5).
func constantWireWidth(c Constant) uint16 {
	switch c.Tag() {
	case TagLong, TagDouble:
		return 2
	default:
		return 1
	}
}
