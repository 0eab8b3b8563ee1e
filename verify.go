// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "fmt"

// Verify runs the structural checks of JVMS §4.6 against a decoded
// ClassFile: every constant-pool cross-reference resolves to an entry of
// the expected tag, every index field is in range, and the handful of
// cross-cutting rules (interfaces are abstract, only abstract/native
// methods and <clinit> may lack Code, Code's exception table bounds) hold. It does not perform data-flow or
// type verification (JVMS §4.10): a class that passes Verify can still be
// rejected by a real JVM at link time.
func Verify(cf *ClassFile, opts *Options) error {
	if cf.Major < MinSupportedMajor {
		return &VerifyError{Context: "ClassFile", Message: fmt.Sprintf("major version %d predates JDK 1.0.2", cf.Major)}
	}

	if err := validateConstantPool(cf.ConstantPool); err != nil {
		return err
	}

	if err := cf.ConstantPool.checkType(cf.ThisClass, TagClass); err != nil {
		return &VerifyError{Context: "ClassFile", Message: "this_class: " + err.Error()}
	}
	if cf.SuperClass != 0 {
		if err := cf.ConstantPool.checkType(cf.SuperClass, TagClass); err != nil {
			return &VerifyError{Context: "ClassFile", Message: "super_class: " + err.Error()}
		}
	} else if !cf.AccessFlags.Is(AccInterface) {
		name, _ := cf.ConstantPool.ClassName(cf.ThisClass)
		if name != "java/lang/Object" {
			return &VerifyError{Context: "ClassFile", Message: "super_class is 0 for a class other than java/lang/Object"}
		}
	}

	if cf.AccessFlags.Is(AccInterface) && !cf.AccessFlags.Is(AccAbstract) {
		return &VerifyError{Context: "ClassFile", Message: "ACC_INTERFACE requires ACC_ABSTRACT"}
	}
	if cf.AccessFlags.Is(AccInterface) && cf.AccessFlags.Is(AccFinal) {
		return &VerifyError{Context: "ClassFile", Message: "ACC_INTERFACE and ACC_FINAL are mutually exclusive"}
	}

	for _, idx := range cf.Interfaces {
		if err := cf.ConstantPool.checkType(idx, TagClass); err != nil {
			return &VerifyError{Context: "ClassFile", Message: "interfaces: " + err.Error()}
		}
	}

	for i := range cf.Fields {
		if err := verifyField(cf, &cf.Fields[i]); err != nil {
			return err
		}
	}
	for i := range cf.Methods {
		if err := verifyMethod(cf, &cf.Methods[i]); err != nil {
			return err
		}
	}

	if err := verifyAttributeList(cf, cf.Attributes, "Class"); err != nil {
		return err
	}

	return nil
}

func verifyField(cf *ClassFile, f *Field) error {
	cp := cf.ConstantPool
	if err := cp.checkType(f.NameIndex, TagUtf8); err != nil {
		return &VerifyError{Context: "Field", Message: "name_index: " + err.Error()}
	}
	descriptor, err := cp.Utf8(f.DescriptorIndex)
	if err != nil {
		return &VerifyError{Context: "Field", Message: "descriptor_index: " + err.Error()}
	}
	if _, err := ParseFieldDescriptor(descriptor); err != nil {
		return &VerifyError{Context: "Field", Message: fmt.Sprintf("malformed descriptor %q: %v", descriptor, err)}
	}

	if f.AccessFlags.Is(AccFieldPublic) && f.AccessFlags.Is(AccFieldPrivate) ||
		f.AccessFlags.Is(AccFieldPublic) && f.AccessFlags.Is(AccFieldProtected) ||
		f.AccessFlags.Is(AccFieldPrivate) && f.AccessFlags.Is(AccFieldProtected) {
		return &VerifyError{Context: "Field", Message: "at most one of ACC_PUBLIC/ACC_PRIVATE/ACC_PROTECTED may be set"}
	}
	if f.AccessFlags.Is(AccFieldFinal) && f.AccessFlags.Is(AccFieldVolatile) {
		return &VerifyError{Context: "Field", Message: "ACC_FINAL and ACC_VOLATILE are mutually exclusive"}
	}

	return verifyAttributeList(cf, f.Attributes, "Field")
}

func verifyMethod(cf *ClassFile, m *Method) error {
	cp := cf.ConstantPool
	if err := cp.checkType(m.NameIndex, TagUtf8); err != nil {
		return &VerifyError{Context: "Method", Message: "name_index: " + err.Error()}
	}
	descriptor, err := cp.Utf8(m.DescriptorIndex)
	if err != nil {
		return &VerifyError{Context: "Method", Message: "descriptor_index: " + err.Error()}
	}
	if _, err := ParseMethodDescriptor(descriptor); err != nil {
		return &VerifyError{Context: "Method", Message: fmt.Sprintf("malformed descriptor %q: %v", descriptor, err)}
	}

	if m.AccessFlags.Is(AccMethodAbstract) {
		if m.AccessFlags.Is(AccMethodPrivate) || m.AccessFlags.Is(AccMethodStatic) ||
			m.AccessFlags.Is(AccMethodFinal) || m.AccessFlags.Is(AccMethodSynchronized) ||
			m.AccessFlags.Is(AccMethodNative) || m.AccessFlags.Is(AccMethodStrict) {
			return &VerifyError{Context: "Method", Message: "ACC_ABSTRACT excludes ACC_PRIVATE/ACC_STATIC/ACC_FINAL/ACC_SYNCHRONIZED/ACC_NATIVE/ACC_STRICT"}
		}
	}

	name, _ := cp.Utf8(m.NameIndex)
	hasCode := false
	for _, a := range m.Attributes {
		if _, ok := a.(CodeAttr); ok {
			hasCode = true
		}
	}
	if (m.AccessFlags.Is(AccMethodAbstract) || m.AccessFlags.Is(AccMethodNative)) && hasCode {
		return &VerifyError{Context: "Method", Message: "abstract or native methods must not carry a Code attribute"}
	}
	if !m.AccessFlags.Is(AccMethodAbstract) && !m.AccessFlags.Is(AccMethodNative) && !hasCode && name != "<clinit>" {
		return &VerifyError{Context: "Method", Message: "non-abstract, non-native methods must carry a Code attribute"}
	}

	if err := verifyAttributeList(cf, m.Attributes, "Method"); err != nil {
		return err
	}
	if code, ok := m.Code(); ok {
		if err := verifyCode(cf, &code); err != nil {
			return err
		}
	}
	return nil
}

func verifyCode(cf *ClassFile, c *CodeAttr) error {
	n := len(c.Code)
	for _, e := range c.ExceptionTable {
		if e.StartPC < 0 || e.StartPC >= n {
			return &VerifyError{Context: "Code", Message: "exception table start_pc out of range"}
		}
		if e.EndPC <= e.StartPC || e.EndPC > n {
			return &VerifyError{Context: "Code", Message: "exception table end_pc out of range"}
		}
		if e.HandlerPC < 0 || e.HandlerPC >= n {
			return &VerifyError{Context: "Code", Message: "exception table handler_pc out of range"}
		}
		if e.CatchType != 0 {
			if err := cf.ConstantPool.checkType(e.CatchType, TagClass); err != nil {
				return &VerifyError{Context: "Code", Message: "exception table catch_type: " + err.Error()}
			}
		}
	}
	return verifyAttributeList(cf, c.Attributes, "Code")
}

// verifyAttributeList checks any cross-references that a generic
// attributes_count loop can validate independent of its own context, plus
// the handful of per-attribute-kind structural rules not already enforced
// by their decoders.
func verifyAttributeList(cf *ClassFile, attrs []Attribute, context string) error {
	cp := cf.ConstantPool
	for _, raw := range attrs {
		switch a := raw.(type) {
		case ConstantValueAttr:
			if _, err := cp.Get(a.ValueIndex); err != nil {
				return &VerifyError{Context: context, Message: "ConstantValue: " + err.Error()}
			}
		case SignatureAttr:
			if err := cp.checkType(a.SignatureIndex, TagUtf8); err != nil {
				return &VerifyError{Context: context, Message: "Signature: " + err.Error()}
			}
		case SourceFileAttr:
			if err := cp.checkType(a.SourceFileIndex, TagUtf8); err != nil {
				return &VerifyError{Context: context, Message: "SourceFile: " + err.Error()}
			}
		case ExceptionsAttr:
			for _, idx := range a.ExceptionIndexTable {
				if err := cp.checkType(idx, TagClass); err != nil {
					return &VerifyError{Context: context, Message: "Exceptions: " + err.Error()}
				}
			}
		case InnerClassesAttr:
			for _, ic := range a.Classes {
				if err := cp.checkType(ic.InnerClassInfoIndex, TagClass); err != nil {
					return &VerifyError{Context: context, Message: "InnerClasses: " + err.Error()}
				}
				if ic.OuterClassInfoIndex != 0 {
					if err := cp.checkType(ic.OuterClassInfoIndex, TagClass); err != nil {
						return &VerifyError{Context: context, Message: "InnerClasses: " + err.Error()}
					}
				}
				if ic.InnerNameIndex != 0 {
					if err := cp.checkType(ic.InnerNameIndex, TagUtf8); err != nil {
						return &VerifyError{Context: context, Message: "InnerClasses: " + err.Error()}
					}
				}
			}
		case EnclosingMethodAttr:
			if err := cp.checkType(a.ClassIndex, TagClass); err != nil {
				return &VerifyError{Context: context, Message: "EnclosingMethod: " + err.Error()}
			}
			if a.MethodIndex != 0 {
				if err := cp.checkType(a.MethodIndex, TagNameAndType); err != nil {
					return &VerifyError{Context: context, Message: "EnclosingMethod: " + err.Error()}
				}
			}
		case NestHostAttr:
			if err := cp.checkType(a.HostClassIndex, TagClass); err != nil {
				return &VerifyError{Context: context, Message: "NestHost: " + err.Error()}
			}
		case NestMembersAttr:
			for _, idx := range a.Classes {
				if err := cp.checkType(idx, TagClass); err != nil {
					return &VerifyError{Context: context, Message: "NestMembers: " + err.Error()}
				}
			}
		case PermittedSubclassesAttr:
			for _, idx := range a.Classes {
				if err := cp.checkType(idx, TagClass); err != nil {
					return &VerifyError{Context: context, Message: "PermittedSubclasses: " + err.Error()}
				}
			}
		case RecordAttr:
			if context != "Class" {
				return &VerifyError{Context: context, Message: "Record attribute only legal on a ClassFile"}
			}
			for _, comp := range a.Components {
				if err := cp.checkType(comp.NameIndex, TagUtf8); err != nil {
					return &VerifyError{Context: "RecordComponent", Message: err.Error()}
				}
				if err := cp.checkType(comp.DescriptorIndex, TagUtf8); err != nil {
					return &VerifyError{Context: "RecordComponent", Message: err.Error()}
				}
				if err := verifyAttributeList(cf, comp.Attributes, "RecordComponent"); err != nil {
					return err
				}
			}
		case BootstrapMethodsAttr:
			if context != "Class" {
				return &VerifyError{Context: context, Message: "BootstrapMethods attribute only legal on a ClassFile"}
			}
			for _, bm := range a.Methods {
				if err := cp.checkType(bm.MethodRefIndex, TagMethodHandle); err != nil {
					return &VerifyError{Context: context, Message: "BootstrapMethods: " + err.Error()}
				}
			}
		case ModuleAttr:
			if err := cp.checkType(a.Module.ModuleNameIndex, TagModule); err != nil {
				return &VerifyError{Context: context, Message: "Module: " + err.Error()}
			}
		}
	}
	return nil
}
