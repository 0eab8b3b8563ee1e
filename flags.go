// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// The access/modifier bitsets of JVMS §4.1, §4.5, §4.6, §4.7.24 (Module),
// §4.7.25 (ModulePackages is flagless), §4.7.6 (InnerClasses),
// §4.7.25 (Requires/Exports/Opens). Each gets its own named type so a
// ClassAccessFlags value can never be passed where a MethodAccessFlags is
// expected, even though both are backed by uint16. Each bitset gets an
// `Is` method that tests a single bit.

// ClassAccessFlags holds the access_flags of a ClassFile.
type ClassAccessFlags uint16

const (
	AccPublic     ClassAccessFlags = 0x0001
	AccFinal      ClassAccessFlags = 0x0010
	AccSuper      ClassAccessFlags = 0x0020
	AccInterface  ClassAccessFlags = 0x0200
	AccAbstract   ClassAccessFlags = 0x0400
	AccSynthetic  ClassAccessFlags = 0x1000
	AccAnnotation ClassAccessFlags = 0x2000
	AccEnum       ClassAccessFlags = 0x4000
	AccModule     ClassAccessFlags = 0x8000
)

// Is reports whether flag is set in f.
func (f ClassAccessFlags) Is(flag ClassAccessFlags) bool { return f&flag != 0 }

var classAccessFlagNames = map[ClassAccessFlags]string{
	AccPublic:     "ACC_PUBLIC",
	AccFinal:      "ACC_FINAL",
	AccSuper:      "ACC_SUPER",
	AccInterface:  "ACC_INTERFACE",
	AccAbstract:   "ACC_ABSTRACT",
	AccSynthetic:  "ACC_SYNTHETIC",
	AccAnnotation: "ACC_ANNOTATION",
	AccEnum:       "ACC_ENUM",
	AccModule:     "ACC_MODULE",
}

// Names returns the set bits of f as their JVMS mnemonic strings.
func (f ClassAccessFlags) Names() []string {
	var out []string
	for bit, name := range classAccessFlagNames {
		if f.Is(bit) {
			out = append(out, name)
		}
	}
	return out
}

// FieldAccessFlags holds the access_flags of a field_info (JVMS §4.5).
type FieldAccessFlags uint16

const (
	AccFieldPublic    FieldAccessFlags = 0x0001
	AccFieldPrivate   FieldAccessFlags = 0x0002
	AccFieldProtected FieldAccessFlags = 0x0004
	AccFieldStatic    FieldAccessFlags = 0x0008
	AccFieldFinal     FieldAccessFlags = 0x0010
	AccFieldVolatile  FieldAccessFlags = 0x0040
	AccFieldTransient FieldAccessFlags = 0x0080
	AccFieldSynthetic FieldAccessFlags = 0x1000
	AccFieldEnum      FieldAccessFlags = 0x4000
)

func (f FieldAccessFlags) Is(flag FieldAccessFlags) bool { return f&flag != 0 }

// MethodAccessFlags holds the access_flags of a method_info (JVMS §4.6).
type MethodAccessFlags uint16

const (
	AccMethodPublic       MethodAccessFlags = 0x0001
	AccMethodPrivate      MethodAccessFlags = 0x0002
	AccMethodProtected    MethodAccessFlags = 0x0004
	AccMethodStatic       MethodAccessFlags = 0x0008
	AccMethodFinal        MethodAccessFlags = 0x0010
	AccMethodSynchronized MethodAccessFlags = 0x0020
	AccMethodBridge       MethodAccessFlags = 0x0040
	AccMethodVarargs      MethodAccessFlags = 0x0080
	AccMethodNative       MethodAccessFlags = 0x0100
	AccMethodAbstract     MethodAccessFlags = 0x0400
	AccMethodStrict       MethodAccessFlags = 0x0800
	AccMethodSynthetic    MethodAccessFlags = 0x1000
)

func (f MethodAccessFlags) Is(flag MethodAccessFlags) bool { return f&flag != 0 }

// NestedClassAccessFlags holds the inner_class_access_flags of an
// InnerClasses entry (JVMS §4.7.6); it is its own bitset since inner classes
// additionally permit ACC_PRIVATE/ACC_PROTECTED/ACC_STATIC alongside the
// ordinary class flags.
type NestedClassAccessFlags uint16

const (
	AccNestedPublic    NestedClassAccessFlags = 0x0001
	AccNestedPrivate   NestedClassAccessFlags = 0x0002
	AccNestedProtected NestedClassAccessFlags = 0x0004
	AccNestedStatic    NestedClassAccessFlags = 0x0008
	AccNestedFinal     NestedClassAccessFlags = 0x0010
	AccNestedInterface NestedClassAccessFlags = 0x0200
	AccNestedAbstract  NestedClassAccessFlags = 0x0400
	AccNestedSynthetic NestedClassAccessFlags = 0x1000
	AccNestedAnnotation NestedClassAccessFlags = 0x2000
	AccNestedEnum      NestedClassAccessFlags = 0x4000
)

func (f NestedClassAccessFlags) Is(flag NestedClassAccessFlags) bool { return f&flag != 0 }

// ModuleFlags holds the module_flags of a Module attribute (JVMS §4.7.25).
type ModuleFlags uint16

const (
	AccModuleOpen      ModuleFlags = 0x0020
	AccModuleSynthetic ModuleFlags = 0x1000
	AccModuleMandated  ModuleFlags = 0x8000
)

func (f ModuleFlags) Is(flag ModuleFlags) bool { return f&flag != 0 }

// RequiresFlags holds the requires_flags of a Module.Requires entry.
type RequiresFlags uint16

const (
	AccRequiresTransitive RequiresFlags = 0x0020
	AccRequiresStaticPhase RequiresFlags = 0x0040
	AccRequiresSynthetic  RequiresFlags = 0x1000
	AccRequiresMandated   RequiresFlags = 0x8000
)

func (f RequiresFlags) Is(flag RequiresFlags) bool { return f&flag != 0 }

// ExportsFlags holds the exports_flags of a Module.Exports entry, and
// OpensFlags holds the opens_flags of a Module.Opens entry; both share the
// same two bits (JVMS §4.7.25).
type ExportsFlags uint16

const (
	AccExportsSynthetic ExportsFlags = 0x1000
	AccExportsMandated  ExportsFlags = 0x8000
)

func (f ExportsFlags) Is(flag ExportsFlags) bool { return f&flag != 0 }

type OpensFlags uint16

const (
	AccOpensSynthetic OpensFlags = 0x1000
	AccOpensMandated  OpensFlags = 0x8000
)

func (f OpensFlags) Is(flag OpensFlags) bool { return f&flag != 0 }
