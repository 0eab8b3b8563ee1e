// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// ConstantPool is the 1-indexed table of constants attached to a ClassFile
// (JVMS §4.4). Slot 0 is never used. An entry that follows a Long or
// Double occupies no wire space of its own (JVMS §4.4.5): Entries holds a
// nil placeholder there so that 1-based indexing into Entries lines up
// directly with the index fields scattered across the rest of the class
// file.
type ConstantPool struct {
	// Entries is 1-indexed: Entries[0] is always nil. Count() reports the
	// wire constant_pool_count, which is len(Entries) since the unusable
	// trailing slot after a Long/Double is represented explicitly.
	Entries []Constant
}

// NewConstantPool returns an empty pool with only the unused slot 0.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{Entries: make([]Constant, 1)}
}

// Count reports the wire constant_pool_count field: one more than the
// highest valid index, counting unusable slots after Long/Double entries.
func (cp *ConstantPool) Count() uint16 {
	return uint16(len(cp.Entries))
}

// Add appends c to the pool and returns the index it was stored at. A
// Long or Double additionally consumes the following slot with a nil
// placeholder, per JVMS §4.4.5.
func (cp *ConstantPool) Add(c Constant) uint16 {
	index := uint16(len(cp.Entries))
	cp.Entries = append(cp.Entries, c)
	if constantWireWidth(c) == 2 {
		cp.Entries = append(cp.Entries, nil)
	}
	return index
}

// AddUtf8 returns the index of the existing Utf8 entry equal to s, adding
// one only if no such entry exists. Utf8 constants are deduplicated this
// way rather than by a general Add-time scan, since Utf8 is the only kind
// JVMS expects a compiler to consistently share (class/field/method names
// and descriptors are repeated throughout a class file).
func (cp *ConstantPool) AddUtf8(s string) uint16 {
	for i, c := range cp.Entries {
		if u, ok := c.(ConstantUtf8); ok && u.Value == s {
			return uint16(i)
		}
	}
	return cp.Add(ConstantUtf8{Value: s})
}

// Get returns the constant at index, or an error if index is 0, out of
// range, or lands on the unusable slot following a Long/Double.
func (cp *ConstantPool) Get(index uint16) (Constant, error) {
	if index == 0 || int(index) >= len(cp.Entries) || cp.Entries[index] == nil {
		return nil, &InvalidConstantPoolIndexError{Index: index}
	}
	return cp.Entries[index], nil
}

// Utf8 resolves index to a Utf8 constant's string value, or returns an
// error if index does not name a Utf8 entry.
func (cp *ConstantPool) Utf8(index uint16) (string, error) {
	c, err := cp.Get(index)
	if err != nil {
		return "", err
	}
	u, ok := c.(ConstantUtf8)
	if !ok {
		return "", &InvalidConstantPoolIndexTypeError{Index: index, Want: "Utf8", Got: tagName(c.Tag())}
	}
	return u.Value, nil
}

// ClassName resolves index to a Class constant, then resolves its
// name_index to the binary class name string.
func (cp *ConstantPool) ClassName(index uint16) (string, error) {
	c, err := cp.Get(index)
	if err != nil {
		return "", err
	}
	cls, ok := c.(ConstantClass)
	if !ok {
		return "", &InvalidConstantPoolIndexTypeError{Index: index, Want: "Class", Got: tagName(c.Tag())}
	}
	return cp.Utf8(cls.NameIndex)
}

// NameAndType resolves index to a NameAndType constant's (name,
// descriptor) string pair.
func (cp *ConstantPool) NameAndType(index uint16) (name, descriptor string, err error) {
	c, err := cp.Get(index)
	if err != nil {
		return "", "", err
	}
	nt, ok := c.(ConstantNameAndType)
	if !ok {
		return "", "", &InvalidConstantPoolIndexTypeError{Index: index, Want: "NameAndType", Got: tagName(c.Tag())}
	}
	name, err = cp.Utf8(nt.NameIndex)
	if err != nil {
		return "", "", err
	}
	descriptor, err = cp.Utf8(nt.DescriptorIndex)
	return name, descriptor, err
}

// checkType verifies that the constant at index has the expected tag,
// without caring about its payload. Used by the verifier to validate
// cross-reference fields (e.g. a Fieldref's class_index must name a
// Class constant) without fully resolving them.
func (cp *ConstantPool) checkType(index uint16, want uint8) error {
	c, err := cp.Get(index)
	if err != nil {
		return err
	}
	if c.Tag() != want {
		return &InvalidConstantPoolIndexTypeError{Index: index, Want: tagName(want), Got: tagName(c.Tag())}
	}
	return nil
}

// decodeConstantPool reads constant_pool_count-1 entries (the count field
// itself is already consumed by the caller) from r.
func decodeConstantPool(r *reader, count uint16, opts *Options) (*ConstantPool, error) {
	limit := opts.resourceLimit(opts.MaxConstantPoolCount, DefaultMaxConstantPoolCount)
	if limit != 0 && uint32(count) > limit {
		return nil, ErrResourceLimitExceeded
	}

	cp := &ConstantPool{Entries: make([]Constant, 1, int(count)+1)}
	for i := uint16(1); i < count; i++ {
		c, err := decodeConstant(r)
		if err != nil {
			return nil, err
		}
		cp.Entries = append(cp.Entries, c)
		if constantWireWidth(c) == 2 {
			cp.Entries = append(cp.Entries, nil)
			i++
		}
	}
	return cp, nil
}

// encodeConstantPool appends the wire form of every non-nil entry in cp to
// w, in ascending index order, skipping the unusable slots.
func encodeConstantPool(w *writer, cp *ConstantPool) {
	for i := 1; i < len(cp.Entries); i++ {
		if cp.Entries[i] == nil {
			continue
		}
		encodeConstant(w, cp.Entries[i])
	}
}

// validateConstantPool checks every cross-reference field in the pool
// against the rest of the pool, per JVMS §4.4's per-tag constraints.
func validateConstantPool(cp *ConstantPool) error {
	for i := 1; i < len(cp.Entries); i++ {
		c := cp.Entries[i]
		if c == nil {
			continue
		}
		switch v := c.(type) {
		case ConstantClass:
			if err := cp.checkType(v.NameIndex, TagUtf8); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
		case ConstantString:
			if err := cp.checkType(v.StringIndex, TagUtf8); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
		case ConstantFieldref:
			if err := cp.checkType(v.ClassIndex, TagClass); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
			if err := cp.checkType(v.NameAndTypeIndex, TagNameAndType); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
		case ConstantMethodref:
			if err := cp.checkType(v.ClassIndex, TagClass); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
			if err := cp.checkType(v.NameAndTypeIndex, TagNameAndType); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
		case ConstantInterfaceMethodref:
			if err := cp.checkType(v.ClassIndex, TagClass); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
			if err := cp.checkType(v.NameAndTypeIndex, TagNameAndType); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
		case ConstantNameAndType:
			if err := cp.checkType(v.NameIndex, TagUtf8); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
			if err := cp.checkType(v.DescriptorIndex, TagUtf8); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
		case ConstantMethodHandle:
			if v.ReferenceKind < RefGetField || v.ReferenceKind > RefInvokeInterface {
				return &VerifyError{Context: "ConstantPool", Message: "method handle reference_kind out of range"}
			}
			if _, err := cp.Get(v.ReferenceIndex); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
		case ConstantMethodType:
			if err := cp.checkType(v.DescriptorIndex, TagUtf8); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
		case ConstantDynamic:
			if err := cp.checkType(v.NameAndTypeIndex, TagNameAndType); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
		case ConstantInvokeDynamic:
			if err := cp.checkType(v.NameAndTypeIndex, TagNameAndType); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
		case ConstantModule:
			if err := cp.checkType(v.NameIndex, TagUtf8); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
		case ConstantPackage:
			if err := cp.checkType(v.NameIndex, TagUtf8); err != nil {
				return &VerifyError{Context: "ConstantPool", Message: err.Error()}
			}
		}
	}
	return nil
}
