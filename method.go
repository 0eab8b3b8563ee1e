// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Method is one method_info entry (JVMS §4.6).
type Method struct {
	AccessFlags     MethodAccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

// Code returns the method's Code attribute, if present.
func (m Method) Code() (CodeAttr, bool) {
	for _, a := range m.Attributes {
		if c, ok := a.(CodeAttr); ok {
			return c, true
		}
	}
	return CodeAttr{}, false
}

func decodeMethod(r *reader, cp *ConstantPool, opts *Options) (Method, error) {
	flags, err := r.readU16()
	if err != nil {
		return Method{}, err
	}
	nameIdx, err := r.readU16()
	if err != nil {
		return Method{}, err
	}
	descIdx, err := r.readU16()
	if err != nil {
		return Method{}, err
	}
	attrs, err := decodeAttributeList(r, cp, opts)
	if err != nil {
		return Method{}, err
	}
	return Method{
		AccessFlags: MethodAccessFlags(flags), NameIndex: nameIdx,
		DescriptorIndex: descIdx, Attributes: attrs,
	}, nil
}

func encodeMethod(w *writer, m Method) error {
	w.writeU16(uint16(m.AccessFlags))
	w.writeU16(m.NameIndex)
	w.writeU16(m.DescriptorIndex)
	w.writeU16(uint16(len(m.Attributes)))
	for _, a := range m.Attributes {
		if err := encodeAttribute(w, a, nil); err != nil {
			return err
		}
	}
	return nil
}

func decodeMethods(r *reader, cp *ConstantPool, opts *Options) ([]Method, error) {
	count, err := r.readU16()
	if err != nil {
		return nil, err
	}
	limit := opts.resourceLimit(opts.MaxMethodsCount, DefaultMaxMethodsCount)
	if uint32(count) > limit {
		return nil, ErrResourceLimitExceeded
	}
	methods := make([]Method, 0, count)
	for i := uint16(0); i < count; i++ {
		m, err := decodeMethod(r, cp, opts)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, nil
}
