// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Field is one field_info entry (JVMS §4.5).
type Field struct {
	AccessFlags     FieldAccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

func decodeField(r *reader, cp *ConstantPool, opts *Options) (Field, error) {
	flags, err := r.readU16()
	if err != nil {
		return Field{}, err
	}
	nameIdx, err := r.readU16()
	if err != nil {
		return Field{}, err
	}
	descIdx, err := r.readU16()
	if err != nil {
		return Field{}, err
	}
	attrs, err := decodeAttributeList(r, cp, opts)
	if err != nil {
		return Field{}, err
	}
	return Field{
		AccessFlags: FieldAccessFlags(flags), NameIndex: nameIdx,
		DescriptorIndex: descIdx, Attributes: attrs,
	}, nil
}

func encodeField(w *writer, f Field) error {
	w.writeU16(uint16(f.AccessFlags))
	w.writeU16(f.NameIndex)
	w.writeU16(f.DescriptorIndex)
	w.writeU16(uint16(len(f.Attributes)))
	for _, a := range f.Attributes {
		if err := encodeAttribute(w, a, nil); err != nil {
			return err
		}
	}
	return nil
}

func decodeFields(r *reader, cp *ConstantPool, opts *Options) ([]Field, error) {
	count, err := r.readU16()
	if err != nil {
		return nil, err
	}
	limit := opts.resourceLimit(opts.MaxFieldsCount, DefaultMaxFieldsCount)
	if uint32(count) > limit {
		return nil, ErrResourceLimitExceeded
	}
	fields := make([]Field, 0, count)
	for i := uint16(0); i < count; i++ {
		f, err := decodeField(r, cp, opts)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}
