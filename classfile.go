// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/go-jvms/classfile/internal/log"
)

// magicNumber is the fixed four-byte signature every class file begins
// with (JVMS §4.1).
const magicNumber = 0xCAFEBABE

// ClassFile is a fully decoded JVM class file (JVMS §4.1).
type ClassFile struct {
	Minor        uint16
	Major        uint16
	ConstantPool *ConstantPool
	AccessFlags  ClassAccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []Field
	Methods      []Method
	Attributes   []Attribute

	data   mmap.MMap
	mapped bool
	f      *os.File
	opts   *Options
	logger *log.Helper
}

// Version returns the class file's (major, minor) version pair.
func (cf *ClassFile) Version() Version {
	return Version{Major: cf.Major, Minor: cf.Minor}
}

// ThisClassName resolves ThisClass to its binary class name.
func (cf *ClassFile) ThisClassName() (string, error) {
	return cf.ConstantPool.ClassName(cf.ThisClass)
}

// SuperClassName resolves SuperClass to its binary class name. Returns ""
// with no error for java/lang/Object, whose SuperClass is 0.
func (cf *ClassFile) SuperClassName() (string, error) {
	if cf.SuperClass == 0 {
		return "", nil
	}
	return cf.ConstantPool.ClassName(cf.SuperClass)
}

// NewFromFile memory-maps name and parses it as a class file.
func NewFromFile(name string, opts *Options) (*ClassFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	cf := newClassFile(opts)
	cf.data = data
	cf.mapped = true
	cf.f = f
	if err := cf.Parse(); err != nil {
		cf.Close()
		return nil, err
	}
	return cf, nil
}

// NewFromBytes parses data as a class file without touching the
// filesystem.
func NewFromBytes(data []byte, opts *Options) (*ClassFile, error) {
	cf := newClassFile(opts)
	cf.data = data
	if err := cf.Parse(); err != nil {
		return nil, err
	}
	return cf, nil
}

func newClassFile(opts *Options) *ClassFile {
	cf := &ClassFile{}
	if opts != nil {
		cf.opts = opts
	} else {
		cf.opts = defaultOptions()
	}
	cf.logger = cf.opts.helper()
	return cf
}

// Close releases the memory mapping backing a ClassFile opened with
// NewFromFile. It is a no-op for a ClassFile parsed from an in-memory
// buffer.
func (cf *ClassFile) Close() error {
	if cf.mapped && cf.data != nil {
		_ = cf.data.Unmap()
	}
	if cf.f != nil {
		return cf.f.Close()
	}
	return nil
}

// Parse decodes cf.data into the fields of cf, running the structural
// verifier afterward unless Options.Fast is set.
func (cf *ClassFile) Parse() error {
	r := newReader(cf.data)

	magic, err := r.readU32()
	if err != nil {
		return err
	}
	if magic != magicNumber {
		return ErrInvalidMagicNumber
	}

	if cf.Minor, err = r.readU16(); err != nil {
		return err
	}
	if cf.Major, err = r.readU16(); err != nil {
		return err
	}

	cpCount, err := r.readU16()
	if err != nil {
		return err
	}
	cf.ConstantPool, err = decodeConstantPool(r, cpCount, cf.opts)
	if err != nil {
		return err
	}

	flags, err := r.readU16()
	if err != nil {
		return err
	}
	cf.AccessFlags = ClassAccessFlags(flags)

	if cf.ThisClass, err = r.readU16(); err != nil {
		return err
	}
	if cf.SuperClass, err = r.readU16(); err != nil {
		return err
	}

	ifaceCount, err := r.readU16()
	if err != nil {
		return err
	}
	cf.Interfaces = make([]uint16, 0, ifaceCount)
	for i := uint16(0); i < ifaceCount; i++ {
		idx, err := r.readU16()
		if err != nil {
			return err
		}
		cf.Interfaces = append(cf.Interfaces, idx)
	}

	cf.Fields, err = decodeFields(r, cf.ConstantPool, cf.opts)
	if err != nil {
		return err
	}

	cf.Methods, err = decodeMethods(r, cf.ConstantPool, cf.opts)
	if err != nil {
		return err
	}

	cf.Attributes, err = decodeAttributeList(r, cf.ConstantPool, cf.opts)
	if err != nil {
		return err
	}

	if r.remaining() != 0 {
		cf.logger.Debugf("%d trailing bytes after the last attribute", r.remaining())
	}

	if cf.opts.Fast {
		return nil
	}
	return Verify(cf, cf.opts)
}

// Serialize encodes cf back to its wire representation.
func (cf *ClassFile) Serialize() ([]byte, error) {
	w := newWriter()
	w.writeU32(magicNumber)
	w.writeU16(cf.Minor)
	w.writeU16(cf.Major)

	w.writeU16(cf.ConstantPool.Count())
	encodeConstantPool(w, cf.ConstantPool)

	w.writeU16(uint16(cf.AccessFlags))
	w.writeU16(cf.ThisClass)
	w.writeU16(cf.SuperClass)

	w.writeU16(uint16(len(cf.Interfaces)))
	for _, idx := range cf.Interfaces {
		w.writeU16(idx)
	}

	w.writeU16(uint16(len(cf.Fields)))
	for _, f := range cf.Fields {
		if err := encodeField(w, f); err != nil {
			return nil, err
		}
	}

	w.writeU16(uint16(len(cf.Methods)))
	for _, m := range cf.Methods {
		if err := encodeMethod(w, m); err != nil {
			return nil, err
		}
	}

	w.writeU16(uint16(len(cf.Attributes)))
	for _, a := range cf.Attributes {
		if err := encodeAttribute(w, a, nil); err != nil {
			return nil, err
		}
	}

	return w.bytes(), nil
}
