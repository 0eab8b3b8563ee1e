// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import (
	"errors"
	"strings"
)

// BaseType is one of the eight primitive field descriptor characters plus
// the two compound kinds, JVMS §4.3.2 Table 4.3-A.
type BaseType byte

const (
	BaseByte    BaseType = 'B'
	BaseChar    BaseType = 'C'
	BaseDouble  BaseType = 'D'
	BaseFloat   BaseType = 'F'
	BaseInt     BaseType = 'I'
	BaseLong    BaseType = 'J'
	BaseShort   BaseType = 'S'
	BaseBoolean BaseType = 'Z'
	BaseObject  BaseType = 'L'
	BaseArray   BaseType = '['
)

// FieldType is a parsed field descriptor (JVMS §4.3.2): a primitive, an
// object type named by its internal binary name, or an array of some
// component FieldType.
type FieldType struct {
	Base BaseType

	// ClassName holds the internal binary class name when Base ==
	// BaseObject (e.g. "java/lang/String", without the leading 'L' or
	// trailing ';').
	ClassName string

	// Component holds the element type when Base == BaseArray.
	Component *FieldType
}

// String renders t back to its wire descriptor form.
func (t FieldType) String() string {
	switch t.Base {
	case BaseObject:
		return "L" + t.ClassName + ";"
	case BaseArray:
		return "[" + t.Component.String()
	default:
		return string(t.Base)
	}
}

// MethodDescriptor is a parsed method descriptor (JVMS §4.3.3): an ordered
// parameter type list plus a return type, where a void return is
// represented by Return == nil.
type MethodDescriptor struct {
	Parameters []FieldType
	Return     *FieldType
}

// ErrMalformedDescriptor is returned when a descriptor string does not
// conform to JVMS §4.3.2/§4.3.3 grammar.
var ErrMalformedDescriptor = errors.New("classfile: malformed type descriptor")

// ParseFieldDescriptor parses a single field descriptor, e.g. "I",
// "[[Ljava/lang/String;", or "Ljava/lang/Object;".
func ParseFieldDescriptor(s string) (FieldType, error) {
	t, rest, err := parseFieldType(s)
	if err != nil {
		return FieldType{}, err
	}
	if rest != "" {
		return FieldType{}, ErrMalformedDescriptor
	}
	return t, nil
}

// parseFieldType parses one FieldType from the front of s and returns the
// unconsumed remainder.
func parseFieldType(s string) (FieldType, string, error) {
	if s == "" {
		return FieldType{}, "", ErrMalformedDescriptor
	}
	switch BaseType(s[0]) {
	case BaseByte, BaseChar, BaseDouble, BaseFloat, BaseInt, BaseLong, BaseShort, BaseBoolean:
		return FieldType{Base: BaseType(s[0])}, s[1:], nil
	case BaseObject:
		end := strings.IndexByte(s, ';')
		if end < 0 {
			return FieldType{}, "", ErrMalformedDescriptor
		}
		return FieldType{Base: BaseObject, ClassName: s[1:end]}, s[end+1:], nil
	case BaseArray:
		comp, rest, err := parseFieldType(s[1:])
		if err != nil {
			return FieldType{}, "", err
		}
		return FieldType{Base: BaseArray, Component: &comp}, rest, nil
	default:
		return FieldType{}, "", ErrMalformedDescriptor
	}
}

// ParseMethodDescriptor parses a method descriptor, e.g.
// "(ILjava/lang/String;)V".
func ParseMethodDescriptor(s string) (MethodDescriptor, error) {
	if len(s) == 0 || s[0] != '(' {
		return MethodDescriptor{}, ErrMalformedDescriptor
	}
	s = s[1:]
	var params []FieldType
	for len(s) > 0 && s[0] != ')' {
		t, rest, err := parseFieldType(s)
		if err != nil {
			return MethodDescriptor{}, err
		}
		params = append(params, t)
		s = rest
	}
	if len(s) == 0 {
		return MethodDescriptor{}, ErrMalformedDescriptor
	}
	s = s[1:] // consume ')'

	if s == "V" {
		return MethodDescriptor{Parameters: params}, nil
	}
	ret, rest, err := parseFieldType(s)
	if err != nil {
		return MethodDescriptor{}, err
	}
	if rest != "" {
		return MethodDescriptor{}, ErrMalformedDescriptor
	}
	return MethodDescriptor{Parameters: params, Return: &ret}, nil
}

// String renders d back to its wire descriptor form.
func (d MethodDescriptor) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, p := range d.Parameters {
		sb.WriteString(p.String())
	}
	sb.WriteByte(')')
	if d.Return == nil {
		sb.WriteByte('V')
	} else {
		sb.WriteString(d.Return.String())
	}
	return sb.String()
}
