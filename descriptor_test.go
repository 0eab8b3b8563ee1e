// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "testing"

func TestParseFieldDescriptor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"I", "I"},
		{"Ljava/lang/String;", "Ljava/lang/String;"},
		{"[[Ljava/lang/Object;", "[[Ljava/lang/Object;"},
		{"[I", "[I"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ft, err := ParseFieldDescriptor(tt.in)
			if err != nil {
				t.Fatalf("ParseFieldDescriptor(%q) failed: %v", tt.in, err)
			}
			if got := ft.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFieldDescriptorMalformed(t *testing.T) {
	tests := []string{"", "Q", "Ljava/lang/String", "[", "I extra"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseFieldDescriptor(in); err == nil {
				t.Errorf("ParseFieldDescriptor(%q) succeeded, want error", in)
			}
		})
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	tests := []struct {
		in         string
		wantParams int
		wantVoid   bool
	}{
		{"()V", 0, true},
		{"(I)I", 1, false},
		{"(ILjava/lang/String;[D)Z", 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			md, err := ParseMethodDescriptor(tt.in)
			if err != nil {
				t.Fatalf("ParseMethodDescriptor(%q) failed: %v", tt.in, err)
			}
			if len(md.Parameters) != tt.wantParams {
				t.Errorf("len(Parameters) = %d, want %d", len(md.Parameters), tt.wantParams)
			}
			if (md.Return == nil) != tt.wantVoid {
				t.Errorf("Return == nil is %v, want %v", md.Return == nil, tt.wantVoid)
			}
			if got := md.String(); got != tt.in {
				t.Errorf("String() = %q, want %q", got, tt.in)
			}
		})
	}
}
