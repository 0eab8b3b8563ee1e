// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

// Fuzz is the go-fuzz entry point: it must never panic on any input,
// including truncated, oversized, or adversarially crafted byte streams.
func Fuzz(data []byte) int {
	cf, err := NewFromBytes(data, &Options{})
	if err != nil {
		return 0
	}
	if _, err := cf.Serialize(); err != nil {
		return 0
	}
	return 1
}
