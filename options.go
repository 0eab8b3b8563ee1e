// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "github.com/go-jvms/classfile/internal/log"

// Default resource limits applied when the corresponding Options field is
// left at zero. They bound how large a single length-prefixed count on the
// wire (constant pool size, code length, exception table size, ...) is
// allowed to be before a hostile file forces an oversized preallocation.
const (
	DefaultMaxConstantPoolCount = 65535
	DefaultMaxFieldsCount       = 65535
	DefaultMaxMethodsCount      = 65535
	DefaultMaxAttributesCount   = 65535
	DefaultMaxCodeLength        = 65535
	DefaultMaxExceptionTableLen = 65535
	DefaultMaxAttrRecursionDepth = 32
)

// Options configures a NewFromBytes/NewFromFile call.
type Options struct {
	// Fast skips the structural verifier pass (§4.6) after decoding,
	// returning as soon as the raw structure has been read.
	Fast bool

	// MaxConstantPoolCount bounds constant_pool_count. Zero means
	// DefaultMaxConstantPoolCount.
	MaxConstantPoolCount uint32

	// MaxFieldsCount bounds fields_count. Zero means DefaultMaxFieldsCount.
	MaxFieldsCount uint32

	// MaxMethodsCount bounds methods_count. Zero means
	// DefaultMaxMethodsCount.
	MaxMethodsCount uint32

	// MaxAttributesCount bounds any single attributes_count field. Zero
	// means DefaultMaxAttributesCount.
	MaxAttributesCount uint32

	// MaxCodeLength bounds a Code attribute's code_length. Zero means
	// DefaultMaxCodeLength (the JVMS §4.7.3 wire limit is 2^16-1 already;
	// this exists so embedders can clamp tighter).
	MaxCodeLength uint32

	// MaxExceptionTableLength bounds a Code attribute's
	// exception_table_length. Zero means DefaultMaxExceptionTableLen.
	MaxExceptionTableLength uint32

	// MaxAttributeRecursionDepth bounds how deeply attributes may nest
	// (Code carries attributes, which may themselves be structured).
	// Zero means DefaultMaxAttrRecursionDepth.
	MaxAttributeRecursionDepth uint32

	// Logger receives parse diagnostics (unresolved optional cross
	// references, recoverable attribute anomalies). A nil Logger gets
	// log.NewDefaultHelper(): stderr, filtered to warnings and above.
	Logger log.Logger
}

// defaultOptions returns the Options used when the caller passes nil.
func defaultOptions() *Options {
	return &Options{}
}

// helper returns the *log.Helper to use for diagnostics, constructing the
// default one lazily if the caller didn't supply a Logger.
func (o *Options) helper() *log.Helper {
	if o.Logger == nil {
		return log.NewDefaultHelper()
	}
	return log.NewHelper(o.Logger)
}

// resourceLimit returns the configured limit or def if unset.
func (o *Options) resourceLimit(configured uint32, def uint32) uint32 {
	if configured == 0 {
		return def
	}
	return configured
}
