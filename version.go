// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package classfile

import "strconv"

// Version represents a class file's (major, minor) version pair (JVMS
// §4.1). Class files from different Java releases are totally ordered by
// comparing major version first, then minor.
type Version struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
}

// Named presets for released major.minor pairs, JDK 1.0.2 through JDK 25.
var (
	Java1_0_2 = Version{Major: 45, Minor: 3}
	Java1_1   = Version{Major: 45, Minor: 3}
	Java1_2   = Version{Major: 46, Minor: 0}
	Java1_3   = Version{Major: 47, Minor: 0}
	Java1_4   = Version{Major: 48, Minor: 0}
	Java5     = Version{Major: 49, Minor: 0}
	Java6     = Version{Major: 50, Minor: 0}
	Java7     = Version{Major: 51, Minor: 0}
	Java8     = Version{Major: 52, Minor: 0}
	Java9     = Version{Major: 53, Minor: 0}
	Java10    = Version{Major: 54, Minor: 0}
	Java11    = Version{Major: 55, Minor: 0}
	Java12    = Version{Major: 56, Minor: 0}
	Java13    = Version{Major: 57, Minor: 0}
	Java14    = Version{Major: 58, Minor: 0}
	Java15    = Version{Major: 59, Minor: 0}
	Java16    = Version{Major: 60, Minor: 0}
	Java17    = Version{Major: 61, Minor: 0}
	Java18    = Version{Major: 62, Minor: 0}
	Java19    = Version{Major: 63, Minor: 0}
	Java20    = Version{Major: 64, Minor: 0}
	Java21    = Version{Major: 65, Minor: 0}
	Java22    = Version{Major: 66, Minor: 0}
	Java23    = Version{Major: 67, Minor: 0}
	Java24    = Version{Major: 68, Minor: 0}
	Java25    = Version{Major: 69, Minor: 0}
)

// MinSupportedMajor is the lowest legal major version (JDK 1.0.2); class
// files below this are rejected by the codec's format checks.
const MinSupportedMajor = 45

// Less reports whether v orders strictly before other.
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	return v.Minor < other.Minor
}

// LessOrEqual reports whether v orders at or before other.
func (v Version) LessOrEqual(other Version) bool {
	return !other.Less(v)
}

// Equal reports whether v and other denote the same (major, minor) pair.
func (v Version) Equal(other Version) bool {
	return v.Major == other.Major && v.Minor == other.Minor
}

// String renders the version the way javap does, e.g. "61.0".
func (v Version) String() string {
	return strconv.Itoa(int(v.Major)) + "." + strconv.Itoa(int(v.Minor))
}
