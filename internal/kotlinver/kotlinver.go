// Package kotlinver parses the loosely structured Kotlin version strings found in
// IntelliJ library descriptors and commit messages.
//
// Three shapes matter:
//   - releases: "2.3.0"
//   - dev builds: "2.3.20-dev-3964" (publicly addressable)
//   - ij-flavored builds: "2.2.20-ij252-24" (tied to an IDE branch snapshot)
package kotlinver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	baseRegex     = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)`)
	majorMinorRe  = regexp.MustCompile(`^(\d+\.\d+)`)
	embeddedRegex = regexp.MustCompile(`(\d+\.\d+\.\d+-[a-zA-Z0-9._-]+)`)
)

// Base is the numeric major.minor.patch prefix of a Kotlin version.
// The zero value means "unknown" and sorts below every real version.
type Base struct {
	Major, Minor, Patch uint64
}

// ParseBase extracts the leading X.Y.Z of s.
// Strings without one yield the zero Base rather than an error, so that
// unparseable versions compare as very old.
//
//	ParseBase("2.2.20-ij252-24") // {2 2 20}
//	ParseBase("garbage")         // {0 0 0}
func ParseBase(s string) Base {
	m := baseRegex.FindStringSubmatch(s)
	if m == nil {
		return Base{}
	}
	var b Base
	// Overflowing components fall back to the zero Base as well.
	var err error
	if b.Major, err = strconv.ParseUint(m[1], 10, 64); err != nil {
		return Base{}
	}
	if b.Minor, err = strconv.ParseUint(m[2], 10, 64); err != nil {
		return Base{}
	}
	if b.Patch, err = strconv.ParseUint(m[3], 10, 64); err != nil {
		return Base{}
	}
	return b
}

// BaseString returns the raw "X.Y.Z" prefix of s.
func BaseString(s string) (string, bool) {
	m := baseRegex.FindString(s)
	return m, m != ""
}

// IsZero reports whether b is the "unknown" base.
func (b Base) IsZero() bool {
	return b == Base{}
}

func (b Base) String() string {
	return fmt.Sprintf("%d.%d.%d", b.Major, b.Minor, b.Patch)
}

func (b Base) semver() *semver.Version {
	return semver.New(b.Major, b.Minor, b.Patch, "", "")
}

// Compare returns -1, 0 or +1 depending on whether b sorts before, equal to
// or after o.
func (b Base) Compare(o Base) int {
	return b.semver().Compare(o.semver())
}

// Less reports whether b is strictly older than o.
func (b Base) Less(o Base) bool {
	return b.Compare(o) < 0
}

// ExtractEmbedded returns the first "X.Y.Z-suffix" token found in message.
// Commit subjects such as "Update Kotlin to 2.2.20-ij252-24" carry the
// version this way.
func ExtractEmbedded(message string) (string, bool) {
	m := embeddedRegex.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsIJ reports whether v carries the "-ij" branch-snapshot marker.
func IsIJ(v string) bool {
	return strings.Contains(v, "-ij")
}

// IsDev reports whether v carries the "-dev-" marker.
func IsDev(v string) bool {
	return strings.Contains(v, "-dev-")
}

// MajorMinor returns the leading "X.Y" of v.
func MajorMinor(v string) (string, bool) {
	m := majorMinorRe.FindString(v)
	return m, m != ""
}

// IsDevOf reports whether v is a dev build of the given X.Y.Z base,
// i.e. matches ^<base>-dev-\d.
func IsDevOf(v, base string) bool {
	rest, ok := strings.CutPrefix(v, base+"-dev-")
	return ok && rest != "" && rest[0] >= '0' && rest[0] <= '9'
}
