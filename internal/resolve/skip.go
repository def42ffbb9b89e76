package resolve

// SkipPolicy decides which platform majors are not worth resolving.
type SkipPolicy interface {
	// Skip reports whether builds of major should be skipped.
	Skip(major string) bool

	// MarkTooOld records that a build of major resolved below the minimum
	// Kotlin version, or could not be resolved at all.
	MarkTooOld(major string)
}

// MajorSkip skips every remaining build of a platform major once one build
// of it has been found too old.
//
// This is a heuristic. It assumes the bundled Kotlin version only grows with
// build recency inside a major line, which nothing guarantees. Use NoSkip to
// resolve every build when that assumption is in doubt.
type MajorSkip struct {
	tooOld map[string]bool
}

// NewMajorSkip returns a MajorSkip with nothing recorded.
func NewMajorSkip() *MajorSkip {
	return &MajorSkip{tooOld: make(map[string]bool)}
}

// Skip implements SkipPolicy.
func (m *MajorSkip) Skip(major string) bool {
	return m.tooOld[major]
}

// MarkTooOld implements SkipPolicy.
func (m *MajorSkip) MarkTooOld(major string) {
	m.tooOld[major] = true
}

// Majors returns the number of majors recorded as too old.
func (m *MajorSkip) Majors() int {
	return len(m.tooOld)
}

// NoSkip resolves every build.
type NoSkip struct{}

// Skip implements SkipPolicy.
func (NoSkip) Skip(string) bool { return false }

// MarkTooOld implements SkipPolicy.
func (NoSkip) MarkTooOld(string) {}
