package resolve

import (
	"github.com/majorcontext/idekotlin/internal/github"
	"github.com/majorcontext/idekotlin/internal/kotlinver"
)

// Reconcile maps an ij-flavored Kotlin version (e.g. "2.2.20-ij252-24") to the
// dev build (e.g. "2.2.20-dev-200") that most plausibly matches it.
//
// tagHistory is the tracked file's history at the IDE tag, newest first.
// master is called at most once, and only when tagHistory has no dev build
// with the same X.Y.Z base. Versions without an -ij marker are returned as
// is, and so is any version nothing better can be found for.
func Reconcile(version string, tagHistory []github.Commit, master func() []github.Commit) string {
	if !kotlinver.IsIJ(version) {
		// Plain releases and dev builds are already addressable.
		return version
	}
	ijBase, hasBase := kotlinver.BaseString(version)

	var lastDev, firstIJDate string
	for _, c := range tagHistory {
		v, ok := kotlinver.ExtractEmbedded(c.Subject)
		if !ok {
			continue
		}
		switch {
		case kotlinver.IsIJ(v):
			// Last write wins over a newest-first history, so this ends up as
			// the OLDEST -ij date in the window despite its name. Verify any
			// change here against real history before "fixing" it.
			firstIJDate = c.ShortDate()
		case kotlinver.IsDev(v) && lastDev == "":
			lastDev = v
		}
	}

	if lastDev != "" {
		devBase, _ := kotlinver.BaseString(lastDev)
		if !hasBase || devBase == ijBase {
			return lastDev
		}
	}

	if !hasBase || master == nil {
		return version
	}

	var fallback string
	for _, c := range master() {
		v, ok := kotlinver.ExtractEmbedded(c.Subject)
		if !ok || !kotlinver.IsDevOf(v, ijBase) {
			continue
		}
		if firstIJDate != "" && c.ShortDate() <= firstIJDate {
			return v
		}
		if fallback == "" {
			fallback = v
		}
	}
	if fallback != "" {
		return fallback
	}
	return version
}
