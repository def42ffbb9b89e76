// Package alias turns resolved builds into version aliases: a label an IDE
// reports for its bundled Kotlin compiler, mapped to the public dev build it
// corresponds to.
package alias

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/majorcontext/idekotlin/internal/kotlinver"
	"github.com/majorcontext/idekotlin/internal/releases"
	"github.com/majorcontext/idekotlin/internal/resolve"
)

// PlaceholderSuffix completes an Android Studio label. It sorts above any
// real release of the same major.minor line.
const PlaceholderSuffix = ".255-dev-255"

// Entry maps one IDE release's label to its target.
type Entry struct {
	IDE    string
	Label  string
	Target string
}

// Mapping is every Entry sharing one label.
type Mapping struct {
	Label  string   `json:"label"`
	Target string   `json:"target"`
	IDEs   []string `json:"ides"`
}

// Entries builds one Entry per release of every resolved group, in group
// order. Android Studio releases get a placeholder label derived from the
// Kotlin major.minor; IntelliJ releases are included only while their Kotlin
// version is still ij-flavored.
func Entries(groups []releases.Group, resolved map[string]resolve.Build) []Entry {
	var entries []Entry
	for _, g := range groups {
		b, ok := resolved[g.Build]
		if !ok {
			continue
		}
		for _, rel := range g.Releases {
			if rel.AndroidStudio {
				mm, ok := kotlinver.MajorMinor(b.KotlinVersion)
				if !ok {
					continue
				}
				entries = append(entries, Entry{IDE: rel.Name, Label: mm + PlaceholderSuffix, Target: b.DevVersion})
				continue
			}
			if kotlinver.IsIJ(b.KotlinVersion) {
				entries = append(entries, Entry{IDE: rel.Name, Label: b.KotlinVersion, Target: b.DevVersion})
			}
		}
	}
	return entries
}

// Collapse drops identity entries and merges the rest by label. The last
// target seen for a label wins; IDE names are deduplicated in first-seen
// order. The result is sorted by label.
func Collapse(entries []Entry) []Mapping {
	byLabel := make(map[string]*Mapping)
	for _, e := range entries {
		if e.Label == e.Target {
			continue
		}
		m, ok := byLabel[e.Label]
		if !ok {
			m = &Mapping{Label: e.Label}
			byLabel[e.Label] = m
		}
		m.Target = e.Target
		if !slices.Contains(m.IDEs, e.IDE) {
			m.IDEs = append(m.IDEs, e.IDE)
		}
	}

	out := make([]Mapping, 0, len(byLabel))
	for _, m := range byLabel {
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b Mapping) int {
		return strings.Compare(a.Label, b.Label)
	})
	return out
}

// Representative names the first IDE of m, with a count of the others.
func (m Mapping) Representative() string {
	if len(m.IDEs) == 0 {
		return "?"
	}
	if len(m.IDEs) == 1 {
		return m.IDEs[0]
	}
	return fmt.Sprintf("%s (+%d more)", m.IDEs[0], len(m.IDEs)-1)
}

// WriteTable writes one aligned row per mapping.
func WriteTable(w io.Writer, mappings []Mapping) {
	fmt.Fprintf(w, "%-45s %-25s → Alias Target\n", "IDE (representative)", "Fake/IDE Version")
	fmt.Fprintln(w, strings.Repeat("─", 95))
	for _, m := range mappings {
		fmt.Fprintf(w, "%-45s %-25s → %s\n", m.Representative(), m.Label, m.Target)
	}
}

// WriteMapLiteral writes a Kotlin mapOf(...) literal ready to paste into a
// build configuration, each entry preceded by the IDEs it covers.
func WriteMapLiteral(w io.Writer, mappings []Mapping) {
	fmt.Fprintln(w, "Suggested buildConfig:")
	fmt.Fprintln(w, "  mapOf(")
	for _, m := range mappings {
		for _, ide := range m.IDEs {
			fmt.Fprintf(w, "    // %s\n", ide)
		}
		fmt.Fprintf(w, "    %q to %q,\n", m.Label, m.Target)
	}
	fmt.Fprintln(w, "  )")
}

// Report is the machine-readable result of a run.
type Report struct {
	Builds  []resolve.Build `json:"builds"`
	Aliases []Mapping       `json:"aliases"`
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	if r.Builds == nil {
		r.Builds = []resolve.Build{}
	}
	if r.Aliases == nil {
		r.Aliases = []Mapping{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
