// Package doctor prints diagnostics about the idekotlin environment: the
// effective configuration, the detected Kotlin pin and GitHub access.
package doctor

import (
	"fmt"
	"io"

	"github.com/majorcontext/idekotlin/internal/ui"
)

// Section is one block of diagnostic output.
type Section interface {
	// Name is the section title.
	Name() string

	// Print writes the section body. An error is reported under the title
	// and does not stop later sections.
	Print(w io.Writer) error
}

// Registry holds sections in print order.
type Registry struct {
	sections []Section
}

// NewRegistry returns a registry holding sections.
func NewRegistry(sections ...Section) *Registry {
	return &Registry{sections: sections}
}

// Register appends s.
func (r *Registry) Register(s Section) {
	r.sections = append(r.sections, s)
}

// Sections returns the registered sections.
func (r *Registry) Sections() []Section {
	return r.sections
}

// Run prints every section to w and returns how many failed.
func (r *Registry) Run(w io.Writer) int {
	failed := 0
	for _, s := range r.sections {
		ui.Section(w, s.Name())
		if err := s.Print(w); err != nil {
			fmt.Fprintf(w, "%s %v\n", ui.FailTag(), err)
			failed++
		}
		fmt.Fprintln(w)
	}
	return failed
}
