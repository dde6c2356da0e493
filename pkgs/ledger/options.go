package ledger

import "sort"

// Options accumulates option and plugin directives seen during a
// traversal plus the resolved include list. It mirrors the options map
// the reference engine produces so the two can be handed to the same
// consumers.
type Options struct {
	// Values holds option name -> value; a repeated option keeps the
	// last occurrence.
	Values map[string]string
	// Plugins lists plugin module names in document order.
	Plugins []string
	// Include is the sorted set of canonical file paths visited by the
	// traversal, the root file included.
	Include []string
}

// NewOptions returns an empty, ready-to-use options accumulator.
func NewOptions() Options {
	return Options{Values: make(map[string]string)}
}

// SetInclude stores the traversal's seen-file set as a sorted slice.
func (o *Options) SetInclude(seen map[string]bool) {
	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	o.Include = files
}

// LoadResult bundles what a full load of a root file produces, whichever
// engine produced it.
type LoadResult struct {
	Entries        []Directive
	Diagnostics    []Diagnostic
	Options        Options
	DisplayContext DisplayContext
}
