package ledger

import "sort"

// SortEntries stably re-sorts a traversal's output by the canonical
// ordering key: primarily the directive date, secondarily document order
// (preserved by the stable sort). Includes can interleave files whose
// directives are not globally date-ordered, so this runs once after the
// root walk completes, before entries are handed to the booking engine.
func SortEntries(entries []Directive) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].When().Before(entries[j].When())
	})
}
