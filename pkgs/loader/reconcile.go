package loader

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/beanwalk/beanwalk/pkgs/ledger"
)

// cmpOptions defines structural equality for directives. Decimals
// compare by value so 10.50 and 10.5 are not a mismatch.
var cmpOptions = cmp.Options{
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
}

// Reconcile pairwise-compares the reference engine's entries with the
// tree walker's and describes every divergence as a warning diagnostic.
// A mismatch never fails the operation: the reference engine remains
// authoritative and these diagnostics exist to regression-detect drift
// between the two pipelines.
func Reconcile(reference, walked []ledger.Directive) []ledger.Diagnostic {
	var diags []ledger.Diagnostic

	n := len(reference)
	if len(walked) < n {
		n = len(walked)
	}
	for i := 0; i < n; i++ {
		if cmp.Equal(reference[i], walked[i], cmpOptions) {
			continue
		}
		diags = append(diags, ledger.Diagnostic{
			Pos: walked[i].Pos(),
			Message: fmt.Sprintf("entry mismatch between reference and tree parsers:\n%s",
				cmp.Diff(reference[i], walked[i], cmpOptions)),
			Related: walked[i],
		})
	}
	if len(reference) != len(walked) {
		diags = append(diags, ledger.Diagnostic{
			Pos: ledger.Position{},
			Message: fmt.Sprintf("entry count mismatch: reference parser produced %d, tree parser produced %d",
				len(reference), len(walked)),
		})
	}
	return diags
}
