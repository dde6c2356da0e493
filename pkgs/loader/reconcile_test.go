package loader

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanwalk/beanwalk/pkgs/ledger"
)

func note(day int, comment string) ledger.Directive {
	return ledger.Note{
		Base: ledger.Base{
			Position: ledger.Position{Filename: "j.bean", Line: day},
			Date:     time.Date(2023, 1, day, 0, 0, 0, 0, time.UTC),
		},
		Account: "Assets:Cash",
		Comment: comment,
	}
}

func TestReconcileEqualSequences(t *testing.T) {
	entries := []ledger.Directive{note(1, "a"), note(2, "b")}
	assert.Empty(t, Reconcile(entries, entries))
}

func TestReconcileReportsMismatch(t *testing.T) {
	reference := []ledger.Directive{note(1, "a"), note(2, "b")}
	walked := []ledger.Directive{note(1, "a"), note(2, "B")}

	diags := Reconcile(reference, walked)

	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "entry mismatch")
	assert.Equal(t, walked[1].Pos(), diags[0].Pos)
	assert.Equal(t, walked[1], diags[0].Related)
}

func TestReconcileDecimalsCompareByValue(t *testing.T) {
	amount := func(s string) ledger.Amount {
		d, err := decimal.NewFromString(s)
		require.NoError(t, err)
		return ledger.Amount{Number: &d, Currency: "USD"}
	}
	left := []ledger.Directive{ledger.Balance{Account: "Assets:Cash", Amount: amount("10.50")}}
	right := []ledger.Directive{ledger.Balance{Account: "Assets:Cash", Amount: amount("10.5")}}

	assert.Empty(t, Reconcile(left, right), "10.50 and 10.5 are the same value")
}

func TestReconcileLengthMismatch(t *testing.T) {
	reference := []ledger.Directive{note(1, "a"), note(2, "b")}
	walked := []ledger.Directive{note(1, "a")}

	diags := Reconcile(reference, walked)

	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "entry count mismatch")
}
