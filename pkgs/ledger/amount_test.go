package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return &d
}

func TestDisplayContextWidensMonotonically(t *testing.T) {
	dc := make(DisplayContext)

	dc.Update(dec(t, "10.5"), "USD")
	if got := dc.Precision("USD"); got != 1 {
		t.Fatalf("precision after 10.5 = %d, want 1", got)
	}

	dc.Update(dec(t, "10.25"), "USD")
	if got := dc.Precision("USD"); got != 2 {
		t.Fatalf("precision after 10.25 = %d, want 2", got)
	}

	// A later narrower amount must never shrink the precision.
	dc.Update(dec(t, "7"), "USD")
	if got := dc.Precision("USD"); got != 2 {
		t.Fatalf("precision regressed to %d, want 2", got)
	}
}

func TestDisplayContextIgnoresMissing(t *testing.T) {
	dc := make(DisplayContext)

	dc.Update(nil, "USD")
	dc.Update(dec(t, "1.23"), "")

	if len(dc) != 0 {
		t.Fatalf("display context updated from missing values: %v", dc)
	}
}

func TestDisplayContextPerCurrency(t *testing.T) {
	dc := make(DisplayContext)
	dc.Update(dec(t, "1.2345"), "BTC")
	dc.Update(dec(t, "100"), "JPY")

	if got := dc.Precision("BTC"); got != 4 {
		t.Fatalf("BTC precision = %d, want 4", got)
	}
	if got := dc.Precision("JPY"); got != 0 {
		t.Fatalf("JPY precision = %d, want 0", got)
	}
	if got := dc.Precision("EUR"); got != 0 {
		t.Fatalf("unseen currency precision = %d, want 0", got)
	}
}

func TestAmountMissing(t *testing.T) {
	tests := []struct {
		name string
		a    Amount
		want bool
	}{
		{"fully elided", Amount{}, true},
		{"number only", Amount{Number: dec(t, "1")}, true},
		{"currency only", Amount{Currency: "USD"}, true},
		{"complete", NewAmount(decimal.New(1, 0), "USD"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Missing(); got != tt.want {
				t.Errorf("Missing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortEntriesStableByDate(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC) }
	entries := []Directive{
		Note{Base: Base{Date: day(2)}, Account: "A", Comment: "second"},
		Note{Base: Base{Date: day(1)}, Account: "A", Comment: "first"},
		Note{Base: Base{Date: day(2)}, Account: "A", Comment: "third"},
	}

	SortEntries(entries)

	got := []string{
		entries[0].(Note).Comment,
		entries[1].(Note).Comment,
		entries[2].(Note).Comment,
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted order = %v, want %v", got, want)
		}
	}
}
