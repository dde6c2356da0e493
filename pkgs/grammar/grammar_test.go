package grammar

import (
	"testing"

	"github.com/beanwalk/beanwalk/pkgs/syntax"
)

func parse(t *testing.T, input string) *syntax.Tree {
	t.Helper()
	tree, err := New().Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return tree
}

func fieldText(t *testing.T, tree *syntax.Tree, n syntax.Node, field string) string {
	t.Helper()
	child := n.ChildByField(field)
	if child == nil {
		t.Fatalf("missing field %q on %s node", field, n.Kind())
	}
	return syntax.Text(child, tree.Source)
}

func TestParseDirectiveKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  syntax.NodeKind
	}{
		{"option", `option "title" "My Ledger"`, syntax.KindOption},
		{"plugin", `plugin "beancount.plugins.auto"`, syntax.KindPlugin},
		{"include", `include "accounts/*.bean"`, syntax.KindInclude},
		{"pushtag", `pushtag #trip`, syntax.KindPushtag},
		{"poptag", `poptag #trip`, syntax.KindPoptag},
		{"pushmeta", `pushmeta location: "Berlin"`, syntax.KindPushmeta},
		{"popmeta", `popmeta location:`, syntax.KindPopmeta},
		{"open", `2023-01-01 open Assets:Cash USD`, syntax.KindOpen},
		{"close", `2023-01-01 close Assets:Cash`, syntax.KindClose},
		{"commodity", `2023-01-01 commodity USD`, syntax.KindCommodity},
		{"balance", `2023-01-01 balance Assets:Cash 100.00 USD`, syntax.KindBalance},
		{"price", `2023-01-01 price HOOL 720.00 USD`, syntax.KindPrice},
		{"note", `2023-01-01 note Assets:Cash "cash count"`, syntax.KindNote},
		{"document", `2023-01-01 document Assets:Cash "st.pdf"`, syntax.KindDocument},
		{"event", `2023-01-01 event "location" "Berlin"`, syntax.KindEvent},
		{"custom", `2023-01-01 custom "budget" "food" 400.00 USD`, syntax.KindCustom},
		{"transaction star", `2023-01-01 * "Payee" "Narration"`, syntax.KindTransaction},
		{"transaction flagged", `2023-01-01 ! "Narration"`, syntax.KindTransaction},
		{"comment", `; a comment`, syntax.KindComment},
		{"org headline", `* Assets`, syntax.KindComment},
		{"garbage", `this is not a directive`, syntax.KindError},
		{"stray indent", `  Assets:Cash 1.00 USD`, syntax.KindError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, tt.input)
			children := tree.Root.Children()
			if len(children) != 1 {
				t.Fatalf("got %d top-level nodes, want 1", len(children))
			}
			if children[0].Kind() != tt.kind {
				t.Errorf("kind = %s, want %s", children[0].Kind(), tt.kind)
			}
		})
	}
}

func TestParseTransactionStructure(t *testing.T) {
	input := "2023-05-17 * \"Cafe\" \"Latte\" #trip ^receipt-1\n" +
		"  note: \"with friends\"\n" +
		"  Expenses:Food 4.50 USD\n" +
		"  Assets:Cash\n"
	tree := parse(t, input)

	children := tree.Root.Children()
	if len(children) != 1 {
		t.Fatalf("got %d top-level nodes, want 1", len(children))
	}
	txn := children[0]
	if txn.Kind() != syntax.KindTransaction {
		t.Fatalf("kind = %s, want transaction", txn.Kind())
	}
	if got := fieldText(t, tree, txn, "date"); got != "2023-05-17" {
		t.Errorf("date = %q", got)
	}
	if got := fieldText(t, tree, txn, "payee"); got != `"Cafe"` {
		t.Errorf("payee = %q", got)
	}
	if got := fieldText(t, tree, txn, "narration"); got != `"Latte"` {
		t.Errorf("narration = %q", got)
	}

	var kinds []syntax.NodeKind
	for _, c := range txn.Children() {
		kinds = append(kinds, c.Kind())
	}
	want := []syntax.NodeKind{syntax.KindTag, syntax.KindLink, syntax.KindKeyValue, syntax.KindPosting, syntax.KindPosting}
	if len(kinds) != len(want) {
		t.Fatalf("children kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("children kinds = %v, want %v", kinds, want)
		}
	}

	posting := txn.Children()[3]
	if got := fieldText(t, tree, posting, "account"); got != "Expenses:Food" {
		t.Errorf("posting account = %q", got)
	}
	amount := posting.ChildByField("amount")
	if amount == nil {
		t.Fatal("posting has no amount")
	}
	if got := fieldText(t, tree, amount, "number"); got != "4.50" {
		t.Errorf("amount number = %q", got)
	}
	if got := fieldText(t, tree, amount, "currency"); got != "USD" {
		t.Errorf("amount currency = %q", got)
	}

	elided := txn.Children()[4]
	if elided.ChildByField("amount") != nil {
		t.Error("elided posting should have no amount field")
	}
}

func TestParsePostingWithPrice(t *testing.T) {
	input := "2023-01-01 * \"fx\"\n  Assets:EUR 10.00 EUR @ 1.10 USD\n"
	tree := parse(t, input)
	txn := tree.Root.Children()[0]
	posting := txn.Children()[0]

	price := posting.ChildByField("price")
	if price == nil {
		t.Fatal("posting has no price annotation")
	}
	if got := fieldText(t, tree, price, "number"); got != "1.10" {
		t.Errorf("price number = %q", got)
	}
	if got := fieldText(t, tree, price, "currency"); got != "USD" {
		t.Errorf("price currency = %q", got)
	}
}

func TestLineNumbersAndOffsets(t *testing.T) {
	input := "; header\n\n2023-01-01 open Assets:Cash\n"
	tree := parse(t, input)
	children := tree.Root.Children()
	if len(children) != 2 {
		t.Fatalf("got %d nodes, want 2", len(children))
	}
	if got := children[0].StartLine(); got != 1 {
		t.Errorf("comment line = %d, want 1", got)
	}
	open := children[1]
	if got := open.StartLine(); got != 3 {
		t.Errorf("open line = %d, want 3", got)
	}
	if got := syntax.Text(open, tree.Source); got != "2023-01-01 open Assets:Cash" {
		t.Errorf("open text = %q", got)
	}
}

func TestInlineCommentStripped(t *testing.T) {
	tree := parse(t, `2023-01-01 close Assets:Cash ; closed out`)
	node := tree.Root.Children()[0]
	if node.Kind() != syntax.KindClose {
		t.Fatalf("kind = %s, want close", node.Kind())
	}
	if got := fieldText(t, tree, node, "account"); got != "Assets:Cash" {
		t.Errorf("account = %q", got)
	}
}

func TestParseBalanceWithTolerance(t *testing.T) {
	tree := parse(t, `2023-01-01 balance Assets:Cash 562.00 ~ 0.002 USD`)
	node := tree.Root.Children()[0]
	if node.Kind() != syntax.KindBalance {
		t.Fatalf("kind = %s, want balance", node.Kind())
	}
	amount := node.ChildByField("amount")
	if amount == nil {
		t.Fatal("balance has no amount")
	}
	if got := fieldText(t, tree, amount, "number"); got != "562.00" {
		t.Errorf("amount number = %q", got)
	}
	if got := fieldText(t, tree, amount, "currency"); got != "USD" {
		t.Errorf("amount currency = %q", got)
	}
	if got := fieldText(t, tree, node, "tolerance"); got != "0.002" {
		t.Errorf("tolerance = %q", got)
	}
}

func TestOpenCurrencyListAndBooking(t *testing.T) {
	tree := parse(t, `2023-01-01 open Assets:Broker USD,EUR "STRICT"`)
	open := tree.Root.Children()[0]

	var currencies []string
	for _, c := range open.Children() {
		if c.Kind() == syntax.KindCurrency {
			currencies = append(currencies, syntax.Text(c, tree.Source))
		}
	}
	if len(currencies) != 2 || currencies[0] != "USD" || currencies[1] != "EUR" {
		t.Errorf("currencies = %v, want [USD EUR]", currencies)
	}
	if got := fieldText(t, tree, open, "booking"); got != `"STRICT"` {
		t.Errorf("booking = %q", got)
	}
}
