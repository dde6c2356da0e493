// Package ledger defines the directive data model produced by the parser:
// transactions, account lifecycle directives, assertions and the positioned
// diagnostics that accompany them.
package ledger

import (
	"fmt"
	"time"
)

// Position locates a directive or diagnostic in a source file.
// Line is 1-based; 0 means "whole file" (used for unbalanced-state
// diagnostics that have no anchoring node).
type Position struct {
	Filename string
	Line     int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// Diagnostic is a positioned, non-fatal problem found while parsing or
// validating a document set. Diagnostics are purely additive: they never
// abort a traversal.
type Diagnostic struct {
	Pos     Position
	Message string
	Related Directive // optional entry this diagnostic refers to
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}

// Directive is one parsed ledger entry. The set of implementations is
// closed: Transaction, Open, Close, Commodity, Balance, Price, Note,
// Document, Event and Custom.
type Directive interface {
	Pos() Position
	When() time.Time
	Kind() string
}

// Base carries the fields common to every directive. Metadata is attached
// at construction time from the parser's pending metadata stack.
type Base struct {
	Position Position
	Date     time.Time
	Meta     map[string]string
}

func (b Base) Pos() Position   { return b.Position }
func (b Base) When() time.Time { return b.Date }

// Posting is one leg of a transaction. Units may be elided (missing
// number or currency) and completed later by the booking engine.
type Posting struct {
	Account string
	Flag    string
	Units   Amount
	Price   *Amount // optional @ price annotation
	Meta    map[string]string
}

// Transaction is a dated journal entry with zero or more postings.
type Transaction struct {
	Base
	Flag      string
	Payee     string
	Narration string
	Tags      []string
	Links     []string
	Postings  []Posting
}

func (Transaction) Kind() string { return "transaction" }

// Open declares an account, optionally constrained to a currency list.
type Open struct {
	Base
	Account    string
	Currencies []string
	Booking    string
}

func (Open) Kind() string { return "open" }

// Close marks an account as closed from its date onward.
type Close struct {
	Base
	Account string
}

func (Close) Kind() string { return "close" }

// Commodity declares a currency/commodity.
type Commodity struct {
	Base
	Currency string
}

func (Commodity) Kind() string { return "commodity" }

// Balance asserts the balance of an account at the start of its date.
type Balance struct {
	Base
	Account   string
	Amount    Amount
	Tolerance string // raw tolerance text, empty when absent
}

func (Balance) Kind() string { return "balance" }

// Price establishes an exchange rate between two currencies.
type Price struct {
	Base
	Currency string
	Amount   Amount
}

func (Price) Kind() string { return "price" }

// Note attaches a dated comment to an account.
type Note struct {
	Base
	Account string
	Comment string
}

func (Note) Kind() string { return "note" }

// Document associates an external file with an account.
type Document struct {
	Base
	Account string
	Path    string
}

func (Document) Kind() string { return "document" }

// Event records a dated value for a named event type.
type Event struct {
	Base
	Type        string
	Description string
}

func (Event) Kind() string { return "event" }

// Custom is an extension directive with free-form string values.
type Custom struct {
	Base
	Name   string
	Values []string
}

func (Custom) Kind() string { return "custom" }
