package parser

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/beanwalk/beanwalk/pkgs/ledger"
	"github.com/beanwalk/beanwalk/pkgs/syntax"
)

// State is the mutable context of one traversal: the current file's
// bytes and name, the scoped tag and metadata stacks, the accumulated
// display context and the collected diagnostics. One State lives per
// root-file traversal and is discarded when the entry list is returned;
// concurrent traversals never share a State.
type State struct {
	contents []byte
	filename string // "" when the root was parsed from a string

	tags []string
	meta map[string][]string

	dctx  ledger.DisplayContext
	diags []ledger.Diagnostic
	opts  ledger.Options
}

func newState(contents []byte, filename string) *State {
	return &State{
		contents: contents,
		filename: filename,
		meta:     make(map[string][]string),
		dctx:     make(ledger.DisplayContext),
		opts:     ledger.NewOptions(),
	}
}

// pos positions a diagnostic or directive at the node's first line in
// the current file, or at line 0 for whole-file conditions.
func (s *State) pos(n syntax.Node) ledger.Position {
	if n == nil {
		return ledger.Position{Filename: s.filename, Line: 0}
	}
	return ledger.Position{Filename: s.filename, Line: n.StartLine()}
}

// RecordError appends a diagnostic. It never aborts the traversal.
func (s *State) RecordError(n syntax.Node, message string) {
	s.diags = append(s.diags, ledger.Diagnostic{Pos: s.pos(n), Message: message})
}

// UpdateDisplayContext widens the tracked precision for a currency.
// Either argument may be the elided sentinel, in which case nothing
// happens.
func (s *State) UpdateDisplayContext(number *decimal.Decimal, currency string) {
	s.dctx.Update(number, currency)
}

// EnterFile swaps the current source and filename for the duration of fn
// and restores the previous values on every exit path, including when fn
// returns an error or panics.
func (s *State) EnterFile(contents []byte, filename string, fn func() error) error {
	prevContents, prevName := s.contents, s.filename
	s.contents, s.filename = contents, filename
	defer func() {
		s.contents, s.filename = prevContents, prevName
	}()
	return fn()
}

// Finalize converts any tags or metadata still open at the end of the
// whole traversal into diagnostics, one per leftover item, then clears
// both stacks. It runs exactly once, after all includes are done.
func (s *State) Finalize() {
	for _, tag := range s.tags {
		s.RecordError(nil, fmt.Sprintf("unbalanced pushed tag: '#%s'", tag))
	}
	s.tags = nil

	keys := make([]string, 0, len(s.meta))
	for key := range s.meta {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		s.RecordError(nil, fmt.Sprintf(
			"unbalanced metadata key '%s'; leftover metadata '%s'",
			key, strings.Join(s.meta[key], ", ")))
	}
	s.meta = make(map[string][]string)
}

// text returns the raw source a node covers in the current file.
func (s *State) text(n syntax.Node) string {
	return syntax.Text(n, s.contents)
}

// str returns the unquoted content of a string node.
func (s *State) str(n syntax.Node) string {
	text := s.text(n)
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		return text[1 : len(text)-1]
	}
	return text
}

// date parses a date leaf. Both - and / separators are accepted.
func (s *State) date(n syntax.Node) (time.Time, error) {
	text := strings.ReplaceAll(s.text(n), "/", "-")
	d, err := time.Parse("2006-01-02", text)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s.text(n))
	}
	return d, nil
}

// number parses a number leaf, tolerating thousands separators.
func (s *State) number(n syntax.Node) (decimal.Decimal, error) {
	text := strings.ReplaceAll(s.text(n), ",", "")
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid number %q", s.text(n))
	}
	return d, nil
}

// amount resolves an amount node into a (possibly partially elided)
// ledger.Amount. A nil node is the fully elided amount.
func (s *State) amount(n syntax.Node) (ledger.Amount, error) {
	if n == nil {
		return ledger.Amount{}, nil
	}
	var a ledger.Amount
	if num := n.ChildByField("number"); num != nil {
		d, err := s.number(num)
		if err != nil {
			return a, err
		}
		a.Number = &d
	}
	if cur := n.ChildByField("currency"); cur != nil {
		a.Currency = s.text(cur)
	}
	return a, nil
}

// baseFor builds the common directive fields: position, parsed date and
// a metadata snapshot combining pending pushmeta values (latest value
// per key) with the node's own key-value children.
func (s *State) baseFor(n syntax.Node) (ledger.Base, error) {
	dateNode := n.ChildByField("date")
	if dateNode == nil {
		return ledger.Base{}, fmt.Errorf("missing date")
	}
	date, err := s.date(dateNode)
	if err != nil {
		return ledger.Base{}, err
	}
	return ledger.Base{
		Position: s.pos(n),
		Date:     date,
		Meta:     s.collectMeta(n),
	}, nil
}

// collectMeta snapshots the metadata in effect for a directive.
func (s *State) collectMeta(n syntax.Node) map[string]string {
	meta := make(map[string]string)
	for key, values := range s.meta {
		if len(values) > 0 {
			meta[key] = values[len(values)-1]
		}
	}
	for _, child := range n.Children() {
		if child.Kind() != syntax.KindKeyValue {
			continue
		}
		keyNode := child.ChildByField("key")
		if keyNode == nil {
			continue
		}
		key := strings.TrimSuffix(s.text(keyNode), ":")
		value := ""
		if valueNode := child.ChildByField("value"); valueNode != nil {
			value = s.str(valueNode)
		}
		meta[key] = value
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

// activeTags merges the pushed tag stack with a directive's inline tags
// into a sorted, de-duplicated list.
func (s *State) activeTags(inline []string) []string {
	set := make(map[string]bool, len(s.tags)+len(inline))
	for _, t := range s.tags {
		set[t] = true
	}
	for _, t := range inline {
		set[t] = true
	}
	if len(set) == 0 {
		return nil
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
