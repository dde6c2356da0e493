package parser

import (
	"fmt"
	"strings"

	"github.com/beanwalk/beanwalk/pkgs/ledger"
	"github.com/beanwalk/beanwalk/pkgs/syntax"
)

// result is the closed outcome type of dispatching one node. Exactly one
// of the four kinds applies; the walker handles them with an exhaustive
// switch instead of non-local control transfer.
type result struct {
	kind      resultKind
	directive ledger.Directive
	glob      string // include pattern, resultInclude only
	message   string // problem detail, resultSyntax only
}

type resultKind uint8

const (
	resultNone resultKind = iota // informational node, nothing produced
	resultDirective
	resultInclude
	resultSyntax
)

func none() result { return result{kind: resultNone} }

func produced(d ledger.Directive) result { return result{kind: resultDirective, directive: d} }

func includeFound(glob string) result { return result{kind: resultInclude, glob: glob} }

func syntaxProblem(format string, args ...interface{}) result {
	return result{kind: resultSyntax, message: fmt.Sprintf(format, args...)}
}

// handlerFunc converts one syntax node, mutating only the given State.
type handlerFunc func(*State, syntax.Node) result

// handlers is the fixed dispatch table, keyed by node kind.
var handlers map[syntax.NodeKind]handlerFunc

func init() {
	handlers = map[syntax.NodeKind]handlerFunc{
		syntax.KindComment:     handleComment,
		syntax.KindOption:      handleOption,
		syntax.KindPlugin:      handlePlugin,
		syntax.KindInclude:     handleInclude,
		syntax.KindPushtag:     handlePushtag,
		syntax.KindPoptag:      handlePoptag,
		syntax.KindPushmeta:    handlePushmeta,
		syntax.KindPopmeta:     handlePopmeta,
		syntax.KindTransaction: handleTransaction,
		syntax.KindOpen:        handleOpen,
		syntax.KindClose:       handleClose,
		syntax.KindCommodity:   handleCommodity,
		syntax.KindBalance:     handleBalance,
		syntax.KindPrice:       handlePrice,
		syntax.KindNote:        handleNote,
		syntax.KindDocument:    handleDocument,
		syntax.KindEvent:       handleEvent,
		syntax.KindCustom:      handleCustom,
		syntax.KindError:       handleError,
	}

	// The grammar's kind list and this table must not drift: a named
	// top-level kind without a handler is a defect, caught here rather
	// than as a runtime lookup miss.
	for _, kind := range syntax.TopLevelKinds() {
		if _, ok := handlers[kind]; !ok {
			panic(fmt.Sprintf("parser: no handler registered for node kind %q", kind))
		}
	}
}

// dispatch routes a node to its handler. Unnamed nodes pass through
// unchanged; a named kind with no registered handler means the grammar
// and the handler table have drifted, which is fatal by design.
func dispatch(s *State, n syntax.Node) result {
	if !n.Named() {
		return none()
	}
	handler, ok := handlers[n.Kind()]
	if !ok {
		panic(fmt.Sprintf("parser: unhandled named node kind %q", n.Kind()))
	}
	return handler(s, n)
}

func handleComment(*State, syntax.Node) result { return none() }

func handleError(s *State, n syntax.Node) result {
	return syntaxProblem("unparseable input")
}

func handleOption(s *State, n syntax.Node) result {
	key := n.ChildByField("key")
	value := n.ChildByField("value")
	if key == nil || value == nil {
		return syntaxProblem("option requires a name and a value")
	}
	s.opts.Values[s.str(key)] = s.str(value)
	return none()
}

func handlePlugin(s *State, n syntax.Node) result {
	name := n.ChildByField("name")
	if name == nil {
		return syntaxProblem("plugin requires a module name")
	}
	s.opts.Plugins = append(s.opts.Plugins, s.str(name))
	return none()
}

func handleInclude(s *State, n syntax.Node) result {
	path := n.ChildByField("path")
	if path == nil {
		return syntaxProblem("include requires a quoted file pattern")
	}
	return includeFound(s.str(path))
}

func handlePushtag(s *State, n syntax.Node) result {
	tag := n.ChildByField("tag")
	if tag == nil {
		return syntaxProblem("pushtag requires a #tag")
	}
	s.tags = append(s.tags, strings.TrimPrefix(s.text(tag), "#"))
	return none()
}

func handlePoptag(s *State, n syntax.Node) result {
	tagNode := n.ChildByField("tag")
	if tagNode == nil {
		return syntaxProblem("poptag requires a #tag")
	}
	tag := strings.TrimPrefix(s.text(tagNode), "#")
	if len(s.tags) == 0 || s.tags[len(s.tags)-1] != tag {
		s.RecordError(n, fmt.Sprintf("unmatched poptag: '#%s'", tag))
		return none()
	}
	s.tags = s.tags[:len(s.tags)-1]
	return none()
}

func handlePushmeta(s *State, n syntax.Node) result {
	keyNode := n.ChildByField("key")
	if keyNode == nil {
		return syntaxProblem("pushmeta requires a key")
	}
	key := strings.TrimSuffix(s.text(keyNode), ":")
	value := ""
	if valueNode := n.ChildByField("value"); valueNode != nil {
		value = s.str(valueNode)
	}
	s.meta[key] = append(s.meta[key], value)
	return none()
}

func handlePopmeta(s *State, n syntax.Node) result {
	keyNode := n.ChildByField("key")
	if keyNode == nil {
		return syntaxProblem("popmeta requires a key")
	}
	key := strings.TrimSuffix(s.text(keyNode), ":")
	values := s.meta[key]
	if len(values) == 0 {
		s.RecordError(n, fmt.Sprintf("unmatched popmeta: '%s'", key))
		return none()
	}
	if len(values) == 1 {
		delete(s.meta, key)
	} else {
		s.meta[key] = values[:len(values)-1]
	}
	return none()
}

func handleTransaction(s *State, n syntax.Node) result {
	base, err := s.baseFor(n)
	if err != nil {
		return syntaxProblem("%v", err)
	}

	flag := "*"
	if flagNode := n.ChildByField("flag"); flagNode != nil {
		if text := s.text(flagNode); text != "txn" {
			flag = text
		}
	}

	txn := ledger.Transaction{Base: base, Flag: flag}
	if payee := n.ChildByField("payee"); payee != nil {
		txn.Payee = s.str(payee)
	}
	if narration := n.ChildByField("narration"); narration != nil {
		txn.Narration = s.str(narration)
	}

	var inlineTags []string
	for _, child := range n.Children() {
		switch child.Kind() {
		case syntax.KindTag:
			inlineTags = append(inlineTags, strings.TrimPrefix(s.text(child), "#"))
		case syntax.KindLink:
			txn.Links = append(txn.Links, strings.TrimPrefix(s.text(child), "^"))
		case syntax.KindPosting:
			posting, err := s.posting(child)
			if err != nil {
				return syntaxProblem("invalid posting: %v", err)
			}
			txn.Postings = append(txn.Postings, posting)
		}
	}
	txn.Tags = s.activeTags(inlineTags)

	return produced(txn)
}

// posting resolves one posting node and feeds observed precisions into
// the display context.
func (s *State) posting(n syntax.Node) (ledger.Posting, error) {
	account := n.ChildByField("account")
	if account == nil {
		return ledger.Posting{}, fmt.Errorf("missing account")
	}
	p := ledger.Posting{Account: s.text(account)}
	if flag := n.ChildByField("flag"); flag != nil {
		p.Flag = s.text(flag)
	}
	units, err := s.amount(n.ChildByField("amount"))
	if err != nil {
		return ledger.Posting{}, err
	}
	p.Units = units
	s.UpdateDisplayContext(units.Number, units.Currency)

	if priceNode := n.ChildByField("price"); priceNode != nil {
		price, err := s.amount(priceNode)
		if err != nil {
			return ledger.Posting{}, err
		}
		p.Price = &price
		s.UpdateDisplayContext(price.Number, price.Currency)
	}
	return p, nil
}

func handleOpen(s *State, n syntax.Node) result {
	base, err := s.baseFor(n)
	if err != nil {
		return syntaxProblem("%v", err)
	}
	account := n.ChildByField("account")
	if account == nil {
		return syntaxProblem("open requires an account")
	}
	open := ledger.Open{Base: base, Account: s.text(account)}
	for _, child := range n.Children() {
		if child.Kind() == syntax.KindCurrency {
			open.Currencies = append(open.Currencies, s.text(child))
		}
	}
	if booking := n.ChildByField("booking"); booking != nil {
		open.Booking = s.str(booking)
	}
	return produced(open)
}

func handleClose(s *State, n syntax.Node) result {
	base, err := s.baseFor(n)
	if err != nil {
		return syntaxProblem("%v", err)
	}
	account := n.ChildByField("account")
	if account == nil {
		return syntaxProblem("close requires an account")
	}
	return produced(ledger.Close{Base: base, Account: s.text(account)})
}

func handleCommodity(s *State, n syntax.Node) result {
	base, err := s.baseFor(n)
	if err != nil {
		return syntaxProblem("%v", err)
	}
	currency := n.ChildByField("currency")
	if currency == nil {
		return syntaxProblem("commodity requires a currency")
	}
	return produced(ledger.Commodity{Base: base, Currency: s.text(currency)})
}

func handleBalance(s *State, n syntax.Node) result {
	base, err := s.baseFor(n)
	if err != nil {
		return syntaxProblem("%v", err)
	}
	account := n.ChildByField("account")
	if account == nil {
		return syntaxProblem("balance requires an account")
	}
	amount, err := s.amount(n.ChildByField("amount"))
	if err != nil {
		return syntaxProblem("%v", err)
	}
	if amount.Missing() {
		return syntaxProblem("balance requires an amount")
	}
	s.UpdateDisplayContext(amount.Number, amount.Currency)

	balance := ledger.Balance{Base: base, Account: s.text(account), Amount: amount}
	if tolerance := n.ChildByField("tolerance"); tolerance != nil {
		balance.Tolerance = s.text(tolerance)
	}
	return produced(balance)
}

func handlePrice(s *State, n syntax.Node) result {
	base, err := s.baseFor(n)
	if err != nil {
		return syntaxProblem("%v", err)
	}
	currency := n.ChildByField("currency")
	if currency == nil {
		return syntaxProblem("price requires a currency")
	}
	amount, err := s.amount(n.ChildByField("amount"))
	if err != nil {
		return syntaxProblem("%v", err)
	}
	if amount.Missing() {
		return syntaxProblem("price requires an amount")
	}
	s.UpdateDisplayContext(amount.Number, amount.Currency)
	return produced(ledger.Price{Base: base, Currency: s.text(currency), Amount: amount})
}

func handleNote(s *State, n syntax.Node) result {
	base, err := s.baseFor(n)
	if err != nil {
		return syntaxProblem("%v", err)
	}
	account := n.ChildByField("account")
	comment := n.ChildByField("comment")
	if account == nil || comment == nil {
		return syntaxProblem("note requires an account and a comment")
	}
	return produced(ledger.Note{Base: base, Account: s.text(account), Comment: s.str(comment)})
}

func handleDocument(s *State, n syntax.Node) result {
	base, err := s.baseFor(n)
	if err != nil {
		return syntaxProblem("%v", err)
	}
	account := n.ChildByField("account")
	path := n.ChildByField("path")
	if account == nil || path == nil {
		return syntaxProblem("document requires an account and a path")
	}
	return produced(ledger.Document{Base: base, Account: s.text(account), Path: s.str(path)})
}

func handleEvent(s *State, n syntax.Node) result {
	base, err := s.baseFor(n)
	if err != nil {
		return syntaxProblem("%v", err)
	}
	eventType := n.ChildByField("type")
	description := n.ChildByField("description")
	if eventType == nil || description == nil {
		return syntaxProblem("event requires a type and a description")
	}
	return produced(ledger.Event{Base: base, Type: s.str(eventType), Description: s.str(description)})
}

func handleCustom(s *State, n syntax.Node) result {
	base, err := s.baseFor(n)
	if err != nil {
		return syntaxProblem("%v", err)
	}
	name := n.ChildByField("name")
	if name == nil {
		return syntaxProblem("custom requires a name")
	}
	custom := ledger.Custom{Base: base, Name: s.str(name)}
	for _, child := range n.Children() {
		if child.Kind() == syntax.KindKeyValue {
			continue
		}
		custom.Values = append(custom.Values, s.str(child))
	}
	return produced(custom)
}
