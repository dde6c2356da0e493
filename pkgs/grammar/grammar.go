// Package grammar is the bundled tokenizer/parser producing syntax trees
// for beancount-style journals. It implements syntax.Grammar, the narrow
// contract the tree walker consumes; the walker itself never depends on
// this package. The grammar is deliberately shape-oriented: it recognizes
// the line structure of each directive and tags tokens with leaf kinds,
// while semantic validation (dates, mandatory fields) belongs to the
// directive handlers.
package grammar

import (
	"regexp"

	"github.com/beanwalk/beanwalk/pkgs/syntax"
)

// Grammar parses journal bytes into syntax trees. The zero value is
// ready to use; handles are cheap and safe for concurrent traversals.
type Grammar struct{}

// New returns a grammar handle.
func New() *Grammar { return &Grammar{} }

var (
	dateRe     = regexp.MustCompile(`^\d{4}[-/]\d{2}[-/]\d{2}$`)
	numberRe   = regexp.MustCompile(`^[-+]?[\d,]+(\.\d+)?$`)
	accountRe  = regexp.MustCompile(`^[A-Z][A-Za-z0-9-]*(:[A-Z0-9][A-Za-z0-9-]*)+$`)
	currencyRe = regexp.MustCompile(`^[A-Z][A-Z0-9'._-]{0,22}[A-Z0-9]$|^[A-Z]$`)
	keyRe      = regexp.MustCompile(`^[a-z][a-zA-Z0-9_-]*:$`)
)

// Parse implements syntax.Grammar. It never fails: unrecognized regions
// become ERROR nodes so the walker can report them and continue.
func (g *Grammar) Parse(contents []byte) (*syntax.Tree, error) {
	lines := splitLines(contents)
	var top []syntax.Node

	for i := 0; i < len(lines); {
		l := lines[i]
		if l.blank() {
			i++
			continue
		}
		if l.indented() {
			toks := tokenize(l)
			if len(toks) == 0 {
				i++
				continue
			}
			// A continuation line outside a directive is a stray indent.
			top = append(top, errorNode(l))
			i++
			continue
		}

		node, consumed := parseDirective(lines, i)
		if node != nil {
			top = append(top, node)
		}
		i += consumed
	}

	root := syntax.NewNode(syntax.KindFile, 0, len(contents), 1, top, nil)
	return &syntax.Tree{Root: root, Source: contents}, nil
}

// parseDirective parses the directive starting at lines[i] plus any
// indented continuation lines, returning the node and the number of
// lines consumed.
func parseDirective(lines []line, i int) (syntax.Node, int) {
	l := lines[i]
	toks := tokenize(l)
	if len(toks) == 0 {
		// Comment-only line.
		return leafSpan(syntax.KindComment, l), 1
	}

	head := toks[0].text
	if head[0] == ';' || head[0] == '*' {
		return leafSpan(syntax.KindComment, l), 1
	}

	if dateRe.MatchString(head) {
		return parseDated(lines, i, toks)
	}

	switch head {
	case "option":
		return keywordNode(syntax.KindOption, l, toks, [][2]string{
			{"key", "string"}, {"value", "string"},
		}), 1
	case "plugin":
		return keywordNode(syntax.KindPlugin, l, toks, [][2]string{
			{"name", "string"}, {"config", "string"},
		}), 1
	case "include":
		return keywordNode(syntax.KindInclude, l, toks, [][2]string{
			{"path", "string"},
		}), 1
	case "pushtag":
		return keywordNode(syntax.KindPushtag, l, toks, [][2]string{
			{"tag", "tag"},
		}), 1
	case "poptag":
		return keywordNode(syntax.KindPoptag, l, toks, [][2]string{
			{"tag", "tag"},
		}), 1
	case "pushmeta":
		return pushmetaNode(l, toks), 1
	case "popmeta":
		return keywordNode(syntax.KindPopmeta, l, toks, [][2]string{
			{"key", "key"},
		}), 1
	}

	return errorNode(l), 1
}

// parseDated parses a date-prefixed directive and its continuation lines.
func parseDated(lines []line, i int, toks []token) (syntax.Node, int) {
	l := lines[i]
	if len(toks) < 2 {
		return errorNode(l), 1
	}
	date := leaf(syntax.KindDate, toks[0], l.num)
	rest := toks[2:]

	fields := map[string]syntax.Node{"date": date}
	var children []syntax.Node
	var kind syntax.NodeKind

	switch kw := toks[1].text; kw {
	case "txn", "*", "!":
		kind = syntax.KindTransaction
		fields["flag"] = leaf(syntax.KindFlag, toks[1], l.num)
		var strs []token
		for _, t := range rest {
			switch {
			case len(t.text) > 0 && t.text[0] == '"':
				strs = append(strs, t)
			case len(t.text) > 1 && t.text[0] == '#':
				children = append(children, leaf(syntax.KindTag, t, l.num))
			case len(t.text) > 1 && t.text[0] == '^':
				children = append(children, leaf(syntax.KindLink, t, l.num))
			}
		}
		switch len(strs) {
		case 1:
			fields["narration"] = leaf(syntax.KindString, strs[0], l.num)
		case 2:
			fields["payee"] = leaf(syntax.KindString, strs[0], l.num)
			fields["narration"] = leaf(syntax.KindString, strs[1], l.num)
		}
	case "open":
		kind = syntax.KindOpen
		if len(rest) > 0 {
			fields["account"] = leaf(syntax.KindAccount, rest[0], l.num)
			for _, t := range splitCurrencies(rest[1:], l.num) {
				children = append(children, t)
			}
			if last := rest[len(rest)-1]; last.text[0] == '"' {
				fields["booking"] = leaf(syntax.KindString, last, l.num)
			}
		}
	case "close":
		kind = syntax.KindClose
		if len(rest) > 0 {
			fields["account"] = leaf(syntax.KindAccount, rest[0], l.num)
		}
	case "commodity":
		kind = syntax.KindCommodity
		if len(rest) > 0 {
			fields["currency"] = leaf(syntax.KindCurrency, rest[0], l.num)
		}
	case "balance":
		kind = syntax.KindBalance
		if len(rest) > 0 {
			fields["account"] = leaf(syntax.KindAccount, rest[0], l.num)
			args := rest[1:]
			// "number ~ number currency": the tolerance sits between the
			// amount's number and its currency.
			if len(args) >= 4 && args[1].text == "~" &&
				numberRe.MatchString(args[0].text) &&
				numberRe.MatchString(args[2].text) &&
				currencyRe.MatchString(args[3].text) {
				fields["amount"] = amountPair(args[0], args[3], l.num)
				fields["tolerance"] = leaf(syntax.KindNumber, args[2], l.num)
			} else if amt := amountNode(args, l.num); amt != nil {
				fields["amount"] = amt
			}
		}
	case "price":
		kind = syntax.KindPrice
		if len(rest) > 0 {
			fields["currency"] = leaf(syntax.KindCurrency, rest[0], l.num)
			if amt := amountNode(rest[1:], l.num); amt != nil {
				fields["amount"] = amt
			}
		}
	case "note":
		kind = syntax.KindNote
		if len(rest) > 0 {
			fields["account"] = leaf(syntax.KindAccount, rest[0], l.num)
		}
		if len(rest) > 1 {
			fields["comment"] = leaf(syntax.KindString, rest[1], l.num)
		}
	case "document":
		kind = syntax.KindDocument
		if len(rest) > 0 {
			fields["account"] = leaf(syntax.KindAccount, rest[0], l.num)
		}
		if len(rest) > 1 {
			fields["path"] = leaf(syntax.KindString, rest[1], l.num)
		}
	case "event":
		kind = syntax.KindEvent
		if len(rest) > 0 {
			fields["type"] = leaf(syntax.KindString, rest[0], l.num)
		}
		if len(rest) > 1 {
			fields["description"] = leaf(syntax.KindString, rest[1], l.num)
		}
	case "custom":
		kind = syntax.KindCustom
		if len(rest) > 0 {
			fields["name"] = leaf(syntax.KindString, rest[0], l.num)
			for _, t := range rest[1:] {
				children = append(children, leaf(classify(t.text), t, l.num))
			}
		}
	default:
		return errorNode(l), 1
	}

	// Indented continuation lines: postings (transactions only) and
	// key-value metadata (any dated directive).
	consumed := 1
	end := l.start + len(l.text)
	for i+consumed < len(lines) {
		cl := lines[i+consumed]
		if cl.blank() {
			consumed++
			continue
		}
		if !cl.indented() {
			break
		}
		ctoks := tokenize(cl)
		if len(ctoks) == 0 { // indented comment
			consumed++
			continue
		}
		if keyRe.MatchString(ctoks[0].text) {
			children = append(children, keyValueNode(cl, ctoks))
		} else if kind == syntax.KindTransaction {
			children = append(children, postingNode(cl, ctoks))
		} else {
			children = append(children, errorNode(cl))
		}
		end = cl.start + len(cl.text)
		consumed++
	}

	return syntax.NewNode(kind, l.start, end, l.num, children, fields), consumed
}

// postingNode parses "  [flag] Account [number currency] [@|@@ number currency]".
func postingNode(l line, toks []token) syntax.Node {
	fields := map[string]syntax.Node{}
	rest := toks
	if rest[0].text == "!" || rest[0].text == "*" {
		fields["flag"] = leaf(syntax.KindFlag, rest[0], l.num)
		rest = rest[1:]
	}
	if len(rest) == 0 || !accountRe.MatchString(rest[0].text) {
		return errorNode(l)
	}
	fields["account"] = leaf(syntax.KindAccount, rest[0], l.num)
	rest = rest[1:]

	atIdx := -1
	for j, t := range rest {
		if t.text == "@" || t.text == "@@" {
			atIdx = j
			break
		}
	}
	units := rest
	if atIdx >= 0 {
		units = rest[:atIdx]
		if price := amountNode(rest[atIdx+1:], l.num); price != nil {
			fields["price"] = price
		}
	}
	if amt := amountNode(units, l.num); amt != nil {
		fields["amount"] = amt
	}
	return syntax.NewNode(syntax.KindPosting, l.start, l.start+len(l.text), l.num, nil, fields)
}

// keyValueNode parses a "key: value..." metadata line.
func keyValueNode(l line, toks []token) syntax.Node {
	fields := map[string]syntax.Node{
		"key": leaf(syntax.KindKey, toks[0], l.num),
	}
	values := toks[1:]
	if amt := amountNode(values, l.num); amt != nil && len(values) == 2 {
		fields["value"] = amt
	} else if len(values) > 0 {
		fields["value"] = leaf(classify(values[0].text), values[0], l.num)
	}
	return syntax.NewNode(syntax.KindKeyValue, l.start, l.start+len(l.text), l.num, nil, fields)
}

// pushmetaNode parses "pushmeta key: value".
func pushmetaNode(l line, toks []token) syntax.Node {
	if len(toks) < 2 || !keyRe.MatchString(toks[1].text) {
		return errorNode(l)
	}
	fields := map[string]syntax.Node{
		"key": leaf(syntax.KindKey, toks[1], l.num),
	}
	if len(toks) > 2 {
		fields["value"] = leaf(classify(toks[2].text), toks[2], l.num)
	}
	return syntax.NewNode(syntax.KindPushmeta, l.start, l.start+len(l.text), l.num, nil, fields)
}

// keywordNode parses a fixed-shape undated directive. spec lists field
// name / expected token class pairs in order; missing or mismatched
// tokens simply leave the field absent for the handler to report.
func keywordNode(kind syntax.NodeKind, l line, toks []token, spec [][2]string) syntax.Node {
	fields := map[string]syntax.Node{}
	args := toks[1:]
	for idx, fs := range spec {
		if idx >= len(args) {
			break
		}
		t := args[idx]
		var k syntax.NodeKind
		switch fs[1] {
		case "string":
			if t.text[0] != '"' {
				continue
			}
			k = syntax.KindString
		case "tag":
			if t.text[0] != '#' {
				continue
			}
			k = syntax.KindTag
		case "key":
			if !keyRe.MatchString(t.text) {
				continue
			}
			k = syntax.KindKey
		default:
			k = classify(t.text)
		}
		fields[fs[0]] = leaf(k, t, l.num)
	}
	return syntax.NewNode(kind, l.start, l.start+len(l.text), l.num, nil, fields)
}

// amountNode pairs adjacent number and currency tokens.
func amountNode(toks []token, lineNum int) syntax.Node {
	if len(toks) < 2 {
		return nil
	}
	if !numberRe.MatchString(toks[0].text) || !currencyRe.MatchString(toks[1].text) {
		return nil
	}
	return amountPair(toks[0], toks[1], lineNum)
}

// amountPair builds an amount node from a number token and a currency
// token, which need not be adjacent in the source.
func amountPair(number, currency token, lineNum int) syntax.Node {
	fields := map[string]syntax.Node{
		"number":   leaf(syntax.KindNumber, number, lineNum),
		"currency": leaf(syntax.KindCurrency, currency, lineNum),
	}
	return syntax.NewNode(syntax.KindAmount, number.start, currency.end, lineNum, nil, fields)
}

// splitCurrencies turns comma-separated currency tokens into leaves.
func splitCurrencies(toks []token, lineNum int) []syntax.Node {
	var out []syntax.Node
	for _, t := range toks {
		text := t.text
		offset := t.start
		for len(text) > 0 {
			seg := text
			comma := -1
			for j := 0; j < len(text); j++ {
				if text[j] == ',' {
					comma = j
					break
				}
			}
			if comma >= 0 {
				seg = text[:comma]
				text = text[comma+1:]
			} else {
				text = ""
			}
			if currencyRe.MatchString(seg) {
				out = append(out, syntax.NewNode(syntax.KindCurrency, offset, offset+len(seg), lineNum, nil, nil))
			}
			offset += len(seg) + 1
		}
	}
	return out
}

// classify guesses the leaf kind of a free-standing value token.
func classify(text string) syntax.NodeKind {
	switch {
	case len(text) > 0 && text[0] == '"':
		return syntax.KindString
	case len(text) > 1 && text[0] == '#':
		return syntax.KindTag
	case len(text) > 1 && text[0] == '^':
		return syntax.KindLink
	case dateRe.MatchString(text):
		return syntax.KindDate
	case numberRe.MatchString(text):
		return syntax.KindNumber
	case accountRe.MatchString(text):
		return syntax.KindAccount
	case currencyRe.MatchString(text):
		return syntax.KindCurrency
	default:
		return syntax.KindString
	}
}

func leaf(kind syntax.NodeKind, t token, lineNum int) syntax.Node {
	return syntax.NewNode(kind, t.start, t.end, lineNum, nil, nil)
}

func leafSpan(kind syntax.NodeKind, l line) syntax.Node {
	return syntax.NewNode(kind, l.start, l.start+len(l.text), l.num, nil, nil)
}

func errorNode(l line) syntax.Node {
	return syntax.NewNode(syntax.KindError, l.start, l.start+len(l.text), l.num, nil, nil)
}
