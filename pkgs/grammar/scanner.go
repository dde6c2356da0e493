package grammar

import "strings"

// line is one physical source line with its absolute byte offset.
type line struct {
	text  string
	start int // byte offset of the first character
	num   int // 1-based line number
}

// splitLines slices the buffer into physical lines, keeping offsets so
// nodes can carry byte ranges into the original source. Trailing
// newlines are not part of the line text.
func splitLines(contents []byte) []line {
	var lines []line
	start := 0
	num := 1
	for i := 0; i < len(contents); i++ {
		if contents[i] == '\n' {
			text := string(contents[start:i])
			lines = append(lines, line{text: strings.TrimRight(text, "\r"), start: start, num: num})
			start = i + 1
			num++
		}
	}
	if start < len(contents) {
		lines = append(lines, line{text: string(contents[start:]), start: start, num: num})
	}
	return lines
}

// indented reports whether the line is a continuation (posting or
// metadata) line.
func (l line) indented() bool {
	return len(l.text) > 0 && (l.text[0] == ' ' || l.text[0] == '\t')
}

// blank reports whether the line holds no tokens at all.
func (l line) blank() bool {
	return strings.TrimSpace(l.text) == ""
}

// token is one lexeme with absolute byte offsets.
type token struct {
	text  string
	start int
	end   int
}

// tokenize splits a line into tokens. Double-quoted strings stay one
// token (quotes included); an unquoted ';' starts an inline comment that
// discards the rest of the line.
func tokenize(l line) []token {
	var toks []token
	text := l.text
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == ';':
			return toks
		case c == '"':
			j := i + 1
			for j < len(text) && text[j] != '"' {
				j++
			}
			if j < len(text) {
				j++ // closing quote
			}
			toks = append(toks, token{text: text[i:j], start: l.start + i, end: l.start + j})
			i = j
		default:
			j := i
			for j < len(text) && text[j] != ' ' && text[j] != '\t' && text[j] != ';' {
				j++
			}
			toks = append(toks, token{text: text[i:j], start: l.start + i, end: l.start + j})
			i = j
		}
	}
	return toks
}
