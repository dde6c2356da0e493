package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/beanwalk/beanwalk/pkgs/ledger"
	"github.com/beanwalk/beanwalk/pkgs/syntax"
)

// walk converts a sequence of top-level sibling nodes into directives,
// in document order. A node that fails to parse becomes a diagnostic and
// the walk continues with the next sibling; an include directive is
// expanded depth-first and its entries spliced in at this position.
func (p *Parser) walk(nodes []syntax.Node, state *State, filename string, seen map[string]bool) []ledger.Directive {
	var entries []ledger.Directive
	for _, node := range nodes {
		res := dispatch(state, node)
		switch res.kind {
		case resultNone:
			// informational node, nothing to emit
		case resultDirective:
			entries = append(entries, res.directive)
		case resultSyntax:
			state.RecordError(node, fmt.Sprintf(
				"syntax error: %s\n%s", res.message, state.text(node)))
		case resultInclude:
			entries = append(entries, p.expandInclude(node, res.glob, state, filename, seen)...)
		}
	}
	return entries
}

// expandInclude resolves an include glob against the including file's
// directory and recurses into each match. Every failure mode here is a
// diagnostic, never an abort: an include that cannot be expanded simply
// contributes zero entries while the rest of the file still parses.
func (p *Parser) expandInclude(node syntax.Node, glob string, state *State, filename string, seen map[string]bool) []ledger.Directive {
	if filename == "" {
		state.RecordError(node, "cannot resolve include when parsing a string")
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(filename), glob))
	if err != nil {
		state.RecordError(node, fmt.Sprintf("invalid include glob %q: %v", glob, err))
		return nil
	}
	if len(matches) == 0 {
		state.RecordError(node, fmt.Sprintf("include glob %q matched no files", glob))
		return nil
	}

	// Deterministic expansion order: lexicographic by resolved path,
	// regardless of filesystem return order.
	resolved := make([]string, 0, len(matches))
	for _, match := range matches {
		resolved = append(resolved, canonicalPath(match))
	}
	sort.Strings(resolved)

	var entries []ledger.Directive
	for _, included := range resolved {
		if seen[included] {
			state.RecordError(node, fmt.Sprintf("duplicate included file: %s", included))
			continue
		}
		contents, err := os.ReadFile(included)
		if err != nil {
			state.RecordError(node, fmt.Sprintf("cannot read included file %s: %v", included, err))
			continue
		}
		seen[included] = true

		tree, err := p.grammar.Parse(contents)
		if err != nil {
			state.RecordError(node, fmt.Sprintf("cannot parse included file %s: %v", included, err))
			continue
		}
		p.log.Debug("parsing included file", "file", included, "bytes", len(contents))

		var sub []ledger.Directive
		_ = state.EnterFile(contents, included, func() error {
			sub = p.walk(tree.Root.Children(), state, included, seen)
			return nil
		})
		entries = append(entries, sub...)
	}
	return entries
}

// canonicalPath returns the absolute, symlink-resolved form of a path,
// falling back to the cleaned absolute path when resolution fails.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
