// Package parser walks ledger syntax trees into flat directive lists
// plus positioned diagnostics, expanding include directives depth-first
// across files. It owns no grammar and no global state: a Grammar handle
// is injected at construction and every ParseFile/ParseBytes call runs
// on a fresh traversal state, so concurrent calls never interfere.
package parser

import (
	"log/slog"
	"os"

	"github.com/google/uuid"

	beanerrors "github.com/beanwalk/beanwalk/pkgs/errors"
	"github.com/beanwalk/beanwalk/pkgs/ledger"
	"github.com/beanwalk/beanwalk/pkgs/syntax"
)

// Parser drives the node dispatcher and parse state across a tree and
// the trees of any included files.
type Parser struct {
	grammar syntax.Grammar
	log     *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for traversal tracing.
func WithLogger(log *slog.Logger) Option {
	return func(p *Parser) { p.log = log }
}

// New builds a Parser around an explicitly constructed grammar handle.
func New(grammar syntax.Grammar, opts ...Option) *Parser {
	p := &Parser{grammar: grammar, log: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile loads and parses a root file, following includes.
func (p *Parser) ParseFile(filename string) (*ledger.LoadResult, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, beanerrors.NewInputError("cannot read root file", err)
	}
	return p.parse(contents, canonicalPath(filename))
}

// ParseBytes parses in-memory contents attributed to filename. Pass the
// buffer the editor holds to parse unsaved state; filename may be empty,
// in which case include directives are reported as unresolvable.
func (p *Parser) ParseBytes(contents []byte, filename string) (*ledger.LoadResult, error) {
	if filename != "" {
		filename = canonicalPath(filename)
	}
	return p.parse(contents, filename)
}

// ParseString parses a string with no file context.
func (p *Parser) ParseString(contents string) (*ledger.LoadResult, error) {
	return p.parse([]byte(contents), "")
}

func (p *Parser) parse(contents []byte, filename string) (*ledger.LoadResult, error) {
	traversal := uuid.NewString()
	p.log.Debug("starting traversal",
		"traversal", traversal, "file", filename, "bytes", len(contents))

	// Fresh per-traversal state: never shared, never cached.
	state := newState(contents, filename)
	seen := make(map[string]bool)
	if filename != "" {
		seen[filename] = true
	}

	tree, err := p.grammar.Parse(contents)
	if err != nil {
		return nil, beanerrors.Wrap(beanerrors.ErrGrammarParse, "grammar rejected input", err)
	}

	entries := p.walk(tree.Root.Children(), state, filename, seen)
	state.Finalize()
	state.opts.SetInclude(seen)

	// Includes can interleave files that are not globally date-ordered;
	// re-sort once, stably, before handing entries downstream.
	ledger.SortEntries(entries)

	p.log.Debug("traversal complete",
		"traversal", traversal, "entries", len(entries), "diagnostics", len(state.diags))

	return &ledger.LoadResult{
		Entries:        entries,
		Diagnostics:    state.diags,
		Options:        state.opts,
		DisplayContext: state.dctx,
	}, nil
}
