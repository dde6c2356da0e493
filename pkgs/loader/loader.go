// Package loader is the entry point the editor-facing layer calls on
// file-open and file-save. It selects between the external reference
// engine and the tree-walker pipeline and, in verify mode, reconciles
// the two.
package loader

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/beanwalk/beanwalk/pkgs/beancheck"
	"github.com/beanwalk/beanwalk/pkgs/ledger"
	"github.com/beanwalk/beanwalk/pkgs/parser"
	"github.com/beanwalk/beanwalk/pkgs/syntax"
)

// Loader owns one grammar handle and one reference engine and serves
// Open/Save requests. Each request runs on a fresh traversal state, so a
// Loader is safe for concurrent use.
type Loader struct {
	parser     *parser.Parser
	engine     beancheck.Engine
	treeWalker bool
	verify     bool
	log        *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithTreeWalker selects the tree-walker pipeline instead of the
// reference engine's own output.
func WithTreeWalker(enabled bool) Option {
	return func(l *Loader) { l.treeWalker = enabled }
}

// WithVerify enables reconciliation of the tree-walker output against
// the reference engine. Mismatches become warning diagnostics, never
// hard errors; the reference engine stays authoritative for correctness.
func WithVerify(enabled bool) Option {
	return func(l *Loader) { l.verify = enabled }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// New builds a Loader from an explicitly constructed grammar handle and
// a reference engine.
func New(grammar syntax.Grammar, engine beancheck.Engine, opts ...Option) *Loader {
	l := &Loader{engine: engine, log: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	l.parser = parser.New(grammar, parser.WithLogger(l.log))
	return l
}

// Open serves a file-open request for a root file.
func (l *Loader) Open(ctx context.Context, rootFile string) (*ledger.LoadResult, error) {
	if !l.treeWalker || isEncrypted(rootFile) {
		// An encrypted or tree-walker-disabled document always gets the
		// reference engine's result.
		return l.engine.Load(ctx, rootFile)
	}

	walked, err := l.parser.ParseFile(rootFile)
	if err != nil {
		l.log.Warn("tree walker failed, falling back to reference engine",
			"file", rootFile, "error", err)
		return l.engine.Load(ctx, rootFile)
	}

	if l.verify {
		reference, err := l.engine.Load(ctx, rootFile)
		if err != nil {
			l.log.Warn("reference engine unavailable, skipping verification",
				"file", rootFile, "error", err)
			return walked, nil
		}
		// Downstream validation errors pass through unchanged, then the
		// reconciliation warnings. A diagnostics-only engine (the
		// subprocess checker ships no entries back) has no entry sequence
		// to compare against, so only its diagnostics are merged.
		walked.Diagnostics = append(walked.Diagnostics, reference.Diagnostics...)
		if len(reference.Entries) > 0 {
			walked.Diagnostics = append(walked.Diagnostics, Reconcile(reference.Entries, walked.Entries)...)
		}
	}
	return walked, nil
}

// Save serves a file-save request. Save never reconciles; it returns
// whichever pipeline is selected, unchanged.
func (l *Loader) Save(ctx context.Context, rootFile string) (*ledger.LoadResult, error) {
	if !l.treeWalker || isEncrypted(rootFile) {
		return l.engine.Load(ctx, rootFile)
	}
	walked, err := l.parser.ParseFile(rootFile)
	if err != nil {
		l.log.Warn("tree walker failed, falling back to reference engine",
			"file", rootFile, "error", err)
		return l.engine.Load(ctx, rootFile)
	}
	return walked, nil
}

var pgpArmorPrefix = []byte("-----BEGIN PGP")

// isEncrypted sniffs whether the document cannot be parsed as plain
// text: a GPG-suffixed filename or an armored PGP header.
func isEncrypted(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gpg", ".asc", ".pgp":
		return true
	}
	head := make([]byte, len(pgpArmorPrefix))
	f, err := os.Open(filename)
	if err != nil {
		return false
	}
	defer f.Close()
	n, _ := f.Read(head)
	return bytes.HasPrefix(head[:n], pgpArmorPrefix)
}
