// Package beancheck adapts the external reference accounting engine. The
// reference engine remains authoritative for booking, balancing and
// validation; this package only invokes it and translates its output
// into ledger diagnostics, never interpreting them.
package beancheck

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os/exec"

	beanerrors "github.com/beanwalk/beanwalk/pkgs/errors"
	"github.com/beanwalk/beanwalk/pkgs/ledger"
)

// Engine is the reference accounting engine collaborator: given a root
// file it performs a full authoritative load (parse, booking,
// transformations, validation).
type Engine interface {
	Load(ctx context.Context, rootFile string) (*ledger.LoadResult, error)
}

// reportedError is one record of the checker's JSON output.
type reportedError struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Command runs a bean-check style binary as a subprocess. The binary is
// expected to print two JSON arrays on stdout, one per line: the error
// list and the flagged-entry list. A non-zero exit status with parseable
// output is normal (checkers exit non-zero when the journal has errors).
type Command struct {
	// Path is the checker executable.
	Path string
	// Args precede the root file argument.
	Args []string

	log *slog.Logger
}

// NewCommand builds a subprocess-backed reference engine.
func NewCommand(path string, args []string, log *slog.Logger) *Command {
	if log == nil {
		log = slog.Default()
	}
	return &Command{Path: path, Args: args, log: log}
}

// Load implements Engine. The subprocess does not ship entries back, so
// the result carries diagnostics and an empty entry list; callers that
// need entries run the tree-walker pipeline.
func (c *Command) Load(ctx context.Context, rootFile string) (*ledger.LoadResult, error) {
	args := append(append([]string{}, c.Args...), rootFile)
	cmd := exec.CommandContext(ctx, c.Path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil && stdout.Len() == 0 {
		return nil, beanerrors.NewCheckerError(c.Path, err).
			WithContext("stderr", stderr.String())
	}
	c.log.Debug("checker finished", "command", c.Path, "file", rootFile,
		"stdout_bytes", stdout.Len())

	diags, err := parseOutput(stdout.Bytes())
	if err != nil {
		return nil, beanerrors.Wrap(beanerrors.ErrCheckerOutput,
			"cannot decode checker output", err)
	}
	return &ledger.LoadResult{
		Diagnostics: diags,
		Options:     ledger.NewOptions(),
	}, nil
}

// parseOutput decodes the checker's JSON lines. Later lines (flagged
// entries) are appended after the error list, preserving the checker's
// own ordering within each list.
func parseOutput(out []byte) ([]ledger.Diagnostic, error) {
	var diags []ledger.Diagnostic
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var reported []reportedError
		if err := json.Unmarshal(line, &reported); err != nil {
			return nil, err
		}
		for _, r := range reported {
			diags = append(diags, ledger.Diagnostic{
				Pos:     ledger.Position{Filename: r.File, Line: r.Line},
				Message: r.Message,
			})
		}
	}
	return diags, scanner.Err()
}
