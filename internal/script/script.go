// Package script parses and replays JSON-lines scenario files for the CLI
// harness: one directive per line, blank lines and '#' comments ignored.
package script

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mergelist/mergelist/internal/entries"
)

// ErrInvalidDirective indicates a malformed replay directive.
var ErrInvalidDirective = errors.New("script: invalid directive")

const (
	opAdd     = "add"
	opRemove  = "remove"
	opDone    = "done"
	opUndone  = "undone"
	opDismiss = "dismiss"
	opAllow   = "allow"
)

// Directive is one parsed line of a replay script. Entry, Name, and At are
// meaningful only for the operation kinds that use them.
type Directive struct {
	Op    string            `json:"op"`
	Entry entries.EntryID   `json:"entry"`
	User  entries.UserID    `json:"user"`
	Name  string            `json:"name,omitempty"`
	At    entries.Timestamp `json:"ts"`
}

// Parse reads one JSON directive per line. Blank lines and lines starting
// with '#' are skipped.
func Parse(r io.Reader) ([]Directive, error) {
	scanner := bufio.NewScanner(r)
	var directives []Directive
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var directive Directive
		if err := json.Unmarshal([]byte(text), &directive); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidDirective, line, err)
		}
		switch directive.Op {
		case opAdd, opRemove, opDone, opUndone, opDismiss, opAllow:
		default:
			return nil, fmt.Errorf("%w: line %d: unknown op %q", ErrInvalidDirective, line, directive.Op)
		}
		directives = append(directives, directive)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return directives, nil
}

// Apply replays the directives into the board in script order.
func Apply(board *entries.Board, directives []Directive) {
	for _, directive := range directives {
		switch directive.Op {
		case opAdd:
			board.AddEntry(directive.Entry, directive.User, directive.Name, directive.At)
		case opRemove:
			board.RemoveEntry(directive.Entry, directive.User, directive.At)
		case opDone:
			board.MarkDone(directive.Entry, directive.User, directive.At)
		case opUndone:
			board.MarkUndone(directive.Entry, directive.User, directive.At)
		case opDismiss:
			board.DismissUser(directive.User)
		case opAllow:
			board.AllowUser(directive.User)
		}
	}
}
