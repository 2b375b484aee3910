package pipcmd

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// FormatCommand renders tokens as a single shell-quoted line, so that
// pasting the result into a POSIX shell runs the same command.
func FormatCommand(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		q, err := syntax.Quote(tok, syntax.LangPOSIX)
		if err != nil {
			// POSIX cannot express some bytes; fall back to Go quoting for display
			q = strconv.Quote(tok)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " ")
}
