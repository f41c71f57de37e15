// pkg/execute/helpers.go

package execute

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// buildCommandString renders the invocation the way it would be typed into
// bash, for logs only.
func buildCommandString(command string, args ...string) string {
	words := make([]string, 0, len(args)+1)
	words = append(words, quoteWord(command))
	for _, arg := range args {
		words = append(words, quoteWord(arg))
	}
	return strings.Join(words, " ")
}

func quoteWord(word string) string {
	quoted, err := syntax.Quote(word, syntax.LangBash)
	if err != nil {
		// bash cannot represent it (e.g. a NUL byte)
		return strconv.Quote(word)
	}
	return quoted
}
