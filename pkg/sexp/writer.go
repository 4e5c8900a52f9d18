package sexp

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

// Write pretty-prints s to w. Lists without nested lists stay on one line;
// otherwise every nested list starts a new line indented by one space per
// level and the closing parenthesis gets its own line.
func Write(w io.Writer, s Sexp) error {
	bw := bufio.NewWriter(w)
	writeNode(bw, s, 0)
	bw.WriteByte('\n')
	return bw.Flush()
}

func writeNode(w *bufio.Writer, s Sexp, depth int) {
	l, ok := s.(*List)
	if !ok || !hasSubList(l) {
		w.WriteString(s.String())
		return
	}
	w.WriteByte('(')
	inline := true
	for i, elem := range l.elements {
		if _, isList := elem.(*List); isList {
			inline = false
		}
		if inline {
			if i > 0 {
				w.WriteByte(' ')
			}
			w.WriteString(elem.String())
			continue
		}
		w.WriteByte('\n')
		w.WriteString(strings.Repeat(" ", depth+1))
		writeNode(w, elem, depth+1)
	}
	w.WriteByte('\n')
	w.WriteString(strings.Repeat(" ", depth))
	w.WriteByte(')')
}

func hasSubList(l *List) bool {
	for _, elem := range l.elements {
		if _, ok := elem.(*List); ok {
			return true
		}
	}
	return false
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)

func quote(s string) string {
	return `"` + escaper.Replace(s) + `"`
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '(' || r == ')' || r == '"' || r == '#' || r == '\\' {
			return quote(s)
		}
	}
	return s
}
