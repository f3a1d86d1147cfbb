// Package ignore implements //loopconv:ignore comment handling. A comment
// suppresses conversion of the loop it is attached to:
//
//	//loopconv:ignore
//	for i := 0; i < len(xs); i++ { ... }
//
//	for i := 0; i < len(xs); i++ { //loopconv:ignore
//
// An optional rule list restricts the suppression:
//
//	//loopconv:ignore loop-convert
package ignore

import (
	"go/ast"
	"go/token"
	"strings"
)

const prefix = "//loopconv:ignore"

// Manager holds the parsed ignore scopes of one file.
type Manager struct {
	scopes []scope
}

type scope struct {
	fromLine, toLine int
	rules            map[string]struct{} // empty means all rules
}

// ParseComments collects ignore scopes from the file's comments. A
// comment on its own line covers the next line; a trailing comment covers
// its own line.
func ParseComments(f *ast.File, fset *token.FileSet) *Manager {
	m := &Manager{}
	for _, cg := range f.Comments {
		for _, comment := range cg.List {
			sc, ok := parseComment(comment, fset)
			if !ok {
				continue
			}
			m.scopes = append(m.scopes, sc)
		}
	}
	return m
}

func parseComment(comment *ast.Comment, fset *token.FileSet) (scope, bool) {
	text := comment.Text
	if !strings.HasPrefix(text, prefix) {
		return scope{}, false
	}
	rest := text[len(prefix):]
	// The directive must end there or be followed by a rule list;
	// //loopconv:ignorethis is somebody else's comment.
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return scope{}, false
	}
	rest = strings.TrimSpace(rest)

	line := fset.Position(comment.Pos()).Line
	sc := scope{fromLine: line, toLine: line + 1}

	if rest != "" {
		sc.rules = make(map[string]struct{})
		for _, rule := range strings.Split(rest, ",") {
			rule = strings.TrimSpace(rule)
			if rule != "" {
				sc.rules[rule] = struct{}{}
			}
		}
	}
	return sc, true
}

// IsIgnored reports whether an issue of the given rule starting at the
// given line is suppressed.
func (m *Manager) IsIgnored(line int, rule string) bool {
	for _, sc := range m.scopes {
		if line < sc.fromLine || line > sc.toLine {
			continue
		}
		if len(sc.rules) == 0 {
			return true
		}
		if _, ok := sc.rules[rule]; ok {
			return true
		}
	}
	return false
}
