package loop

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// synthesizeName produces the new loop variable's name. An alias name is
// reused verbatim. Otherwise a candidate is derived from the container's
// name (singularized, items -> item) under the configured style; when the
// candidate collides with anything visible in the enclosing scope or with
// a name already handed out for a sibling rewrite in this pass, a numeric
// suffix starting at 2 is appended until the name is unique.
func synthesizeName(p *Pass, cand *Candidate, alias *Alias, tr *Tracking) string {
	if alias != nil {
		tr.takeName(alias.Name)
		return alias.Name
	}

	base := singularize(baseName(cand.Cont.Text))
	if base == "" {
		base = "elem"
	}
	base = applyStyle(base, p.Cfg.NamingStyle)

	name := base
	for n := 2; collides(p, cand, tr, name); n++ {
		name = base + strconv.Itoa(n)
	}
	tr.takeName(name)
	return name
}

func collides(p *Pass, cand *Candidate, tr *Tracking, name string) bool {
	if tr.nameUsed(name) {
		return true
	}
	if name == cand.Index.Ident.Name {
		return true
	}
	if p.Pkg == nil {
		return false
	}
	scope := p.Pkg.Scope().Innermost(cand.Loop.Pos())
	if scope == nil {
		return false
	}
	_, obj := scope.LookupParent(name, cand.Body.End())
	return obj != nil
}

// baseName extracts the trailing identifier of the container's source
// text: "s.items" -> "items", "boxes" -> "boxes", "f()" -> "".
func baseName(text string) string {
	end := len(text)
	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		start -= size
	}
	name := text[start:end]
	if name == "" {
		return ""
	}
	if r, _ := utf8.DecodeRuneInString(name); unicode.IsDigit(r) {
		return ""
	}
	return name
}

// singularize derives a singular form from a plural identifier. Returns
// "" when no plural suffix is recognized.
func singularize(s string) string {
	switch {
	case len(s) > 3 && strings.HasSuffix(s, "ies"):
		return s[:len(s)-3] + "y"
	case len(s) > 3 && (strings.HasSuffix(s, "ses") || strings.HasSuffix(s, "xes") ||
		strings.HasSuffix(s, "zes") || strings.HasSuffix(s, "ches") || strings.HasSuffix(s, "shes")):
		return s[:len(s)-2]
	case len(s) > 1 && strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss"):
		return s[:len(s)-1]
	default:
		return ""
	}
}

func applyStyle(name string, style NamingStyle) string {
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	switch style {
	case UpperCamelCase:
		return string(unicode.ToUpper(r)) + name[size:]
	case LowerCase:
		return strings.ToLower(name)
	default: // CamelBack
		return string(unicode.ToLower(r)) + name[size:]
	}
}
