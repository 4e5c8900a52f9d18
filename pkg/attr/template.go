package attr

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/patrickmn/go-cache"
)

// Provider resolves placeholder keys. An empty namespace means "closest
// scope first"; passToParents lets the provider delegate keys it does not
// know to its parent scope.
type Provider interface {
	AttributeValue(namespace, key string, passToParents bool) (string, bool)
}

// maxDepth bounds recursive substitution so self-referencing values terminate.
const maxDepth = 8

// maxCached bounds the number of parsed templates kept in memory.
const maxCached = 4096

// templateLexer switches into the "Var" state between {{ and }}. Whitespace is
// not allowed inside a placeholder.
var templateLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "VarOpen", Pattern: `\{\{`, Action: lexer.Push("Var")},
		{Name: "Text", Pattern: `[^{]+|\{`},
	},
	"Var": {
		{Name: "VarClose", Pattern: `\}\}`, Action: lexer.Pop()},
		{Name: "Sep", Pattern: `::`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	},
})

type template struct {
	Parts []*part `parser:"@@*"`
}

type part struct {
	Text *string   `parser:"  @Text"`
	Var  *variable `parser:"| VarOpen @@ VarClose"`
}

type variable struct {
	Namespace string `parser:"(@Ident Sep)?"`
	Key       string `parser:"@Ident"`
}

func (v *variable) String() string {
	if v.Namespace == "" {
		return "{{" + v.Key + "}}"
	}
	return "{{" + v.Namespace + "::" + v.Key + "}}"
}

var templateParser = participle.MustBuild[template](
	participle.Lexer(templateLexer),
	participle.UseLookahead(2),
)

type parseResult struct {
	tmpl *template
	err  error
}

var parsed = cache.New(cache.NoExpiration, 0)

func parseTemplate(text string) (*template, error) {
	if v, ok := parsed.Get(text); ok {
		res := v.(parseResult)
		return res.tmpl, res.err
	}
	tmpl, err := templateParser.ParseString("", text)
	if parsed.ItemCount() >= maxCached {
		parsed.Flush()
	}
	parsed.SetDefault(text, parseResult{tmpl: tmpl, err: err})
	return tmpl, err
}

// Substitute replaces {{KEY}} and {{NS::KEY}} placeholders in text with the
// values p resolves. Unknown placeholders are kept verbatim and malformed
// text is returned unchanged. Resolved values are substituted again, up to a
// fixed depth.
func Substitute(text string, p Provider) string {
	return substitute(text, p, maxDepth)
}

func substitute(text string, p Provider, depth int) string {
	if p == nil || depth == 0 || !strings.Contains(text, "{{") {
		return text
	}
	tmpl, err := parseTemplate(text)
	if err != nil {
		return text
	}
	var b strings.Builder
	for _, pt := range tmpl.Parts {
		switch {
		case pt.Text != nil:
			b.WriteString(*pt.Text)
		case pt.Var != nil:
			value, ok := p.AttributeValue(pt.Var.Namespace, pt.Var.Key, true)
			if !ok {
				b.WriteString(pt.Var.String())
				continue
			}
			b.WriteString(substitute(value, p, depth-1))
		}
	}
	return b.String()
}

// Placeholders returns the placeholders used in text, in order of
// appearance, formatted as KEY or NS::KEY.
func Placeholders(text string) []string {
	if !strings.Contains(text, "{{") {
		return nil
	}
	tmpl, err := parseTemplate(text)
	if err != nil {
		return nil
	}
	var out []string
	for _, pt := range tmpl.Parts {
		if pt.Var == nil {
			continue
		}
		if pt.Var.Namespace == "" {
			out = append(out, pt.Var.Key)
		} else {
			out = append(out, pt.Var.Namespace+"::"+pt.Var.Key)
		}
	}
	return out
}
