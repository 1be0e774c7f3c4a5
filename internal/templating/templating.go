// Package templating fills HTML contract templates with signer data and injects the
// drawn signature into the template's signature placeholder.
package templating

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"slices"
	"strings"
)

// PlaceholderID identifies the element whose body receives the signature image.
const PlaceholderID = "signature-placeholder"

var ErrUnknownVariable = errors.New("unknown template variable")

var (
	variablePattern    = regexp.MustCompile(`\{\{(\w+)\}\}`)
	placeholderPattern = regexp.MustCompile(`(?is)<div\s+id="` + PlaceholderID + `"[^>]*>\s*</div>`)
)

// Engine substitutes {{identifier}} tokens. Unknown identifiers become the empty
// string unless Strict is set.
type Engine struct {
	Strict bool
}

// Substitute replaces every {{identifier}} in markup with its html-escaped value.
// Markup without tokens is returned unchanged, so applying Substitute to its own
// output is a no-op.
func (e Engine) Substitute(markup string, vars map[string]string) (string, error) {
	var unknown []string

	out := variablePattern.ReplaceAllStringFunc(markup, func(token string) string {
		name := token[2 : len(token)-2]
		v, ok := vars[name]
		if !ok {
			if !slices.Contains(unknown, name) {
				unknown = append(unknown, name)
			}
			return ""
		}
		return html.EscapeString(v)
	})

	if e.Strict && len(unknown) > 0 {
		return "", fmt.Errorf("%w: %s", ErrUnknownVariable, strings.Join(unknown, ", "))
	}
	return out, nil
}

// Unknown lists the identifiers in markup that vars does not define, in order of
// first appearance.
func Unknown(markup string, vars map[string]string) []string {
	var names []string
	for _, m := range variablePattern.FindAllStringSubmatch(markup, -1) {
		if _, ok := vars[m[1]]; !ok && !slices.Contains(names, m[1]) {
			names = append(names, m[1])
		}
	}
	return names
}

// InjectSignature replaces the empty signature placeholder element with one holding
// the signature image. Markup is returned unchanged when signature is empty or the
// placeholder has already been filled.
func InjectSignature(markup, signature string) string {
	if signature == "" {
		return markup
	}

	loc := placeholderPattern.FindStringIndex(markup)
	if loc == nil {
		return markup
	}

	block := fmt.Sprintf(
		`<div id="%s" class="signature-box"><img src="%s" alt="İmza" class="signature-img" style="max-width:180px;max-height:70px;object-fit:contain;" /></div>`,
		PlaceholderID, html.EscapeString(signature),
	)
	return markup[:loc[0]] + block + markup[loc[1]:]
}
