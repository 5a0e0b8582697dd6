// Package template resolves ${name} and ${name:-default} placeholders
// against an event's field map.
package template

import (
	"strings"

	"graylog-slack/internal/domain/model"
)

const (
	openToken        = "${"
	closeToken       = "}"
	defaultDelimiter = ":-"
)

// Resolve replaces every placeholder in tmpl with its value from fields.
// A nil field map leaves the template untouched.
func Resolve(tmpl string, fields model.FieldMap) string {
	return ResolveWithPrefix(tmpl, "", fields)
}

// ResolveWithPrefix works like Resolve but prepends prefix to every
// placeholder that resolves to a non-empty value.
func ResolveWithPrefix(tmpl, prefix string, fields model.FieldMap) string {
	if tmpl == "" || fields == nil {
		return tmpl
	}

	var b strings.Builder
	b.Grow(len(tmpl))

	rest := tmpl
	for {
		start := strings.Index(rest, openToken)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(openToken):], closeToken)
		if end < 0 {
			// Unterminated placeholder: the remainder is kept as written.
			break
		}

		b.WriteString(rest[:start])
		body := rest[start+len(openToken) : start+len(openToken)+end]
		if value := lookup(body, fields); value != "" {
			b.WriteString(prefix)
			b.WriteString(value)
		}
		rest = rest[start+len(openToken)+end+len(closeToken):]
	}
	b.WriteString(rest)

	return b.String()
}

// lookup splits the placeholder body on the first default delimiter and
// returns the field value, falling back to the default when the field is
// missing or empty.
func lookup(body string, fields model.FieldMap) string {
	key, def, hasDefault := strings.Cut(body, defaultDelimiter)
	if value, ok := fields.String(key); ok && value != "" {
		return value
	}
	if hasDefault {
		return def
	}
	return ""
}
