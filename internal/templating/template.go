// Package templating fills {Field} placeholders in email templates from a
// row's values.
package templating

import (
	"context"
	"strings"

	"csvdash/domain/dataset"
	"csvdash/internal/errors"
)

// Render replaces every {Name} in template with the string form of
// rec[Name]. "{{" and "}}" produce literal braces and an unterminated "{" is
// kept as written. A name that is not a field of rec fails the whole render
// with a MissingFieldError; a field holding a missing value renders empty.
func Render(template string, rec dataset.Record) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		c := template[i]
		switch {
		case c == '{' && strings.HasPrefix(template[i:], "{{"):
			b.WriteByte('{')
			i += 2
		case c == '}' && strings.HasPrefix(template[i:], "}}"):
			b.WriteByte('}')
			i += 2
		case c == '{':
			end := strings.IndexAny(template[i+1:], "{}")
			if end < 0 || template[i+1+end] == '{' {
				b.WriteByte(c)
				i++
				continue
			}
			name := template[i+1 : i+1+end]
			v, ok := rec[name]
			if !ok {
				return "", &errors.MissingFieldError{Field: name}
			}
			b.WriteString(v.String())
			i += end + 2
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// Placeholders lists the distinct field names template refers to, in order
// of first use.
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for i := 0; i < len(template); i++ {
		switch {
		case strings.HasPrefix(template[i:], "{{"), strings.HasPrefix(template[i:], "}}"):
			i++
		case template[i] == '{':
			end := strings.IndexAny(template[i+1:], "{}")
			if end < 0 || template[i+1+end] == '{' {
				continue
			}
			name := template[i+1 : i+1+end]
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			i += end + 1
		}
	}
	return names
}

// Generator renders templates locally. It satisfies ports.EmailGenerator.
type Generator struct{}

// NewGenerator returns a local template generator.
func NewGenerator() *Generator { return &Generator{} }

// GenerateEmail renders template against row.
func (g *Generator) GenerateEmail(_ context.Context, template string, row dataset.Record) (string, error) {
	return Render(template, row)
}
