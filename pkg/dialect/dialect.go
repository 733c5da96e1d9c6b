// Package dialect provides SQL dialect configuration used by the parser and
// the printer.
//
// Concrete dialects are registered from pkg/dialects/*/ packages in their
// init functions; import them for side effects.
package dialect

import (
	"strings"
	"unicode"
)

// IdentifierConfig describes how a dialect quotes identifiers.
type IdentifierConfig struct {
	Quote    string // opening quote, e.g. `"` or "`"
	QuoteEnd string // closing quote
	Escape   string // how a closing quote is escaped inside a quoted name
}

// Dialect is pure configuration data for one SQL dialect.
type Dialect struct {
	Name        string
	Identifiers IdentifierConfig

	// Parser features
	SupportsCastOperator bool // expr::type
	SupportsTop          bool // SELECT TOP n
	SupportsQualify      bool
	SupportsIlike        bool
	MinusIsExcept        bool // MINUS as a set operator

	// Types maps upper-case type names written in any dialect to the spelling
	// this dialect expects when rendering.
	Types map[string]string

	// BareTypes overrides Types for names written without parameters, so
	// VARCHAR can become STRING while VARCHAR(20) keeps its length.
	BareTypes map[string]string
}

// QuoteIdent returns name as it must be written in this dialect: bare when
// it is a plain lower-case-safe identifier that is not reserved, otherwise
// quoted with the dialect's quote characters.
func (d *Dialect) QuoteIdent(name string, reserved func(string) bool) string {
	if name == "*" || (isSafeIdent(name) && (reserved == nil || !reserved(name))) {
		return name
	}
	q, qe := d.Identifiers.Quote, d.Identifiers.QuoteEnd
	if q == "" {
		return name
	}
	if qe == "" {
		qe = q
	}
	escaped := name
	if d.Identifiers.Escape != "" {
		escaped = strings.ReplaceAll(name, qe, d.Identifiers.Escape)
	}
	return q + escaped + qe
}

// TypeName returns the spelling of a source type name in this dialect.
func (d *Dialect) TypeName(name string) string {
	if mapped, ok := d.Types[strings.ToUpper(name)]; ok {
		return mapped
	}
	return name
}

// BareTypeName is TypeName for a type written without parameters.
func (d *Dialect) BareTypeName(name string) string {
	if mapped, ok := d.BareTypes[strings.ToUpper(name)]; ok {
		return mapped
	}
	return d.TypeName(name)
}

func isSafeIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
		case unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
