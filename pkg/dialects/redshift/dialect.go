// Package redshift provides the Amazon Redshift SQL dialect definition.
package redshift

import "github.com/leapstack-labs/transql/pkg/dialect"

// Name is the registry name of the dialect.
const Name = "redshift"

func init() {
	dialect.Register(Redshift)
}

// Redshift is the Amazon Redshift dialect configuration.
var Redshift = &dialect.Dialect{
	Name: Name,
	Identifiers: dialect.IdentifierConfig{
		Quote:    `"`,
		QuoteEnd: `"`,
		Escape:   `""`,
	},
	SupportsCastOperator: true,
	SupportsTop:          true,
	SupportsQualify:      true,
	SupportsIlike:        true,
	MinusIsExcept:        true,
}
