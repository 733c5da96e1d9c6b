// Package databricks provides the Databricks SQL dialect definition.
package databricks

import "github.com/leapstack-labs/transql/pkg/dialect"

// Name is the registry name of the dialect.
const Name = "databricks"

func init() {
	dialect.Register(Databricks)
}

// Databricks is the Databricks SQL dialect configuration.
var Databricks = &dialect.Dialect{
	Name: Name,
	Identifiers: dialect.IdentifierConfig{
		Quote:    "`",
		QuoteEnd: "`",
		Escape:   "``",
	},
	SupportsCastOperator: true,
	SupportsQualify:      true,
	SupportsIlike:        true,
	Types: map[string]string{
		"TEXT":                   "STRING",
		"BPCHAR":                 "STRING",
		"NVARCHAR":               "VARCHAR",
		"CHARACTER VARYING":      "VARCHAR",
		"DOUBLE PRECISION":       "DOUBLE",
		"FLOAT8":                 "DOUBLE",
		"FLOAT4":                 "FLOAT",
		"REAL":                   "FLOAT",
		"INT2":                   "SMALLINT",
		"INT4":                   "INT",
		"INTEGER":                "INT",
		"INT8":                   "BIGINT",
		"BOOL":                   "BOOLEAN",
		"NUMERIC":                "DECIMAL",
		"TIMESTAMPTZ":            "TIMESTAMP",
		"SUPER":                  "STRING",
		"VARCHAR(MAX)":           "STRING",
		"NVARCHAR(MAX)":          "STRING",
		"CHARACTER VARYING(MAX)": "STRING",
	},
	BareTypes: map[string]string{
		"VARCHAR":           "STRING",
		"NVARCHAR":          "STRING",
		"CHARACTER VARYING": "STRING",
	},
}
