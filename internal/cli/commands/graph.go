package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/transql/internal/cli/output"
	"github.com/leapstack-labs/transql/internal/translate"
	"github.com/spf13/cobra"
)

// GraphNode describes one CTE in graph output.
type GraphNode struct {
	Name         string   `json:"name" yaml:"name"`
	Columns      []string `json:"columns,omitempty" yaml:"columns,omitempty"`
	Synthetic    bool     `json:"synthetic" yaml:"synthetic"`
	References   []string `json:"references" yaml:"references"`
	ReferencedBy []string `json:"referenced_by" yaml:"referenced_by"`
	Aliases      []string `json:"aliases" yaml:"aliases"`
}

// StatementGraph describes the CTE graph of one statement.
type StatementGraph struct {
	Statement int         `json:"statement" yaml:"statement"`
	Hoisted   int         `json:"hoisted" yaml:"hoisted"`
	Order     []string    `json:"order" yaml:"order"`
	Nodes     []GraphNode `json:"nodes" yaml:"nodes"`
}

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "graph <input>",
		Short: "Show the CTE dependency graph of a SQL file",
		Long: `Translate <input> in memory and print, for every statement, the CTEs it
produces (including the ones created for reused select aliases), what each
reads from and the order they are emitted in.`,
		Example: `  # Show the graph as a table
  transql graph models/orders.sql

  # Output as JSON
  transql graph models/orders.sql --output json`,
		Args: cobra.ExactArgs(1),
		RunE: runGraph,
	}
}

func runGraph(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	tr, err := cmdCtx.Translator()
	if err != nil {
		return err
	}

	res, err := translateSource(cmd.Context(), tr, args[0])
	if err != nil {
		return err
	}

	graphs := describeGraphs(res)
	r := cmdCtx.Renderer
	if ok, err := r.Structured(graphs); ok {
		return err
	}
	graphText(r, graphs)
	return nil
}

func describeGraphs(res *translate.Result) []StatementGraph {
	graphs := make([]StatementGraph, 0, len(res.Statements))
	for i, stmt := range res.Statements {
		sg := StatementGraph{
			Statement: i + 1,
			Hoisted:   stmt.Hoisted,
			Order:     nonNil(stmt.Order),
			Nodes:     make([]GraphNode, 0, stmt.Graph.Len()),
		}
		for _, node := range stmt.Graph.Nodes() {
			aliases := make([]string, 0, len(node.Aliases))
			for alias := range node.Aliases {
				aliases = append(aliases, alias)
			}
			sort.Strings(aliases)

			sg.Nodes = append(sg.Nodes, GraphNode{
				Name:         node.Name,
				Columns:      node.Columns,
				Synthetic:    node.Synthetic,
				References:   nonNil(node.References),
				ReferencedBy: nonNil(node.ReferencedBy),
				Aliases:      aliases,
			})
		}
		graphs = append(graphs, sg)
	}
	return graphs
}

func graphText(r *output.Renderer, graphs []StatementGraph) {
	styles := r.Styles()
	for i, sg := range graphs {
		if i > 0 {
			r.Println("")
		}
		r.Header(1, fmt.Sprintf("Statement %d", sg.Statement))
		if len(sg.Nodes) == 0 {
			r.Println(r.Paint(styles.Muted, "no CTEs"))
			continue
		}

		rows := make([]table.Row, 0, len(sg.Nodes))
		for _, node := range sg.Nodes {
			rows = append(rows, table.Row{
				r.Paint(styles.Name, node.Name),
				yesNo(node.Synthetic),
				strings.Join(node.References, ", "),
				strings.Join(node.ReferencedBy, ", "),
				strings.Join(node.Aliases, ", "),
			})
		}
		r.Table(table.Row{"CTE", "Synthetic", "References", "Referenced By", "Aliases"}, rows)
		r.Printf("%s %s\n", r.Paint(styles.Muted, "order:"), strings.Join(sg.Order, " -> "))
		if sg.Hoisted > 0 {
			r.Printf("%s %d\n", r.Paint(styles.Muted, "hoisted clauses:"), sg.Hoisted)
		}
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
