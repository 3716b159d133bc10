package agent

import (
	"fmt"
	"strings"

	"github.com/askdb/askdb/internal/schema"
)

// PromptInput gathers everything the condition prompt is rendered from. The
// composer itself is pure; the live distinct-value and sample fetches happen
// in the agent before it is called.
type PromptInput struct {
	Table         *schema.TableDescriptor
	TargetColumn  string
	MatchOperator string // engine's case-insensitive pattern operator
	DomainContext string
	// ContextValues holds, per context column, its complete distinct-value
	// set in ascending order. ContextOrder fixes iteration order.
	ContextOrder  []string
	ContextValues map[string][]Value
	// Samples holds a short example-value preview per column.
	Samples map[string][]Value
}

// ComposeConditionPrompt renders the system prompt instructing the model to
// emit only a WHERE-clause body for the fixed-column query.
func ComposeConditionPrompt(in PromptInput) string {
	var b strings.Builder

	if ctx := strings.TrimSpace(in.DomainContext); ctx != "" {
		b.WriteString(ctx)
		b.WriteString("\n\n")
	}

	table := in.Table.Name
	fmt.Fprintf(&b, "You are an expert at converting natural language questions into SQL WHERE clauses.\n\n")
	fmt.Fprintf(&b, "Table: %s\n\n", table)

	if len(in.ContextOrder) > 0 {
		b.WriteString("---\n### Context: the actual values contained in some of the columns.\n")
		for _, col := range in.ContextOrder {
			values, ok := in.ContextValues[col]
			if !ok || len(values) == 0 {
				continue
			}
			fmt.Fprintf(&b, "- '%s' column values: [%s]\n", col, joinLiterals(values))
		}
		b.WriteString("---\n")
	}

	b.WriteString("### All available columns\n")
	for _, col := range in.Table.Columns {
		fmt.Fprintf(&b, "- %s (examples: %s)\n", col.Name, joinLiterals(in.Samples[col.Name]))
	}
	b.WriteString("---\n\n")

	op := in.MatchOperator
	if op == "" {
		op = "ILIKE"
	}
	b.WriteString("### Instructions\n")
	fmt.Fprintf(&b, "1. Based on the user's question, generate only the WHERE clause body for a `SELECT %s FROM %s` query.\n", in.TargetColumn, table)
	b.WriteString("2. Do not include the WHERE keyword in your response.\n")
	fmt.Fprintf(&b, "3. Use %s for case-insensitive string comparisons.\n", op)
	b.WriteString("4. If no conditions are needed, return an empty string.\n\n")

	b.WriteString("### Examples\n")
	fmt.Fprintf(&b, "- Question: \"Which entry is at the outermost edge?\"\n")
	fmt.Fprintf(&b, "  Answer: x_coord = (SELECT MIN(x_coord) FROM %s) OR x_coord = (SELECT MAX(x_coord) FROM %s)\n", table, table)
	fmt.Fprintf(&b, "- Question: \"Maelstrom gangs in the Watson area?\"\n")
	fmt.Fprintf(&b, "  Answer: region %s '%%Watson%%' AND gang_name %s '%%Maelstrom%%'\n", op, op)

	return b.String()
}

// ComposeQuestion renders the user turn.
func ComposeQuestion(question string) string {
	return "Question: " + question
}

func joinLiterals(values []Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.Literal()
	}
	return strings.Join(parts, ", ")
}
