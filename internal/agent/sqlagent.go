package agent

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/llm"
	"github.com/askdb/askdb/internal/schema"
)

// SQLAgent is the general variant: it generates and executes complete SQL
// statements over every table in the snapshot and returns tabular results.
type SQLAgent struct {
	db         database.Adapter
	completer  llm.Completer
	maxResults int
	inspector  *schema.Inspector
	log        *zap.SugaredLogger
	engine     string

	snapshot atomic.Pointer[schema.Snapshot]
}

// NewSQLAgent introspects all visible tables up front.
func NewSQLAgent(ctx context.Context, db database.Adapter, completer llm.Completer, cfg config.AgentConfig, log *zap.SugaredLogger) (*SQLAgent, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = config.DefaultMaxResults
	}

	engine := "sql"
	if d, ok := db.(*database.DB); ok {
		engine = d.Config.Dialect
	}
	a := &SQLAgent{
		db:         db,
		completer:  completer,
		maxResults: cfg.MaxResults,
		inspector:  schema.NewInspector(db, cfg.SampleLimit, log),
		log:        log,
		engine:     engine,
	}
	if err := a.RefreshSchema(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// RefreshSchema rebuilds the snapshot of every table and swaps it in
// atomically.
func (a *SQLAgent) RefreshSchema(ctx context.Context) error {
	snap, err := a.inspector.BuildAllSnapshot(ctx, a.engine)
	if err != nil {
		return wrapError(KindIntrospection, err, "failed to introspect database schema")
	}
	a.snapshot.Store(snap)
	return nil
}

// ListTables returns the snapshot's table names.
func (a *SQLAgent) ListTables() []string {
	if snap := a.snapshot.Load(); snap != nil {
		return snap.TableNames()
	}
	return nil
}

// DescribeTable returns the structured descriptor for diagnostic display.
func (a *SQLAgent) DescribeTable(name string) (*schema.TableDescriptor, error) {
	snap := a.snapshot.Load()
	if snap == nil {
		return nil, newError(KindIntrospection, "no schema snapshot available")
	}
	t := snap.Table(name)
	if t == nil {
		return nil, newError(KindIntrospection, "table %q not found in snapshot", name)
	}
	return t, nil
}

// Snapshot exposes the current snapshot.
func (a *SQLAgent) Snapshot() *schema.Snapshot {
	return a.snapshot.Load()
}

// GenerateSQL converts a question into one complete SQL statement using the
// rendered snapshot as context.
func (a *SQLAgent) GenerateSQL(ctx context.Context, question string) (string, error) {
	if a.completer == nil {
		return "", fmt.Errorf("no text-generation backend is configured")
	}
	snap := a.snapshot.Load()
	if snap == nil || snap.Len() == 0 {
		return "", fmt.Errorf("no schema snapshot loaded")
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: a.systemPrompt(snap)},
		{Role: llm.RoleUser, Content: "Generate the SQL query for this question: " + question},
	}
	raw, err := a.completer.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	return cleanGeneratedSQL(raw), nil
}

func (a *SQLAgent) systemPrompt(snap *schema.Snapshot) string {
	var b strings.Builder
	b.WriteString("You are an expert SQL query assistant for a ")
	b.WriteString(a.engine)
	b.WriteString(" database.\n\nConvert the user's natural-language request into a SQL query using this schema:\n\n")
	b.WriteString(snap.Render())
	b.WriteString("\n\nRules:\n")
	fmt.Fprintf(&b, "1. Use %s syntax.\n", a.engine)
	b.WriteString("2. Always use the exact table and column names from the schema.\n")
	fmt.Fprintf(&b, "3. Limit results to at most %d rows (use LIMIT or an equivalent).\n", a.maxResults)
	b.WriteString("4. Use JOINs where the question spans tables.\n")
	fmt.Fprintf(&b, "5. Use %s for case-insensitive string matching.\n", a.db.PatternMatchOperator())
	b.WriteString("\nRespond with the SQL query only, no explanation. Prefer SELECT statements.")
	return b.String()
}

// cleanGeneratedSQL strips markdown fences around a generated statement.
func cleanGeneratedSQL(raw string) string {
	s := strings.TrimSpace(raw)
	s = reasoningBlock.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```sql")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Ask generates, executes, and packages a full-query answer. Failures are
// structured results carrying the attempted SQL.
func (a *SQLAgent) Ask(ctx context.Context, question string) *Result {
	res := &Result{Question: question}

	generated, err := a.GenerateSQL(ctx, question)
	if err != nil {
		res.Err = wrapError(KindBackendUnavailable, err, "failed to generate SQL")
		return res
	}
	res.SQL = generated

	columns, rows, err := a.db.Exec(ctx, generated)
	if err != nil {
		res.Err = &Error{Kind: KindExecution, Msg: "query execution failed", SQL: generated, Err: err}
		return res
	}

	res.Columns = columns
	res.Rows = make([][]Value, len(rows))
	for i, row := range rows {
		res.Rows[i] = toValues(row)
	}
	a.log.Debugw("generated query executed", "sql", generated, "rows", len(res.Rows))
	return res
}
