// Package agent implements the question-to-condition pipeline: compose a
// prompt from a cached schema snapshot, extract a WHERE-clause body from the
// model response, and execute the fixed-shape query.
package agent

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/llm"
	"github.com/askdb/askdb/internal/schema"
)

// Result is the discriminated outcome of one pipeline run. Err is nil on
// success. SQL is populated whenever a statement was rendered, including on
// execution failures.
type Result struct {
	Question string
	SQL      string
	Where    string
	Values   []Value
	Columns  []string
	Rows     [][]Value
	Err      *Error
}

// OK reports whether the run succeeded.
func (r *Result) OK() bool { return r.Err == nil }

// Agent answers natural-language questions against one configured table,
// selecting one configured column and varying only the filter condition.
// Concurrent Ask calls share only the immutable snapshot and the pool;
// RefreshSchema swaps the snapshot pointer atomically.
type Agent struct {
	db        database.Adapter
	completer llm.Completer // nil when no backend is configured
	cfg       config.AgentConfig
	llmCfg    config.LLMConfig
	inspector *schema.Inspector
	log       *zap.SugaredLogger

	snapshot      atomic.Pointer[schema.Snapshot]
	domainContext atomic.Pointer[string]
}

// New builds the agent and takes the initial schema snapshot. A table whose
// columns cannot be listed is fatal here: the agent never starts with a
// partial view of its one table.
func New(ctx context.Context, db database.Adapter, completer llm.Completer, cfg config.AgentConfig, llmCfg config.LLMConfig, log *zap.SugaredLogger) (*Agent, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if cfg.Table == "" || cfg.Column == "" {
		return nil, newError(KindConfiguration, "target table and column must be configured")
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = config.DefaultMaxResults
	}
	if cfg.SampleLimit <= 0 {
		cfg.SampleLimit = config.DefaultSampleLimit
	}

	a := &Agent{
		db:        db,
		completer: completer,
		cfg:       cfg,
		llmCfg:    llmCfg,
		inspector: schema.NewInspector(db, cfg.SampleLimit, log),
		log:       log,
	}
	a.SetDomainContext(cfg.DomainContext)

	if err := a.RefreshSchema(ctx); err != nil {
		return nil, err
	}
	snap := a.snapshot.Load()
	log.Debugw("agent initialized",
		"table", cfg.Table,
		"column", cfg.Column,
		"columns", len(snap.Table(cfg.Table).Columns),
		"backend_configured", completer != nil,
	)
	return a, nil
}

// RefreshSchema re-introspects the target table and atomically replaces the
// snapshot. In-flight Ask calls keep reading the snapshot they started with.
func (a *Agent) RefreshSchema(ctx context.Context) error {
	snap, err := a.inspector.BuildSnapshot(ctx, a.engineName(), a.cfg.Table)
	if err != nil {
		return wrapError(KindIntrospection, err, "failed to introspect table %s", a.cfg.Table)
	}
	a.snapshot.Store(snap)
	return nil
}

// ListColumns returns the target table's column names in introspection order.
func (a *Agent) ListColumns() []string {
	snap := a.snapshot.Load()
	if snap == nil {
		return nil
	}
	if t := snap.Table(a.cfg.Table); t != nil {
		return t.ColumnNames()
	}
	return nil
}

// DescribeTable returns the structured descriptor for diagnostic display.
func (a *Agent) DescribeTable(name string) (*schema.TableDescriptor, error) {
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

// Snapshot exposes the current snapshot for display.
func (a *Agent) Snapshot() *schema.Snapshot {
	return a.snapshot.Load()
}

// SetDomainContext installs free-text domain guidance prepended to the
// condition prompt.
func (a *Agent) SetDomainContext(ctx string) {
	a.domainContext.Store(&ctx)
}

// Ask runs the full pipeline for one question. Every failure comes back as a
// structured Result; nothing here panics or tears down the caller's loop.
func (a *Agent) Ask(ctx context.Context, question string) *Result {
	res := &Result{Question: question}
	requestID := uuid.NewString()

	snap := a.snapshot.Load()
	table := snap.Table(a.cfg.Table)
	if table == nil || !table.HasColumn(a.cfg.Column) {
		res.Err = newError(KindIntrospection,
			"column %q does not exist in table %q", a.cfg.Column, a.cfg.Table)
		return res
	}

	where, err := a.AnalyzeQuestion(ctx, question)
	if err != nil {
		res.Err = wrapError(KindBackendUnavailable, err, "failed to analyze question")
		return res
	}
	a.log.Debugw("extracted condition", "request_id", requestID, "where", where)

	exec := a.ExecuteFixedQuery(ctx, where)
	exec.Question = question
	return exec
}

// AnalyzeQuestion composes the prompt, calls the backend, and sanitizes the
// response into a WHERE-clause body. An empty string means no filter.
func (a *Agent) AnalyzeQuestion(ctx context.Context, question string) (string, error) {
	if a.completer == nil {
		return "", fmt.Errorf("no text-generation backend is configured")
	}

	snap := a.snapshot.Load()
	table := snap.Table(a.cfg.Table)

	in := PromptInput{
		Table:         table,
		TargetColumn:  a.cfg.Column,
		MatchOperator: a.db.PatternMatchOperator(),
		ContextValues: make(map[string][]Value),
		Samples:       make(map[string][]Value),
	}
	if dc := a.domainContext.Load(); dc != nil {
		in.DomainContext = *dc
	}

	// Live fetches: full distinct sets for context columns, short previews
	// for every column. Connections are scoped per fetch and released
	// before the backend call below.
	for _, col := range a.cfg.ContextColumns {
		if !table.HasColumn(col) {
			a.log.Warnw("context column not present in table, skipping", "column", col)
			continue
		}
		values, err := a.db.DistinctValues(ctx, a.cfg.Table, col)
		if err != nil {
			a.log.Warnw("failed to fetch distinct values for context column", "column", col, "error", err)
			continue
		}
		in.ContextOrder = append(in.ContextOrder, col)
		in.ContextValues[col] = toValues(values)
	}
	for _, col := range table.Columns {
		values, err := a.db.SampleValues(ctx, a.cfg.Table, col.Name, a.cfg.SampleLimit)
		if err != nil {
			a.log.Warnw("failed to fetch sample values", "column", col.Name, "error", err)
			continue
		}
		in.Samples[col.Name] = toValues(values)
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: ComposeConditionPrompt(in)},
		{Role: llm.RoleUser, Content: ComposeQuestion(question)},
	}
	raw, err := a.completer.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	return SanitizeCondition(raw), nil
}

// ExecuteFixedQuery runs SELECT <column> FROM <table> [WHERE <cond>]
// LIMIT <n> and returns the ordered scalar values of the projected column.
// An empty condition simply omits the WHERE clause.
func (a *Agent) ExecuteFixedQuery(ctx context.Context, whereCondition string) *Result {
	res := &Result{Where: whereCondition}

	snap := a.snapshot.Load()
	table := snap.Table(a.cfg.Table)
	if table == nil || !table.HasColumn(a.cfg.Column) {
		res.Err = newError(KindIntrospection,
			"column %q does not exist in table %q", a.cfg.Column, a.cfg.Table)
		return res
	}

	sql, _, rows, err := a.db.Select(ctx,
		a.db.QuoteIdentifier(a.cfg.Column), a.cfg.Table, whereCondition, a.cfg.MaxResults)
	res.SQL = sql
	if err != nil {
		res.Err = &Error{Kind: KindExecution, Msg: "query execution failed", SQL: sql, Err: err}
		return res
	}

	res.Values = make([]Value, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			res.Values = append(res.Values, ValueFromAny(row[0]))
		}
	}
	a.log.Debugw("fixed query executed", "sql", sql, "rows", len(res.Values))
	return res
}

// SampleValues exposes a short distinct-value preview for one column.
func (a *Agent) SampleValues(ctx context.Context, column string, limit int) ([]Value, error) {
	snap := a.snapshot.Load()
	if t := snap.Table(a.cfg.Table); t == nil || !t.HasColumn(column) {
		return nil, newError(KindIntrospection, "column %q does not exist in table %q", column, a.cfg.Table)
	}
	values, err := a.db.SampleValues(ctx, a.cfg.Table, column, limit)
	if err != nil {
		return nil, wrapError(KindExecution, err, "failed to fetch sample values for %s", column)
	}
	return toValues(values), nil
}

// DistinctValues exposes the complete ascending distinct-value set for one
// column.
func (a *Agent) DistinctValues(ctx context.Context, column string) ([]Value, error) {
	snap := a.snapshot.Load()
	if t := snap.Table(a.cfg.Table); t == nil || !t.HasColumn(column) {
		return nil, newError(KindIntrospection, "column %q does not exist in table %q", column, a.cfg.Table)
	}
	values, err := a.db.DistinctValues(ctx, a.cfg.Table, column)
	if err != nil {
		return nil, wrapError(KindExecution, err, "failed to fetch distinct values for %s", column)
	}
	return toValues(values), nil
}

func (a *Agent) engineName() string {
	if db, ok := a.db.(*database.DB); ok {
		return db.Config.Dialect
	}
	return "sql"
}

func toValues(raw []any) []Value {
	values := make([]Value, len(raw))
	for i, v := range raw {
		values[i] = ValueFromAny(v)
	}
	return values
}
