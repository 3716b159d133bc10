package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdb/askdb/internal/config"
	"github.com/askdb/askdb/internal/database"
	"github.com/askdb/askdb/internal/llm"
)

// fakeAdapter is an in-memory database.Adapter. Select renders the same
// fixed-shape SQL the real adapter does so failure results carry a realistic
// attempted statement.
type fakeAdapter struct {
	columns     []database.ColumnInfo
	columnsErr  error
	selectRows  [][]any
	selectErr   error
	selectCalls int
	lastWhere   string
	samples     map[string][]any
	distinct    map[string][]any
	execColumns []string
	execRows    [][]any
	execErr     error
	lastExec    string
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		columns: []database.ColumnInfo{
			{Name: "gang_name", DataType: "text", Nullable: false},
			{Name: "region", DataType: "text", Nullable: true},
			{Name: "x_coord", DataType: "integer", Nullable: true},
		},
		selectRows: [][]any{{"Maelstrom"}, {"Tyger Claws"}},
		samples:    map[string][]any{},
		distinct:   map[string][]any{},
	}
}

func (f *fakeAdapter) ListTables(ctx context.Context) ([]string, error) {
	return []string{"gangs"}, nil
}

func (f *fakeAdapter) ListColumns(ctx context.Context, tableName string) ([]database.ColumnInfo, error) {
	if f.columnsErr != nil {
		return nil, f.columnsErr
	}
	return f.columns, nil
}

func (f *fakeAdapter) SampleRows(ctx context.Context, tableName string, limit int) ([]map[string]any, error) {
	return nil, nil
}

func (f *fakeAdapter) SampleValues(ctx context.Context, tableName, columnName string, limit int) ([]any, error) {
	return f.samples[columnName], nil
}

func (f *fakeAdapter) DistinctValues(ctx context.Context, tableName, columnName string) ([]any, error) {
	return f.distinct[columnName], nil
}

func (f *fakeAdapter) Select(ctx context.Context, projection, tableName, whereCondition string, limit int) (string, []string, [][]any, error) {
	f.selectCalls++
	f.lastWhere = whereCondition
	query := fmt.Sprintf("SELECT %s FROM %s", projection, tableName)
	if whereCondition != "" {
		query += " WHERE " + whereCondition
	}
	query += fmt.Sprintf(" LIMIT %d", limit)
	if f.selectErr != nil {
		return query, nil, nil, f.selectErr
	}
	return query, []string{projection}, f.selectRows, nil
}

func (f *fakeAdapter) Exec(ctx context.Context, query string) ([]string, [][]any, error) {
	f.lastExec = query
	if f.execErr != nil {
		return nil, nil, f.execErr
	}
	return f.execColumns, f.execRows, nil
}

func (f *fakeAdapter) QuoteIdentifier(name string) string { return `"` + name + `"` }
func (f *fakeAdapter) PatternMatchOperator() string       { return "ILIKE" }
func (f *fakeAdapter) Ping(ctx context.Context) error     { return nil }
func (f *fakeAdapter) Close() error                       { return nil }

// fakeCompleter returns a canned response or error and counts calls.
type fakeCompleter struct {
	response string
	err      error
	calls    int
	messages []llm.Message
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	f.calls++
	f.messages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeCompleter) Close() error { return nil }

func agentConfig() config.AgentConfig {
	return config.AgentConfig{
		Table:      "gangs",
		Column:     "gang_name",
		MaxResults: 10,
	}
}

func TestNewRequiresTableAndColumn(t *testing.T) {
	_, err := New(context.Background(), newFakeAdapter(), nil, config.AgentConfig{}, config.LLMConfig{}, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindConfiguration))
}

func TestNewFailsWhenColumnsUnreadable(t *testing.T) {
	db := newFakeAdapter()
	db.columnsErr = errors.New("relation does not exist")
	_, err := New(context.Background(), db, nil, agentConfig(), config.LLMConfig{}, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindIntrospection))
}

func TestAskMissingTargetColumnSkipsBackend(t *testing.T) {
	cfg := agentConfig()
	cfg.Column = "ghost"
	completer := &fakeCompleter{response: "region = 1"}
	a, err := New(context.Background(), newFakeAdapter(), completer, cfg, config.LLMConfig{}, nil)
	require.NoError(t, err)

	db := a.db.(*fakeAdapter)
	res := a.Ask(context.Background(), "anything")
	require.False(t, res.OK())
	assert.Equal(t, KindIntrospection, res.Err.Kind)
	assert.Contains(t, res.Err.Msg, `"ghost"`)
	assert.Zero(t, completer.calls, "backend must not be called for a missing column")
	assert.Zero(t, db.selectCalls, "executor must not be reached")
}

func TestAskBackendUnavailableNeverExecutes(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("connection refused")}
	a, err := New(context.Background(), newFakeAdapter(), completer, agentConfig(), config.LLMConfig{}, nil)
	require.NoError(t, err)

	db := a.db.(*fakeAdapter)
	res := a.Ask(context.Background(), "gangs in Watson?")
	require.False(t, res.OK())
	assert.Equal(t, KindBackendUnavailable, res.Err.Kind)
	assert.ErrorIs(t, res.Err, completer.err)
	assert.Zero(t, db.selectCalls, "executor must not be reached when the backend fails")
}

func TestAskWithoutBackendConfigured(t *testing.T) {
	a, err := New(context.Background(), newFakeAdapter(), nil, agentConfig(), config.LLMConfig{}, nil)
	require.NoError(t, err)

	res := a.Ask(context.Background(), "gangs in Watson?")
	require.False(t, res.OK())
	assert.Equal(t, KindBackendUnavailable, res.Err.Kind)
}

func TestAskEmptyConditionOmitsWhere(t *testing.T) {
	completer := &fakeCompleter{response: ""}
	a, err := New(context.Background(), newFakeAdapter(), completer, agentConfig(), config.LLMConfig{}, nil)
	require.NoError(t, err)

	db := a.db.(*fakeAdapter)
	res := a.Ask(context.Background(), "list everything")
	require.True(t, res.OK(), "err: %v", res.Err)
	assert.Equal(t, 1, db.selectCalls)
	assert.Empty(t, db.lastWhere)
	assert.Equal(t, `SELECT "gang_name" FROM gangs LIMIT 10`, res.SQL)
	require.Len(t, res.Values, 2)
	assert.Equal(t, "Maelstrom", res.Values[0].String())
}

func TestAskSanitizesModelOutput(t *testing.T) {
	completer := &fakeCompleter{response: "```sql\nWHERE region ILIKE '%Watson%'\n```"}
	a, err := New(context.Background(), newFakeAdapter(), completer, agentConfig(), config.LLMConfig{}, nil)
	require.NoError(t, err)

	res := a.Ask(context.Background(), "gangs in Watson?")
	require.True(t, res.OK(), "err: %v", res.Err)
	assert.Equal(t, "region ILIKE '%Watson%'", res.Where)
	assert.Equal(t, `SELECT "gang_name" FROM gangs WHERE region ILIKE '%Watson%' LIMIT 10`, res.SQL)
}

func TestExecuteFixedQueryErrorCarriesSQL(t *testing.T) {
	a, err := New(context.Background(), newFakeAdapter(), nil, agentConfig(), config.LLMConfig{}, nil)
	require.NoError(t, err)

	db := a.db.(*fakeAdapter)
	db.selectErr = errors.New(`syntax error at or near "frm"`)
	res := a.ExecuteFixedQuery(context.Background(), "region = 1")
	require.False(t, res.OK())
	assert.Equal(t, KindExecution, res.Err.Kind)
	assert.Equal(t, `SELECT "gang_name" FROM gangs WHERE region = 1 LIMIT 10`, res.Err.SQL)
	assert.ErrorIs(t, res.Err, db.selectErr)
}

func TestListColumnsStableAcrossRefresh(t *testing.T) {
	a, err := New(context.Background(), newFakeAdapter(), nil, agentConfig(), config.LLMConfig{}, nil)
	require.NoError(t, err)

	before := a.ListColumns()
	require.NoError(t, a.RefreshSchema(context.Background()))
	after := a.ListColumns()
	assert.Equal(t, before, after)
	assert.Equal(t, []string{"gang_name", "region", "x_coord"}, after)
}

func TestAnalyzeQuestionEmbedsContextColumnValues(t *testing.T) {
	cfg := agentConfig()
	cfg.ContextColumns = []string{"region", "no_such_column"}
	db := newFakeAdapter()
	db.distinct["region"] = []any{"Watson", "Westbrook"}
	completer := &fakeCompleter{response: "region = 'Watson'"}
	a, err := New(context.Background(), db, completer, cfg, config.LLMConfig{}, nil)
	require.NoError(t, err)

	where, err := a.AnalyzeQuestion(context.Background(), "gangs in Watson?")
	require.NoError(t, err)
	assert.Equal(t, "region = 'Watson'", where)
	require.Len(t, completer.messages, 2)
	assert.Equal(t, llm.RoleSystem, completer.messages[0].Role)
	assert.Contains(t, completer.messages[0].Content, "'Watson', 'Westbrook'")
	assert.NotContains(t, completer.messages[0].Content, "no_such_column")
	assert.Equal(t, "Question: gangs in Watson?", completer.messages[1].Content)
}

func TestSetDomainContextAppearsInPrompt(t *testing.T) {
	completer := &fakeCompleter{response: ""}
	a, err := New(context.Background(), newFakeAdapter(), completer, agentConfig(), config.LLMConfig{}, nil)
	require.NoError(t, err)

	a.SetDomainContext("The table lists Night City gangs.")
	_, err = a.AnalyzeQuestion(context.Background(), "anything")
	require.NoError(t, err)
	assert.Contains(t, completer.messages[0].Content, "The table lists Night City gangs.")
}
