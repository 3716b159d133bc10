package schema

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/askdb/askdb/internal/database"
)

// Inspector builds snapshots from a live database. Column discovery is
// mandatory; sample-row collection is best effort and degrades to an empty
// sample set without failing the snapshot.
type Inspector struct {
	db          database.Adapter
	sampleLimit int
	log         *zap.SugaredLogger
}

func NewInspector(db database.Adapter, sampleLimit int, log *zap.SugaredLogger) *Inspector {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if sampleLimit <= 0 {
		sampleLimit = 3
	}
	return &Inspector{db: db, sampleLimit: sampleLimit, log: log}
}

// BuildSnapshot introspects the named tables and assembles an immutable
// snapshot. A table whose columns cannot be listed fails the whole build;
// the caller never sees a partially populated table.
func (in *Inspector) BuildSnapshot(ctx context.Context, engine string, tableNames ...string) (*Snapshot, error) {
	tables := make([]*TableDescriptor, 0, len(tableNames))
	for _, name := range tableNames {
		t, err := in.BuildTable(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
		in.log.Debugw("introspected table", "table", name, "columns", len(t.Columns))
	}
	return NewSnapshot(engine, tables), nil
}

// BuildAllSnapshot introspects every base table visible to the connection.
func (in *Inspector) BuildAllSnapshot(ctx context.Context, engine string) (*Snapshot, error) {
	names, err := in.db.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return in.BuildSnapshot(ctx, engine, names...)
}

// BuildTable introspects one table into a descriptor.
func (in *Inspector) BuildTable(ctx context.Context, tableName string) (*TableDescriptor, error) {
	columnInfos, err := in.db.ListColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of table %s: %w", tableName, err)
	}
	if len(columnInfos) == 0 {
		return nil, fmt.Errorf("table %s does not exist or has no visible columns", tableName)
	}

	columns := make([]ColumnDescriptor, 0, len(columnInfos))
	for _, ci := range columnInfos {
		col := ColumnDescriptor{
			Name:         ci.Name,
			DeclaredType: ci.DataType,
			Nullable:     ci.Nullable,
			Description:  DescribeColumn(tableName, ci.Name, ci.DataType, ci.Nullable),
		}
		if ci.Default.Valid {
			col.Default = ci.Default.String
		}
		columns = append(columns, col)
	}

	sampleRows := in.collectSamples(ctx, tableName)

	t := &TableDescriptor{
		Name:       tableName,
		Columns:    columns,
		SampleRows: sampleRows,
	}
	t.Description = DescribeTable(tableName, t.ColumnNames(), len(sampleRows))
	return t, nil
}

// collectSamples fetches a bounded set of rows; any failure only costs the
// samples, never the snapshot.
func (in *Inspector) collectSamples(ctx context.Context, tableName string) []map[string]string {
	rows, err := in.db.SampleRows(ctx, tableName, in.sampleLimit)
	if err != nil {
		in.log.Warnw("failed to fetch sample rows, continuing without samples",
			"table", tableName, "error", err)
		return nil
	}
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		m := make(map[string]string, len(row))
		for col, v := range row {
			if v == nil {
				m[col] = "NULL"
			} else {
				m[col] = fmt.Sprintf("%v", v)
			}
		}
		out = append(out, m)
	}
	return out
}
