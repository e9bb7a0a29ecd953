package datasource

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSource(t *testing.T) (*Source, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSource(db), mock
}

func TestListTables(t *testing.T) {
	source, mock := newMockSource(t)

	mock.ExpectQuery(`FROM information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "table_schema"}).
			AddRow("invoices", "public").
			AddRow("users", "public"))

	tables, err := source.ListTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "invoices", tables[0].Name)
	assert.Equal(t, "public", tables[0].Schema)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableSchemaMarksPrimaryKey(t *testing.T) {
	source, mock := newMockSource(t)

	mock.ExpectQuery(`constraint_type = 'PRIMARY KEY'`).
		WithArgs("invoices").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("id"))
	mock.ExpectQuery(`FROM information_schema.columns`).
		WithArgs("invoices").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "column_default", "character_maximum_length"}).
			AddRow("id", "integer", "NO", nil, nil).
			AddRow("memo", "character varying", "YES", nil, 255))

	schema, err := source.TableSchema(context.Background(), "invoices")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, schema.PrimaryKeyColumns)
	require.Len(t, schema.Columns, 2)
	assert.True(t, schema.Columns[0].IsPrimaryKey)
	assert.False(t, schema.Columns[0].Nullable)
	assert.False(t, schema.Columns[1].IsPrimaryKey)
	assert.True(t, schema.Columns[1].Nullable)
	require.NotNil(t, schema.Columns[1].MaxLength)
	assert.Equal(t, 255, *schema.Columns[1].MaxLength)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRowsWithFilterAndSort(t *testing.T) {
	source, mock := newMockSource(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "invoices" WHERE "status"::text ILIKE \$1`).
		WithArgs("%open%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT row_to_json\(t\.\*\) FROM "invoices" AS t WHERE "status"::text ILIKE \$1 ORDER BY "id" DESC LIMIT 20 OFFSET 0`).
		WithArgs("%open%").
		WillReturnRows(sqlmock.NewRows([]string{"row_to_json"}).
			AddRow([]byte(`{"id":1,"status":"open"}`)))

	page, err := source.ListRows(context.Background(), "invoices", RowsQuery{
		Filter:    "status:like:open",
		SortBy:    "id",
		SortOrder: "desc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)
	require.Len(t, page.Rows, 1)
	assert.JSONEq(t, `{"id":1,"status":"open"}`, string(page.Rows[0]))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRowNoPrimaryKey(t *testing.T) {
	source, mock := newMockSource(t)

	mock.ExpectQuery(`constraint_type = 'PRIMARY KEY'`).
		WithArgs("audit_log").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))

	_, err := source.DeleteRow(context.Background(), "audit_log", "42")
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
}

func TestInsertRowSkipsNulls(t *testing.T) {
	source, mock := newMockSource(t)

	mock.ExpectQuery(`INSERT INTO "invoices" \("amount", "status"\) VALUES \(\$1, \$2\) RETURNING row_to_json\("invoices"\.\*\)`).
		WithArgs("12.5", "open").
		WillReturnRows(sqlmock.NewRows([]string{"row_to_json"}).
			AddRow([]byte(`{"id":7,"amount":12.5,"status":"open"}`)))

	row, err := source.InsertRow(context.Background(), "invoices", map[string]json.RawMessage{
		"status": json.RawMessage(`"open"`),
		"amount": json.RawMessage(`12.5`),
		"memo":   json.RawMessage(`null`),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"amount":12.5,"status":"open"}`, string(row))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildFilterOperators(t *testing.T) {
	tests := []struct {
		filter string
		clause string
		arg    string
		ok     bool
	}{
		{"status:eq:open", ` WHERE "status"::text = $1`, "open", true},
		{"amount:gte:100", ` WHERE "amount"::text >= $1`, "100", true},
		{"memo:like:rent", ` WHERE "memo"::text ILIKE $1`, "%rent%", true},
		{"malformed", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		clause, arg, ok := buildFilter(tt.filter)
		assert.Equal(t, tt.ok, ok, tt.filter)
		assert.Equal(t, tt.clause, clause, tt.filter)
		assert.Equal(t, tt.arg, arg, tt.filter)
	}
}
