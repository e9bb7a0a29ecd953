package datasource

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// ErrNoPrimaryKey is returned for row operations on tables without a
// primary key. Such tables can be listed but not addressed row by row.
var ErrNoPrimaryKey = errors.New("table has no primary key")

// TableInfo identifies one base table of the target database.
type TableInfo struct {
	Name   string `json:"table_name"`
	Schema string `json:"table_schema"`
}

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Name         string  `json:"column_name"`
	DataType     string  `json:"data_type"`
	Nullable     bool    `json:"is_nullable"`
	Default      *string `json:"column_default"`
	MaxLength    *int    `json:"max_length"`
	IsPrimaryKey bool    `json:"is_primary_key"`
}

// TableSchema is the full column layout of a table.
type TableSchema struct {
	Table             string       `json:"table_name"`
	Columns           []ColumnInfo `json:"columns"`
	PrimaryKeyColumns []string     `json:"primary_key_columns"`
}

// RowsQuery carries the paging, sorting and filtering options of a row
// listing. Filter syntax is column:op:value with ops eq, neq, gt, gte,
// lt, lte, like.
type RowsQuery struct {
	Page      int
	PerPage   int
	SortBy    string
	SortOrder string
	Filter    string
}

// RowsPage is one page of rows plus the unpaged total.
type RowsPage struct {
	Rows       []json.RawMessage `json:"rows"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	PerPage    int               `json:"per_page"`
}

// Source is a live pool against one target database.
type Source struct {
	db *sql.DB
}

// NewSource wraps an open pool. Ownership of the pool transfers to the
// Source; Close closes it.
func NewSource(db *sql.DB) *Source {
	return &Source{db: db}
}

// Close closes the underlying pool.
func (s *Source) Close() error {
	return s.db.Close()
}

// Ping verifies the pool with a round trip.
func (s *Source) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ListTables returns the base tables of the public schema.
func (s *Source) ListTables(ctx context.Context) ([]TableInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, table_schema
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []TableInfo
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Name, &t.Schema); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// TableSchema returns the column layout of one table.
func (s *Source) TableSchema(ctx context.Context, table string) (*TableSchema, error) {
	pkCols, err := s.primaryKeyColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	pkSet := make(map[string]bool, len(pkCols))
	for _, c := range pkCols {
		pkSet[c] = true
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.column_name, c.data_type, c.is_nullable, c.column_default, c.character_maximum_length
		FROM information_schema.columns c
		WHERE c.table_name = $1
		  AND c.table_schema = 'public'
		ORDER BY c.ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("table schema: %w", err)
	}
	defer rows.Close()

	schema := &TableSchema{Table: table, PrimaryKeyColumns: pkCols}
	for rows.Next() {
		var (
			col      ColumnInfo
			nullable string
		)
		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &col.Default, &col.MaxLength); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		col.IsPrimaryKey = pkSet[col.Name]
		schema.Columns = append(schema.Columns, col)
	}
	return schema, rows.Err()
}

// ListRows returns one page of a table's rows as JSON objects.
func (s *Source) ListRows(ctx context.Context, table string, query RowsQuery) (*RowsPage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	perPage := query.PerPage
	if perPage < 1 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	quoted := pq.QuoteIdentifier(table)

	whereClause, filterArg, hasFilter := buildFilter(query.Filter)

	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, quoted, whereClause)
	var (
		total int64
		err   error
	)
	if hasFilter {
		err = s.db.QueryRowContext(ctx, countSQL, filterArg).Scan(&total)
	} else {
		err = s.db.QueryRowContext(ctx, countSQL).Scan(&total)
	}
	if err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}

	orderClause := ""
	if query.SortBy != "" {
		direction := "ASC"
		if strings.EqualFold(query.SortOrder, "desc") {
			direction = "DESC"
		}
		orderClause = fmt.Sprintf(" ORDER BY %s %s", pq.QuoteIdentifier(query.SortBy), direction)
	}

	dataSQL := fmt.Sprintf(
		`SELECT row_to_json(t.*) FROM %s AS t%s%s LIMIT %d OFFSET %d`,
		quoted, whereClause, orderClause, perPage, offset,
	)
	log.WithFields(log.Fields{"table": table, "page": page, "per_page": perPage}).Debug("listing rows")

	var rows *sql.Rows
	if hasFilter {
		rows, err = s.db.QueryContext(ctx, dataSQL, filterArg)
	} else {
		rows, err = s.db.QueryContext(ctx, dataSQL)
	}
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	defer rows.Close()

	result := &RowsPage{Rows: []json.RawMessage{}, TotalCount: total, Page: page, PerPage: perPage}
	for rows.Next() {
		var raw json.RawMessage
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, raw)
	}
	return result, rows.Err()
}

// GetRow returns one row addressed by its primary key value.
func (s *Source) GetRow(ctx context.Context, table, pkValue string) (json.RawMessage, error) {
	pkCol, err := s.singlePrimaryKey(ctx, table)
	if err != nil {
		return nil, err
	}

	// The key value arrives as text; comparing against the column cast to
	// text sidesteps per-type parsing.
	query := fmt.Sprintf(
		`SELECT row_to_json(t.*) FROM %s AS t WHERE %s::text = $1`,
		pq.QuoteIdentifier(table), pq.QuoteIdentifier(pkCol),
	)

	var raw json.RawMessage
	if err := s.db.QueryRowContext(ctx, query, pkValue).Scan(&raw); err != nil {
		return nil, fmt.Errorf("get row: %w", err)
	}
	return raw, nil
}

// InsertRow inserts the given column values and returns the stored row.
// Null values are skipped so column defaults apply.
func (s *Source) InsertRow(ctx context.Context, table string, data map[string]json.RawMessage) (json.RawMessage, error) {
	quoted := pq.QuoteIdentifier(table)

	var (
		columns      []string
		placeholders []string
		values       []interface{}
	)
	idx := 1
	for _, key := range sortedKeys(data) {
		val := data[key]
		if isJSONNull(val) {
			continue
		}
		columns = append(columns, pq.QuoteIdentifier(key))
		placeholders = append(placeholders, fmt.Sprintf("$%d", idx))
		values = append(values, jsonScalarToString(val))
		idx++
	}
	if len(columns) == 0 {
		return nil, errors.New("no columns to insert")
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) RETURNING row_to_json(%s.*)`,
		quoted, strings.Join(columns, ", "), strings.Join(placeholders, ", "), quoted,
	)

	var raw json.RawMessage
	if err := s.db.QueryRowContext(ctx, query, values...).Scan(&raw); err != nil {
		return nil, fmt.Errorf("insert row: %w", err)
	}
	log.WithField("table", table).Info("row inserted")
	return raw, nil
}

// UpdateRow updates the row addressed by the primary key value and returns
// the stored row. A null value sets the column to NULL; the key column
// itself is never updated.
func (s *Source) UpdateRow(ctx context.Context, table, pkValue string, data map[string]json.RawMessage) (json.RawMessage, error) {
	pkCol, err := s.singlePrimaryKey(ctx, table)
	if err != nil {
		return nil, err
	}

	quoted := pq.QuoteIdentifier(table)

	var (
		setClauses []string
		values     []interface{}
	)
	idx := 1
	for _, key := range sortedKeys(data) {
		if key == pkCol {
			continue
		}
		val := data[key]
		if isJSONNull(val) {
			setClauses = append(setClauses, fmt.Sprintf("%s = NULL", pq.QuoteIdentifier(key)))
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(key), idx))
		values = append(values, jsonScalarToString(val))
		idx++
	}
	if len(setClauses) == 0 {
		return nil, errors.New("no columns to update")
	}
	values = append(values, pkValue)

	query := fmt.Sprintf(
		`UPDATE %s SET %s WHERE %s::text = $%d RETURNING row_to_json(%s.*)`,
		quoted, strings.Join(setClauses, ", "), pq.QuoteIdentifier(pkCol), idx, quoted,
	)

	var raw json.RawMessage
	if err := s.db.QueryRowContext(ctx, query, values...).Scan(&raw); err != nil {
		return nil, fmt.Errorf("update row: %w", err)
	}
	log.WithFields(log.Fields{"table": table, "pk": pkValue}).Info("row updated")
	return raw, nil
}

// DeleteRow deletes the row addressed by the primary key value. Reports
// whether a row was removed.
func (s *Source) DeleteRow(ctx context.Context, table, pkValue string) (bool, error) {
	pkCol, err := s.singlePrimaryKey(ctx, table)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(
		`DELETE FROM %s WHERE %s::text = $1`,
		pq.QuoteIdentifier(table), pq.QuoteIdentifier(pkCol),
	)
	result, err := s.db.ExecContext(ctx, query, pkValue)
	if err != nil {
		return false, fmt.Errorf("delete row: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

func (s *Source) primaryKeyColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		  AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_name = $1
		  AND tc.table_schema = 'public'
		ORDER BY kcu.ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("primary key lookup: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (s *Source) singlePrimaryKey(ctx context.Context, table string) (string, error) {
	cols, err := s.primaryKeyColumns(ctx, table)
	if err != nil {
		return "", err
	}
	if len(cols) == 0 {
		return "", ErrNoPrimaryKey
	}
	return cols[0], nil
}

func buildFilter(filter string) (whereClause string, arg string, ok bool) {
	if filter == "" {
		return "", "", false
	}
	parts := strings.SplitN(filter, ":", 3)
	if len(parts) != 3 {
		return "", "", false
	}

	op := "="
	switch parts[1] {
	case "eq":
		op = "="
	case "neq":
		op = "!="
	case "gt":
		op = ">"
	case "gte":
		op = ">="
	case "lt":
		op = "<"
	case "lte":
		op = "<="
	case "like":
		op = "ILIKE"
	}

	arg = parts[2]
	if parts[1] == "like" {
		arg = "%" + arg + "%"
	}
	return fmt.Sprintf(` WHERE %s::text %s $1`, pq.QuoteIdentifier(parts[0]), op), arg, true
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// jsonScalarToString renders a JSON value as the text form postgres should
// parse: strings lose their quotes, everything else keeps its JSON text.
func jsonScalarToString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func sortedKeys(data map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	// Map iteration order is random; stable SQL makes logs and tests sane.
	sort.Strings(keys)
	return keys
}
