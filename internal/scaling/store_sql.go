package scaling

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrTableNotFound = errors.New("scale table not found")

// SQLStore persists built tables in the scale_tables table. Rows, cuts and
// anchors are stored as JSON columns, the listing fields as plain columns.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutTable(ctx context.Context, rec TableRecord) error {
	if rec.ID == "" || rec.Table == nil {
		return fmt.Errorf("scaling: record needs an id and a table")
	}
	tj, err := json.Marshal(rec.Table)
	if err != nil {
		return err
	}
	createdAt := rec.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}
	var minRaw, maxRaw int
	if len(rec.Table.Rows) > 0 {
		minRaw = rec.Table.Rows[0].RawScore
		maxRaw = rec.Table.Rows[len(rec.Table.Rows)-1].RawScore
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO scale_tables (id,name,subject,min_raw,max_raw,examinees,table_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, subject=EXCLUDED.subject,
			min_raw=EXCLUDED.min_raw, max_raw=EXCLUDED.max_raw, examinees=EXCLUDED.examinees,
			table_json=EXCLUDED.table_json`,
		rec.ID, rec.Name, rec.Subject, minRaw, maxRaw, rec.Table.TotalFrequency(), string(tj), createdAt)
	return err
}

func (s *SQLStore) GetTable(ctx context.Context, id string) (TableRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,name,subject,table_json,created_at FROM scale_tables WHERE id=$1`, id)
	var rec TableRecord
	var tj string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Subject, &tj, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TableRecord{}, ErrTableNotFound
		}
		return TableRecord{}, err
	}
	rec.Table = &Table{}
	if err := json.Unmarshal([]byte(tj), rec.Table); err != nil {
		return TableRecord{}, err
	}
	return rec, nil
}

func (s *SQLStore) ListTables(ctx context.Context, opts ListOpts) ([]TableSummary, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := "%" + opts.Q + "%"
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,subject,min_raw,max_raw,examinees,created_at
		FROM scale_tables
		WHERE name LIKE $1 OR subject LIKE $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, q, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TableSummary
	for rows.Next() {
		var ts TableSummary
		if err := rows.Scan(&ts.ID, &ts.Name, &ts.Subject, &ts.MinRaw, &ts.MaxRaw, &ts.Examinees, &ts.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteTable(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scale_tables WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTableNotFound
	}
	return nil
}
