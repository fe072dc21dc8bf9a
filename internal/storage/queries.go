package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Import is one row of the imports table.
type Import struct {
	ID         int64
	Source     string
	RowCount   int64
	ImportedAt string
}

// OrderLineRow is one row of the order_lines table.
type OrderLineRow struct {
	ImportID      int64
	Position      int64
	OrderNumber   string
	OrderDate     string
	Status        string
	SubtotalCents int64
	ItemName      string
	BillingCity   string
}

const createImport = `
INSERT INTO imports (source, row_count, imported_at) VALUES (?, ?, ?)
`

func (q *Queries) CreateImport(ctx context.Context, source string, rowCount int64, importedAt string) (int64, error) {
	res, err := q.db.ExecContext(ctx, createImport, source, rowCount, importedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const insertOrderLine = `
INSERT INTO order_lines (
    import_id, position, order_number, order_date, status, subtotal_cents, item_name, billing_city
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertOrderLine(ctx context.Context, arg OrderLineRow) error {
	_, err := q.db.ExecContext(ctx, insertOrderLine,
		arg.ImportID, arg.Position, arg.OrderNumber, arg.OrderDate,
		arg.Status, arg.SubtotalCents, arg.ItemName, arg.BillingCity)
	return err
}

const getLatestImport = `
SELECT id, source, row_count, imported_at FROM imports ORDER BY id DESC LIMIT 1
`

func (q *Queries) GetLatestImport(ctx context.Context) (Import, error) {
	var i Import
	err := q.db.QueryRowContext(ctx, getLatestImport).Scan(&i.ID, &i.Source, &i.RowCount, &i.ImportedAt)
	return i, err
}

const listImports = `
SELECT id, source, row_count, imported_at FROM imports ORDER BY id DESC LIMIT ?
`

func (q *Queries) ListImports(ctx context.Context, limit int64) ([]Import, error) {
	rows, err := q.db.QueryContext(ctx, listImports, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Import
	for rows.Next() {
		var i Import
		if err := rows.Scan(&i.ID, &i.Source, &i.RowCount, &i.ImportedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getOrderLines = `
SELECT import_id, position, order_number, order_date, status, subtotal_cents, item_name, billing_city
FROM order_lines WHERE import_id = ? ORDER BY position
`

func (q *Queries) GetOrderLines(ctx context.Context, importID int64) ([]OrderLineRow, error) {
	rows, err := q.db.QueryContext(ctx, getOrderLines, importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderLineRow
	for rows.Next() {
		var i OrderLineRow
		if err := rows.Scan(&i.ImportID, &i.Position, &i.OrderNumber, &i.OrderDate,
			&i.Status, &i.SubtotalCents, &i.ItemName, &i.BillingCity); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteOrderLinesBefore = `
DELETE FROM order_lines WHERE import_id < ?
`

func (q *Queries) DeleteOrderLinesBefore(ctx context.Context, importID int64) error {
	_, err := q.db.ExecContext(ctx, deleteOrderLinesBefore, importID)
	return err
}

const deleteImportsBefore = `
DELETE FROM imports WHERE id < ?
`

func (q *Queries) DeleteImportsBefore(ctx context.Context, importID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteImportsBefore, importID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getNthNewestImportID = `
SELECT id FROM imports ORDER BY id DESC LIMIT 1 OFFSET ?
`

// GetNthNewestImportID returns the id of the import at 0-based rank n,
// newest first.
func (q *Queries) GetNthNewestImportID(ctx context.Context, n int64) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, getNthNewestImportID, n).Scan(&id)
	return id, err
}
