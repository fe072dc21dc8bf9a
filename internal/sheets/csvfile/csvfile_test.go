package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	in := "\ufeffOrder Number,Order Date,Order Subtotal Amount\n" +
		"1001,2025-07-11 14:30:00,\"1,250.50\"\n" +
		"1002,2025-07-12\n"
	table, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Header[0] != "Order Number" {
		t.Fatalf("BOM not stripped: %q", table.Header[0])
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows: got %d", len(table.Rows))
	}
	if table.Rows[0][2] != "1,250.50" {
		t.Fatalf("quoted field: got %q", table.Rows[0][2])
	}
	if len(table.Rows[1]) != 2 {
		t.Fatalf("short record should be kept as is, got %v", table.Rows[1])
	}
}

func TestParse_Empty(t *testing.T) {
	table, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Header != nil || table.Rows != nil {
		t.Fatalf("expected empty table, got %+v", table)
	}
}

func TestReader_ReadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	table, err := New(path).ReadTable(context.Background())
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0][1] != "2" {
		t.Fatalf("unexpected table: %+v", table)
	}

	if _, err := New(filepath.Join(t.TempDir(), "missing.csv")).ReadTable(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}
