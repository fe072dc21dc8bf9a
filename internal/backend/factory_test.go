package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"orderdash/internal/core"
	"orderdash/internal/storage"
)

const csvOrders = "Order Number,Order Date,Order Status,Order Subtotal Amount,Item Name,City (Billing)\n" +
	"1,2025-07-01 10:00:00,Completed,100,Seeds,Pune\n" +
	"2,2025-06-01 10:00:00,Refunded,50,Spray,Nashik\n"

func TestBackendType(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Fatalf("%s should be valid", bt)
		}
	}
	if BackendType("postgres").IsValid() {
		t.Fatal("postgres should not be valid")
	}
	if SQLiteBackend.HasTable() || !XLSXBackend.HasTable() {
		t.Fatal("HasTable mismatch")
	}
	if got := GetBackendTypeStrings(); len(got) != 5 || got[0] != "xlsx" {
		t.Fatalf("unexpected backend strings: %v", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"xlsx ok", Config{Type: XLSXBackend, OrdersFile: "o.xlsx"}, false},
		{"xlsx missing file", Config{Type: XLSXBackend}, true},
		{"csv missing file", Config{Type: CSVBackend}, true},
		{"sqlite missing path", Config{Type: SQLiteBackend}, true},
		{"sheets missing id", Config{Type: SheetsBackend, GoogleSheetName: "Orders"}, true},
		{"memory ok", Config{Type: MemoryBackend}, false},
		{"invalid", Config{Type: "nope"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFactory_CSVSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	if err := os.WriteFile(path, []byte(csvOrders), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	res, err := NewFactory(nil).CreateSource(context.Background(), Config{Type: CSVBackend, OrdersFile: path})
	if err != nil {
		t.Fatalf("CreateSource: %v", err)
	}
	ds, err := res.Source.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("lines: got %d want 2", ds.Len())
	}
	if got := res.Source.Describe(); got != "csv:"+path {
		t.Fatalf("Describe: %q", got)
	}
}

func TestFactory_CSVSourceFormatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	bad := "Order Number,Order Date,Order Status,Order Subtotal Amount,Item Name,City (Billing)\n1,soon,Completed,1,X,Y\n"
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	res, err := NewFactory(nil).CreateSource(context.Background(), Config{Type: CSVBackend, OrdersFile: path})
	if err != nil {
		t.Fatalf("CreateSource: %v", err)
	}
	if _, err := res.Source.Load(context.Background()); !errors.Is(err, core.ErrDataFormat) {
		t.Fatalf("expected ErrDataFormat, got %v", err)
	}
}

func TestFactory_MemorySource(t *testing.T) {
	res, err := NewFactory(nil).CreateSource(context.Background(), Config{Type: MemoryBackend, DataDirectory: t.TempDir()})
	if err != nil {
		t.Fatalf("CreateSource: %v", err)
	}
	ds, err := res.Source.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Len() == 0 {
		t.Fatal("expected demo table lines")
	}
}

func TestFactory_SQLiteSource(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "orders.db")
	res, err := NewFactory(nil).CreateSource(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: dbPath})
	if err != nil {
		t.Fatalf("CreateSource: %v", err)
	}
	defer res.Cleanup()

	if _, err := res.Source.Load(context.Background()); !errors.Is(err, core.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot on empty store, got %v", err)
	}

	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	defer repo.Close()
	lines := []core.OrderLine{{OrderNumber: "1", OrderDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), Status: core.StatusCompleted, Subtotal: core.Money{Cents: 100}}}
	if _, err := repo.SaveSnapshot(context.Background(), "test", lines, nil); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	ds, err := res.Source.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Len() != 1 || ds.Periods()[0] != "July 2025" {
		t.Fatalf("unexpected dataset: len=%d periods=%v", ds.Len(), ds.Periods())
	}
}

func TestFactory_SQLiteHasNoReader(t *testing.T) {
	_, err := NewFactory(nil).CreateReader(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"})
	if err == nil {
		t.Fatal("expected error creating a reader for sqlite")
	}
}
