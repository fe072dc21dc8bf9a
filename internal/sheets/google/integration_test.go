//go:build integration

package google

import (
	"context"
	"os"
	"testing"

	"orderdash/internal/report"
)

// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_ReadAndNormalize(t *testing.T) {
	if os.Getenv("GOOGLE_SPREADSHEET_ID") == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	ctx := context.Background()
	client, err := NewFromEnv(ctx)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	table, err := client.ReadTable(ctx)
	if err != nil {
		t.Fatalf("Failed to read table: %v", err)
	}
	ds, err := report.Normalize(table)
	if err != nil {
		t.Fatalf("Sheet does not match the order schema: %v", err)
	}
	t.Logf("Loaded %d lines over periods %v", ds.Len(), ds.Periods())
}
