package google

import "testing"

func TestParseValues(t *testing.T) {
	values := [][]interface{}{
		{"Order Number", "Order Date", "Order Status", "Order Subtotal Amount", "Item Name", "City (Billing)"},
		{1001.0, "2025-07-11 14:30:00", "Completed", 1250000.5, " Seeds ", "Pune"},
		{1002.0, "2025-07-12", "Refunded", 99.99},
		{},
	}
	table := parseValues(values)
	if len(table.Header) != 6 {
		t.Fatalf("header: %v", table.Header)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("rows: got %d", len(table.Rows))
	}
	if got := table.Rows[0][0]; got != "1001" {
		t.Fatalf("order number: got %q", got)
	}
	if got := table.Rows[0][3]; got != "1250000.5" {
		t.Fatalf("amount must not use exponent form, got %q", got)
	}
	if got := table.Rows[0][4]; got != "Seeds" {
		t.Fatalf("item: got %q", got)
	}
	if len(table.Rows[1]) != 4 || len(table.Rows[2]) != 0 {
		t.Fatalf("short rows must stay short: %v", table.Rows)
	}
}

func TestCellString(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{12.0, "12"},
		{0.1, "0.1"},
		{1e7, "10000000"},
		{"  x ", "x"},
		{true, "true"},
	}
	for _, c := range cases {
		if got := cellString(c.in); got != c.want {
			t.Fatalf("cellString(%v) = %q want %q", c.in, got, c.want)
		}
	}
}
