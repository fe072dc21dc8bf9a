// Package core holds the order domain: order lines and their statuses, the raw
// table read from an export, the data format errors raised while reading it,
// money in integer cents and the metric bundle shown on the dashboard.
package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Column names of the order export. The schema is fixed by the upstream shop
// export and is matched case-insensitively.
const (
	ColOrderNumber = "Order Number"
	ColOrderDate   = "Order Date"
	ColOrderStatus = "Order Status"
	ColSubtotal    = "Order Subtotal Amount"
	ColItemName    = "Item Name"
	ColBillingCity = "City (Billing)"
)

// AllPeriods is the filter value that selects every order line.
const AllPeriods = "All"

const (
	StatusCompleted  Status = "Completed"
	StatusProcessing Status = "Processing"
	StatusCancelled  Status = "Cancelled"
	StatusRefunded   Status = "Refunded"
)

type (
	Status string

	// RawTable is a header row plus data rows as read from a spreadsheet.
	RawTable struct {
		Header []string
		Rows   [][]string
	}

	// OrderLine is one purchased item within one order.
	OrderLine struct {
		OrderNumber string
		OrderDate   time.Time
		Status      Status
		Subtotal    Money
		ItemName    string
		BillingCity string
		PeriodLabel string
	}
)

var (
	ErrDataFormat    = errors.New("data format error")
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidDate   = errors.New("invalid order date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNoSnapshot    = errors.New("no dataset snapshot")
)

// RequiredColumns returns the columns every order table must carry.
func RequiredColumns() []string {
	return []string{ColOrderNumber, ColOrderDate, ColOrderStatus, ColSubtotal, ColItemName, ColBillingCity}
}

// TrackedStatuses returns the statuses reported as KPIs, in display order.
func TrackedStatuses() []Status {
	return []Status{StatusCompleted, StatusProcessing, StatusCancelled, StatusRefunded}
}

// IsTracked reports whether s is one of the KPI statuses.
func (s Status) IsTracked() bool {
	switch s {
	case StatusCompleted, StatusProcessing, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

// PeriodLabel returns the month bucket of t, e.g. "July 2025".
func PeriodLabel(t time.Time) string {
	return t.Format("January 2006")
}

// Day truncates t to its calendar day in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DataFormatError reports a raw row or header that does not match the order schema.
// Row is the 1-based data row (0 for header problems).
type DataFormatError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *DataFormatError) Error() string {
	var b strings.Builder
	b.WriteString("data format: ")
	if e.Row > 0 {
		fmt.Fprintf(&b, "row %d: ", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, "column %q: ", e.Column)
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " (value %q)", e.Value)
	}
	return b.String()
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// Is makes every DataFormatError match ErrDataFormat.
func (e *DataFormatError) Is(target error) bool {
	return target == ErrDataFormat
}
