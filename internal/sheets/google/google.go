package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"orderdash/internal/core"
	ports "orderdash/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultRange is the column span read from the order sheet.
const DefaultRange = "A:Z"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var _ ports.TableReader = (*Client)(nil)

// Options selects the spreadsheet and credentials. CredentialsJSON wins over
// CredentialsFile.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// NewFromEnv creates a Sheets client from GOOGLE_SPREADSHEET_ID,
// GOOGLE_SHEET_NAME (default "Orders") and the service account variables.
func NewFromEnv(ctx context.Context) (*Client, error) {
	return New(ctx, Options{
		SpreadsheetID:   os.Getenv("GOOGLE_SPREADSHEET_ID"),
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	})
}

// New creates a read-only Sheets client using service account credentials.
// Extra client options (endpoint, HTTP client) are appended after the
// credentials and are used by tests.
func New(ctx context.Context, o Options, extra ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(o.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheet := strings.TrimSpace(o.SheetName)
	if sheet == "" {
		sheet = "Orders"
	}

	var opts []goption.ClientOption
	if len(extra) == 0 {
		creds, err := credentials(ctx, o)
		if err != nil {
			return nil, err
		}
		opts = append(opts,
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	}
	opts = append(opts, extra...)

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", spreadsheetID, "sheet", sheet)
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheet}, nil
}

// credentials resolves the service account key. GOOGLE_APPLICATION_CREDENTIALS
// is honoured when neither option is set.
func credentials(ctx context.Context, o Options) ([]byte, error) {
	inline := strings.TrimSpace(o.CredentialsJSON)
	file := strings.TrimSpace(o.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	switch {
	case inline != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		return []byte(inline), nil
	case file != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// ReadTable reads the whole order sheet. Numbers are requested unformatted so
// amounts keep their precision; dates come back as the sheet displays them.
func (c *Client) ReadTable(ctx context.Context) (core.RawTable, error) {
	if c.svc == nil {
		return core.RawTable{}, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!%s", c.sheetName, DefaultRange)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return core.RawTable{}, fmt.Errorf("read %s: %w", rng, err)
	}
	table := parseValues(resp.Values)
	slog.DebugContext(ctx, "Read order sheet", "range", rng, "rows", len(table.Rows))
	return table, nil
}
