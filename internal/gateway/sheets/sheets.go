// Package sheets implements the gateway on a Google spreadsheet: one tab per
// table, a header row naming the columns and one row per record.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/gateway"

	"github.com/google/uuid"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var errNoService = errors.New("sheets service not initialized")

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	// ReadCacheTTL keeps tab contents between Selects. Zero uses
	// DefaultReadCacheTTL; negative disables the cache.
	ReadCacheTTL time.Duration
}

const DefaultReadCacheTTL = 15 * time.Second

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
	reads    *cache.LRU[[][]any]
	now      func() time.Time
}

var _ gateway.Gateway = (*Client)(nil)

// New creates a Sheets client using service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	ttl := cfg.ReadCacheTTL
	if ttl == 0 {
		ttl = DefaultReadCacheTTL
	}
	return newClient(svc, cfg.SpreadsheetID, ttl), nil
}

func newClient(svc *gsheet.Service, spreadsheetID string, readTTL time.Duration) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetIDs:      map[string]int64{},
		reads:         cache.New[[][]any](len(gateway.Tables), readTTL),
		now:           time.Now,
	}
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inline != "":
		credentialsJSON = []byte(inline)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func (c *Client) Select(ctx context.Context, table gateway.Table, ownerID string, order gateway.Order) ([]gateway.Row, error) {
	values, err := c.readCached(ctx, table)
	if err != nil {
		return nil, err
	}
	_, rows := rowsFromValues(values)
	out := rows[:0]
	for _, r := range rows {
		if r[gateway.ColUserID] == ownerID {
			out = append(out, r)
		}
	}
	sortRows(out, order)
	return out, nil
}

// Insert appends a row. Spreadsheets have no id generation, so the client
// assigns a fresh uuid.
func (c *Client) Insert(ctx context.Context, table gateway.Table, row gateway.Row) (string, error) {
	values, err := c.readAll(ctx, table)
	if err != nil {
		return "", err
	}
	header, _ := rowsFromValues(values)
	if len(header) == 0 {
		header = table.Columns()
		if err := c.writeHeader(ctx, table, header); err != nil {
			return "", err
		}
	}

	id := uuid.NewString()
	stored := make(gateway.Row, len(row)+2)
	for k, v := range row {
		stored[k] = v
	}
	stored[gateway.ColID] = id
	stored[gateway.ColCreatedAt] = c.now().UTC().Format(gateway.TimestampLayout)

	line := make([]any, len(header))
	for i, col := range header {
		line[i] = stored[col]
	}
	vr := &gsheet.ValueRange{Values: [][]any{line}}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, fmt.Sprintf("%s!A1", table), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", table, err)
	}
	c.reads.Delete(string(table))
	return id, nil
}

func (c *Client) Update(ctx context.Context, table gateway.Table, id string, partial gateway.Row) error {
	values, err := c.readAll(ctx, table)
	if err != nil {
		return err
	}
	header, _ := rowsFromValues(values)
	rowNum := findRow(values, header, id)
	if rowNum < 0 {
		return fmt.Errorf("update %s %s: %w", table, id, gateway.ErrNotFound)
	}

	var data []*gsheet.ValueRange
	cols := make([]string, 0, len(partial))
	for k := range partial {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	for _, col := range cols {
		if col == gateway.ColID || col == gateway.ColUserID {
			continue
		}
		idx := indexOf(header, col)
		if idx < 0 {
			return fmt.Errorf("column %q not in %s", col, table)
		}
		data = append(data, &gsheet.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", table, columnLetter(idx), rowNum+1),
			Values: [][]any{{partial[col]}},
		})
	}
	if len(data) == 0 {
		return nil
	}
	req := &gsheet.BatchUpdateValuesRequest{ValueInputOption: "RAW", Data: data}
	if _, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s %s: %w", table, id, err)
	}
	c.reads.Delete(string(table))
	return nil
}

func (c *Client) Delete(ctx context.Context, table gateway.Table, id string) error {
	values, err := c.readAll(ctx, table)
	if err != nil {
		return err
	}
	header, _ := rowsFromValues(values)
	rowNum := findRow(values, header, id)
	if rowNum < 0 {
		return fmt.Errorf("delete %s %s: %w", table, id, gateway.ErrNotFound)
	}
	sheetID, err := c.sheetID(ctx, string(table))
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{Range: &gsheet.DimensionRange{
			SheetId:    sheetID,
			Dimension:  "ROWS",
			StartIndex: int64(rowNum),
			EndIndex:   int64(rowNum + 1),
		}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	c.reads.Delete(string(table))
	return nil
}

// readCached serves Selects. Writes always use readAll because they
// address rows by position.
func (c *Client) readCached(ctx context.Context, table gateway.Table) ([][]any, error) {
	if values, ok := c.reads.Get(string(table)); ok {
		return values, nil
	}
	values, err := c.readAll(ctx, table)
	if err != nil {
		return nil, err
	}
	c.reads.Set(string(table), values)
	return values, nil
}

func (c *Client) readAll(ctx context.Context, table gateway.Table) ([][]any, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("%w: %q", gateway.ErrUnknownTable, table)
	}
	if c.svc == nil {
		return nil, errNoService
	}
	rng := fmt.Sprintf("%s!A:Z", table)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) writeHeader(ctx context.Context, table gateway.Table, header []string) error {
	line := make([]any, len(header))
	for i, h := range header {
		line[i] = h
	}
	vr := &gsheet.ValueRange{Values: [][]any{line}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1", table), vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", table, err)
	}
	return nil
}

// sheetID resolves and caches the numeric id of a tab.
func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.sheetIDs[title]; ok {
		return id, nil
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet properties: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			c.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	id, ok := c.sheetIDs[title]
	if !ok {
		return 0, fmt.Errorf("sheet %q not found", title)
	}
	return id, nil
}
