package sheets

import (
	"context"
	"fmt"
	"strings"

	sheetsv4 "google.golang.org/api/sheets/v4"

	"joinsync/internal/models"
)

func (c *Client) a1(rng string) string {
	return "'" + strings.ReplaceAll(c.tab, "'", "''") + "'!" + rng
}

func (c *Client) ensureTab(ctx context.Context) error {
	resp, err := c.srv.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return err
	}
	for _, s := range resp.Sheets {
		if s.Properties != nil && s.Properties.Title == c.tab {
			return nil
		}
	}
	return fmt.Errorf("sheet tab %q not found", c.tab)
}

func (c *Client) readAll(ctx context.Context) ([][]interface{}, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, c.a1("A:Z")).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (c *Client) writeHeader(ctx context.Context) error {
	header := make([]interface{}, len(models.Columns))
	for i, col := range models.Columns {
		header[i] = col
	}
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{header}}
	_, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, c.a1("A1"), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (c *Client) setHeader(header []interface{}) error {
	columns := map[string]int{}
	for i := range header {
		name := strings.TrimSpace(get(header, i))
		if name == "" {
			continue
		}
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	for _, col := range models.Columns {
		if _, ok := columns[col]; !ok {
			return fmt.Errorf("sheet tab %q: header is missing column %q", c.tab, col)
		}
	}
	c.columns = columns
	c.width = len(header)
	return nil
}

// load verifies the tab, initialises an empty header and returns the
// raw cell values including the header row.
func (c *Client) load(ctx context.Context) ([][]interface{}, error) {
	if err := c.ensureTab(ctx); err != nil {
		return nil, err
	}
	values, err := c.readAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 || blank(values[0]) {
		if err := c.writeHeader(ctx); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		header := make([]interface{}, len(models.Columns))
		for i, col := range models.Columns {
			header[i] = col
		}
		if len(values) == 0 {
			values = [][]interface{}{header}
		} else {
			values[0] = header
		}
	}
	if err := c.setHeader(values[0]); err != nil {
		return nil, err
	}
	return values, nil
}

// Rows returns every non-blank data row in sheet order. Cells are kept
// as the reviewer typed them.
func (c *Client) Rows(ctx context.Context) ([]*models.SheetRow, error) {
	values, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	rows := []*models.SheetRow{}
	// header row at index 0
	for i := 1; i < len(values); i++ {
		raw := values[i]
		if blank(raw) {
			continue
		}
		row := &models.SheetRow{Number: i + 1} // sheet rows are 1-indexed
		for _, col := range models.Columns {
			_ = row.Set(col, get(raw, c.columns[col]))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AppendRows adds rows below the existing data in one request.
func (c *Client) AppendRows(ctx context.Context, rows []models.SheetRow) error {
	if len(rows) == 0 {
		return nil
	}
	if c.columns == nil {
		if _, err := c.load(ctx); err != nil {
			return err
		}
	}
	values := make([][]interface{}, 0, len(rows))
	for i := range rows {
		values = append(values, c.layout(&rows[i]))
	}
	vr := &sheetsv4.ValueRange{Values: values}
	_, err := c.srv.Spreadsheets.Values.Append(c.spreadsheetID, c.a1("A:Z"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

// SaveRow writes the processed cell of an existing row. Every other
// cell is owned by reviewers and left as it is.
func (c *Client) SaveRow(ctx context.Context, row *models.SheetRow) error {
	if row.Number < 2 {
		return fmt.Errorf("row for %s has no sheet position", row.TelegramID)
	}
	if c.columns == nil {
		if _, err := c.load(ctx); err != nil {
			return err
		}
	}
	cell := c.a1(fmt.Sprintf("%s%d", columnLetter(c.columns[models.ColProcessed]), row.Number))
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{{row.Processed}}}
	_, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, cell, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (c *Client) layout(row *models.SheetRow) []interface{} {
	out := make([]interface{}, c.width)
	for i := range out {
		out[i] = ""
	}
	for _, col := range models.Columns {
		v, _ := row.Get(col)
		out[c.columns[col]] = v
	}
	return out
}

// ---------- helpers ----------

func get(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	return fmt.Sprint(row[idx])
}

func blank(row []interface{}) bool {
	for i := range row {
		if strings.TrimSpace(get(row, i)) != "" {
			return false
		}
	}
	return true
}

// columnLetter converts a zero-based column index to A1 letters.
func columnLetter(idx int) string {
	s := ""
	for idx >= 0 {
		s = string(rune('A'+idx%26)) + s
		idx = idx/26 - 1
	}
	return s
}
