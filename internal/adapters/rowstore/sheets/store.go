// Package sheets implements the row store over a Google spreadsheet: one
// named sheet per table, row 1 the header, column A the id.
package sheets

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"compass/internal/adapters/rowstore"
)

// Store is the spreadsheet-backed rowstore.Store. The spreadsheet id is
// discovered (or the spreadsheet created) lazily on first use and memoized
// for the process lifetime; that is the only cache this layer keeps.
type Store struct {
	client *Client
	title  string
	schema []rowstore.Table

	mu            sync.Mutex
	spreadsheetID string
	ensured       map[string]bool // tables verified present this process

	// tableMu serializes EnsureTable end to end so concurrent first calls
	// cannot both issue addSheet for the same table.
	tableMu sync.Mutex
}

// NewStore creates a Store over the spreadsheet with the given title.
// schema lists the tables created when the spreadsheet does not exist yet;
// tables added later go through EnsureTable.
func NewStore(client *Client, title string, schema ...rowstore.Table) *Store {
	return &Store{
		client:  client,
		title:   title,
		schema:  schema,
		ensured: make(map[string]bool),
	}
}

type driveFileList struct {
	Files []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"files"`
}

type spreadsheetInfo struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Sheets        []struct {
		Properties struct {
			SheetID int64  `json:"sheetId"`
			Title   string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

type valueRange struct {
	Values [][]any `json:"values"`
}

// EnsureStore finds or creates the backing spreadsheet. Safe to call
// repeatedly and concurrently; callers do not need their own guard.
// POST: s.spreadsheetID is set
func (s *Store) EnsureStore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.ensureLocked(ctx)
	return err
}

func (s *Store) ensureLocked(ctx context.Context) (string, error) {
	if s.spreadsheetID != "" {
		return s.spreadsheetID, nil
	}

	// Look for an existing spreadsheet by exact title.
	query := fmt.Sprintf("name='%s' and mimeType='application/vnd.google-apps.spreadsheet' and trashed=false", s.title)
	var found driveFileList
	searchURL := fmt.Sprintf("%s?q=%s&fields=files(id,name)", s.client.DriveBase, url.QueryEscape(query))
	if err := s.client.call(ctx, "search spreadsheet", "GET", searchURL, nil, &found); err != nil {
		return "", err
	}
	if len(found.Files) > 0 {
		s.spreadsheetID = found.Files[0].ID
		return s.spreadsheetID, nil
	}

	// Create it with one sheet per schema table.
	type sheetProps struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	}
	createReq := struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
		Sheets []sheetProps `json:"sheets"`
	}{}
	createReq.Properties.Title = s.title
	for _, t := range s.schema {
		var sp sheetProps
		sp.Properties.Title = t.Name
		createReq.Sheets = append(createReq.Sheets, sp)
	}

	var created spreadsheetInfo
	if err := s.client.call(ctx, "create spreadsheet", "POST", s.client.SheetsBase, createReq, &created); err != nil {
		return "", err
	}
	s.spreadsheetID = created.SpreadsheetID

	// Write the fixed header rows in one batch.
	type headerRange struct {
		Range  string     `json:"range"`
		Values [][]string `json:"values"`
	}
	batch := struct {
		ValueInputOption string        `json:"valueInputOption"`
		Data             []headerRange `json:"data"`
	}{ValueInputOption: "RAW"}
	for _, t := range s.schema {
		batch.Data = append(batch.Data, headerRange{
			Range:  t.Name + "!A1",
			Values: [][]string{t.Headers},
		})
	}
	batchURL := fmt.Sprintf("%s/%s/values:batchUpdate", s.client.SheetsBase, s.spreadsheetID)
	if err := s.client.call(ctx, "write headers", "POST", batchURL, batch, nil); err != nil {
		return "", err
	}
	return s.spreadsheetID, nil
}

func (s *Store) spreadsheet(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(ctx)
}

// ReadTable returns all data rows of a table, header skipped.
func (s *Store) ReadTable(ctx context.Context, table string) ([]rowstore.Row, error) {
	id, err := s.spreadsheet(ctx)
	if err != nil {
		return nil, err
	}
	var vr valueRange
	getURL := fmt.Sprintf("%s/%s/values/%s", s.client.SheetsBase, id, url.PathEscape(table))
	if err := s.client.call(ctx, "read "+table, "GET", getURL, nil, &vr); err != nil {
		return nil, err
	}
	if len(vr.Values) <= 1 {
		return []rowstore.Row{}, nil
	}
	rows := make([]rowstore.Row, 0, len(vr.Values)-1)
	for _, raw := range vr.Values[1:] {
		rows = append(rows, toRow(raw))
	}
	return rows, nil
}

// AppendRow inserts a row at the table end.
func (s *Store) AppendRow(ctx context.Context, table string, row rowstore.Row) error {
	id, err := s.spreadsheet(ctx)
	if err != nil {
		return err
	}
	body := struct {
		Values [][]string `json:"values"`
	}{Values: [][]string{row}}
	appendURL := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=RAW&insertDataOption=INSERT_ROWS",
		s.client.SheetsBase, id, url.PathEscape(table))
	return s.client.call(ctx, "append "+table, "POST", appendURL, body, nil)
}

// FindRowPosition scans column A for an exact id match.
// POST: Returns the 1-based row position (header row is position 1)
func (s *Store) FindRowPosition(ctx context.Context, table, id string) (int, error) {
	sid, err := s.spreadsheet(ctx)
	if err != nil {
		return 0, err
	}
	var vr valueRange
	getURL := fmt.Sprintf("%s/%s/values/%s", s.client.SheetsBase, sid, url.PathEscape(table+"!A:A"))
	if err := s.client.call(ctx, "scan "+table, "GET", getURL, nil, &vr); err != nil {
		return 0, err
	}
	for i, raw := range vr.Values {
		row := toRow(raw)
		if rowstore.Cell(row, 0) == id {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%q in %s: %w", id, table, rowstore.ErrNotFound)
}

// OverwriteRow replaces the full row at a 1-based position.
func (s *Store) OverwriteRow(ctx context.Context, table string, position int, row rowstore.Row) error {
	id, err := s.spreadsheet(ctx)
	if err != nil {
		return err
	}
	body := struct {
		Values [][]string `json:"values"`
	}{Values: [][]string{row}}
	putURL := fmt.Sprintf("%s/%s/values/%s?valueInputOption=RAW",
		s.client.SheetsBase, id, url.PathEscape(fmt.Sprintf("%s!A%d", table, position)))
	return s.client.call(ctx, fmt.Sprintf("overwrite %s row %d", table, position), "PUT", putURL, body, nil)
}

// DeleteRow removes the row at a 1-based position, shifting later rows up.
// Positions computed before this call are invalid afterwards.
func (s *Store) DeleteRow(ctx context.Context, table string, position int) error {
	id, err := s.spreadsheet(ctx)
	if err != nil {
		return err
	}
	sheetID, err := s.sheetID(ctx, id, table)
	if err != nil {
		return err
	}
	type dimensionRange struct {
		SheetID    int64  `json:"sheetId"`
		Dimension  string `json:"dimension"`
		StartIndex int    `json:"startIndex"`
		EndIndex   int    `json:"endIndex"`
	}
	body := struct {
		Requests []map[string]any `json:"requests"`
	}{Requests: []map[string]any{{
		"deleteDimension": map[string]any{
			"range": dimensionRange{
				SheetID:    sheetID,
				Dimension:  "ROWS",
				StartIndex: position - 1, // batchUpdate ranges are 0-based
				EndIndex:   position,
			},
		},
	}}}
	batchURL := fmt.Sprintf("%s/%s:batchUpdate", s.client.SheetsBase, id)
	return s.client.call(ctx, fmt.Sprintf("delete %s row %d", table, position), "POST", batchURL, body, nil)
}

// EnsureTable adds a sheet with headers if absent, guarded by a
// process-local flag so repeated calls skip the existence check. Safe to
// call concurrently; the whole check-then-add sequence runs under one lock.
func (s *Store) EnsureTable(ctx context.Context, table string, headers []string) error {
	s.tableMu.Lock()
	defer s.tableMu.Unlock()

	s.mu.Lock()
	if s.ensured[table] {
		s.mu.Unlock()
		return nil
	}
	id, err := s.ensureLocked(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	info, err := s.info(ctx, id)
	if err != nil {
		return err
	}
	exists := false
	for _, sh := range info.Sheets {
		if sh.Properties.Title == table {
			exists = true
			break
		}
	}

	if !exists {
		addBody := struct {
			Requests []map[string]any `json:"requests"`
		}{Requests: []map[string]any{{
			"addSheet": map[string]any{"properties": map[string]any{"title": table}},
		}}}
		batchURL := fmt.Sprintf("%s/%s:batchUpdate", s.client.SheetsBase, id)
		if err := s.client.call(ctx, "add table "+table, "POST", batchURL, addBody, nil); err != nil {
			return err
		}
		headerBody := struct {
			Values [][]string `json:"values"`
		}{Values: [][]string{headers}}
		putURL := fmt.Sprintf("%s/%s/values/%s?valueInputOption=RAW",
			s.client.SheetsBase, id, url.PathEscape(table+"!A1"))
		if err := s.client.call(ctx, "write headers "+table, "PUT", putURL, headerBody, nil); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.ensured[table] = true
	s.mu.Unlock()
	return nil
}

func (s *Store) info(ctx context.Context, id string) (*spreadsheetInfo, error) {
	var info spreadsheetInfo
	infoURL := fmt.Sprintf("%s/%s?fields=sheets.properties", s.client.SheetsBase, id)
	if err := s.client.call(ctx, "get spreadsheet", "GET", infoURL, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (s *Store) sheetID(ctx context.Context, id, table string) (int64, error) {
	info, err := s.info(ctx, id)
	if err != nil {
		return 0, err
	}
	for _, sh := range info.Sheets {
		if sh.Properties.Title == table {
			return sh.Properties.SheetID, nil
		}
	}
	return 0, &rowstore.StoreError{Op: "locate table " + table, Err: fmt.Errorf("sheet not present")}
}

// toRow stringifies one API row. Cells normally arrive as strings, but a
// hand-edited sheet can hold numbers or bools.
func toRow(raw []any) rowstore.Row {
	row := make(rowstore.Row, len(raw))
	for i, v := range raw {
		if s, ok := v.(string); ok {
			row[i] = s
		} else {
			row[i] = fmt.Sprint(v)
		}
	}
	return row
}

// Ensure interface compliance at compile time.
var _ rowstore.Store = (*Store)(nil)
