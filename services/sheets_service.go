package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"google.golang.org/api/sheets/v4"
)

// NoteSink durably records structured notes in an external tabular
// store. Record appends exactly one row per call and must tolerate
// concurrent callers. Implementations never swallow failures.
type NoteSink interface {
	Record(ctx context.Context, title, body, timestamp string) error
}

var noteHeaders = []string{"Title", "Body", "Timestamp"}

// SheetsNoteSink appends notes to a Google Sheets spreadsheet. On first
// use it ensures the header row exists; the check result is cached, and
// re-running it against a sheet that already has matching headers
// performs no writes.
type SheetsNoteSink struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string

	mu            sync.Mutex
	headerChecked bool
}

// NewSheetsNoteSink creates a sink targeting one sheet of one
// spreadsheet.
func NewSheetsNoteSink(svc *sheets.Service, spreadsheetID, sheetName string) *SheetsNoteSink {
	return &SheetsNoteSink{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}
}

// Record ensures the header row, then appends one (title, body,
// timestamp) row. Rows are inserted, never overwritten.
func (s *SheetsNoteSink) Record(ctx context.Context, title, body, timestamp string) error {
	log.Printf("SHEETS: recording note '%s'", title)

	if err := s.ensureHeaders(ctx); err != nil {
		return err
	}

	appendRange := s.sheetName + "!A2"
	valueRange := &sheets.ValueRange{
		Values: [][]interface{}{{title, body, timestamp}},
	}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, appendRange, valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append note row: %w", err)
	}

	log.Printf("SHEETS: note '%s' appended", title)
	return nil
}

// ensureHeaders writes the header row only when it is absent or does not
// match. The result is cached so subsequent records skip the read.
func (s *SheetsNoteSink) ensureHeaders(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.headerChecked {
		return nil
	}

	headerRange := s.sheetName + "!A1:C1"
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read header row: %w", err)
	}

	if !headersMatch(resp.Values) {
		log.Printf("SHEETS: headers missing or incomplete, writing header row")
		valueRange := &sheets.ValueRange{
			Values: [][]interface{}{{noteHeaders[0], noteHeaders[1], noteHeaders[2]}},
		}
		_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.sheetName+"!A1", valueRange).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write header row: %w", err)
		}
	}

	s.headerChecked = true
	return nil
}

func headersMatch(values [][]interface{}) bool {
	if len(values) == 0 || len(values[0]) < len(noteHeaders) {
		return false
	}
	for i, want := range noteHeaders {
		got, ok := values[0][i].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}
