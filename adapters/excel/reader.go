package excel

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"notelens/domain/core"
	"notelens/domain/note"
)

// Reader imports notes from a spreadsheet. The first sheet must carry a
// header row; "title" and "body" columns map to the note itself, a
// "date" column overrides the creation timestamp, and every other
// column becomes a note field keyed by its header.
type Reader struct {
	filePath string
}

// NewReader creates a note importer for one workbook
func NewReader(filePath string) *Reader {
	return &Reader{filePath: filePath}
}

// ReadNotes parses the workbook into notes for the given notebook.
// Numeric cells are decoded as numbers so metrics survive the import.
func (r *Reader) ReadNotes(notebookID core.NotebookID) ([]*note.Note, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("workbook not found: %s", r.filePath)
	}

	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook must have a header row and at least one data row")
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	notes := make([]*note.Note, 0, len(rows)-1)
	for _, row := range rows[1:] {
		n := r.buildNote(notebookID, headers, row)
		if n != nil {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

func (r *Reader) buildNote(notebookID core.NotebookID, headers []string, row []string) *note.Note {
	n := &note.Note{
		ID:         core.NoteID(core.NewID()),
		NotebookID: notebookID,
		Fields:     make(map[string]interface{}),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	empty := true
	for i, header := range headers {
		if header == "" || i >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		empty = false

		switch strings.ToLower(header) {
		case "title":
			n.Title = cell
		case "body":
			n.Body = cell
		case "date":
			if ts, err := time.Parse("2006-01-02", cell); err == nil {
				n.CreatedAt = ts
				n.UpdatedAt = ts
			}
		default:
			if num, err := strconv.ParseFloat(cell, 64); err == nil {
				n.Fields[header] = num
			} else {
				n.Fields[header] = cell
			}
		}
	}
	if empty {
		return nil
	}
	return n
}
