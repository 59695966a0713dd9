// Package ledger maintains the append-only spreadsheet of downloaded item
// metadata. One row per unique item, identified by item ID and source URL;
// appending to an existing file never rewrites prior rows.
package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"clip-archiver/internal/model"
	"clip-archiver/internal/store"
)

const (
	// DefaultFilename is used when no explicit ledger filename is given.
	// Deliberately timestamp-free so repeated runs append to one file.
	DefaultFilename = "videos_metadata.xlsx"

	sheetName   = "Video Metadata"
	maxColWidth = 50
)

// Headers is the canonical column schema. Existing files with at least this
// many columns are accepted as-is; anything narrower is reinitialized.
var Headers = []string{
	"Video ID", "Title", "Description", "Uploader", "Uploader ID",
	"Channel", "Channel ID", "Upload Date", "Duration (seconds)",
	"Duration (formatted)", "View Count", "Like Count", "Comment Count",
	"Repost Count", "Hashtags", "Original URL", "Thumbnail URL",
	"Video Quality", "File Size (bytes)", "Resolution", "Format",
	"Download Date", "Download Path",
}

// Columns carrying counts get the #,##0 display format.
var countColumns = map[int]bool{11: true, 12: true, 13: true, 14: true, 19: true}

type Store struct {
	path   string
	file   *excelize.File
	sheet  string
	closed bool

	countStyle int
}

// Info describes the current ledger file for status surfaces.
type Info struct {
	FilePath     string   `json:"file_path"`
	FileName     string   `json:"file_name"`
	TotalRows    int      `json:"total_rows"`
	TotalColumns int      `json:"total_columns"`
	DataRows     int      `json:"data_rows"`
	ColumnNames  []string `json:"column_names"`
	FileExists   bool     `json:"file_exists"`
}

// Open loads the ledger at outputDir/filename, or prepares a fresh one in
// memory when the file does not exist. An existing file whose header is
// narrower than the canonical schema is discarded and reinitialized; extra
// columns are tolerated. The first Save creates the file on disk.
func Open(outputDir, filename string) (*Store, error) {
	if err := store.Mkdir(outputDir); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(filename)
	if name == "" {
		name = DefaultFilename
	}
	s := &Store{path: filepath.Join(outputDir, name)}

	if _, err := os.Stat(s.path); err == nil {
		if err := s.loadExisting(); err != nil {
			// unreadable or structurally incompatible: start over
			if initErr := s.initFresh(); initErr != nil {
				return nil, initErr
			}
		}
	} else {
		if err := s.initFresh(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) loadExisting() error {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("open ledger %s: %w", s.path, err)
	}
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("read ledger %s: %w", s.path, err)
	}
	if len(rows) == 0 || len(rows[0]) < len(Headers) {
		_ = f.Close()
		return fmt.Errorf("ledger %s has an incompatible header", s.path)
	}
	s.file = f
	s.sheet = sheet
	return nil
}

func (s *Store) initFresh() error {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name ledger sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	for i, header := range Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("address header column %d: %w", i+1, err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("write header %q: %w", header, err)
		}
	}
	lastCell, err := excelize.CoordinatesToCellName(len(Headers), 1)
	if err != nil {
		return fmt.Errorf("address header row: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCell, headerStyle); err != nil {
		return fmt.Errorf("style header row: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(Headers))
	if err != nil {
		return fmt.Errorf("address last column: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", lastCol, 15); err != nil {
		return fmt.Errorf("set initial column widths: %w", err)
	}
	s.file = f
	s.sheet = sheetName
	return nil
}

// Path returns the ledger's backing file path.
func (s *Store) Path() string {
	return s.path
}

// ContainsURL reports whether any row's Original URL column equals url.
// This is the lightweight pre-fetch duplicate check: the item ID is not
// known before fetching, so only the URL can match here.
func (s *Store) ContainsURL(url string) (bool, error) {
	if s.closed {
		return false, fmt.Errorf("ledger is closed")
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return false, nil
	}
	rows, err := s.file.GetRows(s.sheet)
	if err != nil {
		return false, fmt.Errorf("read ledger rows: %w", err)
	}
	urlCol := columnIndex(rows, "Original URL")
	if urlCol < 0 {
		return false, nil
	}
	for _, row := range dataRows(rows) {
		if cellAt(row, urlCol) == url {
			return true, nil
		}
	}
	return false, nil
}

// Add appends one item row unless a row with the same non-empty item ID or
// the same non-empty source URL already exists. Returns false for a
// duplicate; that is a normal outcome, not an error.
func (s *Store) Add(rec model.InfoRecord, downloadPath string) (bool, error) {
	if s.closed {
		return false, fmt.Errorf("ledger is closed")
	}
	rows, err := s.file.GetRows(s.sheet)
	if err != nil {
		return false, fmt.Errorf("read ledger rows: %w", err)
	}

	itemID, sourceURL := IdentityOf(rec)
	if s.exists(rows, itemID, sourceURL) {
		return false, nil
	}

	next := len(rows) + 1
	if next < 2 {
		next = 2
	}
	values := rowValues(rec, downloadPath, time.Now())
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, next)
		if err != nil {
			return false, fmt.Errorf("address row %d column %d: %w", next, i+1, err)
		}
		if err := s.file.SetCellValue(s.sheet, cell, v); err != nil {
			return false, fmt.Errorf("write ledger cell %s: %w", cell, err)
		}
		if countColumns[i+1] {
			if n, ok := v.(int64); ok && n != 0 {
				if err := s.applyCountFormat(cell); err != nil {
					return false, err
				}
			}
		}
	}
	s.widenColumns(values)
	return true, nil
}

func (s *Store) exists(rows [][]string, itemID, sourceURL string) bool {
	if itemID == "" && sourceURL == "" {
		return false
	}
	idCol := columnIndex(rows, "Video ID")
	urlCol := columnIndex(rows, "Original URL")
	for _, row := range dataRows(rows) {
		if itemID != "" && idCol >= 0 && cellAt(row, idCol) == itemID {
			return true
		}
		if sourceURL != "" && urlCol >= 0 && cellAt(row, urlCol) == sourceURL {
			return true
		}
	}
	return false
}

func (s *Store) applyCountFormat(cell string) error {
	if s.countStyle == 0 {
		style, err := s.file.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
		if err != nil {
			return fmt.Errorf("create count style: %w", err)
		}
		s.countStyle = style
	}
	if err := s.file.SetCellStyle(s.sheet, cell, cell, s.countStyle); err != nil {
		return fmt.Errorf("style ledger cell %s: %w", cell, err)
	}
	return nil
}

// widenColumns is a cosmetic best-effort pass; width errors are ignored.
func (s *Store) widenColumns(values []any) {
	for i, v := range values {
		content := fmt.Sprintf("%v", v)
		if content == "" {
			continue
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		current, err := s.file.GetColWidth(s.sheet, col)
		if err != nil {
			continue
		}
		want := float64(len(content) + 2)
		if want > maxColWidth {
			want = maxColWidth
		}
		if want > current {
			_ = s.file.SetColWidth(s.sheet, col, col, want)
		}
	}
}

// Save flushes the workbook to the backing file. On failure the in-memory
// rows are untouched, so a later Save can still persist them.
func (s *Store) Save() error {
	if s.closed {
		return fmt.Errorf("ledger is closed")
	}
	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("save ledger %s: %w", s.path, err)
	}
	return nil
}

// Close releases the workbook. The store must not be used afterwards.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close ledger %s: %w", s.path, err)
	}
	return nil
}

// DataRows returns the number of item rows currently in memory.
func (s *Store) DataRows() (int, error) {
	if s.closed {
		return 0, fmt.Errorf("ledger is closed")
	}
	rows, err := s.file.GetRows(s.sheet)
	if err != nil {
		return 0, fmt.Errorf("read ledger rows: %w", err)
	}
	n := len(rows) - 1
	if n < 0 {
		n = 0
	}
	return n, nil
}

// Status returns the human-readable ledger summary shown before a batch.
func (s *Store) Status() string {
	if _, err := os.Stat(s.path); err != nil {
		return "New file will be created"
	}
	n, err := s.DataRows()
	if err != nil {
		return fmt.Sprintf("Error checking file status: %v", err)
	}
	if n == 0 {
		return "Empty file - ready for new data"
	}
	return fmt.Sprintf("Existing file with %d videos - will append new data", n)
}

// Describe reports file-level details for the status command and the TUI.
func (s *Store) Describe() (Info, error) {
	if s.closed {
		return Info{}, fmt.Errorf("ledger is closed")
	}
	rows, err := s.file.GetRows(s.sheet)
	if err != nil {
		return Info{}, fmt.Errorf("read ledger rows: %w", err)
	}
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	dataRows := len(rows) - 1
	if dataRows < 0 {
		dataRows = 0
	}
	// report the file's own header; loaded files may carry extra columns
	columns := Headers
	if len(rows) > 0 && len(rows[0]) > 0 {
		columns = rows[0]
	}
	_, statErr := os.Stat(s.path)
	return Info{
		FilePath:     s.path,
		FileName:     filepath.Base(s.path),
		TotalRows:    len(rows),
		TotalColumns: cols,
		DataRows:     dataRows,
		ColumnNames:  columns,
		FileExists:   statErr == nil,
	}, nil
}

func rowValues(rec model.InfoRecord, downloadPath string, now time.Time) []any {
	durationSeconds := int(rec.Duration)
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	return []any{
		rec.ID,
		rec.Title,
		rec.Description,
		rec.Uploader,
		rec.UploaderID,
		rec.Channel,
		rec.ChannelID,
		FormatUploadDate(rec.UploadDate),
		int64(durationSeconds),
		FormatDuration(durationSeconds),
		rec.ViewCount,
		rec.LikeCount,
		rec.CommentCount,
		rec.RepostCount,
		ExtractHashtags(rec.Description),
		rec.WebpageURL,
		rec.Thumbnail,
		VideoQuality(rec),
		rec.Filesize,
		Resolution(rec.Width, rec.Height),
		rec.Ext,
		now.Format("2006-01-02 15:04:05"),
		downloadPath,
	}
}

func columnIndex(rows [][]string, header string) int {
	if len(rows) == 0 {
		return -1
	}
	for i, h := range rows[0] {
		if h == header {
			return i
		}
	}
	return -1
}

func dataRows(rows [][]string) [][]string {
	if len(rows) < 2 {
		return nil
	}
	return rows[1:]
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
