// Package healthexport reads the health app's automated CSV export from
// a file-drop directory. Each CSV carries a Date column plus one column
// per metric, headed "Name (unit)".
package healthexport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cabell132/FitnessTracker/internal/domain"
)

// ErrNoDateColumn indicates a CSV without a Date column. Such files are
// skipped, not fatal.
var ErrNoDateColumn = errors.New("csv has no Date column")

var headerUnitPattern = regexp.MustCompile(`^(.*?)\s*\(([^)]*)\)\s*$`)

// Timestamp layouts observed in the export, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// File is one dropped export file.
type File struct {
	Path     string
	Modified time.Time
}

// Source lists export files under a drop directory.
type Source struct {
	dir string
}

// NewSource points a Source at the export drop directory.
func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

// ListNewFiles returns the CSV files under subdir modified strictly
// after since, ordered oldest first.
func (s *Source) ListNewFiles(subdir string, since time.Time) ([]File, error) {
	root := filepath.Join(s.dir, subdir)
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		// Nothing exported for this category yet.
		return nil, nil
	}
	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(since) {
			files = append(files, File{Path: path, Modified: info.ModTime()})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list export files: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Modified.Before(files[j].Modified) })
	return files, nil
}

// Open opens a listed file for parsing.
func (s *Source) Open(f File) (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// ParseRecords reads one export CSV into (metric, timestamp, value)
// triples. Cells that are empty or non-numeric are skipped; rows with
// an unparseable timestamp are dropped.
func ParseRecords(r io.Reader) ([]domain.HealthRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoDateColumn
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	dateCol := -1
	type column struct {
		index int
		name  string
		unit  string
	}
	var columns []column
	for i, h := range header {
		h = strings.TrimSpace(h)
		if strings.EqualFold(h, "Date") {
			dateCol = i
			continue
		}
		if m := headerUnitPattern.FindStringSubmatch(h); m != nil {
			columns = append(columns, column{index: i, name: strings.TrimSpace(m[1]), unit: m[2]})
		} else if h != "" {
			columns = append(columns, column{index: i, name: h})
		}
	}
	if dateCol < 0 {
		return nil, ErrNoDateColumn
	}

	var records []domain.HealthRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if dateCol >= len(row) {
			continue
		}
		recordedAt, ok := parseTimestamp(row[dateCol])
		if !ok {
			continue
		}
		for _, col := range columns {
			if col.index >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col.index])
			if cell == "" {
				continue
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			records = append(records, domain.HealthRecord{
				TypeName:   col.name,
				Unit:       col.unit,
				RecordedAt: recordedAt,
				Value:      value,
			})
		}
	}
	return records, nil
}

func parseTimestamp(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
