// Package racelog persists finalized race records to an append-only CSV log.
package racelog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// utf8BOM is written once before the header so spreadsheet imports keep
// non-ASCII course names intact.
const utf8BOM = "\xef\xbb\xbf"

const timestampLayout = "2006-01-02 15:04:05"

var header = []string{"Filename", "Timestamp", "Course", "Rank", "Participants", "Rate", "Rate Change"}

// Record is one finalized race result. Immutable once appended.
type Record struct {
	Filename     string
	Timestamp    time.Time
	Course       string
	Rank         int
	Participants int
	Rate         int
	RateChange   int
}

// Store is the single reader/writer of the race log file. The monitoring
// loop is the only appender; concurrent readers (a status display) always
// perform full-file reads, so append-then-sync keeps them consistent.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by the given file path. The file is not
// created until the first append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Append writes one record and syncs it to disk before returning. The header
// (and BOM) go out with the first record ever written.
func (s *Store) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	first, err := s.isEmpty()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open race log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if first {
		if _, err := f.WriteString(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	row := []string{
		rec.Filename,
		rec.Timestamp.Format(timestampLayout),
		rec.Course,
		strconv.Itoa(rec.Rank),
		strconv.Itoa(rec.Participants),
		strconv.Itoa(rec.Rate),
		strconv.Itoa(rec.RateChange),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush record: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync race log: %w", err)
	}
	return nil
}

// All returns every record, oldest first. A missing log file yields an empty
// slice, not an error.
func (s *Store) All() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// LastRate returns the final rate of the most recently appended record.
func (s *Store) LastRate() (int, bool, error) {
	recs, err := s.All()
	if err != nil || len(recs) == 0 {
		return 0, false, err
	}
	return recs[len(recs)-1].Rate, true, nil
}

// LastCourse returns the course label of the most recently appended record.
func (s *Store) LastCourse() (string, bool, error) {
	recs, err := s.All()
	if err != nil || len(recs) == 0 {
		return "", false, err
	}
	return recs[len(recs)-1].Course, true, nil
}

func (s *Store) isEmpty() (bool, error) {
	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat race log: %w", err)
	}
	return info.Size() == 0, nil
}

func (s *Store) readAll() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read race log: %w", err)
	}

	text := strings.TrimPrefix(string(data), utf8BOM)
	rows, err := csv.NewReader(strings.NewReader(text)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse race log: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	idx := columnIndex(rows[0])
	var recs []Record
	for _, row := range rows[1:] {
		rec, ok := parseRow(row, idx)
		if !ok {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// columnIndex maps header names to positions so the reader tolerates logs
// written with extra trailing columns (older revisions carried a Points
// column).
func columnIndex(head []string) map[string]int {
	idx := make(map[string]int, len(head))
	for i, name := range head {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

func parseRow(row []string, idx map[string]int) (Record, bool) {
	field := func(name string) (string, bool) {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return row[i], true
	}
	intField := func(name string) (int, bool) {
		s, ok := field(name)
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		return n, true
	}

	var rec Record
	var ok bool
	if rec.Filename, ok = field("Filename"); !ok {
		return Record{}, false
	}
	if ts, tsOK := field("Timestamp"); tsOK {
		rec.Timestamp, _ = time.ParseInLocation(timestampLayout, ts, time.Local)
	}
	if rec.Course, ok = field("Course"); !ok {
		return Record{}, false
	}
	if rec.Rank, ok = intField("Rank"); !ok {
		return Record{}, false
	}
	rec.Participants, _ = intField("Participants")
	if rec.Rate, ok = intField("Rate"); !ok {
		return Record{}, false
	}
	rec.RateChange, _ = intField("Rate Change")
	return rec, true
}
