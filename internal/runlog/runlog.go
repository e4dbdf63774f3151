// Package runlog keeps an append-only CSV record of pipeline runs.
package runlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/ledgerport/internal/csvio"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp   time.Time
	RunID       string
	Command     string
	CompanyID   int
	Details     string
	Diagnostics int
	CommitHash  string
}

// Header is the run log CSV header.
var Header = []string{"timestamp", "run_id", "command", "company", "details", "diagnostics", "commit_hash"}

const (
	numFields      = 7
	logDir         = "logs"
	logFile        = "logs/run-log.csv"
	colTimestamp   = 0
	colRunID       = 1
	colCommand     = 2
	colCompany     = 3
	colDetails     = 4
	colDiagnostics = 5
	colCommitHash  = 6
)

// NewEntry starts an entry stamped now with a fresh run ID.
func NewEntry(command string, company int) Entry {
	return Entry{
		Timestamp: time.Now().UTC().Truncate(time.Second),
		RunID:     uuid.NewString(),
		Command:   command,
		CompanyID: company,
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colCommand] = e.Command
	row[colCompany] = strconv.Itoa(e.CompanyID)
	row[colDetails] = e.Details
	row[colDiagnostics] = strconv.Itoa(e.Diagnostics)
	row[colCommitHash] = e.CommitHash
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	if _, err := uuid.Parse(record[colRunID]); err != nil {
		return Entry{}, fmt.Errorf("parsing run_id %q: %w", record[colRunID], err)
	}
	company, err := strconv.Atoi(record[colCompany])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing company %q: %w", record[colCompany], err)
	}
	diags, err := strconv.Atoi(record[colDiagnostics])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing diagnostics %q: %w", record[colDiagnostics], err)
	}

	return Entry{
		Timestamp:   ts,
		RunID:       record[colRunID],
		Command:     record[colCommand],
		CompanyID:   company,
		Details:     record[colDetails],
		Diagnostics: diags,
		CommitHash:  record[colCommitHash],
	}, nil
}

// Path returns the run log location under root.
func Path(root string) string {
	return filepath.Join(root, logFile)
}

// Append writes entries to <root>/logs/run-log.csv, creating the file and
// header if needed.
func Append(root string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Join(root, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(root)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csvio.NewWriter(f)
	if needsHeader {
		if err := cw.Write(Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/run-log.csv, or nil if the
// file does not exist.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(Path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csvio.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
