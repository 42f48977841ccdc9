// Package changelog keeps the append-only record of chart changes in
// logs/chart-log.csv.
package changelog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledgerdesk/coa/internal/model"
)

// Actions recorded in the log.
const (
	ActionAdd     = "add"
	ActionPropose = "propose"
	ActionImport  = "import"
)

// Entry is one row in the chart log.
type Entry struct {
	Timestamp time.Time
	Actor     string
	Action    string
	AccountID string
	Code      string
	Details   string
}

// Header is the CSV header for chart-log.csv.
const Header = "timestamp,actor,action,account_id,code,details"

const (
	numFields    = 6
	logDir       = "logs"
	logName      = "chart-log.csv"
	colTimestamp = 0
	colActor     = 1
	colAction    = 2
	colAccountID = 3
	colCode      = 4
	colDetails   = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colActor] = e.Actor
	row[colAction] = e.Action
	row[colAccountID] = e.AccountID
	row[colCode] = e.Code
	row[colDetails] = e.Details
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

	return Entry{
		Timestamp: ts,
		Actor:     record[colActor],
		Action:    record[colAction],
		AccountID: record[colAccountID],
		Code:      record[colCode],
		Details:   record[colDetails],
	}, nil
}

// ForAdd returns the entries recording a new account. A proposed code gets
// its own propose entry ahead of the add.
func ForAdd(actor string, acct model.Account, proposed bool, at time.Time) []Entry {
	var entries []Entry
	if proposed {
		entries = append(entries, Entry{
			Timestamp: at,
			Actor:     actor,
			Action:    ActionPropose,
			AccountID: acct.ID,
			Code:      acct.Code,
			Details:   fmt.Sprintf("%s under %s", acct.Type, parentLabel(acct.ParentID)),
		})
	}
	return append(entries, Entry{
		Timestamp: at,
		Actor:     actor,
		Action:    ActionAdd,
		AccountID: acct.ID,
		Code:      acct.Code,
		Details:   acct.DisplayName("en"),
	})
}

func parentLabel(parentID string) string {
	if parentID == "" {
		return "top level"
	}
	return "parent " + parentID
}

// RelPath is the log location relative to the project root.
func RelPath() string {
	return filepath.Join(logDir, logName)
}

// Path returns the log location under a project root.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, logDir, logName)
}

// Append writes entries to <repoRoot>/logs/chart-log.csv, creating the file and header if needed.
func Append(repoRoot string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Join(repoRoot, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(repoRoot)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening chart log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
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

// Read returns all entries from <repoRoot>/logs/chart-log.csv.
// Returns an empty slice if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	f, err := os.Open(Path(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening chart log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chart log CSV: %w", err)
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
