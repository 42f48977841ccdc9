// Package importer reads charts of accounts exported by other systems and
// plans them into an existing chart.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledgerdesk/coa/internal/accounts"
	"github.com/ledgerdesk/coa/internal/model"
)

// Row is one account read from an export. Exports carry no ids, so parents
// are referenced by code.
type Row struct {
	Code       string // empty: propose one
	Type       model.AccountType
	ParentCode string
	NameEN     string
	NameAR     string
	Posting    bool
}

// Parser converts an exported chart into Rows.
type Parser interface {
	Parse(r io.Reader) ([]Row, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	return names
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&GenericParser{})
	r.Register(&OdooParser{})
	return r
}

// Plan turns rows into accounts that can be inserted into existing, in row
// order. Rows may name parents added by earlier rows. Codes are proposed
// for rows without one and ids come from newID.
func Plan(existing []model.Account, rows []Row, newID func() string) ([]model.Account, error) {
	svc := accounts.NewService(existing)

	var planned []model.Account
	for i, row := range rows {
		acct := model.Account{
			ID:           newID(),
			Code:         row.Code,
			Type:         row.Type,
			IsActive:     true,
			AllowPosting: row.Posting,
			NameEN:       row.NameEN,
			NameAR:       row.NameAR,
		}

		if row.ParentCode != "" {
			parent, ok := svc.ByCode(row.ParentCode)
			if !ok {
				return nil, fmt.Errorf("row %d: parent code %s: %w", i+1, row.ParentCode, accounts.ErrNotFound)
			}
			acct.ParentID = parent.ID
		}

		if acct.Code == "" {
			code, err := svc.NextCode(acct.Type, acct.ParentID)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			acct.Code = code
		}

		if err := svc.Add(acct); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		planned = append(planned, acct)
	}
	return planned, nil
}

// importDir is the subdirectory for import CSVs.
const importDir = "import"

// processedDir is the subdirectory for processed CSVs.
const processedDir = "import/processed"

// Scan returns CSV files in <repoRoot>/import/.
func Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
