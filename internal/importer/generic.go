package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ledgerdesk/coa/internal/model"
)

// GenericParser reads a header-named CSV with the columns account_type and
// name_en or name_ar, plus optional code, parent_code and allow_posting.
type GenericParser struct{}

const (
	genericColCode    = "code"
	genericColType    = "account_type"
	genericColParent  = "parent_code"
	genericColNameEN  = "name_en"
	genericColNameAR  = "name_ar"
	genericColPosting = "allow_posting"
)

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads a generic chart CSV and returns Rows.
func (p *GenericParser) Parse(r io.Reader) ([]Row, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, fmt.Errorf("reading generic CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := headerIndex(records[0])
	if _, ok := cols[genericColType]; !ok {
		return nil, fmt.Errorf("missing %s column", genericColType)
	}
	_, hasEN := cols[genericColNameEN]
	_, hasAR := cols[genericColNameAR]
	if !hasEN && !hasAR {
		return nil, fmt.Errorf("missing %s or %s column", genericColNameEN, genericColNameAR)
	}

	var rows []Row
	for i, rec := range records[1:] {
		row, err := parseGenericRow(cols, rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseGenericRow(cols map[string]int, rec []string) (Row, error) {
	field := func(name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	t, err := model.ParseAccountType(field(genericColType))
	if err != nil {
		return Row{}, err
	}

	posting := true
	if raw := field(genericColPosting); raw != "" {
		if posting, err = strconv.ParseBool(raw); err != nil {
			return Row{}, fmt.Errorf("parsing %s %q: %w", genericColPosting, raw, err)
		}
	}

	row := Row{
		Code:       field(genericColCode),
		Type:       t,
		ParentCode: field(genericColParent),
		NameEN:     field(genericColNameEN),
		NameAR:     field(genericColNameAR),
		Posting:    posting,
	}
	if row.NameEN == "" && row.NameAR == "" {
		return Row{}, errors.New("account has no name")
	}
	return row, nil
}

func readRecords(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

// headerIndex maps lower-cased column names to their position.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}
