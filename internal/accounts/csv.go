package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ledgerdesk/coa/internal/model"
)

// Header is the CSV header for chart-of-accounts.csv.
const Header = "id,code,account_type,parent_id,name_en,name_ar,description_en,description_ar,is_active,allow_posting"

const (
	numFields  = 10
	colID      = 0
	colCode    = 1
	colType    = 2
	colParent  = 3
	colNameEN  = 4
	colNameAR  = 5
	colDescEN  = 6
	colDescAR  = 7
	colActive  = 8
	colPosting = 9
)

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colCode] = acct.Code
	row[colType] = string(acct.Type)
	row[colParent] = acct.ParentID
	row[colNameEN] = acct.NameEN
	row[colNameAR] = acct.NameAR
	row[colDescEN] = acct.DescriptionEN
	row[colDescAR] = acct.DescriptionAR
	row[colActive] = strconv.FormatBool(acct.IsActive)
	row[colPosting] = strconv.FormatBool(acct.AllowPosting)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	if record[colID] == "" {
		return model.Account{}, fmt.Errorf("empty id")
	}

	accountType, err := model.ParseAccountType(record[colType])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing account_type: %w", err)
	}

	active, err := parseFlag(record[colActive], true)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing is_active %q: %w", record[colActive], err)
	}

	posting, err := parseFlag(record[colPosting], false)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing allow_posting %q: %w", record[colPosting], err)
	}

	return model.Account{
		ID:            record[colID],
		Code:          record[colCode],
		Type:          accountType,
		ParentID:      record[colParent],
		NameEN:        record[colNameEN],
		NameAR:        record[colNameAR],
		DescriptionEN: record[colDescEN],
		DescriptionAR: record[colDescAR],
		IsActive:      active,
		AllowPosting:  posting,
	}, nil
}

// parseFlag reads a boolean column; an empty cell takes def.
func parseFlag(s string, def bool) (bool, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseBool(s)
}
