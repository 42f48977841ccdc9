package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledgerdesk/coa/internal/model"
)

// OdooParser reads Odoo "Chart of Accounts" exports (Code, Account Name,
// Type). Odoo charts are flat, so every row is top-level.
type OdooParser struct{}

const (
	odooColCode = "code"
	odooColName = "account name"
	odooColType = "type"
)

// odooTypes maps Odoo account types, by label or technical name, to ours.
var odooTypes = map[string]model.AccountType{
	"receivable":              model.AccountTypeAsset,
	"bank_and_cash":           model.AccountTypeAsset,
	"current_assets":          model.AccountTypeAsset,
	"non-current_assets":      model.AccountTypeAsset,
	"prepayments":             model.AccountTypeAsset,
	"fixed_assets":            model.AccountTypeAsset,
	"asset_receivable":        model.AccountTypeAsset,
	"asset_cash":              model.AccountTypeAsset,
	"asset_current":           model.AccountTypeAsset,
	"asset_non_current":       model.AccountTypeAsset,
	"asset_prepayments":       model.AccountTypeAsset,
	"asset_fixed":             model.AccountTypeAsset,
	"payable":                 model.AccountTypeLiability,
	"credit_card":             model.AccountTypeLiability,
	"current_liabilities":     model.AccountTypeLiability,
	"non-current_liabilities": model.AccountTypeLiability,
	"liability_payable":       model.AccountTypeLiability,
	"liability_credit_card":   model.AccountTypeLiability,
	"liability_current":       model.AccountTypeLiability,
	"liability_non_current":   model.AccountTypeLiability,
	"equity":                  model.AccountTypeEquity,
	"current_year_earnings":   model.AccountTypeEquity,
	"equity_unaffected":       model.AccountTypeEquity,
	"income":                  model.AccountTypeRevenue,
	"other_income":            model.AccountTypeRevenue,
	"income_other":            model.AccountTypeRevenue,
	"expenses":                model.AccountTypeExpense,
	"expense":                 model.AccountTypeExpense,
	"depreciation":            model.AccountTypeExpense,
	"cost_of_revenue":         model.AccountTypeExpense,
	"expense_depreciation":    model.AccountTypeExpense,
	"expense_direct_cost":     model.AccountTypeExpense,
}

// Format returns the parser name.
func (p *OdooParser) Format() string { return "odoo" }

// Parse reads an Odoo export and returns Rows.
func (p *OdooParser) Parse(r io.Reader) ([]Row, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, fmt.Errorf("reading odoo CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := headerIndex(records[0])
	for _, name := range []string{odooColCode, odooColName, odooColType} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing %q column", name)
		}
	}

	var rows []Row
	for i, rec := range records[1:] {
		if len(rec) <= cols[odooColType] || len(rec) <= cols[odooColName] || len(rec) <= cols[odooColCode] {
			return nil, fmt.Errorf("row %d: expected %d fields, got %d", i+2, len(records[0]), len(rec))
		}
		t, err := odooType(rec[cols[odooColType]])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, Row{
			Code:    strings.TrimSpace(rec[cols[odooColCode]]),
			Type:    t,
			NameEN:  strings.TrimSpace(rec[cols[odooColName]]),
			Posting: true,
		})
	}
	return rows, nil
}

func odooType(raw string) (model.AccountType, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
	if t, ok := odooTypes[key]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: odoo type %q", model.ErrUnknownAccountType, raw)
}
