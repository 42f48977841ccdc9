package accounts

import (
	"strconv"

	"github.com/ledgerdesk/coa/internal/chart"
	"github.com/ledgerdesk/coa/internal/model"
)

// Chart templates accepted by DefaultChart.
const (
	TemplateStandard = "standard"
	TemplateMinimal  = "minimal"
)

// DefaultChart returns a starter chart of accounts. Codes are assigned by
// chart.Allocate, so the starter chart follows the same numbering as accounts
// added later. Unknown templates fall back to the standard chart.
func DefaultChart(template string) []model.Account {
	switch template {
	case TemplateMinimal:
		return minimalChart()
	default:
		return standardChart()
	}
}

type chartBuilder struct {
	accounts []model.Account
}

// add allocates a code for a new account and returns its id.
func (b *chartBuilder) add(t model.AccountType, parentID, nameEN, nameAR string, posting bool) string {
	code, err := chart.Allocate(b.accounts, t, parentID)
	if err != nil {
		panic("default chart: " + err.Error())
	}
	id := strconv.Itoa(len(b.accounts) + 1)
	b.accounts = append(b.accounts, model.Account{
		ID:           id,
		Code:         code,
		Type:         t,
		ParentID:     parentID,
		IsActive:     true,
		AllowPosting: posting,
		NameEN:       nameEN,
		NameAR:       nameAR,
	})
	return id
}

func minimalChart() []model.Account {
	b := &chartBuilder{}
	b.add(model.AccountTypeAsset, "", "Assets", "الأصول", true)
	b.add(model.AccountTypeLiability, "", "Liabilities", "الخصوم", true)
	b.add(model.AccountTypeEquity, "", "Equity", "حقوق الملكية", true)
	b.add(model.AccountTypeRevenue, "", "Revenue", "الإيرادات", true)
	b.add(model.AccountTypeExpense, "", "Expenses", "المصروفات", true)
	return b.accounts
}

func standardChart() []model.Account {
	b := &chartBuilder{}

	assets := b.add(model.AccountTypeAsset, "", "Assets", "الأصول", false)
	current := b.add(model.AccountTypeAsset, assets, "Current Assets", "الأصول المتداولة", false)
	b.add(model.AccountTypeAsset, current, "Cash", "النقدية", true)
	b.add(model.AccountTypeAsset, current, "Bank Accounts", "الحسابات البنكية", true)
	b.add(model.AccountTypeAsset, current, "Accounts Receivable", "الذمم المدينة", true)
	b.add(model.AccountTypeAsset, current, "Inventory", "المخزون", true)
	fixed := b.add(model.AccountTypeAsset, assets, "Fixed Assets", "الأصول الثابتة", false)
	b.add(model.AccountTypeAsset, fixed, "Equipment", "المعدات", true)

	liabilities := b.add(model.AccountTypeLiability, "", "Liabilities", "الخصوم", false)
	b.add(model.AccountTypeLiability, liabilities, "Accounts Payable", "الذمم الدائنة", true)
	b.add(model.AccountTypeLiability, liabilities, "VAT Payable", "ضريبة القيمة المضافة المستحقة", true)

	equity := b.add(model.AccountTypeEquity, "", "Equity", "حقوق الملكية", false)
	b.add(model.AccountTypeEquity, equity, "Owner's Capital", "رأس المال", true)
	b.add(model.AccountTypeEquity, equity, "Retained Earnings", "الأرباح المحتجزة", true)

	revenue := b.add(model.AccountTypeRevenue, "", "Revenue", "الإيرادات", false)
	b.add(model.AccountTypeRevenue, revenue, "Sales Revenue", "إيرادات المبيعات", true)
	b.add(model.AccountTypeRevenue, revenue, "Service Revenue", "إيرادات الخدمات", true)

	expenses := b.add(model.AccountTypeExpense, "", "Expenses", "المصروفات", false)
	b.add(model.AccountTypeExpense, expenses, "Cost of Goods Sold", "تكلفة البضاعة المباعة", true)
	b.add(model.AccountTypeExpense, expenses, "Salaries", "الرواتب", true)
	b.add(model.AccountTypeExpense, expenses, "Rent", "الإيجار", true)
	b.add(model.AccountTypeExpense, expenses, "Utilities", "المرافق", true)

	return b.accounts
}
