package model

import (
	"errors"
	"fmt"
	"strings"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// ErrUnknownAccountType is returned by ParseAccountType for values outside the enumeration.
var ErrUnknownAccountType = errors.New("unknown account type")

// AccountTypes lists every account type in chart order.
func AccountTypes() []AccountType {
	return []AccountType{
		AccountTypeAsset,
		AccountTypeLiability,
		AccountTypeEquity,
		AccountTypeRevenue,
		AccountTypeExpense,
	}
}

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// ParseAccountType accepts an account type in any letter case ("asset", "Asset", "ASSET").
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAccountType, s)
	}
	return t, nil
}

// Account is one entry in the chart of accounts.
type Account struct {
	ID            string      `json:"id"`
	Code          string      `json:"code"`
	Type          AccountType `json:"account_type"`
	ParentID      string      `json:"parent_id,omitempty"` // "" = top-level
	IsActive      bool        `json:"is_active"`
	AllowPosting  bool        `json:"allow_posting"`
	NameEN        string      `json:"name_en"`
	NameAR        string      `json:"name_ar"`
	DescriptionEN string      `json:"description_en,omitempty"`
	DescriptionAR string      `json:"description_ar,omitempty"`
}

// IsRoot reports whether the account has no parent.
func (a Account) IsRoot() bool {
	return a.ParentID == ""
}

// DisplayName returns the name for lang ("ar" or "en"), falling back to
// whichever name is set.
func (a Account) DisplayName(lang string) string {
	if lang == "ar" && a.NameAR != "" {
		return a.NameAR
	}
	if a.NameEN != "" {
		return a.NameEN
	}
	return a.NameAR
}

// TreeEntry is one account in a pre-order hierarchy walk.
type TreeEntry struct {
	Account Account
	Level   int
}
