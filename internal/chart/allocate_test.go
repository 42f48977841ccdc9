package chart

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/coa/internal/model"
)

func acct(id, code string, t model.AccountType, parentID string) model.Account {
	return model.Account{ID: id, Code: code, Type: t, ParentID: parentID, IsActive: true}
}

func TestAllocate_EmptyChartUsesBaseCodes(t *testing.T) {
	tests := []struct {
		accountType model.AccountType
		want        string
	}{
		{model.AccountTypeAsset, "1000"},
		{model.AccountTypeLiability, "2000"},
		{model.AccountTypeEquity, "3000"},
		{model.AccountTypeRevenue, "4000"},
		{model.AccountTypeExpense, "5000"},
	}
	for _, tt := range tests {
		got, err := Allocate(nil, tt.accountType, "")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "type %s", tt.accountType)
	}
}

func TestAllocate_TopLevelIncrement(t *testing.T) {
	accounts := []model.Account{
		acct("a", "1000", model.AccountTypeAsset, ""),
		acct("b", "1200", model.AccountTypeAsset, ""),
	}
	got, err := Allocate(accounts, model.AccountTypeAsset, "")
	require.NoError(t, err)
	assert.Equal(t, "1300", got)
}

func TestAllocate_TopLevelBelowBase(t *testing.T) {
	accounts := []model.Account{acct("a", "500", model.AccountTypeAsset, "")}
	got, err := Allocate(accounts, model.AccountTypeAsset, "")
	require.NoError(t, err)
	assert.Equal(t, "1000", got)
}

func TestAllocate_TopLevelIgnoresOtherTypesAndChildren(t *testing.T) {
	accounts := []model.Account{
		acct("a", "1000", model.AccountTypeAsset, ""),
		acct("b", "10001", model.AccountTypeAsset, "a"),
		acct("c", "2900", model.AccountTypeLiability, ""),
	}
	got, err := Allocate(accounts, model.AccountTypeAsset, "")
	require.NoError(t, err)
	assert.Equal(t, "1100", got)

	got, err = Allocate(accounts, model.AccountTypeEquity, "")
	require.NoError(t, err)
	assert.Equal(t, "3000", got)
}

func TestAllocate_FirstChild(t *testing.T) {
	accounts := []model.Account{acct("p", "1100", model.AccountTypeAsset, "")}
	got, err := Allocate(accounts, model.AccountTypeExpense, "p")
	require.NoError(t, err)
	assert.Equal(t, "11001", got, "child codes ignore the requested type")
}

func TestAllocate_SubsequentChild(t *testing.T) {
	accounts := []model.Account{
		acct("p", "1100", model.AccountTypeAsset, ""),
		acct("c1", "11001", model.AccountTypeAsset, "p"),
		acct("c2", "11002", model.AccountTypeAsset, "p"),
	}
	got, err := Allocate(accounts, model.AccountTypeAsset, "p")
	require.NoError(t, err)
	assert.Equal(t, "11003", got)
}

func TestAllocate_NonNumericChildIgnored(t *testing.T) {
	accounts := []model.Account{
		acct("p", "1100", model.AccountTypeAsset, ""),
		acct("c1", "ABC", model.AccountTypeAsset, "p"),
		acct("c2", "11002", model.AccountTypeAsset, "p"),
	}
	got, err := Allocate(accounts, model.AccountTypeAsset, "p")
	require.NoError(t, err)
	assert.Equal(t, "11003", got)
}

func TestAllocate_OnlyNonNumericChildren(t *testing.T) {
	accounts := []model.Account{
		acct("p", "CASH", model.AccountTypeAsset, ""),
		acct("c1", "CASH-A", model.AccountTypeAsset, "p"),
	}
	got, err := Allocate(accounts, model.AccountTypeAsset, "p")
	require.NoError(t, err)
	assert.Equal(t, "CASH1", got)
}

func TestAllocate_TenthChildKeepsIncrementing(t *testing.T) {
	accounts := []model.Account{acct("p", "1100", model.AccountTypeAsset, "")}
	for i, code := range []string{"11001", "11002", "11003", "11004", "11005", "11006", "11007", "11008", "11009"} {
		accounts = append(accounts, acct(string(rune('a'+i)), code, model.AccountTypeAsset, "p"))
	}
	got, err := Allocate(accounts, model.AccountTypeAsset, "p")
	require.NoError(t, err)
	assert.Equal(t, "11010", got)
}

func TestAllocate_UnresolvedParentFallsBackToTopLevel(t *testing.T) {
	accounts := []model.Account{acct("a", "1000", model.AccountTypeAsset, "")}
	got, err := Allocate(accounts, model.AccountTypeAsset, "missing")
	require.NoError(t, err)
	assert.Equal(t, "1100", got)
}

func TestAllocate_InvalidType(t *testing.T) {
	_, err := Allocate(nil, model.AccountType("INCOME"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidType)

	var ite *InvalidTypeError
	require.True(t, errors.As(err, &ite))
	assert.Equal(t, model.AccountType("INCOME"), ite.Type)
	assert.Contains(t, err.Error(), "INCOME")
}

func TestAllocate_InvalidTypeWithParent(t *testing.T) {
	accounts := []model.Account{acct("p", "1100", model.AccountTypeAsset, "")}
	_, err := Allocate(accounts, model.AccountType(""), "p")
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestAllocate_Idempotent(t *testing.T) {
	accounts := []model.Account{
		acct("a", "1000", model.AccountTypeAsset, ""),
		acct("b", "10001", model.AccountTypeAsset, "a"),
		acct("c", "9x", model.AccountTypeAsset, "a"),
	}
	snapshot := append([]model.Account(nil), accounts...)

	first, err := Allocate(accounts, model.AccountTypeAsset, "a")
	require.NoError(t, err)
	second, err := Allocate(accounts, model.AccountTypeAsset, "a")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, accounts, "input must not be mutated")
}

func TestAllocate_OverflowingCodesIgnored(t *testing.T) {
	accounts := []model.Account{
		acct("p", "1100", model.AccountTypeAsset, ""),
		acct("c1", "11001", model.AccountTypeAsset, "p"),
		acct("c2", "99999999999999999999", model.AccountTypeAsset, "p"),
		acct("c3", "9223372036854775807", model.AccountTypeAsset, "p"),
		acct("t", "9223372036854775800", model.AccountTypeExpense, ""),
	}
	got, err := Allocate(accounts, model.AccountTypeAsset, "p")
	require.NoError(t, err)
	assert.Equal(t, "11002", got)

	got, err = Allocate(accounts, model.AccountTypeExpense, "")
	require.NoError(t, err)
	assert.Equal(t, "5000", got, "a code that cannot advance by the step is ignored")
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		code string
		want int64
		ok   bool
	}{
		{"1000", 1000, true},
		{"0042", 42, true},
		{"", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"12a", 0, false},
		{" 12", 0, false},
		{"1.5", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseCode(tt.code, 1)
		assert.Equal(t, tt.ok, ok, "code %q", tt.code)
		assert.Equal(t, tt.want, got, "code %q", tt.code)
	}
}

func TestBaseCode(t *testing.T) {
	for i, at := range model.AccountTypes() {
		base, err := BaseCode(at)
		require.NoError(t, err)
		assert.Equal(t, int64((i+1)*1000), base)
	}
	_, err := BaseCode("OTHER")
	assert.ErrorIs(t, err, ErrInvalidType)
}
