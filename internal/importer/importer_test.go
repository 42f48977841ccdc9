package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/coa/internal/accounts"
	"github.com/ledgerdesk/coa/internal/model"
)

func parseFile(t *testing.T, p Parser, path string) []Row {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := p.Parse(f)
	require.NoError(t, err)
	return rows
}

func TestGenericParser_Parse(t *testing.T) {
	rows := parseFile(t, &GenericParser{}, "../../testdata/generic-chart.csv")
	require.Len(t, rows, 4)

	assert.Equal(t, Row{
		Code: "6000", Type: model.AccountTypeExpense, NameEN: "Operating Expenses", NameAR: "المصروفات التشغيلية",
	}, rows[0])
	assert.Equal(t, "", rows[1].Code)
	assert.Equal(t, "6000", rows[1].ParentCode)
	assert.True(t, rows[1].Posting)
	assert.Equal(t, model.AccountTypeExpense, rows[2].Type, "type is case-insensitive")
	assert.True(t, rows[2].Posting, "empty allow_posting defaults to true")
	assert.Equal(t, "1000", rows[3].ParentCode)
}

func TestGenericParser_HeaderOnly(t *testing.T) {
	rows, err := (&GenericParser{}).Parse(strings.NewReader("account_type,name_en\n"))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestGenericParser_ColumnOrderAndBOM(t *testing.T) {
	in := "\ufeffName_EN,Account_Type\nCash,asset\n"
	rows, err := (&GenericParser{}).Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Cash", rows[0].NameEN)
	assert.Equal(t, model.AccountTypeAsset, rows[0].Type)
}

func TestGenericParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no type column", "code,name_en\n1,Cash\n", "missing account_type column"},
		{"no name column", "code,account_type\n1,ASSET\n", "missing name_en or name_ar column"},
		{"bad type", "account_type,name_en\nCASH,Cash\n", "row 2"},
		{"bad posting flag", "account_type,name_en,allow_posting\nASSET,Cash,maybe\n", "parsing allow_posting"},
		{"empty names", "account_type,name_en,name_ar\nASSET,,\n", "no name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&GenericParser{}).Parse(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOdooParser_Parse(t *testing.T) {
	rows := parseFile(t, &OdooParser{}, "../../testdata/odoo-chart.csv")
	require.Len(t, rows, 6)

	want := []model.AccountType{
		model.AccountTypeAsset,
		model.AccountTypeAsset,
		model.AccountTypeAsset,
		model.AccountTypeLiability,
		model.AccountTypeRevenue,
		model.AccountTypeExpense,
	}
	for i, r := range rows {
		assert.Equal(t, want[i], r.Type, "row %d", i)
		assert.True(t, r.Posting)
		assert.Empty(t, r.ParentCode)
	}
	assert.Equal(t, "101401", rows[1].Code)
	assert.Equal(t, "Bank", rows[1].NameEN)
}

func TestOdooParser_TechnicalTypes(t *testing.T) {
	in := "Code,Account Name,Type\n110100,Stock,asset_current\n310000,Equity,equity_unaffected\n"
	rows, err := (&OdooParser{}).Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.AccountTypeAsset, rows[0].Type)
	assert.Equal(t, model.AccountTypeEquity, rows[1].Type)
}

func TestOdooParser_Errors(t *testing.T) {
	_, err := (&OdooParser{}).Parse(strings.NewReader("Code,Type\n1,Income\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"account name"`)

	_, err = (&OdooParser{}).Parse(strings.NewReader("Code,Account Name,Type\n999,Memo,Off-Balance Sheet\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnknownAccountType)

	_, err = (&OdooParser{}).Parse(strings.NewReader("Code,Account Name,Type\n999\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func TestPlan(t *testing.T) {
	existing := accounts.DefaultChart(accounts.TemplateStandard)
	rows := parseFile(t, &GenericParser{}, "../../testdata/generic-chart.csv")

	planned, err := Plan(existing, rows, sequentialIDs("imp-"))
	require.NoError(t, err)
	require.Len(t, planned, 4)

	assert.Equal(t, "6000", planned[0].Code)
	assert.True(t, planned[0].IsRoot())
	assert.False(t, planned[0].AllowPosting)

	assert.Equal(t, "60001", planned[1].Code, "first child of a row added earlier")
	assert.Equal(t, "imp-1", planned[1].ParentID)
	assert.Equal(t, "60002", planned[2].Code)

	assert.Equal(t, "10003", planned[3].Code)
	assert.Equal(t, "1", planned[3].ParentID)

	for _, a := range planned {
		assert.True(t, a.IsActive)
	}
	assert.Len(t, existing, 22, "existing chart untouched")
}

func TestPlan_Errors(t *testing.T) {
	existing := accounts.DefaultChart(accounts.TemplateMinimal)

	tests := []struct {
		name string
		rows []Row
		want error
	}{
		{"unknown parent code", []Row{{Type: model.AccountTypeAsset, ParentCode: "9999", NameEN: "x"}}, accounts.ErrNotFound},
		{"duplicate existing code", []Row{{Code: "1000", Type: model.AccountTypeAsset, NameEN: "x"}}, accounts.ErrDuplicateCode},
		{"duplicate within file", []Row{
			{Code: "1500", Type: model.AccountTypeAsset, NameEN: "x"},
			{Code: "1500", Type: model.AccountTypeAsset, NameEN: "y"},
		}, accounts.ErrDuplicateCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(existing, tt.rows, sequentialIDs("x"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Contains(t, err.Error(), "row ")
		})
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&OdooParser{})
	assert.NotNil(t, r.Get("Odoo"))
	assert.NotNil(t, r.Get("ODOO"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&GenericParser{})
	assert.Panics(t, func() { r.Register(&GenericParser{}) })
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("generic"))
	assert.NotNil(t, r.Get("odoo"))
	assert.ElementsMatch(t, []string{"generic", "odoo"}, r.Formats())
}

func TestScan_FindsCSVs(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "chart.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "notes.txt"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "chart.csv", files[0].Name)
	assert.Equal(t, int64(4), files[0].Size)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	processedDir := filepath.Join(dir, "import", "processed")
	require.NoError(t, os.MkdirAll(processedDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(processedDir, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
}

func TestScan_NoImportDir(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	importDir := filepath.Join(dir, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "chart.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "chart.csv"))

	_, err := os.Stat(filepath.Join(importDir, "chart.csv"))
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "chart.csv"))
	assert.NoError(t, err)
}
