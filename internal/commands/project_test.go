package commands

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/coa/internal/accounts"
	"github.com/ledgerdesk/coa/internal/changelog"
	"github.com/ledgerdesk/coa/internal/config"
	"github.com/ledgerdesk/coa/internal/importer"
	"github.com/ledgerdesk/coa/internal/model"
)

// limitedRepo accepts a fixed number of inserts and then reports a
// duplicate, like a concurrent writer taking the code first.
type limitedRepo struct {
	*accounts.FileRepository
	allow  int
	closed bool
}

func (r *limitedRepo) Insert(ctx context.Context, acct model.Account) error {
	if r.allow == 0 {
		return accounts.ErrDuplicateCode
	}
	r.allow--
	return r.FileRepository.Insert(ctx, acct)
}

func (r *limitedRepo) Close() error {
	r.closed = true
	return nil
}

func newTestProject(t *testing.T, allow int) (*project, *limitedRepo) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, accounts.NewService(accounts.DefaultChart(accounts.TemplateStandard)).Save(dir))
	repo := &limitedRepo{FileRepository: accounts.NewFileRepository(dir), allow: allow}
	return &project{root: dir, cfg: config.Default("Test Biz"), repo: repo}, repo
}

func TestImportFile_InsertFailureKeepsLogForWrittenRows(t *testing.T) {
	p, _ := newTestProject(t, 2)
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	n, err := importFile(cmd, p, &importer.GenericParser{}, "../../testdata/generic-chart.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, accounts.ErrDuplicateCode)
	assert.Equal(t, 2, n)

	svc, err := accounts.Load(p.root)
	require.NoError(t, err)
	assert.Len(t, svc.All(), 24)

	entries, err := changelog.Read(p.root)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, changelog.ActionImport, e.Action)
		_, ok := svc.Get(e.AccountID)
		assert.True(t, ok, "logged account %s is stored", e.AccountID)
	}
}

func TestProjectClose(t *testing.T) {
	p, repo := newTestProject(t, 0)
	require.NoError(t, p.Close())
	assert.True(t, repo.closed)

	plain := &project{repo: accounts.NewFileRepository(t.TempDir())}
	assert.NoError(t, plain.Close(), "file store has nothing to close")
}
