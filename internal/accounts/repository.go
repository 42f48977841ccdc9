package accounts

import (
	"context"
	"sync"

	"github.com/ledgerdesk/coa/internal/model"
)

// Repository is the account store the CLI and HTTP API read snapshots from.
type Repository interface {
	List(ctx context.Context) ([]model.Account, error)
	Insert(ctx context.Context, acct model.Account) error
}

// FileRepository stores the chart in accounts/chart-of-accounts.csv under a
// project root. Inserts are serialized within the process.
type FileRepository struct {
	root string
	mu   sync.Mutex
}

// NewFileRepository returns a repository rooted at repoRoot.
func NewFileRepository(repoRoot string) *FileRepository {
	return &FileRepository{root: repoRoot}
}

// List reads the current chart.
func (r *FileRepository) List(_ context.Context) ([]model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	svc, err := Load(r.root)
	if err != nil {
		return nil, err
	}
	return svc.All(), nil
}

// Insert validates acct against the stored chart and rewrites the file.
func (r *FileRepository) Insert(_ context.Context, acct model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	svc, err := Load(r.root)
	if err != nil {
		return err
	}
	if err := svc.Add(acct); err != nil {
		return err
	}
	return svc.Save(r.root)
}
