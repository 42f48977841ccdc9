package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ledgerdesk/coa/internal/accounts"
	"github.com/ledgerdesk/coa/internal/config"
	"github.com/ledgerdesk/coa/internal/store/pg"
)

// project is an initialized directory with its config and account store.
type project struct {
	root string
	cfg  *config.Config
	repo accounts.Repository
}

func openProject(repoDir string) (*project, error) {
	root, err := filepath.Abs(repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", config.FileName, err)
	}

	repo, err := openRepository(root, cfg)
	if err != nil {
		return nil, err
	}
	return &project{root: root, cfg: cfg, repo: repo}, nil
}

func openRepository(root string, cfg *config.Config) (accounts.Repository, error) {
	if cfg.Storage.Driver == config.DriverPostgres {
		repo, err := pg.Open(cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
	return accounts.NewFileRepository(root), nil
}

// snapshot loads the current chart into a Service.
func (p *project) snapshot(ctx context.Context) (*accounts.Service, error) {
	accts, err := p.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return accounts.NewService(accts), nil
}

// fileBacked reports whether the chart lives in the project directory.
func (p *project) fileBacked() bool {
	return p.cfg.Storage.Driver == config.DriverCSV
}

// Close releases the account store when it holds a connection.
func (p *project) Close() error {
	if c, ok := p.repo.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
