// Package pg keeps the chart of accounts in Postgres through gorm.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ledgerdesk/coa/internal/accounts"
	"github.com/ledgerdesk/coa/internal/model"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// AccountRow is the coa_accounts table.
type AccountRow struct {
	ID            string  `gorm:"primaryKey;size:64"`
	Code          string  `gorm:"size:64;not null;index:idx_coa_accounts_active_code,unique,where:is_active"`
	AccountType   string  `gorm:"size:16;not null;index"`
	ParentID      *string `gorm:"size:64;index"`
	IsActive      bool    `gorm:"not null"`
	AllowPosting  bool    `gorm:"not null"`
	NameEN        string  `gorm:"column:name_en"`
	NameAR        string  `gorm:"column:name_ar"`
	DescriptionEN string  `gorm:"column:description_en"`
	DescriptionAR string  `gorm:"column:description_ar"`
	CreatedAt     time.Time
}

// TableName implements gorm's Tabler.
func (AccountRow) TableName() string {
	return "coa_accounts"
}

func rowFromAccount(a model.Account) AccountRow {
	row := AccountRow{
		ID:            a.ID,
		Code:          a.Code,
		AccountType:   string(a.Type),
		IsActive:      a.IsActive,
		AllowPosting:  a.AllowPosting,
		NameEN:        a.NameEN,
		NameAR:        a.NameAR,
		DescriptionEN: a.DescriptionEN,
		DescriptionAR: a.DescriptionAR,
	}
	if a.ParentID != "" {
		parent := a.ParentID
		row.ParentID = &parent
	}
	return row
}

func (r AccountRow) account() model.Account {
	a := model.Account{
		ID:            r.ID,
		Code:          r.Code,
		Type:          model.AccountType(r.AccountType),
		IsActive:      r.IsActive,
		AllowPosting:  r.AllowPosting,
		NameEN:        r.NameEN,
		NameAR:        r.NameAR,
		DescriptionEN: r.DescriptionEN,
		DescriptionAR: r.DescriptionAR,
	}
	if r.ParentID != nil {
		a.ParentID = *r.ParentID
	}
	return a
}

// Repository implements accounts.Repository on a gorm connection.
type Repository struct {
	db *gorm.DB
}

var _ accounts.Repository = (*Repository)(nil)

// New wraps an open gorm connection.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Open connects to Postgres and migrates the accounts table.
func Open(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	repo := New(db)
	if err := repo.Migrate(); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return repo, nil
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("getting sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Migrate creates or updates the accounts table.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(&AccountRow{}); err != nil {
		return fmt.Errorf("migrating coa_accounts: %w", err)
	}
	return nil
}

// List returns every account ordered by code.
func (r *Repository) List(ctx context.Context) ([]model.Account, error) {
	var rows []AccountRow
	if err := r.db.WithContext(ctx).Order("code").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	out := make([]model.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.account())
	}
	return out, nil
}

// Insert validates acct against the stored chart and writes it. The partial
// unique index on active codes catches writers that pass validation together.
func (r *Repository) Insert(ctx context.Context, acct model.Account) error {
	current, err := r.List(ctx)
	if err != nil {
		return err
	}
	if err := accounts.NewService(current).Add(acct); err != nil {
		return err
	}

	row := rowFromAccount(acct)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", accounts.ErrDuplicateCode, acct.Code)
		}
		return fmt.Errorf("inserting account %s: %w", acct.ID, err)
	}
	return nil
}
