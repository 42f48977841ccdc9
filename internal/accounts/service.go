package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ledgerdesk/coa/internal/chart"
	"github.com/ledgerdesk/coa/internal/id"
	"github.com/ledgerdesk/coa/internal/model"
)

// ChartFile is the chart location relative to a project root.
var ChartFile = filepath.Join("accounts", "chart-of-accounts.csv")

var (
	ErrNotFound      = errors.New("account not found")
	ErrDuplicateID   = errors.New("duplicate account id")
	ErrDuplicateCode = errors.New("duplicate account code")
	ErrUnknownParent = errors.New("unknown parent account")
)

// Service provides in-memory lookup over a chart-of-accounts snapshot.
type Service struct {
	accounts []model.Account
	byID     map[string]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Service{accounts: accounts, byID: byID}
}

// Load reads accounts/chart-of-accounts.csv from a project root and returns a Service.
func Load(repoRoot string) (*Service, error) {
	path := filepath.Join(repoRoot, ChartFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return NewService(accts), nil
}

// All returns all accounts in stored order.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(accountID string) (model.Account, bool) {
	a, ok := s.byID[accountID]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(accountID string) bool {
	_, ok := s.byID[accountID]
	return ok
}

// ByCode returns the first account carrying code.
func (s *Service) ByCode(code string) (model.Account, bool) {
	for _, a := range s.accounts {
		if a.Code == code {
			return a, true
		}
	}
	return model.Account{}, false
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// Children returns the direct children of an account.
func (s *Service) Children(accountID string) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.ParentID == accountID {
			result = append(result, a)
		}
	}
	return result
}

// NextCode proposes a code for a new account of accountType under parentID.
func (s *Service) NextCode(accountType model.AccountType, parentID string) (string, error) {
	return chart.Allocate(s.accounts, accountType, parentID)
}

// Tree returns the chart as a pre-order walk.
func (s *Service) Tree() []model.TreeEntry {
	return chart.Build(s.accounts)
}

// Validate checks the chart for structural and numbering problems.
func (s *Service) Validate() []chart.ValidationError {
	return chart.Validate(s.accounts)
}

// Add appends a new account after checking it against the snapshot.
func (s *Service) Add(acct model.Account) error {
	if err := id.Check(acct.ID); err != nil {
		return err
	}
	if acct.Code == "" {
		return errors.New("account code is required")
	}
	if _, err := chart.BaseCode(acct.Type); err != nil {
		return err
	}
	if s.Exists(acct.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, acct.ID)
	}
	if acct.ParentID != "" && !s.Exists(acct.ParentID) {
		return fmt.Errorf("%w: %s", ErrUnknownParent, acct.ParentID)
	}
	if acct.IsActive {
		for _, a := range s.accounts {
			if a.IsActive && a.Code == acct.Code {
				return fmt.Errorf("%w: %s is used by account %s", ErrDuplicateCode, acct.Code, a.ID)
			}
		}
	}

	n := len(s.accounts)
	s.accounts = append(s.accounts[:n:n], acct)
	s.byID[acct.ID] = acct
	return nil
}

// Save writes the chart of accounts to accounts/chart-of-accounts.csv.
func (s *Service) Save(repoRoot string) error {
	path := filepath.Join(repoRoot, ChartFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}
