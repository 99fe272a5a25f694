package accounts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cleared-dev/ledgerview/internal/model"
)

// FileName is the account master data file under accounts/.
const FileName = "accounts.csv"

// Service provides in-memory lookup over account master data.
type Service struct {
	accounts []model.Account
	byKey    map[model.AccountKey]model.Account
}

// NewService creates a Service from a slice of accounts. Later duplicates win.
func NewService(accounts []model.Account) *Service {
	byKey := make(map[model.AccountKey]model.Account, len(accounts))
	for _, a := range accounts {
		byKey[a.Key] = a
	}
	return &Service{accounts: accounts, byKey: byKey}
}

// Load reads accounts/accounts.csv from a repo root and returns a Service.
func Load(repoRoot string) (*Service, error) {
	path := filepath.Join(repoRoot, "accounts", FileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening account master data: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading account master data: %w", err)
	}
	return NewService(accts), nil
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Exists reports whether an account exists.
func (s *Service) Exists(key model.AccountKey) bool {
	_, ok := s.byKey[key]
	return ok
}

// Save writes account master data to accounts/accounts.csv.
func (s *Service) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, "accounts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating account master data file: %w", err)
	}
	if err := WriteAccounts(f, s.accounts); err != nil {
		f.Close()
		return fmt.Errorf("writing account master data: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing account master data file: %w", err)
	}
	return nil
}
