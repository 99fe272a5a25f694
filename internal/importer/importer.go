package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/ledgerview/internal/accounts"
	"github.com/cleared-dev/ledgerview/internal/journal"
	"github.com/cleared-dev/ledgerview/internal/model"
	"github.com/cleared-dev/ledgerview/internal/store"
)

// Source loads a complete dataset from one storage format.
type Source interface {
	Load(ctx context.Context, path string) (*model.Dataset, error)
	Format() string
}

// Registry holds named sources.
type Registry struct {
	sources map[string]Source
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source. Panics on duplicate format.
func (r *Registry) Register(s Source) {
	key := strings.ToLower(s.Format())
	if _, ok := r.sources[key]; ok {
		panic("duplicate source format: " + key)
	}
	r.sources[key] = s
}

// Get returns the source for format, or nil.
func (r *Registry) Get(format string) Source {
	return r.sources[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with every built-in source.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(CSVSource{})
	r.Register(store.Source{})
	return r
}

// Load reads the dataset at path with the named source.
func (r *Registry) Load(ctx context.Context, format, path string) (*model.Dataset, error) {
	s := r.Get(format)
	if s == nil {
		return nil, fmt.Errorf("unknown source format %q", format)
	}
	ds, err := s.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading %s dataset from %s: %w", format, path, err)
	}
	return ds, nil
}

// Dataset file locations inside a repo.
const (
	TransactionsFile = "transactions/transactions.csv"
	CurrenciesFile   = "currencies.csv"
)

// CSVSource reads a dataset laid out as a directory of CSV files:
// accounts/accounts.csv, YYYY/MM/journal.csv, transactions/transactions.csv
// and currencies.csv. Missing transaction and currency files mean none.
type CSVSource struct{}

// Format returns the source name.
func (CSVSource) Format() string { return "csv" }

// Load reads every file under repoRoot.
func (CSVSource) Load(ctx context.Context, repoRoot string) (*model.Dataset, error) {
	accts, err := accounts.Load(repoRoot)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := journal.NewService(repoRoot).ReadAll()
	if err != nil {
		return nil, err
	}

	txns, err := readOptional(filepath.Join(repoRoot, TransactionsFile), ReadTransactions)
	if err != nil {
		return nil, err
	}
	currencies, err := readOptional(filepath.Join(repoRoot, CurrenciesFile), ReadCurrencies)
	if err != nil {
		return nil, err
	}

	return &model.Dataset{
		Accounts:     accts.All(),
		Entries:      entries,
		Transactions: txns,
		Currencies:   currencies,
	}, nil
}

// Save writes ds under repoRoot in the layout Load reads. It refuses to
// write over an existing chart of accounts.
func (CSVSource) Save(ctx context.Context, repoRoot string, ds *model.Dataset) error {
	chart := filepath.Join(repoRoot, "accounts", accounts.FileName)
	if _, err := os.Stat(chart); err == nil {
		return fmt.Errorf("%s already exists", chart)
	}

	if err := accounts.NewService(ds.Accounts).Save(repoRoot); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := journal.NewService(repoRoot).Append(ds.Entries); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(repoRoot, TransactionsFile), func(w io.Writer) error {
		return WriteTransactions(w, ds.Transactions)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(repoRoot, CurrenciesFile), func(w io.Writer) error {
		return WriteCurrencies(w, ds.Currencies)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func readOptional[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	out, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}

// importDir is the subdirectory for incoming transaction exports.
const importDir = "import"

// processedDir is the subdirectory for merged exports.
const processedDir = "import/processed"

// Scan returns CSV files in <repoRoot>/import/.
func Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// MergeTransactions adds txns to transactions/transactions.csv. A transaction
// whose id is already present replaces the stored one, so re-importing a
// corrected export is safe. It returns how many ids were new.
func MergeTransactions(repoRoot string, txns []model.Transaction) (int, error) {
	path := filepath.Join(repoRoot, TransactionsFile)
	existing, err := readOptional(path, ReadTransactions)
	if err != nil {
		return 0, err
	}

	pos := make(map[string]int, len(existing))
	for i, t := range existing {
		pos[t.ID] = i
	}
	added := 0
	for _, t := range txns {
		if i, ok := pos[t.ID]; ok {
			existing[i] = t
			continue
		}
		pos[t.ID] = len(existing)
		existing = append(existing, t)
		added++
	}

	if err := writeFile(path, func(w io.Writer) error {
		return WriteTransactions(w, existing)
	}); err != nil {
		return 0, err
	}
	return added, nil
}
