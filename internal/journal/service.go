package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/cleared-dev/ledgerview/internal/model"
)

// Service reads and writes the per-month journal files under repoRoot:
// YYYY/MM/journal.csv.
type Service struct {
	repoRoot string
}

// NewService creates a journal Service.
func NewService(repoRoot string) *Service {
	return &Service{repoRoot: repoRoot}
}

// Append adds entries to the journal file of the month they are dated in,
// creating directories and headers as needed.
func (s *Service) Append(entries []model.JournalEntry) error {
	byMonth := make(map[string][]model.JournalEntry)
	var order []string
	for _, e := range entries {
		path := s.monthPath(e.Date.Year(), int(e.Date.Month()))
		if _, seen := byMonth[path]; !seen {
			order = append(order, path)
		}
		byMonth[path] = append(byMonth[path], e)
	}

	for _, path := range order {
		if err := appendFile(path, byMonth[path]); err != nil {
			return err
		}
	}
	return nil
}

func appendFile(path string, entries []model.JournalEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}

	write := AppendEntries
	if isNew {
		write = WriteEntries
	}
	if err := write(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("appending entries to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// ReadMonth reads all entries for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]model.JournalEntry, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return entries, nil
}

// ReadAll reads every month on disk in chronological order.
func (s *Service) ReadAll() ([]model.JournalEntry, error) {
	months, err := s.Months()
	if err != nil {
		return nil, err
	}
	var all []model.JournalEntry
	for _, ym := range months {
		entries, err := s.ReadMonth(ym[0], ym[1])
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}

// Months lists the [year, month] pairs that have a journal file.
func (s *Service) Months() ([][2]int, error) {
	years, err := os.ReadDir(s.repoRoot)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.repoRoot, err)
	}

	var out [][2]int
	for _, y := range years {
		year, ok := number(y, 4)
		if !ok {
			continue
		}
		months, err := os.ReadDir(filepath.Join(s.repoRoot, y.Name()))
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", y.Name(), err)
		}
		for _, m := range months {
			month, ok := number(m, 2)
			if !ok || month < 1 || month > 12 {
				continue
			}
			if _, err := os.Stat(s.monthPath(year, month)); err == nil {
				out = append(out, [2]int{year, month})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out, nil
}

func number(e fs.DirEntry, width int) (int, bool) {
	if !e.IsDir() || len(e.Name()) != width {
		return 0, false
	}
	n, err := strconv.Atoi(e.Name())
	return n, err == nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.repoRoot, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "journal.csv")
}
